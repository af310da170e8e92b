package model

// GroupRecord is one chat group's economy: its registered users and its
// communal treasury. Tenant isolation is absolute; nothing in a group ever
// references another group.
type GroupRecord struct {
	ID         string
	Enabled    bool
	TaxEnabled bool
	Treasury   int64
	Users      map[string]*UserRecord
}

// NewGroup returns a group with the documented defaults: disabled until an
// admin enables it, taxing on.
func NewGroup(id string) *GroupRecord {
	return &GroupRecord{
		ID:         id,
		TaxEnabled: true,
		Users:      map[string]*UserRecord{},
	}
}

func (g *GroupRecord) User(id string) *UserRecord {
	return g.Users[id]
}
