package model

// Giveaway is an open coin pool. The sender's coins move into the pool at
// creation, so pool arithmetic never touches the sender again except for the
// expiry refund.
type Giveaway struct {
	ID        string
	GroupID   string
	SenderID  string
	Total     int64
	Remaining int64
	Shares    int
	Left      int // shares not yet claimed

	// Claims maps claimant id to the amount they drew. One claim per user.
	Claims map[string]int64

	CreatedAt int64
}

func (g *Giveaway) Claimed(userID string) bool {
	_, ok := g.Claims[userID]
	return ok
}
