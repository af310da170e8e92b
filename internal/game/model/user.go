package model

// UserRecord is the per-group record of one player. Created once at
// registration and never deleted; every field mutates only under the owning
// group's lock in the store.
type UserRecord struct {
	ID       string
	Nickname string

	Length   int64 // primary stat, never negative
	Hardness int   // secondary stat, clamped [1,10]
	Coins    int64 // never negative at any observable point

	LastSign int64 // unix seconds of last daily sign-in, 0 = never

	WinStreak         int
	MaxWinStreak      int
	TodayMaxWinStreak int
	StreakDay         string // local date key the today-streak belongs to

	Items Items

	// ActiveEffects references scheduler-owned effects by id.
	ActiveEffects []string
}

// Items holds per-user consumable and marker state. Zero values are the
// documented defaults.
type Items struct {
	Viagra     int  // remaining cooldown-bypass charges
	Pills      bool // next duel is a forced win
	Ring       bool // armed sterilization ring
	Sterilized bool // growth rejected until unlocked
	Exchanger  bool // armed length exchanger
	Parasite   bool // armed parasite, waiting for a target

	// SavedDepth carries the transform depth counter between uses so
	// repeated transforms stack instead of resetting.
	SavedDepth int64
}

const (
	MinHardness = 1
	MaxHardness = 10
)

// ClampHardness bounds h to the legal secondary-stat range.
func ClampHardness(h int) int {
	if h < MinHardness {
		return MinHardness
	}
	if h > MaxHardness {
		return MaxHardness
	}
	return h
}

// AddEffect records an effect id on the owner.
func (u *UserRecord) AddEffect(id string) {
	for _, e := range u.ActiveEffects {
		if e == id {
			return
		}
	}
	u.ActiveEffects = append(u.ActiveEffects, id)
}

// RemoveEffect drops an effect id from the owner's active set.
func (u *UserRecord) RemoveEffect(id string) {
	out := u.ActiveEffects[:0]
	for _, e := range u.ActiveEffects {
		if e != id {
			out = append(out, e)
		}
	}
	u.ActiveEffects = out
}
