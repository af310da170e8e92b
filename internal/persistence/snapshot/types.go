package snapshot

// Durable collection shapes. All timestamps are absolute Unix seconds so
// recovery after arbitrary downtime computes remaining durations correctly.

type GroupsV1 struct {
	Version int       `json:"version"`
	Groups  []GroupV1 `json:"groups"`
}

type GroupV1 struct {
	ID         string   `json:"id"`
	Enabled    bool     `json:"enabled"`
	TaxEnabled bool     `json:"tax_enabled"`
	Treasury   int64    `json:"treasury"`
	Users      []UserV1 `json:"users"`
}

type UserV1 struct {
	ID       string `json:"id"`
	Nickname string `json:"nickname"`

	Length   int64 `json:"length"`
	Hardness int   `json:"hardness"`
	Coins    int64 `json:"coins"`

	LastSign int64 `json:"last_sign,omitempty"`

	WinStreak         int    `json:"win_streak,omitempty"`
	MaxWinStreak      int    `json:"max_win_streak,omitempty"`
	TodayMaxWinStreak int    `json:"today_max_win_streak,omitempty"`
	StreakDay         string `json:"streak_day,omitempty"`

	Items ItemsV1 `json:"items"`

	ActiveEffects []string `json:"active_effects,omitempty"`
}

type ItemsV1 struct {
	Viagra     int   `json:"viagra,omitempty"`
	Pills      bool  `json:"pills,omitempty"`
	Ring       bool  `json:"ring,omitempty"`
	Sterilized bool  `json:"sterilized,omitempty"`
	Exchanger  bool  `json:"exchanger,omitempty"`
	Parasite   bool  `json:"parasite,omitempty"`
	SavedDepth int64 `json:"saved_depth,omitempty"`
}

type CooldownsV1 struct {
	Version int               `json:"version"`
	Groups  []CooldownGroupV1 `json:"groups"`
}

type CooldownGroupV1 struct {
	GroupID string           `json:"group_id"`
	Users   []CooldownUserV1 `json:"users"`
}

type CooldownUserV1 struct {
	UserID  string                  `json:"user_id"`
	Stamps  map[string]int64        `json:"stamps,omitempty"`
	Windows map[string]RateWindowV1 `json:"windows,omitempty"`
}

type RateWindowV1 struct {
	Start int64 `json:"start"`
	Count int   `json:"count"`
}

type EffectsV1 struct {
	Version   int             `json:"version"`
	Effects   []EffectV1      `json:"effects"`
	Giveaways []GiveawayV1    `json:"giveaways,omitempty"`
	Markets   []MarketBookV1  `json:"markets,omitempty"`
}

type EffectV1 struct {
	ID      string `json:"id"`
	Kind    string `json:"kind"`
	GroupID string `json:"group_id"`
	OwnerID string `json:"owner_id"`
	Start   int64  `json:"start"`
	End     int64  `json:"end"`
	State   string `json:"state"`

	Hours       int   `json:"hours,omitempty"`
	Multiplier  int   `json:"multiplier,omitempty"`
	TotalReward int64 `json:"total_reward,omitempty"`

	OriginalLength int64 `json:"original_length,omitempty"`
	Depth          int64 `json:"depth,omitempty"`

	Item          string `json:"item,omitempty"`
	BeneficiaryID string `json:"beneficiary_id,omitempty"`
	LastTick      int64  `json:"last_tick,omitempty"`

	GiveawayID string `json:"giveaway_id,omitempty"`
}

type GiveawayV1 struct {
	ID        string           `json:"id"`
	GroupID   string           `json:"group_id"`
	SenderID  string           `json:"sender_id"`
	Total     int64            `json:"total"`
	Remaining int64            `json:"remaining"`
	Shares    int              `json:"shares"`
	Left      int              `json:"left"`
	Claims    map[string]int64 `json:"claims,omitempty"`
	CreatedAt int64            `json:"created_at"`
}

type MarketBookV1 struct {
	GroupID  string      `json:"group_id"`
	NextID   int         `json:"next_id"`
	Listings []ListingV1 `json:"listings"`
}

type ListingV1 struct {
	ID       int    `json:"id"`
	SellerID string `json:"seller_id"`
	Length   int64  `json:"length"`
	Hardness int    `json:"hardness"`
	Price    int64  `json:"price"`
	ListedAt int64  `json:"listed_at"`
}
