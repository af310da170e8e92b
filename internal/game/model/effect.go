package model

// EffectKind discriminates the deferred-effect payloads the scheduler knows
// how to settle.
type EffectKind string

const (
	// EffectTimedWork pays a reward through the tax pipeline when the work
	// window completes; cancelling pays pro-rata minus a penalty.
	EffectTimedWork EffectKind = "TIMED_WORK"
	// EffectStatusTransform swaps the owner's length to zero for the
	// duration and restores the saved value plus accumulated depth on expiry.
	EffectStatusTransform EffectKind = "STATUS_TRANSFORM"
	// EffectConsumableWindow is a temporary marker window (fairy, parasite)
	// with item-specific behavior while active.
	EffectConsumableWindow EffectKind = "CONSUMABLE_WINDOW"
	// EffectPooledGiveaway holds escrowed coins; expiry refunds the
	// undistributed remainder to the sender.
	EffectPooledGiveaway EffectKind = "POOLED_GIVEAWAY"
)

// EffectState is the settle state of an effect. Transitions are one-way:
// ACTIVE -> EXPIRED (timer fired) or ACTIVE -> CANCELLED (explicit cancel).
type EffectState string

const (
	EffectActive    EffectState = "ACTIVE"
	EffectExpired   EffectState = "EXPIRED"
	EffectCancelled EffectState = "CANCELLED"
)

// Effect is one scheduled deferred effect. Start and End are absolute Unix
// seconds so restarts recompute remaining time instead of trusting a stored
// countdown.
type Effect struct {
	ID      string
	Kind    EffectKind
	GroupID string
	OwnerID string
	Start   int64
	End     int64
	State   EffectState
	Payload EffectPayload
}

// EffectPayload carries kind-specific fields; unused ones stay zero.
type EffectPayload struct {
	// TIMED_WORK
	Hours       int
	Multiplier  int
	TotalReward int64

	// STATUS_TRANSFORM
	OriginalLength int64
	Depth          int64

	// CONSUMABLE_WINDOW
	Item          string // item id that opened the window
	BeneficiaryID string // parasite owner receiving redirected gains
	LastTick      int64  // fairy: last auto-growth fire, unix seconds

	// POOLED_GIVEAWAY
	GiveawayID string
}

func (e *Effect) Active() bool { return e.State == EffectActive }

// Remaining returns the seconds left before End at the given instant,
// floored at zero.
func (e *Effect) Remaining(now int64) int64 {
	if r := e.End - now; r > 0 {
		return r
	}
	return 0
}
