package giveaway

import (
	"growarena.gg/internal/game/model"
	"growarena.gg/internal/game/resolve"
	"growarena.gg/internal/protocol"
)

// Pool arithmetic for red packets. Coins enter the pool at creation and only
// leave through claims or the expiry refund, so
// distributed + remaining == total holds at every step.

// New validates and builds a pool. The caller debits the sender and opens
// the expiry effect in the same mutation.
func New(id, groupID, senderID string, amount int64, shares, maxShares int, now int64) (*model.Giveaway, string) {
	if amount <= 0 || shares <= 0 || int64(shares) > amount {
		return nil, protocol.ErrInvalidAmount
	}
	if maxShares > 0 && shares > maxShares {
		return nil, protocol.ErrInvalidAmount
	}
	return &model.Giveaway{
		ID:        id,
		GroupID:   groupID,
		SenderID:  senderID,
		Total:     amount,
		Remaining: amount,
		Shares:    shares,
		Left:      shares,
		Claims:    map[string]int64{},
		CreatedAt: now,
	}, ""
}

// Grab draws one share for userID. The last claimant takes the exact
// remainder; earlier claims draw from [1, cap] where the cap leaves at least
// one coin per outstanding share and never exceeds twice the fair split.
func Grab(ga *model.Giveaway, userID string, r resolve.Rand) (int64, string) {
	if ga.Claimed(userID) {
		return 0, protocol.ErrAlreadyHasEffect
	}
	if ga.Left <= 0 || ga.Remaining <= 0 {
		return 0, protocol.ErrInvalidTarget
	}

	var amt int64
	if ga.Left == 1 {
		amt = ga.Remaining
	} else {
		cap := ga.Remaining - int64(ga.Left-1)
		if fair2 := ga.Remaining / int64(ga.Left) * 2; fair2 < cap {
			cap = fair2
		}
		if cap < 1 {
			cap = 1
		}
		amt = 1 + r.Int63n(cap)
	}

	ga.Remaining -= amt
	ga.Left--
	ga.Claims[userID] = amt
	return amt, ""
}

// Exhausted reports whether nothing is left to claim.
func Exhausted(ga *model.Giveaway) bool {
	return ga.Left <= 0 || ga.Remaining <= 0
}
