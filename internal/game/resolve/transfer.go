package resolve

import (
	"growarena.gg/internal/game/model"
	"growarena.gg/internal/protocol"
)

// Transfer moves coins between two users of the same group. Validation runs
// fully before either wallet moves.
func Transfer(g *model.GroupRecord, fromID, toID string, amount int64) string {
	if fromID == toID {
		return protocol.ErrSelfTarget
	}
	if amount <= 0 {
		return protocol.ErrInvalidAmount
	}
	from := g.User(fromID)
	if from == nil {
		return protocol.ErrNotRegistered
	}
	to := g.User(toID)
	if to == nil {
		return protocol.ErrInvalidTarget
	}
	if from.Coins < amount {
		return protocol.ErrInsufficientFunds
	}
	from.Coins -= amount
	to.Coins += amount
	return ""
}
