package economy

import (
	"sort"

	"growarena.gg/internal/game/model"
	"growarena.gg/internal/protocol"
)

// Treasury disbursements. Admin gating happens in the dispatcher; these only
// enforce arithmetic validity. Both run inside the group's mutation section.

// DisburseEqualSplit divides total across every registered user, floor
// division, remainder staying in the treasury. Returns the per-user share.
func DisburseEqualSplit(g *model.GroupRecord, total int64) (int64, string) {
	if total <= 0 {
		return 0, protocol.ErrInvalidAmount
	}
	if total > g.Treasury {
		return 0, protocol.ErrInsufficientFunds
	}
	n := int64(len(g.Users))
	if n == 0 {
		return 0, protocol.ErrInvalidTarget
	}
	share := total / n
	if share <= 0 {
		return 0, protocol.ErrInvalidAmount
	}
	ids := make([]string, 0, n)
	for id := range g.Users {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	for _, id := range ids {
		g.Users[id].Coins += share
	}
	g.Treasury -= share * n
	return share, ""
}

// DisburseToUser moves amount from the treasury to one user.
func DisburseToUser(g *model.GroupRecord, userID string, amount int64) string {
	if amount <= 0 {
		return protocol.ErrInvalidAmount
	}
	u := g.User(userID)
	if u == nil {
		return protocol.ErrNotRegistered
	}
	if amount > g.Treasury {
		return protocol.ErrInsufficientFunds
	}
	g.Treasury -= amount
	u.Coins += amount
	return ""
}
