package engine

import (
	"growarena.gg/internal/game/giveaway"
	"growarena.gg/internal/game/model"
	"growarena.gg/internal/game/state"
	plog "growarena.gg/internal/persistence/log"
	"growarena.gg/internal/protocol"
)

func (e *Engine) handlePacketSend(req protocol.RequestMsg) protocol.ResultMsg {
	var (
		code string
		fx   *model.Effect
		gaID string
	)
	err := e.store.Mutate(req.GroupID, func(d *state.GroupData) error {
		u := d.Group.User(req.UserID)
		if u.Coins < req.Args.Amount {
			code = protocol.ErrInsufficientFunds
			return nil
		}
		now := e.now().Unix()
		id := e.sched.NewID()
		ga, c := giveaway.New(id, req.GroupID, req.UserID, req.Args.Amount, req.Args.Count, e.tn.Giveaway.MaxShares, now)
		if c != "" {
			code = c
			return nil
		}
		u.Coins -= req.Args.Amount
		d.Giveaways[ga.ID] = ga
		gaID = ga.ID

		fx = &model.Effect{
			ID:      id,
			Kind:    model.EffectPooledGiveaway,
			GroupID: req.GroupID,
			OwnerID: req.UserID,
			Start:   now,
			End:     now + e.tn.Giveaway.ExpiryS,
			State:   model.EffectActive,
			Payload: model.EffectPayload{GiveawayID: ga.ID},
		}
		d.Effects[fx.ID] = fx
		u.AddEffect(fx.ID)
		d.TouchGroups()
		d.TouchEffects()
		return nil
	})
	if err != nil {
		return e.fail(req, protocol.ErrInternal)
	}
	if code != "" {
		return e.fail(req, code)
	}
	e.sched.Arm(fx)
	e.writeAudit(plog.AuditEntry{
		GroupID: req.GroupID, UserID: req.UserID, Action: req.Action,
		CoinsDelta: -req.Args.Amount,
	})
	return e.result(req, map[string]any{
		"packet_id":  gaID,
		"amount":     req.Args.Amount,
		"shares":     req.Args.Count,
		"expires_at": fx.End,
	})
}

func (e *Engine) handlePacketGrab(req protocol.RequestMsg) protocol.ResultMsg {
	var (
		code string
		amt  int64
		gaID string
		left int
	)
	err := e.store.Mutate(req.GroupID, func(d *state.GroupData) error {
		ga := e.pickPacket(d, req.Args.PacketID)
		if ga == nil {
			code = protocol.ErrInvalidTarget
			return nil
		}
		amt, code = giveaway.Grab(ga, req.UserID, e.rng)
		if code != "" {
			return nil
		}
		d.Group.User(req.UserID).Coins += amt
		gaID = ga.ID
		left = ga.Left

		if giveaway.Exhausted(ga) {
			// The expiry timer has nothing to refund; retire the pool now.
			if fx, ok := d.Effects[ga.ID]; ok {
				delete(d.Effects, fx.ID)
				if owner := d.Group.User(fx.OwnerID); owner != nil {
					owner.RemoveEffect(fx.ID)
				}
			}
			delete(d.Giveaways, ga.ID)
		}
		d.TouchGroups()
		d.TouchEffects()
		return nil
	})
	if err != nil {
		return e.fail(req, protocol.ErrInternal)
	}
	if code != "" {
		return e.fail(req, code)
	}
	if left <= 0 {
		e.sched.Drop(gaID)
	}
	e.writeAudit(plog.AuditEntry{
		GroupID: req.GroupID, UserID: req.UserID, Action: req.Action,
		Target: gaID, CoinsDelta: amt,
	})
	return e.result(req, map[string]any{
		"packet_id": gaID,
		"amount":    amt,
		"left":      left,
	})
}

// pickPacket finds the requested pool, or the oldest open one when id is
// empty.
func (e *Engine) pickPacket(d *state.GroupData, id string) *model.Giveaway {
	if id != "" {
		return d.Giveaways[id]
	}
	var oldest *model.Giveaway
	for _, ga := range d.Giveaways {
		if giveaway.Exhausted(ga) {
			continue
		}
		if oldest == nil || ga.CreatedAt < oldest.CreatedAt ||
			(ga.CreatedAt == oldest.CreatedAt && ga.ID < oldest.ID) {
			oldest = ga
		}
	}
	return oldest
}
