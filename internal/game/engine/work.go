package engine

import (
	"growarena.gg/internal/game/model"
	"growarena.gg/internal/game/sched"
	"growarena.gg/internal/game/state"
	plog "growarena.gg/internal/persistence/log"
	"growarena.gg/internal/protocol"
)

func (e *Engine) handleWorkStart(req protocol.RequestMsg) protocol.ResultMsg {
	hours := req.Args.Hours
	if hours <= 0 || hours > e.tn.Work.MaxHours {
		return e.fail(req, protocol.ErrInvalidAmount)
	}
	var (
		code string
		fx   *model.Effect
	)
	err := e.store.Mutate(req.GroupID, func(d *state.GroupData) error {
		if sched.ActiveOfKind(d, req.UserID, model.EffectTimedWork) != nil {
			code = protocol.ErrAlreadyHasEffect
			return nil
		}
		u := d.Group.User(req.UserID)
		mult := 1
		if sched.ActiveOfKind(d, req.UserID, model.EffectStatusTransform) != nil {
			mult = e.tn.Items.TransformWorkMult
		}
		now := e.now().Unix()
		fx = &model.Effect{
			ID:      e.sched.NewID(),
			Kind:    model.EffectTimedWork,
			GroupID: req.GroupID,
			OwnerID: req.UserID,
			Start:   now,
			End:     now + int64(hours)*3600,
			State:   model.EffectActive,
			Payload: model.EffectPayload{
				Hours:       hours,
				Multiplier:  mult,
				TotalReward: int64(hours) * e.tn.Work.CoinsPerHour * int64(mult),
			},
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
	e.writeAudit(plog.AuditEntry{GroupID: req.GroupID, UserID: req.UserID, Action: req.Action})
	return e.result(req, map[string]any{
		"effect_id": fx.ID,
		"hours":     hours,
		"reward":    fx.Payload.TotalReward,
		"ends_at":   fx.End,
	})
}

func (e *Engine) handleWorkCancel(req protocol.RequestMsg) protocol.ResultMsg {
	var id string
	e.store.View(req.GroupID, func(d *state.GroupData) {
		if fx := sched.ActiveOfKind(d, req.UserID, model.EffectTimedWork); fx != nil {
			id = fx.ID
		}
	})
	if id == "" {
		return e.fail(req, protocol.ErrInvalidTarget)
	}
	out, code := e.sched.Cancel(req.GroupID, id)
	if code != "" {
		return e.fail(req, code)
	}
	e.writeAudit(plog.AuditEntry{
		GroupID: req.GroupID, UserID: req.UserID, Action: req.Action,
		CoinsDelta: out.Payout, Tax: out.Tax,
	})
	return e.result(req, map[string]any{
		"payout":  out.Payout,
		"penalty": out.Penalty,
		"tax":     out.Tax,
	})
}

func (e *Engine) handleWorkStatus(req protocol.RequestMsg) protocol.ResultMsg {
	var data map[string]any
	now := e.now().Unix()
	e.store.View(req.GroupID, func(d *state.GroupData) {
		if fx := sched.ActiveOfKind(d, req.UserID, model.EffectTimedWork); fx != nil {
			data = map[string]any{
				"working":     true,
				"effect_id":   fx.ID,
				"hours":       fx.Payload.Hours,
				"reward":      fx.Payload.TotalReward,
				"remaining_s": fx.Remaining(now),
			}
		}
	})
	if data == nil {
		data = map[string]any{"working": false}
	}
	return e.result(req, data)
}
