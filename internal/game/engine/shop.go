package engine

import (
	"growarena.gg/internal/game/items"
	"growarena.gg/internal/game/model"
	"growarena.gg/internal/game/sched"
	"growarena.gg/internal/game/state"
	plog "growarena.gg/internal/persistence/log"
	"growarena.gg/internal/protocol"
)

func (e *Engine) handleBuyItem(req protocol.RequestMsg) protocol.ResultMsg {
	def, ok := items.Find(e.catalog, req.Args.ItemID)
	if !ok {
		return e.fail(req, protocol.ErrInvalidTarget)
	}
	var (
		code string
		data map[string]any
		fx   *model.Effect
	)
	err := e.store.Mutate(req.GroupID, func(d *state.GroupData) error {
		u := d.Group.User(req.UserID)
		if u.Coins < def.Price {
			code = protocol.ErrInsufficientFunds
			return nil
		}
		code, data, fx = e.applyPurchase(d, u, def.ID)
		if code != "" {
			return nil
		}
		u.Coins -= def.Price
		d.TouchGroups()
		return nil
	})
	if err != nil {
		return e.fail(req, protocol.ErrInternal)
	}
	if code != "" {
		return e.fail(req, code)
	}
	if fx != nil {
		e.sched.Arm(fx)
	}
	e.writeAudit(plog.AuditEntry{
		GroupID: req.GroupID, UserID: req.UserID, Action: req.Action,
		Target: def.ID, CoinsDelta: -def.Price,
	})
	if data == nil {
		data = map[string]any{}
	}
	data["item"] = def.ID
	data["price"] = def.Price
	return e.result(req, data)
}

// applyPurchase settles one item's effect inside the purchase mutation.
// The returned effect, if any, still needs its timer armed after commit.
func (e *Engine) applyPurchase(d *state.GroupData, u *model.UserRecord, itemID string) (string, map[string]any, *model.Effect) {
	now := e.now().Unix()
	switch itemID {
	case items.Viagra:
		u.Items.Viagra += e.tn.Items.ViagraCharges
		return "", map[string]any{"charges": u.Items.Viagra}, nil

	case items.Surgery:
		doubled := items.ApplySurgery(u, e.tn.Items, e.rng)
		return "", map[string]any{"doubled": doubled, "length": u.Length}, nil

	case items.Pills:
		if u.Items.Pills {
			return protocol.ErrAlreadyHasEffect, nil, nil
		}
		u.Items.Pills = true
		return "", nil, nil

	case items.Ring:
		if u.Items.Ring {
			return protocol.ErrAlreadyHasEffect, nil, nil
		}
		u.Items.Ring = true
		return "", nil, nil

	case items.Exchanger:
		if u.Items.Exchanger {
			return protocol.ErrAlreadyHasEffect, nil, nil
		}
		u.Items.Exchanger = true
		return "", nil, nil

	case items.Parasite:
		if u.Items.Parasite {
			return protocol.ErrAlreadyHasEffect, nil, nil
		}
		u.Items.Parasite = true
		return "", nil, nil

	case items.Transform:
		if sched.ActiveOfKind(d, u.ID, model.EffectStatusTransform) != nil {
			return protocol.ErrAlreadyHasEffect, nil, nil
		}
		fx := &model.Effect{
			ID:      e.sched.NewID(),
			Kind:    model.EffectStatusTransform,
			GroupID: d.Group.ID,
			OwnerID: u.ID,
			Start:   now,
			End:     now + e.tn.Items.TransformDurationS,
			State:   model.EffectActive,
			Payload: model.EffectPayload{
				OriginalLength: u.Length,
				Depth:          u.Items.SavedDepth,
			},
		}
		u.Length = 0
		d.Effects[fx.ID] = fx
		u.AddEffect(fx.ID)
		d.TouchEffects()
		return "", map[string]any{"effect_id": fx.ID, "ends_at": fx.End}, fx

	case items.Fairy:
		for _, other := range d.Effects {
			if other.Active() && other.Kind == model.EffectConsumableWindow &&
				other.Payload.Item == items.Fairy && other.OwnerID == u.ID {
				return protocol.ErrAlreadyHasEffect, nil, nil
			}
		}
		fx := &model.Effect{
			ID:      e.sched.NewID(),
			Kind:    model.EffectConsumableWindow,
			GroupID: d.Group.ID,
			OwnerID: u.ID,
			Start:   now,
			End:     now + e.tn.Items.FairyDurationS,
			State:   model.EffectActive,
			Payload: model.EffectPayload{Item: items.Fairy},
		}
		d.Effects[fx.ID] = fx
		u.AddEffect(fx.ID)
		d.TouchEffects()
		return "", map[string]any{"effect_id": fx.ID, "ends_at": fx.End}, fx

	case items.MysteryBox:
		coins, wonItem := items.MysteryRoll(e.tn.Items, e.rng)
		if wonItem != "" {
			code, data, fx := e.applyPurchase(d, u, wonItem)
			if code != "" {
				// Blocked prize degrades to the smallest coin prize.
				coins = e.tn.Items.MysteryCoinPrizes[0]
				u.Coins += coins
				return "", map[string]any{"prize_coins": coins}, nil
			}
			if data == nil {
				data = map[string]any{}
			}
			data["prize_item"] = wonItem
			return "", data, fx
		}
		u.Coins += coins
		return "", map[string]any{"prize_coins": coins}, nil
	}
	return protocol.ErrInvalidTarget, nil, nil
}

func (e *Engine) handleSterilize(req protocol.RequestMsg) protocol.ResultMsg {
	if req.TargetID == "" || req.TargetID == req.UserID {
		return e.fail(req, protocol.ErrSelfTarget)
	}
	code := ""
	err := e.store.Mutate(req.GroupID, func(d *state.GroupData) error {
		u := d.Group.User(req.UserID)
		target := d.Group.User(req.TargetID)
		if target == nil {
			code = protocol.ErrInvalidTarget
			return nil
		}
		if !u.Items.Ring {
			code = protocol.ErrInvalidAmount
			return nil
		}
		if target.Items.Sterilized {
			code = protocol.ErrAlreadyHasEffect
			return nil
		}
		u.Items.Ring = false
		target.Items.Sterilized = true
		d.TouchGroups()
		return nil
	})
	if err != nil {
		return e.fail(req, protocol.ErrInternal)
	}
	if code != "" {
		return e.fail(req, code)
	}
	e.writeAudit(plog.AuditEntry{
		GroupID: req.GroupID, UserID: req.UserID, Action: req.Action, Target: req.TargetID,
	})
	return e.result(req, map[string]any{"sterilized": req.TargetID})
}

func (e *Engine) handleUnsterilize(req protocol.RequestMsg) protocol.ResultMsg {
	code := ""
	err := e.store.Mutate(req.GroupID, func(d *state.GroupData) error {
		u := d.Group.User(req.UserID)
		if !u.Items.Sterilized {
			code = protocol.ErrInvalidTarget
			return nil
		}
		if u.Coins < e.tn.Items.UnlockPrice {
			code = protocol.ErrInsufficientFunds
			return nil
		}
		u.Coins -= e.tn.Items.UnlockPrice
		u.Items.Sterilized = false
		d.TouchGroups()
		return nil
	})
	if err != nil {
		return e.fail(req, protocol.ErrInternal)
	}
	if code != "" {
		return e.fail(req, code)
	}
	e.writeAudit(plog.AuditEntry{
		GroupID: req.GroupID, UserID: req.UserID, Action: req.Action,
		CoinsDelta: -e.tn.Items.UnlockPrice,
	})
	return e.result(req, map[string]any{"unlocked": true, "price": e.tn.Items.UnlockPrice})
}

func (e *Engine) handleExchange(req protocol.RequestMsg) protocol.ResultMsg {
	if req.TargetID == "" || req.TargetID == req.UserID {
		return e.fail(req, protocol.ErrSelfTarget)
	}
	var (
		code    string
		swapped bool
	)
	err := e.store.Mutate(req.GroupID, func(d *state.GroupData) error {
		u := d.Group.User(req.UserID)
		target := d.Group.User(req.TargetID)
		if target == nil {
			code = protocol.ErrInvalidTarget
			return nil
		}
		if !u.Items.Exchanger {
			code = protocol.ErrInvalidAmount
			return nil
		}
		if sched.ActiveOfKind(d, req.TargetID, model.EffectStatusTransform) != nil {
			code = protocol.ErrTargetBusy
			return nil
		}
		u.Items.Exchanger = false
		swapped = items.ApplyExchange(u, target, e.tn.Items, e.rng)
		d.TouchGroups()
		return nil
	})
	if err != nil {
		return e.fail(req, protocol.ErrInternal)
	}
	if code != "" {
		return e.fail(req, code)
	}
	e.writeAudit(plog.AuditEntry{
		GroupID: req.GroupID, UserID: req.UserID, Action: req.Action, Target: req.TargetID,
	})
	return e.result(req, map[string]any{"swapped": swapped})
}

func (e *Engine) handleAttach(req protocol.RequestMsg) protocol.ResultMsg {
	if req.TargetID == "" || req.TargetID == req.UserID {
		return e.fail(req, protocol.ErrSelfTarget)
	}
	var (
		code string
		fx   *model.Effect
	)
	err := e.store.Mutate(req.GroupID, func(d *state.GroupData) error {
		u := d.Group.User(req.UserID)
		target := d.Group.User(req.TargetID)
		if target == nil {
			code = protocol.ErrInvalidTarget
			return nil
		}
		if !u.Items.Parasite {
			code = protocol.ErrInvalidAmount
			return nil
		}
		if sched.ParasiteBeneficiary(d, req.TargetID) != nil {
			code = protocol.ErrTargetBusy
			return nil
		}
		now := e.now().Unix()
		u.Items.Parasite = false
		fx = &model.Effect{
			ID:      e.sched.NewID(),
			Kind:    model.EffectConsumableWindow,
			GroupID: req.GroupID,
			OwnerID: req.TargetID,
			Start:   now,
			End:     now + e.tn.Items.ParasiteDurationS,
			State:   model.EffectActive,
			Payload: model.EffectPayload{Item: items.Parasite, BeneficiaryID: req.UserID},
		}
		d.Effects[fx.ID] = fx
		target.AddEffect(fx.ID)
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
		GroupID: req.GroupID, UserID: req.UserID, Action: req.Action, Target: req.TargetID,
	})
	return e.result(req, map[string]any{"effect_id": fx.ID, "ends_at": fx.End})
}

func (e *Engine) handlePoke(req protocol.RequestMsg) protocol.ResultMsg {
	if req.TargetID == "" || req.TargetID == req.UserID {
		return e.fail(req, protocol.ErrSelfTarget)
	}
	var (
		code  string
		depth int64
		added int64
	)
	err := e.store.Mutate(req.GroupID, func(d *state.GroupData) error {
		if d.Group.User(req.TargetID) == nil {
			code = protocol.ErrInvalidTarget
			return nil
		}
		fx := sched.ActiveOfKind(d, req.TargetID, model.EffectStatusTransform)
		if fx == nil {
			code = protocol.ErrInvalidTarget
			return nil
		}
		added = rollRange(e.rng, e.tn.Items.PokeDepthMin, e.tn.Items.PokeDepthMax)
		fx.Payload.Depth += added
		depth = fx.Payload.Depth
		d.TouchEffects()
		return nil
	})
	if err != nil {
		return e.fail(req, protocol.ErrInternal)
	}
	if code != "" {
		return e.fail(req, code)
	}
	return e.result(req, map[string]any{"added": added, "depth": depth})
}
