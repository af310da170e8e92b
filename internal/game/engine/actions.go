package engine

import (
	"sort"

	"growarena.gg/internal/game/cooldown"
	"growarena.gg/internal/game/model"
	"growarena.gg/internal/game/resolve"
	"growarena.gg/internal/game/sched"
	"growarena.gg/internal/game/state"
	plog "growarena.gg/internal/persistence/log"
	"growarena.gg/internal/protocol"
)

func (e *Engine) handleGrow(req protocol.RequestMsg) protocol.ResultMsg {
	var (
		code string
		rem  int64
		out  resolve.GrowthOutcome
	)
	err := e.store.Mutate(req.GroupID, func(d *state.GroupData) error {
		u := d.Group.User(req.UserID)
		if u.Items.Sterilized {
			code = protocol.ErrTargetBusy
			return nil
		}
		if sched.ActiveOfKind(d, req.UserID, model.EffectStatusTransform) != nil {
			code = protocol.ErrTargetBusy
			return nil
		}
		now := e.now().Unix()
		book := d.Book(req.UserID)
		elapsed := cooldown.Elapsed(book, protocol.ActionGrow, "", now)

		bypass := false
		if on, r := cooldown.Check(book, protocol.ActionGrow, "", e.tn.Growth.CooldownS, now); on {
			if u.Items.Viagra > 0 {
				u.Items.Viagra--
				bypass = true
			} else {
				code, rem = protocol.ErrOnCooldown, r
				return nil
			}
		}

		out = resolve.Growth(u, sched.ParasiteBeneficiary(d, req.UserID), e.tn.Growth, elapsed, bypass, e.rng)
		cooldown.Record(book, protocol.ActionGrow, "", now)
		d.TouchGroups()
		d.TouchCooldowns()
		return nil
	})
	if err != nil {
		return e.fail(req, protocol.ErrInternal)
	}
	if code == protocol.ErrOnCooldown {
		return e.failRemaining(req, code, rem)
	}
	if code != "" {
		return e.fail(req, code)
	}
	e.writeAudit(plog.AuditEntry{
		GroupID: req.GroupID, UserID: req.UserID, Action: req.Action,
		LengthDelta: out.Delta,
	})
	return e.result(req, map[string]any{
		"regime":      string(out.Regime),
		"delta":       out.Delta,
		"redirected":  out.Redirected,
		"hardness_up": out.HardnessUp,
	})
}

func (e *Engine) handleDuel(req protocol.RequestMsg) protocol.ResultMsg {
	if req.TargetID == "" {
		return e.fail(req, protocol.ErrProtoBadRequest)
	}
	if req.TargetID == req.UserID {
		return e.fail(req, protocol.ErrSelfTarget)
	}
	var (
		code string
		rem  int64
		out  resolve.DuelOutcome
	)
	err := e.store.Mutate(req.GroupID, func(d *state.GroupData) error {
		att := d.Group.User(req.UserID)
		def := d.Group.User(req.TargetID)
		if def == nil {
			code = protocol.ErrInvalidTarget
			return nil
		}
		if sched.ActiveOfKind(d, req.UserID, model.EffectStatusTransform) != nil ||
			sched.ActiveOfKind(d, req.TargetID, model.EffectStatusTransform) != nil {
			code = protocol.ErrTargetBusy
			return nil
		}
		now := e.now().Unix()
		book := d.Book(req.UserID)
		if on, r := cooldown.Check(book, protocol.ActionDuel, "", e.tn.Duel.CooldownS, now); on {
			code, rem = protocol.ErrOnCooldown, r
			return nil
		}

		forced := att.Items.Pills
		if forced {
			att.Items.Pills = false
		}
		out = resolve.Duel(resolve.DuelInput{
			Attacker:            att,
			Defender:            def,
			AttackerBeneficiary: sched.ParasiteBeneficiary(d, req.UserID),
			DefenderBeneficiary: sched.ParasiteBeneficiary(d, req.TargetID),
			ForcedWin:           forced,
			Day:                 e.dayKey(e.now()),
		}, e.tn.Duel, e.rng)
		cooldown.Record(book, protocol.ActionDuel, "", now)
		d.TouchGroups()
		d.TouchCooldowns()
		return nil
	})
	if err != nil {
		return e.fail(req, protocol.ErrInternal)
	}
	if code == protocol.ErrOnCooldown {
		return e.failRemaining(req, code, rem)
	}
	if code != "" {
		return e.fail(req, code)
	}
	e.writeAudit(plog.AuditEntry{
		GroupID: req.GroupID, UserID: req.UserID, Action: req.Action, Target: req.TargetID,
	})
	return e.result(req, map[string]any{
		"won":             out.AttackerWon,
		"p":               out.P,
		"gain":            out.Gain,
		"loss":            out.Loss,
		"underdog_extra":  out.UnderdogExtra,
		"plundered":       out.Plundered,
		"overreach_extra": out.OverreachExtra,
		"redirected":      out.Redirected,
		"tail":            out.Tail,
	})
}

func (e *Engine) handleLock(req protocol.RequestMsg) protocol.ResultMsg {
	if req.TargetID == "" {
		return e.fail(req, protocol.ErrProtoBadRequest)
	}
	if req.TargetID == req.UserID {
		return e.fail(req, protocol.ErrSelfTarget)
	}
	var (
		code string
		rem  int64
		out  resolve.LockOutcome
	)
	err := e.store.Mutate(req.GroupID, func(d *state.GroupData) error {
		actor := d.Group.User(req.UserID)
		target := d.Group.User(req.TargetID)
		if target == nil {
			code = protocol.ErrInvalidTarget
			return nil
		}
		if sched.ActiveOfKind(d, req.TargetID, model.EffectStatusTransform) != nil {
			code = protocol.ErrTargetBusy
			return nil
		}
		now := e.now().Unix()
		book := d.Book(req.UserID)
		if on, r := cooldown.Check(book, protocol.ActionLock, req.TargetID, e.tn.Lock.PerTargetCooldownS, now); on {
			code, rem = protocol.ErrOnCooldown, r
			return nil
		}
		if cooldown.Limited(book, protocol.ActionLock, e.tn.Lock.WindowS, e.tn.Lock.WindowMax, now) {
			code = protocol.ErrRateLimited
			return nil
		}

		out = resolve.Lock(actor, target, sched.ParasiteBeneficiary(d, req.TargetID), e.tn.Lock, e.rng)
		cooldown.Record(book, protocol.ActionLock, req.TargetID, now)
		cooldown.Count(book, protocol.ActionLock, e.tn.Lock.WindowS, now)
		d.TouchGroups()
		d.TouchCooldowns()
		return nil
	})
	if err != nil {
		return e.fail(req, protocol.ErrInternal)
	}
	if code == protocol.ErrOnCooldown {
		return e.failRemaining(req, code, rem)
	}
	if code != "" {
		return e.fail(req, code)
	}
	e.writeAudit(plog.AuditEntry{
		GroupID: req.GroupID, UserID: req.UserID, Action: req.Action, Target: req.TargetID,
	})
	return e.result(req, map[string]any{
		"result":     string(out.Result),
		"delta":      out.Delta,
		"redirected": out.Redirected,
	})
}

func (e *Engine) handleSignIn(req protocol.RequestMsg) protocol.ResultMsg {
	var (
		code   string
		reward int64
	)
	today := e.dayKey(e.now())
	err := e.store.Mutate(req.GroupID, func(d *state.GroupData) error {
		u := d.Group.User(req.UserID)
		if u.LastSign > 0 && e.dayKey(timeUnix(u.LastSign)) == today {
			code = protocol.ErrOnCooldown
			return nil
		}
		tier := e.tn.SignIn.Tiers[len(e.tn.SignIn.Tiers)-1]
		for _, t := range e.tn.SignIn.Tiers {
			if t.UpTo >= 0 && u.Length < t.UpTo {
				tier = t
				break
			}
		}
		reward = rollRange(e.rng, tier.Min, tier.Max)
		u.Coins += reward
		u.LastSign = e.now().Unix()
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
		GroupID: req.GroupID, UserID: req.UserID, Action: req.Action, CoinsDelta: reward,
	})
	return e.result(req, map[string]any{"reward": reward})
}

func (e *Engine) handleTransfer(req protocol.RequestMsg) protocol.ResultMsg {
	code := ""
	err := e.store.Mutate(req.GroupID, func(d *state.GroupData) error {
		code = resolve.Transfer(d.Group, req.UserID, req.TargetID, req.Args.Amount)
		if code == "" {
			d.TouchGroups()
		}
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
		Target: req.TargetID, CoinsDelta: -req.Args.Amount,
	})
	return e.result(req, map[string]any{"amount": req.Args.Amount})
}

func (e *Engine) handleStatus(req protocol.RequestMsg) protocol.ResultMsg {
	target := req.TargetID
	if target == "" {
		target = req.UserID
	}
	var data map[string]any
	code := ""
	now := e.now().Unix()
	e.store.View(req.GroupID, func(d *state.GroupData) {
		u := d.Group.User(target)
		if u == nil {
			code = protocol.ErrInvalidTarget
			return
		}
		var effects []map[string]any
		for _, id := range u.ActiveEffects {
			fx, ok := d.Effects[id]
			if !ok || !fx.Active() {
				continue
			}
			effects = append(effects, map[string]any{
				"id":          fx.ID,
				"kind":        string(fx.Kind),
				"remaining_s": fx.Remaining(now),
			})
		}
		data = map[string]any{
			"nickname":             u.Nickname,
			"length":               u.Length,
			"hardness":             u.Hardness,
			"coins":                u.Coins,
			"win_streak":           u.WinStreak,
			"max_win_streak":       u.MaxWinStreak,
			"today_max_win_streak": u.TodayMaxWinStreak,
			"viagra_charges":       u.Items.Viagra,
			"sterilized":           u.Items.Sterilized,
			"effects":              effects,
		}
	})
	if code != "" {
		return e.fail(req, code)
	}
	return e.result(req, data)
}

func (e *Engine) handleRanking(req protocol.RequestMsg) protocol.ResultMsg {
	var rows []map[string]any
	e.store.View(req.GroupID, func(d *state.GroupData) {
		users := make([]*model.UserRecord, 0, len(d.Group.Users))
		for _, u := range d.Group.Users {
			users = append(users, u)
		}
		sort.Slice(users, func(i, j int) bool {
			if users[i].Length != users[j].Length {
				return users[i].Length > users[j].Length
			}
			return users[i].ID < users[j].ID
		})
		if len(users) > 10 {
			users = users[:10]
		}
		for i, u := range users {
			rows = append(rows, map[string]any{
				"rank":     i + 1,
				"user_id":  u.ID,
				"nickname": u.Nickname,
				"length":   u.Length,
				"hardness": u.Hardness,
			})
		}
	})
	return e.result(req, map[string]any{"ranking": rows})
}
