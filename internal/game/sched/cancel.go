package sched

import (
	"growarena.gg/internal/game/economy"
	"growarena.gg/internal/game/model"
	"growarena.gg/internal/game/state"
	"growarena.gg/internal/protocol"
)

type CancelOutcome struct {
	Kind    model.EffectKind
	Payout  int64 // coins credited by the cancel settlement
	Tax     int64
	Penalty int64
}

// Cancel settles an Active effect early with its cancel-specific settlement.
// The terminal mark and the settlement apply in one mutation, so a timer
// that fires concurrently finds the record gone and does nothing.
func (s *Scheduler) Cancel(groupID, effectID string) (CancelOutcome, string) {
	var out CancelOutcome
	code := ""
	err := s.store.Mutate(groupID, func(d *state.GroupData) error {
		e, ok := d.Effects[effectID]
		if !ok || !e.Active() {
			code = protocol.ErrInvalidTarget
			return nil
		}
		now := s.now().Unix()
		owner := d.Group.User(e.OwnerID)
		out.Kind = e.Kind

		switch e.Kind {
		case model.EffectTimedWork:
			elapsed := now - e.Start
			if elapsed < 0 {
				elapsed = 0
			}
			dur := e.End - e.Start
			gross := int64(0)
			if dur > 0 {
				gross = e.Payload.TotalReward * elapsed / dur
			}
			net, tax := economy.Process(d.Group, s.tn.Tax.Brackets, gross)
			out.Penalty = s.tn.Work.CancelPenalty
			payout := net - out.Penalty
			if payout < 0 {
				payout = 0
			}
			if owner != nil {
				owner.Coins += payout
			}
			out.Payout, out.Tax = payout, tax

		case model.EffectStatusTransform:
			if owner != nil {
				owner.Length = e.Payload.OriginalLength + e.Payload.Depth
				owner.Items.SavedDepth = e.Payload.Depth
			}

		case model.EffectPooledGiveaway:
			if ga, gok := d.Giveaways[e.Payload.GiveawayID]; gok {
				if ga.Remaining > 0 {
					if sender := d.Group.User(ga.SenderID); sender != nil {
						sender.Coins += ga.Remaining
					}
					out.Payout = ga.Remaining
				}
				delete(d.Giveaways, e.Payload.GiveawayID)
			}
		}

		e.State = model.EffectCancelled
		if owner != nil {
			owner.RemoveEffect(e.ID)
		}
		delete(d.Effects, e.ID)
		d.TouchGroups()
		d.TouchEffects()
		s.record(e, "cancelled", out.Payout, out.Penalty)
		return nil
	})
	if err != nil && s.log != nil {
		s.log.Printf("sched: cancel %s/%s: %v", groupID, effectID, err)
	}
	if code != "" {
		return out, code
	}
	s.dropTimer(effectID)
	return out, ""
}
