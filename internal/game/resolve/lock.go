package resolve

import (
	"growarena.gg/internal/game/model"
	"growarena.gg/internal/game/tuning"
)

type LockResult string

const (
	LockGain     LockResult = "gain"     // target grows anyway
	LockLoss     LockResult = "loss"     // target shrinks
	LockBackfire LockResult = "backfire" // actor shrinks instead
	LockNothing  LockResult = "nothing"
)

type LockOutcome struct {
	Result     LockResult
	Delta      int64 // absolute change applied to whoever it hit
	Redirected int64
}

// Lock resolves one harassment attempt against the target. Rate limiting
// happens in the caller; this is pure outcome arithmetic.
func Lock(actor, target, targetBeneficiary *model.UserRecord, tn tuning.Lock, r Rand) LockOutcome {
	p := r.Intn(100)
	d := roll(r, tn.DeltaMin, tn.DeltaMax)
	switch {
	case p < tn.GainPct:
		kept, red := applyGain(target, targetBeneficiary, d)
		return LockOutcome{Result: LockGain, Delta: kept, Redirected: red}
	case p < tn.GainPct+tn.LossPct:
		return LockOutcome{Result: LockLoss, Delta: applyLoss(target, d)}
	case p < tn.GainPct+tn.LossPct+tn.BackfirePct:
		return LockOutcome{Result: LockBackfire, Delta: applyLoss(actor, d)}
	default:
		return LockOutcome{Result: LockNothing}
	}
}
