package resolve

import (
	"growarena.gg/internal/game/model"
	"growarena.gg/internal/game/tuning"
)

type GrowthRegime string

const (
	GrowthShort  GrowthRegime = "short"
	GrowthLong   GrowthRegime = "long"
	GrowthBypass GrowthRegime = "bypass"
)

type GrowthOutcome struct {
	Regime     GrowthRegime
	Delta      int64 // signed net change to the actor
	Redirected int64 // portion siphoned by a parasite
	HardnessUp bool
}

// Growth resolves one grow attempt. elapsed is seconds since the last grow
// (-1 for never); the caller has already verified the cooldown (or a bypass
// charge) and the regime branches purely on elapsed time against the long
// threshold. bypass forces the fixed favorable delta.
func Growth(u, beneficiary *model.UserRecord, tn tuning.Growth, elapsed int64, bypass bool, r Rand) GrowthOutcome {
	if bypass {
		kept, red := applyGain(u, beneficiary, roll(r, tn.BypassGainMin, tn.BypassGainMax))
		return GrowthOutcome{Regime: GrowthBypass, Delta: kept, Redirected: red}
	}

	long := elapsed < 0 || elapsed >= tn.LongElapsedS
	var out GrowthOutcome
	p := r.Intn(100)
	if long {
		out.Regime = GrowthLong
		switch {
		case p < tn.LongGainPct:
			kept, red := applyGain(u, beneficiary, roll(r, tn.LongGainMin, tn.LongGainMax))
			out.Delta, out.Redirected = kept, red
			if u.Hardness < model.MaxHardness {
				u.Hardness++
				out.HardnessUp = true
			}
		case p < tn.LongGainPct+tn.LongLossPct:
			out.Delta = -applyLoss(u, roll(r, tn.LongLossMin, tn.LongLossMax))
		}
		return out
	}

	out.Regime = GrowthShort
	switch {
	case p < tn.ShortGainPct:
		kept, red := applyGain(u, beneficiary, roll(r, tn.ShortGainMin, tn.ShortGainMax))
		out.Delta, out.Redirected = kept, red
	case p < tn.ShortGainPct+tn.ShortLossPct:
		out.Delta = -applyLoss(u, roll(r, tn.ShortLossMin, tn.ShortLossMax))
	}
	return out
}
