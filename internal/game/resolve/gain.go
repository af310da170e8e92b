package resolve

import "growarena.gg/internal/game/model"

// Credit applies a positive length delta through the parasite redirection
// rule; other packages use it for item-driven gains.
func Credit(u, beneficiary *model.UserRecord, delta int64) (kept, redirected int64) {
	return applyGain(u, beneficiary, delta)
}

// applyGain credits a positive length delta to u. If a parasite beneficiary
// is attached, a rounded-up half of the delta is redirected to them inside
// the same transaction.
func applyGain(u, beneficiary *model.UserRecord, delta int64) (kept, redirected int64) {
	if delta <= 0 {
		return 0, 0
	}
	if beneficiary != nil && beneficiary != u {
		redirected = (delta + 1) / 2
	}
	kept = delta - redirected
	u.Length += kept
	if beneficiary != nil && redirected > 0 {
		beneficiary.Length += redirected
	}
	return kept, redirected
}

// applyLoss debits a length delta, flooring the stat at 1.
func applyLoss(u *model.UserRecord, delta int64) int64 {
	if delta <= 0 {
		return 0
	}
	if u.Length-delta < 1 {
		delta = u.Length - 1
		if delta < 0 {
			delta = 0
		}
	}
	u.Length -= delta
	return delta
}
