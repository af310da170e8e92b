package resolve

import (
	"growarena.gg/internal/game/model"
	"growarena.gg/internal/game/tuning"
)

type DuelInput struct {
	Attacker *model.UserRecord
	Defender *model.UserRecord

	// Parasite beneficiaries for each side's gains, nil when unattached.
	AttackerBeneficiary *model.UserRecord
	DefenderBeneficiary *model.UserRecord

	ForcedWin bool   // attacker holds the guaranteed-victory consumable
	Day       string // local date key for the daily streak counter
}

type DuelOutcome struct {
	AttackerWon bool
	P           float64

	Gain       int64 // winner's net gain after redirection
	Redirected int64
	Loss       int64 // loser's base loss

	UnderdogExtra  int64
	Plundered      int64
	OverreachExtra int64

	AttackerDecayed bool
	DefenderDecayed bool

	// Tail is the single tail event applied, if any: "draw", "brittle",
	// "collapse".
	Tail string
}

// WinProbability computes the attacker's win chance from both records. The
// result is always inside [0.2, 0.8]; the forced-win consumable bypasses
// this function entirely.
func WinProbability(att, def *model.UserRecord) float64 {
	maxLen := att.Length
	if def.Length > maxLen {
		maxLen = def.Length
	}
	if maxLen < 1 {
		maxLen = 1
	}
	p := 0.5 +
		float64(att.Length-def.Length)/float64(maxLen)*0.2 +
		float64(att.Hardness-def.Hardness)*0.05
	if p < 0.2 {
		p = 0.2
	}
	if p > 0.8 {
		p = 0.8
	}
	return p
}

// Duel resolves one duel as a single transaction over both records. The
// caller holds the group lock and persists both records together afterwards.
func Duel(in DuelInput, tn tuning.Duel, r Rand) DuelOutcome {
	att, def := in.Attacker, in.Defender
	var out DuelOutcome

	out.P = WinProbability(att, def)
	if in.ForcedWin {
		out.P = 1.0
		out.AttackerWon = true
	} else {
		out.AttackerWon = r.Float64() < out.P
	}

	winner, loser := att, def
	winnerBen := in.AttackerBeneficiary
	if !out.AttackerWon {
		winner, loser = def, att
		winnerBen = in.DefenderBeneficiary
	}
	// Pre-duel stats drive every gap rule.
	gap := winner.Length - loser.Length
	winnerHard, loserHard := winner.Hardness, loser.Hardness

	gain := roll(r, tn.GainMin, tn.GainMax)
	kept, red := applyGain(winner, winnerBen, gain)
	out.Gain, out.Redirected = kept, red
	out.Loss = applyLoss(loser, roll(r, tn.LossMin, tn.LossMax))

	// Modifiers in fixed order: underdog bonus, plunder, overreach.
	if gap <= -tn.UnderdogGap && winnerHard < loserHard {
		extra := roll(r, tn.UnderdogExtraMin, tn.UnderdogExtraMax)
		k, rd := applyGain(winner, winnerBen, extra)
		out.UnderdogExtra = k
		out.Redirected += rd
	}
	if -gap > tn.PlunderGap {
		take := loser.Length * tn.PlunderPct / 100
		take = applyLoss(loser, take)
		k, rd := applyGain(winner, winnerBen, take)
		out.Plundered = k
		out.Redirected += rd
	}
	if gap >= tn.OverreachGap {
		out.OverreachExtra = applyLoss(loser, roll(r, tn.OverreachExtraMin, tn.OverreachExtraMax))
	}

	// Stochastic durability decay, each side independently.
	if pct(r, tn.DecayPct) && att.Hardness > model.MinHardness {
		att.Hardness--
		out.AttackerDecayed = true
	}
	if pct(r, tn.DecayPct) && def.Hardness > model.MinHardness {
		def.Hardness--
		out.DefenderDecayed = true
	}

	// Mutually exclusive tail events, priority order, at most one applies.
	absGap := gap
	if absGap < 0 {
		absGap = -absGap
	}
	switch {
	case absGap <= tn.DrawGap && permille(r, tn.DrawPermille):
		out.Tail = "draw"
	case (att.Hardness <= tn.BrittleHardness || def.Hardness <= tn.BrittleHardness) && permille(r, tn.BrittlePermille):
		out.Tail = "brittle"
		halve(att)
		halve(def)
	case absGap >= tn.CollapseGap && permille(r, tn.CollapsePermille):
		out.Tail = "collapse"
		halve(att)
		halve(def)
	}

	bumpStreak(winner, in.Day)
	resetStreak(loser, in.Day)
	return out
}

func halve(u *model.UserRecord) {
	if u.Length > 1 {
		u.Length /= 2
		if u.Length < 1 {
			u.Length = 1
		}
	}
}

func bumpStreak(u *model.UserRecord, day string) {
	if u.StreakDay != day {
		u.StreakDay = day
		u.TodayMaxWinStreak = 0
	}
	u.WinStreak++
	if u.WinStreak > u.MaxWinStreak {
		u.MaxWinStreak = u.WinStreak
	}
	if u.WinStreak > u.TodayMaxWinStreak {
		u.TodayMaxWinStreak = u.WinStreak
	}
}

func resetStreak(u *model.UserRecord, day string) {
	if u.StreakDay != day {
		u.StreakDay = day
		u.TodayMaxWinStreak = 0
	}
	u.WinStreak = 0
}
