package tuning

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

type Tuning struct {
	ProtocolVersion string `yaml:"protocol_version"`

	Register Register `yaml:"register"`
	Growth   Growth   `yaml:"growth"`
	Duel     Duel     `yaml:"duel"`
	Lock     Lock     `yaml:"lock"`
	SignIn   SignIn   `yaml:"sign_in"`
	Work     Work     `yaml:"work"`
	Tax      Tax      `yaml:"tax"`
	Items    Items    `yaml:"items"`
	Market   Market   `yaml:"market"`
	Giveaway Giveaway `yaml:"giveaway"`
}

type Register struct {
	StartLength   int64 `yaml:"start_length"`
	StartHardness int   `yaml:"start_hardness"`
	StartCoins    int64 `yaml:"start_coins"`
}

// Growth is the grow action. One cooldown stamp, two odds regimes branching
// on elapsed time since the last use.
type Growth struct {
	CooldownS     int64 `yaml:"cooldown_s"`      // below this: rejected
	LongElapsedS  int64 `yaml:"long_elapsed_s"`  // above this: the better table
	ShortGainPct  int   `yaml:"short_gain_pct"`  // remainder after gain+loss is "nothing"
	ShortLossPct  int   `yaml:"short_loss_pct"`
	ShortGainMin  int64 `yaml:"short_gain_min"`
	ShortGainMax  int64 `yaml:"short_gain_max"`
	ShortLossMin  int64 `yaml:"short_loss_min"`
	ShortLossMax  int64 `yaml:"short_loss_max"`
	LongGainPct   int   `yaml:"long_gain_pct"`
	LongLossPct   int   `yaml:"long_loss_pct"`
	LongGainMin   int64 `yaml:"long_gain_min"`
	LongGainMax   int64 `yaml:"long_gain_max"`
	LongLossMin   int64 `yaml:"long_loss_min"`
	LongLossMax   int64 `yaml:"long_loss_max"`
	BypassGainMin int64 `yaml:"bypass_gain_min"` // viagra-charge forced gain
	BypassGainMax int64 `yaml:"bypass_gain_max"`
}

type Duel struct {
	CooldownS int64 `yaml:"cooldown_s"`

	GainMin int64 `yaml:"gain_min"`
	GainMax int64 `yaml:"gain_max"`
	LossMin int64 `yaml:"loss_min"`
	LossMax int64 `yaml:"loss_max"`

	UnderdogGap       int64 `yaml:"underdog_gap"` // winner behind by at least this
	UnderdogExtraMin  int64 `yaml:"underdog_extra_min"`
	UnderdogExtraMax  int64 `yaml:"underdog_extra_max"`
	PlunderGap        int64 `yaml:"plunder_gap"`   // gap beyond which the smaller winner plunders
	PlunderPct        int64 `yaml:"plunder_pct"`   // percent of loser's remaining stat
	OverreachGap      int64 `yaml:"overreach_gap"` // loser ahead by at least this
	OverreachExtraMin int64 `yaml:"overreach_extra_min"`
	OverreachExtraMax int64 `yaml:"overreach_extra_max"`

	DecayPct int `yaml:"decay_pct"` // per-participant hardness decay chance

	DrawGap          int64 `yaml:"draw_gap"` // at most this apart for the draw tail
	DrawPermille     int   `yaml:"draw_permille"`
	BrittleHardness  int   `yaml:"brittle_hardness"`
	BrittlePermille  int   `yaml:"brittle_permille"`
	CollapseGap      int64 `yaml:"collapse_gap"`
	CollapsePermille int   `yaml:"collapse_permille"`
}

type Lock struct {
	PerTargetCooldownS int64 `yaml:"per_target_cooldown_s"`
	WindowS            int64 `yaml:"window_s"`
	WindowMax          int   `yaml:"window_max"`
	GainPct            int   `yaml:"gain_pct"`
	LossPct            int   `yaml:"loss_pct"`
	BackfirePct        int   `yaml:"backfire_pct"`
	DeltaMin           int64 `yaml:"delta_min"`
	DeltaMax           int64 `yaml:"delta_max"`
}

type SignIn struct {
	Tiers []SignInTier `yaml:"tiers"`
}

// SignInTier pays [Min,Max] coins when length is strictly below UpTo.
// UpTo < 0 means "no upper bound" and must come last.
type SignInTier struct {
	UpTo int64 `yaml:"up_to"`
	Min  int64 `yaml:"min"`
	Max  int64 `yaml:"max"`
}

type Work struct {
	CoinsPerHour  int64 `yaml:"coins_per_hour"`
	MaxHours      int   `yaml:"max_hours"`
	CancelPenalty int64 `yaml:"cancel_penalty"`
}

type Tax struct {
	// Brackets are ordered; gross amounts up to and including UpTo use
	// RatePct. UpTo < 0 is the open top bracket.
	Brackets []TaxBracket `yaml:"brackets"`
}

type TaxBracket struct {
	UpTo    int64 `yaml:"up_to"`
	RatePct int64 `yaml:"rate_pct"`
}

type Items struct {
	ViagraPrice   int64 `yaml:"viagra_price"`
	ViagraCharges int   `yaml:"viagra_charges"`

	SurgeryPrice     int64 `yaml:"surgery_price"`
	SurgeryDoublePct int   `yaml:"surgery_double_pct"`

	PillsPrice int64 `yaml:"pills_price"`

	RingPrice   int64 `yaml:"ring_price"`
	UnlockPrice int64 `yaml:"unlock_price"`

	TransformPrice     int64 `yaml:"transform_price"`
	TransformDurationS int64 `yaml:"transform_duration_s"`
	TransformWorkMult  int   `yaml:"transform_work_mult"`
	PokeDepthMin       int64 `yaml:"poke_depth_min"`
	PokeDepthMax       int64 `yaml:"poke_depth_max"`

	ExchangerPrice   int64 `yaml:"exchanger_price"`
	ExchangerSwapPct int   `yaml:"exchanger_swap_pct"`

	FairyPrice     int64 `yaml:"fairy_price"`
	FairyDurationS int64 `yaml:"fairy_duration_s"`
	FairyGainMin   int64 `yaml:"fairy_gain_min"`
	FairyGainMax   int64 `yaml:"fairy_gain_max"`

	MysteryPrice       int64   `yaml:"mystery_price"`
	MysteryCoinPct     int     `yaml:"mystery_coin_pct"`
	MysteryCoinPrizes  []int64 `yaml:"mystery_coin_prizes"`
	MysteryCoinWeights []int   `yaml:"mystery_coin_weights"`

	ParasitePrice     int64 `yaml:"parasite_price"`
	ParasiteDurationS int64 `yaml:"parasite_duration_s"`
}

type Market struct {
	MinListLength  int64 `yaml:"min_list_length"`
	RecycleDivisor int64 `yaml:"recycle_divisor"` // payout = ceil(length / divisor)
}

type Giveaway struct {
	ExpiryS   int64 `yaml:"expiry_s"`
	MaxShares int   `yaml:"max_shares"`
}

// Default returns the shipped balance values. Load overlays a yaml file on
// top of these, so a partial file only overrides what it names.
func Default() Tuning {
	return Tuning{
		ProtocolVersion: "1.0",
		Register: Register{
			StartLength:   10,
			StartHardness: 1,
			StartCoins:    0,
		},
		Growth: Growth{
			CooldownS:     600,
			LongElapsedS:  1800,
			ShortGainPct:  40,
			ShortLossPct:  30,
			ShortGainMin:  2, ShortGainMax: 5,
			ShortLossMin:  1, ShortLossMax: 3,
			LongGainPct:   70,
			LongLossPct:   20,
			LongGainMin:   3, LongGainMax: 6,
			LongLossMin:   1, LongLossMax: 2,
			BypassGainMin: 10, BypassGainMax: 20,
		},
		Duel: Duel{
			CooldownS: 600,
			GainMin:   0, GainMax: 3,
			LossMin:   1, LossMax: 2,
			UnderdogGap:      20,
			UnderdogExtraMin: 0, UnderdogExtraMax: 5,
			PlunderGap:       10,
			PlunderPct:       20,
			OverreachGap:     20,
			OverreachExtraMin: 2, OverreachExtraMax: 6,
			DecayPct:         30,
			DrawGap:          5,
			DrawPermille:     75,
			BrittleHardness:  2,
			BrittlePermille:  50,
			CollapseGap:      30,
			CollapsePermille: 25,
		},
		Lock: Lock{
			PerTargetCooldownS: 300,
			WindowS:            300,
			WindowMax:          3,
			GainPct:            20,
			LossPct:            60,
			BackfirePct:        10,
			DeltaMin:           1, DeltaMax: 5,
		},
		SignIn: SignIn{
			Tiers: []SignInTier{
				{UpTo: 50, Min: 10, Max: 20},
				{UpTo: 100, Min: 20, Max: 30},
				{UpTo: -1, Min: 30, Max: 40},
			},
		},
		Work: Work{
			CoinsPerHour:  30,
			MaxHours:      6,
			CancelPenalty: 20,
		},
		Tax: Tax{
			Brackets: []TaxBracket{
				{UpTo: 100, RatePct: 5},
				{UpTo: 1000, RatePct: 10},
				{UpTo: 5000, RatePct: 20},
				{UpTo: -1, RatePct: 30},
			},
		},
		Items: Items{
			ViagraPrice:   80,
			ViagraCharges: 5,

			SurgeryPrice:     400,
			SurgeryDoublePct: 30,

			PillsPrice: 100,

			RingPrice:   150,
			UnlockPrice: 150,

			TransformPrice:     100,
			TransformDurationS: 24 * 3600,
			TransformWorkMult:  2,
			PokeDepthMin:       1,
			PokeDepthMax:       5,

			ExchangerPrice:   500,
			ExchangerSwapPct: 5,

			FairyPrice:     50,
			FairyDurationS: 3600,
			FairyGainMin:   2,
			FairyGainMax:   5,

			MysteryPrice:       150,
			MysteryCoinPct:     50,
			MysteryCoinPrizes:  []int64{20, 50, 100, 200, 500},
			MysteryCoinWeights: []int{35, 30, 20, 10, 5},

			ParasitePrice:     200,
			ParasiteDurationS: 24 * 3600,
		},
		Market: Market{
			MinListLength:  20,
			RecycleDivisor: 20,
		},
		Giveaway: Giveaway{
			ExpiryS:   24 * 3600,
			MaxShares: 100,
		},
	}
}

func Load(path string) (Tuning, error) {
	t := Default()
	raw, err := os.ReadFile(path)
	if err != nil {
		return t, err
	}
	if err := yaml.Unmarshal(raw, &t); err != nil {
		return t, fmt.Errorf("tuning.yaml: %w", err)
	}
	return t, nil
}
