package items

import (
	"growarena.gg/internal/game/model"
	"growarena.gg/internal/game/resolve"
	"growarena.gg/internal/game/tuning"
)

// Declarative shop catalog. Each entry names its settlement class; the
// engine drives purchases off the table instead of a per-item handler map.

type Class string

const (
	// ClassInstant settles entirely inside the purchase mutation.
	ClassInstant Class = "instant"
	// ClassArm sets a marker consumed by a later action (ring, parasite).
	ClassArm Class = "arm"
	// ClassEffect opens a scheduled effect (transform, fairy).
	ClassEffect Class = "effect"
)

const (
	Viagra     = "viagra"
	Surgery    = "surgery"
	Pills      = "pills"
	Ring       = "ring"
	Transform  = "transform"
	Exchanger  = "exchanger"
	Fairy      = "fairy"
	MysteryBox = "mystery_box"
	Parasite   = "parasite"
)

type Def struct {
	ID    string
	Name  string
	Price int64
	Class Class
}

// Catalog builds the purchasable set with prices from tuning.
func Catalog(tn tuning.Items) []Def {
	return []Def{
		{ID: Viagra, Name: "Viagra", Price: tn.ViagraPrice, Class: ClassInstant},
		{ID: Surgery, Name: "Surgery", Price: tn.SurgeryPrice, Class: ClassInstant},
		{ID: Pills, Name: "Victory Pills", Price: tn.PillsPrice, Class: ClassInstant},
		{ID: Ring, Name: "Sterilization Ring", Price: tn.RingPrice, Class: ClassArm},
		{ID: Transform, Name: "Transform Potion", Price: tn.TransformPrice, Class: ClassEffect},
		{ID: Exchanger, Name: "Length Exchanger", Price: tn.ExchangerPrice, Class: ClassArm},
		{ID: Fairy, Name: "Spring Fairy", Price: tn.FairyPrice, Class: ClassEffect},
		{ID: MysteryBox, Name: "Mystery Box", Price: tn.MysteryPrice, Class: ClassInstant},
		{ID: Parasite, Name: "Parasite", Price: tn.ParasitePrice, Class: ClassArm},
	}
}

func Find(catalog []Def, id string) (Def, bool) {
	for _, d := range catalog {
		if d.ID == id {
			return d, true
		}
	}
	return Def{}, false
}

// ApplySurgery gambles the user's length: double or halve (floor 1).
func ApplySurgery(u *model.UserRecord, tn tuning.Items, r resolve.Rand) (doubled bool) {
	if r.Intn(100) < tn.SurgeryDoublePct {
		u.Length *= 2
		return true
	}
	u.Length /= 2
	if u.Length < 1 {
		u.Length = 1
	}
	return false
}

// ApplyExchange attempts the armed length swap against a target.
func ApplyExchange(u, target *model.UserRecord, tn tuning.Items, r resolve.Rand) (swapped bool) {
	if r.Intn(100) < tn.ExchangerSwapPct {
		u.Length, target.Length = target.Length, u.Length
		return true
	}
	return false
}

// MysteryRoll picks the mystery box prize: either a coin amount drawn from
// the weighted table or another item id to apply.
func MysteryRoll(tn tuning.Items, r resolve.Rand) (coins int64, itemID string) {
	if r.Intn(100) < tn.MysteryCoinPct {
		return weightedCoin(tn, r), ""
	}
	rollable := []string{Viagra, Pills, Fairy, Surgery}
	return 0, rollable[r.Intn(len(rollable))]
}

func weightedCoin(tn tuning.Items, r resolve.Rand) int64 {
	if len(tn.MysteryCoinPrizes) == 0 {
		return 0
	}
	total := 0
	for _, w := range tn.MysteryCoinWeights {
		total += w
	}
	if total <= 0 || len(tn.MysteryCoinWeights) != len(tn.MysteryCoinPrizes) {
		return tn.MysteryCoinPrizes[r.Intn(len(tn.MysteryCoinPrizes))]
	}
	pick := r.Intn(total)
	for i, w := range tn.MysteryCoinWeights {
		if pick < w {
			return tn.MysteryCoinPrizes[i]
		}
		pick -= w
	}
	return tn.MysteryCoinPrizes[len(tn.MysteryCoinPrizes)-1]
}
