package economy

import (
	"growarena.gg/internal/game/model"
	"growarena.gg/internal/game/tuning"
)

// Process runs a gross credit through the group's tax brackets and credits
// the tax to the treasury. The caller credits net to the earner inside the
// same mutation, so treasury and wallet move together or not at all.
//
// Bracket edges are inclusive on the low side: a gross exactly on an up_to
// boundary uses that bracket's rate. Tax rounds half-up; net+tax==gross.
func Process(g *model.GroupRecord, brackets []tuning.TaxBracket, gross int64) (net, tax int64) {
	if gross <= 0 || !g.TaxEnabled {
		return gross, 0
	}
	rate := int64(0)
	for _, b := range brackets {
		if b.UpTo < 0 || gross <= b.UpTo {
			rate = b.RatePct
			break
		}
	}
	tax = (gross*rate + 50) / 100
	net = gross - tax
	g.Treasury += tax
	return net, tax
}
