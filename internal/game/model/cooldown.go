package model

// CooldownBook is one user's timing state inside a group: last-fired stamps
// keyed by action (optionally per target) and rolling rate windows.
type CooldownBook struct {
	Stamps  map[string]int64
	Windows map[string]RateWindow
}

// RateWindow counts occurrences since Start. When Start falls out of the
// window span the counter resets.
type RateWindow struct {
	Start int64
	Count int
}

func NewCooldownBook() *CooldownBook {
	return &CooldownBook{
		Stamps:  map[string]int64{},
		Windows: map[string]RateWindow{},
	}
}
