package protocol

const (
	// Protocol/transport validation.
	ErrProtoBadRequest = "E_PROTO_BAD_REQUEST"

	// Registration/state.
	ErrNotRegistered     = "E_NOT_REGISTERED"
	ErrAlreadyRegistered = "E_ALREADY_REGISTERED"
	ErrPluginDisabled    = "E_PLUGIN_DISABLED"

	// Timing.
	ErrOnCooldown  = "E_ON_COOLDOWN"
	ErrRateLimited = "E_RATE_LIMITED"

	// Target/amount validation.
	ErrInvalidTarget = "E_INVALID_TARGET"
	ErrSelfTarget    = "E_SELF_TARGET"
	ErrInvalidAmount = "E_INVALID_AMOUNT"

	// Economy.
	ErrInsufficientFunds = "E_INSUFFICIENT_FUNDS"

	// Effects.
	ErrTargetBusy       = "E_TARGET_BUSY"
	ErrAlreadyHasEffect = "E_ALREADY_HAS_EFFECT"

	ErrInternal = "E_INTERNAL"
)

var knownCodes = map[string]struct{}{
	ErrProtoBadRequest:   {},
	ErrNotRegistered:     {},
	ErrAlreadyRegistered: {},
	ErrPluginDisabled:    {},
	ErrOnCooldown:        {},
	ErrRateLimited:       {},
	ErrInvalidTarget:     {},
	ErrSelfTarget:        {},
	ErrInvalidAmount:     {},
	ErrInsufficientFunds: {},
	ErrTargetBusy:        {},
	ErrAlreadyHasEffect:  {},
	ErrInternal:          {},
}

func IsKnownCode(code string) bool {
	if code == "" {
		return true
	}
	_, ok := knownCodes[code]
	return ok
}
