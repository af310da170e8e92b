package protocol

// Action kinds carried in REQUEST messages. The dispatcher that translates
// chat commands into these is out of process; the engine only sees the
// normalized form.
const (
	ActionRegister = "REGISTER"
	ActionGrow     = "GROW"
	ActionDuel     = "DUEL"
	ActionLock     = "LOCK"
	ActionSignIn   = "SIGN_IN"
	ActionTransfer = "TRANSFER"
	ActionStatus   = "STATUS"
	ActionRanking  = "RANKING"

	ActionWorkStart  = "WORK_START"
	ActionWorkCancel = "WORK_CANCEL"
	ActionWorkStatus = "WORK_STATUS"

	ActionBuyItem     = "BUY_ITEM"
	ActionSterilize   = "STERILIZE"
	ActionUnsterilize = "UNSTERILIZE"
	ActionExchange    = "EXCHANGE"
	ActionAttach      = "ATTACH_PARASITE"
	ActionPoke        = "POKE"

	ActionMarketView    = "MARKET_VIEW"
	ActionMarketList    = "MARKET_LIST"
	ActionMarketBuy     = "MARKET_BUY"
	ActionMarketDelist  = "MARKET_DELIST"
	ActionMarketRecycle = "MARKET_RECYCLE"

	ActionPacketSend = "PACKET_SEND"
	ActionPacketGrab = "PACKET_GRAB"

	ActionTreasuryBalance = "TREASURY_BALANCE"
	ActionTreasurySplit   = "TREASURY_SPLIT"
	ActionTreasuryPay     = "TREASURY_PAY"
	ActionTreasurySetTax  = "TREASURY_SET_TAX"

	ActionSetEnabled = "SET_ENABLED"
)

// HELLO (dispatcher -> engine)
type HelloMsg struct {
	Type            string `json:"type"`
	ProtocolVersion string `json:"protocol_version"`
	ClientName      string `json:"client_name"`
}

// WELCOME (engine -> dispatcher)
type WelcomeMsg struct {
	Type            string `json:"type"`
	ProtocolVersion string `json:"protocol_version"`
	ServerName      string `json:"server_name,omitempty"`
}

// REQUEST (dispatcher -> engine): one normalized action request.
type RequestMsg struct {
	Type            string      `json:"type"`
	ProtocolVersion string      `json:"protocol_version"`
	Seq             uint64      `json:"seq,omitempty"`
	GroupID         string      `json:"group_id"`
	UserID          string      `json:"user_id"`
	Action          string      `json:"action"`
	TargetID        string      `json:"target_id,omitempty"`
	Args            RequestArgs `json:"args,omitempty"`
}

// RequestArgs carries the optional per-action parameters. Unused fields are
// zero; each handler validates the ones it needs.
type RequestArgs struct {
	Name      string `json:"name,omitempty"`       // REGISTER: display name
	Amount    int64  `json:"amount,omitempty"`     // TRANSFER, PACKET_SEND, TREASURY_*
	Count     int    `json:"count,omitempty"`      // PACKET_SEND: number of shares
	Hours     int    `json:"hours,omitempty"`      // WORK_START
	ItemID    string `json:"item_id,omitempty"`    // BUY_ITEM
	Price     int64  `json:"price,omitempty"`      // MARKET_LIST
	ListingID int    `json:"listing_id,omitempty"` // MARKET_BUY, MARKET_DELIST
	PacketID  string `json:"packet_id,omitempty"`  // PACKET_GRAB; empty grabs the oldest open packet
	Enabled   *bool  `json:"enabled,omitempty"`    // SET_ENABLED, TREASURY_SET_TAX
}

// RESULT (engine -> dispatcher): discriminated outcome for one request.
// Code is empty on success and one of the E_* constants otherwise.
type ResultMsg struct {
	Type            string         `json:"type"`
	ProtocolVersion string         `json:"protocol_version"`
	Seq             uint64         `json:"seq,omitempty"`
	OK              bool           `json:"ok"`
	Code            string         `json:"code,omitempty"`
	RemainingMs     int64          `json:"remaining_ms,omitempty"` // set with E_ON_COOLDOWN / E_TARGET_BUSY
	Data            map[string]any `json:"data,omitempty"`
}

// NOTIFY (engine -> dispatcher): pushed when a deferred effect settles.
type NotifyMsg struct {
	Type            string `json:"type"`
	ProtocolVersion string `json:"protocol_version"`
	GroupID         string `json:"group_id"`
	UserID          string `json:"user_id"`
	Message         string `json:"message"`
}
