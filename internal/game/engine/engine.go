package engine

import (
	"log"
	"time"

	"growarena.gg/internal/game/items"
	"growarena.gg/internal/game/model"
	"growarena.gg/internal/game/resolve"
	"growarena.gg/internal/game/sched"
	"growarena.gg/internal/game/state"
	"growarena.gg/internal/game/tuning"
	"growarena.gg/internal/persistence/ledgerdb"
	plog "growarena.gg/internal/persistence/log"
	"growarena.gg/internal/protocol"
)

// Engine dispatches normalized requests to the game handlers. Every handler
// runs its whole transaction inside one store mutation for the group, so
// command-path writes serialize with timer-path writes.
type Engine struct {
	store   *state.Store
	sched   *sched.Scheduler
	tn      tuning.Tuning
	rng     resolve.Rand
	catalog []items.Def

	audit  *plog.AuditLogger
	ledger *ledgerdb.SQLiteLedger
	log    *log.Logger
	now    func() time.Time
}

type Option func(*Engine)

func WithAudit(a *plog.AuditLogger) Option       { return func(e *Engine) { e.audit = a } }
func WithLedger(l *ledgerdb.SQLiteLedger) Option { return func(e *Engine) { e.ledger = l } }
func WithClock(now func() time.Time) Option      { return func(e *Engine) { e.now = now } }

func New(store *state.Store, sc *sched.Scheduler, tn tuning.Tuning, rng resolve.Rand, logger *log.Logger, opts ...Option) *Engine {
	e := &Engine{
		store:   store,
		sched:   sc,
		tn:      tn,
		rng:     rng,
		catalog: items.Catalog(tn.Items),
		log:     logger,
		now:     time.Now,
	}
	for _, o := range opts {
		o(e)
	}
	return e
}

// Recover settles overdue effects and re-arms pending timers. Call before
// the transport starts accepting requests.
func (e *Engine) Recover() error {
	return e.sched.Recover()
}

func (e *Engine) result(req protocol.RequestMsg, data map[string]any) protocol.ResultMsg {
	return protocol.ResultMsg{
		Type:            protocol.TypeResult,
		ProtocolVersion: protocol.Version,
		Seq:             req.Seq,
		OK:              true,
		Data:            data,
	}
}

func (e *Engine) fail(req protocol.RequestMsg, code string) protocol.ResultMsg {
	return protocol.ResultMsg{
		Type:            protocol.TypeResult,
		ProtocolVersion: protocol.Version,
		Seq:             req.Seq,
		Code:            code,
	}
}

func (e *Engine) failRemaining(req protocol.RequestMsg, code string, remainingS int64) protocol.ResultMsg {
	r := e.fail(req, code)
	r.RemainingMs = remainingS * 1000
	return r
}

func (e *Engine) dayKey(t time.Time) string { return t.Format("2006-01-02") }

func (e *Engine) writeAudit(entry plog.AuditEntry) {
	if e.audit == nil {
		return
	}
	entry.At = e.now().Unix()
	if err := e.audit.WriteAudit(entry); err != nil && e.log != nil {
		e.log.Printf("engine: audit write: %v", err)
	}
}

// Handle resolves one request to a result. Unknown actions and missing ids
// fail with E_PROTO_BAD_REQUEST; game-rule rejections use the taxonomy codes.
func (e *Engine) Handle(req protocol.RequestMsg) protocol.ResultMsg {
	if req.GroupID == "" || req.UserID == "" || req.Action == "" {
		return e.fail(req, protocol.ErrProtoBadRequest)
	}

	switch req.Action {
	case protocol.ActionSetEnabled:
		return e.handleSetEnabled(req)
	case protocol.ActionRegister:
		return e.handleRegister(req)
	}

	// Everything else needs an enabled group and a registered actor.
	var gate string
	e.store.View(req.GroupID, func(d *state.GroupData) {
		if !d.Group.Enabled {
			gate = protocol.ErrPluginDisabled
		} else if d.Group.User(req.UserID) == nil {
			gate = protocol.ErrNotRegistered
		}
	})
	if gate != "" {
		return e.fail(req, gate)
	}

	switch req.Action {
	case protocol.ActionGrow:
		return e.handleGrow(req)
	case protocol.ActionDuel:
		return e.handleDuel(req)
	case protocol.ActionLock:
		return e.handleLock(req)
	case protocol.ActionSignIn:
		return e.handleSignIn(req)
	case protocol.ActionTransfer:
		return e.handleTransfer(req)
	case protocol.ActionStatus:
		return e.handleStatus(req)
	case protocol.ActionRanking:
		return e.handleRanking(req)

	case protocol.ActionWorkStart:
		return e.handleWorkStart(req)
	case protocol.ActionWorkCancel:
		return e.handleWorkCancel(req)
	case protocol.ActionWorkStatus:
		return e.handleWorkStatus(req)

	case protocol.ActionBuyItem:
		return e.handleBuyItem(req)
	case protocol.ActionSterilize:
		return e.handleSterilize(req)
	case protocol.ActionUnsterilize:
		return e.handleUnsterilize(req)
	case protocol.ActionExchange:
		return e.handleExchange(req)
	case protocol.ActionAttach:
		return e.handleAttach(req)
	case protocol.ActionPoke:
		return e.handlePoke(req)

	case protocol.ActionMarketView:
		return e.handleMarketView(req)
	case protocol.ActionMarketList:
		return e.handleMarketList(req)
	case protocol.ActionMarketBuy:
		return e.handleMarketBuy(req)
	case protocol.ActionMarketDelist:
		return e.handleMarketDelist(req)
	case protocol.ActionMarketRecycle:
		return e.handleMarketRecycle(req)

	case protocol.ActionPacketSend:
		return e.handlePacketSend(req)
	case protocol.ActionPacketGrab:
		return e.handlePacketGrab(req)

	case protocol.ActionTreasuryBalance:
		return e.handleTreasuryBalance(req)
	case protocol.ActionTreasurySplit:
		return e.handleTreasurySplit(req)
	case protocol.ActionTreasuryPay:
		return e.handleTreasuryPay(req)
	case protocol.ActionTreasurySetTax:
		return e.handleTreasurySetTax(req)
	}
	return e.fail(req, protocol.ErrProtoBadRequest)
}

func (e *Engine) handleSetEnabled(req protocol.RequestMsg) protocol.ResultMsg {
	if req.Args.Enabled == nil {
		return e.fail(req, protocol.ErrProtoBadRequest)
	}
	on := *req.Args.Enabled
	err := e.store.Mutate(req.GroupID, func(d *state.GroupData) error {
		d.Group.Enabled = on
		d.TouchGroups()
		return nil
	})
	if err != nil {
		return e.fail(req, protocol.ErrInternal)
	}
	return e.result(req, map[string]any{"enabled": on})
}

func (e *Engine) handleRegister(req protocol.RequestMsg) protocol.ResultMsg {
	name := req.Args.Name
	if name == "" {
		name = req.UserID
	}
	code := ""
	err := e.store.Mutate(req.GroupID, func(d *state.GroupData) error {
		if !d.Group.Enabled {
			code = protocol.ErrPluginDisabled
			return nil
		}
		if d.Group.User(req.UserID) != nil {
			code = protocol.ErrAlreadyRegistered
			return nil
		}
		d.Group.Users[req.UserID] = &model.UserRecord{
			ID:       req.UserID,
			Nickname: name,
			Length:   e.tn.Register.StartLength,
			Hardness: model.ClampHardness(e.tn.Register.StartHardness),
			Coins:    e.tn.Register.StartCoins,
		}
		d.TouchGroups()
		return nil
	})
	if err != nil {
		return e.fail(req, protocol.ErrInternal)
	}
	if code != "" {
		return e.fail(req, code)
	}
	e.writeAudit(plog.AuditEntry{GroupID: req.GroupID, UserID: req.UserID, Action: req.Action})
	return e.result(req, map[string]any{
		"nickname": name,
		"length":   e.tn.Register.StartLength,
		"hardness": e.tn.Register.StartHardness,
		"coins":    e.tn.Register.StartCoins,
	})
}
