package engine

import (
	"growarena.gg/internal/game/economy"
	"growarena.gg/internal/game/state"
	"growarena.gg/internal/persistence/ledgerdb"
	plog "growarena.gg/internal/persistence/log"
	"growarena.gg/internal/protocol"
)

func (e *Engine) recordDisbursement(groupID, targetID, kind string, amount int64) {
	if e.ledger == nil {
		return
	}
	e.ledger.RecordDisbursement(ledgerdb.DisbursementRow{
		At:       e.now().Unix(),
		GroupID:  groupID,
		TargetID: targetID,
		Kind:     kind,
		Amount:   amount,
	})
}

func (e *Engine) handleTreasuryBalance(req protocol.RequestMsg) protocol.ResultMsg {
	var balance int64
	var taxOn bool
	e.store.View(req.GroupID, func(d *state.GroupData) {
		balance = d.Group.Treasury
		taxOn = d.Group.TaxEnabled
	})
	return e.result(req, map[string]any{"balance": balance, "tax_enabled": taxOn})
}

func (e *Engine) handleTreasurySplit(req protocol.RequestMsg) protocol.ResultMsg {
	var (
		code  string
		share int64
		n     int
	)
	err := e.store.Mutate(req.GroupID, func(d *state.GroupData) error {
		share, code = economy.DisburseEqualSplit(d.Group, req.Args.Amount)
		if code == "" {
			n = len(d.Group.Users)
			d.TouchGroups()
		}
		return nil
	})
	if err != nil {
		return e.fail(req, protocol.ErrInternal)
	}
	if code != "" {
		return e.fail(req, code)
	}
	e.recordDisbursement(req.GroupID, "", "split", share*int64(n))
	e.writeAudit(plog.AuditEntry{
		GroupID: req.GroupID, UserID: req.UserID, Action: req.Action,
		CoinsDelta: share * int64(n),
	})
	return e.result(req, map[string]any{"share": share, "recipients": n})
}

func (e *Engine) handleTreasuryPay(req protocol.RequestMsg) protocol.ResultMsg {
	if req.TargetID == "" {
		return e.fail(req, protocol.ErrProtoBadRequest)
	}
	code := ""
	err := e.store.Mutate(req.GroupID, func(d *state.GroupData) error {
		code = economy.DisburseToUser(d.Group, req.TargetID, req.Args.Amount)
		if code == "" {
			d.TouchGroups()
		}
		return nil
	})
	if err != nil {
		return e.fail(req, protocol.ErrInternal)
	}
	if code != "" {
		return e.fail(req, code)
	}
	e.recordDisbursement(req.GroupID, req.TargetID, "pay", req.Args.Amount)
	e.writeAudit(plog.AuditEntry{
		GroupID: req.GroupID, UserID: req.UserID, Action: req.Action,
		Target: req.TargetID, CoinsDelta: req.Args.Amount,
	})
	return e.result(req, map[string]any{"target": req.TargetID, "amount": req.Args.Amount})
}

func (e *Engine) handleTreasurySetTax(req protocol.RequestMsg) protocol.ResultMsg {
	if req.Args.Enabled == nil {
		return e.fail(req, protocol.ErrProtoBadRequest)
	}
	on := *req.Args.Enabled
	err := e.store.Mutate(req.GroupID, func(d *state.GroupData) error {
		d.Group.TaxEnabled = on
		d.TouchGroups()
		return nil
	})
	if err != nil {
		return e.fail(req, protocol.ErrInternal)
	}
	e.writeAudit(plog.AuditEntry{GroupID: req.GroupID, UserID: req.UserID, Action: req.Action})
	return e.result(req, map[string]any{"tax_enabled": on})
}
