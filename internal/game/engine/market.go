package engine

import (
	"growarena.gg/internal/game/market"
	"growarena.gg/internal/game/state"
	"growarena.gg/internal/persistence/ledgerdb"
	plog "growarena.gg/internal/persistence/log"
	"growarena.gg/internal/protocol"
)

func (e *Engine) recordTax(groupID, source string, gross, tax, net int64) {
	if e.ledger == nil || tax <= 0 {
		return
	}
	e.ledger.RecordTax(ledgerdb.TaxRow{
		At:      e.now().Unix(),
		GroupID: groupID,
		Source:  source,
		Gross:   gross,
		Tax:     tax,
		Net:     net,
	})
}

func (e *Engine) handleMarketView(req protocol.RequestMsg) protocol.ResultMsg {
	var rows []map[string]any
	e.store.View(req.GroupID, func(d *state.GroupData) {
		for _, l := range market.Board(d) {
			seller := d.Group.User(l.SellerID)
			name := l.SellerID
			if seller != nil {
				name = seller.Nickname
			}
			rows = append(rows, map[string]any{
				"id":       l.ID,
				"seller":   name,
				"length":   l.Length,
				"hardness": l.Hardness,
				"price":    l.Price,
			})
		}
	})
	return e.result(req, map[string]any{"listings": rows})
}

func (e *Engine) handleMarketList(req protocol.RequestMsg) protocol.ResultMsg {
	var (
		code string
		id   int
	)
	err := e.store.Mutate(req.GroupID, func(d *state.GroupData) error {
		l, c := market.List(d, req.UserID, req.Args.Price, e.tn.Market, e.now().Unix())
		code = c
		if l != nil {
			id = l.ID
		}
		return nil
	})
	if err != nil {
		return e.fail(req, protocol.ErrInternal)
	}
	if code != "" {
		return e.fail(req, code)
	}
	e.writeAudit(plog.AuditEntry{
		GroupID: req.GroupID, UserID: req.UserID, Action: req.Action,
	})
	return e.result(req, map[string]any{"listing_id": id, "price": req.Args.Price})
}

func (e *Engine) handleMarketBuy(req protocol.RequestMsg) protocol.ResultMsg {
	var (
		code string
		out  market.BuyResult
	)
	err := e.store.Mutate(req.GroupID, func(d *state.GroupData) error {
		out, code = market.Buy(d, req.UserID, req.Args.ListingID, e.tn.Tax.Brackets)
		return nil
	})
	if err != nil {
		return e.fail(req, protocol.ErrInternal)
	}
	if code != "" {
		return e.fail(req, code)
	}
	e.recordTax(req.GroupID, "market_sale", out.Price, out.SellerTax, out.SellerNet)
	e.writeAudit(plog.AuditEntry{
		GroupID: req.GroupID, UserID: req.UserID, Action: req.Action,
		CoinsDelta: -out.Price, LengthDelta: out.Length, Tax: out.SellerTax,
	})
	return e.result(req, map[string]any{
		"length":     out.Length,
		"price":      out.Price,
		"seller_net": out.SellerNet,
		"seller_tax": out.SellerTax,
	})
}

func (e *Engine) handleMarketDelist(req protocol.RequestMsg) protocol.ResultMsg {
	code := ""
	err := e.store.Mutate(req.GroupID, func(d *state.GroupData) error {
		code = market.Delist(d, req.UserID, req.Args.ListingID)
		return nil
	})
	if err != nil {
		return e.fail(req, protocol.ErrInternal)
	}
	if code != "" {
		return e.fail(req, code)
	}
	e.writeAudit(plog.AuditEntry{
		GroupID: req.GroupID, UserID: req.UserID, Action: req.Action,
	})
	return e.result(req, map[string]any{"delisted": req.Args.ListingID})
}

func (e *Engine) handleMarketRecycle(req protocol.RequestMsg) protocol.ResultMsg {
	var (
		code string
		out  market.RecycleResult
	)
	err := e.store.Mutate(req.GroupID, func(d *state.GroupData) error {
		out, code = market.Recycle(d, req.UserID, e.tn.Market, e.tn.Tax.Brackets)
		return nil
	})
	if err != nil {
		return e.fail(req, protocol.ErrInternal)
	}
	if code != "" {
		return e.fail(req, code)
	}
	e.recordTax(req.GroupID, "recycle", out.Gross, out.Tax, out.Net)
	e.writeAudit(plog.AuditEntry{
		GroupID: req.GroupID, UserID: req.UserID, Action: req.Action,
		CoinsDelta: out.Net, LengthDelta: -out.Length, Tax: out.Tax,
	})
	return e.result(req, map[string]any{
		"length": out.Length,
		"gross":  out.Gross,
		"net":    out.Net,
		"tax":    out.Tax,
	})
}
