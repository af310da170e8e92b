package market

import (
	"testing"

	"growarena.gg/internal/game/model"
	"growarena.gg/internal/game/state"
	"growarena.gg/internal/game/tuning"
	"growarena.gg/internal/protocol"
)

func testGroup(t *testing.T) (*state.Store, string) {
	t.Helper()
	s, err := state.Open(t.TempDir(), nil)
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	for _, u := range []struct {
		id    string
		len   int64
		hard  int
		coins int64
	}{
		{"seller", 40, 5, 0},
		{"buyer", 10, 2, 1000},
	} {
		if err := s.RegisterUser("g1", u.id, u.id, u.len, u.hard, u.coins); err != nil {
			t.Fatalf("register %s: %v", u.id, err)
		}
	}
	return s, "g1"
}

func TestListDelist_RoundTrip(t *testing.T) {
	s, gid := testGroup(t)
	tn := tuning.Default().Market

	err := s.Mutate(gid, func(d *state.GroupData) error {
		l, code := List(d, "seller", 200, tn, 1000)
		if code != "" {
			t.Fatalf("List: %s", code)
		}
		u := d.Group.User("seller")
		if u.Length != 0 || u.Hardness != model.MinHardness {
			t.Fatalf("listing must zero the seller: len=%d hard=%d", u.Length, u.Hardness)
		}
		if code := Delist(d, "seller", l.ID); code != "" {
			t.Fatalf("Delist: %s", code)
		}
		if u.Length != 40 || u.Hardness != 5 {
			t.Fatalf("delist must restore exactly: len=%d hard=%d", u.Length, u.Hardness)
		}
		if len(d.Listings) != 0 {
			t.Fatalf("listing still on board")
		}
		return nil
	})
	if err != nil {
		t.Fatalf("Mutate: %v", err)
	}
}

func TestDelist_OnlySeller(t *testing.T) {
	s, gid := testGroup(t)
	tn := tuning.Default().Market
	_ = s.Mutate(gid, func(d *state.GroupData) error {
		l, _ := List(d, "seller", 200, tn, 1000)
		if code := Delist(d, "buyer", l.ID); code != protocol.ErrInvalidTarget {
			t.Fatalf("foreign delist: %q", code)
		}
		return nil
	})
}

func TestBuy_TaxedAndTransfersLength(t *testing.T) {
	s, gid := testGroup(t)
	tn := tuning.Default()
	_ = s.Mutate(gid, func(d *state.GroupData) error {
		l, _ := List(d, "seller", 200, tn.Market, 1000)
		res, code := Buy(d, "buyer", l.ID, tn.Tax.Brackets)
		if code != "" {
			t.Fatalf("Buy: %s", code)
		}
		// 200 sits in the 10% bracket.
		if res.SellerTax != 20 || res.SellerNet != 180 {
			t.Fatalf("tax wrong: %+v", res)
		}
		buyer := d.Group.User("buyer")
		seller := d.Group.User("seller")
		if buyer.Coins != 800 || seller.Coins != 180 || d.Group.Treasury != 20 {
			t.Fatalf("coins wrong: buyer=%d seller=%d treasury=%d", buyer.Coins, seller.Coins, d.Group.Treasury)
		}
		if buyer.Length != 50 {
			t.Fatalf("length not transferred: %d", buyer.Length)
		}
		if len(d.Listings) != 0 {
			t.Fatalf("sold listing still on board")
		}
		return nil
	})
}

func TestBuy_Rejections(t *testing.T) {
	s, gid := testGroup(t)
	tn := tuning.Default()
	_ = s.Mutate(gid, func(d *state.GroupData) error {
		l, _ := List(d, "seller", 5000, tn.Market, 1000)
		if _, code := Buy(d, "seller", l.ID, tn.Tax.Brackets); code != protocol.ErrSelfTarget {
			t.Fatalf("self buy: %q", code)
		}
		if _, code := Buy(d, "buyer", l.ID, tn.Tax.Brackets); code != protocol.ErrInsufficientFunds {
			t.Fatalf("overdraft: %q", code)
		}
		if _, code := Buy(d, "buyer", 99, tn.Tax.Brackets); code != protocol.ErrInvalidTarget {
			t.Fatalf("missing listing: %q", code)
		}
		return nil
	})
}

func TestRemove_KeepsIDsDense(t *testing.T) {
	s, _ := testGroup(t)
	tn := tuning.Default().Market
	for _, id := range []string{"a", "b", "c"} {
		if err := s.RegisterUser("g2", id, id, 30, 3, 0); err != nil {
			t.Fatalf("register: %v", err)
		}
	}
	_ = s.Mutate("g2", func(d *state.GroupData) error {
		for _, id := range []string{"a", "b", "c"} {
			if _, code := List(d, id, 100, tn, 1000); code != "" {
				t.Fatalf("List %s: %s", id, code)
			}
		}
		if code := Delist(d, "b", 2); code != "" {
			t.Fatalf("Delist: %s", code)
		}
		board := Board(d)
		if len(board) != 2 || board[0].ID != 1 || board[1].ID != 2 {
			t.Fatalf("ids not dense: %+v", board)
		}
		if d.NextListingID != 3 {
			t.Fatalf("next id %d", d.NextListingID)
		}
		return nil
	})
}

func TestRecycle(t *testing.T) {
	s, gid := testGroup(t)
	tn := tuning.Default()
	_ = s.Mutate(gid, func(d *state.GroupData) error {
		// seller length 40 -> ceil(40/20) = 2 gross, 5% bracket rounds to 0 tax.
		res, code := Recycle(d, "seller", tn.Market, tn.Tax.Brackets)
		if code != "" {
			t.Fatalf("Recycle: %s", code)
		}
		if res.Gross != 2 || res.Net+res.Tax != res.Gross {
			t.Fatalf("payout wrong: %+v", res)
		}
		u := d.Group.User("seller")
		if u.Length != 0 || u.Coins != res.Net {
			t.Fatalf("recycle state wrong: len=%d coins=%d", u.Length, u.Coins)
		}
		if _, code := Recycle(d, "seller", tn.Market, tn.Tax.Brackets); code != protocol.ErrInvalidAmount {
			t.Fatalf("empty recycle: %q", code)
		}
		return nil
	})
}
