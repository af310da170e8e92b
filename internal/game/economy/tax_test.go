package economy

import (
	"testing"

	"growarena.gg/internal/game/model"
	"growarena.gg/internal/game/tuning"
	"growarena.gg/internal/protocol"
)

func taxedGroup() *model.GroupRecord {
	g := model.NewGroup("g1")
	g.Users["u1"] = &model.UserRecord{ID: "u1"}
	g.Users["u2"] = &model.UserRecord{ID: "u2"}
	g.Users["u3"] = &model.UserRecord{ID: "u3"}
	return g
}

func TestProcess_Brackets(t *testing.T) {
	brackets := tuning.Default().Tax.Brackets
	cases := []struct {
		gross, wantTax int64
	}{
		{1, 0},      // 5% of 1 rounds to 0
		{10, 1},     // 0.5 rounds up
		{99, 5},     // 4.95 -> 5
		{100, 5},    // boundary stays in the 5% bracket
		{101, 10},   // 10% bracket
		{1000, 100}, // boundary stays in the 10% bracket
		{1001, 200},
		{5000, 1000},
		{5001, 1500},
	}
	for _, c := range cases {
		g := taxedGroup()
		net, tax := Process(g, brackets, c.gross)
		if tax != c.wantTax {
			t.Fatalf("gross=%d: tax=%d want %d", c.gross, tax, c.wantTax)
		}
		if net+tax != c.gross {
			t.Fatalf("gross=%d: net %d + tax %d != gross", c.gross, net, tax)
		}
		if g.Treasury != tax {
			t.Fatalf("gross=%d: treasury %d != tax %d", c.gross, g.Treasury, tax)
		}
	}
}

func TestProcess_TaxDisabled(t *testing.T) {
	g := taxedGroup()
	g.TaxEnabled = false
	net, tax := Process(g, tuning.Default().Tax.Brackets, 5000)
	if net != 5000 || tax != 0 || g.Treasury != 0 {
		t.Fatalf("disabled tax must pass gross through: net=%d tax=%d treasury=%d", net, tax, g.Treasury)
	}
}

func TestDisburseEqualSplit(t *testing.T) {
	g := taxedGroup()
	g.Treasury = 100

	share, code := DisburseEqualSplit(g, 100)
	if code != "" {
		t.Fatalf("unexpected code %q", code)
	}
	if share != 33 {
		t.Fatalf("share=%d want 33", share)
	}
	if g.Treasury != 1 {
		t.Fatalf("remainder should stay in treasury, got %d", g.Treasury)
	}
	for id, u := range g.Users {
		if u.Coins != 33 {
			t.Fatalf("%s got %d", id, u.Coins)
		}
	}
}

func TestDisburseEqualSplit_Rejections(t *testing.T) {
	g := taxedGroup()
	g.Treasury = 2

	if _, code := DisburseEqualSplit(g, 0); code != protocol.ErrInvalidAmount {
		t.Fatalf("zero total: %q", code)
	}
	if _, code := DisburseEqualSplit(g, 50); code != protocol.ErrInsufficientFunds {
		t.Fatalf("over balance: %q", code)
	}
	// 2 coins over 3 users floors to a zero share.
	if _, code := DisburseEqualSplit(g, 2); code != protocol.ErrInvalidAmount {
		t.Fatalf("zero share: %q", code)
	}
}

func TestDisburseToUser(t *testing.T) {
	g := taxedGroup()
	g.Treasury = 50

	if code := DisburseToUser(g, "ghost", 10); code != protocol.ErrNotRegistered {
		t.Fatalf("ghost: %q", code)
	}
	if code := DisburseToUser(g, "u1", 60); code != protocol.ErrInsufficientFunds {
		t.Fatalf("over balance: %q", code)
	}
	if code := DisburseToUser(g, "u1", 50); code != "" {
		t.Fatalf("valid: %q", code)
	}
	if g.Treasury != 0 || g.Users["u1"].Coins != 50 {
		t.Fatalf("bad balances: treasury=%d coins=%d", g.Treasury, g.Users["u1"].Coins)
	}
}
