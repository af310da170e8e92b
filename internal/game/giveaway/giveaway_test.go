package giveaway

import (
	"fmt"
	"testing"

	"growarena.gg/internal/game/resolve"
	"growarena.gg/internal/protocol"
)

func TestNew_Validation(t *testing.T) {
	if _, code := New("ga", "g", "u", 0, 5, 100, 1); code != protocol.ErrInvalidAmount {
		t.Fatalf("zero amount: %q", code)
	}
	if _, code := New("ga", "g", "u", 100, 0, 100, 1); code != protocol.ErrInvalidAmount {
		t.Fatalf("zero shares: %q", code)
	}
	if _, code := New("ga", "g", "u", 3, 5, 100, 1); code != protocol.ErrInvalidAmount {
		t.Fatalf("more shares than coins: %q", code)
	}
	if _, code := New("ga", "g", "u", 500, 200, 100, 1); code != protocol.ErrInvalidAmount {
		t.Fatalf("over max shares: %q", code)
	}
	ga, code := New("ga", "g", "u", 100, 5, 100, 1)
	if code != "" || ga.Remaining != 100 || ga.Left != 5 {
		t.Fatalf("valid pool rejected: %q %+v", code, ga)
	}
}

// distributed + remaining == total and left == shares - claims, at every
// point, across many random pools.
func TestGrab_Conservation(t *testing.T) {
	for seed := int64(0); seed < 50; seed++ {
		r := resolve.NewRand(seed)
		ga, _ := New("ga", "g", "sender", 100+seed*13, int(3+seed%7), 100, 1)
		for i := 0; !Exhausted(ga); i++ {
			uid := fmt.Sprintf("u%d", i)
			amt, code := Grab(ga, uid, r)
			if code != "" {
				t.Fatalf("seed %d: grab %d failed: %s", seed, i, code)
			}
			if amt < 1 {
				t.Fatalf("seed %d: non-positive claim %d", seed, amt)
			}
			var dist int64
			for _, a := range ga.Claims {
				dist += a
			}
			if dist+ga.Remaining != ga.Total {
				t.Fatalf("seed %d: conservation broken: %d+%d != %d", seed, dist, ga.Remaining, ga.Total)
			}
			if ga.Left != ga.Shares-len(ga.Claims) {
				t.Fatalf("seed %d: left=%d shares=%d claims=%d", seed, ga.Left, ga.Shares, len(ga.Claims))
			}
		}
		if ga.Remaining != 0 {
			t.Fatalf("seed %d: pool exhausted with %d left over", seed, ga.Remaining)
		}
	}
}

func TestGrab_OncePerUser(t *testing.T) {
	r := resolve.NewRand(1)
	ga, _ := New("ga", "g", "sender", 100, 5, 100, 1)
	if _, code := Grab(ga, "u1", r); code != "" {
		t.Fatalf("first grab failed: %s", code)
	}
	if _, code := Grab(ga, "u1", r); code != protocol.ErrAlreadyHasEffect {
		t.Fatalf("double grab: %q", code)
	}
}

func TestGrab_Exhausted(t *testing.T) {
	r := resolve.NewRand(1)
	ga, _ := New("ga", "g", "sender", 5, 5, 100, 1)
	for i := 0; i < 5; i++ {
		if _, code := Grab(ga, fmt.Sprintf("u%d", i), r); code != "" {
			t.Fatalf("grab %d: %s", i, code)
		}
	}
	if _, code := Grab(ga, "late", r); code != protocol.ErrInvalidTarget {
		t.Fatalf("exhausted pool: %q", code)
	}
}
