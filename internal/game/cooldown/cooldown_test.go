package cooldown

import (
	"testing"

	"growarena.gg/internal/game/model"
)

func TestCheck_RecordThenCheck(t *testing.T) {
	b := model.NewCooldownBook()
	now := int64(1000)
	Record(b, "GROW", "", now)

	on, rem := Check(b, "GROW", "", 600, now)
	if !on || rem != 600 {
		t.Fatalf("want on cooldown with full duration, got on=%v rem=%d", on, rem)
	}
	on, rem = Check(b, "GROW", "", 600, now+599)
	if !on || rem != 1 {
		t.Fatalf("one second left: on=%v rem=%d", on, rem)
	}
	on, _ = Check(b, "GROW", "", 600, now+600)
	if on {
		t.Fatalf("cooldown should have lapsed")
	}
}

func TestCheck_NeverFired(t *testing.T) {
	b := model.NewCooldownBook()
	if on, _ := Check(b, "DUEL", "", 600, 5000); on {
		t.Fatalf("fresh book should not be on cooldown")
	}
	if e := Elapsed(b, "DUEL", "", 5000); e != -1 {
		t.Fatalf("want -1 for never fired, got %d", e)
	}
}

func TestCheck_PerTargetBucketsIndependent(t *testing.T) {
	b := model.NewCooldownBook()
	now := int64(1000)
	Record(b, "LOCK", "victim1", now)

	if on, _ := Check(b, "LOCK", "victim1", 300, now+10); !on {
		t.Fatalf("victim1 should be on cooldown")
	}
	if on, _ := Check(b, "LOCK", "victim2", 300, now+10); on {
		t.Fatalf("victim2 bucket must be independent")
	}
}

func TestLimited_WindowCapsAcrossTargets(t *testing.T) {
	b := model.NewCooldownBook()
	now := int64(1000)
	for i := 0; i < 3; i++ {
		if Limited(b, "LOCK", 300, 3, now) {
			t.Fatalf("limited too early at %d", i)
		}
		Count(b, "LOCK", 300, now+int64(i))
	}
	if !Limited(b, "LOCK", 300, 3, now+10) {
		t.Fatalf("fourth use inside window must be limited")
	}
	// Window resets only once the gap since its start exceeds the span.
	if Limited(b, "LOCK", 300, 3, now+301) {
		t.Fatalf("window should have reset")
	}
	Count(b, "LOCK", 300, now+301)
	if got := b.Windows["LOCK"]; got.Start != now+301 || got.Count != 1 {
		t.Fatalf("stale window not reset: %+v", got)
	}
}
