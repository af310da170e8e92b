package sched

import (
	"sync"
	"testing"
	"time"

	"growarena.gg/internal/game/model"
	"growarena.gg/internal/game/resolve"
	"growarena.gg/internal/game/state"
	"growarena.gg/internal/game/tuning"
	"growarena.gg/internal/protocol"
)

type fakeSink struct {
	mu     sync.Mutex
	events []string
}

func (f *fakeSink) EffectSettled(e *model.Effect, outcome string, payout, penalty int64) {
	f.mu.Lock()
	f.events = append(f.events, string(e.Kind)+":"+outcome)
	f.mu.Unlock()
}

func fixedClock(t time.Time) func() time.Time {
	return func() time.Time { return t }
}

func newTestWorld(t *testing.T, dir string, now time.Time) (*state.Store, *Scheduler, *fakeSink) {
	t.Helper()
	s, err := state.Open(dir, nil)
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	sink := &fakeSink{}
	sc := New(s, tuning.Default(), resolve.NewRand(1), nil,
		WithClock(fixedClock(now)), WithSettlements(sink))
	return s, sc, sink
}

func addWorkEffect(t *testing.T, s *state.Store, id string, start, end, reward int64) {
	t.Helper()
	err := s.Mutate("g1", func(d *state.GroupData) error {
		e := &model.Effect{
			ID: id, Kind: model.EffectTimedWork, GroupID: "g1", OwnerID: "u1",
			Start: start, End: end, State: model.EffectActive,
			Payload: model.EffectPayload{Hours: 2, Multiplier: 1, TotalReward: reward},
		}
		d.Effects[id] = e
		d.Group.User("u1").AddEffect(id)
		d.TouchGroups()
		d.TouchEffects()
		return nil
	})
	if err != nil {
		t.Fatalf("add effect: %v", err)
	}
}

func TestRecover_SettlesExpiredWorkExactlyOnce(t *testing.T) {
	dir := t.TempDir()
	now := time.Unix(1_800_000_000, 0)
	s, sc, sink := newTestWorld(t, dir, now)
	if err := s.RegisterUser("g1", "u1", "alice", 10, 1, 0); err != nil {
		t.Fatalf("register: %v", err)
	}
	// 60 gross lands in the 5% bracket: 3 tax, 57 net.
	addWorkEffect(t, s, "fx-1", now.Unix()-7200, now.Unix()-10, 60)

	if err := sc.Recover(); err != nil {
		t.Fatalf("Recover: %v", err)
	}
	s.View("g1", func(d *state.GroupData) {
		u := d.Group.User("u1")
		if u.Coins != 57 {
			t.Fatalf("payout wrong: %d", u.Coins)
		}
		if d.Group.Treasury != 3 {
			t.Fatalf("tax wrong: %d", d.Group.Treasury)
		}
		if _, ok := d.Effects["fx-1"]; ok {
			t.Fatalf("settled effect still present")
		}
		if len(u.ActiveEffects) != 0 {
			t.Fatalf("owner still references settled effect")
		}
	})
	if len(sink.events) != 1 {
		t.Fatalf("settlements recorded %d times", len(sink.events))
	}

	// Simulated restart: a fresh scheduler over the same durable state must
	// not settle again.
	s2, sc2, sink2 := newTestWorld(t, dir, now.Add(time.Hour))
	if err := sc2.Recover(); err != nil {
		t.Fatalf("second Recover: %v", err)
	}
	s2.View("g1", func(d *state.GroupData) {
		if got := d.Group.User("u1").Coins; got != 57 {
			t.Fatalf("double settlement: coins=%d", got)
		}
	})
	if len(sink2.events) != 0 {
		t.Fatalf("second recovery settled something: %v", sink2.events)
	}
}

func TestRecover_RearmsPendingEffect(t *testing.T) {
	now := time.Unix(1_800_000_000, 0)
	s, sc, _ := newTestWorld(t, t.TempDir(), now)
	if err := s.RegisterUser("g1", "u1", "alice", 10, 1, 0); err != nil {
		t.Fatalf("register: %v", err)
	}
	addWorkEffect(t, s, "fx-1", now.Unix(), now.Unix()+3600, 60)

	if err := sc.Recover(); err != nil {
		t.Fatalf("Recover: %v", err)
	}
	defer sc.Stop()
	s.View("g1", func(d *state.GroupData) {
		e := d.Effects["fx-1"]
		if e == nil || !e.Active() {
			t.Fatalf("pending effect was settled early")
		}
	})
	sc.mu.Lock()
	_, armed := sc.timers["fx-1"]
	sc.mu.Unlock()
	if !armed {
		t.Fatalf("pending effect has no timer")
	}
}

func TestCancel_ProRatedPayoutBelowCompletion(t *testing.T) {
	now := time.Unix(1_800_000_000, 0)
	s, sc, _ := newTestWorld(t, t.TempDir(), now)
	if err := s.RegisterUser("g1", "u1", "alice", 10, 1, 0); err != nil {
		t.Fatalf("register: %v", err)
	}
	// 2h session, cancelled at the 1h mark, reward 60.
	addWorkEffect(t, s, "fx-1", now.Unix()-3600, now.Unix()+3600, 60)

	out, code := sc.Cancel("g1", "fx-1")
	if code != "" {
		t.Fatalf("Cancel: %s", code)
	}
	// Pro-rated gross 30 -> 2 tax, 28 net, minus the fixed penalty 20.
	wantPenalty := tuning.Default().Work.CancelPenalty
	if out.Penalty != wantPenalty {
		t.Fatalf("penalty %d want %d", out.Penalty, wantPenalty)
	}
	if out.Payout != 28-wantPenalty {
		t.Fatalf("payout %d want %d", out.Payout, 28-wantPenalty)
	}
	completionNet := int64(57) // full 60 through the 5% bracket
	if out.Payout >= completionNet {
		t.Fatalf("cancel payout %d not below completion %d", out.Payout, completionNet)
	}
	s.View("g1", func(d *state.GroupData) {
		if _, ok := d.Effects["fx-1"]; ok {
			t.Fatalf("cancelled effect still active")
		}
		if got := d.Group.User("u1").Coins; got != out.Payout {
			t.Fatalf("coins %d want %d", got, out.Payout)
		}
	})

	if _, code := sc.Cancel("g1", "fx-1"); code != protocol.ErrInvalidTarget {
		t.Fatalf("double cancel: %q", code)
	}
}

func TestCancel_ThenTimerFireIsNoop(t *testing.T) {
	now := time.Unix(1_800_000_000, 0)
	s, sc, sink := newTestWorld(t, t.TempDir(), now)
	if err := s.RegisterUser("g1", "u1", "alice", 10, 1, 0); err != nil {
		t.Fatalf("register: %v", err)
	}
	addWorkEffect(t, s, "fx-1", now.Unix()-3600, now.Unix()+3600, 60)

	if _, code := sc.Cancel("g1", "fx-1"); code != "" {
		t.Fatalf("Cancel: %s", code)
	}
	before := int64(-1)
	s.View("g1", func(d *state.GroupData) { before = d.Group.User("u1").Coins })

	sc.fire("g1", "fx-1") // late timer callback

	s.View("g1", func(d *state.GroupData) {
		if got := d.Group.User("u1").Coins; got != before {
			t.Fatalf("late fire changed coins: %d -> %d", before, got)
		}
	})
	if len(sink.events) != 1 {
		t.Fatalf("late fire recorded a settlement: %v", sink.events)
	}
}

func TestTransformExpiry_RestoresWithDepth(t *testing.T) {
	now := time.Unix(1_800_000_000, 0)
	s, sc, _ := newTestWorld(t, t.TempDir(), now)
	if err := s.RegisterUser("g1", "u1", "alice", 10, 1, 0); err != nil {
		t.Fatalf("register: %v", err)
	}
	err := s.Mutate("g1", func(d *state.GroupData) error {
		u := d.Group.User("u1")
		u.Length = 0
		d.Effects["fx-t"] = &model.Effect{
			ID: "fx-t", Kind: model.EffectStatusTransform, GroupID: "g1", OwnerID: "u1",
			Start: now.Unix() - 100, End: now.Unix() - 1, State: model.EffectActive,
			Payload: model.EffectPayload{OriginalLength: 42, Depth: 7},
		}
		u.AddEffect("fx-t")
		d.TouchGroups()
		d.TouchEffects()
		return nil
	})
	if err != nil {
		t.Fatalf("Mutate: %v", err)
	}

	if err := sc.Recover(); err != nil {
		t.Fatalf("Recover: %v", err)
	}
	s.View("g1", func(d *state.GroupData) {
		u := d.Group.User("u1")
		if u.Length != 49 {
			t.Fatalf("restore wrong: %d", u.Length)
		}
		if u.Items.SavedDepth != 7 {
			t.Fatalf("depth not carried: %d", u.Items.SavedDepth)
		}
	})
}

func TestGiveawayExpiry_RefundsRemainder(t *testing.T) {
	now := time.Unix(1_800_000_000, 0)
	s, sc, _ := newTestWorld(t, t.TempDir(), now)
	if err := s.RegisterUser("g1", "u1", "alice", 10, 1, 0); err != nil {
		t.Fatalf("register: %v", err)
	}
	err := s.Mutate("g1", func(d *state.GroupData) error {
		d.Giveaways["ga-1"] = &model.Giveaway{
			ID: "ga-1", GroupID: "g1", SenderID: "u1",
			Total: 100, Remaining: 40, Shares: 5, Left: 2,
			Claims: map[string]int64{"x": 60}, CreatedAt: now.Unix() - 100,
		}
		d.Effects["fx-g"] = &model.Effect{
			ID: "fx-g", Kind: model.EffectPooledGiveaway, GroupID: "g1", OwnerID: "u1",
			Start: now.Unix() - 100, End: now.Unix() - 1, State: model.EffectActive,
			Payload: model.EffectPayload{GiveawayID: "ga-1"},
		}
		d.TouchEffects()
		return nil
	})
	if err != nil {
		t.Fatalf("Mutate: %v", err)
	}

	if err := sc.Recover(); err != nil {
		t.Fatalf("Recover: %v", err)
	}
	s.View("g1", func(d *state.GroupData) {
		if got := d.Group.User("u1").Coins; got != 40 {
			t.Fatalf("refund wrong: %d", got)
		}
		if _, ok := d.Giveaways["ga-1"]; ok {
			t.Fatalf("expired giveaway still open")
		}
	})
}
