package sched

import (
	"fmt"
	"log"
	"sync"
	"sync/atomic"
	"time"

	"growarena.gg/internal/game/cooldown"
	"growarena.gg/internal/game/economy"
	"growarena.gg/internal/game/model"
	"growarena.gg/internal/game/resolve"
	"growarena.gg/internal/game/state"
	"growarena.gg/internal/game/tuning"
	"growarena.gg/internal/protocol"
)

// Notifier pushes an async message when a deferred effect settles. The
// messaging layer implements it; a nil notifier drops messages.
type Notifier func(groupID, userID, message string)

// Settlements receives every terminal effect transition for indexing. A nil
// sink is skipped.
type Settlements interface {
	EffectSettled(e *model.Effect, outcome string, payout, penalty int64)
}

// Scheduler owns one cancellable timer handle per active effect, keyed by
// effect id. The durable effect record, not the timer, decides whether a
// reversal still has to run: timers are rebuilt from the store on startup
// and every settlement checks the record's state under the group lock first.
type Scheduler struct {
	store  *state.Store
	tn     tuning.Tuning
	rng    resolve.Rand
	notify Notifier
	settle Settlements
	log    *log.Logger
	now    func() time.Time

	mu     sync.Mutex
	timers map[string]*time.Timer

	seq uint64
}

type Option func(*Scheduler)

func WithNotifier(n Notifier) Option       { return func(s *Scheduler) { s.notify = n } }
func WithSettlements(x Settlements) Option { return func(s *Scheduler) { s.settle = x } }
func WithClock(now func() time.Time) Option {
	return func(s *Scheduler) { s.now = now }
}

func New(store *state.Store, tn tuning.Tuning, rng resolve.Rand, logger *log.Logger, opts ...Option) *Scheduler {
	s := &Scheduler{
		store:  store,
		tn:     tn,
		rng:    rng,
		log:    logger,
		now:    time.Now,
		timers: map[string]*time.Timer{},
	}
	for _, o := range opts {
		o(s)
	}
	return s
}

// SetNotifier installs the push sink after construction. The transport needs
// the engine, which needs the scheduler, so wiring closes the loop here.
func (s *Scheduler) SetNotifier(n Notifier) {
	s.notify = n
}

// NewID mints an effect id unique across restarts.
func (s *Scheduler) NewID() string {
	return fmt.Sprintf("fx-%d-%d", s.now().UnixNano(), atomic.AddUint64(&s.seq, 1))
}

// Arm schedules the timer for an already-persisted Active effect. Fairy
// windows tick on the growth cooldown instead of sleeping to the end.
func (s *Scheduler) Arm(e *model.Effect) {
	now := s.now().Unix()
	wake := e.End
	if e.Kind == model.EffectConsumableWindow && e.Payload.Item == "fairy" {
		if t := s.nextFairyTick(e, now); t < wake {
			wake = t
		}
	}
	delay := time.Duration(wake-now) * time.Second
	if delay < 0 {
		delay = 0
	}
	id, gid := e.ID, e.GroupID

	s.mu.Lock()
	if old, ok := s.timers[id]; ok {
		old.Stop()
	}
	s.timers[id] = time.AfterFunc(delay, func() { s.fire(gid, id) })
	s.mu.Unlock()
}

func (s *Scheduler) nextFairyTick(e *model.Effect, now int64) int64 {
	last := e.Payload.LastTick
	if last == 0 {
		last = e.Start
	}
	return last + s.tn.Growth.CooldownS
}

// Stop drops every pending timer. Settlements already applied stay applied;
// recovery re-arms the rest on the next start.
func (s *Scheduler) Stop() {
	s.mu.Lock()
	defer s.mu.Unlock()
	for id, t := range s.timers {
		t.Stop()
		delete(s.timers, id)
	}
}

// Drop cancels the pending timer for an effect whose record the caller
// already retired inside its own mutation.
func (s *Scheduler) Drop(effectID string) { s.dropTimer(effectID) }

func (s *Scheduler) dropTimer(id string) {
	s.mu.Lock()
	if t, ok := s.timers[id]; ok {
		t.Stop()
		delete(s.timers, id)
	}
	s.mu.Unlock()
}

// Recover scans the durable effects and either settles or re-arms each one.
// It must finish before the transport starts accepting commands.
func (s *Scheduler) Recover() error {
	now := s.now().Unix()
	for _, gid := range s.store.GroupIDs() {
		var pending []*model.Effect
		s.store.View(gid, func(d *state.GroupData) {
			for _, e := range d.Effects {
				if e.Active() {
					cp := *e
					pending = append(pending, &cp)
				}
			}
		})
		for _, e := range pending {
			if e.End <= now {
				s.fire(gid, e.ID)
			} else {
				s.Arm(e)
			}
		}
	}
	return nil
}

// fire runs one timer callback. All record checks happen under the group
// lock, so a racing cancel either beat us (effect gone) or waits for us.
func (s *Scheduler) fire(groupID, effectID string) {
	var notes []note
	err := s.store.Mutate(groupID, func(d *state.GroupData) error {
		e, ok := d.Effects[effectID]
		if !ok || !e.Active() {
			return nil
		}
		now := s.now().Unix()

		if e.Kind == model.EffectConsumableWindow && e.Payload.Item == "fairy" && now < e.End {
			notes = s.fairyTick(d, e, now)
			return nil
		}
		notes = s.settleExpired(d, e, now)
		return nil
	})
	if err != nil && s.log != nil {
		s.log.Printf("sched: fire %s/%s: %v", groupID, effectID, err)
	}
	s.emit(groupID, notes)

	// Re-arm a fairy window that is still open.
	var rearm *model.Effect
	s.store.View(groupID, func(d *state.GroupData) {
		if e, ok := d.Effects[effectID]; ok && e.Active() {
			cp := *e
			rearm = &cp
		}
	})
	if rearm != nil {
		s.Arm(rearm)
	} else {
		s.dropTimer(effectID)
	}
}

type note struct {
	userID  string
	message string
}

func (s *Scheduler) emit(groupID string, notes []note) {
	if s.notify == nil {
		return
	}
	for _, n := range notes {
		func() {
			defer func() {
				if r := recover(); r != nil && s.log != nil {
					s.log.Printf("sched: notify panic: %v", r)
				}
			}()
			s.notify(groupID, n.userID, n.message)
		}()
	}
}

func (s *Scheduler) record(e *model.Effect, outcome string, payout, penalty int64) {
	if s.settle != nil {
		s.settle.EffectSettled(e, outcome, payout, penalty)
	}
}

// settleExpired applies the kind-specific reversal and removes the effect.
// Runs exactly once per effect: the record leaves the collection in the same
// mutation that applies the reversal.
func (s *Scheduler) settleExpired(d *state.GroupData, e *model.Effect, now int64) []note {
	var notes []note
	owner := d.Group.User(e.OwnerID)

	switch e.Kind {
	case model.EffectTimedWork:
		net, tax := economy.Process(d.Group, s.tn.Tax.Brackets, e.Payload.TotalReward)
		if owner != nil {
			owner.Coins += net
		}
		s.record(e, "completed", net, 0)
		notes = append(notes, note{e.OwnerID, fmt.Sprintf("Work complete: +%d coins (%d tax)", net, tax)})

	case model.EffectStatusTransform:
		if owner != nil {
			owner.Length = e.Payload.OriginalLength + e.Payload.Depth
			owner.Items.SavedDepth = e.Payload.Depth
		}
		s.record(e, "expired", e.Payload.Depth, 0)
		notes = append(notes, note{e.OwnerID, fmt.Sprintf("Transform wore off: length restored to %d (depth %d)", e.Payload.OriginalLength+e.Payload.Depth, e.Payload.Depth)})

	case model.EffectConsumableWindow:
		s.record(e, "expired", 0, 0)
		notes = append(notes, note{e.OwnerID, fmt.Sprintf("Your %s wore off", e.Payload.Item)})

	case model.EffectPooledGiveaway:
		if ga, ok := d.Giveaways[e.Payload.GiveawayID]; ok {
			if ga.Remaining > 0 {
				if sender := d.Group.User(ga.SenderID); sender != nil {
					sender.Coins += ga.Remaining
				}
				notes = append(notes, note{ga.SenderID, fmt.Sprintf("Red packet expired: %d coins refunded", ga.Remaining)})
			}
			s.record(e, "expired", ga.Remaining, 0)
			delete(d.Giveaways, e.Payload.GiveawayID)
		}
	}

	e.State = model.EffectExpired
	if owner != nil {
		owner.RemoveEffect(e.ID)
	}
	delete(d.Effects, e.ID)
	d.TouchGroups()
	d.TouchEffects()
	return notes
}

// fairyTick auto-fires a growth attempt whenever the growth cooldown has
// lapsed inside the window.
func (s *Scheduler) fairyTick(d *state.GroupData, e *model.Effect, now int64) []note {
	owner := d.Group.User(e.OwnerID)
	if owner == nil || owner.Items.Sterilized {
		e.Payload.LastTick = now
		d.TouchEffects()
		return nil
	}
	book := d.Book(e.OwnerID)
	if on, _ := cooldown.Check(book, protocol.ActionGrow, "", s.tn.Growth.CooldownS, now); on {
		e.Payload.LastTick = now
		d.TouchEffects()
		return nil
	}
	delta := roll0(s.rng, s.tn.Items.FairyGainMin, s.tn.Items.FairyGainMax)
	kept, _ := resolve.Credit(owner, ParasiteBeneficiary(d, e.OwnerID), delta)
	cooldown.Record(book, protocol.ActionGrow, "", now)
	e.Payload.LastTick = now
	d.TouchGroups()
	d.TouchCooldowns()
	d.TouchEffects()
	return []note{{e.OwnerID, fmt.Sprintf("The spring fairy grew you +%d", kept)}}
}

// ParasiteBeneficiary resolves an attached parasite's owner for redirected
// gains; nil when the user carries no active parasite window.
func ParasiteBeneficiary(d *state.GroupData, userID string) *model.UserRecord {
	for _, e := range d.Effects {
		if e.Active() && e.Kind == model.EffectConsumableWindow &&
			e.Payload.Item == "parasite" && e.OwnerID == userID {
			return d.Group.User(e.Payload.BeneficiaryID)
		}
	}
	return nil
}

// ActiveOfKind finds the user's Active effect of one kind, if any.
func ActiveOfKind(d *state.GroupData, userID string, kind model.EffectKind) *model.Effect {
	for _, e := range d.Effects {
		if e.Active() && e.Kind == kind && e.OwnerID == userID {
			return e
		}
	}
	return nil
}

func roll0(r resolve.Rand, min, max int64) int64 {
	if max <= min {
		return min
	}
	return min + r.Int63n(max-min+1)
}
