package state

import (
	"fmt"
	"log"
	"path/filepath"
	"sort"
	"sync"

	"growarena.gg/internal/game/model"
)

// Store owns all durable game state. Every mutation for a group runs under
// that group's lock, command path and timer path alike, so a transfer and an
// expiring-effect payout can never interleave on the same records.
//
// Persistence runs after the critical section: the mutated collections are
// exported and written with atomic replace. A write failure is logged, the
// collection stays marked dirty, and the next mutation retries it.
type Store struct {
	dir string
	log *log.Logger

	mu     sync.Mutex
	groups map[string]*groupState
	dirty  touched

	saveMu sync.Mutex
}

type groupState struct {
	mu sync.Mutex
	d  GroupData
}

// GroupData is everything one group owns, visible only inside Mutate/View.
type GroupData struct {
	Group         *model.GroupRecord
	Effects       map[string]*model.Effect
	Giveaways     map[string]*model.Giveaway
	Listings      []*model.Listing
	NextListingID int
	Cooldowns     map[string]*model.CooldownBook

	touch touched
}

type touched struct {
	groups, cooldowns, effects bool
}

func (t touched) any() bool { return t.groups || t.cooldowns || t.effects }

func (t *touched) merge(o touched) {
	t.groups = t.groups || o.groups
	t.cooldowns = t.cooldowns || o.cooldowns
	t.effects = t.effects || o.effects
}

// TouchGroups marks the group/user collection for persistence when the
// mutation commits. Handlers call the Touch methods for whatever they change.
func (g *GroupData) TouchGroups()    { g.touch.groups = true }
func (g *GroupData) TouchCooldowns() { g.touch.cooldowns = true }
func (g *GroupData) TouchEffects()   { g.touch.effects = true }

// Book returns the cooldown book for a user, creating it on first use.
func (g *GroupData) Book(userID string) *model.CooldownBook {
	b, ok := g.Cooldowns[userID]
	if !ok {
		b = model.NewCooldownBook()
		g.Cooldowns[userID] = b
	}
	return b
}

func newGroupState(id string) *groupState {
	return &groupState{d: GroupData{
		Group:         model.NewGroup(id),
		Effects:       map[string]*model.Effect{},
		Giveaways:     map[string]*model.Giveaway{},
		NextListingID: 1,
		Cooldowns:     map[string]*model.CooldownBook{},
	}}
}

// Open loads the three collections from dir (missing files start empty).
func Open(dir string, logger *log.Logger) (*Store, error) {
	s := &Store{
		dir:    dir,
		log:    logger,
		groups: map[string]*groupState{},
	}
	if err := s.load(); err != nil {
		return nil, fmt.Errorf("state: load: %w", err)
	}
	return s, nil
}

func (s *Store) groupsPath() string    { return filepath.Join(s.dir, "groups.json.zst") }
func (s *Store) cooldownsPath() string { return filepath.Join(s.dir, "cooldowns.json.zst") }
func (s *Store) effectsPath() string   { return filepath.Join(s.dir, "effects.json.zst") }

func (s *Store) group(id string) *groupState {
	s.mu.Lock()
	defer s.mu.Unlock()
	gs, ok := s.groups[id]
	if !ok {
		gs = newGroupState(id)
		s.groups[id] = gs
	}
	return gs
}

// GroupIDs returns a sorted snapshot of known group ids.
func (s *Store) GroupIDs() []string {
	s.mu.Lock()
	ids := make([]string, 0, len(s.groups))
	for id := range s.groups {
		ids = append(ids, id)
	}
	s.mu.Unlock()
	sort.Strings(ids)
	return ids
}

// Mutate runs fn under the group's lock and persists whatever fn touched.
// An error from fn aborts persistence; fn must not mutate before its own
// validation passes.
func (s *Store) Mutate(groupID string, fn func(*GroupData) error) error {
	gs := s.group(groupID)

	gs.mu.Lock()
	gs.d.touch = touched{}
	err := fn(&gs.d)
	t := gs.d.touch
	gs.mu.Unlock()

	if err != nil {
		return err
	}
	if t.any() {
		s.mu.Lock()
		s.dirty.merge(t)
		s.mu.Unlock()
		s.persistDirty()
	}
	return nil
}

// View runs fn under the group's lock without marking anything dirty.
func (s *Store) View(groupID string, fn func(*GroupData)) {
	gs := s.group(groupID)
	gs.mu.Lock()
	fn(&gs.d)
	gs.mu.Unlock()
}

// RegisterUser creates a user record with the given starting stats.
func (s *Store) RegisterUser(groupID, userID, nickname string, length int64, hardness int, coins int64) error {
	return s.Mutate(groupID, func(g *GroupData) error {
		if _, ok := g.Group.Users[userID]; ok {
			return ErrAlreadyRegistered
		}
		g.Group.Users[userID] = &model.UserRecord{
			ID:       userID,
			Nickname: nickname,
			Length:   length,
			Hardness: model.ClampHardness(hardness),
			Coins:    coins,
		}
		g.TouchGroups()
		return nil
	})
}

// Flush persists every collection regardless of dirty flags.
func (s *Store) Flush() error {
	s.mu.Lock()
	s.dirty = touched{groups: true, cooldowns: true, effects: true}
	s.mu.Unlock()
	return s.persistDirty()
}

func (s *Store) persistDirty() error {
	s.saveMu.Lock()
	defer s.saveMu.Unlock()

	s.mu.Lock()
	t := s.dirty
	s.dirty = touched{}
	s.mu.Unlock()

	var failed touched
	var firstErr error
	if t.groups {
		if err := s.saveGroups(); err != nil {
			failed.groups = true
			firstErr = err
		}
	}
	if t.cooldowns {
		if err := s.saveCooldowns(); err != nil {
			failed.cooldowns = true
			if firstErr == nil {
				firstErr = err
			}
		}
	}
	if t.effects {
		if err := s.saveEffects(); err != nil {
			failed.effects = true
			if firstErr == nil {
				firstErr = err
			}
		}
	}
	if failed.any() {
		s.mu.Lock()
		s.dirty.merge(failed)
		s.mu.Unlock()
		if s.log != nil {
			s.log.Printf("state: persist failed (will retry on next mutation): %v", firstErr)
		}
	}
	return firstErr
}
