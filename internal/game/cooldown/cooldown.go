package cooldown

import (
	"growarena.gg/internal/game/model"
)

// Pure timing bookkeeping over a user's cooldown book. Callers pass explicit
// now values (unix seconds) and run inside the store's group lock; nothing
// here touches a clock.

func key(action, target string) string {
	if target == "" {
		return action
	}
	return action + "|" + target
}

// Check reports whether the action is still cooling down and, if so, the
// remaining seconds.
func Check(b *model.CooldownBook, action, target string, durationS, now int64) (bool, int64) {
	last, ok := b.Stamps[key(action, target)]
	if !ok {
		return false, 0
	}
	if rem := last + durationS - now; rem > 0 {
		return true, rem
	}
	return false, 0
}

// Elapsed returns seconds since the action last fired, or -1 if it never has.
// Tiered actions branch on this against their regime thresholds.
func Elapsed(b *model.CooldownBook, action, target string, now int64) int64 {
	last, ok := b.Stamps[key(action, target)]
	if !ok {
		return -1
	}
	return now - last
}

// Record stamps the action as fired at now.
func Record(b *model.CooldownBook, action, target string, now int64) {
	b.Stamps[key(action, target)] = now
}

// Limited reports whether the actor has exhausted the rolling window for the
// action. Windows are per actor, never per target; the window only resets
// once the gap since its start exceeds the window length.
func Limited(b *model.CooldownBook, action string, windowS int64, max int, now int64) bool {
	w, ok := b.Windows[action]
	if !ok || now-w.Start > windowS {
		return false
	}
	return w.Count >= max
}

// Count bumps the rolling window counter, resetting it when stale.
func Count(b *model.CooldownBook, action string, windowS, now int64) {
	w, ok := b.Windows[action]
	if !ok || now-w.Start > windowS {
		b.Windows[action] = model.RateWindow{Start: now, Count: 1}
		return
	}
	w.Count++
	b.Windows[action] = w
}
