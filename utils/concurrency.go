package utils

import (
	"sync"
	"time"

	"github.com/jonboulle/clockwork"
)

// CooldownTracker remembers when each key last passed a cooldown check.
type CooldownTracker struct {
	clock clockwork.Clock
	mu    sync.Mutex
	last  map[string]stamp
}

// stamp is the time a key was accepted and the cooldown in effect then.
type stamp struct {
	at       time.Time
	cooldown time.Duration
}

// Stamp records a successful check so it can be undone if the guarded
// action fails afterwards.
type Stamp struct {
	key  string
	at   time.Time
	prev stamp
	had  bool
}

func NewCooldownTracker(clock clockwork.Clock) *CooldownTracker {
	return &CooldownTracker{clock: clock, last: make(map[string]stamp)}
}

// CheckAndStamp reports whether key is off cooldown. If it is, the current
// time is stored as its new last-accepted time. A rejected check leaves the
// window untouched.
func (t *CooldownTracker) CheckAndStamp(key string, cooldown time.Duration) (Stamp, bool) {
	t.mu.Lock()
	defer t.mu.Unlock()

	now := t.clock.Now()
	prev, had := t.last[key]
	if had && now.Sub(prev.at) < cooldown {
		return Stamp{}, false // Locked
	}

	t.last[key] = stamp{at: now, cooldown: cooldown}
	return Stamp{key: key, at: now, prev: prev, had: had}, true
}

// Undo restores the state before s unless a newer stamp replaced it.
func (t *CooldownTracker) Undo(s Stamp) {
	if s.key == "" {
		return
	}
	t.mu.Lock()
	defer t.mu.Unlock()

	if cur, ok := t.last[s.key]; !ok || !cur.at.Equal(s.at) {
		return
	}
	if s.had {
		t.last[s.key] = s.prev
	} else {
		delete(t.last, s.key)
	}
}

// Prune drops entries older than both maxAge and the cooldown they were
// stamped with, and returns how many were removed.
func (t *CooldownTracker) Prune(maxAge time.Duration) int {
	t.mu.Lock()
	defer t.mu.Unlock()

	now := t.clock.Now()
	removed := 0
	for key, st := range t.last {
		if age := now.Sub(st.at); age > maxAge && age >= st.cooldown {
			delete(t.last, key)
			removed++
		}
	}
	return removed
}

// Len returns the number of tracked keys.
func (t *CooldownTracker) Len() int {
	t.mu.Lock()
	defer t.mu.Unlock()
	return len(t.last)
}
