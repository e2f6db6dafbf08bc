package utils

import (
	"testing"
	"time"

	"github.com/jonboulle/clockwork"
	"github.com/stretchr/testify/assert"
)

func TestCooldownTracker(t *testing.T) {
	clock := clockwork.NewFakeClock()
	tracker := NewCooldownTracker(clock)

	_, ok := tracker.CheckAndStamp("u1", time.Minute)
	assert.True(t, ok)

	clock.Advance(30 * time.Second)
	_, ok = tracker.CheckAndStamp("u1", time.Minute)
	assert.False(t, ok)

	_, ok = tracker.CheckAndStamp("u2", time.Minute)
	assert.True(t, ok, "keys are independent")

	clock.Advance(31 * time.Second)
	_, ok = tracker.CheckAndStamp("u1", time.Minute)
	assert.True(t, ok, "rejected checks do not extend the window")
}

func TestCooldownTrackerUndo(t *testing.T) {
	clock := clockwork.NewFakeClock()
	tracker := NewCooldownTracker(clock)

	stamp, ok := tracker.CheckAndStamp("u1", time.Minute)
	assert.True(t, ok)
	tracker.Undo(stamp)

	_, ok = tracker.CheckAndStamp("u1", time.Minute)
	assert.True(t, ok, "undone stamp frees the window")

	tracker.Undo(Stamp{})
	assert.Equal(t, 1, tracker.Len())
}

func TestCooldownTrackerPrune(t *testing.T) {
	clock := clockwork.NewFakeClock()
	tracker := NewCooldownTracker(clock)

	tracker.CheckAndStamp("old", 0)
	clock.Advance(2 * time.Hour)
	tracker.CheckAndStamp("new", 0)

	assert.Equal(t, 1, tracker.Prune(time.Hour))
	assert.Equal(t, 1, tracker.Len())
}

func TestCooldownTrackerPruneKeepsLongCooldowns(t *testing.T) {
	clock := clockwork.NewFakeClock()
	tracker := NewCooldownTracker(clock)

	_, ok := tracker.CheckAndStamp("g:u", 48*time.Hour)
	assert.True(t, ok)

	clock.Advance(25 * time.Hour)
	assert.Zero(t, tracker.Prune(24*time.Hour))
	_, ok = tracker.CheckAndStamp("g:u", 48*time.Hour)
	assert.False(t, ok, "a 48h cooldown still holds after 25h")

	clock.Advance(23 * time.Hour)
	assert.Equal(t, 1, tracker.Prune(24*time.Hour))
	_, ok = tracker.CheckAndStamp("g:u", 48*time.Hour)
	assert.True(t, ok)
}
