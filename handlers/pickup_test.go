package handlers

import (
	"context"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestPickupClaimedOnce(t *testing.T) {
	p := NewPickups()
	token, picked := p.Offer()

	var wins atomic.Int32
	var wg sync.WaitGroup
	for _, user := range []string{"a", "b", "c", "d"} {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if p.Claim(token, user) {
				wins.Add(1)
			}
		}()
	}
	wg.Wait()

	assert.Equal(t, int32(1), wins.Load())
	user, ok := p.Await(context.Background(), token, picked)
	assert.True(t, ok)
	assert.Contains(t, []string{"a", "b", "c", "d"}, user)
	assert.Zero(t, p.Len())
}

func TestPickupExpires(t *testing.T) {
	p := NewPickups()
	token, picked := p.Offer()

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Millisecond)
	defer cancel()
	_, ok := p.Await(ctx, token, picked)
	assert.False(t, ok)
	assert.False(t, p.Claim(token, "late"))
}

func TestPickupClaimBeatsWithdraw(t *testing.T) {
	p := NewPickups()
	token, picked := p.Offer()
	assert.True(t, p.Claim(token, "a"))

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	user, ok := p.Await(ctx, token, picked)
	assert.True(t, ok)
	assert.Equal(t, "a", user)
	assert.False(t, p.Withdraw(token))
}
