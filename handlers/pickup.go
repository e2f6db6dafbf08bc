package handlers

import (
	"context"
	"sync"

	"github.com/google/uuid"
)

// pickupPrefix marks the custom id of drop pickup buttons.
const pickupPrefix = "pickup:"

// Pickups tracks open score drops. Each offer is taken by at most one
// member or withdrawn, never both.
type Pickups struct {
	mu     sync.Mutex
	offers map[string]chan string
}

func NewPickups() *Pickups {
	return &Pickups{offers: make(map[string]chan string)}
}

// Offer opens a drop and returns its token and the channel that receives
// the picker's user id.
func (p *Pickups) Offer() (string, <-chan string) {
	token := uuid.NewString()
	ch := make(chan string, 1)
	p.mu.Lock()
	p.offers[token] = ch
	p.mu.Unlock()
	return token, ch
}

// Claim hands the drop to userID. It reports false when the drop was already
// taken or withdrawn.
func (p *Pickups) Claim(token, userID string) bool {
	p.mu.Lock()
	ch, ok := p.offers[token]
	delete(p.offers, token)
	p.mu.Unlock()
	if ok {
		ch <- userID
	}
	return ok
}

// Withdraw closes the drop. It reports false when someone claimed it first.
func (p *Pickups) Withdraw(token string) bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	_, ok := p.offers[token]
	delete(p.offers, token)
	return ok
}

// Await blocks until the drop is claimed or ctx ends. It returns the picker,
// or false when the drop expired.
func (p *Pickups) Await(ctx context.Context, token string, picked <-chan string) (string, bool) {
	select {
	case userID := <-picked:
		return userID, true
	case <-ctx.Done():
		if p.Withdraw(token) {
			return "", false
		}
		return <-picked, true
	}
}

func (p *Pickups) Len() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return len(p.offers)
}
