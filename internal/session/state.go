// Package session owns the in-memory UI state of each visitor. A State is
// guarded by one mutex; every HTTP command and every timer callback for that
// visitor runs while holding it.
package session

import (
	"sync"
	"time"

	"finitefield.org/storefront-web/internal/cart"
	"finitefield.org/storefront-web/internal/contact"
	"finitefield.org/storefront-web/internal/notify"
	"finitefield.org/storefront-web/internal/quickview"
)

// State is the UI state of one visitor.
type State struct {
	mu sync.Mutex

	ID        string
	CreatedAt time.Time

	Cart      *cart.Manager
	QuickView *quickview.Modal
	Notices   *notify.Queue
	Contact   *contact.Submitter

	// guarded by Store.mu
	lastSeen time.Time
}

// Lock acquires the state lock. State satisfies sync.Locker so schedulers can
// run callbacks under it.
func (s *State) Lock() { s.mu.Lock() }

// Unlock releases the state lock.
func (s *State) Unlock() { s.mu.Unlock() }

// With runs fn while holding the state lock.
func (s *State) With(fn func(*State)) {
	s.mu.Lock()
	defer s.mu.Unlock()
	fn(s)
}

// Snapshot is a read-only copy of what the page needs to render.
type Snapshot struct {
	Cart      cart.View
	QuickView quickview.View
	Notices   []notify.Message
	Contact   contact.Ticket
}

// Snapshot captures the current projections under the lock.
func (s *State) Snapshot() Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.snapshot()
}

// Update runs fn under the lock and returns the projections it left behind.
func (s *State) Update(fn func(*State)) Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()
	fn(s)
	return s.snapshot()
}

func (s *State) snapshot() Snapshot {
	var snap Snapshot
	snap.Cart = s.Cart.Render()
	snap.QuickView = s.QuickView.View()
	snap.Notices = s.Notices.Active()
	snap.Contact, _ = s.Contact.Last()
	return snap
}

// close cancels pending timers. Callers must hold the lock.
func (s *State) close() {
	s.Cart.Reset()
	s.QuickView.Close()
	s.Notices.Clear()
	s.Contact.Cancel()
}
