package session

import (
	"context"
	"sync"
	"time"

	"github.com/oklog/ulid/v2"
	"go.uber.org/zap"

	"finitefield.org/storefront-web/internal/cart"
	"finitefield.org/storefront-web/internal/catalog"
	"finitefield.org/storefront-web/internal/contact"
	"finitefield.org/storefront-web/internal/format"
	"finitefield.org/storefront-web/internal/notify"
	"finitefield.org/storefront-web/internal/quickview"
	"finitefield.org/storefront-web/internal/schedule"
)

const (
	defaultTTL        = 2 * time.Hour
	minSweepInterval  = time.Second
	sweepIntervalRate = 4
)

// Options configures a Store. Zero values select defaults.
type Options struct {
	Catalog      *catalog.Catalog
	Formatter    format.Formatter
	Scheduler    schedule.Scheduler
	TTL          time.Duration
	AutoClose    time.Duration
	NotifyTTL    time.Duration
	ContactDelay time.Duration
	Logger       *zap.Logger
	NewID        func() string
}

// Store keeps the live sessions of the process. Nothing is persisted.
type Store struct {
	mu       sync.Mutex
	sessions map[string]*State
	opts     Options
}

// NewStore builds an empty store.
func NewStore(opts Options) *Store {
	if opts.Catalog == nil {
		opts.Catalog = catalog.Default()
	}
	if opts.Scheduler == nil {
		opts.Scheduler = schedule.System()
	}
	if opts.TTL <= 0 {
		opts.TTL = defaultTTL
	}
	if opts.Logger == nil {
		opts.Logger = zap.NewNop()
	}
	if opts.NewID == nil {
		opts.NewID = func() string { return ulid.Make().String() }
	}
	return &Store{sessions: map[string]*State{}, opts: opts}
}

// Catalog returns the catalog sessions are built against.
func (s *Store) Catalog() *catalog.Catalog { return s.opts.Catalog }

// Formatter returns the price formatter shared by all sessions.
func (s *Store) Formatter() format.Formatter { return s.opts.Formatter }

// Get returns the live session with id and refreshes its idle deadline.
func (s *Store) Get(id string) (*State, bool) {
	if id == "" {
		return nil, false
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	st, ok := s.sessions[id]
	if !ok {
		return nil, false
	}
	st.lastSeen = s.opts.Scheduler.Now()
	return st, true
}

// GetOrCreate returns the session for id, creating a fresh one when id is
// unknown or expired. created reports whether a new session was made.
func (s *Store) GetOrCreate(id string) (st *State, created bool) {
	if st, ok := s.Get(id); ok {
		return st, false
	}
	return s.Create(), true
}

// Create starts a new empty session.
func (s *Store) Create() *State {
	now := s.opts.Scheduler.Now()
	st := &State{ID: s.opts.NewID(), CreatedAt: now, lastSeen: now}

	logger := s.opts.Logger.With(zap.String("session", shortID(st.ID)))
	sched := schedule.Guarded(st, s.opts.Scheduler)

	st.Notices = notify.NewQueue(sched, s.opts.NotifyTTL)
	st.Cart = cart.New(cart.Deps{
		Icons:          s.opts.Catalog,
		Notifier:       st.Notices,
		Scheduler:      sched,
		Formatter:      s.opts.Formatter,
		AutoCloseDelay: s.opts.AutoClose,
		Logger:         logger,
	})
	st.QuickView = quickview.New(s.opts.Catalog, st.Cart, logger)
	st.Contact = contact.NewSubmitter(sched, st.Notices, s.opts.ContactDelay, logger)

	s.mu.Lock()
	s.sessions[st.ID] = st
	s.mu.Unlock()

	logger.Debug("session created")
	return st
}

// Delete drops a session and cancels its timers.
func (s *Store) Delete(id string) bool {
	s.mu.Lock()
	st, ok := s.sessions[id]
	if ok {
		delete(s.sessions, id)
	}
	s.mu.Unlock()
	if ok {
		st.With(func(st *State) { st.close() })
	}
	return ok
}

// Len reports the number of live sessions.
func (s *Store) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.sessions)
}

// Sweep evicts sessions idle for longer than the TTL and returns how many were removed.
func (s *Store) Sweep() int {
	now := s.opts.Scheduler.Now()
	var expired []*State

	s.mu.Lock()
	for id, st := range s.sessions {
		if now.Sub(st.lastSeen) > s.opts.TTL {
			delete(s.sessions, id)
			expired = append(expired, st)
		}
	}
	s.mu.Unlock()

	for _, st := range expired {
		st.With(func(st *State) { st.close() })
	}
	if len(expired) > 0 {
		s.opts.Logger.Info("sessions evicted", zap.Int("count", len(expired)), zap.Int("live", s.Len()))
	}
	return len(expired)
}

// Run sweeps periodically until ctx is cancelled.
func (s *Store) Run(ctx context.Context) {
	interval := s.opts.TTL / sweepIntervalRate
	if interval < minSweepInterval {
		interval = minSweepInterval
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			s.Sweep()
		}
	}
}

// Close evicts every session.
func (s *Store) Close() {
	s.mu.Lock()
	all := make([]*State, 0, len(s.sessions))
	for id, st := range s.sessions {
		delete(s.sessions, id)
		all = append(all, st)
	}
	s.mu.Unlock()
	for _, st := range all {
		st.With(func(st *State) { st.close() })
	}
}

func shortID(id string) string {
	if len(id) > 12 {
		return id[:12]
	}
	return id
}
