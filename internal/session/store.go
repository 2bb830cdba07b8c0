package session

import (
	"sync"
	"time"

	"github.com/desertthunder/mixtape/internal/shared"
)

const (
	DefaultIdleTimeout = 24 * time.Hour
	DefaultMaxSessions = 10000
)

type entry struct {
	session  *Session
	lastSeen time.Time
}

// Store keeps one [Session] per browser.
//
// Sessions idle for longer than the idle timeout are swept when new ones are created.
// When the store is full the least recently seen session is evicted.
type Store struct {
	mu          sync.Mutex
	sessions    map[string]*entry
	newApp      AppFactory
	newUser     UserFactory
	idleTimeout time.Duration
	maxSessions int
	now         func() time.Time
}

// StoreOption configures a [Store].
type StoreOption func(*Store)

// WithIdleTimeout sets how long an unused session is kept.
func WithIdleTimeout(d time.Duration) StoreOption {
	return func(st *Store) {
		if d > 0 {
			st.idleTimeout = d
		}
	}
}

// WithMaxSessions caps the number of live sessions.
func WithMaxSessions(n int) StoreOption {
	return func(st *Store) {
		if n > 0 {
			st.maxSessions = n
		}
	}
}

// WithClock replaces the time source used for idle tracking.
func WithClock(now func() time.Time) StoreOption {
	return func(st *Store) {
		if now != nil {
			st.now = now
		}
	}
}

// NewStore creates an empty store whose sessions share the given factories.
func NewStore(app AppFactory, user UserFactory, opts ...StoreOption) *Store {
	st := &Store{
		sessions:    make(map[string]*entry),
		newApp:      app,
		newUser:     user,
		idleTimeout: DefaultIdleTimeout,
		maxSessions: DefaultMaxSessions,
		now:         time.Now,
	}
	for _, opt := range opts {
		opt(st)
	}
	return st
}

// Get returns the session for id, or false if none exists or it has expired.
func (st *Store) Get(id string) (*Session, bool) {
	st.mu.Lock()
	defer st.mu.Unlock()

	e, ok := st.sessions[id]
	if !ok {
		return nil, false
	}

	now := st.now()
	if now.Sub(e.lastSeen) > st.idleTimeout {
		delete(st.sessions, id)
		return nil, false
	}
	e.lastSeen = now
	return e.session, true
}

// Create registers a new unauthenticated session under a fresh ID.
func (st *Store) Create() *Session {
	s := New(shared.GenerateID(), st.newApp, st.newUser)

	st.mu.Lock()
	defer st.mu.Unlock()

	now := st.now()
	st.sweep(now)
	if len(st.sessions) >= st.maxSessions {
		st.evictOldest()
	}
	st.sessions[s.ID] = &entry{session: s, lastSeen: now}
	return s
}

// GetOrCreate returns the session for id, creating one when id is unknown.
func (st *Store) GetOrCreate(id string) *Session {
	if s, ok := st.Get(id); ok {
		return s
	}
	return st.Create()
}

// Delete forgets the session for id.
func (st *Store) Delete(id string) {
	st.mu.Lock()
	defer st.mu.Unlock()
	delete(st.sessions, id)
}

// Len returns the number of live sessions.
func (st *Store) Len() int {
	st.mu.Lock()
	defer st.mu.Unlock()
	return len(st.sessions)
}

// sweep drops idle sessions. Callers hold mu.
func (st *Store) sweep(now time.Time) {
	for id, e := range st.sessions {
		if now.Sub(e.lastSeen) > st.idleTimeout {
			delete(st.sessions, id)
		}
	}
}

func (st *Store) evictOldest() {
	var oldest string
	var seen time.Time
	for id, e := range st.sessions {
		if oldest == "" || e.lastSeen.Before(seen) {
			oldest, seen = id, e.lastSeen
		}
	}
	delete(st.sessions, oldest)
}
