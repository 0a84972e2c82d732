package session

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// Store keeps live sessions keyed by id and evicts the idle ones. Eviction
// cancels the session context, so work started on a dead session's behalf
// is aborted rather than leaked.
type Store struct {
	deps Deps
	ttl  time.Duration

	mu       sync.Mutex
	ctx      context.Context
	sessions map[string]*Session
}

// NewStore creates a Store whose sessions descend from ctx. Sessions idle
// for longer than ttl are evicted by the janitor.
func NewStore(ctx context.Context, deps Deps, ttl time.Duration) *Store {
	return &Store{
		deps:     deps,
		ttl:      ttl,
		ctx:      ctx,
		sessions: make(map[string]*Session),
	}
}

// GetOrCreate returns the session for id, creating one when id is empty or
// unknown. The returned session's id should be echoed to the client.
func (st *Store) GetOrCreate(id string) *Session {
	st.mu.Lock()
	defer st.mu.Unlock()

	if id != "" {
		if s, ok := st.sessions[id]; ok {
			s.Touch()
			return s
		}
	}

	s := New(st.ctx, uuid.New().String(), st.deps)
	st.sessions[s.ID] = s
	return s
}

// Get returns the session for id, if it exists.
func (st *Store) Get(id string) (*Session, bool) {
	st.mu.Lock()
	defer st.mu.Unlock()
	s, ok := st.sessions[id]
	if ok {
		s.Touch()
	}
	return s, ok
}

// Len returns the number of live sessions.
func (st *Store) Len() int {
	st.mu.Lock()
	defer st.mu.Unlock()
	return len(st.sessions)
}

// RunJanitor evicts idle sessions every interval until ctx is cancelled.
func (st *Store) RunJanitor(ctx context.Context, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case now := <-ticker.C:
			st.evictIdle(now)
		}
	}
}

// evictIdle removes and cancels sessions idle past the TTL.
func (st *Store) evictIdle(now time.Time) {
	st.mu.Lock()
	defer st.mu.Unlock()

	for id, s := range st.sessions {
		if now.Sub(s.seen()) < st.ttl {
			continue
		}
		s.close()
		delete(st.sessions, id)
		st.deps.Logger.Debug("Session evicted", zap.String("session_id", id))
	}
}
