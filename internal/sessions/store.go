package sessions

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/google/uuid"

	"demystifier-backend/internal/render"
	"demystifier-backend/internal/shared/metrics"
	"demystifier-backend/internal/shared/telemetry"
)

var ErrNotFound = errors.New("session not found")

// Store is an in-memory session registry. Sessions idle for longer than the
// TTL are evicted by Sweep; running sessions are never evicted.
type Store struct {
	mu       sync.RWMutex
	sessions map[string]*Session
	ttl      time.Duration
	diagrams render.DiagramRenderer
	now      func() time.Time
	onEvict  func(id string)
}

// NewStore constructs a Store. A zero ttl disables eviction.
func NewStore(ttl time.Duration, diagrams render.DiagramRenderer) *Store {
	return &Store{
		sessions: make(map[string]*Session),
		ttl:      ttl,
		diagrams: diagrams,
		now:      time.Now,
	}
}

// OnEvict registers fn to be called with the id of every removed session.
func (s *Store) OnEvict(fn func(id string)) {
	s.mu.Lock()
	s.onEvict = fn
	s.mu.Unlock()
}

// Create registers a new idle session.
func (s *Store) Create() *Session {
	sess := newSession(uuid.NewString(), s.now(), s.diagrams)
	s.mu.Lock()
	s.sessions[sess.id] = sess
	n := len(s.sessions)
	s.mu.Unlock()
	metrics.ActiveSessions.Set(float64(n))
	return sess
}

// Get returns the session and marks it as seen.
func (s *Store) Get(id string) (*Session, error) {
	s.mu.RLock()
	sess, ok := s.sessions[id]
	s.mu.RUnlock()
	if !ok {
		return nil, ErrNotFound
	}
	sess.touch(s.now())
	return sess, nil
}

// Delete removes a session and cancels its run.
func (s *Store) Delete(id string) bool {
	s.mu.Lock()
	sess, ok := s.sessions[id]
	delete(s.sessions, id)
	n := len(s.sessions)
	onEvict := s.onEvict
	s.mu.Unlock()
	if ok {
		sess.close()
		if onEvict != nil {
			onEvict(id)
		}
	}
	metrics.ActiveSessions.Set(float64(n))
	return ok
}

// Len returns the number of live sessions.
func (s *Store) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.sessions)
}

// Sweep evicts idle sessions and returns how many were removed.
func (s *Store) Sweep() int {
	if s.ttl <= 0 {
		return 0
	}
	now := s.now()
	var evicted []*Session
	s.mu.Lock()
	for id, sess := range s.sessions {
		idle, running := sess.idleSince(now)
		if running || idle < s.ttl {
			continue
		}
		delete(s.sessions, id)
		evicted = append(evicted, sess)
	}
	n := len(s.sessions)
	onEvict := s.onEvict
	s.mu.Unlock()

	for _, sess := range evicted {
		sess.close()
		if onEvict != nil {
			onEvict(sess.id)
		}
	}
	metrics.ActiveSessions.Set(float64(n))
	if len(evicted) > 0 {
		telemetry.Info("session.evicted", map[string]any{"count": len(evicted), "remaining": n})
	}
	return len(evicted)
}

// Run sweeps every interval until ctx is done.
func (s *Store) Run(ctx context.Context, interval time.Duration) {
	if s.ttl <= 0 || interval <= 0 {
		return
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
