// CLAUDE:SUMMARY In-memory session store: one record per session, TTL eviction, default session.
package immo

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/hazyhaar/immotrack/annonce"
	"github.com/hazyhaar/immotrack/idgen"
)

// DefaultSessionID is created at startup so the single-user UI and the
// MCP tools work without an explicit session handshake.
const DefaultSessionID = "default"

// Session holds one in-flight review: the working record plus the
// warnings of the last analysis.
type Session struct {
	ID        string           `json:"id"`
	Record    *annonce.Annonce `json:"record"`
	Warnings  []string         `json:"warnings,omitempty"`
	CreatedAt time.Time        `json:"created_at"`
	UpdatedAt time.Time        `json:"updated_at"`
}

func (s *Session) clone() *Session {
	out := *s
	rec := *s.Record
	out.Record = &rec
	out.Warnings = append([]string(nil), s.Warnings...)
	return &out
}

// sessionStore keeps sessions in memory. Persistence is deliberately
// absent: a review lives minutes, and an abandoned one is worthless.
type sessionStore struct {
	mu       sync.Mutex
	sessions map[string]*Session
	ttl      time.Duration
	newID    func() string
	logger   *slog.Logger
}

func newSessionStore(ttl time.Duration, logger *slog.Logger) *sessionStore {
	st := &sessionStore{
		sessions: make(map[string]*Session),
		ttl:      ttl,
		newID:    idgen.Prefixed("sess_", idgen.NanoID(12)),
		logger:   logger,
	}
	st.createWithID(DefaultSessionID)
	return st
}

func (st *sessionStore) createWithID(id string) *Session {
	now := time.Now()
	s := &Session{ID: id, Record: annonce.New(), CreatedAt: now, UpdatedAt: now}
	st.mu.Lock()
	st.sessions[id] = s
	st.mu.Unlock()
	return s.clone()
}

// Create makes a fresh session with a generated ID.
func (st *sessionStore) Create() *Session {
	return st.createWithID(st.newID())
}

// Get returns a snapshot of the session.
func (st *sessionStore) Get(id string) (*Session, error) {
	st.mu.Lock()
	defer st.mu.Unlock()
	s, ok := st.sessions[id]
	if !ok {
		return nil, ErrSessionNotFound
	}
	return s.clone(), nil
}

// Update runs fn on the session under the store lock and returns the
// resulting snapshot. fn sees the live record; an error aborts without
// touching the update time.
func (st *sessionStore) Update(id string, fn func(*Session) error) (*Session, error) {
	st.mu.Lock()
	defer st.mu.Unlock()
	s, ok := st.sessions[id]
	if !ok {
		return nil, ErrSessionNotFound
	}
	if err := fn(s); err != nil {
		return nil, err
	}
	s.UpdatedAt = time.Now()
	return s.clone(), nil
}

// Reset replaces the session's record with a fresh one.
func (st *sessionStore) Reset(id string) (*Session, error) {
	return st.Update(id, func(s *Session) error {
		s.Record = annonce.New()
		s.Warnings = nil
		return nil
	})
}

// Janitor evicts idle sessions until ctx is done. The default session is
// reset instead of evicted so it always exists.
func (st *sessionStore) Janitor(ctx context.Context) {
	interval := st.ttl / 4
	if interval > time.Hour {
		interval = time.Hour
	}
	if interval < time.Second {
		interval = time.Second
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			st.evictIdle()
		}
	}
}

func (st *sessionStore) evictIdle() {
	cutoff := time.Now().Add(-st.ttl)
	st.mu.Lock()
	defer st.mu.Unlock()
	for id, s := range st.sessions {
		if s.UpdatedAt.After(cutoff) {
			continue
		}
		if id == DefaultSessionID {
			s.Record = annonce.New()
			s.Warnings = nil
			s.UpdatedAt = time.Now()
			continue
		}
		delete(st.sessions, id)
		st.logger.Debug("session evicted", "session_id", id)
	}
}
