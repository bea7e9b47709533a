package chatflow

import (
	"context"
	"sync"
	"time"
)

// SessionStore keeps flow sessions in memory and evicts idle ones.
type SessionStore struct {
	TTL time.Duration
	Now func() time.Time

	mu       sync.Mutex
	sessions map[string]*Session
}

func NewSessionStore(ttl time.Duration) *SessionStore {
	return &SessionStore{
		TTL:      ttl,
		Now:      func() time.Time { return time.Now().UTC() },
		sessions: map[string]*Session{},
	}
}

func (st *SessionStore) Put(s *Session) {
	st.mu.Lock()
	defer st.mu.Unlock()
	cp := *s
	st.sessions[s.ID] = &cp
}

func (st *SessionStore) Get(id string) (*Session, error) {
	st.mu.Lock()
	defer st.mu.Unlock()
	s, ok := st.live(id)
	if !ok {
		return nil, ErrSessionExpired
	}
	cp := *s
	return &cp, nil
}

// Update runs fn against the stored session under the store lock and keeps
// the result only when fn succeeds.
func (st *SessionStore) Update(id string, fn func(*Session) error) (*Session, error) {
	st.mu.Lock()
	defer st.mu.Unlock()

	s, ok := st.live(id)
	if !ok {
		return nil, ErrSessionExpired
	}

	next := *s
	if err := fn(&next); err != nil {
		return nil, err
	}
	st.sessions[id] = &next

	cp := next
	return &cp, nil
}

func (st *SessionStore) Len() int {
	st.mu.Lock()
	defer st.mu.Unlock()
	return len(st.sessions)
}

// Sweep drops expired sessions and returns how many were removed.
func (st *SessionStore) Sweep() int {
	st.mu.Lock()
	defer st.mu.Unlock()

	removed := 0
	for id, s := range st.sessions {
		if st.expired(s) {
			delete(st.sessions, id)
			removed++
		}
	}
	return removed
}

// Run sweeps every interval until ctx is done.
func (st *SessionStore) Run(ctx context.Context, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			st.Sweep()
		}
	}
}

func (st *SessionStore) live(id string) (*Session, bool) {
	s, ok := st.sessions[id]
	if !ok {
		return nil, false
	}
	if st.expired(s) {
		delete(st.sessions, id)
		return nil, false
	}
	return s, true
}

func (st *SessionStore) expired(s *Session) bool {
	return st.TTL > 0 && st.Now().Sub(s.UpdatedAt) > st.TTL
}
