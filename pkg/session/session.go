package session

import (
	"context"
	"sync"
	"time"

	"github.com/gobarber/web/pkg/toast"
)

// Session is one browser session.
type Session struct {
	// ID is the unique session identifier, also the cookie value.
	ID string

	// IP is the client address the session was created from.
	IP string

	// CreatedAt is when the session was created.
	CreatedAt time.Time

	provider *toast.Provider

	mu         sync.RWMutex
	values     map[string]any
	lastActive time.Time
}

func newSession(id, ip string, now time.Time, provider *toast.Provider) *Session {
	return &Session{
		ID:         id,
		IP:         ip,
		CreatedAt:  now,
		provider:   provider,
		values:     make(map[string]any),
		lastActive: now,
	}
}

// Get returns the value stored under key, or nil.
func (s *Session) Get(key string) any {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.values[key]
}

// Set stores value under key.
func (s *Session) Set(key string, value any) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.values[key] = value
}

// Delete removes key.
func (s *Session) Delete(key string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.values, key)
}

// Provider returns the toast provider rooted at this session.
func (s *Session) Provider() *toast.Provider {
	return s.provider
}

// LastActive returns when the session was last used.
func (s *Session) LastActive() time.Time {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.lastActive
}

func (s *Session) touch(now time.Time) {
	s.mu.Lock()
	s.lastActive = now
	s.mu.Unlock()
}

type sessionKey struct{}

// WithSession returns a copy of ctx carrying s.
func WithSession(ctx context.Context, s *Session) context.Context {
	return context.WithValue(ctx, sessionKey{}, s)
}

// FromContext returns the session on ctx, or nil.
func FromContext(ctx context.Context) *Session {
	s, _ := ctx.Value(sessionKey{}).(*Session)
	return s
}
