package session

import (
	"container/list"
	"context"
	"errors"
	"log/slog"
	"net"
	"net/http"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/gobarber/web/pkg/toast"
)

// Recorder receives session lifecycle counts. *middleware.Metrics
// implements it.
type Recorder interface {
	RecordSessionCreate()
	RecordSessionDestroy()
}

// Manager owns the live sessions. It provides LRU eviction, per-IP limits
// and idle expiry.
type Manager struct {
	mu sync.Mutex

	// Sessions in LRU order (front = most recently active)
	lru   *list.List
	index map[string]*list.Element

	// Session count per IP address
	sessionsByIP map[string]int

	config ManagerConfig
	logger *slog.Logger

	// Overrideable for tests.
	now   func() time.Time
	newID func() string

	// Lifecycle
	done    chan struct{}
	stopped bool
}

// ManagerConfig configures the session manager.
type ManagerConfig struct {
	// CookieName is the cookie carrying the session id.
	// Default: "gobarber_session".
	CookieName string

	// SecureCookie sets the Secure attribute on the session cookie.
	SecureCookie bool

	// IdleTimeout is how long an unused session is kept.
	// Default: 30 minutes.
	IdleTimeout time.Duration

	// CleanupInterval is how often idle sessions are reaped.
	// Default: 1 minute.
	CleanupInterval time.Duration

	// MaxSessions is the maximum number of live sessions before LRU
	// eviction. Zero means no limit.
	// Default: 10000.
	MaxSessions int

	// MaxSessionsPerIP is the maximum number of live sessions per IP
	// address. Zero means no limit.
	// Default: 100.
	MaxSessionsPerIP int

	// ProviderOptions configure the toast provider mounted for each session.
	ProviderOptions []toast.ProviderOption

	// Recorder, if set, is told about created and destroyed sessions.
	Recorder Recorder
}

// DefaultManagerConfig returns a ManagerConfig with sensible defaults.
func DefaultManagerConfig() ManagerConfig {
	return ManagerConfig{
		CookieName:       "gobarber_session",
		IdleTimeout:      30 * time.Minute,
		CleanupInterval:  1 * time.Minute,
		MaxSessions:      10000,
		MaxSessionsPerIP: 100,
	}
}

// Error types for session management.
var (
	// ErrTooManySessionsFromIP is returned when the per-IP session limit is exceeded.
	ErrTooManySessionsFromIP = errors.New("too many sessions from this IP address")

	// ErrSessionNotFound is returned when a session doesn't exist.
	ErrSessionNotFound = errors.New("session not found")

	// ErrManagerStopped is returned when operations are attempted on a stopped manager.
	ErrManagerStopped = errors.New("session manager is stopped")
)

// NewManager creates a session manager and starts its janitor.
func NewManager(config ManagerConfig, logger *slog.Logger) *Manager {
	if logger == nil {
		logger = slog.Default()
	}
	def := DefaultManagerConfig()
	if config.CookieName == "" {
		config.CookieName = def.CookieName
	}
	if config.IdleTimeout <= 0 {
		config.IdleTimeout = def.IdleTimeout
	}
	if config.CleanupInterval <= 0 {
		config.CleanupInterval = def.CleanupInterval
	}

	m := &Manager{
		lru:          list.New(),
		index:        make(map[string]*list.Element),
		sessionsByIP: make(map[string]int),
		config:       config,
		logger:       logger.With("component", "session_manager"),
		now:          time.Now,
		newID:        uuid.NewString,
		done:         make(chan struct{}),
	}

	go m.cleanupLoop()

	return m
}

// Config returns the manager configuration.
func (m *Manager) Config() ManagerConfig {
	return m.config
}

// Create starts a new session for ip and mounts its toast provider.
func (m *Manager) Create(ip string) (*Session, error) {
	m.mu.Lock()

	if m.stopped {
		m.mu.Unlock()
		return nil, ErrManagerStopped
	}
	if m.config.MaxSessionsPerIP > 0 && m.sessionsByIP[ip] >= m.config.MaxSessionsPerIP {
		m.mu.Unlock()
		return nil, ErrTooManySessionsFromIP
	}

	var evicted *Session
	if m.config.MaxSessions > 0 && m.lru.Len() >= m.config.MaxSessions {
		evicted = m.evictOneLocked()
	}

	id := m.newID()
	for m.index[id] != nil {
		id = m.newID()
	}
	sess := newSession(id, ip, m.now(), toast.NewProvider(m.config.ProviderOptions...))
	m.index[id] = m.lru.PushFront(sess)
	m.sessionsByIP[ip]++
	total := m.lru.Len()
	m.mu.Unlock()

	if evicted != nil {
		m.destroy(evicted)
		m.logger.Debug("evicted session",
			"session_id", evicted.ID,
			"reason", "session_limit_exceeded")
	}
	if m.config.Recorder != nil {
		m.config.Recorder.RecordSessionCreate()
	}
	m.logger.Debug("session created", "session_id", id, "ip", ip, "total", total)
	return sess, nil
}

// Get returns the live session with id, marking it active. It returns nil
// for unknown or idle-expired sessions.
func (m *Manager) Get(id string) *Session {
	m.mu.Lock()
	el, ok := m.index[id]
	if !ok || m.stopped {
		m.mu.Unlock()
		return nil
	}
	sess := el.Value.(*Session)
	now := m.now()
	if now.Sub(sess.LastActive()) > m.config.IdleTimeout {
		m.removeLocked(id)
		m.mu.Unlock()
		m.destroy(sess)
		return nil
	}
	sess.touch(now)
	m.lru.MoveToFront(el)
	m.mu.Unlock()
	return sess
}

// Remove destroys the session with id, closing its toast provider.
func (m *Manager) Remove(id string) error {
	m.mu.Lock()
	el, ok := m.index[id]
	if !ok {
		m.mu.Unlock()
		return ErrSessionNotFound
	}
	sess := el.Value.(*Session)
	m.removeLocked(id)
	m.mu.Unlock()

	m.destroy(sess)
	return nil
}

// Len returns the number of live sessions.
func (m *Manager) Len() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.lru.Len()
}

func (m *Manager) removeLocked(id string) {
	el, ok := m.index[id]
	if !ok {
		return
	}
	sess := el.Value.(*Session)
	m.lru.Remove(el)
	delete(m.index, id)
	m.sessionsByIP[sess.IP]--
	if m.sessionsByIP[sess.IP] <= 0 {
		delete(m.sessionsByIP, sess.IP)
	}
}

// evictOneLocked drops the least recently active session and returns it
// for destruction outside the lock.
func (m *Manager) evictOneLocked() *Session {
	back := m.lru.Back()
	if back == nil {
		return nil
	}
	sess := back.Value.(*Session)
	m.removeLocked(sess.ID)
	return sess
}

// destroy unmounts the session's toast tree. Must not hold m.mu: closing
// the provider notifies listeners synchronously.
func (m *Manager) destroy(sess *Session) {
	sess.provider.Close()
	if m.config.Recorder != nil {
		m.config.Recorder.RecordSessionDestroy()
	}
}

// cleanupLoop periodically reaps idle sessions.
func (m *Manager) cleanupLoop() {
	ticker := time.NewTicker(m.config.CleanupInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			m.cleanupExpired()
		case <-m.done:
			return
		}
	}
}

// cleanupExpired removes sessions idle for longer than IdleTimeout.
func (m *Manager) cleanupExpired() {
	m.mu.Lock()
	if m.stopped {
		m.mu.Unlock()
		return
	}

	now := m.now()
	var expired []*Session
	// Walk from the least recently active end; stop at the first live one.
	for el := m.lru.Back(); el != nil; {
		sess := el.Value.(*Session)
		if now.Sub(sess.LastActive()) <= m.config.IdleTimeout {
			break
		}
		prev := el.Prev()
		m.removeLocked(sess.ID)
		expired = append(expired, sess)
		el = prev
	}
	remaining := m.lru.Len()
	m.mu.Unlock()

	for _, sess := range expired {
		m.destroy(sess)
	}
	if len(expired) > 0 {
		m.logger.Debug("cleaned up expired sessions",
			"count", len(expired),
			"remaining", remaining)
	}
}

// Shutdown stops the janitor and destroys every session.
func (m *Manager) Shutdown(ctx context.Context) error {
	m.mu.Lock()
	if m.stopped {
		m.mu.Unlock()
		return nil
	}
	m.stopped = true
	close(m.done)

	all := make([]*Session, 0, m.lru.Len())
	for el := m.lru.Front(); el != nil; el = el.Next() {
		all = append(all, el.Value.(*Session))
	}
	m.lru.Init()
	m.index = make(map[string]*list.Element)
	m.sessionsByIP = make(map[string]int)
	m.mu.Unlock()

	for _, sess := range all {
		if err := ctx.Err(); err != nil {
			return err
		}
		m.destroy(sess)
	}
	m.logger.Info("session manager stopped", "sessions", len(all))
	return nil
}

// Middleware resolves the session from the request cookie, creating one
// when needed, and places it and its toast provider on the request context.
func (m *Manager) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		sess, err := m.Resolve(w, r)
		if err != nil {
			status := http.StatusServiceUnavailable
			if errors.Is(err, ErrTooManySessionsFromIP) {
				status = http.StatusTooManyRequests
			}
			m.logger.Warn("session unavailable", "error", err, "remote_addr", r.RemoteAddr)
			http.Error(w, http.StatusText(status), status)
			return
		}
		ctx := WithSession(r.Context(), sess)
		ctx = toast.WithProvider(ctx, sess.Provider())
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// Resolve returns the session named by the request cookie. When the cookie
// is missing or stale a new session is created and its cookie is set on w.
func (m *Manager) Resolve(w http.ResponseWriter, r *http.Request) (*Session, error) {
	if c, err := r.Cookie(m.config.CookieName); err == nil {
		if sess := m.Get(c.Value); sess != nil {
			return sess, nil
		}
	}

	sess, err := m.Create(clientIP(r))
	if err != nil {
		return nil, err
	}
	http.SetCookie(w, &http.Cookie{
		Name:     m.config.CookieName,
		Value:    sess.ID,
		Path:     "/",
		HttpOnly: true,
		Secure:   m.config.SecureCookie,
		SameSite: http.SameSiteLaxMode,
	})
	return sess, nil
}

// Destroy removes the request's session and expires its cookie.
func (m *Manager) Destroy(w http.ResponseWriter, r *http.Request) {
	if sess := FromContext(r.Context()); sess != nil {
		_ = m.Remove(sess.ID)
	}
	http.SetCookie(w, &http.Cookie{
		Name:     m.config.CookieName,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true,
		Secure:   m.config.SecureCookie,
		SameSite: http.SameSiteLaxMode,
	})
}

func clientIP(r *http.Request) string {
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}
