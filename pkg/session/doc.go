// Package session tracks browser sessions.
//
// Each Session is the root of one browser's notification tree: it owns a
// toast.Provider, mounted when the session is created and closed when the
// session is removed, expires, or the manager shuts down. A Session is
// also a small key/value bag that satisfies auth.Session, so the signed-in
// principal lives on it.
//
// # Manager
//
// The Manager identifies sessions by cookie:
//
//	m := session.NewManager(session.DefaultManagerConfig(), logger)
//	defer m.Shutdown(ctx)
//	r.Use(m.Middleware)
//
// Middleware resolves (or creates) the session for each request and places
// it on the request context together with its toast provider, so handlers
// can call session.FromContext and toast.Add.
//
// # Memory Protection
//
// Sessions idle for longer than IdleTimeout are reaped by a background
// janitor. When MaxSessions is reached the least recently active session is
// evicted, and MaxSessionsPerIP caps how many sessions one address may open.
package session
