// Package middleware provides the HTTP instrumentation used by the gobarber
// server.
//
// # Prometheus Metrics
//
// Metrics collects request counts and latencies per chi route pattern, and
// counters for the notification subsystem:
//
//   - gobarber_http_requests_total: requests by route, method and status
//   - gobarber_http_request_duration_seconds: latency histogram
//   - gobarber_toasts_shown_total: toasts added, by kind
//   - gobarber_toasts_removed_total: toasts removed, by reason
//   - gobarber_active_toasts: toasts currently visible across sessions
//   - gobarber_active_sessions: live browser sessions
//   - gobarber_websocket_connections: open toast feeds
//
//	m := middleware.NewMetrics(middleware.WithNamespace("gobarber"))
//	r.Use(m.Middleware)
//	provider := toast.NewProvider(toast.WithListener(m.ObserveToast))
//
// A nil *Metrics is valid and records nothing.
//
// # OpenTelemetry
//
// OpenTelemetry starts a server span per request using the global tracer
// provider, so downstream calls made with r.Context() join the trace.
//
//	r.Use(middleware.OpenTelemetry(
//	    middleware.WithFilter(func(r *http.Request) bool {
//	        return r.URL.Path != "/healthz"
//	    }),
//	))
package middleware
