package server

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/gorilla/websocket"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.opentelemetry.io/otel/trace"

	apperrors "github.com/gobarber/web/internal/errors"
	"github.com/gobarber/web/pkg/auth"
	"github.com/gobarber/web/pkg/middleware"
	"github.com/gobarber/web/pkg/pages"
	"github.com/gobarber/web/pkg/session"
)

// Server is the HTTP/WebSocket server of the web app.
type Server struct {
	config   Config
	pages    *pages.Pages
	sessions *session.Manager

	metrics        *middleware.Metrics
	gatherer       prometheus.Gatherer
	tracerProvider trace.TracerProvider

	upgrader websocket.Upgrader
	router   chi.Router

	httpServer *http.Server
	logger     *slog.Logger
}

// Option configures a Server.
type Option func(*Server)

// WithMetrics records HTTP, toast, session and WebSocket metrics. The
// gatherer backs GET /metrics; nil means prometheus.DefaultGatherer.
func WithMetrics(m *middleware.Metrics, g prometheus.Gatherer) Option {
	return func(s *Server) {
		s.metrics = m
		s.gatherer = g
	}
}

// WithTracerProvider traces requests with tp.
func WithTracerProvider(tp trace.TracerProvider) Option {
	return func(s *Server) {
		s.tracerProvider = tp
	}
}

// WithLogger sets the logger.
func WithLogger(l *slog.Logger) Option {
	return func(s *Server) {
		s.logger = l.With("component", "server")
	}
}

// New creates a Server serving p, with sessions resolved by sessions.
func New(config Config, p *pages.Pages, sessions *session.Manager, opts ...Option) *Server {
	config = config.withDefaults()
	s := &Server{
		config:   config,
		pages:    p,
		sessions: sessions,
		logger:   slog.Default().With("component", "server"),
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 4096,
			CheckOrigin:     config.CheckOrigin,
		},
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.gatherer == nil {
		s.gatherer = prometheus.DefaultGatherer
	}
	s.router = s.routes()
	return s
}

func (s *Server) routes() chi.Router {
	r := chi.NewRouter()
	r.Use(chimw.RequestID)
	if s.config.TrustProxyHeaders {
		r.Use(chimw.RealIP)
	}
	r.Use(chimw.Recoverer)
	if s.metrics != nil {
		r.Use(s.metrics.Middleware)
	}
	if s.tracerProvider != nil {
		r.Use(middleware.OpenTelemetry(
			middleware.WithTracerProvider(s.tracerProvider),
			middleware.WithFilter(func(r *http.Request) bool {
				return r.URL.Path != "/healthz" && r.URL.Path != "/metrics"
			}),
		))
	}

	r.Get("/healthz", s.handleHealth)
	r.Handle("/metrics", promhttp.HandlerFor(s.gatherer, promhttp.HandlerOpts{}))

	r.Group(func(r chi.Router) {
		r.Use(s.sessions.Middleware)

		r.Post("/sessions", s.handleSignIn)
		r.Delete("/sessions", s.handleSignOut)
		r.Post("/users", s.handleSignUp)
		r.Post("/password/forgot", s.handleForgotPassword)
		r.Post("/password/reset", s.handleResetPassword)

		r.Get("/toasts", s.handleToasts)
		r.Get("/toasts/container", s.handleToastContainer)
		r.Get("/toasts/ws", s.handleToastFeed)
		r.Delete("/toasts/{id}", s.handleDismiss)

		r.Group(func(r chi.Router) {
			r.Use(auth.RequireAuth(lookupSession))
			r.Get("/profile", s.handleShowProfile)
			r.Put("/profile", s.handleProfile)
			r.Patch("/profile/avatar", s.handleAvatar)
		})
	})
	return r
}

func lookupSession(r *http.Request) auth.Session {
	if sess := session.FromContext(r.Context()); sess != nil {
		return sess
	}
	return nil
}

// ServeHTTP implements http.Handler.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}

// Handler returns the server's HTTP handler.
func (s *Server) Handler() http.Handler {
	return s
}

// Run starts the server and blocks until it fails or receives SIGINT /
// SIGTERM, then shuts down gracefully.
func (s *Server) Run() error {
	s.httpServer = &http.Server{
		Addr:              s.config.Address,
		Handler:           s,
		ReadHeaderTimeout: s.config.ReadHeaderTimeout,
	}

	// Set up graceful shutdown
	shutdown := make(chan os.Signal, 1)
	signal.Notify(shutdown, os.Interrupt, syscall.SIGTERM)
	defer signal.Stop(shutdown)

	errCh := make(chan error, 1)
	go func() {
		s.logger.Info("server starting", "address", s.config.Address)
		errCh <- s.httpServer.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		if errors.Is(err, syscall.EADDRINUSE) {
			return apperrors.New("G021").WithDetail(s.config.Address).Wrap(err)
		}
		return apperrors.New("G020").Wrap(err)

	case <-shutdown:
		s.logger.Info("shutting down...")
		return s.Shutdown(context.Background())
	}
}

// Shutdown stops accepting requests, waits for in-flight ones, then
// closes every session.
func (s *Server) Shutdown(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, s.config.ShutdownTimeout)
	defer cancel()

	if s.httpServer != nil {
		if err := s.httpServer.Shutdown(ctx); err != nil {
			s.logger.Error("shutdown error", "error", err)
			return err
		}
	}
	if err := s.sessions.Shutdown(ctx); err != nil {
		return err
	}

	s.logger.Info("server shutdown complete")
	return nil
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{
		"status":   "ok",
		"sessions": s.sessions.Len(),
	})
}
