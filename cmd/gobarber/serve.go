package main

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/spf13/cobra"
	"go.opentelemetry.io/otel"

	"github.com/gobarber/web/internal/config"
	"github.com/gobarber/web/pkg/api"
	"github.com/gobarber/web/pkg/middleware"
	"github.com/gobarber/web/pkg/pages"
	"github.com/gobarber/web/pkg/server"
	"github.com/gobarber/web/pkg/session"
	"github.com/gobarber/web/pkg/toast"
	"github.com/gobarber/web/pkg/upload"
)

func serveCmd() *cobra.Command {
	var (
		port   int
		host   string
		apiURL string
		proxy  bool
	)

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Start the web server",
		Long: `Start the web server.

Configuration is read from gobarber.yaml (or --config), then
GOBARBER_* environment variables, then flags.

Examples:
  gobarber serve
  gobarber serve --port=8080 --api=http://api.internal:3333`,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(cmd)
			if err != nil {
				return err
			}

			// Apply command-line overrides
			if port > 0 {
				cfg.Server.Port = port
			}
			if host != "" {
				cfg.Server.Host = host
			}
			if apiURL != "" {
				cfg.API.BaseURL = apiURL
			}
			if err := cfg.Validate(); err != nil {
				return err
			}
			return runServe(cfg, proxy)
		},
	}

	cmd.Flags().IntVarP(&port, "port", "p", 0, "Port to listen on (default from config)")
	cmd.Flags().StringVarP(&host, "host", "H", "", "Host to bind to (default from config)")
	cmd.Flags().StringVar(&apiURL, "api", "", "Backend API base URL (default from config)")
	cmd.Flags().BoolVar(&proxy, "trust-proxy", false, "Take client addresses from X-Forwarded-For / X-Real-IP")

	return cmd
}

func runServe(cfg *config.Config, trustProxy bool) error {
	logger := newLogger(os.Stderr, cfg.Log)
	slog.SetDefault(logger)

	printBanner()
	fmt.Println("  serve")
	fmt.Println()

	tp := otel.GetTracerProvider()

	var (
		metrics  *middleware.Metrics
		gatherer prometheus.Gatherer
	)
	if cfg.Metrics.Enabled {
		registry := prometheus.NewRegistry()
		registry.MustRegister(
			collectors.NewGoCollector(),
			collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		)
		metrics = middleware.NewMetrics(
			middleware.WithNamespace(cfg.Metrics.Namespace),
			middleware.WithRegistry(registry),
		)
		gatherer = registry
	} else {
		warn("Metrics disabled; /metrics serves the default registry")
	}

	client, err := api.New(cfg.API.BaseURL,
		api.WithTimeout(cfg.APITimeout()),
		api.WithLogger(logger),
		api.WithTracerProvider(tp),
	)
	if err != nil {
		return err
	}

	providerOpts := []toast.ProviderOption{toast.WithDwellTime(cfg.DwellTime())}
	sessCfg := session.DefaultManagerConfig()
	sessCfg.CookieName = cfg.Session.CookieName
	sessCfg.SecureCookie = cfg.Session.SecureCookie
	sessCfg.IdleTimeout = cfg.IdleTimeout()
	if cfg.Session.MaxSessions > 0 {
		sessCfg.MaxSessions = cfg.Session.MaxSessions
	}
	if metrics != nil {
		providerOpts = append(providerOpts, toast.WithListener(metrics.ObserveToast))
		sessCfg.Recorder = metrics
	}
	sessCfg.ProviderOptions = providerOpts
	sessions := session.NewManager(sessCfg, logger)

	uploadCfg := upload.AvatarConfig()
	if cfg.Upload.MaxBytes > 0 {
		uploadCfg.MaxFileSize = cfg.Upload.MaxBytes
	}

	srvCfg := server.DefaultConfig()
	srvCfg.Address = cfg.Server.Address()
	srvCfg.ShutdownTimeout = cfg.ShutdownTimeout()
	srvCfg.Upload = uploadCfg
	srvCfg.TrustProxyHeaders = trustProxy

	srv := server.New(srvCfg, pages.New(client, logger), sessions,
		server.WithLogger(logger),
		server.WithMetrics(metrics, gatherer),
		server.WithTracerProvider(tp),
	)

	success("Listening on http://%s", srvCfg.Address)
	info("Backend API:  %s", cfg.API.BaseURL)
	info("Toast dwell:  %s", cfg.DwellTime())
	if path := cfg.Path(); path != "" {
		info("Config:       %s", path)
	}
	fmt.Println()

	return srv.Run()
}
