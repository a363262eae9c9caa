package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/gobarber/web/internal/config"
	"github.com/gobarber/web/internal/devapi"
	apperrors "github.com/gobarber/web/internal/errors"
)

func devAPICmd() *cobra.Command {
	var (
		port int
		seed bool
	)

	cmd := &cobra.Command{
		Use:   "devapi",
		Short: "Start the in-memory development backend",
		Long: `Start an in-memory backend implementing the API the web app calls.

Users live only in memory; avatars are written to the configured
upload store. Password reset tokens are logged instead of mailed.

Examples:
  gobarber devapi
  gobarber devapi --port=3334 --seed`,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(cmd)
			if err != nil {
				return err
			}
			if port > 0 {
				cfg.DevAPI.Port = port
			}
			if err := cfg.Validate(); err != nil {
				return err
			}
			return runDevAPI(cfg, seed)
		},
	}

	cmd.Flags().IntVarP(&port, "port", "p", 0, "Port to listen on (default from config)")
	cmd.Flags().BoolVar(&seed, "seed", false, "Create a demo user (demo@gobarber.dev / 123456)")

	return cmd
}

func runDevAPI(cfg *config.Config, seed bool) error {
	logger := newLogger(os.Stderr, cfg.Log)
	slog.SetDefault(logger)

	store, err := newStore(cfg.Upload)
	if err != nil {
		return err
	}

	addr := cfg.DevAPI.Address()
	backend := devapi.New(store,
		devapi.WithLogger(logger),
		devapi.WithPublicURL("http://"+addr),
	)
	if seed {
		if _, err := backend.CreateUser("Demo", "demo@gobarber.dev", "123456"); err != nil {
			return err
		}
	}

	httpServer := &http.Server{
		Addr:              addr,
		Handler:           backend.Handler(),
		ReadHeaderTimeout: 5 * time.Second,
	}

	printBanner()
	fmt.Println("  devapi")
	fmt.Println()
	success("Listening on http://%s", addr)
	info("Upload store: %s", cfg.Upload.Backend)
	if seed {
		info("Demo user:    demo@gobarber.dev / 123456")
	}
	fmt.Println()

	shutdown := make(chan os.Signal, 1)
	signal.Notify(shutdown, os.Interrupt, syscall.SIGTERM)
	defer signal.Stop(shutdown)

	errCh := make(chan error, 1)
	go func() {
		errCh <- httpServer.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		if errors.Is(err, syscall.EADDRINUSE) {
			return apperrors.New("G021").WithDetail(addr).Wrap(err)
		}
		return apperrors.New("G020").Wrap(err)
	case <-shutdown:
		fmt.Println("\n  Shutting down...")
		ctx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout())
		defer cancel()
		return httpServer.Shutdown(ctx)
	}
}
