package main

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/gobarber/web/internal/config"
	apperrors "github.com/gobarber/web/internal/errors"
	"github.com/gobarber/web/pkg/upload"
)

func TestVersionShort(t *testing.T) {
	cmd := rootCmd()
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetArgs([]string{"version", "--short"})

	if err := cmd.Execute(); err != nil {
		t.Fatalf("Execute() error = %v", err)
	}
	if got := strings.TrimSpace(out.String()); got != version {
		t.Errorf("version --short = %q, want %q", got, version)
	}
}

func TestLoadConfigFlag(t *testing.T) {
	path := filepath.Join(t.TempDir(), "custom.yaml")
	data := "server:\n  port: 4000\ntoast:\n  dwellTime: 5s\n"
	if err := os.WriteFile(path, []byte(data), 0644); err != nil {
		t.Fatal(err)
	}

	cmd := rootCmd()
	if err := cmd.PersistentFlags().Set("config", path); err != nil {
		t.Fatal(err)
	}
	cfg, err := loadConfig(cmd)
	if err != nil {
		t.Fatalf("loadConfig() error = %v", err)
	}
	if cfg.Server.Port != 4000 {
		t.Errorf("Server.Port = %d, want 4000", cfg.Server.Port)
	}
	if cfg.Toast.DwellTime != "5s" {
		t.Errorf("Toast.DwellTime = %q, want 5s", cfg.Toast.DwellTime)
	}
	if cfg.Path() != path {
		t.Errorf("Path() = %q, want %q", cfg.Path(), path)
	}
}

func TestLoadConfigSubcommandFlag(t *testing.T) {
	path := filepath.Join(t.TempDir(), "custom.yaml")
	if err := os.WriteFile(path, []byte("server:\n  port: 4000\n"), 0644); err != nil {
		t.Fatal(err)
	}

	serve, _, err := rootCmd().Find([]string{"serve"})
	if err != nil {
		t.Fatalf("Find(serve) error = %v", err)
	}
	if err := serve.ParseFlags([]string{"--config", path}); err != nil {
		t.Fatalf("ParseFlags() error = %v", err)
	}
	cfg, err := loadConfig(serve)
	if err != nil {
		t.Fatalf("loadConfig() error = %v", err)
	}
	if cfg.Server.Port != 4000 {
		t.Errorf("Server.Port = %d, want 4000", cfg.Server.Port)
	}
	if cfg.Path() != path {
		t.Errorf("Path() = %q, want %q", cfg.Path(), path)
	}
}

func TestLoadConfigEnv(t *testing.T) {
	path := filepath.Join(t.TempDir(), "gobarber.yaml")
	data := "server:\n  port: 4000\ntoast:\n  dwellTime: 5s\n"
	if err := os.WriteFile(path, []byte(data), 0644); err != nil {
		t.Fatal(err)
	}
	t.Setenv("GOBARBER_PORT", "4100")

	cmd := rootCmd()
	if err := cmd.PersistentFlags().Set("config", path); err != nil {
		t.Fatal(err)
	}
	cfg, err := loadConfig(cmd)
	if err != nil {
		t.Fatalf("loadConfig() error = %v", err)
	}
	if cfg.Toast.DwellTime != "5s" {
		t.Errorf("Toast.DwellTime = %q, want 5s from the file", cfg.Toast.DwellTime)
	}
	if cfg.Server.Port != 4100 {
		t.Errorf("Server.Port = %d, want 4100", cfg.Server.Port)
	}
}

func TestNewLogger(t *testing.T) {
	var buf bytes.Buffer
	logger := newLogger(&buf, config.LogConfig{Level: "warn", Format: "json"})

	logger.Info("hidden")
	logger.Warn("shown", "component", "test")

	out := buf.String()
	if strings.Contains(out, "hidden") {
		t.Errorf("info record written at warn level: %s", out)
	}
	if !strings.Contains(out, `"msg":"shown"`) || !strings.Contains(out, `"component":"test"`) {
		t.Errorf("missing JSON record: %s", out)
	}
}

func TestNewLoggerText(t *testing.T) {
	var buf bytes.Buffer
	logger := newLogger(&buf, config.LogConfig{Level: "debug", Format: "text"})

	logger.Debug("details", "id", "42")

	if !strings.Contains(buf.String(), "msg=details id=42") {
		t.Errorf("text output = %q", buf.String())
	}
}

func TestNewStoreDisk(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "avatars")
	store, err := newStore(config.UploadConfig{Backend: "disk", Dir: dir, MaxBytes: 1024})
	if err != nil {
		t.Fatalf("newStore() error = %v", err)
	}
	if _, ok := store.(*upload.DiskStore); !ok {
		t.Errorf("store = %T, want *upload.DiskStore", store)
	}
	if _, err := os.Stat(dir); err != nil {
		t.Errorf("store dir not created: %v", err)
	}
}

func TestNewStoreS3(t *testing.T) {
	store, err := newStore(config.UploadConfig{
		Backend: "s3",
		S3:      config.S3Config{Bucket: "avatars", Region: "us-east-1", Endpoint: "http://localhost:9000", UsePathStyle: true},
	})
	if err != nil {
		t.Fatalf("newStore() error = %v", err)
	}
	if _, ok := store.(*upload.S3Store); !ok {
		t.Errorf("store = %T, want *upload.S3Store", store)
	}
}

func TestNewStoreUnknownBackend(t *testing.T) {
	_, err := newStore(config.UploadConfig{Backend: "ftp"})
	if !apperrors.Is(err, "G003") {
		t.Errorf("newStore() error = %v, want G003", err)
	}
}
