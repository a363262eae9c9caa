package main

import (
	"io"
	"log/slog"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/gobarber/web/internal/config"
	apperrors "github.com/gobarber/web/internal/errors"
	"github.com/gobarber/web/pkg/upload"
)

// loadConfig reads the --config file, or the first gobarber.* file in the
// working directory, then applies GOBARBER_* overrides.
func loadConfig(cmd *cobra.Command) (*config.Config, error) {
	var (
		cfg *config.Config
		err error
	)
	var path string
	if f := cmd.Flag("config"); f != nil {
		path = f.Value.String()
	}
	if path != "" {
		cfg, err = config.LoadFile(path)
	} else {
		cfg, err = config.Load(".")
	}
	if err != nil {
		return nil, err
	}
	if err := cfg.ApplyEnv(os.LookupEnv); err != nil {
		return nil, err
	}
	return cfg, nil
}

// newLogger builds the process logger from the log section.
func newLogger(w io.Writer, c config.LogConfig) *slog.Logger {
	var level slog.Level
	switch strings.ToLower(c.Level) {
	case "debug":
		level = slog.LevelDebug
	case "warn", "warning":
		level = slog.LevelWarn
	case "error":
		level = slog.LevelError
	default:
		level = slog.LevelInfo
	}

	opts := &slog.HandlerOptions{Level: level}
	if strings.EqualFold(c.Format, "json") {
		return slog.New(slog.NewJSONHandler(w, opts))
	}
	return slog.New(slog.NewTextHandler(w, opts))
}

// newStore opens the avatar store selected by the upload section.
func newStore(c config.UploadConfig) (upload.Store, error) {
	switch c.Backend {
	case "s3":
		client := upload.NewS3Client(upload.S3ClientOptions{
			Region:          c.S3.Region,
			Endpoint:        c.S3.Endpoint,
			UsePathStyle:    c.S3.UsePathStyle,
			AccessKeyID:     c.S3.AccessKeyID,
			SecretAccessKey: c.S3.SecretAccessKey,
		})
		return upload.NewS3Store(client, c.S3.Bucket, c.S3.Prefix, c.MaxBytes), nil
	case "disk", "":
		store, err := upload.NewDiskStore(c.Dir, c.MaxBytes)
		if err != nil {
			return nil, apperrors.New("G101").WithDetail(c.Dir).Wrap(err)
		}
		return store, nil
	default:
		return nil, apperrors.New("G003").WithDetail("got " + c.Backend)
	}
}
