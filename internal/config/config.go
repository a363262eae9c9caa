package config

import (
	"encoding/json"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/gobarber/web/internal/errors"
)

const (
	// DefaultPort is the default web server port.
	DefaultPort = 3333

	// DefaultHost is the default web server host.
	DefaultHost = "localhost"

	// DefaultAPIPort is the default port of the development backend API.
	DefaultAPIPort = 3334

	// DefaultDwellTime is how long a toast stays visible.
	DefaultDwellTime = "3s"

	// DefaultCookieName names the session cookie.
	DefaultCookieName = "gobarber_session"

	// DefaultMaxUploadBytes limits avatar uploads.
	DefaultMaxUploadBytes = 5 << 20
)

// FileNames lists the configuration files Load looks for, in order.
var FileNames = []string{"gobarber.yaml", "gobarber.yml", "gobarber.json"}

// Config represents the complete gobarber configuration.
type Config struct {
	// Server contains web server configuration.
	Server ServerConfig `json:"server" yaml:"server"`

	// API configures the backend API client.
	API APIConfig `json:"api" yaml:"api"`

	// Toast configures the notification subsystem.
	Toast ToastConfig `json:"toast" yaml:"toast"`

	// Session contains browser session configuration.
	Session SessionConfig `json:"session" yaml:"session"`

	// Upload configures avatar storage.
	Upload UploadConfig `json:"upload" yaml:"upload"`

	// Log configures the slog handler.
	Log LogConfig `json:"log" yaml:"log"`

	// Metrics configures Prometheus instrumentation.
	Metrics MetricsConfig `json:"metrics" yaml:"metrics"`

	// DevAPI configures the in-memory backend started by "gobarber devapi".
	DevAPI DevAPIConfig `json:"devapi" yaml:"devapi"`

	// configPath stores the path where the config was loaded from.
	configPath string
}

// ServerConfig contains web server settings.
type ServerConfig struct {
	Host string `json:"host,omitempty" yaml:"host,omitempty"`
	Port int    `json:"port,omitempty" yaml:"port,omitempty"`

	// ShutdownTimeout bounds graceful shutdown (e.g., "10s").
	ShutdownTimeout string `json:"shutdownTimeout,omitempty" yaml:"shutdownTimeout,omitempty"`
}

// Address returns host:port.
func (s ServerConfig) Address() string {
	return s.Host + ":" + strconv.Itoa(s.Port)
}

// APIConfig configures the backend API client.
type APIConfig struct {
	// BaseURL is the root URL of the backend API.
	BaseURL string `json:"baseURL,omitempty" yaml:"baseURL,omitempty"`

	// Timeout bounds each backend request (e.g., "10s").
	Timeout string `json:"timeout,omitempty" yaml:"timeout,omitempty"`
}

// ToastConfig configures notifications.
type ToastConfig struct {
	// DwellTime is the process-wide time a toast stays visible.
	DwellTime string `json:"dwellTime,omitempty" yaml:"dwellTime,omitempty"`
}

// SessionConfig contains session settings.
type SessionConfig struct {
	CookieName string `json:"cookieName,omitempty" yaml:"cookieName,omitempty"`

	// IdleTimeout is how long an unused session is kept (e.g., "30m").
	IdleTimeout string `json:"idleTimeout,omitempty" yaml:"idleTimeout,omitempty"`

	// MaxSessions caps the number of live sessions. 0 means unlimited.
	MaxSessions int `json:"maxSessions,omitempty" yaml:"maxSessions,omitempty"`

	// SecureCookie sets the Secure attribute on the session cookie.
	SecureCookie bool `json:"secureCookie,omitempty" yaml:"secureCookie,omitempty"`
}

// UploadConfig selects and configures the avatar store.
type UploadConfig struct {
	// Backend is "disk" or "s3".
	Backend string `json:"backend,omitempty" yaml:"backend,omitempty"`

	// Dir is the disk store root.
	Dir string `json:"dir,omitempty" yaml:"dir,omitempty"`

	// MaxBytes limits the size of one upload.
	MaxBytes int64 `json:"maxBytes,omitempty" yaml:"maxBytes,omitempty"`

	S3 S3Config `json:"s3,omitempty" yaml:"s3,omitempty"`
}

// S3Config configures the S3 avatar store.
type S3Config struct {
	Bucket   string `json:"bucket,omitempty" yaml:"bucket,omitempty"`
	Region   string `json:"region,omitempty" yaml:"region,omitempty"`
	Prefix   string `json:"prefix,omitempty" yaml:"prefix,omitempty"`
	Endpoint string `json:"endpoint,omitempty" yaml:"endpoint,omitempty"`

	// UsePathStyle is needed by most S3-compatible servers (MinIO, LocalStack).
	UsePathStyle bool `json:"usePathStyle,omitempty" yaml:"usePathStyle,omitempty"`

	// Static credentials. When empty the AWS_ACCESS_KEY_ID and
	// AWS_SECRET_ACCESS_KEY environment variables are used.
	AccessKeyID     string `json:"accessKeyId,omitempty" yaml:"accessKeyId,omitempty"`
	SecretAccessKey string `json:"secretAccessKey,omitempty" yaml:"secretAccessKey,omitempty"`
}

// LogConfig configures logging.
type LogConfig struct {
	// Level is debug, info, warn or error.
	Level string `json:"level,omitempty" yaml:"level,omitempty"`

	// Format is text or json.
	Format string `json:"format,omitempty" yaml:"format,omitempty"`
}

// MetricsConfig configures Prometheus instrumentation.
type MetricsConfig struct {
	Enabled   bool   `json:"enabled" yaml:"enabled"`
	Namespace string `json:"namespace,omitempty" yaml:"namespace,omitempty"`
}

// DevAPIConfig configures the development backend.
type DevAPIConfig struct {
	Host string `json:"host,omitempty" yaml:"host,omitempty"`
	Port int    `json:"port,omitempty" yaml:"port,omitempty"`
}

// Address returns host:port.
func (d DevAPIConfig) Address() string {
	return d.Host + ":" + strconv.Itoa(d.Port)
}

// New creates a new Config with default values.
func New() *Config {
	return &Config{
		Server: ServerConfig{
			Host:            DefaultHost,
			Port:            DefaultPort,
			ShutdownTimeout: "10s",
		},
		API: APIConfig{
			BaseURL: "http://localhost:" + strconv.Itoa(DefaultAPIPort),
			Timeout: "10s",
		},
		Toast: ToastConfig{
			DwellTime: DefaultDwellTime,
		},
		Session: SessionConfig{
			CookieName:  DefaultCookieName,
			IdleTimeout: "30m",
		},
		Upload: UploadConfig{
			Backend:  "disk",
			Dir:      "uploads",
			MaxBytes: DefaultMaxUploadBytes,
		},
		Log: LogConfig{
			Level:  "info",
			Format: "text",
		},
		Metrics: MetricsConfig{
			Enabled:   true,
			Namespace: "gobarber",
		},
		DevAPI: DevAPIConfig{
			Host: DefaultHost,
			Port: DefaultAPIPort,
		},
	}
}

// Load reads configuration from the first of FileNames found in dir.
// If none exists the defaults are returned.
func Load(dir string) (*Config, error) {
	for _, name := range FileNames {
		path := filepath.Join(dir, name)
		if _, err := os.Stat(path); err == nil {
			return LoadFile(path)
		}
	}
	return New(), nil
}

// LoadFile reads configuration from the specified file path. The format is
// chosen by extension; anything other than .json is parsed as YAML.
func LoadFile(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.New("G002").
			WithDetail("Cannot read " + path).
			Wrap(err)
	}

	cfg := New()
	if strings.EqualFold(filepath.Ext(path), ".json") {
		err = json.Unmarshal(data, cfg)
	} else {
		err = yaml.Unmarshal(data, cfg)
	}
	if err != nil {
		return nil, errors.New("G002").
			WithDetail("Failed to parse " + filepath.Base(path) + ": " + err.Error()).
			WithSuggestion("Check the file syntax")
	}

	cfg.configPath = path
	cfg.applyDefaults()

	return cfg, nil
}

// SaveTo writes the configuration to path, as JSON or YAML by extension.
func (c *Config) SaveTo(path string) error {
	var (
		data []byte
		err  error
	)
	if strings.EqualFold(filepath.Ext(path), ".json") {
		data, err = json.MarshalIndent(c, "", "  ")
		data = append(data, '\n')
	} else {
		data, err = yaml.Marshal(c)
	}
	if err != nil {
		return errors.New("G002").Wrap(err)
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return errors.New("G002").Wrap(err)
	}

	c.configPath = path
	return nil
}

// Path returns the path where the config was loaded from.
func (c *Config) Path() string {
	return c.configPath
}

// applyDefaults fills in default values for fields a file left empty.
func (c *Config) applyDefaults() {
	d := New()

	if c.Server.Host == "" {
		c.Server.Host = d.Server.Host
	}
	if c.Server.Port == 0 {
		c.Server.Port = d.Server.Port
	}
	if c.Server.ShutdownTimeout == "" {
		c.Server.ShutdownTimeout = d.Server.ShutdownTimeout
	}
	if c.API.BaseURL == "" {
		c.API.BaseURL = d.API.BaseURL
	}
	if c.API.Timeout == "" {
		c.API.Timeout = d.API.Timeout
	}
	if c.Toast.DwellTime == "" {
		c.Toast.DwellTime = d.Toast.DwellTime
	}
	if c.Session.CookieName == "" {
		c.Session.CookieName = d.Session.CookieName
	}
	if c.Session.IdleTimeout == "" {
		c.Session.IdleTimeout = d.Session.IdleTimeout
	}
	if c.Upload.Backend == "" {
		c.Upload.Backend = d.Upload.Backend
	}
	if c.Upload.Dir == "" {
		c.Upload.Dir = d.Upload.Dir
	}
	if c.Upload.MaxBytes == 0 {
		c.Upload.MaxBytes = d.Upload.MaxBytes
	}
	if c.Log.Level == "" {
		c.Log.Level = d.Log.Level
	}
	if c.Log.Format == "" {
		c.Log.Format = d.Log.Format
	}
	if c.Metrics.Namespace == "" {
		c.Metrics.Namespace = d.Metrics.Namespace
	}
	if c.DevAPI.Host == "" {
		c.DevAPI.Host = d.DevAPI.Host
	}
	if c.DevAPI.Port == 0 {
		c.DevAPI.Port = d.DevAPI.Port
	}
}

// LookupFunc matches os.LookupEnv.
type LookupFunc func(key string) (string, bool)

// ApplyEnv overrides fields from GOBARBER_* environment variables.
func (c *Config) ApplyEnv(lookup LookupFunc) error {
	str := func(key string, dst *string) {
		if v, ok := lookup(key); ok && v != "" {
			*dst = v
		}
	}
	num := func(key string, dst *int) error {
		v, ok := lookup(key)
		if !ok || v == "" {
			return nil
		}
		n, err := strconv.Atoi(v)
		if err != nil {
			return errors.New("G004").WithDetail(key + "=" + v).Wrap(err)
		}
		*dst = n
		return nil
	}
	flag := func(key string, dst *bool) error {
		v, ok := lookup(key)
		if !ok || v == "" {
			return nil
		}
		b, err := strconv.ParseBool(v)
		if err != nil {
			return errors.New("G004").WithDetail(key + "=" + v).Wrap(err)
		}
		*dst = b
		return nil
	}

	str("GOBARBER_HOST", &c.Server.Host)
	if err := num("GOBARBER_PORT", &c.Server.Port); err != nil {
		return err
	}
	str("GOBARBER_API_URL", &c.API.BaseURL)
	str("GOBARBER_TOAST_DWELL_TIME", &c.Toast.DwellTime)
	str("GOBARBER_SESSION_IDLE_TIMEOUT", &c.Session.IdleTimeout)
	if err := flag("GOBARBER_SESSION_SECURE_COOKIE", &c.Session.SecureCookie); err != nil {
		return err
	}
	str("GOBARBER_UPLOAD_BACKEND", &c.Upload.Backend)
	str("GOBARBER_UPLOAD_DIR", &c.Upload.Dir)
	str("GOBARBER_S3_BUCKET", &c.Upload.S3.Bucket)
	str("GOBARBER_S3_REGION", &c.Upload.S3.Region)
	str("GOBARBER_S3_ENDPOINT", &c.Upload.S3.Endpoint)
	str("GOBARBER_LOG_LEVEL", &c.Log.Level)
	str("GOBARBER_LOG_FORMAT", &c.Log.Format)
	if err := flag("GOBARBER_METRICS_ENABLED", &c.Metrics.Enabled); err != nil {
		return err
	}
	return num("GOBARBER_DEVAPI_PORT", &c.DevAPI.Port)
}

// Validate checks if the configuration is valid.
func (c *Config) Validate() error {
	if c.Server.Port < 0 || c.Server.Port > 65535 {
		return errors.New("G001").WithDetail("server.port must be between 0 and 65535")
	}
	if c.DevAPI.Port < 0 || c.DevAPI.Port > 65535 {
		return errors.New("G001").WithDetail("devapi.port must be between 0 and 65535")
	}
	if c.API.BaseURL == "" {
		return errors.New("G001").WithDetail("api.baseURL is required")
	}
	for name, value := range map[string]string{
		"server.shutdownTimeout": c.Server.ShutdownTimeout,
		"api.timeout":            c.API.Timeout,
		"toast.dwellTime":        c.Toast.DwellTime,
		"session.idleTimeout":    c.Session.IdleTimeout,
	} {
		d, err := time.ParseDuration(value)
		if err != nil || d <= 0 {
			return errors.New("G001").
				WithDetail(name + " must be a positive duration, got " + strconv.Quote(value)).
				WithSuggestion(`Use Go duration syntax such as "3s" or "30m"`)
		}
	}
	switch c.Upload.Backend {
	case "disk":
	case "s3":
		if c.Upload.S3.Bucket == "" {
			return errors.New("G001").WithDetail("upload.s3.bucket is required for the s3 backend")
		}
	default:
		return errors.New("G003").WithDetail("got " + strconv.Quote(c.Upload.Backend))
	}
	switch strings.ToLower(c.Log.Format) {
	case "text", "json":
	default:
		return errors.New("G001").WithDetail(`log.format must be "text" or "json"`)
	}
	return nil
}

// DwellTime returns the parsed toast dwell time.
func (c *Config) DwellTime() time.Duration {
	return duration(c.Toast.DwellTime, 3*time.Second)
}

// APITimeout returns the parsed backend request timeout.
func (c *Config) APITimeout() time.Duration {
	return duration(c.API.Timeout, 10*time.Second)
}

// IdleTimeout returns the parsed session idle timeout.
func (c *Config) IdleTimeout() time.Duration {
	return duration(c.Session.IdleTimeout, 30*time.Minute)
}

// ShutdownTimeout returns the parsed graceful shutdown timeout.
func (c *Config) ShutdownTimeout() time.Duration {
	return duration(c.Server.ShutdownTimeout, 10*time.Second)
}

func duration(s string, fallback time.Duration) time.Duration {
	d, err := time.ParseDuration(s)
	if err != nil || d <= 0 {
		return fallback
	}
	return d
}
