/*
Package configs is responsible for loading and parsing the client's configuration settings.

Values come from an optional YAML file first and are then overridden by operating system
environment variables, covering the running environment, the backend API base URL, the local
data directory, chat reconnect timing, page polling intervals, outbound request pacing and
the optional S3-compatible bucket used for image exports.
*/
package configs

import (
	"errors"
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

const (
	// EnvDevelopment is the environment name that switches on console logging at debug level.
	EnvDevelopment = "development"

	// DefaultAPIBase is used when neither the file nor the environment names a backend.
	DefaultAPIBase = "http://localhost:8000"

	// DefaultReconnectDelay is the fixed wait before a dropped chat connection is re-dialed.
	DefaultReconnectDelay = 3 * time.Second

	// DefaultSettleDelay is the pause between tearing down a chat connection and dialing a new one.
	DefaultSettleDelay = 100 * time.Millisecond
)

// PollConfig holds the refresh intervals of the page controllers.
type PollConfig struct {
	Works   time.Duration
	Job     time.Duration
	Workers time.Duration
	Admin   time.Duration
}

// AppConfig contains all configuration parameters required for the client to run.
type AppConfig struct {
	// General Settings
	Environment string
	ConfigFile  string
	DataDir     string

	// Backend Settings
	APIBase      string
	WSBase       string
	HTTPTimeout  time.Duration
	RequestRate  float64
	RequestBurst int

	// Chat Settings
	ReconnectDelay time.Duration
	SettleDelay    time.Duration

	// Page Polling
	Poll PollConfig

	// S3 Export Settings
	S3BucketName      string
	S3Endpoint        string
	S3AccessKeyID     string
	S3SecretAccessKey string
}

// IsDevelopment reports whether the client runs in the development environment.
func (c *AppConfig) IsDevelopment() bool {
	return c.Environment == EnvDevelopment
}

// S3Enabled reports whether every S3 export setting is present.
func (c *AppConfig) S3Enabled() bool {
	return c.S3BucketName != "" && c.S3Endpoint != "" && c.S3AccessKeyID != "" && c.S3SecretAccessKey != ""
}

// DatabasePath is the location of the local key/value store.
func (c *AppConfig) DatabasePath() string {
	return filepath.Join(c.DataDir, "zimage.db")
}

// LogPath is where the chat TUI writes its logs while it owns the terminal.
func (c *AppConfig) LogPath() string {
	return filepath.Join(c.DataDir, "zimage.log")
}

// fileConfig mirrors the YAML config file. Durations use Go duration syntax ("3s", "250ms").
type fileConfig struct {
	Environment    string  `yaml:"environment"`
	APIBase        string  `yaml:"api_base"`
	DataDir        string  `yaml:"data_dir"`
	HTTPTimeout    string  `yaml:"http_timeout"`
	RequestRate    float64 `yaml:"request_rate"`
	RequestBurst   int     `yaml:"request_burst"`
	ReconnectDelay string  `yaml:"reconnect_delay"`
	SettleDelay    string  `yaml:"settle_delay"`
	Poll           struct {
		Works   string `yaml:"works"`
		Job     string `yaml:"job"`
		Workers string `yaml:"workers"`
		Admin   string `yaml:"admin"`
	} `yaml:"poll"`
	S3 struct {
		Bucket          string `yaml:"bucket"`
		Endpoint        string `yaml:"endpoint"`
		AccessKeyID     string `yaml:"access_key_id"`
		SecretAccessKey string `yaml:"secret_access_key"`
	} `yaml:"s3"`
}

// LoadConfig reads the optional YAML file and then the environment variables.
// It provides default values for each configuration item and performs necessary type conversions and validation.
// It returns a pointer to the AppConfig struct and any error encountered.
func LoadConfig() (*AppConfig, error) {
	cfg := &AppConfig{
		Environment:    "production",
		APIBase:        DefaultAPIBase,
		HTTPTimeout:    30 * time.Second,
		RequestRate:    10,
		RequestBurst:   20,
		ReconnectDelay: DefaultReconnectDelay,
		SettleDelay:    DefaultSettleDelay,
		Poll: PollConfig{
			Works:   3 * time.Second,
			Job:     2 * time.Second,
			Workers: 10 * time.Second,
			Admin:   30 * time.Second,
		},
	}

	// --- Config File ---
	cfg.ConfigFile = os.Getenv("ZIMAGE_CONFIG")
	explicitFile := cfg.ConfigFile != ""
	if !explicitFile {
		if dir, err := os.UserConfigDir(); err == nil {
			cfg.ConfigFile = filepath.Join(dir, "zimage", "config.yaml")
		}
	}
	if cfg.ConfigFile != "" {
		if err := cfg.applyFile(cfg.ConfigFile, explicitFile); err != nil {
			return nil, err
		}
	}

	// --- General Settings ---
	if env := os.Getenv("ENVIRONMENT"); env != "" {
		cfg.Environment = env
	}

	if dir := os.Getenv("ZIMAGE_DATA_DIR"); dir != "" {
		cfg.DataDir = dir
	}
	if cfg.DataDir == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return nil, fmt.Errorf("ZIMAGE_DATA_DIR is not set and the home directory is unknown: %w", err)
		}
		cfg.DataDir = filepath.Join(home, ".zimage")
	}

	// --- Backend Settings ---
	if base := os.Getenv("ZIMAGE_API_BASE"); base != "" {
		cfg.APIBase = base
	}
	cfg.APIBase = strings.TrimRight(strings.TrimSpace(cfg.APIBase), "/")
	u, err := url.Parse(cfg.APIBase)
	if err != nil {
		return nil, fmt.Errorf("invalid ZIMAGE_API_BASE environment variable: %w", err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return nil, fmt.Errorf("ZIMAGE_API_BASE must start with http:// or https://, got %q", cfg.APIBase)
	}
	cfg.WSBase = WebSocketBase(cfg.APIBase)

	if cfg.HTTPTimeout, err = envDuration("ZIMAGE_HTTP_TIMEOUT", cfg.HTTPTimeout); err != nil {
		return nil, err
	}

	if rateStr := os.Getenv("ZIMAGE_REQUEST_RATE"); rateStr != "" {
		r, err := strconv.ParseFloat(rateStr, 64)
		if err != nil {
			return nil, fmt.Errorf("invalid ZIMAGE_REQUEST_RATE environment variable: %w", err)
		}
		cfg.RequestRate = r
	}
	if cfg.RequestRate <= 0 {
		return nil, fmt.Errorf("request rate must be positive, got %v", cfg.RequestRate)
	}

	if burstStr := os.Getenv("ZIMAGE_REQUEST_BURST"); burstStr != "" {
		b, err := strconv.Atoi(burstStr)
		if err != nil {
			return nil, fmt.Errorf("invalid ZIMAGE_REQUEST_BURST environment variable: %w", err)
		}
		cfg.RequestBurst = b
	}
	if cfg.RequestBurst < 1 {
		return nil, fmt.Errorf("request burst must be at least 1, got %d", cfg.RequestBurst)
	}

	// --- Chat Settings ---
	if cfg.ReconnectDelay, err = envDuration("ZIMAGE_RECONNECT_DELAY", cfg.ReconnectDelay); err != nil {
		return nil, err
	}
	if cfg.SettleDelay, err = envDuration("ZIMAGE_SETTLE_DELAY", cfg.SettleDelay); err != nil {
		return nil, err
	}

	if cfg.SettleDelay < 0 {
		return nil, fmt.Errorf("settle delay must not be negative, got %s", cfg.SettleDelay)
	}
	if err := cfg.validateIntervals(); err != nil {
		return nil, err
	}

	// --- S3 Export Settings ---
	// All four are optional; exports fall back to the local directory when any is missing.
	cfg.S3BucketName = envOr("S3_BUCKET_NAME", cfg.S3BucketName)
	cfg.S3Endpoint = envOr("S3_ENDPOINT", cfg.S3Endpoint)
	cfg.S3AccessKeyID = envOr("S3_ACCESS_KEY_ID", cfg.S3AccessKeyID)
	cfg.S3SecretAccessKey = envOr("S3_SECRET_ACCESS_KEY", cfg.S3SecretAccessKey)

	return cfg, nil
}

// validateIntervals rejects timeouts and tickers that would fire immediately or panic.
func (c *AppConfig) validateIntervals() error {
	positive := []struct {
		name string
		d    time.Duration
	}{
		{"http timeout", c.HTTPTimeout},
		{"reconnect delay", c.ReconnectDelay},
		{"works poll interval", c.Poll.Works},
		{"job poll interval", c.Poll.Job},
		{"workers poll interval", c.Poll.Workers},
		{"admin poll interval", c.Poll.Admin},
	}
	for _, p := range positive {
		if p.d <= 0 {
			return fmt.Errorf("%s must be positive, got %s", p.name, p.d)
		}
	}
	return nil
}

// applyFile overlays the YAML file at path. A missing file is only an error when it was named explicitly.
func (c *AppConfig) applyFile(path string, required bool) error {
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) && !required {
			return nil
		}
		return fmt.Errorf("failed to read config file %s: %w", path, err)
	}

	var fc fileConfig
	if err := yaml.Unmarshal(data, &fc); err != nil {
		return fmt.Errorf("failed to parse config file %s: %w", path, err)
	}

	if fc.Environment != "" {
		c.Environment = fc.Environment
	}
	if fc.APIBase != "" {
		c.APIBase = fc.APIBase
	}
	if fc.DataDir != "" {
		c.DataDir = fc.DataDir
	}
	if fc.RequestRate > 0 {
		c.RequestRate = fc.RequestRate
	}
	if fc.RequestBurst > 0 {
		c.RequestBurst = fc.RequestBurst
	}

	durations := []struct {
		name string
		raw  string
		dst  *time.Duration
	}{
		{"http_timeout", fc.HTTPTimeout, &c.HTTPTimeout},
		{"reconnect_delay", fc.ReconnectDelay, &c.ReconnectDelay},
		{"settle_delay", fc.SettleDelay, &c.SettleDelay},
		{"poll.works", fc.Poll.Works, &c.Poll.Works},
		{"poll.job", fc.Poll.Job, &c.Poll.Job},
		{"poll.workers", fc.Poll.Workers, &c.Poll.Workers},
		{"poll.admin", fc.Poll.Admin, &c.Poll.Admin},
	}
	for _, d := range durations {
		if d.raw == "" {
			continue
		}
		v, err := time.ParseDuration(d.raw)
		if err != nil {
			return fmt.Errorf("invalid %s in config file %s: %w", d.name, path, err)
		}
		*d.dst = v
	}

	c.S3BucketName = fc.S3.Bucket
	c.S3Endpoint = fc.S3.Endpoint
	c.S3AccessKeyID = fc.S3.AccessKeyID
	c.S3SecretAccessKey = fc.S3.SecretAccessKey

	return nil
}

// WebSocketBase translates the REST base URL into the chat channel base URL.
// https:// maps to wss:// and http:// maps to ws://; anything else is returned unchanged.
func WebSocketBase(apiBase string) string {
	switch {
	case strings.HasPrefix(apiBase, "https://"):
		return "wss://" + strings.TrimPrefix(apiBase, "https://")
	case strings.HasPrefix(apiBase, "http://"):
		return "ws://" + strings.TrimPrefix(apiBase, "http://")
	default:
		return apiBase
	}
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func envDuration(key string, fallback time.Duration) (time.Duration, error) {
	raw := os.Getenv(key)
	if raw == "" {
		return fallback, nil
	}
	d, err := time.ParseDuration(raw)
	if err != nil {
		return 0, fmt.Errorf("invalid %s environment variable: %w", key, err)
	}
	if d < 0 {
		return 0, fmt.Errorf("%s must not be negative, got %s", key, raw)
	}
	return d, nil
}
