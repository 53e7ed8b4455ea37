package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"gopkg.in/yaml.v3"
)

type Config struct {
	Addr        string `yaml:"addr" validate:"required"`    // API bind address, e.g., "127.0.0.1:8080" or ":8080" (Docker)
	LogDir      string `yaml:"log_dir" validate:"required"` // logs directory
	LogStdout   bool   `yaml:"log_stdout"`                  // tee logs to stderr
	LogDebug    bool   `yaml:"log_debug"`
	DatabaseURL string `yaml:"database_url"` // empty means use in-memory store

	CheckInterval       time.Duration `yaml:"check_interval" validate:"gt=0"` // global cadence for every monitor
	HTTPTimeout         time.Duration `yaml:"http_timeout" validate:"gt=0"`   // per-check timeout
	MaxConcurrentChecks int           `yaml:"max_concurrent_checks" validate:"min=1"`

	NotifyRecipient string        `yaml:"notify_recipient" validate:"omitempty,email"`
	NotifyTimeout   time.Duration `yaml:"notify_timeout" validate:"gt=0"`
	SMTP            SMTP          `yaml:"smtp"`
	SlackWebhookURL string        `yaml:"slack_webhook_url" validate:"omitempty,url"`

	PublicAPIKeys  []string `yaml:"public_api_keys"`
	AdminAPIKeys   []string `yaml:"admin_api_keys"`
	AllowedOrigins []string `yaml:"allowed_origins"`
	PublicRPM      int      `yaml:"public_rpm" validate:"min=0"`
	PublicBurst    int      `yaml:"public_burst" validate:"min=0"`
	AdminRPM       int      `yaml:"admin_rpm" validate:"min=0"`
	AdminBurst     int      `yaml:"admin_burst" validate:"min=0"`
}

type SMTP struct {
	Host     string `yaml:"host"`
	Port     int    `yaml:"port" validate:"min=0,max=65535"`
	Username string `yaml:"username"`
	Password string `yaml:"password"`
	From     string `yaml:"from" validate:"required_with=Host,omitempty,email"`
}

func Defaults() Config {
	return Config{
		Addr:                "127.0.0.1:8080",
		LogDir:              "logs",
		CheckInterval:       60 * time.Second,
		HTTPTimeout:         10 * time.Second,
		MaxConcurrentChecks: 4,
		NotifyTimeout:       10 * time.Second,
		SMTP:                SMTP{Port: 587},
		PublicRPM:           120,
		PublicBurst:         60,
		AdminRPM:            30,
		AdminBurst:          10,
	}
}

// FromEnv returns defaults overridden by environment variables.
func FromEnv() Config {
	cfg := Defaults()
	applyEnv(&cfg)
	return cfg
}

// Load reads the optional YAML file named by CONFIG_FILE, applies environment
// overrides on top and validates the result.
func Load() (Config, error) {
	cfg := Defaults()
	if path := strings.TrimSpace(os.Getenv("CONFIG_FILE")); path != "" {
		if err := loadFile(path, &cfg); err != nil {
			return Config{}, err
		}
	}
	applyEnv(&cfg)
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func loadFile(path string, cfg *Config) error {
	content, err := os.ReadFile(path)
	if errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("config file %s not found", path)
	}
	if err != nil {
		return fmt.Errorf("read config: %w", err)
	}
	if err := yaml.Unmarshal(content, cfg); err != nil {
		return fmt.Errorf("parse config: %w", err)
	}
	return nil
}

func (c Config) Validate() error {
	if err := validator.New().Struct(c); err != nil {
		return fmt.Errorf("invalid config: %w", err)
	}
	return nil
}

func applyEnv(cfg *Config) {
	// Bind address; ADDR is accepted for Docker setups
	if v := firstEnv("API_ADDR", "ADDR"); v != "" {
		cfg.Addr = v
	}
	if v := os.Getenv("LOG_DIR"); v != "" {
		cfg.LogDir = v
	}
	if v, err := strconv.ParseBool(os.Getenv("LOG_STDOUT")); err == nil {
		cfg.LogStdout = v
	}
	if v, err := strconv.ParseBool(os.Getenv("LOG_DEBUG")); err == nil {
		cfg.LogDebug = v
	}
	if v := os.Getenv("DATABASE_URL"); v != "" {
		cfg.DatabaseURL = v
	}

	// Scheduling
	if ms, ok := envInt("CHECK_INTERVAL_MS"); ok && ms > 0 {
		cfg.CheckInterval = time.Duration(ms) * time.Millisecond
	}
	if ms, ok := envInt("HTTP_TIMEOUT_MS"); ok && ms > 0 {
		cfg.HTTPTimeout = time.Duration(ms) * time.Millisecond
	}
	if n, ok := envInt("MAX_CONCURRENT_CHECKS"); ok && n > 0 {
		cfg.MaxConcurrentChecks = n
	}

	// Notifications
	if v := os.Getenv("NOTIFY_RECIPIENT"); v != "" {
		cfg.NotifyRecipient = v
	}
	if ms, ok := envInt("NOTIFY_TIMEOUT_MS"); ok && ms > 0 {
		cfg.NotifyTimeout = time.Duration(ms) * time.Millisecond
	}
	if v := os.Getenv("SMTP_HOST"); v != "" {
		cfg.SMTP.Host = v
	}
	if n, ok := envInt("SMTP_PORT"); ok && n > 0 {
		cfg.SMTP.Port = n
	}
	if v := os.Getenv("SMTP_USERNAME"); v != "" {
		cfg.SMTP.Username = v
	}
	if v := os.Getenv("SMTP_PASSWORD"); v != "" {
		cfg.SMTP.Password = v
	}
	if v := os.Getenv("SMTP_FROM"); v != "" {
		cfg.SMTP.From = v
	}
	if v := os.Getenv("SLACK_WEBHOOK_URL"); v != "" {
		cfg.SlackWebhookURL = v
	}

	// API access
	if v := splitList(os.Getenv("PUBLIC_API_KEYS")); v != nil {
		cfg.PublicAPIKeys = v
	}
	if v := splitList(os.Getenv("ADMIN_API_KEYS")); v != nil {
		cfg.AdminAPIKeys = v
	}
	if v := splitList(os.Getenv("ALLOWED_ORIGINS")); v != nil {
		cfg.AllowedOrigins = v
	}
	if n, ok := envInt("PUBLIC_RPM"); ok && n >= 0 {
		cfg.PublicRPM = n
	}
	if n, ok := envInt("PUBLIC_BURST"); ok && n >= 0 {
		cfg.PublicBurst = n
	}
	if n, ok := envInt("ADMIN_RPM"); ok && n >= 0 {
		cfg.AdminRPM = n
	}
	if n, ok := envInt("ADMIN_BURST"); ok && n >= 0 {
		cfg.AdminBurst = n
	}
}

func firstEnv(names ...string) string {
	for _, n := range names {
		if v := strings.TrimSpace(os.Getenv(n)); v != "" {
			return v
		}
	}
	return ""
}

func envInt(name string) (int, bool) {
	v := os.Getenv(name)
	if v == "" {
		return 0, false
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return 0, false
	}
	return n, true
}

func splitList(v string) []string {
	var out []string
	for _, p := range strings.Split(v, ",") {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}
