package config

import (
	"fmt"
	"net/url"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

// Default values applied when fields are absent from the config file.
const (
	DefaultPollInterval      = 30 * time.Second
	DefaultAlertCooldown     = 5 * time.Minute
	DefaultRequestTimeout    = 5 * time.Second
	DefaultHTTPPort          = 8081
	DefaultBroadcastInterval = 5 * time.Second
	DefaultMetricsPath       = "/metrics"
)

// Config is the top-level bridge configuration. Fields map 1:1 to
// config.example.yaml.
type Config struct {
	Bridge BridgeConfig `yaml:"bridge"`
}

// BridgeConfig holds all bridge settings.
type BridgeConfig struct {
	// RegistryURL is the base URL of the lab registry REST API (required).
	RegistryURL string `yaml:"registry_url"`

	// PollInterval controls how often the alert poll loop fetches /status.
	PollInterval time.Duration `yaml:"poll_interval"`

	// AlertCooldown is the minimum gap between two firings of the same
	// (lab, kind) alert.
	AlertCooldown time.Duration `yaml:"alert_cooldown"`

	// RequestTimeout bounds every registry HTTP call.
	RequestTimeout time.Duration `yaml:"request_timeout"`

	// HTTPPort is the diagnostics API + WebSocket port. 0 disables the
	// HTTP surface entirely.
	HTTPPort int `yaml:"http_port"`

	// BroadcastInterval controls how often the WebSocket hub pushes the
	// current lab snapshot to connected dashboard clients.
	BroadcastInterval time.Duration `yaml:"broadcast_interval"`

	// MetricsPath is the registry's Prometheus endpoint path, scraped by
	// the /diag command. Empty disables the probe.
	MetricsPath string `yaml:"metrics_path"`

	// Telegram configures the chat transport.
	Telegram TelegramConfig `yaml:"telegram"`
}

// TelegramConfig holds the Telegram bot settings.
type TelegramConfig struct {
	// TokenEnv is the name of the environment variable holding the bot token.
	TokenEnv string `yaml:"token_env"`
}

// Token returns the bot token resolved from the environment.
// Returns empty string if TokenEnv is unset or the variable is not found.
func (t TelegramConfig) Token() string {
	if t.TokenEnv == "" {
		return ""
	}
	return os.Getenv(t.TokenEnv)
}

// Load reads and parses the YAML config file at path.
// Missing optional fields are filled with sensible defaults.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("config: read file: %w", err)
	}

	cfg := defaults()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("config: parse yaml: %w", err)
	}

	if err := validate(cfg); err != nil {
		return nil, fmt.Errorf("config: %w", err)
	}

	return cfg, nil
}

// defaults returns a Config pre-populated with default values.
func defaults() *Config {
	return &Config{
		Bridge: BridgeConfig{
			PollInterval:      DefaultPollInterval,
			AlertCooldown:     DefaultAlertCooldown,
			RequestTimeout:    DefaultRequestTimeout,
			HTTPPort:          DefaultHTTPPort,
			BroadcastInterval: DefaultBroadcastInterval,
			MetricsPath:       DefaultMetricsPath,
			Telegram:          TelegramConfig{TokenEnv: "TELEGRAM_BOT_TOKEN"},
		},
	}
}

// validate checks required fields and structural constraints.
func validate(cfg *Config) error {
	b := cfg.Bridge
	if b.RegistryURL == "" {
		return fmt.Errorf("bridge.registry_url is required")
	}
	if u, err := url.Parse(b.RegistryURL); err != nil || u.Scheme == "" || u.Host == "" {
		return fmt.Errorf("bridge.registry_url %q is not a valid URL", b.RegistryURL)
	}
	if b.PollInterval <= 0 {
		return fmt.Errorf("bridge.poll_interval must be positive")
	}
	if b.AlertCooldown <= 0 {
		return fmt.Errorf("bridge.alert_cooldown must be positive")
	}
	if b.RequestTimeout <= 0 {
		return fmt.Errorf("bridge.request_timeout must be positive")
	}
	if b.HTTPPort < 0 || b.HTTPPort > 65535 {
		return fmt.Errorf("bridge.http_port %d is out of range [0, 65535]", b.HTTPPort)
	}
	if b.BroadcastInterval <= 0 {
		return fmt.Errorf("bridge.broadcast_interval must be positive")
	}
	return nil
}
