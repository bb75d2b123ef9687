package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// Mail strategies. A strategy decides how notification content is produced.
const (
	StrategyHTML     = "html"
	StrategyTemplate = "template"
)

// Mail transports. A transport decides where a notification is delivered.
const (
	TransportMailLayer = "maillayer"
	TransportSES       = "ses"
	TransportTemplate  = "template"
)

// Config holds all configuration for the relay. It is loaded once at
// startup and treated as read-only afterwards.
type Config struct {
	Server    ServerConfig    `yaml:"server"`
	CORS      CORSConfig      `yaml:"cors"`
	Turnstile TurnstileConfig `yaml:"turnstile"`
	Mail      MailConfig      `yaml:"mail"`
	SES       SESConfig       `yaml:"ses"`
	Log       LogConfig       `yaml:"log"`
	Metrics   MetricsConfig   `yaml:"metrics"`
}

// ServerConfig holds HTTP server configuration
type ServerConfig struct {
	Port        int    `yaml:"port"`
	Host        string `yaml:"host"`
	ContactPath string `yaml:"contact_path"`
}

// GetHost returns the server host, with container detection
func (c ServerConfig) GetHost() string {
	// On ECS/container, listen on all interfaces
	if os.Getenv("ECS_CONTAINER_METADATA_URI") != "" || os.Getenv("AWS_EXECUTION_ENV") != "" {
		return "0.0.0.0"
	}
	if host := os.Getenv("SERVER_HOST"); host != "" {
		return host
	}
	return c.Host
}

// Addr returns host:port for the listener.
func (c ServerConfig) Addr() string {
	return fmt.Sprintf("%s:%d", c.GetHost(), c.Port)
}

// CORSConfig holds the static CORS header values sent on every response.
type CORSConfig struct {
	AllowedOrigin string `yaml:"allowed_origin"`
}

// TurnstileConfig holds challenge-verification settings
type TurnstileConfig struct {
	SecretKey      string `yaml:"secret_key"`
	VerifyURL      string `yaml:"verify_url"`
	TimeoutSeconds int    `yaml:"timeout_seconds"`
}

// Timeout returns the configured timeout as a duration
func (c TurnstileConfig) Timeout() time.Duration {
	return time.Duration(c.TimeoutSeconds) * time.Second
}

// TemplateIDs holds the remote template identifiers used by the template strategy.
type TemplateIDs struct {
	Confirmation string `yaml:"confirmation"`
	Admin        string `yaml:"admin"`
}

// MailConfig holds notification settings shared by all transports
type MailConfig struct {
	Strategy       string      `yaml:"strategy"`
	Transport      string      `yaml:"transport"`
	APIKey         string      `yaml:"api_key"`
	BaseURL        string      `yaml:"base_url"`
	FromEmail      string      `yaml:"from_email"`
	AdminEmail     string      `yaml:"admin_email"`
	TimeoutSeconds int         `yaml:"timeout_seconds"`
	Templates      TemplateIDs `yaml:"templates"`
}

// Timeout returns the configured timeout as a duration
func (c MailConfig) Timeout() time.Duration {
	return time.Duration(c.TimeoutSeconds) * time.Second
}

// SESConfig holds AWS SES API configuration. Empty keys fall back to the
// default credential chain (IAM role on ECS/Lambda).
type SESConfig struct {
	Region    string `yaml:"region"`
	AccessKey string `yaml:"access_key"`
	SecretKey string `yaml:"secret_key"`
}

// LogConfig holds logging settings
type LogConfig struct {
	Level string `yaml:"level"`
}

// MetricsConfig toggles the Prometheus endpoint
type MetricsConfig struct {
	Enabled bool `yaml:"enabled"`
}

// Default returns a configuration with every default applied and no secrets.
func Default() *Config {
	cfg := &Config{}
	cfg.applyDefaults()
	return cfg
}

func (cfg *Config) applyDefaults() {
	if cfg.Server.Port == 0 {
		cfg.Server.Port = 8080
	}
	if cfg.Server.Host == "" {
		cfg.Server.Host = "localhost"
	}
	if cfg.Server.ContactPath == "" {
		cfg.Server.ContactPath = "/"
	}
	if cfg.CORS.AllowedOrigin == "" {
		cfg.CORS.AllowedOrigin = "https://simplebytes.com"
	}
	if cfg.Turnstile.VerifyURL == "" {
		cfg.Turnstile.VerifyURL = "https://challenges.cloudflare.com/turnstile/v0/siteverify"
	}
	if cfg.Turnstile.TimeoutSeconds == 0 {
		cfg.Turnstile.TimeoutSeconds = 5
	}
	if cfg.Mail.Strategy == "" {
		cfg.Mail.Strategy = StrategyHTML
	}
	if cfg.Mail.Transport == "" {
		if cfg.Mail.Strategy == StrategyTemplate {
			cfg.Mail.Transport = TransportTemplate
		} else {
			cfg.Mail.Transport = TransportMailLayer
		}
	}
	if cfg.Mail.BaseURL == "" {
		switch cfg.Mail.Transport {
		case TransportMailLayer:
			cfg.Mail.BaseURL = "https://api.maillayer.com"
		case TransportTemplate:
			cfg.Mail.BaseURL = "https://api.maillayer.com/v1/transactional/send"
		}
	}
	if cfg.Mail.FromEmail == "" {
		cfg.Mail.FromEmail = "noreply@simplebytes.com"
	}
	if cfg.Mail.AdminEmail == "" {
		cfg.Mail.AdminEmail = "hello@simplebytes.com"
	}
	if cfg.Mail.TimeoutSeconds == 0 {
		cfg.Mail.TimeoutSeconds = 10
	}
	if cfg.SES.Region == "" {
		cfg.SES.Region = "us-east-1"
	}
	if cfg.Log.Level == "" {
		cfg.Log.Level = "info"
	}
}

// Validate rejects configurations that cannot serve requests consistently.
// Missing secrets are not errors: the handler degrades to "verification
// failed" without a secret, matching how the form behaves in production.
func (cfg *Config) Validate() error {
	switch cfg.Mail.Strategy {
	case StrategyHTML:
		if cfg.Mail.Transport != TransportMailLayer && cfg.Mail.Transport != TransportSES {
			return fmt.Errorf("mail transport %q cannot deliver rendered html", cfg.Mail.Transport)
		}
	case StrategyTemplate:
		if cfg.Mail.Transport != TransportTemplate {
			return fmt.Errorf("mail transport %q cannot deliver templates", cfg.Mail.Transport)
		}
		if cfg.Mail.Templates.Confirmation == "" || cfg.Mail.Templates.Admin == "" {
			return fmt.Errorf("template strategy requires confirmation and admin template ids")
		}
	default:
		return fmt.Errorf("unknown mail strategy %q", cfg.Mail.Strategy)
	}
	if cfg.Server.Port <= 0 || cfg.Server.Port > 65535 {
		return fmt.Errorf("invalid server port %d", cfg.Server.Port)
	}
	if !strings.HasPrefix(cfg.Server.ContactPath, "/") {
		return fmt.Errorf("contact path %q must start with /", cfg.Server.ContactPath)
	}
	return nil
}

// Load reads and parses the configuration file
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("parse %s: %w", path, err)
	}

	cfg.applyDefaults()
	return &cfg, nil
}

// LoadFromEnv loads configuration with environment variable overrides.
// It loads a .env file (if present) before reading env vars, so secrets
// can live in .env locally and in real env vars when deployed. A missing
// config file is not an error: defaults plus environment are enough to run.
func LoadFromEnv(path string) (*Config, error) {
	_ = godotenv.Load()

	cfg, err := Load(path)
	if os.IsNotExist(err) {
		cfg, err = Default(), nil
	}
	if err != nil {
		return nil, err
	}

	overrides := []struct {
		env string
		dst *string
	}{
		{"TURNSTILE_SECRET_KEY", &cfg.Turnstile.SecretKey},
		{"TURNSTILE_VERIFY_URL", &cfg.Turnstile.VerifyURL},
		{"MAILLAYER_API_KEY", &cfg.Mail.APIKey},
		{"MAIL_API_KEY", &cfg.Mail.APIKey},
		{"MAIL_BASE_URL", &cfg.Mail.BaseURL},
		{"ADMIN_EMAIL", &cfg.Mail.AdminEmail},
		{"FROM_EMAIL", &cfg.Mail.FromEmail},
		{"CONFIRMATION_TEMPLATE_ID", &cfg.Mail.Templates.Confirmation},
		{"ADMIN_TEMPLATE_ID", &cfg.Mail.Templates.Admin},
		{"ALLOWED_ORIGIN", &cfg.CORS.AllowedOrigin},
		{"AWS_SES_ACCESS_KEY", &cfg.SES.AccessKey},
		{"AWS_SES_SECRET_KEY", &cfg.SES.SecretKey},
		{"AWS_SES_REGION", &cfg.SES.Region},
		{"LOG_LEVEL", &cfg.Log.Level},
		{"CONTACT_PATH", &cfg.Server.ContactPath},
	}
	for _, o := range overrides {
		if v := os.Getenv(o.env); v != "" {
			*o.dst = v
		}
	}

	// Strategy changes re-derive the transport default unless one is given.
	if v := os.Getenv("MAIL_STRATEGY"); v != "" && v != cfg.Mail.Strategy {
		cfg.Mail.Strategy = v
		cfg.Mail.Transport = ""
		cfg.Mail.BaseURL = os.Getenv("MAIL_BASE_URL")
	}
	if v := os.Getenv("MAIL_TRANSPORT"); v != "" {
		cfg.Mail.Transport = v
	}
	if v := os.Getenv("PORT"); v != "" {
		port, err := strconv.Atoi(v)
		if err != nil {
			return nil, fmt.Errorf("invalid PORT %q: %w", v, err)
		}
		cfg.Server.Port = port
	}
	if v := os.Getenv("METRICS_ENABLED"); v != "" {
		cfg.Metrics.Enabled, _ = strconv.ParseBool(v)
	}

	cfg.applyDefaults()
	return cfg, nil
}
