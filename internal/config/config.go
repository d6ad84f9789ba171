package config

import (
	"errors"
	"fmt"
	"log"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// ErrMissing wraps every "required setting is empty" error.
var ErrMissing = errors.New("missing required config")

const (
	BackendWebApp   = "webapp"
	BackendSheets   = "sheets"
	BackendPostgres = "postgres"

	DateModeAuto   = "auto"
	DateModePrompt = "prompt"
)

type Config struct {
	TelegramToken string `yaml:"telegram_token"`

	Backend         string `yaml:"backend"`
	WebAppURL       string `yaml:"webapp_url"`
	WebAppSecret    string `yaml:"webapp_secret"`
	SpreadsheetID   string `yaml:"spreadsheet_id"`
	CredentialsFile string `yaml:"credentials_file"`
	PostgresDSN     string `yaml:"postgres_dsn"`

	Timezone       string        `yaml:"timezone"`
	DateMode       string        `yaml:"date_mode"`
	RequestTimeout time.Duration `yaml:"request_timeout"`
	WebAddr        string        `yaml:"web_addr"`
}

func Default() *Config {
	return &Config{
		Backend:        BackendWebApp,
		Timezone:       "UTC",
		DateMode:       DateModeAuto,
		RequestTimeout: 15 * time.Second,
	}
}

// Load reads .env, then the optional YAML file, then environment overrides.
func Load(path string) (*Config, error) {
	if err := godotenv.Load(); err != nil {
		log.Println("Warning: .env file not found, using system variables")
	}

	cfg := Default()
	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("read config %s: %w", path, err)
		}
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("invalid config file %s: %w", path, err)
		}
	}

	if err := applyEnv(cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}

func applyEnv(cfg *Config) error {
	// BOT_TOKEN is the older name; TELEGRAM_TOKEN wins when both are set.
	setString(&cfg.TelegramToken, "BOT_TOKEN")
	setString(&cfg.TelegramToken, "TELEGRAM_TOKEN")
	setString(&cfg.Backend, "STORE_BACKEND")
	setString(&cfg.WebAppURL, "WEBAPP_URL")
	setString(&cfg.WebAppSecret, "WEBAPP_SECRET")
	setString(&cfg.SpreadsheetID, "SPREADSHEET_ID")
	setString(&cfg.CredentialsFile, "GOOGLE_APPLICATION_CREDENTIALS")
	setString(&cfg.PostgresDSN, "POSTGRES_DSN")
	setString(&cfg.Timezone, "RACE_TIMEZONE")
	setString(&cfg.DateMode, "DATE_MODE")
	setString(&cfg.WebAddr, "WEB_ADDR")

	if v := os.Getenv("REQUEST_TIMEOUT"); v != "" {
		d, err := time.ParseDuration(v)
		if err != nil {
			return fmt.Errorf("REQUEST_TIMEOUT: %w", err)
		}
		cfg.RequestTimeout = d
	}
	cfg.Backend = strings.ToLower(cfg.Backend)
	cfg.DateMode = strings.ToLower(cfg.DateMode)
	return nil
}

func setString(dst *string, key string) {
	if v := os.Getenv(key); v != "" {
		*dst = v
	}
}

// Validate checks the settings the chosen backend needs; the bot token only
// when the Telegram bot is going to run.
func (c *Config) Validate(needBot bool) error {
	if needBot && c.TelegramToken == "" {
		return fmt.Errorf("%w: TELEGRAM_TOKEN is not set", ErrMissing)
	}

	switch c.Backend {
	case BackendWebApp:
		if c.WebAppURL == "" || c.WebAppSecret == "" {
			return fmt.Errorf("%w: WEBAPP_URL or WEBAPP_SECRET is not set", ErrMissing)
		}
	case BackendSheets:
		if c.SpreadsheetID == "" || c.CredentialsFile == "" {
			return fmt.Errorf("%w: SPREADSHEET_ID or GOOGLE_APPLICATION_CREDENTIALS is not set", ErrMissing)
		}
	case BackendPostgres:
		if c.PostgresDSN == "" {
			return fmt.Errorf("%w: POSTGRES_DSN is not set", ErrMissing)
		}
	default:
		return fmt.Errorf("unknown STORE_BACKEND %q", c.Backend)
	}

	switch c.DateMode {
	case DateModeAuto, DateModePrompt:
	default:
		return fmt.Errorf("unknown DATE_MODE %q", c.DateMode)
	}

	if c.RequestTimeout <= 0 {
		return fmt.Errorf("REQUEST_TIMEOUT must be positive, got %s", c.RequestTimeout)
	}
	if _, err := c.Location(); err != nil {
		return err
	}
	return nil
}

// Location is the time zone used for the automatic race date.
func (c *Config) Location() (*time.Location, error) {
	loc, err := time.LoadLocation(c.Timezone)
	if err != nil {
		return nil, fmt.Errorf("RACE_TIMEZONE: %w", err)
	}
	return loc, nil
}
