package config

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var envKeys = []string{
	"TELEGRAM_TOKEN", "BOT_TOKEN", "STORE_BACKEND", "WEBAPP_URL", "WEBAPP_SECRET", "SPREADSHEET_ID",
	"GOOGLE_APPLICATION_CREDENTIALS", "POSTGRES_DSN", "RACE_TIMEZONE", "DATE_MODE",
	"REQUEST_TIMEOUT", "WEB_ADDR",
}

func clearEnv(t *testing.T) {
	t.Helper()
	for _, k := range envKeys {
		t.Setenv(k, "")
	}
}

func TestLoad_Defaults(t *testing.T) {
	clearEnv(t)

	cfg, err := Load("")
	require.NoError(t, err)

	assert.Equal(t, BackendWebApp, cfg.Backend)
	assert.Equal(t, DateModeAuto, cfg.DateMode)
	assert.Equal(t, "UTC", cfg.Timezone)
	assert.Equal(t, 15*time.Second, cfg.RequestTimeout)
}

func TestLoad_FileThenEnv(t *testing.T) {
	clearEnv(t)
	path := filepath.Join(t.TempDir(), "racebot.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
telegram_token: file-token
backend: postgres
postgres_dsn: postgres://file
date_mode: prompt
request_timeout: 3s
`), 0o600))
	t.Setenv("POSTGRES_DSN", "postgres://env")

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, "file-token", cfg.TelegramToken)
	assert.Equal(t, BackendPostgres, cfg.Backend)
	assert.Equal(t, "postgres://env", cfg.PostgresDSN)
	assert.Equal(t, DateModePrompt, cfg.DateMode)
	assert.Equal(t, 3*time.Second, cfg.RequestTimeout)
	assert.NoError(t, cfg.Validate(true))
}

func TestLoad_BotTokenAlias(t *testing.T) {
	clearEnv(t)
	t.Setenv("BOT_TOKEN", "legacy-token")
	t.Setenv("WEBAPP_URL", "https://script.example/exec")
	t.Setenv("WEBAPP_SECRET", "secret")

	cfg, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, "legacy-token", cfg.TelegramToken)
	assert.NoError(t, cfg.Validate(true))

	t.Setenv("TELEGRAM_TOKEN", "new-token")
	cfg, err = Load("")
	require.NoError(t, err)
	assert.Equal(t, "new-token", cfg.TelegramToken)
}

func TestLoad_BadTimeout(t *testing.T) {
	clearEnv(t)
	t.Setenv("REQUEST_TIMEOUT", "soon")

	_, err := Load("")
	assert.Error(t, err)
}

func TestLoad_MissingFile(t *testing.T) {
	clearEnv(t)

	_, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
	assert.Error(t, err)
}

func TestValidate(t *testing.T) {
	valid := func() *Config {
		cfg := Default()
		cfg.TelegramToken = "token"
		cfg.WebAppURL = "https://script.example/exec"
		cfg.WebAppSecret = "secret"
		return cfg
	}

	tests := []struct {
		name    string
		mutate  func(c *Config)
		needBot bool
		missing bool
		wantErr bool
	}{
		{name: "valid webapp", mutate: func(c *Config) {}, needBot: true},
		{name: "no token", mutate: func(c *Config) { c.TelegramToken = "" }, needBot: true, missing: true, wantErr: true},
		{name: "no token, web only", mutate: func(c *Config) { c.TelegramToken = "" }, needBot: false},
		{name: "no secret", mutate: func(c *Config) { c.WebAppSecret = "" }, missing: true, wantErr: true},
		{name: "sheets without credentials", mutate: func(c *Config) {
			c.Backend = BackendSheets
			c.SpreadsheetID = "sheet"
		}, missing: true, wantErr: true},
		{name: "sheets", mutate: func(c *Config) {
			c.Backend = BackendSheets
			c.SpreadsheetID = "sheet"
			c.CredentialsFile = "key.json"
		}},
		{name: "postgres without dsn", mutate: func(c *Config) { c.Backend = BackendPostgres }, missing: true, wantErr: true},
		{name: "unknown backend", mutate: func(c *Config) { c.Backend = "excel" }, wantErr: true},
		{name: "unknown date mode", mutate: func(c *Config) { c.DateMode = "yesterday" }, wantErr: true},
		{name: "zero timeout", mutate: func(c *Config) { c.RequestTimeout = 0 }, wantErr: true},
		{name: "bad timezone", mutate: func(c *Config) { c.Timezone = "Mars/Olympus" }, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := valid()
			tt.mutate(cfg)

			err := cfg.Validate(tt.needBot)
			if !tt.wantErr {
				assert.NoError(t, err)
				return
			}
			require.Error(t, err)
			assert.Equal(t, tt.missing, errors.Is(err, ErrMissing))
		})
	}
}
