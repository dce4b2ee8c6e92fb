package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setRequiredEnv(t *testing.T) {
	t.Setenv("GOOGLE_PUBLIC_API_KEY", "api-key")
	t.Setenv("GOOGLE_CLIENT_ID", "client-id")
	t.Setenv("GOOGLE_CLIENT_SECRET", "client-secret")
	t.Setenv("DATABASE_URL", "postgres://localhost/calmcp_test")
}

func TestLoadDefaults(t *testing.T) {
	setRequiredEnv(t)
	t.Setenv("PORT", "")
	t.Setenv("HTTP_ADDR", "")
	t.Setenv("TRANSPORT", "")

	cfg := Load()

	assert.Equal(t, TransportStdio, cfg.Transport)
	assert.Equal(t, ":8080", cfg.HTTPAddr)
	assert.Equal(t, "primary", cfg.CalendarID)
	assert.Equal(t, "default", cfg.DefaultUserID)
	assert.Equal(t, DefaultTokenTTL, cfg.TokenDefaultTTL)
	assert.Equal(t, 10*time.Second, cfg.RequestTimeout)
}

func TestLoadOverrides(t *testing.T) {
	setRequiredEnv(t)
	t.Setenv("TRANSPORT", "sse")
	t.Setenv("HTTP_ADDR", ":9000")
	t.Setenv("GOOGLE_CALENDAR_ID", "team@example.com")
	t.Setenv("DEFAULT_USER_ID", "u1")
	t.Setenv("TOKEN_DEFAULT_TTL", "30m")
	t.Setenv("REQUEST_TIMEOUT", "5s")

	cfg := Load()

	assert.Equal(t, TransportSSE, cfg.Transport)
	assert.Equal(t, ":9000", cfg.HTTPAddr)
	assert.Equal(t, "team@example.com", cfg.CalendarID)
	assert.Equal(t, "u1", cfg.DefaultUserID)
	assert.Equal(t, 30*time.Minute, cfg.TokenDefaultTTL)
	assert.Equal(t, 5*time.Second, cfg.RequestTimeout)
}

func TestLoadIgnoresInvalidDurations(t *testing.T) {
	setRequiredEnv(t)
	t.Setenv("TOKEN_DEFAULT_TTL", "not-a-duration")

	cfg := Load()
	assert.Equal(t, DefaultTokenTTL, cfg.TokenDefaultTTL)
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr string
	}{
		{
			name:   "complete config",
			mutate: func(c *Config) {},
		},
		{
			name:    "missing api key",
			mutate:  func(c *Config) { c.GoogleAPIKey = "" },
			wantErr: "GOOGLE_PUBLIC_API_KEY",
		},
		{
			name:    "missing database url",
			mutate:  func(c *Config) { c.DatabaseURL = "" },
			wantErr: "DATABASE_URL",
		},
		{
			name: "several missing at once",
			mutate: func(c *Config) {
				c.GoogleClientID = ""
				c.GoogleClientSecret = ""
			},
			wantErr: "GOOGLE_CLIENT_ID, GOOGLE_CLIENT_SECRET",
		},
		{
			name:    "unknown transport",
			mutate:  func(c *Config) { c.Transport = "websocket" },
			wantErr: "unsupported transport",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := &Config{
				Transport:          TransportStdio,
				GoogleAPIKey:       "k",
				GoogleClientID:     "id",
				GoogleClientSecret: "secret",
				DatabaseURL:        "postgres://localhost/db",
			}
			tt.mutate(cfg)

			err := cfg.Validate()
			if tt.wantErr == "" {
				require.NoError(t, err)
				return
			}
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}
