package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Transport selects how the MCP server talks to its client.
const (
	TransportStdio = "stdio"
	TransportSSE   = "sse"
)

// DefaultTokenTTL is applied when the identity provider omits an expiry
// from an exchanged token set. This is local policy, not a protocol
// guarantee: Google may omit expiry for reasons of its own, and treating
// the token as one-hour-valid is the documented assumption here.
const DefaultTokenTTL = time.Hour

// Config holds everything the server needs at startup.
type Config struct {
	// Transport is "stdio" or "sse".
	Transport string

	// HTTPAddr is the listen address for the SSE server, or for the
	// standalone OAuth callback listener in stdio mode (e.g. ":8080").
	HTTPAddr string

	// TLSCertFile and TLSKeyFile enable HTTPS for the SSE server when
	// both are set.
	TLSCertFile string
	TLSKeyFile  string

	// GoogleAPIKey authenticates read-only calendar queries.
	GoogleAPIKey string

	// OAuth client credentials for the per-user write flow.
	GoogleClientID     string
	GoogleClientSecret string
	GoogleRedirectURL  string

	// CalendarID is the calendar all tools operate on.
	CalendarID string

	// DefaultUserID keys the credential record the server loads at
	// startup and uses for write operations.
	DefaultUserID string

	// DatabaseURL is the Postgres DSN for the credential store.
	DatabaseURL string

	// TokenDefaultTTL substitutes for a missing expiry on exchanged
	// tokens. Defaults to DefaultTokenTTL.
	TokenDefaultTTL time.Duration

	// RequestTimeout bounds each provider and database call.
	RequestTimeout time.Duration
}

// Load reads configuration from the environment, after loading a .env
// file if one exists.
func Load() *Config {
	_ = godotenv.Load()

	tokenTTL := DefaultTokenTTL
	if v := os.Getenv("TOKEN_DEFAULT_TTL"); v != "" {
		if parsed, err := time.ParseDuration(v); err == nil {
			tokenTTL = parsed
		}
	}

	requestTimeout := 10 * time.Second
	if v := os.Getenv("REQUEST_TIMEOUT"); v != "" {
		if parsed, err := time.ParseDuration(v); err == nil {
			requestTimeout = parsed
		}
	}

	addr := getEnv("HTTP_ADDR", "")
	if addr == "" {
		addr = ":" + getEnv("PORT", "8080")
	}

	return &Config{
		Transport:          getEnv("TRANSPORT", TransportStdio),
		HTTPAddr:           addr,
		TLSCertFile:        os.Getenv("TLS_CERT_FILE"),
		TLSKeyFile:         os.Getenv("TLS_KEY_FILE"),
		GoogleAPIKey:       os.Getenv("GOOGLE_PUBLIC_API_KEY"),
		GoogleClientID:     os.Getenv("GOOGLE_CLIENT_ID"),
		GoogleClientSecret: os.Getenv("GOOGLE_CLIENT_SECRET"),
		GoogleRedirectURL:  getEnv("GOOGLE_REDIRECT_URL", "http://localhost:8080/oauth2callback"),
		CalendarID:         getEnv("GOOGLE_CALENDAR_ID", "primary"),
		DefaultUserID:      getEnv("DEFAULT_USER_ID", "default"),
		DatabaseURL:        os.Getenv("DATABASE_URL"),
		TokenDefaultTTL:    tokenTTL,
		RequestTimeout:     requestTimeout,
	}
}

// Validate checks that every required value is present. It reports all
// missing variables at once so an operator can fix them in one pass.
func (c *Config) Validate() error {
	var missing []string

	if c.GoogleAPIKey == "" {
		missing = append(missing, "GOOGLE_PUBLIC_API_KEY")
	}
	if c.GoogleClientID == "" {
		missing = append(missing, "GOOGLE_CLIENT_ID")
	}
	if c.GoogleClientSecret == "" {
		missing = append(missing, "GOOGLE_CLIENT_SECRET")
	}
	if c.DatabaseURL == "" {
		missing = append(missing, "DATABASE_URL")
	}

	if len(missing) > 0 {
		return fmt.Errorf("missing required environment variables: %s", strings.Join(missing, ", "))
	}

	if c.Transport != TransportStdio && c.Transport != TransportSSE {
		return fmt.Errorf("unsupported transport %q (supported: %s, %s)", c.Transport, TransportStdio, TransportSSE)
	}

	return nil
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}
