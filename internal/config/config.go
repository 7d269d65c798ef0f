// Package config loads application configuration from environment variables.
package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog/log"
)

const (
	defaultTokenTTL = 30 * time.Minute
	// maxTokenTTL is the longest expiry window the vendor accepts.
	maxTokenTTL = time.Hour
)

// Error reports a missing or malformed setting. It is fatal at startup.
type Error struct {
	Key    string
	Reason string
}

func (e *Error) Error() string {
	return fmt.Sprintf("config: %s %s", e.Key, e.Reason)
}

// Config holds all runtime configuration for the auth server.
// It is built once at startup and never mutated afterwards.
type Config struct {
	Port     string
	AppEnv   string
	LogLevel string

	// Vendor credentials. PrivateKey never leaves this process.
	PublicKey   string
	PrivateKey  string
	URLEndpoint string

	AuthPath       string
	TokenTTL       time.Duration
	AllowedOrigins []string
}

// Load reads configuration from a .env file (if present) and environment variables.
func Load() (*Config, error) {
	if err := godotenv.Load(); err != nil {
		log.Debug().Msg("no .env file found, reading from environment")
	}
	return FromLookup(os.LookupEnv)
}

// FromLookup builds a Config from an arbitrary key lookup, typically os.LookupEnv.
func FromLookup(lookup func(string) (string, bool)) (*Config, error) {
	get := func(key, fallback string) string {
		if v, ok := lookup(key); ok && strings.TrimSpace(v) != "" {
			return strings.TrimSpace(v)
		}
		return fallback
	}

	cfg := &Config{
		Port:     get("PORT", "8000"),
		AppEnv:   get("APP_ENV", "development"),
		LogLevel: get("LOG_LEVEL", "info"),

		PublicKey:   get("IMAGEKIT_PUBLIC_KEY", ""),
		PrivateKey:  get("IMAGEKIT_PRIVATE_KEY", ""),
		URLEndpoint: get("IMAGEKIT_URL_ENDPOINT", ""),

		AuthPath:       get("AUTH_PATH", "/auth"),
		AllowedOrigins: SplitOrigins(get("ALLOWED_ORIGIN", "")),
	}

	for _, req := range []struct{ key, value string }{
		{"IMAGEKIT_PUBLIC_KEY", cfg.PublicKey},
		{"IMAGEKIT_PRIVATE_KEY", cfg.PrivateKey},
		{"IMAGEKIT_URL_ENDPOINT", cfg.URLEndpoint},
	} {
		if req.value == "" {
			return nil, &Error{Key: req.key, Reason: "is required"}
		}
	}
	if len(cfg.AllowedOrigins) == 0 {
		return nil, &Error{Key: "ALLOWED_ORIGIN", Reason: "must list at least one origin"}
	}
	if !strings.HasPrefix(cfg.AuthPath, "/") {
		return nil, &Error{Key: "AUTH_PATH", Reason: "must start with /"}
	}

	ttl, err := time.ParseDuration(get("AUTH_TOKEN_TTL", defaultTokenTTL.String()))
	if err != nil {
		return nil, &Error{Key: "AUTH_TOKEN_TTL", Reason: "is not a duration"}
	}
	if ttl <= 0 || ttl > maxTokenTTL {
		return nil, &Error{Key: "AUTH_TOKEN_TTL", Reason: fmt.Sprintf("must be within (0, %s]", maxTokenTTL)}
	}
	cfg.TokenTTL = ttl

	return cfg, nil
}

// IsProduction returns true when the app is running in production mode.
func (c *Config) IsProduction() bool {
	return c.AppEnv == "production"
}

// SplitOrigins turns "a, b,,c" into [a b c].
func SplitOrigins(raw string) []string {
	var out []string
	for _, o := range strings.Split(raw, ",") {
		if o = strings.TrimSpace(o); o != "" {
			out = append(out, o)
		}
	}
	return out
}
