// Package config reads the service settings from the environment, after
// loading an optional .env file.
package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	Port string

	ShopifyStoreDomain string
	ShopifyToken       string
	ShopifyAPIVersion  string

	BackendURL    string
	BackendAPIKey string

	DatabaseURL   string
	SessionSecret string

	CookieSecure bool
	CookieDomain string
	CORSOrigins  []string

	HTTPTimeout time.Duration
}

// Load reads files (default ".env") into the environment without overriding
// variables that are already set, then builds the Config. Missing files are
// ignored. Callers that serve traffic must also call Validate.
func Load(files ...string) (Config, error) {
	if len(files) == 0 {
		files = []string{".env"}
	}
	for _, f := range files {
		if err := godotenv.Load(f); err != nil && !errors.Is(err, os.ErrNotExist) {
			return Config{}, fmt.Errorf("godotenv.Load[%s]: %w", f, err)
		}
	}

	return FromEnv()
}

func FromEnv() (Config, error) {
	cfg := Config{
		Port:               getenvDefault("PORT", "8080"),
		ShopifyStoreDomain: os.Getenv("SHOPIFY_STORE_DOMAIN"),
		ShopifyToken:       os.Getenv("SHOPIFY_STOREFRONT_TOKEN"),
		ShopifyAPIVersion:  getenvDefault("SHOPIFY_API_VERSION", "2024-10"),
		BackendURL:         os.Getenv("BACKEND_URL"),
		BackendAPIKey:      os.Getenv("BACKEND_API_KEY"),
		DatabaseURL:        os.Getenv("DATABASE_URL"),
		SessionSecret:      os.Getenv("SESSION_SECRET"),
		CookieDomain:       os.Getenv("COOKIE_DOMAIN"),
		CORSOrigins:        splitList(os.Getenv("CORS_ORIGINS")),
	}

	var err error

	cfg.CookieSecure, err = strconv.ParseBool(getenvDefault("COOKIE_SECURE", "true"))
	if err != nil {
		return Config{}, fmt.Errorf("COOKIE_SECURE: %w", err)
	}

	cfg.HTTPTimeout, err = time.ParseDuration(getenvDefault("HTTP_TIMEOUT", "10s"))
	if err != nil {
		return Config{}, fmt.Errorf("HTTP_TIMEOUT: %w", err)
	}

	return cfg, nil
}

// Validate checks the settings the serve command needs.
func (c Config) Validate() error {
	var errs []error

	required := []struct{ name, value string }{
		{"SHOPIFY_STORE_DOMAIN", c.ShopifyStoreDomain},
		{"SHOPIFY_STOREFRONT_TOKEN", c.ShopifyToken},
		{"BACKEND_URL", c.BackendURL},
		{"DATABASE_URL", c.DatabaseURL},
		{"SESSION_SECRET", c.SessionSecret},
	}
	for _, r := range required {
		if r.value == "" {
			errs = append(errs, fmt.Errorf("%s is required", r.name))
		}
	}

	if c.SessionSecret != "" && len(c.SessionSecret) < 32 {
		errs = append(errs, fmt.Errorf("SESSION_SECRET must be at least 32 bytes"))
	}
	if c.HTTPTimeout <= 0 {
		errs = append(errs, fmt.Errorf("HTTP_TIMEOUT must be positive"))
	}

	return errors.Join(errs...)
}

func (c Config) Addr() string {
	return ":" + c.Port
}

func getenvDefault(key, def string) string {
	if v := strings.TrimSpace(os.Getenv(key)); v != "" {
		return v
	}
	return def
}

func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
