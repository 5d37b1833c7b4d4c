/*
Package configs loads the application's configuration from environment variables.

It covers the HTTP server (environment, port, CORS origins), the remote user
directory API, the notification and session lifetimes, validation switches and
the rate limit applied to mutating routes.
*/
package configs

import (
	"fmt"
	"net/url"
	"os"
	"strconv"
	"strings"
	"time"
)

// DefaultUsersAPIBaseURL is the public placeholder API the directory is loaded from.
const DefaultUsersAPIBaseURL = "https://jsonplaceholder.typicode.com"

// AppConfig contains all configuration parameters required for the application to run.
type AppConfig struct {
	// General Server Settings
	Environment    string
	Port           int
	AllowedOrigins []string

	// Remote Directory Settings
	UsersAPIBaseURL string
	UsersAPITimeout time.Duration

	// UI Behaviour
	NotificationTTL time.Duration
	ValidateWebsite bool

	// Session Settings
	SessionSecret      string
	SessionIdleTimeout time.Duration

	// Rate Limiting for mutating routes
	MutationRate  float64
	MutationBurst int
}

// IsDevelopment reports whether the service runs in the development environment.
func (c *AppConfig) IsDevelopment() bool {
	return c.Environment == "development"
}

// LoadConfig reads and validates the configuration, applying defaults for unset variables.
func LoadConfig() (*AppConfig, error) {
	cfg := &AppConfig{}

	// --- General Server Settings ---
	cfg.Environment = os.Getenv("ENVIRONMENT")
	if cfg.Environment == "" {
		cfg.Environment = "development"
	}

	port, err := intEnv("PORT", 8080)
	if err != nil {
		return nil, err
	}
	if port < 1024 || port > 65535 {
		return nil, fmt.Errorf("port number %d is outside the recommended range (%d-%d) to avoid privileged ports", port, 1024, 65535)
	}
	cfg.Port = port

	cfg.AllowedOrigins = []string{}
	if originsStr := os.Getenv("ALLOWED_ORIGINS"); originsStr != "" {
		for _, origin := range strings.Split(originsStr, ",") {
			trimmed := strings.TrimSpace(origin)
			if trimmed != "" {
				cfg.AllowedOrigins = append(cfg.AllowedOrigins, trimmed)
			}
		}
	}

	// --- Remote Directory Settings ---
	cfg.UsersAPIBaseURL = strings.TrimRight(os.Getenv("USERS_API_BASE_URL"), "/")
	if cfg.UsersAPIBaseURL == "" {
		cfg.UsersAPIBaseURL = DefaultUsersAPIBaseURL
	}
	if u, err := url.Parse(cfg.UsersAPIBaseURL); err != nil || u.Scheme == "" || u.Host == "" {
		return nil, fmt.Errorf("invalid USERS_API_BASE_URL %q: must be an absolute URL", cfg.UsersAPIBaseURL)
	}

	// 0 means the upstream call may hang indefinitely.
	if cfg.UsersAPITimeout, err = durationEnv("USERS_API_TIMEOUT", 0); err != nil {
		return nil, err
	}
	if cfg.UsersAPITimeout < 0 {
		return nil, fmt.Errorf("USERS_API_TIMEOUT must not be negative")
	}

	// --- UI Behaviour ---
	if cfg.NotificationTTL, err = durationEnv("NOTIFICATION_TTL", 6*time.Second); err != nil {
		return nil, err
	}
	if cfg.NotificationTTL <= 0 {
		return nil, fmt.Errorf("NOTIFICATION_TTL must be positive")
	}

	if cfg.ValidateWebsite, err = boolEnv("VALIDATE_WEBSITE", false); err != nil {
		return nil, err
	}

	// --- Session Settings ---
	secret := os.Getenv("SESSION_SECRET")
	if secret == "" {
		if !cfg.IsDevelopment() {
			return nil, fmt.Errorf("SESSION_SECRET environment variable is required in %s environment", cfg.Environment)
		}
		secret = "userdir_insecure_dev_secret_change_me"
	}
	cfg.SessionSecret = secret

	if cfg.SessionIdleTimeout, err = durationEnv("SESSION_IDLE_TIMEOUT", 30*time.Minute); err != nil {
		return nil, err
	}
	if cfg.SessionIdleTimeout <= 0 {
		return nil, fmt.Errorf("SESSION_IDLE_TIMEOUT must be positive")
	}

	// --- Rate Limiting ---
	rateStr := os.Getenv("MUTATION_RATE")
	if rateStr == "" {
		rateStr = "2"
	}
	if cfg.MutationRate, err = strconv.ParseFloat(rateStr, 64); err != nil {
		return nil, fmt.Errorf("invalid MUTATION_RATE environment variable: %w", err)
	}

	if cfg.MutationBurst, err = intEnv("MUTATION_BURST", 10); err != nil {
		return nil, err
	}
	if cfg.MutationRate <= 0 || cfg.MutationBurst <= 0 {
		return nil, fmt.Errorf("MUTATION_RATE and MUTATION_BURST must be positive")
	}

	return cfg, nil
}

func intEnv(key string, def int) (int, error) {
	s := os.Getenv(key)
	if s == "" {
		return def, nil
	}
	v, err := strconv.Atoi(s)
	if err != nil {
		return 0, fmt.Errorf("invalid %s environment variable: %w", key, err)
	}
	return v, nil
}

func durationEnv(key string, def time.Duration) (time.Duration, error) {
	s := os.Getenv(key)
	if s == "" {
		return def, nil
	}
	v, err := time.ParseDuration(s)
	if err != nil {
		return 0, fmt.Errorf("invalid %s environment variable: %w", key, err)
	}
	return v, nil
}

func boolEnv(key string, def bool) (bool, error) {
	s := os.Getenv(key)
	if s == "" {
		return def, nil
	}
	v, err := strconv.ParseBool(s)
	if err != nil {
		return false, fmt.Errorf("invalid %s environment variable: %w", key, err)
	}
	return v, nil
}
