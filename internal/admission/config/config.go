package config

import (
	"fmt"
	"net/http"
	"strings"
	"time"

	"marketgate/internal/admission/models"
)

// DefaultMaxPayloadBytes is the largest Content-Length admitted (10 MiB).
const DefaultMaxPayloadBytes int64 = 10 << 20

// Config holds admission policy.
type Config struct {
	Lockout LockoutConfig

	// Limiters keyed by the route class they guard.
	Limiters map[models.RouteClass]LimiterConfig

	MaxPayloadBytes int64
}

// LockoutConfig defines the failed-auth lockout.
type LockoutConfig struct {
	Threshold int           // failures that trigger a lock (5)
	Duration  time.Duration // lock length (15 minutes)
	// AuthPaths are the path prefixes whose outcomes are counted.
	AuthPaths []string
}

// LimiterConfig is one named fixed-window limiter instance.
type LimiterConfig struct {
	Name    string
	Window  time.Duration
	Max     int
	Message string
	// Skip exempts a request from counting. Nil never skips.
	Skip func(r *http.Request) bool
}

func (c LimiterConfig) Validate() error {
	if c.Name == "" {
		return fmt.Errorf("limiter name is required")
	}
	if c.Window <= 0 {
		return fmt.Errorf("limiter %s: window must be positive", c.Name)
	}
	if c.Max <= 0 {
		return fmt.Errorf("limiter %s: max must be positive", c.Name)
	}
	return nil
}

// DefaultLimiters returns the auth, general and password-reset limiters.
func DefaultLimiters() map[models.RouteClass]LimiterConfig {
	return map[models.RouteClass]LimiterConfig{
		models.ClassAuth: {
			Name:    string(models.ClassAuth),
			Window:  15 * time.Minute,
			Max:     5,
			Message: "Too many authentication attempts, please try again later.",
		},
		models.ClassGeneral: {
			Name:    string(models.ClassGeneral),
			Window:  15 * time.Minute,
			Max:     100,
			Message: "Too many requests from this IP, please try again later.",
		},
		models.ClassPasswordReset: {
			Name:    string(models.ClassPasswordReset),
			Window:  time.Hour,
			Max:     3,
			Message: "Too many password reset attempts, please try again later.",
		},
	}
}

// DefaultConfig returns the production admission policy.
func DefaultConfig() *Config {
	return &Config{
		Lockout: LockoutConfig{
			Threshold: 5,
			Duration:  15 * time.Minute,
			AuthPaths: []string{"/auth/login", "/api/auth/login"},
		},
		Limiters:        DefaultLimiters(),
		MaxPayloadBytes: DefaultMaxPayloadBytes,
	}
}

// IsAuthPath reports whether path is one of the configured auth paths or
// below one. "/auth/login/" matches "/auth/login"; "/auth/loginx" does not.
func (c LockoutConfig) IsAuthPath(path string) bool {
	for _, p := range c.AuthPaths {
		if path == p || strings.HasPrefix(path, strings.TrimSuffix(p, "/")+"/") {
			return true
		}
	}
	return false
}

func (c *Config) Validate() error {
	if c.Lockout.Threshold <= 0 {
		return fmt.Errorf("lockout threshold must be positive")
	}
	if c.Lockout.Duration <= 0 {
		return fmt.Errorf("lockout duration must be positive")
	}
	if c.MaxPayloadBytes <= 0 {
		return fmt.Errorf("max payload bytes must be positive")
	}
	for class, l := range c.Limiters {
		if !class.IsValid() {
			return fmt.Errorf("unknown route class %q", class)
		}
		if err := l.Validate(); err != nil {
			return err
		}
	}
	return nil
}
