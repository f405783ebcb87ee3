package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Server captures process-level configuration read once at startup.
type Server struct {
	Addr        string
	Environment string
	LogLevel    string

	// APIOrigin is allowed in the CSP connect-src directive.
	APIOrigin      string
	CORSOrigins    []string
	TrustedProxies []string

	// BusinessUpstream is the marketplace backend the gateway fronts.
	BusinessUpstream string
	AdminAPIToken    string

	Redis    RedisConfig
	Database DatabaseConfig
	Kafka    KafkaConfig

	Throttle ThrottleConfig
	Sweeper  SweeperConfig

	RequestTimeout  time.Duration
	ShutdownTimeout time.Duration
}

// IsProduction reports whether HSTS and other production-only policy apply.
func (s Server) IsProduction() bool {
	return s.Environment == "production"
}

// RedisConfig selects the distributed attempt/window stores when URL is set.
type RedisConfig struct {
	URL          string
	PoolSize     int
	MinIdleConns int
	DialTimeout  time.Duration
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
	// RecordTTL bounds attempt records in Redis.
	RecordTTL time.Duration
}

// DatabaseConfig selects the Postgres blocklist when URL is set.
type DatabaseConfig struct {
	URL             string
	MaxOpenConns    int
	MaxIdleConns    int
	ConnMaxLifetime time.Duration
}

// KafkaConfig enables the audit publisher when Brokers is set.
type KafkaConfig struct {
	Brokers string
	Topic   string
	Acks    string
}

type ThrottleConfig struct {
	Enabled bool
	RPS     float64
	Burst   int
}

type SweeperConfig struct {
	Interval time.Duration
	IdleTTL  time.Duration
}

// FromEnv builds a Server config from environment variables. A .env file in
// the working directory is loaded first when present; real environment
// variables win over it.
func FromEnv() (Server, error) {
	_ = godotenv.Load()

	cfg := Server{
		Addr:             getEnv("MARKETGATE_ADDR", ":8080"),
		Environment:      getEnv("ENVIRONMENT", "development"),
		LogLevel:         getEnv("LOG_LEVEL", "info"),
		APIOrigin:        getEnv("API_ORIGIN", "http://localhost:8080"),
		CORSOrigins:      splitList(getEnv("CORS_ORIGINS", "http://localhost:3000")),
		TrustedProxies:   splitList(os.Getenv("TRUSTED_PROXIES")),
		BusinessUpstream: os.Getenv("BUSINESS_UPSTREAM_URL"),
		AdminAPIToken:    os.Getenv("ADMIN_API_TOKEN"),
		Redis: RedisConfig{
			URL:          os.Getenv("REDIS_URL"),
			PoolSize:     10,
			MinIdleConns: 2,
			DialTimeout:  5 * time.Second,
			ReadTimeout:  3 * time.Second,
			WriteTimeout: 3 * time.Second,
			RecordTTL:    time.Hour,
		},
		Database: DatabaseConfig{
			URL:             os.Getenv("DATABASE_URL"),
			MaxOpenConns:    25,
			MaxIdleConns:    5,
			ConnMaxLifetime: 5 * time.Minute,
		},
		Kafka: KafkaConfig{
			Brokers: os.Getenv("KAFKA_BROKERS"),
			Topic:   getEnv("KAFKA_AUDIT_TOPIC", "marketgate.admission.audit"),
			Acks:    getEnv("KAFKA_ACKS", "all"),
		},
		Throttle: ThrottleConfig{
			Enabled: true,
			RPS:     1000,
			Burst:   2000,
		},
		Sweeper: SweeperConfig{
			Interval: 5 * time.Minute,
			IdleTTL:  time.Hour,
		},
		RequestTimeout:  30 * time.Second,
		ShutdownTimeout: 15 * time.Second,
	}

	var err error
	if cfg.Throttle.Enabled, err = envBool("GLOBAL_THROTTLE_ENABLED", cfg.Throttle.Enabled); err != nil {
		return Server{}, err
	}
	if cfg.Throttle.RPS, err = envFloat("GLOBAL_THROTTLE_RPS", cfg.Throttle.RPS); err != nil {
		return Server{}, err
	}
	if cfg.Throttle.Burst, err = envInt("GLOBAL_THROTTLE_BURST", cfg.Throttle.Burst); err != nil {
		return Server{}, err
	}
	if cfg.Sweeper.Interval, err = envDuration("SWEEP_INTERVAL", cfg.Sweeper.Interval); err != nil {
		return Server{}, err
	}
	if cfg.Sweeper.IdleTTL, err = envDuration("SWEEP_IDLE_TTL", cfg.Sweeper.IdleTTL); err != nil {
		return Server{}, err
	}
	if cfg.Redis.RecordTTL, err = envDuration("REDIS_RECORD_TTL", cfg.Redis.RecordTTL); err != nil {
		return Server{}, err
	}
	if cfg.RequestTimeout, err = envDuration("REQUEST_TIMEOUT", cfg.RequestTimeout); err != nil {
		return Server{}, err
	}
	if cfg.ShutdownTimeout, err = envDuration("SHUTDOWN_TIMEOUT", cfg.ShutdownTimeout); err != nil {
		return Server{}, err
	}
	return cfg, nil
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func splitList(v string) []string {
	if v == "" {
		return nil
	}
	var out []string
	for _, part := range strings.Split(v, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}

func envDuration(key string, fallback time.Duration) (time.Duration, error) {
	v := os.Getenv(key)
	if v == "" {
		return fallback, nil
	}
	d, err := time.ParseDuration(v)
	if err != nil || d <= 0 {
		return 0, fmt.Errorf("invalid %s %q: must be a positive duration", key, v)
	}
	return d, nil
}

func envInt(key string, fallback int) (int, error) {
	v := os.Getenv(key)
	if v == "" {
		return fallback, nil
	}
	n, err := strconv.Atoi(v)
	if err != nil || n <= 0 {
		return 0, fmt.Errorf("invalid %s %q: must be a positive integer", key, v)
	}
	return n, nil
}

func envFloat(key string, fallback float64) (float64, error) {
	v := os.Getenv(key)
	if v == "" {
		return fallback, nil
	}
	f, err := strconv.ParseFloat(v, 64)
	if err != nil || f <= 0 {
		return 0, fmt.Errorf("invalid %s %q: must be a positive number", key, v)
	}
	return f, nil
}

func envBool(key string, fallback bool) (bool, error) {
	v := os.Getenv(key)
	if v == "" {
		return fallback, nil
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		return false, fmt.Errorf("invalid %s %q: %w", key, v, err)
	}
	return b, nil
}
