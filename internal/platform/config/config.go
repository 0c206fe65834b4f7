package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	platstrings "coopreg/pkg/platform/strings"
)

const devSigningKey = "dev-secret-key-change-in-production"

// Server captures HTTP server level configuration.
type Server struct {
	Addr            string
	JWTSigningKey   string
	JWTIssuer       string
	RequestTimeout  time.Duration
	ShutdownTimeout time.Duration
}

type Database struct {
	// URL empty selects the in-memory stores.
	URL          string
	MaxOpenConns int
	MaxIdleConns int
}

type RedisConfig struct {
	// URL empty selects the in-memory rate limiter.
	URL          string
	PoolSize     int
	MinIdleConns int
	DialTimeout  time.Duration
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
}

type Kafka struct {
	// Brokers empty selects the log publisher.
	Brokers     []string
	Topic       string
	EnsureTopic bool
}

type RateLimit struct {
	PerMinute int
	Disabled  bool
}

type Outbox struct {
	PollInterval time.Duration
	BatchSize    int
	Retention    time.Duration
}

type Workflow struct {
	BulkAssignConcurrency int
	// DocumentVerifier is "manual" or "http".
	DocumentVerifier    string
	VerifierHTTPTimeout time.Duration
}

type Config struct {
	Server    Server
	Database  Database
	Redis     RedisConfig
	Kafka     Kafka
	RateLimit RateLimit
	Outbox    Outbox
	Workflow  Workflow
	LogLevel  string
}

// FromEnv builds a Config from environment variables with development defaults.
func FromEnv() (Config, error) {
	var errs []error
	cfg := Config{
		Server: Server{
			Addr:            envString("COOPREG_ADDR", ":8080"),
			JWTSigningKey:   envString("JWT_SIGNING_KEY", devSigningKey),
			JWTIssuer:       envString("JWT_ISSUER", "coopreg"),
			RequestTimeout:  envDuration("REQUEST_TIMEOUT", 15*time.Second, &errs),
			ShutdownTimeout: envDuration("SHUTDOWN_TIMEOUT", 10*time.Second, &errs),
		},
		Database: Database{
			URL:          os.Getenv("DATABASE_URL"),
			MaxOpenConns: envInt("DATABASE_MAX_OPEN_CONNS", 20, &errs),
			MaxIdleConns: envInt("DATABASE_MAX_IDLE_CONNS", 5, &errs),
		},
		Redis: RedisConfig{
			URL:          os.Getenv("REDIS_URL"),
			PoolSize:     envInt("REDIS_POOL_SIZE", 10, &errs),
			MinIdleConns: envInt("REDIS_MIN_IDLE_CONNS", 2, &errs),
			DialTimeout:  envDuration("REDIS_DIAL_TIMEOUT", 2*time.Second, &errs),
			ReadTimeout:  envDuration("REDIS_READ_TIMEOUT", 500*time.Millisecond, &errs),
			WriteTimeout: envDuration("REDIS_WRITE_TIMEOUT", 500*time.Millisecond, &errs),
		},
		Kafka: Kafka{
			Brokers:     platstrings.SplitList(os.Getenv("KAFKA_BROKERS"), ","),
			Topic:       envString("KAFKA_TOPIC", "coopreg.application-status"),
			EnsureTopic: envBool("KAFKA_ENSURE_TOPIC", true, &errs),
		},
		RateLimit: RateLimit{
			PerMinute: envInt("RATE_LIMIT_PER_MINUTE", 120, &errs),
			Disabled:  envBool("RATE_LIMIT_DISABLED", false, &errs),
		},
		Outbox: Outbox{
			PollInterval: envDuration("OUTBOX_POLL_INTERVAL", 2*time.Second, &errs),
			BatchSize:    envInt("OUTBOX_BATCH_SIZE", 100, &errs),
			Retention:    envDuration("OUTBOX_RETENTION", 7*24*time.Hour, &errs),
		},
		Workflow: Workflow{
			BulkAssignConcurrency: envInt("BULK_ASSIGN_CONCURRENCY", 4, &errs),
			DocumentVerifier:      envString("DOCUMENT_VERIFIER", "manual"),
			VerifierHTTPTimeout:   envDuration("DOCUMENT_VERIFIER_TIMEOUT", 5*time.Second, &errs),
		},
		LogLevel: envString("LOG_LEVEL", "info"),
	}
	if len(errs) > 0 {
		return Config{}, errors.Join(errs...)
	}
	return cfg, nil
}

// Validate checks values that flags or the environment may have set badly.
func (c Config) Validate() error {
	var errs []error
	if c.Server.Addr == "" {
		errs = append(errs, errors.New("server address is required"))
	}
	if c.Server.JWTSigningKey == "" {
		errs = append(errs, errors.New("JWT signing key is required"))
	}
	if c.RateLimit.PerMinute <= 0 {
		errs = append(errs, errors.New("rate limit per minute must be positive"))
	}
	if c.Outbox.PollInterval <= 0 {
		errs = append(errs, errors.New("outbox poll interval must be positive"))
	}
	if c.Workflow.BulkAssignConcurrency <= 0 {
		errs = append(errs, errors.New("bulk assign concurrency must be positive"))
	}
	switch c.Workflow.DocumentVerifier {
	case "manual", "http":
	default:
		errs = append(errs, fmt.Errorf("unknown document verifier %q", c.Workflow.DocumentVerifier))
	}
	return errors.Join(errs...)
}

// UsesDevSigningKey reports whether the built-in development key is active.
func (c Config) UsesDevSigningKey() bool {
	return c.Server.JWTSigningKey == devSigningKey
}

func envString(key, def string) string {
	if v := strings.TrimSpace(os.Getenv(key)); v != "" {
		return v
	}
	return def
}

func envInt(key string, def int, errs *[]error) int {
	v := strings.TrimSpace(os.Getenv(key))
	if v == "" {
		return def
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		*errs = append(*errs, fmt.Errorf("%s: %w", key, err))
		return def
	}
	return n
}

func envBool(key string, def bool, errs *[]error) bool {
	v := strings.TrimSpace(os.Getenv(key))
	if v == "" {
		return def
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		*errs = append(*errs, fmt.Errorf("%s: %w", key, err))
		return def
	}
	return b
}

func envDuration(key string, def time.Duration, errs *[]error) time.Duration {
	v := strings.TrimSpace(os.Getenv(key))
	if v == "" {
		return def
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		*errs = append(*errs, fmt.Errorf("%s: %w", key, err))
		return def
	}
	return d
}
