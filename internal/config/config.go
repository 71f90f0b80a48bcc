package config

import (
	"errors"
	"fmt"
	"log"
	"math"
	"net"
	"net/url"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/pflag"
)

// Storage drivers
const (
	StoragePostgres = "postgres"
	StorageMemory   = "memory"
)

// Config stores service and worker settings.
type Config struct {
	Port             int
	LogLevel         string
	Storage          string
	OperationTimeout time.Duration
	DB               DB
	Matching         Matching
	OTP              OTP
	Auth             Auth
	Kafka            Kafka
	Redis            Redis
	RateLimit        RateLimit
	Publisher        Publisher
	Debug            Debug
}

// DB holds Postgres connection settings.
type DB struct {
	Host string
	Port string
	User string
	Pass string
	Name string
}

// DSN builds a pgx connection string.
func (d DB) DSN() string {
	u := url.URL{
		Scheme:   "postgres",
		User:     url.UserPassword(d.User, d.Pass),
		Host:     net.JoinHostPort(d.Host, d.Port),
		Path:     "/" + d.Name,
		RawQuery: "sslmode=disable",
	}
	return u.String()
}

// Matching holds the match radius presets.
type Matching struct {
	StrictRadiusKm   float64
	FlexibleRadiusKm float64
	DefaultPolicy    string
	Directional      bool

	// IndexEnabled turns on the Redis candidate index. The index is fed by
	// the event bus, so Kafka must be configured too.
	IndexEnabled         bool
	IndexRebuildInterval time.Duration
}

// OTP holds handoff code settings.
type OTP struct {
	Length int
}

// Auth holds bearer token settings.
type Auth struct {
	JWTSecret string
}

// Kafka holds event bus settings. Empty Brokers disables it.
type Kafka struct {
	Brokers []string
	Topic   string
	GroupID string
}

// Redis holds candidate index settings.
type Redis struct {
	Addr     string
	Password string
	DB       int
}

// RateLimit holds token bucket settings.
type RateLimit struct {
	Enabled    bool
	Rate       float64
	Burst      int
	TTL        time.Duration
	MaxBuckets int
}

// Publisher holds event publish settings. Events are queued and sent in
// the background; QueueSize bounds the backlog.
type Publisher struct {
	MaxAttempts  int
	BaseDelay    time.Duration
	MaxDelay     time.Duration
	QueueSize    int
	FlushTimeout time.Duration
}

// Debug holds the profiling/metrics ops listener. Empty Addr disables it.
type Debug struct {
	Addr string
	User string
	Pass string
}

// Load reads configuration in order: .env (if present) → environment → flags.
func Load() (*Config, error) {
	if err := godotenv.Load(".env"); err != nil && !errors.Is(err, os.ErrNotExist) {
		log.Printf("warning: .env not loaded: %v", err)
	}

	cfg := Default()
	if err := fromEnv(cfg); err != nil {
		return nil, err
	}
	if err := fromFlags(cfg); err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func fromEnv(cfg *Config) error {
	var errs []error
	collect := func(err error) {
		if err != nil {
			errs = append(errs, err)
		}
	}

	collect(envInt("PORT", &cfg.Port))
	envString("LOG_LEVEL", &cfg.LogLevel)
	envString("STORAGE_DRIVER", &cfg.Storage)
	collect(envDuration("OPERATION_TIMEOUT", &cfg.OperationTimeout))

	envString("POSTGRES_HOST", &cfg.DB.Host)
	envString("POSTGRES_PORT", &cfg.DB.Port)
	envString("POSTGRES_USER", &cfg.DB.User)
	envString("POSTGRES_PASSWORD", &cfg.DB.Pass)
	envString("POSTGRES_DB", &cfg.DB.Name)
	if _, err := strconv.Atoi(cfg.DB.Port); err != nil {
		collect(fmt.Errorf("POSTGRES_PORT: %q is not a number", cfg.DB.Port))
	}

	collect(envFloat("MATCH_RADIUS_STRICT_KM", &cfg.Matching.StrictRadiusKm))
	collect(envFloat("MATCH_RADIUS_FLEXIBLE_KM", &cfg.Matching.FlexibleRadiusKm))
	envString("MATCH_DEFAULT_POLICY", &cfg.Matching.DefaultPolicy)
	collect(envBool("MATCH_DIRECTIONAL", &cfg.Matching.Directional))
	collect(envBool("MATCH_INDEX_ENABLED", &cfg.Matching.IndexEnabled))
	collect(envDuration("MATCH_INDEX_REBUILD_INTERVAL", &cfg.Matching.IndexRebuildInterval))

	collect(envInt("OTP_LENGTH", &cfg.OTP.Length))
	envString("JWT_SECRET", &cfg.Auth.JWTSecret)

	if v := strings.TrimSpace(os.Getenv("KAFKA_BROKERS")); v != "" {
		cfg.Kafka.Brokers = splitList(v)
	}
	envString("KAFKA_TOPIC", &cfg.Kafka.Topic)
	envString("KAFKA_GROUP_ID", &cfg.Kafka.GroupID)

	envString("REDIS_ADDR", &cfg.Redis.Addr)
	envString("REDIS_PASSWORD", &cfg.Redis.Password)
	collect(envInt("REDIS_DB", &cfg.Redis.DB))

	collect(envBool("RATE_LIMIT_ENABLED", &cfg.RateLimit.Enabled))
	collect(envFloat("RATE_LIMIT_RATE", &cfg.RateLimit.Rate))
	collect(envInt("RATE_LIMIT_BURST", &cfg.RateLimit.Burst))
	collect(envDuration("RATE_LIMIT_TTL", &cfg.RateLimit.TTL))
	collect(envInt("RATE_LIMIT_MAX_BUCKETS", &cfg.RateLimit.MaxBuckets))

	collect(envInt("PUBLISH_MAX_ATTEMPTS", &cfg.Publisher.MaxAttempts))
	collect(envDuration("PUBLISH_BASE_DELAY", &cfg.Publisher.BaseDelay))
	collect(envDuration("PUBLISH_MAX_DELAY", &cfg.Publisher.MaxDelay))
	collect(envInt("PUBLISH_QUEUE_SIZE", &cfg.Publisher.QueueSize))
	collect(envDuration("PUBLISH_FLUSH_TIMEOUT", &cfg.Publisher.FlushTimeout))

	envString("DEBUG_ADDR", &cfg.Debug.Addr)
	envString("DEBUG_USER", &cfg.Debug.User)
	envString("DEBUG_PASSWORD", &cfg.Debug.Pass)

	return errors.Join(errs...)
}

func fromFlags(cfg *Config) error {
	fs := pflag.CommandLine
	if fs.Lookup("port") == nil {
		fs.IntP("port", "p", cfg.Port, "port to listen on")
		fs.String("log-level", cfg.LogLevel, "debug, info, warn or error")
		fs.String("storage", cfg.Storage, "postgres or memory")
		fs.Bool("match-directional", cfg.Matching.Directional, "require pickup before dropoff along the journey")
	}
	fs.ParseErrorsWhitelist.UnknownFlags = true

	if err := fs.Parse(os.Args[1:]); err != nil {
		return fmt.Errorf("parse flags: %w", err)
	}
	if fs.Changed("port") {
		cfg.Port, _ = fs.GetInt("port")
	}
	if fs.Changed("log-level") {
		cfg.LogLevel, _ = fs.GetString("log-level")
	}
	if fs.Changed("storage") {
		cfg.Storage, _ = fs.GetString("storage")
	}
	if fs.Changed("match-directional") {
		cfg.Matching.Directional, _ = fs.GetBool("match-directional")
	}
	return nil
}

// Validate checks cross-field constraints.
func (c *Config) Validate() error {
	var errs []error
	if c.Port <= 0 || c.Port > 65535 {
		errs = append(errs, fmt.Errorf("invalid port: %d", c.Port))
	}
	if c.Storage != StoragePostgres && c.Storage != StorageMemory {
		errs = append(errs, fmt.Errorf("invalid storage driver %q", c.Storage))
	}
	for name, r := range map[string]float64{
		"MATCH_RADIUS_STRICT_KM":   c.Matching.StrictRadiusKm,
		"MATCH_RADIUS_FLEXIBLE_KM": c.Matching.FlexibleRadiusKm,
	} {
		if math.IsNaN(r) || math.IsInf(r, 0) || r < 0 {
			errs = append(errs, fmt.Errorf("%s must be a finite non-negative number", name))
		}
	}
	if p := c.Matching.DefaultPolicy; p != "strict" && p != "flexible" {
		errs = append(errs, fmt.Errorf("invalid default match policy %q", p))
	}
	if c.OTP.Length < 4 || c.OTP.Length > 18 {
		errs = append(errs, fmt.Errorf("OTP_LENGTH must be within [4, 18], got %d", c.OTP.Length))
	}
	if strings.TrimSpace(c.Auth.JWTSecret) == "" {
		errs = append(errs, errors.New("JWT_SECRET is required"))
	}
	if c.Matching.IndexEnabled {
		if c.Redis.Addr == "" {
			errs = append(errs, errors.New("MATCH_INDEX_ENABLED requires REDIS_ADDR"))
		}
		if len(c.Kafka.Brokers) == 0 || c.Kafka.Topic == "" || c.Kafka.GroupID == "" {
			errs = append(errs, errors.New("MATCH_INDEX_ENABLED requires KAFKA_BROKERS, KAFKA_TOPIC and KAFKA_GROUP_ID"))
		}
		if c.Matching.IndexRebuildInterval <= 0 {
			errs = append(errs, errors.New("MATCH_INDEX_REBUILD_INTERVAL must be positive"))
		}
	}
	if c.Publisher.QueueSize <= 0 {
		errs = append(errs, fmt.Errorf("PUBLISH_QUEUE_SIZE must be positive, got %d", c.Publisher.QueueSize))
	}
	if c.Publisher.FlushTimeout <= 0 {
		errs = append(errs, errors.New("PUBLISH_FLUSH_TIMEOUT must be positive"))
	}
	if c.Debug.Addr != "" {
		if _, _, err := net.SplitHostPort(c.Debug.Addr); err != nil {
			errs = append(errs, fmt.Errorf("DEBUG_ADDR: %w", err))
		}
	}
	if c.OperationTimeout <= 0 {
		errs = append(errs, errors.New("OPERATION_TIMEOUT must be positive"))
	}
	return errors.Join(errs...)
}

func envString(key string, dst *string) {
	if v := strings.TrimSpace(os.Getenv(key)); v != "" {
		*dst = v
	}
}

func envInt(key string, dst *int) error {
	v := strings.TrimSpace(os.Getenv(key))
	if v == "" {
		return nil
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return fmt.Errorf("%s: %q is not an integer", key, v)
	}
	*dst = n
	return nil
}

func envFloat(key string, dst *float64) error {
	v := strings.TrimSpace(os.Getenv(key))
	if v == "" {
		return nil
	}
	f, err := strconv.ParseFloat(v, 64)
	if err != nil {
		return fmt.Errorf("%s: %q is not a number", key, v)
	}
	*dst = f
	return nil
}

func envBool(key string, dst *bool) error {
	v := strings.TrimSpace(os.Getenv(key))
	if v == "" {
		return nil
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		return fmt.Errorf("%s: %q is not a boolean", key, v)
	}
	*dst = b
	return nil
}

func envDuration(key string, dst *time.Duration) error {
	v := strings.TrimSpace(os.Getenv(key))
	if v == "" {
		return nil
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		return fmt.Errorf("%s: %q is not a duration", key, v)
	}
	*dst = d
	return nil
}

func splitList(v string) []string {
	var out []string
	for _, s := range strings.Split(v, ",") {
		if s = strings.TrimSpace(s); s != "" {
			out = append(out, s)
		}
	}
	return out
}
