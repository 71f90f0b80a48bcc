package config

import "time"

const (
	defaultPort             = 8080
	defaultOperationTimeout = 3 * time.Second
)

var defaultDB = DB{
	Host: "127.0.0.1",
	Port: "5432",
	User: "myuser",
	Pass: "mypassword",
	Name: "test_db",
}

var defaultMatching = Matching{
	StrictRadiusKm:   1.5,
	FlexibleRadiusKm: 2.0,
	DefaultPolicy:    "flexible",

	IndexRebuildInterval: time.Minute,
}

var defaultKafka = Kafka{
	Topic:   "delivery-events",
	GroupID: "tripndrop-indexer",
}

var defaultRateLimit = RateLimit{
	Enabled:    true,
	Rate:       5,
	Burst:      10,
	TTL:        10 * time.Minute,
	MaxBuckets: 10000,
}

var defaultPublisher = Publisher{
	MaxAttempts:  3,
	BaseDelay:    100 * time.Millisecond,
	MaxDelay:     time.Second,
	QueueSize:    256,
	FlushTimeout: 5 * time.Second,
}

// Default returns a Config populated with defaults. JWTSecret is left empty.
func Default() *Config {
	return &Config{
		Port:             defaultPort,
		LogLevel:         "info",
		Storage:          StoragePostgres,
		OperationTimeout: defaultOperationTimeout,
		DB:               defaultDB,
		Matching:         defaultMatching,
		OTP:              OTP{Length: 6},
		Kafka:            defaultKafka,
		RateLimit:        defaultRateLimit,
		Publisher:        defaultPublisher,
	}
}

// DefaultPort returns the default port.
func DefaultPort() int {
	return defaultPort
}

// DefaultDB returns the default database settings.
func DefaultDB() DB {
	return defaultDB
}

// DefaultMatching returns the default radius presets.
func DefaultMatching() Matching {
	return defaultMatching
}
