package config

import (
	"time"
)

// Store drivers.
const (
	StoreMemory   = "memory"
	StorePostgres = "postgres"
)

// Cache drivers.
const (
	CacheMemory = "memory"
	CacheRedis  = "redis"
	CacheNone   = "none"
)

// Audit sinks.
const (
	AuditLog   = "log"
	AuditStore = "store"
	AuditKafka = "kafka"
)

type DB struct {
	Url          string        `envconfig:"URL"`
	MaxOpenConns int           `envconfig:"MAX_OPEN_CONNS" default:"25"`
	MaxIdleConns int           `envconfig:"MAX_IDLE_CONNS" default:"25"`
	ConnMaxLife  time.Duration `envconfig:"CONN_MAX_LIFETIME" default:"1h"`
	AutoMigrate  bool          `envconfig:"AUTO_MIGRATE" default:"true"`
}

type Redis struct {
	URL          string        `envconfig:"URL" default:"redis://localhost:6379/0"`
	KeyPrefix    string        `envconfig:"KEY_PREFIX" default:"bankcore:"`
	PoolSize     int           `envconfig:"POOL_SIZE" default:"10"`
	DialTimeout  time.Duration `envconfig:"DIAL_TIMEOUT" default:"5s"`
	ReadTimeout  time.Duration `envconfig:"READ_TIMEOUT" default:"3s"`
	WriteTimeout time.Duration `envconfig:"WRITE_TIMEOUT" default:"3s"`
}

type Cache struct {
	Driver          string        `envconfig:"DRIVER" default:"memory"`
	CleanupInterval time.Duration `envconfig:"CLEANUP_INTERVAL" default:"1m"`
}

// Breaker configures the circuit breaker in front of the cache.
type Breaker struct {
	Timeout             time.Duration `envconfig:"TIMEOUT" default:"500ms"`
	MaxRequests         uint32        `envconfig:"MAX_REQUESTS" default:"1"`
	Interval            time.Duration `envconfig:"INTERVAL" default:"1m"`
	OpenTimeout         time.Duration `envconfig:"OPEN_TIMEOUT" default:"30s"`
	ConsecutiveFailures uint32        `envconfig:"CONSECUTIVE_FAILURES" default:"5"`
}

type Kafka struct {
	Brokers []string `envconfig:"BROKERS" default:"localhost:9092"`
	Topic   string   `envconfig:"TOPIC" default:"bankcore.audit"`
}

type Log struct {
	Level      int    `envconfig:"LEVEL" default:"0"`
	Format     string `envconfig:"FORMAT" default:"text"`
	TimeFormat string `envconfig:"TIME_FORMAT" default:"2006-01-02 15:04:05"`
	Prefix     string `envconfig:"PREFIX" default:"[bankcore]"`
}

type Reference struct {
	Prefix string `envconfig:"PREFIX" default:"TXN"`
}

type Metrics struct {
	Namespace string `envconfig:"NAMESPACE" default:"bankcore"`
}

type App struct {
	Env       string     `envconfig:"APP_ENV" default:"development"`
	Store     string     `envconfig:"STORE" default:"memory"`
	AuditSink string     `envconfig:"AUDIT_SINK" default:"log"`
	Log       *Log       `envconfig:"LOG"`
	DB        *DB        `envconfig:"DATABASE"`
	Redis     *Redis     `envconfig:"REDIS"`
	Cache     *Cache     `envconfig:"CACHE"`
	Breaker   *Breaker   `envconfig:"BREAKER"`
	Kafka     *Kafka     `envconfig:"KAFKA"`
	Reference *Reference `envconfig:"REFERENCE"`
	Metrics   *Metrics   `envconfig:"METRICS"`
}
