package config

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"
)

// Load reads the App config from the process environment after applying the
// first env file found among envFilePath. Each name is searched for from the
// working directory upwards.
func Load(envFilePath ...string) (*App, error) {
	logger := slog.Default()
	logger.Info("Loading environment variables")

	if len(envFilePath) == 0 {
		logger.Debug("No environment file specified, trying default .env")
		if err := godotenv.Load(); err != nil {
			logger.Warn("No .env file found in current directory")
		}
		return loadFromEnv()
	}

	for _, path := range envFilePath {
		logger.Debug("Looking for environment file", "path", path)
		foundPath, err := findEnvFile(path)
		if err != nil {
			logger.Debug("Environment file not found", "path", path, "error", err)
			continue
		}

		logger.Info("Loading environment from file", "path", foundPath)
		if err := godotenv.Load(foundPath); err != nil {
			logger.Error("Failed to load environment file", "path", foundPath, "error", err)
			continue
		}
		return loadFromEnv()
	}

	logger.Info("No valid environment files found, using process environment")
	return loadFromEnv()
}

// findEnvFile returns the nearest filename (".env" when empty) in the
// working directory or one of its parents.
func findEnvFile(filename string) (string, error) {
	if filename == "" {
		filename = ".env"
	}
	dir, err := os.Getwd()
	if err != nil {
		return "", err
	}
	for {
		candidate := filepath.Join(dir, filename)
		if info, err := os.Stat(candidate); err == nil && !info.IsDir() {
			return candidate, nil
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			return "", fmt.Errorf("env file %s: %w", filename, os.ErrNotExist)
		}
		dir = parent
	}
}

func loadFromEnv() (*App, error) {
	var cfg App
	if err := envconfig.Process("", &cfg); err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	slog.Default().Info("App config loaded",
		"env", cfg.Env,
		"store", cfg.Store,
		"cache_driver", cfg.Cache.Driver,
		"audit_sink", cfg.AuditSink,
		"db", maskValue(cfg.DB.Url),
		"redis", maskValue(cfg.Redis.URL),
		"kafka_brokers", cfg.Kafka.Brokers,
		"reference_prefix", cfg.Reference.Prefix,
	)
	return &cfg, nil
}

// Validate rejects unknown drivers and settings the chosen drivers need.
func (a *App) Validate() error {
	switch a.Store {
	case StoreMemory:
	case StorePostgres:
		if a.DB == nil || a.DB.Url == "" {
			return fmt.Errorf("config: STORE=%s requires DATABASE_URL", a.Store)
		}
	default:
		return fmt.Errorf("config: unknown STORE %q", a.Store)
	}
	switch a.Cache.Driver {
	case CacheMemory, CacheRedis, CacheNone:
	default:
		return fmt.Errorf("config: unknown CACHE_DRIVER %q", a.Cache.Driver)
	}
	switch a.AuditSink {
	case AuditLog, AuditStore, AuditKafka:
	default:
		return fmt.Errorf("config: unknown AUDIT_SINK %q", a.AuditSink)
	}
	if a.AuditSink == AuditKafka && len(a.Kafka.Brokers) == 0 {
		return fmt.Errorf("config: AUDIT_SINK=kafka requires KAFKA_BROKERS")
	}
	return nil
}

func maskValue(key string) string {
	if len(key) <= 6 {
		return "****"
	}
	return key[:2] + "****" + key[len(key)-4:]
}
