package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	App            AppConfig
	Server         ServerConfig
	Database       DatabaseConfig
	JWT            JWTConfig
	Redis          RedisConfig
	Recommendation RecommendationConfig
}

type AppConfig struct {
	Name        string
	Version     string
	Environment string
}

type ServerConfig struct {
	Port            string
	RequestTimeout  time.Duration
	ShutdownTimeout time.Duration
}

type DatabaseConfig struct {
	Host     string
	Port     string
	User     string
	Password string
	Name     string
	SSLMode  string
}

type JWTConfig struct {
	SecretKey string
}

type RedisConfig struct {
	Enabled       bool
	RedisHost     string
	RedisPort     string
	RedisPassword string
	RedisDB       int
	KeyPrefix     string
}

type RecommendationConfig struct {
	DefaultLimit         int
	FallbackPerItem      int
	IndexTopK            int
	IndexWorkers         int
	IndexRefreshInterval time.Duration
	MirrorTTL            time.Duration
	BehaviorMaxEvents    int
	BehaviorRetention    time.Duration
}

func Load() (*Config, error) {
	_ = godotenv.Load()

	redisDB, err := getEnvInt("REDIS_DB", 0)
	if err != nil {
		return nil, err
	}
	redisEnabled, err := getEnvBool("REDIS_ENABLED", false)
	if err != nil {
		return nil, err
	}

	requestTimeout, err := getEnvDuration("REQUEST_TIMEOUT", 10*time.Second)
	if err != nil {
		return nil, err
	}
	shutdownTimeout, err := getEnvDuration("SHUTDOWN_TIMEOUT", 10*time.Second)
	if err != nil {
		return nil, err
	}

	reco, err := loadRecommendation()
	if err != nil {
		return nil, err
	}

	cfg := &Config{
		App: AppConfig{
			Name:        getEnv("APP_NAME", "Marketplace API"),
			Version:     getEnv("APP_VERSION", "1.0.0"),
			Environment: getEnv("APP_ENV", "development"),
		},
		Server: ServerConfig{
			Port:            getEnv("PORT", "8080"),
			RequestTimeout:  requestTimeout,
			ShutdownTimeout: shutdownTimeout,
		},
		Database: DatabaseConfig{
			Host:     getEnv("DB_HOST", "localhost"),
			Port:     getEnv("DB_PORT", "5432"),
			User:     getEnv("DB_USER", "postgres"),
			Password: getEnv("DB_PASSWORD", ""),
			Name:     getEnv("DB_NAME", "marketplace"),
			SSLMode:  getEnv("DB_SSL_MODE", "disable"),
		},
		JWT: JWTConfig{
			SecretKey: getEnv("JWT_SECRET", ""),
		},
		Redis: RedisConfig{
			Enabled:       redisEnabled,
			RedisHost:     getEnv("REDIS_HOST", "localhost"),
			RedisPort:     getEnv("REDIS_PORT", "6379"),
			RedisPassword: getEnv("REDIS_PASSWORD", ""),
			RedisDB:       redisDB,
			KeyPrefix:     getEnv("REDIS_KEY_PREFIX", "reco"),
		},
		Recommendation: reco,
	}

	if cfg.JWT.SecretKey == "" {
		return nil, errors.New("missing jwt secret")
	}

	if cfg.Database.Password == "" {
		return nil, errors.New("missing database password")
	}

	return cfg, nil
}

func loadRecommendation() (RecommendationConfig, error) {
	var (
		rc  RecommendationConfig
		err error
	)

	if rc.DefaultLimit, err = getEnvInt("RECO_DEFAULT_LIMIT", 6); err != nil {
		return rc, err
	}
	if rc.FallbackPerItem, err = getEnvInt("RECO_FALLBACK_PER_ITEM", 3); err != nil {
		return rc, err
	}
	if rc.IndexTopK, err = getEnvInt("RECO_INDEX_TOP_K", 10); err != nil {
		return rc, err
	}
	if rc.IndexWorkers, err = getEnvInt("RECO_INDEX_WORKERS", 4); err != nil {
		return rc, err
	}
	if rc.IndexRefreshInterval, err = getEnvDuration("RECO_INDEX_REFRESH_INTERVAL", 15*time.Minute); err != nil {
		return rc, err
	}
	if rc.MirrorTTL, err = getEnvDuration("RECO_MIRROR_TTL", 24*time.Hour); err != nil {
		return rc, err
	}
	// 0 keeps the behavior log unbounded
	if rc.BehaviorMaxEvents, err = getEnvInt("RECO_BEHAVIOR_MAX_EVENTS", 0); err != nil {
		return rc, err
	}
	if rc.BehaviorRetention, err = getEnvDuration("RECO_BEHAVIOR_RETENTION", 0); err != nil {
		return rc, err
	}

	return rc, nil
}

func getEnv(key, defaultVal string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}

	return defaultVal
}

func getEnvInt(key string, defaultVal int) (int, error) {
	val := os.Getenv(key)
	if val == "" {
		return defaultVal, nil
	}

	n, err := strconv.Atoi(val)
	if err != nil {
		return 0, fmt.Errorf("invalid %s: %w", key, err)
	}

	return n, nil
}

func getEnvBool(key string, defaultVal bool) (bool, error) {
	val := os.Getenv(key)
	if val == "" {
		return defaultVal, nil
	}

	b, err := strconv.ParseBool(val)
	if err != nil {
		return false, fmt.Errorf("invalid %s: %w", key, err)
	}

	return b, nil
}

func getEnvDuration(key string, defaultVal time.Duration) (time.Duration, error) {
	val := os.Getenv(key)
	if val == "" {
		return defaultVal, nil
	}

	d, err := time.ParseDuration(val)
	if err != nil {
		return 0, fmt.Errorf("invalid %s: %w", key, err)
	}

	return d, nil
}
