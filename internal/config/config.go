package config

import (
	"os"
	"strconv"
	"time"
)

type Config struct {
	App struct {
		Port        string
		Debug       bool
		FrontendURL string
		MaxUploadMB int64
	}
	DB struct {
		Driver   string
		Host     string
		Port     string
		User     string
		Password string
		DBName   string
		SSLMode  string
		Path     string
	}
	Redis struct {
		Enabled  bool
		Host     string
		Port     string
		Password string
		DB       int
		PoolSize int
		CacheTTL time.Duration
	}
	Auth struct {
		JWTSecret     string
		AdminUser     string
		AdminPassHash string
		AccessTTL     time.Duration
		RefreshTTL    time.Duration
	}
	RateLimit struct {
		Mode              string
		RequestsPerSecond int
		Burst             int
	}
	Workers struct {
		ReportEnabled  bool
		ReportInterval time.Duration
	}
	Reports struct {
		OutputDir string
	}
	MQTT struct {
		Enabled     bool
		Broker      string
		Username    string
		Password    string
		ClientID    string
		TopicPrefix string
	}
}

func Load() *Config {
	cfg := &Config{}

	// App
	cfg.App.Port = getEnv("PORT", "8000")
	cfg.App.Debug = getEnvAsBool("DEBUG", false)
	cfg.App.FrontendURL = getEnv("FRONTEND_URL", "http://localhost:3000")
	cfg.App.MaxUploadMB = int64(getEnvAsInt("MAX_UPLOAD_MB", 10))

	// DB
	cfg.DB.Driver = getEnv("DB_DRIVER", "postgres")
	cfg.DB.Host = getEnv("DB_HOST", "localhost")
	cfg.DB.Port = getEnv("DB_PORT", "5432")
	cfg.DB.User = getEnv("DB_USER", "postgres")
	cfg.DB.Password = getEnv("DB_PASSWORD", "postgres")
	cfg.DB.DBName = getEnv("DB_NAME", "chemequip")
	cfg.DB.SSLMode = getEnv("DB_SSLMODE", "disable")
	cfg.DB.Path = getEnv("DB_PATH", "./data/db.sqlite3")

	// Redis
	cfg.Redis.Enabled = getEnvAsBool("REDIS_ENABLED", true)
	cfg.Redis.Host = getEnv("REDIS_HOST", "localhost")
	cfg.Redis.Port = getEnv("REDIS_PORT", "6379")
	cfg.Redis.Password = getEnv("REDIS_PASSWORD", "")
	cfg.Redis.DB = getEnvAsInt("REDIS_DB", 0)
	cfg.Redis.PoolSize = getEnvAsInt("REDIS_POOL_SIZE", 20)
	cfg.Redis.CacheTTL = getEnvAsDuration("CACHE_TTL", 5*time.Minute)

	// Auth
	cfg.Auth.JWTSecret = getEnv("JWT_SECRET", "")
	cfg.Auth.AdminUser = getEnv("ADMIN_USER", "admin")
	cfg.Auth.AdminPassHash = getEnv("ADMIN_PASS_HASH", "")
	cfg.Auth.AccessTTL = getEnvAsDuration("ACCESS_TTL", 60*time.Minute)
	cfg.Auth.RefreshTTL = getEnvAsDuration("REFRESH_TTL", 24*time.Hour)

	// Rate Limit
	cfg.RateLimit.Mode = getEnv("RATE_LIMIT_MODE", "ip")
	cfg.RateLimit.RequestsPerSecond = getEnvAsInt("RATE_LIMIT_RPS", 10)
	cfg.RateLimit.Burst = getEnvAsInt("RATE_LIMIT_BURST", 20)

	// Workers
	cfg.Workers.ReportEnabled = getEnvAsBool("REPORT_ENABLED", false)
	cfg.Workers.ReportInterval = getEnvAsDuration("REPORT_INTERVAL", time.Hour)
	cfg.Reports.OutputDir = getEnv("REPORT_OUTPUT_DIR", "./data/reports")

	// MQTT
	cfg.MQTT.Enabled = getEnvAsBool("MQTT_ENABLED", false)
	cfg.MQTT.Broker = getEnv("MQTT_BROKER", "localhost:1883")
	cfg.MQTT.Username = getEnv("MQTT_USERNAME", "")
	cfg.MQTT.Password = getEnv("MQTT_PASSWORD", "")
	cfg.MQTT.ClientID = getEnv("MQTT_CLIENT_ID", "chemequip")
	cfg.MQTT.TopicPrefix = getEnv("MQTT_TOPIC_PREFIX", "chemequip")

	return cfg
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvAsInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intValue, err := strconv.Atoi(value); err == nil {
			return intValue
		}
	}
	return defaultValue
}

func getEnvAsBool(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if boolValue, err := strconv.ParseBool(value); err == nil {
			return boolValue
		}
	}
	return defaultValue
}

func getEnvAsDuration(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if dur, err := time.ParseDuration(value); err == nil {
			return dur
		}
	}
	return defaultValue
}
