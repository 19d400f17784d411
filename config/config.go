package config

import (
	"os"
	"time"
)

type Config struct {
	DatabaseURL       string
	JWTSecret         string
	JWTRefreshSecret  string
	JWTExpiration     time.Duration
	RefreshExpiration time.Duration
	ServerPort        string
	LogLevel          string
}

func Load() *Config {
	return &Config{
		DatabaseURL:       getEnv("DATABASE_URL", "postgresql://postgres@localhost:5432/timesheet"),
		JWTSecret:         getEnv("JWT_SECRET", "your-super-secret-key-change-in-production"),
		JWTRefreshSecret:  getEnv("JWT_REFRESH_SECRET", "your-refresh-secret-change-in-production"),
		JWTExpiration:     15 * time.Minute,
		RefreshExpiration: 7 * 24 * time.Hour, // 7 days
		ServerPort:        getEnv("SERVER_PORT", "8080"),
		LogLevel:          getEnv("LOG_LEVEL", "info"),
	}
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}
