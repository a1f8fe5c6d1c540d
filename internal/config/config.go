package config

import (
	"fmt"
	"log"
	"os"
	"strings"

	"github.com/joho/godotenv"
)

type Config struct {
	Port              string
	DBUrl             string
	RedisURL          string
	JWTSecret         string
	StorageURL        string
	StorageServiceKey string
	AppEnv            string
	LogLevel          string
}

func LoadConfig() (*Config, error) {
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found")
	}

	jwtSecret, exists := os.LookupEnv("JWT_SECRET")
	if !exists || jwtSecret == "" {
		return nil, fmt.Errorf("JWT_SECRET is required")
	}

	return &Config{
		Port:              getEnv("PORT", "8080"),
		DBUrl:             getEnv("DB_URL", ""),
		RedisURL:          getEnv("REDIS_URL", ""),
		JWTSecret:         jwtSecret,
		StorageURL:        getEnv("STORAGE_URL", ""),
		StorageServiceKey: getEnv("STORAGE_SERVICE_KEY", ""),
		AppEnv:            normalizeEnv(getEnv("APP_ENV", "production")),
		LogLevel:          getEnv("LOG_LEVEL", "info"),
	}, nil
}

func getEnv(key, fallback string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	return fallback
}

func normalizeEnv(value string) string {
	switch strings.ToLower(strings.TrimSpace(value)) {
	case "dev", "develop", "development", "local":
		return "development"
	case "prod", "production":
		return "production"
	case "stage", "staging":
		return "staging"
	case "test", "testing":
		return "test"
	default:
		return strings.ToLower(strings.TrimSpace(value))
	}
}
