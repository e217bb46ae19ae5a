package config

import (
	"os"
	"strconv"
)

type Config struct {
	ServerPort   string
	DBHost       string
	DBPort       string
	DBUser       string
	DBPassword   string
	DBName       string
	DBMaxConns   int
	RedisURL     string
	JWTSecret    string
	JWTTTLHours  int
	PollInterval int // seconds
}

func Load() *Config {
	return &Config{
		ServerPort:   getEnv("SERVER_PORT", "8080"),
		DBHost:       getEnv("DB_HOST", "localhost"),
		DBPort:       getEnv("DB_PORT", "5432"),
		DBUser:       getEnv("DB_USER", "tether"),
		DBPassword:   getEnv("DB_PASSWORD", "tether_dev_password"),
		DBName:       getEnv("DB_NAME", "tether"),
		DBMaxConns:   getEnvInt("DB_MAX_CONNS", 10),
		RedisURL:     getEnv("REDIS_URL", "localhost:6379"),
		JWTSecret:    getEnv("JWT_SECRET", "dev-secret-change-me"),
		JWTTTLHours:  getEnvInt("JWT_TTL_HOURS", 24),
		PollInterval: getEnvInt("POLL_INTERVAL_SECONDS", 5),
	}
}

func getEnv(key, fallback string) string {
	val, exists := os.LookupEnv(key)

	if exists {
		return val
	}

	return fallback
}

func getEnvInt(key string, fallback int) int {
	val, exists := os.LookupEnv(key)
	if !exists {
		return fallback
	}
	n, err := strconv.Atoi(val)
	if err != nil {
		return fallback
	}
	return n
}
