// Package config loads process configuration from the environment, the
// same getEnv/getEnvInt-with-defaults idiom cambia-service's
// internal/cache and constants packages use, wired through
// github.com/joho/godotenv for local development.
package config

import (
	"os"
	"strconv"

	_ "github.com/joho/godotenv/autoload"
)

// Config is every environment-derived setting the process needs.
type Config struct {
	Port          string
	DatabaseURL   string
	RedisAddr     string
	RedisDB       int
	MatchMaxPoints int
}

// Load reads Config from the environment, applying the same defaults a
// local `go run` invocation would want.
func Load() Config {
	return Config{
		Port:           getEnv("PORT", "8080"),
		DatabaseURL:    getEnv("DATABASE_URL", ""),
		RedisAddr:      getEnv("REDIS_ADDR", ""),
		RedisDB:        getEnvInt("REDIS_DB", 0),
		MatchMaxPoints: getEnvInt("MATCH_MAX_POINTS", 15),
	}
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func getEnvInt(key string, fallback int) int {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return fallback
	}
	return n
}
