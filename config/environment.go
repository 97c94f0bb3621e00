package config

import (
	"os"
	"strconv"
	"strings"
	"time"
)

type Config struct {
	Port       string
	DBURL      string
	SQLiteFile string

	JWTSecret string

	RedisAddr     string
	RedisPassword string
	RedisDB       int
	CacheTTL      time.Duration
	CacheTimeout  time.Duration

	GeminiAPIKey  string
	GeminiBaseURL string

	CORSOrigins []string
}

// Load reads configuration from the environment, falling back to development
// defaults. When DBURL is set the service uses Postgres, otherwise a local
// SQLite file.
func Load() *Config {
	return &Config{
		Port:       getEnv("PORT", "8080"),
		DBURL:      getEnv("DB_URL", ""),
		SQLiteFile: getEnv("CHAPERONE_SQLITE_FILE_NAME", "chaperone.db"),

		JWTSecret: getEnv("JWT_SECRET_KEY", ""),

		RedisAddr:     getEnv("REDIS_ADDR", "localhost:6379"),
		RedisPassword: getEnv("REDIS_PASSWORD", ""),
		RedisDB:       getEnvInt("REDIS_DB", 0),
		CacheTTL:      time.Duration(getEnvInt("CACHE_TTL_SECONDS", 600)) * time.Second,
		CacheTimeout:  time.Duration(getEnvInt("CACHE_TIMEOUT_MS", 250)) * time.Millisecond,

		GeminiAPIKey:  getEnv("GEMINI_API_KEY", ""),
		GeminiBaseURL: getEnv("GEMINI_BASE_URL", "https://generativelanguage.googleapis.com"),

		CORSOrigins: strings.Split(getEnv("CORS_ORIGINS", "http://localhost:5173"), ","),
	}
}

func getEnv(key, fallback string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	return fallback
}

func getEnvInt(key string, fallback int) int {
	value, exists := os.LookupEnv(key)
	if !exists {
		return fallback
	}
	n, err := strconv.Atoi(value)
	if err != nil {
		return fallback
	}
	return n
}
