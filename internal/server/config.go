package server

import (
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"

	"github.com/htdinh/tictac/internal/store"
)

// Config holds server configuration
type Config struct {
	Addr      string
	DBPath    string
	JWTSecret string
	TokenTTL  time.Duration
}

// LoadConfig reads configuration from the environment. A .env file in
// the working directory is loaded first if present.
func LoadConfig() Config {
	_ = godotenv.Load()

	return Config{
		Addr:      getEnv("TICTAC_ADDR", ":8080"),
		DBPath:    getEnv("TICTAC_DB_PATH", store.DefaultPath()),
		JWTSecret: getEnv("TICTAC_JWT_SECRET", "change-this-secret"),
		TokenTTL:  time.Duration(getEnvInt("TICTAC_TOKEN_TTL", 72)) * time.Hour,
	}
}

func getEnv(key, fallback string) string {
	if value, ok := os.LookupEnv(key); ok && value != "" {
		return value
	}
	return fallback
}

func getEnvInt(key string, fallback int) int {
	value := os.Getenv(key)
	if value == "" {
		return fallback
	}

	parsed, err := strconv.Atoi(value)
	if err != nil {
		return fallback
	}
	return parsed
}
