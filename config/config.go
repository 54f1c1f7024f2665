package config

import (
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

// Config holds the runtime settings for the service
type Config struct {
	Port           string
	RedisAddr      string
	HTTPTimeout    time.Duration
	DividendURL    string
	IpoURL         string
	HistoryBaseURL string
}

// Load reads configuration from the environment, with an optional .env file
func Load() *Config {
	_ = godotenv.Load()

	return &Config{
		Port:           getEnv("PORT", "8000"),
		RedisAddr:      getEnv("REDIS_ADDR", "localhost:6379"),
		HTTPTimeout:    getDuration("HTTP_TIMEOUT", 10*time.Second),
		DividendURL:    getEnv("DIVIDEND_URL", "https://klse.i3investor.com/web/entitlement/dividend/latest"),
		IpoURL:         getEnv("IPO_URL", "https://www.bursamalaysia.com/listing/listing_resources/ipo/ipo_summary"),
		HistoryBaseURL: getEnv("HISTORY_BASE_URL", "https://query1.finance.yahoo.com"),
	}
}

func getEnv(key, fallback string) string {
	if value, ok := os.LookupEnv(key); ok {
		return value
	}
	return fallback
}

func getDuration(key string, fallback time.Duration) time.Duration {
	value, ok := os.LookupEnv(key)
	if !ok {
		return fallback
	}
	if d, err := time.ParseDuration(value); err == nil {
		return d
	}
	if secs, err := strconv.Atoi(value); err == nil {
		return time.Duration(secs) * time.Second
	}
	return fallback
}
