package config

import (
	"os"
	"strconv"
	"time"
)

// Config is passed by value to each component at construction; nothing
// reads the environment after startup.
type Config struct {
	DBPath      string
	ServerPort  string
	CORSOrigins string

	// Scheduler
	CheckInterval     time.Duration // cadence between full sampling sweeps
	WorkerConcurrency int           // simultaneous extraction jobs
	JobTimeout        time.Duration // hard wall-clock limit per sample job

	// Dispatcher
	OutboxInterval time.Duration // re-scan cadence for un-notified triggered alerts

	// Extraction
	FetchRatePerSec float64 // outbound request rate cap across all extractors

	// Telegram
	TelegramToken  string
	TelegramChatID string
}

func Load() Config {
	return Config{
		DBPath:            getEnv("DB_PATH", "./price_sniper.db"),
		ServerPort:        getEnv("PORT", "8080"),
		CORSOrigins:       getEnv("CORS_ALLOWED_ORIGINS", ""),
		CheckInterval:     getEnvAsDuration("CHECK_INTERVAL", 15*time.Minute),
		WorkerConcurrency: getEnvAsInt("WORKER_CONCURRENCY", 2),
		JobTimeout:        getEnvAsDuration("JOB_TIMEOUT", 90*time.Second),
		OutboxInterval:    getEnvAsDuration("OUTBOX_INTERVAL", 5*time.Minute),
		FetchRatePerSec:   getEnvAsFloat("FETCH_RATE_PER_SEC", 1),
		TelegramToken:     getEnv("TELEGRAM_BOT_TOKEN", ""),
		TelegramChatID:    getEnv("TELEGRAM_CHAT_ID", ""),
	}
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

func getEnvAsFloat(key string, defaultValue float64) float64 {
	if value := os.Getenv(key); value != "" {
		if floatValue, err := strconv.ParseFloat(value, 64); err == nil {
			return floatValue
		}
	}
	return defaultValue
}

func getEnvAsDuration(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if duration, err := time.ParseDuration(value); err == nil {
			return duration
		}
	}
	return defaultValue
}
