package config

import (
	"os"
	"strconv"
	"time"
)

// Application settings
type Config struct {
	Server   ServerConfig
	Logging  LoggingConfig
	Sync     SyncConfig
	Upstream UpstreamConfig
}

// Server settings
type ServerConfig struct {
	Port           string
	RequestTimeout time.Duration
}

// Sync pipeline knobs. The wall-clock poll budget is
// MaxPollIterations * PollInterval; Deadline caps the whole run.
type SyncConfig struct {
	PollInterval       time.Duration
	MaxPollIterations  int
	SubmitDelay        time.Duration
	RequestTimeout     time.Duration
	Deadline           time.Duration
	DefaultDaysBack    int
	RateLimitPerSecond int
}

// Upstream endpoints
type UpstreamConfig struct {
	TokenURL   string
	APIBaseURL string
}

// Logging settings
type LoggingConfig struct {
	Level string
}

func Load() (*Config, error) {
	config := &Config{
		Server: ServerConfig{
			Port:           getEnv("PORT", "8080"),
			RequestTimeout: getDurationEnv("SERVER_REQUEST_TIMEOUT", "150s"),
		},
		Sync: SyncConfig{
			PollInterval:       getDurationEnv("POLL_INTERVAL", "2s"),
			MaxPollIterations:  getIntEnv("MAX_POLL_ITERATIONS", 40),
			SubmitDelay:        getDurationEnv("SUBMIT_DELAY", "300ms"),
			RequestTimeout:     getDurationEnv("REQUEST_TIMEOUT", "30s"),
			Deadline:           getDurationEnv("SYNC_DEADLINE", "120s"),
			DefaultDaysBack:    getIntEnv("DEFAULT_DAYS_BACK", 30),
			RateLimitPerSecond: getIntEnv("RATE_LIMIT_PER_SECOND", 10),
		},
		Upstream: UpstreamConfig{
			TokenURL:   getEnv("TOKEN_URL", "https://api.amazon.com/auth/o2/token"),
			APIBaseURL: getEnv("ADS_API_BASE_URL", "https://advertising-api.amazon.com"),
		},
		Logging: LoggingConfig{
			Level: getEnv("LOG_LEVEL", "info"),
		},
	}

	return config, nil
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getIntEnv(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intValue, err := strconv.Atoi(value); err == nil {
			return intValue
		}
	}
	return defaultValue
}

func getDurationEnv(key string, defaultValue string) time.Duration {
	if value := os.Getenv(key); value != "" {
		if duration, err := time.ParseDuration(value); err == nil {
			return duration
		}
	}
	duration, _ := time.ParseDuration(defaultValue)
	return duration
}
