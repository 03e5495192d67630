package api

import (
	"os"
	"strconv"
	"strings"
	"time"
)

// Config holds the transport settings, read from the environment.
type Config struct {
	Port               string
	AllowedOrigins     []string
	SendBufferSize     int
	PingInterval       time.Duration
	MaxFrameBytes      int64
	RateLimitPerSecond float64
	RateLimitBurst     int
}

// LoadConfig reads Config from the environment, falling back to defaults.
func LoadConfig() Config {
	return Config{
		Port:               getEnv("PORT", "3000"),
		AllowedOrigins:     splitCSV(getEnv("CORS_ALLOWED_ORIGINS", "*")),
		SendBufferSize:     getEnvInt("SEND_BUFFER_SIZE", 256),
		PingInterval:       getEnvDuration("PING_INTERVAL", 20*time.Second),
		MaxFrameBytes:      int64(getEnvInt("MAX_FRAME_BYTES", 32<<20)),
		RateLimitPerSecond: getEnvFloat("RATE_LIMIT_PER_SECOND", 100),
		RateLimitBurst:     getEnvInt("RATE_LIMIT_BURST", 200),
	}
}

// getEnv returns the env var or a default
func getEnv(k, def string) string {
	if v := os.Getenv(k); v != "" {
		return v
	}
	return def
}

// getEnvInt parses a positive int env var with a fallback
func getEnvInt(k string, def int) int {
	if v := os.Getenv(k); v != "" {
		if i, err := strconv.Atoi(v); err == nil && i > 0 {
			return i
		}
	}
	return def
}

func getEnvFloat(k string, def float64) float64 {
	if v := os.Getenv(k); v != "" {
		if f, err := strconv.ParseFloat(v, 64); err == nil && f > 0 {
			return f
		}
	}
	return def
}

func getEnvDuration(k string, def time.Duration) time.Duration {
	if v := os.Getenv(k); v != "" {
		if d, err := time.ParseDuration(v); err == nil && d > 0 {
			return d
		}
	}
	return def
}

// splitCSV trims and filters a comma-separated list
func splitCSV(v string) []string {
	var out []string
	for _, s := range strings.Split(v, ",") {
		s = strings.TrimSpace(s)
		if s != "" {
			out = append(out, s)
		}
	}
	return out
}
