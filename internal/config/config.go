package config

import (
	"fmt"
	"log/slog"
	"os"
	"strconv"
	"strings"
	"time"
)

type Config struct {
	HTTPAddr            string
	LogLevel            slog.Level
	DefaultPreset       string
	MaxWheels           int
	WheelIdleTTL        time.Duration
	CORSAllowedOrigins  []string
	WebhookURL          string
	WebhookFallbackURLs []string
	WebhookToken        string
	WebhookTimeout      time.Duration
}

func Load() (Config, error) {
	c := Config{
		HTTPAddr:            envOr("HTTP_ADDR", ":8080"),
		DefaultPreset:       envOr("DEFAULT_PRESET", "teams"),
		MaxWheels:           1000,
		WheelIdleTTL:        time.Hour,
		CORSAllowedOrigins:  parseList(envOr("CORS_ALLOWED_ORIGINS", "*")),
		WebhookURL:          os.Getenv("WEBHOOK_URL"),
		WebhookFallbackURLs: parseList(os.Getenv("WEBHOOK_FALLBACK_URLS")),
		WebhookToken:        os.Getenv("WEBHOOK_TOKEN"),
		WebhookTimeout:      5 * time.Second,
	}

	if v := os.Getenv("MAX_WHEELS"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 1 {
			return Config{}, fmt.Errorf("invalid MAX_WHEELS %q: must be a positive integer", v)
		}
		c.MaxWheels = n
	}

	// WHEEL_IDLE_TTL=0 keeps wheels until they are deleted.
	if v := os.Getenv("WHEEL_IDLE_TTL"); v != "" {
		d, err := time.ParseDuration(v)
		if err != nil || d < 0 {
			return Config{}, fmt.Errorf("invalid WHEEL_IDLE_TTL %q: must be a non-negative duration", v)
		}
		c.WheelIdleTTL = d
	}

	if v := os.Getenv("WEBHOOK_TIMEOUT"); v != "" {
		d, err := time.ParseDuration(v)
		if err != nil {
			return Config{}, fmt.Errorf("invalid WEBHOOK_TIMEOUT %q: %w", v, err)
		}
		c.WebhookTimeout = d
	}

	level, err := parseLogLevel(envOr("LOG_LEVEL", "info"))
	if err != nil {
		return Config{}, err
	}
	c.LogLevel = level

	if c.WebhookURL == "" && len(c.WebhookFallbackURLs) > 0 {
		return Config{}, fmt.Errorf("WEBHOOK_URL is required when WEBHOOK_FALLBACK_URLS is set")
	}

	return c, nil
}

// WebhookEnabled reports whether revealed outcomes should be posted out.
func (c Config) WebhookEnabled() bool {
	return c.WebhookURL != ""
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func parseList(s string) []string {
	if s == "" {
		return nil
	}
	var items []string
	for _, item := range strings.Split(s, ",") {
		item = strings.TrimSpace(item)
		if item != "" {
			items = append(items, item)
		}
	}
	return items
}

func parseLogLevel(s string) (slog.Level, error) {
	switch strings.ToLower(s) {
	case "debug":
		return slog.LevelDebug, nil
	case "info":
		return slog.LevelInfo, nil
	case "warn":
		return slog.LevelWarn, nil
	case "error":
		return slog.LevelError, nil
	default:
		return 0, fmt.Errorf("invalid LOG_LEVEL %q", s)
	}
}
