package config

import (
	"log/slog"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	ServiceName        string
	HTTPAddr           string
	MetricsAddr        string
	LogLevel           string
	PostgresDSN        string
	RedisAddr          string
	KafkaBrokers       []string
	NotificationsTopic string
	ConsumerGroup      string
	OTLPEndpoint       string
	PageSize           int
	CacheTTL           time.Duration
	CurrencyCode       string
}

// Load reads .env (if present) and the environment. Empty POSTGRES_DSN,
// REDIS_ADDR and KAFKA_BROKER select the in-process implementations.
func Load() *Config {
	if err := godotenv.Load(); err != nil {
		slog.Warn("failed to load .env file, using environment and defaults", "error", err)
	}

	cfg := &Config{
		ServiceName:        getEnv("SERVICE_NAME", "finboard"),
		HTTPAddr:           getEnv("HTTP_ADDR", ":8080"),
		MetricsAddr:        getEnv("METRICS_ADDR", ":9090"),
		LogLevel:           getEnv("LOG_LEVEL", "info"),
		PostgresDSN:        os.Getenv("POSTGRES_DSN"),
		RedisAddr:          os.Getenv("REDIS_ADDR"),
		KafkaBrokers:       splitList(os.Getenv("KAFKA_BROKER")),
		NotificationsTopic: getEnv("NOTIFICATIONS_TOPIC", "dashboard-notifications"),
		ConsumerGroup:      getEnv("KAFKA_GROUP_ID", "finboard-notifications"),
		OTLPEndpoint:       os.Getenv("OTLP_ENDPOINT"),
		PageSize:           5,
		CacheTTL:           5 * time.Minute,
		CurrencyCode:       getEnv("CURRENCY_CODE", "USD"),
	}

	if v := os.Getenv("PAGE_SIZE"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n <= 0 {
			slog.Warn("invalid PAGE_SIZE, using default", "value", v, "default", cfg.PageSize)
		} else {
			cfg.PageSize = n
		}
	}
	if v := os.Getenv("CACHE_TTL"); v != "" {
		d, err := time.ParseDuration(v)
		if err != nil {
			slog.Warn("invalid CACHE_TTL, using default", "value", v, "default", cfg.CacheTTL, "error", err)
		} else {
			cfg.CacheTTL = d
		}
	}

	slog.Info("config loaded",
		"http_addr", cfg.HTTPAddr,
		"postgres", cfg.PostgresDSN != "",
		"redis_addr", cfg.RedisAddr,
		"kafka_brokers", cfg.KafkaBrokers,
		"page_size", cfg.PageSize)
	return cfg
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func splitList(v string) []string {
	var out []string
	for _, part := range strings.Split(v, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
