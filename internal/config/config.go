package config

import (
	"fmt"
	"log/slog"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

const (
	BackendHomeAssistant = "homeassistant"
	BackendMQTT          = "mqtt"
)

type Config struct {
	// Server
	HTTPPort string

	// Home Assistant
	HAURL   string
	HAToken string

	// Invoker backend: "homeassistant" calls image.press through the REST
	// API, "mqtt" sends the print command straight to the printer.
	InvokerBackend string

	// Printer (mqtt backend)
	CacheDir          string
	PrinterSerial     string
	PrinterMQTTURL    string
	PrinterAccessCode string

	// Event fan-out, both optional
	RedisURL      string
	MQTTBrokerURL string
	MQTTPrefix    string

	WatchInterval time.Duration

	// Logging
	LogLevel  slog.Level
	LogFormat string // "json" or "text"

	// Tracing
	OTLPEndpoint string
	ServiceName  string

	// Features
	EnableMetrics bool
	EnableTracing bool
}

// Load reads the environment, after merging a .env file if one exists.
func Load() (*Config, error) {
	_ = godotenv.Load()

	cfg := &Config{
		HTTPPort:          getEnv("HTTP_PORT", "8080"),
		HAURL:             getEnv("HA_URL", "http://homeassistant.local:8123"),
		HAToken:           getEnv("HA_TOKEN", ""),
		InvokerBackend:    getEnv("INVOKER_BACKEND", BackendHomeAssistant),
		CacheDir:          getEnv("CACHE_DIR", ""),
		PrinterSerial:     getEnv("PRINTER_SERIAL", ""),
		PrinterMQTTURL:    getEnv("PRINTER_MQTT_URL", ""),
		PrinterAccessCode: getEnv("PRINTER_ACCESS_CODE", ""),
		RedisURL:          getEnv("REDIS_URL", ""),
		MQTTBrokerURL:     getEnv("MQTT_BROKER_URL", ""),
		MQTTPrefix:        getEnv("MQTT_PREFIX", "bambu/printjobs"),
		LogFormat:         getEnv("LOG_FORMAT", "text"),
		OTLPEndpoint:      getEnv("OTLP_ENDPOINT", ""),
		ServiceName:       getEnv("SERVICE_NAME", "bambu-printjobs"),
		EnableMetrics:     getEnvBool("ENABLE_METRICS", true),
		EnableTracing:     getEnvBool("ENABLE_TRACING", false),
	}

	interval, err := getEnvDuration("WATCH_INTERVAL", 10*time.Second)
	if err != nil {
		return nil, err
	}
	cfg.WatchInterval = interval

	switch getEnv("LOG_LEVEL", "info") {
	case "debug":
		cfg.LogLevel = slog.LevelDebug
	case "info":
		cfg.LogLevel = slog.LevelInfo
	case "warn":
		cfg.LogLevel = slog.LevelWarn
	case "error":
		cfg.LogLevel = slog.LevelError
	default:
		cfg.LogLevel = slog.LevelInfo
	}

	return cfg, nil
}

func (c *Config) Validate() error {
	if c.HAURL == "" {
		return fmt.Errorf("HA_URL is required")
	}
	if c.HAToken == "" {
		return fmt.Errorf("HA_TOKEN is required")
	}

	switch c.InvokerBackend {
	case BackendHomeAssistant:
	case BackendMQTT:
		if c.CacheDir == "" || c.PrinterSerial == "" || c.PrinterMQTTURL == "" || c.PrinterAccessCode == "" {
			return fmt.Errorf("mqtt backend requires CACHE_DIR, PRINTER_SERIAL, PRINTER_MQTT_URL and PRINTER_ACCESS_CODE")
		}
	default:
		return fmt.Errorf("invalid invoker backend: %s (valid: %s, %s)", c.InvokerBackend, BackendHomeAssistant, BackendMQTT)
	}

	if c.WatchInterval <= 0 {
		return fmt.Errorf("watch interval must be positive")
	}

	if c.LogFormat != "json" && c.LogFormat != "text" {
		return fmt.Errorf("invalid log format: %s (valid: json, text)", c.LogFormat)
	}

	return nil
}

func getEnv(key, fallback string) string {
	if value, ok := os.LookupEnv(key); ok {
		return value
	}
	return fallback
}

func getEnvBool(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		parsed, err := strconv.ParseBool(value)
		if err != nil {
			return defaultValue
		}
		return parsed
	}
	return defaultValue
}

func getEnvDuration(key string, defaultValue time.Duration) (time.Duration, error) {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue, nil
	}
	d, err := time.ParseDuration(value)
	if err != nil {
		return 0, fmt.Errorf("invalid %s: %w", key, err)
	}
	return d, nil
}
