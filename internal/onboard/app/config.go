package app

import (
	"os"
	"strconv"
	"strings"
	"time"
)

type Config struct {
	AuthSecret string // Required: HMAC secret for bearer token verification
	Issuer     string // Optional: issuer claim expected on bearer tokens (default: onboard)

	DatabaseFile string // Optional: path to SQLite database file (default: ./onboard.db)

	KafkaBrokers  []string      // Optional: broker addresses (default: localhost:9092)
	KafkaTopic    string        // Optional: invitations topic (default: tenant-invitations)
	KafkaGroupID  string        // Optional: consumer group id (default: onboard-workers)
	MaxDeliveries int           // Optional: delivery attempts before dead-lettering (default: 5)
	DedupTTL      time.Duration // Optional: duplicate suppression window (default: 10m)

	RetryInterval    time.Duration // Optional: retry sweep interval (default: 15s)
	RetryBackoffUnit time.Duration // Optional: unit of the backoff table (default: 1s)

	GraphBaseURL      string   // Optional: directory API base URL (default: https://graph.microsoft.com/v1.0)
	GraphTokenURL     string   // Required for real deliveries: OAuth2 token endpoint
	GraphClientID     string   // Required for real deliveries
	GraphClientSecret string   // Required for real deliveries
	GraphScopes       []string // Optional: token scopes (default: https://graph.microsoft.com/.default)

	Env                 string        // Environment (dev, staging, prod) (default: dev)
	LogLevel            string        // Log level (debug, info, warn, error) (default: info)
	LogFormat           string        // Log format (json, text) (default: json)
	Port                int           // HTTP server port (default: 8080)
	ShutdownGracePeriod time.Duration // Graceful shutdown timeout (default: 10s)
}

func LoadConfig() Config {
	return Config{
		AuthSecret: os.Getenv("ONBOARD_AUTH_SECRET"),
		Issuer:     getEnvOrDefault("ONBOARD_ISSUER", "onboard"),

		DatabaseFile: getEnvOrDefault("ONBOARD_DATABASE_FILE", "onboard.db"),

		KafkaBrokers:  splitList(getEnvOrDefault("ONBOARD_KAFKA_BROKERS", "localhost:9092")),
		KafkaTopic:    getEnvOrDefault("ONBOARD_KAFKA_TOPIC", "tenant-invitations"),
		KafkaGroupID:  getEnvOrDefault("ONBOARD_KAFKA_GROUP", "onboard-workers"),
		MaxDeliveries: getEnvIntOrDefault("ONBOARD_MAX_DELIVERIES", 5),
		DedupTTL:      getEnvDurationOrDefault("ONBOARD_DEDUP_TTL", 10*time.Minute),

		RetryInterval:    getEnvDurationOrDefault("ONBOARD_RETRY_INTERVAL", 15*time.Second),
		RetryBackoffUnit: getEnvDurationOrDefault("ONBOARD_RETRY_BACKOFF_UNIT", time.Second),

		GraphBaseURL:      getEnvOrDefault("ONBOARD_GRAPH_BASE_URL", "https://graph.microsoft.com/v1.0"),
		GraphTokenURL:     os.Getenv("ONBOARD_GRAPH_TOKEN_URL"),
		GraphClientID:     os.Getenv("ONBOARD_GRAPH_CLIENT_ID"),
		GraphClientSecret: os.Getenv("ONBOARD_GRAPH_CLIENT_SECRET"),
		GraphScopes: splitList(getEnvOrDefault(
			"ONBOARD_GRAPH_SCOPES",
			"https://graph.microsoft.com/.default",
		)),

		Env:                 getEnvOrDefault("ENV", "dev"),
		LogLevel:            getEnvOrDefault("LOG_LEVEL", "info"),
		LogFormat:           getEnvOrDefault("LOG_FORMAT", "json"),
		Port:                getEnvIntOrDefault("PORT", 8080),
		ShutdownGracePeriod: getEnvDurationOrDefault("SHUTDOWN_GRACE_PERIOD", 10*time.Second),
	}
}

func splitList(value string) []string {
	parts := strings.Split(value, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}

func getEnvOrDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvIntOrDefault(key string, defaultValue int) int {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}

	if intValue, err := strconv.Atoi(value); err == nil {
		return intValue
	}

	return defaultValue
}

func getEnvDurationOrDefault(key string, defaultValue time.Duration) time.Duration {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}

	if duration, err := time.ParseDuration(value); err == nil {
		return duration
	}

	// Bare integers are taken as seconds
	if secs, err := strconv.Atoi(value); err == nil {
		return time.Duration(secs) * time.Second
	}

	return defaultValue
}
