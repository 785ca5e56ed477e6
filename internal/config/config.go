package config

import (
	"os"
	"strconv"
	"strings"
	"time"
)

// Config holds application configuration
type Config struct {
	Port          string
	Env           string
	LogLevel      string
	PublicBaseURL string
	BusinessName  string

	// Twilio voice
	TwilioAuthToken string
	TwilioVoice     string
	TwilioLanguage  string

	// Distance from the yard
	YardPostal        string
	GoogleMapsAPIKey  string
	DistanceBaseURL   string
	DistanceTimeout   time.Duration
	DistanceCacheSize int

	// Call sessions
	SessionBackend      string
	SessionIdleTTL      time.Duration
	SessionMaxEntries   int
	RedisAddr           string
	RedisPassword       string
	RedisTLS            bool
	MaxRetries          int
	PostalFallbackAfter int

	// Lead sinks
	GoogleServiceAccount string
	GoogleSheetID        string
	GoogleSheetRange     string
	DatabaseURL          string
	LeadsQueueURL        string
	SinkTimeout          time.Duration
	AWSRegion            string
	AWSAccessKeyID       string
	AWSSecretAccessKey   string
	AWSEndpointOverride  string

	// Manager callback emails
	ManagerEmail      string
	EmailProvider     string
	SendGridAPIKey    string
	SendGridFromEmail string
	SendGridFromName  string
	SESFromEmail      string

	// Admin API and webhook protection
	AdminJWTSecret string
	AdminJWTIssuer string
	RateLimitRPS   float64
	RateLimitBurst int
}

// Load reads configuration from environment variables
func Load() *Config {
	return &Config{
		Port:          getEnv("PORT", "8080"),
		Env:           getEnv("ENV", "development"),
		LogLevel:      getEnv("LOG_LEVEL", "info"),
		PublicBaseURL: getEnv("PUBLIC_BASE_URL", ""),
		BusinessName:  getEnv("BUSINESS_NAME", "Cash Car B C"),

		TwilioAuthToken: getEnv("TWILIO_AUTH_TOKEN", ""),
		TwilioVoice:     getEnv("TWILIO_VOICE", "Polly-Matthew-Neural"),
		TwilioLanguage:  getEnv("TWILIO_LANGUAGE", "en-CA"),

		YardPostal:        getEnv("YARD_POSTAL", "V6V 1M7"),
		GoogleMapsAPIKey:  getEnv("GOOGLE_MAPS_API_KEY", ""),
		DistanceBaseURL:   getEnv("DISTANCE_BASE_URL", ""),
		DistanceTimeout:   getEnvAsDuration("DISTANCE_TIMEOUT", 5*time.Second),
		DistanceCacheSize: getEnvAsInt("DISTANCE_CACHE_SIZE", 512),

		SessionBackend:      strings.ToLower(strings.TrimSpace(getEnv("SESSION_BACKEND", "memory"))),
		SessionIdleTTL:      getEnvAsDuration("SESSION_IDLE_TTL", 30*time.Minute),
		SessionMaxEntries:   getEnvAsInt("SESSION_MAX_ENTRIES", 10000),
		RedisAddr:           getEnv("REDIS_ADDR", "redis:6379"),
		RedisPassword:       getEnv("REDIS_PASSWORD", ""),
		RedisTLS:            getEnvAsBool("REDIS_TLS", false),
		MaxRetries:          getEnvAsInt("MAX_RETRIES", 0),
		PostalFallbackAfter: getEnvAsInt("POSTAL_FALLBACK_AFTER", 0),

		GoogleServiceAccount: getEnv("GOOGLE_SERVICE_ACCOUNT", ""),
		GoogleSheetID:        getEnv("GOOGLE_SHEET_ID", ""),
		GoogleSheetRange:     getEnv("GOOGLE_SHEET_RANGE", "Sheet1!A:X"),
		DatabaseURL:          getEnv("DATABASE_URL", ""),
		LeadsQueueURL:        getEnv("LEADS_QUEUE_URL", ""),
		SinkTimeout:          getEnvAsDuration("SINK_TIMEOUT", 10*time.Second),
		AWSRegion:            getEnv("AWS_REGION", "ca-central-1"),
		AWSAccessKeyID:       getEnv("AWS_ACCESS_KEY_ID", ""),
		AWSSecretAccessKey:   getEnv("AWS_SECRET_ACCESS_KEY", ""),
		AWSEndpointOverride:  getEnv("AWS_ENDPOINT_OVERRIDE", ""),

		ManagerEmail:      getEnv("MANAGER_EMAIL", ""),
		EmailProvider:     strings.ToLower(strings.TrimSpace(getEnv("EMAIL_PROVIDER", "stub"))),
		SendGridAPIKey:    getEnv("SENDGRID_API_KEY", ""),
		SendGridFromEmail: getEnv("SENDGRID_FROM_EMAIL", ""),
		SendGridFromName:  getEnv("SENDGRID_FROM_NAME", "Cash Car B C"),
		SESFromEmail:      getEnv("SES_FROM_EMAIL", ""),

		AdminJWTSecret: getEnv("ADMIN_JWT_SECRET", ""),
		AdminJWTIssuer: getEnv("ADMIN_JWT_ISSUER", ""),
		RateLimitRPS:   getEnvAsFloat("RATE_LIMIT_RPS", 5),
		RateLimitBurst: getEnvAsInt("RATE_LIMIT_BURST", 20),
	}
}

// getEnv retrieves an environment variable or returns a default value
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

// getEnvAsInt retrieves an environment variable as an integer or returns a default value
func getEnvAsInt(key string, defaultValue int) int {
	valueStr := getEnv(key, "")
	if value, err := strconv.Atoi(valueStr); err == nil {
		return value
	}
	return defaultValue
}

func getEnvAsFloat(key string, defaultValue float64) float64 {
	valueStr := getEnv(key, "")
	if value, err := strconv.ParseFloat(valueStr, 64); err == nil {
		return value
	}
	return defaultValue
}

// getEnvAsBool retrieves an environment variable as a boolean or returns a default value
func getEnvAsBool(key string, defaultValue bool) bool {
	valueStr := getEnv(key, "")
	if value, err := strconv.ParseBool(valueStr); err == nil {
		return value
	}
	return defaultValue
}

func getEnvAsDuration(key string, defaultValue time.Duration) time.Duration {
	valueStr := getEnv(key, "")
	if valueStr == "" {
		return defaultValue
	}
	if value, err := time.ParseDuration(valueStr); err == nil {
		return value
	}
	return defaultValue
}
