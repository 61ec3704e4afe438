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
	PublicBaseURL string
	LogLevel      string
	DatabaseURL   string

	RedisAddr     string
	RedisPassword string
	RedisTLS      bool

	// MeetingBaseURL is the base for generated video consultation links.
	MeetingBaseURL string

	// QuestionCacheTTL bounds how long per-condition question lists are
	// served from Redis before re-reading the catalog.
	QuestionCacheTTL time.Duration

	// DefaultConsultationFee applies to professionals with no approved
	// fee change request yet, in whole currency units.
	DefaultConsultationFee int
	// PlatformFee is the flat per-booking fee charged on top of the
	// consultation fee, in whole currency units.
	PlatformFee int
	// CommissionRate is the platform's cut of the consultation fee (0..1).
	CommissionRate float64

	AdminJWTSecret     string
	CORSAllowedOrigins []string

	// SendGrid email configuration
	SendGridAPIKey    string
	SendGridFromEmail string
	SendGridFromName  string
}

// Load reads configuration from environment variables
func Load() *Config {
	return &Config{
		Port:                   getEnv("PORT", "8080"),
		Env:                    getEnv("ENV", "development"),
		PublicBaseURL:          getEnv("PUBLIC_BASE_URL", ""),
		LogLevel:               getEnv("LOG_LEVEL", "info"),
		DatabaseURL:            getEnv("DATABASE_URL", ""),
		RedisAddr:              getEnv("REDIS_ADDR", "redis:6379"),
		RedisPassword:          getEnv("REDIS_PASSWORD", ""),
		RedisTLS:               getEnvAsBool("REDIS_TLS", false),
		MeetingBaseURL:         getEnv("MEETING_BASE_URL", "https://meet.healthconsult.com"),
		QuestionCacheTTL:       getEnvAsDuration("QUESTION_CACHE_TTL", 10*time.Minute),
		DefaultConsultationFee: getEnvAsInt("DEFAULT_CONSULTATION_FEE", 500),
		PlatformFee:            getEnvAsInt("PLATFORM_FEE", 50),
		CommissionRate:         getEnvAsFloat("PLATFORM_COMMISSION_RATE", 0.15),
		AdminJWTSecret:         getEnv("ADMIN_JWT_SECRET", ""),
		CORSAllowedOrigins:     getEnvAsSlice("CORS_ALLOWED_ORIGINS"),
		SendGridAPIKey:         getEnv("SENDGRID_API_KEY", ""),
		SendGridFromEmail:      getEnv("SENDGRID_FROM_EMAIL", ""),
		SendGridFromName:       getEnv("SENDGRID_FROM_NAME", "HealthConsult"),
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

// getEnvAsBool retrieves an environment variable as a boolean or returns a default value
func getEnvAsBool(key string, defaultValue bool) bool {
	valueStr := getEnv(key, "")
	if value, err := strconv.ParseBool(valueStr); err == nil {
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

func getEnvAsSlice(key string) []string {
	raw := getEnv(key, "")
	if raw == "" {
		return nil
	}
	parts := strings.Split(raw, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}
