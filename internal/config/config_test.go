package config

import (
	"testing"
	"time"
)

func TestLoadDefaults(t *testing.T) {
	t.Setenv("PORT", "")
	t.Setenv("ENV", "")
	t.Setenv("LOG_LEVEL", "")
	t.Setenv("MEETING_BASE_URL", "")
	cfg := Load()
	if cfg.Port != "8080" {
		t.Fatalf("expected default port, got %s", cfg.Port)
	}
	if cfg.Env != "development" {
		t.Fatalf("expected default env, got %s", cfg.Env)
	}
	if cfg.MeetingBaseURL != "https://meet.healthconsult.com" {
		t.Fatalf("expected default meeting base url, got %s", cfg.MeetingBaseURL)
	}
	if cfg.QuestionCacheTTL != 10*time.Minute {
		t.Fatalf("expected default question cache ttl, got %s", cfg.QuestionCacheTTL)
	}
	if cfg.DefaultConsultationFee != 500 {
		t.Fatalf("expected default consultation fee 500, got %d", cfg.DefaultConsultationFee)
	}
	if cfg.CommissionRate != 0.15 {
		t.Fatalf("expected default commission rate 0.15, got %v", cfg.CommissionRate)
	}
	if cfg.CORSAllowedOrigins != nil {
		t.Fatalf("expected no CORS origins by default, got %v", cfg.CORSAllowedOrigins)
	}
}

func TestLoadOverrides(t *testing.T) {
	t.Setenv("PORT", "9090")
	t.Setenv("ENV", "production")
	t.Setenv("LOG_LEVEL", "debug")
	t.Setenv("DATABASE_URL", "postgres://user@host/db")
	t.Setenv("MEETING_BASE_URL", "https://video.example.com")
	t.Setenv("QUESTION_CACHE_TTL", "45m")
	t.Setenv("PLATFORM_FEE", "75")
	t.Setenv("PLATFORM_COMMISSION_RATE", "0.25")
	t.Setenv("CORS_ALLOWED_ORIGINS", "https://app.example.com, https://admin.example.com")

	cfg := Load()
	if cfg.Port != "9090" {
		t.Fatalf("expected port override, got %s", cfg.Port)
	}
	if cfg.DatabaseURL != "postgres://user@host/db" {
		t.Fatalf("expected database url override, got %s", cfg.DatabaseURL)
	}
	if cfg.MeetingBaseURL != "https://video.example.com" {
		t.Fatalf("expected meeting base url override, got %s", cfg.MeetingBaseURL)
	}
	if cfg.QuestionCacheTTL != 45*time.Minute {
		t.Fatalf("expected question cache ttl override, got %s", cfg.QuestionCacheTTL)
	}
	if cfg.PlatformFee != 75 {
		t.Fatalf("expected platform fee override, got %d", cfg.PlatformFee)
	}
	if cfg.CommissionRate != 0.25 {
		t.Fatalf("expected commission rate override, got %v", cfg.CommissionRate)
	}
	if len(cfg.CORSAllowedOrigins) != 2 || cfg.CORSAllowedOrigins[1] != "https://admin.example.com" {
		t.Fatalf("expected trimmed CORS origins, got %v", cfg.CORSAllowedOrigins)
	}
}

func TestLoadIgnoresMalformedNumbers(t *testing.T) {
	t.Setenv("PLATFORM_FEE", "not-a-number")
	t.Setenv("PLATFORM_COMMISSION_RATE", "much")
	t.Setenv("QUESTION_CACHE_TTL", "soon")

	cfg := Load()
	if cfg.PlatformFee != 50 {
		t.Fatalf("expected default platform fee on parse failure, got %d", cfg.PlatformFee)
	}
	if cfg.CommissionRate != 0.15 {
		t.Fatalf("expected default commission rate on parse failure, got %v", cfg.CommissionRate)
	}
	if cfg.QuestionCacheTTL != 10*time.Minute {
		t.Fatalf("expected default ttl on parse failure, got %s", cfg.QuestionCacheTTL)
	}
}
