package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Config holds everything the server reads from the environment.
type Config struct {
	Port string

	DBDriver   string
	DBHost     string
	DBPort     string
	DBUser     string
	DBPassword string
	DBName     string
	DBSSLMode  string
	DBPath     string

	JWTSecret          string
	TokenTTL           time.Duration
	CookieSecure       bool
	CSRFProtect        bool
	CORSOrigins        []string
	FrontendBaseURL    string
	ResetTokenTTL      time.Duration
	LowRatingThreshold int
	RequirePermission  bool

	RedisAddr     string
	RedisPassword string
	RedisDB       int

	SeedDepartments   []string
	SeedAdminUsername string
	SeedAdminPassword string
	SeedAdminEmail    string

	LogLevel  string
	LogFormat string
}

// Load reads .env (when present) and the process environment.
func Load() (Config, error) {
	// .env is optional; deployments usually inject the environment directly
	_ = godotenv.Load()
	return FromEnv(os.Getenv)
}

// FromEnv builds a Config from any lookup function, which keeps tests off the real environment.
func FromEnv(getenv func(string) string) (Config, error) {
	get := func(key, def string) string {
		if v := strings.TrimSpace(getenv(key)); v != "" {
			return v
		}
		return def
	}

	cfg := Config{
		Port:              get("PORT", "5000"),
		DBDriver:          strings.ToLower(get("DB_DRIVER", "postgres")),
		DBHost:            get("DB_HOST", "localhost"),
		DBPort:            get("DB_PORT", "5432"),
		DBUser:            get("DB_USER", "postgres"),
		DBPassword:        getenv("DB_PASSWORD"),
		DBName:            get("DB_NAME", "survey"),
		DBSSLMode:         get("DB_SSLMODE", "disable"),
		DBPath:            get("DB_PATH", "survey.sqlite"),
		JWTSecret:         getenv("JWT_SECRET_KEY"),
		CORSOrigins:       splitList(get("CORS_ORIGINS", "http://localhost:8080,http://localhost:8081,http://localhost:5173")),
		FrontendBaseURL:   strings.TrimRight(get("FRONTEND_BASE_URL", "http://localhost:8081"), "/"),
		RedisAddr:         getenv("REDIS_ADDR"),
		RedisPassword:     getenv("REDIS_PASSWORD"),
		SeedDepartments:   splitList(getenv("SEED_DEPARTMENTS")),
		SeedAdminUsername: getenv("SEED_ADMIN_USERNAME"),
		SeedAdminPassword: getenv("SEED_ADMIN_PASSWORD"),
		SeedAdminEmail:    getenv("SEED_ADMIN_EMAIL"),
		LogLevel:          get("LOG_LEVEL", "info"),
		LogFormat:         get("LOG_FORMAT", "text"),
	}

	var err error
	if cfg.TokenTTL, err = time.ParseDuration(get("JWT_ACCESS_TOKEN_EXPIRES", "1h")); err != nil {
		return cfg, fmt.Errorf("invalid JWT_ACCESS_TOKEN_EXPIRES: %w", err)
	}
	if cfg.ResetTokenTTL, err = time.ParseDuration(get("RESET_TOKEN_TTL", "15m")); err != nil {
		return cfg, fmt.Errorf("invalid RESET_TOKEN_TTL: %w", err)
	}
	if cfg.CookieSecure, err = strconv.ParseBool(get("JWT_COOKIE_SECURE", "false")); err != nil {
		return cfg, fmt.Errorf("invalid JWT_COOKIE_SECURE: %w", err)
	}
	if cfg.CSRFProtect, err = strconv.ParseBool(get("JWT_COOKIE_CSRF_PROTECT", "true")); err != nil {
		return cfg, fmt.Errorf("invalid JWT_COOKIE_CSRF_PROTECT: %w", err)
	}
	if cfg.RequirePermission, err = strconv.ParseBool(get("REQUIRE_ACTIVE_PERMISSION", "false")); err != nil {
		return cfg, fmt.Errorf("invalid REQUIRE_ACTIVE_PERMISSION: %w", err)
	}
	if cfg.LowRatingThreshold, err = strconv.Atoi(get("LOW_RATING_THRESHOLD", "2")); err != nil {
		return cfg, fmt.Errorf("invalid LOW_RATING_THRESHOLD: %w", err)
	}
	if cfg.RedisDB, err = strconv.Atoi(get("REDIS_DB", "0")); err != nil {
		return cfg, fmt.Errorf("invalid REDIS_DB: %w", err)
	}

	return cfg, cfg.Validate()
}

// Validate checks the invariants the server refuses to start without.
func (cfg Config) Validate() error {
	if cfg.JWTSecret == "" {
		return errors.New("JWT_SECRET_KEY is required")
	}
	if cfg.TokenTTL <= 0 {
		return errors.New("JWT_ACCESS_TOKEN_EXPIRES must be positive")
	}
	switch cfg.DBDriver {
	case "postgres", "sqlite":
	default:
		return fmt.Errorf("unsupported DB_DRIVER %q", cfg.DBDriver)
	}
	port, err := strconv.Atoi(cfg.Port)
	if err != nil || port < 0 || port > 65535 {
		return fmt.Errorf("invalid PORT %q", cfg.Port)
	}
	if cfg.LowRatingThreshold < 0 || cfg.LowRatingThreshold > 5 {
		return fmt.Errorf("LOW_RATING_THRESHOLD must be within 0-5, got %d", cfg.LowRatingThreshold)
	}
	return nil
}

// PostgresDSN renders the key/value DSN understood by lib/pq.
func (cfg Config) PostgresDSN() string {
	return fmt.Sprintf("host=%s port=%s user=%s password=%s dbname=%s sslmode=%s",
		cfg.DBHost, cfg.DBPort, cfg.DBUser, cfg.DBPassword, cfg.DBName, cfg.DBSSLMode)
}

func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if p := strings.TrimSpace(part); p != "" {
			out = append(out, p)
		}
	}
	return out
}
