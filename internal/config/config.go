package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

type APIConfig struct {
	Addr              string
	DatabaseURL       string
	TokenSecret       string
	TokenTTL          time.Duration
	AdminPasswordHash string
	StartingBalance   int64
	DepositAPR        float64
	MigrateOnStart    bool
}

type WorkerConfig struct {
	DatabaseURL    string
	PriceTickSpec  string
	InterestSpec   string
	OverdueSpec    string
	CleanupSpec    string
	SessionSpec    string
	BusinessSpec   string
	BusinessWindow time.Duration
}

type CLIConfig struct {
	APIBaseURL string
}

func LoadAPIFromEnv() (APIConfig, error) {
	_ = godotenv.Load()

	addr := os.Getenv("PORT")
	if addr != "" {
		if !strings.HasPrefix(addr, ":") {
			addr = ":" + addr
		}
	} else {
		addr = envDefault("GUILDMINT_API_ADDR", ":8080")
	}

	cfg := APIConfig{
		Addr:              addr,
		DatabaseURL:       strings.TrimSpace(os.Getenv("DATABASE_URL")),
		TokenSecret:       strings.TrimSpace(os.Getenv("GUILDMINT_TOKEN_SECRET")),
		TokenTTL:          envDurationDefault("GUILDMINT_TOKEN_TTL", 12*time.Hour),
		AdminPasswordHash: strings.TrimSpace(os.Getenv("GUILDMINT_ADMIN_PASSWORD_HASH")),
		StartingBalance:   envInt64Default("GUILDMINT_STARTING_BALANCE", 500),
		DepositAPR:        envFloatDefault("GUILDMINT_DEPOSIT_APR", 0.03),
		MigrateOnStart:    envBoolDefault("GUILDMINT_MIGRATE_ON_START", true),
	}
	if cfg.DatabaseURL == "" {
		return cfg, fmt.Errorf("DATABASE_URL is required")
	}
	if cfg.TokenSecret == "" {
		return cfg, fmt.Errorf("GUILDMINT_TOKEN_SECRET is required")
	}
	if cfg.AdminPasswordHash == "" {
		return cfg, fmt.Errorf("GUILDMINT_ADMIN_PASSWORD_HASH is required")
	}
	return cfg, nil
}

func LoadWorkerFromEnv() (WorkerConfig, error) {
	_ = godotenv.Load()

	cfg := WorkerConfig{
		DatabaseURL:    strings.TrimSpace(os.Getenv("DATABASE_URL")),
		PriceTickSpec:  envDefault("GUILDMINT_PRICE_TICK_SPEC", "@hourly"),
		InterestSpec:   envDefault("GUILDMINT_INTEREST_SPEC", "@daily"),
		OverdueSpec:    envDefault("GUILDMINT_OVERDUE_SPEC", "@hourly"),
		CleanupSpec:    envDefault("GUILDMINT_CLEANUP_SPEC", "@every 5m"),
		SessionSpec:    envDefault("GUILDMINT_SESSION_SPEC", "@every 1m"),
		BusinessSpec:   envDefault("GUILDMINT_BUSINESS_SPEC", "@every 6h"),
		BusinessWindow: envDurationDefault("GUILDMINT_BUSINESS_WINDOW", 6*time.Hour),
	}
	if cfg.DatabaseURL == "" {
		return cfg, fmt.Errorf("DATABASE_URL is required")
	}
	return cfg, nil
}

func LoadCLIFromEnv() CLIConfig {
	_ = godotenv.Load()
	return CLIConfig{
		APIBaseURL: strings.TrimRight(envDefault("GMCTL_API_BASE_URL", "http://localhost:8080"), "/"),
	}
}

func envDefault(key, fallback string) string {
	v := strings.TrimSpace(os.Getenv(key))
	if v == "" {
		return fallback
	}
	return v
}

func envDurationDefault(key string, fallback time.Duration) time.Duration {
	v := strings.TrimSpace(os.Getenv(key))
	if v == "" {
		return fallback
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		return fallback
	}
	return d
}

func envInt64Default(key string, fallback int64) int64 {
	v := strings.TrimSpace(os.Getenv(key))
	if v == "" {
		return fallback
	}
	n, err := strconv.ParseInt(v, 10, 64)
	if err != nil {
		return fallback
	}
	return n
}

func envFloatDefault(key string, fallback float64) float64 {
	v := strings.TrimSpace(os.Getenv(key))
	if v == "" {
		return fallback
	}
	f, err := strconv.ParseFloat(v, 64)
	if err != nil {
		return fallback
	}
	return f
}

func envBoolDefault(key string, fallback bool) bool {
	v := strings.TrimSpace(os.Getenv(key))
	if v == "" {
		return fallback
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		return fallback
	}
	return b
}
