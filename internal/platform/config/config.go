package config

import (
	"fmt"
	"log"
	"strings"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Storage backends.
const (
	StoragePostgres = "postgres"
	StorageMemory   = "memory"
)

const defaultJWTSecret = "a-very-secret-key-should-be-longer-and-random"

// Config holds application configuration.
type Config struct {
	DatabaseURL    string
	Port           string
	IsProduction   bool
	EnableDBCheck  bool
	StorageBackend string

	JWTSecret string
	JWTIssuer string

	RateLimit          string // ulule/limiter format, e.g. "100-M"
	CORSAllowedOrigins []string

	DefaultHorizonDays int
	MaxHorizonDays     int

	AMQPURL            string
	ReminderExchange   string
	ReminderRoutingKey string

	GenerateSchedule  string // cron spec of the auto-generation sweep
	ReminderSchedule  string // cron spec of the reminder job
	WorkerConcurrency int
}

// LoadConfig loads configuration from environment variables and .env file if present.
func LoadConfig() (*Config, error) {
	// Attempt to load .env file, ignore error if it doesn't exist
	_ = godotenv.Load()

	v := viper.New()
	v.SetDefault("PGSQL_URL", "")
	v.SetDefault("PORT", "8080")
	v.SetDefault("IS_PRODUCTION", false)
	v.SetDefault("ENABLE_DB_CHECK", false)
	v.SetDefault("STORAGE_BACKEND", StoragePostgres)
	v.SetDefault("JWT_SECRET", defaultJWTSecret)
	v.SetDefault("JWT_ISSUER", "")
	v.SetDefault("RATE_LIMIT", "300-M")
	v.SetDefault("CORS_ALLOWED_ORIGINS", "http://localhost:3000")
	v.SetDefault("DEFAULT_HORIZON_DAYS", 30)
	v.SetDefault("MAX_HORIZON_DAYS", 366)
	v.SetDefault("AMQP_URL", "")
	v.SetDefault("REMINDER_EXCHANGE", "recurring")
	v.SetDefault("REMINDER_ROUTING_KEY", "occurrence.due_soon")
	v.SetDefault("GENERATE_SCHEDULE", "0 2 * * *")
	v.SetDefault("REMINDER_SCHEDULE", "0 8 * * *")
	v.SetDefault("WORKER_CONCURRENCY", 4)

	v.AutomaticEnv()

	cfg := &Config{
		DatabaseURL:        v.GetString("PGSQL_URL"),
		Port:               v.GetString("PORT"),
		IsProduction:       v.GetBool("IS_PRODUCTION"),
		EnableDBCheck:      v.GetBool("ENABLE_DB_CHECK"),
		StorageBackend:     strings.ToLower(strings.TrimSpace(v.GetString("STORAGE_BACKEND"))),
		JWTSecret:          v.GetString("JWT_SECRET"),
		JWTIssuer:          v.GetString("JWT_ISSUER"),
		RateLimit:          v.GetString("RATE_LIMIT"),
		CORSAllowedOrigins: splitList(v.GetString("CORS_ALLOWED_ORIGINS")),
		DefaultHorizonDays: v.GetInt("DEFAULT_HORIZON_DAYS"),
		MaxHorizonDays:     v.GetInt("MAX_HORIZON_DAYS"),
		AMQPURL:            v.GetString("AMQP_URL"),
		ReminderExchange:   v.GetString("REMINDER_EXCHANGE"),
		ReminderRoutingKey: v.GetString("REMINDER_ROUTING_KEY"),
		GenerateSchedule:   v.GetString("GENERATE_SCHEDULE"),
		ReminderSchedule:   v.GetString("REMINDER_SCHEDULE"),
		WorkerConcurrency:  v.GetInt("WORKER_CONCURRENCY"),
	}

	switch cfg.StorageBackend {
	case StoragePostgres:
		if cfg.DatabaseURL == "" {
			log.Println("Warning: PGSQL_URL environment variable not set.")
		}
	case StorageMemory:
		log.Println("Warning: STORAGE_BACKEND=memory, data will not survive a restart.")
	default:
		return nil, fmt.Errorf("invalid STORAGE_BACKEND %q: must be %s or %s", cfg.StorageBackend, StoragePostgres, StorageMemory)
	}

	if cfg.Port == "" {
		cfg.Port = "8080"
		log.Printf("Warning: PORT environment variable not set. Defaulting to %s\n", cfg.Port)
	}

	if cfg.JWTSecret == "" || cfg.JWTSecret == defaultJWTSecret {
		if cfg.IsProduction {
			return nil, fmt.Errorf("JWT_SECRET must be set in production")
		}
		cfg.JWTSecret = defaultJWTSecret // !! CHANGE IN PRODUCTION !!
		log.Println("Warning: JWT_SECRET environment variable not set. Using default insecure key.")
	}

	if cfg.DefaultHorizonDays < 0 {
		log.Printf("Warning: Invalid value for DEFAULT_HORIZON_DAYS (%d). Defaulting to 30.\n", cfg.DefaultHorizonDays)
		cfg.DefaultHorizonDays = 30
	}
	if cfg.MaxHorizonDays < cfg.DefaultHorizonDays {
		log.Printf("Warning: MAX_HORIZON_DAYS (%d) is below DEFAULT_HORIZON_DAYS. Using %d.\n", cfg.MaxHorizonDays, cfg.DefaultHorizonDays)
		cfg.MaxHorizonDays = cfg.DefaultHorizonDays
	}
	if cfg.WorkerConcurrency < 1 {
		log.Printf("Warning: Invalid value for WORKER_CONCURRENCY (%d). Defaulting to 1.\n", cfg.WorkerConcurrency)
		cfg.WorkerConcurrency = 1
	}
	if cfg.AMQPURL == "" {
		log.Println("Warning: AMQP_URL not set. Reminders will only be logged.")
	}

	return cfg, nil
}

func splitList(raw string) []string {
	var out []string
	for _, part := range strings.Split(raw, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
