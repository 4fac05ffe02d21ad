package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/shopspring/decimal"
)

// Config holds the whole application configuration.
// Every field is populated from environment variables.
type Config struct {
	App       AppConfig
	Database  DatabaseConfig
	Redis     RedisConfig
	JWT       JWTConfig
	Payment   PaymentConfig
	Checkout  CheckoutConfig
	Booking   BookingConfig
	Email     EmailConfig
	Kafka     KafkaConfig
	Telemetry TelemetryConfig
	Queue     QueueConfig
}

type AppConfig struct {
	Name        string
	Environment string // development, staging, production
	Port        string
	Version     string
}

type DatabaseConfig struct {
	Host     string
	Port     int
	User     string
	Password string
	Database string
	SSLMode  string
	MaxConns int
	MinConns int
}

// URL returns a postgres connection string usable by pgx and golang-migrate.
func (d DatabaseConfig) URL() string {
	return fmt.Sprintf("postgres://%s:%s@%s:%d/%s?sslmode=%s",
		d.User, d.Password, d.Host, d.Port, d.Database, d.SSLMode)
}

type RedisConfig struct {
	Host     string
	Password string
	DB       int
}

type JWTConfig struct {
	Secret            string
	AccessTokenExpiry int // minutes
}

// =====================================================
// PAYMENT CONFIGURATION
// =====================================================

const (
	PaymentModeDemo   = "demo"
	PaymentModeStripe = "stripe"
)

type PaymentConfig struct {
	Mode            string // demo | stripe
	StripeSecretKey string
	Currency        string
	IdempotencyTTL  time.Duration
}

type CheckoutConfig struct {
	TaxRate               decimal.Decimal
	FlatShippingFee       decimal.Decimal
	FreeShippingThreshold decimal.Decimal
	PendingOrderTTL       time.Duration
}

type BookingConfig struct {
	Timezone      string
	OpenHour      int
	CloseHour     int
	MinNotice     time.Duration
	CancelCutoff  time.Duration
	SlotIntervalM int
}

type EmailConfig struct {
	SMTPHost     string
	SMTPPort     int
	SMTPUser     string
	SMTPPassword string
	From         string
}

type KafkaConfig struct {
	Brokers    []string
	OrderTopic string
}

type TelemetryConfig struct {
	ServiceName  string
	OTLPEndpoint string
}

type QueueConfig struct {
	Concurrency int
}

// Load reads the configuration from the environment.
// A .env file in the working directory is applied first when present.
func Load() (*Config, error) {
	_ = godotenv.Load()

	cfg := &Config{
		App: AppConfig{
			Name:        getEnv("APP_NAME", "Shop API"),
			Environment: getEnv("APP_ENV", "development"),
			Port:        getEnv("APP_PORT", "8080"),
			Version:     getEnv("APP_VERSION", "1.0.0"),
		},
		Database: DatabaseConfig{
			Host:     getEnv("DB_HOST", "localhost"),
			Port:     getEnvInt("DB_PORT", 5432),
			User:     getEnv("DB_USER", "postgres"),
			Password: getEnv("DB_PASSWORD", ""),
			Database: getEnv("DB_NAME", "shop"),
			SSLMode:  getEnv("DB_SSLMODE", "disable"),
			MaxConns: getEnvInt("DB_MAX_CONNS", 25),
			MinConns: getEnvInt("DB_MIN_CONNS", 5),
		},
		Redis: RedisConfig{
			Host:     getEnv("REDIS_HOST", "localhost:6379"),
			Password: getEnv("REDIS_PASSWORD", ""),
			DB:       getEnvInt("REDIS_DB", 0),
		},
		JWT: JWTConfig{
			Secret:            getEnv("JWT_SECRET", "your-secret-key-change-in-production"),
			AccessTokenExpiry: getEnvInt("JWT_ACCESS_EXPIRY", 60),
		},
		Payment: PaymentConfig{
			Mode:            strings.ToLower(getEnv("PAYMENT_MODE", PaymentModeDemo)),
			StripeSecretKey: getEnv("STRIPE_SECRET_KEY", ""),
			Currency:        strings.ToLower(getEnv("PAYMENT_CURRENCY", "usd")),
			IdempotencyTTL:  getEnvDuration("PAYMENT_IDEMPOTENCY_TTL", 24*time.Hour),
		},
		Checkout: CheckoutConfig{
			TaxRate:               getEnvDecimal("CHECKOUT_TAX_RATE", "0.08"),
			FlatShippingFee:       getEnvDecimal("CHECKOUT_SHIPPING_FEE", "9.99"),
			FreeShippingThreshold: getEnvDecimal("CHECKOUT_FREE_SHIPPING_THRESHOLD", "100"),
			PendingOrderTTL:       getEnvDuration("ORDER_PENDING_TTL", 30*time.Minute),
		},
		Booking: BookingConfig{
			Timezone:      getEnv("BOOKING_TIMEZONE", "UTC"),
			OpenHour:      getEnvInt("BOOKING_OPEN_HOUR", 9),
			CloseHour:     getEnvInt("BOOKING_CLOSE_HOUR", 17),
			MinNotice:     getEnvDuration("BOOKING_MIN_NOTICE", 2*time.Hour),
			CancelCutoff:  getEnvDuration("BOOKING_CANCEL_CUTOFF", 24*time.Hour),
			SlotIntervalM: getEnvInt("BOOKING_SLOT_INTERVAL_MINUTES", 60),
		},
		Email: EmailConfig{
			SMTPHost:     getEnv("SMTP_HOST", "localhost"),
			SMTPPort:     getEnvInt("SMTP_PORT", 1025),
			SMTPUser:     getEnv("SMTP_USER", ""),
			SMTPPassword: getEnv("SMTP_PASSWORD", ""),
			From:         getEnv("EMAIL_FROM", "noreply@shop.local"),
		},
		Kafka: KafkaConfig{
			Brokers:    splitList(getEnv("KAFKA_BROKERS", "")),
			OrderTopic: getEnv("KAFKA_ORDER_TOPIC", "shop.orders"),
		},
		Telemetry: TelemetryConfig{
			ServiceName:  getEnv("OTEL_SERVICE_NAME", "shop-backend"),
			OTLPEndpoint: getEnv("OTEL_EXPORTER_OTLP_ENDPOINT", ""),
		},
		Queue: QueueConfig{
			Concurrency: getEnvInt("WORKER_CONCURRENCY", 10),
		},
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}

	return cfg, nil
}

// Validate checks that the configuration is usable.
func (c *Config) Validate() error {
	switch c.Payment.Mode {
	case PaymentModeDemo:
	case PaymentModeStripe:
		if c.Payment.StripeSecretKey == "" {
			return fmt.Errorf("STRIPE_SECRET_KEY must be set when PAYMENT_MODE=stripe")
		}
	default:
		return fmt.Errorf("unknown PAYMENT_MODE %q", c.Payment.Mode)
	}

	if c.Booking.OpenHour < 0 || c.Booking.CloseHour > 24 || c.Booking.OpenHour >= c.Booking.CloseHour {
		return fmt.Errorf("invalid booking hours %d-%d", c.Booking.OpenHour, c.Booking.CloseHour)
	}
	if c.Booking.SlotIntervalM <= 0 {
		return fmt.Errorf("BOOKING_SLOT_INTERVAL_MINUTES must be positive")
	}
	if _, err := time.LoadLocation(c.Booking.Timezone); err != nil {
		return fmt.Errorf("invalid BOOKING_TIMEZONE: %w", err)
	}

	if c.App.Environment == "production" {
		if c.JWT.Secret == "your-secret-key-change-in-production" {
			return fmt.Errorf("JWT_SECRET must be set in production")
		}
		if c.Database.Password == "" {
			return fmt.Errorf("DB_PASSWORD must be set in production")
		}
		if c.Payment.Mode == PaymentModeDemo {
			return fmt.Errorf("PAYMENT_MODE=demo is not allowed in production")
		}
	}

	return nil
}

// Helper functions
func getEnv(key, defaultValue string) string {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	return value
}

func getEnvInt(key string, defaultValue int) int {
	valueStr := os.Getenv(key)
	if valueStr == "" {
		return defaultValue
	}
	value, err := strconv.Atoi(valueStr)
	if err != nil {
		return defaultValue
	}
	return value
}

func getEnvDuration(key string, defaultValue time.Duration) time.Duration {
	valueStr := os.Getenv(key)
	if valueStr == "" {
		return defaultValue
	}
	value, err := time.ParseDuration(valueStr)
	if err != nil {
		return defaultValue
	}
	return value
}

func getEnvDecimal(key, defaultValue string) decimal.Decimal {
	value, err := decimal.NewFromString(getEnv(key, defaultValue))
	if err != nil {
		return decimal.RequireFromString(defaultValue)
	}
	return value
}

func splitList(raw string) []string {
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
