package config

import (
	"errors"
	"fmt"
	"io/fs"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Config holds all configuration for the application
type Config struct {
	Port   string
	Env    string
	LogDir string

	DBDriver   string
	DBHost     string
	DBPort     string
	DBUser     string
	DBPassword string
	DBName     string
	DBSSLMode  string
	SQLitePath string

	JWTSecret string

	PaymentGateway        string
	RazorpayKey           string
	RazorpaySecret        string
	RazorpayWebhookSecret string
	PaymentCallbackURL    string
	PublicBaseURL         string
	GatewayTimeout        time.Duration

	LockBackend   string
	RedisAddr     string
	RedisPassword string
	RedisDB       int
	LockTTL       time.Duration

	KafkaBrokers []string
	KafkaTopic   string

	DefaultCurrency string
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("PORT", "8080")
	v.SetDefault("ENV", "development")
	v.SetDefault("LOG_DIR", "logs")
	v.SetDefault("DB_DRIVER", "postgres")
	v.SetDefault("DB_HOST", "localhost")
	v.SetDefault("DB_PORT", "5432")
	v.SetDefault("DB_USER", "postgres")
	v.SetDefault("DB_PASSWORD", "postgres")
	v.SetDefault("DB_NAME", "jewelsphere")
	v.SetDefault("DB_SSLMODE", "disable")
	v.SetDefault("SQLITE_PATH", "jewelsphere.db")
	v.SetDefault("PAYMENT_GATEWAY", "simulator")
	v.SetDefault("PAYMENT_PUBLIC_BASE_URL", "http://localhost:8080")
	v.SetDefault("GATEWAY_TIMEOUT", "10s")
	v.SetDefault("LOCK_BACKEND", "local")
	v.SetDefault("REDIS_ADDR", "localhost:6379")
	v.SetDefault("REDIS_DB", 0)
	v.SetDefault("LOCK_TTL", "30s")
	v.SetDefault("KAFKA_TOPIC", "payments.events")
	v.SetDefault("DEFAULT_CURRENCY", "INR")
}

// Load reads configuration from the environment, after loading a .env file
// from the working directory when one exists.
func Load() (*Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("error loading .env file: %v", err)
	}

	v := viper.New()
	v.AutomaticEnv()
	setDefaults(v)
	return fromViper(v)
}

func fromViper(v *viper.Viper) (*Config, error) {
	cfg := &Config{
		Port:   v.GetString("PORT"),
		Env:    v.GetString("ENV"),
		LogDir: v.GetString("LOG_DIR"),

		DBDriver:   strings.ToLower(v.GetString("DB_DRIVER")),
		DBHost:     v.GetString("DB_HOST"),
		DBPort:     v.GetString("DB_PORT"),
		DBUser:     v.GetString("DB_USER"),
		DBPassword: v.GetString("DB_PASSWORD"),
		DBName:     v.GetString("DB_NAME"),
		DBSSLMode:  v.GetString("DB_SSLMODE"),
		SQLitePath: v.GetString("SQLITE_PATH"),

		JWTSecret: v.GetString("JWT_SECRET"),

		PaymentGateway:        strings.ToLower(v.GetString("PAYMENT_GATEWAY")),
		RazorpayKey:           v.GetString("RAZORPAY_KEY"),
		RazorpaySecret:        v.GetString("RAZORPAY_SECRET"),
		RazorpayWebhookSecret: v.GetString("RAZORPAY_WEBHOOK_SECRET"),
		PaymentCallbackURL:    v.GetString("PAYMENT_CALLBACK_URL"),
		PublicBaseURL:         v.GetString("PAYMENT_PUBLIC_BASE_URL"),
		GatewayTimeout:        v.GetDuration("GATEWAY_TIMEOUT"),

		LockBackend:   strings.ToLower(v.GetString("LOCK_BACKEND")),
		RedisAddr:     v.GetString("REDIS_ADDR"),
		RedisPassword: v.GetString("REDIS_PASSWORD"),
		RedisDB:       v.GetInt("REDIS_DB"),
		LockTTL:       v.GetDuration("LOCK_TTL"),

		KafkaBrokers: splitList(v.GetString("KAFKA_BROKERS")),
		KafkaTopic:   v.GetString("KAFKA_TOPIC"),

		DefaultCurrency: strings.ToUpper(v.GetString("DEFAULT_CURRENCY")),
	}
	return cfg, cfg.Validate()
}

// Validate rejects combinations the service cannot start with
func (c *Config) Validate() error {
	switch c.DBDriver {
	case "postgres", "sqlite", "memory":
	default:
		return fmt.Errorf("unsupported DB_DRIVER %q", c.DBDriver)
	}
	switch c.PaymentGateway {
	case "razorpay", "simulator":
	default:
		return fmt.Errorf("unsupported PAYMENT_GATEWAY %q", c.PaymentGateway)
	}
	switch c.LockBackend {
	case "local", "redis":
	default:
		return fmt.Errorf("unsupported LOCK_BACKEND %q", c.LockBackend)
	}
	if c.GatewayTimeout <= 0 {
		return fmt.Errorf("GATEWAY_TIMEOUT must be positive")
	}
	if c.Env == "production" {
		return c.validateProduction()
	}
	return nil
}

// validateProduction refuses settings that leave payment outcomes
// unauthenticated: the simulator marks attempts paid on request and an
// empty webhook secret accepts unsigned callbacks.
func (c *Config) validateProduction() error {
	if c.JWTSecret == "" {
		return fmt.Errorf("JWT_SECRET is required in production")
	}
	if c.PaymentGateway == "simulator" {
		return fmt.Errorf("PAYMENT_GATEWAY=simulator is not allowed in production")
	}
	if c.RazorpayWebhookSecret == "" {
		return fmt.Errorf("RAZORPAY_WEBHOOK_SECRET is required in production")
	}
	if c.RazorpayKey == "" || c.RazorpaySecret == "" {
		return fmt.Errorf("RAZORPAY_KEY and RAZORPAY_SECRET are required in production")
	}
	return nil
}

// PostgresDSN builds the connection string for the postgres driver
func (c *Config) PostgresDSN() string {
	return fmt.Sprintf("host=%s port=%s user=%s password=%s dbname=%s sslmode=%s",
		c.DBHost, c.DBPort, c.DBUser, c.DBPassword, c.DBName, c.DBSSLMode)
}

func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
