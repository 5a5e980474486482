package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

const (
	defaultPort              = "3002"
	defaultDatabaseURL       = "booking.db"
	defaultRazorpayBaseURL   = "https://api.razorpay.com"
	defaultCurrency          = "INR"
	defaultCallbackMethod    = "get"
	defaultHTTPClientTimeout = "10s"
	defaultVaccineCacheTTL   = "10m"
	defaultFinalizeLockTTL   = "30s"
	defaultJWTIssuer         = "auth-service"
	defaultPhoneRegion       = "IN"
	defaultLogLevel          = "info"
)

type Config struct {
	AppEnv   string
	Port     string
	LogLevel string

	DatabaseURL string
	DBSync      bool

	VaccineServicePath  string
	AuthServicePath     string
	ReminderServicePath string
	FrontendOrigins     []string
	HTTPClientTimeout   time.Duration

	RazorpayKeyID         string
	RazorpayKeySecret     string
	RazorpayBaseURL       string
	RazorpayWebhookSecret string
	PaymentCurrency       string
	PaymentCallbackURL    string
	PaymentCallbackMethod string

	RedisAddress    string
	VaccineCacheTTL time.Duration
	FinalizeLockTTL time.Duration

	AMQPURL string

	JWTSecret string
	JWTIssuer string

	DefaultPhoneRegion string
}

// Load reads .env (if present) and the process environment.
func Load() (*Config, error) {
	_ = godotenv.Load()

	cfg := &Config{}
	appEnv := strings.TrimSpace(os.Getenv("APP_ENV"))
	if appEnv == "" {
		appEnv = strings.TrimSpace(os.Getenv("NODE_ENV"))
	}
	if appEnv == "" {
		appEnv = "dev"
	}
	cfg.AppEnv = strings.ToLower(appEnv)

	cfg.Port = strings.TrimSpace(getEnv("PORT", defaultPort))
	cfg.LogLevel = strings.TrimSpace(getEnv("LOG_LEVEL", defaultLogLevel))
	cfg.DatabaseURL = strings.TrimSpace(getEnv("DATABASE_URL", defaultDatabaseURL))
	cfg.DBSync = parseBoolEnv("DB_SYNC", "false")

	cfg.VaccineServicePath = trimURL(os.Getenv("VACCINE_SERVICE_PATH"))
	cfg.AuthServicePath = trimURL(os.Getenv("AUTH_SERVICE_PATH"))
	cfg.ReminderServicePath = trimURL(os.Getenv("REMINDER_SERVICE_PATH"))
	cfg.FrontendOrigins = splitList(os.Getenv("VACCINE_FRONTEND_PATH"))

	cfg.RazorpayKeyID = strings.TrimSpace(os.Getenv("RAZORPAY_KEY_ID"))
	cfg.RazorpayKeySecret = strings.TrimSpace(os.Getenv("RAZORPAY_KEY_SECRET"))
	cfg.RazorpayBaseURL = trimURL(getEnv("RAZORPAY_BASE_URL", defaultRazorpayBaseURL))
	cfg.RazorpayWebhookSecret = strings.TrimSpace(os.Getenv("RAZORPAY_WEBHOOK_SECRET"))
	cfg.PaymentCurrency = strings.ToUpper(strings.TrimSpace(getEnv("PAYMENT_CURRENCY", defaultCurrency)))
	cfg.PaymentCallbackURL = strings.TrimSpace(os.Getenv("PAYMENT_CALLBACK_URL"))
	cfg.PaymentCallbackMethod = strings.ToLower(strings.TrimSpace(getEnv("PAYMENT_CALLBACK_METHOD", defaultCallbackMethod)))

	cfg.RedisAddress = strings.TrimSpace(os.Getenv("REDIS_ADDRESS"))
	cfg.AMQPURL = strings.TrimSpace(os.Getenv("AMQP_URL"))
	cfg.JWTSecret = strings.TrimSpace(os.Getenv("JWT_SECRET"))
	cfg.JWTIssuer = strings.TrimSpace(getEnv("JWT_ISSUER", defaultJWTIssuer))
	cfg.DefaultPhoneRegion = strings.ToUpper(strings.TrimSpace(getEnv("DEFAULT_PHONE_REGION", defaultPhoneRegion)))

	var err error
	cfg.HTTPClientTimeout, err = parseDurationEnv("HTTP_CLIENT_TIMEOUT", defaultHTTPClientTimeout)
	if err != nil {
		return nil, err
	}
	cfg.VaccineCacheTTL, err = parseDurationEnv("VACCINE_CACHE_TTL", defaultVaccineCacheTTL)
	if err != nil {
		return nil, err
	}
	cfg.FinalizeLockTTL, err = parseDurationEnv("FINALIZE_LOCK_TTL", defaultFinalizeLockTTL)
	if err != nil {
		return nil, err
	}

	if err := validateConfig(cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}

func validateConfig(cfg *Config) error {
	if _, err := strconv.Atoi(cfg.Port); err != nil {
		return fmt.Errorf("PORT must be numeric, got %q", cfg.Port)
	}
	if cfg.VaccineServicePath == "" {
		return fmt.Errorf("VACCINE_SERVICE_PATH must not be empty")
	}
	if cfg.AuthServicePath == "" {
		return fmt.Errorf("AUTH_SERVICE_PATH must not be empty")
	}
	if cfg.ReminderServicePath == "" {
		return fmt.Errorf("REMINDER_SERVICE_PATH must not be empty")
	}
	if cfg.HTTPClientTimeout <= 0 {
		return fmt.Errorf("HTTP_CLIENT_TIMEOUT must be > 0")
	}
	if cfg.VaccineCacheTTL <= 0 {
		return fmt.Errorf("VACCINE_CACHE_TTL must be > 0")
	}
	if cfg.FinalizeLockTTL <= 0 {
		return fmt.Errorf("FINALIZE_LOCK_TTL must be > 0")
	}
	if len(cfg.PaymentCurrency) != 3 {
		return fmt.Errorf("PAYMENT_CURRENCY must be an ISO 4217 code, got %q", cfg.PaymentCurrency)
	}
	if cfg.PaymentCallbackMethod != "get" && cfg.PaymentCallbackMethod != "post" {
		return fmt.Errorf("PAYMENT_CALLBACK_METHOD must be get or post")
	}

	if isProdLike(cfg.AppEnv) {
		if cfg.RazorpayKeyID == "" || cfg.RazorpayKeySecret == "" {
			return fmt.Errorf("in prod/release RAZORPAY_KEY_ID and RAZORPAY_KEY_SECRET must be set")
		}
		if !strings.HasPrefix(cfg.DatabaseURL, "postgres://") && !strings.HasPrefix(cfg.DatabaseURL, "postgresql://") {
			return fmt.Errorf("in prod/release DATABASE_URL must point to PostgreSQL")
		}
	}
	return nil
}

func (c *Config) IsProdLike() bool { return isProdLike(c.AppEnv) }

func isProdLike(env string) bool {
	env = strings.ToLower(strings.TrimSpace(env))
	return env == "prod" || env == "production" || env == "release"
}

func parseDurationEnv(name, fallback string) (time.Duration, error) {
	value := strings.TrimSpace(getEnv(name, fallback))
	d, err := time.ParseDuration(value)
	if err != nil {
		return 0, fmt.Errorf("invalid %s value %q: %w", name, value, err)
	}
	return d, nil
}

func parseBoolEnv(name, fallback string) bool {
	value := strings.ToLower(strings.TrimSpace(getEnv(name, fallback)))
	return value == "1" || value == "true" || value == "yes" || value == "on"
}

func getEnv(name, fallback string) string {
	if v := os.Getenv(name); v != "" {
		return v
	}
	return fallback
}

func trimURL(v string) string {
	return strings.TrimRight(strings.TrimSpace(v), "/")
}

func splitList(v string) []string {
	var out []string
	for _, part := range strings.Split(v, ",") {
		if p := strings.TrimSpace(part); p != "" {
			out = append(out, strings.TrimRight(p, "/"))
		}
	}
	return out
}
