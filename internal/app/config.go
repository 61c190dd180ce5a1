package app

import (
	"os"
	"strings"
	"time"

	"github.com/cristalhq/aconfig"
	"github.com/cristalhq/aconfig/aconfigyaml"
	"github.com/go-faster/errors"
	"github.com/joho/godotenv"
)

// Payment providers accepted in PaymentConfig.Provider.
const (
	ProviderRazorpay = "razorpay"
	ProviderOffline  = "offline"
)

// Config holds the complete application configuration, loadable from
// environment variables (TEEZ_ prefix), a .env file, flags, or YAML config files.
type Config struct {
	Addr          string `default:"0.0.0.0:8080" usage:"API server listen address"`
	DatabaseURL   string `usage:"PostgreSQL connection URL (TEEZ_DATABASE_URL or DATABASE_URL)" flag:"database-url"`
	ImageBaseURL  string `default:"" usage:"Base URL for relative product image paths" flag:"image-base-url"`
	Auth          AuthConfig
	Payment       PaymentConfig
	RateLimit     RateLimitConfig
	AuthRateLimit RateLimitConfig
	CORS          CORSConfig
	Graceful      GracefulConfig
}

// AuthConfig controls session tokens and password hashing.
type AuthConfig struct {
	JWTSecret   string        `usage:"HMAC secret for session tokens (TEEZ_AUTH_JWT_SECRET or JWT_SECRET)" flag:"jwt-secret"`
	TokenTTL    time.Duration `default:"24h" usage:"Session token lifetime" flag:"token-ttl"`
	AdminEmails []string      `default:"admin@teez.com" usage:"Emails that become admins on registration" flag:"admin-emails"`
	BcryptCost  int           `default:"10" usage:"bcrypt cost for password hashes" flag:"bcrypt-cost"`
}

// PaymentConfig selects and configures the payment gateway.
type PaymentConfig struct {
	Provider  string `default:"razorpay" usage:"Payment provider: razorpay or offline" flag:"payment-provider"`
	KeyID     string `usage:"Provider key id (TEEZ_PAYMENT_KEY_ID or RAZORPAY_KEY_ID)" flag:"payment-key-id"`
	KeySecret string `usage:"Provider key secret (TEEZ_PAYMENT_KEY_SECRET or RAZORPAY_KEY_SECRET)" flag:"payment-key-secret"`
	Currency  string `default:"INR" usage:"Currency for payment orders" flag:"payment-currency"`
	BaseURL   string `default:"" usage:"Provider API base URL override" flag:"payment-base-url"`
	// RequireConfirmation rejects orders submitted without a payment confirmation.
	RequireConfirmation bool `default:"false" usage:"Require a verified payment for every order" flag:"payment-require-confirmation"`
}

// RateLimitConfig controls a per-client sliding window rate limiter.
type RateLimitConfig struct {
	Max    int           `usage:"Max requests per window"`
	Window time.Duration `usage:"Rate limit window duration"`
}

// CORSConfig controls Cross-Origin Resource Sharing headers.
type CORSConfig struct {
	Origins          []string `default:"*" usage:"Allowed CORS origins"`
	AllowCredentials bool     `default:"false" usage:"Allow credentials (cookies, auth headers)" flag:"cors-credentials"`
}

// GracefulConfig controls graceful shutdown timing.
type GracefulConfig struct {
	ReadinessDelay  time.Duration `default:"3s"  usage:"Delay after readiness=false before shutdown" flag:"readiness-delay"`
	ShutdownTimeout time.Duration `default:"15s" usage:"Maximum shutdown duration" flag:"shutdown-timeout"`
}

// LoadConfig loads configuration from a .env file, environment variables,
// YAML config files, and applies platform-specific defaults.
func LoadConfig() (*Config, error) {
	// A missing .env is the normal case outside local development.
	_ = godotenv.Load()

	var cfg Config
	loader := aconfig.LoaderFor(&cfg, aconfig.Config{
		EnvPrefix: "TEEZ",
		Files:     []string{"config.yaml", "/etc/teez/config.yaml"},
		FileDecoders: map[string]aconfig.FileDecoder{
			".yaml": aconfigyaml.New(),
		},
	})
	if err := loader.Load(); err != nil {
		return nil, errors.Wrap(err, "load config")
	}
	cfg.applyPlatformDefaults()

	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// applyPlatformDefaults maps platform-provided environment variables (Railway,
// Render, etc.) and the conventional names used by the storefront frontend
// to the application's TEEZ_-prefixed configuration.
func (c *Config) applyPlatformDefaults() {
	fallback := func(dst *string, env string) {
		if *dst == "" {
			*dst = os.Getenv(env)
		}
	}
	fallback(&c.DatabaseURL, "DATABASE_URL")
	fallback(&c.Auth.JWTSecret, "JWT_SECRET")
	fallback(&c.Payment.KeyID, "RAZORPAY_KEY_ID")
	fallback(&c.Payment.KeySecret, "RAZORPAY_KEY_SECRET")

	if port := os.Getenv("PORT"); port != "" && c.Addr == "0.0.0.0:8080" {
		c.Addr = "0.0.0.0:" + port
	}

	if c.RateLimit.Max == 0 {
		c.RateLimit.Max = 100
	}
	if c.RateLimit.Window == 0 {
		c.RateLimit.Window = time.Minute
	}
	// Credential endpoints get a much tighter budget.
	if c.AuthRateLimit.Max == 0 {
		c.AuthRateLimit.Max = 10
	}
	if c.AuthRateLimit.Window == 0 {
		c.AuthRateLimit.Window = time.Minute
	}

	c.Payment.Provider = strings.ToLower(strings.TrimSpace(c.Payment.Provider))
}

func (c *Config) validate() error {
	if c.DatabaseURL == "" {
		return errors.New("database URL is required: set TEEZ_DATABASE_URL or DATABASE_URL")
	}
	if c.Auth.JWTSecret == "" {
		return errors.New("JWT secret is required: set TEEZ_AUTH_JWT_SECRET or JWT_SECRET")
	}
	switch c.Payment.Provider {
	case ProviderRazorpay:
		if c.Payment.KeyID == "" || c.Payment.KeySecret == "" {
			return errors.New("razorpay key id and secret are required (or set TEEZ_PAYMENT_PROVIDER=offline)")
		}
	case ProviderOffline:
	default:
		return errors.Errorf("unknown payment provider %q", c.Payment.Provider)
	}
	return nil
}
