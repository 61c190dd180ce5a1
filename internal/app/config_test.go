package app

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestApplyPlatformDefaults(t *testing.T) {
	t.Setenv("DATABASE_URL", "postgres://platform")
	t.Setenv("JWT_SECRET", "platform-secret")
	t.Setenv("RAZORPAY_KEY_ID", "rzp_test_key")
	t.Setenv("RAZORPAY_KEY_SECRET", "rzp_secret")
	t.Setenv("PORT", "9000")

	cfg := Config{Addr: "0.0.0.0:8080", Payment: PaymentConfig{Provider: " Razorpay "}}
	cfg.applyPlatformDefaults()

	assert.Equal(t, "postgres://platform", cfg.DatabaseURL)
	assert.Equal(t, "platform-secret", cfg.Auth.JWTSecret)
	assert.Equal(t, "rzp_test_key", cfg.Payment.KeyID)
	assert.Equal(t, "rzp_secret", cfg.Payment.KeySecret)
	assert.Equal(t, "0.0.0.0:9000", cfg.Addr)
	assert.Equal(t, ProviderRazorpay, cfg.Payment.Provider)
	assert.Equal(t, RateLimitConfig{Max: 100, Window: time.Minute}, cfg.RateLimit)
	assert.Equal(t, RateLimitConfig{Max: 10, Window: time.Minute}, cfg.AuthRateLimit)
	require.NoError(t, cfg.validate())
}

func TestApplyPlatformDefaults_KeepsExplicit(t *testing.T) {
	t.Setenv("DATABASE_URL", "postgres://platform")
	t.Setenv("PORT", "9000")

	cfg := Config{
		Addr:        "127.0.0.1:7000",
		DatabaseURL: "postgres://explicit",
		RateLimit:   RateLimitConfig{Max: 5, Window: time.Second},
	}
	cfg.applyPlatformDefaults()

	assert.Equal(t, "postgres://explicit", cfg.DatabaseURL)
	assert.Equal(t, "127.0.0.1:7000", cfg.Addr)
	assert.Equal(t, RateLimitConfig{Max: 5, Window: time.Second}, cfg.RateLimit)
}

func TestConfigValidate(t *testing.T) {
	valid := func() Config {
		return Config{
			DatabaseURL: "postgres://db",
			Auth:        AuthConfig{JWTSecret: "s"},
			Payment:     PaymentConfig{Provider: ProviderOffline},
		}
	}

	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr string
	}{
		{"valid offline", func(*Config) {}, ""},
		{"valid razorpay", func(c *Config) {
			c.Payment = PaymentConfig{Provider: ProviderRazorpay, KeyID: "id", KeySecret: "secret"}
		}, ""},
		{"no database", func(c *Config) { c.DatabaseURL = "" }, "database URL"},
		{"no secret", func(c *Config) { c.Auth.JWTSecret = "" }, "JWT secret"},
		{"razorpay without keys", func(c *Config) { c.Payment.Provider = ProviderRazorpay }, "razorpay key"},
		{"unknown provider", func(c *Config) { c.Payment.Provider = "stripe" }, "unknown payment provider"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := valid()
			tt.mutate(&cfg)
			err := cfg.validate()
			if tt.wantErr == "" {
				assert.NoError(t, err)
				return
			}
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}

func TestNewGateway_Offline(t *testing.T) {
	gw, err := newGateway(PaymentConfig{Provider: ProviderOffline, Currency: "USD"}, nil)
	require.NoError(t, err)
	assert.Equal(t, "offline", gw.Name())
}
