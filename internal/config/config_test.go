package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_Defaults(t *testing.T) {
	t.Setenv("APP_ENV", "dev")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, 168*time.Hour, cfg.JWTTTL)
	assert.Equal(t, "gbp", cfg.PaymentCurrency)
	assert.Equal(t, 24*time.Hour, cfg.ReminderWindow)
	assert.False(t, cfg.IsProdLike())
}

func TestLoad_EnvOverrides(t *testing.T) {
	t.Setenv("JWT_TTL", "2h")
	t.Setenv("PAYMENT_CURRENCY", "EUR")
	t.Setenv("CORS_ALLOWED_ORIGINS", "https://a.example, https://b.example")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, 2*time.Hour, cfg.JWTTTL)
	assert.Equal(t, "eur", cfg.PaymentCurrency)
	assert.Equal(t, []string{"https://a.example", "https://b.example"}, cfg.AllowedOrigins())
}

func TestLoad_ProdRequiresSecrets(t *testing.T) {
	t.Setenv("APP_ENV", "production")
	t.Setenv("JWT_SECRET", "")
	t.Setenv("STRIPE_SECRET_KEY", "")

	_, err := Load()
	assert.Error(t, err)
}

func TestValidateConfig_RejectsBadDurations(t *testing.T) {
	cfg := &Config{
		JWTTTL:          0,
		CatalogCacheTTL: time.Minute,
		ReminderWindow:  time.Hour,
		RateLimitPerMin: 10,
		PaymentCurrency: "gbp",
	}
	assert.Error(t, validateConfig(cfg))
}
