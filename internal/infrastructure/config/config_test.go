package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_Defaults(t *testing.T) {
	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "houseway", cfg.App.Name)
	assert.Equal(t, "development", cfg.App.Env)
	assert.Equal(t, "info", cfg.Log.Level)
	assert.Equal(t, "console", cfg.Log.Format)
	assert.Equal(t, "stdout", cfg.Log.Output)
	assert.Equal(t, "USD", cfg.Billing.Currency)
	assert.Equal(t, "INV", cfg.Billing.NumberPrefix)
	assert.Equal(t, 30, cfg.Billing.PaymentTermsDays)
	assert.Equal(t, 7, cfg.Billing.RecurrenceHorizonDays)
	assert.False(t, cfg.IsProduction())
}

func TestLoad_EnvironmentOverrides(t *testing.T) {
	t.Setenv("HOUSEWAY_APP_ENV", "production")
	t.Setenv("HOUSEWAY_LOG_LEVEL", "warn")
	t.Setenv("HOUSEWAY_BILLING_NUMBER_PREFIX", "HW")
	t.Setenv("HOUSEWAY_BILLING_PAYMENT_TERMS_DAYS", "14")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "production", cfg.App.Env)
	assert.True(t, cfg.IsProduction())
	assert.Equal(t, "warn", cfg.Log.Level)
	assert.Equal(t, "json", cfg.Log.Format, "production defaults to json logs")
	assert.Equal(t, "HW", cfg.Billing.NumberPrefix)
	assert.Equal(t, 14, cfg.Billing.PaymentTermsDays)
}

func TestLoad_Validation(t *testing.T) {
	t.Run("rejects bad log level", func(t *testing.T) {
		t.Setenv("HOUSEWAY_LOG_LEVEL", "verbose")
		_, err := Load()
		assert.Error(t, err)
	})

	t.Run("rejects bad currency", func(t *testing.T) {
		t.Setenv("HOUSEWAY_BILLING_CURRENCY", "DOLLARS")
		_, err := Load()
		assert.Error(t, err)
	})
}
