package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestLoadDefaults(t *testing.T) {
	cfg := Load()

	assert.Equal(t, "8080", cfg.Server.Port)
	assert.Equal(t, StoreMemory, cfg.Store.Backend)
	assert.Equal(t, "pos_", cfg.Store.Prefix)
	assert.Equal(t, "0.21", cfg.POS.DefaultTaxRate.String())
	assert.Equal(t, int64(1), cfg.POS.NodeID)
	assert.Equal(t, "localhost:6379", cfg.Redis.Addr())
	assert.True(t, cfg.Server.IsDevelopment())
}

func TestLoadFromEnvironment(t *testing.T) {
	t.Setenv("STORE_BACKEND", "Redis")
	t.Setenv("POS_DEFAULT_TAX_RATE", "0.105")
	t.Setenv("CORS_ALLOWED_ORIGINS", "https://a.example, https://b.example,")

	cfg := Load()

	assert.Equal(t, StoreRedis, cfg.Store.Backend)
	assert.Equal(t, "0.105", cfg.POS.DefaultTaxRate.String())
	assert.Equal(t, []string{"https://a.example", "https://b.example"}, cfg.CORS.AllowedOrigins)
}

func TestInvalidTaxRateFallsBack(t *testing.T) {
	t.Setenv("POS_DEFAULT_TAX_RATE", "lots")
	cfg := Load()
	assert.Equal(t, "0.21", cfg.POS.DefaultTaxRate.String())
}
