package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad(t *testing.T) {
	t.Run("defaults without a config file", func(t *testing.T) {
		cfg, err := load(t.TempDir())
		require.NoError(t, err)

		assert.Equal(t, "8080", cfg.Port)
		assert.Equal(t, "2022-04", cfg.ShopifyAPIVersion)
		assert.Equal(t, 5, cfg.ShopifyMaxRetries)
		assert.Equal(t, "redis", cfg.EventBus)
		assert.Equal(t, 24*time.Hour, cfg.DedupeTTL())
		assert.Equal(t, 30*time.Second, cfg.AttemptTimeout())
		assert.Empty(t, cfg.Brokers())
	})

	t.Run("config file values", func(t *testing.T) {
		dir := t.TempDir()
		content := `
PORT = "9090"
SHOPIFY_API_VERSION = "2024-01"
KAFKA_BROKERS = "kafka-1:9092, kafka-2:9092"
`
		require.NoError(t, os.WriteFile(filepath.Join(dir, ".env"), []byte(content), 0o600))

		cfg, err := load(dir)
		require.NoError(t, err)

		assert.Equal(t, "9090", cfg.Port)
		assert.Equal(t, "2024-01", cfg.ShopifyAPIVersion)
		assert.Equal(t, []string{"kafka-1:9092", "kafka-2:9092"}, cfg.Brokers())
	})

	t.Run("environment overrides", func(t *testing.T) {
		t.Setenv("SHOPIFY_MAX_RETRIES", "2")
		t.Setenv("EVENT_BUS", "kafka")

		cfg, err := load(t.TempDir())
		require.NoError(t, err)

		assert.Equal(t, 2, cfg.ShopifyMaxRetries)
		assert.Equal(t, "kafka", cfg.EventBus)
	})

	t.Run("error - negative retries", func(t *testing.T) {
		t.Setenv("SHOPIFY_MAX_RETRIES", "-1")

		_, err := load(t.TempDir())
		assert.Error(t, err)
	})

	t.Run("error - malformed config file", func(t *testing.T) {
		dir := t.TempDir()
		require.NoError(t, os.WriteFile(filepath.Join(dir, ".env"), []byte("PORT = = ="), 0o600))

		_, err := load(dir)
		require.Error(t, err)
		assert.Contains(t, err.Error(), "reading config file")
	})
}
