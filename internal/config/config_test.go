package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	t.Setenv("WORKER_CONCURRENCY", "")
	t.Setenv("LLM_PROVIDER", "")

	cfg := Load()

	assert.Equal(t, ProviderGemini, cfg.LLM.Provider)
	assert.Equal(t, 3, cfg.Worker.Concurrency)
	assert.Equal(t, time.Second, cfg.Worker.RetryInitialDelay)
	assert.Equal(t, int64(10485760), cfg.Storage.MaxFileSize)
	assert.Equal(t, "batch_updates", cfg.RabbitMQ.Exchange)
}

func TestLoadOverrides(t *testing.T) {
	t.Setenv("WORKER_CONCURRENCY", "8")
	t.Setenv("RETRY_MAX_DELAY", "250ms")
	t.Setenv("QDRANT_ENABLED", "true")
	t.Setenv("MAX_BATCH_FILES", "not-a-number")

	cfg := Load()

	assert.Equal(t, 8, cfg.Worker.Concurrency)
	assert.Equal(t, 250*time.Millisecond, cfg.Worker.RetryMaxDelay)
	assert.True(t, cfg.Qdrant.Enabled)
	assert.Equal(t, 50, cfg.Storage.MaxBatchFiles)
}

func TestValidate(t *testing.T) {
	t.Setenv("LLM_PROVIDER", ProviderOpenRouter)
	t.Setenv("OPENROUTER_API_KEY", "")
	t.Setenv("QDRANT_ENABLED", "false")

	cfg := Load()
	require.Error(t, cfg.Validate())

	cfg.LLM.OpenRouterAPIKey = "sk-test"
	require.NoError(t, cfg.Validate())

	cfg.LLM.Provider = "unknown"
	assert.Error(t, cfg.Validate())
}

func TestGetDatabaseDSN(t *testing.T) {
	cfg := &Config{Database: DatabaseConfig{Host: "db", Port: "5432", User: "u", Password: "p", DBName: "n"}}
	assert.Equal(t, "host=db port=5432 user=u password=p dbname=n sslmode=disable", cfg.GetDatabaseDSN())
}
