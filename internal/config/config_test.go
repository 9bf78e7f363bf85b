package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewFromEnv_Defaults(t *testing.T) {
	cfg, err := NewFromEnv()
	require.NoError(t, err)

	assert.Equal(t, ":8080", cfg.HTTP.Addr)
	assert.Equal(t, "localhost", cfg.Database.Host)
	assert.Equal(t, "localhost:6379", cfg.Redis.Addr)
	assert.Equal(t, "translation_jobs", cfg.Queue.Name)
	assert.Equal(t, 2, cfg.Queue.WorkerCount)
	assert.Equal(t, []string{"en", "es", "de", "fr"}, cfg.Translate.TargetLanguages)
	assert.Equal(t, 7*24*time.Hour, cfg.Translate.CacheTTL)
	assert.Equal(t, 10*time.Minute, cfg.Translate.DedupTTL)
	assert.Equal(t, 120, cfg.AI.Timeout)
}

func TestNewFromEnv_Overrides(t *testing.T) {
	t.Setenv("HTTP_ADDR", ":9999")
	t.Setenv("TARGET_LANGUAGES", "es, pt ,it")
	t.Setenv("DEDUP_TTL", "5m")
	t.Setenv("AI_TIMEOUT", "60")
	t.Setenv("WORKER_COUNT", "4")

	cfg, err := NewFromEnv()
	require.NoError(t, err)

	assert.Equal(t, ":9999", cfg.HTTP.Addr)
	assert.Equal(t, []string{"es", "pt", "it"}, cfg.Translate.TargetLanguages)
	assert.Equal(t, 5*time.Minute, cfg.Translate.DedupTTL)
	assert.Equal(t, 60, cfg.AI.Timeout)
	assert.Equal(t, 4, cfg.Queue.WorkerCount)
}

func TestNewFromEnv_DurationAsSeconds(t *testing.T) {
	t.Setenv("EXTRACTOR_TIMEOUT", "30")

	cfg, err := NewFromEnv()
	require.NoError(t, err)
	assert.Equal(t, 30*time.Second, cfg.Extractor.Timeout)
}

func TestNewFromEnv_RejectsBadLanguage(t *testing.T) {
	t.Setenv("TARGET_LANGUAGES", "es,no-such-language-code-!!")

	_, err := NewFromEnv()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid target language")
}
