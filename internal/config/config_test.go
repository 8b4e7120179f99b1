package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"kstest/internal/errors"
)

func TestDefaultIsValid(t *testing.T) {
	cfg := Default()
	require.NoError(t, cfg.Validate())
	assert.Equal(t, 0.95, cfg.Test.Confidence)
	assert.Equal(t, "both", cfg.Test.Strategy)
	assert.Equal(t, 100, cfg.Series.MaxTerms)
	assert.Equal(t, 1e-10, cfg.Series.Tolerance)
	assert.Equal(t, 65536, cfg.Test.ParallelSortThreshold)
	assert.Equal(t, 4, cfg.Batch.Concurrency)
	assert.Equal(t, "INFO", cfg.Log.Level)
}

func TestLoadFromEnvironment(t *testing.T) {
	t.Setenv("KS_CONFIDENCE", "0.99")
	t.Setenv("KS_STRATEGY", "Probability")
	t.Setenv("KS_SERIES_MAX_TERMS", "250")
	t.Setenv("KS_SERIES_TOLERANCE", "1e-12")
	t.Setenv("KS_PARALLEL_SORT_THRESHOLD", "1000")
	t.Setenv("KS_CROSS_CHECK", "true")
	t.Setenv("KS_BATCH_CONCURRENCY", "8")
	t.Setenv("KS_METRICS_FILE", "/tmp/ks.prom")
	t.Setenv("LOG_LEVEL", "debug")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, 0.99, cfg.Test.Confidence)
	assert.Equal(t, "probability", cfg.Test.Strategy)
	assert.Equal(t, 250, cfg.Series.MaxTerms)
	assert.Equal(t, 1e-12, cfg.Series.Tolerance)
	assert.Equal(t, 1000, cfg.Test.ParallelSortThreshold)
	assert.True(t, cfg.Test.CrossCheck)
	assert.Equal(t, 8, cfg.Batch.Concurrency)
	assert.Equal(t, "/tmp/ks.prom", cfg.Batch.MetricsFile)
	assert.Equal(t, "DEBUG", cfg.Log.Level)
}

func TestLoadRejectsInvalidValues(t *testing.T) {
	tests := []struct {
		key   string
		value string
	}{
		{"KS_CONFIDENCE", "1"},
		{"KS_CONFIDENCE", "high"},
		{"KS_STRATEGY", "bayes"},
		{"KS_SERIES_MAX_TERMS", "0"},
		{"KS_SERIES_TOLERANCE", "-1"},
		{"KS_CROSS_CHECK", "maybe"},
		{"KS_BATCH_CONCURRENCY", "0"},
		{"LOG_LEVEL", "LOUD"},
	}

	for _, tt := range tests {
		t.Run(tt.key+"="+tt.value, func(t *testing.T) {
			t.Setenv(tt.key, tt.value)
			_, err := Load()
			require.Error(t, err)
			assert.Equal(t, errors.CodeConfigInvalid, errors.GetCode(err))
		})
	}
}
