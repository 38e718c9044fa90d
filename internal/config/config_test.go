package config

import (
	"testing"
	"time"

	"gocompare/adapters/stats/hypothesis"
	"gocompare/internal/errors"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var configKeys = []string{
	"ALPHA", "NORMALITY_STRATEGY", "KS_THRESHOLD", "WORKERS", "CSV_DELIMITER", "XLSX_SHEET",
	"PORT", "GIN_MODE", "SHUTDOWN_TIMEOUT", "DATABASE_URL", "SAMPLES_TABLE", "SAMPLES_GROUP_COLUMN", "LOG_LEVEL",
}

func clearEnv(t *testing.T) {
	t.Helper()
	for _, key := range configKeys {
		t.Setenv(key, "")
	}
}

func TestLoad_Defaults(t *testing.T) {
	clearEnv(t)

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, Default(), cfg)
	assert.Equal(t, ';', cfg.Delimiter())

	ec := cfg.EngineConfig()
	assert.Equal(t, 0.05, ec.Alpha)
	assert.Equal(t, hypothesis.StrategyAuto, ec.NormalityStrategy)
	assert.Equal(t, 5000, ec.ShapiroWilkMaxN)
}

func TestLoad_FromEnvironment(t *testing.T) {
	clearEnv(t)
	t.Setenv("ALPHA", "0.01")
	t.Setenv("NORMALITY_STRATEGY", "kolmogorov_smirnov")
	t.Setenv("KS_THRESHOLD", "2000")
	t.Setenv("WORKERS", "8")
	t.Setenv("CSV_DELIMITER", ",")
	t.Setenv("PORT", "9090")
	t.Setenv("SHUTDOWN_TIMEOUT", "3s")
	t.Setenv("DATABASE_URL", "postgres://localhost/ab")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, 0.01, cfg.Stats.Alpha)
	assert.Equal(t, "kolmogorov_smirnov", cfg.Stats.NormalityStrategy)
	assert.Equal(t, 2000, cfg.Stats.KSThreshold)
	assert.Equal(t, 8, cfg.Stats.Workers)
	assert.Equal(t, ',', cfg.Delimiter())
	assert.Equal(t, "9090", cfg.Server.Port)
	assert.Equal(t, 3*time.Second, cfg.Server.ShutdownTimeout)
	assert.Equal(t, "postgres://localhost/ab", cfg.Database.URL)
}

func TestLoad_Invalid(t *testing.T) {
	tests := []struct {
		name  string
		key   string
		value string
	}{
		{"alpha not a number", "ALPHA", "abc"},
		{"alpha zero", "ALPHA", "0"},
		{"alpha one", "ALPHA", "1"},
		{"unknown strategy", "NORMALITY_STRATEGY", "anderson"},
		{"workers zero", "WORKERS", "0"},
		{"workers not int", "WORKERS", "many"},
		{"negative threshold", "KS_THRESHOLD", "-1"},
		{"long delimiter", "CSV_DELIMITER", ";;"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			clearEnv(t)
			t.Setenv(tt.key, tt.value)

			_, err := Load()
			require.Error(t, err)
			assert.Equal(t, errors.CodeConfigInvalid, errors.GetCode(err))
		})
	}
}
