package main

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"gocompare/adapters/stats/engine"
	"gocompare/app"
	"gocompare/domain/core"
	"gocompare/internal/metrics"
	"gocompare/internal/testkit"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// isolateEnv clears the variables config.Load reads so the flags decide
func isolateEnv(t *testing.T) {
	t.Helper()
	for _, key := range []string{"ALPHA", "NORMALITY_STRATEGY", "KS_THRESHOLD", "WORKERS", "CSV_DELIMITER", "XLSX_SHEET", "DATABASE_URL", "PORT"} {
		t.Setenv(key, "")
	}
	t.Setenv("LOG_LEVEL", "ERROR")
}

func writeGroups(t *testing.T) (string, string) {
	t.Helper()
	dir := t.TempDir()
	cfg := testkit.DefaultShoppingConfig()
	cfg.Days = 30
	control, test := testkit.NewShoppingDataGenerator(cfg).Generate()

	a := filepath.Join(dir, "control.csv")
	b := filepath.Join(dir, "test.csv")
	require.NoError(t, testkit.WriteCSV(a, ';', control))
	require.NoError(t, testkit.WriteCSV(b, ';', test))
	return a, b
}

func runCompareCmd(t *testing.T, args ...string) (string, error) {
	t.Helper()
	cmd := newCompareCmd()
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&out)
	cmd.SetArgs(args)
	err := cmd.Execute()
	return out.String(), err
}

func TestCompareCmd_JSONWithRunID(t *testing.T) {
	isolateEnv(t)
	a, b := writeGroups(t)
	runID := core.NewRunID()

	out, err := runCompareCmd(t, "--a", a, "--b", b,
		"--metric", "Conversion Rate", "--column", "Click",
		"--format", "json", "--run-id", runID.String())
	require.NoError(t, err)

	var run app.Run
	require.NoError(t, json.Unmarshal([]byte(out), &run))
	assert.Equal(t, runID, run.ID)
	require.Len(t, run.Metrics, 2)
	assert.Equal(t, "Click", run.Metrics[0].Key.String())
	assert.Equal(t, app.MetricColumn, run.Metrics[0].Kind)
	assert.Equal(t, "Conversion Rate", run.Metrics[1].Key.String())
	assert.Equal(t, app.MetricDerived, run.Metrics[1].Kind)
	assert.Equal(t, 30, run.Metrics[1].Report.DescriptiveA.Count)
}

func TestCompareCmd_DefaultsToBuiltinMetrics(t *testing.T) {
	isolateEnv(t)
	a, b := writeGroups(t)

	out, err := runCompareCmd(t, "--a", a, "--b", b)
	require.NoError(t, err)
	for _, def := range metrics.Builtin {
		assert.Contains(t, out, def.Name)
	}
}

func TestCompareCmd_WritesOutputFile(t *testing.T) {
	isolateEnv(t)
	a, b := writeGroups(t)
	report := filepath.Join(t.TempDir(), "report.html")

	_, err := runCompareCmd(t, "--a", a, "--b", b, "--metric", "conversion", "--format", "html", "-o", report)
	require.NoError(t, err)

	data, err := os.ReadFile(report)
	require.NoError(t, err)
	assert.Contains(t, string(data), "<html")
	assert.Contains(t, string(data), "Conversion")
}

func TestCompareCmd_Errors(t *testing.T) {
	isolateEnv(t)
	a, b := writeGroups(t)

	tests := []struct {
		name string
		args []string
		want string
	}{
		{"malformed run id", []string{"--a", a, "--b", b, "--run-id", "run-1"}, "not a UUID"},
		{"missing file flag", []string{"--a", a}, "--a and --b"},
		{"alpha out of range", []string{"--a", a, "--b", b, "--alpha", "1.5"}, "alpha"},
		{"unknown metric", []string{"--a", a, "--b", b, "--metric", "bounce rate"}, "unknown metric"},
		{"unknown format", []string{"--a", a, "--b", b, "--format", "pdf"}, "unknown format"},
		{"bad delimiter", []string{"--a", a, "--b", b, "--delimiter", ";;"}, "single character"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := runCompareCmd(t, tt.args...)
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.want)
		})
	}
}

func TestRunSimulate(t *testing.T) {
	var out bytes.Buffer
	require.NoError(t, runSimulate(&out, engine.DefaultConfig(), "normal", 30, 40, 7, 0))

	text := out.String()
	assert.Contains(t, text, "normality accepted (sample A):")
	assert.Contains(t, text, "null rejected:")
	assert.Contains(t, text, "trials=40")

	err := runSimulate(&out, engine.DefaultConfig(), "cauchy", 30, 10, 7, 0)
	assert.ErrorContains(t, err, "unknown distribution")
}

func TestRunSimulate_ShiftIsDetected(t *testing.T) {
	var out bytes.Buffer
	require.NoError(t, runSimulate(&out, engine.DefaultConfig(), "normal", 40, 30, 3, 3))
	assert.Contains(t, out.String(), "null rejected: 1.000")
}

func TestGenerateCmd(t *testing.T) {
	dir := t.TempDir()
	cmd := newGenerateCmd()
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetArgs([]string{"--out-dir", dir, "--days", "10"})
	require.NoError(t, cmd.Execute())

	for _, name := range []string{"control.csv", "test.csv"} {
		data, err := os.ReadFile(filepath.Join(dir, name))
		require.NoError(t, err)
		lines := strings.Split(strings.TrimSpace(string(data)), "\n")
		assert.Len(t, lines, 11)
		assert.Equal(t, "Date;Impression;Click;Page view;Purchase;Earning", lines[0])
	}
}

func TestMetricsCmd(t *testing.T) {
	cmd := newMetricsCmd()
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetArgs(nil)
	require.NoError(t, cmd.Execute())

	lines := strings.Split(strings.TrimSpace(out.String()), "\n")
	require.Len(t, lines, len(metrics.Builtin))
	assert.Equal(t, "Conversion=Purchase/Page view:2", lines[0])
}
