package cmd

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/qrave1/CallRelay/internal/domain/quality"
)

func writeSamples(t *testing.T, content string) string {
	t.Helper()

	path := filepath.Join(t.TempDir(), "samples.json")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))

	return path
}

func runReport(t *testing.T, args ...string) (string, error) {
	t.Helper()

	reportAsJSON = false

	var out bytes.Buffer
	rootCmd.SetOut(&out)
	rootCmd.SetErr(&out)
	rootCmd.SetArgs(append([]string{"report"}, args...))

	err := rootCmd.Execute()

	return out.String(), err
}

func TestReportCommand_PrintsSummary(t *testing.T) {
	path := writeSamples(t, `{
		"call_durations_seconds": [30],
		"packet_loss": [0],
		"recognition_results": [true],
		"recognition_latency_ms": [0]
	}`)

	out, err := runReport(t, path)
	require.NoError(t, err)

	assert.Contains(t, out, "Overall System Confidence: 100% (Excellent)")
	assert.Contains(t, out, "Network quality is excellent with minimal packet loss.")
}

func TestReportCommand_JSON(t *testing.T) {
	path := writeSamples(t, `{"call_durations_seconds": [30, 90]}`)

	out, err := runReport(t, "--json", path)
	require.NoError(t, err)

	var report quality.Report
	require.NoError(t, json.Unmarshal([]byte(out), &report))
	assert.Equal(t, 2, report.Metrics.CallCount)
	assert.Equal(t, 60.0, report.Metrics.AverageCallDurationSeconds)
}

func TestReportCommand_Errors(t *testing.T) {
	_, err := runReport(t, writeSamples(t, `{}`))
	require.ErrorIs(t, err, quality.ErrNoCallData)

	_, err = runReport(t, writeSamples(t, `{broken`))
	require.ErrorContains(t, err, "decode samples")

	_, err = runReport(t, filepath.Join(t.TempDir(), "missing.json"))
	require.ErrorContains(t, err, "read samples")

	_, err = runReport(t)
	require.Error(t, err)
}
