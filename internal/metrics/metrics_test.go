package metrics_test

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"codeberg.org/mutker/solartag/internal/cycle"
	"codeberg.org/mutker/solartag/internal/errors"
	"codeberg.org/mutker/solartag/internal/metrics"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func readTextfile(t *testing.T, path string) string {
	t.Helper()
	b, err := os.ReadFile(path)
	require.NoError(t, err)
	return string(b)
}

func TestExporterSuccess(t *testing.T) {
	path := filepath.Join(t.TempDir(), "solartag.prom")
	exp := metrics.NewExporter(path)

	err := exp.Record(context.Background(), &cycle.Entry{
		ID:           "x",
		Started:      time.Unix(1717236000, 0),
		AwakeWindow:  true,
		Result:       "success",
		Flow:         "exporting",
		Battery:      "low",
		Voltage:      3.8,
		ConsumedKw:   1.25,
		GeneratedKw:  2,
		DiffKw:       0.75,
		SleepSeconds: 300,
	})
	require.NoError(t, err)

	out := readTextfile(t, path)
	assert.Contains(t, out, "solartag_sleep_seconds 300")
	assert.Contains(t, out, "solartag_battery_voltage_volts 3.8")
	assert.Contains(t, out, "solartag_battery_level 2")
	assert.Contains(t, out, "solartag_awake_window 1")
	assert.Contains(t, out, "solartag_fetch_failed 0")
	assert.Contains(t, out, `solartag_power_kilowatts{source="generated"} 2`)
	assert.Contains(t, out, `solartag_flow_state{state="exporting"} 1`)
	assert.Contains(t, out, `solartag_flow_state{state="matching"} 0`)
}

func TestExporterFailedCycleDropsPower(t *testing.T) {
	path := filepath.Join(t.TempDir(), "solartag.prom")
	exp := metrics.NewExporter(path)
	ctx := context.Background()

	require.NoError(t, exp.Record(ctx, &cycle.Entry{Result: "success", Flow: "matching", Battery: "full", SleepSeconds: 300}))
	require.NoError(t, exp.Record(ctx, &cycle.Entry{Result: "fetch_error", Battery: "critical", SleepSeconds: 46800}))

	out := readTextfile(t, path)
	assert.Contains(t, out, "solartag_fetch_failed 1")
	assert.Contains(t, out, "solartag_battery_level 3")
	assert.Contains(t, out, "solartag_sleep_seconds 46800")
	assert.NotContains(t, out, "solartag_power_kilowatts")
	assert.NotContains(t, out, "solartag_flow_state")
}

func TestExporterWriteFailure(t *testing.T) {
	exp := metrics.NewExporter(filepath.Join(t.TempDir(), "missing", "solartag.prom"))

	err := exp.Record(context.Background(), &cycle.Entry{SleepSeconds: 300})
	require.Error(t, err)
	assert.Equal(t, metrics.ErrWriteTextfile, errors.CodeOf(err))
}

func TestExporterDisabled(t *testing.T) {
	require.NoError(t, metrics.NewExporter("").Record(context.Background(), &cycle.Entry{}))
}
