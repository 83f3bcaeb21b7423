package battery_test

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"codeberg.org/mutker/solartag/internal/battery"
	"codeberg.org/mutker/solartag/internal/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBucketBoundaries(t *testing.T) {
	tests := []struct {
		voltage float64
		want    battery.Level
	}{
		{4.2, battery.Full},
		{4.1, battery.Full},
		{4.0, battery.Mid},
		{3.9, battery.Mid},
		{3.89, battery.Low},
		{3.85, battery.Low},
		{3.8, battery.Low},
		{3.79, battery.Critical},
		{3.0, battery.Critical},
		{0, battery.Critical},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, battery.Bucket(tt.voltage), "voltage %v", tt.voltage)
	}
}

func TestRoundThenBucket(t *testing.T) {
	assert.Equal(t, 3.9, battery.Round(3.89))
	assert.Equal(t, battery.Mid, battery.Bucket(battery.Round(3.89)))

	assert.Equal(t, 4.0, battery.Round(3.96))
	assert.Equal(t, battery.Mid, battery.Bucket(battery.Round(3.96)))

	assert.Equal(t, 4.1, battery.Round(4.05001))
	assert.Equal(t, battery.Full, battery.Bucket(battery.Round(4.05001)))

	assert.Equal(t, 3.7, battery.Round(3.74))
	assert.Equal(t, battery.Critical, battery.Bucket(battery.Round(3.74)))
}

func TestBucketIsPure(t *testing.T) {
	for _, v := range []float64{4.1, 4.0, 3.9, 3.8, 3.7} {
		assert.Equal(t, battery.Bucket(v), battery.Bucket(v))
	}
}

func TestLevelTile(t *testing.T) {
	assert.Equal(t, 0, battery.Full.Tile())
	assert.Equal(t, 1, battery.Mid.Tile())
	assert.Equal(t, 2, battery.Low.Tile())
	assert.Equal(t, 3, battery.Critical.Tile())
	assert.Equal(t, "critical", battery.Critical.String())
}

func writeVoltage(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "voltage_now")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}

func TestSysfsSensor(t *testing.T) {
	s := battery.NewSysfsSensor(writeVoltage(t, "3894000\n"))

	v, err := s.Voltage(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 3.9, v)
}

func TestSysfsSensorErrors(t *testing.T) {
	_, err := battery.NewSysfsSensor(filepath.Join(t.TempDir(), "missing")).Voltage(context.Background())
	require.Error(t, err)
	assert.True(t, errors.HasCode(err, battery.ErrSensorRead))

	_, err = battery.NewSysfsSensor(writeVoltage(t, "n/a")).Voltage(context.Background())
	require.Error(t, err)
	assert.True(t, errors.HasCode(err, battery.ErrSensorInvalid))

	_, err = battery.NewSysfsSensor(writeVoltage(t, "0")).Voltage(context.Background())
	require.Error(t, err)
	assert.True(t, errors.HasCode(err, battery.ErrSensorInvalid))
}

func TestFixedSensor(t *testing.T) {
	v, err := battery.NewFixedSensor(3.85).Voltage(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 3.85, v)
}
