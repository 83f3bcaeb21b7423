package battery

import (
	"context"
	"os"
	"strconv"
	"strings"

	"codeberg.org/mutker/solartag/internal/errors"
)

const (
	ErrSensorRead    = errors.ErrorCode("battery_sensor_read_failed")
	ErrSensorInvalid = errors.ErrorCode("battery_sensor_invalid_value")

	microvoltsPerVolt = 1e6
)

// Sensor samples the battery voltage. Readings are returned rounded to one
// decimal place.
type Sensor interface {
	Voltage(ctx context.Context) (float64, error)
}

type sysfsSensor struct {
	path string
}

// NewSysfsSensor reads a power_supply voltage_now attribute, which reports
// microvolts.
func NewSysfsSensor(path string) Sensor {
	return &sysfsSensor{path: path}
}

func (s *sysfsSensor) Voltage(_ context.Context) (float64, error) {
	errFactory := errors.New()

	raw, err := os.ReadFile(s.path)
	if err != nil {
		return 0, errFactory.Wrap(ErrSensorRead, err)
	}

	uv, err := strconv.ParseInt(strings.TrimSpace(string(raw)), 10, 64)
	if err != nil {
		return 0, errFactory.Wrap(ErrSensorInvalid, err)
	}
	if uv <= 0 {
		return 0, errFactory.WithData(ErrSensorInvalid, uv)
	}

	return Round(float64(uv) / microvoltsPerVolt), nil
}

type fixedSensor struct {
	voltage float64
}

// NewFixedSensor always reports voltage. It is used on hosts without a
// battery, where the configured value stands in for the reading.
func NewFixedSensor(voltage float64) Sensor {
	return &fixedSensor{voltage: voltage}
}

func (s *fixedSensor) Voltage(_ context.Context) (float64, error) {
	return s.voltage, nil
}
