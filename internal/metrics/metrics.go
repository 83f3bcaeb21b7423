// Package metrics exposes the last cycle to node_exporter's textfile
// collector. The process exits after every cycle, so there is nothing to
// scrape; the file is rewritten each wake instead.
package metrics

import (
	"context"

	"codeberg.org/mutker/solartag/internal/cycle"
	"codeberg.org/mutker/solartag/internal/errors"
	"github.com/prometheus/client_golang/prometheus"
)

const namespace = "solartag"

var flowStates = []string{"exporting", "matching", "partial_import", "full_import"}

const ErrWriteTextfile = errors.ErrorCode("metrics_write_textfile_failed")

type exporter struct {
	path     string
	registry *prometheus.Registry

	started     prometheus.Gauge
	awake       prometheus.Gauge
	fetchFailed prometheus.Gauge
	sleep       prometheus.Gauge
	voltage     prometheus.Gauge
	level       prometheus.Gauge
	power       *prometheus.GaugeVec
	flow        *prometheus.GaugeVec
}

type noopExporter struct{}

// NewExporter writes the textfile to path on every Record. An empty path
// disables the exporter.
func NewExporter(path string) cycle.Recorder {
	if path == "" {
		return noopExporter{}
	}

	e := &exporter{
		path:     path,
		registry: prometheus.NewRegistry(),
		started: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "cycle_timestamp_seconds",
			Help:      "Unix time the last cycle started.",
		}),
		awake: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "awake_window",
			Help:      "1 if the last cycle was inside the awake window.",
		}),
		fetchFailed: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "fetch_failed",
			Help:      "1 if the last cycle could not update telemetry.",
		}),
		sleep: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "sleep_seconds",
			Help:      "Sleep scheduled by the last cycle.",
		}),
		voltage: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "battery_voltage_volts",
			Help:      "Battery voltage, rounded to one decimal.",
		}),
		level: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "battery_level",
			Help:      "Battery bucket: 0 full, 1 mid, 2 low, 3 critical.",
		}),
		power: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "power_kilowatts",
			Help:      "Site power from the last successful fetch.",
		}, []string{"source"}),
		flow: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "flow_state",
			Help:      "1 for the power-flow state of the last cycle.",
		}, []string{"state"}),
	}

	e.registry.MustRegister(e.started, e.awake, e.fetchFailed, e.sleep, e.voltage, e.level, e.power, e.flow)

	return e
}

func (e *exporter) Record(_ context.Context, entry *cycle.Entry) error {
	e.started.Set(float64(entry.Started.Unix()))
	e.awake.Set(boolToFloat(entry.AwakeWindow))
	e.fetchFailed.Set(boolToFloat(entry.Result != "success"))
	e.sleep.Set(float64(entry.SleepSeconds))
	e.voltage.Set(entry.Voltage)
	e.level.Set(float64(levelIndex(entry.Battery)))

	// Power and flow are only known after a successful fetch. Stale series
	// are removed so a failed cycle does not repeat old readings.
	e.power.Reset()
	e.flow.Reset()
	if entry.Flow != "" {
		e.power.WithLabelValues("consumed").Set(entry.ConsumedKw)
		e.power.WithLabelValues("generated").Set(entry.GeneratedKw)
		e.power.WithLabelValues("diff").Set(entry.DiffKw)
		for _, state := range flowStates {
			e.flow.WithLabelValues(state).Set(boolToFloat(state == entry.Flow))
		}
	}

	if err := prometheus.WriteToTextfile(e.path, e.registry); err != nil {
		return errors.New().Wrap(ErrWriteTextfile, err)
	}

	return nil
}

func (noopExporter) Record(_ context.Context, _ *cycle.Entry) error {
	return nil
}

func levelIndex(level string) int {
	switch level {
	case "full":
		return 0
	case "mid":
		return 1
	case "low":
		return 2
	default:
		return 3
	}
}

func boolToFloat(b bool) float64 {
	if b {
		return 1
	}
	return 0
}
