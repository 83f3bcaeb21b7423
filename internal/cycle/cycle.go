// Package cycle runs one wake cycle: resolve the hour, fetch and classify
// telemetry, hand the frame to the display, size the sleep and arm the alarm.
package cycle

import (
	"context"
	"time"

	"codeberg.org/mutker/solartag/internal/alarm"
	"codeberg.org/mutker/solartag/internal/battery"
	"codeberg.org/mutker/solartag/internal/clock"
	"codeberg.org/mutker/solartag/internal/errors"
	"codeberg.org/mutker/solartag/internal/logger"
	"codeberg.org/mutker/solartag/internal/power"
	"codeberg.org/mutker/solartag/internal/render"
	"codeberg.org/mutker/solartag/internal/schedule"
	"codeberg.org/mutker/solartag/internal/telemetry"
	"github.com/google/uuid"
)

// LinkRetryDelay is how soon the device restarts after the network link
// could not be brought up.
const LinkRetryDelay = time.Second

// LinkRetry is the halt used when the link could not be brought up. The
// cycle never runs; the device restarts shortly and tries again.
func LinkRetry() Halt {
	return Halt{WakeAfter: LinkRetryDelay}
}

// Recorder receives the diagnostic entry of each cycle.
type Recorder interface {
	Record(ctx context.Context, entry *Entry) error
}

// Device holds the hardware and network collaborators for one boot. It is
// built once at process start and owned by the Orchestrator.
type Device struct {
	Clock     clock.Source
	Fetcher   telemetry.Fetcher
	Sensor    battery.Sensor
	Renderer  render.Renderer
	Alarm     alarm.Alarm
	Recorders []Recorder
	Log       logger.Logger
}

func (d *Device) validate() error {
	errFactory := errors.New()

	switch {
	case d.Clock == nil:
		return errFactory.WithData(errors.ErrInitDevice, "clock")
	case d.Fetcher == nil:
		return errFactory.WithData(errors.ErrInitDevice, "fetcher")
	case d.Sensor == nil:
		return errFactory.WithData(errors.ErrInitDevice, "battery sensor")
	case d.Renderer == nil:
		return errFactory.WithData(errors.ErrInitDevice, "renderer")
	case d.Alarm == nil:
		return errFactory.WithData(errors.ErrInitDevice, "alarm")
	}

	return nil
}

type Orchestrator struct {
	dev   Device
	log   logger.Logger
	newID func() string
	now   func() time.Time
}

// New creates an Orchestrator for dev.
func New(dev Device) (*Orchestrator, error) {
	if err := dev.validate(); err != nil {
		return nil, err
	}

	log := dev.Log
	if log == nil {
		log = logger.Default()
	}

	return &Orchestrator{
		dev:   dev,
		log:   log,
		newID: uuid.NewString,
		now:   time.Now,
	}, nil
}

// Run executes one cycle and returns its report. Run always arms the wake
// alarm and always returns a Halt, whatever failed along the way.
func (o *Orchestrator) Run(ctx context.Context) *Report {
	r := &Report{ID: o.newID(), Started: o.now()}

	hour, err := clock.Hour(ctx, o.dev.Clock)
	if err != nil {
		o.logError(err, "Failed to resolve local time")
	} else {
		r.Hour, r.HourKnown = hour, true
		o.log.Debug().
			Str("cycle", r.ID).
			Int("hour", hour).
			Bool("awake_window", schedule.Decide(hour).AwakeWindow).
			Msg("Local time resolved")
	}

	level, voltage := o.sampleBattery(ctx, r.ID)
	r.Outcome = o.attempt(ctx, level, voltage)
	if !r.Outcome.Result.OK() {
		o.logError(r.Outcome.Result.Err, "Telemetry update failed, keeping display content")
	}

	r.Decision = o.decide(ctx, r)
	r.Halt = Halt{WakeAfter: r.Decision.Sleep()}

	if err := o.dev.Alarm.Arm(ctx, r.Halt.WakeAfter); err != nil {
		o.logError(err, "Failed to arm wake alarm")
	}

	o.record(ctx, r)
	o.logReport(r)

	return r
}

// decide sizes the sleep from a fresh hour reading, falling back to the hour
// read at the start of the cycle and then to the long sleep.
func (o *Orchestrator) decide(ctx context.Context, r *Report) schedule.Decision {
	hour, err := clock.Hour(ctx, o.dev.Clock)
	switch {
	case err == nil:
		r.Hour, r.HourKnown = hour, true
		return schedule.Decide(hour)
	case r.HourKnown:
		o.log.Warn().Err(err).Int("hour", r.Hour).Msg("Time source failed, using hour from cycle start")
		return schedule.Decide(r.Hour)
	default:
		o.log.Warn().Err(err).Msg("Local hour unknown, scheduling long sleep")
		return schedule.Fallback()
	}
}

func (o *Orchestrator) sampleBattery(ctx context.Context, id string) (battery.Level, float64) {
	voltage, err := o.dev.Sensor.Voltage(ctx)
	if err != nil {
		o.log.Warn().Str("cycle", id).Err(err).Msg("Battery voltage unavailable, reporting critical")
		return battery.Critical, 0
	}

	o.log.Info().Str("cycle", id).Msgf("Battery voltage: %3.2fv", voltage)

	return battery.Bucket(voltage), voltage
}

// attempt is the error boundary around fetch, classify and render. Nothing
// inside it can stop the cycle from scheduling its next wake.
func (o *Orchestrator) attempt(ctx context.Context, level battery.Level, voltage float64) (out Outcome) {
	out = Outcome{Battery: level, Voltage: voltage}

	fail := func(kind Kind, err error) Outcome {
		return Outcome{
			Battery:     level,
			Voltage:     voltage,
			FetchFailed: true,
			Result:      Result{Kind: kind, Err: err},
		}
	}

	defer func() {
		if p := recover(); p != nil {
			out = fail(InternalError, errors.New().WithData(errors.ErrInternal, p))
		}
	}()

	snap, err := o.dev.Fetcher.Fetch(ctx)
	if err != nil {
		if errors.HasCode(err, errors.ErrData) {
			return fail(DataError, err)
		}
		return fail(FetchError, err)
	}

	flow := power.Classify(snap.DiffKw, snap.GeneratedKw)

	frame, err := render.NewFrame(snap, flow, level)
	if err != nil {
		return fail(DataError, err)
	}

	if err := o.dev.Renderer.Render(ctx, frame); err != nil {
		return fail(RenderError, err)
	}

	out.Flow = &flow
	out.Snapshot = &snap

	return out
}

func (o *Orchestrator) record(ctx context.Context, r *Report) {
	entry := r.Entry()
	for _, rec := range o.dev.Recorders {
		if err := rec.Record(ctx, entry); err != nil {
			o.logError(err, "Failed to record cycle")
		}
	}
}

func (o *Orchestrator) logError(err error, msg string) {
	var appErr errors.Error
	if errors.As(err, &appErr) {
		o.log.ErrorWithCode(appErr).Msg(msg)
		return
	}
	o.log.Error().Err(err).Msg(msg)
}

func (o *Orchestrator) logReport(r *Report) {
	ev := o.log.Info().
		Str("cycle", r.ID).
		Bool("awake_window", r.Decision.AwakeWindow).
		Str("battery", r.Outcome.Battery.String()).
		Bool("fetch_failed", r.Outcome.FetchFailed).
		Str("result", r.Outcome.Result.Kind.String()).
		Int("sleep_seconds", r.Decision.SleepSeconds)
	if r.HourKnown {
		ev = ev.Int("hour", r.Hour)
	}
	if r.Outcome.Flow != nil {
		ev = ev.Str("flow", r.Outcome.Flow.String())
	}
	ev.Msg("Cycle complete")
}
