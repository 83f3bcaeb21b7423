package cycle

import (
	"time"

	"codeberg.org/mutker/solartag/internal/battery"
	"codeberg.org/mutker/solartag/internal/errors"
	"codeberg.org/mutker/solartag/internal/power"
	"codeberg.org/mutker/solartag/internal/schedule"
	"codeberg.org/mutker/solartag/internal/telemetry"
)

// Kind classifies the result of the fetch, classify and render attempt.
type Kind int

const (
	Success Kind = iota
	FetchError
	DataError
	RenderError
	InternalError
)

func (k Kind) String() string {
	switch k {
	case Success:
		return "success"
	case FetchError:
		return "fetch_error"
	case DataError:
		return "data_error"
	case RenderError:
		return "render_error"
	default:
		return "internal_error"
	}
}

// Result is the value the error boundary produces. Err is nil on Success.
type Result struct {
	Kind Kind
	Err  error
}

func (r Result) OK() bool {
	return r.Kind == Success
}

// Outcome is what one cycle produced for the display. Flow and Snapshot are
// nil when the attempt failed; the display then keeps its prior content.
type Outcome struct {
	Flow        *power.State
	Battery     battery.Level
	Voltage     float64
	Snapshot    *telemetry.Snapshot
	FetchFailed bool
	Result      Result
}

// Halt is the terminal action of a cycle: power down and wake after WakeAfter.
type Halt struct {
	WakeAfter time.Duration
}

// Report describes a completed cycle.
type Report struct {
	ID        string
	Started   time.Time
	Hour      int
	HourKnown bool
	Outcome   Outcome
	Decision  schedule.Decision
	Halt      Halt
}

// Entry returns the diagnostic record of the cycle.
func (r *Report) Entry() *Entry {
	e := &Entry{
		ID:           r.ID,
		Started:      r.Started,
		Hour:         -1,
		AwakeWindow:  r.Decision.AwakeWindow,
		Result:       r.Outcome.Result.Kind.String(),
		Battery:      r.Outcome.Battery.String(),
		Voltage:      r.Outcome.Voltage,
		SleepSeconds: r.Decision.SleepSeconds,
	}
	if r.HourKnown {
		e.Hour = r.Hour
	}
	if err := r.Outcome.Result.Err; err != nil {
		e.ErrorCode = string(errors.CodeOf(err))
	}
	if r.Outcome.Flow != nil {
		e.Flow = r.Outcome.Flow.String()
	}
	if s := r.Outcome.Snapshot; s != nil {
		e.ConsumedKw = s.ConsumedKw
		e.GeneratedKw = s.GeneratedKw
		e.DiffKw = s.DiffKw
	}

	return e
}

// Entry is the flat diagnostic record of one cycle. Hour is -1 when the time
// source failed. Flow is empty and the power readings zero when the attempt
// failed.
type Entry struct {
	ID           string
	Started      time.Time
	Hour         int
	AwakeWindow  bool
	Result       string
	ErrorCode    string
	Flow         string
	Battery      string
	Voltage      float64
	ConsumedKw   float64
	GeneratedKw  float64
	DiffKw       float64
	SleepSeconds int
}
