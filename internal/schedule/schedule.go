// Package schedule sizes the sleep between wake cycles from the local hour.
package schedule

import "time"

const (
	// AwakeFrom and AwakeUntil bound the awake window, both inclusive.
	AwakeFrom  = 7
	AwakeUntil = 20

	// AwakeSleep is the poll interval during generation hours.
	AwakeSleep = 300
	// NightSleep carries the device through the night.
	NightSleep = 46800
)

// Decision is the duty-cycle decision for one wake.
type Decision struct {
	AwakeWindow  bool
	SleepSeconds int
}

// Decide returns the decision for a local hour in [0, 23].
func Decide(hour int) Decision {
	if hour >= AwakeFrom && hour <= AwakeUntil {
		return Decision{AwakeWindow: true, SleepSeconds: AwakeSleep}
	}

	return Decision{AwakeWindow: false, SleepSeconds: NightSleep}
}

// Fallback is used when the local hour cannot be resolved. It favours the
// long sleep so a failing time source cannot cause rapid wake loops.
func Fallback() Decision {
	return Decision{AwakeWindow: false, SleepSeconds: NightSleep}
}

// Sleep returns the decision's sleep as a duration.
func (d Decision) Sleep() time.Duration {
	return time.Duration(d.SleepSeconds) * time.Second
}
