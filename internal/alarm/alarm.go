// Package alarm arms the hardware wake alarm that ends each cycle.
package alarm

import (
	"context"
	"os"
	"strconv"
	"time"

	"codeberg.org/mutker/solartag/internal/errors"
	"codeberg.org/mutker/solartag/internal/logger"
)

const DefaultWakealarmPath = "/sys/class/rtc/rtc0/wakealarm"

// Alarm schedules the next wake.
type Alarm interface {
	Arm(ctx context.Context, after time.Duration) error
}

type rtcAlarm struct {
	path string
}

// NewRTC arms a Linux RTC through its sysfs wakealarm attribute.
func NewRTC(path string) Alarm {
	if path == "" {
		path = DefaultWakealarmPath
	}

	return &rtcAlarm{path: path}
}

// Arm clears any pending alarm and sets a new one relative to now. The
// kernel accepts "+N" as N seconds from the current RTC time.
func (a *rtcAlarm) Arm(_ context.Context, after time.Duration) error {
	errFactory := errors.New()

	seconds := int64(after / time.Second)
	if seconds <= 0 {
		return errFactory.WithData(errors.ErrInvalidArgument, after.String())
	}

	if err := os.WriteFile(a.path, []byte("0"), 0o644); err != nil {
		return errFactory.Wrap(errors.ErrArmAlarm, err)
	}
	if err := os.WriteFile(a.path, []byte("+"+strconv.FormatInt(seconds, 10)), 0o644); err != nil {
		return errFactory.Wrap(errors.ErrArmAlarm, err)
	}

	logger.Debug().Str("path", a.path).Int64("seconds", seconds).Msg("RTC wake alarm armed")

	return nil
}

type noopAlarm struct{}

// NewNoop returns an alarm that only logs. The runner's loop mode does the
// waiting itself.
func NewNoop() Alarm {
	return noopAlarm{}
}

func (noopAlarm) Arm(_ context.Context, after time.Duration) error {
	logger.Debug().Dur("after", after).Msg("Wake alarm not armed, no RTC configured")
	return nil
}
