package clock

import "time"

// NewSystemAt returns a system source whose host clock reads fixed.
func NewSystemAt(loc *time.Location, fixed time.Time) Source {
	return &systemSource{loc: loc, now: func() time.Time { return fixed }}
}
