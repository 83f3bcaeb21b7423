// Package battery buckets the device battery voltage into coarse charge
// levels and reads the voltage from the host.
package battery

import "math"

// Level is a coarse battery charge bucket. Its value is the tile index into
// the battery icon sprite sheet.
type Level int

const (
	Full Level = iota
	Mid
	Low
	Critical
)

const (
	fullAbove = 4.0
	midFrom   = 3.9
	lowFrom   = 3.8
)

// Bucket maps a voltage to a Level. The voltage must already be rounded to
// one decimal place (see Round); Bucket does not round.
func Bucket(voltage float64) Level {
	switch {
	case voltage > fullAbove:
		return Full
	case voltage >= midFrom:
		return Mid
	case voltage >= lowFrom:
		return Low
	default:
		return Critical
	}
}

// Round rounds a raw reading to one decimal place. Readings are rounded
// before bucketing, so 3.89 lands in Mid.
func Round(voltage float64) float64 {
	return math.Round(voltage*10) / 10
}

// Tile returns the sprite sheet tile index, 0 through 3.
func (l Level) Tile() int {
	return int(l)
}

func (l Level) String() string {
	switch l {
	case Full:
		return "full"
	case Mid:
		return "mid"
	case Low:
		return "low"
	case Critical:
		return "critical"
	default:
		return "unknown"
	}
}
