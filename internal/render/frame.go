// Package render turns a classified snapshot into display text and hands it
// to the display.
package render

import (
	"fmt"

	"codeberg.org/mutker/solartag/internal/battery"
	"codeberg.org/mutker/solartag/internal/power"
	"codeberg.org/mutker/solartag/internal/telemetry"
)

// Anchor is a label position on the panel, in pixels.
type Anchor struct {
	X int `json:"x"`
	Y int `json:"y"`
}

var (
	gridAnchor         = Anchor{X: 142, Y: 74}
	gridAnchorNegative = Anchor{X: 136, Y: 74}
)

// Frame is everything the display needs for one telemetry update.
type Frame struct {
	Icon        string `json:"icon"`
	Flow        string `json:"flow"`
	BatteryTile int    `json:"battery_tile"`
	Battery     string `json:"battery"`

	Panel      string `json:"panel"`
	House      string `json:"house"`
	Grid       string `json:"grid"`
	GridAnchor Anchor `json:"grid_anchor"`

	Sunrise string `json:"sunrise"`
	Sunset  string `json:"sunset"`

	TotalConsumed  string `json:"total_consumed"`
	TotalGenerated string `json:"total_generated"`
	TotalExported  string `json:"total_exported"`
	Updated        string `json:"updated"`
}

// NewFrame formats s for display. It fails when the snapshot timestamp has no
// time-of-day part.
func NewFrame(s telemetry.Snapshot, flow power.State, level battery.Level) (Frame, error) {
	updated, err := s.DisplayTime()
	if err != nil {
		return Frame{}, err
	}

	anchor := gridAnchor
	if s.DiffKw < 0 {
		// leave room for the minus sign
		anchor = gridAnchorNegative
	}

	return Frame{
		Icon:           flow.Icon(),
		Flow:           flow.String(),
		BatteryTile:    level.Tile(),
		Battery:        level.String(),
		Panel:          Power(s.GeneratedKw),
		House:          Power(s.ConsumedKw),
		Grid:           Power(s.DiffKw),
		GridAnchor:     anchor,
		Sunrise:        s.Sunrise,
		Sunset:         s.Sunset,
		TotalConsumed:  Energy(s.TotalConsumedKwh),
		TotalGenerated: Energy(s.TotalGeneratedKwh),
		TotalExported:  Energy(s.TotalExportedKwh),
		Updated:        updated,
	}, nil
}

// Power formats a kW reading, e.g. "2.000kW".
func Power(kw float64) string {
	return fmt.Sprintf("%3.3fkW", kw)
}

// Energy formats a kWh total, e.g. "18.0kWh".
func Energy(kwh float64) string {
	return fmt.Sprintf("%3.1fkWh", kwh)
}
