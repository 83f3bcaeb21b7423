package telemetry

import (
	"encoding/json"
	"io"
	"strings"

	"codeberg.org/mutker/solartag/internal/errors"
)

const wattsPerKilowatt = 1000

// Snapshot is one reading of the site's energy telemetry.
//
// DiffKw is taken from the source as-is; it is not checked against
// GeneratedKw - ConsumedKw.
type Snapshot struct {
	ConsumedKw        float64
	GeneratedKw       float64
	DiffKw            float64
	Sunrise           string
	Sunset            string
	TotalConsumedKwh  float64
	TotalGeneratedKwh float64
	TotalExportedKwh  float64
	Timestamp         string
}

// document mirrors the endpoint's JSON. Power is in watts and energy in
// watt-hours. Pointers distinguish a missing field from a zero reading.
type document struct {
	Consumed  *float64 `json:"consumed"`
	Generated *float64 `json:"generated"`
	Diff      *float64 `json:"diff"`
	Sunrise   *string  `json:"sunrise"`
	Sunset    *string  `json:"sunset"`
	Total     *struct {
		Consumed  *float64 `json:"consumed"`
		Generated *float64 `json:"generated"`
		Exported  *float64 `json:"exported"`
	} `json:"total"`
	TStamp *string `json:"t_stamp"`
}

// Decode reads a telemetry document and converts it to a Snapshot. Every
// field is required; a missing or mistyped field is an ErrData error.
func Decode(r io.Reader) (Snapshot, error) {
	errFactory := errors.New()

	var doc document
	if err := json.NewDecoder(r).Decode(&doc); err != nil {
		return Snapshot{}, errFactory.Wrap(errors.ErrData, err)
	}

	if missing := doc.missing(); len(missing) > 0 {
		return Snapshot{}, errFactory.WithData(errors.ErrData, "missing fields "+strings.Join(missing, ", "))
	}

	return Snapshot{
		ConsumedKw:        *doc.Consumed / wattsPerKilowatt,
		GeneratedKw:       *doc.Generated / wattsPerKilowatt,
		DiffKw:            *doc.Diff / wattsPerKilowatt,
		Sunrise:           *doc.Sunrise,
		Sunset:            *doc.Sunset,
		TotalConsumedKwh:  *doc.Total.Consumed / wattsPerKilowatt,
		TotalGeneratedKwh: *doc.Total.Generated / wattsPerKilowatt,
		TotalExportedKwh:  *doc.Total.Exported / wattsPerKilowatt,
		Timestamp:         *doc.TStamp,
	}, nil
}

func (d *document) missing() []string {
	var fields []string
	check := func(name string, present bool) {
		if !present {
			fields = append(fields, name)
		}
	}

	check("consumed", d.Consumed != nil)
	check("generated", d.Generated != nil)
	check("diff", d.Diff != nil)
	check("sunrise", d.Sunrise != nil)
	check("sunset", d.Sunset != nil)
	if d.Total == nil {
		check("total", false)
	} else {
		check("total.consumed", d.Total.Consumed != nil)
		check("total.generated", d.Total.Generated != nil)
		check("total.exported", d.Total.Exported != nil)
	}
	check("t_stamp", d.TStamp != nil)

	return fields
}

// DisplayTime returns the time-of-day part of the "YYYY-MM-DD HH:MM:SS"
// timestamp, that is everything after the first space.
func (s Snapshot) DisplayTime() (string, error) {
	_, clock, ok := strings.Cut(s.Timestamp, " ")
	if !ok {
		return "", errors.New().WithData(errors.ErrData, "t_stamp "+s.Timestamp)
	}

	return clock, nil
}
