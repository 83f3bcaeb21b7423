package telemetry_test

import (
	"strings"
	"testing"

	"codeberg.org/mutker/solartag/internal/errors"
	"codeberg.org/mutker/solartag/internal/telemetry"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const sampleDocument = `{
	"consumed": 1234,
	"generated": 2000,
	"diff": 766,
	"sunrise": "6:12 AM",
	"sunset": "7:48 PM",
	"total": {"consumed": 10450, "generated": 18020, "exported": 9100},
	"t_stamp": "2024-06-01 13:05:42"
}`

func TestDecode(t *testing.T) {
	s, err := telemetry.Decode(strings.NewReader(sampleDocument))
	require.NoError(t, err)

	assert.InDelta(t, 1.234, s.ConsumedKw, 1e-9)
	assert.InDelta(t, 2.0, s.GeneratedKw, 1e-9)
	assert.InDelta(t, 0.766, s.DiffKw, 1e-9)
	assert.Equal(t, "6:12 AM", s.Sunrise)
	assert.Equal(t, "7:48 PM", s.Sunset)
	assert.InDelta(t, 10.45, s.TotalConsumedKwh, 1e-9)
	assert.InDelta(t, 18.02, s.TotalGeneratedKwh, 1e-9)
	assert.InDelta(t, 9.1, s.TotalExportedKwh, 1e-9)
	assert.Equal(t, "2024-06-01 13:05:42", s.Timestamp)
}

func TestDecodeTrustsDiff(t *testing.T) {
	doc := strings.Replace(sampleDocument, `"diff": 766`, `"diff": -50`, 1)

	s, err := telemetry.Decode(strings.NewReader(doc))
	require.NoError(t, err)
	assert.InDelta(t, -0.05, s.DiffKw, 1e-9)
}

func TestDecodeZeroReadingsArePresent(t *testing.T) {
	doc := `{"consumed":0,"generated":0,"diff":0,"sunrise":"","sunset":"",
		"total":{"consumed":0,"generated":0,"exported":0},"t_stamp":"2024-01-01 00:00:00"}`

	s, err := telemetry.Decode(strings.NewReader(doc))
	require.NoError(t, err)
	assert.Zero(t, s.DiffKw)
}

func TestDecodeErrors(t *testing.T) {
	tests := []struct {
		name    string
		doc     string
		missing string
	}{
		{"not json", `<html>`, ""},
		{"wrong type", strings.Replace(sampleDocument, `"consumed": 1234`, `"consumed": "1234"`, 1), ""},
		{"missing diff", strings.Replace(sampleDocument, `"diff": 766,`, ``, 1), "diff"},
		{"missing total", `{"consumed":1,"generated":1,"diff":0,"sunrise":"a","sunset":"b","t_stamp":"x y"}`, "total"},
		{"missing nested", strings.Replace(sampleDocument, `, "exported": 9100`, ``, 1), "total.exported"},
		{"empty object", `{}`, "t_stamp"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := telemetry.Decode(strings.NewReader(tt.doc))
			require.Error(t, err)
			assert.Equal(t, errors.ErrData, errors.CodeOf(err))
			if tt.missing != "" {
				assert.Contains(t, err.Error(), tt.missing)
			}
		})
	}
}

func TestDisplayTime(t *testing.T) {
	got, err := telemetry.Snapshot{Timestamp: "2024-06-01 13:05:42"}.DisplayTime()
	require.NoError(t, err)
	assert.Equal(t, "13:05:42", got)

	_, err = telemetry.Snapshot{Timestamp: "2024-06-01T13:05:42"}.DisplayTime()
	require.Error(t, err)
	assert.Equal(t, errors.ErrData, errors.CodeOf(err))
}
