// Package power classifies the instantaneous power flow between on-site
// generation, house demand and the grid.
package power

// State is the discrete power-flow classification of a telemetry snapshot.
type State int

const (
	// Exporting: generation covers demand and the surplus feeds the grid.
	Exporting State = iota
	// Matching: generation and demand are equal.
	Matching
	// PartialImport: generation offsets part of demand, the rest is imported.
	PartialImport
	// FullImport: no generation, all demand is imported.
	FullImport
)

// Classify maps a generated-minus-consumed difference and the generated power
// (both kW) to a State. Rules are evaluated in order and the first match wins.
//
// The zero-difference test precedes the generation test, so a reading with no
// generation and no load is Matching. The comparison against zero is exact.
func Classify(diffKw, generatedKw float64) State {
	switch {
	case diffKw > 0 && generatedKw > 0:
		return Exporting
	case diffKw == 0:
		return Matching
	case diffKw < 0 && generatedKw > 0:
		return PartialImport
	default:
		return FullImport
	}
}

// Icon returns the name of the display asset for the state.
func (s State) Icon() string {
	switch s {
	case Exporting:
		return "oversupply"
	case Matching:
		return "matching"
	case PartialImport:
		return "partial"
	default:
		return "importing"
	}
}

func (s State) String() string {
	switch s {
	case Exporting:
		return "exporting"
	case Matching:
		return "matching"
	case PartialImport:
		return "partial_import"
	case FullImport:
		return "full_import"
	default:
		return "unknown"
	}
}
