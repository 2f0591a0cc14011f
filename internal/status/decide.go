// internal/status/decide.go
package status

// Label is the dominant classification shown on the dashboard.
type Label string

const (
	LabelHuman  Label = "HUMAN"
	LabelAnimal Label = "ANIMAL"
	LabelOther  Label = "OTHER"
)

// Bars carries the three proportion indicators verbatim from the sample.
type Bars struct {
	Human  float64 `json:"human"`
	Animal float64 `json:"animal"`
	Other  float64 `json:"other"`
}

// DisplayState is what the renderers are allowed to show.
// It is derived from exactly one Sample and carries no memory of earlier ones.
type DisplayState struct {
	Dominant   Label   `json:"dominant"`
	Confidence float64 `json:"confidence"`
	Bars       Bars    `json:"bars"`
	LatencyMs  float64 `json:"latency_ms"`
}

// Decide picks the dominant class for a sample.
// No IO. No side effects.
//
// HUMAN and ANIMAL win only when strictly greater than both other scores.
// Everything else, including every tie, resolves to OTHER with the other score,
// even when other is the smallest of the three.
func Decide(s Sample) DisplayState {
	st := DisplayState{
		Bars: Bars{
			Human:  s.Human,
			Animal: s.Animal,
			Other:  s.Other,
		},
		LatencyMs: s.TimeMs,
	}

	switch {
	case s.Human > s.Animal && s.Human > s.Other:
		st.Dominant = LabelHuman
		st.Confidence = s.Human
	case s.Animal > s.Human && s.Animal > s.Other:
		st.Dominant = LabelAnimal
		st.Confidence = s.Animal
	default:
		st.Dominant = LabelOther
		st.Confidence = s.Other
	}

	return st
}
