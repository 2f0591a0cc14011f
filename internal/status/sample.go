// internal/status/sample.go
package status

import (
	"encoding/json"
	"errors"
	"fmt"
)

// ErrMalformed marks a status payload that cannot be decoded at all.
// Individual bad fields are NOT errors; they decode to zero.
var ErrMalformed = errors.New("status: malformed payload")

// Sample is one status feed reading.
// It lives for exactly one tick: received, decided, rendered, discarded.
type Sample struct {
	Human  float64 `json:"human"`
	Animal float64 `json:"animal"`
	Other  float64 `json:"other"`
	TimeMs float64 `json:"time"`
}

// Decode parses a status feed payload.
//
// The payload must be a JSON object. Each of human/animal/other/time that is
// missing, null or not a JSON number is taken as 0.
func Decode(payload []byte) (Sample, error) {
	var fields map[string]json.RawMessage
	if err := json.Unmarshal(payload, &fields); err != nil {
		return Sample{}, fmt.Errorf("%w: %v", ErrMalformed, err)
	}
	if fields == nil {
		return Sample{}, fmt.Errorf("%w: null payload", ErrMalformed)
	}

	return Sample{
		Human:  number(fields["human"]),
		Animal: number(fields["animal"]),
		Other:  number(fields["other"]),
		TimeMs: number(fields["time"]),
	}, nil
}

// number returns the field as float64, or 0 for anything that is not a JSON number.
func number(raw json.RawMessage) float64 {
	if len(raw) == 0 {
		return 0
	}
	var v float64
	if err := json.Unmarshal(raw, &v); err != nil {
		return 0
	}
	return v
}
