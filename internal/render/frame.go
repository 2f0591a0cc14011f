// internal/render/frame.go
package render

import (
	"strconv"

	"github.com/tamzrod/vision-dashboard/internal/status"
)

// ---- ELEMENT IDS ----
// These are the ids of the page elements a Frame drives.

const (
	ElemMainLabel      = "mainLabel"
	ElemMainConfidence = "mainConfidence"
	ElemTime           = "time"
)

// ---- FIXED TEXT ----

const (
	TextHuman     = "HUMAN DETECTED"
	TextAnimal    = "ANIMAL DETECTED"
	TextOther     = "OTHERS"
	TextDetecting = "DETECTING..."

	ClassBase   = "main-label"
	ClassHuman  = "detected-human"
	ClassAnimal = "detected-animal"
	ClassOther  = "detected-other"

	ConfidenceSuffix = "% Confidence"
)

// Bar is one proportion indicator.
// Width drives the fill (clamped), Value is the text next to it (raw).
type Bar struct {
	Name  string `json:"name"`
	Width string `json:"width"`
	Value string `json:"value"`
}

// BarID returns the fill element id, e.g. "bar-human".
func (b Bar) BarID() string { return "bar-" + b.Name }

// ValueID returns the value text element id, e.g. "val-human".
func (b Bar) ValueID() string { return "val-" + b.Name }

// Frame is the text state of every named element on the dashboard.
type Frame struct {
	Label      string `json:"label"`
	LabelClass string `json:"label_class"`
	Confidence string `json:"confidence"`
	Bars       [3]Bar `json:"bars"`
	Latency    string `json:"latency"`
}

// InitialFrame is what the page shows before the first successful poll.
func InitialFrame() Frame {
	return Frame{
		Label:      TextDetecting,
		LabelClass: ClassBase,
		Confidence: "0" + ConfidenceSuffix,
		Bars: [3]Bar{
			{Name: "human", Width: "0%", Value: "0%"},
			{Name: "animal", Width: "0%", Value: "0%"},
			{Name: "other", Width: "0%", Value: "0%"},
		},
		Latency: "0",
	}
}

// Project maps a display state onto the page elements.
// No IO. No side effects.
func Project(st status.DisplayState) Frame {
	text, class := labelText(st.Dominant)

	return Frame{
		Label:      text,
		LabelClass: ClassBase + " " + class,
		Confidence: formatNumber(st.Confidence) + ConfidenceSuffix,
		Bars: [3]Bar{
			bar("human", st.Bars.Human),
			bar("animal", st.Bars.Animal),
			bar("other", st.Bars.Other),
		},
		Latency: formatNumber(st.LatencyMs),
	}
}

func labelText(l status.Label) (string, string) {
	switch l {
	case status.LabelHuman:
		return TextHuman, ClassHuman
	case status.LabelAnimal:
		return TextAnimal, ClassAnimal
	default:
		return TextOther, ClassOther
	}
}

func bar(name string, v float64) Bar {
	return Bar{
		Name:  name,
		Width: formatNumber(clampPercent(v)) + "%",
		Value: formatNumber(v) + "%",
	}
}

// clampPercent bounds a fill width to [0,100]. The value text is never clamped.
func clampPercent(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 100 {
		return 100
	}
	return v
}

// formatNumber prints the shortest decimal form: 90, 12.5, -3.
func formatNumber(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}
