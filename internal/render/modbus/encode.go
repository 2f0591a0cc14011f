// internal/render/modbus/encode.go
package modbus

import (
	"math"

	"github.com/tamzrod/vision-dashboard/internal/status"
)

// Encode converts a display state into a full display block.
// Layout is panel-locked.
// No IO. No side effects.
func Encode(st status.DisplayState, seq uint16) []uint16 {
	regs := make([]uint16, BlockSize)

	regs[SlotDominant] = dominantCode(st.Dominant)
	regs[SlotConfidence] = percentReg(st.Confidence)
	regs[SlotHuman] = percentReg(st.Bars.Human)
	regs[SlotAnimal] = percentReg(st.Bars.Animal)
	regs[SlotOther] = percentReg(st.Bars.Other)
	regs[SlotLatency] = saturate(st.LatencyMs, math.MaxUint16)
	regs[SlotSequence] = seq

	return regs
}

func dominantCode(l status.Label) uint16 {
	switch l {
	case status.LabelHuman:
		return DominantHuman
	case status.LabelAnimal:
		return DominantAnimal
	case status.LabelOther:
		return DominantOther
	default:
		return DominantNone
	}
}

// percentReg scales a percentage to hundredths, clamped to 0..10000.
func percentReg(v float64) uint16 {
	return saturate(v*PercentScale, float64(PercentMax))
}

// saturate rounds v and clamps it to 0..max. NaN maps to 0.
func saturate(v, max float64) uint16 {
	if math.IsNaN(v) || v <= 0 {
		return 0
	}
	v = math.Round(v)
	if v >= max {
		return uint16(max)
	}
	return uint16(v)
}
