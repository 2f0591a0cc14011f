// internal/render/modbus/layout.go
package modbus

// HMI display block layout constants.
// These values define the panel contract and MUST NOT be configurable.

// ---- BLOCK GEOMETRY ----

// BlockSize is the fixed number of holding registers in the display block.
const BlockSize = 8

// ---- SLOT INDICES ----

// SlotDominant holds the dominant class code.
const SlotDominant = 0

// SlotConfidence holds the dominant confidence in hundredths of a percent.
const SlotConfidence = 1

// SlotHuman, SlotAnimal and SlotOther hold the bars in hundredths of a percent.
const SlotHuman = 2
const SlotAnimal = 3
const SlotOther = 4

// SlotLatency holds the inference time in milliseconds.
const SlotLatency = 5

// SlotSequence increments on every render so the panel can detect a stalled feed.
const SlotSequence = 6

// Slot 7 is reserved.
const SlotReserved = 7

// ---- LIMITS ----

// PercentScale converts percent to register units (hundredths).
const PercentScale = 100

// PercentMax is 100.00% in register units.
const PercentMax uint16 = 100 * PercentScale

// ---- DOMINANT CODES ----

// DominantNone is the boot state before anything was rendered.
const DominantNone uint16 = 0

// DominantHuman represents HUMAN.
const DominantHuman uint16 = 1

// DominantAnimal represents ANIMAL.
const DominantAnimal uint16 = 2

// DominantOther represents OTHER.
const DominantOther uint16 = 3
