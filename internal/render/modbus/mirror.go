// internal/render/modbus/mirror.go
package modbus

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/tamzrod/vision-dashboard/internal/logger"
	"github.com/tamzrod/vision-dashboard/internal/status"
)

// RegisterWriter is the exact contract the mirror uses.
type RegisterWriter interface {
	WriteRegisters(unitID uint8, addr uint16, regs []uint16) error
}

// Plan places the display block on the panel.
type Plan struct {
	UnitID   uint8
	BaseAddr uint16
}

// Mirror repeats the display state into an HMI holding-register block.
// It is a Renderer: failures are logged, never returned to the loop.
//
// Render only queues the state. Writes happen on the Run goroutine, so a
// panel that is slow or unreachable never holds up the telemetry loop.
type Mirror struct {
	plan Plan
	cli  RegisterWriter
	log  *logger.Logger

	pending chan status.DisplayState // capacity 1, latest state wins

	// owned by the Run goroutine
	needFull bool
	last     []uint16
	seq      uint16
}

func NewMirror(plan Plan, cli RegisterWriter, log *logger.Logger) *Mirror {
	return &Mirror{
		plan:     plan,
		cli:      cli,
		log:      log,
		pending:  make(chan status.DisplayState, 1),
		needFull: true, // full assert on first render
		last:     make([]uint16, BlockSize),
	}
}

// Render implements render.Renderer. It never blocks: a state still waiting
// for the writer is replaced by st.
func (m *Mirror) Render(st status.DisplayState) {
	for {
		select {
		case m.pending <- st:
			return
		default:
		}

		select {
		case <-m.pending:
		default:
		}
	}
}

// Run writes queued states until ctx is cancelled.
func (m *Mirror) Run(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			return
		case st := <-m.pending:
			if err := m.WriteState(st); err != nil && m.log != nil {
				m.log.Warning("%v", err)
			}
		}
	}
}

// WriteState delivers one display state into panel memory.
// On any write failure, the next call re-asserts the full block.
// Outside tests it is called from Run only.
func (m *Mirror) WriteState(st status.DisplayState) error {
	if m == nil || m.cli == nil {
		return errors.New("hmi mirror: disabled")
	}

	m.seq++
	regs := Encode(st, m.seq)

	// ------------------------------------------------------------
	// Full block write
	// ------------------------------------------------------------
	if m.needFull {
		if err := m.cli.WriteRegisters(m.plan.UnitID, m.plan.BaseAddr, regs); err != nil {
			m.needFull = true
			return fmt.Errorf("hmi mirror: full block write failed: %w", err)
		}

		m.needFull = false
		copy(m.last, regs)
		return nil
	}

	// ------------------------------------------------------------
	// Incremental: changed slots only
	// ------------------------------------------------------------
	var errs []string

	for slot, v := range regs {
		if m.last[slot] == v {
			continue
		}
		addr := m.plan.BaseAddr + uint16(slot)
		if err := m.cli.WriteRegisters(m.plan.UnitID, addr, []uint16{v}); err != nil {
			errs = append(errs, fmt.Sprintf("slot%d write failed: %v", slot, err))
			continue
		}
		m.last[slot] = v
	}

	if len(errs) > 0 {
		// Any partial failure introduces doubt: re-assert on next render.
		m.needFull = true
		return errors.New("hmi mirror: " + strings.Join(errs, " | "))
	}

	return nil
}
