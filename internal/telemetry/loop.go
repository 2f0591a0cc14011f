// internal/telemetry/loop.go
package telemetry

import (
	"context"
	"errors"
	"sync"

	"github.com/tamzrod/vision-dashboard/internal/logger"
	"github.com/tamzrod/vision-dashboard/internal/poller"
	"github.com/tamzrod/vision-dashboard/internal/render"
	"github.com/tamzrod/vision-dashboard/internal/status"
)

var ErrRunning = errors.New("telemetry: loop already running")

// Loop is the scheduled poll -> decide -> render task.
//
// The poller owns the ticker and the fetch. The loop owns the single
// consumer goroutine: every Decide and Render call happens there.
type Loop struct {
	poller   *poller.Poller
	renderer render.Renderer
	log      *logger.Logger

	mu     sync.Mutex
	cancel context.CancelFunc
	wg     sync.WaitGroup
}

func New(p *poller.Poller, r render.Renderer, log *logger.Logger) (*Loop, error) {
	if p == nil {
		return nil, errors.New("telemetry: poller required")
	}
	if r == nil {
		return nil, errors.New("telemetry: renderer required")
	}
	return &Loop{poller: p, renderer: r, log: log}, nil
}

// Start launches the schedule. The first tick fires one interval after Start.
func (l *Loop) Start(ctx context.Context) error {
	l.mu.Lock()
	defer l.mu.Unlock()

	if l.cancel != nil {
		return ErrRunning
	}

	runCtx, cancel := context.WithCancel(ctx)
	l.cancel = cancel

	out := make(chan poller.PollResult)

	l.wg.Add(2)
	go func() {
		defer l.wg.Done()
		defer close(out)
		l.poller.Run(runCtx, out)
	}()
	go func() {
		defer l.wg.Done()
		l.consume(out)
	}()

	if l.log != nil {
		l.log.Info("status polling started (interval=%s)", l.poller.Interval())
	}
	return nil
}

// Stop cancels the schedule and waits for the ticker, any in-flight fetch
// and the consumer to finish. Calling Stop on a stopped loop is a no-op.
func (l *Loop) Stop() {
	l.mu.Lock()
	defer l.mu.Unlock()

	if l.cancel == nil {
		return
	}

	l.cancel()
	l.wg.Wait()
	l.cancel = nil

	if l.log != nil {
		l.log.Info("status polling stopped")
	}
}

// Running reports whether Start has been called without a matching Stop.
func (l *Loop) Running() bool {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.cancel != nil
}

func (l *Loop) consume(in <-chan poller.PollResult) {
	for res := range in {
		l.apply(res)
	}
}

// apply handles one completed tick.
// A failed tick never reaches the renderer: the surface keeps its prior state.
func (l *Loop) apply(res poller.PollResult) {
	if res.Err != nil {
		if l.log != nil {
			l.log.Warning("status poll #%d failed: %v", res.Seq, res.Err)
		}
		return
	}

	l.renderer.Render(status.Decide(res.Sample))
}
