// internal/poller/runner.go
package poller

import (
	"context"
	"sync"
	"time"
)

// Run starts the ticker loop and emits PollResult on the provided channel.
//
// The ticker never waits for a fetch or for the consumer. At most one fetch
// is in flight: a tick that fires while the previous fetch is outstanding is
// skipped and counted. At most one result waits for the consumer; a newer
// result replaces it and the replacement is counted. Results therefore reach
// out in issue order.
//
// Run returns after ctx is cancelled and the in-flight fetch (if any) has
// returned. The ticker is stopped on return.
func (p *Poller) Run(ctx context.Context, out chan<- PollResult) {
	ticker := time.NewTicker(p.cfg.Interval)
	defer ticker.Stop()

	var wg sync.WaitGroup
	defer wg.Wait()

	// Capacity 1 and one fetch in flight: the fetch goroutine never blocks.
	done := make(chan PollResult, 1)
	inFlight := false

	var (
		pending PollResult
		deliver chan<- PollResult // nil while nothing is pending
	)

	for {
		select {
		case <-ctx.Done():
			return

		case <-ticker.C:
			p.countTick(inFlight)
			if inFlight {
				continue
			}
			inFlight = true

			wg.Add(1)
			go func() {
				defer wg.Done()
				done <- p.PollOnce(ctx)
			}()

		case res := <-done:
			inFlight = false
			if deliver != nil {
				p.countSuperseded()
			}
			pending, deliver = res, out

		case deliver <- pending:
			pending, deliver = PollResult{}, nil
		}
	}
}

func (p *Poller) countTick(skipped bool) {
	p.mu.Lock()
	defer p.mu.Unlock()

	p.stats.Ticks++
	if skipped {
		p.stats.Skipped++
	}
}

func (p *Poller) countSuperseded() {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.stats.Superseded++
}
