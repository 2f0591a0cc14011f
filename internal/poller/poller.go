// internal/poller/poller.go
package poller

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/tamzrod/vision-dashboard/internal/status"
)

// Config is the minimal runtime config the poller needs.
type Config struct {
	Interval time.Duration // tick cadence
	Timeout  time.Duration // per-fetch bound; 0 means the fetcher's own
}

// Poller is a dumb, clock-driven status reader.
type Poller struct {
	cfg     Config
	fetcher Fetcher
	now     func() time.Time

	mu    sync.Mutex
	seq   uint64
	stats Stats
}

// New creates a poller with immutable config.
func New(cfg Config, fetcher Fetcher) (*Poller, error) {
	if cfg.Interval <= 0 {
		return nil, errors.New("poller: interval must be > 0")
	}
	if cfg.Timeout < 0 {
		return nil, errors.New("poller: timeout must be >= 0")
	}
	if fetcher == nil {
		return nil, errors.New("poller: fetcher required")
	}
	return &Poller{cfg: cfg, fetcher: fetcher, now: time.Now}, nil
}

// Interval returns the configured cadence.
func (p *Poller) Interval() time.Duration {
	return p.cfg.Interval
}

// PollOnce performs exactly one fetch.
// On failure the sample is zeroed so nothing downstream can render it by mistake.
func (p *Poller) PollOnce(ctx context.Context) PollResult {
	p.mu.Lock()
	p.seq++
	seq := p.seq
	p.stats.Fetches++
	p.mu.Unlock()

	fctx := ctx
	if p.cfg.Timeout > 0 {
		var cancel context.CancelFunc
		fctx, cancel = context.WithTimeout(ctx, p.cfg.Timeout)
		defer cancel()
	}

	sample, err := p.fetcher.FetchStatus(fctx)

	res := PollResult{
		Seq: seq,
		At:  p.now(),
		Err: err,
	}
	if err == nil {
		res.Sample = sample
	}

	p.record(res)
	return res
}

func (p *Poller) record(res PollResult) {
	p.mu.Lock()
	defer p.mu.Unlock()

	if res.Err == nil {
		p.stats.Successes++
		p.stats.LastSuccessAt = res.At
		return
	}

	if errors.Is(res.Err, status.ErrMalformed) {
		p.stats.DecodeFailures++
	} else {
		p.stats.TransportFailures++
	}
	p.stats.LastError = res.Err.Error()
	p.stats.LastErrorAt = res.At
}

// Stats returns a copy of the counters.
func (p *Poller) Stats() Stats {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.stats
}
