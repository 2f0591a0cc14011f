// internal/poller/types.go
package poller

import (
	"context"
	"time"

	"github.com/tamzrod/vision-dashboard/internal/status"
)

// Fetcher abstracts the status feed.
// One call = one request. Transport only: no retries, no semantics.
type Fetcher interface {
	FetchStatus(ctx context.Context) (status.Sample, error)
}

// FetcherFunc adapts a plain function to Fetcher.
type FetcherFunc func(ctx context.Context) (status.Sample, error)

func (f FetcherFunc) FetchStatus(ctx context.Context) (status.Sample, error) { return f(ctx) }

// PollResult is what one fetch produced.
type PollResult struct {
	Seq    uint64    // issue order, starting at 1
	At     time.Time // completion time
	Sample status.Sample
	Err    error // non-nil means the tick must not render
}

// Stats is a point-in-time view of the poller counters.
type Stats struct {
	Ticks             uint64    `json:"ticks"`
	Skipped           uint64    `json:"skipped"`    // ticks that fired while a fetch was in flight
	Superseded        uint64    `json:"superseded"` // results replaced before the consumer took them
	Fetches           uint64    `json:"fetches"`
	Successes         uint64    `json:"successes"`
	TransportFailures uint64    `json:"transport_failures"`
	DecodeFailures    uint64    `json:"decode_failures"`
	LastError         string    `json:"last_error,omitempty"`
	LastErrorAt       time.Time `json:"last_error_at"`
	LastSuccessAt     time.Time `json:"last_success_at"`
}
