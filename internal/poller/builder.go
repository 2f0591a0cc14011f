// internal/poller/builder.go
package poller

import (
	"fmt"
	"time"

	cfg "github.com/tamzrod/vision-dashboard/internal/config"
	"github.com/tamzrod/vision-dashboard/internal/poller/httpfeed"
	pmodbus "github.com/tamzrod/vision-dashboard/internal/poller/modbus"
)

// Build constructs a Poller and wires the status feed transport.
// Connections are opened lazily: a device that is still booting only costs
// failed ticks, never a failed start.
// Assumes config has already passed Validate and Normalize.
func Build(src cfg.SourceConfig, poll cfg.PollConfig) (*Poller, func() error, error) {
	timeout := time.Duration(src.TimeoutMs) * time.Millisecond

	var (
		fetcher Fetcher
		closer  func() error
	)

	switch src.Type {
	case cfg.SourceHTTP:
		c, err := httpfeed.New(httpfeed.Config{
			Endpoint: src.Endpoint,
			Timeout:  timeout,
		})
		if err != nil {
			return nil, nil, err
		}
		fetcher, closer = c, c.Close

	case cfg.SourceModbus:
		c, err := pmodbus.New(pmodbus.Config{
			Endpoint: src.Endpoint,
			UnitID:   src.UnitID,
			Address:  src.Address,
			Timeout:  timeout,
		})
		if err != nil {
			return nil, nil, err
		}
		fetcher, closer = c, c.Close

	default:
		return nil, nil, fmt.Errorf("poller: unsupported source type %q", src.Type)
	}

	p, err := New(
		Config{
			Interval: time.Duration(poll.IntervalMs) * time.Millisecond,
			Timeout:  timeout,
		},
		fetcher,
	)
	if err != nil {
		_ = closer()
		return nil, nil, err
	}

	return p, closer, nil
}
