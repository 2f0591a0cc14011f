// internal/poller/modbus/client.go
package modbus

import (
	"context"
	"encoding/binary"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/goburrow/modbus"

	"github.com/tamzrod/vision-dashboard/internal/status"
)

// ---- STATUS REGISTER GEOMETRY ----
// The device exposes its last inference as 4 consecutive holding registers.

const (
	RegHuman  = 0 // hundredths of a percent
	RegAnimal = 1 // hundredths of a percent
	RegOther  = 2 // hundredths of a percent
	RegTime   = 3 // milliseconds

	RegisterCount = 4
)

// percentScale converts register units back to percent.
const percentScale = 100.0

// Client implements poller.Fetcher using Modbus TCP.
// This adapter is geometry-only: it reads registers and unpacks raw values.
type Client struct {
	mu      sync.Mutex
	handler *modbus.TCPClientHandler
	client  modbus.Client
	addr    uint16
}

// Config is minimal transport config.
type Config struct {
	Endpoint string
	UnitID   uint8
	Address  uint16
	Timeout  time.Duration
}

// New creates a client. The TCP connection is dialled on first read and
// re-dialled after any transport failure.
func New(cfg Config) (*Client, error) {
	if cfg.Endpoint == "" {
		return nil, errors.New("modbus feed: endpoint required")
	}

	h := modbus.NewTCPClientHandler(cfg.Endpoint)
	h.Timeout = cfg.Timeout
	h.SlaveId = cfg.UnitID

	return &Client{
		handler: h,
		client:  modbus.NewClient(h),
		addr:    cfg.Address,
	}, nil
}

// Close closes the TCP connection.
func (c *Client) Close() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.handler.Close()
}

// FetchStatus reads one status block.
// The goburrow client is not context-aware; the handler timeout bounds the
// request and ctx is only checked before it starts.
func (c *Client) FetchStatus(ctx context.Context) (status.Sample, error) {
	if err := ctx.Err(); err != nil {
		return status.Sample{}, err
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	raw, err := c.client.ReadHoldingRegisters(c.addr, RegisterCount)
	if err != nil {
		// Transport death: drop the connection, the next tick re-dials.
		_ = c.handler.Close()
		return status.Sample{}, fmt.Errorf("modbus feed: read: %w", err)
	}

	return decodeRegisters(raw)
}

// ---- helpers (pure geometry) ----

func decodeRegisters(raw []byte) (status.Sample, error) {
	if len(raw) < RegisterCount*2 {
		return status.Sample{}, fmt.Errorf(
			"%w: expected %d register bytes, got %d",
			status.ErrMalformed,
			RegisterCount*2,
			len(raw),
		)
	}

	reg := func(i int) float64 {
		return float64(binary.BigEndian.Uint16(raw[2*i:]))
	}

	return status.Sample{
		Human:  reg(RegHuman) / percentScale,
		Animal: reg(RegAnimal) / percentScale,
		Other:  reg(RegOther) / percentScale,
		TimeMs: reg(RegTime),
	}, nil
}
