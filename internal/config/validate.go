// internal/config/validate.go
package config

import (
	"errors"
	"fmt"
	"net/url"
	"strings"
)

// maxRegisterAddr is the highest start address that still fits a block of n registers.
func maxRegisterAddr(n int) uint16 {
	return uint16(0xFFFF - (n - 1))
}

const (
	sourceRegisters = 4 // human, animal, other, time
	hmiRegisters    = 8 // dominant .. reserved
)

// Validate checks configuration correctness.
// It performs declarative validation only.
// It MUST NOT mutate configuration.
func Validate(cfg *Config) error {
	if cfg == nil {
		return errors.New("config: nil config")
	}

	// ------------------------------------------------------------
	// DASHBOARD
	// ------------------------------------------------------------

	if strings.TrimSpace(cfg.Dashboard.Listen) == "" {
		return errors.New("dashboard.listen is required")
	}
	if s := strings.TrimSpace(cfg.Dashboard.StreamURL); s != "" {
		if _, err := url.Parse(s); err != nil {
			return fmt.Errorf("dashboard.stream_url %q: %w", s, err)
		}
	}

	// ------------------------------------------------------------
	// STATUS SOURCE
	// ------------------------------------------------------------

	src := cfg.Source
	endpoint := strings.TrimSpace(src.Endpoint)
	if endpoint == "" {
		return errors.New("source.endpoint is required")
	}
	if src.TimeoutMs < 0 {
		return fmt.Errorf("source.timeout_ms must be >= 0, got %d", src.TimeoutMs)
	}

	switch sourceType(src.Type) {
	case SourceHTTP:
		if err := validateHTTPEndpoint(endpoint); err != nil {
			return fmt.Errorf("source.endpoint: %w", err)
		}

	case SourceModbus:
		if err := validateTCPEndpoint(endpoint); err != nil {
			return fmt.Errorf("source.endpoint: %w", err)
		}
		if src.Address > maxRegisterAddr(sourceRegisters) {
			return fmt.Errorf(
				"source.address %d: %d registers do not fit below 65535",
				src.Address,
				sourceRegisters,
			)
		}

	default:
		return fmt.Errorf("source.type must be %q or %q, got %q", SourceHTTP, SourceModbus, src.Type)
	}

	// ------------------------------------------------------------
	// POLL
	// ------------------------------------------------------------

	if cfg.Poll.IntervalMs <= 0 {
		return fmt.Errorf("poll.interval_ms must be > 0, got %d", cfg.Poll.IntervalMs)
	}

	// ------------------------------------------------------------
	// HMI MIRROR (OPT-IN)
	// ------------------------------------------------------------

	if h := cfg.HMI; h.Enabled {
		ep := strings.TrimSpace(h.Endpoint)
		if ep == "" {
			return errors.New("hmi.enabled is set but hmi.endpoint is empty")
		}
		if err := validateTCPEndpoint(ep); err != nil {
			return fmt.Errorf("hmi.endpoint: %w", err)
		}
		if h.TimeoutMs < 0 {
			return fmt.Errorf("hmi.timeout_ms must be >= 0, got %d", h.TimeoutMs)
		}
		if h.Address > maxRegisterAddr(hmiRegisters) {
			return fmt.Errorf(
				"hmi.address %d: %d registers do not fit below 65535",
				h.Address,
				hmiRegisters,
			)
		}
		if sourceType(src.Type) == SourceModbus && sameModbusBlock(src, h) {
			return fmt.Errorf(
				"hmi block overlaps the status source registers: endpoint=%s unit_id=%d",
				ep,
				h.UnitID,
			)
		}
	}

	// ------------------------------------------------------------
	// LOG
	// ------------------------------------------------------------

	if strings.TrimSpace(cfg.Log.Dir) == "" {
		return errors.New("log.dir is required")
	}
	if cfg.Log.MaxSizeMB < 0 || cfg.Log.MaxBackups < 0 || cfg.Log.MaxAgeDays < 0 {
		return errors.New("log rotation limits must be >= 0")
	}

	return nil
}

func sourceType(t string) string {
	return strings.ToLower(strings.TrimSpace(t))
}

// validateHTTPEndpoint accepts a full URL or a bare host[:port].
func validateHTTPEndpoint(ep string) error {
	if !strings.Contains(ep, "://") {
		ep = "http://" + ep
	}
	u, err := url.Parse(ep)
	if err != nil {
		return err
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return fmt.Errorf("unsupported scheme %q", u.Scheme)
	}
	if u.Host == "" {
		return fmt.Errorf("missing host in %q", ep)
	}
	return nil
}

// validateTCPEndpoint accepts host, host:port or tcp://host:port.
func validateTCPEndpoint(ep string) error {
	ep = strings.TrimPrefix(ep, "tcp://")
	if ep == "" || strings.Contains(ep, "/") {
		return fmt.Errorf("expected host[:port], got %q", ep)
	}
	return nil
}

// overlap check (inclusive), same device and unit only
func sameModbusBlock(src SourceConfig, h HMIConfig) bool {
	if tcpHostPort(src.Endpoint) != tcpHostPort(h.Endpoint) || src.UnitID != h.UnitID {
		return false
	}
	sStart, sEnd := int(src.Address), int(src.Address)+sourceRegisters-1
	hStart, hEnd := int(h.Address), int(h.Address)+hmiRegisters-1
	return !(hEnd < sStart || hStart > sEnd)
}
