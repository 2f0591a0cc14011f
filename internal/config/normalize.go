// internal/config/normalize.go
package config

import (
	"net"
	"net/url"
	"strings"
)

const defaultModbusPort = "502"

// Normalize applies post-validation normalization.
// It is allowed to mutate configuration.
// It MUST be called only after Validate().
func Normalize(cfg *Config) {
	if cfg == nil {
		return
	}

	cfg.Dashboard.Listen = strings.TrimSpace(cfg.Dashboard.Listen)
	cfg.Dashboard.Title = strings.TrimSpace(cfg.Dashboard.Title)
	cfg.Dashboard.StreamURL = strings.TrimSpace(cfg.Dashboard.StreamURL)
	if cfg.Dashboard.Title == "" {
		cfg.Dashboard.Title = DefaultTitle
	}

	// ------------------------------------------------------------
	// STATUS SOURCE
	// ------------------------------------------------------------

	src := &cfg.Source
	src.Type = sourceType(src.Type)
	if src.TimeoutMs == 0 {
		src.TimeoutMs = DefaultTimeoutMs
	}

	switch src.Type {
	case SourceHTTP:
		src.Endpoint = statusURL(src.Endpoint)
	case SourceModbus:
		src.Endpoint = tcpHostPort(src.Endpoint)
	}

	// ------------------------------------------------------------
	// HMI MIRROR (OPT-IN)
	// ------------------------------------------------------------

	if cfg.HMI.Enabled {
		cfg.HMI.Endpoint = tcpHostPort(cfg.HMI.Endpoint)
		if cfg.HMI.TimeoutMs == 0 {
			cfg.HMI.TimeoutMs = DefaultTimeoutMs
		}
	}

	cfg.Log.Dir = strings.TrimSpace(cfg.Log.Dir)
}

// statusURL turns "192.168.4.1" into "http://192.168.4.1/status".
// An explicit path is kept as given.
func statusURL(ep string) string {
	ep = strings.TrimSpace(ep)
	if !strings.Contains(ep, "://") {
		ep = "http://" + ep
	}

	u, err := url.Parse(ep)
	if err != nil {
		return ep
	}
	if u.Path == "" || u.Path == "/" {
		u.Path = DefaultStatusPath
	}
	return u.String()
}

// tcpHostPort strips an optional tcp:// prefix and adds the Modbus port when missing.
func tcpHostPort(ep string) string {
	ep = strings.TrimPrefix(strings.TrimSpace(ep), "tcp://")
	if ep == "" {
		return ep
	}
	if _, _, err := net.SplitHostPort(ep); err != nil {
		return net.JoinHostPort(ep, defaultModbusPort)
	}
	return ep
}
