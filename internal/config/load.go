// internal/config/load.go
package config

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// Load reads the YAML file at path on top of Default(), then applies
// environment overrides. A .env file in the working directory is loaded
// first when present; variables already set in the process win.
func Load(path string) (*Config, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("config: read %s: %w", path, err)
	}

	cfg, err := Parse(raw)
	if err != nil {
		return nil, fmt.Errorf("config: %s: %w", path, err)
	}

	if err := loadDotEnv(); err != nil {
		return nil, fmt.Errorf("config: .env: %w", err)
	}
	if err := applyEnv(cfg, os.LookupEnv); err != nil {
		return nil, err
	}

	return cfg, nil
}

// Parse decodes YAML on top of Default(). Unknown keys are rejected.
func Parse(raw []byte) (*Config, error) {
	cfg := Default()

	dec := yaml.NewDecoder(bytes.NewReader(raw))
	dec.KnownFields(true)
	if err := dec.Decode(&cfg); err != nil && !errors.Is(err, io.EOF) {
		return nil, err
	}

	return &cfg, nil
}

func loadDotEnv() error {
	if _, err := os.Stat(".env"); err == nil {
		return godotenv.Load(".env")
	}
	return nil
}

// ---- ENV OVERRIDES ----

const (
	EnvListen     = "DASHBOARD_LISTEN"
	EnvTitle      = "DASHBOARD_TITLE"
	EnvStreamURL  = "STREAM_URL"
	EnvSource     = "STATUS_SOURCE"
	EnvEndpoint   = "STATUS_ENDPOINT"
	EnvIntervalMs = "POLL_INTERVAL_MS"
	EnvLogDir     = "LOG_DIR"
)

type lookupFunc func(key string) (string, bool)

func applyEnv(cfg *Config, lookup lookupFunc) error {
	str := func(key string, dst *string) {
		if v, ok := lookup(key); ok && v != "" {
			*dst = v
		}
	}

	str(EnvListen, &cfg.Dashboard.Listen)
	str(EnvTitle, &cfg.Dashboard.Title)
	str(EnvStreamURL, &cfg.Dashboard.StreamURL)
	str(EnvSource, &cfg.Source.Type)
	str(EnvEndpoint, &cfg.Source.Endpoint)
	str(EnvLogDir, &cfg.Log.Dir)

	if v, ok := lookup(EnvIntervalMs); ok && v != "" {
		n, err := strconv.Atoi(strings.TrimSpace(v))
		if err != nil {
			return fmt.Errorf("config: %s=%q: %w", EnvIntervalMs, v, err)
		}
		cfg.Poll.IntervalMs = n
	}

	return nil
}
