// internal/config/config.go
package config

type Config struct {
	Dashboard DashboardConfig `yaml:"dashboard"`
	Source    SourceConfig    `yaml:"source"`
	Poll      PollConfig      `yaml:"poll"`
	HMI       HMIConfig       `yaml:"hmi"`
	Log       LogConfig       `yaml:"log"`
}

// ---- DASHBOARD ----

type DashboardConfig struct {
	Listen    string `yaml:"listen"`
	Title     string `yaml:"title"`
	StreamURL string `yaml:"stream_url"` // referenced by the page only
}

// ---- STATUS SOURCE ----

const (
	SourceHTTP   = "http"
	SourceModbus = "modbus"
)

type SourceConfig struct {
	Type      string `yaml:"type"` // http | modbus
	Endpoint  string `yaml:"endpoint"`
	TimeoutMs int    `yaml:"timeout_ms"`

	// modbus only
	UnitID  uint8  `yaml:"unit_id"`
	Address uint16 `yaml:"address"`
}

// ---- POLL ----

type PollConfig struct {
	IntervalMs int `yaml:"interval_ms"`
}

// ---- HMI MIRROR (optional, opt-in) ----

type HMIConfig struct {
	Enabled   bool   `yaml:"enabled"`
	Endpoint  string `yaml:"endpoint"`
	UnitID    uint8  `yaml:"unit_id"`
	Address   uint16 `yaml:"address"`
	TimeoutMs int    `yaml:"timeout_ms"`
}

// ---- LOGGING ----

type LogConfig struct {
	Dir        string `yaml:"dir"`
	MaxSizeMB  int    `yaml:"max_size_mb"`
	MaxBackups int    `yaml:"max_backups"`
	MaxAgeDays int    `yaml:"max_age_days"`
	Stdout     bool   `yaml:"stdout"`
}

// ---- DEFAULTS ----

const (
	DefaultListen     = ":8080"
	DefaultTitle      = "HumoSync Safety AI"
	DefaultIntervalMs = 500
	DefaultTimeoutMs  = 2000
	DefaultUnitID     = 1
	DefaultLogDir     = "./logs"
	DefaultStatusPath = "/status"
)

// Default returns the configuration used when a key is absent from the file.
func Default() Config {
	return Config{
		Dashboard: DashboardConfig{
			Listen: DefaultListen,
			Title:  DefaultTitle,
		},
		Source: SourceConfig{
			Type:      SourceHTTP,
			TimeoutMs: DefaultTimeoutMs,
			UnitID:    DefaultUnitID,
		},
		Poll: PollConfig{
			IntervalMs: DefaultIntervalMs,
		},
		HMI: HMIConfig{
			UnitID:    DefaultUnitID,
			TimeoutMs: DefaultTimeoutMs,
		},
		Log: LogConfig{
			Dir:        DefaultLogDir,
			MaxSizeMB:  10,
			MaxBackups: 3,
			MaxAgeDays: 28,
			Stdout:     true,
		},
	}
}
