package pevents

import (
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

// Config carries tuning knobs that never affect correctness: the default
// wait timeout convenience wrappers may use, whether the adaptive spin-wait
// front-end (see spin.go) is enabled, and whether Prometheus metrics are
// registered. DefaultConfig returns the baseline values; LoadConfig
// backfills a zero DefaultTimeout and an empty metrics namespace.
type Config struct {
	DefaultTimeout time.Duration `yaml:"default_timeout"`
	SpinWait       SpinConfig    `yaml:"spin_wait"`
	Metrics        MetricsConfig `yaml:"metrics"`
}

// SpinConfig tunes the adaptive spin-wait front-end. Disabled by default:
// the workloads this package targets (coordinating a handful of
// independent events) rarely hold signals for a short enough window to make
// spinning pay for itself, so the cost is opt-in.
type SpinConfig struct {
	Enabled bool  `yaml:"enabled"`
	MinSpin int32 `yaml:"min_spin"`
	MaxSpin int32 `yaml:"max_spin"`
}

// MetricsConfig controls Prometheus instrumentation registration.
type MetricsConfig struct {
	Enabled   bool   `yaml:"enabled"`
	Namespace string `yaml:"namespace"`
}

// DefaultConfig returns the zero-tuning baseline: DefaultTimeout is
// Infinite, spinning is disabled, and metrics are not registered (with the
// namespace "pevents").
func DefaultConfig() *Config {
	return &Config{
		DefaultTimeout: Infinite,
		SpinWait:       SpinConfig{Enabled: false},
		Metrics:        MetricsConfig{Enabled: false, Namespace: "pevents"},
	}
}

// LoadConfig reads and validates a YAML configuration file. Fields absent
// from the file keep DefaultConfig's values.
func LoadConfig(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, wrapf(err, "read config %s", path)
	}

	cfg := DefaultConfig()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, wrapf(err, "parse config %s", path)
	}
	if cfg.DefaultTimeout == 0 {
		cfg.DefaultTimeout = Infinite
	}
	if cfg.Metrics.Namespace == "" {
		cfg.Metrics.Namespace = "pevents"
	}
	return cfg, nil
}
