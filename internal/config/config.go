// Package config loads kickstart configuration from YAML.
package config

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/me/kickstart/internal/metrics"
	"github.com/me/kickstart/internal/scheduler"
	"github.com/me/kickstart/pkg/model"
)

// Duration wraps time.Duration so YAML values can be written as "250ms" or "2s".
type Duration time.Duration

// UnmarshalYAML parses a Go duration string.
func (d *Duration) UnmarshalYAML(value *yaml.Node) error {
	var raw string
	if err := value.Decode(&raw); err != nil {
		return err
	}
	parsed, err := time.ParseDuration(raw)
	if err != nil {
		return fmt.Errorf("parse duration %q: %w", raw, err)
	}
	*d = Duration(parsed)
	return nil
}

// MarshalYAML renders the duration as a string.
func (d Duration) MarshalYAML() (any, error) {
	return time.Duration(d).String(), nil
}

// Config holds the full kickstart configuration.
type Config struct {
	LogLevel  string `yaml:"log_level"`
	LogFormat string `yaml:"log_format"`

	// HistoryPath is the SQLite file for persisted run summaries.
	// Empty means in-memory (no cross-run tuning).
	HistoryPath string `yaml:"history_path"`

	CriticalConcurrency   int      `yaml:"critical_concurrency"`
	ImportantConcurrency  int      `yaml:"important_concurrency"`
	BackgroundConcurrency int      `yaml:"background_concurrency"`
	PaceDelay             Duration `yaml:"pace_delay"`
	IdleDelay             Duration `yaml:"idle_delay"`

	TargetDuration Duration `yaml:"target_duration"`
	TuneFactor     float64  `yaml:"tune_factor"`
	TimeoutFloor   Duration `yaml:"timeout_floor"`

	// Tasks describes synthetic bootstrap tasks for the demo CLI.
	Tasks []TaskSpec `yaml:"tasks"`
}

// TaskSpec declares one synthetic task in a config file.
type TaskSpec struct {
	ID        string   `yaml:"id"`
	Tier      string   `yaml:"tier"`
	Sleep     Duration `yaml:"sleep"`
	Timeout   Duration `yaml:"timeout"`
	Fail      bool     `yaml:"fail"`
	DependsOn []string `yaml:"depends_on"`
}

// Default returns sensible defaults.
func Default() Config {
	sched := scheduler.DefaultConfig()
	tuner := metrics.DefaultTuner()
	return Config{
		LogLevel:              "info",
		LogFormat:             "text",
		CriticalConcurrency:   sched.CriticalConcurrency,
		ImportantConcurrency:  sched.ImportantConcurrency,
		BackgroundConcurrency: sched.BackgroundConcurrency,
		PaceDelay:             Duration(sched.PaceDelay),
		IdleDelay:             Duration(50 * time.Millisecond),
		TargetDuration:        Duration(tuner.Target),
		TuneFactor:            tuner.Factor,
		TimeoutFloor:          Duration(tuner.Floor),
	}
}

// Load reads a YAML config file, layered over Default.
func Load(path string) (Config, error) {
	cfg := Default()

	data, err := os.ReadFile(path)
	if err != nil {
		return cfg, fmt.Errorf("read config %s: %w", path, err)
	}
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return cfg, fmt.Errorf("parse config %s: %w", path, err)
	}
	return cfg, nil
}

// SchedulerConfig converts to the scheduler's programmatic config.
func (c Config) SchedulerConfig() scheduler.Config {
	return scheduler.Config{
		CriticalConcurrency:   c.CriticalConcurrency,
		ImportantConcurrency:  c.ImportantConcurrency,
		BackgroundConcurrency: c.BackgroundConcurrency,
		PaceDelay:             time.Duration(c.PaceDelay),
		Tuner: metrics.Tuner{
			Target: time.Duration(c.TargetDuration),
			Factor: c.TuneFactor,
			Floor:  time.Duration(c.TimeoutFloor),
		},
	}
}

// ParseTier converts a config tier string to a model.Tier.
func ParseTier(s string) (model.Tier, error) {
	switch s {
	case "critical", "CRITICAL":
		return model.TierCritical, nil
	case "important", "IMPORTANT":
		return model.TierImportant, nil
	case "background", "BACKGROUND":
		return model.TierBackground, nil
	}
	return "", fmt.Errorf("unknown tier %q", s)
}
