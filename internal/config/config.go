package config

import (
	"fmt"
	"os"
	"time"

	"github.com/san-kum/presssim/internal/press"
	"github.com/san-kum/presssim/internal/sim"
	"gopkg.in/yaml.v3"
)

const (
	DefaultMaterial = "brick"
	DefaultKind     = "compression"
	DefaultCadence  = 50 * time.Millisecond
	DefaultMaxSteps = 10000
	DefaultDataDir  = ".presssim"
	DefaultLogLevel = "info"
)

type Config struct {
	Material string        `yaml:"material"`
	Kind     string        `yaml:"kind"`
	Cadence  time.Duration `yaml:"cadence"`
	MaxSteps int           `yaml:"max_steps"`
	DataDir  string        `yaml:"data_dir"`
	LogLevel string        `yaml:"log_level"`
	// Catalog is an optional YAML file of extra materials.
	Catalog string        `yaml:"catalog,omitempty"`
	Machine MachineConfig `yaml:"machine"`
}

// MachineConfig is the press geometry in screen units.
type MachineConfig struct {
	Scale         float64 `yaml:"scale"`
	PlatenY       float64 `yaml:"platen_y"`
	PlatenHeight  float64 `yaml:"platen_height"`
	CrossheadHome float64 `yaml:"crosshead_home"`
}

func DefaultConfig() *Config {
	m := press.DefaultMachine()
	return &Config{
		Material: DefaultMaterial,
		Kind:     DefaultKind,
		Cadence:  DefaultCadence,
		MaxSteps: DefaultMaxSteps,
		DataDir:  DefaultDataDir,
		LogLevel: DefaultLogLevel,
		Machine: MachineConfig{
			Scale:         m.Scale,
			PlatenY:       m.PlatenY,
			PlatenHeight:  m.PlatenHeight,
			CrossheadHome: m.CrossheadHome,
		},
	}
}

// Load reads a config file over the defaults, so a file only needs the
// keys it changes.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	cfg := DefaultConfig()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parse %s: %w", path, err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return cfg, nil
}

func Save(path string, cfg *Config) error {
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0644)
}

func (c *Config) Validate() error {
	if _, err := press.ParseKind(c.Kind); err != nil {
		return err
	}
	if c.Cadence < 0 {
		return fmt.Errorf("cadence must not be negative, got %v", c.Cadence)
	}
	if c.MaxSteps <= 0 {
		return fmt.Errorf("max_steps must be positive, got %d", c.MaxSteps)
	}
	if c.Machine.Scale <= 0 {
		return fmt.Errorf("machine scale must be positive, got %v", c.Machine.Scale)
	}
	return nil
}

// TestKind returns the parsed kind. Call Validate first.
func (c *Config) TestKind() press.Kind {
	k, _ := press.ParseKind(c.Kind)
	return k
}

func (c *Config) PressMachine() press.Machine {
	return press.Machine{
		Scale:         c.Machine.Scale,
		PlatenY:       c.Machine.PlatenY,
		PlatenHeight:  c.Machine.PlatenHeight,
		CrossheadHome: c.Machine.CrossheadHome,
	}
}

func (c *Config) RunConfig() sim.Config {
	return sim.Config{Cadence: c.Cadence, MaxSteps: c.MaxSteps}
}
