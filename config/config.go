// Package config loads the settings of a space: yaml files, presets and
// FULCRUM_* environment overrides.
package config

import (
	"errors"
	"fmt"
	"os"

	"github.com/akmonengine/fulcrum/broadphase"
	"github.com/akmonengine/fulcrum/solver"
	"github.com/go-gl/mathgl/mgl64"
	"gopkg.in/yaml.v3"
)

const (
	DefaultDt            = 1.0 / 60.0
	DefaultSubsteps      = 1
	DefaultWorkers       = 1
	DefaultSleepTime     = 0.5
	DefaultSleepVelocity = 0.05
	DefaultContactMargin = 0.02
)

var (
	// ErrInvalidConfig is wrapped by every Validate failure
	ErrInvalidConfig = errors.New("config: invalid configuration")
	// ErrUnknownPreset is returned by Preset for a name not in Presets
	ErrUnknownPreset = errors.New("config: unknown preset")
)

type Config struct {
	Space      SpaceConfig      `yaml:"space"`
	Solver     solver.Config    `yaml:"solver"`
	BroadPhase BroadPhaseConfig `yaml:"broadphase"`
}

type SpaceConfig struct {
	// Gravity acceleration (m/s²)
	Gravity  mgl64.Vec3 `yaml:"gravity"`
	Dt       float64    `yaml:"dt"`
	Substeps int        `yaml:"substeps"`
	Workers  int        `yaml:"workers"`

	// SleepTime is how long a body must stay below SleepVelocity before sleeping
	SleepTime     float64 `yaml:"sleep_time"`
	SleepVelocity float64 `yaml:"sleep_velocity"`
	// ContactMargin is the gap under which separated shapes already get a speculative contact
	ContactMargin float64 `yaml:"contact_margin"`
}

// BroadPhaseConfig names the strategies of the dynamic and the static colliders
type BroadPhaseConfig struct {
	Dynamic string             `yaml:"dynamic"`
	Static  string             `yaml:"static"`
	Options broadphase.Options `yaml:",inline"`
}

func DefaultConfig() *Config {
	return &Config{
		Space: SpaceConfig{
			Gravity:       mgl64.Vec3{0, -9.81, 0},
			Dt:            DefaultDt,
			Substeps:      DefaultSubsteps,
			Workers:       DefaultWorkers,
			SleepTime:     DefaultSleepTime,
			SleepVelocity: DefaultSleepVelocity,
			ContactMargin: DefaultContactMargin,
		},
		Solver: solver.DefaultConfig(),
		BroadPhase: BroadPhaseConfig{
			Dynamic: broadphase.NameSweepAndPrune,
			Static:  broadphase.NameStaticAabbTree,
			Options: broadphase.Options{
				CellSize: broadphase.DefaultCellSize,
				Cells:    broadphase.DefaultCells,
			},
		},
	}
}

// Load reads a yaml file on top of DefaultConfig, missing keys keep their default
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("config: read %s: %w", path, err)
	}
	cfg, err := Parse(data)
	if err != nil {
		return nil, fmt.Errorf("config: %s: %w", path, err)
	}
	return cfg, nil
}

// Parse decodes yaml on top of DefaultConfig
func Parse(data []byte) (*Config, error) {
	cfg := DefaultConfig()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}

func Save(path string, cfg *Config) error {
	data, err := cfg.Marshal()
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0644)
}

func (c *Config) Marshal() ([]byte, error) {
	return yaml.Marshal(c)
}

// Validate reports every out of range value, each error wraps ErrInvalidConfig
func (c *Config) Validate() error {
	var errs []error
	invalid := func(format string, args ...any) {
		errs = append(errs, fmt.Errorf("%w: "+format, append([]any{ErrInvalidConfig}, args...)...))
	}

	if c.Space.Dt <= 0 {
		invalid("space.dt must be positive, got %v", c.Space.Dt)
	}
	if c.Space.Substeps < 1 {
		invalid("space.substeps must be at least 1, got %d", c.Space.Substeps)
	}
	if c.Space.Workers < 1 {
		invalid("space.workers must be at least 1, got %d", c.Space.Workers)
	}
	if c.Space.SleepTime < 0 || c.Space.SleepVelocity < 0 {
		invalid("space sleep thresholds must not be negative")
	}
	if c.Space.ContactMargin < 0 {
		invalid("space.contact_margin must not be negative, got %v", c.Space.ContactMargin)
	}

	if c.Solver.VelocityIterations < 0 || c.Solver.PositionIterations < 0 {
		invalid("solver iterations must not be negative")
	}
	if c.Solver.PositionCorrection < solver.CorrectionNone || c.Solver.PositionCorrection > solver.CorrectionBlock {
		invalid("solver.position_correction %d is unknown", int(c.Solver.PositionCorrection))
	}
	if c.Solver.PositionThreshold < 0 {
		invalid("solver.position_threshold must not be negative, got %v", c.Solver.PositionThreshold)
	}
	if c.Solver.PositionFactor < 0 || c.Solver.PositionFactor > 1 {
		invalid("solver.position_factor must be within [0, 1], got %v", c.Solver.PositionFactor)
	}
	if c.Solver.Baumgarte < 0 || c.Solver.Baumgarte > 1 {
		invalid("solver.baumgarte must be within [0, 1], got %v", c.Solver.Baumgarte)
	}

	if !broadphase.Known(c.BroadPhase.Dynamic) {
		invalid("broadphase.dynamic %q is not one of %v", c.BroadPhase.Dynamic, broadphase.Names())
	}
	if !broadphase.Known(c.BroadPhase.Static) {
		invalid("broadphase.static %q is not one of %v", c.BroadPhase.Static, broadphase.Names())
	}
	if c.BroadPhase.Options.CellSize < 0 || c.BroadPhase.Options.Cells < 0 {
		invalid("broadphase cell settings must not be negative")
	}

	return errors.Join(errs...)
}
