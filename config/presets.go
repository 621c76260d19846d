package config

import (
	"fmt"
	"slices"

	"github.com/akmonengine/fulcrum/broadphase"
	"github.com/akmonengine/fulcrum/solver"
)

// Presets are tuned starting points, they are modified on top of DefaultConfig
var Presets = map[string]func(*Config){
	"default": func(*Config) {},
	// precise trades speed for stiffer stacks and joints
	"precise": func(c *Config) {
		c.Space.Substeps = 4
		c.Solver.VelocityIterations = 20
		c.Solver.PositionIterations = 8
		c.Solver.PositionCorrection = solver.CorrectionBlock
	},
	"fast": func(c *Config) {
		c.Solver.VelocityIterations = 4
		c.Solver.PositionIterations = 1
		c.Solver.PositionCorrection = solver.CorrectionNaive
		c.BroadPhase.Dynamic = broadphase.NameSpatialHash
	},
	// baumgarte feeds positional errors into the velocity pass, no position pass runs
	"baumgarte": func(c *Config) {
		c.Solver.PositionCorrection = solver.CorrectionNone
		c.Solver.Baumgarte = 0.2
	},
	"nowarmstart": func(c *Config) {
		c.Solver.WarmStart = false
	},
}

// Preset returns a fresh config for the named preset
func Preset(name string) (*Config, error) {
	apply, ok := Presets[name]
	if !ok {
		return nil, fmt.Errorf("%w %q, known presets are %v", ErrUnknownPreset, name, ListPresets())
	}
	cfg := DefaultConfig()
	apply(cfg)
	return cfg, nil
}

func ListPresets() []string {
	names := make([]string, 0, len(Presets))
	for name := range Presets {
		names = append(names, name)
	}
	slices.Sort(names)
	return names
}
