package solver

import (
	"fmt"
	"strings"

	"github.com/akmonengine/fulcrum/constraint"
)

// PositionCorrection selects how positional drift is removed
type PositionCorrection int

const (
	// CorrectionNone feeds positional errors back into the velocity rows (Baumgarte)
	CorrectionNone PositionCorrection = iota
	// CorrectionNaive moves the bodies row by row after integration
	CorrectionNaive
	// CorrectionBlock solves all positional rows of a constraint together after integration
	CorrectionBlock
)

func (p PositionCorrection) String() string {
	switch p {
	case CorrectionNone:
		return "none"
	case CorrectionNaive:
		return "naive"
	case CorrectionBlock:
		return "block"
	}
	return fmt.Sprintf("PositionCorrection(%d)", int(p))
}

func (p PositionCorrection) MarshalText() ([]byte, error) {
	switch p {
	case CorrectionNone, CorrectionNaive, CorrectionBlock:
		return []byte(p.String()), nil
	}
	return nil, fmt.Errorf("solver: unknown position correction %d", int(p))
}

func (p *PositionCorrection) UnmarshalText(text []byte) error {
	switch strings.ToLower(strings.TrimSpace(string(text))) {
	case "none", "":
		*p = CorrectionNone
	case "naive":
		*p = CorrectionNaive
	case "block":
		*p = CorrectionBlock
	default:
		return fmt.Errorf("solver: unknown position correction %q", text)
	}
	return nil
}

// Config holds every solver tunable. It is passed explicitly to NewSolver, there is no global state.
type Config struct {
	// VelocityIterations is the fixed number of Gauss-Seidel passes per step
	VelocityIterations int  `yaml:"velocity_iterations"`
	WarmStart          bool `yaml:"warm_start"`

	PositionCorrection PositionCorrection `yaml:"position_correction"`
	PositionIterations int                `yaml:"position_iterations"`
	// PositionThreshold is the positional error below which a constraint is left alone
	PositionThreshold float64 `yaml:"position_threshold"`
	// PositionFactor is the share of the error removed by one position iteration
	PositionFactor float64 `yaml:"position_factor"`
	// MaxCorrection caps the error a single row corrects per iteration
	MaxCorrection float64 `yaml:"max_correction"`

	// Baumgarte is used when PositionCorrection is CorrectionNone
	Baumgarte float64 `yaml:"baumgarte"`

	Slop                 float64 `yaml:"slop"`
	RestitutionThreshold float64 `yaml:"restitution_threshold"`
}

func DefaultConfig() Config {
	return Config{
		VelocityIterations:   10,
		WarmStart:            true,
		PositionCorrection:   CorrectionBlock,
		PositionIterations:   3,
		PositionThreshold:    1e-4,
		PositionFactor:       0.2,
		MaxCorrection:        0.2,
		Baumgarte:            0.2,
		Slop:                 0.005,
		RestitutionThreshold: 1.0,
	}
}

// sanitized clamps out of range values instead of failing
func (c Config) sanitized() Config {
	c.VelocityIterations = max(c.VelocityIterations, 0)
	c.PositionIterations = max(c.PositionIterations, 0)
	c.PositionThreshold = max(c.PositionThreshold, 0)
	c.PositionFactor = min(max(c.PositionFactor, 0), 1)
	c.MaxCorrection = max(c.MaxCorrection, 0)
	c.Baumgarte = min(max(c.Baumgarte, 0), 1)
	c.Slop = max(c.Slop, 0)
	c.RestitutionThreshold = max(c.RestitutionThreshold, 0)
	if c.PositionCorrection < CorrectionNone || c.PositionCorrection > CorrectionBlock {
		c.PositionCorrection = CorrectionNone
	}
	return c
}

// step derives the per-step values handed to the constraints
func (c Config) step(dt float64) constraint.Step {
	step := constraint.NewStep(dt)
	step.WarmStart = c.WarmStart
	step.VelocityBias = c.PositionCorrection == CorrectionNone
	step.Baumgarte = c.Baumgarte
	step.Slop = c.Slop
	step.RestitutionThreshold = c.RestitutionThreshold
	return step
}
