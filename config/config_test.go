package config

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/akmonengine/fulcrum/broadphase"
	"github.com/akmonengine/fulcrum/solver"
	"github.com/go-gl/mathgl/mgl64"
	"github.com/google/go-cmp/cmp"
)

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()

	if err := cfg.Validate(); err != nil {
		t.Fatalf("default config is invalid: %v", err)
	}
	if cfg.Space.Dt <= 0 {
		t.Error("dt should be positive")
	}
	if cfg.Solver.PositionThreshold != 1e-4 {
		t.Errorf("expected position threshold 1e-4, got %v", cfg.Solver.PositionThreshold)
	}
}

func TestSaveLoad_RoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "fulcrum.yaml")

	cfg := DefaultConfig()
	cfg.Space.Gravity = mgl64.Vec3{0, -1.62, 0}
	cfg.Solver.PositionCorrection = solver.CorrectionNaive
	cfg.BroadPhase.Dynamic = broadphase.NameSpatialHash
	cfg.BroadPhase.Options.CellSize = 4

	if err := Save(path, cfg); err != nil {
		t.Fatal(err)
	}
	loaded, err := Load(path)
	if err != nil {
		t.Fatal(err)
	}
	if diff := cmp.Diff(cfg, loaded); diff != "" {
		t.Errorf("round trip mismatch (-saved +loaded):\n%s", diff)
	}
}

func TestParse_PartialKeepsDefaults(t *testing.T) {
	cfg, err := Parse([]byte("solver:\n  velocity_iterations: 3\n  position_correction: none\nbroadphase:\n  dynamic: nsquared\n"))
	if err != nil {
		t.Fatal(err)
	}

	if cfg.Solver.VelocityIterations != 3 {
		t.Errorf("velocity iterations = %d, want 3", cfg.Solver.VelocityIterations)
	}
	if cfg.Solver.PositionCorrection != solver.CorrectionNone {
		t.Errorf("position correction = %v, want none", cfg.Solver.PositionCorrection)
	}
	if cfg.BroadPhase.Dynamic != broadphase.NameNSquared {
		t.Errorf("dynamic = %q", cfg.BroadPhase.Dynamic)
	}
	if cfg.Space.Dt != DefaultDt || cfg.BroadPhase.Static != broadphase.NameStaticAabbTree {
		t.Error("missing keys should keep their defaults")
	}
}

func TestParse_Errors(t *testing.T) {
	tests := []struct {
		name string
		yaml string
	}{
		{"bad correction", "solver:\n  position_correction: sideways\n"},
		{"bad type", "space:\n  substeps: many\n"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := Parse([]byte(tt.yaml)); err == nil {
				t.Error("expected an error")
			}
		})
	}
}

func TestLoad_MissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "missing.yaml"))
	if !errors.Is(err, os.ErrNotExist) {
		t.Errorf("expected a not-exist error, got %v", err)
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name   string
		modify func(*Config)
	}{
		{"zero dt", func(c *Config) { c.Space.Dt = 0 }},
		{"no substeps", func(c *Config) { c.Space.Substeps = 0 }},
		{"no workers", func(c *Config) { c.Space.Workers = 0 }},
		{"negative margin", func(c *Config) { c.Space.ContactMargin = -1 }},
		{"negative iterations", func(c *Config) { c.Solver.VelocityIterations = -1 }},
		{"unknown correction", func(c *Config) { c.Solver.PositionCorrection = 7 }},
		{"factor above one", func(c *Config) { c.Solver.PositionFactor = 2 }},
		{"unknown dynamic", func(c *Config) { c.BroadPhase.Dynamic = "octree" }},
		{"unknown static", func(c *Config) { c.BroadPhase.Static = "" }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := DefaultConfig()
			tt.modify(cfg)
			if err := cfg.Validate(); !errors.Is(err, ErrInvalidConfig) {
				t.Errorf("Validate() = %v, want ErrInvalidConfig", err)
			}
		})
	}
}

func TestPreset(t *testing.T) {
	for _, name := range ListPresets() {
		t.Run(name, func(t *testing.T) {
			cfg, err := Preset(name)
			if err != nil {
				t.Fatal(err)
			}
			if err := cfg.Validate(); err != nil {
				t.Errorf("preset is invalid: %v", err)
			}
		})
	}

	precise, _ := Preset("precise")
	if precise.Space.Substeps != 4 {
		t.Errorf("precise substeps = %d, want 4", precise.Space.Substeps)
	}
	// presets never leak into each other
	if def, _ := Preset("default"); def.Space.Substeps != DefaultSubsteps {
		t.Errorf("default substeps = %d", def.Space.Substeps)
	}

	if _, err := Preset("nonexistent"); !errors.Is(err, ErrUnknownPreset) {
		t.Errorf("expected ErrUnknownPreset, got %v", err)
	}
}

func TestApplyEnv(t *testing.T) {
	t.Setenv("FULCRUM_GRAVITY", "0, -3.5, 1")
	t.Setenv("FULCRUM_SUBSTEPS", "2")
	t.Setenv("FULCRUM_WARM_START", "false")
	t.Setenv("FULCRUM_POSITION_CORRECTION", "Naive")
	t.Setenv("FULCRUM_DYNAMIC_BROADPHASE", "boundingsphere")
	t.Setenv("FULCRUM_CELL_SIZE", "0.5")

	cfg := DefaultConfig()
	if err := ApplyEnv(cfg); err != nil {
		t.Fatal(err)
	}

	if cfg.Space.Gravity != (mgl64.Vec3{0, -3.5, 1}) {
		t.Errorf("gravity = %v", cfg.Space.Gravity)
	}
	if cfg.Space.Substeps != 2 {
		t.Errorf("substeps = %d", cfg.Space.Substeps)
	}
	if cfg.Solver.WarmStart {
		t.Error("warm start should be disabled")
	}
	if cfg.Solver.PositionCorrection != solver.CorrectionNaive {
		t.Errorf("position correction = %v", cfg.Solver.PositionCorrection)
	}
	if cfg.BroadPhase.Dynamic != broadphase.NameBoundingSphere {
		t.Errorf("dynamic = %q", cfg.BroadPhase.Dynamic)
	}
	if cfg.BroadPhase.Options.CellSize != 0.5 {
		t.Errorf("cell size = %v", cfg.BroadPhase.Options.CellSize)
	}
}

func TestApplyEnv_InvalidValues(t *testing.T) {
	t.Setenv("FULCRUM_WORKERS", "four")
	t.Setenv("FULCRUM_GRAVITY", "0,-9.81")

	cfg := DefaultConfig()
	if err := ApplyEnv(cfg); err == nil {
		t.Fatal("expected an error")
	}
	if cfg.Space.Workers != DefaultWorkers {
		t.Errorf("workers = %d, an invalid value must not be applied", cfg.Space.Workers)
	}
}

func TestLoadEnv_File(t *testing.T) {
	path := filepath.Join(t.TempDir(), ".env")
	if err := os.WriteFile(path, []byte("FULCRUM_VELOCITY_ITERATIONS=42\n"), 0644); err != nil {
		t.Fatal(err)
	}
	// godotenv never overrides a variable that is already set, clear it through t.Setenv
	t.Setenv("FULCRUM_VELOCITY_ITERATIONS", "")
	os.Unsetenv("FULCRUM_VELOCITY_ITERATIONS")

	cfg := DefaultConfig()
	if err := LoadEnv(cfg, path); err != nil {
		t.Fatal(err)
	}
	if cfg.Solver.VelocityIterations != 42 {
		t.Errorf("velocity iterations = %d, want 42", cfg.Solver.VelocityIterations)
	}

	if err := LoadEnv(DefaultConfig(), filepath.Join(t.TempDir(), "missing.env")); err == nil {
		t.Error("an explicit missing file should fail")
	}
}
