package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strconv"
	"strings"

	"github.com/go-gl/mathgl/mgl64"
	"github.com/joho/godotenv"
)

// EnvPrefix starts the name of every variable read by ApplyEnv
const EnvPrefix = "FULCRUM_"

// LoadEnv loads the given .env files into the process environment, then applies the
// FULCRUM_* overrides to cfg. Without files it tries ./.env and ignores its absence.
// Variables already set in the environment win over the files.
func LoadEnv(cfg *Config, files ...string) error {
	if err := godotenv.Load(files...); err != nil {
		if len(files) > 0 || !errors.Is(err, fs.ErrNotExist) {
			return fmt.Errorf("config: load env: %w", err)
		}
	}
	return ApplyEnv(cfg)
}

// ApplyEnv overrides cfg with the FULCRUM_* variables that are set.
// A value that does not parse is reported and leaves the field untouched.
func ApplyEnv(cfg *Config) error {
	var errs []error
	record := func(err error) {
		if err != nil {
			errs = append(errs, err)
		}
	}

	// Space
	record(envVec3("GRAVITY", &cfg.Space.Gravity))
	record(envFloat("DT", &cfg.Space.Dt))
	record(envInt("SUBSTEPS", &cfg.Space.Substeps))
	record(envInt("WORKERS", &cfg.Space.Workers))
	record(envFloat("SLEEP_TIME", &cfg.Space.SleepTime))
	record(envFloat("SLEEP_VELOCITY", &cfg.Space.SleepVelocity))
	record(envFloat("CONTACT_MARGIN", &cfg.Space.ContactMargin))

	// Solver
	record(envInt("VELOCITY_ITERATIONS", &cfg.Solver.VelocityIterations))
	record(envBool("WARM_START", &cfg.Solver.WarmStart))
	if value, ok := lookupEnv("POSITION_CORRECTION"); ok {
		if err := cfg.Solver.PositionCorrection.UnmarshalText([]byte(value)); err != nil {
			record(fmt.Errorf("config: %sPOSITION_CORRECTION: %w", EnvPrefix, err))
		}
	}
	record(envInt("POSITION_ITERATIONS", &cfg.Solver.PositionIterations))
	record(envFloat("POSITION_THRESHOLD", &cfg.Solver.PositionThreshold))
	record(envFloat("SLOP", &cfg.Solver.Slop))

	// BroadPhase
	envString("DYNAMIC_BROADPHASE", &cfg.BroadPhase.Dynamic)
	envString("STATIC_BROADPHASE", &cfg.BroadPhase.Static)
	record(envFloat("CELL_SIZE", &cfg.BroadPhase.Options.CellSize))
	record(envInt("CELLS", &cfg.BroadPhase.Options.Cells))

	return errors.Join(errs...)
}

func lookupEnv(key string) (string, bool) {
	value := strings.TrimSpace(os.Getenv(EnvPrefix + key))
	return value, value != ""
}

func envString(key string, target *string) {
	if value, ok := lookupEnv(key); ok {
		*target = value
	}
}

func envInt(key string, target *int) error {
	value, ok := lookupEnv(key)
	if !ok {
		return nil
	}
	parsed, err := strconv.Atoi(value)
	if err != nil {
		return fmt.Errorf("config: %s%s: %w", EnvPrefix, key, err)
	}
	*target = parsed
	return nil
}

func envFloat(key string, target *float64) error {
	value, ok := lookupEnv(key)
	if !ok {
		return nil
	}
	parsed, err := strconv.ParseFloat(value, 64)
	if err != nil {
		return fmt.Errorf("config: %s%s: %w", EnvPrefix, key, err)
	}
	*target = parsed
	return nil
}

func envBool(key string, target *bool) error {
	value, ok := lookupEnv(key)
	if !ok {
		return nil
	}
	parsed, err := strconv.ParseBool(value)
	if err != nil {
		return fmt.Errorf("config: %s%s: %w", EnvPrefix, key, err)
	}
	*target = parsed
	return nil
}

// envVec3 reads "x,y,z"
func envVec3(key string, target *mgl64.Vec3) error {
	value, ok := lookupEnv(key)
	if !ok {
		return nil
	}
	parts := strings.Split(value, ",")
	if len(parts) != 3 {
		return fmt.Errorf("config: %s%s: want x,y,z, got %q", EnvPrefix, key, value)
	}

	var v mgl64.Vec3
	for i, part := range parts {
		parsed, err := strconv.ParseFloat(strings.TrimSpace(part), 64)
		if err != nil {
			return fmt.Errorf("config: %s%s: %w", EnvPrefix, key, err)
		}
		v[i] = parsed
	}
	*target = v
	return nil
}
