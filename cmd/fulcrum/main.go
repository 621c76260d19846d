// Command fulcrum runs the reference scenarios, benchmarks the broadphase
// strategies and prints the configuration a space would be built from.
package main

import (
	"fmt"
	"log"
	"os"

	"github.com/akmonengine/fulcrum/config"
	"github.com/spf13/cobra"
)

var (
	preset     string
	configFile string
	envFiles   []string
	verbose    bool

	steps      int
	numBodies  int
	iterations int
	extent     float64
	seed       uint64
)

func main() {
	log.SetFlags(0)
	log.SetPrefix("fulcrum: ")

	rootCmd := &cobra.Command{
		Use:           "fulcrum",
		Short:         "rigid body constraint solver and broadphase toolbox",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	rootCmd.PersistentFlags().StringVar(&preset, "preset", "default", "configuration preset")
	rootCmd.PersistentFlags().StringVar(&configFile, "config", "", "config file path (yaml), overrides --preset")
	rootCmd.PersistentFlags().StringSliceVar(&envFiles, "env", nil, ".env files applied on top of the config (default ./.env if present)")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "log progress")

	scenarioCmd := &cobra.Command{
		Use:       "scenario [a|b]",
		Short:     "run a reference scenario",
		Args:      cobra.ExactArgs(1),
		ValidArgs: []string{"a", "b"},
		RunE:      runScenario,
	}
	scenarioCmd.Flags().IntVar(&steps, "steps", 60, "solver steps (scenario b)")

	benchCmd := &cobra.Command{
		Use:   "bench [strategy...]",
		Short: "time every broadphase strategy on the same random boxes",
		RunE:  runBench,
	}
	benchCmd.Flags().IntVar(&numBodies, "bodies", 1000, "number of boxes")
	benchCmd.Flags().IntVar(&iterations, "iterations", 50, "queries per strategy")
	benchCmd.Flags().Float64Var(&extent, "extent", 50, "half size of the region the boxes are spread in")
	benchCmd.Flags().Uint64Var(&seed, "seed", 1, "random seed")

	configCmd := &cobra.Command{
		Use:   "config",
		Short: "print the resolved configuration as yaml",
		RunE:  printConfig,
	}

	presetsCmd := &cobra.Command{
		Use:   "presets",
		Short: "list the configuration presets",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Println(titleStyle.Render("presets"))
			for _, name := range config.ListPresets() {
				fmt.Printf("  %s\n", name)
			}
		},
	}
	configCmd.AddCommand(presetsCmd)

	rootCmd.AddCommand(scenarioCmd, benchCmd, configCmd)

	if err := rootCmd.Execute(); err != nil {
		log.Println(err)
		os.Exit(1)
	}
}

// loadConfig resolves the preset or the config file, then the env overrides
func loadConfig() (*config.Config, error) {
	var (
		cfg *config.Config
		err error
	)
	if configFile != "" {
		cfg, err = config.Load(configFile)
	} else {
		cfg, err = config.Preset(preset)
	}
	if err != nil {
		return nil, err
	}

	if err := config.LoadEnv(cfg, envFiles...); err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if verbose {
		log.Printf("config: preset=%s file=%q dynamic=%s static=%s", preset, configFile, cfg.BroadPhase.Dynamic, cfg.BroadPhase.Static)
	}
	return cfg, nil
}

func printConfig(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	data, err := cfg.Marshal()
	if err != nil {
		return err
	}
	_, err = os.Stdout.Write(data)
	return err
}
