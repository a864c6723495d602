// Command ls-orrery is a terminal orrery: bodies on circular orbits around
// the Sun, viewed top-down, with headless summary, path export and a
// websocket stream for external renderers.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/litescript/ls-orrery/internal/catalog"
	"github.com/litescript/ls-orrery/internal/config"
	"github.com/litescript/ls-orrery/internal/logging"
	"github.com/litescript/ls-orrery/internal/orbit"
	"github.com/litescript/ls-orrery/internal/sim"
)

// J2000.0, the instant simulation time zero maps to.
var epoch = time.Date(2000, time.January, 1, 12, 0, 0, 0, time.UTC)

var rootCmd = &cobra.Command{
	Use:   "ls-orrery",
	Short: "Top-down orrery for the terminal",
	Long: `
Simulate bodies on circular orbits around the Sun and draw them top-down.

Bodies come from the builtin planet table or a JSON catalog of comets and
near-Earth objects (--catalog). Settings are read from an optional config
file, ORRERY_* environment variables and flags, in increasing priority.

Examples:
  # Interactive view of the eight planets
  ls-orrery

  # Comets, focused on Halley
  ls-orrery view --catalog comets.json --focus halley

  # Comet positions one year after J2000
  ls-orrery summary --catalog comets.json --time 365.25
`,
	Args:              cobra.NoArgs,
	SilenceUsage:      true,
	SilenceErrors:     true,
	PersistentPreRunE: setup,
	RunE:              runView,
}

// Shared state resolved by setup before any command runs.
var (
	v       = config.New()
	cfgFile string
	cfg     config.Config
	logger  = logging.Discard()
)

func init() {
	pf := rootCmd.PersistentFlags()
	pf.StringVar(&cfgFile, "config", "", "Config file (TOML, YAML or JSON)")
	pf.String("log-level", "info", "Log level (debug, info, warn, error)")
	pf.String("catalog", "", "Catalog JSON file (default: builtin planets)")
	pf.Float64("au-scale", orbit.DefaultAUScale, "Display units per AU")
	pf.Float64("size-scale", 1, "Multiplier on body size hints")
	pf.Float64("y-offset", 0, "Height of bodies above the orbital plane")
	pf.Float64("time-scale", 10, "Simulated days per wall-clock second")
	pf.Duration("tick", 50*time.Millisecond, "Simulation tick interval")
	pf.Float64("rotation", orbit.DefaultRotationStep, "Self-rotation per tick in radians")
	pf.Int("segments", orbit.DefaultSegments, "Segments per orbit path")
	pf.Int("parallel", 256, "Advance bodies concurrently above this count (0 disables)")

	addViewFlags(rootCmd)
	rootCmd.AddCommand(viewCmd, summaryCmd, pathsCmd, serveCmd, versionCmd)
}

func setup(cmd *cobra.Command, args []string) error {
	if err := config.BindFlags(v, cmd.Flags()); err != nil {
		return err
	}
	c, err := config.Load(v, cfgFile)
	if err != nil {
		return err
	}
	cfg = c

	logger = logging.New(logging.ParseLevel(cfg.LogLevel))
	logger.SetOutput(cmd.ErrOrStderr())
	logger.Debug("config: catalog=%q au_scale=%v time_scale=%v", cfg.CatalogPath, cfg.Units.AUScale, cfg.Sim.TimeScale)
	return nil
}

// loadCatalog reads the configured catalog. Only a failure to read the
// source at all is an error.
func loadCatalog() (catalog.Result, error) {
	loader := catalog.NewLoader(
		catalog.WithLogger(logger.With("component", "catalog")),
		catalog.WithSizeScale(cfg.Units.SizeScale),
	)
	res := loader.Load(cfg.CatalogPath)
	if res.Error != nil {
		return res, fmt.Errorf("load catalog: %w", res.Error)
	}
	return res, nil
}

func newSimulation(res catalog.Result, opts ...sim.Option) *sim.Simulation {
	calc := orbit.NewCalculator(
		orbit.WithAUScale(cfg.Units.AUScale),
		orbit.WithYOffset(cfg.Units.YOffset),
		orbit.WithRotationStep(cfg.Sim.RotationStep),
	)
	opts = append([]sim.Option{
		sim.WithCalculator(calc),
		sim.WithSegments(cfg.Sim.Segments),
		sim.WithParallelThreshold(cfg.Sim.ParallelThreshold),
		sim.WithLogger(logger.With("component", "sim")),
	}, opts...)

	return sim.New(res.Bodies, opts...)
}

func main() {
	// Create context with cancellation
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Handle signals
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		<-sigCh
		cancel()
	}()

	if err := rootCmd.ExecuteContext(ctx); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
