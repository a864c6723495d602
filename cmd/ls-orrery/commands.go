package main

import (
	"errors"
	"fmt"
	"io"
	"os"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"
	"golang.org/x/term"

	"github.com/litescript/ls-orrery/internal/metrics"
	"github.com/litescript/ls-orrery/internal/server"
	"github.com/litescript/ls-orrery/internal/sim"
	"github.com/litescript/ls-orrery/internal/ui"
	"github.com/litescript/ls-orrery/internal/version"
)

var viewCmd = &cobra.Command{
	Use:   "view",
	Short: "Interactive top-down orrery (default)",
	Long: `
Open the interactive orrery. The simulation clock starts at J2000.0 and runs
at --time-scale simulated days per second; space pauses, < and > change the
rate. Logs are discarded while the view is open unless --log-file is set.
`,
	Args: cobra.NoArgs,
	RunE: runView,
}

var summaryCmd = &cobra.Command{
	Use:   "summary",
	Short: "Print body positions at a simulation time",
	Long: `
Advance the simulation once to --time days after J2000.0 and print a table of
distance, longitude, plane coordinates and light time for every body.
`,
	Args: cobra.NoArgs,
	RunE: runSummary,
}

var pathsCmd = &cobra.Command{
	Use:   "paths",
	Short: "Export sampled orbit paths as JSON",
	Long: `
Write every body's sampled orbit path in display units. Paths are the
circular rings bodies move on; --ellipse samples each body's heliocentric
ellipse from its perihelion and aphelion instead.
`,
	Args: cobra.NoArgs,
	RunE: runPaths,
}

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve bodies, a snapshot stream and metrics over HTTP",
	Long: `
Run the simulation headless and serve it:

  /api/bodies    elements, display hints and orbit paths
  /api/snapshot  the latest snapshot
  /ws            websocket snapshot stream, limited to --max-fps per client
  /metrics       Prometheus metrics
`,
	Args: cobra.NoArgs,
	RunE: runServe,
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print version information",
	Args:  cobra.NoArgs,
	// Skips config loading so version works with a broken config.
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error { return nil },
	Run:               runVersion,
}

// Command-line flags
var (
	viewFocus   string
	viewLogFile string

	summaryTime float64
	summaryJSON bool

	pathsEllipse bool
	pathsOutput  string
)

func init() {
	addViewFlags(viewCmd)

	summaryCmd.Flags().Float64Var(&summaryTime, "time", 0, "Simulation time in days after J2000.0")
	summaryCmd.Flags().BoolVar(&summaryJSON, "json", false, "Write the snapshot as JSON instead of a table")

	pathsCmd.Flags().BoolVar(&pathsEllipse, "ellipse", false, "Sample heliocentric ellipses instead of rings")
	pathsCmd.Flags().StringVarP(&pathsOutput, "output", "o", "-", "Output file (use - for stdout)")

	serveCmd.Flags().String("addr", "127.0.0.1:8089", "Listen address")
	serveCmd.Flags().Float64("max-fps", server.DefaultMaxFPS, "Websocket frames per second per client")
}

func addViewFlags(cmd *cobra.Command) {
	cmd.Flags().StringVar(&viewFocus, "focus", "", "Body to focus at start (name or ID)")
	cmd.Flags().StringVar(&viewLogFile, "log-file", "", "Append logs to this file while the view is open")
}

func runView(cmd *cobra.Command, args []string) error {
	if !term.IsTerminal(int(os.Stdout.Fd())) {
		return errors.New("view needs a terminal; use summary or paths for headless output")
	}

	logOut := io.Discard
	if viewLogFile != "" {
		f, err := os.OpenFile(viewLogFile, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
		if err != nil {
			return fmt.Errorf("open log file: %w", err)
		}
		defer f.Close()
		logOut = f
	}
	logger.SetOutput(logOut)

	res, err := loadCatalog()
	if err != nil {
		return err
	}
	s := newSimulation(res)
	clock := sim.NewClock(epoch, cfg.Sim.TimeScale, time.Now())

	opts := []ui.Option{ui.WithTickInterval(cfg.Sim.Tick)}
	if viewFocus != "" {
		opts = append(opts, ui.WithFocus(viewFocus))
	}

	p := tea.NewProgram(ui.New(s, clock, opts...), tea.WithAltScreen(), tea.WithContext(cmd.Context()))
	if _, err := p.Run(); err != nil && !errors.Is(err, tea.ErrProgramKilled) {
		return fmt.Errorf("running TUI: %w", err)
	}
	return nil
}

func runSummary(cmd *cobra.Command, args []string) error {
	res, err := loadCatalog()
	if err != nil {
		return err
	}
	s := newSimulation(res)

	snap, err := s.Advance(summaryTime)
	if err != nil {
		return fmt.Errorf("advance: %w", err)
	}

	out := cmd.OutOrStdout()
	if summaryJSON {
		return snap.WriteJSON(out)
	}
	date := epoch.Add(time.Duration(summaryTime * float64(24*time.Hour)))
	sim.WriteSummaryTable(out, snap, date)
	return nil
}

func runPaths(cmd *cobra.Command, args []string) error {
	res, err := loadCatalog()
	if err != nil {
		return err
	}
	s := newSimulation(res)

	export, err := sim.ExportPaths(s, pathsEllipse, time.Now().UTC())
	if err != nil {
		return err
	}

	if pathsOutput == "" || pathsOutput == "-" {
		return export.WriteJSON(cmd.OutOrStdout())
	}

	f, err := os.Create(pathsOutput)
	if err != nil {
		return fmt.Errorf("create output: %w", err)
	}
	if err := export.WriteJSON(f); err != nil {
		f.Close()
		return fmt.Errorf("write %s: %w", pathsOutput, err)
	}
	if err := f.Close(); err != nil {
		return err
	}
	logger.Info("wrote %d paths to %s", len(export.Paths), pathsOutput)
	return nil
}

func runServe(cmd *cobra.Command, args []string) error {
	collector := metrics.NewCollector()

	res, err := loadCatalog()
	collector.RecordLoad(res)
	if err != nil {
		return err
	}
	s := newSimulation(res, sim.WithObserver(collector))
	collector.WatchSampler(s.Sampler())

	srv := server.New(s,
		server.WithMetrics(collector),
		server.WithLogger(logger.With("component", "server")),
		server.WithMaxFPS(cfg.Server.MaxFPS),
	)
	clock := sim.NewClock(epoch, cfg.Sim.TimeScale, time.Now())

	g, ctx := errgroup.WithContext(cmd.Context())
	g.Go(func() error {
		return sim.Run(ctx, s, clock, cfg.Sim.Tick, srv.Publish)
	})
	g.Go(func() error {
		return srv.ListenAndServe(ctx, cfg.Server.Addr)
	})
	return g.Wait()
}

func runVersion(cmd *cobra.Command, args []string) {
	fmt.Fprintln(cmd.OutOrStdout(), version.Get().String())
}
