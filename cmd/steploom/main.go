package main

import (
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/joshharrison/steploom/internal/config"
	"github.com/joshharrison/steploom/internal/cpm"
	"github.com/joshharrison/steploom/internal/graph"
	"github.com/joshharrison/steploom/internal/input"
	"github.com/joshharrison/steploom/internal/reporter"
	"github.com/joshharrison/steploom/internal/sim"
	"github.com/joshharrison/steploom/internal/state"
	"github.com/joshharrison/steploom/internal/topo"
	"github.com/joshharrison/steploom/internal/ui"
)

var (
	flagConfig    string
	flagEnvFile   string
	flagJSON      bool
	flagLogLevel  string
	flagLogFormat string
	flagNoColor   bool
	flagWorkers   int
	flagBase      int
	flagTimeline  bool
	flagFormat    string
	flagSave      bool
	flagStateDir  string
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   "steploom",
		Short: "Order and simulate dependency-constrained tasks",
		Long: `Steploom reads "must finish before" constraints between tasks, computes
the canonical single-worker order, and simulates a fixed pool of workers
to find how long the whole set takes to finish.

Constraints are read from a file argument or stdin, one per line:

  Step C must be finished before step A can begin.
  C -> A

or as JSON: [{"before": "C", "after": "A"}].`,
		SilenceUsage: true,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			if flagNoColor {
				ui.SetColor(false)
			}
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			ui.PrintBanner(cmd.ErrOrStderr())
			return cmd.Help()
		},
	}

	// Global flags
	rootCmd.PersistentFlags().StringVar(&flagConfig, "config", "", "Config file (default: ./steploom.yaml if present)")
	rootCmd.PersistentFlags().StringVar(&flagEnvFile, "env-file", "", "Dotenv file (default: ./.env if present)")
	rootCmd.PersistentFlags().BoolVar(&flagJSON, "json", false, "Machine-readable JSON output")
	rootCmd.PersistentFlags().StringVar(&flagLogLevel, "log-level", "", "Log level (debug, info, warn, error)")
	rootCmd.PersistentFlags().StringVar(&flagLogFormat, "log-format", "", "Log format (text, json)")
	rootCmd.PersistentFlags().BoolVar(&flagNoColor, "no-color", false, "Disable colored output")

	rootCmd.AddCommand(orderCmd())
	rootCmd.AddCommand(simulateCmd())
	rootCmd.AddCommand(analyzeCmd())
	rootCmd.AddCommand(vizCmd())
	rootCmd.AddCommand(lastCmd())
	rootCmd.AddCommand(cleanCmd())

	return rootCmd
}

// loadConfig resolves configuration and applies any flags set on cmd.
func loadConfig(cmd *cobra.Command) (*config.Config, *slog.Logger, error) {
	cfg, err := config.Load(config.LoadOptions{Path: flagConfig, EnvFile: flagEnvFile})
	if err != nil {
		return nil, nil, err
	}

	flags := cmd.Flags()
	if flags.Changed("log-level") {
		cfg.LogLevel = flagLogLevel
	}
	if flags.Changed("log-format") {
		cfg.LogFormat = flagLogFormat
	}
	if f := flags.Lookup("workers"); f != nil && f.Changed {
		cfg.Workers = flagWorkers
	}
	if f := flags.Lookup("base"); f != nil && f.Changed {
		cfg.BaseDuration = flagBase
	}

	if err := cfg.Validate(); err != nil {
		return nil, nil, fmt.Errorf("invalid config: %w", err)
	}

	return cfg, config.NewLogger(cfg.LogLevel, cfg.LogFormat, cmd.ErrOrStderr()), nil
}

// buildGraph is shared logic for every command: read constraints, build the graph.
func buildGraph(args []string, logger *slog.Logger) (*graph.DependencyGraph, error) {
	_, g, err := readGraph(args, logger)
	return g, err
}

func readGraph(args []string, logger *slog.Logger) ([]graph.Constraint, *graph.DependencyGraph, error) {
	path := ""
	if len(args) > 0 {
		path = args[0]
	}

	constraints, err := input.ParseFile(path)
	if err != nil {
		return nil, nil, fmt.Errorf("read constraints: %w", err)
	}

	g := graph.Build(constraints)
	if g.TaskCount() == 0 {
		return nil, nil, fmt.Errorf("no constraints found")
	}
	logger.Debug("graph built", "constraints", len(constraints), "tasks", g.TaskCount(), "roots", len(g.Roots()))
	return constraints, g, nil
}

func inputName(args []string) string {
	if len(args) == 0 || args[0] == "" {
		return "-"
	}
	return args[0]
}

func orderCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "order [file]",
		Short: "Print the single-worker execution order",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			_, logger, err := loadConfig(cmd)
			if err != nil {
				return err
			}
			g, err := buildGraph(args, logger)
			if err != nil {
				return err
			}

			order, err := topo.Schedule(g)
			if err != nil {
				return fmt.Errorf("schedule: %w", err)
			}

			rpt := reporter.New(g)
			rpt.Order = order
			return render(cmd.OutOrStdout(), rpt, func(w io.Writer) { rpt.PrintOrder(w) })
		},
	}
}

func simulateCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "simulate [file]",
		Short: "Simulate a worker pool and report total elapsed ticks",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, logger, err := loadConfig(cmd)
			if err != nil {
				return err
			}
			constraints, g, err := readGraph(args, logger)
			if err != nil {
				return err
			}

			var record *state.RunRecord
			if flagSave {
				record, err = state.New(flagStateDir, inputName(args), cfg.Workers, constraints)
				if err != nil {
					return err
				}
			}

			dur := cfg.DurationFunc()
			res, err := sim.Run(g, sim.Config{
				Workers:  cfg.Workers,
				Duration: dur,
				Logger:   logger,
			})
			if err != nil {
				if record != nil {
					if saveErr := record.Fail(err); saveErr != nil {
						logger.Warn("failed to save run record", "error", saveErr)
					}
				}
				return fmt.Errorf("simulate: %w", err)
			}
			logger.Info("simulation complete", "workers", res.Workers, "ticks", res.Ticks)

			if record != nil {
				if err := record.Complete(res); err != nil {
					return err
				}
				logger.Debug("run record saved", "status", record.Status)
			}

			rpt := reporter.New(g)
			rpt.Sim = res
			// The lower bound shares the duration function, so it cannot fail here.
			if analysis, err := cpm.Analyze(g, dur); err == nil {
				rpt.Analysis = analysis
			}
			return render(cmd.OutOrStdout(), rpt, func(w io.Writer) { rpt.PrintSimulation(w, flagTimeline) })
		},
	}

	cmd.Flags().IntVarP(&flagWorkers, "workers", "w", 0, "Number of workers (default from config: 5)")
	cmd.Flags().IntVar(&flagBase, "base", 0, "Base ticks added to each task's alphabet position (default from config: 60)")
	cmd.Flags().BoolVar(&flagTimeline, "timeline", false, "Print the per-tick worker table")
	cmd.Flags().BoolVar(&flagSave, "save", false, "Save the run so 'steploom last' can show it again")
	cmd.Flags().StringVar(&flagStateDir, "state-dir", state.DefaultDir, "Directory for saved runs")

	return cmd
}

func lastCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "last",
		Short: "Show the last simulation saved with --save",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if !state.Exists(flagStateDir) {
				return fmt.Errorf("no saved run in %s (use 'steploom simulate --save')", flagStateDir)
			}
			record, err := state.Load(flagStateDir)
			if err != nil {
				return err
			}

			rpt := reporter.New(record.Graph())
			switch record.Status {
			case state.StatusCompleted:
				rpt.Sim = record.Result
			case state.StatusFailed:
				return fmt.Errorf("last run of %s failed: %s", record.Input, record.Error)
			default:
				return fmt.Errorf("last run of %s did not finish (status %s)", record.Input, record.Status)
			}

			if !flagJSON {
				fmt.Fprintf(cmd.OutOrStdout(), "%s %s\n\n", ui.Dim("Saved run of"), ui.Bold(record.Input))
			}
			return render(cmd.OutOrStdout(), rpt, func(w io.Writer) { rpt.PrintSimulation(w, flagTimeline) })
		},
	}

	cmd.Flags().BoolVar(&flagTimeline, "timeline", false, "Print the per-tick worker table")
	cmd.Flags().StringVar(&flagStateDir, "state-dir", state.DefaultDir, "Directory for saved runs")

	return cmd
}

func cleanCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "clean",
		Short: "Remove the saved run directory",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if !state.Exists(flagStateDir) {
				fmt.Fprintf(cmd.OutOrStdout(), "Nothing to clean in %s\n", flagStateDir)
				return nil
			}
			if err := state.Clean(flagStateDir); err != nil {
				return fmt.Errorf("clean state: %w", err)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%s Removed %s\n", ui.StatusIcon("done"), flagStateDir)
			return nil
		},
	}

	cmd.Flags().StringVar(&flagStateDir, "state-dir", state.DefaultDir, "Directory for saved runs")

	return cmd
}

func analyzeCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "analyze [file]",
		Short: "Compute the critical path and parallel waves",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, logger, err := loadConfig(cmd)
			if err != nil {
				return err
			}
			g, err := buildGraph(args, logger)
			if err != nil {
				return err
			}

			analysis, err := cpm.Analyze(g, cfg.DurationFunc())
			if err != nil {
				return fmt.Errorf("CPM analysis: %w", err)
			}

			rpt := reporter.New(g)
			rpt.Order = analysis.TopoOrder
			rpt.Analysis = analysis
			return render(cmd.OutOrStdout(), rpt, func(w io.Writer) { rpt.PrintAnalysis(w) })
		},
	}

	cmd.Flags().IntVar(&flagBase, "base", 0, "Base ticks added to each task's alphabet position (default from config: 60)")

	return cmd
}

func vizCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "viz [file]",
		Short: "Print the dependency graph as ASCII or Graphviz DOT",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, logger, err := loadConfig(cmd)
			if err != nil {
				return err
			}
			g, err := buildGraph(args, logger)
			if err != nil {
				return err
			}

			analysis, err := cpm.Analyze(g, cfg.DurationFunc())
			if err != nil {
				return fmt.Errorf("CPM analysis: %w", err)
			}

			rpt := reporter.New(g)
			rpt.Analysis = analysis

			switch flagFormat {
			case "dot":
				rpt.PrintDOT(cmd.OutOrStdout())
			case "ascii":
				rpt.PrintASCII(cmd.OutOrStdout())
			default:
				return fmt.Errorf("unsupported format %q (use ascii or dot)", flagFormat)
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&flagFormat, "format", "ascii", "Output format (ascii, dot)")

	return cmd
}

// render writes JSON when --json is set, otherwise the human form.
func render(w io.Writer, rpt *reporter.Reporter, human func(io.Writer)) error {
	if flagJSON {
		data, err := rpt.JSON()
		if err != nil {
			return err
		}
		fmt.Fprintln(w, string(data))
		return nil
	}
	human(w)
	return nil
}
