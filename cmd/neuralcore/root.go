package main

import (
	"fmt"
	"io"
	"log/slog"
	"strings"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/tailored-agentic-units/neuralcore/monitor"
	"github.com/tailored-agentic-units/neuralcore/observability"
)

// app carries the settings shared by every subcommand.
type app struct {
	configFile string
	verbose    bool
	observer   string

	cfg  *monitor.Config
	obs  observability.Observer
	sync func() error
}

func newRootCmd() *cobra.Command {
	a := &app{}

	rootCmd := &cobra.Command{
		Use:   "neuralcore",
		Short: "Live monitor for the multi-agent trading pipeline",
		Long: "neuralcore follows the pipeline's message stream, reconstructs each trading decision " +
			"from trigger to verdict, and serves the result to a terminal view and an RPC API.",
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			return a.setup(cmd)
		},
		PersistentPostRunE: func(_ *cobra.Command, _ []string) error {
			if a.sync != nil {
				_ = a.sync()
			}
			return nil
		},
	}

	flags := rootCmd.PersistentFlags()
	flags.StringVarP(&a.configFile, "config", "c", "", "Path to config file (JSON, YAML, or TOML)")
	flags.BoolVarP(&a.verbose, "verbose", "v", false, "Enable debug logging")
	flags.StringVar(&a.observer, "observer", "slog", "Event observer: "+strings.Join([]string{"noop", "slog", "zap"}, ", "))

	rootCmd.AddCommand(
		newRunCmd(a),
		newWatchCmd(a),
		newTriggerCmd(a),
		newHistoryCmd(a),
		newSessionsCmd(a),
	)

	return rootCmd
}

// setup loads .env, the config file, and the selected observer.
func (a *app) setup(cmd *cobra.Command) error {
	_ = godotenv.Load()

	cfg, err := monitor.LoadConfig(a.configFile)
	if err != nil {
		return err
	}
	a.cfg = cfg

	obs, sync, err := buildObserver(a.observer, a.verbose, cmd.ErrOrStderr())
	if err != nil {
		return err
	}
	a.obs, a.sync = obs, sync
	return nil
}

// buildObserver registers the logging observers against w and returns the
// one named. The returned func flushes buffered log output.
func buildObserver(name string, verbose bool, w io.Writer) (observability.Observer, func() error, error) {
	level := slog.LevelInfo
	if verbose {
		level = slog.LevelDebug
	}
	observability.RegisterObserver("slog", observability.NewSlogObserver(
		slog.New(slog.NewTextHandler(w, &slog.HandlerOptions{Level: level})),
	))

	sync := func() error { return nil }
	if name == "zap" {
		zapCfg := zap.NewProductionConfig()
		if verbose {
			zapCfg = zap.NewDevelopmentConfig()
		}
		zapCfg.OutputPaths = []string{"stderr"}
		logger, err := zapCfg.Build()
		if err != nil {
			return nil, nil, fmt.Errorf("failed to build zap logger: %w", err)
		}
		zo := observability.NewZapObserver(logger)
		observability.RegisterObserver("zap", zo)
		sync = zo.Sync
	}

	obs, err := observability.GetObserver(name)
	if err != nil {
		return nil, nil, fmt.Errorf("%w (available: %s)", err, strings.Join(observability.Names(), ", "))
	}
	return obs, sync, nil
}
