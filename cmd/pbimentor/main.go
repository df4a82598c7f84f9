package main

import (
	"context"
	"fmt"
	"io"
	"os"

	"github.com/fatih/color"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/lucasefe/pbimentor/evaluator"
	"github.com/lucasefe/pbimentor/internal/config"
	"github.com/lucasefe/pbimentor/internal/logging"
)

var (
	// Version information - set at build time
	Version   = "dev"
	GitCommit = "unknown"
	BuildDate = "unknown"
)

// gradingEvaluator scores both text answers and PDF documents.
type gradingEvaluator interface {
	evaluator.Evaluator
	evaluator.VisualEvaluator
}

// app holds state shared by all commands.
type app struct {
	configPath string
	logLevel   string
	verbose    bool

	cfg    *config.Config
	logger *zap.Logger

	newEvaluator func(ctx context.Context, cfg evaluator.Config) (gradingEvaluator, error)
}

func newApp() *app {
	return &app{
		newEvaluator: func(ctx context.Context, cfg evaluator.Config) (gradingEvaluator, error) {
			return evaluator.New(ctx, cfg)
		},
	}
}

func main() {
	root := NewRootCommand(newApp())
	if err := root.Execute(); err != nil {
		printError(os.Stderr, err)
		os.Exit(1)
	}
}

// NewRootCommand creates the root command with all subcommands attached.
func NewRootCommand(a *app) *cobra.Command {
	root := &cobra.Command{
		Use:   "pbimentor",
		Short: "Analyze and grade Power BI templates",
		Long: `pbimentor extracts the data model from Power BI templates (.pbit),
renders it as a stable text report and grades submissions with a language model.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return a.setup()
		},
		PersistentPostRun: func(cmd *cobra.Command, args []string) {
			if a.logger != nil {
				_ = a.logger.Sync()
			}
		},
	}

	root.PersistentFlags().StringVarP(&a.configPath, "config", "c", "", "config file (default: ./pbimentor.yaml)")
	root.PersistentFlags().StringVar(&a.logLevel, "log-level", "", "log level: debug, info, warn, error")
	root.PersistentFlags().BoolVarP(&a.verbose, "verbose", "v", false, "enable debug logging")

	root.AddCommand(NewAnalyzeCommand(a))
	root.AddCommand(NewGradeCommand(a))
	root.AddCommand(NewServeCommand(a))
	root.AddCommand(NewVersionCommand())

	return root
}

func (a *app) setup() error {
	cfg, err := config.Load(a.configPath)
	if err != nil {
		return err
	}
	a.cfg = cfg

	level := cfg.Log.Level
	if a.logLevel != "" {
		level = a.logLevel
	}
	if a.verbose {
		level = "debug"
	}

	logger, err := logging.New(level, cfg.Log.Development)
	if err != nil {
		return err
	}
	a.logger = logger
	return nil
}

func printError(w io.Writer, err error) {
	red := color.New(color.FgRed, color.Bold)
	red.Fprint(w, "Error: ")
	fmt.Fprintln(w, err)
}
