package main

import (
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"printqueue/internal/config"
	"printqueue/internal/input"
	"printqueue/internal/logging"
	"printqueue/internal/ordering"
	"printqueue/internal/queue"
	"printqueue/internal/report"
)

const usageLine = "Usage: printqueue <filename>"

// usageError is returned for a wrong number of positional arguments.
type usageError struct{ got int }

func (e *usageError) Error() string {
	return fmt.Sprintf("expected 1 argument, got %d", e.got)
}

// notFoundError is returned when the input path does not exist.
type notFoundError struct{ path string }

func (e *notFoundError) Error() string {
	return fmt.Sprintf("File %s not found", e.path)
}

// options collects flag values and the state built before a run.
type options struct {
	configPath string
	strategy   string
	format     string
	audit      bool
	verbose    bool

	cfg    *config.Config
	logger *logging.Logger
}

func newRootCmd() *cobra.Command {
	opts := &options{}

	cmd := &cobra.Command{
		Use:   "printqueue [flags] <filename>",
		Short: "Validate and repair page orderings",
		Long: `printqueue reads "X|Y" ordering rules and comma-separated page lists.

It prints the lists that already follow the rules, the ones that do not,
the sum of the middle pages of the valid lists, the repaired lists, and
the sum of the middle pages of the repaired lists.

Example:
  printqueue input.txt
  printqueue --strategy topological --audit input.txt`,
		Args: func(cmd *cobra.Command, args []string) error {
			if len(args) != 1 {
				return &usageError{got: len(args)}
			}
			return nil
		},
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return opts.setup(cmd)
		},
		PersistentPostRun: func(cmd *cobra.Command, args []string) {
			if opts.logger != nil {
				_ = opts.logger.Sync()
			}
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			return runQueue(cmd, args[0], opts)
		},
	}

	cmd.PersistentFlags().StringVar(&opts.configPath, "config", config.DefaultPath, "Config file (YAML)")
	cmd.Flags().StringVar(&opts.strategy, "strategy", "", "Repair strategy: legacy or topological")
	cmd.Flags().StringVar(&opts.format, "format", "", "Output format: text, json or styled")
	cmd.Flags().BoolVar(&opts.audit, "audit", false, "Explain violations with the Datalog audit")
	cmd.PersistentFlags().BoolVarP(&opts.verbose, "verbose", "v", false, "Enable verbose logging")

	return cmd
}

// setup loads config, applies flag overrides and builds the logger.
// Precedence: defaults < config file < environment < flags.
func (o *options) setup(cmd *cobra.Command) error {
	cfg, err := config.Load(o.configPath)
	if err != nil {
		return err
	}

	flags := cmd.Flags()
	if flags.Changed("strategy") {
		cfg.Strategy = o.strategy
	}
	if flags.Changed("format") {
		cfg.Output.Format = o.format
	}
	if flags.Changed("audit") {
		cfg.Audit.Enabled = o.audit
	}

	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}

	logger, err := logging.New(cfg.Logging, o.verbose)
	if err != nil {
		return err
	}

	o.cfg = cfg
	o.logger = logger
	return nil
}

func runQueue(cmd *cobra.Command, path string, opts *options) error {
	log := opts.logger.Base()
	log.Debug("Processing input", zap.String("path", path), zap.String("strategy", opts.cfg.Strategy))

	in, err := input.Load(path)
	if err != nil {
		if errors.Is(err, input.ErrNotFound) {
			return &notFoundError{path: path}
		}
		return err
	}

	renderer, err := report.New(opts.cfg.Output.Format)
	if err != nil {
		return err
	}

	res, err := queue.Run(in, queue.Options{
		Strategy:  opts.cfg.RepairStrategy(),
		Audit:     opts.cfg.Audit.Enabled,
		FactLimit: opts.cfg.Audit.FactLimit,
		Logger:    opts.logger,
	})
	if err != nil {
		return err
	}

	if res.Strategy == ordering.StrategyLegacy && len(res.Unresolved) > 0 {
		log.Debug("Legacy pass left violations; --strategy topological always converges on acyclic rules",
			zap.Int("unresolved", len(res.Unresolved)))
	}

	if err := renderer.Render(cmd.OutOrStdout(), res); err != nil {
		return fmt.Errorf("failed to write report: %w", err)
	}
	return nil
}

// execute runs the CLI and maps errors to messages and an exit code.
func execute(args []string, stdout, stderr io.Writer) int {
	cmd := newRootCmd()
	cmd.SetArgs(args)
	cmd.SetOut(stdout)
	cmd.SetErr(stderr)

	err := cmd.Execute()
	if err == nil {
		return 0
	}

	var ue *usageError
	var nf *notFoundError
	switch {
	case errors.As(err, &ue):
		fmt.Fprintln(stdout, usageLine)
	case errors.As(err, &nf):
		fmt.Fprintf(stdout, "Error: %v\n", nf)
	default:
		fmt.Fprintf(stderr, "Error: %v\n", err)
	}
	return 1
}

func main() {
	os.Exit(execute(os.Args[1:], os.Stdout, os.Stderr))
}
