package cli

import (
	"context"
	"fmt"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/AndreyAkinshin/treediff/internal/errors"
	"github.com/AndreyAkinshin/treediff/internal/output"
	"github.com/AndreyAkinshin/treediff/internal/suite"
)

// RunOptions holds flags for the run command.
type RunOptions struct {
	ActualDir string
	Workers   int
	Pattern   string
}

func newRunCommand(e *env) *cobra.Command {
	opts := &RunOptions{}

	cmd := &cobra.Command{
		Use:   "run [SUITE...]",
		Short: "Run fixture suites",
		Long: `Run fixture suites from the configured fixtures directory.

Each suite is a subdirectory; each case file holds an expected tree and
either an inline actual tree or, with --actual-dir, a file named
<actual-dir>/<suite>/<case>.json (or .yaml, .yml, .cue). Without arguments
every suite runs.`,
		Args: cobra.ArbitraryArgs,
		RunE: e.runE(func(cmd *cobra.Command, args []string) error {
			return e.runSuites(cmd.Context(), args, opts)
		}),
	}

	cmd.Flags().StringVar(&opts.ActualDir, "actual-dir", "", "directory of actual files for cases without an inline actual")
	cmd.Flags().IntVar(&opts.Workers, "workers", 0, "concurrent cases (default: fixtures.workers, 0 = one per CPU)")
	cmd.Flags().StringVar(&opts.Pattern, "pattern", "", "glob for case files (default: fixtures.pattern)")

	return cmd
}

func (e *env) runSuites(ctx context.Context, suites []string, opts *RunOptions) error {
	fixturesDir := e.cfg.Fixtures.Directory
	if !filepath.IsAbs(fixturesDir) {
		fixturesDir = filepath.Join(e.root, fixturesDir)
	}
	pattern := e.cfg.Fixtures.Pattern
	if opts.Pattern != "" {
		pattern = opts.Pattern
	}
	workers := e.cfg.Fixtures.Workers
	if opts.Workers > 0 {
		workers = opts.Workers
	}

	runner := &suite.Runner{
		Policy:  e.policy,
		Workers: workers,
		Logger:  e.logger,
	}
	if opts.ActualDir != "" {
		runner.Actual = suite.FileActual(opts.ActualDir)
	}

	if e.format == "text" {
		e.out.Info("Running fixtures from %s", fixturesDir)
	}
	results, runErr := runner.RunSuites(ctx, fixturesDir, pattern, suites)
	if err := e.printSuites(results); err != nil {
		return err
	}
	if runErr != nil {
		if ctx.Err() != nil {
			return errors.Wrap(runErr, "run interrupted")
		}
		return errors.AsInput(runErr)
	}

	var notPassed int
	for _, r := range results {
		notPassed += r.Failed + r.Errored
	}
	if notPassed > 0 {
		if e.format == "text" && !e.verbose {
			e.out.Hint("Run with -v to include matching outcomes and debug logs.")
		}
		return &errors.Error{
			Kind:    errors.KindMismatch,
			Message: fmt.Sprintf("%d case(s) did not pass", notPassed),
		}
	}
	return nil
}

func (e *env) printSuites(results []*suite.Result) error {
	if e.format == "json" {
		return e.out.JSON(output.SuiteViews(results))
	}
	if len(results) == 0 {
		return nil
	}
	for _, r := range results {
		e.out.SuiteResult(r, e.verbose)
	}
	e.out.SuiteSummary(results)
	return nil
}
