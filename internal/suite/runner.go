package suite

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"runtime"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"github.com/AndreyAkinshin/treediff/internal/fixture"
	"github.com/AndreyAkinshin/treediff/internal/logging"
	"github.com/AndreyAkinshin/treediff/internal/observability"
	"github.com/AndreyAkinshin/treediff/pkg/treediff"
)

// ErrNoActual is reported for a case without an "actual" member when the
// runner has no ActualFunc.
var ErrNoActual = errors.New("case has no actual value and no actual provider is configured")

// ActualFunc produces the actual tree for a case that does not carry one.
type ActualFunc func(ctx context.Context, c *fixture.Case) (treediff.Value, error)

// Runner compares fixture cases. The zero value compares with the zero
// policy on one worker per CPU.
type Runner struct {
	// Policy is the base policy. Cases may override fields of it.
	Policy treediff.Policy

	// Workers bounds concurrent cases. Zero means one per CPU.
	Workers int

	// Logger receives per-case diagnostics. Nil discards them.
	Logger *slog.Logger

	// Actual provides actual trees for cases without one.
	Actual ActualFunc

	// RunID identifies the run in logs and traces. Empty means a new
	// random id per Run call.
	RunID string
}

func (r *Runner) workers() int {
	if r.Workers > 0 {
		return r.Workers
	}
	return max(1, runtime.NumCPU())
}

// Run runs cases and returns their results in input order. Once ctx is
// done no further cases are scheduled; those cases are reported as errors
// and Run returns the context error together with the partial result.
func (r *Runner) Run(ctx context.Context, suiteName string, cases []fixture.Case) (*Result, error) {
	runID := r.RunID
	if runID == "" {
		runID = uuid.NewString()
	}
	logger := logging.OrDiscard(r.Logger).With("run_id", runID, "suite", suiteName)

	ctx, span := observability.StartSuiteSpan(ctx, suiteName, runID, len(cases))
	defer span.End()

	start := time.Now()
	result := &Result{
		RunID:   runID,
		Suite:   suiteName,
		Results: make([]CaseResult, len(cases)),
	}

	g := new(errgroup.Group)
	g.SetLimit(r.workers())

	scheduled := 0
	for i := range cases {
		if ctx.Err() != nil {
			break
		}
		scheduled++
		g.Go(func() error {
			result.Results[i] = r.runCase(ctx, logger, suiteName, &cases[i])
			return nil
		})
	}
	_ = g.Wait()

	for i := scheduled; i < len(cases); i++ {
		result.Results[i] = CaseResult{
			Case:   &cases[i],
			Status: StatusError,
			Err:    fmt.Errorf("not run: %w", ctx.Err()),
		}
	}

	result.Duration = time.Since(start)
	result.count()
	observability.RecordSuiteResult(span, result.Passed, result.Failed, result.Skipped, result.Errored)
	logger.Info("suite finished",
		"passed", result.Passed,
		"failed", result.Failed,
		"skipped", result.Skipped,
		"errored", result.Errored,
		"duration", result.Duration,
	)

	if scheduled < len(cases) {
		return result, ctx.Err()
	}
	return result, nil
}

func (r *Runner) runCase(ctx context.Context, logger *slog.Logger, suiteName string, c *fixture.Case) CaseResult {
	ctx, span := observability.StartCaseSpan(ctx, suiteName, c.Name)
	defer span.End()

	start := time.Now()
	res := r.evaluate(ctx, c)
	res.Duration = time.Since(start)

	observability.RecordCaseResult(span, res.Status.String(), res.Mismatches(), res.Err)

	switch res.Status {
	case StatusError:
		logger.Warn("case error", "case", c.Name, "error", res.Err)
	default:
		logger.Debug("case finished",
			"case", c.Name,
			"status", res.Status.String(),
			"mismatches", res.Mismatches(),
			"duration", res.Duration,
		)
		if res.Report != nil && logger.Enabled(ctx, slog.LevelDebug) {
			for _, m := range res.Report.Mismatches() {
				logger.Debug("mismatch", "case", c.Name, "path", m.Path, "reason", m.Reason)
			}
		}
	}
	return res
}

func (r *Runner) evaluate(ctx context.Context, c *fixture.Case) CaseResult {
	res := CaseResult{Case: c}

	if c.Skip {
		res.Status = StatusSkipped
		return res
	}

	policy, err := c.Policy(r.Policy)
	if err != nil {
		return errorResult(res, err)
	}

	actual := c.Actual
	if !c.HasActual {
		if r.Actual == nil {
			return errorResult(res, ErrNoActual)
		}
		actual, err = r.Actual(ctx, c)
		if err != nil {
			return errorResult(res, fmt.Errorf("actual provider: %w", err))
		}
	}

	_, span := observability.StartCompareSpan(ctx, policy)
	report, err := treediff.Compare(c.Expected, actual, policy)
	if err != nil {
		observability.RecordError(span, err)
		span.End()
		return errorResult(res, err)
	}
	observability.RecordReport(span, report)
	span.End()

	res.Report = report
	if report.Match() {
		res.Status = StatusPassed
	} else {
		res.Status = StatusFailed
	}
	return res
}

func errorResult(res CaseResult, err error) CaseResult {
	res.Status = StatusError
	res.Err = err
	return res
}

// RunSuites loads and runs the named suites under fixturesDir, in order,
// sharing one run id. An empty list runs every suite.
func (r *Runner) RunSuites(ctx context.Context, fixturesDir, pattern string, suites []string) ([]*Result, error) {
	if len(suites) == 0 {
		var err error
		suites, err = fixture.ListSuites(fixturesDir)
		if err != nil {
			return nil, err
		}
	}

	runner := *r
	if runner.RunID == "" {
		runner.RunID = uuid.NewString()
	}

	results := make([]*Result, 0, len(suites))
	for _, name := range suites {
		cases, err := fixture.LoadSuite(fixturesDir, name, pattern)
		if err != nil {
			return results, err
		}
		res, err := runner.Run(ctx, name, cases)
		if res != nil {
			results = append(results, res)
		}
		if err != nil {
			return results, err
		}
	}
	return results, nil
}

// FileActual returns an ActualFunc reading <dir>/<suite>/<case>.<ext> for
// any supported extension.
func FileActual(dir string) ActualFunc {
	return func(_ context.Context, c *fixture.Case) (treediff.Value, error) {
		base := filepath.Join(dir, c.Suite, filepath.FromSlash(c.Name))
		for _, ext := range []string{".json", ".yaml", ".yml", ".cue"} {
			path := base + ext
			if _, err := os.Stat(path); err == nil {
				return fixture.LoadFile(path)
			}
		}
		return nil, fmt.Errorf("no actual file for %s in %s", c.ID(), dir)
	}
}
