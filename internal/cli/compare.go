package cli

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/AndreyAkinshin/treediff/internal/errors"
	"github.com/AndreyAkinshin/treediff/internal/fixture"
	"github.com/AndreyAkinshin/treediff/internal/observability"
	"github.com/AndreyAkinshin/treediff/pkg/treediff"
)

func newCompareCommand(e *env) *cobra.Command {
	return &cobra.Command{
		Use:   "compare EXPECTED ACTUAL",
		Short: "Compare two data files",
		Long: `Compare two data files under the tolerance policy.

The format is chosen by extension: .json, .yaml, .yml or .cue. The two files
may use different formats. Exits 1 when any mismatch is found.`,
		Args: usageArgs(cobra.ExactArgs(2)),
		RunE: e.runE(func(cmd *cobra.Command, args []string) error {
			return e.runCompare(cmd.Context(), args[0], args[1])
		}),
	}
}

func (e *env) runCompare(ctx context.Context, expectedPath, actualPath string) error {
	expected, err := loadInput(expectedPath)
	if err != nil {
		return err
	}
	actual, err := loadInput(actualPath)
	if err != nil {
		return err
	}

	report, err := e.compare(ctx, expected, actual)
	if err != nil {
		return err
	}
	if err := e.printReport(fmt.Sprintf("%s vs %s", expectedPath, actualPath), report); err != nil {
		return err
	}
	return mismatchError(report)
}

func loadInput(path string) (treediff.Value, error) {
	v, err := fixture.LoadFile(path)
	if err != nil {
		return nil, errors.AsInput(err)
	}
	return v, nil
}

// compare runs one comparison inside a compare span.
func (e *env) compare(ctx context.Context, expected, actual treediff.Value) (*treediff.Report, error) {
	_, span := observability.StartCompareSpan(ctx, e.policy)
	defer span.End()

	report, err := treediff.Compare(expected, actual, e.policy)
	if err != nil {
		observability.RecordError(span, err)
		return nil, err
	}
	observability.RecordReport(span, report)
	e.logger.Debug("comparison finished", "outcomes", len(report.Outcomes), "match", report.Match())
	return report, nil
}

func (e *env) printReport(name string, report *treediff.Report) error {
	if e.format == "json" {
		return e.out.JSON(report)
	}
	e.out.Report(name, report, e.verbose)
	return nil
}

func mismatchError(report *treediff.Report) error {
	if _, n := report.Counts(); n > 0 {
		return errors.Mismatch("", n)
	}
	return nil
}
