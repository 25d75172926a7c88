package cli

import (
	"context"

	"github.com/spf13/cobra"

	"github.com/AndreyAkinshin/treediff/internal/errors"
	"github.com/AndreyAkinshin/treediff/internal/sqlrows"
)

// SQLOptions holds flags for the sql command.
type SQLOptions struct {
	DB    string
	Query string
}

func newSQLCommand(e *env) *cobra.Command {
	opts := &SQLOptions{}

	cmd := &cobra.Command{
		Use:   "sql EXPECTED",
		Short: "Compare SQLite query rows with an expected file",
		Long: `Run a query against a SQLite database opened read-only and compare the
rows with an expected file. Each row becomes a mapping from column name to
value, so the expected file holds a list of objects.`,
		Args: usageArgs(cobra.ExactArgs(1)),
		RunE: e.runE(func(cmd *cobra.Command, args []string) error {
			return e.runSQL(cmd.Context(), args[0], opts)
		}),
	}

	cmd.Flags().StringVar(&opts.DB, "db", "", "path to the SQLite database (required)")
	cmd.Flags().StringVar(&opts.Query, "query", "", "SQL query producing the actual rows (required)")

	return cmd
}

func (e *env) runSQL(ctx context.Context, expectedPath string, opts *SQLOptions) error {
	if opts.DB == "" {
		return errors.Config("--db is required")
	}
	if opts.Query == "" {
		return errors.Config("--query is required")
	}

	expected, err := loadInput(expectedPath)
	if err != nil {
		return err
	}

	db, err := sqlrows.Open(ctx, opts.DB)
	if err != nil {
		return errors.AsInput(err)
	}
	defer db.Close()

	actual, err := sqlrows.Query(ctx, db, opts.Query)
	if err != nil {
		return errors.AsInput(err)
	}
	e.logger.Debug("query returned rows", "db", opts.DB, "rows", len(actual))

	report, err := e.compare(ctx, expected, actual)
	if err != nil {
		return err
	}
	if err := e.printReport(expectedPath, report); err != nil {
		return err
	}
	return mismatchError(report)
}
