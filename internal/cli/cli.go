// Package cli provides the command-line interface for treediff.
package cli

import (
	"context"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/AndreyAkinshin/treediff/internal/errors"
	"github.com/AndreyAkinshin/treediff/internal/output"
)

// Version is set at build time.
var Version = "dev"

// Run executes the CLI with the given arguments and returns an exit code.
func Run(args []string) int {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	return Execute(ctx, args, os.Stdout, os.Stderr)
}

// Execute runs the command tree against the given writers. Mismatch
// errors are reported by the command itself; every other error is
// printed with the treediff prefix.
func Execute(ctx context.Context, args []string, stdout, stderr io.Writer) int {
	cmd := NewRootCommand()
	cmd.SetArgs(args)
	cmd.SetOut(stdout)
	cmd.SetErr(stderr)

	err := cmd.ExecuteContext(ctx)
	if err == nil {
		return errors.ExitSuccess
	}

	var e *errors.Error
	if !errors.As(err, &e) || e.Kind != errors.KindMismatch {
		output.NewWithWriters(stdout, stderr, false).ErrorPrefix("%v", err)
	}
	return errors.GetExitCode(err)
}
