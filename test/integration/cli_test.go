package integration

import (
	"bytes"
	"context"
	"path/filepath"
	"strings"
	"testing"

	"github.com/AndreyAkinshin/treediff/internal/cli"
	"github.com/AndreyAkinshin/treediff/internal/errors"
)

// runCLI executes the CLI inside the named fixture project.
func runCLI(t *testing.T, projectName string, args ...string) (int, string, string) {
	t.Helper()
	t.Chdir(filepath.Join(fixturesDir(), projectName))
	var stdout, stderr bytes.Buffer
	code := cli.Execute(context.Background(), args, &stdout, &stderr)
	return code, stdout.String(), stderr.String()
}

func TestCLI_RunShop(t *testing.T) {
	code, stdout, stderr := runCLI(t, "shop", "run", "--actual-dir", "actual")
	if code != errors.ExitSuccess {
		t.Fatalf("exit code = %d\nstdout:\n%s\nstderr:\n%s", code, stdout, stderr)
	}
	if !strings.Contains(stdout, "4 case(s) passed, 1 skipped.") {
		t.Errorf("unexpected summary:\n%s", stdout)
	}
}

func TestCLI_RunBroken(t *testing.T) {
	code, stdout, _ := runCLI(t, "broken", "run")
	if code != errors.ExitFailure {
		t.Errorf("exit code = %d, want %d", code, errors.ExitFailure)
	}
	if !strings.Contains(stdout, "FAIL $.currency: text mismatch") {
		t.Errorf("missing currency mismatch:\n%s", stdout)
	}
}

func TestCLI_RunBrokenLenientFlags(t *testing.T) {
	code, stdout, _ := runCLI(t, "broken", "run", "--abs-epsilon", "0.1", "--ignore-key", "currency")
	if code != errors.ExitSuccess {
		t.Errorf("exit code = %d, want %d\n%s", code, errors.ExitSuccess, stdout)
	}
}

func TestCLI_Version(t *testing.T) {
	code, stdout, _ := runCLI(t, "shop", "version")
	if code != errors.ExitSuccess || stdout != "treediff "+cli.Version+"\n" {
		t.Errorf("version: code=%d stdout=%q", code, stdout)
	}
}
