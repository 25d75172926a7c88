package output

import (
	"bytes"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestWriter() (*Writer, *bytes.Buffer, *bytes.Buffer) {
	stdout := &bytes.Buffer{}
	stderr := &bytes.Buffer{}
	return NewWithWriters(stdout, stderr, false), stdout, stderr
}

func TestNew(t *testing.T) {
	w := New()
	require.NotNil(t, w)
	assert.NotNil(t, w.out)
	assert.NotNil(t, w.err)
}

func TestWriter_SetColor(t *testing.T) {
	w, _, _ := newTestWriter()

	require.NoError(t, w.SetColor("always"))
	assert.True(t, w.color)
	require.NoError(t, w.SetColor("never"))
	assert.False(t, w.color)
	assert.ErrorContains(t, w.SetColor("sometimes"), `invalid color mode "sometimes"`)
}

func TestWriter_Lines(t *testing.T) {
	tests := []struct {
		name       string
		write      func(w *Writer)
		wantStdout string
		wantStderr string
	}{
		{
			name:       "println",
			write:      func(w *Writer) { w.Println("hello %s", "world") },
			wantStdout: "hello world\n",
		},
		{
			name:       "errorln",
			write:      func(w *Writer) { w.Errorln("error %d", 42) },
			wantStderr: "error 42\n",
		},
		{
			name:       "info",
			write:      func(w *Writer) { w.Info("Running fixtures from %s", "cases") },
			wantStdout: "Running fixtures from cases\n",
		},
		{
			name:       "success",
			write:      func(w *Writer) { w.Success("%d match(es)", 3) },
			wantStdout: "3 match(es)\n",
		},
		{
			name:       "hint",
			write:      func(w *Writer) { w.Hint("Run with -v") },
			wantStdout: "Run with -v\n",
		},
		{
			name:       "warning",
			write:      func(w *Writer) { w.Warning("unknown key %q", "polcy") },
			wantStderr: "warning: unknown key \"polcy\"\n",
		},
		{
			name:       "error prefix",
			write:      func(w *Writer) { w.ErrorPrefix("cannot read %s", "a.json") },
			wantStderr: "treediff: cannot read a.json\n",
		},
		{
			name:       "validation success",
			write:      func(w *Writer) { w.ValidationSuccess("configuration is valid") },
			wantStdout: "configuration is valid\n",
		},
		{
			name:       "section",
			write:      func(w *Writer) { w.Section("orders") },
			wantStdout: "\n=== orders ===\n",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			w, stdout, stderr := newTestWriter()
			tt.write(w)
			assert.Equal(t, tt.wantStdout, stdout.String())
			assert.Equal(t, tt.wantStderr, stderr.String())
		})
	}
}

func TestWriter_Quiet(t *testing.T) {
	w, stdout, stderr := newTestWriter()
	w.SetQuiet(true)

	w.Info("hidden")
	w.Section("hidden")
	w.Warning("shown")

	assert.Empty(t, stdout.String())
	assert.Equal(t, "warning: shown\n", stderr.String())
}

func TestWriter_Color(t *testing.T) {
	stdout := &bytes.Buffer{}
	stderr := &bytes.Buffer{}
	w := NewWithWriters(stdout, stderr, true)

	w.Success("ok")
	w.ErrorPrefix("bad")
	w.ValidationSuccess("valid")

	assert.Equal(t, green+"ok"+reset+"\n"+green+"✓"+reset+" valid\n", stdout.String())
	assert.Equal(t, red+"treediff:"+reset+" bad\n", stderr.String())
}

func TestWriter_Table(t *testing.T) {
	tests := []struct {
		name    string
		headers []string
		rows    [][]string
		want    string
	}{
		{
			name:    "widths follow longest cell",
			headers: []string{"SUITE", "PASSED"},
			rows:    [][]string{{"checkout", "3"}, {"inventory", "12"}},
			want: "SUITE      PASSED\n" +
				"---------  ------\n" +
				"checkout   3     \n" +
				"inventory  12    \n",
		},
		{
			name:    "no rows",
			headers: []string{"A", "B"},
			want:    "A  B\n-  -\n",
		},
		{
			name:    "short row",
			headers: []string{"A", "B", "C"},
			rows:    [][]string{{"1"}},
			want:    "A  B  C\n-  -  -\n1\n",
		},
		{
			name:    "extra cells dropped",
			headers: []string{"A"},
			rows:    [][]string{{"1", "2"}},
			want:    "A\n-\n1\n",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			w, stdout, _ := newTestWriter()
			w.Table(tt.headers, tt.rows)
			assert.Equal(t, tt.want, stdout.String())
			for _, line := range strings.Split(strings.TrimSuffix(stdout.String(), "\n"), "\n") {
				assert.NotContains(t, line, "\t")
			}
		})
	}
}
