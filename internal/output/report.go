package output

import (
	"encoding/json"
	"fmt"
	"strconv"
	"time"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"github.com/AndreyAkinshin/treediff/internal/suite"
	"github.com/AndreyAkinshin/treediff/pkg/treediff"
)

// Report renders a comparison report. Every mismatch is printed; matches
// only when verbose is set. An empty name omits the section header.
func (w *Writer) Report(name string, r *treediff.Report, verbose bool) {
	if name != "" {
		w.Section(name)
	}
	w.outcomes(r, verbose, "")
	matches, mismatches := r.Counts()
	line := fmt.Sprintf("%d match(es), %d mismatch(es)", matches, mismatches)
	if mismatches == 0 {
		w.Success("%s", line)
	} else {
		w.Println("%s", w.paint(red, line))
	}
}

func (w *Writer) outcomes(r *treediff.Report, verbose bool, indent string) {
	for _, o := range r.Outcomes {
		switch {
		case o.IsMismatch():
			w.Println("%s%s %s", indent, w.paint(red, "FAIL"), o)
		case verbose:
			w.Println("%s%s", indent, w.paint(dim, "ok   "+o.String()))
		}
	}
}

// SuiteResult prints one line per case. Failed cases list their
// mismatches; passing outcomes appear only when verbose is set.
func (w *Writer) SuiteResult(res *suite.Result, verbose bool) {
	if !w.quiet {
		w.Section("Suite " + res.Suite)
	}
	for _, cr := range res.Results {
		name := cr.Case.Name
		duration := formatDuration(cr.Duration)
		switch cr.Status {
		case suite.StatusPassed:
			if w.quiet {
				continue
			}
			w.caseLine(name, true, duration, "")
			if verbose && cr.Report != nil {
				w.outcomes(cr.Report, true, "      ")
			}
		case suite.StatusSkipped:
			if w.quiet {
				continue
			}
			w.Println("    %s", w.paint(dim, fmt.Sprintf("- %-12s skipped", name)))
		case suite.StatusFailed:
			w.caseLine(name, false, duration, fmt.Sprintf("%d mismatch(es)", cr.Mismatches()))
			if cr.Report != nil {
				w.outcomes(cr.Report, verbose, "      ")
			}
		case suite.StatusError:
			msg := ""
			if cr.Err != nil {
				msg = cr.Err.Error()
			}
			w.caseLine(name, false, duration, msg)
		}
	}
}

// SuiteSummary prints the totals across suites followed by the final
// verdict line.
func (w *Writer) SuiteSummary(results []*suite.Result) {
	var passed, failed, skipped, errored int
	var elapsed time.Duration
	for _, r := range results {
		passed += r.Passed
		failed += r.Failed
		skipped += r.Skipped
		errored += r.Errored
		elapsed += r.Duration
	}

	w.Println("")
	w.Println("%s", w.paint(bold+cyan, "=== Summary ==="))
	w.Println("")
	if len(results) > 1 && !w.quiet {
		rows := make([][]string, 0, len(results))
		for _, r := range results {
			rows = append(rows, []string{r.Suite, strconv.Itoa(r.Passed), strconv.Itoa(r.Failed), strconv.Itoa(r.Skipped), strconv.Itoa(r.Errored)})
		}
		w.Table([]string{"SUITE", "PASSED", "FAILED", "SKIPPED", "ERRORS"}, rows)
		w.Println("")
	}
	w.summaryItem("Suites", strconv.Itoa(len(results)), "")
	w.summaryItem(statusLabel(suite.StatusPassed), strconv.Itoa(passed), green)
	if failed > 0 {
		w.summaryItem(statusLabel(suite.StatusFailed), strconv.Itoa(failed), red)
	}
	if skipped > 0 {
		w.summaryItem(statusLabel(suite.StatusSkipped), strconv.Itoa(skipped), "")
	}
	if errored > 0 {
		w.summaryItem(statusLabel(suite.StatusError), strconv.Itoa(errored), red)
	}
	w.summaryItem("Duration", formatDuration(elapsed), "")

	var verdict string
	style := green
	switch total := passed + failed + skipped + errored; {
	case failed+errored > 0:
		verdict = fmt.Sprintf("%d of %d case(s) did not pass.", failed+errored, total)
		style = red
	case skipped > 0:
		verdict = fmt.Sprintf("%d case(s) passed, %d skipped.", passed, skipped)
	default:
		verdict = fmt.Sprintf("All %d case(s) passed.", passed)
	}
	w.Println("")
	w.Println("%s", w.paint(style, verdict))
}

func (w *Writer) summaryItem(label, value, style string) {
	w.Println("  %s %s", w.paint(dim, label+":"), w.paint(style, value))
}

// caseLine prints "+ name duration" for a passing case and
// "x name duration  (detail)" otherwise.
func (w *Writer) caseLine(name string, ok bool, duration, detail string) {
	mark, style := "x", red
	if ok {
		mark, style = "+", green
	}
	if w.color {
		mark = "✗"
		if ok {
			mark = "✓"
		}
	}
	line := fmt.Sprintf("    %s %-12s %s", w.paint(style, mark), name, w.paint(dim, duration))
	if !ok && detail != "" {
		line += "  " + w.paint(dim, "("+detail+")")
	}
	w.Println("%s", line)
}

// JSON writes v as indented JSON to stdout.
func (w *Writer) JSON(v any) error {
	enc := json.NewEncoder(w.out)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

// CaseView is the JSON rendering of a case result.
type CaseView struct {
	Name       string           `json:"name"`
	File       string           `json:"file"`
	Status     suite.Status     `json:"status"`
	DurationMS float64          `json:"duration_ms"`
	Error      string           `json:"error,omitempty"`
	Report     *treediff.Report `json:"report,omitempty"`
}

// SuiteView is the JSON rendering of a suite result.
type SuiteView struct {
	RunID   string     `json:"run_id"`
	Suite   string     `json:"suite"`
	Passed  int        `json:"passed"`
	Failed  int        `json:"failed"`
	Skipped int        `json:"skipped"`
	Errored int        `json:"errored"`
	Cases   []CaseView `json:"cases"`
}

// SuiteViews converts suite results for JSON output.
func SuiteViews(results []*suite.Result) []SuiteView {
	views := make([]SuiteView, 0, len(results))
	for _, r := range results {
		v := SuiteView{
			RunID:   r.RunID,
			Suite:   r.Suite,
			Passed:  r.Passed,
			Failed:  r.Failed,
			Skipped: r.Skipped,
			Errored: r.Errored,
			Cases:   make([]CaseView, 0, len(r.Results)),
		}
		for _, cr := range r.Results {
			cv := CaseView{
				Name:       cr.Case.Name,
				File:       cr.Case.File,
				Status:     cr.Status,
				DurationMS: float64(cr.Duration.Microseconds()) / 1000,
				Report:     cr.Report,
			}
			if cr.Err != nil {
				cv.Error = cr.Err.Error()
			}
			v.Cases = append(v.Cases, cv)
		}
		views = append(views, v)
	}
	return views
}

func statusLabel(s suite.Status) string {
	return cases.Title(language.English).String(s.String())
}

func formatDuration(d time.Duration) string {
	switch {
	case d < time.Millisecond:
		return d.Round(time.Microsecond).String()
	case d < time.Second:
		return d.Round(time.Millisecond).String()
	default:
		return d.Round(10 * time.Millisecond).String()
	}
}
