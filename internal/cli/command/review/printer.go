package review

import (
	"encoding/json"
	"fmt"
	"io"

	"github.com/fatih/color"

	"github.com/thomas-vilte/reviewbot/internal/models"
	"github.com/thomas-vilte/reviewbot/internal/ui"
)

var (
	titleColor    = ui.Info
	reviewedColor = color.New(color.FgGreen)
	skippedColor  = ui.Dim
	errorColor    = color.New(color.FgRed)
	deferredColor = color.New(color.FgYellow)
)

func PrintJSON(w io.Writer, report *models.Report) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(report)
}

// PrintReport writes the counts of a run and, when verbose, one line per
// pull request.
func PrintReport(w io.Writer, report *models.Report, verbose bool) {
	titleColor.Fprintf(w, "%s of %s finished in %dms\n", report.Trigger, report.Repo, report.ElapsedMs)

	reviewedColor.Fprintf(w, "  reviewed  %d\n", report.Reviewed)
	skippedColor.Fprintf(w, "  skipped   %d\n", report.Skipped)
	errorColor.Fprintf(w, "  errors    %d\n", report.Errored)
	deferredColor.Fprintf(w, "  deferred  %d\n", report.Deferred)

	if verbose {
		for _, o := range report.Outcomes {
			line := fmt.Sprintf("  #%d %s", o.Number, o.Label())
			if o.Message != "" {
				line += " (" + o.Message + ")"
			}
			colorFor(o.Status).Fprintln(w, line)
		}
	}

	if report.Hint != "" {
		ui.PrintWarning(w, report.Hint)
	}
}

func colorFor(s models.Status) *color.Color {
	switch s {
	case models.StatusReviewed:
		return reviewedColor
	case models.StatusError:
		return errorColor
	case models.StatusDeferred:
		return deferredColor
	default:
		return skippedColor
	}
}
