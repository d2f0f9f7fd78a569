package review

import (
	"time"

	"github.com/thomas-vilte/reviewbot/internal/models"
)

// Aggregate counts outcomes by status. Deferred candidates are only
// reported; nothing is queued for a later run.
func Aggregate(outcomes []models.Outcome, elapsed time.Duration) models.Report {
	report := models.Report{
		Total:     len(outcomes),
		ElapsedMs: elapsed.Milliseconds(),
		Outcomes:  outcomes,
	}

	for _, o := range outcomes {
		switch o.Status {
		case models.StatusReviewed:
			report.Reviewed++
		case models.StatusSkipped:
			report.Skipped++
		case models.StatusError:
			report.Errored++
		case models.StatusDeferred:
			report.Deferred++
		}
	}

	report.NeedsFollowUp = report.Deferred > 0
	return report
}
