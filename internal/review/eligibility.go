package review

import "github.com/thomas-vilte/reviewbot/internal/models"

// CheckEligibility applies the checks that need no network call. An unknown
// file count passes; the pipeline resolves it before reviewing.
func CheckEligibility(c models.Candidate) (models.Reason, bool) {
	switch {
	case c.State != models.StateOpen:
		return models.ReasonClosed, false
	case c.Draft:
		return models.ReasonDraft, false
	case c.ChangedFiles == 0:
		return models.ReasonZeroFiles, false
	default:
		return models.ReasonNone, true
	}
}

// partitionEligible splits candidates into those worth checking further and
// the skip outcomes of the rest, both in input order.
func partitionEligible(candidates []models.Candidate) ([]models.Candidate, []models.Outcome) {
	var eligible []models.Candidate
	var skipped []models.Outcome
	for _, c := range candidates {
		if reason, ok := CheckEligibility(c); !ok {
			skipped = append(skipped, models.Skipped(c.Number, reason))
			continue
		}
		eligible = append(eligible, c)
	}
	return eligible, skipped
}
