package ai

import (
	"context"

	domainErrors "github.com/thomas-vilte/reviewbot/internal/errors"
)

// ErrNoContent means the provider answered without usable text. Callers
// treat it the same as a failed request.
var ErrNoContent = domainErrors.ErrEmptyAIOutput

// SummaryGenerator turns a (possibly truncated) diff into the three-line
// SUMMARY/FILES/IMPACT text.
type SummaryGenerator interface {
	GenerateSummary(ctx context.Context, diff string, truncated bool) (string, error)
}
