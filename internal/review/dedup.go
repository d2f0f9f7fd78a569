package review

import (
	"context"
	"strings"

	"github.com/thomas-vilte/reviewbot/internal/models"
	"github.com/thomas-vilte/reviewbot/internal/vcs"
)

// Marker is embedded in every posted review. Its presence in any comment
// means the pull request was already reviewed. It is never localized.
const Marker = "<!-- openchaos-bot:review -->"

type DedupChecker struct {
	vcs vcs.SourceControl
}

func NewDedupChecker(sc vcs.SourceControl) *DedupChecker {
	return &DedupChecker{vcs: sc}
}

// HasExistingReview lists every comment of the candidate and looks for Marker.
func (d *DedupChecker) HasExistingReview(ctx context.Context, repo models.RepoRef, c models.Candidate) (bool, error) {
	comments, err := d.vcs.ListComments(ctx, repo, c.Number)
	if err != nil {
		return false, err
	}
	for _, comment := range comments {
		if strings.Contains(comment.Body, Marker) {
			return true, nil
		}
	}
	return false, nil
}
