package vcs

import (
	"context"

	"github.com/thomas-vilte/reviewbot/internal/models"
)

// SourceControl is everything the review engine needs from the code host.
type SourceControl interface {
	// ListOpenCandidates lists every open pull request of the repository.
	// The listing may not carry changed-file counts; see models.UnknownFileCount.
	ListOpenCandidates(ctx context.Context, repo models.RepoRef) ([]models.Candidate, error)
	// GetCandidate fetches a single pull request with all of its fields.
	GetCandidate(ctx context.Context, repo models.RepoRef, number int) (models.Candidate, error)
	// ListComments returns every issue comment on the pull request.
	ListComments(ctx context.Context, repo models.RepoRef, number int) ([]models.Comment, error)
	// GetDiff returns the unified diff of the pull request.
	GetDiff(ctx context.Context, repo models.RepoRef, number int) (string, error)
	// GetCombinedStatus collapses the commit statuses of sha.
	GetCombinedStatus(ctx context.Context, repo models.RepoRef, sha string) (models.CIState, error)
	// PostComment publishes a new issue comment on the pull request.
	PostComment(ctx context.Context, repo models.RepoRef, number int, body string) error
}

// ClientProvider hands out a SourceControl authorized for a repository.
type ClientProvider interface {
	ForRepo(ctx context.Context, repo models.RepoRef) (SourceControl, error)
}

// InstallationProvider hands out a SourceControl acting as a GitHub App
// installation, as identified by webhook deliveries.
type InstallationProvider interface {
	ForInstallation(ctx context.Context, installationID int64) (SourceControl, error)
}
