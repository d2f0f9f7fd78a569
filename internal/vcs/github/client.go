package github

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/google/go-github/v80/github"
	domainErrors "github.com/thomas-vilte/reviewbot/internal/errors"
	"github.com/thomas-vilte/reviewbot/internal/logger"
	"github.com/thomas-vilte/reviewbot/internal/models"
	"github.com/thomas-vilte/reviewbot/internal/vcs"
)

var _ vcs.SourceControl = (*GitHubClient)(nil)

const perPage = 100

type PullRequestsService interface {
	List(ctx context.Context, owner, repo string, opts *github.PullRequestListOptions) ([]*github.PullRequest, *github.Response, error)
	Get(ctx context.Context, owner, repo string, number int) (*github.PullRequest, *github.Response, error)
	GetRaw(ctx context.Context, owner, repo string, number int, opts github.RawOptions) (string, *github.Response, error)
	ListFiles(ctx context.Context, owner, repo string, number int, opts *github.ListOptions) ([]*github.CommitFile, *github.Response, error)
}

type IssuesService interface {
	ListComments(ctx context.Context, owner, repo string, number int, opts *github.IssueListCommentsOptions) ([]*github.IssueComment, *github.Response, error)
	CreateComment(ctx context.Context, owner, repo string, number int, comment *github.IssueComment) (*github.IssueComment, *github.Response, error)
}

type RepositoriesService interface {
	GetCombinedStatus(ctx context.Context, owner, repo, ref string, opts *github.ListOptions) (*github.CombinedStatus, *github.Response, error)
}

type GitHubClient struct {
	prService     PullRequestsService
	issuesService IssuesService
	repoService   RepositoriesService
}

// NewGitHubClient wraps an authorized HTTP client. baseURL targets a GitHub
// Enterprise or test server and may be empty.
func NewGitHubClient(httpClient *http.Client, baseURL string) (*GitHubClient, error) {
	client := github.NewClient(httpClient)
	if baseURL != "" {
		var err error
		client, err = client.WithEnterpriseURLs(baseURL, baseURL)
		if err != nil {
			return nil, domainErrors.ErrInvalidConfig.
				WithError(err).
				WithContext("base_url", baseURL)
		}
	}
	return NewGitHubClientWithServices(client.PullRequests, client.Issues, client.Repositories), nil
}

func NewGitHubClientWithServices(
	prService PullRequestsService,
	issuesService IssuesService,
	repoService RepositoriesService,
) *GitHubClient {
	return &GitHubClient{
		prService:     prService,
		issuesService: issuesService,
		repoService:   repoService,
	}
}

func (ghc *GitHubClient) ListOpenCandidates(ctx context.Context, repo models.RepoRef) ([]models.Candidate, error) {
	log := logger.FromContext(ctx)

	opts := &github.PullRequestListOptions{
		State:       models.StateOpen,
		ListOptions: github.ListOptions{PerPage: perPage},
	}

	var candidates []models.Candidate
	for {
		prs, resp, err := ghc.prService.List(ctx, repo.Owner, repo.Name, opts)
		if err != nil {
			log.Error("failed to list github pull requests",
				"error", err,
				"repo", repo.String(),
				"page", opts.Page)
			return nil, classify(domainErrors.ErrListCandidates, "list pull requests", repo, resp, err)
		}
		for _, pr := range prs {
			candidates = append(candidates, ToCandidate(pr))
		}
		if resp == nil || resp.NextPage == 0 {
			break
		}
		opts.Page = resp.NextPage
	}

	log.Debug("github pull requests listed",
		"repo", repo.String(),
		"count", len(candidates))

	return candidates, nil
}

func (ghc *GitHubClient) GetCandidate(ctx context.Context, repo models.RepoRef, number int) (models.Candidate, error) {
	pr, resp, err := ghc.prService.Get(ctx, repo.Owner, repo.Name, number)
	if err != nil {
		return models.Candidate{}, classify(domainErrors.ErrFetch, "get PR", repo, resp, err).
			WithContext("pr_number", number)
	}
	return ToCandidate(pr), nil
}

func (ghc *GitHubClient) ListComments(ctx context.Context, repo models.RepoRef, number int) ([]models.Comment, error) {
	opts := &github.IssueListCommentsOptions{
		ListOptions: github.ListOptions{PerPage: perPage},
	}

	var comments []models.Comment
	for {
		page, resp, err := ghc.issuesService.ListComments(ctx, repo.Owner, repo.Name, number, opts)
		if err != nil {
			return nil, classify(domainErrors.ErrFetch, "list comments", repo, resp, err).
				WithContext("pr_number", number)
		}
		for _, c := range page {
			comments = append(comments, models.Comment{ID: c.GetID(), Body: c.GetBody()})
		}
		if resp == nil || resp.NextPage == 0 {
			break
		}
		opts.Page = resp.NextPage
	}
	return comments, nil
}

func (ghc *GitHubClient) GetDiff(ctx context.Context, repo models.RepoRef, number int) (string, error) {
	log := logger.FromContext(ctx)

	diff, resp, err := ghc.prService.GetRaw(ctx, repo.Owner, repo.Name, number, github.RawOptions{Type: github.Diff})
	if err != nil {
		// If 406 error (diff too large), rebuild it from the per-file patches
		if resp != nil && resp.StatusCode == http.StatusNotAcceptable {
			log.Warn("PR diff too large, fetching patches file by file",
				"pr_number", number,
				"repo", repo.String())
			return ghc.getDiffFromFiles(ctx, repo, number)
		}
		return "", classify(domainErrors.ErrFetch, "get diff", repo, resp, err).
			WithContext("pr_number", number)
	}

	log.Debug("github PR diff fetched",
		"pr_number", number,
		"diff_size", len(diff))

	return diff, nil
}

// getDiffFromFiles concatenates the patches GitHub reports per file. Binary
// files have no patch and are skipped.
func (ghc *GitHubClient) getDiffFromFiles(ctx context.Context, repo models.RepoRef, number int) (string, error) {
	var combinedDiff strings.Builder

	opts := &github.ListOptions{PerPage: perPage}
	for {
		files, resp, err := ghc.prService.ListFiles(ctx, repo.Owner, repo.Name, number, opts)
		if err != nil {
			return "", classify(domainErrors.ErrFetch, "list files", repo, resp, err).
				WithContext("pr_number", number)
		}
		for _, file := range files {
			if file.Patch == nil {
				continue
			}
			name := file.GetFilename()
			fmt.Fprintf(&combinedDiff, "diff --git a/%s b/%s\n--- a/%s\n+++ b/%s\n", name, name, name, name)
			combinedDiff.WriteString(file.GetPatch())
			combinedDiff.WriteString("\n")
		}
		if resp == nil || resp.NextPage == 0 {
			break
		}
		opts.Page = resp.NextPage
	}

	return combinedDiff.String(), nil
}

func (ghc *GitHubClient) GetCombinedStatus(ctx context.Context, repo models.RepoRef, sha string) (models.CIState, error) {
	status, resp, err := ghc.repoService.GetCombinedStatus(ctx, repo.Owner, repo.Name, sha, nil)
	if err != nil {
		return models.CIPending, classify(domainErrors.ErrFetch, "get combined status", repo, resp, err).
			WithContext("sha", sha)
	}
	return models.CIStateFromCombined(status.GetState()), nil
}

func (ghc *GitHubClient) PostComment(ctx context.Context, repo models.RepoRef, number int, body string) error {
	comment := &github.IssueComment{Body: github.Ptr(body)}

	created, resp, err := ghc.issuesService.CreateComment(ctx, repo.Owner, repo.Name, number, comment)
	if err != nil {
		cause := classify(domainErrors.ErrPublish, "create comment", repo, resp, err)
		publishErr := domainErrors.ErrPublish.
			WithError(cause).
			WithContext("pr_number", number).
			WithContext("repo", repo.String())
		if code := statusCode(resp); code != 0 {
			publishErr = publishErr.WithContext("status", code)
		}
		return publishErr
	}

	logger.Debug(ctx, "github comment created",
		"pr_number", number,
		"comment_id", created.GetID())
	return nil
}

// ToCandidate converts a pull request as returned by the API or carried by a
// webhook payload. A missing changed_files becomes models.UnknownFileCount.
func ToCandidate(pr *github.PullRequest) models.Candidate {
	changed := models.UnknownFileCount
	if pr.ChangedFiles != nil {
		changed = pr.GetChangedFiles()
	}
	return models.Candidate{
		Number:       pr.GetNumber(),
		State:        pr.GetState(),
		Draft:        pr.GetDraft(),
		ChangedFiles: changed,
		HeadSHA:      pr.GetHead().GetSHA(),
		Title:        pr.GetTitle(),
		Author:       pr.GetUser().GetLogin(),
		URL:          pr.GetHTMLURL(),
	}
}

func statusCode(resp *github.Response) int {
	if resp == nil || resp.Response == nil {
		return 0
	}
	return resp.StatusCode
}

// classify maps a failed GitHub call to the most specific AppError. fallback
// is used when the status code says nothing useful.
func classify(fallback *domainErrors.AppError, operation string, repo models.RepoRef, resp *github.Response, err error) *domainErrors.AppError {
	var rateErr *github.RateLimitError
	var abuseErr *github.AbuseRateLimitError

	var appErr *domainErrors.AppError
	code := statusCode(resp)
	switch {
	case errors.As(err, &rateErr), errors.As(err, &abuseErr), code == http.StatusTooManyRequests:
		appErr = domainErrors.ErrGitHubRateLimit
		if resp != nil && resp.Response != nil {
			if retry := resp.Header.Get("Retry-After"); retry != "" {
				appErr = appErr.WithContext("retry_after", retry)
			}
		}
	case code == http.StatusUnauthorized:
		appErr = domainErrors.ErrGitHubTokenInvalid
	case code == http.StatusForbidden:
		appErr = domainErrors.ErrGitHubInsufficientPerms
	case code == http.StatusNotFound:
		appErr = domainErrors.ErrRepositoryNotFound
	default:
		appErr = fallback
	}

	appErr = appErr.
		WithError(err).
		WithContext("operation", operation).
		WithContext("repo", repo.String())
	if code != 0 {
		appErr = appErr.WithContext("status", code)
	}
	return appErr
}
