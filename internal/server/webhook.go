package server

import (
	"context"
	"net/http"

	"github.com/google/go-github/v80/github"

	"github.com/thomas-vilte/reviewbot/internal/logger"
	"github.com/thomas-vilte/reviewbot/internal/models"
	"github.com/thomas-vilte/reviewbot/internal/notify/discord"
	"github.com/thomas-vilte/reviewbot/internal/vcs"
	ghclient "github.com/thomas-vilte/reviewbot/internal/vcs/github"
)

type webhookResponse struct {
	OK       bool           `json:"ok"`
	Skipped  string         `json:"skipped,omitempty"`
	Reviewed bool           `json:"reviewed"`
	Notified bool           `json:"notified"`
	Report   *models.Report `json:"report,omitempty"`
}

// POST /api/webhook
func (s *Server) handleWebhook(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	if s.cfg.GitHub.WebhookSecret == "" {
		logger.Warn(ctx, "webhook secret not configured, rejecting delivery")
		writeError(w, http.StatusUnauthorized, "Invalid signature")
		return
	}

	payload, err := github.ValidatePayload(r, []byte(s.cfg.GitHub.WebhookSecret))
	if err != nil {
		logger.Warn(ctx, "webhook signature rejected", "error", err)
		writeError(w, http.StatusUnauthorized, "Invalid signature")
		return
	}

	eventType := github.WebHookType(r)
	ctx = logger.With(ctx, "event", eventType, "delivery", github.DeliveryID(r))

	switch eventType {
	case "pull_request", "issues":
	default:
		writeJSON(w, http.StatusOK, webhookResponse{OK: true, Skipped: "Not a pull request or issue event"})
		return
	}

	event, err := github.ParseWebHook(eventType, payload)
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid JSON payload")
		return
	}

	switch e := event.(type) {
	case *github.PullRequestEvent:
		s.handlePullRequestEvent(ctx, w, e)
	case *github.IssuesEvent:
		s.handleIssuesEvent(ctx, w, e)
	default:
		writeJSON(w, http.StatusOK, webhookResponse{OK: true, Skipped: "Unsupported event"})
	}
}

func (s *Server) handlePullRequestEvent(ctx context.Context, w http.ResponseWriter, e *github.PullRequestEvent) {
	pr := e.GetPullRequest()
	repo := models.RepoRef{Owner: e.GetRepo().GetOwner().GetLogin(), Name: e.GetRepo().GetName()}
	if pr == nil || repo.IsZero() {
		writeError(w, http.StatusBadRequest, "Missing required fields in payload")
		return
	}
	ctx = logger.With(ctx, "action", e.GetAction(), "repo", repo.String(), "pr", pr.GetNumber())

	resp := webhookResponse{OK: true}

	switch e.GetAction() {
	case "opened":
		resp.Notified = s.notify(ctx, func() (bool, error) {
			return s.notifier.NotifyNewPR(ctx, discord.NewPR{
				Number:       pr.GetNumber(),
				Title:        pr.GetTitle(),
				Body:         pr.GetBody(),
				Author:       pr.GetUser().GetLogin(),
				AuthorURL:    pr.GetUser().GetHTMLURL(),
				AuthorAvatar: pr.GetUser().GetAvatarURL(),
				URL:          pr.GetHTMLURL(),
				Repo:         e.GetRepo().GetFullName(),
			})
		})
		fallthrough
	case "ready_for_review":
		report, err := s.reviewEvent(ctx, e.GetInstallation().GetID(), repo, ghclient.ToCandidate(pr))
		if err != nil {
			logger.Error(ctx, "failed to resolve repository client", err)
			writeError(w, runStatus(err), err.Error())
			return
		}
		resp.Report = report
		resp.Reviewed = report.Reviewed > 0
	case "closed":
		if !pr.GetMerged() {
			resp.Skipped = "Closed without merge"
			break
		}
		resp.Notified = s.notify(ctx, func() (bool, error) {
			return s.notifier.NotifyMerge(ctx, discord.MergedPR{
				Number:       pr.GetNumber(),
				Title:        pr.GetTitle(),
				Author:       pr.GetUser().GetLogin(),
				AuthorURL:    pr.GetUser().GetHTMLURL(),
				AuthorAvatar: pr.GetUser().GetAvatarURL(),
				URL:          pr.GetHTMLURL(),
				Additions:    pr.GetAdditions(),
				Deletions:    pr.GetDeletions(),
				ChangedFiles: pr.GetChangedFiles(),
				Repo:         e.GetRepo().GetFullName(),
			})
		})
	default:
		resp.Skipped = "Not PR opened, ready_for_review or merged"
	}

	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleIssuesEvent(ctx context.Context, w http.ResponseWriter, e *github.IssuesEvent) {
	if e.GetAction() != "opened" {
		writeJSON(w, http.StatusOK, webhookResponse{OK: true, Skipped: "Not issue opened"})
		return
	}

	issue := e.GetIssue()
	labels := make([]string, 0, len(issue.Labels))
	for _, l := range issue.Labels {
		labels = append(labels, l.GetName())
	}

	notified := s.notify(ctx, func() (bool, error) {
		return s.notifier.NotifyNewIssue(ctx, discord.NewIssue{
			Number:       issue.GetNumber(),
			Title:        issue.GetTitle(),
			Body:         issue.GetBody(),
			Author:       issue.GetUser().GetLogin(),
			AuthorURL:    issue.GetUser().GetHTMLURL(),
			AuthorAvatar: issue.GetUser().GetAvatarURL(),
			URL:          issue.GetHTMLURL(),
			Repo:         e.GetRepo().GetFullName(),
			Labels:       labels,
		})
	})

	writeJSON(w, http.StatusOK, webhookResponse{OK: true, Notified: notified})
}

// reviewEvent reviews with the installation named by the delivery, or the
// repository's own client when the delivery carries none.
func (s *Server) reviewEvent(ctx context.Context, installationID int64, repo models.RepoRef, c models.Candidate) (*models.Report, error) {
	var (
		sc  vcs.SourceControl
		err error
	)
	if installationID != 0 {
		sc, err = s.clients.ForInstallation(ctx, installationID)
	} else {
		sc, err = s.clients.ForRepo(ctx, repo)
	}
	if err != nil {
		return nil, err
	}
	return s.reviewer.ReviewOneWith(ctx, sc, repo, c), nil
}

// notify never fails the delivery; chat notifications are best effort.
func (s *Server) notify(ctx context.Context, send func() (bool, error)) bool {
	ok, err := send()
	if err != nil {
		logger.Error(ctx, "notification failed", err)
	}
	return ok
}
