package server

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/thomas-vilte/reviewbot/internal/config"
	domainErrors "github.com/thomas-vilte/reviewbot/internal/errors"
	"github.com/thomas-vilte/reviewbot/internal/models"
	"github.com/thomas-vilte/reviewbot/internal/notify/discord"
	"github.com/thomas-vilte/reviewbot/internal/review"
	"github.com/thomas-vilte/reviewbot/internal/version"
)

const webhookSecret = "hook-secret"

var testRepo = models.RepoRef{Owner: "skridlevsky", Name: "openchaos"}

type fixture struct {
	reviewer *mockReviewer
	notifier *mockNotifier
	clients  *mockClients
	sc       *review.MockSourceControl
	server   *Server
}

func newFixture() *fixture {
	cfg := config.Default()
	cfg.GitHub.Owner = testRepo.Owner
	cfg.GitHub.Repo = testRepo.Name
	cfg.GitHub.WebhookSecret = webhookSecret
	cfg.Server.CronSecret = "cron-secret"
	cfg.Server.BackfillSecret = "backfill-secret"

	f := &fixture{
		reviewer: &mockReviewer{},
		notifier: &mockNotifier{},
		clients:  &mockClients{},
		sc:       &review.MockSourceControl{},
	}
	f.server = New(cfg, f.reviewer, f.notifier, f.clients)
	return f
}

func (f *fixture) do(req *http.Request) *httptest.ResponseRecorder {
	rec := httptest.NewRecorder()
	f.server.Router().ServeHTTP(rec, req)
	return rec
}

func sign(body string) string {
	mac := hmac.New(sha256.New, []byte(webhookSecret))
	mac.Write([]byte(body))
	return "sha256=" + hex.EncodeToString(mac.Sum(nil))
}

func webhookRequest(event, body, signature string) *http.Request {
	req := httptest.NewRequest(http.MethodPost, "/api/webhook", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("X-GitHub-Event", event)
	req.Header.Set("X-GitHub-Delivery", "delivery-1")
	req.Header.Set("X-Hub-Signature-256", signature)
	return req
}

func decode(t *testing.T, rec *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	var body map[string]any
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&body))
	return body
}

const prOpenedPayload = `{
	"action": "opened",
	"installation": {"id": 77},
	"repository": {"name": "openchaos", "full_name": "skridlevsky/openchaos", "owner": {"login": "skridlevsky"}},
	"pull_request": {
		"number": 12, "state": "open", "draft": false, "changed_files": 3,
		"title": "Add chaos", "body": "Adds a button", "html_url": "https://github.com/skridlevsky/openchaos/pull/12",
		"head": {"sha": "abc"},
		"user": {"login": "alice", "html_url": "https://github.com/alice", "avatar_url": "https://avatars/alice"}
	}
}`

func TestHandleHealth(t *testing.T) {
	f := newFixture()

	rec := f.do(httptest.NewRequest(http.MethodGet, "/healthz", nil))

	assert.Equal(t, http.StatusOK, rec.Code)
	body := decode(t, rec)
	assert.Equal(t, "ok", body["status"])
	assert.Equal(t, version.FullVersion(), body["version"])
}

func TestHandleWebhook(t *testing.T) {
	t.Run("should reject a bad signature", func(t *testing.T) {
		f := newFixture()

		rec := f.do(webhookRequest("pull_request", prOpenedPayload, "sha256=deadbeef"))

		assert.Equal(t, http.StatusUnauthorized, rec.Code)
		assert.Equal(t, "Invalid signature", decode(t, rec)["error"])
		f.reviewer.AssertNotCalled(t, "ReviewOneWith", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
	})

	t.Run("should skip other events", func(t *testing.T) {
		f := newFixture()
		body := `{"zen": "keep it simple"}`

		rec := f.do(webhookRequest("ping", body, sign(body)))

		assert.Equal(t, http.StatusOK, rec.Code)
		assert.Equal(t, "Not a pull request or issue event", decode(t, rec)["skipped"])
	})

	t.Run("should announce and review an opened pull request", func(t *testing.T) {
		// Arrange
		f := newFixture()
		f.notifier.On("NotifyNewPR", mock.Anything, mock.MatchedBy(func(pr discord.NewPR) bool {
			return pr.Number == 12 && pr.Author == "alice" && pr.Repo == "skridlevsky/openchaos"
		})).Return(true, nil)
		f.clients.On("ForInstallation", mock.Anything, int64(77)).Return(f.sc, nil)
		f.reviewer.On("ReviewOneWith", mock.Anything, f.sc, testRepo, mock.MatchedBy(func(c models.Candidate) bool {
			return c.Number == 12 && c.ChangedFiles == 3 && c.HeadSHA == "abc"
		})).Return(&models.Report{Trigger: review.TriggerEvent, Total: 1, Reviewed: 1})

		// Act
		rec := f.do(webhookRequest("pull_request", prOpenedPayload, sign(prOpenedPayload)))

		// Assert
		assert.Equal(t, http.StatusOK, rec.Code)
		body := decode(t, rec)
		assert.Equal(t, true, body["reviewed"])
		assert.Equal(t, true, body["notified"])
		f.notifier.AssertExpectations(t)
		f.reviewer.AssertExpectations(t)
	})

	t.Run("should still review when the notification fails", func(t *testing.T) {
		f := newFixture()
		f.notifier.On("NotifyNewPR", mock.Anything, mock.Anything).Return(false, domainErrors.ErrWebhookDelivery)
		f.clients.On("ForInstallation", mock.Anything, int64(77)).Return(f.sc, nil)
		f.reviewer.On("ReviewOneWith", mock.Anything, f.sc, testRepo, mock.Anything).
			Return(&models.Report{Total: 1, Skipped: 1})

		rec := f.do(webhookRequest("pull_request", prOpenedPayload, sign(prOpenedPayload)))

		assert.Equal(t, http.StatusOK, rec.Code)
		body := decode(t, rec)
		assert.Equal(t, false, body["reviewed"])
		assert.Equal(t, false, body["notified"])
	})

	t.Run("should review ready_for_review without announcing", func(t *testing.T) {
		f := newFixture()
		payload := strings.Replace(prOpenedPayload, `"action": "opened"`, `"action": "ready_for_review"`, 1)
		f.clients.On("ForInstallation", mock.Anything, int64(77)).Return(f.sc, nil)
		f.reviewer.On("ReviewOneWith", mock.Anything, f.sc, testRepo, mock.Anything).
			Return(&models.Report{Total: 1, Reviewed: 1})

		rec := f.do(webhookRequest("pull_request", payload, sign(payload)))

		assert.Equal(t, http.StatusOK, rec.Code)
		f.notifier.AssertNotCalled(t, "NotifyNewPR", mock.Anything, mock.Anything)
	})

	t.Run("should report a missing installation", func(t *testing.T) {
		f := newFixture()
		payload := strings.Replace(prOpenedPayload, `"action": "opened"`, `"action": "ready_for_review"`, 1)
		f.clients.On("ForInstallation", mock.Anything, int64(77)).Return(nil, domainErrors.ErrInstallationNotFound)

		rec := f.do(webhookRequest("pull_request", payload, sign(payload)))

		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})

	t.Run("should announce a merge", func(t *testing.T) {
		f := newFixture()
		payload := `{
			"action": "closed",
			"repository": {"name": "openchaos", "full_name": "skridlevsky/openchaos", "owner": {"login": "skridlevsky"}},
			"pull_request": {"number": 12, "merged": true, "additions": 10, "deletions": 2, "changed_files": 1, "title": "Add chaos"}
		}`
		f.notifier.On("NotifyMerge", mock.Anything, mock.MatchedBy(func(pr discord.MergedPR) bool {
			return pr.Number == 12 && pr.Additions == 10 && pr.Deletions == 2 && pr.ChangedFiles == 1
		})).Return(true, nil)

		rec := f.do(webhookRequest("pull_request", payload, sign(payload)))

		assert.Equal(t, http.StatusOK, rec.Code)
		assert.Equal(t, true, decode(t, rec)["notified"])
		f.reviewer.AssertNotCalled(t, "ReviewOneWith", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
	})

	t.Run("should ignore a close without merge", func(t *testing.T) {
		f := newFixture()
		payload := `{"action": "closed", "repository": {"name": "openchaos", "owner": {"login": "skridlevsky"}}, "pull_request": {"number": 12, "merged": false}}`

		rec := f.do(webhookRequest("pull_request", payload, sign(payload)))

		assert.Equal(t, http.StatusOK, rec.Code)
		assert.Equal(t, "Closed without merge", decode(t, rec)["skipped"])
	})

	t.Run("should reject a payload without repository", func(t *testing.T) {
		f := newFixture()
		payload := `{"action": "opened", "pull_request": {"number": 12}}`

		rec := f.do(webhookRequest("pull_request", payload, sign(payload)))

		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})

	t.Run("should announce an opened issue with its labels", func(t *testing.T) {
		f := newFixture()
		payload := `{
			"action": "opened",
			"repository": {"name": "openchaos", "full_name": "skridlevsky/openchaos", "owner": {"login": "skridlevsky"}},
			"issue": {"number": 8, "title": "Bug", "body": "It broke", "labels": [{"name": "bug"}, {"name": "help wanted"}]}
		}`
		f.notifier.On("NotifyNewIssue", mock.Anything, mock.MatchedBy(func(i discord.NewIssue) bool {
			return i.Number == 8 && len(i.Labels) == 2 && i.Labels[1] == "help wanted"
		})).Return(true, nil)

		rec := f.do(webhookRequest("issues", payload, sign(payload)))

		assert.Equal(t, http.StatusOK, rec.Code)
		f.notifier.AssertExpectations(t)
	})
}

func TestHandleCron(t *testing.T) {
	t.Run("should require the cron secret", func(t *testing.T) {
		f := newFixture()
		req := httptest.NewRequest(http.MethodGet, "/api/cron", nil)
		req.Header.Set("Authorization", "Bearer wrong")

		rec := f.do(req)

		assert.Equal(t, http.StatusUnauthorized, rec.Code)
		f.reviewer.AssertNotCalled(t, "Sweep", mock.Anything, mock.Anything)
	})

	t.Run("should run a sweep and return the report", func(t *testing.T) {
		// Arrange
		f := newFixture()
		f.reviewer.On("Sweep", mock.Anything, testRepo).Return(&models.Report{
			Trigger:  review.TriggerSweep,
			Total:    2,
			Reviewed: 1,
			Errored:  1,
			Outcomes: []models.Outcome{models.Reviewed(1), models.Failed(2, models.ReasonPublishFailed, nil)},
		}, nil)
		req := httptest.NewRequest(http.MethodGet, "/api/cron", nil)
		req.Header.Set("Authorization", "Bearer cron-secret")

		// Act
		rec := f.do(req)

		// Assert
		assert.Equal(t, http.StatusOK, rec.Code)
		body := decode(t, rec)
		assert.Equal(t, true, body["ok"])
		assert.Equal(t, float64(1), body["reviewed"])
		assert.Equal(t, float64(1), body["errors"])
	})

	t.Run("should map run-level failures", func(t *testing.T) {
		f := newFixture()
		f.reviewer.On("Sweep", mock.Anything, testRepo).Return(nil, domainErrors.ErrInstallationNotFound)
		req := httptest.NewRequest(http.MethodGet, "/api/cron", nil)
		req.Header.Set("Authorization", "Bearer cron-secret")

		rec := f.do(req)

		assert.Equal(t, http.StatusBadRequest, rec.Code)
		assert.Contains(t, decode(t, rec)["error"], "not installed")
	})
}

func TestHandleBackfill(t *testing.T) {
	t.Run("should refuse when no secret is configured", func(t *testing.T) {
		f := newFixture()
		f.server.cfg.Server.BackfillSecret = ""
		req := httptest.NewRequest(http.MethodPost, "/api/backfill", nil)
		req.Header.Set("Authorization", "Bearer ")

		rec := f.do(req)

		assert.Equal(t, http.StatusUnauthorized, rec.Code)
	})

	t.Run("should return statuses and the follow-up hint", func(t *testing.T) {
		// Arrange
		f := newFixture()
		f.reviewer.On("Backfill", mock.Anything, testRepo).Return(&models.Report{
			Trigger:       review.TriggerBackfill,
			Total:         2,
			Skipped:       1,
			Deferred:      1,
			NeedsFollowUp: true,
			Hint:          "1 pull request was deferred, run again to continue",
			Outcomes: []models.Outcome{
				models.Skipped(1, models.ReasonDraft),
				models.Deferred(2, models.ReasonTimeoutBeforeReview),
			},
		}, nil)
		req := httptest.NewRequest(http.MethodPost, "/api/backfill", nil)
		req.Header.Set("Authorization", "Bearer backfill-secret")

		// Act
		rec := f.do(req)

		// Assert
		require.Equal(t, http.StatusOK, rec.Code)
		body := decode(t, rec)
		assert.Equal(t, true, body["needs_follow_up"])
		assert.Equal(t, "1 pull request was deferred, run again to continue", body["hint"])
		results := body["results"].([]any)
		require.Len(t, results, 2)
		assert.Equal(t, "skipped: draft", results[0].(map[string]any)["status"])
		assert.Equal(t, "deferred: timeout-before-review", results[1].(map[string]any)["status"])
	})
}
