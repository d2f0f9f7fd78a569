// Package discord posts pull request and issue announcements to Discord
// channel webhooks.
package discord

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/thomas-vilte/reviewbot/internal/config"
	domainErrors "github.com/thomas-vilte/reviewbot/internal/errors"
	"github.com/thomas-vilte/reviewbot/internal/logger"
)

const (
	colorMerged   = 0x34d399
	colorNewPR    = 0x3b82f6
	colorNewIssue = 0x8b5cf6

	maxDescriptionRunes = 300
	noDescription       = "*No description provided.*"
)

type HTTPClient interface {
	Do(req *http.Request) (*http.Response, error)
}

type (
	// MergedPR is announced on the log channel.
	MergedPR struct {
		Number       int
		Title        string
		Author       string
		AuthorURL    string
		AuthorAvatar string
		URL          string
		Additions    int
		Deletions    int
		ChangedFiles int
		Repo         string
	}

	// NewPR is announced on the proposals channel.
	NewPR struct {
		Number       int
		Title        string
		Body         string
		Author       string
		AuthorURL    string
		AuthorAvatar string
		URL          string
		Repo         string
	}

	// NewIssue is announced on the proposals channel.
	NewIssue struct {
		Number       int
		Title        string
		Body         string
		Author       string
		AuthorURL    string
		AuthorAvatar string
		URL          string
		Repo         string
		Labels       []string
	}
)

type (
	embedAuthor struct {
		Name    string `json:"name"`
		IconURL string `json:"icon_url,omitempty"`
		URL     string `json:"url,omitempty"`
	}

	embedFooter struct {
		Text string `json:"text"`
	}

	embed struct {
		Author      embedAuthor `json:"author"`
		Title       string      `json:"title"`
		URL         string      `json:"url"`
		Description string      `json:"description"`
		Color       int         `json:"color"`
		Footer      embedFooter `json:"footer"`
		Timestamp   string      `json:"timestamp"`
	}

	webhookPayload struct {
		Embeds []embed `json:"embeds"`
	}
)

type Notifier struct {
	client       HTTPClient
	logURL       string
	proposalsURL string
	now          func() time.Time
}

// NewNotifier uses a client with a 10 second timeout when client is nil.
func NewNotifier(cfg config.DiscordConfig, client HTTPClient) *Notifier {
	if client == nil {
		client = &http.Client{Timeout: 10 * time.Second}
	}
	return &Notifier{
		client:       client,
		logURL:       cfg.LogWebhookURL,
		proposalsURL: cfg.ProposalsWebhookURL,
		now:          time.Now,
	}
}

// NotifyMerge announces a merged pull request. It returns false without an
// error when the log webhook is not configured.
func (n *Notifier) NotifyMerge(ctx context.Context, pr MergedPR) (bool, error) {
	if n.logURL == "" {
		logger.Warn(ctx, "DISCORD_WEBHOOK_URL not set, skipping merge notification")
		return false, nil
	}

	files := "files"
	if pr.ChangedFiles == 1 {
		files = "file"
	}

	return n.post(ctx, n.logURL, embed{
		Author:      embedAuthor{Name: pr.Author, IconURL: pr.AuthorAvatar, URL: pr.AuthorURL},
		Title:       fmt.Sprintf("#%d %s", pr.Number, pr.Title),
		URL:         pr.URL,
		Description: fmt.Sprintf("merged · +%d -%d · %d %s", pr.Additions, pr.Deletions, pr.ChangedFiles, files),
		Color:       colorMerged,
		Footer:      embedFooter{Text: pr.Repo},
	})
}

func (n *Notifier) NotifyNewPR(ctx context.Context, pr NewPR) (bool, error) {
	if n.proposalsURL == "" {
		logger.Warn(ctx, "DISCORD_WEBHOOK_URL_PROPOSALS not set, skipping PR notification")
		return false, nil
	}

	return n.post(ctx, n.proposalsURL, embed{
		Author:      embedAuthor{Name: pr.Author, IconURL: pr.AuthorAvatar, URL: pr.AuthorURL},
		Title:       fmt.Sprintf("PR #%d: %s", pr.Number, pr.Title),
		URL:         pr.URL,
		Description: excerpt(pr.Body),
		Color:       colorNewPR,
		Footer:      embedFooter{Text: pr.Repo},
	})
}

func (n *Notifier) NotifyNewIssue(ctx context.Context, issue NewIssue) (bool, error) {
	if n.proposalsURL == "" {
		logger.Warn(ctx, "DISCORD_WEBHOOK_URL_PROPOSALS not set, skipping issue notification")
		return false, nil
	}

	description := excerpt(issue.Body)
	if len(issue.Labels) > 0 {
		labels := make([]string, len(issue.Labels))
		for i, l := range issue.Labels {
			labels[i] = "`" + l + "`"
		}
		description += "\n\n" + strings.Join(labels, " ")
	}

	return n.post(ctx, n.proposalsURL, embed{
		Author:      embedAuthor{Name: issue.Author, IconURL: issue.AuthorAvatar, URL: issue.AuthorURL},
		Title:       fmt.Sprintf("Issue #%d: %s", issue.Number, issue.Title),
		URL:         issue.URL,
		Description: description,
		Color:       colorNewIssue,
		Footer:      embedFooter{Text: issue.Repo},
	})
}

func (n *Notifier) post(ctx context.Context, url string, e embed) (bool, error) {
	e.Timestamp = n.now().UTC().Format(time.RFC3339)

	body, err := json.Marshal(webhookPayload{Embeds: []embed{e}})
	if err != nil {
		return false, domainErrors.ErrWebhookDelivery.WithError(err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return false, domainErrors.ErrWebhookDelivery.WithError(err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := n.client.Do(req)
	if err != nil {
		return false, domainErrors.ErrWebhookDelivery.WithError(err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		text, _ := io.ReadAll(io.LimitReader(resp.Body, 1024))
		err := domainErrors.ErrWebhookDelivery.
			WithError(fmt.Errorf("%s", strings.TrimSpace(string(text)))).
			WithContext("status", resp.StatusCode)
		logger.Error(ctx, "discord webhook failed", err)
		return false, err
	}

	logger.Debug(ctx, "discord notification sent", "title", e.Title)
	return true, nil
}

// excerpt cuts body to 300 runes with an ellipsis, or returns the
// placeholder for an empty body.
func excerpt(body string) string {
	if body == "" {
		return noDescription
	}
	runes := []rune(body)
	if len(runes) <= maxDescriptionRunes {
		return body
	}
	return string(runes[:maxDescriptionRunes]) + "…"
}
