package server

import (
	"context"

	"github.com/stretchr/testify/mock"

	"github.com/thomas-vilte/reviewbot/internal/models"
	"github.com/thomas-vilte/reviewbot/internal/notify/discord"
	"github.com/thomas-vilte/reviewbot/internal/vcs"
)

type (
	mockReviewer struct {
		mock.Mock
	}

	mockNotifier struct {
		mock.Mock
	}

	mockClients struct {
		mock.Mock
	}
)

func (m *mockReviewer) Sweep(ctx context.Context, repo models.RepoRef) (*models.Report, error) {
	args := m.Called(ctx, repo)
	report, _ := args.Get(0).(*models.Report)
	return report, args.Error(1)
}

func (m *mockReviewer) Backfill(ctx context.Context, repo models.RepoRef) (*models.Report, error) {
	args := m.Called(ctx, repo)
	report, _ := args.Get(0).(*models.Report)
	return report, args.Error(1)
}

func (m *mockReviewer) ReviewOneWith(ctx context.Context, sc vcs.SourceControl, repo models.RepoRef, c models.Candidate) *models.Report {
	args := m.Called(ctx, sc, repo, c)
	return args.Get(0).(*models.Report)
}

func (m *mockNotifier) NotifyMerge(ctx context.Context, pr discord.MergedPR) (bool, error) {
	args := m.Called(ctx, pr)
	return args.Bool(0), args.Error(1)
}

func (m *mockNotifier) NotifyNewPR(ctx context.Context, pr discord.NewPR) (bool, error) {
	args := m.Called(ctx, pr)
	return args.Bool(0), args.Error(1)
}

func (m *mockNotifier) NotifyNewIssue(ctx context.Context, issue discord.NewIssue) (bool, error) {
	args := m.Called(ctx, issue)
	return args.Bool(0), args.Error(1)
}

func (m *mockClients) ForRepo(ctx context.Context, repo models.RepoRef) (vcs.SourceControl, error) {
	args := m.Called(ctx, repo)
	sc, _ := args.Get(0).(vcs.SourceControl)
	return sc, args.Error(1)
}

func (m *mockClients) ForInstallation(ctx context.Context, id int64) (vcs.SourceControl, error) {
	args := m.Called(ctx, id)
	sc, _ := args.Get(0).(vcs.SourceControl)
	return sc, args.Error(1)
}
