package review

import (
	"context"

	"github.com/stretchr/testify/mock"

	"github.com/thomas-vilte/reviewbot/internal/models"
	"github.com/thomas-vilte/reviewbot/internal/vcs"
)

type (
	MockSourceControl struct {
		mock.Mock
	}

	MockSummaryGenerator struct {
		mock.Mock
	}

	MockClientProvider struct {
		mock.Mock
	}
)

func (m *MockSourceControl) ListOpenCandidates(ctx context.Context, repo models.RepoRef) ([]models.Candidate, error) {
	args := m.Called(ctx, repo)
	return args.Get(0).([]models.Candidate), args.Error(1)
}

func (m *MockSourceControl) GetCandidate(ctx context.Context, repo models.RepoRef, number int) (models.Candidate, error) {
	args := m.Called(ctx, repo, number)
	return args.Get(0).(models.Candidate), args.Error(1)
}

func (m *MockSourceControl) ListComments(ctx context.Context, repo models.RepoRef, number int) ([]models.Comment, error) {
	args := m.Called(ctx, repo, number)
	return args.Get(0).([]models.Comment), args.Error(1)
}

func (m *MockSourceControl) GetDiff(ctx context.Context, repo models.RepoRef, number int) (string, error) {
	args := m.Called(ctx, repo, number)
	return args.String(0), args.Error(1)
}

func (m *MockSourceControl) GetCombinedStatus(ctx context.Context, repo models.RepoRef, sha string) (models.CIState, error) {
	args := m.Called(ctx, repo, sha)
	return args.Get(0).(models.CIState), args.Error(1)
}

func (m *MockSourceControl) PostComment(ctx context.Context, repo models.RepoRef, number int, body string) error {
	args := m.Called(ctx, repo, number, body)
	return args.Error(0)
}

func (m *MockSummaryGenerator) GenerateSummary(ctx context.Context, diff string, truncated bool) (string, error) {
	args := m.Called(ctx, diff, truncated)
	return args.String(0), args.Error(1)
}

func (m *MockClientProvider) ForRepo(ctx context.Context, repo models.RepoRef) (vcs.SourceControl, error) {
	args := m.Called(ctx, repo)
	if sc, ok := args.Get(0).(vcs.SourceControl); ok {
		return sc, args.Error(1)
	}
	return nil, args.Error(1)
}
