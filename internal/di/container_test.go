package di

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/thomas-vilte/reviewbot/internal/config"
	domainErrors "github.com/thomas-vilte/reviewbot/internal/errors"
	"github.com/thomas-vilte/reviewbot/internal/i18n"
	"github.com/thomas-vilte/reviewbot/internal/review"
)

func newContainer(t *testing.T, mutate func(*config.Config)) *Container {
	t.Helper()
	cfg := config.Default()
	if mutate != nil {
		mutate(cfg)
	}
	trans, err := i18n.NewTranslations("en", "")
	require.NoError(t, err)
	return NewContainer(cfg, trans)
}

func TestContainer_GetOrchestrator(t *testing.T) {
	t.Run("should build once and reuse", func(t *testing.T) {
		// Arrange
		c := newContainer(t, func(cfg *config.Config) {
			cfg.GitHub.Token = "ghp_token"
			cfg.AI.OpenRouterAPIKey = "or-key"
		})

		// Act
		first, err1 := c.GetOrchestrator(context.Background())
		second, err2 := c.GetOrchestrator(context.Background())

		// Assert
		require.NoError(t, err1)
		require.NoError(t, err2)
		assert.Same(t, first, second)
		assert.Same(t, c.limiter, first.Limiter())
	})

	t.Run("should fail without GitHub credentials", func(t *testing.T) {
		c := newContainer(t, func(cfg *config.Config) {
			cfg.AI.OpenRouterAPIKey = "or-key"
		})

		_, err := c.GetOrchestrator(context.Background())

		assert.ErrorIs(t, err, domainErrors.ErrTokenMissing)
	})

	t.Run("should fail without an AI key", func(t *testing.T) {
		c := newContainer(t, func(cfg *config.Config) {
			cfg.GitHub.Token = "ghp_token"
		})

		_, err := c.GetOrchestrator(context.Background())

		assert.ErrorIs(t, err, domainErrors.ErrAPIKeyMissing)
	})

	t.Run("should use an injected generator", func(t *testing.T) {
		c := newContainer(t, func(cfg *config.Config) {
			cfg.GitHub.Token = "ghp_token"
		})
		gen := &review.MockSummaryGenerator{}
		c.SetGenerator(gen)

		got, err := c.GetGenerator(context.Background())

		require.NoError(t, err)
		assert.Same(t, gen, got)
	})
}

func TestContainer_GetServer(t *testing.T) {
	c := newContainer(t, func(cfg *config.Config) {
		cfg.GitHub.Token = "ghp_token"
		cfg.AI.OpenRouterAPIKey = "or-key"
	})

	srv, err := c.GetServer(context.Background())

	require.NoError(t, err)
	assert.NotNil(t, srv.Router())
	assert.Same(t, c.GetNotifier(), c.GetNotifier())
}
