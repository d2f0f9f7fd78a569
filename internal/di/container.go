package di

import (
	"context"
	"sync"

	"github.com/thomas-vilte/reviewbot/internal/ai"
	"github.com/thomas-vilte/reviewbot/internal/ai/factory"
	"github.com/thomas-vilte/reviewbot/internal/config"
	"github.com/thomas-vilte/reviewbot/internal/i18n"
	"github.com/thomas-vilte/reviewbot/internal/notify/discord"
	"github.com/thomas-vilte/reviewbot/internal/review"
	"github.com/thomas-vilte/reviewbot/internal/server"
	ghclient "github.com/thomas-vilte/reviewbot/internal/vcs/github"
)

// Container builds the application's collaborators on first use and hands
// out the same instances afterwards. The rate limiter it owns is shared by
// every orchestrator and handler of the process.
type Container struct {
	config       *config.Config
	translations *i18n.Translations
	limiter      *review.RateLimiter

	mu           sync.Mutex
	clients      *ghclient.ClientFactory
	generator    ai.SummaryGenerator
	orchestrator *review.Orchestrator
	notifier     *discord.Notifier
}

func NewContainer(cfg *config.Config, trans *i18n.Translations) *Container {
	return &Container{
		config:       cfg,
		translations: trans,
		limiter:      review.NewRateLimiter(cfg.Review.RateLimit, nil),
	}
}

func (c *Container) Config() *config.Config {
	return c.config
}

func (c *Container) Translations() *i18n.Translations {
	return c.translations
}

// SetGenerator replaces the configured summary generator.
func (c *Container) SetGenerator(gen ai.SummaryGenerator) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.generator = gen
}

// SetClients replaces the configured GitHub client factory.
func (c *Container) SetClients(clients *ghclient.ClientFactory) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.clients = clients
}

// GetClients returns the GitHub client factory (lazy initialization)
func (c *Container) GetClients() (*ghclient.ClientFactory, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.getClients()
}

func (c *Container) getClients() (*ghclient.ClientFactory, error) {
	if c.clients != nil {
		return c.clients, nil
	}
	clients, err := ghclient.NewClientFactory(c.config)
	if err != nil {
		return nil, err
	}
	c.clients = clients
	return clients, nil
}

// GetGenerator returns the summary generator (lazy initialization)
func (c *Container) GetGenerator(ctx context.Context) (ai.SummaryGenerator, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.getGenerator(ctx)
}

func (c *Container) getGenerator(ctx context.Context) (ai.SummaryGenerator, error) {
	if c.generator != nil {
		return c.generator, nil
	}
	gen, err := factory.NewGenerator(ctx, c.config.AI)
	if err != nil {
		return nil, err
	}
	c.generator = gen
	return gen, nil
}

// GetOrchestrator returns the review orchestrator (lazy initialization).
// It needs GitHub and AI credentials.
func (c *Container) GetOrchestrator(ctx context.Context) (*review.Orchestrator, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.orchestrator != nil {
		return c.orchestrator, nil
	}

	clients, err := c.getClients()
	if err != nil {
		return nil, err
	}
	gen, err := c.getGenerator(ctx)
	if err != nil {
		return nil, err
	}

	c.orchestrator = review.NewOrchestrator(clients, gen, c.translations, c.config.Review,
		review.WithRateLimiter(c.limiter))
	return c.orchestrator, nil
}

func (c *Container) GetNotifier() *discord.Notifier {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.notifier == nil {
		c.notifier = discord.NewNotifier(c.config.Discord, nil)
	}
	return c.notifier
}

// GetServer wires the HTTP server around the orchestrator.
func (c *Container) GetServer(ctx context.Context) (*server.Server, error) {
	orch, err := c.GetOrchestrator(ctx)
	if err != nil {
		return nil, err
	}
	clients, err := c.GetClients()
	if err != nil {
		return nil, err
	}
	return server.New(c.config, orch, c.GetNotifier(), clients), nil
}
