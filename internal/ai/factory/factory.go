// Package factory selects the summary generator configured for the bot.
package factory

import (
	"context"

	"github.com/thomas-vilte/reviewbot/internal/ai"
	"github.com/thomas-vilte/reviewbot/internal/ai/gemini"
	"github.com/thomas-vilte/reviewbot/internal/ai/openrouter"
	"github.com/thomas-vilte/reviewbot/internal/config"
	domainErrors "github.com/thomas-vilte/reviewbot/internal/errors"
)

// NewGenerator loads the prompt spec and builds the generator for cfg.Provider.
func NewGenerator(ctx context.Context, cfg config.AIConfig) (ai.SummaryGenerator, error) {
	spec, err := ai.LoadPromptSpec(cfg.PromptFile)
	if err != nil {
		return nil, err
	}

	var gen ai.SummaryGenerator
	switch cfg.Provider {
	case config.ProviderOpenRouter:
		g, err := openrouter.NewGenerator(cfg, spec)
		if err != nil {
			return nil, err
		}
		gen = g
	case config.ProviderGemini:
		g, err := gemini.NewGenerator(ctx, cfg, spec)
		if err != nil {
			return nil, err
		}
		gen = g
	default:
		return nil, domainErrors.ErrUnsupportedProvider.WithContext("provider", cfg.Provider)
	}
	return gen, nil
}
