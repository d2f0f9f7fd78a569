package gemini

import (
	"context"
	"strings"

	"github.com/thomas-vilte/reviewbot/internal/ai"
	"github.com/thomas-vilte/reviewbot/internal/config"
	domainErrors "github.com/thomas-vilte/reviewbot/internal/errors"
	"github.com/thomas-vilte/reviewbot/internal/logger"
	"google.golang.org/genai"
)

var _ ai.SummaryGenerator = (*Generator)(nil)

type contentGenerator interface {
	GenerateContent(ctx context.Context, model string, contents []*genai.Content, config *genai.GenerateContentConfig) (*genai.GenerateContentResponse, error)
}

// Generator asks a Gemini model for the summary.
type Generator struct {
	models      contentGenerator
	spec        *ai.PromptSpec
	model       string
	maxTokens   int32
	temperature float32
}

func NewGenerator(ctx context.Context, cfg config.AIConfig, spec *ai.PromptSpec) (*Generator, error) {
	if cfg.GeminiAPIKey == "" {
		return nil, domainErrors.ErrAPIKeyMissing.WithContext("provider", config.ProviderGemini)
	}
	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  cfg.GeminiAPIKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, domainErrors.NewAppError(domainErrors.TypeAI, "error creating AI client", err)
	}

	g := NewGeneratorWithModels(client.Models, cfg.Model, spec)
	if cfg.MaxTokens > 0 {
		g.maxTokens = int32(cfg.MaxTokens)
	}
	if cfg.Temperature > 0 {
		g.temperature = cfg.Temperature
	}
	return g, nil
}

func NewGeneratorWithModels(models contentGenerator, model string, spec *ai.PromptSpec) *Generator {
	maxTokens := int32(spec.Style.MaxTokens)
	if maxTokens <= 0 {
		maxTokens = 300
	}
	return &Generator{
		models:      models,
		spec:        spec,
		model:       model,
		maxTokens:   maxTokens,
		temperature: spec.Style.Temperature,
	}
}

func (g *Generator) generateConfig() *genai.GenerateContentConfig {
	cfg := &genai.GenerateContentConfig{
		Temperature:     genai.Ptr(g.temperature),
		MaxOutputTokens: g.maxTokens,
	}
	if s := strings.TrimSpace(g.spec.System); s != "" {
		cfg.SystemInstruction = genai.NewContentFromText(s, genai.RoleUser)
	}
	return cfg
}

func (g *Generator) GenerateSummary(ctx context.Context, diff string, truncated bool) (string, error) {
	log := logger.FromContext(ctx)

	prompt, err := g.spec.Render(diff, truncated)
	if err != nil {
		return "", domainErrors.ErrAIGeneration.WithError(err)
	}

	log.Debug("calling gemini API for PR summary",
		"model", g.model,
		"prompt_length", len(prompt),
		"truncated", truncated)

	resp, err := g.models.GenerateContent(ctx, g.model, genai.Text(prompt), g.generateConfig())
	if err != nil {
		log.Error("gemini API call failed",
			"error", err,
			"model", g.model)

		errMsg := strings.ToLower(err.Error())
		if strings.Contains(errMsg, "quota") ||
			strings.Contains(errMsg, "rate limit") ||
			strings.Contains(errMsg, "resource exhausted") {
			return "", domainErrors.ErrQuotaExceeded.WithError(err).WithContext("provider", config.ProviderGemini)
		}
		return "", domainErrors.ErrAIGeneration.WithError(err).WithContext("provider", config.ProviderGemini)
	}

	text := ""
	if resp != nil {
		text = resp.Text()
	}
	if strings.TrimSpace(text) == "" {
		log.Error("gemini returned empty response", "model", g.model)
		return "", ai.ErrNoContent.WithContext("provider", config.ProviderGemini)
	}

	if resp.UsageMetadata != nil {
		log.Debug("gemini summary generated",
			"model", g.model,
			"prompt_tokens", resp.UsageMetadata.PromptTokenCount,
			"completion_tokens", resp.UsageMetadata.CandidatesTokenCount)
	}

	return text, nil
}
