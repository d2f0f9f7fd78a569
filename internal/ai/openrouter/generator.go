package openrouter

import (
	"context"
	"errors"
	"net/http"
	"strings"
	"time"

	openai "github.com/sashabaranov/go-openai"
	"github.com/thomas-vilte/reviewbot/internal/ai"
	"github.com/thomas-vilte/reviewbot/internal/config"
	domainErrors "github.com/thomas-vilte/reviewbot/internal/errors"
	"github.com/thomas-vilte/reviewbot/internal/logger"
)

// DefaultBaseURL is OpenRouter's OpenAI-compatible endpoint.
const DefaultBaseURL = "https://openrouter.ai/api/v1"

const requestTimeout = 30 * time.Second

var _ ai.SummaryGenerator = (*Generator)(nil)

type chatClient interface {
	CreateChatCompletion(ctx context.Context, req openai.ChatCompletionRequest) (openai.ChatCompletionResponse, error)
}

// Generator asks an OpenRouter chat model for the summary.
type Generator struct {
	client      chatClient
	spec        *ai.PromptSpec
	model       string
	maxTokens   int
	temperature float32
}

func NewGenerator(cfg config.AIConfig, spec *ai.PromptSpec) (*Generator, error) {
	if cfg.OpenRouterAPIKey == "" {
		return nil, domainErrors.ErrAPIKeyMissing.WithContext("provider", config.ProviderOpenRouter)
	}

	clientCfg := openai.DefaultConfig(cfg.OpenRouterAPIKey)
	clientCfg.BaseURL = DefaultBaseURL
	if cfg.OpenRouterURL != "" {
		clientCfg.BaseURL = strings.TrimSuffix(cfg.OpenRouterURL, "/")
	}

	g := NewGeneratorWithClient(openai.NewClientWithConfig(clientCfg), cfg.Model, spec)
	if cfg.MaxTokens > 0 {
		g.maxTokens = cfg.MaxTokens
	}
	if cfg.Temperature > 0 {
		g.temperature = cfg.Temperature
	}
	return g, nil
}

// NewGeneratorWithClient takes the sampling settings from the prompt spec.
func NewGeneratorWithClient(client chatClient, model string, spec *ai.PromptSpec) *Generator {
	maxTokens := spec.Style.MaxTokens
	if maxTokens <= 0 {
		maxTokens = 300
	}
	return &Generator{
		client:      client,
		spec:        spec,
		model:       model,
		maxTokens:   maxTokens,
		temperature: spec.Style.Temperature,
	}
}

func (g *Generator) GenerateSummary(ctx context.Context, diff string, truncated bool) (string, error) {
	log := logger.FromContext(ctx)

	prompt, err := g.spec.Render(diff, truncated)
	if err != nil {
		return "", domainErrors.ErrAIGeneration.WithError(err)
	}

	var messages []openai.ChatCompletionMessage
	if s := strings.TrimSpace(g.spec.System); s != "" {
		messages = append(messages, openai.ChatCompletionMessage{Role: openai.ChatMessageRoleSystem, Content: s})
	}
	messages = append(messages, openai.ChatCompletionMessage{Role: openai.ChatMessageRoleUser, Content: prompt})

	log.Debug("calling openrouter for PR summary",
		"model", g.model,
		"prompt_length", len(prompt),
		"truncated", truncated)

	ctx, cancel := context.WithTimeout(ctx, requestTimeout)
	defer cancel()

	resp, err := g.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model:       g.model,
		Messages:    messages,
		MaxTokens:   g.maxTokens,
		Temperature: g.temperature,
	})
	if err != nil {
		log.Error("openrouter API call failed",
			"error", err,
			"model", g.model)
		return "", classify(err)
	}

	if len(resp.Choices) == 0 || strings.TrimSpace(resp.Choices[0].Message.Content) == "" {
		log.Error("openrouter returned empty response",
			"model", g.model,
			"response_id", resp.ID)
		return "", ai.ErrNoContent.WithContext("provider", config.ProviderOpenRouter)
	}

	log.Debug("openrouter summary generated",
		"model", g.model,
		"prompt_tokens", resp.Usage.PromptTokens,
		"completion_tokens", resp.Usage.CompletionTokens)

	return resp.Choices[0].Message.Content, nil
}

func classify(err error) error {
	var apiErr *openai.APIError
	if errors.As(err, &apiErr) {
		appErr := domainErrors.ErrAIGeneration
		if apiErr.HTTPStatusCode == http.StatusTooManyRequests || apiErr.HTTPStatusCode == http.StatusPaymentRequired {
			appErr = domainErrors.ErrQuotaExceeded
		}
		return appErr.
			WithError(err).
			WithContext("provider", config.ProviderOpenRouter).
			WithContext("status", apiErr.HTTPStatusCode)
	}
	return domainErrors.ErrAIGeneration.
		WithError(err).
		WithContext("provider", config.ProviderOpenRouter)
}
