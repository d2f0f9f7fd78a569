package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/BurntSushi/toml"
	"github.com/joho/godotenv"
	domainErrors "github.com/thomas-vilte/reviewbot/internal/errors"
)

// DefaultPath is read when no explicit config path is given and the file exists.
const DefaultPath = "reviewbot.toml"

type (
	Config struct {
		GitHub  GitHubConfig  `toml:"github"`
		AI      AIConfig      `toml:"ai"`
		Review  ReviewConfig  `toml:"review"`
		Discord DiscordConfig `toml:"discord"`
		Server  ServerConfig  `toml:"server"`
		Log     LogConfig     `toml:"log"`

		PathFile string `toml:"-"`
	}

	GitHubConfig struct {
		Owner          string `toml:"owner"`
		Repo           string `toml:"repo"`
		Token          string `toml:"token,omitempty"`
		AppID          int64  `toml:"app_id,omitempty"`
		PrivateKey     string `toml:"private_key,omitempty"`
		PrivateKeyFile string `toml:"private_key_file,omitempty"`
		WebhookSecret  string `toml:"webhook_secret,omitempty"`
		BaseURL        string `toml:"base_url,omitempty"`
	}

	AIConfig struct {
		Provider         string  `toml:"provider"`
		Model            string  `toml:"model"`
		OpenRouterAPIKey string  `toml:"openrouter_api_key,omitempty"`
		OpenRouterURL    string  `toml:"openrouter_url,omitempty"`
		GeminiAPIKey     string  `toml:"gemini_api_key,omitempty"`
		MaxTokens        int     `toml:"max_tokens"`
		Temperature      float32 `toml:"temperature"`
		PromptFile       string  `toml:"prompt_file,omitempty"`
	}

	ReviewConfig struct {
		BotName         string        `toml:"bot_name"`
		FooterURL       string        `toml:"footer_url"`
		Language        string        `toml:"language"`
		MaxDiffLines    int           `toml:"max_diff_lines"`
		RateLimit       int           `toml:"rate_limit_per_hour"`
		CheckBatchSize  int           `toml:"check_batch_size"`
		ProcessBatch    int           `toml:"process_batch_size"`
		CheckThreshold  time.Duration `toml:"check_threshold"`
		ReviewThreshold time.Duration `toml:"review_threshold"`
		ExecutionLimit  time.Duration `toml:"execution_limit"`
		SafetyMargin    time.Duration `toml:"safety_margin"`
		SweepCap        int           `toml:"sweep_cap"`
	}

	DiscordConfig struct {
		LogWebhookURL       string `toml:"log_webhook_url,omitempty"`
		ProposalsWebhookURL string `toml:"proposals_webhook_url,omitempty"`
	}

	ServerConfig struct {
		Addr           string `toml:"addr"`
		CronSecret     string `toml:"cron_secret,omitempty"`
		BackfillSecret string `toml:"backfill_secret,omitempty"`
	}

	LogConfig struct {
		Level  string `toml:"level"`
		Format string `toml:"format"`
	}
)

const (
	ProviderOpenRouter = "openrouter"
	ProviderGemini     = "gemini"

	defaultOpenRouterModel = "google/gemini-2.0-flash-001"
	defaultGeminiModel     = "gemini-2.0-flash"
)

// Default returns the configuration used when nothing else is set.
func Default() *Config {
	return &Config{
		AI: AIConfig{
			Provider:    ProviderOpenRouter,
			Model:       defaultOpenRouterModel,
			MaxTokens:   300,
			Temperature: 0.3,
		},
		Review: ReviewConfig{
			BotName:         "OpenChaos Bot",
			FooterURL:       "https://github.com/skridlevsky/openchaos-bot",
			Language:        "en",
			MaxDiffLines:    500,
			RateLimit:       20,
			CheckBatchSize:  15,
			ProcessBatch:    5,
			CheckThreshold:  15 * time.Second,
			ReviewThreshold: 5 * time.Second,
			ExecutionLimit:  60 * time.Second,
			SafetyMargin:    5 * time.Second,
			SweepCap:        10,
		},
		Server: ServerConfig{
			Addr: ":8080",
		},
		Log: LogConfig{
			Level:  "info",
			Format: "pretty",
		},
	}
}

// Load reads the TOML file at path (or DefaultPath when it exists), then
// applies environment overrides. A .env file in the working directory is
// loaded first when present.
func Load(path string) (*Config, error) {
	cfg := Default()

	if path == "" {
		if _, err := os.Stat(DefaultPath); err == nil {
			path = DefaultPath
		}
	}

	if path != "" {
		if _, err := toml.DecodeFile(path, cfg); err != nil {
			if errors.Is(err, os.ErrNotExist) {
				return nil, domainErrors.ErrConfigMissing.WithError(err).WithContext("path", path)
			}
			return nil, domainErrors.ErrInvalidConfig.WithError(fmt.Errorf("error decoding %s: %w", path, err))
		}
		cfg.PathFile = path
	}

	_ = godotenv.Load()
	applyEnv(cfg)

	if cfg.GitHub.PrivateKey == "" && cfg.GitHub.PrivateKeyFile != "" {
		data, err := os.ReadFile(cfg.GitHub.PrivateKeyFile)
		if err != nil {
			return nil, domainErrors.ErrInvalidConfig.
				WithError(fmt.Errorf("error reading private key: %w", err)).
				WithContext("path", cfg.GitHub.PrivateKeyFile)
		}
		cfg.GitHub.PrivateKey = string(data)
	}

	if cfg.AI.Provider == ProviderGemini && cfg.AI.Model == defaultOpenRouterModel {
		cfg.AI.Model = defaultGeminiModel
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

func applyEnv(cfg *Config) {
	setString(&cfg.GitHub.Owner, "GITHUB_OWNER")
	setString(&cfg.GitHub.Repo, "GITHUB_REPO")
	setString(&cfg.GitHub.Token, "GITHUB_TOKEN")
	setString(&cfg.GitHub.WebhookSecret, "GITHUB_WEBHOOK_SECRET")
	setString(&cfg.GitHub.BaseURL, "GITHUB_API_URL")
	if v := os.Getenv("GITHUB_APP_ID"); v != "" {
		if id, err := strconv.ParseInt(strings.TrimSpace(v), 10, 64); err == nil {
			cfg.GitHub.AppID = id
		}
	}
	if v := os.Getenv("GITHUB_PRIVATE_KEY"); v != "" {
		// Single-line env values carry escaped newlines.
		cfg.GitHub.PrivateKey = strings.ReplaceAll(v, `\n`, "\n")
	}

	setString(&cfg.AI.Provider, "REVIEWBOT_AI_PROVIDER")
	setString(&cfg.AI.Model, "REVIEWBOT_AI_MODEL")
	setString(&cfg.AI.OpenRouterAPIKey, "OPENROUTER_API_KEY")
	setString(&cfg.AI.GeminiAPIKey, "GEMINI_API_KEY")
	setString(&cfg.AI.PromptFile, "REVIEWBOT_PROMPT_FILE")

	setString(&cfg.Review.Language, "REVIEWBOT_LANGUAGE")
	setString(&cfg.Review.BotName, "REVIEWBOT_BOT_NAME")

	setString(&cfg.Discord.LogWebhookURL, "DISCORD_WEBHOOK_URL")
	setString(&cfg.Discord.ProposalsWebhookURL, "DISCORD_WEBHOOK_URL_PROPOSALS")

	setString(&cfg.Server.CronSecret, "CRON_SECRET")
	setString(&cfg.Server.BackfillSecret, "BACKFILL_SECRET")
	if v := os.Getenv("PORT"); v != "" {
		cfg.Server.Addr = ":" + strings.TrimPrefix(v, ":")
	}

	setString(&cfg.Log.Level, "REVIEWBOT_LOG_LEVEL")
	setString(&cfg.Log.Format, "REVIEWBOT_LOG_FORMAT")
}

func setString(dst *string, key string) {
	if v := strings.TrimSpace(os.Getenv(key)); v != "" {
		*dst = v
	}
}

// Validate checks values that would make any command misbehave. Credentials
// are checked separately by the commands that need them.
func (c *Config) Validate() error {
	r := c.Review
	switch {
	case r.MaxDiffLines <= 0:
		return domainErrors.ErrInvalidConfig.WithContext("field", "review.max_diff_lines")
	case r.RateLimit <= 0:
		return domainErrors.ErrInvalidConfig.WithContext("field", "review.rate_limit_per_hour")
	case r.CheckBatchSize <= 0:
		return domainErrors.ErrInvalidConfig.WithContext("field", "review.check_batch_size")
	case r.ProcessBatch <= 0:
		return domainErrors.ErrInvalidConfig.WithContext("field", "review.process_batch_size")
	case r.SweepCap <= 0:
		return domainErrors.ErrInvalidConfig.WithContext("field", "review.sweep_cap")
	case r.ExecutionLimit <= r.SafetyMargin:
		return domainErrors.ErrInvalidConfig.
			WithContext("field", "review.execution_limit").
			WithSuggestion("execution_limit must be greater than safety_margin")
	}

	switch c.AI.Provider {
	case ProviderOpenRouter, ProviderGemini:
	default:
		return domainErrors.ErrUnsupportedProvider.WithContext("provider", c.AI.Provider)
	}

	if c.Review.Language == "" {
		return domainErrors.ErrInvalidConfig.WithContext("field", "review.language")
	}

	return nil
}

// RequireRepo checks that a default repository is configured.
func (c *Config) RequireRepo() error {
	if c.GitHub.Owner == "" || c.GitHub.Repo == "" {
		return domainErrors.ErrRepoMissing
	}
	return nil
}

// RequireCredentials checks that GitHub and AI credentials are present.
func (c *Config) RequireCredentials() error {
	if c.GitHub.Token == "" && (c.GitHub.AppID == 0 || c.GitHub.PrivateKey == "") {
		return domainErrors.ErrTokenMissing
	}

	switch c.AI.Provider {
	case ProviderOpenRouter:
		if c.AI.OpenRouterAPIKey == "" {
			return domainErrors.ErrAPIKeyMissing.WithContext("provider", c.AI.Provider)
		}
	case ProviderGemini:
		if c.AI.GeminiAPIKey == "" {
			return domainErrors.ErrAPIKeyMissing.WithContext("provider", c.AI.Provider)
		}
	}
	return nil
}

// UsesGitHubApp reports whether installation tokens should be minted instead
// of using a static token.
func (c *Config) UsesGitHubApp() bool {
	return c.GitHub.AppID != 0 && c.GitHub.PrivateKey != ""
}

// Budget returns the wall-clock budget of one orchestration run.
func (c *Config) Budget() time.Duration {
	return c.Review.Budget()
}

// Budget is the usable time of one run: the execution limit minus the
// safety margin.
func (r ReviewConfig) Budget() time.Duration {
	return r.ExecutionLimit - r.SafetyMargin
}
