package errors

import "fmt"

// ErrorType defines the category of the error
type ErrorType string

const (
	TypeConfiguration ErrorType = "CONFIGURATION"
	TypeAI            ErrorType = "AI"
	TypeVCS           ErrorType = "VCS"
	TypeNotify        ErrorType = "NOTIFY"
	TypeInternal      ErrorType = "INTERNAL"
)

// AppError represents a domain-level error with a type and an underlying error
type AppError struct {
	Type       ErrorType
	Message    string
	Context    map[string]interface{}
	Err        error
	Suggestion string
}

func (e *AppError) Error() string {
	var msg string
	if e.Err != nil {
		msg = fmt.Sprintf("%s: %s (%v)", e.Type, e.Message, e.Err)
	} else {
		msg = fmt.Sprintf("%s: %s", e.Type, e.Message)
	}

	if e.Context != nil {
		if status, ok := e.Context["status"].(int); ok && status != 0 {
			msg += fmt.Sprintf(" - HTTP %d", status)
		}
	}

	return msg
}

func (e *AppError) Unwrap() error {
	return e.Err
}

// Is reports whether target is the same kind of AppError. Values derived
// from a sentinel through WithError/WithContext still match the sentinel.
func (e *AppError) Is(target error) bool {
	t, ok := target.(*AppError)
	if !ok {
		return false
	}
	return e.Type == t.Type && e.Message == t.Message
}

// WithError creates a new AppError with an underlying error
func (e *AppError) WithError(err error) *AppError {
	return &AppError{
		Type:       e.Type,
		Message:    e.Message,
		Context:    e.Context,
		Err:        err,
		Suggestion: e.Suggestion,
	}
}

// WithContext creates a new AppError with additional context
func (e *AppError) WithContext(key string, value interface{}) *AppError {
	ctx := make(map[string]interface{})
	for k, v := range e.Context {
		ctx[k] = v
	}
	ctx[key] = value
	return &AppError{
		Type:       e.Type,
		Message:    e.Message,
		Context:    ctx,
		Err:        e.Err,
		Suggestion: e.Suggestion,
	}
}

func (e *AppError) WithSuggestion(suggestion string) *AppError {
	return &AppError{
		Type:       e.Type,
		Message:    e.Message,
		Context:    e.Context,
		Err:        e.Err,
		Suggestion: suggestion,
	}
}

// NewAppError creates a new AppError
func NewAppError(t ErrorType, msg string, err error) *AppError {
	return &AppError{
		Type:    t,
		Message: msg,
		Err:     err,
	}
}

// Configuration errors
var (
	ErrConfigMissing = NewAppError(TypeConfiguration, "Configuration is missing", nil).
				WithSuggestion("Create reviewbot.toml or export the REVIEWBOT_* environment variables")

	ErrRepoMissing = NewAppError(TypeConfiguration, "GitHub owner and repo must be set", nil).
			WithSuggestion("Set github.owner and github.repo, or GITHUB_OWNER and GITHUB_REPO")

	ErrTokenMissing = NewAppError(TypeConfiguration, "GitHub credentials are missing", nil).
			WithSuggestion("Set GITHUB_TOKEN, or GITHUB_APP_ID together with GITHUB_PRIVATE_KEY")

	ErrAPIKeyMissing = NewAppError(TypeConfiguration, "AI API key is missing", nil).
				WithSuggestion("Set OPENROUTER_API_KEY or GEMINI_API_KEY for the configured provider")

	ErrInvalidConfig = NewAppError(TypeConfiguration, "Configuration is invalid", nil)

	ErrUnsupportedProvider = NewAppError(TypeConfiguration, "AI provider not supported", nil).
				WithSuggestion("Supported providers: openrouter, gemini")
)

// VCS errors
var (
	ErrRepositoryNotFound = NewAppError(TypeVCS, "repository not found", nil).
				WithSuggestion("Check repository owner/name and access permissions")

	ErrInstallationNotFound = NewAppError(TypeVCS, "GitHub App is not installed on the repository", nil).
				WithSuggestion("Install the GitHub App on the repository owner account")

	ErrListCandidates = NewAppError(TypeVCS, "failed to list open pull requests", nil)

	ErrFetch = NewAppError(TypeVCS, "failed to fetch pull request data", nil)

	ErrPublish = NewAppError(TypeVCS, "failed to publish comment", nil).
			WithSuggestion("Check the token has 'pull_requests: write' or 'issues: write' permission")

	ErrGitHubTokenInvalid = NewAppError(TypeVCS, "GitHub token is invalid or expired", nil).
				WithSuggestion("Generate a new token or verify the GitHub App private key")

	ErrGitHubInsufficientPerms = NewAppError(TypeVCS, "GitHub token has insufficient permissions", nil).
					WithSuggestion("The token needs read access to pull requests and statuses, and write access to issues")

	ErrGitHubRateLimit = NewAppError(TypeVCS, "GitHub API rate limit exceeded", nil).
				WithSuggestion("Wait for the rate limit window to reset")

	ErrInvalidSignature = NewAppError(TypeVCS, "invalid webhook signature", nil)
)

// AI errors
var (
	ErrAIGeneration = NewAppError(TypeAI, "AI generation failed", nil).
			WithSuggestion("Try again or check your API key configuration")

	ErrQuotaExceeded = NewAppError(TypeAI, "AI quota exceeded or rate limited", nil).
				WithSuggestion("Wait a few minutes and try again, or check your API quota")

	ErrEmptyAIOutput = NewAppError(TypeAI, "AI returned no usable content", nil)
)

// Notification errors
var (
	ErrWebhookDelivery = NewAppError(TypeNotify, "chat webhook delivery failed", nil)
)

// Internal errors
var (
	ErrPanic = NewAppError(TypeInternal, "unexpected failure while processing candidate", nil)
)
