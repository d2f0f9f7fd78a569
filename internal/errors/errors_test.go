package errors

import (
	"errors"
	"fmt"
	"strings"
	"testing"
)

func TestAppError_WithError(t *testing.T) {
	baseErr := errors.New("original error")
	appErr := ErrFetch.WithError(baseErr)

	if appErr.Err != baseErr {
		t.Errorf("Expected underlying error to be %v, got %v", baseErr, appErr.Err)
	}

	if appErr.Type != TypeVCS {
		t.Errorf("Expected type %s, got %s", TypeVCS, appErr.Type)
	}
}

func TestAppError_WithContext(t *testing.T) {
	appErr := ErrPublish.WithContext("pr_number", 42).WithContext("repo", "octo/chaos")

	if appErr.Context["pr_number"] != 42 {
		t.Errorf("Expected pr_number context 42, got %v", appErr.Context["pr_number"])
	}

	if appErr.Context["repo"] != "octo/chaos" {
		t.Errorf("Expected repo context 'octo/chaos', got %v", appErr.Context["repo"])
	}
}

func TestAppError_Error_Format(t *testing.T) {
	tests := []struct {
		name     string
		err      *AppError
		contains []string
	}{
		{
			name: "Simple error without underlying error",
			err:  ErrRepoMissing,
			contains: []string{
				"CONFIGURATION",
				"GitHub owner and repo must be set",
			},
		},
		{
			name: "Error with underlying error",
			err:  ErrFetch.WithError(errors.New("connection reset")),
			contains: []string{
				"VCS",
				"failed to fetch pull request data",
				"connection reset",
			},
		},
		{
			name: "Error with HTTP status context",
			err: ErrPublish.WithError(errors.New("forbidden")).
				WithContext("status", 403),
			contains: []string{
				"VCS",
				"failed to publish comment",
				"HTTP 403",
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			errMsg := tt.err.Error()
			for _, substr := range tt.contains {
				if !strings.Contains(errMsg, substr) {
					t.Errorf("Expected error message to contain %q, got: %s", substr, errMsg)
				}
			}
		})
	}
}

func TestAppError_Unwrap(t *testing.T) {
	baseErr := errors.New("base error")
	appErr := ErrAIGeneration.WithError(baseErr)

	if appErr.Unwrap() != baseErr {
		t.Errorf("Expected unwrapped error to be %v, got %v", baseErr, appErr.Unwrap())
	}

	if !errors.Is(appErr, baseErr) {
		t.Error("errors.Is should work with AppError")
	}
}

func TestAppError_IsMatchesSentinel(t *testing.T) {
	derived := ErrPublish.WithError(errors.New("boom")).WithContext("pr_number", 7)
	wrapped := fmt.Errorf("posting comment: %w", derived)

	if !errors.Is(wrapped, ErrPublish) {
		t.Error("derived error should match its sentinel")
	}
	if errors.Is(wrapped, ErrFetch) {
		t.Error("derived error should not match a different sentinel")
	}

	var appErr *AppError
	if !errors.As(wrapped, &appErr) {
		t.Fatal("errors.As should find the AppError")
	}
	if appErr.Suggestion == "" {
		t.Error("suggestion should survive WithError/WithContext")
	}
}

func TestAppError_ChainedContext(t *testing.T) {
	appErr := ErrGitHubRateLimit.
		WithContext("retry_after", "60").
		WithContext("operation", "list comments")

	if appErr.Context["retry_after"] != "60" {
		t.Errorf("Expected retry_after context, got %v", appErr.Context["retry_after"])
	}

	// Ensure we didn't modify the original error
	if ErrGitHubRateLimit.Context != nil {
		t.Error("Original error should not have context")
	}
}
