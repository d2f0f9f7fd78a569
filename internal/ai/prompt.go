package ai

import (
	"bytes"
	_ "embed"
	"fmt"
	"os"
	"strings"
	"text/template"

	"github.com/thomas-vilte/reviewbot/internal/diff"
	domainErrors "github.com/thomas-vilte/reviewbot/internal/errors"
	"gopkg.in/yaml.v3"
)

//go:embed prompts/summary.yaml
var defaultPromptYAML []byte

// maxListedFiles bounds the file list injected into the prompt.
const maxListedFiles = 10

// PromptSpec is the YAML description of the summary prompt.
type PromptSpec struct {
	System   string `yaml:"system"`
	Template string `yaml:"template"`
	Style    struct {
		Temperature float32 `yaml:"temperature"`
		MaxTokens   int     `yaml:"max_tokens"`
	} `yaml:"style"`
}

// PromptData holds the parameters for template rendering
type PromptData struct {
	Diff      string
	Truncated bool
	Files     string
	FileCount int
}

// LoadPromptSpec reads a prompt spec from path, or the embedded default
// when path is empty.
func LoadPromptSpec(path string) (*PromptSpec, error) {
	data := defaultPromptYAML
	if path != "" {
		b, err := os.ReadFile(path)
		if err != nil {
			return nil, domainErrors.ErrInvalidConfig.
				WithError(fmt.Errorf("error reading prompt file: %w", err)).
				WithContext("path", path)
		}
		data = b
	}

	var spec PromptSpec
	if err := yaml.Unmarshal(data, &spec); err != nil {
		return nil, domainErrors.ErrInvalidConfig.
			WithError(fmt.Errorf("error decoding prompt spec: %w", err)).
			WithContext("path", path)
	}
	if strings.TrimSpace(spec.Template) == "" {
		return nil, domainErrors.ErrInvalidConfig.
			WithContext("path", path).
			WithSuggestion("the prompt spec needs a non-empty 'template'")
	}
	return &spec, nil
}

// Render builds the user prompt for one diff.
func (s *PromptSpec) Render(patch string, truncated bool) (string, error) {
	data := PromptData{Diff: patch, Truncated: truncated}

	names := diff.Names(patch)
	data.FileCount = len(names)
	if len(names) > maxListedFiles {
		names = append(names[:maxListedFiles:maxListedFiles], "...")
	}
	data.Files = strings.Join(names, ", ")

	return RenderPrompt("summary", s.Template, data)
}

// RenderPrompt renders a prompt template with the provided data
func RenderPrompt(name, tmplStr string, data interface{}) (string, error) {
	tmpl, err := template.New(name).Parse(tmplStr)
	if err != nil {
		return "", fmt.Errorf("error parsing template %s: %w", name, err)
	}

	var buf bytes.Buffer
	if err := tmpl.Execute(&buf, data); err != nil {
		return "", fmt.Errorf("error executing template %s: %w", name, err)
	}

	return buf.String(), nil
}
