package review

import (
	"strings"

	"github.com/thomas-vilte/reviewbot/internal/models"
	"github.com/thomas-vilte/reviewbot/internal/regex"
)

// ParseSummary reads the first three non-blank lines of generated text as
// summary, files and impact, in that order. Labels are optional. Fields that
// are missing or empty after stripping stay empty; callers apply defaults.
func ParseSummary(text string) models.SummaryFields {
	var lines []string
	for _, line := range strings.Split(text, "\n") {
		if trimmed := strings.TrimSpace(line); trimmed != "" {
			lines = append(lines, trimmed)
		}
	}

	field := func(i int, strip func(string) string) string {
		if i >= len(lines) {
			return ""
		}
		return strings.TrimSpace(strip(lines[i]))
	}

	return models.SummaryFields{
		Summary: field(0, func(s string) string { return regex.SummaryLabel.ReplaceAllString(s, "") }),
		Files:   field(1, func(s string) string { return regex.FilesLabel.ReplaceAllString(s, "") }),
		Impact:  field(2, func(s string) string { return regex.ImpactLabel.ReplaceAllString(s, "") }),
	}
}

// WithDefaults fills every empty field from defaults.
func WithDefaults(f models.SummaryFields, defaults models.SummaryFields) models.SummaryFields {
	if f.Summary == "" {
		f.Summary = defaults.Summary
	}
	if f.Files == "" {
		f.Files = defaults.Files
	}
	if f.Impact == "" {
		f.Impact = defaults.Impact
	}
	return f
}
