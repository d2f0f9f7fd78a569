package review

import (
	"fmt"
	"path"
	"strconv"
	"strings"

	"github.com/thomas-vilte/reviewbot/internal/i18n"
	"github.com/thomas-vilte/reviewbot/internal/models"
)

// Composer renders review comments in the configured language.
type Composer struct {
	botName   string
	footerURL string
	trans     *i18n.Translations
}

func NewComposer(botName, footerURL string, trans *i18n.Translations) *Composer {
	return &Composer{botName: botName, footerURL: footerURL, trans: trans}
}

// Defaults returns the localized placeholders for a summary of a pull
// request touching changedFiles files.
func (c *Composer) Defaults(changedFiles int) models.SummaryFields {
	files := c.trans.GetMessage("comment_default_files", 0, nil)
	if changedFiles >= 0 {
		files = strconv.Itoa(changedFiles)
	}
	return models.SummaryFields{
		Summary: c.trans.GetMessage("comment_default_summary", 0, nil),
		Files:   files,
		Impact:  c.trans.GetMessage("comment_default_impact", 0, nil),
	}
}

// Compose builds the comment body. The body always starts with Marker.
func (c *Composer) Compose(fields models.SummaryFields, truncated bool) string {
	var b strings.Builder

	b.WriteString(Marker + "\n")
	fmt.Fprintf(&b, "🤖 **%s**\n\n", c.botName)
	fmt.Fprintf(&b, "**%s:** %s\n\n", c.trans.GetMessage("comment_summary_label", 0, nil), fields.Summary)
	fmt.Fprintf(&b, "**%s:** %s\n\n", c.trans.GetMessage("comment_files_label", 0, nil), fields.Files)
	fmt.Fprintf(&b, "**%s:** %s\n", c.trans.GetMessage("comment_impact_label", 0, nil), fields.Impact)
	if truncated {
		b.WriteString("\n" + c.trans.GetMessage("comment_truncated_notice", 0, nil))
	}
	b.WriteString("\n---\n")
	if c.footerURL != "" {
		fmt.Fprintf(&b, "*[%s](%s)*", path.Base(strings.TrimSuffix(c.footerURL, "/")), c.footerURL)
	} else {
		fmt.Fprintf(&b, "*%s*", c.botName)
	}

	return b.String()
}
