package review

import (
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/thomas-vilte/reviewbot/internal/i18n"
	"github.com/thomas-vilte/reviewbot/internal/models"
)

var testRepo = models.RepoRef{Owner: "skridlevsky", Name: "openchaos"}

type fakeClock struct {
	mu  sync.Mutex
	now time.Time
}

func newFakeClock() *fakeClock {
	return &fakeClock{now: time.Date(2026, 1, 1, 10, 0, 0, 0, time.UTC)}
}

func (f *fakeClock) Now() time.Time {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.now
}

func (f *fakeClock) Advance(d time.Duration) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.now = f.now.Add(d)
}

func newTranslations(t *testing.T, lang string) *i18n.Translations {
	t.Helper()
	trans, err := i18n.NewTranslations(lang, "")
	require.NoError(t, err)
	return trans
}

func newTestComposer(t *testing.T) *Composer {
	t.Helper()
	return NewComposer("OpenChaos Bot", "https://github.com/skridlevsky/openchaos-bot", newTranslations(t, "en"))
}

func openPR(number, files int) models.Candidate {
	return models.Candidate{
		Number:       number,
		State:        models.StateOpen,
		ChangedFiles: files,
		HeadSHA:      fmt.Sprintf("sha-%d", number),
	}
}

func diffOfLines(n int) string {
	lines := make([]byte, 0, n*2)
	for i := 0; i < n; i++ {
		if i > 0 {
			lines = append(lines, '\n')
		}
		lines = append(lines, '+')
	}
	return string(lines)
}
