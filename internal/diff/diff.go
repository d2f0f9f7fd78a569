// Package diff holds the helpers applied to a pull request's unified diff
// before it is handed to a summary generator.
package diff

import (
	"fmt"
	"sort"
	"strings"

	godiff "github.com/sourcegraph/go-diff/diff"
)

// Truncate keeps the first maxLines lines of a diff. It reports whether
// anything was dropped.
func Truncate(diff string, maxLines int) (string, bool) {
	lines := strings.Split(diff, "\n")
	if len(lines) <= maxLines {
		return diff, false
	}
	return strings.Join(lines[:maxLines], "\n"), true
}

// FileStat is the per-file line count of a diff.
type FileStat struct {
	Name    string
	Added   int32
	Deleted int32
}

// Files lists the files touched by a unified diff in path order, with their
// added and deleted line counts.
func Files(patch string) ([]FileStat, error) {
	fileDiffs, err := godiff.ParseMultiFileDiff([]byte(patch))
	if err != nil {
		return nil, fmt.Errorf("parse patch: %w", err)
	}

	stats := make([]FileStat, 0, len(fileDiffs))
	for _, fd := range fileDiffs {
		name := strings.TrimPrefix(fd.NewName, "b/")
		if name == "" || fd.NewName == "/dev/null" {
			name = strings.TrimPrefix(fd.OrigName, "a/")
		}
		if name == "" || name == "/dev/null" {
			continue
		}
		s := fd.Stat()
		stats = append(stats, FileStat{
			Name:    name,
			Added:   s.Added + s.Changed,
			Deleted: s.Deleted + s.Changed,
		})
	}

	sort.Slice(stats, func(i, j int) bool { return stats[i].Name < stats[j].Name })
	return stats, nil
}

// Names returns only the paths from Files, or nil when the diff cannot be parsed.
func Names(patch string) []string {
	stats, err := Files(patch)
	if err != nil {
		return nil
	}
	names := make([]string, len(stats))
	for i, s := range stats {
		names[i] = s.Name
	}
	return names
}
