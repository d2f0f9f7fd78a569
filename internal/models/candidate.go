package models

import "fmt"

// UnknownFileCount marks a candidate whose changed-file count was not
// reported by the listing endpoint.
const UnknownFileCount = -1

type (
	// RepoRef identifies a repository on the code host.
	RepoRef struct {
		Owner string
		Name  string
	}

	// Candidate is an immutable snapshot of a pull request considered for review.
	Candidate struct {
		Number       int
		State        string
		Draft        bool
		ChangedFiles int
		HeadSHA      string
		Title        string
		Author       string
		URL          string
	}

	// Comment is an existing issue comment on a pull request.
	Comment struct {
		ID   int64
		Body string
	}
)

const (
	StateOpen   = "open"
	StateClosed = "closed"
)

func (r RepoRef) String() string {
	return fmt.Sprintf("%s/%s", r.Owner, r.Name)
}

// IsZero reports whether the reference is incomplete.
func (r RepoRef) IsZero() bool {
	return r.Owner == "" || r.Name == ""
}

// FileCountKnown reports whether ChangedFiles carries a real value.
func (c Candidate) FileCountKnown() bool {
	return c.ChangedFiles != UnknownFileCount
}

// CIState is the collapsed combined commit status of a head commit.
type CIState string

const (
	CISuccess CIState = "success"
	CIFailure CIState = "failure"
	CIPending CIState = "pending"
)

// CIStateFromCombined maps a combined status state reported by the code host.
// "error" counts as a failure; anything unrecognised is pending.
func CIStateFromCombined(state string) CIState {
	switch state {
	case "failure", "error":
		return CIFailure
	case "success":
		return CISuccess
	default:
		return CIPending
	}
}
