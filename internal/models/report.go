package models

type (
	// Report is the result of one orchestration run.
	Report struct {
		Trigger       string    `json:"trigger"`
		Repo          string    `json:"repo"`
		Total         int       `json:"total"`
		Reviewed      int       `json:"reviewed"`
		Skipped       int       `json:"skipped"`
		Errored       int       `json:"errors"`
		Deferred      int       `json:"deferred"`
		ElapsedMs     int64     `json:"elapsed_ms"`
		RateLimited   bool      `json:"rate_limited,omitempty"`
		Pending       int       `json:"pending,omitempty"`
		NeedsFollowUp bool      `json:"needs_follow_up"`
		Hint          string    `json:"hint,omitempty"`
		Outcomes      []Outcome `json:"results"`
	}

	// SummaryFields is the structured form of a generated summary.
	SummaryFields struct {
		Summary string
		Files   string
		Impact  string
	}
)
