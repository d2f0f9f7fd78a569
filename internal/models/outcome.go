package models

import (
	"encoding/json"
	"fmt"
)

// Status is the terminal state of one candidate in one run.
type Status string

const (
	StatusReviewed Status = "reviewed"
	StatusSkipped  Status = "skipped"
	StatusError    Status = "error"
	StatusDeferred Status = "deferred"
)

// Reason explains a non-reviewed outcome. The set is closed.
type Reason string

const (
	ReasonNone Reason = ""

	// skipped
	ReasonClosed          Reason = "closed"
	ReasonDraft           Reason = "draft"
	ReasonZeroFiles       Reason = "zero-files"
	ReasonAlreadyReviewed Reason = "already-reviewed"
	ReasonCIFailure       Reason = "ci-failure"

	// error
	ReasonFetchFailed   Reason = "fetch-failed"
	ReasonSummaryFailed Reason = "summary-failed"
	ReasonPublishFailed Reason = "publish-failed"
	ReasonUnknown       Reason = "unknown"

	// deferred
	ReasonTimeoutBeforeCheck  Reason = "timeout-before-check"
	ReasonTimeoutBeforeReview Reason = "timeout-before-review"
	ReasonRateLimited         Reason = "rate-limited"
	ReasonSweepCap            Reason = "sweep-cap"
)

// Outcome records what happened to one candidate. It is created once and
// never modified afterwards.
type Outcome struct {
	Number  int
	Status  Status
	Reason  Reason
	Message string
}

func Reviewed(number int) Outcome {
	return Outcome{Number: number, Status: StatusReviewed}
}

func Skipped(number int, reason Reason) Outcome {
	return Outcome{Number: number, Status: StatusSkipped, Reason: reason}
}

func Failed(number int, reason Reason, err error) Outcome {
	o := Outcome{Number: number, Status: StatusError, Reason: reason}
	if err != nil {
		o.Message = err.Error()
	}
	return o
}

func Deferred(number int, reason Reason) Outcome {
	return Outcome{Number: number, Status: StatusDeferred, Reason: reason}
}

// Label is the human-readable status, e.g. "skipped: draft".
func (o Outcome) Label() string {
	if o.Reason == ReasonNone {
		return string(o.Status)
	}
	return fmt.Sprintf("%s: %s", o.Status, o.Reason)
}

// MarshalJSON renders the outcome the way run reports expose it:
// {"pr": 12, "status": "skipped: draft"}.
func (o Outcome) MarshalJSON() ([]byte, error) {
	return json.Marshal(struct {
		Number  int    `json:"pr"`
		Status  string `json:"status"`
		Message string `json:"message,omitempty"`
	}{o.Number, o.Label(), o.Message})
}
