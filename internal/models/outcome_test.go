package models

import (
	"encoding/json"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestOutcome_Label(t *testing.T) {
	tests := []struct {
		name    string
		outcome Outcome
		want    string
	}{
		{"reviewed", Reviewed(1), "reviewed"},
		{"skipped", Skipped(2, ReasonDraft), "skipped: draft"},
		{"error", Failed(3, ReasonPublishFailed, errors.New("403")), "error: publish-failed"},
		{"deferred", Deferred(4, ReasonTimeoutBeforeCheck), "deferred: timeout-before-check"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.outcome.Label())
		})
	}
}

func TestOutcome_MarshalJSON(t *testing.T) {
	data, err := json.Marshal(Failed(9, ReasonFetchFailed, errors.New("timeout")))
	require.NoError(t, err)

	assert.JSONEq(t, `{"pr":9,"status":"error: fetch-failed","message":"timeout"}`, string(data))
}

func TestCIStateFromCombined(t *testing.T) {
	assert.Equal(t, CIFailure, CIStateFromCombined("failure"))
	assert.Equal(t, CIFailure, CIStateFromCombined("error"))
	assert.Equal(t, CISuccess, CIStateFromCombined("success"))
	assert.Equal(t, CIPending, CIStateFromCombined("pending"))
	assert.Equal(t, CIPending, CIStateFromCombined(""))
}

func TestRepoRef(t *testing.T) {
	assert.Equal(t, "octo/chaos", RepoRef{Owner: "octo", Name: "chaos"}.String())
	assert.True(t, RepoRef{Owner: "octo"}.IsZero())
	assert.False(t, RepoRef{Owner: "octo", Name: "chaos"}.IsZero())
}
