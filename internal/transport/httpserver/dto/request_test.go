package dto

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"viralvibes/internal/validator"
)

func newTestValidator() *validator.Validator {
	return validator.New()
}

// TestAnalyzeRequest_Validation_Valid tests valid analyze requests.
func TestAnalyzeRequest_Validation_Valid(t *testing.T) {
	v := newTestValidator()

	tests := []struct {
		name string
		req  AnalyzeRequest
	}{
		{
			name: "bare playlist id",
			req:  AnalyzeRequest{URL: "PLabc123XYZ_-"},
		},
		{
			name: "full playlist url",
			req:  AnalyzeRequest{URL: "https://www.youtube.com/playlist?list=PLabc123"},
		},
		{
			name: "watch url with list param",
			req:  AnalyzeRequest{URL: "https://www.youtube.com/watch?v=abc&list=PLdef456"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := v.Validate(&tt.req)
			assert.NoError(t, err)
		})
	}
}

// TestAnalyzeRequest_Validation_Invalid tests invalid analyze requests.
func TestAnalyzeRequest_Validation_Invalid(t *testing.T) {
	v := newTestValidator()

	tests := []struct {
		name  string
		req   AnalyzeRequest
		field string
	}{
		{
			name:  "missing url",
			req:   AnalyzeRequest{},
			field: "url",
		},
		{
			name:  "url without list param",
			req:   AnalyzeRequest{URL: "https://www.youtube.com/watch?v=abc"},
			field: "url",
		},
		{
			name:  "malformed identifier",
			req:   AnalyzeRequest{URL: "!!"},
			field: "url",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := v.Validate(&tt.req)
			require.Error(t, err)

			verrs, ok := err.(validator.ValidationErrors)
			require.True(t, ok)
			assert.Equal(t, tt.field, verrs[0].Field)
		})
	}
}

// TestStatsRequest_Validation tests stats query validation.
func TestStatsRequest_Validation(t *testing.T) {
	v := newTestValidator()

	assert.NoError(t, v.Validate(&StatsRequest{URL: "PLabc123"}))
	assert.NoError(t, v.Validate(&StatsRequest{URL: "PLabc123", Include: "videos"}))

	assert.Error(t, v.Validate(&StatsRequest{}))
	assert.Error(t, v.Validate(&StatsRequest{URL: "PLabc123", Include: "thumbnails"}))
}

func TestStatsRequest_IncludeVideos(t *testing.T) {
	assert.True(t, StatsRequest{Include: "videos"}.IncludeVideos())
	assert.False(t, StatsRequest{}.IncludeVideos())
}

// TestPendingJobsRequest_Validation tests pending jobs query validation.
func TestPendingJobsRequest_Validation(t *testing.T) {
	v := newTestValidator()

	assert.NoError(t, v.Validate(&PendingJobsRequest{}))
	assert.NoError(t, v.Validate(&PendingJobsRequest{Limit: 50}))
	assert.Error(t, v.Validate(&PendingJobsRequest{Limit: -1}))
	assert.Error(t, v.Validate(&PendingJobsRequest{Limit: 500}))
}
