package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestJobStatusNext(t *testing.T) {
	tests := []struct {
		status JobStatus
		next   JobStatus
		ok     bool
	}{
		{JobStatusOpen, JobStatusAccepted, true},
		{JobStatusAccepted, JobStatusOnSite, true},
		{JobStatusOnSite, JobStatusCompleted, true},
		{JobStatusCompleted, "", false},
		{JobStatus("cancelled"), "", false},
	}

	for _, tt := range tests {
		t.Run(string(tt.status), func(t *testing.T) {
			next, ok := tt.status.Next()
			assert.Equal(t, tt.ok, ok)
			assert.Equal(t, tt.next, next)
		})
	}
}

func TestJobStatusValid(t *testing.T) {
	for _, s := range []JobStatus{JobStatusOpen, JobStatusAccepted, JobStatusOnSite, JobStatusCompleted} {
		assert.True(t, s.Valid(), "status %q", s)
	}
	assert.False(t, JobStatus("").Valid())
	assert.False(t, JobStatus("pending").Valid())
}

func TestJobStatusTerminal(t *testing.T) {
	assert.True(t, JobStatusCompleted.Terminal())
	assert.False(t, JobStatusOpen.Terminal())
	assert.False(t, JobStatusAccepted.Terminal())
	assert.False(t, JobStatusOnSite.Terminal())
}

func TestJobOpenAndActive(t *testing.T) {
	assert.True(t, Job{Status: JobStatusOpen}.Open())
	assert.False(t, Job{Status: JobStatusAccepted}.Open())

	assert.True(t, Job{Status: JobStatusAccepted}.Active())
	assert.True(t, Job{Status: JobStatusOnSite}.Active())
	assert.False(t, Job{Status: JobStatusOpen}.Active())
	assert.False(t, Job{Status: JobStatusCompleted}.Active())
}
