package handler

import (
	"errors"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/fieldwork/jobboard/internal/domain"
)

func TestMapError(t *testing.T) {
	tests := []struct {
		name       string
		err        error
		wantStatus int
		wantCode   string
	}{
		{
			name:       "not found",
			err:        domain.ErrNotFound,
			wantStatus: http.StatusNotFound,
			wantCode:   "not_found",
		},
		{
			name:       "unauthorized",
			err:        domain.ErrUnauthorized,
			wantStatus: http.StatusUnauthorized,
			wantCode:   "unauthorized",
		},
		{
			name:       "accept conflict",
			err:        domain.ErrConflict,
			wantStatus: http.StatusConflict,
			wantCode:   "conflict",
		},
		{
			name: "invalid transition",
			err: &domain.InvalidTransitionError{
				Op:       "complete",
				Required: domain.JobStatusOnSite,
				Actual:   domain.JobStatusOpen,
			},
			wantStatus: http.StatusConflict,
			wantCode:   "invalid_transition",
		},
		{
			name:       "validation",
			err:        &domain.ValidationError{Field: "notes", Message: "must not be empty"},
			wantStatus: http.StatusBadRequest,
			wantCode:   "validation_error",
		},
		{
			name:       "store failure",
			err:        &domain.StoreError{Op: "fetch open jobs", Err: errors.New("timeout")},
			wantStatus: http.StatusBadGateway,
			wantCode:   "store_error",
		},
		{
			name:       "unknown",
			err:        errors.New("boom"),
			wantStatus: http.StatusInternalServerError,
			wantCode:   "internal_error",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			status, apiErr := mapError(tt.err)
			assert.Equal(t, tt.wantStatus, status)
			assert.Equal(t, tt.wantCode, apiErr.Code)
		})
	}
}

func TestMapErrorNamesTransitionStates(t *testing.T) {
	_, apiErr := mapError(&domain.InvalidTransitionError{
		Op:       "mark on-site",
		Required: domain.JobStatusAccepted,
		Actual:   domain.JobStatusOnSite,
	})
	assert.Contains(t, apiErr.Message, "accepted")
	assert.Contains(t, apiErr.Message, "onsite")
}
