package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/fieldwork/jobboard/internal/cache"
	"github.com/fieldwork/jobboard/internal/domain"
	"github.com/fieldwork/jobboard/internal/service"
)

// JobHandler handles job listing and lifecycle endpoints.
type JobHandler struct {
	lifecycle *service.LifecycleService
	snapshots *cache.Snapshots
}

// NewJobHandler creates a new JobHandler.
func NewJobHandler(lifecycle *service.LifecycleService, snapshots *cache.Snapshots) *JobHandler {
	return &JobHandler{lifecycle: lifecycle, snapshots: snapshots}
}

// ListOpen returns all open jobs, newest first.
func (h *JobHandler) ListOpen(c echo.Context) error {
	jobs, err := h.lifecycle.OpenJobs(c.Request().Context())
	if err != nil {
		return err
	}
	// Best effort; the cache only covers the next cold start.
	_ = h.snapshots.Write(c.Request().Context(), cache.KeyOpenJobs, jobs)
	return JSON(c, http.StatusOK, jobs)
}

// ListMine returns the authenticated user's active jobs.
func (h *JobHandler) ListMine(c echo.Context) error {
	user, ok := CurrentUser(c)
	if !ok {
		return domain.ErrUnauthorized
	}

	jobs, err := h.lifecycle.UserJobs(c.Request().Context(), user.Email)
	if err != nil {
		return err
	}
	_ = h.snapshots.Write(c.Request().Context(), cache.UserJobsKey(user.Email), jobs)
	return JSON(c, http.StatusOK, jobs)
}

// Get returns a single job.
func (h *JobHandler) Get(c echo.Context) error {
	job, err := h.lifecycle.Job(c.Request().Context(), c.Param("id"))
	if err != nil {
		return err
	}
	return JSON(c, http.StatusOK, job)
}

// Create posts a new open job and triggers the new-job broadcast.
func (h *JobHandler) Create(c echo.Context) error {
	var in service.CreateJobInput
	if err := c.Bind(&in); err != nil {
		return domain.ErrInvalidInput
	}
	if err := c.Validate(&in); err != nil {
		return err
	}

	job, err := h.lifecycle.Create(c.Request().Context(), in)
	if err != nil {
		return err
	}
	return JSON(c, http.StatusCreated, job)
}

// Accept claims an open job for the authenticated user.
func (h *JobHandler) Accept(c echo.Context) error {
	user, ok := CurrentUser(c)
	if !ok {
		return domain.ErrUnauthorized
	}

	job, err := h.lifecycle.Accept(c.Request().Context(), c.Param("id"), domain.Actor{
		Email:       user.Email,
		DisplayName: user.DisplayName,
	})
	if err != nil {
		return err
	}
	return JSON(c, http.StatusOK, job)
}

type workEvidenceRequest struct {
	Notes string  `json:"notes" validate:"required"`
	Photo *string `json:"photo,omitempty"`
}

// MarkOnSite records arrival at an accepted job.
func (h *JobHandler) MarkOnSite(c echo.Context) error {
	var in workEvidenceRequest
	if err := c.Bind(&in); err != nil {
		return domain.ErrInvalidInput
	}

	job, err := h.lifecycle.MarkOnSite(c.Request().Context(), c.Param("id"), in.Notes, in.Photo)
	if err != nil {
		return err
	}
	return JSON(c, http.StatusOK, job)
}

// Complete finishes an onsite job.
func (h *JobHandler) Complete(c echo.Context) error {
	var in workEvidenceRequest
	if err := c.Bind(&in); err != nil {
		return domain.ErrInvalidInput
	}

	job, err := h.lifecycle.Complete(c.Request().Context(), c.Param("id"), in.Notes, in.Photo)
	if err != nil {
		return err
	}
	return JSON(c, http.StatusOK, job)
}
