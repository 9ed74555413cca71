package service

import (
	"context"
	"errors"
	"log/slog"
	"strings"
	"time"

	"github.com/fieldwork/jobboard/internal/domain"
)

// JobStore defines the job data access interface consumed by LifecycleService.
type JobStore interface {
	GetByID(ctx context.Context, id string) (*domain.Job, error)
	FetchOpenJobs(ctx context.Context) ([]domain.Job, error)
	FetchUserJobs(ctx context.Context, userEmail string) ([]domain.Job, error)
	Create(ctx context.Context, title, description, company string, invoiced bool) (*domain.Job, error)
	// UpdateWhereStatus applies the update only if the job's current status
	// equals expected; when the guard misses it returns the current record
	// together with domain.ErrConflict.
	UpdateWhereStatus(ctx context.Context, id string, expected domain.JobStatus, update domain.JobUpdate) (*domain.Job, error)
}

// Notifier broadcasts a new-job announcement, best effort.
type Notifier interface {
	NotifyNewJob(ctx context.Context, jobID, title, company string)
}

// LifecycleService owns the job state machine. Every transition goes
// through a conditional write whose status guard the store arbitrates;
// nothing here mutates state optimistically. Callers observe new state
// via the store or the live feed.
type LifecycleService struct {
	jobs     JobStore
	notifier Notifier
	log      *slog.Logger
	now      func() time.Time
}

// NewLifecycleService creates a new LifecycleService.
func NewLifecycleService(jobs JobStore, notifier Notifier, log *slog.Logger) *LifecycleService {
	return &LifecycleService{
		jobs:     jobs,
		notifier: notifier,
		log:      log,
		now:      time.Now,
	}
}

// CreateJobInput holds the caller-supplied fields of a new job.
type CreateJobInput struct {
	Title       string `json:"title" validate:"required"`
	Description string `json:"description" validate:"required"`
	Company     string `json:"company" validate:"required"`
	Invoiced    bool   `json:"invoiced"`
}

// Create inserts a new open, unowned job and fires a best-effort broadcast
// to registered devices. The broadcast runs detached from the request:
// its failure never fails or rolls back the creation.
func (s *LifecycleService) Create(ctx context.Context, in CreateJobInput) (*domain.Job, error) {
	job, err := s.jobs.Create(ctx, in.Title, in.Description, in.Company, in.Invoiced)
	if err != nil {
		return nil, err
	}

	s.log.Info("job created", "job_id", job.ID, "company", job.Company)

	notifyCtx := context.WithoutCancel(ctx)
	go s.notifier.NotifyNewJob(notifyCtx, job.ID, job.Title, job.Company)

	return job, nil
}

// Accept transitions an open job to accepted on behalf of actor. If another
// user accepted first, the store's guard rejects the write and the caller
// gets domain.ErrConflict; it should re-read and present the job's new state.
func (s *LifecycleService) Accept(ctx context.Context, jobID string, actor domain.Actor) (*domain.Job, error) {
	name := actor.DisplayName
	if name == "" {
		name = actor.Email
	}

	job, err := s.jobs.UpdateWhereStatus(ctx, jobID, domain.JobStatusOpen, domain.JobUpdate{
		Status:         domain.Set(domain.JobStatusAccepted),
		AcceptedBy:     domain.Set(actor.Email),
		AcceptedByName: domain.Set(name),
		AcceptedAt:     domain.Set(s.now()),
	})
	if err != nil {
		if errors.Is(err, domain.ErrConflict) {
			s.log.Info("accept lost race", "job_id", jobID, "actor", actor.Email)
			return nil, domain.ErrConflict
		}
		return nil, err
	}

	s.log.Info("job accepted", "job_id", jobID, "actor", actor.Email)
	return job, nil
}

// MarkOnSite transitions an accepted job to onsite, recording arrival time
// and notes. The photo is optional; when absent the stored image field is
// left untouched rather than overwritten with a placeholder.
func (s *LifecycleService) MarkOnSite(ctx context.Context, jobID, notes string, photoRef *string) (*domain.Job, error) {
	if err := requireNotes(notes); err != nil {
		return nil, err
	}

	update := domain.JobUpdate{
		Status:           domain.Set(domain.JobStatusOnSite),
		OnsiteTime:       domain.Set(s.now()),
		WorkStartedNotes: domain.Set(strings.TrimSpace(notes)),
	}
	if ref, ok := photoValue(photoRef); ok {
		update.WorkStartedImage = domain.Set(ref)
	}

	job, err := s.jobs.UpdateWhereStatus(ctx, jobID, domain.JobStatusAccepted, update)
	if err != nil {
		return nil, classifyGuardMiss("mark on-site", domain.JobStatusAccepted, job, err)
	}

	s.log.Info("job on-site", "job_id", jobID)
	return job, nil
}

// Complete transitions an onsite job to completed, recording completion time
// and notes, with the same optional-photo rule as MarkOnSite. Completed is
// terminal; no transition leads out of it.
func (s *LifecycleService) Complete(ctx context.Context, jobID, notes string, photoRef *string) (*domain.Job, error) {
	if err := requireNotes(notes); err != nil {
		return nil, err
	}

	update := domain.JobUpdate{
		Status:             domain.Set(domain.JobStatusCompleted),
		CompletedTime:      domain.Set(s.now()),
		WorkCompletedNotes: domain.Set(strings.TrimSpace(notes)),
	}
	if ref, ok := photoValue(photoRef); ok {
		update.WorkCompletedImage = domain.Set(ref)
	}

	job, err := s.jobs.UpdateWhereStatus(ctx, jobID, domain.JobStatusOnSite, update)
	if err != nil {
		return nil, classifyGuardMiss("complete", domain.JobStatusOnSite, job, err)
	}

	s.log.Info("job completed", "job_id", jobID)
	return job, nil
}

// OpenJobs lists all open jobs, newest first.
func (s *LifecycleService) OpenJobs(ctx context.Context) ([]domain.Job, error) {
	return s.jobs.FetchOpenJobs(ctx)
}

// UserJobs lists the user's active jobs, most recently updated first.
func (s *LifecycleService) UserJobs(ctx context.Context, userEmail string) ([]domain.Job, error) {
	return s.jobs.FetchUserJobs(ctx, userEmail)
}

// Job retrieves a single job.
func (s *LifecycleService) Job(ctx context.Context, jobID string) (*domain.Job, error) {
	return s.jobs.GetByID(ctx, jobID)
}

func requireNotes(notes string) error {
	if strings.TrimSpace(notes) == "" {
		return &domain.ValidationError{Field: "notes", Message: "must not be empty"}
	}
	return nil
}

// photoValue reports whether a usable photo reference was supplied. Blank
// strings count as absent so they can never clobber a stored image.
func photoValue(ref *string) (string, bool) {
	if ref == nil {
		return "", false
	}
	v := strings.TrimSpace(*ref)
	return v, v != ""
}

// classifyGuardMiss turns a status-guard rejection into an
// InvalidTransitionError naming the required and actual states. The store
// hands back the current record alongside ErrConflict.
func classifyGuardMiss(op string, required domain.JobStatus, current *domain.Job, err error) error {
	if errors.Is(err, domain.ErrConflict) && current != nil {
		return &domain.InvalidTransitionError{Op: op, Required: required, Actual: current.Status}
	}
	return err
}
