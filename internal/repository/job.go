package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/jmoiron/sqlx"

	"github.com/fieldwork/jobboard/internal/domain"
)

const jobColumns = `id, title, description, company, status,
	accepted_by, accepted_by_name, accepted_at, invoiced,
	onsite_time, completed_time,
	work_started_image, work_started_notes,
	work_completed_image, work_completed_notes,
	created_at, updated_at`

// JobRepository handles job data access against the jobs table.
type JobRepository struct {
	db *sqlx.DB
}

// NewJobRepository creates a new JobRepository.
func NewJobRepository(db *sqlx.DB) *JobRepository {
	return &JobRepository{db: db}
}

// GetByID retrieves a single job.
func (r *JobRepository) GetByID(ctx context.Context, id string) (*domain.Job, error) {
	var job domain.Job
	err := r.db.GetContext(ctx, &job,
		`SELECT `+jobColumns+` FROM jobs WHERE id = $1`, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, &domain.StoreError{Op: "get job", Err: err}
	}
	return &job, nil
}

// FetchOpenJobs returns all open jobs, newest first.
func (r *JobRepository) FetchOpenJobs(ctx context.Context) ([]domain.Job, error) {
	jobs := []domain.Job{}
	err := r.db.SelectContext(ctx, &jobs,
		`SELECT `+jobColumns+` FROM jobs
		 WHERE status = $1
		 ORDER BY created_at DESC`, domain.JobStatusOpen)
	if err != nil {
		return nil, &domain.StoreError{Op: "fetch open jobs", Err: err}
	}
	return jobs, nil
}

// FetchUserJobs returns the given user's active jobs (accepted or onsite),
// most recently updated first. Completed jobs drop out of this view; the
// status filter runs at the store, not in memory.
func (r *JobRepository) FetchUserJobs(ctx context.Context, userEmail string) ([]domain.Job, error) {
	jobs := []domain.Job{}
	err := r.db.SelectContext(ctx, &jobs,
		`SELECT `+jobColumns+` FROM jobs
		 WHERE accepted_by = $1 AND status IN ($2, $3)
		 ORDER BY updated_at DESC`,
		userEmail, domain.JobStatusAccepted, domain.JobStatusOnSite)
	if err != nil {
		return nil, &domain.StoreError{Op: "fetch user jobs", Err: err}
	}
	return jobs, nil
}

// Create inserts a new open, unowned job and returns the stored record with
// its store-assigned id and timestamps.
func (r *JobRepository) Create(ctx context.Context, title, description, company string, invoiced bool) (*domain.Job, error) {
	var job domain.Job
	err := r.db.QueryRowxContext(ctx,
		`INSERT INTO jobs (title, description, company, status, invoiced)
		 VALUES ($1, $2, $3, $4, $5)
		 RETURNING `+jobColumns,
		title, description, company, domain.JobStatusOpen, invoiced,
	).StructScan(&job)
	if err != nil {
		return nil, &domain.StoreError{Op: "create job", Err: err}
	}
	return &job, nil
}

// UpdateWhereStatus applies a partial update to a job only if its current
// status equals expected. The status guard in the WHERE clause makes the
// write atomic with respect to concurrent state transitions: of two
// simultaneous accepts of the same open job, at most one matches a row.
// When no row matches, the job is re-read so the caller can distinguish a
// missing job from a lost race.
func (r *JobRepository) UpdateWhereStatus(ctx context.Context, id string, expected domain.JobStatus, update domain.JobUpdate) (*domain.Job, error) {
	set, args := buildSet(update)
	if len(set) == 0 {
		return nil, fmt.Errorf("%w: empty job update", domain.ErrInvalidInput)
	}
	set = append(set, "updated_at = NOW()")

	args = append(args, id, expected)
	query := fmt.Sprintf(
		`UPDATE jobs SET %s WHERE id = $%d AND status = $%d RETURNING %s`,
		strings.Join(set, ", "), len(args)-1, len(args), jobColumns)

	var job domain.Job
	err := r.db.QueryRowxContext(ctx, query, args...).StructScan(&job)
	if err == nil {
		return &job, nil
	}
	if !errors.Is(err, sql.ErrNoRows) {
		return nil, &domain.StoreError{Op: "update job", Err: err}
	}

	// Guard did not match: either the job is gone or its status moved.
	current, getErr := r.GetByID(ctx, id)
	if getErr != nil {
		return nil, getErr
	}
	return current, domain.ErrConflict
}

// buildSet renders only the supplied fields of a JobUpdate into SET clause
// fragments, so omitted fields never clobber stored values.
func buildSet(u domain.JobUpdate) (clauses []string, args []any) {
	add := func(column string, value any) {
		args = append(args, value)
		clauses = append(clauses, fmt.Sprintf("%s = $%d", column, len(args)))
	}

	if v, ok := u.Status.Get(); ok {
		add("status", v)
	}
	if v, ok := u.AcceptedBy.Get(); ok {
		add("accepted_by", v)
	}
	if v, ok := u.AcceptedByName.Get(); ok {
		add("accepted_by_name", v)
	}
	if v, ok := u.AcceptedAt.Get(); ok {
		add("accepted_at", v)
	}
	if v, ok := u.Invoiced.Get(); ok {
		add("invoiced", v)
	}
	if v, ok := u.OnsiteTime.Get(); ok {
		add("onsite_time", v)
	}
	if v, ok := u.CompletedTime.Get(); ok {
		add("completed_time", v)
	}
	if v, ok := u.WorkStartedImage.Get(); ok {
		add("work_started_image", v)
	}
	if v, ok := u.WorkStartedNotes.Get(); ok {
		add("work_started_notes", v)
	}
	if v, ok := u.WorkCompletedImage.Get(); ok {
		add("work_completed_image", v)
	}
	if v, ok := u.WorkCompletedNotes.Get(); ok {
		add("work_completed_notes", v)
	}
	return clauses, args
}
