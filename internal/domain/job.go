package domain

import "time"

// JobStatus represents the lifecycle state of a job.
type JobStatus string

const (
	JobStatusOpen      JobStatus = "open"
	JobStatusAccepted  JobStatus = "accepted"
	JobStatusOnSite    JobStatus = "onsite"
	JobStatusCompleted JobStatus = "completed"
)

// Valid reports whether s is one of the four known statuses.
func (s JobStatus) Valid() bool {
	switch s {
	case JobStatusOpen, JobStatusAccepted, JobStatusOnSite, JobStatusCompleted:
		return true
	}
	return false
}

// Next returns the only status reachable from s. The lifecycle moves forward
// only: open -> accepted -> onsite -> completed. From completed (or an
// unknown status) there is no next state and ok is false.
func (s JobStatus) Next() (next JobStatus, ok bool) {
	switch s {
	case JobStatusOpen:
		return JobStatusAccepted, true
	case JobStatusAccepted:
		return JobStatusOnSite, true
	case JobStatusOnSite:
		return JobStatusCompleted, true
	}
	return "", false
}

// Terminal reports whether no further transitions exist out of s.
func (s JobStatus) Terminal() bool {
	return s == JobStatusCompleted
}

// Job represents a field-service job posting.
type Job struct {
	ID                 string     `json:"id" db:"id"`
	Title              string     `json:"title" db:"title"`
	Description        string     `json:"description" db:"description"`
	Company            string     `json:"company" db:"company"`
	Status             JobStatus  `json:"status" db:"status"`
	AcceptedBy         *string    `json:"accepted_by,omitempty" db:"accepted_by"`
	AcceptedByName     *string    `json:"accepted_by_name,omitempty" db:"accepted_by_name"`
	AcceptedAt         *time.Time `json:"accepted_at,omitempty" db:"accepted_at"`
	Invoiced           bool       `json:"invoiced" db:"invoiced"`
	OnsiteTime         *time.Time `json:"onsite_time,omitempty" db:"onsite_time"`
	CompletedTime      *time.Time `json:"completed_time,omitempty" db:"completed_time"`
	WorkStartedImage   *string    `json:"work_started_image,omitempty" db:"work_started_image"`
	WorkStartedNotes   *string    `json:"work_started_notes,omitempty" db:"work_started_notes"`
	WorkCompletedImage *string    `json:"work_completed_image,omitempty" db:"work_completed_image"`
	WorkCompletedNotes *string    `json:"work_completed_notes,omitempty" db:"work_completed_notes"`
	CreatedAt          time.Time  `json:"created_at" db:"created_at"`
	UpdatedAt          time.Time  `json:"updated_at" db:"updated_at"`
}

// Open reports whether the job is unowned and available for acceptance.
func (j Job) Open() bool {
	return j.Status == JobStatusOpen
}

// Active reports whether the job is owned and still in progress.
func (j Job) Active() bool {
	return j.Status == JobStatusAccepted || j.Status == JobStatusOnSite
}
