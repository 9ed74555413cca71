package domain

import "time"

// Optional distinguishes "field not supplied" from "field set to a value" in
// a partial update. The zero value means unchanged: an update that omits a
// field must leave the stored value untouched rather than write a null or
// empty placeholder over it.
type Optional[T any] struct {
	set   bool
	value T
}

// Set returns an Optional carrying v.
func Set[T any](v T) Optional[T] {
	return Optional[T]{set: true, value: v}
}

// Get returns the carried value and whether one was supplied.
func (o Optional[T]) Get() (T, bool) {
	return o.value, o.set
}

// IsSet reports whether a value was supplied.
func (o Optional[T]) IsSet() bool {
	return o.set
}

// JobUpdate is a partial mutation of a job record. Unset fields are not
// written. Status changes always refresh updated_at at the store.
type JobUpdate struct {
	Status             Optional[JobStatus]
	AcceptedBy         Optional[string]
	AcceptedByName     Optional[string]
	AcceptedAt         Optional[time.Time]
	Invoiced           Optional[bool]
	OnsiteTime         Optional[time.Time]
	CompletedTime      Optional[time.Time]
	WorkStartedImage   Optional[string]
	WorkStartedNotes   Optional[string]
	WorkCompletedImage Optional[string]
	WorkCompletedNotes Optional[string]
}

// Empty reports whether the update touches no fields.
func (u JobUpdate) Empty() bool {
	return !u.Status.IsSet() &&
		!u.AcceptedBy.IsSet() &&
		!u.AcceptedByName.IsSet() &&
		!u.AcceptedAt.IsSet() &&
		!u.Invoiced.IsSet() &&
		!u.OnsiteTime.IsSet() &&
		!u.CompletedTime.IsSet() &&
		!u.WorkStartedImage.IsSet() &&
		!u.WorkStartedNotes.IsSet() &&
		!u.WorkCompletedImage.IsSet() &&
		!u.WorkCompletedNotes.IsSet()
}
