package domain

import "time"

// PushToken maps a user to one live device push address. A later
// registration for the same user overwrites the earlier one; tokens are
// removed on sign-out and do not expire on their own.
type PushToken struct {
	UserID    int64     `json:"user_id" db:"user_id"`
	Token     string    `json:"token" db:"token"`
	Platform  string    `json:"platform" db:"platform"`
	CreatedAt time.Time `json:"created_at" db:"created_at"`
	UpdatedAt time.Time `json:"updated_at" db:"updated_at"`
}
