package domain

import "time"

// AuthProvider represents an OAuth provider.
type AuthProvider string

const (
	AuthProviderGoogle AuthProvider = "google"
)

// User represents an authenticated contractor.
type User struct {
	ID          int64        `json:"id" db:"id"`
	Provider    AuthProvider `json:"provider" db:"provider"`
	ProviderID  string       `json:"provider_id" db:"provider_id"`
	Email       string       `json:"email" db:"email"`
	DisplayName string       `json:"display_name" db:"display_name"`
	AvatarURL   *string      `json:"avatar_url,omitempty" db:"avatar_url"`
	CreatedAt   time.Time    `json:"created_at" db:"created_at"`
	UpdatedAt   time.Time    `json:"updated_at" db:"updated_at"`
}

// Actor identifies the user performing a lifecycle operation. Jobs record
// the acceptor by email plus a display name for listing screens.
type Actor struct {
	Email       string
	DisplayName string
}
