package repository

import (
	"context"

	"github.com/jmoiron/sqlx"

	"github.com/fieldwork/jobboard/internal/domain"
)

// TokenRepository handles device push token persistence.
type TokenRepository struct {
	db *sqlx.DB
}

// NewTokenRepository creates a new TokenRepository.
func NewTokenRepository(db *sqlx.DB) *TokenRepository {
	return &TokenRepository{db: db}
}

// Save registers a device token for a user. Each user holds at most one
// live token; a later registration overwrites the earlier one.
func (r *TokenRepository) Save(ctx context.Context, userID int64, token string) error {
	_, err := r.db.ExecContext(ctx,
		`INSERT INTO notification_tokens (user_id, token, platform)
		 VALUES ($1, $2, 'expo')
		 ON CONFLICT (user_id)
		 DO UPDATE SET token = EXCLUDED.token,
		               updated_at = NOW()`,
		userID, token)
	if err != nil {
		return &domain.StoreError{Op: "save push token", Err: err}
	}
	return nil
}

// Remove deletes the user's token, if any. Removing a token that does not
// exist is not an error.
func (r *TokenRepository) Remove(ctx context.Context, userID int64) error {
	_, err := r.db.ExecContext(ctx,
		`DELETE FROM notification_tokens WHERE user_id = $1`, userID)
	if err != nil {
		return &domain.StoreError{Op: "remove push token", Err: err}
	}
	return nil
}

// AllTokens returns every registered device token, for broadcast.
func (r *TokenRepository) AllTokens(ctx context.Context) ([]string, error) {
	tokens := []string{}
	err := r.db.SelectContext(ctx, &tokens,
		`SELECT token FROM notification_tokens WHERE token <> ''`)
	if err != nil {
		return nil, &domain.StoreError{Op: "list push tokens", Err: err}
	}
	return tokens, nil
}
