package feed

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"
)

// jobsChannel is the NOTIFY channel the jobs table trigger fires on.
const jobsChannel = "jobs_events"

// PgWaiter is a Waiter over a dedicated Postgres LISTEN connection.
type PgWaiter struct {
	conn *pgx.Conn
}

// NewPgWaiter opens a connection and subscribes it to the jobs change
// channel. The connection is dedicated: LISTEN ties notifications to the
// session, so it must not be shared with the query pool.
func NewPgWaiter(ctx context.Context, databaseURL string) (*PgWaiter, error) {
	conn, err := pgx.Connect(ctx, databaseURL)
	if err != nil {
		return nil, fmt.Errorf("connect listener: %w", err)
	}
	if _, err := conn.Exec(ctx, "LISTEN "+jobsChannel); err != nil {
		_ = conn.Close(ctx)
		return nil, fmt.Errorf("listen %s: %w", jobsChannel, err)
	}
	return &PgWaiter{conn: conn}, nil
}

// Wait blocks until a notification arrives on the jobs channel.
func (w *PgWaiter) Wait(ctx context.Context) error {
	if _, err := w.conn.WaitForNotification(ctx); err != nil {
		return fmt.Errorf("wait for notification: %w", err)
	}
	return nil
}

// Close releases the listener connection.
func (w *PgWaiter) Close(ctx context.Context) error {
	return w.conn.Close(ctx)
}
