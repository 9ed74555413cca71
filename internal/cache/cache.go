// Package cache is a best-effort, short-TTL mirror of job list snapshots,
// persisted across process restarts. It only bridges the gap between
// startup and the first live snapshot; stale entries read as misses, and
// live data always supersedes it.
package cache

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	_ "modernc.org/sqlite"

	"github.com/fieldwork/jobboard/internal/domain"
)

// DefaultTTL is the freshness window beyond which an entry is a miss.
const DefaultTTL = 5 * time.Minute

// Well-known snapshot keys.
const (
	KeyOpenJobs = "open_jobs"
)

// UserJobsKey returns the snapshot key for one user's active jobs.
func UserJobsKey(userEmail string) string {
	return "user_jobs:" + userEmail
}

// Snapshots is a persistent key -> job-list snapshot store with a fixed
// freshness window.
type Snapshots struct {
	db  *sql.DB
	ttl time.Duration
	now func() time.Time
}

// Open creates or opens the snapshot database at path.
func Open(path string, ttl time.Duration) (*Snapshots, error) {
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open snapshot cache: %w", err)
	}
	if _, err := db.Exec(`
CREATE TABLE IF NOT EXISTS snapshots (
  key TEXT PRIMARY KEY,
  captured_at INTEGER NOT NULL,
  payload TEXT NOT NULL
);
`); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("init snapshot cache: %w", err)
	}
	return &Snapshots{db: db, ttl: ttl, now: time.Now}, nil
}

func (s *Snapshots) Close() error { return s.db.Close() }

// Read returns the cached list for key if its age is within the freshness
// window. A missing, stale, or unreadable entry reads as (nil, false); none
// of those are errors.
func (s *Snapshots) Read(ctx context.Context, key string) ([]domain.Job, bool) {
	var capturedMs int64
	var payload string
	err := s.db.QueryRowContext(ctx,
		`SELECT captured_at, payload FROM snapshots WHERE key = ?`, key,
	).Scan(&capturedMs, &payload)
	if err != nil {
		return nil, false
	}

	if s.now().Sub(time.UnixMilli(capturedMs)) >= s.ttl {
		return nil, false
	}

	var jobs []domain.Job
	if err := json.Unmarshal([]byte(payload), &jobs); err != nil {
		return nil, false
	}
	return jobs, true
}

// Write stores the list under key with the current timestamp, replacing any
// previous snapshot.
func (s *Snapshots) Write(ctx context.Context, key string, jobs []domain.Job) error {
	payload, err := json.Marshal(jobs)
	if err != nil {
		return fmt.Errorf("encode snapshot %q: %w", key, err)
	}
	_, err = s.db.ExecContext(ctx,
		`INSERT INTO snapshots (key, captured_at, payload) VALUES (?, ?, ?)
		 ON CONFLICT (key) DO UPDATE SET captured_at = excluded.captured_at,
		                                 payload = excluded.payload`,
		key, s.now().UnixMilli(), string(payload))
	if err != nil {
		return fmt.Errorf("write snapshot %q: %w", key, err)
	}
	return nil
}

// Invalidate removes the entry for key, if present.
func (s *Snapshots) Invalidate(ctx context.Context, key string) error {
	if _, err := s.db.ExecContext(ctx, `DELETE FROM snapshots WHERE key = ?`, key); err != nil {
		return fmt.Errorf("invalidate snapshot %q: %w", key, err)
	}
	return nil
}
