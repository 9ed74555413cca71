package feed

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fieldwork/jobboard/internal/domain"
)

// chanWaiter drives the feed loop from a test-controlled channel.
type chanWaiter struct {
	events chan error
}

func newChanWaiter() *chanWaiter {
	return &chanWaiter{events: make(chan error)}
}

func (w *chanWaiter) fire()         { w.events <- nil }
func (w *chanWaiter) fail(err error) { w.events <- err }

func (w *chanWaiter) Wait(ctx context.Context) error {
	select {
	case err := <-w.events:
		return err
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (w *chanWaiter) Close(context.Context) error { return nil }

// stubQuerier serves snapshots and counts queries.
type stubQuerier struct {
	mu    sync.Mutex
	open  []domain.Job
	byUser map[string][]domain.Job
	err   error
}

func (q *stubQuerier) setOpen(jobs []domain.Job) {
	q.mu.Lock()
	defer q.mu.Unlock()
	q.open = jobs
}

func (q *stubQuerier) FetchOpenJobs(context.Context) ([]domain.Job, error) {
	q.mu.Lock()
	defer q.mu.Unlock()
	if q.err != nil {
		return nil, q.err
	}
	return q.open, nil
}

func (q *stubQuerier) FetchUserJobs(_ context.Context, email string) ([]domain.Job, error) {
	q.mu.Lock()
	defer q.mu.Unlock()
	if q.err != nil {
		return nil, q.err
	}
	return q.byUser[email], nil
}

func collect() (SnapshotFunc, <-chan []domain.Job) {
	ch := make(chan []domain.Job, 16)
	return func(jobs []domain.Job) { ch <- jobs }, ch
}

func waitSnapshot(t *testing.T, ch <-chan []domain.Job) []domain.Job {
	t.Helper()
	select {
	case jobs := <-ch:
		return jobs
	case <-time.After(2 * time.Second):
		t.Fatal("timed out waiting for snapshot")
		return nil
	}
}

func testFeed(t *testing.T, q Querier, w Waiter) *Feed {
	t.Helper()
	f := Listen(context.Background(), q, w, slog.New(slog.NewTextHandler(io.Discard, nil)))
	t.Cleanup(func() {
		ctx, cancel := context.WithTimeout(context.Background(), time.Second)
		defer cancel()
		_ = f.Close(ctx)
	})
	return f
}

func TestSubscribeDeliversInitialSnapshot(t *testing.T) {
	q := &stubQuerier{open: []domain.Job{{ID: "job-1", Status: domain.JobStatusOpen}}}
	f := testFeed(t, q, newChanWaiter())

	deliver, ch := collect()
	unsub := f.SubscribeOpenJobs(deliver, nil)
	defer unsub()

	jobs := waitSnapshot(t, ch)
	require.Len(t, jobs, 1)
	assert.Equal(t, "job-1", jobs[0].ID)
}

func TestChangeEventDeliversFreshSnapshot(t *testing.T) {
	q := &stubQuerier{open: []domain.Job{{ID: "job-1"}}}
	w := newChanWaiter()
	f := testFeed(t, q, w)

	deliver, ch := collect()
	unsub := f.SubscribeOpenJobs(deliver, nil)
	defer unsub()

	waitSnapshot(t, ch)

	q.setOpen([]domain.Job{{ID: "job-1"}, {ID: "job-2"}})
	w.fire()

	jobs := waitSnapshot(t, ch)
	assert.Len(t, jobs, 2)
}

func TestUserSubscriptionFiltersByEmail(t *testing.T) {
	q := &stubQuerier{byUser: map[string][]domain.Job{
		"mike@example.com": {{ID: "job-9", Status: domain.JobStatusAccepted}},
	}}
	f := testFeed(t, q, newChanWaiter())

	deliver, ch := collect()
	unsub := f.SubscribeUserJobs("mike@example.com", deliver, nil)
	defer unsub()

	jobs := waitSnapshot(t, ch)
	require.Len(t, jobs, 1)
	assert.Equal(t, "job-9", jobs[0].ID)

	deliver2, ch2 := collect()
	unsub2 := f.SubscribeUserJobs("other@example.com", deliver2, nil)
	defer unsub2()

	assert.Empty(t, waitSnapshot(t, ch2))
}

func TestUnsubscribeStopsDelivery(t *testing.T) {
	q := &stubQuerier{open: []domain.Job{{ID: "job-1"}}}
	w := newChanWaiter()
	f := testFeed(t, q, w)

	deliver, ch := collect()
	unsub := f.SubscribeOpenJobs(deliver, nil)
	waitSnapshot(t, ch)

	unsub()
	w.fire()

	select {
	case jobs := <-ch:
		t.Fatalf("snapshot delivered after unsubscribe: %v", jobs)
	case <-time.After(200 * time.Millisecond):
	}
}

func TestPauseAbsorbsEventsResumeRedelivers(t *testing.T) {
	q := &stubQuerier{open: []domain.Job{{ID: "job-1"}}}
	w := newChanWaiter()
	f := testFeed(t, q, w)

	deliver, ch := collect()
	unsub := f.SubscribeOpenJobs(deliver, nil)
	defer unsub()
	waitSnapshot(t, ch)

	f.Pause()
	q.setOpen([]domain.Job{{ID: "job-1"}, {ID: "job-2"}})
	w.fire()

	select {
	case <-ch:
		t.Fatal("snapshot delivered while paused")
	case <-time.After(200 * time.Millisecond):
	}

	f.Resume()
	jobs := waitSnapshot(t, ch)
	assert.Len(t, jobs, 2, "resume must hand subscribers a fresh snapshot")
}

func TestQueryFailureReportsToErrorCallback(t *testing.T) {
	q := &stubQuerier{err: errors.New("connection refused")}
	f := testFeed(t, q, newChanWaiter())

	errCh := make(chan error, 1)
	unsub := f.SubscribeOpenJobs(func([]domain.Job) {
		t.Error("snapshot delivered despite query failure")
	}, func(err error) { errCh <- err })
	defer unsub()

	select {
	case err := <-errCh:
		assert.Contains(t, err.Error(), "connection refused")
	case <-time.After(2 * time.Second):
		t.Fatal("error callback never invoked")
	}
}

func TestListenerFailureReportsToAllSubscribers(t *testing.T) {
	q := &stubQuerier{open: []domain.Job{}}
	w := newChanWaiter()
	f := testFeed(t, q, w)

	errs := make(chan error, 2)
	unsub1 := f.SubscribeOpenJobs(func([]domain.Job) {}, func(err error) { errs <- err })
	defer unsub1()
	unsub2 := f.SubscribeOpenJobs(func([]domain.Job) {}, func(err error) { errs <- err })
	defer unsub2()

	w.fail(errors.New("listener connection lost"))

	for n := 0; n < 2; n++ {
		select {
		case err := <-errs:
			assert.Contains(t, err.Error(), "listener connection lost")
		case <-time.After(2 * time.Second):
			t.Fatal("subscriber error callback never invoked")
		}
	}
}
