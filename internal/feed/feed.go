// Package feed delivers live snapshots of job lists to subscribers.
//
// The job store is the single source of truth: on every change event the
// feed re-runs each subscriber's query and hands the callback a complete,
// self-consistent snapshot of the current list. Callbacks never see diffs or
// partially applied updates. Delivery is serial per subscriber, so
// successive snapshots observe a non-decreasing view of each job's
// updated_at; no ordering holds across independent subscriptions.
package feed

import (
	"context"
	"log/slog"
	"sync"

	"github.com/fieldwork/jobboard/internal/domain"
)

// Querier supplies the filtered job lists the feed snapshots.
type Querier interface {
	FetchOpenJobs(ctx context.Context) ([]domain.Job, error)
	FetchUserJobs(ctx context.Context, userEmail string) ([]domain.Job, error)
}

// Waiter blocks until the store signals that the jobs table changed.
type Waiter interface {
	// Wait returns once a change event arrives, or with an error when the
	// underlying connection fails or ctx is cancelled.
	Wait(ctx context.Context) error
	Close(ctx context.Context) error
}

// SnapshotFunc receives the full current list for a subscription.
type SnapshotFunc func(jobs []domain.Job)

// ErrorFunc receives subscription errors (lost connection, failed query).
type ErrorFunc func(err error)

// Feed fans change events out to snapshot subscribers. Obtain one with
// Listen; tear it down with Close.
type Feed struct {
	jobs   Querier
	waiter Waiter
	log    *slog.Logger

	mu     sync.Mutex
	subs   map[int]*subscriber
	nextID int
	paused bool

	ctx    context.Context
	cancel context.CancelFunc
	done   chan struct{}
}

type subscriber struct {
	refresh chan struct{}
	done    chan struct{}
	once    sync.Once
	query   func(ctx context.Context) ([]domain.Job, error)
	deliver SnapshotFunc
	fail    ErrorFunc
}

// Listen starts the feed loop over the given change-event source. It is the
// single explicit initialization point; the returned handle owns the
// listening goroutine until Close.
func Listen(ctx context.Context, jobs Querier, waiter Waiter, log *slog.Logger) *Feed {
	ctx, cancel := context.WithCancel(ctx)
	f := &Feed{
		jobs:   jobs,
		waiter: waiter,
		log:    log,
		subs:   make(map[int]*subscriber),
		ctx:    ctx,
		cancel: cancel,
		done:   make(chan struct{}),
	}
	go f.run()
	return f
}

func (f *Feed) run() {
	defer close(f.done)
	for {
		if err := f.waiter.Wait(f.ctx); err != nil {
			if f.ctx.Err() != nil {
				return
			}
			f.log.Error("job feed listener failed", "error", err)
			f.reportError(err)
			return
		}
		f.refreshAll()
	}
}

// SubscribeOpenJobs registers a live feed over all open jobs. The callback
// receives an initial snapshot promptly after registration and a fresh one
// after every relevant change. The returned func unsubscribes; after it
// returns no further callbacks are delivered.
func (f *Feed) SubscribeOpenJobs(deliver SnapshotFunc, fail ErrorFunc) (unsubscribe func()) {
	return f.subscribe(f.jobs.FetchOpenJobs, deliver, fail)
}

// SubscribeUserJobs registers a live feed over one user's active jobs.
func (f *Feed) SubscribeUserJobs(userEmail string, deliver SnapshotFunc, fail ErrorFunc) (unsubscribe func()) {
	return f.subscribe(func(ctx context.Context) ([]domain.Job, error) {
		return f.jobs.FetchUserJobs(ctx, userEmail)
	}, deliver, fail)
}

func (f *Feed) subscribe(query func(context.Context) ([]domain.Job, error), deliver SnapshotFunc, fail ErrorFunc) func() {
	sub := &subscriber{
		refresh: make(chan struct{}, 1),
		done:    make(chan struct{}),
		query:   query,
		deliver: deliver,
		fail:    fail,
	}

	f.mu.Lock()
	id := f.nextID
	f.nextID++
	f.subs[id] = sub
	f.mu.Unlock()

	go sub.loop(f.ctx)
	sub.kick()

	return func() {
		f.mu.Lock()
		delete(f.subs, id)
		f.mu.Unlock()
		sub.stop()
	}
}

// Pause suspends snapshot delivery, e.g. while the host app is backgrounded.
// Change events arriving while paused are absorbed; subscriptions stay
// registered.
func (f *Feed) Pause() {
	f.mu.Lock()
	f.paused = true
	f.mu.Unlock()
}

// Resume re-enables delivery and immediately hands every subscriber a fresh
// snapshot, since changes may have been missed while paused.
func (f *Feed) Resume() {
	f.mu.Lock()
	f.paused = false
	f.mu.Unlock()
	f.refreshAll()
}

// Close stops the listener and all subscriber delivery, releasing the
// underlying connection.
func (f *Feed) Close(ctx context.Context) error {
	f.cancel()
	select {
	case <-f.done:
	case <-ctx.Done():
	}
	return f.waiter.Close(ctx)
}

func (f *Feed) refreshAll() {
	f.mu.Lock()
	if f.paused {
		f.mu.Unlock()
		return
	}
	subs := make([]*subscriber, 0, len(f.subs))
	for _, s := range f.subs {
		subs = append(subs, s)
	}
	f.mu.Unlock()

	for _, s := range subs {
		s.kick()
	}
}

func (f *Feed) reportError(err error) {
	f.mu.Lock()
	subs := make([]*subscriber, 0, len(f.subs))
	for _, s := range f.subs {
		subs = append(subs, s)
	}
	f.mu.Unlock()

	for _, s := range subs {
		if s.fail != nil {
			s.fail(err)
		}
	}
}

// kick schedules a refresh. The buffered channel coalesces bursts: a
// subscriber that is mid-query picks up at most one pending refresh.
func (s *subscriber) kick() {
	select {
	case s.refresh <- struct{}{}:
	default:
	}
}

func (s *subscriber) stop() {
	s.once.Do(func() { close(s.done) })
}

func (s *subscriber) loop(ctx context.Context) {
	for {
		select {
		case <-s.done:
			return
		case <-ctx.Done():
			return
		case <-s.refresh:
		}

		jobs, err := s.query(ctx)
		if err != nil {
			if ctx.Err() != nil {
				return
			}
			if s.fail != nil {
				s.fail(err)
			}
			continue
		}

		select {
		case <-s.done:
			return
		default:
		}
		s.deliver(jobs)
	}
}
