package handler

import (
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/fieldwork/jobboard/internal/cache"
	"github.com/fieldwork/jobboard/internal/domain"
	"github.com/fieldwork/jobboard/internal/feed"
)

// StreamHandler serves live job list snapshots over server-sent events.
// Each event carries a complete list; a client replaces its prior state
// wholesale on every event.
type StreamHandler struct {
	feed      *feed.Feed
	snapshots *cache.Snapshots
}

// NewStreamHandler creates a new StreamHandler.
func NewStreamHandler(f *feed.Feed, snapshots *cache.Snapshots) *StreamHandler {
	return &StreamHandler{feed: f, snapshots: snapshots}
}

// OpenJobs streams snapshots of the open job list.
func (h *StreamHandler) OpenJobs(c echo.Context) error {
	return h.stream(c, cache.KeyOpenJobs, func(deliver feed.SnapshotFunc, fail feed.ErrorFunc) func() {
		return h.feed.SubscribeOpenJobs(deliver, fail)
	})
}

// UserJobs streams snapshots of the authenticated user's active jobs.
func (h *StreamHandler) UserJobs(c echo.Context) error {
	user, ok := CurrentUser(c)
	if !ok {
		return domain.ErrUnauthorized
	}
	return h.stream(c, cache.UserJobsKey(user.Email), func(deliver feed.SnapshotFunc, fail feed.ErrorFunc) func() {
		return h.feed.SubscribeUserJobs(user.Email, deliver, fail)
	})
}

func (h *StreamHandler) stream(c echo.Context, cacheKey string, subscribe func(feed.SnapshotFunc, feed.ErrorFunc) func()) error {
	w := c.Response()
	w.Header().Set(echo.HeaderContentType, "text/event-stream")
	w.Header().Set(echo.HeaderCacheControl, "no-cache")
	w.Header().Set("Connection", "keep-alive")
	w.WriteHeader(http.StatusOK)

	ctx := c.Request().Context()

	// A fresh cached snapshot covers the gap until the first live one; it is
	// superseded by the next event and never served once live data flows.
	if jobs, ok := h.snapshots.Read(ctx, cacheKey); ok {
		if err := writeEvent(c, "cached", jobs); err != nil {
			return err
		}
	}

	// Feed delivery is serial per subscriber; latest-wins coalescing keeps a
	// slow client from backing the feed up.
	snapshots := make(chan []domain.Job, 1)
	errs := make(chan error, 1)
	unsubscribe := subscribe(
		func(jobs []domain.Job) {
			select {
			case snapshots <- jobs:
			default:
				select {
				case <-snapshots:
				default:
				}
				snapshots <- jobs
			}
		},
		func(err error) {
			select {
			case errs <- err:
			default:
			}
		},
	)
	defer unsubscribe()

	for {
		select {
		case <-ctx.Done():
			return nil
		case jobs := <-snapshots:
			if err := writeEvent(c, "snapshot", jobs); err != nil {
				return nil
			}
			_ = h.snapshots.Write(ctx, cacheKey, jobs)
		case err := <-errs:
			_ = writeEvent(c, "error", map[string]string{"message": err.Error()})
			return nil
		}
	}
}

func writeEvent(c echo.Context, event string, data any) error {
	payload, err := json.Marshal(data)
	if err != nil {
		return err
	}
	if _, err := fmt.Fprintf(c.Response(), "event: %s\ndata: %s\n\n", event, payload); err != nil {
		return err
	}
	c.Response().Flush()
	return nil
}
