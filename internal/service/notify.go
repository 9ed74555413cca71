package service

import (
	"context"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/fieldwork/jobboard/pkg/expo"
)

// TokenSource supplies the registered device tokens for broadcast.
type TokenSource interface {
	AllTokens(ctx context.Context) ([]string, error)
}

// Pusher submits a batch of push messages.
type Pusher interface {
	Send(ctx context.Context, messages []expo.Message) ([]expo.Ticket, error)
}

// Dispatcher broadcasts new-job announcements to every registered device.
// Dispatch is advisory: every failure is logged and swallowed, and delivery
// of individual messages is not tracked beyond the ticket tally.
type Dispatcher struct {
	tokens  TokenSource
	push    Pusher
	log     *slog.Logger
	retries int
	backoff time.Duration
}

// NewDispatcher creates a new Dispatcher.
func NewDispatcher(tokens TokenSource, push Pusher, log *slog.Logger) *Dispatcher {
	return &Dispatcher{
		tokens:  tokens,
		push:    push,
		log:     log,
		retries: 3,
		backoff: 2 * time.Second,
	}
}

// NotifyNewJob sends one "new job" message per registered token as a single
// batch. Transport failures are retried a bounded number of times with
// backoff; after that the broadcast is abandoned.
func (d *Dispatcher) NotifyNewJob(ctx context.Context, jobID, title, company string) {
	dispatchID := uuid.NewString()
	log := d.log.With("dispatch_id", dispatchID, "job_id", jobID)

	tokens, err := d.tokens.AllTokens(ctx)
	if err != nil {
		log.Error("new job broadcast: read tokens failed", "error", err)
		return
	}
	if len(tokens) == 0 {
		log.Info("new job broadcast: no registered devices")
		return
	}

	messages := make([]expo.Message, 0, len(tokens))
	for _, token := range tokens {
		messages = append(messages, expo.Message{
			To:       token,
			Sound:    "default",
			Title:    "🚨 New Job Available!",
			Body:     title + " at " + company,
			Priority: "high",
			ChannelID: "default",
			Data: map[string]any{
				"type":     "NEW_JOB",
				"jobId":    jobID,
				"jobTitle": title,
				"company":  company,
			},
		})
	}

	var tickets []expo.Ticket
	for attempt := 1; ; attempt++ {
		tickets, err = d.push.Send(ctx, messages)
		if err == nil {
			break
		}
		if attempt >= d.retries || ctx.Err() != nil {
			log.Error("new job broadcast failed", "error", err, "attempts", attempt)
			return
		}
		log.Warn("new job broadcast attempt failed, retrying", "error", err, "attempt", attempt)
		select {
		case <-time.After(d.backoff * time.Duration(attempt)):
		case <-ctx.Done():
			log.Error("new job broadcast cancelled", "error", ctx.Err())
			return
		}
	}

	accepted := 0
	for _, t := range tickets {
		if t.Status == expo.TicketOK {
			accepted++
		}
	}
	log.Info("new job broadcast sent", "devices", len(tokens), "accepted", accepted)
}
