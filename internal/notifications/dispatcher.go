package notifications

import (
	"context"
	"sync"
	"time"

	"weddingrsvp/internal/events"
	"weddingrsvp/internal/shared/models"
	"weddingrsvp/pkg/logger"
)

// Dispatcher hands a confirmation off for delivery. Dispatch never blocks on
// delivery and never reports delivery failures to the caller.
type Dispatcher interface {
	Dispatch(ctx context.Context, sub models.Submission, ev events.Event)
	Wait(ctx context.Context) error
}

// AsyncDispatcher sends each confirmation on its own goroutine
type AsyncDispatcher struct {
	sender  Sender
	timeout time.Duration
	log     *logger.Logger
	wg      sync.WaitGroup
}

// NewAsyncDispatcher creates a goroutine-per-email dispatcher. timeout bounds each send.
func NewAsyncDispatcher(sender Sender, timeout time.Duration, log *logger.Logger) *AsyncDispatcher {
	if timeout <= 0 {
		timeout = time.Minute
	}
	if log == nil {
		log = logger.GetDefault()
	}
	return &AsyncDispatcher{sender: sender, timeout: timeout, log: log}
}

// Dispatch starts the send and returns immediately. The request context's
// values are kept but its cancellation is not.
func (d *AsyncDispatcher) Dispatch(ctx context.Context, sub models.Submission, ev events.Event) {
	detached := context.WithoutCancel(ctx)

	d.wg.Add(1)
	go func() {
		defer d.wg.Done()

		sendCtx, cancel := context.WithTimeout(detached, d.timeout)
		defer cancel()

		deliver(sendCtx, d.sender, d.log, sub, ev)
	}()
}

// Wait blocks until in-flight sends finish or ctx is done
func (d *AsyncDispatcher) Wait(ctx context.Context) error {
	return waitGroupContext(ctx, &d.wg)
}

func deliver(ctx context.Context, sender Sender, log *logger.Logger, sub models.Submission, ev events.Event) error {
	if err := sender.Send(ctx, sub, ev); err != nil {
		log.LogEmailFailed(ctx, sub.Email, ev.Slug, err)
		return err
	}
	return nil
}

func waitGroupContext(ctx context.Context, wg *sync.WaitGroup) error {
	done := make(chan struct{})
	go func() {
		wg.Wait()
		close(done)
	}()

	select {
	case <-done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}
