package queue

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"holidaymatch/internal/domain"
)

const inlineSendTimeout = 30 * time.Second

// InlineDispatcher implements domain.NotificationDispatcher without a queue. Each
// notification is sent on its own goroutine so the caller never waits for the mailer.
type InlineDispatcher struct {
	emails domain.EmailService
	logger *slog.Logger
	wg     sync.WaitGroup
}

var _ domain.NotificationDispatcher = (*InlineDispatcher)(nil)

// NewInlineDispatcher returns a dispatcher that sends through emails in the background.
func NewInlineDispatcher(emails domain.EmailService, logger *slog.Logger) *InlineDispatcher {
	if logger == nil {
		logger = slog.Default()
	}
	return &InlineDispatcher{emails: emails, logger: logger}
}

func (d *InlineDispatcher) Dispatch(ctx context.Context, n *domain.Notification) error {
	c := *n
	sendCtx := context.WithoutCancel(ctx)
	d.wg.Add(1)
	go func() {
		defer d.wg.Done()
		ctx, cancel := context.WithTimeout(sendCtx, inlineSendTimeout)
		defer cancel()
		if err := d.emails.SendNotification(ctx, &c); err != nil {
			d.logger.WarnContext(ctx, "notification send failed", "type", string(c.Type), "err", err)
		}
	}()
	return nil
}

// Wait blocks until every notification dispatched so far has been attempted.
func (d *InlineDispatcher) Wait() {
	d.wg.Wait()
}
