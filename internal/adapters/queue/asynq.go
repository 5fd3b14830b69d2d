// Package queue hands notifications to the email sender, either through an
// asynq task queue backed by Redis or in process.
package queue

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/hibiken/asynq"

	"holidaymatch/internal/domain"
)

// TaskNotificationEmail is the asynq task type carrying a domain.Notification.
const TaskNotificationEmail = "notification:email"

// NotificationQueue is the asynq queue notification tasks are enqueued on.
const NotificationQueue = "notifications"

const (
	notificationMaxRetry = 5
	notificationTimeout  = 30 * time.Second
)

// NewNotificationTask encodes n as a notification:email task.
func NewNotificationTask(n *domain.Notification) (*asynq.Task, error) {
	if n == nil {
		return nil, errors.New("queue: notification is nil")
	}
	payload, err := json.Marshal(n)
	if err != nil {
		return nil, fmt.Errorf("queue: marshal notification: %w", err)
	}
	return asynq.NewTask(TaskNotificationEmail, payload), nil
}

// enqueuer is the subset of *asynq.Client the publisher uses.
type enqueuer interface {
	EnqueueContext(ctx context.Context, task *asynq.Task, opts ...asynq.Option) (*asynq.TaskInfo, error)
}

// Publisher implements domain.NotificationDispatcher by enqueuing asynq tasks.
// Delivery happens in the worker process.
type Publisher struct {
	client enqueuer
	logger *slog.Logger
}

var _ domain.NotificationDispatcher = (*Publisher)(nil)

// NewPublisher returns a Publisher that enqueues through client.
func NewPublisher(client *asynq.Client, logger *slog.Logger) *Publisher {
	return newPublisher(client, logger)
}

func newPublisher(client enqueuer, logger *slog.Logger) *Publisher {
	if logger == nil {
		logger = slog.Default()
	}
	return &Publisher{client: client, logger: logger}
}

func (p *Publisher) Dispatch(ctx context.Context, n *domain.Notification) error {
	task, err := NewNotificationTask(n)
	if err != nil {
		return err
	}
	info, err := p.client.EnqueueContext(ctx, task,
		asynq.Queue(NotificationQueue),
		asynq.MaxRetry(notificationMaxRetry),
		asynq.Timeout(notificationTimeout),
	)
	if err != nil {
		return fmt.Errorf("queue: enqueue %s: %w", n.Type, err)
	}
	p.logger.DebugContext(ctx, "notification enqueued", "task_id", info.ID, "type", string(n.Type))
	return nil
}

// NotificationHandler returns the asynq handler that sends queued notifications by email.
// Malformed payloads are not retried.
func NotificationHandler(emails domain.EmailService) asynq.HandlerFunc {
	return func(ctx context.Context, t *asynq.Task) error {
		var n domain.Notification
		if err := json.Unmarshal(t.Payload(), &n); err != nil {
			return fmt.Errorf("decode notification: %v: %w", err, asynq.SkipRetry)
		}
		if !n.Type.Valid() || n.To == "" {
			return fmt.Errorf("invalid notification %q: %w", n.Type, asynq.SkipRetry)
		}
		return emails.SendNotification(ctx, &n)
	}
}

// ServerConfig configures the worker-side asynq server.
type ServerConfig struct {
	RedisURL    string
	Concurrency int
	Logger      *slog.Logger
}

// NewServer builds the asynq server and a mux with the notification handler registered.
func NewServer(cfg ServerConfig, emails domain.EmailService) (*asynq.Server, *asynq.ServeMux, error) {
	opt, err := asynq.ParseRedisURI(cfg.RedisURL)
	if err != nil {
		return nil, nil, fmt.Errorf("asynq: parse REDIS_URL: %w", err)
	}
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}
	concurrency := cfg.Concurrency
	if concurrency <= 0 {
		concurrency = 10
	}
	srv := asynq.NewServer(opt, asynq.Config{
		Concurrency: concurrency,
		Queues:      map[string]int{NotificationQueue: 1},
		ErrorHandler: asynq.ErrorHandlerFunc(func(ctx context.Context, task *asynq.Task, err error) {
			logger.ErrorContext(ctx, "task failed", "type", task.Type(), "err", err)
		}),
	})
	mux := asynq.NewServeMux()
	mux.HandleFunc(TaskNotificationEmail, NotificationHandler(emails))
	return srv, mux, nil
}

// NewClient returns an asynq client for the Redis instance at redisURL.
func NewClient(redisURL string) (*asynq.Client, error) {
	opt, err := asynq.ParseRedisURI(redisURL)
	if err != nil {
		return nil, fmt.Errorf("asynq: parse REDIS_URL: %w", err)
	}
	return asynq.NewClient(opt), nil
}
