package service

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/campusops/timetable-api/pkg/config"
	"github.com/campusops/timetable-api/pkg/jobs"
)

// Event types dispatched to the notification sink.
const (
	EventTimetableValidated   = "timetable.validated"
	EventTimetableInvalidated = "timetable.invalidated"
	EventConflictsDetected    = "conflicts.detected"
)

// Event is one lifecycle notification.
type Event struct {
	Type        string                 `json:"type"`
	TimetableID string                 `json:"timetable_id"`
	OccurredAt  time.Time              `json:"occurred_at"`
	Payload     map[string]interface{} `json:"payload,omitempty"`
}

// Notifier posts lifecycle events to a webhook sink through a background
// queue. Delivery is fire-and-forget: a failed notification is retried by
// the queue but never affects the transition that produced it.
type Notifier struct {
	queue  *jobs.Queue
	logger *zap.Logger
}

// NewNotifier builds the dispatcher. With notifications disabled it still
// returns a usable no-op value.
func NewNotifier(cfg config.NotificationsConfig, logger *zap.Logger) *Notifier {
	if logger == nil {
		logger = zap.NewNop()
	}
	n := &Notifier{logger: logger}
	if !cfg.Enabled || cfg.WebhookURL == "" {
		return n
	}

	client := &http.Client{Timeout: 10 * time.Second}
	handler := func(ctx context.Context, job jobs.Job) error {
		return deliver(ctx, client, cfg.WebhookURL, job)
	}
	n.queue = jobs.NewQueue("notifications", handler, jobs.QueueConfig{
		Workers:    cfg.Workers,
		MaxRetries: cfg.MaxRetries,
		RetryDelay: cfg.RetryDelay,
		Logger:     logger,
	})
	return n
}

// Start launches delivery workers.
func (n *Notifier) Start(ctx context.Context) {
	if n.queue != nil {
		n.queue.Start(ctx)
	}
}

// Stop drains the workers.
func (n *Notifier) Stop() {
	if n.queue != nil {
		n.queue.Stop()
	}
}

// Publish enqueues an event. Errors are logged, never returned: the caller's
// transition has already committed.
func (n *Notifier) Publish(event Event) {
	if n.queue == nil {
		return
	}
	if event.OccurredAt.IsZero() {
		event.OccurredAt = time.Now().UTC()
	}
	job := jobs.Job{ID: uuid.NewString(), Type: event.Type, Payload: event}
	if err := n.queue.Enqueue(job); err != nil {
		n.logger.Sugar().Warnw("failed to enqueue notification", "type", event.Type, "timetable_id", event.TimetableID, "error", err)
	}
}

func deliver(ctx context.Context, client *http.Client, url string, job jobs.Job) error {
	body, err := json.Marshal(job.Payload)
	if err != nil {
		return fmt.Errorf("encode notification: %w", err)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("build notification request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := client.Do(req)
	if err != nil {
		return fmt.Errorf("deliver notification: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode >= 300 {
		return fmt.Errorf("notification sink returned %d", resp.StatusCode)
	}
	return nil
}
