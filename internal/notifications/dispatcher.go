package notifications

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/harborlane/importdesk-backend/pkg/config"
	"github.com/harborlane/importdesk-backend/pkg/db/models"
	"github.com/harborlane/importdesk-backend/pkg/enums"
	"github.com/harborlane/importdesk-backend/pkg/logger"
)

// Sender delivers one notification over its channel. In-app rows need no
// external delivery; email/SMS go out through the configured relay.
type Sender interface {
	Send(ctx context.Context, notification models.Notification) error
}

// Dispatcher drains pending notifications and records the outcome per row.
type Dispatcher struct {
	repo        Repository
	sender      Sender
	logg        *logger.Logger
	batchSize   int
	maxAttempts int
	now         func() time.Time
}

// DispatcherParams configure a Dispatcher.
type DispatcherParams struct {
	Repository  Repository
	Sender      Sender
	Logger      *logger.Logger
	BatchSize   int
	MaxAttempts int
}

// NewDispatcher builds a dispatcher over the notifications table.
func NewDispatcher(params DispatcherParams) (*Dispatcher, error) {
	if params.Repository == nil {
		return nil, fmt.Errorf("notifications repository required")
	}
	if params.Sender == nil {
		return nil, fmt.Errorf("sender required")
	}
	if params.Logger == nil {
		return nil, fmt.Errorf("logger required")
	}
	batch := params.BatchSize
	if batch <= 0 {
		batch = 50
	}
	attempts := params.MaxAttempts
	if attempts <= 0 {
		attempts = 5
	}
	return &Dispatcher{
		repo:        params.Repository,
		sender:      params.Sender,
		logg:        params.Logger,
		batchSize:   batch,
		maxAttempts: attempts,
		now:         time.Now,
	}, nil
}

// DispatchPending delivers up to one batch of pending notifications and
// returns how many were attempted.
func (d *Dispatcher) DispatchPending(ctx context.Context) (int, error) {
	pending, err := d.repo.FindPendingBatch(ctx, d.batchSize, d.maxAttempts)
	if err != nil {
		return 0, fmt.Errorf("load pending notifications: %w", err)
	}

	for _, notification := range pending {
		d.dispatchOne(ctx, notification)
	}
	return len(pending), nil
}

func (d *Dispatcher) dispatchOne(ctx context.Context, notification models.Notification) {
	logCtx := d.logg.WithFields(ctx, map[string]any{
		"notification_id": notification.ID.String(),
		"channel":         string(notification.Channel),
	})

	if err := d.sender.Send(ctx, notification); err != nil {
		msg := err.Error()
		status := enums.DeliveryStatusPending
		if notification.Attempts+1 >= d.maxAttempts {
			status = enums.DeliveryStatusFailed
		}
		if markErr := d.repo.MarkDispatched(ctx, notification.ID, status, nil, &msg); markErr != nil {
			d.logg.Error(logCtx, "failed to record delivery failure", markErr)
		}
		d.logg.Warn(d.logg.WithField(logCtx, "delivery_error", msg), "notification delivery failed")
		return
	}

	sentAt := d.now().UTC()
	if err := d.repo.MarkDispatched(ctx, notification.ID, enums.DeliveryStatusSent, &sentAt, nil); err != nil {
		d.logg.Error(logCtx, "failed to record delivery", err)
	}
}

// webhookSender posts email/SMS notifications to the configured relay
// endpoint. In-app notifications are already visible via the API, so they
// are marked sent without an outbound call.
type webhookSender struct {
	url    string
	client *http.Client
}

// NewSender builds the default sender from configuration.
func NewSender(cfg config.NotificationsConfig) Sender {
	return &webhookSender{
		url:    cfg.SenderWebhookURL,
		client: &http.Client{Timeout: cfg.SenderTimeout},
	}
}

func (s *webhookSender) Send(ctx context.Context, notification models.Notification) error {
	if notification.Channel == enums.NotificationChannelInApp || s.url == "" {
		return nil
	}

	payload, err := json.Marshal(map[string]any{
		"user_id": notification.UserID,
		"channel": notification.Channel,
		"type":    notification.Type,
		"subject": notification.Subject,
		"body":    notification.Body,
	})
	if err != nil {
		return fmt.Errorf("encode notification payload: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, s.url, bytes.NewReader(payload))
	if err != nil {
		return fmt.Errorf("build relay request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := s.client.Do(req)
	if err != nil {
		return fmt.Errorf("post to relay: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 300 {
		return fmt.Errorf("relay responded %d", resp.StatusCode)
	}
	return nil
}
