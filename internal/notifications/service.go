// Package notifications persists and delivers user-facing messages fired
// by order, deposit and quote mutations. Callers notify after their
// transaction commits; a failed notification is logged and dropped, never
// surfaced to the financial caller.
package notifications

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/harborlane/importdesk-backend/pkg/db/models"
	"github.com/harborlane/importdesk-backend/pkg/enums"
	pkgerrors "github.com/harborlane/importdesk-backend/pkg/errors"
	"github.com/harborlane/importdesk-backend/pkg/logger"
	"github.com/harborlane/importdesk-backend/pkg/pagination"
)

// Notifier is the fire-and-forget surface the financial services depend
// on. Implementations must not propagate delivery failures.
type Notifier interface {
	Notify(ctx context.Context, input NotifyInput)
}

// Service defines notification operations for the API and the dispatcher.
type Service interface {
	Notifier
	List(ctx context.Context, params ListParams) (*ListResult, error)
	MarkRead(ctx context.Context, userID, notificationID uuid.UUID) error
	MarkAllRead(ctx context.Context, userID uuid.UUID) (int64, error)
}

// NotifyInput captures one queued message.
type NotifyInput struct {
	UserID  uuid.UUID
	OrderID *uuid.UUID
	Channel enums.NotificationChannel
	Type    enums.NotificationType
	Subject string
	Body    string
}

// ListParams configures pagination for notifications.
type ListParams struct {
	UserID     uuid.UUID
	Limit      int
	Cursor     string
	UnreadOnly bool
}

// ListResult wraps returned notifications and the cursor for the next page.
type ListResult struct {
	Items  []models.Notification `json:"items"`
	Cursor string                `json:"cursor"`
}

type service struct {
	repo Repository
	logg *logger.Logger
}

// NewService wires notifications dependencies.
func NewService(repo Repository, logg *logger.Logger) (Service, error) {
	if repo == nil {
		return nil, pkgerrors.New(pkgerrors.CodeDependency, "notifications repository required")
	}
	if logg == nil {
		return nil, pkgerrors.New(pkgerrors.CodeDependency, "logger required")
	}
	return &service{repo: repo, logg: logg}, nil
}

// Notify queues a message for asynchronous delivery. Errors are logged
// and swallowed: a lost notification must never undo or block a committed
// financial change.
func (s *service) Notify(ctx context.Context, input NotifyInput) {
	if input.UserID == uuid.Nil || !input.Type.IsValid() {
		s.logg.Warn(s.logg.WithFields(ctx, map[string]any{
			"notification_type": string(input.Type),
		}), "dropping malformed notification")
		return
	}
	channel := input.Channel
	if !channel.IsValid() {
		channel = enums.NotificationChannelInApp
	}

	notification := &models.Notification{
		UserID:  input.UserID,
		OrderID: input.OrderID,
		Channel: channel,
		Type:    input.Type,
		Subject: input.Subject,
		Body:    input.Body,
		Status:  enums.DeliveryStatusPending,
	}
	if err := s.repo.Create(ctx, notification); err != nil {
		s.logg.Error(s.logg.WithFields(ctx, map[string]any{
			"user_id":           input.UserID.String(),
			"notification_type": string(input.Type),
		}), "failed to queue notification", err)
	}
}

func (s *service) List(ctx context.Context, params ListParams) (*ListResult, error) {
	if params.UserID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "user id required")
	}

	query := listNotificationsParams{
		UserID:     params.UserID,
		Limit:      pagination.LimitWithBuffer(params.Limit),
		UnreadOnly: params.UnreadOnly,
	}
	if params.Cursor != "" {
		cursor, err := pagination.ParseCursor(params.Cursor)
		if err != nil {
			return nil, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid cursor")
		}
		query.Cursor = cursor
	}

	rows, next, err := s.repo.List(ctx, query)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list notifications")
	}

	cursor := ""
	if next != nil {
		cursor = pagination.EncodeCursor(*next)
	}

	return &ListResult{
		Items:  rows,
		Cursor: cursor,
	}, nil
}

func (s *service) MarkRead(ctx context.Context, userID, notificationID uuid.UUID) error {
	if userID == uuid.Nil {
		return pkgerrors.New(pkgerrors.CodeValidation, "user id required")
	}
	if notificationID == uuid.Nil {
		return pkgerrors.New(pkgerrors.CodeValidation, "notification id required")
	}

	result, err := s.repo.MarkRead(ctx, userID, notificationID, time.Now().UTC())
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "mark notification read")
	}
	if !result.Found {
		return pkgerrors.New(pkgerrors.CodeNotFound, "notification not found")
	}
	return nil
}

func (s *service) MarkAllRead(ctx context.Context, userID uuid.UUID) (int64, error) {
	if userID == uuid.Nil {
		return 0, pkgerrors.New(pkgerrors.CodeValidation, "user id required")
	}

	count, err := s.repo.MarkAllRead(ctx, userID, time.Now().UTC())
	if err != nil {
		return 0, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "mark notifications read")
	}
	return count, nil
}
