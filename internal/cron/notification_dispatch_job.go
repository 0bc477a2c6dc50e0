package cron

import (
	"context"
	"fmt"

	"github.com/harborlane/importdesk-backend/pkg/logger"
)

type pendingDispatcher interface {
	DispatchPending(ctx context.Context) (int, error)
}

type NotificationDispatchJobParams struct {
	Logger     *logger.Logger
	Dispatcher pendingDispatcher
}

func NewNotificationDispatchJob(params NotificationDispatchJobParams) (Job, error) {
	if params.Logger == nil {
		return nil, fmt.Errorf("logger required")
	}
	if params.Dispatcher == nil {
		return nil, fmt.Errorf("dispatcher required")
	}
	return &notificationDispatchJob{
		logg:       params.Logger,
		dispatcher: params.Dispatcher,
	}, nil
}

type notificationDispatchJob struct {
	logg       *logger.Logger
	dispatcher pendingDispatcher
}

func (j *notificationDispatchJob) Name() string { return "notification-dispatch" }

func (j *notificationDispatchJob) Run(ctx context.Context) error {
	dispatched, err := j.dispatcher.DispatchPending(ctx)
	if err != nil {
		return fmt.Errorf("notification dispatch: %w", err)
	}
	if dispatched > 0 {
		logCtx := j.logg.WithField(ctx, "dispatched", dispatched)
		j.logg.Info(logCtx, "pending notifications dispatched")
	}
	return nil
}
