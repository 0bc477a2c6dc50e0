// Package workflow owns the order fulfillment status vocabulary. The
// status set is data-defined (the business has reshaped the pipeline
// before), so transition rules are derived from per-status flags instead
// of a compiled-in list: terminal statuses are frozen and the cancel
// status is reachable from any non-terminal state.
package workflow

import (
	"context"
	"errors"
	"fmt"

	"github.com/harborlane/importdesk-backend/pkg/db/models"
	"github.com/harborlane/importdesk-backend/pkg/enums"
	pkgerrors "github.com/harborlane/importdesk-backend/pkg/errors"
	"gorm.io/gorm"
)

// Service validates order status values and transitions and exposes the
// label/badge mapping used by the portal UI.
type Service interface {
	List(ctx context.Context) ([]StatusView, error)
	DefaultStatus(ctx context.Context) (string, error)
	Resolve(ctx context.Context, code string) (*models.OrderStatus, error)
	CheckTransition(ctx context.Context, tx *gorm.DB, from, to string) error
}

// StatusView is the UI-facing projection of one status definition.
type StatusView struct {
	Code       string           `json:"code"`
	Label      string           `json:"label"`
	BadgeClass enums.BadgeClass `json:"badge_class"`
	Position   int              `json:"position"`
	IsTerminal bool             `json:"is_terminal"`
	IsCancel   bool             `json:"is_cancel"`
}

type service struct {
	repo Repository
}

// NewService builds a workflow service over the status vocabulary table.
func NewService(repo Repository) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("workflow repository required")
	}
	return &service{repo: repo}, nil
}

func (s *service) List(ctx context.Context) ([]StatusView, error) {
	statuses, err := s.repo.ListActive(ctx)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list order statuses")
	}
	views := make([]StatusView, 0, len(statuses))
	for _, status := range statuses {
		views = append(views, StatusView{
			Code:       status.Code,
			Label:      status.Label,
			BadgeClass: status.BadgeClass,
			Position:   status.Position,
			IsTerminal: status.IsTerminal,
			IsCancel:   status.IsCancel,
		})
	}
	return views, nil
}

// DefaultStatus returns the first non-cancel status in pipeline order,
// used when an order is created.
func (s *service) DefaultStatus(ctx context.Context) (string, error) {
	statuses, err := s.repo.ListActive(ctx)
	if err != nil {
		return "", pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list order statuses")
	}
	for _, status := range statuses {
		if !status.IsCancel {
			return status.Code, nil
		}
	}
	return "", pkgerrors.New(pkgerrors.CodeDependency, "status vocabulary is empty")
}

func (s *service) Resolve(ctx context.Context, code string) (*models.OrderStatus, error) {
	status, err := s.repo.FindByCode(ctx, code)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeValidation, fmt.Sprintf("unknown order status %q", code))
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load order status")
	}
	if !status.Active {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, fmt.Sprintf("order status %q is retired", code))
	}
	return status, nil
}

// CheckTransition validates a status move against the configured
// vocabulary. Staff may reposition an order anywhere in the active
// pipeline; terminal statuses are frozen and cancellation is only
// reachable from a non-terminal state.
func (s *service) CheckTransition(ctx context.Context, tx *gorm.DB, from, to string) error {
	if from == to {
		return nil
	}

	repo := s.repo
	if tx != nil {
		repo = s.repo.WithTx(tx)
	}

	current, err := repo.FindByCode(ctx, from)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return pkgerrors.New(pkgerrors.CodeDependency, fmt.Sprintf("stored status %q missing from vocabulary", from))
		}
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load current status")
	}
	if current.IsTerminal {
		return pkgerrors.New(pkgerrors.CodeStateConflict, fmt.Sprintf("order in terminal status %q cannot change", from))
	}

	target, err := repo.FindByCode(ctx, to)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return pkgerrors.New(pkgerrors.CodeValidation, fmt.Sprintf("unknown order status %q", to))
		}
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load target status")
	}
	if !target.Active {
		return pkgerrors.New(pkgerrors.CodeValidation, fmt.Sprintf("order status %q is retired", to))
	}
	return nil
}
