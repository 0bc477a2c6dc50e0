// Package deposits manages the per-order deposit ledger: staff record
// bank payments as pending, verify or reject them against statements,
// and administrators can remove entries outright. Every mutation
// recomputes the owning order's verified-deposit total and balance due
// inside the same transaction.
package deposits

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/harborlane/importdesk-backend/internal/notifications"
	"github.com/harborlane/importdesk-backend/pkg/db/models"
	"github.com/harborlane/importdesk-backend/pkg/enums"
	pkgerrors "github.com/harborlane/importdesk-backend/pkg/errors"
	"github.com/harborlane/importdesk-backend/pkg/logger"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

type txRunner interface {
	WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error
}

// OrderLedger is the slice of the orders repository the deposit ledger
// needs to keep an order's cached aggregates in step with its deposits.
type OrderLedger interface {
	FindOrder(ctx context.Context, tx *gorm.DB, orderID uuid.UUID) (*models.Order, error)
	FindOrderForUpdate(ctx context.Context, tx *gorm.DB, orderID uuid.UUID) (*models.Order, error)
	UpdateDepositTotals(ctx context.Context, tx *gorm.DB, orderID uuid.UUID, totalDeposits, balanceDue decimal.Decimal) error
}

// ReviewDecision is the staff verdict on a pending deposit.
type ReviewDecision string

const (
	ReviewDecisionVerify ReviewDecision = "verify"
	ReviewDecisionReject ReviewDecision = "reject"
)

// Service defines deposit ledger operations.
type Service interface {
	Add(ctx context.Context, input AddInput) (*models.Deposit, error)
	Review(ctx context.Context, input ReviewInput) (*models.Deposit, error)
	Delete(ctx context.Context, input DeleteInput) error
	ListByOrder(ctx context.Context, orderID uuid.UUID) ([]models.Deposit, error)
}

// AddInput captures a manually recorded bank payment.
type AddInput struct {
	OrderID         uuid.UUID
	CustomerID      uuid.UUID
	Amount          decimal.Decimal
	PaymentMethod   enums.PaymentMethod
	BankName        *string
	BankReference   *string
	TransactionDate time.Time
	TransactionTime string
	Notes           *string
	ActorUserID     uuid.UUID
	ActorRole       enums.UserRole
}

// ReviewInput carries a verify/reject decision for a pending deposit.
type ReviewInput struct {
	DepositID   uuid.UUID
	Decision    ReviewDecision
	ActorUserID uuid.UUID
	ActorRole   enums.UserRole
}

// DeleteInput identifies a deposit for administrator removal.
type DeleteInput struct {
	DepositID   uuid.UUID
	ActorUserID uuid.UUID
	ActorRole   enums.UserRole
}

type service struct {
	repo     Repository
	orders   OrderLedger
	tx       txRunner
	notifier notifications.Notifier
	logg     *logger.Logger
}

// NewService builds the deposit ledger service.
func NewService(repo Repository, orders OrderLedger, tx txRunner, notifier notifications.Notifier, logg *logger.Logger) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("deposits repository required")
	}
	if orders == nil {
		return nil, fmt.Errorf("order ledger required")
	}
	if tx == nil {
		return nil, fmt.Errorf("transaction runner required")
	}
	if notifier == nil {
		return nil, fmt.Errorf("notifier required")
	}
	if logg == nil {
		return nil, fmt.Errorf("logger required")
	}
	return &service{
		repo:     repo,
		orders:   orders,
		tx:       tx,
		notifier: notifier,
		logg:     logg,
	}, nil
}

func (s *service) Add(ctx context.Context, input AddInput) (*models.Deposit, error) {
	if input.OrderID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "order id required")
	}
	if input.CustomerID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "customer id required")
	}
	if !input.Amount.GreaterThan(decimal.Zero) {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "deposit amount must be positive")
	}
	if !input.ActorRole.IsStaff() {
		return nil, pkgerrors.New(pkgerrors.CodeForbidden, "staff role required")
	}
	if !input.PaymentMethod.IsValid() {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, fmt.Sprintf("invalid payment method %q", input.PaymentMethod))
	}
	if input.TransactionDate.IsZero() {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "transaction date required")
	}

	var created *models.Deposit
	err := s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		order, err := s.orders.FindOrder(ctx, tx, input.OrderID)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return pkgerrors.New(pkgerrors.CodeNotFound, "order not found")
			}
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load order")
		}
		if order.CustomerID != input.CustomerID {
			return pkgerrors.New(pkgerrors.CodeConsistency, "deposit customer does not match order customer")
		}

		deposit := &models.Deposit{
			OrderID:         input.OrderID,
			CustomerID:      input.CustomerID,
			Amount:          input.Amount,
			Currency:        order.Currency,
			PaymentMethod:   input.PaymentMethod,
			BankName:        input.BankName,
			BankReference:   input.BankReference,
			TransactionDate: input.TransactionDate,
			TransactionTime: input.TransactionTime,
			Status:          enums.DepositStatusPending,
			Notes:           input.Notes,
		}
		if err := s.repo.WithTx(tx).Create(ctx, deposit); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "create deposit")
		}
		created = deposit
		return nil
	})
	if err != nil {
		return nil, err
	}
	return created, nil
}

func (s *service) Review(ctx context.Context, input ReviewInput) (*models.Deposit, error) {
	if input.DepositID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "deposit id required")
	}
	if !input.ActorRole.IsStaff() {
		return nil, pkgerrors.New(pkgerrors.CodeForbidden, "staff role required")
	}

	var target enums.DepositStatus
	switch input.Decision {
	case ReviewDecisionVerify:
		target = enums.DepositStatusVerified
	case ReviewDecisionReject:
		target = enums.DepositStatusRejected
	default:
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "decision must be verify or reject")
	}

	var reviewed *models.Deposit
	err := s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)

		affected, err := repo.UpdateStatusFromPending(ctx, input.DepositID, target, input.ActorUserID, time.Now().UTC())
		if err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "update deposit status")
		}
		if affected == 0 {
			current, err := repo.FindByID(ctx, input.DepositID)
			if err != nil {
				if errors.Is(err, gorm.ErrRecordNotFound) {
					return pkgerrors.New(pkgerrors.CodeNotFound, "deposit not found")
				}
				return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load deposit")
			}
			return pkgerrors.New(pkgerrors.CodeStateConflict,
				fmt.Sprintf("deposit already %s; review is final", current.Status))
		}

		deposit, err := repo.FindByID(ctx, input.DepositID)
		if err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "reload deposit")
		}
		reviewed = deposit

		return s.recomputeOrderTotals(ctx, tx, deposit.OrderID)
	})
	if err != nil {
		return nil, err
	}

	if target == enums.DepositStatusVerified {
		s.notifier.Notify(ctx, notifications.NotifyInput{
			UserID:  reviewed.CustomerID,
			OrderID: &reviewed.OrderID,
			Channel: enums.NotificationChannelInApp,
			Type:    enums.NotificationTypeDepositVerified,
			Subject: "Deposit verified",
			Body:    fmt.Sprintf("Your deposit of %s %s has been verified.", reviewed.Amount.StringFixed(2), reviewed.Currency),
		})
	}
	return reviewed, nil
}

// Delete removes a deposit regardless of status. Administrator only: a
// deleted verified deposit silently raises the customer's balance due, so
// the full payload is logged as the audit trail.
func (s *service) Delete(ctx context.Context, input DeleteInput) error {
	if input.DepositID == uuid.Nil {
		return pkgerrors.New(pkgerrors.CodeValidation, "deposit id required")
	}
	if input.ActorRole != enums.UserRoleAdmin {
		return pkgerrors.New(pkgerrors.CodeForbidden, "administrator role required")
	}

	var removed *models.Deposit
	err := s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)

		deposit, err := repo.FindByID(ctx, input.DepositID)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return pkgerrors.New(pkgerrors.CodeNotFound, "deposit not found")
			}
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load deposit")
		}
		removed = deposit

		if err := repo.Delete(ctx, deposit.ID); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "delete deposit")
		}

		return s.recomputeOrderTotals(ctx, tx, deposit.OrderID)
	})
	if err != nil {
		return err
	}

	logCtx := s.logg.WithFields(ctx, map[string]any{
		"deposit_id":     removed.ID.String(),
		"order_id":       removed.OrderID.String(),
		"customer_id":    removed.CustomerID.String(),
		"amount":         removed.Amount.StringFixed(2),
		"deposit_status": string(removed.Status),
		"deleted_by":     input.ActorUserID.String(),
	})
	s.logg.Warn(logCtx, "deposit deleted by administrator")
	return nil
}

func (s *service) ListByOrder(ctx context.Context, orderID uuid.UUID) ([]models.Deposit, error) {
	if orderID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "order id required")
	}
	deposits, err := s.repo.ListByOrder(ctx, orderID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list deposits")
	}
	return deposits, nil
}

// recomputeOrderTotals refreshes the order's cached verified-deposit sum
// and balance due from the deposit rows visible to this transaction. The
// order row is locked before the sum so a concurrent cost edit cannot land
// between reading total_cost and writing balance_due.
func (s *service) recomputeOrderTotals(ctx context.Context, tx *gorm.DB, orderID uuid.UUID) error {
	order, err := s.orders.FindOrderForUpdate(ctx, tx, orderID)
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load order for recompute")
	}

	total, err := s.repo.TotalVerified(ctx, tx, orderID)
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "sum verified deposits")
	}

	balance := order.TotalCost.Sub(total)
	if err := s.orders.UpdateDepositTotals(ctx, tx, orderID, total, balance); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "update order deposit totals")
	}
	return nil
}
