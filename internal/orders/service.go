// Package orders owns the order aggregate: creation with its vehicle,
// financial edits, pipeline status moves and the derived money fields.
// Subtotal, total cost and balance due are always recomputed server-side
// from the cost breakdown and the verified deposit ledger; caller-supplied
// values for them are ignored.
package orders

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/harborlane/importdesk-backend/internal/notifications"
	"github.com/harborlane/importdesk-backend/internal/pricing"
	"github.com/harborlane/importdesk-backend/internal/workflow"
	"github.com/harborlane/importdesk-backend/pkg/db/models"
	"github.com/harborlane/importdesk-backend/pkg/enums"
	pkgerrors "github.com/harborlane/importdesk-backend/pkg/errors"
	"github.com/harborlane/importdesk-backend/pkg/logger"
	"github.com/harborlane/importdesk-backend/pkg/pagination"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

type txRunner interface {
	WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error
}

// DepositSummer recomputes the verified-deposit sum from ledger rows.
// Satisfied by the deposits repository.
type DepositSummer interface {
	TotalVerified(ctx context.Context, tx *gorm.DB, orderID uuid.UUID) (decimal.Decimal, error)
}

// NumberSource claims order numbers. Satisfied by Sequencer.
type NumberSource interface {
	NextOrderNumber(ctx context.Context, tx *gorm.DB, now time.Time) (string, error)
}

// Service defines order aggregate operations.
type Service interface {
	Create(ctx context.Context, input CreateInput) (*models.Order, error)
	// CreateInTx creates an order inside an existing transaction. Used by
	// quote conversion so the order insert and the quote's one-shot link
	// commit or roll back together. No notification is queued; the caller
	// owns messaging for its own workflow.
	CreateInTx(ctx context.Context, tx *gorm.DB, input CreateInput) (*models.Order, error)
	Get(ctx context.Context, input GetInput) (*models.Order, error)
	List(ctx context.Context, input ListInput) ([]models.Order, string, error)
	Update(ctx context.Context, input UpdateInput) (*models.Order, error)
	UpdateStatus(ctx context.Context, input StatusInput) (*models.Order, error)
	// RecomputeInTx re-derives subtotal, total cost and balance due from
	// the current vehicle, cost breakdown and verified deposits. Callers
	// that mutate pricing inputs in their own transaction run this before
	// committing.
	RecomputeInTx(ctx context.Context, tx *gorm.DB, orderID uuid.UUID) (*models.Order, error)
}

type service struct {
	repo            Repository
	sequencer       NumberSource
	workflow        workflow.Service
	deposits        DepositSummer
	tx              txRunner
	notifier        notifications.Notifier
	logg            *logger.Logger
	defaultCurrency string
}

// NewService builds the orders service.
func NewService(
	repo Repository,
	sequencer NumberSource,
	workflowSvc workflow.Service,
	deposits DepositSummer,
	tx txRunner,
	notifier notifications.Notifier,
	logg *logger.Logger,
	defaultCurrency string,
) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("orders repository required")
	}
	if sequencer == nil {
		return nil, fmt.Errorf("sequencer required")
	}
	if workflowSvc == nil {
		return nil, fmt.Errorf("workflow service required")
	}
	if deposits == nil {
		return nil, fmt.Errorf("deposit summer required")
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
	if strings.TrimSpace(defaultCurrency) == "" {
		return nil, fmt.Errorf("default currency required")
	}
	return &service{
		repo:            repo,
		sequencer:       sequencer,
		workflow:        workflowSvc,
		deposits:        deposits,
		tx:              tx,
		notifier:        notifier,
		logg:            logg,
		defaultCurrency: defaultCurrency,
	}, nil
}

func (s *service) Create(ctx context.Context, input CreateInput) (*models.Order, error) {
	var created *models.Order
	err := s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		order, err := s.CreateInTx(ctx, tx, input)
		if err != nil {
			return err
		}
		created = order
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.notifier.Notify(ctx, notifications.NotifyInput{
		UserID:  created.CustomerID,
		OrderID: &created.ID,
		Channel: enums.NotificationChannelInApp,
		Type:    enums.NotificationTypeOrderCreated,
		Subject: "Order opened",
		Body:    fmt.Sprintf("Order %s has been opened for your %d %s %s.", created.OrderNumber, created.Vehicle.Year, created.Vehicle.Make, created.Vehicle.Model),
	})
	return created, nil
}

func (s *service) CreateInTx(ctx context.Context, tx *gorm.DB, input CreateInput) (*models.Order, error) {
	if err := s.validateCreate(input); err != nil {
		return nil, err
	}

	status := input.Status
	if status == "" {
		defaultStatus, err := s.workflow.DefaultStatus(ctx)
		if err != nil {
			return nil, err
		}
		status = defaultStatus
	} else if _, err := s.workflow.Resolve(ctx, status); err != nil {
		return nil, err
	}

	currency := input.Currency
	if currency == "" {
		currency = s.defaultCurrency
	}

	now := time.Now().UTC()
	orderNumber, err := s.sequencer.NextOrderNumber(ctx, tx, now)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "claim order number")
	}

	order := &models.Order{
		OrderNumber:        orderNumber,
		CustomerID:         input.CustomerID,
		Status:             status,
		Currency:           currency,
		CarCost:            input.CarCost,
		TransportationCost: input.TransportationCost,
		DutyCost:           input.DutyCost,
		ClearingCost:       input.ClearingCost,
		FixingCost:         input.FixingCost,
		DiscountType:       input.DiscountType,
		DiscountValue:      input.DiscountValue,
		DepositAmount:      input.DepositAmount,
		Notes:              input.Notes,
		CreatedBy:          input.ActorUserID,
		Vehicle: &models.Vehicle{
			AuctionSource: input.Vehicle.AuctionSource,
			LotNumber:     input.Vehicle.LotNumber,
			VIN:           input.Vehicle.VIN,
			Make:          input.Vehicle.Make,
			Model:         input.Vehicle.Model,
			Year:          input.Vehicle.Year,
			Trim:          input.Vehicle.Trim,
			PurchasePrice: input.Vehicle.PurchasePrice,
			Condition:     input.Vehicle.Condition,
			Notes:         input.Vehicle.Notes,
		},
	}
	if order.DiscountType == "" {
		order.DiscountType = enums.DiscountTypeNone
	}
	s.applyPricing(order)
	order.TotalDeposits = decimal.Zero
	order.BalanceDue = order.TotalCost

	if err := s.repo.WithTx(tx).Create(ctx, order); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "create order")
	}
	return order, nil
}

func (s *service) Get(ctx context.Context, input GetInput) (*models.Order, error) {
	if input.OrderID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "order id required")
	}
	order, err := s.repo.FindByID(ctx, input.OrderID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "order not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load order")
	}
	if !input.ActorRole.IsStaff() && order.CustomerID != input.ActorUserID {
		// Hide existence from other customers.
		return nil, pkgerrors.New(pkgerrors.CodeNotFound, "order not found")
	}
	return order, nil
}

func (s *service) List(ctx context.Context, input ListInput) ([]models.Order, string, error) {
	filter := ListFilter{
		Status: input.Status,
		Limit:  input.Limit,
	}
	if input.ActorRole.IsStaff() {
		filter.CustomerID = input.CustomerID
	} else {
		actor := input.ActorUserID
		filter.CustomerID = &actor
	}
	if input.Cursor != "" {
		cursor, err := pagination.ParseCursor(input.Cursor)
		if err != nil {
			return nil, "", pkgerrors.New(pkgerrors.CodeValidation, "invalid cursor")
		}
		filter.Cursor = cursor
	}

	rows, next, err := s.repo.List(ctx, filter)
	if err != nil {
		return nil, "", pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list orders")
	}
	nextCursor := ""
	if next != nil {
		nextCursor = pagination.EncodeCursor(*next)
	}
	return rows, nextCursor, nil
}

func (s *service) Update(ctx context.Context, input UpdateInput) (*models.Order, error) {
	if input.OrderID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "order id required")
	}
	if !input.ActorRole.IsStaff() {
		return nil, pkgerrors.New(pkgerrors.CodeForbidden, "staff role required")
	}

	var updated *models.Order
	err := s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)

		order, err := repo.FindForUpdate(ctx, input.OrderID)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return pkgerrors.New(pkgerrors.CodeNotFound, "order not found")
			}
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "lock order")
		}

		if err := applyFinancialEdit(order, input); err != nil {
			return err
		}

		s.applyPricing(order)

		total, err := s.deposits.TotalVerified(ctx, tx, order.ID)
		if err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "sum verified deposits")
		}
		order.TotalDeposits = total
		order.BalanceDue = order.TotalCost.Sub(total)

		if err := repo.Save(ctx, order); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "save order")
		}
		updated = order
		return nil
	})
	if err != nil {
		return nil, err
	}
	return updated, nil
}

func (s *service) UpdateStatus(ctx context.Context, input StatusInput) (*models.Order, error) {
	if input.OrderID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "order id required")
	}
	if input.Status == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "status required")
	}
	if !input.ActorRole.IsStaff() {
		return nil, pkgerrors.New(pkgerrors.CodeForbidden, "staff role required")
	}

	var moved *models.Order
	var changed bool
	err := s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)

		order, err := repo.FindForUpdate(ctx, input.OrderID)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return pkgerrors.New(pkgerrors.CodeNotFound, "order not found")
			}
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "lock order")
		}

		if err := s.workflow.CheckTransition(ctx, tx, order.Status, input.Status); err != nil {
			return err
		}
		if order.Status != input.Status {
			order.Status = input.Status
			changed = true
			if err := repo.Save(ctx, order); err != nil {
				return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "save order")
			}
		}
		moved = order
		return nil
	})
	if err != nil {
		return nil, err
	}

	if changed {
		status, resolveErr := s.workflow.Resolve(ctx, moved.Status)
		label := moved.Status
		if resolveErr == nil {
			label = status.Label
		}
		s.notifier.Notify(ctx, notifications.NotifyInput{
			UserID:  moved.CustomerID,
			OrderID: &moved.ID,
			Channel: enums.NotificationChannelInApp,
			Type:    enums.NotificationTypeOrderStatusChanged,
			Subject: "Order status updated",
			Body:    fmt.Sprintf("Order %s is now %s.", moved.OrderNumber, label),
		})
	}
	return moved, nil
}

func (s *service) RecomputeInTx(ctx context.Context, tx *gorm.DB, orderID uuid.UUID) (*models.Order, error) {
	repo := s.repo.WithTx(tx)

	order, err := repo.FindForUpdate(ctx, orderID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "order not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "lock order")
	}

	s.applyPricing(order)

	total, err := s.deposits.TotalVerified(ctx, tx, order.ID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "sum verified deposits")
	}
	order.TotalDeposits = total
	order.BalanceDue = order.TotalCost.Sub(total)

	if err := repo.Save(ctx, order); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "save order")
	}
	return order, nil
}

// applyPricing recomputes subtotal and total cost from the cost breakdown
// and discount. Balance due is the caller's responsibility because it
// needs the verified-deposit sum.
func (s *service) applyPricing(order *models.Order) {
	var purchasePrice decimal.Decimal
	if order.Vehicle != nil && order.Vehicle.PurchasePrice != nil {
		purchasePrice = *order.Vehicle.PurchasePrice
	}
	order.Subtotal = pricing.Subtotal(pricing.Breakdown{
		PurchasePrice:      purchasePrice,
		CarCost:            order.CarCost,
		TransportationCost: order.TransportationCost,
		DutyCost:           order.DutyCost,
		ClearingCost:       order.ClearingCost,
		FixingCost:         order.FixingCost,
	})
	_, order.TotalCost = pricing.Discount(order.Subtotal, order.DiscountType, order.DiscountValue)
}

func (s *service) validateCreate(input CreateInput) error {
	if !input.ActorRole.IsStaff() {
		return pkgerrors.New(pkgerrors.CodeForbidden, "staff role required")
	}
	if input.CustomerID == uuid.Nil {
		return pkgerrors.New(pkgerrors.CodeValidation, "customer id required")
	}
	if strings.TrimSpace(input.Vehicle.Make) == "" {
		return pkgerrors.New(pkgerrors.CodeValidation, "vehicle make required")
	}
	if strings.TrimSpace(input.Vehicle.Model) == "" {
		return pkgerrors.New(pkgerrors.CodeValidation, "vehicle model required")
	}
	now := time.Now()
	if input.Vehicle.Year < minVehicleYear || input.Vehicle.Year > maxVehicleYear(now) {
		return pkgerrors.New(pkgerrors.CodeValidation,
			fmt.Sprintf("vehicle year must be between %d and %d", minVehicleYear, maxVehicleYear(now)))
	}
	if input.DiscountType != "" && !input.DiscountType.IsValid() {
		return pkgerrors.New(pkgerrors.CodeValidation, fmt.Sprintf("invalid discount type %q", input.DiscountType))
	}
	for name, value := range map[string]decimal.Decimal{
		"car_cost":            input.CarCost,
		"transportation_cost": input.TransportationCost,
		"duty_cost":           input.DutyCost,
		"clearing_cost":       input.ClearingCost,
		"fixing_cost":         input.FixingCost,
		"discount_value":      input.DiscountValue,
		"deposit_amount":      input.DepositAmount,
	} {
		if value.LessThan(decimal.Zero) {
			return pkgerrors.New(pkgerrors.CodeValidation, fmt.Sprintf("%s cannot be negative", name))
		}
	}
	if input.Vehicle.PurchasePrice != nil && input.Vehicle.PurchasePrice.LessThan(decimal.Zero) {
		return pkgerrors.New(pkgerrors.CodeValidation, "purchase_price cannot be negative")
	}
	return nil
}

func applyFinancialEdit(order *models.Order, input UpdateInput) error {
	set := func(name string, target *decimal.Decimal, value *decimal.Decimal) error {
		if value == nil {
			return nil
		}
		if value.LessThan(decimal.Zero) {
			return pkgerrors.New(pkgerrors.CodeValidation, fmt.Sprintf("%s cannot be negative", name))
		}
		*target = *value
		return nil
	}

	if err := set("car_cost", &order.CarCost, input.CarCost); err != nil {
		return err
	}
	if err := set("transportation_cost", &order.TransportationCost, input.TransportationCost); err != nil {
		return err
	}
	if err := set("duty_cost", &order.DutyCost, input.DutyCost); err != nil {
		return err
	}
	if err := set("clearing_cost", &order.ClearingCost, input.ClearingCost); err != nil {
		return err
	}
	if err := set("fixing_cost", &order.FixingCost, input.FixingCost); err != nil {
		return err
	}
	if err := set("discount_value", &order.DiscountValue, input.DiscountValue); err != nil {
		return err
	}
	if err := set("deposit_amount", &order.DepositAmount, input.DepositAmount); err != nil {
		return err
	}
	if input.DiscountType != nil {
		if !input.DiscountType.IsValid() {
			return pkgerrors.New(pkgerrors.CodeValidation, fmt.Sprintf("invalid discount type %q", *input.DiscountType))
		}
		order.DiscountType = *input.DiscountType
	}
	if input.Notes != nil {
		order.Notes = input.Notes
	}
	return nil
}
