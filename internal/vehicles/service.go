// Package vehicles edits the vehicle record attached to an order. A
// purchase price change flows into the order's subtotal, so the edit and
// the order recompute commit in one transaction.
package vehicles

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/harborlane/importdesk-backend/pkg/db/models"
	"github.com/harborlane/importdesk-backend/pkg/enums"
	pkgerrors "github.com/harborlane/importdesk-backend/pkg/errors"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

type txRunner interface {
	WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error
}

// OrderFinancials re-derives an order's money fields. Satisfied by the
// orders service.
type OrderFinancials interface {
	RecomputeInTx(ctx context.Context, tx *gorm.DB, orderID uuid.UUID) (*models.Order, error)
}

// Service defines vehicle record operations.
type Service interface {
	GetByOrder(ctx context.Context, orderID uuid.UUID) (*models.Vehicle, error)
	Update(ctx context.Context, input UpdateInput) (*models.Vehicle, error)
}

// UpdateInput is a partial vehicle edit. Nil pointers leave the field
// untouched.
type UpdateInput struct {
	OrderID uuid.UUID

	AuctionSource *string
	LotNumber     *string
	VIN           *string
	Make          *string
	Model         *string
	Year          *int
	Trim          *string
	PurchasePrice *decimal.Decimal
	Condition     *string
	Notes         *string

	ActorUserID uuid.UUID
	ActorRole   enums.UserRole
}

type service struct {
	repo   Repository
	orders OrderFinancials
	tx     txRunner
}

// NewService builds the vehicles service.
func NewService(repo Repository, orders OrderFinancials, tx txRunner) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("vehicles repository required")
	}
	if orders == nil {
		return nil, fmt.Errorf("order financials required")
	}
	if tx == nil {
		return nil, fmt.Errorf("transaction runner required")
	}
	return &service{repo: repo, orders: orders, tx: tx}, nil
}

func (s *service) GetByOrder(ctx context.Context, orderID uuid.UUID) (*models.Vehicle, error) {
	if orderID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "order id required")
	}
	vehicle, err := s.repo.FindByOrderID(ctx, orderID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "vehicle not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load vehicle")
	}
	return vehicle, nil
}

func (s *service) Update(ctx context.Context, input UpdateInput) (*models.Vehicle, error) {
	if input.OrderID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "order id required")
	}
	if !input.ActorRole.IsStaff() {
		return nil, pkgerrors.New(pkgerrors.CodeForbidden, "staff role required")
	}

	var updated *models.Vehicle
	err := s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)

		vehicle, err := repo.FindByOrderID(ctx, input.OrderID)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return pkgerrors.New(pkgerrors.CodeNotFound, "vehicle not found")
			}
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load vehicle")
		}

		priceChanged, err := applyEdit(vehicle, input)
		if err != nil {
			return err
		}

		if err := repo.Save(ctx, vehicle); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "save vehicle")
		}

		if priceChanged {
			if _, err := s.orders.RecomputeInTx(ctx, tx, input.OrderID); err != nil {
				return err
			}
		}
		updated = vehicle
		return nil
	})
	if err != nil {
		return nil, err
	}
	return updated, nil
}

func applyEdit(vehicle *models.Vehicle, input UpdateInput) (priceChanged bool, err error) {
	if input.Make != nil {
		if *input.Make == "" {
			return false, pkgerrors.New(pkgerrors.CodeValidation, "vehicle make cannot be empty")
		}
		vehicle.Make = *input.Make
	}
	if input.Model != nil {
		if *input.Model == "" {
			return false, pkgerrors.New(pkgerrors.CodeValidation, "vehicle model cannot be empty")
		}
		vehicle.Model = *input.Model
	}
	if input.Year != nil {
		vehicle.Year = *input.Year
	}
	if input.AuctionSource != nil {
		vehicle.AuctionSource = input.AuctionSource
	}
	if input.LotNumber != nil {
		vehicle.LotNumber = input.LotNumber
	}
	if input.VIN != nil {
		vehicle.VIN = input.VIN
	}
	if input.Trim != nil {
		vehicle.Trim = input.Trim
	}
	if input.Condition != nil {
		vehicle.Condition = input.Condition
	}
	if input.Notes != nil {
		vehicle.Notes = input.Notes
	}
	if input.PurchasePrice != nil {
		if input.PurchasePrice.LessThan(decimal.Zero) {
			return false, pkgerrors.New(pkgerrors.CodeValidation, "purchase_price cannot be negative")
		}
		previous := vehicle.PurchasePrice
		vehicle.PurchasePrice = input.PurchasePrice
		priceChanged = previous == nil || !previous.Equal(*input.PurchasePrice)
	}
	return priceChanged, nil
}
