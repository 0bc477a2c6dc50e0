package orders

import (
	"time"

	"github.com/google/uuid"
	"github.com/harborlane/importdesk-backend/pkg/enums"
	"github.com/shopspring/decimal"
)

// VehicleInput is the vehicle payload embedded in order creation.
type VehicleInput struct {
	AuctionSource *string
	LotNumber     *string
	VIN           *string
	Make          string
	Model         string
	Year          int
	Trim          *string
	PurchasePrice *decimal.Decimal
	Condition     *string
	Notes         *string
}

// CreateInput carries everything needed to open an order.
type CreateInput struct {
	CustomerID uuid.UUID
	// Status is optional; when empty the first non-cancel active status
	// in the configured pipeline is used.
	Status   string
	Currency string

	CarCost            decimal.Decimal
	TransportationCost decimal.Decimal
	DutyCost           decimal.Decimal
	ClearingCost       decimal.Decimal
	FixingCost         decimal.Decimal

	DiscountType  enums.DiscountType
	DiscountValue decimal.Decimal
	DepositAmount decimal.Decimal
	Notes         *string

	Vehicle VehicleInput

	ActorUserID uuid.UUID
	ActorRole   enums.UserRole
}

// UpdateInput carries a partial financial edit. Nil pointers leave the
// field untouched; derived fields are always recomputed.
type UpdateInput struct {
	OrderID uuid.UUID

	CarCost            *decimal.Decimal
	TransportationCost *decimal.Decimal
	DutyCost           *decimal.Decimal
	ClearingCost       *decimal.Decimal
	FixingCost         *decimal.Decimal

	DiscountType  *enums.DiscountType
	DiscountValue *decimal.Decimal
	DepositAmount *decimal.Decimal
	Notes         *string

	ActorUserID uuid.UUID
	ActorRole   enums.UserRole
}

// StatusInput moves an order to another pipeline status.
type StatusInput struct {
	OrderID     uuid.UUID
	Status      string
	ActorUserID uuid.UUID
	ActorRole   enums.UserRole
}

// GetInput scopes a single-order read to the caller.
type GetInput struct {
	OrderID     uuid.UUID
	ActorUserID uuid.UUID
	ActorRole   enums.UserRole
}

// ListInput filters and paginates order listings for the caller.
type ListInput struct {
	Status string
	// CustomerID narrows staff listings; ignored for customers, who only
	// ever see their own orders.
	CustomerID *uuid.UUID
	Limit      int
	Cursor     string

	ActorUserID uuid.UUID
	ActorRole   enums.UserRole
}

const (
	minVehicleYear  = 1950
	vehicleYearSlip = 1
)

func maxVehicleYear(now time.Time) int {
	return now.UTC().Year() + vehicleYearSlip
}
