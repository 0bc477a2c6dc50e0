package quotes

import (
	"github.com/google/uuid"
	"github.com/harborlane/importdesk-backend/pkg/enums"
	"github.com/shopspring/decimal"
)

// SubmitInput is a customer's quote request.
type SubmitInput struct {
	CustomerID uuid.UUID

	VehicleType *string
	Make        string
	Model       string
	Year        int
	Trim        *string
	VIN         *string
	LotNumber   *string
	AuctionLink *string

	BudgetMin *decimal.Decimal
	BudgetMax *decimal.Decimal
}

// ReviewInput is a staff edit to a quote request: a status move, the
// quote pricing, or both. Nil pointers leave fields untouched.
type ReviewInput struct {
	QuoteID uuid.UUID

	Status *enums.QuoteStatus

	QuotedPrice  *decimal.Decimal
	ShippingCost *decimal.Decimal
	DutyEstimate *decimal.Decimal
	AdminNotes   *string

	ActorUserID uuid.UUID
	ActorRole   enums.UserRole
}

// ConvertInput turns an accepted quote into an order.
type ConvertInput struct {
	QuoteID     uuid.UUID
	ActorUserID uuid.UUID
	ActorRole   enums.UserRole
}

// GetInput scopes a single-quote read to the caller.
type GetInput struct {
	QuoteID     uuid.UUID
	ActorUserID uuid.UUID
	ActorRole   enums.UserRole
}

// ListInput filters and paginates quote listings for the caller.
type ListInput struct {
	Status enums.QuoteStatus
	// CustomerID narrows staff listings; customers always see only their
	// own requests.
	CustomerID *uuid.UUID
	Limit      int
	Cursor     string

	ActorUserID uuid.UUID
	ActorRole   enums.UserRole
}
