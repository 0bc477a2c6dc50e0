package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/harborlane/importdesk-backend/pkg/enums"
)

// QuoteRequest captures a customer's ask for a vehicle import quote.
// OrderID stays null until the request is converted; once set it is never
// changed, which is what makes conversion a one-shot operation.
type QuoteRequest struct {
	ID            uuid.UUID `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	RequestNumber string    `gorm:"column:request_number;type:text;not null;uniqueIndex"`
	CustomerID    uuid.UUID `gorm:"column:customer_id;type:uuid;not null"`

	VehicleType *string `gorm:"column:vehicle_type;type:text"`
	Make        string  `gorm:"column:make;type:text;not null"`
	Model       string  `gorm:"column:model;type:text;not null"`
	Year        int     `gorm:"column:year;not null"`
	Trim        *string `gorm:"column:trim;type:text"`
	VIN         *string `gorm:"column:vin;type:text"`
	LotNumber   *string `gorm:"column:lot_number;type:text"`
	AuctionLink *string `gorm:"column:auction_link;type:text"`

	BudgetMin *decimal.Decimal `gorm:"column:budget_min;type:numeric(12,2)"`
	BudgetMax *decimal.Decimal `gorm:"column:budget_max;type:numeric(12,2)"`

	Status enums.QuoteStatus `gorm:"column:status;type:text;not null;default:'pending'"`

	QuotedPrice  *decimal.Decimal `gorm:"column:quoted_price;type:numeric(12,2)"`
	ShippingCost *decimal.Decimal `gorm:"column:shipping_cost;type:numeric(12,2)"`
	DutyEstimate *decimal.Decimal `gorm:"column:duty_estimate;type:numeric(12,2)"`
	AdminNotes   *string          `gorm:"column:admin_notes"`

	OrderID     *uuid.UUID `gorm:"column:order_id;type:uuid;uniqueIndex"`
	ConvertedAt *time.Time `gorm:"column:converted_at"`
	CreatedAt   time.Time  `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt   time.Time  `gorm:"column:updated_at;autoUpdateTime"`
}

// TotalEstimate returns quoted price + shipping + duty when all three are
// present. Display-only; never persisted.
func (q QuoteRequest) TotalEstimate() *decimal.Decimal {
	if q.QuotedPrice == nil || q.ShippingCost == nil || q.DutyEstimate == nil {
		return nil
	}
	total := q.QuotedPrice.Add(*q.ShippingCost).Add(*q.DutyEstimate)
	return &total
}
