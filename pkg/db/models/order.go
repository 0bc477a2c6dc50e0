package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/harborlane/importdesk-backend/pkg/enums"
)

// Order is the financial aggregate for one imported vehicle. Subtotal,
// total cost, total deposits and balance due are derived fields: they are
// recomputed from the vehicle, the cost line items and the verified
// deposits inside the same transaction that persists them, never edited
// directly.
type Order struct {
	ID          uuid.UUID `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	OrderNumber string    `gorm:"column:order_number;type:text;not null;uniqueIndex"`
	CustomerID  uuid.UUID `gorm:"column:customer_id;type:uuid;not null"`

	// Status references order_statuses.code; the vocabulary is data-defined.
	Status   string `gorm:"column:status;type:text;not null;default:'pending'"`
	Currency string `gorm:"column:currency;type:text;not null"`

	CarCost            decimal.Decimal `gorm:"column:car_cost;type:numeric(12,2);not null;default:0"`
	TransportationCost decimal.Decimal `gorm:"column:transportation_cost;type:numeric(12,2);not null;default:0"`
	DutyCost           decimal.Decimal `gorm:"column:duty_cost;type:numeric(12,2);not null;default:0"`
	ClearingCost       decimal.Decimal `gorm:"column:clearing_cost;type:numeric(12,2);not null;default:0"`
	FixingCost         decimal.Decimal `gorm:"column:fixing_cost;type:numeric(12,2);not null;default:0"`

	Subtotal      decimal.Decimal    `gorm:"column:subtotal;type:numeric(12,2);not null;default:0"`
	DiscountType  enums.DiscountType `gorm:"column:discount_type;type:text;not null;default:'none'"`
	DiscountValue decimal.Decimal    `gorm:"column:discount_value;type:numeric(12,2);not null;default:0"`
	TotalCost     decimal.Decimal    `gorm:"column:total_cost;type:numeric(12,2);not null;default:0"`

	// DepositAmount is the customer's originally declared initial deposit.
	// Informational only: it never feeds balance computation.
	DepositAmount decimal.Decimal `gorm:"column:deposit_amount;type:numeric(12,2);not null;default:0"`
	TotalDeposits decimal.Decimal `gorm:"column:total_deposits;type:numeric(12,2);not null;default:0"`
	BalanceDue    decimal.Decimal `gorm:"column:balance_due;type:numeric(12,2);not null;default:0"`

	Notes     *string    `gorm:"column:notes"`
	CreatedBy uuid.UUID  `gorm:"column:created_by;type:uuid;not null"`
	Vehicle   *Vehicle   `gorm:"foreignKey:OrderID;constraint:OnDelete:CASCADE"`
	Deposits  []Deposit  `gorm:"foreignKey:OrderID;constraint:OnDelete:CASCADE"`
	CreatedAt time.Time  `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt time.Time  `gorm:"column:updated_at;autoUpdateTime"`
}
