package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/harborlane/importdesk-backend/pkg/enums"
)

// Deposit records a bank payment made by a customer against an order.
// CustomerID must match the owning order's customer; the deposits service
// enforces that cross-check on every insert.
type Deposit struct {
	ID              uuid.UUID           `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	OrderID         uuid.UUID           `gorm:"column:order_id;type:uuid;not null;index"`
	CustomerID      uuid.UUID           `gorm:"column:customer_id;type:uuid;not null"`
	Amount          decimal.Decimal     `gorm:"column:amount;type:numeric(12,2);not null"`
	Currency        string              `gorm:"column:currency;type:text;not null"`
	PaymentMethod   enums.PaymentMethod `gorm:"column:payment_method;type:text;not null;default:'bank_transfer'"`
	BankName        *string             `gorm:"column:bank_name;type:text"`
	BankReference   *string             `gorm:"column:bank_reference;type:text"`
	TransactionDate time.Time           `gorm:"column:transaction_date;type:date;not null"`
	TransactionTime string              `gorm:"column:transaction_time;type:time;not null"`
	Status          enums.DepositStatus `gorm:"column:status;type:text;not null;default:'pending'"`
	Notes           *string             `gorm:"column:notes"`
	ReviewedBy      *uuid.UUID          `gorm:"column:reviewed_by;type:uuid"`
	ReviewedAt      *time.Time          `gorm:"column:reviewed_at"`
	CreatedAt       time.Time           `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt       time.Time           `gorm:"column:updated_at;autoUpdateTime"`
}
