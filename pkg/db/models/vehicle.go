package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Vehicle is the one-to-one attachment to an order. PurchasePrice is
// nullable; a missing price contributes zero to the order subtotal.
type Vehicle struct {
	ID            uuid.UUID        `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	OrderID       uuid.UUID        `gorm:"column:order_id;type:uuid;not null;uniqueIndex"`
	AuctionSource *string          `gorm:"column:auction_source;type:text"`
	LotNumber     *string          `gorm:"column:lot_number;type:text"`
	VIN           *string          `gorm:"column:vin;type:text"`
	Make          string           `gorm:"column:make;type:text;not null"`
	Model         string           `gorm:"column:model;type:text;not null"`
	Year          int              `gorm:"column:year;not null"`
	Trim          *string          `gorm:"column:trim;type:text"`
	PurchasePrice *decimal.Decimal `gorm:"column:purchase_price;type:numeric(12,2)"`
	Condition     *string          `gorm:"column:condition;type:text"`
	Notes         *string          `gorm:"column:notes"`
	CreatedAt     time.Time        `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt     time.Time        `gorm:"column:updated_at;autoUpdateTime"`
}
