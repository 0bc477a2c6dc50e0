package models

import (
	"github.com/harborlane/importdesk-backend/pkg/enums"
)

// OrderStatus is one entry of the configurable fulfillment vocabulary.
// The business has changed the pipeline before, so the status set lives
// in data: ordering comes from Position and the cancel/terminal flags
// drive transition rules instead of a hard-coded list.
type OrderStatus struct {
	Code       string           `gorm:"column:code;type:text;primaryKey"`
	Label      string           `gorm:"column:label;type:text;not null"`
	BadgeClass enums.BadgeClass `gorm:"column:badge_class;type:text;not null;default:'secondary'"`
	Position   int              `gorm:"column:position;not null"`
	IsTerminal bool             `gorm:"column:is_terminal;not null;default:false"`
	IsCancel   bool             `gorm:"column:is_cancel;not null;default:false"`
	Active     bool             `gorm:"column:active;not null;default:true"`
}

// TableName overrides the default pluralization.
func (OrderStatus) TableName() string {
	return "order_statuses"
}
