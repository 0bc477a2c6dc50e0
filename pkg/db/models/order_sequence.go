package models

// OrderSequence is the per-scope, per-year counter behind order and quote
// request numbering. Incremented with a conditional UPDATE inside the
// creating transaction so concurrent creates never share a value.
type OrderSequence struct {
	Scope     string `gorm:"column:scope;type:text;primaryKey"`
	Year      int    `gorm:"column:year;primaryKey"`
	LastValue int64  `gorm:"column:last_value;not null;default:0"`
}

// TableName overrides the default pluralization.
func (OrderSequence) TableName() string {
	return "order_sequences"
}
