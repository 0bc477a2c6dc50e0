package orders

import (
	"context"
	"fmt"
	"time"

	"gorm.io/gorm"
)

// Numbering scopes. Each scope keeps its own per-year counter.
const (
	SequenceScopeOrder        = "order"
	SequenceScopeQuoteRequest = "quote_request"
)

const nextSequenceSQL = `
INSERT INTO order_sequences (scope, year, last_value)
VALUES (?, ?, 1)
ON CONFLICT (scope, year)
DO UPDATE SET last_value = order_sequences.last_value + 1
RETURNING last_value`

// Sequencer hands out gap-free per-year numbers for orders and quote
// requests. The upsert runs inside the caller's transaction, so a rolled
// back create releases its number only when no later create has claimed
// the next one.
type Sequencer struct {
	db *gorm.DB
}

func NewSequencer(db *gorm.DB) *Sequencer {
	return &Sequencer{db: db}
}

// Next claims the next counter value for the scope and year.
func (s *Sequencer) Next(ctx context.Context, tx *gorm.DB, scope string, year int) (int64, error) {
	conn := s.db
	if tx != nil {
		conn = tx
	}

	var value int64
	err := conn.WithContext(ctx).
		Raw(nextSequenceSQL, scope, year).
		Scan(&value).Error
	if err != nil {
		return 0, fmt.Errorf("next sequence value for %s/%d: %w", scope, year, err)
	}
	return value, nil
}

// NextOrderNumber claims and formats an order number like ORD-2026-0042.
func (s *Sequencer) NextOrderNumber(ctx context.Context, tx *gorm.DB, now time.Time) (string, error) {
	year := now.UTC().Year()
	value, err := s.Next(ctx, tx, SequenceScopeOrder, year)
	if err != nil {
		return "", err
	}
	return FormatOrderNumber(year, value), nil
}

// NextRequestNumber claims and formats a quote request number like QR-2026-0007.
func (s *Sequencer) NextRequestNumber(ctx context.Context, tx *gorm.DB, now time.Time) (string, error) {
	year := now.UTC().Year()
	value, err := s.Next(ctx, tx, SequenceScopeQuoteRequest, year)
	if err != nil {
		return "", err
	}
	return FormatRequestNumber(year, value), nil
}

// FormatOrderNumber renders an order number. The numeric part is padded
// to four digits but grows past 9999 without truncation.
func FormatOrderNumber(year int, value int64) string {
	return fmt.Sprintf("ORD-%d-%04d", year, value)
}

// FormatRequestNumber renders a quote request number.
func FormatRequestNumber(year int, value int64) string {
	return fmt.Sprintf("QR-%d-%04d", year, value)
}
