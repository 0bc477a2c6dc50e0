package quotes

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/harborlane/importdesk-backend/pkg/db/models"
	"github.com/harborlane/importdesk-backend/pkg/enums"
	"github.com/harborlane/importdesk-backend/pkg/pagination"
	"gorm.io/gorm"
)

// Repository defines persistence operations for quote requests.
type Repository interface {
	WithTx(tx *gorm.DB) Repository
	Create(ctx context.Context, quote *models.QuoteRequest) error
	FindByID(ctx context.Context, id uuid.UUID) (*models.QuoteRequest, error)
	List(ctx context.Context, params ListFilter) ([]models.QuoteRequest, *pagination.Cursor, error)
	Save(ctx context.Context, quote *models.QuoteRequest) error
	// MarkConverted links the quote to its order with a conditional
	// update scoped to unlinked rows in a convertible status. Returns
	// the affected row count; zero means the quote is missing, already
	// linked, or not yet quoted/approved.
	MarkConverted(ctx context.Context, quoteID, orderID uuid.UUID, now time.Time) (int64, error)
}

// ListFilter narrows and paginates quote request listings.
type ListFilter struct {
	CustomerID *uuid.UUID
	Status     enums.QuoteStatus
	Limit      int
	Cursor     *pagination.Cursor
}

type repositoryImpl struct {
	db *gorm.DB
}

// NewRepository builds a quotes repository bound to the provided DB.
func NewRepository(db *gorm.DB) Repository {
	return &repositoryImpl{db: db}
}

func (r *repositoryImpl) WithTx(tx *gorm.DB) Repository {
	if tx == nil {
		return r
	}
	return &repositoryImpl{db: tx}
}

func (r *repositoryImpl) Create(ctx context.Context, quote *models.QuoteRequest) error {
	return r.db.WithContext(ctx).Create(quote).Error
}

func (r *repositoryImpl) FindByID(ctx context.Context, id uuid.UUID) (*models.QuoteRequest, error) {
	var quote models.QuoteRequest
	err := r.db.WithContext(ctx).
		Where("id = ?", id).
		First(&quote).Error
	if err != nil {
		return nil, err
	}
	return &quote, nil
}

func (r *repositoryImpl) List(ctx context.Context, params ListFilter) ([]models.QuoteRequest, *pagination.Cursor, error) {
	limit := pagination.NormalizeLimit(params.Limit)

	query := r.db.WithContext(ctx).
		Model(&models.QuoteRequest{}).
		Order("created_at DESC, id DESC").
		Limit(limit + 1)

	if params.CustomerID != nil {
		query = query.Where("customer_id = ?", *params.CustomerID)
	}
	if params.Status != "" {
		query = query.Where("status = ?", params.Status)
	}
	if params.Cursor != nil {
		query = query.Where(
			"(created_at, id) < (?, ?)",
			params.Cursor.CreatedAt, params.Cursor.ID,
		)
	}

	var rows []models.QuoteRequest
	if err := query.Find(&rows).Error; err != nil {
		return nil, nil, err
	}

	var next *pagination.Cursor
	if len(rows) > limit {
		rows = rows[:limit]
		last := rows[len(rows)-1]
		next = &pagination.Cursor{CreatedAt: last.CreatedAt, ID: last.ID}
	}
	return rows, next, nil
}

func (r *repositoryImpl) Save(ctx context.Context, quote *models.QuoteRequest) error {
	return r.db.WithContext(ctx).Save(quote).Error
}

func (r *repositoryImpl) MarkConverted(ctx context.Context, quoteID, orderID uuid.UUID, now time.Time) (int64, error) {
	convertible := []enums.QuoteStatus{enums.QuoteStatusQuoted, enums.QuoteStatusApproved}
	result := r.db.WithContext(ctx).
		Model(&models.QuoteRequest{}).
		Where("id = ? AND order_id IS NULL AND status IN ?", quoteID, convertible).
		Updates(map[string]any{
			"status":       enums.QuoteStatusConverted,
			"order_id":     orderID,
			"converted_at": now,
		})
	if result.Error != nil {
		return 0, result.Error
	}
	return result.RowsAffected, nil
}
