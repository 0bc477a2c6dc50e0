package deposits

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/harborlane/importdesk-backend/pkg/db/models"
	"github.com/harborlane/importdesk-backend/pkg/enums"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// Repository defines persistence operations for the deposit ledger.
type Repository interface {
	WithTx(tx *gorm.DB) Repository
	Create(ctx context.Context, deposit *models.Deposit) error
	FindByID(ctx context.Context, id uuid.UUID) (*models.Deposit, error)
	ListByOrder(ctx context.Context, orderID uuid.UUID) ([]models.Deposit, error)
	UpdateStatusFromPending(ctx context.Context, id uuid.UUID, status enums.DepositStatus, reviewedBy uuid.UUID, now time.Time) (int64, error)
	Delete(ctx context.Context, id uuid.UUID) error
	TotalVerified(ctx context.Context, tx *gorm.DB, orderID uuid.UUID) (decimal.Decimal, error)
}

type repository struct {
	db *gorm.DB
}

// NewRepository builds a deposits repository bound to the provided DB.
func NewRepository(db *gorm.DB) Repository {
	return &repository{db: db}
}

func (r *repository) WithTx(tx *gorm.DB) Repository {
	if tx == nil {
		return r
	}
	return &repository{db: tx}
}

func (r *repository) Create(ctx context.Context, deposit *models.Deposit) error {
	return r.db.WithContext(ctx).Create(deposit).Error
}

func (r *repository) FindByID(ctx context.Context, id uuid.UUID) (*models.Deposit, error) {
	var deposit models.Deposit
	if err := r.db.WithContext(ctx).
		Where("id = ?", id).
		First(&deposit).Error; err != nil {
		return nil, err
	}
	return &deposit, nil
}

// ListByOrder returns the order's deposits, most recent transaction first.
func (r *repository) ListByOrder(ctx context.Context, orderID uuid.UUID) ([]models.Deposit, error) {
	var deposits []models.Deposit
	if err := r.db.WithContext(ctx).
		Where("order_id = ?", orderID).
		Order("transaction_date DESC, transaction_time DESC").
		Find(&deposits).Error; err != nil {
		return nil, err
	}
	return deposits, nil
}

// UpdateStatusFromPending moves a deposit out of pending with a
// conditional update. A zero affected-row count means the deposit is
// missing or already reviewed; the caller distinguishes the two.
func (r *repository) UpdateStatusFromPending(ctx context.Context, id uuid.UUID, status enums.DepositStatus, reviewedBy uuid.UUID, now time.Time) (int64, error) {
	result := r.db.WithContext(ctx).
		Model(&models.Deposit{}).
		Where("id = ? AND status = ?", id, enums.DepositStatusPending).
		Updates(map[string]any{
			"status":      status,
			"reviewed_by": reviewedBy,
			"reviewed_at": now,
		})
	if result.Error != nil {
		return 0, result.Error
	}
	return result.RowsAffected, nil
}

func (r *repository) Delete(ctx context.Context, id uuid.UUID) error {
	return r.db.WithContext(ctx).
		Where("id = ?", id).
		Delete(&models.Deposit{}).Error
}

// TotalVerified recomputes the verified-deposit sum from source rows.
// Always executed inside the same transaction that persists the owning
// order's aggregate fields.
func (r *repository) TotalVerified(ctx context.Context, tx *gorm.DB, orderID uuid.UUID) (decimal.Decimal, error) {
	conn := r.db
	if tx != nil {
		conn = tx
	}

	var total decimal.NullDecimal
	err := conn.WithContext(ctx).
		Model(&models.Deposit{}).
		Select("SUM(amount)").
		Where("order_id = ? AND status = ?", orderID, enums.DepositStatusVerified).
		Scan(&total).Error
	if err != nil {
		return decimal.Zero, err
	}
	if !total.Valid {
		return decimal.Zero, nil
	}
	return total.Decimal, nil
}
