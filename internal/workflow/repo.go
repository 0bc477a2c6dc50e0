package workflow

import (
	"context"

	"github.com/harborlane/importdesk-backend/pkg/db/models"
	"gorm.io/gorm"
)

// Repository reads the configured order status vocabulary.
type Repository interface {
	WithTx(tx *gorm.DB) Repository
	ListActive(ctx context.Context) ([]models.OrderStatus, error)
	FindByCode(ctx context.Context, code string) (*models.OrderStatus, error)
}

type repository struct {
	db *gorm.DB
}

// NewRepository returns a workflow repository bound to the provided database.
func NewRepository(db *gorm.DB) Repository {
	return &repository{db: db}
}

func (r *repository) WithTx(tx *gorm.DB) Repository {
	if tx == nil {
		return r
	}
	return &repository{db: tx}
}

func (r *repository) ListActive(ctx context.Context) ([]models.OrderStatus, error) {
	var statuses []models.OrderStatus
	if err := r.db.WithContext(ctx).
		Where("active = ?", true).
		Order("position ASC").
		Find(&statuses).Error; err != nil {
		return nil, err
	}
	return statuses, nil
}

func (r *repository) FindByCode(ctx context.Context, code string) (*models.OrderStatus, error) {
	var status models.OrderStatus
	if err := r.db.WithContext(ctx).
		Where("code = ?", code).
		First(&status).Error; err != nil {
		return nil, err
	}
	return &status, nil
}
