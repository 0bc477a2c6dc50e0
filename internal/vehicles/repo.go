package vehicles

import (
	"context"

	"github.com/google/uuid"
	"github.com/harborlane/importdesk-backend/pkg/db/models"
	"gorm.io/gorm"
)

// Repository defines persistence operations for order vehicles.
type Repository interface {
	WithTx(tx *gorm.DB) Repository
	FindByOrderID(ctx context.Context, orderID uuid.UUID) (*models.Vehicle, error)
	Save(ctx context.Context, vehicle *models.Vehicle) error
}

type repositoryImpl struct {
	db *gorm.DB
}

// NewRepository builds a vehicles repository bound to the provided DB.
func NewRepository(db *gorm.DB) Repository {
	return &repositoryImpl{db: db}
}

func (r *repositoryImpl) WithTx(tx *gorm.DB) Repository {
	if tx == nil {
		return r
	}
	return &repositoryImpl{db: tx}
}

func (r *repositoryImpl) FindByOrderID(ctx context.Context, orderID uuid.UUID) (*models.Vehicle, error) {
	var vehicle models.Vehicle
	err := r.db.WithContext(ctx).
		Where("order_id = ?", orderID).
		First(&vehicle).Error
	if err != nil {
		return nil, err
	}
	return &vehicle, nil
}

func (r *repositoryImpl) Save(ctx context.Context, vehicle *models.Vehicle) error {
	return r.db.WithContext(ctx).Save(vehicle).Error
}
