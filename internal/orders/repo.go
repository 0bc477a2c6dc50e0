package orders

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/harborlane/importdesk-backend/pkg/db/models"
	"github.com/harborlane/importdesk-backend/pkg/pagination"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// Repository defines persistence operations for orders.
type Repository interface {
	WithTx(tx *gorm.DB) Repository
	Create(ctx context.Context, order *models.Order) error
	FindByID(ctx context.Context, id uuid.UUID) (*models.Order, error)
	FindByOrderNumber(ctx context.Context, orderNumber string) (*models.Order, error)
	FindForUpdate(ctx context.Context, id uuid.UUID) (*models.Order, error)
	List(ctx context.Context, params ListFilter) ([]models.Order, *pagination.Cursor, error)
	Save(ctx context.Context, order *models.Order) error

	// FindOrder, FindOrderForUpdate and UpdateDepositTotals take an
	// explicit transaction so the deposit ledger can refresh an order's
	// aggregates inside its own transaction without a second repository
	// binding. The ForUpdate variant locks the row; aggregate writers
	// must use it so total_cost cannot change between read and write.
	FindOrder(ctx context.Context, tx *gorm.DB, orderID uuid.UUID) (*models.Order, error)
	FindOrderForUpdate(ctx context.Context, tx *gorm.DB, orderID uuid.UUID) (*models.Order, error)
	UpdateDepositTotals(ctx context.Context, tx *gorm.DB, orderID uuid.UUID, totalDeposits, balanceDue decimal.Decimal) error
}

// ListFilter narrows and paginates order listings.
type ListFilter struct {
	CustomerID *uuid.UUID
	Status     string
	Limit      int
	Cursor     *pagination.Cursor
}

type repositoryImpl struct {
	db *gorm.DB
}

// NewRepository builds an orders repository bound to the provided DB.
func NewRepository(db *gorm.DB) Repository {
	return &repositoryImpl{db: db}
}

func (r *repositoryImpl) WithTx(tx *gorm.DB) Repository {
	if tx == nil {
		return r
	}
	return &repositoryImpl{db: tx}
}

func (r *repositoryImpl) Create(ctx context.Context, order *models.Order) error {
	return r.db.WithContext(ctx).Create(order).Error
}

func (r *repositoryImpl) FindByID(ctx context.Context, id uuid.UUID) (*models.Order, error) {
	var order models.Order
	err := r.db.WithContext(ctx).
		Preload("Vehicle").
		Preload("Deposits", func(db *gorm.DB) *gorm.DB {
			return db.Order("transaction_date DESC, transaction_time DESC")
		}).
		Where("id = ?", id).
		First(&order).Error
	if err != nil {
		return nil, err
	}
	return &order, nil
}

func (r *repositoryImpl) FindByOrderNumber(ctx context.Context, orderNumber string) (*models.Order, error) {
	var order models.Order
	err := r.db.WithContext(ctx).
		Preload("Vehicle").
		Where("order_number = ?", orderNumber).
		First(&order).Error
	if err != nil {
		return nil, err
	}
	return &order, nil
}

// FindForUpdate locks the order row for the duration of the transaction.
// The vehicle is loaded separately because FOR UPDATE cannot span the
// preload join.
func (r *repositoryImpl) FindForUpdate(ctx context.Context, id uuid.UUID) (*models.Order, error) {
	var order models.Order
	err := r.db.WithContext(ctx).
		Clauses(clause.Locking{Strength: "UPDATE"}).
		Where("id = ?", id).
		First(&order).Error
	if err != nil {
		return nil, err
	}

	var vehicle models.Vehicle
	err = r.db.WithContext(ctx).
		Where("order_id = ?", id).
		First(&vehicle).Error
	switch {
	case err == nil:
		order.Vehicle = &vehicle
	case errors.Is(err, gorm.ErrRecordNotFound):
		// Order without a vehicle row; subtotal treats the price as zero.
	default:
		return nil, err
	}
	return &order, nil
}

func (r *repositoryImpl) List(ctx context.Context, params ListFilter) ([]models.Order, *pagination.Cursor, error) {
	limit := pagination.NormalizeLimit(params.Limit)

	query := r.db.WithContext(ctx).
		Model(&models.Order{}).
		Preload("Vehicle").
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

	var rows []models.Order
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

func (r *repositoryImpl) Save(ctx context.Context, order *models.Order) error {
	return r.db.WithContext(ctx).
		Session(&gorm.Session{FullSaveAssociations: false}).
		Omit("Vehicle", "Deposits").
		Save(order).Error
}

func (r *repositoryImpl) FindOrder(ctx context.Context, tx *gorm.DB, orderID uuid.UUID) (*models.Order, error) {
	conn := r.db
	if tx != nil {
		conn = tx
	}
	var order models.Order
	err := conn.WithContext(ctx).
		Where("id = ?", orderID).
		First(&order).Error
	if err != nil {
		return nil, err
	}
	return &order, nil
}

func (r *repositoryImpl) FindOrderForUpdate(ctx context.Context, tx *gorm.DB, orderID uuid.UUID) (*models.Order, error) {
	conn := r.db
	if tx != nil {
		conn = tx
	}
	var order models.Order
	err := conn.WithContext(ctx).
		Clauses(clause.Locking{Strength: "UPDATE"}).
		Where("id = ?", orderID).
		First(&order).Error
	if err != nil {
		return nil, err
	}
	return &order, nil
}

func (r *repositoryImpl) UpdateDepositTotals(ctx context.Context, tx *gorm.DB, orderID uuid.UUID, totalDeposits, balanceDue decimal.Decimal) error {
	conn := r.db
	if tx != nil {
		conn = tx
	}
	return conn.WithContext(ctx).
		Model(&models.Order{}).
		Where("id = ?", orderID).
		Updates(map[string]any{
			"total_deposits": totalDeposits,
			"balance_due":    balanceDue,
		}).Error
}
