package orders

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/harborlane/importdesk-backend/pkg/db/models"
	"github.com/harborlane/importdesk-backend/pkg/enums"
)

func setupOrdersTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	db, err := gorm.Open(sqlite.Open("file::memory:?cache=shared"), &gorm.Config{})
	require.NoError(t, err)

	orders := `
CREATE TABLE IF NOT EXISTS orders (
  id TEXT PRIMARY KEY,
  order_number TEXT NOT NULL UNIQUE,
  customer_id TEXT NOT NULL,
  status TEXT NOT NULL DEFAULT 'pending',
  currency TEXT NOT NULL,
  car_cost NUMERIC NOT NULL DEFAULT 0,
  transportation_cost NUMERIC NOT NULL DEFAULT 0,
  duty_cost NUMERIC NOT NULL DEFAULT 0,
  clearing_cost NUMERIC NOT NULL DEFAULT 0,
  fixing_cost NUMERIC NOT NULL DEFAULT 0,
  subtotal NUMERIC NOT NULL DEFAULT 0,
  discount_type TEXT NOT NULL DEFAULT 'none',
  discount_value NUMERIC NOT NULL DEFAULT 0,
  total_cost NUMERIC NOT NULL DEFAULT 0,
  deposit_amount NUMERIC NOT NULL DEFAULT 0,
  total_deposits NUMERIC NOT NULL DEFAULT 0,
  balance_due NUMERIC NOT NULL DEFAULT 0,
  notes TEXT,
  created_by TEXT NOT NULL,
  created_at DATETIME,
  updated_at DATETIME
);`
	vehicles := `
CREATE TABLE IF NOT EXISTS vehicles (
  id TEXT PRIMARY KEY,
  order_id TEXT NOT NULL UNIQUE,
  auction_source TEXT,
  lot_number TEXT,
  vin TEXT,
  make TEXT NOT NULL,
  model TEXT NOT NULL,
  year INTEGER NOT NULL,
  trim TEXT,
  purchase_price NUMERIC,
  condition TEXT,
  notes TEXT,
  created_at DATETIME,
  updated_at DATETIME
);`
	deposits := `
CREATE TABLE IF NOT EXISTS deposits (
  id TEXT PRIMARY KEY,
  order_id TEXT NOT NULL,
  customer_id TEXT NOT NULL,
  amount NUMERIC NOT NULL,
  currency TEXT NOT NULL,
  payment_method TEXT NOT NULL DEFAULT 'bank_transfer',
  bank_name TEXT,
  bank_reference TEXT,
  transaction_date DATETIME NOT NULL,
  transaction_time TEXT NOT NULL,
  status TEXT NOT NULL DEFAULT 'pending',
  notes TEXT,
  reviewed_by TEXT,
  reviewed_at DATETIME,
  created_at DATETIME,
  updated_at DATETIME
);`
	require.NoError(t, db.Exec(orders).Error)
	require.NoError(t, db.Exec(vehicles).Error)
	require.NoError(t, db.Exec(deposits).Error)
	return db
}

func createRepoOrder(t *testing.T, db *gorm.DB, customerID uuid.UUID, number string, created time.Time) *models.Order {
	t.Helper()

	order := &models.Order{
		ID:          uuid.New(),
		OrderNumber: number,
		CustomerID:  customerID,
		Status:      "pending",
		Currency:    "USD",
		CarCost:     decimal.NewFromInt(12000),
		Subtotal:    decimal.NewFromInt(12000),
		TotalCost:   decimal.NewFromInt(12000),
		BalanceDue:  decimal.NewFromInt(12000),
		CreatedBy:   uuid.New(),
		CreatedAt:   created,
		UpdatedAt:   created,
	}
	require.NoError(t, db.Create(order).Error)
	return order
}

func createRepoDeposit(t *testing.T, db *gorm.DB, order *models.Order, amount int64, txDate time.Time, txTime string) {
	t.Helper()

	dep := &models.Deposit{
		ID:              uuid.New(),
		OrderID:         order.ID,
		CustomerID:      order.CustomerID,
		Amount:          decimal.NewFromInt(amount),
		Currency:        "USD",
		PaymentMethod:   enums.PaymentMethodBankTransfer,
		TransactionDate: txDate,
		TransactionTime: txTime,
		Status:          enums.DepositStatusPending,
	}
	require.NoError(t, db.Create(dep).Error)
}

func TestRepositoryList_pagination(t *testing.T) {
	db := setupOrdersTestDB(t)
	repo := NewRepository(db)

	customer := uuid.New()
	now := time.Now().UTC()
	createRepoOrder(t, db, customer, "ORD-2026-0001", now.Add(-2*time.Hour))
	createRepoOrder(t, db, customer, "ORD-2026-0002", now.Add(-time.Hour))
	createRepoOrder(t, db, customer, "ORD-2026-0003", now)

	rows, cursor, err := repo.List(context.Background(), ListFilter{CustomerID: &customer, Limit: 2})
	require.NoError(t, err)
	require.Len(t, rows, 2)
	require.NotNil(t, cursor)
	assert.Equal(t, "ORD-2026-0003", rows[0].OrderNumber)
	assert.Equal(t, "ORD-2026-0002", rows[1].OrderNumber)

	second, next, err := repo.List(context.Background(), ListFilter{CustomerID: &customer, Limit: 2, Cursor: cursor})
	require.NoError(t, err)
	require.Len(t, second, 1)
	assert.Equal(t, "ORD-2026-0001", second[0].OrderNumber)
	assert.Nil(t, next)
}

func TestRepositoryList_filtersCustomerAndStatus(t *testing.T) {
	db := setupOrdersTestDB(t)
	repo := NewRepository(db)

	mine := uuid.New()
	theirs := uuid.New()
	now := time.Now().UTC()
	createRepoOrder(t, db, mine, "ORD-2026-0010", now.Add(-time.Minute))
	other := createRepoOrder(t, db, theirs, "ORD-2026-0011", now)
	require.NoError(t, db.Model(other).Update("status", "shipping").Error)

	rows, _, err := repo.List(context.Background(), ListFilter{CustomerID: &mine})
	require.NoError(t, err)
	require.Len(t, rows, 1)
	assert.Equal(t, "ORD-2026-0010", rows[0].OrderNumber)

	shipped, _, err := repo.List(context.Background(), ListFilter{Status: "shipping"})
	require.NoError(t, err)
	require.Len(t, shipped, 1)
	assert.Equal(t, "ORD-2026-0011", shipped[0].OrderNumber)
}

func TestRepositoryFindByID_preloadsVehicleAndDeposits(t *testing.T) {
	db := setupOrdersTestDB(t)
	repo := NewRepository(db)

	order := createRepoOrder(t, db, uuid.New(), "ORD-2026-0020", time.Now().UTC())
	vehicle := &models.Vehicle{
		ID:      uuid.New(),
		OrderID: order.ID,
		Make:    "Toyota",
		Model:   "Land Cruiser",
		Year:    2021,
	}
	require.NoError(t, db.Create(vehicle).Error)

	day := time.Date(2026, 3, 10, 0, 0, 0, 0, time.UTC)
	createRepoDeposit(t, db, order, 1000, day, "09:00")
	createRepoDeposit(t, db, order, 2500, day.AddDate(0, 0, 2), "14:30")

	found, err := repo.FindByID(context.Background(), order.ID)
	require.NoError(t, err)
	require.NotNil(t, found.Vehicle)
	assert.Equal(t, "Land Cruiser", found.Vehicle.Model)
	require.Len(t, found.Deposits, 2)
	assert.True(t, found.Deposits[0].Amount.Equal(decimal.NewFromInt(2500)))
	assert.True(t, found.Deposits[1].Amount.Equal(decimal.NewFromInt(1000)))
}

func TestRepositoryUpdateDepositTotals(t *testing.T) {
	db := setupOrdersTestDB(t)
	repo := NewRepository(db)

	order := createRepoOrder(t, db, uuid.New(), "ORD-2026-0030", time.Now().UTC())

	err := repo.UpdateDepositTotals(context.Background(), nil, order.ID,
		decimal.NewFromInt(3500), decimal.NewFromInt(8500))
	require.NoError(t, err)

	found, err := repo.FindByID(context.Background(), order.ID)
	require.NoError(t, err)
	assert.True(t, found.TotalDeposits.Equal(decimal.NewFromInt(3500)))
	assert.True(t, found.BalanceDue.Equal(decimal.NewFromInt(8500)))
}
