package deposits

import (
	"context"
	"io"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/harborlane/importdesk-backend/internal/notifications"
	"github.com/harborlane/importdesk-backend/pkg/db/models"
	"github.com/harborlane/importdesk-backend/pkg/enums"
	pkgerrors "github.com/harborlane/importdesk-backend/pkg/errors"
	"github.com/harborlane/importdesk-backend/pkg/logger"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

type stubDepositRepo struct {
	deposits map[uuid.UUID]*models.Deposit

	createErr error
}

func newStubDepositRepo() *stubDepositRepo {
	return &stubDepositRepo{deposits: map[uuid.UUID]*models.Deposit{}}
}

func (s *stubDepositRepo) WithTx(tx *gorm.DB) Repository { return s }

func (s *stubDepositRepo) Create(ctx context.Context, deposit *models.Deposit) error {
	if s.createErr != nil {
		return s.createErr
	}
	if deposit.ID == uuid.Nil {
		deposit.ID = uuid.New()
	}
	s.deposits[deposit.ID] = deposit
	return nil
}

func (s *stubDepositRepo) FindByID(ctx context.Context, id uuid.UUID) (*models.Deposit, error) {
	deposit, ok := s.deposits[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	copied := *deposit
	return &copied, nil
}

func (s *stubDepositRepo) ListByOrder(ctx context.Context, orderID uuid.UUID) ([]models.Deposit, error) {
	var out []models.Deposit
	for _, deposit := range s.deposits {
		if deposit.OrderID == orderID {
			out = append(out, *deposit)
		}
	}
	return out, nil
}

func (s *stubDepositRepo) UpdateStatusFromPending(ctx context.Context, id uuid.UUID, status enums.DepositStatus, reviewedBy uuid.UUID, now time.Time) (int64, error) {
	deposit, ok := s.deposits[id]
	if !ok || deposit.Status != enums.DepositStatusPending {
		return 0, nil
	}
	deposit.Status = status
	deposit.ReviewedBy = &reviewedBy
	deposit.ReviewedAt = &now
	return 1, nil
}

func (s *stubDepositRepo) Delete(ctx context.Context, id uuid.UUID) error {
	delete(s.deposits, id)
	return nil
}

func (s *stubDepositRepo) TotalVerified(ctx context.Context, tx *gorm.DB, orderID uuid.UUID) (decimal.Decimal, error) {
	total := decimal.Zero
	for _, deposit := range s.deposits {
		if deposit.OrderID == orderID && deposit.Status == enums.DepositStatusVerified {
			total = total.Add(deposit.Amount)
		}
	}
	return total, nil
}

type stubOrderLedger struct {
	orders map[uuid.UUID]*models.Order

	lastTotal   decimal.Decimal
	lastBalance decimal.Decimal
	updates     int
	lockedReads int
}

func (s *stubOrderLedger) FindOrder(ctx context.Context, tx *gorm.DB, orderID uuid.UUID) (*models.Order, error) {
	order, ok := s.orders[orderID]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	copied := *order
	return &copied, nil
}

func (s *stubOrderLedger) FindOrderForUpdate(ctx context.Context, tx *gorm.DB, orderID uuid.UUID) (*models.Order, error) {
	s.lockedReads++
	return s.FindOrder(ctx, tx, orderID)
}

func (s *stubOrderLedger) UpdateDepositTotals(ctx context.Context, tx *gorm.DB, orderID uuid.UUID, totalDeposits, balanceDue decimal.Decimal) error {
	s.lastTotal = totalDeposits
	s.lastBalance = balanceDue
	s.updates++
	return nil
}

type stubTxRunner struct{}

func (stubTxRunner) WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error {
	return fn(nil)
}

type recordingNotifier struct {
	sent []notifications.NotifyInput
}

func (r *recordingNotifier) Notify(ctx context.Context, input notifications.NotifyInput) {
	r.sent = append(r.sent, input)
}

type fixture struct {
	svc      Service
	repo     *stubDepositRepo
	ledger   *stubOrderLedger
	notifier *recordingNotifier
}

func newFixture(t *testing.T) *fixture {
	t.Helper()

	repo := newStubDepositRepo()
	ledger := &stubOrderLedger{orders: map[uuid.UUID]*models.Order{}}
	notifier := &recordingNotifier{}
	logg := logger.New(logger.Options{ServiceName: "deposits-test", Output: io.Discard})

	svc, err := NewService(repo, ledger, stubTxRunner{}, notifier, logg)
	if err != nil {
		t.Fatalf("NewService error: %v", err)
	}
	return &fixture{svc: svc, repo: repo, ledger: ledger, notifier: notifier}
}

func (f *fixture) seedOrder(totalCost string) *models.Order {
	order := &models.Order{
		ID:         uuid.New(),
		CustomerID: uuid.New(),
		Currency:   "USD",
		TotalCost:  decimal.RequireFromString(totalCost),
	}
	f.ledger.orders[order.ID] = order
	return order
}

func (f *fixture) seedDeposit(order *models.Order, amount string, status enums.DepositStatus) *models.Deposit {
	deposit := &models.Deposit{
		ID:              uuid.New(),
		OrderID:         order.ID,
		CustomerID:      order.CustomerID,
		Amount:          decimal.RequireFromString(amount),
		Currency:        order.Currency,
		PaymentMethod:   enums.PaymentMethodBankTransfer,
		TransactionDate: time.Now(),
		Status:          status,
	}
	f.repo.deposits[deposit.ID] = deposit
	return deposit
}

func TestAddDeposit(t *testing.T) {
	f := newFixture(t)
	order := f.seedOrder("5000.00")

	deposit, err := f.svc.Add(context.Background(), AddInput{
		OrderID:         order.ID,
		CustomerID:      order.CustomerID,
		Amount:          decimal.RequireFromString("1500.00"),
		PaymentMethod:   enums.PaymentMethodBankTransfer,
		TransactionDate: time.Now(),
		ActorUserID:     uuid.New(),
		ActorRole:       enums.UserRoleStaff,
	})
	if err != nil {
		t.Fatalf("Add error: %v", err)
	}
	if deposit.Status != enums.DepositStatusPending {
		t.Fatalf("new deposit status = %s, want pending", deposit.Status)
	}
	if deposit.Currency != "USD" {
		t.Fatalf("deposit currency = %s, want order currency USD", deposit.Currency)
	}
	if f.ledger.updates != 0 {
		t.Fatalf("pending deposit must not touch order totals, got %d updates", f.ledger.updates)
	}
}

func TestAddDepositRejectsNonPositiveAmount(t *testing.T) {
	f := newFixture(t)
	order := f.seedOrder("5000.00")

	for _, amount := range []string{"0", "-25.00"} {
		_, err := f.svc.Add(context.Background(), AddInput{
			OrderID:         order.ID,
			CustomerID:      order.CustomerID,
			Amount:          decimal.RequireFromString(amount),
			PaymentMethod:   enums.PaymentMethodCashDeposit,
			TransactionDate: time.Now(),
			ActorUserID:     uuid.New(),
			ActorRole:       enums.UserRoleStaff,
		})
		if !pkgerrors.HasCode(err, pkgerrors.CodeValidation) {
			t.Fatalf("amount %s: got %v, want validation error", amount, err)
		}
	}
}

func TestAddDepositCustomerMismatch(t *testing.T) {
	f := newFixture(t)
	order := f.seedOrder("5000.00")

	_, err := f.svc.Add(context.Background(), AddInput{
		OrderID:         order.ID,
		CustomerID:      uuid.New(),
		Amount:          decimal.RequireFromString("100.00"),
		PaymentMethod:   enums.PaymentMethodWire,
		TransactionDate: time.Now(),
		ActorUserID:     uuid.New(),
		ActorRole:       enums.UserRoleStaff,
	})
	if !pkgerrors.HasCode(err, pkgerrors.CodeConsistency) {
		t.Fatalf("got %v, want consistency error", err)
	}
}

func TestAddDepositOrderNotFound(t *testing.T) {
	f := newFixture(t)

	_, err := f.svc.Add(context.Background(), AddInput{
		OrderID:         uuid.New(),
		CustomerID:      uuid.New(),
		Amount:          decimal.RequireFromString("100.00"),
		PaymentMethod:   enums.PaymentMethodWire,
		TransactionDate: time.Now(),
		ActorUserID:     uuid.New(),
		ActorRole:       enums.UserRoleStaff,
	})
	if !pkgerrors.HasCode(err, pkgerrors.CodeNotFound) {
		t.Fatalf("got %v, want not found error", err)
	}
}

func TestReviewVerifyUpdatesOrderTotals(t *testing.T) {
	f := newFixture(t)
	order := f.seedOrder("5000.00")
	f.seedDeposit(order, "1000.00", enums.DepositStatusVerified)
	deposit := f.seedDeposit(order, "1500.00", enums.DepositStatusPending)

	reviewed, err := f.svc.Review(context.Background(), ReviewInput{
		DepositID:   deposit.ID,
		Decision:    ReviewDecisionVerify,
		ActorUserID: uuid.New(),
		ActorRole:   enums.UserRoleStaff,
	})
	if err != nil {
		t.Fatalf("Review error: %v", err)
	}
	if reviewed.Status != enums.DepositStatusVerified {
		t.Fatalf("status = %s, want verified", reviewed.Status)
	}
	if reviewed.ReviewedBy == nil || reviewed.ReviewedAt == nil {
		t.Fatal("review audit fields not set")
	}

	if got, want := f.ledger.lastTotal.String(), "2500"; got != want {
		t.Fatalf("total deposits = %s, want %s", got, want)
	}
	if got, want := f.ledger.lastBalance.String(), "2500"; got != want {
		t.Fatalf("balance due = %s, want %s", got, want)
	}
	if f.ledger.lockedReads != 1 {
		t.Fatalf("recompute must read the order under lock, got %d locked reads", f.ledger.lockedReads)
	}

	if len(f.notifier.sent) != 1 {
		t.Fatalf("notifications sent = %d, want 1", len(f.notifier.sent))
	}
	if f.notifier.sent[0].Type != enums.NotificationTypeDepositVerified {
		t.Fatalf("notification type = %s", f.notifier.sent[0].Type)
	}
	if f.notifier.sent[0].UserID != order.CustomerID {
		t.Fatal("notification not addressed to the order customer")
	}
}

func TestReviewRejectExcludedFromTotals(t *testing.T) {
	f := newFixture(t)
	order := f.seedOrder("5000.00")
	deposit := f.seedDeposit(order, "1500.00", enums.DepositStatusPending)

	reviewed, err := f.svc.Review(context.Background(), ReviewInput{
		DepositID:   deposit.ID,
		Decision:    ReviewDecisionReject,
		ActorUserID: uuid.New(),
		ActorRole:   enums.UserRoleStaff,
	})
	if err != nil {
		t.Fatalf("Review error: %v", err)
	}
	if reviewed.Status != enums.DepositStatusRejected {
		t.Fatalf("status = %s, want rejected", reviewed.Status)
	}
	if !f.ledger.lastTotal.IsZero() {
		t.Fatalf("rejected deposit counted in totals: %s", f.ledger.lastTotal)
	}
	if len(f.notifier.sent) != 0 {
		t.Fatalf("rejection must not notify, sent %d", len(f.notifier.sent))
	}
}

func TestReviewIsFinal(t *testing.T) {
	f := newFixture(t)
	order := f.seedOrder("5000.00")
	deposit := f.seedDeposit(order, "1500.00", enums.DepositStatusVerified)

	_, err := f.svc.Review(context.Background(), ReviewInput{
		DepositID:   deposit.ID,
		Decision:    ReviewDecisionReject,
		ActorUserID: uuid.New(),
		ActorRole:   enums.UserRoleStaff,
	})
	if !pkgerrors.HasCode(err, pkgerrors.CodeStateConflict) {
		t.Fatalf("got %v, want state conflict", err)
	}
}

func TestReviewMissingDeposit(t *testing.T) {
	f := newFixture(t)

	_, err := f.svc.Review(context.Background(), ReviewInput{
		DepositID:   uuid.New(),
		Decision:    ReviewDecisionVerify,
		ActorUserID: uuid.New(),
		ActorRole:   enums.UserRoleStaff,
	})
	if !pkgerrors.HasCode(err, pkgerrors.CodeNotFound) {
		t.Fatalf("got %v, want not found", err)
	}
}

func TestReviewRequiresStaff(t *testing.T) {
	f := newFixture(t)
	order := f.seedOrder("5000.00")
	deposit := f.seedDeposit(order, "1500.00", enums.DepositStatusPending)

	_, err := f.svc.Review(context.Background(), ReviewInput{
		DepositID:   deposit.ID,
		Decision:    ReviewDecisionVerify,
		ActorUserID: order.CustomerID,
		ActorRole:   enums.UserRoleCustomer,
	})
	if !pkgerrors.HasCode(err, pkgerrors.CodeForbidden) {
		t.Fatalf("got %v, want forbidden", err)
	}
}

func TestDeleteVerifiedDepositRecomputesTotals(t *testing.T) {
	f := newFixture(t)
	order := f.seedOrder("5000.00")
	keep := f.seedDeposit(order, "1000.00", enums.DepositStatusVerified)
	remove := f.seedDeposit(order, "1500.00", enums.DepositStatusVerified)

	err := f.svc.Delete(context.Background(), DeleteInput{
		DepositID:   remove.ID,
		ActorUserID: uuid.New(),
		ActorRole:   enums.UserRoleAdmin,
	})
	if err != nil {
		t.Fatalf("Delete error: %v", err)
	}
	if _, ok := f.repo.deposits[remove.ID]; ok {
		t.Fatal("deposit still present after delete")
	}
	if _, ok := f.repo.deposits[keep.ID]; !ok {
		t.Fatal("unrelated deposit removed")
	}
	if got, want := f.ledger.lastTotal.String(), "1000"; got != want {
		t.Fatalf("total deposits = %s, want %s", got, want)
	}
	if got, want := f.ledger.lastBalance.String(), "4000"; got != want {
		t.Fatalf("balance due = %s, want %s", got, want)
	}
	if f.ledger.lockedReads != 1 {
		t.Fatalf("recompute must read the order under lock, got %d locked reads", f.ledger.lockedReads)
	}
}

func TestDeleteRequiresAdmin(t *testing.T) {
	f := newFixture(t)
	order := f.seedOrder("5000.00")
	deposit := f.seedDeposit(order, "1500.00", enums.DepositStatusPending)

	err := f.svc.Delete(context.Background(), DeleteInput{
		DepositID:   deposit.ID,
		ActorUserID: uuid.New(),
		ActorRole:   enums.UserRoleStaff,
	})
	if !pkgerrors.HasCode(err, pkgerrors.CodeForbidden) {
		t.Fatalf("got %v, want forbidden", err)
	}
	if _, ok := f.repo.deposits[deposit.ID]; !ok {
		t.Fatal("deposit removed by non-admin")
	}
}
