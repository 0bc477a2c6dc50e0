package quotes

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/harborlane/importdesk-backend/internal/notifications"
	"github.com/harborlane/importdesk-backend/internal/orders"
	"github.com/harborlane/importdesk-backend/pkg/db/models"
	"github.com/harborlane/importdesk-backend/pkg/enums"
	pkgerrors "github.com/harborlane/importdesk-backend/pkg/errors"
	"github.com/harborlane/importdesk-backend/pkg/pagination"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

type stubQuoteRepo struct {
	quotes map[uuid.UUID]*models.QuoteRequest

	// convertRaceLoser simulates a concurrent conversion landing between
	// the initial read and the conditional update.
	convertRaceLoser bool
}

func newStubQuoteRepo() *stubQuoteRepo {
	return &stubQuoteRepo{quotes: map[uuid.UUID]*models.QuoteRequest{}}
}

func (s *stubQuoteRepo) WithTx(tx *gorm.DB) Repository { return s }

func (s *stubQuoteRepo) Create(ctx context.Context, quote *models.QuoteRequest) error {
	if quote.ID == uuid.Nil {
		quote.ID = uuid.New()
	}
	quote.CreatedAt = time.Now()
	s.quotes[quote.ID] = quote
	return nil
}

func (s *stubQuoteRepo) FindByID(ctx context.Context, id uuid.UUID) (*models.QuoteRequest, error) {
	quote, ok := s.quotes[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	copied := *quote
	return &copied, nil
}

func (s *stubQuoteRepo) List(ctx context.Context, params ListFilter) ([]models.QuoteRequest, *pagination.Cursor, error) {
	var rows []models.QuoteRequest
	for _, quote := range s.quotes {
		if params.CustomerID != nil && quote.CustomerID != *params.CustomerID {
			continue
		}
		if params.Status != "" && quote.Status != params.Status {
			continue
		}
		rows = append(rows, *quote)
	}
	return rows, nil, nil
}

func (s *stubQuoteRepo) Save(ctx context.Context, quote *models.QuoteRequest) error {
	copied := *quote
	s.quotes[quote.ID] = &copied
	return nil
}

func (s *stubQuoteRepo) MarkConverted(ctx context.Context, quoteID, orderID uuid.UUID, now time.Time) (int64, error) {
	if s.convertRaceLoser {
		return 0, nil
	}
	quote, ok := s.quotes[quoteID]
	if !ok || quote.OrderID != nil {
		return 0, nil
	}
	if quote.Status != enums.QuoteStatusQuoted && quote.Status != enums.QuoteStatusApproved {
		return 0, nil
	}
	quote.Status = enums.QuoteStatusConverted
	quote.OrderID = &orderID
	quote.ConvertedAt = &now
	return 1, nil
}

type stubOrderCreator struct {
	created []orders.CreateInput
	fail    error
}

func (s *stubOrderCreator) CreateInTx(ctx context.Context, tx *gorm.DB, input orders.CreateInput) (*models.Order, error) {
	if s.fail != nil {
		return nil, s.fail
	}
	s.created = append(s.created, input)
	return &models.Order{
		ID:          uuid.New(),
		OrderNumber: orders.FormatOrderNumber(time.Now().UTC().Year(), int64(len(s.created))),
		CustomerID:  input.CustomerID,
	}, nil
}

type stubRequestNumbers struct {
	next int64
}

func (s *stubRequestNumbers) NextRequestNumber(ctx context.Context, tx *gorm.DB, now time.Time) (string, error) {
	s.next++
	return orders.FormatRequestNumber(now.UTC().Year(), s.next), nil
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
	svc        Service
	repo       *stubQuoteRepo
	creator    *stubOrderCreator
	notifier   *recordingNotifier
	staffInbox uuid.UUID
}

func newFixture(t *testing.T) *fixture {
	t.Helper()

	repo := newStubQuoteRepo()
	creator := &stubOrderCreator{}
	notifier := &recordingNotifier{}
	staffInbox := uuid.New()

	svc, err := NewService(repo, creator, &stubRequestNumbers{}, stubTxRunner{}, notifier, staffInbox)
	if err != nil {
		t.Fatalf("NewService error: %v", err)
	}
	return &fixture{svc: svc, repo: repo, creator: creator, notifier: notifier, staffInbox: staffInbox}
}

func money(value string) *decimal.Decimal {
	d := decimal.RequireFromString(value)
	return &d
}

func (f *fixture) seedQuote(status enums.QuoteStatus, priced bool) *models.QuoteRequest {
	quote := &models.QuoteRequest{
		ID:            uuid.New(),
		RequestNumber: "QR-2026-0099",
		CustomerID:    uuid.New(),
		Make:          "Nissan",
		Model:         "Patrol",
		Year:          2022,
		Status:        status,
	}
	if priced {
		quote.QuotedPrice = money("15000.00")
		quote.ShippingCost = money("2500.00")
		quote.DutyEstimate = money("1800.00")
	}
	f.repo.quotes[quote.ID] = quote
	return quote
}

func TestSubmit(t *testing.T) {
	f := newFixture(t)

	quote, err := f.svc.Submit(context.Background(), SubmitInput{
		CustomerID: uuid.New(),
		Make:       "Toyota",
		Model:      "Prado",
		Year:       2021,
		BudgetMin:  money("10000.00"),
		BudgetMax:  money("18000.00"),
	})
	if err != nil {
		t.Fatalf("Submit error: %v", err)
	}
	if quote.Status != enums.QuoteStatusPending {
		t.Fatalf("status = %s, want pending", quote.Status)
	}
	wantNumber := orders.FormatRequestNumber(time.Now().UTC().Year(), 1)
	if quote.RequestNumber != wantNumber {
		t.Fatalf("request number = %s, want %s", quote.RequestNumber, wantNumber)
	}
	if len(f.notifier.sent) != 2 {
		t.Fatalf("notifications sent = %d, want staff alert plus customer receipt", len(f.notifier.sent))
	}
	if f.notifier.sent[0].UserID != f.staffInbox || f.notifier.sent[0].Type != enums.NotificationTypeQuoteSubmitted {
		t.Fatalf("first notification should alert the staff inbox, got %+v", f.notifier.sent[0])
	}
	if f.notifier.sent[1].UserID != quote.CustomerID {
		t.Fatalf("second notification should go to the customer, got %+v", f.notifier.sent[1])
	}
}

func TestSubmitWithoutStaffInbox(t *testing.T) {
	notifier := &recordingNotifier{}
	svc, err := NewService(newStubQuoteRepo(), &stubOrderCreator{}, &stubRequestNumbers{}, stubTxRunner{}, notifier, uuid.Nil)
	if err != nil {
		t.Fatalf("NewService error: %v", err)
	}

	quote, err := svc.Submit(context.Background(), SubmitInput{
		CustomerID: uuid.New(),
		Make:       "Toyota",
		Model:      "Prado",
		Year:       2021,
	})
	if err != nil {
		t.Fatalf("Submit error: %v", err)
	}
	if len(notifier.sent) != 1 || notifier.sent[0].UserID != quote.CustomerID {
		t.Fatalf("expected only the customer receipt, got %+v", notifier.sent)
	}
}

func TestSubmitValidation(t *testing.T) {
	f := newFixture(t)

	cases := []struct {
		name   string
		mutate func(*SubmitInput)
	}{
		{"missing make", func(in *SubmitInput) { in.Make = "" }},
		{"missing model", func(in *SubmitInput) { in.Model = " " }},
		{"year out of range", func(in *SubmitInput) { in.Year = 1900 }},
		{"inverted budget", func(in *SubmitInput) {
			in.BudgetMin = money("20000.00")
			in.BudgetMax = money("10000.00")
		}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			input := SubmitInput{
				CustomerID: uuid.New(),
				Make:       "Toyota",
				Model:      "Prado",
				Year:       2021,
			}
			tc.mutate(&input)
			_, err := f.svc.Submit(context.Background(), input)
			if !pkgerrors.HasCode(err, pkgerrors.CodeValidation) {
				t.Fatalf("got %v, want validation error", err)
			}
		})
	}
}

func TestReviewSetsPricingAndStatus(t *testing.T) {
	f := newFixture(t)
	quote := f.seedQuote(enums.QuoteStatusPending, false)

	status := enums.QuoteStatusQuoted
	reviewed, err := f.svc.Review(context.Background(), ReviewInput{
		QuoteID:      quote.ID,
		Status:       &status,
		QuotedPrice:  money("15000.00"),
		ShippingCost: money("2500.00"),
		DutyEstimate: money("1800.00"),
		ActorUserID:  uuid.New(),
		ActorRole:    enums.UserRoleStaff,
	})
	if err != nil {
		t.Fatalf("Review error: %v", err)
	}
	if reviewed.Status != enums.QuoteStatusQuoted {
		t.Fatalf("status = %s, want quoted", reviewed.Status)
	}
	estimate := reviewed.TotalEstimate()
	if estimate == nil {
		t.Fatal("total estimate missing after full pricing")
	}
	if got, want := estimate.String(), "19300"; got != want {
		t.Fatalf("total estimate = %s, want %s", got, want)
	}
	if len(f.notifier.sent) != 1 || f.notifier.sent[0].Type != enums.NotificationTypeQuoteUpdated {
		t.Fatalf("expected one quote_updated notification, got %+v", f.notifier.sent)
	}
}

func TestReviewTerminalQuoteRejected(t *testing.T) {
	f := newFixture(t)

	for _, status := range []enums.QuoteStatus{enums.QuoteStatusRejected, enums.QuoteStatusConverted} {
		quote := f.seedQuote(status, true)
		notes := "revisit"
		_, err := f.svc.Review(context.Background(), ReviewInput{
			QuoteID:     quote.ID,
			AdminNotes:  &notes,
			ActorUserID: uuid.New(),
			ActorRole:   enums.UserRoleStaff,
		})
		if !pkgerrors.HasCode(err, pkgerrors.CodeStateConflict) {
			t.Fatalf("status %s: got %v, want state conflict", status, err)
		}
	}
}

func TestReviewCannotSetConverted(t *testing.T) {
	f := newFixture(t)
	quote := f.seedQuote(enums.QuoteStatusQuoted, true)

	status := enums.QuoteStatusConverted
	_, err := f.svc.Review(context.Background(), ReviewInput{
		QuoteID:     quote.ID,
		Status:      &status,
		ActorUserID: uuid.New(),
		ActorRole:   enums.UserRoleStaff,
	})
	if !pkgerrors.HasCode(err, pkgerrors.CodeValidation) {
		t.Fatalf("got %v, want validation error", err)
	}
}

func TestConvertCreatesOrderAndLinksQuote(t *testing.T) {
	f := newFixture(t)
	quote := f.seedQuote(enums.QuoteStatusApproved, true)

	order, err := f.svc.Convert(context.Background(), ConvertInput{
		QuoteID:     quote.ID,
		ActorUserID: uuid.New(),
		ActorRole:   enums.UserRoleStaff,
	})
	if err != nil {
		t.Fatalf("Convert error: %v", err)
	}

	if len(f.creator.created) != 1 {
		t.Fatalf("orders created = %d, want 1", len(f.creator.created))
	}
	input := f.creator.created[0]
	if input.CustomerID != quote.CustomerID {
		t.Fatal("order customer differs from quote customer")
	}
	if input.Vehicle.PurchasePrice == nil || !input.Vehicle.PurchasePrice.Equal(*quote.QuotedPrice) {
		t.Fatalf("purchase price = %v, want quoted price", input.Vehicle.PurchasePrice)
	}
	if !input.TransportationCost.Equal(*quote.ShippingCost) {
		t.Fatalf("transportation cost = %s, want shipping estimate", input.TransportationCost)
	}
	if !input.DutyCost.Equal(*quote.DutyEstimate) {
		t.Fatalf("duty cost = %s, want duty estimate", input.DutyCost)
	}

	stored := f.repo.quotes[quote.ID]
	if stored.Status != enums.QuoteStatusConverted {
		t.Fatalf("quote status = %s, want converted", stored.Status)
	}
	if stored.OrderID == nil || *stored.OrderID != order.ID {
		t.Fatal("quote not linked to the created order")
	}
	if stored.ConvertedAt == nil {
		t.Fatal("converted_at not set")
	}

	if len(f.notifier.sent) != 1 || f.notifier.sent[0].Type != enums.NotificationTypeQuoteConverted {
		t.Fatalf("expected one quote_converted notification, got %+v", f.notifier.sent)
	}
}

func TestConvertIsOneShot(t *testing.T) {
	f := newFixture(t)
	quote := f.seedQuote(enums.QuoteStatusApproved, true)

	if _, err := f.svc.Convert(context.Background(), ConvertInput{
		QuoteID:     quote.ID,
		ActorUserID: uuid.New(),
		ActorRole:   enums.UserRoleStaff,
	}); err != nil {
		t.Fatalf("first Convert error: %v", err)
	}

	_, err := f.svc.Convert(context.Background(), ConvertInput{
		QuoteID:     quote.ID,
		ActorUserID: uuid.New(),
		ActorRole:   enums.UserRoleStaff,
	})
	if !pkgerrors.HasCode(err, pkgerrors.CodeConflict) {
		t.Fatalf("second convert: got %v, want conflict", err)
	}
	if len(f.creator.created) != 1 {
		t.Fatalf("orders created = %d, want 1", len(f.creator.created))
	}
}

func TestConvertLosesRaceAfterRead(t *testing.T) {
	f := newFixture(t)
	quote := f.seedQuote(enums.QuoteStatusApproved, true)
	f.repo.convertRaceLoser = true

	_, err := f.svc.Convert(context.Background(), ConvertInput{
		QuoteID:     quote.ID,
		ActorUserID: uuid.New(),
		ActorRole:   enums.UserRoleStaff,
	})
	if !pkgerrors.HasCode(err, pkgerrors.CodeConflict) {
		t.Fatalf("got %v, want conflict", err)
	}
	if len(f.notifier.sent) != 0 {
		t.Fatalf("losing conversion must not notify, got %d", len(f.notifier.sent))
	}
}

func TestConvertRequiresQuotedPrice(t *testing.T) {
	f := newFixture(t)
	quote := f.seedQuote(enums.QuoteStatusApproved, false)

	_, err := f.svc.Convert(context.Background(), ConvertInput{
		QuoteID:     quote.ID,
		ActorUserID: uuid.New(),
		ActorRole:   enums.UserRoleStaff,
	})
	if !pkgerrors.HasCode(err, pkgerrors.CodeStateConflict) {
		t.Fatalf("got %v, want state conflict", err)
	}
}

func TestConvertRequiresQuotedOrApproved(t *testing.T) {
	f := newFixture(t)

	for _, status := range []enums.QuoteStatus{enums.QuoteStatusPending, enums.QuoteStatusReviewing} {
		quote := f.seedQuote(status, true)

		_, err := f.svc.Convert(context.Background(), ConvertInput{
			QuoteID:     quote.ID,
			ActorUserID: uuid.New(),
			ActorRole:   enums.UserRoleStaff,
		})
		if !pkgerrors.HasCode(err, pkgerrors.CodeStateConflict) {
			t.Fatalf("status %s: got %v, want state conflict", status, err)
		}
	}
	if len(f.creator.created) != 0 {
		t.Fatalf("orders created = %d, want 0", len(f.creator.created))
	}
}

func TestReviewIllegalTransitions(t *testing.T) {
	f := newFixture(t)

	cases := []struct {
		from enums.QuoteStatus
		to   enums.QuoteStatus
	}{
		{enums.QuoteStatusPending, enums.QuoteStatusApproved},
		{enums.QuoteStatusPending, enums.QuoteStatusRejected},
		{enums.QuoteStatusReviewing, enums.QuoteStatusApproved},
		{enums.QuoteStatusQuoted, enums.QuoteStatusPending},
		{enums.QuoteStatusApproved, enums.QuoteStatusQuoted},
	}
	for _, tc := range cases {
		quote := f.seedQuote(tc.from, true)
		status := tc.to
		_, err := f.svc.Review(context.Background(), ReviewInput{
			QuoteID:     quote.ID,
			Status:      &status,
			ActorUserID: uuid.New(),
			ActorRole:   enums.UserRoleStaff,
		})
		if !pkgerrors.HasCode(err, pkgerrors.CodeStateConflict) {
			t.Fatalf("%s -> %s: got %v, want state conflict", tc.from, tc.to, err)
		}
	}
}

func TestReviewQuotedNeedsPrice(t *testing.T) {
	f := newFixture(t)
	quote := f.seedQuote(enums.QuoteStatusReviewing, false)

	status := enums.QuoteStatusQuoted
	_, err := f.svc.Review(context.Background(), ReviewInput{
		QuoteID:     quote.ID,
		Status:      &status,
		ActorUserID: uuid.New(),
		ActorRole:   enums.UserRoleStaff,
	})
	if !pkgerrors.HasCode(err, pkgerrors.CodeValidation) {
		t.Fatalf("got %v, want validation error", err)
	}
}

func TestConvertRejectedQuote(t *testing.T) {
	f := newFixture(t)
	quote := f.seedQuote(enums.QuoteStatusRejected, true)

	_, err := f.svc.Convert(context.Background(), ConvertInput{
		QuoteID:     quote.ID,
		ActorUserID: uuid.New(),
		ActorRole:   enums.UserRoleStaff,
	})
	if !pkgerrors.HasCode(err, pkgerrors.CodeStateConflict) {
		t.Fatalf("got %v, want state conflict", err)
	}
}

func TestGetScopesCustomers(t *testing.T) {
	f := newFixture(t)
	quote := f.seedQuote(enums.QuoteStatusPending, false)

	if _, err := f.svc.Get(context.Background(), GetInput{
		QuoteID:     quote.ID,
		ActorUserID: quote.CustomerID,
		ActorRole:   enums.UserRoleCustomer,
	}); err != nil {
		t.Fatalf("owner Get error: %v", err)
	}

	_, err := f.svc.Get(context.Background(), GetInput{
		QuoteID:     quote.ID,
		ActorUserID: uuid.New(),
		ActorRole:   enums.UserRoleCustomer,
	})
	if !pkgerrors.HasCode(err, pkgerrors.CodeNotFound) {
		t.Fatalf("got %v, want not found for foreign customer", err)
	}
}
