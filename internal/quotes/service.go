// Package quotes runs the quote request workflow: customers submit a
// request, staff review and price it, and an accepted quote converts into
// an order exactly once. The conversion link is guarded by a conditional
// update on the quote's order_id, so two concurrent conversions can never
// both succeed.
package quotes

import (
	"context"
	"errors"
	"fmt"
	"strings"
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

type txRunner interface {
	WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error
}

// RequestNumberSource claims quote request numbers. Satisfied by the
// orders Sequencer.
type RequestNumberSource interface {
	NextRequestNumber(ctx context.Context, tx *gorm.DB, now time.Time) (string, error)
}

// OrderCreator opens an order inside an existing transaction. Satisfied
// by the orders service.
type OrderCreator interface {
	CreateInTx(ctx context.Context, tx *gorm.DB, input orders.CreateInput) (*models.Order, error)
}

// Service defines quote request operations.
type Service interface {
	Submit(ctx context.Context, input SubmitInput) (*models.QuoteRequest, error)
	Review(ctx context.Context, input ReviewInput) (*models.QuoteRequest, error)
	Convert(ctx context.Context, input ConvertInput) (*models.Order, error)
	Get(ctx context.Context, input GetInput) (*models.QuoteRequest, error)
	List(ctx context.Context, input ListInput) ([]models.QuoteRequest, string, error)
}

type service struct {
	repo       Repository
	orders     OrderCreator
	sequencer  RequestNumberSource
	tx         txRunner
	notifier   notifications.Notifier
	staffInbox uuid.UUID
}

// NewService builds the quotes service. staffInbox is the user that
// receives new-request notifications; uuid.Nil disables them.
func NewService(repo Repository, orderCreator OrderCreator, sequencer RequestNumberSource, tx txRunner, notifier notifications.Notifier, staffInbox uuid.UUID) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("quotes repository required")
	}
	if orderCreator == nil {
		return nil, fmt.Errorf("order creator required")
	}
	if sequencer == nil {
		return nil, fmt.Errorf("sequencer required")
	}
	if tx == nil {
		return nil, fmt.Errorf("transaction runner required")
	}
	if notifier == nil {
		return nil, fmt.Errorf("notifier required")
	}
	return &service{
		repo:       repo,
		orders:     orderCreator,
		sequencer:  sequencer,
		tx:         tx,
		notifier:   notifier,
		staffInbox: staffInbox,
	}, nil
}

func (s *service) Submit(ctx context.Context, input SubmitInput) (*models.QuoteRequest, error) {
	if input.CustomerID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "customer id required")
	}
	if strings.TrimSpace(input.Make) == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "vehicle make required")
	}
	if strings.TrimSpace(input.Model) == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "vehicle model required")
	}
	if input.Year < 1950 || input.Year > time.Now().UTC().Year()+1 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "vehicle year out of range")
	}
	if input.BudgetMin != nil && input.BudgetMax != nil && input.BudgetMin.GreaterThan(*input.BudgetMax) {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "budget_min cannot exceed budget_max")
	}

	var created *models.QuoteRequest
	err := s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		now := time.Now().UTC()
		requestNumber, err := s.sequencer.NextRequestNumber(ctx, tx, now)
		if err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "claim request number")
		}

		quote := &models.QuoteRequest{
			RequestNumber: requestNumber,
			CustomerID:    input.CustomerID,
			VehicleType:   input.VehicleType,
			Make:          input.Make,
			Model:         input.Model,
			Year:          input.Year,
			Trim:          input.Trim,
			VIN:           input.VIN,
			LotNumber:     input.LotNumber,
			AuctionLink:   input.AuctionLink,
			BudgetMin:     input.BudgetMin,
			BudgetMax:     input.BudgetMax,
			Status:        enums.QuoteStatusPending,
		}
		if err := s.repo.WithTx(tx).Create(ctx, quote); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "create quote request")
		}
		created = quote
		return nil
	})
	if err != nil {
		return nil, err
	}

	if s.staffInbox != uuid.Nil {
		s.notifier.Notify(ctx, notifications.NotifyInput{
			UserID:  s.staffInbox,
			Channel: enums.NotificationChannelInApp,
			Type:    enums.NotificationTypeQuoteSubmitted,
			Subject: "New quote request",
			Body:    fmt.Sprintf("Quote request %s (%d %s %s) is awaiting review.", created.RequestNumber, created.Year, created.Make, created.Model),
		})
	}
	s.notifier.Notify(ctx, notifications.NotifyInput{
		UserID:  created.CustomerID,
		Channel: enums.NotificationChannelInApp,
		Type:    enums.NotificationTypeQuoteSubmitted,
		Subject: "Quote request received",
		Body:    fmt.Sprintf("Quote request %s for your %d %s %s has been received and is awaiting review.", created.RequestNumber, created.Year, created.Make, created.Model),
	})
	return created, nil
}

func (s *service) Review(ctx context.Context, input ReviewInput) (*models.QuoteRequest, error) {
	if input.QuoteID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "quote id required")
	}
	if !input.ActorRole.IsStaff() {
		return nil, pkgerrors.New(pkgerrors.CodeForbidden, "staff role required")
	}
	if input.Status != nil {
		if !input.Status.IsValid() {
			return nil, pkgerrors.New(pkgerrors.CodeValidation, fmt.Sprintf("invalid quote status %q", *input.Status))
		}
		if *input.Status == enums.QuoteStatusConverted {
			return nil, pkgerrors.New(pkgerrors.CodeValidation, "converted status is set by conversion, not review")
		}
	}

	var reviewed *models.QuoteRequest
	err := s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)

		quote, err := repo.FindByID(ctx, input.QuoteID)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return pkgerrors.New(pkgerrors.CodeNotFound, "quote request not found")
			}
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load quote request")
		}
		if quote.Status.IsTerminal() {
			return pkgerrors.New(pkgerrors.CodeStateConflict,
				fmt.Sprintf("quote request is %s and can no longer be edited", quote.Status))
		}

		if err := applyReview(quote, input); err != nil {
			return err
		}

		if err := repo.Save(ctx, quote); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "save quote request")
		}
		reviewed = quote
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.notifier.Notify(ctx, notifications.NotifyInput{
		UserID:  reviewed.CustomerID,
		Channel: enums.NotificationChannelInApp,
		Type:    enums.NotificationTypeQuoteUpdated,
		Subject: "Quote request updated",
		Body:    fmt.Sprintf("Quote request %s is now %s.", reviewed.RequestNumber, reviewed.Status),
	})
	return reviewed, nil
}

// Convert opens an order from an accepted quote. The order insert and the
// quote's one-shot link commit together; losing a concurrent race rolls
// the new order back and reports a conflict.
func (s *service) Convert(ctx context.Context, input ConvertInput) (*models.Order, error) {
	if input.QuoteID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "quote id required")
	}
	if !input.ActorRole.IsStaff() {
		return nil, pkgerrors.New(pkgerrors.CodeForbidden, "staff role required")
	}

	var converted *models.QuoteRequest
	var order *models.Order
	err := s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)

		quote, err := repo.FindByID(ctx, input.QuoteID)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return pkgerrors.New(pkgerrors.CodeNotFound, "quote request not found")
			}
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load quote request")
		}
		if quote.OrderID != nil || quote.Status == enums.QuoteStatusConverted {
			return pkgerrors.New(pkgerrors.CodeConflict, "quote request has already been converted")
		}
		if quote.Status != enums.QuoteStatusQuoted && quote.Status != enums.QuoteStatusApproved {
			return pkgerrors.New(pkgerrors.CodeStateConflict,
				fmt.Sprintf("quote request is %s; only quoted or approved requests can be converted", quote.Status))
		}
		if quote.QuotedPrice == nil {
			return pkgerrors.New(pkgerrors.CodeStateConflict, "quote request has no quoted price")
		}

		created, err := s.orders.CreateInTx(ctx, tx, orderInputFromQuote(quote, input.ActorUserID))
		if err != nil {
			return err
		}

		affected, err := repo.MarkConverted(ctx, quote.ID, created.ID, time.Now().UTC())
		if err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "mark quote converted")
		}
		if affected == 0 {
			// Lost a concurrent conversion race after the initial read.
			return pkgerrors.New(pkgerrors.CodeConflict, "quote request has already been converted")
		}

		converted = quote
		order = created
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.notifier.Notify(ctx, notifications.NotifyInput{
		UserID:  converted.CustomerID,
		OrderID: &order.ID,
		Channel: enums.NotificationChannelInApp,
		Type:    enums.NotificationTypeQuoteConverted,
		Subject: "Quote converted to order",
		Body:    fmt.Sprintf("Quote request %s has been converted to order %s.", converted.RequestNumber, order.OrderNumber),
	})
	return order, nil
}

func (s *service) Get(ctx context.Context, input GetInput) (*models.QuoteRequest, error) {
	if input.QuoteID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "quote id required")
	}
	quote, err := s.repo.FindByID(ctx, input.QuoteID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "quote request not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load quote request")
	}
	if !input.ActorRole.IsStaff() && quote.CustomerID != input.ActorUserID {
		return nil, pkgerrors.New(pkgerrors.CodeNotFound, "quote request not found")
	}
	return quote, nil
}

func (s *service) List(ctx context.Context, input ListInput) ([]models.QuoteRequest, string, error) {
	filter := ListFilter{
		Status: input.Status,
		Limit:  input.Limit,
	}
	if input.ActorRole.IsStaff() {
		filter.CustomerID = input.CustomerID
	} else {
		actor := input.ActorUserID
		filter.CustomerID = &actor
	}
	if input.Cursor != "" {
		cursor, err := pagination.ParseCursor(input.Cursor)
		if err != nil {
			return nil, "", pkgerrors.New(pkgerrors.CodeValidation, "invalid cursor")
		}
		filter.Cursor = cursor
	}

	rows, next, err := s.repo.List(ctx, filter)
	if err != nil {
		return nil, "", pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list quote requests")
	}
	nextCursor := ""
	if next != nil {
		nextCursor = pagination.EncodeCursor(*next)
	}
	return rows, nextCursor, nil
}

// reviewTransitions is the edit-path state machine: requests move
// forward through review to a price, and only a priced request can be
// approved or rejected. Converted is reachable solely through Convert.
var reviewTransitions = map[enums.QuoteStatus]map[enums.QuoteStatus]bool{
	enums.QuoteStatusPending: {
		enums.QuoteStatusReviewing: true,
		enums.QuoteStatusQuoted:    true,
	},
	enums.QuoteStatusReviewing: {
		enums.QuoteStatusQuoted: true,
	},
	enums.QuoteStatusQuoted: {
		enums.QuoteStatusApproved: true,
		enums.QuoteStatusRejected: true,
	},
}

func applyReview(quote *models.QuoteRequest, input ReviewInput) error {
	setMoney := func(name string, target **decimal.Decimal, value *decimal.Decimal) error {
		if value == nil {
			return nil
		}
		if value.LessThan(decimal.Zero) {
			return pkgerrors.New(pkgerrors.CodeValidation, fmt.Sprintf("%s cannot be negative", name))
		}
		*target = value
		return nil
	}

	if err := setMoney("quoted_price", &quote.QuotedPrice, input.QuotedPrice); err != nil {
		return err
	}
	if err := setMoney("shipping_cost", &quote.ShippingCost, input.ShippingCost); err != nil {
		return err
	}
	if err := setMoney("duty_estimate", &quote.DutyEstimate, input.DutyEstimate); err != nil {
		return err
	}
	if input.AdminNotes != nil {
		quote.AdminNotes = input.AdminNotes
	}
	if input.Status != nil && *input.Status != quote.Status {
		if !reviewTransitions[quote.Status][*input.Status] {
			return pkgerrors.New(pkgerrors.CodeStateConflict,
				fmt.Sprintf("quote request cannot move from %s to %s", quote.Status, *input.Status))
		}
		if *input.Status == enums.QuoteStatusQuoted && quote.QuotedPrice == nil {
			return pkgerrors.New(pkgerrors.CodeValidation, "quoted price required to mark the request quoted")
		}
		quote.Status = *input.Status
	}
	return nil
}

// orderInputFromQuote maps the accepted quote onto a new order: the
// quoted vehicle price becomes the purchase price, the shipping estimate
// the transportation cost and the duty estimate the duty cost. Missing
// estimates contribute zero.
func orderInputFromQuote(quote *models.QuoteRequest, actorUserID uuid.UUID) orders.CreateInput {
	input := orders.CreateInput{
		CustomerID: quote.CustomerID,
		Vehicle: orders.VehicleInput{
			AuctionSource: quote.AuctionLink,
			LotNumber:     quote.LotNumber,
			VIN:           quote.VIN,
			Make:          quote.Make,
			Model:         quote.Model,
			Year:          quote.Year,
			Trim:          quote.Trim,
			PurchasePrice: quote.QuotedPrice,
		},
		ActorUserID: actorUserID,
		ActorRole:   enums.UserRoleStaff,
	}
	if quote.ShippingCost != nil {
		input.TransportationCost = *quote.ShippingCost
	}
	if quote.DutyEstimate != nil {
		input.DutyCost = *quote.DutyEstimate
	}
	return input
}
