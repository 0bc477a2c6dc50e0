package controllers

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/harborlane/importdesk-backend/api/middleware"
	"github.com/harborlane/importdesk-backend/api/responses"
	"github.com/harborlane/importdesk-backend/api/validators"
	"github.com/harborlane/importdesk-backend/internal/deposits"
	internalorders "github.com/harborlane/importdesk-backend/internal/orders"
	"github.com/harborlane/importdesk-backend/pkg/enums"
	pkgerrors "github.com/harborlane/importdesk-backend/pkg/errors"
	"github.com/harborlane/importdesk-backend/pkg/logger"
)

const transactionDateLayout = "2006-01-02"

type addDepositRequest struct {
	CustomerID      string          `json:"customer_id" validate:"required,uuid"`
	Amount          decimal.Decimal `json:"amount"`
	PaymentMethod   string          `json:"payment_method" validate:"required"`
	BankName        *string         `json:"bank_name,omitempty" validate:"omitempty,max=200"`
	BankReference   *string         `json:"bank_reference,omitempty" validate:"omitempty,max=200"`
	TransactionDate string          `json:"transaction_date" validate:"required"`
	TransactionTime string          `json:"transaction_time,omitempty"`
	Notes           *string         `json:"notes,omitempty"`
}

type reviewDepositRequest struct {
	Decision string `json:"decision" validate:"required,oneof=verify reject"`
}

// AddDeposit records a customer's bank payment against an order. The
// deposit starts pending and does not touch the order's totals until a
// reviewer verifies it.
func AddDeposit(svc deposits.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "deposits service unavailable"))
			return
		}

		orderID, err := validators.ParsePathUUID(chi.URLParam(r, "orderID"), "orderID")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var body addDepositRequest
		if err := validators.DecodeJSONBody(r, &body); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		customerID, err := uuid.Parse(body.CustomerID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid customer id"))
			return
		}

		txDate, err := time.Parse(transactionDateLayout, body.TransactionDate)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "transaction_date must be YYYY-MM-DD"))
			return
		}

		actorID, actorRole := middleware.ActorFromContext(r.Context())
		deposit, err := svc.Add(r.Context(), deposits.AddInput{
			OrderID:         orderID,
			CustomerID:      customerID,
			Amount:          body.Amount,
			PaymentMethod:   enums.PaymentMethod(body.PaymentMethod),
			BankName:        body.BankName,
			BankReference:   body.BankReference,
			TransactionDate: txDate,
			TransactionTime: body.TransactionTime,
			Notes:           body.Notes,
			ActorUserID:     actorID,
			ActorRole:       actorRole,
		})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccessStatus(w, http.StatusCreated, deposit)
	}
}

// ListOrderDeposits returns an order's deposit ledger. Access is scoped
// through the order itself so customers cannot read other ledgers.
func ListOrderDeposits(ordersSvc internalorders.Service, svc deposits.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil || ordersSvc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "deposits service unavailable"))
			return
		}

		orderID, err := validators.ParsePathUUID(chi.URLParam(r, "orderID"), "orderID")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		actorID, actorRole := middleware.ActorFromContext(r.Context())
		if _, err := ordersSvc.Get(r.Context(), internalorders.GetInput{
			OrderID:     orderID,
			ActorUserID: actorID,
			ActorRole:   actorRole,
		}); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		items, err := svc.ListByOrder(r.Context(), orderID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, map[string]any{"items": items})
	}
}

// ReviewDeposit applies a one-shot verify or reject decision.
func ReviewDeposit(svc deposits.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "deposits service unavailable"))
			return
		}

		depositID, err := validators.ParsePathUUID(chi.URLParam(r, "depositID"), "depositID")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var body reviewDepositRequest
		if err := validators.DecodeJSONBody(r, &body); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		actorID, actorRole := middleware.ActorFromContext(r.Context())
		deposit, err := svc.Review(r.Context(), deposits.ReviewInput{
			DepositID:   depositID,
			Decision:    deposits.ReviewDecision(body.Decision),
			ActorUserID: actorID,
			ActorRole:   actorRole,
		})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, deposit)
	}
}

// DeleteDeposit removes a deposit record. Administrator only; the
// order's totals are recomputed in the same transaction.
func DeleteDeposit(svc deposits.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "deposits service unavailable"))
			return
		}

		depositID, err := validators.ParsePathUUID(chi.URLParam(r, "depositID"), "depositID")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		actorID, actorRole := middleware.ActorFromContext(r.Context())
		if err := svc.Delete(r.Context(), deposits.DeleteInput{
			DepositID:   depositID,
			ActorUserID: actorID,
			ActorRole:   actorRole,
		}); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, map[string]string{"status": "deleted"})
	}
}
