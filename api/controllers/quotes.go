package controllers

import (
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/harborlane/importdesk-backend/api/middleware"
	"github.com/harborlane/importdesk-backend/api/responses"
	"github.com/harborlane/importdesk-backend/api/validators"
	"github.com/harborlane/importdesk-backend/internal/quotes"
	"github.com/harborlane/importdesk-backend/pkg/enums"
	pkgerrors "github.com/harborlane/importdesk-backend/pkg/errors"
	"github.com/harborlane/importdesk-backend/pkg/logger"
	"github.com/harborlane/importdesk-backend/pkg/pagination"
)

type submitQuoteRequest struct {
	VehicleType *string `json:"vehicle_type,omitempty" validate:"omitempty,max=100"`
	Make        string  `json:"make" validate:"required,max=100"`
	Model       string  `json:"model" validate:"required,max=100"`
	Year        int     `json:"year" validate:"required"`
	Trim        *string `json:"trim,omitempty" validate:"omitempty,max=100"`
	VIN         *string `json:"vin,omitempty" validate:"omitempty,max=17"`
	LotNumber   *string `json:"lot_number,omitempty" validate:"omitempty,max=100"`
	AuctionLink *string `json:"auction_link,omitempty" validate:"omitempty,max=500"`

	BudgetMin *decimal.Decimal `json:"budget_min,omitempty"`
	BudgetMax *decimal.Decimal `json:"budget_max,omitempty"`
}

type reviewQuoteRequest struct {
	Status *string `json:"status,omitempty"`

	QuotedPrice  *decimal.Decimal `json:"quoted_price,omitempty"`
	ShippingCost *decimal.Decimal `json:"shipping_cost,omitempty"`
	DutyEstimate *decimal.Decimal `json:"duty_estimate,omitempty"`
	AdminNotes   *string          `json:"admin_notes,omitempty"`
}

// SubmitQuote files a customer's quote request. The request number is
// assigned from the yearly sequence.
func SubmitQuote(svc quotes.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "quotes service unavailable"))
			return
		}

		var body submitQuoteRequest
		if err := validators.DecodeJSONBody(r, &body); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		actorID, _ := middleware.ActorFromContext(r.Context())
		quote, err := svc.Submit(r.Context(), quotes.SubmitInput{
			CustomerID:  actorID,
			VehicleType: body.VehicleType,
			Make:        body.Make,
			Model:       body.Model,
			Year:        body.Year,
			Trim:        body.Trim,
			VIN:         body.VIN,
			LotNumber:   body.LotNumber,
			AuctionLink: body.AuctionLink,
			BudgetMin:   body.BudgetMin,
			BudgetMax:   body.BudgetMax,
		})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccessStatus(w, http.StatusCreated, quote)
	}
}

// ListQuotes pages quote requests for the caller.
func ListQuotes(svc quotes.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "quotes service unavailable"))
			return
		}

		limit, err := validators.ParseQueryInt(r, "limit", pagination.DefaultLimit, 1, pagination.MaxLimit)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		customerID, err := validators.ParseQueryUUID(r, "customer_id")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		actorID, actorRole := middleware.ActorFromContext(r.Context())
		input := quotes.ListInput{
			Status:      enums.QuoteStatus(strings.TrimSpace(r.URL.Query().Get("status"))),
			Limit:       limit,
			Cursor:      strings.TrimSpace(r.URL.Query().Get("cursor")),
			ActorUserID: actorID,
			ActorRole:   actorRole,
		}
		if customerID != uuid.Nil {
			input.CustomerID = &customerID
		}

		items, next, err := svc.List(r.Context(), input)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, map[string]any{"items": items, "cursor": next})
	}
}

// GetQuote returns a single quote request scoped to the caller.
func GetQuote(svc quotes.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "quotes service unavailable"))
			return
		}

		quoteID, err := validators.ParsePathUUID(chi.URLParam(r, "quoteID"), "quoteID")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		actorID, actorRole := middleware.ActorFromContext(r.Context())
		quote, err := svc.Get(r.Context(), quotes.GetInput{
			QuoteID:     quoteID,
			ActorUserID: actorID,
			ActorRole:   actorRole,
		})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, quote)
	}
}

// ReviewQuote applies staff pricing and/or a status move to a quote.
func ReviewQuote(svc quotes.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "quotes service unavailable"))
			return
		}

		quoteID, err := validators.ParsePathUUID(chi.URLParam(r, "quoteID"), "quoteID")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var body reviewQuoteRequest
		if err := validators.DecodeJSONBody(r, &body); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		actorID, actorRole := middleware.ActorFromContext(r.Context())
		input := quotes.ReviewInput{
			QuoteID:      quoteID,
			QuotedPrice:  body.QuotedPrice,
			ShippingCost: body.ShippingCost,
			DutyEstimate: body.DutyEstimate,
			AdminNotes:   body.AdminNotes,
			ActorUserID:  actorID,
			ActorRole:    actorRole,
		}
		if body.Status != nil {
			status := enums.QuoteStatus(strings.TrimSpace(*body.Status))
			input.Status = &status
		}

		quote, err := svc.Review(r.Context(), input)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, quote)
	}
}

// ConvertQuote turns an accepted quote into an order. The conversion is
// one-shot; repeat calls get a conflict.
func ConvertQuote(svc quotes.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "quotes service unavailable"))
			return
		}

		quoteID, err := validators.ParsePathUUID(chi.URLParam(r, "quoteID"), "quoteID")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		actorID, actorRole := middleware.ActorFromContext(r.Context())
		order, err := svc.Convert(r.Context(), quotes.ConvertInput{
			QuoteID:     quoteID,
			ActorUserID: actorID,
			ActorRole:   actorRole,
		})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccessStatus(w, http.StatusCreated, order)
	}
}
