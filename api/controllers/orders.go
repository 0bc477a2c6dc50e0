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
	internalorders "github.com/harborlane/importdesk-backend/internal/orders"
	"github.com/harborlane/importdesk-backend/pkg/enums"
	pkgerrors "github.com/harborlane/importdesk-backend/pkg/errors"
	"github.com/harborlane/importdesk-backend/pkg/logger"
	"github.com/harborlane/importdesk-backend/pkg/pagination"
)

type orderVehicleRequest struct {
	AuctionSource *string          `json:"auction_source,omitempty" validate:"omitempty,max=200"`
	LotNumber     *string          `json:"lot_number,omitempty" validate:"omitempty,max=100"`
	VIN           *string          `json:"vin,omitempty" validate:"omitempty,max=17"`
	Make          string           `json:"make" validate:"required,max=100"`
	Model         string           `json:"model" validate:"required,max=100"`
	Year          int              `json:"year" validate:"required"`
	Trim          *string          `json:"trim,omitempty" validate:"omitempty,max=100"`
	PurchasePrice *decimal.Decimal `json:"purchase_price,omitempty"`
	Condition     *string          `json:"condition,omitempty" validate:"omitempty,max=200"`
	Notes         *string          `json:"notes,omitempty"`
}

type createOrderRequest struct {
	CustomerID string `json:"customer_id" validate:"required,uuid"`
	Status     string `json:"status,omitempty"`
	Currency   string `json:"currency,omitempty" validate:"omitempty,len=3"`

	CarCost            decimal.Decimal `json:"car_cost"`
	TransportationCost decimal.Decimal `json:"transportation_cost"`
	DutyCost           decimal.Decimal `json:"duty_cost"`
	ClearingCost       decimal.Decimal `json:"clearing_cost"`
	FixingCost         decimal.Decimal `json:"fixing_cost"`

	DiscountType  string          `json:"discount_type,omitempty"`
	DiscountValue decimal.Decimal `json:"discount_value"`
	DepositAmount decimal.Decimal `json:"deposit_amount"`
	Notes         *string         `json:"notes,omitempty"`

	Vehicle orderVehicleRequest `json:"vehicle" validate:"required"`
}

type updateOrderRequest struct {
	CarCost            *decimal.Decimal `json:"car_cost,omitempty"`
	TransportationCost *decimal.Decimal `json:"transportation_cost,omitempty"`
	DutyCost           *decimal.Decimal `json:"duty_cost,omitempty"`
	ClearingCost       *decimal.Decimal `json:"clearing_cost,omitempty"`
	FixingCost         *decimal.Decimal `json:"fixing_cost,omitempty"`

	DiscountType  *string          `json:"discount_type,omitempty"`
	DiscountValue *decimal.Decimal `json:"discount_value,omitempty"`
	DepositAmount *decimal.Decimal `json:"deposit_amount,omitempty"`
	Notes         *string          `json:"notes,omitempty"`
}

type orderStatusRequest struct {
	Status string `json:"status" validate:"required,max=50"`
}

// CreateOrder opens an order with its vehicle and initial cost breakdown.
func CreateOrder(svc internalorders.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "orders service unavailable"))
			return
		}

		var body createOrderRequest
		if err := validators.DecodeJSONBody(r, &body); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		customerID, err := uuid.Parse(body.CustomerID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid customer id"))
			return
		}

		actorID, actorRole := middleware.ActorFromContext(r.Context())
		input := internalorders.CreateInput{
			CustomerID:         customerID,
			Status:             strings.TrimSpace(body.Status),
			Currency:           strings.ToUpper(strings.TrimSpace(body.Currency)),
			CarCost:            body.CarCost,
			TransportationCost: body.TransportationCost,
			DutyCost:           body.DutyCost,
			ClearingCost:       body.ClearingCost,
			FixingCost:         body.FixingCost,
			DiscountType:       enums.DiscountType(body.DiscountType),
			DiscountValue:      body.DiscountValue,
			DepositAmount:      body.DepositAmount,
			Notes:              body.Notes,
			Vehicle: internalorders.VehicleInput{
				AuctionSource: body.Vehicle.AuctionSource,
				LotNumber:     body.Vehicle.LotNumber,
				VIN:           body.Vehicle.VIN,
				Make:          body.Vehicle.Make,
				Model:         body.Vehicle.Model,
				Year:          body.Vehicle.Year,
				Trim:          body.Vehicle.Trim,
				PurchasePrice: body.Vehicle.PurchasePrice,
				Condition:     body.Vehicle.Condition,
				Notes:         body.Vehicle.Notes,
			},
			ActorUserID: actorID,
			ActorRole:   actorRole,
		}

		order, err := svc.Create(r.Context(), input)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccessStatus(w, http.StatusCreated, order)
	}
}

// ListOrders pages orders for the caller: customers see only their own,
// staff may filter by customer and status.
func ListOrders(svc internalorders.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "orders service unavailable"))
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
		input := internalorders.ListInput{
			Status:      strings.TrimSpace(r.URL.Query().Get("status")),
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

// GetOrder returns a single order with its vehicle and deposit ledger.
func GetOrder(svc internalorders.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "orders service unavailable"))
			return
		}

		orderID, err := validators.ParsePathUUID(chi.URLParam(r, "orderID"), "orderID")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		actorID, actorRole := middleware.ActorFromContext(r.Context())
		order, err := svc.Get(r.Context(), internalorders.GetInput{
			OrderID:     orderID,
			ActorUserID: actorID,
			ActorRole:   actorRole,
		})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, order)
	}
}

// UpdateOrder applies a partial financial edit and recomputes the
// derived totals.
func UpdateOrder(svc internalorders.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "orders service unavailable"))
			return
		}

		orderID, err := validators.ParsePathUUID(chi.URLParam(r, "orderID"), "orderID")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var body updateOrderRequest
		if err := validators.DecodeJSONBody(r, &body); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		actorID, actorRole := middleware.ActorFromContext(r.Context())
		input := internalorders.UpdateInput{
			OrderID:            orderID,
			CarCost:            body.CarCost,
			TransportationCost: body.TransportationCost,
			DutyCost:           body.DutyCost,
			ClearingCost:       body.ClearingCost,
			FixingCost:         body.FixingCost,
			DiscountValue:      body.DiscountValue,
			DepositAmount:      body.DepositAmount,
			Notes:              body.Notes,
			ActorUserID:        actorID,
			ActorRole:          actorRole,
		}
		if body.DiscountType != nil {
			dt := enums.DiscountType(*body.DiscountType)
			input.DiscountType = &dt
		}

		order, err := svc.Update(r.Context(), input)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, order)
	}
}

// UpdateOrderStatus moves an order along the configured pipeline.
func UpdateOrderStatus(svc internalorders.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "orders service unavailable"))
			return
		}

		orderID, err := validators.ParsePathUUID(chi.URLParam(r, "orderID"), "orderID")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var body orderStatusRequest
		if err := validators.DecodeJSONBody(r, &body); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		actorID, actorRole := middleware.ActorFromContext(r.Context())
		order, err := svc.UpdateStatus(r.Context(), internalorders.StatusInput{
			OrderID:     orderID,
			Status:      strings.TrimSpace(body.Status),
			ActorUserID: actorID,
			ActorRole:   actorRole,
		})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, order)
	}
}
