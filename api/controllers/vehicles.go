package controllers

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/shopspring/decimal"

	"github.com/harborlane/importdesk-backend/api/middleware"
	"github.com/harborlane/importdesk-backend/api/responses"
	"github.com/harborlane/importdesk-backend/api/validators"
	internalorders "github.com/harborlane/importdesk-backend/internal/orders"
	"github.com/harborlane/importdesk-backend/internal/vehicles"
	pkgerrors "github.com/harborlane/importdesk-backend/pkg/errors"
	"github.com/harborlane/importdesk-backend/pkg/logger"
)

type updateVehicleRequest struct {
	AuctionSource *string          `json:"auction_source,omitempty" validate:"omitempty,max=200"`
	LotNumber     *string          `json:"lot_number,omitempty" validate:"omitempty,max=100"`
	VIN           *string          `json:"vin,omitempty" validate:"omitempty,max=17"`
	Make          *string          `json:"make,omitempty" validate:"omitempty,max=100"`
	Model         *string          `json:"model,omitempty" validate:"omitempty,max=100"`
	Year          *int             `json:"year,omitempty"`
	Trim          *string          `json:"trim,omitempty" validate:"omitempty,max=100"`
	PurchasePrice *decimal.Decimal `json:"purchase_price,omitempty"`
	Condition     *string          `json:"condition,omitempty" validate:"omitempty,max=200"`
	Notes         *string          `json:"notes,omitempty"`
}

// GetOrderVehicle returns the vehicle attached to an order. Access is
// scoped through the order itself.
func GetOrderVehicle(ordersSvc internalorders.Service, svc vehicles.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil || ordersSvc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "vehicles service unavailable"))
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

		vehicle, err := svc.GetByOrder(r.Context(), orderID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, vehicle)
	}
}

// UpdateOrderVehicle applies a partial vehicle edit. Changing the
// purchase price recomputes the order's derived totals.
func UpdateOrderVehicle(svc vehicles.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "vehicles service unavailable"))
			return
		}

		orderID, err := validators.ParsePathUUID(chi.URLParam(r, "orderID"), "orderID")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var body updateVehicleRequest
		if err := validators.DecodeJSONBody(r, &body); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		actorID, actorRole := middleware.ActorFromContext(r.Context())
		vehicle, err := svc.Update(r.Context(), vehicles.UpdateInput{
			OrderID:       orderID,
			AuctionSource: body.AuctionSource,
			LotNumber:     body.LotNumber,
			VIN:           body.VIN,
			Make:          body.Make,
			Model:         body.Model,
			Year:          body.Year,
			Trim:          body.Trim,
			PurchasePrice: body.PurchasePrice,
			Condition:     body.Condition,
			Notes:         body.Notes,
			ActorUserID:   actorID,
			ActorRole:     actorRole,
		})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, vehicle)
	}
}
