package controllers

import (
	"net/http"

	"github.com/harborlane/importdesk-backend/api/middleware"
	"github.com/harborlane/importdesk-backend/api/responses"
	"github.com/harborlane/importdesk-backend/api/validators"
	"github.com/harborlane/importdesk-backend/internal/users"
	pkgerrors "github.com/harborlane/importdesk-backend/pkg/errors"
	"github.com/harborlane/importdesk-backend/pkg/logger"
)

type createCustomerRequest struct {
	Email    string  `json:"email" validate:"required,email"`
	FullName string  `json:"full_name" validate:"required,min=1,max=200"`
	Phone    *string `json:"phone,omitempty" validate:"omitempty,max=40"`
}

// CreateCustomer opens a customer account on behalf of a walk-in client.
// The response carries the generated temporary password exactly once.
func CreateCustomer(svc users.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "users service unavailable"))
			return
		}

		var body createCustomerRequest
		if err := validators.DecodeJSONBody(r, &body); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		actorID, actorRole := middleware.ActorFromContext(r.Context())
		result, err := svc.CreateCustomer(r.Context(), users.CreateCustomerInput{
			Email:       body.Email,
			FullName:    body.FullName,
			Phone:       body.Phone,
			ActorUserID: actorID,
			ActorRole:   actorRole,
		})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccessStatus(w, http.StatusCreated, map[string]any{
			"user":          result.User,
			"temp_password": result.TempPassword,
		})
	}
}

// CurrentUser returns the authenticated account's profile.
func CurrentUser(svc users.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "users service unavailable"))
			return
		}

		actorID, _ := middleware.ActorFromContext(r.Context())
		user, err := svc.Get(r.Context(), actorID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, user)
	}
}
