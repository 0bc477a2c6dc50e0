package controllers

import (
	"net/http"

	"github.com/harborlane/importdesk-backend/api/responses"
	"github.com/harborlane/importdesk-backend/internal/workflow"
	pkgerrors "github.com/harborlane/importdesk-backend/pkg/errors"
	"github.com/harborlane/importdesk-backend/pkg/logger"
)

// ListStatuses returns the configured order pipeline vocabulary: codes,
// display labels and badge classes, in display order.
func ListStatuses(svc workflow.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "workflow service unavailable"))
			return
		}

		statuses, err := svc.List(r.Context())
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, statuses)
	}
}
