package substitutes

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/tregohealth/trego-backend/api/responses"
	substitutesvc "github.com/tregohealth/trego-backend/internal/substitutes"
	pkgerrors "github.com/tregohealth/trego-backend/pkg/errors"
	"github.com/tregohealth/trego-backend/pkg/logger"
)

// List returns up to two substitute medicines for the given medicine.
func List(svc substitutesvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "substitute service unavailable"))
			return
		}

		medicineID, err := uuid.Parse(chi.URLParam(r, "medicineId"))
		if err != nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeValidation, "medicineId must be a valid uuid"))
			return
		}

		orderBy, err := substitutesvc.ParseOrderBy(r.URL.Query().Get("order_by"))
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		candidates, err := svc.FindSubstitutes(r.Context(), medicineID, orderBy)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, candidates)
	}
}
