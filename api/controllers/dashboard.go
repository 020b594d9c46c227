package controllers

import (
	"net/http"

	"github.com/adirahman/klinik-backend/api/responses"
	dashboardsvc "github.com/adirahman/klinik-backend/internal/dashboard"
	pkgerrors "github.com/adirahman/klinik-backend/pkg/errors"
	"github.com/adirahman/klinik-backend/pkg/logger"
)

// DashboardStats returns the aggregated landing page counters.
func DashboardStats(svc dashboardsvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "dashboard service unavailable"))
			return
		}

		stats, err := svc.Stats(r.Context())
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, stats)
	}
}
