package controllers

import (
	"net/http"

	"github.com/adirahman/klinik-backend/api/responses"
	receiptsvc "github.com/adirahman/klinik-backend/internal/receipts"
	pkgerrors "github.com/adirahman/klinik-backend/pkg/errors"
	"github.com/adirahman/klinik-backend/pkg/logger"
)

// PatientReceipt builds a printable receipt for the patient.
func PatientReceipt(svc receiptsvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "receipt service unavailable"))
			return
		}

		id, err := parseIDParam(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		receipt, err := svc.Generate(r.Context(), id)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, receipt)
	}
}
