package controllers

import (
	"net/http"
	"time"

	"github.com/adirahman/klinik-backend/api/responses"
	"github.com/adirahman/klinik-backend/api/validators"
	usagesvc "github.com/adirahman/klinik-backend/internal/usages"
	pkgerrors "github.com/adirahman/klinik-backend/pkg/errors"
	"github.com/adirahman/klinik-backend/pkg/logger"
)

// RecordUsage handles usage event creation and the paired stock deduction.
func RecordUsage(svc usagesvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "usage service unavailable"))
			return
		}

		var payload recordUsageRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		input, err := payload.toInput()
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		event, err := svc.Record(r.Context(), input)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccessStatus(w, http.StatusCreated, event)
	}
}

type recordUsageRequest struct {
	MedicineID int64   `json:"id_obat" validate:"required,gt=0"`
	Date       string  `json:"tanggal" validate:"required"`
	Quantity   int     `json:"jumlah_dipakai" validate:"required,gt=0"`
	Note       *string `json:"catatan,omitempty"`
}

func (r recordUsageRequest) toInput() (usagesvc.RecordInput, error) {
	date, err := parseDate(r.Date)
	if err != nil {
		return usagesvc.RecordInput{}, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid tanggal")
	}
	return usagesvc.RecordInput{
		MedicineID: r.MedicineID,
		Date:       date,
		Quantity:   r.Quantity,
		Note:       r.Note,
	}, nil
}

func parseDate(raw string) (time.Time, error) {
	if ts, err := time.Parse(time.RFC3339, raw); err == nil {
		return ts, nil
	}
	return time.ParseInLocation("2006-01-02", raw, time.Local)
}

// ListUsages returns usage history filtered by the query string.
func ListUsages(svc usagesvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "usage service unavailable"))
			return
		}

		medicineID, err := validators.ParseQueryInt64(r, "id_obat")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		from, err := validators.ParseQueryDate(r, "tanggal_mulai")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		to, err := validators.ParseQueryDateEnd(r, "tanggal_akhir")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		events, err := svc.List(r.Context(), usagesvc.ListFilter{
			MedicineID: medicineID,
			From:       from,
			To:         to,
		})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, events)
	}
}
