package controllers

import (
	"net/http"

	"github.com/adirahman/klinik-backend/api/responses"
	"github.com/adirahman/klinik-backend/api/validators"
	medicinesvc "github.com/adirahman/klinik-backend/internal/medicines"
	pkgerrors "github.com/adirahman/klinik-backend/pkg/errors"
	"github.com/adirahman/klinik-backend/pkg/logger"
)

// CreateMedicine handles medicine registration.
func CreateMedicine(svc medicinesvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "medicine service unavailable"))
			return
		}

		var payload createMedicineRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		medicine, err := svc.Create(r.Context(), payload.toInput())
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccessStatus(w, http.StatusCreated, medicine)
	}
}

type createMedicineRequest struct {
	Name         string `json:"nama_obat" validate:"required"`
	Code         string `json:"kode_obat" validate:"required"`
	Kind         string `json:"jenis" validate:"required"`
	InitialStock int    `json:"stok_awal" validate:"gte=0"`
	Threshold    int    `json:"ambang_batas" validate:"gte=0"`
}

func (r createMedicineRequest) toInput() medicinesvc.CreateInput {
	return medicinesvc.CreateInput{
		Name:         r.Name,
		Code:         r.Code,
		Kind:         r.Kind,
		InitialStock: r.InitialStock,
		Threshold:    r.Threshold,
	}
}

// UpdateMedicine handles partial medicine mutation.
func UpdateMedicine(svc medicinesvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "medicine service unavailable"))
			return
		}

		id, err := parseIDParam(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var payload updateMedicineRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		medicine, err := svc.Update(r.Context(), id, payload.toInput())
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, medicine)
	}
}

type updateMedicineRequest struct {
	Name         *string `json:"nama_obat,omitempty" validate:"omitempty,min=1"`
	Code         *string `json:"kode_obat,omitempty" validate:"omitempty,min=1"`
	Kind         *string `json:"jenis,omitempty" validate:"omitempty,min=1"`
	InitialStock *int    `json:"stok_awal,omitempty" validate:"omitempty,gte=0"`
	Threshold    *int    `json:"ambang_batas,omitempty" validate:"omitempty,gte=0"`
}

func (r updateMedicineRequest) toInput() medicinesvc.UpdateInput {
	return medicinesvc.UpdateInput{
		Name:         r.Name,
		Code:         r.Code,
		Kind:         r.Kind,
		InitialStock: r.InitialStock,
		Threshold:    r.Threshold,
	}
}

// DeleteMedicine removes a medicine without usage history.
func DeleteMedicine(svc medicinesvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "medicine service unavailable"))
			return
		}

		id, err := parseIDParam(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		if err := svc.Delete(r.Context(), id); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, map[string]any{"deleted": true, "id": id})
	}
}

// GetMedicine loads a single medicine.
func GetMedicine(svc medicinesvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "medicine service unavailable"))
			return
		}

		id, err := parseIDParam(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		medicine, err := svc.Get(r.Context(), id)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, medicine)
	}
}

// ListMedicines returns medicines filtered by the query string.
func ListMedicines(svc medicinesvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "medicine service unavailable"))
			return
		}

		lowStockOnly, err := validators.ParseQueryBool(r, "stok_rendah")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		filter := medicinesvc.ListFilter{
			Name:         validators.SanitizeString(r.URL.Query().Get("nama_obat"), 100),
			Kind:         validators.SanitizeString(r.URL.Query().Get("jenis"), 100),
			LowStockOnly: lowStockOnly,
		}

		medicines, err := svc.List(r.Context(), filter)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, medicines)
	}
}

// ListLowStockMedicines returns medicines at or below their threshold.
func ListLowStockMedicines(svc medicinesvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "medicine service unavailable"))
			return
		}

		medicines, err := svc.LowStock(r.Context())
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, medicines)
	}
}
