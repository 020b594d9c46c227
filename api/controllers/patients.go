package controllers

import (
	"net/http"
	"strings"

	"github.com/adirahman/klinik-backend/api/responses"
	"github.com/adirahman/klinik-backend/api/validators"
	patientsvc "github.com/adirahman/klinik-backend/internal/patients"
	"github.com/adirahman/klinik-backend/pkg/enums"
	pkgerrors "github.com/adirahman/klinik-backend/pkg/errors"
	"github.com/adirahman/klinik-backend/pkg/logger"
	"github.com/adirahman/klinik-backend/pkg/types"
	"github.com/shopspring/decimal"
)

// CreatePatient handles patient registration.
func CreatePatient(svc patientsvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "patient service unavailable"))
			return
		}

		var payload createPatientRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		input, err := payload.toInput()
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		patient, err := svc.Create(r.Context(), input)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccessStatus(w, http.StatusCreated, patient)
	}
}

type createPatientRequest struct {
	Name          string  `json:"nama" validate:"required"`
	Age           int     `json:"umur" validate:"required,gt=0"`
	Gender        string  `json:"jenis_kelamin" validate:"required,oneof=L P"`
	Address       string  `json:"alamat" validate:"required"`
	Contact       string  `json:"kontak" validate:"required"`
	ProcedureDate string  `json:"tanggal_tindakan" validate:"required"`
	MedicalNote   *string `json:"catatan_medis,omitempty"`
	Fee           string  `json:"biaya" validate:"required"`
	PaymentStatus string  `json:"status_pembayaran" validate:"required,oneof=LUNAS BELUM_LUNAS"`
}

func (r createPatientRequest) toInput() (patientsvc.CreateInput, error) {
	gender, err := enums.ParseGender(strings.TrimSpace(r.Gender))
	if err != nil {
		return patientsvc.CreateInput{}, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid jenis_kelamin")
	}
	status, err := enums.ParsePaymentStatus(strings.TrimSpace(r.PaymentStatus))
	if err != nil {
		return patientsvc.CreateInput{}, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid status_pembayaran")
	}
	fee, err := decimal.NewFromString(strings.TrimSpace(r.Fee))
	if err != nil {
		return patientsvc.CreateInput{}, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid biaya")
	}
	date, err := parseDate(r.ProcedureDate)
	if err != nil {
		return patientsvc.CreateInput{}, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid tanggal_tindakan")
	}

	return patientsvc.CreateInput{
		Name:          r.Name,
		Age:           r.Age,
		Gender:        gender,
		Address:       r.Address,
		Contact:       r.Contact,
		ProcedureDate: date,
		MedicalNote:   r.MedicalNote,
		Fee:           fee,
		PaymentStatus: status,
	}, nil
}

// UpdatePatient handles partial patient mutation.
func UpdatePatient(svc patientsvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "patient service unavailable"))
			return
		}

		id, err := parseIDParam(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var payload updatePatientRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		input, err := payload.toInput()
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		patient, err := svc.Update(r.Context(), id, input)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, patient)
	}
}

type updatePatientRequest struct {
	Name          *string                 `json:"nama,omitempty" validate:"omitempty,min=1"`
	Age           *int                    `json:"umur,omitempty" validate:"omitempty,gt=0"`
	Gender        *string                 `json:"jenis_kelamin,omitempty" validate:"omitempty,oneof=L P"`
	Address       *string                 `json:"alamat,omitempty" validate:"omitempty,min=1"`
	Contact       *string                 `json:"kontak,omitempty" validate:"omitempty,min=1"`
	ProcedureDate *string                 `json:"tanggal_tindakan,omitempty"`
	MedicalNote   types.Optional[*string] `json:"catatan_medis"`
	Fee           *string                 `json:"biaya,omitempty"`
	PaymentStatus *string                 `json:"status_pembayaran,omitempty" validate:"omitempty,oneof=LUNAS BELUM_LUNAS"`
}

func (r updatePatientRequest) toInput() (patientsvc.UpdateInput, error) {
	input := patientsvc.UpdateInput{
		Name:        r.Name,
		Age:         r.Age,
		Address:     r.Address,
		Contact:     r.Contact,
		MedicalNote: r.MedicalNote,
	}

	if r.Gender != nil {
		gender, err := enums.ParseGender(strings.TrimSpace(*r.Gender))
		if err != nil {
			return patientsvc.UpdateInput{}, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid jenis_kelamin")
		}
		input.Gender = &gender
	}
	if r.PaymentStatus != nil {
		status, err := enums.ParsePaymentStatus(strings.TrimSpace(*r.PaymentStatus))
		if err != nil {
			return patientsvc.UpdateInput{}, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid status_pembayaran")
		}
		input.PaymentStatus = &status
	}
	if r.Fee != nil {
		fee, err := decimal.NewFromString(strings.TrimSpace(*r.Fee))
		if err != nil {
			return patientsvc.UpdateInput{}, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid biaya")
		}
		input.Fee = &fee
	}
	if r.ProcedureDate != nil {
		date, err := parseDate(*r.ProcedureDate)
		if err != nil {
			return patientsvc.UpdateInput{}, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid tanggal_tindakan")
		}
		input.ProcedureDate = &date
	}
	return input, nil
}

// DeletePatient removes a patient record.
func DeletePatient(svc patientsvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "patient service unavailable"))
			return
		}

		id, err := parseIDParam(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		removed, err := svc.Delete(r.Context(), id)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, map[string]any{"deleted": removed, "id": id})
	}
}

// GetPatient loads a single patient.
func GetPatient(svc patientsvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "patient service unavailable"))
			return
		}

		id, err := parseIDParam(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		patient, err := svc.Get(r.Context(), id)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, patient)
	}
}

// ListPatients returns patients filtered by the query string.
func ListPatients(svc patientsvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "patient service unavailable"))
			return
		}

		filter := patientsvc.ListFilter{
			Name: validators.SanitizeString(r.URL.Query().Get("nama"), 100),
		}

		from, err := validators.ParseQueryDate(r, "tanggal_mulai")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		filter.From = from

		to, err := validators.ParseQueryDateEnd(r, "tanggal_akhir")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		filter.To = to

		if raw := strings.TrimSpace(r.URL.Query().Get("jenis_kelamin")); raw != "" {
			gender, err := enums.ParseGender(raw)
			if err != nil {
				responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid jenis_kelamin"))
				return
			}
			filter.Gender = &gender
		}
		if raw := strings.TrimSpace(r.URL.Query().Get("status_pembayaran")); raw != "" {
			status, err := enums.ParsePaymentStatus(raw)
			if err != nil {
				responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid status_pembayaran"))
				return
			}
			filter.PaymentStatus = &status
		}

		patients, err := svc.List(r.Context(), filter)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, patients)
	}
}
