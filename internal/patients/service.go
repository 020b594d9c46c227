package patient

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/adirahman/klinik-backend/pkg/db/models"
	"github.com/adirahman/klinik-backend/pkg/enums"
	pkgerrors "github.com/adirahman/klinik-backend/pkg/errors"
	"github.com/adirahman/klinik-backend/pkg/types"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// Service exposes patient registration and billing operations.
type Service interface {
	Create(ctx context.Context, input CreateInput) (*PatientDTO, error)
	Update(ctx context.Context, id int64, input UpdateInput) (*PatientDTO, error)
	Delete(ctx context.Context, id int64) (bool, error)
	Get(ctx context.Context, id int64) (*PatientDTO, error)
	List(ctx context.Context, filter ListFilter) ([]PatientDTO, error)
}

// CreateInput holds the validated payload to register a patient.
type CreateInput struct {
	Name          string
	Age           int
	Gender        enums.Gender
	Address       string
	Contact       string
	ProcedureDate time.Time
	MedicalNote   *string
	Fee           decimal.Decimal
	PaymentStatus enums.PaymentStatus
}

// UpdateInput holds optional mutation values for a patient. Nil fields stay
// unchanged; MedicalNote distinguishes an omitted field from an explicit null
// so the note can be cleared.
type UpdateInput struct {
	Name          *string
	Age           *int
	Gender        *enums.Gender
	Address       *string
	Contact       *string
	ProcedureDate *time.Time
	MedicalNote   types.Optional[*string]
	Fee           *decimal.Decimal
	PaymentStatus *enums.PaymentStatus
}

// service implements the patient service.
type service struct {
	repo *Repository
}

// NewService constructs a patient service instance.
func NewService(repo *Repository) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("patient repository required")
	}
	return &service{repo: repo}, nil
}

// Create registers the patient.
func (s *service) Create(ctx context.Context, input CreateInput) (*PatientDTO, error) {
	if err := validateBillingFields(input.Gender, input.PaymentStatus, input.Fee); err != nil {
		return nil, err
	}

	patient := &models.Patient{
		Name:          strings.TrimSpace(input.Name),
		Age:           input.Age,
		Gender:        input.Gender,
		Address:       strings.TrimSpace(input.Address),
		Contact:       strings.TrimSpace(input.Contact),
		ProcedureDate: input.ProcedureDate,
		MedicalNote:   input.MedicalNote,
		Fee:           input.Fee,
		PaymentStatus: input.PaymentStatus,
	}

	created, err := s.repo.Create(ctx, patient)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "db: insert patient")
	}
	return NewPatientDTO(created), nil
}

// Update applies a partial mutation to the patient.
func (s *service) Update(ctx context.Context, id int64, input UpdateInput) (*PatientDTO, error) {
	patient, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "patient not found").
				WithDetails(map[string]any{"id": id})
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "db: load patient")
	}

	if err := applyUpdate(patient, input); err != nil {
		return nil, err
	}

	updated, err := s.repo.Save(ctx, patient)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "db: update patient")
	}
	return NewPatientDTO(updated), nil
}

func applyUpdate(patient *models.Patient, input UpdateInput) error {
	if input.Name != nil {
		patient.Name = strings.TrimSpace(*input.Name)
	}
	if input.Age != nil {
		patient.Age = *input.Age
	}
	if input.Gender != nil {
		if !input.Gender.IsValid() {
			return pkgerrors.New(pkgerrors.CodeValidation, "jenis_kelamin must be L or P")
		}
		patient.Gender = *input.Gender
	}
	if input.Address != nil {
		patient.Address = strings.TrimSpace(*input.Address)
	}
	if input.Contact != nil {
		patient.Contact = strings.TrimSpace(*input.Contact)
	}
	if input.ProcedureDate != nil {
		patient.ProcedureDate = *input.ProcedureDate
	}
	if input.MedicalNote.Valid {
		patient.MedicalNote = input.MedicalNote.Value
	}
	if input.Fee != nil {
		if !input.Fee.IsPositive() {
			return pkgerrors.New(pkgerrors.CodeValidation, "biaya must be positive").
				WithDetails(map[string]any{"biaya": input.Fee.String()})
		}
		patient.Fee = *input.Fee
	}
	if input.PaymentStatus != nil {
		if !input.PaymentStatus.IsValid() {
			return pkgerrors.New(pkgerrors.CodeValidation, "status_pembayaran must be LUNAS or BELUM_LUNAS")
		}
		patient.PaymentStatus = *input.PaymentStatus
	}
	return nil
}

func validateBillingFields(gender enums.Gender, status enums.PaymentStatus, fee decimal.Decimal) error {
	if !gender.IsValid() {
		return pkgerrors.New(pkgerrors.CodeValidation, "jenis_kelamin must be L or P")
	}
	if !status.IsValid() {
		return pkgerrors.New(pkgerrors.CodeValidation, "status_pembayaran must be LUNAS or BELUM_LUNAS")
	}
	if !fee.IsPositive() {
		return pkgerrors.New(pkgerrors.CodeValidation, "biaya must be positive").
			WithDetails(map[string]any{"biaya": fee.String()})
	}
	return nil
}

// Delete removes the patient. Deleting an absent row is not an error; the
// boolean reports whether a row was removed.
func (s *service) Delete(ctx context.Context, id int64) (bool, error) {
	removed, err := s.repo.Delete(ctx, id)
	if err != nil {
		return false, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "db: delete patient")
	}
	return removed, nil
}

// Get loads a single patient.
func (s *service) Get(ctx context.Context, id int64) (*PatientDTO, error) {
	patient, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "patient not found").
				WithDetails(map[string]any{"id": id})
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "db: load patient")
	}
	return NewPatientDTO(patient), nil
}

// List returns patients matching the filter.
func (s *service) List(ctx context.Context, filter ListFilter) ([]PatientDTO, error) {
	rows, err := s.repo.List(ctx, filter)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "db: list patients")
	}
	return NewPatientDTOs(rows), nil
}
