package receipt

import (
	"context"
	"errors"
	"fmt"
	"time"

	patient "github.com/adirahman/klinik-backend/internal/patients"
	"github.com/adirahman/klinik-backend/pkg/db/models"
	pkgerrors "github.com/adirahman/klinik-backend/pkg/errors"
	"gorm.io/gorm"
)

// ReceiptDTO is the printable billing receipt for a patient visit.
type ReceiptDTO struct {
	Number    string             `json:"nomor_kwitansi"`
	PrintedAt time.Time          `json:"tanggal_cetak"`
	Patient   patient.PatientDTO `json:"pasien"`
}

type patientLoader interface {
	FindByID(ctx context.Context, id int64) (*models.Patient, error)
}

// Service builds receipts from stored patient records.
type Service interface {
	Generate(ctx context.Context, patientID int64) (*ReceiptDTO, error)
}

// service implements the receipt service.
type service struct {
	patients patientLoader
	prefix   string
	now      func() time.Time
}

// NewService constructs a receipt service instance.
func NewService(patients patientLoader, prefix string) (Service, error) {
	if patients == nil {
		return nil, fmt.Errorf("patient loader required")
	}
	if prefix == "" {
		prefix = "KWT"
	}
	return &service{patients: patients, prefix: prefix, now: time.Now}, nil
}

// Generate builds a receipt for the patient. Receipt numbers embed the
// zero-padded patient id and a nanosecond timestamp so repeated prints stay
// distinct.
func (s *service) Generate(ctx context.Context, patientID int64) (*ReceiptDTO, error) {
	row, err := s.patients.FindByID(ctx, patientID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "patient not found").
				WithDetails(map[string]any{"id": patientID})
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "db: load patient")
	}

	printedAt := s.now()
	return &ReceiptDTO{
		Number:    fmt.Sprintf("%s-%04d-%d", s.prefix, row.ID, printedAt.UnixNano()),
		PrintedAt: printedAt,
		Patient:   *patient.NewPatientDTO(row),
	}, nil
}
