package medicine

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/adirahman/klinik-backend/pkg/db"
	"github.com/adirahman/klinik-backend/pkg/db/models"
	pkgerrors "github.com/adirahman/klinik-backend/pkg/errors"
	"gorm.io/gorm"
)

// Service exposes medicine inventory management operations.
type Service interface {
	Create(ctx context.Context, input CreateInput) (*MedicineDTO, error)
	Update(ctx context.Context, id int64, input UpdateInput) (*MedicineDTO, error)
	Delete(ctx context.Context, id int64) error
	Get(ctx context.Context, id int64) (*MedicineDTO, error)
	List(ctx context.Context, filter ListFilter) ([]MedicineDTO, error)
	LowStock(ctx context.Context) ([]MedicineDTO, error)
}

// CreateInput holds the validated payload to register a medicine.
type CreateInput struct {
	Name         string
	Code         string
	Kind         string
	InitialStock int
	Threshold    int
}

// UpdateInput holds optional mutation values for a medicine. Nil fields are
// left unchanged.
type UpdateInput struct {
	Name         *string
	Code         *string
	Kind         *string
	InitialStock *int
	Threshold    *int
}

type usageCounter interface {
	CountByMedicineID(ctx context.Context, medicineID int64) (int64, error)
}

// service implements the medicine service.
type service struct {
	repo     *Repository
	dbClient *db.Client
	usages   usageCounter
}

// NewService constructs a medicine service instance.
func NewService(repo *Repository, dbClient *db.Client, usages usageCounter) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("medicine repository required")
	}
	if dbClient == nil {
		return nil, fmt.Errorf("db client required")
	}
	if usages == nil {
		return nil, fmt.Errorf("usage counter required")
	}
	return &service{repo: repo, dbClient: dbClient, usages: usages}, nil
}

// Create registers the medicine with available stock equal to initial stock.
func (s *service) Create(ctx context.Context, input CreateInput) (*MedicineDTO, error) {
	medicine := &models.Medicine{
		Name:           strings.TrimSpace(input.Name),
		Code:           strings.TrimSpace(input.Code),
		Kind:           strings.TrimSpace(input.Kind),
		InitialStock:   input.InitialStock,
		AvailableStock: input.InitialStock,
		Threshold:      input.Threshold,
	}

	created, err := s.repo.Create(ctx, medicine)
	if err != nil {
		if db.IsUniqueViolation(err, "idx_obat_kode") {
			return nil, pkgerrors.New(pkgerrors.CodeDuplicateKey, "kode_obat already in use").
				WithDetails(map[string]any{"kode_obat": medicine.Code})
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "db: insert medicine")
	}
	return NewMedicineDTO(created), nil
}

// Update applies a partial mutation. Changing stok_awal preserves the
// quantity already consumed: the new available stock becomes the new initial
// stock minus prior usage, and the change is rejected when that would be
// negative. The stock rewrite goes through a single guarded statement so a
// usage recorded between the load and the write is never overwritten.
func (s *service) Update(ctx context.Context, id int64, input UpdateInput) (*MedicineDTO, error) {
	var updated *models.Medicine
	if err := s.dbClient.WithTx(ctx, func(tx *gorm.DB) error {
		txRepo := s.repo.WithTx(tx)

		medicine, err := txRepo.FindByID(ctx, id)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return pkgerrors.New(pkgerrors.CodeNotFound, "medicine not found").
					WithDetails(map[string]any{"id": id})
			}
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "db: load medicine")
		}

		if columns := updateColumns(input); len(columns) > 0 {
			if err := txRepo.UpdateFields(ctx, id, columns); err != nil {
				if db.IsUniqueViolation(err, "idx_obat_kode") {
					return pkgerrors.New(pkgerrors.CodeDuplicateKey, "kode_obat already in use").
						WithDetails(map[string]any{"kode_obat": columns["kode_obat"]})
				}
				return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "db: update medicine")
			}
		}

		if input.InitialStock != nil {
			applied, err := txRepo.AdjustInitialStock(ctx, id, *input.InitialStock)
			if err != nil {
				return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "db: adjust initial stock")
			}
			if !applied {
				return pkgerrors.New(pkgerrors.CodeValidation, "stok_awal cannot drop below quantity already used").
					WithDetails(map[string]any{
						"stok_awal":     *input.InitialStock,
						"sudah_dipakai": medicine.ConsumedStock(),
					})
			}
		}

		updated, err = txRepo.FindByID(ctx, id)
		if err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "db: reload medicine")
		}
		return nil
	}); err != nil {
		if pkgerrors.As(err) != nil {
			return nil, err
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "update medicine")
	}
	return NewMedicineDTO(updated), nil
}

func updateColumns(input UpdateInput) map[string]any {
	columns := map[string]any{}
	if input.Name != nil {
		columns["nama_obat"] = strings.TrimSpace(*input.Name)
	}
	if input.Code != nil {
		columns["kode_obat"] = strings.TrimSpace(*input.Code)
	}
	if input.Kind != nil {
		columns["jenis"] = strings.TrimSpace(*input.Kind)
	}
	if input.Threshold != nil {
		columns["ambang_batas"] = *input.Threshold
	}
	return columns
}

// Delete removes the medicine unless usage history references it.
func (s *service) Delete(ctx context.Context, id int64) error {
	if _, err := s.repo.FindByID(ctx, id); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return pkgerrors.New(pkgerrors.CodeNotFound, "medicine not found").
				WithDetails(map[string]any{"id": id})
		}
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "db: load medicine")
	}

	count, err := s.usages.CountByMedicineID(ctx, id)
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "db: count usage events")
	}
	if count > 0 {
		return pkgerrors.New(pkgerrors.CodeHasDependents,
			fmt.Sprintf("medicine has %d usage record(s) and cannot be deleted", count)).
			WithDetails(map[string]any{"jumlah_penggunaan": count})
	}

	if err := s.repo.Delete(ctx, id); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "db: delete medicine")
	}
	return nil
}

// Get loads a single medicine.
func (s *service) Get(ctx context.Context, id int64) (*MedicineDTO, error) {
	medicine, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "medicine not found").
				WithDetails(map[string]any{"id": id})
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "db: load medicine")
	}
	return NewMedicineDTO(medicine), nil
}

// List returns medicines matching the filter.
func (s *service) List(ctx context.Context, filter ListFilter) ([]MedicineDTO, error) {
	rows, err := s.repo.List(ctx, filter)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "db: list medicines")
	}
	return NewMedicineDTOs(rows), nil
}

// LowStock returns medicines whose available stock is at or below threshold.
func (s *service) LowStock(ctx context.Context) ([]MedicineDTO, error) {
	return s.List(ctx, ListFilter{LowStockOnly: true})
}
