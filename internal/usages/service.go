package usage

import (
	"context"
	"errors"
	"fmt"
	"time"

	medicine "github.com/adirahman/klinik-backend/internal/medicines"
	"github.com/adirahman/klinik-backend/pkg/db"
	"github.com/adirahman/klinik-backend/pkg/db/models"
	pkgerrors "github.com/adirahman/klinik-backend/pkg/errors"
	"gorm.io/gorm"
)

// maxRecordAttempts bounds the automatic retry when a concurrent writer wins
// the stock decrement race.
const maxRecordAttempts = 3

// Service exposes usage recording and history operations.
type Service interface {
	Record(ctx context.Context, input RecordInput) (*UsageEventDTO, error)
	List(ctx context.Context, filter ListFilter) ([]UsageEventDTO, error)
}

// RecordInput holds the validated payload for a new usage event.
type RecordInput struct {
	MedicineID int64
	Date       time.Time
	Quantity   int
	Note       *string
}

// stockStore is the slice of the medicine repository the recorder needs.
type stockStore interface {
	WithTx(tx *gorm.DB) stockStore
	FindByID(ctx context.Context, id int64) (*models.Medicine, error)
	DecrementStock(ctx context.Context, id int64, qty int) (bool, error)
}

type medicineStore struct {
	repo *medicine.Repository
}

func (m medicineStore) WithTx(tx *gorm.DB) stockStore {
	return medicineStore{repo: m.repo.WithTx(tx)}
}

func (m medicineStore) FindByID(ctx context.Context, id int64) (*models.Medicine, error) {
	return m.repo.FindByID(ctx, id)
}

func (m medicineStore) DecrementStock(ctx context.Context, id int64, qty int) (bool, error) {
	return m.repo.DecrementStock(ctx, id, qty)
}

// service implements the usage service.
type service struct {
	repo      *Repository
	medicines stockStore
	dbClient  *db.Client
}

// NewService constructs a usage service instance.
func NewService(repo *Repository, medicines *medicine.Repository, dbClient *db.Client) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("usage repository required")
	}
	if medicines == nil {
		return nil, fmt.Errorf("medicine repository required")
	}
	if dbClient == nil {
		return nil, fmt.Errorf("db client required")
	}
	return &service{repo: repo, medicines: medicineStore{repo: medicines}, dbClient: dbClient}, nil
}

// Record writes the usage event and deducts the quantity from available stock
// in one transaction. A decrement lost to a concurrent writer is retried a
// bounded number of times before the conflict is surfaced.
func (s *service) Record(ctx context.Context, input RecordInput) (*UsageEventDTO, error) {
	if input.Quantity <= 0 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "jumlah_dipakai must be positive").
			WithDetails(map[string]any{"jumlah_dipakai": input.Quantity})
	}
	if input.Date.IsZero() {
		input.Date = time.Now()
	}

	for attempt := 1; ; attempt++ {
		dto, err := s.record(ctx, input)
		if err == nil {
			return dto, nil
		}
		typed := pkgerrors.As(err)
		if typed == nil || typed.Code() != pkgerrors.CodeTransactionConflict || attempt == maxRecordAttempts {
			return nil, err
		}
	}
}

func (s *service) record(ctx context.Context, input RecordInput) (*UsageEventDTO, error) {
	var event *models.UsageEvent
	if err := s.dbClient.WithTx(ctx, func(tx *gorm.DB) error {
		txMedicines := s.medicines.WithTx(tx)

		stock, err := txMedicines.FindByID(ctx, input.MedicineID)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return pkgerrors.New(pkgerrors.CodeNotFound, "medicine not found").
					WithDetails(map[string]any{"id_obat": input.MedicineID})
			}
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "db: load medicine")
		}

		if stock.AvailableStock < input.Quantity {
			return pkgerrors.New(pkgerrors.CodeInsufficientStock,
				fmt.Sprintf("insufficient stock: tersedia %d, diminta %d", stock.AvailableStock, input.Quantity)).
				WithDetails(map[string]any{
					"stok_tersedia":  stock.AvailableStock,
					"jumlah_dipakai": input.Quantity,
				})
		}

		event, err = s.repo.WithTx(tx).Create(ctx, &models.UsageEvent{
			MedicineID: input.MedicineID,
			Date:       input.Date,
			Quantity:   input.Quantity,
			Note:       input.Note,
		})
		if err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "db: insert usage event")
		}

		applied, err := txMedicines.DecrementStock(ctx, input.MedicineID, input.Quantity)
		if err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "db: decrement stock")
		}
		if !applied {
			// Another writer consumed the stock between the read and the
			// guarded update. The event insert rolls back with the tx.
			return pkgerrors.New(pkgerrors.CodeTransactionConflict, "stock changed concurrently")
		}

		stock.AvailableStock -= input.Quantity
		event.Medicine = stock
		return nil
	}); err != nil {
		if pkgerrors.As(err) != nil {
			return nil, err
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "record usage")
	}
	return NewUsageEventDTO(event), nil
}

// List returns usage history matching the filter, most recent first.
func (s *service) List(ctx context.Context, filter ListFilter) ([]UsageEventDTO, error) {
	rows, err := s.repo.List(ctx, filter)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "db: list usage events")
	}
	return NewUsageEventDTOs(rows), nil
}
