package usage

import (
	"context"
	"time"

	"github.com/adirahman/klinik-backend/pkg/db/models"
	"gorm.io/gorm"
)

// Repository wires together usage event persistence helpers.
type Repository struct {
	db *gorm.DB
}

// NewRepository builds a repository tied to the provided GORM DB.
func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

// WithTx returns a repository bound to the provided transaction.
func (r *Repository) WithTx(tx *gorm.DB) *Repository {
	return &Repository{db: tx}
}

// Create inserts the usage event.
func (r *Repository) Create(ctx context.Context, event *models.UsageEvent) (*models.UsageEvent, error) {
	if err := r.db.WithContext(ctx).Create(event).Error; err != nil {
		return nil, err
	}
	return event, nil
}

// ListFilter narrows List results. Nil bounds are open ended; both bounds are
// inclusive.
type ListFilter struct {
	MedicineID *int64
	From       *time.Time
	To         *time.Time
}

// List returns usage events matching the filter, most recent first.
func (r *Repository) List(ctx context.Context, filter ListFilter) ([]models.UsageEvent, error) {
	query := r.db.WithContext(ctx).Model(&models.UsageEvent{}).Preload("Medicine")
	if filter.MedicineID != nil {
		query = query.Where("id_obat = ?", *filter.MedicineID)
	}
	if filter.From != nil {
		query = query.Where("tanggal >= ?", *filter.From)
	}
	if filter.To != nil {
		query = query.Where("tanggal <= ?", *filter.To)
	}

	var rows []models.UsageEvent
	if err := query.Order("tanggal DESC, id DESC").Find(&rows).Error; err != nil {
		return nil, err
	}
	return rows, nil
}

// CountByMedicineID returns how many usage events reference the medicine.
func (r *Repository) CountByMedicineID(ctx context.Context, medicineID int64) (int64, error) {
	var count int64
	if err := r.db.WithContext(ctx).
		Model(&models.UsageEvent{}).
		Where("id_obat = ?", medicineID).
		Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}

// SumQuantityBetween totals jumlah_dipakai for events with tanggal in
// [from, to). The upper bound is exclusive so adjacent windows never double
// count.
func (r *Repository) SumQuantityBetween(ctx context.Context, from, to time.Time) (int64, error) {
	var total *int64
	if err := r.db.WithContext(ctx).
		Model(&models.UsageEvent{}).
		Where("tanggal >= ? AND tanggal < ?", from, to).
		Select("SUM(jumlah_dipakai)").
		Scan(&total).Error; err != nil {
		return 0, err
	}
	if total == nil {
		return 0, nil
	}
	return *total, nil
}
