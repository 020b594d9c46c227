package medicine

import (
	"context"
	"strings"
	"time"

	"github.com/adirahman/klinik-backend/pkg/db/models"
	"gorm.io/gorm"
)

// Repository wires together medicine persistence helpers.
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

// FindByID loads a single medicine row.
func (r *Repository) FindByID(ctx context.Context, id int64) (*models.Medicine, error) {
	var medicine models.Medicine
	if err := r.db.WithContext(ctx).First(&medicine, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &medicine, nil
}

// Create inserts the medicine and returns the stored row.
func (r *Repository) Create(ctx context.Context, medicine *models.Medicine) (*models.Medicine, error) {
	if err := r.db.WithContext(ctx).Create(medicine).Error; err != nil {
		return nil, err
	}
	return medicine, nil
}

// UpdateFields writes the given columns on the medicine row.
func (r *Repository) UpdateFields(ctx context.Context, id int64, columns map[string]any) error {
	columns["updated_at"] = time.Now()
	return r.db.WithContext(ctx).
		Model(&models.Medicine{}).
		Where("id = ?", id).
		Updates(columns).Error
}

// AdjustInitialStock rewrites stok_awal and carries the consumed quantity
// over: stok_tersedia becomes the new initial minus what was already used.
// Both columns move in one guarded statement against the row's current
// values, so a usage write landing between a read and this call is never
// overwritten. A false return means the new initial would push available
// stock below zero.
func (r *Repository) AdjustInitialStock(ctx context.Context, id int64, newInitial int) (bool, error) {
	result := r.db.WithContext(ctx).
		Model(&models.Medicine{}).
		Where("id = ? AND stok_tersedia - stok_awal + ? >= 0", id, newInitial).
		Updates(map[string]any{
			"stok_awal":     newInitial,
			"stok_tersedia": gorm.Expr("stok_tersedia - stok_awal + ?", newInitial),
			"updated_at":    time.Now(),
		})
	if result.Error != nil {
		return false, result.Error
	}
	return result.RowsAffected == 1, nil
}

// Delete removes the medicine row.
func (r *Repository) Delete(ctx context.Context, id int64) error {
	return r.db.WithContext(ctx).Delete(&models.Medicine{}, "id = ?", id).Error
}

// ListFilter narrows List results. Zero values mean no constraint.
type ListFilter struct {
	Name         string
	Kind         string
	LowStockOnly bool
}

// List returns medicines matching the filter, newest first.
func (r *Repository) List(ctx context.Context, filter ListFilter) ([]models.Medicine, error) {
	query := r.db.WithContext(ctx).Model(&models.Medicine{})
	if name := strings.TrimSpace(filter.Name); name != "" {
		query = query.Where("LOWER(nama_obat) LIKE ?", "%"+strings.ToLower(name)+"%")
	}
	if kind := strings.TrimSpace(filter.Kind); kind != "" {
		query = query.Where("LOWER(jenis) LIKE ?", "%"+strings.ToLower(kind)+"%")
	}
	if filter.LowStockOnly {
		query = query.Where("stok_tersedia <= ambang_batas")
	}

	var rows []models.Medicine
	if err := query.Order("created_at DESC").Find(&rows).Error; err != nil {
		return nil, err
	}
	return rows, nil
}

// DecrementStock atomically subtracts qty from available stock. The guard in
// the WHERE clause keeps stok_tersedia from going negative under concurrent
// writers; callers must treat a false return as a lost race.
func (r *Repository) DecrementStock(ctx context.Context, id int64, qty int) (bool, error) {
	result := r.db.WithContext(ctx).
		Model(&models.Medicine{}).
		Where("id = ? AND stok_tersedia >= ?", id, qty).
		Updates(map[string]any{
			"stok_tersedia": gorm.Expr("stok_tersedia - ?", qty),
			"updated_at":    time.Now(),
		})
	if result.Error != nil {
		return false, result.Error
	}
	return result.RowsAffected == 1, nil
}

// CountMedicines returns the total number of medicine rows.
func (r *Repository) CountMedicines(ctx context.Context) (int64, error) {
	var count int64
	if err := r.db.WithContext(ctx).Model(&models.Medicine{}).Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}

// CountLowStock returns how many medicines sit at or below their threshold.
func (r *Repository) CountLowStock(ctx context.Context) (int64, error) {
	var count int64
	if err := r.db.WithContext(ctx).
		Model(&models.Medicine{}).
		Where("stok_tersedia <= ambang_batas").
		Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}
