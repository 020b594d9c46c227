package patient

import (
	"context"
	"strings"
	"time"

	"github.com/adirahman/klinik-backend/pkg/db/models"
	"github.com/adirahman/klinik-backend/pkg/enums"
	"gorm.io/gorm"
)

// Repository wires together patient persistence helpers.
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

// FindByID loads a single patient row.
func (r *Repository) FindByID(ctx context.Context, id int64) (*models.Patient, error) {
	var patient models.Patient
	if err := r.db.WithContext(ctx).First(&patient, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &patient, nil
}

// Create inserts the patient and returns the stored row.
func (r *Repository) Create(ctx context.Context, patient *models.Patient) (*models.Patient, error) {
	if err := r.db.WithContext(ctx).Create(patient).Error; err != nil {
		return nil, err
	}
	return patient, nil
}

// Save persists all fields of an already loaded patient.
func (r *Repository) Save(ctx context.Context, patient *models.Patient) (*models.Patient, error) {
	if err := r.db.WithContext(ctx).Save(patient).Error; err != nil {
		return nil, err
	}
	return patient, nil
}

// Delete removes the patient row and reports whether it existed.
func (r *Repository) Delete(ctx context.Context, id int64) (bool, error) {
	result := r.db.WithContext(ctx).Delete(&models.Patient{}, "id = ?", id)
	if result.Error != nil {
		return false, result.Error
	}
	return result.RowsAffected > 0, nil
}

// ListFilter narrows List results. Zero values mean no constraint; the date
// bounds are inclusive and apply to tanggal_tindakan.
type ListFilter struct {
	Name          string
	From          *time.Time
	To            *time.Time
	Gender        *enums.Gender
	PaymentStatus *enums.PaymentStatus
}

// List returns patients matching the filter, most recent procedure first.
func (r *Repository) List(ctx context.Context, filter ListFilter) ([]models.Patient, error) {
	query := r.db.WithContext(ctx).Model(&models.Patient{})
	if name := strings.TrimSpace(filter.Name); name != "" {
		query = query.Where("LOWER(nama) LIKE ?", "%"+strings.ToLower(name)+"%")
	}
	if filter.From != nil {
		query = query.Where("tanggal_tindakan >= ?", *filter.From)
	}
	if filter.To != nil {
		query = query.Where("tanggal_tindakan <= ?", *filter.To)
	}
	if filter.Gender != nil {
		query = query.Where("jenis_kelamin = ?", *filter.Gender)
	}
	if filter.PaymentStatus != nil {
		query = query.Where("status_pembayaran = ?", *filter.PaymentStatus)
	}

	var rows []models.Patient
	if err := query.Order("tanggal_tindakan DESC, id DESC").Find(&rows).Error; err != nil {
		return nil, err
	}
	return rows, nil
}

// CountPatients returns the total number of patient rows.
func (r *Repository) CountPatients(ctx context.Context) (int64, error) {
	var count int64
	if err := r.db.WithContext(ctx).Model(&models.Patient{}).Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}
