package medicine

import (
	"time"

	"github.com/adirahman/klinik-backend/pkg/db/models"
)

// MedicineDTO represents the inventory payload returned to clients.
type MedicineDTO struct {
	ID             int64     `json:"id"`
	Name           string    `json:"nama_obat"`
	Code           string    `json:"kode_obat"`
	Kind           string    `json:"jenis"`
	InitialStock   int       `json:"stok_awal"`
	AvailableStock int       `json:"stok_tersedia"`
	Threshold      int       `json:"ambang_batas"`
	LowStock       bool      `json:"stok_menipis"`
	CreatedAt      time.Time `json:"created_at"`
	UpdatedAt      time.Time `json:"updated_at"`
}

// NewMedicineDTO maps the model into the client payload.
func NewMedicineDTO(m *models.Medicine) *MedicineDTO {
	if m == nil {
		return nil
	}
	return &MedicineDTO{
		ID:             m.ID,
		Name:           m.Name,
		Code:           m.Code,
		Kind:           m.Kind,
		InitialStock:   m.InitialStock,
		AvailableStock: m.AvailableStock,
		Threshold:      m.Threshold,
		LowStock:       m.IsLowStock(),
		CreatedAt:      m.CreatedAt,
		UpdatedAt:      m.UpdatedAt,
	}
}

// NewMedicineDTOs maps a slice of models.
func NewMedicineDTOs(rows []models.Medicine) []MedicineDTO {
	out := make([]MedicineDTO, 0, len(rows))
	for i := range rows {
		out = append(out, *NewMedicineDTO(&rows[i]))
	}
	return out
}
