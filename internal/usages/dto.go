package usage

import (
	"time"

	"github.com/adirahman/klinik-backend/pkg/db/models"
)

// UsageEventDTO represents a recorded medicine consumption.
type UsageEventDTO struct {
	ID           int64     `json:"id"`
	MedicineID   int64     `json:"id_obat"`
	MedicineName string    `json:"nama_obat,omitempty"`
	Date         time.Time `json:"tanggal"`
	Quantity     int       `json:"jumlah_dipakai"`
	Note         *string   `json:"catatan,omitempty"`
	CreatedAt    time.Time `json:"created_at"`
}

// NewUsageEventDTO maps the model into the client payload. The medicine name
// is filled from the preloaded association when present.
func NewUsageEventDTO(ev *models.UsageEvent) *UsageEventDTO {
	if ev == nil {
		return nil
	}
	dto := &UsageEventDTO{
		ID:         ev.ID,
		MedicineID: ev.MedicineID,
		Date:       ev.Date,
		Quantity:   ev.Quantity,
		Note:       ev.Note,
		CreatedAt:  ev.CreatedAt,
	}
	if ev.Medicine != nil {
		dto.MedicineName = ev.Medicine.Name
	}
	return dto
}

// NewUsageEventDTOs maps a slice of models.
func NewUsageEventDTOs(rows []models.UsageEvent) []UsageEventDTO {
	out := make([]UsageEventDTO, 0, len(rows))
	for i := range rows {
		out = append(out, *NewUsageEventDTO(&rows[i]))
	}
	return out
}
