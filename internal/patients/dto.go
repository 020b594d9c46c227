package patient

import (
	"time"

	"github.com/adirahman/klinik-backend/pkg/db/models"
	"github.com/shopspring/decimal"
)

// PatientDTO represents the patient payload returned to clients.
type PatientDTO struct {
	ID            int64           `json:"id"`
	Name          string          `json:"nama"`
	Age           int             `json:"umur"`
	Gender        string          `json:"jenis_kelamin"`
	Address       string          `json:"alamat"`
	Contact       string          `json:"kontak"`
	ProcedureDate time.Time       `json:"tanggal_tindakan"`
	MedicalNote   *string         `json:"catatan_medis,omitempty"`
	Fee           decimal.Decimal `json:"biaya"`
	PaymentStatus string          `json:"status_pembayaran"`
	CreatedAt     time.Time       `json:"created_at"`
	UpdatedAt     time.Time       `json:"updated_at"`
}

// NewPatientDTO maps the model into the client payload.
func NewPatientDTO(p *models.Patient) *PatientDTO {
	if p == nil {
		return nil
	}
	return &PatientDTO{
		ID:            p.ID,
		Name:          p.Name,
		Age:           p.Age,
		Gender:        p.Gender.String(),
		Address:       p.Address,
		Contact:       p.Contact,
		ProcedureDate: p.ProcedureDate,
		MedicalNote:   p.MedicalNote,
		Fee:           p.Fee,
		PaymentStatus: p.PaymentStatus.String(),
		CreatedAt:     p.CreatedAt,
		UpdatedAt:     p.UpdatedAt,
	}
}

// NewPatientDTOs maps a slice of models.
func NewPatientDTOs(rows []models.Patient) []PatientDTO {
	out := make([]PatientDTO, 0, len(rows))
	for i := range rows {
		out = append(out, *NewPatientDTO(&rows[i]))
	}
	return out
}
