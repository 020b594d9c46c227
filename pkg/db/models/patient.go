package models

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/adirahman/klinik-backend/pkg/enums"
)

// Patient is the billing/registration record. It is independent of the
// inventory tables.
type Patient struct {
	ID            int64               `gorm:"column:id;primaryKey;autoIncrement"`
	Name          string              `gorm:"column:nama;not null"`
	Age           int                 `gorm:"column:umur;not null"`
	Gender        enums.Gender        `gorm:"column:jenis_kelamin;not null"`
	Address       string              `gorm:"column:alamat;not null"`
	Contact       string              `gorm:"column:kontak;not null"`
	ProcedureDate time.Time           `gorm:"column:tanggal_tindakan;not null"`
	MedicalNote   *string             `gorm:"column:catatan_medis"`
	Fee           decimal.Decimal     `gorm:"column:biaya;type:numeric(10,2);not null"`
	PaymentStatus enums.PaymentStatus `gorm:"column:status_pembayaran;not null"`
	CreatedAt     time.Time           `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt     time.Time           `gorm:"column:updated_at;autoUpdateTime"`
}

// TableName keeps the legacy table naming.
func (Patient) TableName() string {
	return "pasien"
}
