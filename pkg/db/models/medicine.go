package models

import "time"

// Medicine is an inventory item. AvailableStock must always equal
// InitialStock minus the summed usage events referencing the row.
type Medicine struct {
	ID             int64     `gorm:"column:id;primaryKey;autoIncrement"`
	Name           string    `gorm:"column:nama_obat;not null"`
	Code           string    `gorm:"column:kode_obat;not null;uniqueIndex:idx_obat_kode"`
	Kind           string    `gorm:"column:jenis;not null"`
	InitialStock   int       `gorm:"column:stok_awal;not null"`
	AvailableStock int       `gorm:"column:stok_tersedia;not null"`
	Threshold      int       `gorm:"column:ambang_batas;not null"`
	CreatedAt      time.Time `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt      time.Time `gorm:"column:updated_at;autoUpdateTime"`
}

// TableName keeps the legacy table naming.
func (Medicine) TableName() string {
	return "obat"
}

// ConsumedStock returns how much of the initial stock has been used.
func (m Medicine) ConsumedStock() int {
	return m.InitialStock - m.AvailableStock
}

// IsLowStock reports whether available stock sits at or below the threshold.
func (m Medicine) IsLowStock() bool {
	return m.AvailableStock <= m.Threshold
}
