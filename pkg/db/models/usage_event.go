package models

import "time"

// UsageEvent records a medicine consumption. Rows are immutable once
// written; there is no update path.
type UsageEvent struct {
	ID         int64     `gorm:"column:id;primaryKey;autoIncrement"`
	MedicineID int64     `gorm:"column:id_obat;not null;index:idx_penggunaan_obat"`
	Date       time.Time `gorm:"column:tanggal;not null"`
	Quantity   int       `gorm:"column:jumlah_dipakai;not null"`
	Note       *string   `gorm:"column:catatan"`
	CreatedAt  time.Time `gorm:"column:created_at;autoCreateTime"`

	Medicine *Medicine `gorm:"foreignKey:MedicineID"`
}

// TableName keeps the legacy table naming.
func (UsageEvent) TableName() string {
	return "penggunaan_obat"
}
