package medicine

import (
	"fmt"
	"testing"

	"github.com/adirahman/klinik-backend/pkg/db/models"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", t.Name())
	conn, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		SkipDefaultTransaction: true,
	})
	if err != nil {
		t.Fatalf("failed to open sqlite: %v", err)
	}
	if err := conn.AutoMigrate(&models.Medicine{}, &models.UsageEvent{}); err != nil {
		t.Fatalf("failed to migrate sqlite: %v", err)
	}
	return conn
}

func mustCreateMedicine(t *testing.T, conn *gorm.DB, code string, initial, available, threshold int) *models.Medicine {
	t.Helper()
	medicine := &models.Medicine{
		Name:           "Paracetamol " + code,
		Code:           code,
		Kind:           "Tablet",
		InitialStock:   initial,
		AvailableStock: available,
		Threshold:      threshold,
	}
	if err := conn.Create(medicine).Error; err != nil {
		t.Fatalf("create medicine: %v", err)
	}
	return medicine
}
