package usage

import (
	"context"
	"testing"
	"time"

	medicine "github.com/adirahman/klinik-backend/internal/medicines"
	"github.com/adirahman/klinik-backend/pkg/db"
	"github.com/adirahman/klinik-backend/pkg/db/models"
	pkgerrors "github.com/adirahman/klinik-backend/pkg/errors"
	"gorm.io/gorm"
)

func newTestService(t *testing.T, conn *gorm.DB) Service {
	t.Helper()
	svc, err := NewService(NewRepository(conn), medicine.NewRepository(conn), db.NewWithConn(conn))
	if err != nil {
		t.Fatalf("new service: %v", err)
	}
	return svc
}

func TestRecordDeductsStock(t *testing.T) {
	conn := newTestDB(t)
	svc := newTestService(t, conn)
	ctx := context.Background()

	med := mustCreateMedicine(t, conn, "REC-001", 100, 100, 10)

	note := "tindakan pagi"
	dto, err := svc.Record(ctx, RecordInput{
		MedicineID: med.ID,
		Date:       time.Date(2025, 3, 10, 9, 0, 0, 0, time.Local),
		Quantity:   30,
		Note:       &note,
	})
	if err != nil {
		t.Fatalf("record: %v", err)
	}
	if dto.Quantity != 30 || dto.MedicineID != med.ID {
		t.Fatalf("unexpected event: %+v", dto)
	}
	if dto.MedicineName != med.Name {
		t.Fatalf("expected medicine name %q, got %q", med.Name, dto.MedicineName)
	}

	reloaded, err := medicine.NewRepository(conn).FindByID(ctx, med.ID)
	if err != nil {
		t.Fatalf("reload: %v", err)
	}
	if reloaded.AvailableStock != 70 {
		t.Fatalf("expected stok_tersedia 70, got %d", reloaded.AvailableStock)
	}
	if reloaded.InitialStock != 100 {
		t.Fatalf("stok_awal must stay at 100, got %d", reloaded.InitialStock)
	}
}

// contendedStockStore reports healthy stock but always loses the guarded
// decrement, as if another writer drains the row on every attempt.
type contendedStockStore struct {
	stock models.Medicine
	loads int
}

func (s *contendedStockStore) WithTx(tx *gorm.DB) stockStore { return s }

func (s *contendedStockStore) FindByID(ctx context.Context, id int64) (*models.Medicine, error) {
	s.loads++
	row := s.stock
	return &row, nil
}

func (s *contendedStockStore) DecrementStock(ctx context.Context, id int64, qty int) (bool, error) {
	return false, nil
}

func TestRecordSurfacesConflictAfterBoundedRetries(t *testing.T) {
	conn := newTestDB(t)
	ctx := context.Background()

	med := mustCreateMedicine(t, conn, "CONF-001", 100, 100, 10)
	store := &contendedStockStore{stock: *med}
	svc := &service{repo: NewRepository(conn), medicines: store, dbClient: db.NewWithConn(conn)}

	_, err := svc.Record(ctx, RecordInput{MedicineID: med.ID, Quantity: 5})
	typed := pkgerrors.As(err)
	if typed == nil || typed.Code() != pkgerrors.CodeTransactionConflict {
		t.Fatalf("expected transaction conflict, got %v", err)
	}
	if store.loads != maxRecordAttempts {
		t.Fatalf("expected %d attempts, got %d", maxRecordAttempts, store.loads)
	}

	// Every attempt rolled back, so no event may survive.
	rows, err := NewRepository(conn).List(ctx, ListFilter{})
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(rows) != 0 {
		t.Fatalf("expected no events after rolled-back attempts, got %d", len(rows))
	}
}

func TestRecordInsufficientStockLeavesNoTrace(t *testing.T) {
	conn := newTestDB(t)
	svc := newTestService(t, conn)
	ctx := context.Background()

	med := mustCreateMedicine(t, conn, "REC-002", 10, 5, 2)

	_, err := svc.Record(ctx, RecordInput{MedicineID: med.ID, Date: time.Now(), Quantity: 6})
	typed := pkgerrors.As(err)
	if typed == nil || typed.Code() != pkgerrors.CodeInsufficientStock {
		t.Fatalf("expected insufficient stock error, got %v", err)
	}

	count, err := NewRepository(conn).CountByMedicineID(ctx, med.ID)
	if err != nil {
		t.Fatalf("count: %v", err)
	}
	if count != 0 {
		t.Fatalf("refused usage must not persist an event, found %d", count)
	}

	reloaded, err := medicine.NewRepository(conn).FindByID(ctx, med.ID)
	if err != nil {
		t.Fatalf("reload: %v", err)
	}
	if reloaded.AvailableStock != 5 {
		t.Fatalf("stock changed on refused usage: %d", reloaded.AvailableStock)
	}
}

func TestRecordExactRemainingStock(t *testing.T) {
	conn := newTestDB(t)
	svc := newTestService(t, conn)
	ctx := context.Background()

	med := mustCreateMedicine(t, conn, "REC-003", 10, 4, 2)

	if _, err := svc.Record(ctx, RecordInput{MedicineID: med.ID, Date: time.Now(), Quantity: 4}); err != nil {
		t.Fatalf("record: %v", err)
	}

	reloaded, err := medicine.NewRepository(conn).FindByID(ctx, med.ID)
	if err != nil {
		t.Fatalf("reload: %v", err)
	}
	if reloaded.AvailableStock != 0 {
		t.Fatalf("expected stok_tersedia 0, got %d", reloaded.AvailableStock)
	}
}

func TestRecordRejectsNonPositiveQuantity(t *testing.T) {
	conn := newTestDB(t)
	svc := newTestService(t, conn)

	for _, qty := range []int{0, -3} {
		_, err := svc.Record(context.Background(), RecordInput{MedicineID: 1, Date: time.Now(), Quantity: qty})
		typed := pkgerrors.As(err)
		if typed == nil || typed.Code() != pkgerrors.CodeValidation {
			t.Fatalf("qty %d: expected validation error, got %v", qty, err)
		}
	}
}

func TestRecordUnknownMedicine(t *testing.T) {
	conn := newTestDB(t)
	svc := newTestService(t, conn)

	_, err := svc.Record(context.Background(), RecordInput{MedicineID: 424242, Date: time.Now(), Quantity: 1})
	typed := pkgerrors.As(err)
	if typed == nil || typed.Code() != pkgerrors.CodeNotFound {
		t.Fatalf("expected not found, got %v", err)
	}
}

func TestRecordSequentialOverdraw(t *testing.T) {
	conn := newTestDB(t)
	svc := newTestService(t, conn)
	ctx := context.Background()

	med := mustCreateMedicine(t, conn, "REC-004", 10, 10, 2)

	// Four withdrawals of 3 against a stock of 10: the fourth must fail and
	// the ledger must still reconcile.
	var failures int
	for i := 0; i < 4; i++ {
		_, err := svc.Record(ctx, RecordInput{MedicineID: med.ID, Date: time.Now(), Quantity: 3})
		if err != nil {
			typed := pkgerrors.As(err)
			if typed == nil || typed.Code() != pkgerrors.CodeInsufficientStock {
				t.Fatalf("attempt %d: unexpected error %v", i, err)
			}
			failures++
		}
	}
	if failures != 1 {
		t.Fatalf("expected exactly one refused withdrawal, got %d", failures)
	}

	reloaded, err := medicine.NewRepository(conn).FindByID(ctx, med.ID)
	if err != nil {
		t.Fatalf("reload: %v", err)
	}
	if reloaded.AvailableStock != 1 {
		t.Fatalf("expected stok_tersedia 1, got %d", reloaded.AvailableStock)
	}

	var events []models.UsageEvent
	if err := conn.Where("id_obat = ?", med.ID).Find(&events).Error; err != nil {
		t.Fatalf("load events: %v", err)
	}
	var used int
	for _, ev := range events {
		used += ev.Quantity
	}
	if reloaded.InitialStock-used != reloaded.AvailableStock {
		t.Fatalf("ledger out of balance: initial %d, used %d, available %d",
			reloaded.InitialStock, used, reloaded.AvailableStock)
	}
}

func TestListFiltersAndOrder(t *testing.T) {
	conn := newTestDB(t)
	svc := newTestService(t, conn)
	ctx := context.Background()

	medA := mustCreateMedicine(t, conn, "LST-001", 100, 100, 10)
	medB := mustCreateMedicine(t, conn, "LST-002", 100, 100, 10)

	dates := []time.Time{
		time.Date(2025, 3, 1, 8, 0, 0, 0, time.Local),
		time.Date(2025, 3, 5, 8, 0, 0, 0, time.Local),
		time.Date(2025, 3, 9, 8, 0, 0, 0, time.Local),
	}
	for _, d := range dates {
		if _, err := svc.Record(ctx, RecordInput{MedicineID: medA.ID, Date: d, Quantity: 2}); err != nil {
			t.Fatalf("record: %v", err)
		}
	}
	if _, err := svc.Record(ctx, RecordInput{MedicineID: medB.ID, Date: dates[1], Quantity: 5}); err != nil {
		t.Fatalf("record: %v", err)
	}

	all, err := svc.List(ctx, ListFilter{})
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(all) != 4 {
		t.Fatalf("expected 4 events, got %d", len(all))
	}
	for i := 1; i < len(all); i++ {
		if all[i].Date.After(all[i-1].Date) {
			t.Fatalf("events not ordered newest first: %v then %v", all[i-1].Date, all[i].Date)
		}
	}

	byMed, err := svc.List(ctx, ListFilter{MedicineID: &medB.ID})
	if err != nil {
		t.Fatalf("list by medicine: %v", err)
	}
	if len(byMed) != 1 || byMed[0].Quantity != 5 {
		t.Fatalf("unexpected medicine filter result: %+v", byMed)
	}

	from := time.Date(2025, 3, 5, 0, 0, 0, 0, time.Local)
	to := time.Date(2025, 3, 5, 23, 59, 59, 0, time.Local)
	window, err := svc.List(ctx, ListFilter{From: &from, To: &to})
	if err != nil {
		t.Fatalf("list window: %v", err)
	}
	if len(window) != 2 {
		t.Fatalf("expected 2 events in inclusive window, got %d", len(window))
	}
}

func TestSumQuantityBetweenExclusiveUpperBound(t *testing.T) {
	conn := newTestDB(t)
	repo := NewRepository(conn)
	svc := newTestService(t, conn)
	ctx := context.Background()

	med := mustCreateMedicine(t, conn, "SUM-001", 100, 100, 10)

	dayStart := time.Date(2025, 3, 10, 0, 0, 0, 0, time.Local)
	nextDay := dayStart.AddDate(0, 0, 1)

	if _, err := svc.Record(ctx, RecordInput{MedicineID: med.ID, Date: dayStart.Add(9 * time.Hour), Quantity: 4}); err != nil {
		t.Fatalf("record: %v", err)
	}
	if _, err := svc.Record(ctx, RecordInput{MedicineID: med.ID, Date: dayStart.Add(15 * time.Hour), Quantity: 6}); err != nil {
		t.Fatalf("record: %v", err)
	}
	// Falls on the next day, outside the window.
	if _, err := svc.Record(ctx, RecordInput{MedicineID: med.ID, Date: nextDay, Quantity: 9}); err != nil {
		t.Fatalf("record: %v", err)
	}

	total, err := repo.SumQuantityBetween(ctx, dayStart, nextDay)
	if err != nil {
		t.Fatalf("sum: %v", err)
	}
	if total != 10 {
		t.Fatalf("expected 10, got %d", total)
	}
}
