package controllers

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	usagesvc "github.com/adirahman/klinik-backend/internal/usages"
	pkgerrors "github.com/adirahman/klinik-backend/pkg/errors"
)

type stubUsageService struct {
	recorded *usagesvc.RecordInput
	listed   *usagesvc.ListFilter
	err      error
}

func (s *stubUsageService) Record(ctx context.Context, input usagesvc.RecordInput) (*usagesvc.UsageEventDTO, error) {
	s.recorded = &input
	if s.err != nil {
		return nil, s.err
	}
	return &usagesvc.UsageEventDTO{ID: 1, MedicineID: input.MedicineID, Quantity: input.Quantity}, nil
}

func (s *stubUsageService) List(ctx context.Context, filter usagesvc.ListFilter) ([]usagesvc.UsageEventDTO, error) {
	s.listed = &filter
	return nil, s.err
}

func TestRecordUsage(t *testing.T) {
	logg := testLogger()

	t.Run("success", func(t *testing.T) {
		body := `{"id_obat":5,"tanggal":"2025-03-10","jumlah_dipakai":30,"catatan":"tindakan pagi"}`
		req := httptest.NewRequest(http.MethodPost, "/api/v1/usages", strings.NewReader(body))
		rec := httptest.NewRecorder()

		stub := &stubUsageService{}
		RecordUsage(stub, logg).ServeHTTP(rec, req)

		if rec.Code != http.StatusCreated {
			t.Fatalf("expected 201, got %d: %s", rec.Code, rec.Body.String())
		}
		if stub.recorded == nil || stub.recorded.MedicineID != 5 || stub.recorded.Quantity != 30 {
			t.Fatalf("unexpected input: %+v", stub.recorded)
		}
		if stub.recorded.Note == nil || *stub.recorded.Note != "tindakan pagi" {
			t.Fatal("note not forwarded")
		}
	})

	t.Run("zero quantity", func(t *testing.T) {
		body := `{"id_obat":5,"tanggal":"2025-03-10","jumlah_dipakai":0}`
		req := httptest.NewRequest(http.MethodPost, "/api/v1/usages", strings.NewReader(body))
		rec := httptest.NewRecorder()

		RecordUsage(&stubUsageService{}, logg).ServeHTTP(rec, req)

		if rec.Code != http.StatusBadRequest {
			t.Fatalf("expected 400, got %d", rec.Code)
		}
	})

	t.Run("bad date", func(t *testing.T) {
		body := `{"id_obat":5,"tanggal":"10-03-2025","jumlah_dipakai":3}`
		req := httptest.NewRequest(http.MethodPost, "/api/v1/usages", strings.NewReader(body))
		rec := httptest.NewRecorder()

		RecordUsage(&stubUsageService{}, logg).ServeHTTP(rec, req)

		if rec.Code != http.StatusBadRequest {
			t.Fatalf("expected 400, got %d", rec.Code)
		}
	})

	t.Run("insufficient stock", func(t *testing.T) {
		body := `{"id_obat":5,"tanggal":"2025-03-10","jumlah_dipakai":30}`
		req := httptest.NewRequest(http.MethodPost, "/api/v1/usages", strings.NewReader(body))
		rec := httptest.NewRecorder()

		stub := &stubUsageService{
			err: pkgerrors.New(pkgerrors.CodeInsufficientStock, "insufficient stock: tersedia 5, diminta 30").
				WithDetails(map[string]any{"stok_tersedia": 5, "jumlah_dipakai": 30}),
		}
		RecordUsage(stub, logg).ServeHTTP(rec, req)

		if rec.Code != http.StatusUnprocessableEntity {
			t.Fatalf("expected 422, got %d", rec.Code)
		}
		var envelope struct {
			Error struct {
				Code    string         `json:"code"`
				Message string         `json:"message"`
				Details map[string]any `json:"details"`
			} `json:"error"`
		}
		if err := json.Unmarshal(rec.Body.Bytes(), &envelope); err != nil {
			t.Fatalf("decode: %v", err)
		}
		if envelope.Error.Code != "INSUFFICIENT_STOCK" {
			t.Fatalf("unexpected code %q", envelope.Error.Code)
		}
		if !strings.Contains(envelope.Error.Message, "tersedia 5") || !strings.Contains(envelope.Error.Message, "diminta 30") {
			t.Fatalf("message must carry both quantities, got %q", envelope.Error.Message)
		}
	})
}

func TestListUsagesFilters(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/api/v1/usages?id_obat=7&tanggal_mulai=2025-03-01&tanggal_akhir=2025-03-31", nil)
	rec := httptest.NewRecorder()

	stub := &stubUsageService{}
	ListUsages(stub, testLogger()).ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	if stub.listed == nil || stub.listed.MedicineID == nil || *stub.listed.MedicineID != 7 {
		t.Fatalf("medicine filter not forwarded: %+v", stub.listed)
	}
	if stub.listed.From == nil || stub.listed.To == nil {
		t.Fatal("date bounds not forwarded")
	}

	// A date-only end bound covers its whole day, so an event logged at
	// 2025-03-31 14:00 must still fall inside the inclusive range.
	bound := time.Date(2025, 3, 31, 14, 0, 0, 0, time.Local)
	if stub.listed.To.Before(bound) {
		t.Fatalf("end bound %v excludes events later on the bound day", stub.listed.To)
	}
	if !stub.listed.To.Before(time.Date(2025, 4, 1, 0, 0, 0, 0, time.Local)) {
		t.Fatalf("end bound %v spills into the next day", stub.listed.To)
	}
}

func TestListUsagesBadQuery(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/api/v1/usages?id_obat=seven", nil)
	rec := httptest.NewRecorder()

	ListUsages(&stubUsageService{}, testLogger()).ServeHTTP(rec, req)

	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", rec.Code)
	}
}
