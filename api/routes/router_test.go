package routes

import (
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	dashboardsvc "github.com/adirahman/klinik-backend/internal/dashboard"
	medicinesvc "github.com/adirahman/klinik-backend/internal/medicines"
	patientsvc "github.com/adirahman/klinik-backend/internal/patients"
	receiptsvc "github.com/adirahman/klinik-backend/internal/receipts"
	usagesvc "github.com/adirahman/klinik-backend/internal/usages"
	"github.com/adirahman/klinik-backend/pkg/config"
	"github.com/adirahman/klinik-backend/pkg/db"
	"github.com/adirahman/klinik-backend/pkg/db/models"
	"github.com/adirahman/klinik-backend/pkg/logger"
	"github.com/adirahman/klinik-backend/pkg/metrics"
	"github.com/prometheus/client_golang/prometheus"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

// newTestServer wires the full stack against an in-memory database.
func newTestServer(t *testing.T) *httptest.Server {
	t.Helper()

	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", t.Name())
	conn, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{SkipDefaultTransaction: true})
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	if err := conn.AutoMigrate(&models.Medicine{}, &models.UsageEvent{}, &models.Patient{}); err != nil {
		t.Fatalf("migrate: %v", err)
	}

	logg := logger.New(logger.Options{ServiceName: "router-test", Output: io.Discard})
	dbClient := db.NewWithConn(conn)

	medicineRepo := medicinesvc.NewRepository(conn)
	usageRepo := usagesvc.NewRepository(conn)
	patientRepo := patientsvc.NewRepository(conn)

	medicineService, err := medicinesvc.NewService(medicineRepo, dbClient, usageRepo)
	if err != nil {
		t.Fatalf("medicine service: %v", err)
	}
	usageService, err := usagesvc.NewService(usageRepo, medicineRepo, dbClient)
	if err != nil {
		t.Fatalf("usage service: %v", err)
	}
	patientService, err := patientsvc.NewService(patientRepo)
	if err != nil {
		t.Fatalf("patient service: %v", err)
	}
	dashboardService, err := dashboardsvc.NewService(medicineRepo, patientRepo, usageRepo, nil, 0, logg)
	if err != nil {
		t.Fatalf("dashboard service: %v", err)
	}
	receiptService, err := receiptsvc.NewService(patientRepo, "KWT")
	if err != nil {
		t.Fatalf("receipt service: %v", err)
	}

	registry := prometheus.NewRegistry()
	cfg := &config.Config{}
	cfg.App.Env = config.AppEnvDev

	handler := NewRouter(cfg, logg, dbClient, metrics.NewHTTPMetrics(registry), registry, Services{
		Medicines: medicineService,
		Usages:    usageService,
		Patients:  patientService,
		Dashboard: dashboardService,
		Receipts:  receiptService,
	})

	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)
	return server
}

func postJSON(t *testing.T, server *httptest.Server, path, body string) (*http.Response, map[string]any) {
	t.Helper()
	resp, err := http.Post(server.URL+path, "application/json", strings.NewReader(body))
	if err != nil {
		t.Fatalf("POST %s: %v", path, err)
	}
	t.Cleanup(func() { resp.Body.Close() })
	var payload map[string]any
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		t.Fatalf("decode %s: %v", path, err)
	}
	return resp, payload
}

func getJSON(t *testing.T, server *httptest.Server, path string) (*http.Response, map[string]any) {
	t.Helper()
	resp, err := http.Get(server.URL + path)
	if err != nil {
		t.Fatalf("GET %s: %v", path, err)
	}
	t.Cleanup(func() { resp.Body.Close() })
	var payload map[string]any
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		t.Fatalf("decode %s: %v", path, err)
	}
	return resp, payload
}

func TestInventoryFlowEndToEnd(t *testing.T) {
	server := newTestServer(t)

	resp, payload := postJSON(t, server, "/api/v1/medicines",
		`{"nama_obat":"Paracetamol 500mg","kode_obat":"PCT-500","jenis":"Tablet","stok_awal":100,"ambang_batas":10}`)
	if resp.StatusCode != http.StatusCreated {
		t.Fatalf("create medicine: %d %v", resp.StatusCode, payload)
	}
	data := payload["data"].(map[string]any)
	medicineID := int64(data["id"].(float64))
	if data["stok_tersedia"].(float64) != 100 {
		t.Fatalf("expected stok_tersedia 100, got %v", data["stok_tersedia"])
	}

	// Use 95 units, leaving 5 (below the threshold of 10).
	resp, payload = postJSON(t, server, "/api/v1/usages",
		fmt.Sprintf(`{"id_obat":%d,"tanggal":"2025-03-10","jumlah_dipakai":95}`, medicineID))
	if resp.StatusCode != http.StatusCreated {
		t.Fatalf("record usage: %d %v", resp.StatusCode, payload)
	}

	resp, payload = getJSON(t, server, fmt.Sprintf("/api/v1/medicines/%d", medicineID))
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("get medicine: %d", resp.StatusCode)
	}
	data = payload["data"].(map[string]any)
	if data["stok_tersedia"].(float64) != 5 || data["stok_menipis"] != true {
		t.Fatalf("expected 5 units and low stock flag, got %v", data)
	}

	resp, _ = getJSON(t, server, "/api/v1/medicines/low-stock")
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("low stock list: %d", resp.StatusCode)
	}

	resp, payload = getJSON(t, server, "/api/v1/medicines?stok_rendah=true")
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("filtered list: %d", resp.StatusCode)
	}
	if rows := payload["data"].([]any); len(rows) != 1 {
		t.Fatalf("expected 1 low-stock medicine, got %d", len(rows))
	}

	// Overdraw must be refused.
	resp, payload = postJSON(t, server, "/api/v1/usages",
		fmt.Sprintf(`{"id_obat":%d,"tanggal":"2025-03-11","jumlah_dipakai":6}`, medicineID))
	if resp.StatusCode != http.StatusUnprocessableEntity {
		t.Fatalf("expected 422 on overdraw, got %d %v", resp.StatusCode, payload)
	}

	// Deleting a medicine with history must be refused.
	req, err := http.NewRequest(http.MethodDelete, fmt.Sprintf("%s/api/v1/medicines/%d", server.URL, medicineID), nil)
	if err != nil {
		t.Fatalf("build delete: %v", err)
	}
	delResp, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatalf("delete: %v", err)
	}
	defer delResp.Body.Close()
	if delResp.StatusCode != http.StatusConflict {
		t.Fatalf("expected 409 on delete with history, got %d", delResp.StatusCode)
	}
}

func TestPatientFlowEndToEnd(t *testing.T) {
	server := newTestServer(t)

	resp, payload := postJSON(t, server, "/api/v1/patients",
		`{"nama":"Siti Aminah","umur":34,"jenis_kelamin":"P","alamat":"Jl. Melati No. 4","kontak":"0812","tanggal_tindakan":"2025-03-12","biaya":"150000.50","status_pembayaran":"LUNAS"}`)
	if resp.StatusCode != http.StatusCreated {
		t.Fatalf("create patient: %d %v", resp.StatusCode, payload)
	}
	patientID := int64(payload["data"].(map[string]any)["id"].(float64))

	resp, payload = postJSON(t, server, fmt.Sprintf("/api/v1/patients/%d/receipt", patientID), "")
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("receipt: %d %v", resp.StatusCode, payload)
	}
	receipt := payload["data"].(map[string]any)
	number := receipt["nomor_kwitansi"].(string)
	if !strings.HasPrefix(number, fmt.Sprintf("KWT-%04d-", patientID)) {
		t.Fatalf("unexpected receipt number %q", number)
	}

	resp, payload = getJSON(t, server, "/api/v1/dashboard/stats")
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("dashboard: %d", resp.StatusCode)
	}
	stats := payload["data"].(map[string]any)
	if stats["total_pasien"].(float64) != 1 {
		t.Fatalf("expected total_pasien 1, got %v", stats["total_pasien"])
	}
	for _, key := range []string{"total_obat", "obat_hampir_habis", "total_penggunaan_hari_ini"} {
		if _, ok := stats[key]; !ok {
			t.Fatalf("stats payload missing %q: %v", key, stats)
		}
	}
}

func TestHealthAndMetricsEndpoints(t *testing.T) {
	server := newTestServer(t)

	resp, _ := getJSON(t, server, "/health/live")
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("live: %d", resp.StatusCode)
	}
	if got := resp.Header.Get("X-Klinik-Env"); got != config.AppEnvDev {
		t.Fatalf("unexpected env header %q", got)
	}

	resp, _ = getJSON(t, server, "/health/ready")
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("ready: %d", resp.StatusCode)
	}

	metricsResp, err := http.Get(server.URL + "/metrics")
	if err != nil {
		t.Fatalf("metrics: %v", err)
	}
	defer metricsResp.Body.Close()
	if metricsResp.StatusCode != http.StatusOK {
		t.Fatalf("metrics: %d", metricsResp.StatusCode)
	}
	body, err := io.ReadAll(metricsResp.Body)
	if err != nil {
		t.Fatalf("read metrics: %v", err)
	}
	if !strings.Contains(string(body), "http_requests_total") {
		t.Fatal("expected request counter in metrics exposition")
	}
}
