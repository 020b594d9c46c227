package routes

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/adirahman/klinik-backend/api/controllers"
	"github.com/adirahman/klinik-backend/api/middleware"
	dashboardsvc "github.com/adirahman/klinik-backend/internal/dashboard"
	medicinesvc "github.com/adirahman/klinik-backend/internal/medicines"
	patientsvc "github.com/adirahman/klinik-backend/internal/patients"
	receiptsvc "github.com/adirahman/klinik-backend/internal/receipts"
	usagesvc "github.com/adirahman/klinik-backend/internal/usages"
	"github.com/adirahman/klinik-backend/pkg/config"
	"github.com/adirahman/klinik-backend/pkg/db"
	"github.com/adirahman/klinik-backend/pkg/logger"
	"github.com/adirahman/klinik-backend/pkg/metrics"
)

// Services bundles the wired domain services consumed by the router.
type Services struct {
	Medicines medicinesvc.Service
	Usages    usagesvc.Service
	Patients  patientsvc.Service
	Dashboard dashboardsvc.Service
	Receipts  receiptsvc.Service
}

func NewRouter(
	cfg *config.Config,
	logg *logger.Logger,
	dbClient *db.Client,
	httpMetrics *metrics.HTTPMetrics,
	registry *prometheus.Registry,
	svcs Services,
) http.Handler {
	r := chi.NewRouter()
	r.Use(
		middleware.Recoverer(logg),
		middleware.RequestID(logg),
		middleware.Logging(logg),
		middleware.Metrics(httpMetrics),
		middleware.CORS(cfg.CORS.AllowedOrigins),
	)

	r.Route("/health", func(r chi.Router) {
		r.Get("/live", controllers.HealthLive(cfg))
		r.Get("/ready", controllers.HealthReady(cfg, dbClient, logg))
	})

	if registry != nil {
		r.Method(http.MethodGet, "/metrics", promhttp.HandlerFor(registry, promhttp.HandlerOpts{}))
	}

	r.Route("/api/v1", func(r chi.Router) {
		r.Route("/medicines", func(r chi.Router) {
			r.Get("/", controllers.ListMedicines(svcs.Medicines, logg))
			r.Post("/", controllers.CreateMedicine(svcs.Medicines, logg))
			r.Get("/low-stock", controllers.ListLowStockMedicines(svcs.Medicines, logg))
			r.Get("/{id}", controllers.GetMedicine(svcs.Medicines, logg))
			r.Patch("/{id}", controllers.UpdateMedicine(svcs.Medicines, logg))
			r.Delete("/{id}", controllers.DeleteMedicine(svcs.Medicines, logg))
		})

		r.Route("/usages", func(r chi.Router) {
			r.Get("/", controllers.ListUsages(svcs.Usages, logg))
			r.Post("/", controllers.RecordUsage(svcs.Usages, logg))
		})

		r.Route("/patients", func(r chi.Router) {
			r.Get("/", controllers.ListPatients(svcs.Patients, logg))
			r.Post("/", controllers.CreatePatient(svcs.Patients, logg))
			r.Get("/{id}", controllers.GetPatient(svcs.Patients, logg))
			r.Patch("/{id}", controllers.UpdatePatient(svcs.Patients, logg))
			r.Delete("/{id}", controllers.DeletePatient(svcs.Patients, logg))
			r.Post("/{id}/receipt", controllers.PatientReceipt(svcs.Receipts, logg))
		})

		r.Get("/dashboard/stats", controllers.DashboardStats(svcs.Dashboard, logg))
	})

	return r
}
