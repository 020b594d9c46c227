package controllers

import (
	"net/http"

	"github.com/adirahman/klinik-backend/api/responses"
	"github.com/adirahman/klinik-backend/pkg/config"
	"github.com/adirahman/klinik-backend/pkg/db"
	pkgerrors "github.com/adirahman/klinik-backend/pkg/errors"
	"github.com/adirahman/klinik-backend/pkg/logger"
)

func HealthLive(cfg *config.Config) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("X-Klinik-Env", cfg.App.Env)
		responses.WriteSuccess(w, map[string]string{"status": "live"})
	}
}

// HealthReady reports readiness, including database reachability.
func HealthReady(cfg *config.Config, dbClient *db.Client, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("X-Klinik-Env", cfg.App.Env)

		if dbClient != nil {
			if err := dbClient.Ping(r.Context()); err != nil {
				responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "db unreachable"))
				return
			}
		}
		responses.WriteSuccess(w, map[string]string{"status": "ready"})
	}
}
