package controllers

import (
	"context"
	"net/http"

	"github.com/rentfleet/rentfleet-backend/api/responses"
	"github.com/rentfleet/rentfleet-backend/pkg/config"
	pkgerrors "github.com/rentfleet/rentfleet-backend/pkg/errors"
	"github.com/rentfleet/rentfleet-backend/pkg/logger"
)

type pinger interface {
	Ping(ctx context.Context) error
}

func HealthLive(cfg *config.Config) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("X-RentFleet-Env", cfg.App.Env)
		responses.WriteSuccess(w, http.StatusOK, map[string]string{"status": "live"})
	}
}

// HealthReady reports ready only when both backing stores answer.
func HealthReady(cfg *config.Config, db, cache pinger, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("X-RentFleet-Env", cfg.App.Env)

		if db != nil {
			if err := db.Ping(r.Context()); err != nil {
				responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "database unavailable"))
				return
			}
		}
		if cache != nil {
			if err := cache.Ping(r.Context()); err != nil {
				responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "redis unavailable"))
				return
			}
		}

		responses.WriteSuccess(w, http.StatusOK, map[string]string{"status": "ready"})
	}
}
