package controllers

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"go.uber.org/multierr"

	"github.com/edsonmucavele/engacademy-backend/api/responses"
	"github.com/edsonmucavele/engacademy-backend/pkg/config"
	"github.com/edsonmucavele/engacademy-backend/pkg/db"
	"github.com/edsonmucavele/engacademy-backend/pkg/logger"
)

type redisPinger interface {
	Ping(ctx context.Context) error
}

func HealthLive(cfg *config.Config) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("X-EngAcademy-Env", cfg.App.Env)
		responses.WriteSuccess(w, map[string]string{"status": "live"})
	}
}

// HealthReady reports per-dependency status and degrades to 503 when any
// backing service is unreachable.
func HealthReady(cfg *config.Config, logg *logger.Logger, database db.Pinger, cache redisPinger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, cancel := context.WithTimeout(r.Context(), 3*time.Second)
		defer cancel()

		checks := map[string]string{}
		var unreachable error

		if database != nil {
			if err := database.Ping(ctx); err != nil {
				checks["db"] = "down"
				unreachable = multierr.Append(unreachable, fmt.Errorf("db: %w", err))
			} else {
				checks["db"] = "ok"
			}
		}

		if cache != nil {
			if err := cache.Ping(ctx); err != nil {
				checks["redis"] = "down"
				unreachable = multierr.Append(unreachable, fmt.Errorf("redis: %w", err))
			} else {
				checks["redis"] = "ok"
			}
		}

		w.Header().Set("X-EngAcademy-Env", cfg.App.Env)
		status := http.StatusOK
		payload := map[string]any{"status": "ready", "checks": checks}
		if unreachable != nil {
			status = http.StatusServiceUnavailable
			payload["status"] = "degraded"
			if logg != nil {
				logg.Error(ctx, "health.dependency_unreachable", unreachable)
			}
		}
		responses.WriteSuccessStatus(w, status, payload)
	}
}
