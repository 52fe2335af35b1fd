package controllers

import (
	"net/http"

	"github.com/trongle278/seasondecorbe-sub000/api/responses"
	"github.com/trongle278/seasondecorbe-sub000/pkg/config"
	"github.com/trongle278/seasondecorbe-sub000/pkg/db"
	"github.com/trongle278/seasondecorbe-sub000/pkg/logger"
	"github.com/trongle278/seasondecorbe-sub000/pkg/redis"
)

// HealthLive reports process liveness only.
func HealthLive(cfg *config.Config) http.HandlerFunc {
	return func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("X-SeasonDecor-Env", cfg.App.Env)
		responses.WriteSuccess(w, map[string]string{"status": "ok"})
	}
}

// HealthReady checks the dependencies a request actually needs.
func HealthReady(cfg *config.Config, logg *logger.Logger, dbP db.Pinger, redisP redis.Pinger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		checks := map[string]string{}
		healthy := true

		if dbP != nil {
			if err := dbP.Ping(ctx); err != nil {
				checks["database"] = err.Error()
				healthy = false
			} else {
				checks["database"] = "ok"
			}
		}
		if redisP != nil {
			if err := redisP.Ping(ctx); err != nil {
				checks["redis"] = err.Error()
				healthy = false
			} else {
				checks["redis"] = "ok"
			}
		}

		w.Header().Set("X-SeasonDecor-Env", cfg.App.Env)
		if !healthy {
			if logg != nil {
				logg.Warn(ctx, "readiness check failed")
			}
			responses.WriteSuccessStatus(w, http.StatusServiceUnavailable, checks)
			return
		}
		responses.WriteSuccess(w, checks)
	}
}
