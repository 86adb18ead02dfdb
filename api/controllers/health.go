package controllers

import (
	"context"
	"net/http"

	"github.com/tregohealth/trego-backend/api/responses"
	"github.com/tregohealth/trego-backend/pkg/config"
	pkgerrors "github.com/tregohealth/trego-backend/pkg/errors"
	"github.com/tregohealth/trego-backend/pkg/logger"
)

const envHeader = "X-Trego-Env"

// Pinger is the readiness probe contract satisfied by the DB and Redis
// clients.
type Pinger interface {
	Ping(ctx context.Context) error
}

func HealthLive(cfg *config.Config) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set(envHeader, cfg.App.Env)
		responses.WriteSuccess(w, map[string]string{"status": "live"})
	}
}

func HealthReady(cfg *config.Config, logg *logger.Logger, deps map[string]Pinger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set(envHeader, cfg.App.Env)

		for name, dep := range deps {
			if dep == nil {
				continue
			}
			if err := dep.Ping(r.Context()); err != nil {
				wrapped := pkgerrors.Wrap(pkgerrors.CodeDependency, err, name+" is not ready")
				responses.WriteError(r.Context(), logg, w, wrapped)
				return
			}
		}

		responses.WriteSuccess(w, map[string]string{"status": "ready"})
	}
}
