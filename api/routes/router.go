package routes

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/tregohealth/trego-backend/api/controllers"
	bucketcontrollers "github.com/tregohealth/trego-backend/api/controllers/buckets"
	substitutecontrollers "github.com/tregohealth/trego-backend/api/controllers/substitutes"
	"github.com/tregohealth/trego-backend/api/middleware"
	"github.com/tregohealth/trego-backend/internal/allocation"
	"github.com/tregohealth/trego-backend/internal/substitutes"
	"github.com/tregohealth/trego-backend/pkg/config"
	"github.com/tregohealth/trego-backend/pkg/logger"
)

func NewRouter(
	cfg *config.Config,
	logg *logger.Logger,
	dbPinger controllers.Pinger,
	redisPinger controllers.Pinger,
	allocationService allocation.Service,
	substituteService substitutes.Service,
	registry *prometheus.Registry,
) http.Handler {
	r := chi.NewRouter()
	r.Use(
		middleware.Recoverer(logg),
		middleware.RequestID(logg),
		middleware.Logging(logg),
		middleware.CORS(),
	)

	r.Route("/health", func(r chi.Router) {
		r.Get("/live", controllers.HealthLive(cfg))
		r.Get("/ready", controllers.HealthReady(cfg, logg, map[string]controllers.Pinger{
			"postgres": dbPinger,
			"redis":    redisPinger,
		}))
	})

	if registry != nil {
		r.Method(http.MethodGet, "/metrics", promhttp.HandlerFor(registry, promhttp.HandlerOpts{}))
	}

	r.Route("/api/v1", func(r chi.Router) {
		r.Route("/buckets", func(r chi.Router) {
			r.Post("/", bucketcontrollers.Allocate(allocationService, logg))
			r.Post("/preorder", bucketcontrollers.AllocateFromCart(allocationService, logg))
		})
		r.Get("/substitutes/{medicineId}", substitutecontrollers.List(substituteService, logg))
	})

	return r
}
