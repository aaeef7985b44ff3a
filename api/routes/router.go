package routes

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"

	"github.com/angelmondragon/stallpos/api/controllers"
	"github.com/angelmondragon/stallpos/api/middleware"
	"github.com/angelmondragon/stallpos/api/responses"
	"github.com/angelmondragon/stallpos/internal/store"
	"github.com/angelmondragon/stallpos/pkg/config"
	pkgerrors "github.com/angelmondragon/stallpos/pkg/errors"
	"github.com/angelmondragon/stallpos/pkg/logger"
	"github.com/angelmondragon/stallpos/pkg/metrics"
	"github.com/angelmondragon/stallpos/pkg/redis"
)

// NewRouter wires every HTTP route. redisClient and gatherer are optional:
// without redis, Idempotency-Key headers are ignored, and without a gatherer
// /metrics is not mounted.
func NewRouter(
	cfg *config.Config,
	logg *logger.Logger,
	st *store.Store,
	redisClient *redis.Client,
	httpMetrics *metrics.HTTPMetrics,
	gatherer prometheus.Gatherer,
) http.Handler {
	r := chi.NewRouter()
	r.Use(
		middleware.Recoverer(logg),
		middleware.RequestID(logg),
		middleware.Logging(logg),
		middleware.CORS(cfg.CORS.AllowedOrigins),
		middleware.Metrics(httpMetrics),
	)

	var idempotencyStore redis.IdempotencyStore
	readyDeps := map[string]controllers.Pinger{"store": st}
	if redisClient != nil {
		idempotencyStore = redisClient
		readyDeps["redis"] = redisClient
	}

	r.Route("/health", func(r chi.Router) {
		r.Get("/live", controllers.HealthLive(cfg))
		r.Get("/ready", controllers.HealthReady(cfg, logg, readyDeps))
	})
	if gatherer != nil {
		r.Method(http.MethodGet, "/metrics", metrics.Handler(gatherer))
	}

	r.Route("/api", func(r chi.Router) {
		r.Use(middleware.Idempotency(idempotencyStore, cfg.Idempotency.TTL, logg))

		r.Get("/state", controllers.GetState(st))
		r.Post("/state/pause", controllers.SetPause(st, logg))

		r.Route("/catalog", func(r chi.Router) {
			r.Get("/", controllers.GetCatalog(st))
			r.Put("/", controllers.ReplaceCatalog(st, logg))
			r.Post("/reset", controllers.ResetCatalog(st, logg))
			r.Get("/templates", controllers.ListTemplates(st))
			r.Get("/categories", controllers.ListCategories())
			r.Get("/products/{productId}", controllers.GetProduct(st, logg))
			r.Post("/products/{productId}/summary", controllers.SummarizeProduct(st, logg))
		})

		r.Route("/orders", func(r chi.Router) {
			r.Get("/", controllers.ListOrders(st, logg))
			r.Post("/", controllers.CreateOrder(st, logg))
			r.Post("/clear", controllers.ClearOrders(st, logg))
			r.Route("/{orderId}", func(r chi.Router) {
				r.Get("/", controllers.GetOrder(st, logg))
				r.Patch("/", controllers.PatchOrder(st, logg))
				r.Delete("/", controllers.DeleteOrder(st, logg))
				r.Post("/status", controllers.SetOrderStatus(st, logg))
				r.Post("/advance", controllers.AdvanceOrder(st, logg))
				r.Post("/revert", controllers.RevertOrder(st, logg))
				r.Post("/acknowledge", controllers.AcknowledgeOrder(st, logg))
			})
		})

		r.Route("/displays", func(r chi.Router) {
			r.Get("/kds", controllers.KitchenBoard(st, logg))
			r.Get("/call", controllers.CallView(st, logg))
		})
	})

	r.NotFound(func(w http.ResponseWriter, r *http.Request) {
		responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeNotFound, "route not found"))
	})
	r.MethodNotAllowed(func(w http.ResponseWriter, r *http.Request) {
		responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeValidation, "method not allowed").
			WithDetails(map[string]any{"method": r.Method}))
	})

	return r
}
