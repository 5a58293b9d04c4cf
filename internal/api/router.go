package api

import (
	"encoding/json"
	"net/http"
	"runtime"
	"sync/atomic"
	"time"

	"airlock/internal/api/handlers"
	mw "airlock/internal/api/middleware"
	"airlock/internal/buildconfig"
	"airlock/internal/config"
	"airlock/internal/service"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"go.uber.org/zap"
)

// App holds the router and the simulation host for lifecycle management.
type App struct {
	Router       *chi.Mux
	Simulations  *service.SimulationService
	startTime    time.Time
	requestCount atomic.Int64
	errorCount   atomic.Int64
}

func NewApp(logger *zap.Logger, sinkFor service.SinkFactory) *App {
	// Services
	simSvc := service.NewSimulationService(logger, sinkFor)

	// Handlers
	simHandler := handlers.NewSimulationHandler(simSvc)
	mindHandler := handlers.NewMindHandler(simSvc)

	r := chi.NewRouter()

	app := &App{
		Router:      r,
		Simulations: simSvc,
		startTime:   time.Now(),
	}

	// Metrics collector for middleware
	metricsCollector := mw.NewMetricsCollector(&app.requestCount, &app.errorCount)

	// Global middleware (order matters)
	r.Use(mw.RequestID)
	r.Use(middleware.RealIP)
	r.Use(metricsCollector.Middleware)
	r.Use(mw.Logging(logger))
	r.Use(middleware.Recoverer)
	r.Use(mw.RateLimit(config.RateLimitRPS(), config.RateLimitBurst()))

	r.Get("/health", healthHandler())
	r.Get("/metrics", app.metricsHandler())

	r.Route("/v1/simulations", func(r chi.Router) {
		r.Post("/", simHandler.Create)
		r.Route("/{id}", func(r chi.Router) {
			r.Get("/", simHandler.GetState)
			r.Delete("/", simHandler.Delete)
			r.Post("/actions", simHandler.ApplyAction)
			r.Post("/advance", simHandler.Advance)
			r.Post("/votes", simHandler.CastVote)
			r.Get("/events", simHandler.ListEvents)
			r.Get("/result", simHandler.GetResult)
			r.Get("/agents/{agentID}/mind", mindHandler.GetMind)
		})
	})

	return app
}

// NewRouter returns just the chi.Mux for callers that manage no lifecycle.
func NewRouter(logger *zap.Logger, sinkFor service.SinkFactory) *chi.Mux {
	return NewApp(logger, sinkFor).Router
}

func healthHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		_ = json.NewEncoder(w).Encode(map[string]string{
			"status":  "ok",
			"version": buildconfig.Version(),
			"commit":  buildconfig.Commit(),
		})
	}
}

func (app *App) metricsHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var memStats runtime.MemStats
		runtime.ReadMemStats(&memStats)

		uptime := time.Since(app.startTime)

		response := map[string]any{
			"uptime_seconds":   uptime.Seconds(),
			"uptime_human":     uptime.Round(time.Second).String(),
			"request_count":    app.requestCount.Load(),
			"error_count":      app.errorCount.Load(),
			"live_simulations": app.Simulations.Count(),
			"goroutines":       runtime.NumGoroutine(),
			"memory": map[string]any{
				"alloc_mb":       float64(memStats.Alloc) / 1024 / 1024,
				"total_alloc_mb": float64(memStats.TotalAlloc) / 1024 / 1024,
				"sys_mb":         float64(memStats.Sys) / 1024 / 1024,
				"num_gc":         memStats.NumGC,
			},
			"go_version": runtime.Version(),
		}

		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		_ = json.NewEncoder(w).Encode(response)
	}
}
