// Package server exposes the repository statistics over HTTP for the project website.
package server

import (
	"context"
	"log"
	"net/http"
	"sync"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/go-chi/render"
	prom "github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/devnullvoid/pvetui-stats/internal/usecase"
)

// StatsProvider is the part of usecase.StatsService the handlers need.
type StatsProvider interface {
	Mount(ctx context.Context) *usecase.Tracker
}

// Handler serves the statistics API. It mounts once at construction so the
// first responses report loading=true until GitHub has answered.
type Handler struct {
	stats         StatsProvider
	registry      *prom.Registry
	allowedOrigin string
	logger        *log.Logger

	mu      sync.RWMutex
	tracker *usecase.Tracker
}

// NewHandler creates a Handler and starts the initial resolution.
func NewHandler(ctx context.Context, stats StatsProvider, registry *prom.Registry, allowedOrigin string, logger *log.Logger) *Handler {
	return &Handler{
		stats:         stats,
		registry:      registry,
		allowedOrigin: allowedOrigin,
		logger:        logger,
		tracker:       stats.Mount(ctx),
	}
}

// Router builds the chi router with all routes.
func (h *Handler) Router() http.Handler {
	r := chi.NewRouter()

	// Standard middleware
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.RequestLogger(&middleware.DefaultLogFormatter{Logger: h.logger, NoColor: true}))
	r.Use(middleware.Recoverer)

	// The static site calls the API from another origin. An empty origin disables CORS.
	if h.allowedOrigin != "" {
		r.Use(cors.Handler(cors.Options{
			AllowedOrigins: []string{h.allowedOrigin},
			AllowedMethods: []string{"GET", "POST", "OPTIONS"},
			AllowedHeaders: []string{"Accept", "Content-Type"},
			MaxAge:         300,
		}))
	}

	r.Get("/healthz", h.health)
	if h.registry != nil {
		r.Handle("/metrics", promhttp.HandlerFor(h.registry, promhttp.HandlerOpts{}))
	}

	r.Route("/api", func(r chi.Router) {
		r.Get("/stats", h.getStats)
		r.Post("/stats/refresh", h.refreshStats)
	})
	return r
}

func (h *Handler) health(w http.ResponseWriter, r *http.Request) {
	render.JSON(w, r, map[string]string{"status": "ok"})
}

func (h *Handler) current() *usecase.Tracker {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return h.tracker
}

// getStats returns whatever the current mount holds, loading or not.
func (h *Handler) getStats(w http.ResponseWriter, r *http.Request) {
	render.JSON(w, r, h.current().Current())
}

func (h *Handler) publish(tracker *usecase.Tracker) {
	h.mu.Lock()
	h.tracker = tracker
	h.mu.Unlock()
}

// refreshStats starts a new mount and waits for it. A fresh cache entry still
// answers without touching GitHub. The mount is published once it resolves,
// even when the client has hung up by then, so /api/stats never goes back to loading.
func (h *Handler) refreshStats(w http.ResponseWriter, r *http.Request) {
	tracker := h.stats.Mount(r.Context())
	go func() {
		<-tracker.Done()
		h.publish(tracker)
	}()

	stats, err := tracker.Wait(r.Context())
	if err != nil {
		h.logger.Printf("Refresh abandoned before resolution: %v", err)
		render.Status(r, http.StatusServiceUnavailable)
		render.JSON(w, r, map[string]string{"error": err.Error()})
		return
	}
	h.publish(tracker)
	render.JSON(w, r, stats)
}
