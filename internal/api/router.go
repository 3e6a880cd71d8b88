// Package api provides the HTTP API for Waypoint.
package api

import (
	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/rs/zerolog"

	"github.com/waypoint-labs/waypoint/internal/amap"
	"github.com/waypoint-labs/waypoint/internal/api/handler"
	"github.com/waypoint-labs/waypoint/internal/api/middleware"
	"github.com/waypoint-labs/waypoint/internal/provider/resilience"
	"github.com/waypoint-labs/waypoint/internal/session"
)

// RouterConfig holds the dependencies of the router.
type RouterConfig struct {
	Version   string
	BuildTime string
	Logger    zerolog.Logger
	Metrics   *middleware.Metrics

	Maps     *amap.Client
	Engine   handler.ChatEngine
	Sessions *session.Store
	Registry *resilience.Registry
}

// NewRouter creates the chi router with all API routes configured.
func NewRouter(cfg RouterConfig) *chi.Mux {
	r := chi.NewRouter()

	// Global middleware, order matters.
	r.Use(middleware.RequestID)
	r.Use(middleware.Tracing())
	if cfg.Metrics != nil {
		r.Use(cfg.Metrics.Middleware())
	}
	r.Use(middleware.Logger(cfg.Logger))
	r.Use(middleware.Recovery(cfg.Logger))
	r.Use(chimiddleware.RealIP)
	r.Use(middleware.SecurityHeaders)
	r.Use(middleware.ContentTypeJSON)
	r.Use(middleware.RequireJSON)

	chatHandler := handler.NewChatHandler(cfg.Engine, cfg.Logger)
	geoHandler := handler.NewGeoHandler(cfg.Maps)
	routeHandler := handler.NewRouteHandler(cfg.Maps, cfg.Sessions)
	poiHandler := handler.NewPOIHandler(cfg.Maps, cfg.Sessions)
	opsHandler := handler.NewOpsHandler(cfg.Version, cfg.BuildTime, cfg.Registry)

	chatRateLimit := middleware.RateLimitByIP(middleware.ChatRateLimit)
	standardRateLimit := middleware.RateLimitByIP(middleware.StandardRateLimit)

	r.Route("/v1", func(r chi.Router) {
		// Chat drives model and provider calls, keep its budget tight.
		r.With(chatRateLimit).Post("/chat", chatHandler.Chat)

		r.Route("/geo", func(r chi.Router) {
			r.Use(standardRateLimit)
			r.Get("/geocode", geoHandler.Geocode)
		})

		r.Route("/routes", func(r chi.Router) {
			r.Use(standardRateLimit)
			r.Post("/", routeHandler.Plan)
			r.Get("/", routeHandler.Current)
		})

		r.Route("/pois", func(r chi.Router) {
			r.Use(standardRateLimit)
			r.Get("/", poiHandler.Around)
			r.Post("/along-route", poiHandler.AlongRoute)
		})

		r.Route("/ops", func(r chi.Router) {
			r.Get("/health", opsHandler.HealthCheck)
			r.Get("/ready", opsHandler.ReadinessCheck)
		})
	})

	return r
}
