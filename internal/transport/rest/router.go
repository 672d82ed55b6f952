package rest

import (
	"log/slog"
	"net/http"

	"github.com/massiben/rh-backend/internal/auth"
	"github.com/massiben/rh-backend/internal/core/events"
	"github.com/massiben/rh-backend/internal/datastore"
	"github.com/massiben/rh-backend/internal/organization"
	"github.com/massiben/rh-backend/internal/resource"
	"github.com/massiben/rh-backend/internal/transport"
	"github.com/massiben/rh-backend/internal/transport/middleware"
	"github.com/massiben/rh-backend/internal/transport/swagger"
	"github.com/go-chi/chi"
)

// RegisterAllRoutes wires every endpoint onto the router. Specialized routes
// are registered alongside the generic fallback; chi's static-segment
// priority guarantees they win over /{collection} patterns.
func RegisterAllRoutes(router *chi.Mux, store *datastore.Store, bus *events.EventBus, logger *slog.Logger) {
	base := transport.NewBaseHandler(logger)
	healthHandler := NewHealthHandler(store)

	router.Use(middleware.RequestID)
	router.Use(middleware.SessionContext(store))
	router.Use(middleware.LoggingMiddleware(logger))
	router.Use(middleware.RecoveryMiddleware(logger))

	// OpenAPI spec and Swagger UI
	router.Get("/openapi.yml", func(w http.ResponseWriter, r *http.Request) {
		http.ServeFile(w, r, "./api/openapi.yml")
	})
	router.Handle("/swagger/*", swagger.Handler())

	router.Get("/health", healthHandler.healthCheckHandler)
	router.Get("/ping", healthHandler.pingHandler)

	// Auth routes (login/refresh/me)
	authService := auth.NewService(store, auth.NewBase36Generator(), logger)
	auth.NewHandler(base, authService).RegisterRoutes(router)

	// Descriptor-driven collections
	for _, desc := range resource.Catalog() {
		service := resource.NewService(store, desc, bus, logger)
		resource.NewHandler(base, service).RegisterRoutes(router)
	}

	// Headquarters/groups/members joins
	orgService := organization.NewService(store, logger)
	organization.NewHandler(base, orgService).RegisterRoutes(router)

	// Generic fallback for every other collection in the document
	resource.NewGenericHandler(store, bus, logger).RegisterRoutes(router)
}
