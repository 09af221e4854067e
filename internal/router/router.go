package router

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/streetbite-pos/api/internal/auth"
	"github.com/streetbite-pos/api/internal/config"
	"github.com/streetbite-pos/api/internal/enum"
	"github.com/streetbite-pos/api/internal/handler"
	mw "github.com/streetbite-pos/api/internal/middleware"
	"github.com/streetbite-pos/api/internal/service"
	"github.com/streetbite-pos/api/internal/store"
)

// New creates a Chi router with all application routes wired up. The
// counter page, ticket board and report page all talk to the public
// routes; maintenance lives behind the admin session middleware.
func New(cfg *config.Config, st store.Store, sessions *auth.Sessions) chi.Router {
	r := chi.NewRouter()

	// Standard middleware
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)

	// CORS configuration
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   []string{"http://localhost:5173", "http://localhost:5000"},
		AllowedMethods:   []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type"},
		AllowCredentials: true,
		MaxAge:           300, // 5 minutes
	}))

	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"status":"ok"}`))
	})

	orderService := service.NewOrderService(st)
	reportService := service.NewReportService(st)

	// Public routes
	orderHandler := handler.NewOrderHandler(orderService)
	orderHandler.RegisterRoutes(r)

	ticketHandler := handler.NewTicketHandler(st)
	ticketHandler.RegisterRoutes(r)

	reportsHandler := handler.NewReportsHandler(reportService)
	reportsHandler.RegisterRoutes(r)

	// Admin routes
	adminHandler := handler.NewAdminHandler(st, sessions, cfg.JWTSecret, cfg.AdminPIN, cfg.AdminPINHash)
	adminHandler.RegisterPublicRoutes(r)

	r.Route("/admin", func(r chi.Router) {
		r.Use(mw.Authenticate(cfg.JWTSecret, sessions))
		r.Use(mw.RequireRole(enum.RoleAdmin))
		adminHandler.RegisterRoutes(r)
	})

	return r
}
