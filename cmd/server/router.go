package main

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/weilandt/circ-api/internal/api"
	apiMiddleware "github.com/weilandt/circ-api/internal/api/middleware"
)

// setupRouter creates and configures the application router with all routes
// and middleware.
func (app *application) setupRouter() http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)
	r.Use(apiMiddleware.TraceMiddleware)

	authHandler := api.NewAuthHandler(
		app.membership,
		app.circulation,
		app.tokenService,
		app.tokenLifetime(),
	)
	catalogHandler := api.NewCatalogHandler(app.circulation)
	circulationHandler := api.NewCirculationHandler(app.circulation, app.membership)
	authMiddleware := apiMiddleware.NewAuthMiddleware(app.tokenService)

	r.Route("/api", func(r chi.Router) {
		// Authentication endpoints (public)
		r.Post("/auth/register", authHandler.Register)
		r.Post("/auth/login", authHandler.Login)
		r.Post("/auth/refresh", authHandler.RefreshToken)

		// Protected routes
		r.Group(func(r chi.Router) {
			r.Use(authMiddleware.Authenticate)

			// Catalog
			r.Get("/media", catalogHandler.Search)

			// Circulation
			r.Post("/loans", circulationHandler.Borrow)
			r.Post("/loans/{id}/return", circulationHandler.Return)
			r.Get("/me/overdue", circulationHandler.Overdue)
			r.Post("/me/fines/pay", circulationHandler.PayFine)
			r.Post("/me/reminder", circulationHandler.Reminder)

			// Catalog management (admin only)
			r.Group(func(r chi.Router) {
				r.Use(authMiddleware.RequireAdmin)
				r.Post("/media", catalogHandler.CreateMedia)
				r.Put("/media/{id}/copies", catalogHandler.UpdateCopies)
			})
		})
	})

	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		if _, err := w.Write([]byte("OK")); err != nil {
			app.logger.Error("failed to write health check response", "error", err)
		}
	})

	return r
}
