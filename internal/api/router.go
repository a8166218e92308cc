/**
 * @description
 * This file sets up the HTTP router for the monetization-service. It defines the API
 * endpoints, associates them with their corresponding handlers, and applies any
 * necessary middleware, such as for authentication.
 *
 * @dependencies
 * - net/http: Standard Go library for HTTP functionality.
 * - github.com/go-chi/chi/v5: A lightweight and idiomatic router for Go.
 */

package api

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
)

// MonetizationRoutes creates and returns a new router for the monetization service.
func MonetizationRoutes(h *MonetizationHandlers, jwksURL string) http.Handler {
	r := chi.NewRouter()

	// Add standard middleware for logging, panic recovery, and timeouts.
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	r.Use(middleware.Timeout(60 * time.Second))
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   []string{"https://*", "http://*"},
		AllowedMethods:   []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type"},
		AllowCredentials: false,
		MaxAge:           300,
	}))

	// Health check endpoint
	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("healthy"))
	})

	// Group routes that require authentication.
	r.Group(func(r chi.Router) {
		r.Use(AuthMiddleware(jwksURL))

		// Fee settings and pricing
		r.Get("/settings", h.GetFeeSettingsHandler)
		r.Get("/products/quote", h.QuoteProductHandler)

		// Product provisioning and listings
		r.Post("/products", h.CreateProductHandler)
		r.Get("/products", h.ListProductsHandler)
		r.Get("/payment-links", h.ListPaymentLinksHandler)

		// Withdrawals
		r.Post("/payouts", h.SubmitWithdrawalHandler)
		r.Get("/payouts", h.ListPayoutsHandler)
		r.Get("/payouts/stats", h.PayoutStatsHandler)

		// Profile
		r.Put("/profile", h.SetupProfileHandler)
		r.Patch("/profile", h.EditProfileFieldHandler)
		r.Get("/profile", h.GetProfileHandler)
	})

	return r
}
