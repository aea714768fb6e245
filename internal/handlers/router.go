package handlers

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/mmynk/splitchat/internal/middleware"
)

// Router assembles the API. All routes under /api/v1 except auth require
// a valid session token.
func (h *Handler) Router() http.Handler {
	r := chi.NewRouter()

	r.Use(chimw.RequestID)
	r.Use(chimw.RealIP)
	r.Use(middleware.LogRequests)
	r.Use(chimw.Recoverer)

	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   []string{"*"},
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type"},
		AllowCredentials: false,
		MaxAge:           300,
	}))

	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("OK"))
	})
	r.Handle("/metrics", promhttp.Handler())

	r.Route("/api/v1", func(r chi.Router) {
		r.Route("/auth", func(r chi.Router) {
			r.Post("/register", h.Register)
			r.Post("/login", h.Login)
		})

		r.Group(func(r chi.Router) {
			r.Use(middleware.RequireAuth(h.jwtManager))
			r.Use(chimw.Timeout(60 * time.Second))

			r.Route("/groups", func(r chi.Router) {
				r.Post("/", h.CreateGroup)
				r.Get("/", h.ListGroups)

				r.Route("/{groupID}", func(r chi.Router) {
					r.Get("/members", h.ListMembers)
					r.Post("/members", h.AddMember)
					r.Post("/messages", h.PostMessage)
					r.Get("/messages", h.History)
					r.Post("/expenses", h.AddExpense)
					r.Get("/balances", h.GroupBalances)
				})
			})

			r.Route("/me", func(r chi.Router) {
				r.Get("/balance", h.MyBalance)
				r.Get("/categories", h.MyCategories)
				r.Put("/upi", h.SetUPIHandle)
			})
		})

		// The websocket route authenticates via token query parameter
		// and must not run under the request timeout.
		r.Group(func(r chi.Router) {
			r.Use(middleware.RequireAuth(h.jwtManager))
			r.Get("/groups/{groupID}/ws", h.Subscribe)
		})
	})

	return r
}
