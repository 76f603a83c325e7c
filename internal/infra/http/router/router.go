// Package router assembles the HTTP surface: API routes, health, metrics and the call interface.
package router

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/xavierca1/leaddialer/internal/infra/http/handlers"
	"github.com/xavierca1/leaddialer/internal/infra/http/middleware"
)

type Deps struct {
	Leads        *handlers.LeadHandler
	Calls        *handlers.CallHandler
	Health       *handlers.HealthHandler
	UI           http.Handler
	AllowOrigins []string
}

func New(d Deps) http.Handler {
	r := chi.NewRouter()
	r.Use(chimw.RequestID)
	r.Use(chimw.RealIP)
	r.Use(chimw.Logger)
	r.Use(chimw.Recoverer)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: d.AllowOrigins,
		AllowedMethods: []string{"GET", "POST", "OPTIONS"},
		AllowedHeaders: []string{"Accept", "Content-Type", "X-Request-Id"},
	}))
	r.Use(middleware.Metrics)

	r.Get("/health", d.Health.Handle)
	r.Handle("/metrics", promhttp.Handler())

	r.Route("/api", func(r chi.Router) {
		r.Get("/leads", d.Leads.ListLeads)
		r.Get("/leads/{id}", d.Leads.GetLead)

		r.Route("/calls", func(r chi.Router) {
			r.Post("/start", d.Calls.StartCall)
			r.Post("/end", d.Calls.EndCall)
			r.Get("/twiml", d.Calls.TwiML)
			r.Post("/twiml", d.Calls.TwiML)
			r.Get("/{leadId}/status", d.Calls.CallStatus)
		})

		r.NotFound(func(w http.ResponseWriter, _ *http.Request) {
			w.Header().Set("Content-Type", "application/json")
			w.WriteHeader(http.StatusNotFound)
			w.Write([]byte(`{"error":"Not found"}`))
		})
	})

	if d.UI != nil {
		r.Handle("/*", d.UI)
	}
	return r
}
