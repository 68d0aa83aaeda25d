// Package server exposes the betting services over a JSON HTTP API.
package server

import (
	"net/http"
	"time"

	"barrierbet/domain/interfaces"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const requestTimeout = 30 * time.Second

// Services are the domain services the HTTP API delegates to
type Services struct {
	Auth       interfaces.AuthService
	Settlement interfaces.SessionSettlement
	Ledger     interfaces.AccountLedger
	Users      interfaces.UserService
	Stats      interfaces.StatsService
	Admin      interfaces.AdminService
}

// Server is the barrierbet HTTP API server
type Server struct {
	services Services
	registry *prometheus.Registry
	metrics  *HTTPMetrics
	ready    func() bool
}

// NewServer creates a server with its own Prometheus registry
func NewServer(services Services) *Server {
	registry := prometheus.NewRegistry()
	registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)

	return &Server{
		services: services,
		registry: registry,
		metrics:  NewHTTPMetrics(registry),
		ready:    func() bool { return true },
	}
}

// SetReadiness sets the check behind /health. The server reports healthy
// until one is set.
func (s *Server) SetReadiness(ready func() bool) { s.ready = ready }

// Registry returns the Prometheus registry served on /metrics
func (s *Server) Registry() *prometheus.Registry { return s.registry }

// Handler returns the chi router with all routes mounted
func (s *Server) Handler() http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(requestLogger)
	r.Use(middleware.Recoverer)
	r.Use(middleware.Timeout(requestTimeout))
	r.Use(s.metrics.Middleware)

	r.Get("/health", s.handleHealth)
	r.Handle("/metrics", promhttp.HandlerFor(s.registry, promhttp.HandlerOpts{Registry: s.registry}))

	r.Route("/api", func(r chi.Router) {
		r.Route("/auth", func(r chi.Router) {
			r.Post("/register", s.handleRegister)
			r.Post("/login", s.handleLogin)
			r.Post("/logout", s.handleLogout)
			r.With(s.authenticate).Get("/verify", s.handleVerify)
		})

		r.Group(func(r chi.Router) {
			r.Use(s.authenticate)

			r.Route("/game", func(r chi.Router) {
				r.Post("/bet", s.handlePlaceBet)
				r.Post("/start", s.handlePlaceBet)
				r.Post("/result", s.handleSubmitResult)
				r.Post("/end", s.handleSubmitResult)
				r.Get("/balance", s.handleBalance)
			})

			r.Get("/history", s.handleHistory)
			r.Delete("/history", s.handleClearHistory)
			r.Get("/stats", s.handleStats)
			r.Get("/profile", s.handleProfile)
			r.Get("/profile/profile", s.handleProfile)
			r.Post("/profile", s.handleUpdateProfile)

			r.Route("/admin", func(r chi.Router) {
				r.Use(requireAdmin)
				r.Get("/users", s.handleListUsers)
				r.Get("/statistics", s.handleStatistics)
				r.Post("/users/{id}/adjust-balance", s.handleAdjustBalance)
				r.Post("/user/{id}/adjust-balance", s.handleAdjustBalance)
			})
		})
	})

	return r
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	if !s.ready() {
		writeJSON(w, http.StatusServiceUnavailable, map[string]string{"status": "unavailable"})
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}
