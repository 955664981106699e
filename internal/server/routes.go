package server

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

func (s *Server) Routes() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(logMiddleware(s.Logger))
	r.Use(middleware.Recoverer)

	r.Get("/health", s.handleHealth)
	r.Handle("/metrics", promhttp.HandlerFor(s.Registry, promhttp.HandlerOpts{}))
	r.Get("/events", s.handleEvents)
	r.Get("/ws", s.handleWS)

	r.Route("/api", func(r chi.Router) {
		r.Get("/state", s.handleState)
		r.Post("/reset", s.handleReset)
		r.Post("/reset-wins", s.handleResetWins)
		r.Get("/standings", s.handleStandings)

		r.Route("/players/{player}", func(r chi.Router) {
			r.Post("/floating", s.handleAddFloating)
			r.Post("/commit", s.handleCommit)
		})

		r.Route("/games", func(r chi.Router) {
			r.Get("/", s.handleListGames)
			r.Post("/", s.handleCreateGame)
			r.Put("/{id}", s.handleUpdateGame)
			r.Delete("/{id}", s.handleDeleteGame)
			r.Put("/{id}/name", s.handleRenameGame)
			r.Post("/{id}/activate", s.handleActivateGame)
		})
	})

	return r
}
