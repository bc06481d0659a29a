package server

import (
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
)

func (s *Server) registerRoutes() {
	r := s.router
	r.Use(requestID)
	r.Use(s.requestLogger)
	r.Use(middleware.Recoverer)

	s.registerHealthRoutes()

	r.Route("/v1", func(r chi.Router) {
		r.Post("/layout", s.handleLayout)
		r.Post("/layout.svg", s.handleArtifact(svgArtifact))
		r.Post("/stacking.dot", s.handleArtifact(dotArtifact))
		r.Post("/tables/{table}/layout", s.handleTableLayout)
		r.Delete("/tables/{table}", s.handleDeleteTable)
	})
}
