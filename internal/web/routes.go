package web

import (
	"github.com/go-chi/chi/v5"
	"github.com/openvisage/facegate/internal/config"
	"github.com/openvisage/facegate/internal/web/handlers"
)

func (s *Server) setupRoutes(cfg *config.Config, engine handlers.Identifier, users handlers.UserStore, history handlers.History) {
	usersHandler := handlers.NewUsersHandler(users, history)
	recognizeHandler := handlers.NewRecognizeHandler(engine)
	logsHandler := handlers.NewLogsHandler(history, cfg.Log.Path)

	s.router.Route("/api", func(r chi.Router) {
		r.Get("/health", handlers.HealthCheck)

		r.Post("/register", usersHandler.Register)
		r.Post("/recognize", recognizeHandler.Recognize)

		r.Get("/users", usersHandler.List)
		r.Delete("/users/{id}", usersHandler.Delete)

		// Read-only diagnostics
		r.Get("/login-logs", logsHandler.LoginLogs)
		r.Get("/logs", logsHandler.ServerLogs)
	})
}
