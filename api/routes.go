package api

import (
	"github.com/go-chi/chi/v5"
)

// setupRoutes mounts the action endpoint and the download routes
func setupRoutes(r chi.Router, handlers *routeHandlers, sessions sessionMiddleware) {
	r.Get("/healthz", handlers.healthHandler.health())

	r.Group(func(r chi.Router) {
		r.Use(ColoredHTTPLoggingMiddleware)
		r.Use(sessions.load)

		// Login and CSRF are checked per action
		r.Get("/api", handlers.actionHandler.dispatch())
		r.Post("/api", handlers.actionHandler.dispatch())

		r.Group(func(r chi.Router) {
			r.Use(sessions.requireLogin)

			r.Get("/export/posts.csv", handlers.exportHandler.exportCSV())
			r.Get("/export/posts.ics", handlers.exportHandler.exportCalendar())
			r.Get("/backup", handlers.backupHandler.download())
			r.With(sessions.requireCSRF).Post("/backup/snapshot", handlers.backupHandler.snapshot())
		})
	})
}
