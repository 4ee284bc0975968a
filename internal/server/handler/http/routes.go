package http

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	chiMiddleware "github.com/go-chi/chi/v5/middleware"
	"go.uber.org/zap"

	"github.com/atinyakov/basetutor/internal/middleware"
)

// NewRouter constructs the loopback API handler.
//
// Middleware chain (applied in order):
//  1. LoopbackOnly: rejects non-loopback clients with 403
//  2. WithRequestLogging(logger): request IDs and access log
//  3. Recoverer: turns handler panics into 500
//  4. AllowContentType("application/json"): rejects non-JSON bodies
func NewRouter(
	authHandler *AuthHandler,
	historyHandler *HistoryHandler,
	tutoringHandler *TutoringHandler,
	logger *zap.Logger,
) http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.LoopbackOnly)
	r.Use(middleware.WithRequestLogging(logger))
	r.Use(chiMiddleware.Recoverer)
	r.Use(chiMiddleware.AllowContentType("application/json"))

	r.Route("/api", func(r chi.Router) {
		r.Post("/register", authHandler.Register)
		r.Post("/login", authHandler.Login)
		r.Post("/convert", historyHandler.Convert)
		r.Get("/history/recent", historyHandler.Recent)
		r.Get("/tutors", tutoringHandler.Tutors)

		r.Route("/users", func(r chi.Router) {
			r.Get("/exists", authHandler.Exists)
			r.Route("/{username}", func(r chi.Router) {
				r.Get("/", authHandler.Details)
				r.Get("/history", historyHandler.List)
				r.Delete("/history", historyHandler.Clear)
				r.Get("/requests", tutoringHandler.StudentRequests)
				r.Get("/sessions", tutoringHandler.Sessions)
			})
		})
		r.Get("/tutors/{username}/requests", tutoringHandler.TutorRequests)

		r.Route("/requests", func(r chi.Router) {
			r.Post("/", tutoringHandler.CreateRequest)
			r.Post("/{id}/accept", tutoringHandler.Accept)
			r.Post("/{id}/decline", tutoringHandler.Decline)
		})

		r.Route("/sessions/{id}", func(r chi.Router) {
			r.Post("/complete", tutoringHandler.Complete)
			r.Post("/cancel", tutoringHandler.Cancel)
		})
	})

	return r
}
