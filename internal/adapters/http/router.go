package http

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/viralforge/project-tracker/internal/application"
)

// Handler adapts the application service to HTTP.
type Handler struct {
	service *application.Service
}

func NewHandler(service *application.Service) *Handler {
	return &Handler{service: service}
}

// NewRouter wires middleware and routes. Every request passes through authenticate;
// only the protected group enforces an identity.
func NewRouter(handler *Handler) http.Handler {
	r := chi.NewRouter()
	r.Use(requestIDMiddleware)
	r.Use(recoverMiddleware)
	r.Use(loggingMiddleware)
	r.Use(handler.authenticate)

	r.Get("/", handler.index)
	r.Get("/healthz", handler.healthz)
	r.Get("/readyz", handler.readyz)
	r.Get("/.well-known/jwks.json", handler.jwks)

	r.Route("/auth", func(r chi.Router) {
		r.Post("/register", handler.register)
		r.Post("/login", handler.login)
	})

	r.Group(func(r chi.Router) {
		r.Use(requireIdentity)

		r.Route("/projects", func(r chi.Router) {
			r.Post("/", handler.createProject)
			r.Get("/", handler.listProjects)
			r.Get("/{id}", handler.getProject)
			r.Put("/{id}", handler.updateProject)
			r.Delete("/{id}", handler.deleteProject)
		})
		r.Route("/tasks", func(r chi.Router) {
			r.Post("/", handler.createTask)
			r.Get("/", handler.listTasks)
			r.Get("/{id}", handler.getTask)
			r.Put("/{id}", handler.updateTask)
			r.Delete("/{id}", handler.deleteTask)
		})
	})

	r.NotFound(func(w http.ResponseWriter, r *http.Request) {
		if _, ok := identityFromContext(r.Context()); !ok {
			writeUnauthorized(r.Context(), w, "route_lookup")
			return
		}
		writeError(w, http.StatusNotFound, "NOT_FOUND", "route not found")
	})
	r.MethodNotAllowed(func(w http.ResponseWriter, _ *http.Request) {
		writeError(w, http.StatusMethodNotAllowed, "METHOD_NOT_ALLOWED", "method not allowed")
	})
	return r
}
