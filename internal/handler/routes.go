package handler

import (
	"net/http"

	"github.com/msomdec/taskboard/internal/service"
)

// RegisterRoutes sets up all HTTP routes on the given mux.
// The limiter throttles the unauthenticated login and register endpoints.
func RegisterRoutes(mux *http.ServeMux, auth *service.AuthService, tasks *service.TaskService, limiter *service.TokenBucket) {
	authHandler := NewAuthHandler(auth)
	taskHandler := NewTaskHandler(tasks)

	protect := func(h http.HandlerFunc) http.Handler { return RequireAuth(auth, h) }
	throttle := func(h http.HandlerFunc) http.Handler { return RateLimit(limiter, h) }

	mux.HandleFunc("GET /healthz", HandleHealthz)

	mux.Handle("POST /api/auth/login", throttle(authHandler.HandleLogin))
	mux.Handle("POST /api/auth/register", throttle(authHandler.HandleRegister))
	mux.Handle("GET /api/auth/profile", protect(authHandler.HandleGetProfile))
	mux.Handle("PATCH /api/auth/profile", protect(authHandler.HandleUpdateProfile))

	mux.Handle("GET /api/tasks", protect(taskHandler.HandleList))
	mux.Handle("POST /api/tasks", protect(taskHandler.HandleCreate))
	mux.Handle("PATCH /api/tasks/{id}", protect(taskHandler.HandleUpdate))
	mux.Handle("DELETE /api/tasks/{id}", protect(taskHandler.HandleDelete))
}
