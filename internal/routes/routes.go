package routes

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/jmalik/taskly-backend/internal/handlers"
)

// SetupRoutes registers the full HTTP surface. authGuard wraps every
// protected route; registration, login, avatar fetch and the docs stay
// public.
func SetupRoutes(r *chi.Mux, users *handlers.UserHandler, tasks *handlers.TaskHandler, authGuard func(http.Handler) http.Handler) {
	// Public
	r.Post("/users", users.Register)
	r.Post("/users/login", users.Login)
	r.Get("/users/{id}/avatar", users.GetAvatar)
	r.Get("/api-docs", handlers.APIDocs)

	// Protected
	r.Group(func(r chi.Router) {
		r.Use(authGuard)

		r.Post("/users/logout", users.Logout)
		r.Post("/users/logoutAll", users.LogoutAll)
		r.Get("/users", users.List)
		r.Get("/users/me", users.Me)
		r.Get("/users/{id}", users.GetByID)
		r.Patch("/users/me", users.UpdateMe)
		r.Delete("/users/me", users.DeleteMe)
		r.Post("/users/me/avatar", users.UploadAvatar)
		r.Delete("/users/me/avatar", users.DeleteAvatar)

		r.Post("/tasks", tasks.Create)
		r.Get("/tasks", tasks.List)
		r.Get("/tasks/{id}", tasks.Get)
		r.Patch("/tasks/{id}", tasks.Update)
		r.Delete("/tasks/{id}", tasks.Delete)
	})
}
