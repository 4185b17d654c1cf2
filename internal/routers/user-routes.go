package routers

import (
	"github.com/go-chi/chi/v5"

	"github.com/Pasiduchamod/QBox-Backend/internal/handlers"
	user_handler "github.com/Pasiduchamod/QBox-Backend/internal/handlers/user-handler"
	"github.com/Pasiduchamod/QBox-Backend/internal/middleware"
	"github.com/Pasiduchamod/QBox-Backend/state"
)

func UserRouter(r chi.Router, state *state.AppState) {
	userHandler := user_handler.NewUserHandler(state)

	r.Post("/api/v1/users", handlers.WrapHandler(userHandler.CreateUser))
	r.Post("/api/v1/users/login", handlers.WrapHandler(userHandler.Login))
	r.Post("/api/v1/users/refresh", handlers.WrapHandler(userHandler.Refresh))

	r.Group(func(protected chi.Router) {
		protected.Use(middleware.JWTAuth(state.JwtSecret.Public))
		protected.Get("/api/v1/users/me", handlers.WrapHandler(userHandler.Profile))
	})
}
