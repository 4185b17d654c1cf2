package routers

import (
	"github.com/go-chi/chi/v5"

	"github.com/Pasiduchamod/QBox-Backend/internal/handlers"
	room_handler "github.com/Pasiduchamod/QBox-Backend/internal/handlers/room-handler"
	"github.com/Pasiduchamod/QBox-Backend/internal/middleware"
	"github.com/Pasiduchamod/QBox-Backend/internal/websocket"
	"github.com/Pasiduchamod/QBox-Backend/state"
)

func RoomRouter(r chi.Router, state *state.AppState, wsHub *websocket.Hub) {
	roomHandler := room_handler.NewRoomHandler(state, wsHub)

	// public
	r.Post("/api/v1/rooms/ephemeral", handlers.WrapHandler(roomHandler.CreateEphemeralRoom))
	r.Get("/api/v1/rooms/{roomId}", handlers.WrapHandler(roomHandler.GetRoom))

	// anonymous participants
	r.Group(func(voter chi.Router) {
		voter.Use(middleware.WithVoterToken)
		voter.Post("/api/v1/rooms/join", handlers.WrapHandler(roomHandler.JoinRoom))
	})

	// lecturers
	r.Group(func(protected chi.Router) {
		protected.Use(middleware.JWTAuth(state.JwtSecret.Public))
		protected.Post("/api/v1/rooms", handlers.WrapHandler(roomHandler.CreateRoom))
		protected.Get("/api/v1/rooms", handlers.WrapHandler(roomHandler.ListRooms))
		protected.Patch("/api/v1/rooms/{roomId}/visibility", handlers.WrapHandler(roomHandler.ToggleVisibility))
		protected.Patch("/api/v1/rooms/{roomId}/close", handlers.WrapHandler(roomHandler.CloseRoom))
		protected.Delete("/api/v1/rooms/{roomId}", handlers.WrapHandler(roomHandler.DeleteRoom))
	})
}
