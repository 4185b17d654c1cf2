package routers

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/Pasiduchamod/QBox-Backend/internal/entity"
	"github.com/Pasiduchamod/QBox-Backend/internal/handlers"
	hub_handler "github.com/Pasiduchamod/QBox-Backend/internal/handlers/hub-handler"
	"github.com/Pasiduchamod/QBox-Backend/internal/middleware"
	room_repo "github.com/Pasiduchamod/QBox-Backend/internal/repo/room"
	"github.com/Pasiduchamod/QBox-Backend/internal/websocket"
	"github.com/Pasiduchamod/QBox-Backend/state"
)

func HubRouter(r chi.Router, state *state.AppState, wsHub *websocket.Hub) {
	hubHandler := hub_handler.NewHubHandler(wsHub)

	r.Get("/api/v1/health", hubHandler.HandleHealth)
	r.Get("/api/v1/stats", handlers.WrapHandler(hubHandler.HandleGetStats))

	r.Route("/ws/rooms/{code}", func(r chi.Router) {
		r.Get("/", websocket.HandleWS(wsHub, roomWSAuth(state)))
		r.Get("/presence", handlers.WrapHandler(hubHandler.HandleGetRoomPresence))
	})
}

// roomWSAuth gates subscriptions: the caller must present a voter token
// and the room must exist and still be joinable.
func roomWSAuth(state *state.AppState) websocket.AuthenticatorFunc {
	roomRepo := room_repo.NewRoomRepo(state)

	return func(r *http.Request, roomCode string) (string, *websocket.AuthError) {
		token := middleware.VoterTokenFromRequest(r)
		if token == "" {
			return "", &websocket.AuthError{Code: http.StatusUnauthorized, Message: "missing voter token"}
		}

		room, err := roomRepo.FindRoomByCode(r.Context(), roomCode)
		if err != nil {
			return "", &websocket.AuthError{Code: http.StatusNotFound, Message: "room not found"}
		}

		if room.EffectiveStatus(time.Now()) == entity.RoomStatusClosed {
			return "", &websocket.AuthError{Code: http.StatusGone, Message: "room is closed"}
		}

		return token, nil
	}
}
