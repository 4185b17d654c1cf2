package routers

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/Pasiduchamod/QBox-Backend/internal/middleware"
	"github.com/Pasiduchamod/QBox-Backend/internal/websocket"
	"github.com/Pasiduchamod/QBox-Backend/state"
)

func NewRouter(state *state.AppState, wsHub *websocket.Hub) http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.WithRequestId)
	UserRouter(r, state)
	RoomRouter(r, state, wsHub)
	QuestionRouter(r, state, wsHub)
	HubRouter(r, state, wsHub)
	return r
}
