package hub_handler

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	app_error "github.com/Pasiduchamod/QBox-Backend/internal/errors"
	"github.com/Pasiduchamod/QBox-Backend/internal/handlers"
	"github.com/Pasiduchamod/QBox-Backend/internal/websocket"
)

type HubHandler struct {
	Hub *websocket.Hub
}

func NewHubHandler(hub *websocket.Hub) *HubHandler {
	return &HubHandler{
		Hub: hub,
	}
}

func (h *HubHandler) HandleHealth(w http.ResponseWriter, r *http.Request) {
	json.NewEncoder(w).Encode(map[string]any{
		"status":    "healthy",
		"timestamp": time.Now().Unix(),
		"service":   "qbox-backend",
	})
}

func (h *HubHandler) HandleGetStats(w http.ResponseWriter, r *http.Request) *app_error.AppError {
	stats := h.Hub.GetHubStats()

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(handlers.CreateResponse("get websocket stats", stats, handlers.RequestID(r)))
	return nil
}

// HandleGetRoomPresence lists who is currently subscribed to a room's
// event stream, by connection. Voter tokens stay server-side.
func (h *HubHandler) HandleGetRoomPresence(w http.ResponseWriter, r *http.Request) *app_error.AppError {
	code := chi.URLParam(r, "code")
	clients := h.Hub.GetRoomClients(code)

	type ClientInfo struct {
		ID          string    `json:"id"`
		ConnectedAt time.Time `json:"connected_at"`
		LastSeen    time.Time `json:"last_seen"`
	}

	clientList := make([]ClientInfo, 0, len(clients))
	for _, client := range clients {
		clientList = append(clientList, ClientInfo{
			ID:          client.ID,
			ConnectedAt: client.ConnectedAt,
			LastSeen:    client.GetLastSeen(),
		})
	}

	body := map[string]any{
		"stats":   h.Hub.GetRoomStats(code),
		"clients": clientList,
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(handlers.CreateResponse("get room presence", body, handlers.RequestID(r)))
	return nil
}
