package websocket

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"github.com/rs/zerolog/log"
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin: func(r *http.Request) bool {
		return true
	},
}

// AuthError rejects an upgrade attempt before any connection state
// is allocated.
type AuthError struct {
	Code    int
	Message string
}

func (e *AuthError) Error() string {
	return e.Message
}

// AuthenticatorFunc validates a subscription attempt. It returns the
// voter token identifying the subscriber, or an AuthError. The room
// code has already been normalized to upper case.
type AuthenticatorFunc func(r *http.Request, roomCode string) (voterToken string, err *AuthError)

// HandleWS upgrades the request and subscribes the caller to the
// room named in the URL.
func HandleWS(hub *Hub, authenticate AuthenticatorFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		roomCode := normalizeCode(chi.URLParam(r, "code"))
		if roomCode == "" {
			http.Error(w, "missing room code", http.StatusBadRequest)
			return
		}

		voterToken, authErr := authenticate(r, roomCode)
		if authErr != nil {
			http.Error(w, authErr.Message, authErr.Code)
			return
		}

		conn, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			log.Error().Err(err).Str("roomCode", roomCode).Msg("ws: upgrade failed")
			return
		}

		client := NewClient(uuid.NewString(), voterToken, roomCode, conn)
		hub.Register(roomCode, client)
		client.Start()
	}
}
