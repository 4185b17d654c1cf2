package middleware

import (
	"context"
	"net/http"

	app_error "github.com/Pasiduchamod/QBox-Backend/internal/errors"
)

type voterTokenKey string

// VoterTokenKey carries the anonymous participant identity. The token
// is an opaque client-generated string; the server never ties it to a
// person.
const VoterTokenKey voterTokenKey = "voterToken"

const VoterTokenHeader = "X-Voter-Token"

// WithVoterToken requires the voter token header on participant routes.
func WithVoterToken(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		token := r.Header.Get(VoterTokenHeader)
		if token == "" {
			writeAppError(w, app_error.Unauthorized("missing voter token"))
			return
		}

		ctx := context.WithValue(r.Context(), VoterTokenKey, token)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// VoterTokenFromRequest reads the token from the header or, for
// websocket upgrades where custom headers are awkward, the query
// string.
func VoterTokenFromRequest(r *http.Request) string {
	if token := r.Header.Get(VoterTokenHeader); token != "" {
		return token
	}
	return r.URL.Query().Get("voter_token")
}
