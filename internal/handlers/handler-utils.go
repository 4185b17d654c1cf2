package handlers

import (
	"fmt"
	"net/http"

	jsoniter "github.com/json-iterator/go"
	"github.com/rs/zerolog/log"

	"github.com/Pasiduchamod/QBox-Backend/internal/dtos"
	app_error "github.com/Pasiduchamod/QBox-Backend/internal/errors"
	"github.com/Pasiduchamod/QBox-Backend/internal/middleware"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

func writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(body)
}

type HandlerFunc func(w http.ResponseWriter, r *http.Request) *app_error.AppError

func WrapHandler(fn HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if err := fn(w, r); err != nil {
			log.Error().Err(err).Msg(fmt.Sprintf("error occur, request id: %s", r.Header.Get("X-Request-ID")))
			writeJSON(w, err.Code, dtos.Response[any]{
				Message:   "Error occur",
				RequestID: r.Header.Get("X-Request-ID"),
				Errors: &dtos.ErrorResponse{
					Code:    err.Code,
					Kind:    err.Kind,
					Message: err.Message,
					Field:   err.Field,
				},
			})
		}
	}
}

func CreateResponse[T any](message string, data T, requestId string) dtos.Response[T] {
	return dtos.Response[T]{
		Message:   message,
		Data:      data,
		RequestID: requestId,
	}
}

// RequestID pulls the id set by the request-id middleware.
func RequestID(r *http.Request) string {
	if id, ok := r.Context().Value(middleware.RequestIdKey).(string); ok {
		return id
	}
	return "unknown"
}
