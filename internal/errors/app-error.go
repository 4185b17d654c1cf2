package app_error

import (
	"encoding/json"
	"net/http"
)

// Stable error kinds surfaced to clients alongside the HTTP status.
const (
	KindNotFound           = "not_found"
	KindForbidden          = "forbidden"
	KindUnauthorized       = "unauthorized"
	KindRoomClosed         = "room_closed"
	KindAlreadyClosed      = "already_closed"
	KindInvalidTransition  = "invalid_transition"
	KindDuplicateRoomName  = "duplicate_room_name"
	KindCodeSpaceExhausted = "code_space_exhausted"
	KindValidation         = "validation"
	KindInternal           = "internal"
)

type AppError struct {
	Code    int    `json:"-"`
	Kind    string `json:"kind"`
	Message string `json:"message"`
	Field   string `json:"field,omitempty"`
}

func (e AppError) Error() string {
	return e.Message
}

func (e AppError) JSON(w http.ResponseWriter) error {
	return json.NewEncoder(w).Encode(e)
}

func NewAppError(code int, kind, msg, field string) *AppError {
	return &AppError{
		Code:    code,
		Kind:    kind,
		Message: msg,
		Field:   field,
	}
}

func NotFound(msg string) *AppError {
	return NewAppError(http.StatusNotFound, KindNotFound, msg, "")
}

func Forbidden(msg string) *AppError {
	return NewAppError(http.StatusForbidden, KindForbidden, msg, "")
}

func Unauthorized(msg string) *AppError {
	return NewAppError(http.StatusUnauthorized, KindUnauthorized, msg, "")
}

func RoomClosed(msg string) *AppError {
	return NewAppError(http.StatusGone, KindRoomClosed, msg, "")
}

func AlreadyClosed(msg string) *AppError {
	return NewAppError(http.StatusConflict, KindAlreadyClosed, msg, "")
}

func InvalidTransition(msg string) *AppError {
	return NewAppError(http.StatusConflict, KindInvalidTransition, msg, "")
}

func DuplicateRoomName(msg string) *AppError {
	return NewAppError(http.StatusConflict, KindDuplicateRoomName, msg, "")
}

func CodeSpaceExhausted(msg string) *AppError {
	return NewAppError(http.StatusInternalServerError, KindCodeSpaceExhausted, msg, "")
}

func Validation(msg, field string) *AppError {
	return NewAppError(http.StatusBadRequest, KindValidation, msg, field)
}

func Internal(msg, field string) *AppError {
	return NewAppError(http.StatusInternalServerError, KindInternal, msg, field)
}
