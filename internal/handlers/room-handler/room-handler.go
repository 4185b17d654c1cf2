package room_handler

import (
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"

	"github.com/Pasiduchamod/QBox-Backend/internal/dtos/room_dto"
	app_error "github.com/Pasiduchamod/QBox-Backend/internal/errors"
	"github.com/Pasiduchamod/QBox-Backend/internal/handlers"
	"github.com/Pasiduchamod/QBox-Backend/internal/middleware"
	room_service "github.com/Pasiduchamod/QBox-Backend/internal/use-case/room-case"
	"github.com/Pasiduchamod/QBox-Backend/internal/utils"
	"github.com/Pasiduchamod/QBox-Backend/internal/websocket"
	"github.com/Pasiduchamod/QBox-Backend/state"
)

type RoomHandler struct {
	State    *state.AppState
	Validate *validator.Validate
	Service  room_service.RoomServiceContract
}

func NewRoomHandler(state *state.AppState, hub *websocket.Hub) *RoomHandler {
	validate := validator.New()
	_ = validate.RegisterValidation("roomcode", room_dto.RoomCodeValidator)
	return &RoomHandler{
		State:    state,
		Validate: validate,
		Service:  room_service.NewRoomService(state, hub),
	}
}

func (h *RoomHandler) CreateRoom(w http.ResponseWriter, r *http.Request) *app_error.AppError {
	var req room_dto.CreateRoomRequest
	defer r.Body.Close()

	claims, appErr := callerClaims(r)
	if appErr != nil {
		return appErr
	}

	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		return app_error.Validation("Invalid JSON", "body")
	}

	if err := h.Validate.Struct(req); err != nil {
		return app_error.Validation(fmt.Sprintf("Invalid fields: %v", err), "validation")
	}

	resp, err := h.Service.Create(r.Context(), req, claims.Sub, claims.Username)
	if err != nil {
		return err
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusCreated)
	json.NewEncoder(w).Encode(handlers.CreateResponse("room created", *resp, handlers.RequestID(r)))
	return nil
}

func (h *RoomHandler) CreateEphemeralRoom(w http.ResponseWriter, r *http.Request) *app_error.AppError {
	var req room_dto.CreateEphemeralRoomRequest
	defer r.Body.Close()

	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		return app_error.Validation("Invalid JSON", "body")
	}

	if err := h.Validate.Struct(req); err != nil {
		return app_error.Validation(fmt.Sprintf("Invalid fields: %v", err), "validation")
	}

	resp, err := h.Service.CreateEphemeral(r.Context(), req)
	if err != nil {
		return err
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusCreated)
	json.NewEncoder(w).Encode(handlers.CreateResponse("ephemeral room created", *resp, handlers.RequestID(r)))
	return nil
}

func (h *RoomHandler) JoinRoom(w http.ResponseWriter, r *http.Request) *app_error.AppError {
	var req room_dto.JoinRoomRequest
	defer r.Body.Close()

	voterToken, appErr := voterToken(r)
	if appErr != nil {
		return appErr
	}

	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		return app_error.Validation("Invalid JSON", "body")
	}

	if err := h.Validate.Struct(req); err != nil {
		return app_error.Validation(fmt.Sprintf("Invalid fields: %v", err), "validation")
	}

	resp, err := h.Service.Join(r.Context(), req.Code, voterToken)
	if err != nil {
		return err
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(handlers.CreateResponse("room joined", *resp, handlers.RequestID(r)))
	return nil
}

func (h *RoomHandler) GetRoom(w http.ResponseWriter, r *http.Request) *app_error.AppError {
	roomID := chi.URLParam(r, "roomId")

	resp, err := h.Service.Get(r.Context(), roomID)
	if err != nil {
		return err
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(handlers.CreateResponse("room fetched", *resp, handlers.RequestID(r)))
	return nil
}

func (h *RoomHandler) ListRooms(w http.ResponseWriter, r *http.Request) *app_error.AppError {
	claims, appErr := callerClaims(r)
	if appErr != nil {
		return appErr
	}

	resp, err := h.Service.ListOwned(r.Context(), claims.Sub)
	if err != nil {
		return err
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(handlers.CreateResponse("rooms fetched", *resp, handlers.RequestID(r)))
	return nil
}

func (h *RoomHandler) ToggleVisibility(w http.ResponseWriter, r *http.Request) *app_error.AppError {
	claims, appErr := callerClaims(r)
	if appErr != nil {
		return appErr
	}

	roomID := chi.URLParam(r, "roomId")

	resp, err := h.Service.ToggleVisibility(r.Context(), roomID, claims.Sub)
	if err != nil {
		return err
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(handlers.CreateResponse("room visibility updated", *resp, handlers.RequestID(r)))
	return nil
}

func (h *RoomHandler) CloseRoom(w http.ResponseWriter, r *http.Request) *app_error.AppError {
	claims, appErr := callerClaims(r)
	if appErr != nil {
		return appErr
	}

	roomID := chi.URLParam(r, "roomId")

	resp, err := h.Service.Close(r.Context(), roomID, claims.Sub)
	if err != nil {
		return err
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(handlers.CreateResponse("room closed", *resp, handlers.RequestID(r)))
	return nil
}

func (h *RoomHandler) DeleteRoom(w http.ResponseWriter, r *http.Request) *app_error.AppError {
	claims, appErr := callerClaims(r)
	if appErr != nil {
		return appErr
	}

	roomID := chi.URLParam(r, "roomId")

	if err := h.Service.Delete(r.Context(), roomID, claims.Sub); err != nil {
		return err
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(handlers.CreateResponse("room deleted", map[string]string{"room_id": roomID}, handlers.RequestID(r)))
	return nil
}

func callerClaims(r *http.Request) (*utils.Claims, *app_error.AppError) {
	claims, ok := r.Context().Value(middleware.UserClaimsKey).(*utils.Claims)
	if !ok || claims == nil {
		return nil, app_error.Unauthorized("missing user claims")
	}
	return claims, nil
}

func voterToken(r *http.Request) (string, *app_error.AppError) {
	token, ok := r.Context().Value(middleware.VoterTokenKey).(string)
	if !ok || token == "" {
		return "", app_error.Unauthorized("missing voter token")
	}
	return token, nil
}
