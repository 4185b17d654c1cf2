package user_handler

import (
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/go-playground/validator/v10"

	"github.com/Pasiduchamod/QBox-Backend/internal/dtos/user_dto"
	app_error "github.com/Pasiduchamod/QBox-Backend/internal/errors"
	"github.com/Pasiduchamod/QBox-Backend/internal/handlers"
	"github.com/Pasiduchamod/QBox-Backend/internal/middleware"
	user_service "github.com/Pasiduchamod/QBox-Backend/internal/use-case/user-case"
	"github.com/Pasiduchamod/QBox-Backend/internal/utils"
	"github.com/Pasiduchamod/QBox-Backend/state"
)

type UserHandler struct {
	State    *state.AppState
	Validate *validator.Validate
	Service  user_service.UserServiceContract
}

func NewUserHandler(state *state.AppState) *UserHandler {
	return &UserHandler{
		State:    state,
		Validate: validator.New(),
		Service:  user_service.NewUserService(state),
	}
}

func (h *UserHandler) CreateUser(w http.ResponseWriter, r *http.Request) *app_error.AppError {
	var req user_dto.CreateUserRequest
	defer r.Body.Close()

	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		return app_error.Validation("Invalid JSON", "body")
	}

	if err := h.Validate.Struct(req); err != nil {
		return app_error.Validation(fmt.Sprintf("Invalid fields: %v", err), "validation")
	}

	resp, err := h.Service.Register(r.Context(), req)
	if err != nil {
		return err
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusCreated)
	json.NewEncoder(w).Encode(handlers.CreateResponse("user registered successfully", *resp, handlers.RequestID(r)))
	return nil
}

func (h *UserHandler) Login(w http.ResponseWriter, r *http.Request) *app_error.AppError {
	var req user_dto.LoginUserRequest
	defer r.Body.Close()

	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		return app_error.Validation("Invalid JSON", "body")
	}

	if err := h.Validate.Struct(req); err != nil {
		return app_error.Validation(fmt.Sprintf("Invalid fields: %v", err), "validation")
	}

	resp, err := h.Service.Login(r.Context(), req)
	if err != nil {
		return err
	}

	setRefreshCookie(w, resp.Refresh)

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(handlers.CreateResponse("login successful", *resp, handlers.RequestID(r)))
	return nil
}

func (h *UserHandler) Refresh(w http.ResponseWriter, r *http.Request) *app_error.AppError {
	cookie, err := r.Cookie("refresh_token")
	if err != nil {
		return app_error.Unauthorized("refresh token missing")
	}

	resp, appErr := h.Service.Refresh(r.Context(), cookie.Value)
	if appErr != nil {
		return appErr
	}

	setRefreshCookie(w, resp.Refresh)

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(handlers.CreateResponse("tokens refreshed", *resp, handlers.RequestID(r)))
	return nil
}

func (h *UserHandler) Profile(w http.ResponseWriter, r *http.Request) *app_error.AppError {
	claims, ok := r.Context().Value(middleware.UserClaimsKey).(*utils.Claims)
	if !ok || claims == nil {
		return app_error.Unauthorized("missing user claims")
	}

	resp, err := h.Service.Profile(r.Context(), claims.Sub)
	if err != nil {
		return err
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(handlers.CreateResponse("profile fetched", *resp, handlers.RequestID(r)))
	return nil
}

func setRefreshCookie(w http.ResponseWriter, refresh string) {
	http.SetCookie(w, &http.Cookie{
		Name:     "refresh_token",
		Value:    refresh,
		HttpOnly: true,
		Secure:   true,
		SameSite: http.SameSiteStrictMode,
		Path:     "/",
		Expires:  time.Now().Add(7 * 24 * time.Hour),
	})
}
