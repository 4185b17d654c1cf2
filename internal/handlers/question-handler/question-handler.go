package question_handler

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"

	"github.com/Pasiduchamod/QBox-Backend/internal/dtos/question_dto"
	app_error "github.com/Pasiduchamod/QBox-Backend/internal/errors"
	"github.com/Pasiduchamod/QBox-Backend/internal/handlers"
	"github.com/Pasiduchamod/QBox-Backend/internal/middleware"
	question_service "github.com/Pasiduchamod/QBox-Backend/internal/use-case/question-case"
	"github.com/Pasiduchamod/QBox-Backend/internal/utils"
	"github.com/Pasiduchamod/QBox-Backend/internal/websocket"
	"github.com/Pasiduchamod/QBox-Backend/state"
)

type QuestionHandler struct {
	State    *state.AppState
	Validate *validator.Validate
	Service  question_service.QuestionServiceContract
}

func NewQuestionHandler(state *state.AppState, hub *websocket.Hub) *QuestionHandler {
	validate := validator.New()
	_ = validate.RegisterValidation("objectid", question_dto.ObjectIDValidator)
	return &QuestionHandler{
		State:    state,
		Validate: validate,
		Service:  question_service.NewQuestionService(state, hub),
	}
}

// idParam pulls an ObjectID path parameter and rejects malformed values
// before they reach the store.
func (h *QuestionHandler) idParam(r *http.Request, name string) (string, *app_error.AppError) {
	id := chi.URLParam(r, name)
	if err := h.Validate.Var(id, "objectid"); err != nil {
		return "", app_error.Validation("invalid "+name, name)
	}
	return id, nil
}

func (h *QuestionHandler) SubmitQuestion(w http.ResponseWriter, r *http.Request) *app_error.AppError {
	var req question_dto.SubmitQuestionRequest
	defer r.Body.Close()

	voterToken, appErr := voterToken(r)
	if appErr != nil {
		return appErr
	}

	roomID, appErr := h.idParam(r, "roomId")
	if appErr != nil {
		return appErr
	}

	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		return app_error.Validation("Invalid JSON", "body")
	}

	if err := h.Validate.Struct(req); err != nil {
		return app_error.Validation(fmt.Sprintf("Invalid fields: %v", err), "validation")
	}

	resp, err := h.Service.Submit(r.Context(), roomID, req, voterToken)
	if err != nil {
		return err
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusCreated)
	json.NewEncoder(w).Encode(handlers.CreateResponse("question submitted", *resp, handlers.RequestID(r)))
	return nil
}

func (h *QuestionHandler) ListQuestions(w http.ResponseWriter, r *http.Request) *app_error.AppError {
	roomID, appErr := h.idParam(r, "roomId")
	if appErr != nil {
		return appErr
	}

	// either identity may be present; the service applies visibility
	callerID := ""
	if claims, ok := r.Context().Value(middleware.UserClaimsKey).(*utils.Claims); ok && claims != nil {
		callerID = claims.Sub
	}
	voterToken := middleware.VoterTokenFromRequest(r)

	resp, err := h.Service.List(r.Context(), roomID, callerID, voterToken)
	if err != nil {
		return err
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(handlers.CreateResponse("questions fetched", *resp, handlers.RequestID(r)))
	return nil
}

func (h *QuestionHandler) ToggleUpvote(w http.ResponseWriter, r *http.Request) *app_error.AppError {
	voterToken, appErr := voterToken(r)
	if appErr != nil {
		return appErr
	}

	questionID, appErr := h.idParam(r, "questionId")
	if appErr != nil {
		return appErr
	}

	resp, err := h.Service.ToggleUpvote(r.Context(), questionID, voterToken)
	if err != nil {
		return err
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(handlers.CreateResponse("upvote toggled", *resp, handlers.RequestID(r)))
	return nil
}

func (h *QuestionHandler) ReportQuestion(w http.ResponseWriter, r *http.Request) *app_error.AppError {
	voterToken, appErr := voterToken(r)
	if appErr != nil {
		return appErr
	}

	questionID, appErr := h.idParam(r, "questionId")
	if appErr != nil {
		return appErr
	}

	resp, err := h.Service.Report(r.Context(), questionID, voterToken)
	if err != nil {
		return err
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(handlers.CreateResponse("question reported", *resp, handlers.RequestID(r)))
	return nil
}

func (h *QuestionHandler) ApproveQuestion(w http.ResponseWriter, r *http.Request) *app_error.AppError {
	return h.moderate(w, r, h.Service.Approve, "question approved")
}

func (h *QuestionHandler) MarkAnswered(w http.ResponseWriter, r *http.Request) *app_error.AppError {
	return h.moderate(w, r, h.Service.MarkAnswered, "question marked answered")
}

func (h *QuestionHandler) RejectQuestion(w http.ResponseWriter, r *http.Request) *app_error.AppError {
	return h.moderate(w, r, h.Service.Reject, "question rejected")
}

type moderateFunc func(ctx context.Context, questionID, callerID string) (*question_dto.QuestionResponse, *app_error.AppError)

func (h *QuestionHandler) moderate(w http.ResponseWriter, r *http.Request, fn moderateFunc, message string) *app_error.AppError {
	claims, appErr := callerClaims(r)
	if appErr != nil {
		return appErr
	}

	questionID, appErr := h.idParam(r, "questionId")
	if appErr != nil {
		return appErr
	}

	resp, err := fn(r.Context(), questionID, claims.Sub)
	if err != nil {
		return err
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(handlers.CreateResponse(message, *resp, handlers.RequestID(r)))
	return nil
}

func (h *QuestionHandler) RemoveQuestion(w http.ResponseWriter, r *http.Request) *app_error.AppError {
	claims, appErr := callerClaims(r)
	if appErr != nil {
		return appErr
	}

	questionID, appErr := h.idParam(r, "questionId")
	if appErr != nil {
		return appErr
	}

	if err := h.Service.Remove(r.Context(), questionID, claims.Sub); err != nil {
		return err
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(handlers.CreateResponse("question removed", map[string]string{"question_id": questionID}, handlers.RequestID(r)))
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
