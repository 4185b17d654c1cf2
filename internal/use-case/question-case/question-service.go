package question_service

import (
	"context"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/Pasiduchamod/QBox-Backend/internal/dtos/question_dto"
	"github.com/Pasiduchamod/QBox-Backend/internal/entity"
	app_error "github.com/Pasiduchamod/QBox-Backend/internal/errors"
	question_repo "github.com/Pasiduchamod/QBox-Backend/internal/repo/question"
	room_repo "github.com/Pasiduchamod/QBox-Backend/internal/repo/room"
	"github.com/Pasiduchamod/QBox-Backend/internal/utils"
	"github.com/Pasiduchamod/QBox-Backend/internal/websocket"
	"github.com/Pasiduchamod/QBox-Backend/state"
)

const anonymousTag = "Anonymous"

type QuestionService struct {
	AppState     *state.AppState
	QuestionRepo question_repo.QuestionRepoContract
	RoomRepo     room_repo.RoomRepoContract
	Hub          *websocket.Hub
}

func NewQuestionService(appState *state.AppState, hub *websocket.Hub) QuestionServiceContract {
	return &QuestionService{
		AppState:     appState,
		QuestionRepo: question_repo.NewQuestionRepo(appState),
		RoomRepo:     room_repo.NewRoomRepo(appState),
		Hub:          hub,
	}
}

func (s *QuestionService) Submit(ctx context.Context, roomID string, req question_dto.SubmitQuestionRequest, voterToken string) (*question_dto.QuestionResponse, *app_error.AppError) {
	room, err := s.RoomRepo.FindRoomByID(ctx, roomID)
	if err != nil {
		return nil, err
	}

	if room.EffectiveStatus(time.Now()) == entity.RoomStatusClosed {
		return nil, app_error.RoomClosed("room is closed")
	}

	tag := anonymousTag
	cached, cacheErr := utils.GetCacheData[string](ctx, s.AppState.Redis, utils.AuthorTagKey(roomID, voterToken))
	if cacheErr == nil && cached != nil {
		tag = *cached
	}

	question := &entity.Question{
		RoomID:      roomID,
		Text:        req.Text,
		AuthorTag:   tag,
		AuthorToken: voterToken,
		UpvotedBy:   []string{},
		ReportedBy:  []string{},
		Status:      entity.QuestionStatusPending,
		CreatedAt:   time.Now(),
	}

	id, err := s.QuestionRepo.InsertQuestion(ctx, question)
	if err != nil {
		return nil, err
	}
	question.ID = id

	if err := s.RoomRepo.IncrementQuestionCount(ctx, roomID); err != nil {
		log.Warn().Str("roomId", roomID).Msg("failed to bump room question count")
	}

	resp := question_dto.FromEntity(question)
	s.broadcast(room.Code, websocket.NewEvent(websocket.EventNewQuestion, map[string]any{
		"question": resp,
	}))

	return &resp, nil
}

func (s *QuestionService) ToggleUpvote(ctx context.Context, questionID, voterToken string) (*question_dto.QuestionResponse, *app_error.AppError) {
	question, err := s.QuestionRepo.FindQuestionByID(ctx, questionID)
	if err != nil {
		return nil, err
	}

	if question.HasUpvoteFrom(voterToken) {
		err = s.QuestionRepo.RemoveUpvote(ctx, questionID, voterToken)
	} else {
		err = s.QuestionRepo.AddUpvote(ctx, questionID, voterToken)
	}
	if err != nil {
		return nil, err
	}

	updated, err := s.QuestionRepo.FindQuestionByID(ctx, questionID)
	if err != nil {
		return nil, err
	}

	resp := question_dto.FromEntity(updated)
	s.broadcastForRoom(ctx, updated.RoomID, websocket.NewEvent(websocket.EventQuestionUpvoteUpdate, map[string]any{
		"questionId": resp.ID,
		"upvotes":    resp.UpvoteCount,
	}))

	return &resp, nil
}

func (s *QuestionService) Report(ctx context.Context, questionID, voterToken string) (*question_dto.QuestionResponse, *app_error.AppError) {
	if _, err := s.QuestionRepo.FindQuestionByID(ctx, questionID); err != nil {
		return nil, err
	}

	// reporting only flags; it never changes question status
	if err := s.QuestionRepo.AddReport(ctx, questionID, voterToken); err != nil {
		return nil, err
	}

	updated, err := s.QuestionRepo.FindQuestionByID(ctx, questionID)
	if err != nil {
		return nil, err
	}

	resp := question_dto.FromEntity(updated)
	return &resp, nil
}

func (s *QuestionService) Approve(ctx context.Context, questionID, callerID string) (*question_dto.QuestionResponse, *app_error.AppError) {
	question, room, err := s.moderated(ctx, questionID, callerID)
	if err != nil {
		return nil, err
	}

	uErr := s.QuestionRepo.UpdateStatus(ctx, questionID,
		[]entity.QuestionStatus{entity.QuestionStatusPending},
		entity.QuestionStatusApproved, nil)
	if uErr != nil {
		return nil, uErr
	}

	question.Status = entity.QuestionStatusApproved
	resp := question_dto.FromEntity(question)

	s.broadcast(room.Code, websocket.NewEvent(websocket.EventQuestionApproval, map[string]any{
		"questionId": resp.ID,
	}))

	return &resp, nil
}

func (s *QuestionService) MarkAnswered(ctx context.Context, questionID, callerID string) (*question_dto.QuestionResponse, *app_error.AppError) {
	question, room, err := s.moderated(ctx, questionID, callerID)
	if err != nil {
		return nil, err
	}

	answeredAt := time.Now()
	uErr := s.QuestionRepo.UpdateStatus(ctx, questionID,
		[]entity.QuestionStatus{entity.QuestionStatusPending, entity.QuestionStatusApproved},
		entity.QuestionStatusAnswered, &answeredAt)
	if uErr != nil {
		return nil, uErr
	}

	question.Status = entity.QuestionStatusAnswered
	question.AnsweredAt = &answeredAt
	resp := question_dto.FromEntity(question)

	s.broadcast(room.Code, websocket.NewEvent(websocket.EventQuestionMarkedAnswered, map[string]any{
		"questionId": resp.ID,
	}))

	return &resp, nil
}

func (s *QuestionService) Reject(ctx context.Context, questionID, callerID string) (*question_dto.QuestionResponse, *app_error.AppError) {
	question, room, err := s.moderated(ctx, questionID, callerID)
	if err != nil {
		return nil, err
	}

	uErr := s.QuestionRepo.UpdateStatus(ctx, questionID,
		[]entity.QuestionStatus{entity.QuestionStatusPending},
		entity.QuestionStatusRejected, nil)
	if uErr != nil {
		return nil, uErr
	}

	question.Status = entity.QuestionStatusRejected
	resp := question_dto.FromEntity(question)

	// rejection removes the question from student views
	s.broadcast(room.Code, websocket.NewEvent(websocket.EventQuestionRemoved, map[string]any{
		"questionId": resp.ID,
	}))

	return &resp, nil
}

func (s *QuestionService) Remove(ctx context.Context, questionID, callerID string) *app_error.AppError {
	question, room, err := s.moderated(ctx, questionID, callerID)
	if err != nil {
		return err
	}

	if err := s.QuestionRepo.DeleteQuestion(ctx, questionID); err != nil {
		return err
	}

	s.broadcast(room.Code, websocket.NewEvent(websocket.EventQuestionRemoved, map[string]any{
		"questionId": question.ID.Hex(),
	}))

	return nil
}

func (s *QuestionService) List(ctx context.Context, roomID, callerID, voterToken string) (*question_dto.ListQuestionsResponse, *app_error.AppError) {
	room, err := s.RoomRepo.FindRoomByID(ctx, roomID)
	if err != nil {
		return nil, err
	}

	questions, err := s.QuestionRepo.ListByRoom(ctx, roomID)
	if err != nil {
		return nil, err
	}

	owner := room.IsOwnedBy(callerID)

	resp := &question_dto.ListQuestionsResponse{Questions: make([]question_dto.QuestionResponse, 0, len(questions))}
	for _, q := range questions {
		if !owner && !visibleToStudent(q, room, voterToken) {
			continue
		}
		resp.Questions = append(resp.Questions, question_dto.FromEntity(q))
	}

	return resp, nil
}

// visibleToStudent applies the participant view: rejected questions are
// hidden, and when the room keeps questions private each participant
// sees only their own.
func visibleToStudent(q *entity.Question, room *entity.Room, voterToken string) bool {
	if q.Status == entity.QuestionStatusRejected {
		return false
	}
	if !room.QuestionsVisibleToAll {
		return voterToken != "" && q.AuthorToken == voterToken
	}
	return true
}

// moderated loads the question and its room and enforces ownership.
func (s *QuestionService) moderated(ctx context.Context, questionID, callerID string) (*entity.Question, *entity.Room, *app_error.AppError) {
	question, err := s.QuestionRepo.FindQuestionByID(ctx, questionID)
	if err != nil {
		return nil, nil, err
	}

	room, err := s.RoomRepo.FindRoomByID(ctx, question.RoomID)
	if err != nil {
		return nil, nil, err
	}

	if !room.IsOwnedBy(callerID) {
		return nil, nil, app_error.Forbidden("only the room owner may moderate questions")
	}

	return question, room, nil
}

func (s *QuestionService) broadcastForRoom(ctx context.Context, roomID string, msg websocket.OutgoingMessage) {
	room, err := s.RoomRepo.FindRoomByID(ctx, roomID)
	if err != nil {
		log.Warn().Str("roomId", roomID).Msg("room lookup failed, skipping broadcast")
		return
	}
	s.broadcast(room.Code, msg)
}

func (s *QuestionService) broadcast(roomCode string, msg websocket.OutgoingMessage) {
	if s.Hub == nil {
		return
	}
	s.Hub.BroadcastToRoom(roomCode, msg)
}
