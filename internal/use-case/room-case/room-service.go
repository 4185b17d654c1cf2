package room_service

import (
	"strings"
	"time"

	"context"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"github.com/Pasiduchamod/QBox-Backend/config"
	"github.com/Pasiduchamod/QBox-Backend/internal/dtos/room_dto"
	"github.com/Pasiduchamod/QBox-Backend/internal/entity"
	app_error "github.com/Pasiduchamod/QBox-Backend/internal/errors"
	"github.com/Pasiduchamod/QBox-Backend/internal/queue"
	question_repo "github.com/Pasiduchamod/QBox-Backend/internal/repo/question"
	room_repo "github.com/Pasiduchamod/QBox-Backend/internal/repo/room"
	user_repo "github.com/Pasiduchamod/QBox-Backend/internal/repo/user"
	"github.com/Pasiduchamod/QBox-Backend/internal/utils"
	"github.com/Pasiduchamod/QBox-Backend/internal/websocket"
	worker_handler "github.com/Pasiduchamod/QBox-Backend/internal/worker/worker-handler"
	"github.com/Pasiduchamod/QBox-Backend/state"
)

const authorTagTTL = 24 * time.Hour

type RoomService struct {
	AppState     *state.AppState
	RoomRepo     room_repo.RoomRepoContract
	QuestionRepo question_repo.QuestionRepoContract
	UserRepo     user_repo.UserRepoContract
	Producer     queue.Producer
	Hub          *websocket.Hub
}

func NewRoomService(appState *state.AppState, hub *websocket.Hub) RoomServiceContract {
	return &RoomService{
		AppState:     appState,
		RoomRepo:     room_repo.NewRoomRepo(appState),
		QuestionRepo: question_repo.NewQuestionRepo(appState),
		UserRepo:     user_repo.NewUserRepo(appState),
		Producer:     queue.NewProducer(appState.Redis),
		Hub:          hub,
	}
}

func (s *RoomService) Create(ctx context.Context, req room_dto.CreateRoomRequest, ownerID, ownerName string) (*room_dto.RoomResponse, *app_error.AppError) {
	name := strings.TrimSpace(req.Name)
	if name == "" {
		return nil, app_error.Validation("room name must not be blank", "name")
	}

	count, err := s.RoomRepo.CountActiveByOwnerAndName(ctx, ownerID, name)
	if err != nil {
		return nil, err
	}
	if count > 0 {
		return nil, app_error.DuplicateRoomName("an active room with this name already exists")
	}

	room := &entity.Room{
		Name:                  name,
		OwnerID:               ownerID,
		OwnerName:             ownerName,
		QuestionsVisibleToAll: req.QuestionsVisibleToAll,
		Status:                entity.RoomStatusActive,
		CreatedAt:             time.Now(),
	}

	if err := s.insertWithFreshCode(ctx, room); err != nil {
		return nil, err
	}

	return toRoomResponse(room), nil
}

func (s *RoomService) CreateEphemeral(ctx context.Context, req room_dto.CreateEphemeralRoomRequest) (*room_dto.RoomResponse, *app_error.AppError) {
	ttl := time.Duration(config.Conf.ROOM.EphemeralTTLMinutes) * time.Minute
	expiresAt := time.Now().Add(ttl)

	room := &entity.Room{
		Name:                  strings.TrimSpace(req.OwnerName) + "'s room",
		OwnerName:             strings.TrimSpace(req.OwnerName),
		QuestionsVisibleToAll: true,
		Ephemeral:             true,
		ExpiresAt:             &expiresAt,
		Status:                entity.RoomStatusActive,
		CreatedAt:             time.Now(),
	}

	if err := s.insertWithFreshCode(ctx, room); err != nil {
		return nil, err
	}

	return toRoomResponse(room), nil
}

// insertWithFreshCode draws codes until one lands. The unique index on
// rooms.code is the arbiter under concurrent inserts.
func (s *RoomService) insertWithFreshCode(ctx context.Context, room *entity.Room) *app_error.AppError {
	maxAttempts := config.Conf.ROOM.CodeMaxAttempts
	if maxAttempts <= 0 {
		maxAttempts = 10
	}

	for attempt := 0; attempt < maxAttempts; attempt++ {
		code := utils.GenerateRoomCode()

		exists, err := s.RoomRepo.CodeExists(ctx, code)
		if err != nil {
			return err
		}
		if exists {
			continue
		}

		room.Code = code
		id, err := s.RoomRepo.InsertRoom(ctx, room)
		if err != nil {
			if err.Kind == app_error.KindCodeSpaceExhausted {
				// lost the race on this code, draw again
				continue
			}
			return err
		}

		room.ID = id
		return nil
	}

	return app_error.CodeSpaceExhausted("could not allocate a unique room code")
}

func (s *RoomService) Join(ctx context.Context, code, voterToken string) (*room_dto.JoinRoomResponse, *app_error.AppError) {
	code = strings.ToUpper(strings.TrimSpace(code))

	room, err := s.RoomRepo.FindRoomByCode(ctx, code)
	if err != nil {
		return nil, err
	}

	if room.EffectiveStatus(time.Now()) == entity.RoomStatusClosed {
		return nil, app_error.RoomClosed("room is closed")
	}

	roomID := room.ID.Hex()
	tagKey := utils.AuthorTagKey(roomID, voterToken)

	// a rejoin keeps its tag and does not recount
	cached, cacheErr := utils.GetCacheData[string](ctx, s.AppState.Redis, tagKey)
	if cacheErr != nil {
		return nil, cacheErr
	}

	tag := ""
	if cached != nil {
		tag = *cached
	} else {
		n, err := s.RoomRepo.IncrementParticipants(ctx, roomID)
		if err != nil {
			return nil, err
		}
		tag = utils.StudentTag(n)
		if err := utils.SetCacheData(ctx, s.AppState.Redis, tagKey, &tag, authorTagTTL); err != nil {
			log.Warn().Err(err).Str("roomId", roomID).Msg("failed to cache author tag")
		}
	}

	return &room_dto.JoinRoomResponse{
		RoomID:                roomID,
		Name:                  room.Name,
		Code:                  room.Code,
		OwnerName:             room.OwnerName,
		QuestionsVisibleToAll: room.QuestionsVisibleToAll,
		Status:                string(room.EffectiveStatus(time.Now())),
		ExpiresAt:             room.ExpiresAt,
		AuthorTag:             tag,
	}, nil
}

func (s *RoomService) Get(ctx context.Context, roomID string) (*room_dto.RoomResponse, *app_error.AppError) {
	room, err := s.RoomRepo.FindRoomByID(ctx, roomID)
	if err != nil {
		return nil, err
	}
	return toRoomResponse(room), nil
}

func (s *RoomService) ListOwned(ctx context.Context, ownerID string) (*room_dto.ListRoomsResponse, *app_error.AppError) {
	rooms, err := s.RoomRepo.FindRoomsByOwner(ctx, ownerID)
	if err != nil {
		return nil, err
	}

	resp := &room_dto.ListRoomsResponse{Rooms: make([]room_dto.RoomResponse, 0, len(rooms))}
	for _, room := range rooms {
		resp.Rooms = append(resp.Rooms, *toRoomResponse(room))
	}
	return resp, nil
}

func (s *RoomService) ToggleVisibility(ctx context.Context, roomID, callerID string) (*room_dto.RoomResponse, *app_error.AppError) {
	room, err := s.ownedRoom(ctx, roomID, callerID)
	if err != nil {
		return nil, err
	}

	room.QuestionsVisibleToAll = !room.QuestionsVisibleToAll
	if err := s.RoomRepo.SetVisibility(ctx, roomID, room.QuestionsVisibleToAll); err != nil {
		return nil, err
	}

	s.broadcast(room.Code, websocket.NewEvent(websocket.EventRoomVisibilityChanged, map[string]any{
		"questionsVisible": room.QuestionsVisibleToAll,
	}))

	return toRoomResponse(room), nil
}

func (s *RoomService) Close(ctx context.Context, roomID, callerID string) (*room_dto.RoomResponse, *app_error.AppError) {
	room, err := s.ownedRoom(ctx, roomID, callerID)
	if err != nil {
		return nil, err
	}

	if room.Status == entity.RoomStatusClosed {
		return nil, app_error.AlreadyClosed("room is already closed")
	}

	closedAt := time.Now()
	if err := s.RoomRepo.CloseRoom(ctx, roomID, closedAt); err != nil {
		return nil, err
	}

	room.Status = entity.RoomStatusClosed
	room.ClosedAt = &closedAt

	s.broadcast(room.Code, websocket.NewEvent(websocket.EventRoomStatusChanged, map[string]any{
		"status":  string(entity.RoomStatusClosed),
		"message": "the lecturer closed this room",
	}))

	s.enqueueClosedSummary(ctx, room, closedAt)

	return toRoomResponse(room), nil
}

func (s *RoomService) broadcast(roomCode string, msg websocket.OutgoingMessage) {
	if s.Hub == nil {
		return
	}
	s.Hub.BroadcastToRoom(roomCode, msg)
}

// enqueueClosedSummary is best effort: the close has committed, a lost
// summary mail never fails the request.
func (s *RoomService) enqueueClosedSummary(ctx context.Context, room *entity.Room, closedAt time.Time) {
	owner, err := s.UserRepo.FindUserByID(ctx, room.OwnerID)
	if err != nil {
		log.Warn().Str("roomId", room.ID.Hex()).Str("ownerId", room.OwnerID).Msg("owner lookup failed, skipping closed summary")
		return
	}

	answered := int64(0)
	questions, qErr := s.QuestionRepo.ListByRoom(ctx, room.ID.Hex())
	if qErr != nil {
		log.Warn().Str("roomId", room.ID.Hex()).Msg("question listing failed, summary counts answered as 0")
	} else {
		for _, q := range questions {
			if q.Status == entity.QuestionStatusAnswered {
				answered++
			}
		}
	}

	now := time.Now()
	job := queue.Job{
		ID:       uuid.NewString(),
		Type:     queue.JobTypeRoomClosedSummary,
		Priority: 1,
		MaxRetry: 3,
		Payload: queue.MustMarshal(worker_handler.RoomClosedSummaryPayload{
			RoomID:           room.ID.Hex(),
			RoomName:         room.Name,
			RoomCode:         room.Code,
			OwnerEmail:       owner.Email,
			OwnerName:        room.OwnerName,
			QuestionCount:    room.QuestionCount,
			AnsweredCount:    answered,
			ParticipantCount: room.ParticipantCount,
			ClosedAt:         closedAt,
		}),
		CreatedAt: now.Unix(),
		ExpireAt:  now.Add(24 * time.Hour).Unix(),
	}

	if err := s.Producer.Enqueue(ctx, job); err != nil {
		log.Warn().Err(err).Str("roomId", room.ID.Hex()).Msg("failed to enqueue closed summary job")
	}
}

func (s *RoomService) Delete(ctx context.Context, roomID, callerID string) *app_error.AppError {
	if _, err := s.ownedRoom(ctx, roomID, callerID); err != nil {
		return err
	}

	deleted, err := s.QuestionRepo.DeleteByRoom(ctx, roomID)
	if err != nil {
		return err
	}
	log.Info().Str("roomId", roomID).Int64("questions", deleted).Msg("room questions cascade deleted")

	return s.RoomRepo.DeleteRoom(ctx, roomID)
}

func (s *RoomService) ownedRoom(ctx context.Context, roomID, callerID string) (*entity.Room, *app_error.AppError) {
	room, err := s.RoomRepo.FindRoomByID(ctx, roomID)
	if err != nil {
		return nil, err
	}
	if !room.IsOwnedBy(callerID) {
		return nil, app_error.Forbidden("only the room owner may do this")
	}
	return room, nil
}

func toRoomResponse(room *entity.Room) *room_dto.RoomResponse {
	return &room_dto.RoomResponse{
		ID:                    room.ID.Hex(),
		Name:                  room.Name,
		Code:                  room.Code,
		OwnerName:             room.OwnerName,
		QuestionsVisibleToAll: room.QuestionsVisibleToAll,
		Ephemeral:             room.Ephemeral,
		Status:                string(room.EffectiveStatus(time.Now())),
		QuestionCount:         room.QuestionCount,
		ParticipantCount:      room.ParticipantCount,
		ExpiresAt:             room.ExpiresAt,
		CreatedAt:             room.CreatedAt,
		ClosedAt:              room.ClosedAt,
	}
}
