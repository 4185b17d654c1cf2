package room_service

import (
	"context"
	"net/http"
	"regexp"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/v2/bson"

	"github.com/Pasiduchamod/QBox-Backend/config"
	"github.com/Pasiduchamod/QBox-Backend/internal/dtos/room_dto"
	"github.com/Pasiduchamod/QBox-Backend/internal/entity"
	app_error "github.com/Pasiduchamod/QBox-Backend/internal/errors"
	"github.com/Pasiduchamod/QBox-Backend/internal/queue"
	"github.com/Pasiduchamod/QBox-Backend/state"
)

type fakeRoomRepo struct {
	mu    sync.Mutex
	rooms map[string]*entity.Room

	codeAlwaysTaken bool
}

func newFakeRoomRepo() *fakeRoomRepo {
	return &fakeRoomRepo{rooms: make(map[string]*entity.Room)}
}

func (f *fakeRoomRepo) InsertRoom(ctx context.Context, room *entity.Room) (bson.ObjectID, *app_error.AppError) {
	f.mu.Lock()
	defer f.mu.Unlock()

	for _, existing := range f.rooms {
		if existing.Code == room.Code {
			return bson.ObjectID{}, app_error.NewAppError(http.StatusConflict, app_error.KindCodeSpaceExhausted, "room code already taken", "code")
		}
	}

	id := bson.NewObjectID()
	clone := *room
	clone.ID = id
	f.rooms[id.Hex()] = &clone
	return id, nil
}

func (f *fakeRoomRepo) CodeExists(ctx context.Context, code string) (bool, *app_error.AppError) {
	if f.codeAlwaysTaken {
		return true, nil
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, room := range f.rooms {
		if room.Code == code {
			return true, nil
		}
	}
	return false, nil
}

func (f *fakeRoomRepo) CountActiveByOwnerAndName(ctx context.Context, ownerID, name string) (int64, *app_error.AppError) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var n int64
	for _, room := range f.rooms {
		if room.OwnerID == ownerID && room.Name == name && room.Status == entity.RoomStatusActive {
			n++
		}
	}
	return n, nil
}

func (f *fakeRoomRepo) FindRoomByID(ctx context.Context, roomID string) (*entity.Room, *app_error.AppError) {
	f.mu.Lock()
	defer f.mu.Unlock()
	room, ok := f.rooms[roomID]
	if !ok {
		return nil, app_error.NotFound("room not found")
	}
	clone := *room
	return &clone, nil
}

func (f *fakeRoomRepo) FindRoomByCode(ctx context.Context, code string) (*entity.Room, *app_error.AppError) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, room := range f.rooms {
		if room.Code == code {
			clone := *room
			return &clone, nil
		}
	}
	return nil, app_error.NotFound("room not found")
}

func (f *fakeRoomRepo) FindRoomsByOwner(ctx context.Context, ownerID string) ([]*entity.Room, *app_error.AppError) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []*entity.Room
	for _, room := range f.rooms {
		if room.OwnerID == ownerID {
			clone := *room
			out = append(out, &clone)
		}
	}
	return out, nil
}

func (f *fakeRoomRepo) IncrementParticipants(ctx context.Context, roomID string) (int64, *app_error.AppError) {
	f.mu.Lock()
	defer f.mu.Unlock()
	room, ok := f.rooms[roomID]
	if !ok {
		return 0, app_error.NotFound("room not found")
	}
	room.ParticipantCount++
	return room.ParticipantCount, nil
}

func (f *fakeRoomRepo) IncrementQuestionCount(ctx context.Context, roomID string) *app_error.AppError {
	f.mu.Lock()
	defer f.mu.Unlock()
	room, ok := f.rooms[roomID]
	if !ok {
		return app_error.NotFound("room not found")
	}
	room.QuestionCount++
	return nil
}

func (f *fakeRoomRepo) SetVisibility(ctx context.Context, roomID string, visible bool) *app_error.AppError {
	f.mu.Lock()
	defer f.mu.Unlock()
	room, ok := f.rooms[roomID]
	if !ok {
		return app_error.NotFound("room not found")
	}
	room.QuestionsVisibleToAll = visible
	return nil
}

func (f *fakeRoomRepo) CloseRoom(ctx context.Context, roomID string, closedAt time.Time) *app_error.AppError {
	f.mu.Lock()
	defer f.mu.Unlock()
	room, ok := f.rooms[roomID]
	if !ok {
		return app_error.NotFound("room not found")
	}
	if room.Status != entity.RoomStatusActive {
		return app_error.AlreadyClosed("room is already closed")
	}
	room.Status = entity.RoomStatusClosed
	room.ClosedAt = &closedAt
	return nil
}

func (f *fakeRoomRepo) DeleteRoom(ctx context.Context, roomID string) *app_error.AppError {
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, ok := f.rooms[roomID]; !ok {
		return app_error.NotFound("room not found")
	}
	delete(f.rooms, roomID)
	return nil
}

type fakeQuestionRepo struct {
	mu        sync.Mutex
	questions map[string]*entity.Question
}

func newFakeQuestionRepo() *fakeQuestionRepo {
	return &fakeQuestionRepo{questions: make(map[string]*entity.Question)}
}

func (f *fakeQuestionRepo) InsertQuestion(ctx context.Context, q *entity.Question) (bson.ObjectID, *app_error.AppError) {
	f.mu.Lock()
	defer f.mu.Unlock()
	id := bson.NewObjectID()
	clone := *q
	clone.ID = id
	f.questions[id.Hex()] = &clone
	return id, nil
}

func (f *fakeQuestionRepo) FindQuestionByID(ctx context.Context, questionID string) (*entity.Question, *app_error.AppError) {
	f.mu.Lock()
	defer f.mu.Unlock()
	q, ok := f.questions[questionID]
	if !ok {
		return nil, app_error.NotFound("question not found")
	}
	clone := *q
	return &clone, nil
}

func (f *fakeQuestionRepo) ListByRoom(ctx context.Context, roomID string) ([]*entity.Question, *app_error.AppError) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []*entity.Question
	for _, q := range f.questions {
		if q.RoomID == roomID {
			clone := *q
			out = append(out, &clone)
		}
	}
	return out, nil
}

func (f *fakeQuestionRepo) AddUpvote(ctx context.Context, questionID, voterToken string) *app_error.AppError {
	return nil
}

func (f *fakeQuestionRepo) RemoveUpvote(ctx context.Context, questionID, voterToken string) *app_error.AppError {
	return nil
}

func (f *fakeQuestionRepo) AddReport(ctx context.Context, questionID, voterToken string) *app_error.AppError {
	return nil
}

func (f *fakeQuestionRepo) UpdateStatus(ctx context.Context, questionID string, from []entity.QuestionStatus, to entity.QuestionStatus, answeredAt *time.Time) *app_error.AppError {
	return nil
}

func (f *fakeQuestionRepo) DeleteQuestion(ctx context.Context, questionID string) *app_error.AppError {
	return nil
}

func (f *fakeQuestionRepo) DeleteByRoom(ctx context.Context, roomID string) (int64, *app_error.AppError) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var n int64
	for id, q := range f.questions {
		if q.RoomID == roomID {
			delete(f.questions, id)
			n++
		}
	}
	return n, nil
}

type fakeUserRepo struct {
	users map[string]*entity.User
}

func (f *fakeUserRepo) CountUser(ctx context.Context, filter entity.UserFilter) (int64, *app_error.AppError) {
	return int64(len(f.users)), nil
}

func (f *fakeUserRepo) SaveUser(ctx context.Context, model entity.User) *app_error.AppError {
	f.users[model.ID] = &model
	return nil
}

func (f *fakeUserRepo) FindUserByID(ctx context.Context, userId string) (*entity.User, *app_error.AppError) {
	user, ok := f.users[userId]
	if !ok {
		return nil, app_error.NotFound("user not found")
	}
	return user, nil
}

func (f *fakeUserRepo) FindUserByEmail(ctx context.Context, email string) (*entity.User, *app_error.AppError) {
	for _, user := range f.users {
		if user.Email == email {
			return user, nil
		}
	}
	return nil, app_error.NotFound("user not found")
}

type fakeProducer struct {
	mu   sync.Mutex
	jobs []queue.Job
}

func (f *fakeProducer) Enqueue(ctx context.Context, job queue.Job) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.jobs = append(f.jobs, job)
	return nil
}

type roomFixture struct {
	service   *RoomService
	roomRepo  *fakeRoomRepo
	questions *fakeQuestionRepo
	users     *fakeUserRepo
	producer  *fakeProducer
}

func newRoomFixture(t *testing.T) *roomFixture {
	t.Helper()

	if config.Conf == nil {
		config.Conf = &config.AppConfig{}
	}
	config.Conf.ROOM.EphemeralTTLMinutes = 60
	config.Conf.ROOM.CodeMaxAttempts = 10

	mockRedis := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mockRedis.Addr()})
	t.Cleanup(func() { rdb.Close() })

	roomRepo := newFakeRoomRepo()
	questionRepo := newFakeQuestionRepo()
	userRepo := &fakeUserRepo{users: map[string]*entity.User{
		"lecturer-1": {ID: "lecturer-1", Username: "alice", Email: "alice@example.edu"},
	}}
	producer := &fakeProducer{}

	appState := &state.AppState{Ctx: context.Background(), Redis: rdb}

	return &roomFixture{
		service: &RoomService{
			AppState:     appState,
			RoomRepo:     roomRepo,
			QuestionRepo: questionRepo,
			UserRepo:     userRepo,
			Producer:     producer,
		},
		roomRepo:  roomRepo,
		questions: questionRepo,
		users:     userRepo,
		producer:  producer,
	}
}

var codePattern = regexp.MustCompile(`^[A-Z0-9]{6}$`)

func TestRoomService_Create(t *testing.T) {
	fx := newRoomFixture(t)
	ctx := context.Background()

	resp, err := fx.service.Create(ctx, room_dto.CreateRoomRequest{Name: "Distributed Systems", QuestionsVisibleToAll: true}, "lecturer-1", "alice")
	require.Nil(t, err)

	assert.Regexp(t, codePattern, resp.Code)
	assert.Equal(t, "Distributed Systems", resp.Name)
	assert.Equal(t, "active", resp.Status)
	assert.False(t, resp.Ephemeral)
	assert.Nil(t, resp.ExpiresAt)
}

func TestRoomService_Create_DuplicateName(t *testing.T) {
	fx := newRoomFixture(t)
	ctx := context.Background()

	_, err := fx.service.Create(ctx, room_dto.CreateRoomRequest{Name: "Algorithms"}, "lecturer-1", "alice")
	require.Nil(t, err)

	_, err = fx.service.Create(ctx, room_dto.CreateRoomRequest{Name: "  Algorithms  "}, "lecturer-1", "alice")
	require.NotNil(t, err)
	assert.Equal(t, app_error.KindDuplicateRoomName, err.Kind)

	// a different lecturer can reuse the name
	_, err = fx.service.Create(ctx, room_dto.CreateRoomRequest{Name: "Algorithms"}, "lecturer-2", "bob")
	assert.Nil(t, err)
}

func TestRoomService_Create_CodeSpaceExhausted(t *testing.T) {
	fx := newRoomFixture(t)
	fx.roomRepo.codeAlwaysTaken = true

	_, err := fx.service.Create(context.Background(), room_dto.CreateRoomRequest{Name: "Full"}, "lecturer-1", "alice")
	require.NotNil(t, err)
	assert.Equal(t, app_error.KindCodeSpaceExhausted, err.Kind)
}

func TestRoomService_CreateEphemeral(t *testing.T) {
	fx := newRoomFixture(t)

	resp, err := fx.service.CreateEphemeral(context.Background(), room_dto.CreateEphemeralRoomRequest{OwnerName: "guest"})
	require.Nil(t, err)

	assert.True(t, resp.Ephemeral)
	require.NotNil(t, resp.ExpiresAt)
	assert.WithinDuration(t, time.Now().Add(time.Hour), *resp.ExpiresAt, time.Minute)
}

func TestRoomService_Join_AssignsSequentialTags(t *testing.T) {
	fx := newRoomFixture(t)
	ctx := context.Background()

	room, err := fx.service.Create(ctx, room_dto.CreateRoomRequest{Name: "Joinable"}, "lecturer-1", "alice")
	require.Nil(t, err)

	first, err := fx.service.Join(ctx, room.Code, "voter-a")
	require.Nil(t, err)
	assert.Equal(t, "Student 1", first.AuthorTag)

	second, err := fx.service.Join(ctx, room.Code, "voter-b")
	require.Nil(t, err)
	assert.Equal(t, "Student 2", second.AuthorTag)

	// rejoin keeps the tag and does not recount
	again, err := fx.service.Join(ctx, room.Code, "voter-a")
	require.Nil(t, err)
	assert.Equal(t, "Student 1", again.AuthorTag)

	stored, findErr := fx.roomRepo.FindRoomByID(ctx, room.ID)
	require.Nil(t, findErr)
	assert.EqualValues(t, 2, stored.ParticipantCount)
}

func TestRoomService_Join_LowercaseCode(t *testing.T) {
	fx := newRoomFixture(t)
	ctx := context.Background()

	room, err := fx.service.Create(ctx, room_dto.CreateRoomRequest{Name: "Case Test"}, "lecturer-1", "alice")
	require.Nil(t, err)

	resp, err := fx.service.Join(ctx, strings.ToLower(room.Code), "voter-a")
	require.Nil(t, err)
	assert.Equal(t, room.Code, resp.Code)
}

func TestRoomService_Join_UnknownCode(t *testing.T) {
	fx := newRoomFixture(t)

	_, err := fx.service.Join(context.Background(), "ZZZZZZ", "voter-a")
	require.NotNil(t, err)
	assert.Equal(t, app_error.KindNotFound, err.Kind)
}

func TestRoomService_Join_ClosedRoom(t *testing.T) {
	fx := newRoomFixture(t)
	ctx := context.Background()

	room, err := fx.service.Create(ctx, room_dto.CreateRoomRequest{Name: "Closing"}, "lecturer-1", "alice")
	require.Nil(t, err)

	_, err = fx.service.Close(ctx, room.ID, "lecturer-1")
	require.Nil(t, err)

	_, err = fx.service.Join(ctx, room.Code, "voter-a")
	require.NotNil(t, err)
	assert.Equal(t, app_error.KindRoomClosed, err.Kind)
	assert.Equal(t, 410, err.Code)
}

func TestRoomService_Join_ExpiredEphemeral(t *testing.T) {
	fx := newRoomFixture(t)
	ctx := context.Background()

	resp, err := fx.service.CreateEphemeral(ctx, room_dto.CreateEphemeralRoomRequest{OwnerName: "guest"})
	require.Nil(t, err)

	// push expiry into the past
	fx.roomRepo.mu.Lock()
	past := time.Now().Add(-time.Minute)
	fx.roomRepo.rooms[resp.ID].ExpiresAt = &past
	fx.roomRepo.mu.Unlock()

	_, err = fx.service.Join(ctx, resp.Code, "voter-a")
	require.NotNil(t, err)
	assert.Equal(t, app_error.KindRoomClosed, err.Kind)
}

func TestRoomService_ToggleVisibility_OwnerOnly(t *testing.T) {
	fx := newRoomFixture(t)
	ctx := context.Background()

	room, err := fx.service.Create(ctx, room_dto.CreateRoomRequest{Name: "Private", QuestionsVisibleToAll: false}, "lecturer-1", "alice")
	require.Nil(t, err)

	_, err = fx.service.ToggleVisibility(ctx, room.ID, "someone-else")
	require.NotNil(t, err)
	assert.Equal(t, app_error.KindForbidden, err.Kind)

	updated, err := fx.service.ToggleVisibility(ctx, room.ID, "lecturer-1")
	require.Nil(t, err)
	assert.True(t, updated.QuestionsVisibleToAll)
}

func TestRoomService_Close(t *testing.T) {
	fx := newRoomFixture(t)
	ctx := context.Background()

	room, err := fx.service.Create(ctx, room_dto.CreateRoomRequest{Name: "Session"}, "lecturer-1", "alice")
	require.Nil(t, err)

	closed, err := fx.service.Close(ctx, room.ID, "lecturer-1")
	require.Nil(t, err)
	assert.Equal(t, "closed", closed.Status)
	assert.NotNil(t, closed.ClosedAt)

	// summary job enqueued for the owner
	require.Len(t, fx.producer.jobs, 1)
	assert.Equal(t, queue.JobTypeRoomClosedSummary, fx.producer.jobs[0].Type)

	// second close conflicts
	_, err = fx.service.Close(ctx, room.ID, "lecturer-1")
	require.NotNil(t, err)
	assert.Equal(t, app_error.KindAlreadyClosed, err.Kind)
}

func TestRoomService_Delete_CascadesQuestions(t *testing.T) {
	fx := newRoomFixture(t)
	ctx := context.Background()

	room, err := fx.service.Create(ctx, room_dto.CreateRoomRequest{Name: "Doomed"}, "lecturer-1", "alice")
	require.Nil(t, err)

	for i := 0; i < 3; i++ {
		_, qErr := fx.questions.InsertQuestion(ctx, &entity.Question{RoomID: room.ID, Text: "q"})
		require.Nil(t, qErr)
	}

	err = fx.service.Delete(ctx, room.ID, "lecturer-1")
	require.Nil(t, err)

	remaining, qErr := fx.questions.ListByRoom(ctx, room.ID)
	require.Nil(t, qErr)
	assert.Empty(t, remaining)

	// second delete reports not found
	err = fx.service.Delete(ctx, room.ID, "lecturer-1")
	require.NotNil(t, err)
	assert.Equal(t, app_error.KindNotFound, err.Kind)
}

func TestRoomService_ListOwned(t *testing.T) {
	fx := newRoomFixture(t)
	ctx := context.Background()

	_, err := fx.service.Create(ctx, room_dto.CreateRoomRequest{Name: "One"}, "lecturer-1", "alice")
	require.Nil(t, err)
	_, err = fx.service.Create(ctx, room_dto.CreateRoomRequest{Name: "Two"}, "lecturer-1", "alice")
	require.Nil(t, err)
	_, err = fx.service.Create(ctx, room_dto.CreateRoomRequest{Name: "Other"}, "lecturer-2", "bob")
	require.Nil(t, err)

	resp, err := fx.service.ListOwned(ctx, "lecturer-1")
	require.Nil(t, err)
	assert.Len(t, resp.Rooms, 2)
}
