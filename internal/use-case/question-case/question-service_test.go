package question_service

import (
	"context"
	"sort"
	"sync"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/v2/bson"

	"github.com/Pasiduchamod/QBox-Backend/internal/dtos/question_dto"
	"github.com/Pasiduchamod/QBox-Backend/internal/entity"
	app_error "github.com/Pasiduchamod/QBox-Backend/internal/errors"
	"github.com/Pasiduchamod/QBox-Backend/internal/utils"
	"github.com/Pasiduchamod/QBox-Backend/state"
)

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

	// mirror the store ordering: upvotes desc, then submission time asc
	sort.SliceStable(out, func(i, j int) bool {
		if out[i].UpvoteCount != out[j].UpvoteCount {
			return out[i].UpvoteCount > out[j].UpvoteCount
		}
		return out[i].CreatedAt.Before(out[j].CreatedAt)
	})

	return out, nil
}

func (f *fakeQuestionRepo) AddUpvote(ctx context.Context, questionID, voterToken string) *app_error.AppError {
	f.mu.Lock()
	defer f.mu.Unlock()
	q, ok := f.questions[questionID]
	if !ok {
		return app_error.NotFound("question not found")
	}
	if q.HasUpvoteFrom(voterToken) {
		return nil
	}
	q.UpvotedBy = append(q.UpvotedBy, voterToken)
	q.UpvoteCount++
	return nil
}

func (f *fakeQuestionRepo) RemoveUpvote(ctx context.Context, questionID, voterToken string) *app_error.AppError {
	f.mu.Lock()
	defer f.mu.Unlock()
	q, ok := f.questions[questionID]
	if !ok {
		return app_error.NotFound("question not found")
	}
	for i, token := range q.UpvotedBy {
		if token == voterToken {
			q.UpvotedBy = append(q.UpvotedBy[:i], q.UpvotedBy[i+1:]...)
			q.UpvoteCount--
			return nil
		}
	}
	return nil
}

func (f *fakeQuestionRepo) AddReport(ctx context.Context, questionID, voterToken string) *app_error.AppError {
	f.mu.Lock()
	defer f.mu.Unlock()
	q, ok := f.questions[questionID]
	if !ok {
		return app_error.NotFound("question not found")
	}
	if q.HasReportFrom(voterToken) {
		return nil
	}
	q.ReportedBy = append(q.ReportedBy, voterToken)
	q.ReportCount++
	q.IsReported = true
	return nil
}

func (f *fakeQuestionRepo) UpdateStatus(ctx context.Context, questionID string, from []entity.QuestionStatus, to entity.QuestionStatus, answeredAt *time.Time) *app_error.AppError {
	f.mu.Lock()
	defer f.mu.Unlock()
	q, ok := f.questions[questionID]
	if !ok {
		return app_error.NotFound("question not found")
	}

	allowed := false
	for _, s := range from {
		if q.Status == s {
			allowed = true
			break
		}
	}
	if !allowed {
		return app_error.InvalidTransition("question status does not allow this transition")
	}

	q.Status = to
	if answeredAt != nil {
		q.AnsweredAt = answeredAt
	}
	return nil
}

func (f *fakeQuestionRepo) DeleteQuestion(ctx context.Context, questionID string) *app_error.AppError {
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, ok := f.questions[questionID]; !ok {
		return app_error.NotFound("question not found")
	}
	delete(f.questions, questionID)
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

type fakeRoomRepo struct {
	mu    sync.Mutex
	rooms map[string]*entity.Room
}

func (f *fakeRoomRepo) InsertRoom(ctx context.Context, room *entity.Room) (bson.ObjectID, *app_error.AppError) {
	f.mu.Lock()
	defer f.mu.Unlock()
	id := bson.NewObjectID()
	clone := *room
	clone.ID = id
	f.rooms[id.Hex()] = &clone
	return id, nil
}

func (f *fakeRoomRepo) CodeExists(ctx context.Context, code string) (bool, *app_error.AppError) {
	return false, nil
}

func (f *fakeRoomRepo) CountActiveByOwnerAndName(ctx context.Context, ownerID, name string) (int64, *app_error.AppError) {
	return 0, nil
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
	return nil, nil
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
	return nil
}

func (f *fakeRoomRepo) CloseRoom(ctx context.Context, roomID string, closedAt time.Time) *app_error.AppError {
	return nil
}

func (f *fakeRoomRepo) DeleteRoom(ctx context.Context, roomID string) *app_error.AppError {
	return nil
}

type questionFixture struct {
	service  *QuestionService
	rooms    *fakeRoomRepo
	repo     *fakeQuestionRepo
	rdb      *redis.Client
	roomID   string
	roomCode string
}

func newQuestionFixture(t *testing.T) *questionFixture {
	t.Helper()

	mockRedis := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mockRedis.Addr()})
	t.Cleanup(func() { rdb.Close() })

	rooms := &fakeRoomRepo{rooms: make(map[string]*entity.Room)}
	repo := newFakeQuestionRepo()

	id, err := rooms.InsertRoom(context.Background(), &entity.Room{
		Name:                  "Lecture",
		Code:                  "ROOM01",
		OwnerID:               "lecturer-1",
		OwnerName:             "alice",
		QuestionsVisibleToAll: true,
		Status:                entity.RoomStatusActive,
		CreatedAt:             time.Now(),
	})
	require.Nil(t, err)

	appState := &state.AppState{Ctx: context.Background(), Redis: rdb}

	return &questionFixture{
		service: &QuestionService{
			AppState:     appState,
			QuestionRepo: repo,
			RoomRepo:     rooms,
		},
		rooms:    rooms,
		repo:     repo,
		rdb:      rdb,
		roomID:   id.Hex(),
		roomCode: "ROOM01",
	}
}

func (fx *questionFixture) submit(t *testing.T, text, voterToken string) *question_dto.QuestionResponse {
	t.Helper()
	resp, err := fx.service.Submit(context.Background(), fx.roomID, question_dto.SubmitQuestionRequest{Text: text}, voterToken)
	require.Nil(t, err)
	return resp
}

func TestQuestionService_Submit(t *testing.T) {
	fx := newQuestionFixture(t)
	ctx := context.Background()

	// the voter joined earlier and was tagged
	tag := "Student 3"
	require.NoError(t, utils.SetCacheData(ctx, fx.rdb, utils.AuthorTagKey(fx.roomID, "voter-a"), &tag, time.Hour))

	resp := fx.submit(t, "What is a quorum?", "voter-a")
	assert.Equal(t, "pending", resp.Status)
	assert.Equal(t, "Student 3", resp.AuthorTag)
	assert.Zero(t, resp.UpvoteCount)

	room, err := fx.rooms.FindRoomByID(ctx, fx.roomID)
	require.Nil(t, err)
	assert.EqualValues(t, 1, room.QuestionCount)
}

func TestQuestionService_Submit_UnknownVoterFallsBackToAnonymous(t *testing.T) {
	fx := newQuestionFixture(t)

	resp := fx.submit(t, "Who am I?", "voter-never-joined")
	assert.Equal(t, "Anonymous", resp.AuthorTag)
}

func TestQuestionService_Submit_ClosedRoom(t *testing.T) {
	fx := newQuestionFixture(t)

	fx.rooms.mu.Lock()
	fx.rooms.rooms[fx.roomID].Status = entity.RoomStatusClosed
	fx.rooms.mu.Unlock()

	_, err := fx.service.Submit(context.Background(), fx.roomID, question_dto.SubmitQuestionRequest{Text: "too late"}, "voter-a")
	require.NotNil(t, err)
	assert.Equal(t, app_error.KindRoomClosed, err.Kind)
}

func TestQuestionService_ToggleUpvote_Idempotent(t *testing.T) {
	fx := newQuestionFixture(t)
	ctx := context.Background()

	q := fx.submit(t, "toggle me", "author")

	up, err := fx.service.ToggleUpvote(ctx, q.ID, "voter-a")
	require.Nil(t, err)
	assert.Equal(t, 1, up.UpvoteCount)

	down, err := fx.service.ToggleUpvote(ctx, q.ID, "voter-a")
	require.Nil(t, err)
	assert.Equal(t, 0, down.UpvoteCount)

	// a second voter is independent
	_, err = fx.service.ToggleUpvote(ctx, q.ID, "voter-a")
	require.Nil(t, err)
	final, err := fx.service.ToggleUpvote(ctx, q.ID, "voter-b")
	require.Nil(t, err)
	assert.Equal(t, 2, final.UpvoteCount)
}

func TestQuestionService_Report_NeverChangesStatus(t *testing.T) {
	fx := newQuestionFixture(t)
	ctx := context.Background()

	q := fx.submit(t, "report me", "author")

	first, err := fx.service.Report(ctx, q.ID, "voter-a")
	require.Nil(t, err)
	assert.True(t, first.IsReported)
	assert.Equal(t, 1, first.ReportCount)
	assert.Equal(t, "pending", first.Status)

	// same voter reporting again is a no-op
	second, err := fx.service.Report(ctx, q.ID, "voter-a")
	require.Nil(t, err)
	assert.Equal(t, 1, second.ReportCount)
}

func TestQuestionService_Approve(t *testing.T) {
	fx := newQuestionFixture(t)
	ctx := context.Background()

	q := fx.submit(t, "approve me", "author")

	_, err := fx.service.Approve(ctx, q.ID, "not-the-owner")
	require.NotNil(t, err)
	assert.Equal(t, app_error.KindForbidden, err.Kind)

	resp, err := fx.service.Approve(ctx, q.ID, "lecturer-1")
	require.Nil(t, err)
	assert.Equal(t, "approved", resp.Status)
}

func TestQuestionService_Approve_InvalidFromAnsweredOrRejected(t *testing.T) {
	fx := newQuestionFixture(t)
	ctx := context.Background()

	answered := fx.submit(t, "answered", "author")
	_, err := fx.service.MarkAnswered(ctx, answered.ID, "lecturer-1")
	require.Nil(t, err)

	_, err = fx.service.Approve(ctx, answered.ID, "lecturer-1")
	require.NotNil(t, err)
	assert.Equal(t, app_error.KindInvalidTransition, err.Kind)

	rejected := fx.submit(t, "rejected", "author")
	_, err = fx.service.Reject(ctx, rejected.ID, "lecturer-1")
	require.Nil(t, err)

	_, err = fx.service.Approve(ctx, rejected.ID, "lecturer-1")
	require.NotNil(t, err)
	assert.Equal(t, app_error.KindInvalidTransition, err.Kind)
}

func TestQuestionService_MarkAnswered_FromPendingOrApproved(t *testing.T) {
	fx := newQuestionFixture(t)
	ctx := context.Background()

	direct := fx.submit(t, "fast path", "author")
	resp, err := fx.service.MarkAnswered(ctx, direct.ID, "lecturer-1")
	require.Nil(t, err)
	assert.Equal(t, "answered", resp.Status)
	assert.NotNil(t, resp.AnsweredAt)

	viaApprove := fx.submit(t, "slow path", "author")
	_, err = fx.service.Approve(ctx, viaApprove.ID, "lecturer-1")
	require.Nil(t, err)
	resp, err = fx.service.MarkAnswered(ctx, viaApprove.ID, "lecturer-1")
	require.Nil(t, err)
	assert.Equal(t, "answered", resp.Status)

	// answered is terminal
	_, err = fx.service.MarkAnswered(ctx, direct.ID, "lecturer-1")
	require.NotNil(t, err)
	assert.Equal(t, app_error.KindInvalidTransition, err.Kind)
}

func TestQuestionService_Reject_OnlyFromPending(t *testing.T) {
	fx := newQuestionFixture(t)
	ctx := context.Background()

	q := fx.submit(t, "reject me", "author")
	_, err := fx.service.Approve(ctx, q.ID, "lecturer-1")
	require.Nil(t, err)

	_, err = fx.service.Reject(ctx, q.ID, "lecturer-1")
	require.NotNil(t, err)
	assert.Equal(t, app_error.KindInvalidTransition, err.Kind)
}

func TestQuestionService_Remove(t *testing.T) {
	fx := newQuestionFixture(t)
	ctx := context.Background()

	q := fx.submit(t, "remove me", "author")

	err := fx.service.Remove(ctx, q.ID, "lecturer-1")
	require.Nil(t, err)

	_, findErr := fx.repo.FindQuestionByID(ctx, q.ID)
	require.NotNil(t, findErr)
	assert.Equal(t, app_error.KindNotFound, findErr.Kind)
}

func TestQuestionService_List_Ordering(t *testing.T) {
	fx := newQuestionFixture(t)
	ctx := context.Background()

	// A, B, C submitted in order; upvotes [2, 5, 2]
	a := fx.submit(t, "A", "author")
	b := fx.submit(t, "B", "author")
	c := fx.submit(t, "C", "author")

	// stagger creation times so the tiebreak is deterministic
	fx.repo.mu.Lock()
	base := time.Now()
	fx.repo.questions[a.ID].CreatedAt = base
	fx.repo.questions[b.ID].CreatedAt = base.Add(time.Second)
	fx.repo.questions[c.ID].CreatedAt = base.Add(2 * time.Second)
	fx.repo.questions[a.ID].UpvoteCount = 2
	fx.repo.questions[b.ID].UpvoteCount = 5
	fx.repo.questions[c.ID].UpvoteCount = 2
	fx.repo.mu.Unlock()

	resp, err := fx.service.List(ctx, fx.roomID, "lecturer-1", "")
	require.Nil(t, err)
	require.Len(t, resp.Questions, 3)

	assert.Equal(t, "B", resp.Questions[0].Text)
	assert.Equal(t, "A", resp.Questions[1].Text, "tie broken by earlier submission")
	assert.Equal(t, "C", resp.Questions[2].Text)
}

func TestQuestionService_List_StudentVisibility(t *testing.T) {
	fx := newQuestionFixture(t)
	ctx := context.Background()

	mine := fx.submit(t, "mine", "voter-a")
	others := fx.submit(t, "someone else's", "voter-b")
	hidden := fx.submit(t, "rejected", "voter-b")
	_, err := fx.service.Reject(ctx, hidden.ID, "lecturer-1")
	require.Nil(t, err)

	// visible-to-all room: students see everything except rejected
	resp, lErr := fx.service.List(ctx, fx.roomID, "", "voter-a")
	require.Nil(t, lErr)
	assert.Len(t, resp.Questions, 2)

	// owner always sees the full set
	resp, lErr = fx.service.List(ctx, fx.roomID, "lecturer-1", "")
	require.Nil(t, lErr)
	assert.Len(t, resp.Questions, 3)

	// private room: students only see their own
	fx.rooms.mu.Lock()
	fx.rooms.rooms[fx.roomID].QuestionsVisibleToAll = false
	fx.rooms.mu.Unlock()

	resp, lErr = fx.service.List(ctx, fx.roomID, "", "voter-a")
	require.Nil(t, lErr)
	require.Len(t, resp.Questions, 1)
	assert.Equal(t, mine.ID, resp.Questions[0].ID)

	resp, lErr = fx.service.List(ctx, fx.roomID, "", "voter-b")
	require.Nil(t, lErr)
	require.Len(t, resp.Questions, 1)
	assert.Equal(t, others.ID, resp.Questions[0].ID)
}
