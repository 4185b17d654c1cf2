package question_repo

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/v2/bson"
	"go.mongodb.org/mongo-driver/v2/mongo"
	"go.mongodb.org/mongo-driver/v2/mongo/options"

	"github.com/Pasiduchamod/QBox-Backend/internal/entity"
	app_error "github.com/Pasiduchamod/QBox-Backend/internal/errors"
	"github.com/Pasiduchamod/QBox-Backend/state"
)

type QuestionRepo struct {
	AppState *state.AppState
}

func NewQuestionRepo(appState *state.AppState) QuestionRepoContract {
	return &QuestionRepo{
		AppState: appState,
	}
}

func (r *QuestionRepo) collection() *mongo.Collection {
	return r.AppState.Documents().Collection("questions")
}

func (r *QuestionRepo) InsertQuestion(ctx context.Context, q *entity.Question) (bson.ObjectID, *app_error.AppError) {
	res, err := r.collection().InsertOne(ctx, q)
	if err != nil {
		return bson.NilObjectID, app_error.Internal(fmt.Sprintf("failed to create question: %v", err), "mongo")
	}

	id, _ := res.InsertedID.(bson.ObjectID)
	return id, nil
}

func (r *QuestionRepo) FindQuestionByID(ctx context.Context, questionID string) (*entity.Question, *app_error.AppError) {
	objID, err := bson.ObjectIDFromHex(questionID)
	if err != nil {
		return nil, app_error.Validation(fmt.Sprintf("invalid question ID: %v", err), "question-id")
	}

	var question entity.Question
	if err := r.collection().FindOne(ctx, bson.M{"_id": objID}).Decode(&question); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, app_error.NotFound("question not found or has been deleted")
		}
		return nil, app_error.Internal(fmt.Sprintf("failed to fetch question: %v", err), "mongo")
	}

	return &question, nil
}

// ListByRoom returns a room's questions sorted by upvotes descending,
// ties broken by creation time ascending (earliest asked wins).
func (r *QuestionRepo) ListByRoom(ctx context.Context, roomID string) ([]*entity.Question, *app_error.AppError) {
	sort := bson.D{{Key: "upvote_count", Value: -1}, {Key: "created_at", Value: 1}}
	cur, err := r.collection().Find(ctx, bson.M{"room_id": roomID}, options.Find().SetSort(sort))
	if err != nil {
		return nil, app_error.Internal(fmt.Sprintf("failed to fetch questions: %v", err), "mongo")
	}
	defer cur.Close(ctx)

	var questions []*entity.Question
	if err := cur.All(ctx, &questions); err != nil {
		return nil, app_error.Internal(fmt.Sprintf("failed to decode questions: %v", err), "mongo")
	}

	return questions, nil
}

// AddUpvote records a vote once per token. The filter excludes documents
// already holding the token, so a concurrent duplicate is a no-op and
// upvote_count always equals the set size.
func (r *QuestionRepo) AddUpvote(ctx context.Context, questionID, voterToken string) *app_error.AppError {
	objID, err := bson.ObjectIDFromHex(questionID)
	if err != nil {
		return app_error.Validation(fmt.Sprintf("invalid question ID: %v", err), "question-id")
	}

	_, uErr := r.collection().UpdateOne(ctx,
		bson.M{"_id": objID, "upvoted_by": bson.M{"$ne": voterToken}},
		bson.M{
			"$push": bson.M{"upvoted_by": voterToken},
			"$inc":  bson.M{"upvote_count": 1},
		},
	)
	if uErr != nil {
		return app_error.Internal(fmt.Sprintf("failed to add upvote: %v", uErr), "mongo")
	}
	return nil
}

func (r *QuestionRepo) RemoveUpvote(ctx context.Context, questionID, voterToken string) *app_error.AppError {
	objID, err := bson.ObjectIDFromHex(questionID)
	if err != nil {
		return app_error.Validation(fmt.Sprintf("invalid question ID: %v", err), "question-id")
	}

	_, uErr := r.collection().UpdateOne(ctx,
		bson.M{"_id": objID, "upvoted_by": voterToken},
		bson.M{
			"$pull": bson.M{"upvoted_by": voterToken},
			"$inc":  bson.M{"upvote_count": -1},
		},
	)
	if uErr != nil {
		return app_error.Internal(fmt.Sprintf("failed to remove upvote: %v", uErr), "mongo")
	}
	return nil
}

// AddReport flags the question. Reporting never changes status; moderation
// is a separate owner action.
func (r *QuestionRepo) AddReport(ctx context.Context, questionID, voterToken string) *app_error.AppError {
	objID, err := bson.ObjectIDFromHex(questionID)
	if err != nil {
		return app_error.Validation(fmt.Sprintf("invalid question ID: %v", err), "question-id")
	}

	_, uErr := r.collection().UpdateOne(ctx,
		bson.M{"_id": objID, "reported_by": bson.M{"$ne": voterToken}},
		bson.M{
			"$push": bson.M{"reported_by": voterToken},
			"$inc":  bson.M{"report_count": 1},
			"$set":  bson.M{"is_reported": true},
		},
	)
	if uErr != nil {
		return app_error.Internal(fmt.Sprintf("failed to report question: %v", uErr), "mongo")
	}
	return nil
}

// UpdateStatus moves the question along the state machine. The filter
// carries the allowed source states, so an illegal or concurrent move
// surfaces as invalid_transition instead of silently overwriting.
func (r *QuestionRepo) UpdateStatus(ctx context.Context, questionID string, from []entity.QuestionStatus, to entity.QuestionStatus, answeredAt *time.Time) *app_error.AppError {
	objID, err := bson.ObjectIDFromHex(questionID)
	if err != nil {
		return app_error.Validation(fmt.Sprintf("invalid question ID: %v", err), "question-id")
	}

	set := bson.M{"status": to}
	if answeredAt != nil {
		set["answered_at"] = *answeredAt
	}

	res, uErr := r.collection().UpdateOne(ctx,
		bson.M{"_id": objID, "status": bson.M{"$in": from}},
		bson.M{"$set": set},
	)
	if uErr != nil {
		return app_error.Internal(fmt.Sprintf("failed to update question status: %v", uErr), "mongo")
	}
	if res.MatchedCount == 0 {
		return app_error.InvalidTransition(fmt.Sprintf("question cannot move to %s from its current state", to))
	}
	return nil
}

func (r *QuestionRepo) DeleteQuestion(ctx context.Context, questionID string) *app_error.AppError {
	objID, err := bson.ObjectIDFromHex(questionID)
	if err != nil {
		return app_error.Validation(fmt.Sprintf("invalid question ID: %v", err), "question-id")
	}

	res, dErr := r.collection().DeleteOne(ctx, bson.M{"_id": objID})
	if dErr != nil {
		return app_error.Internal(fmt.Sprintf("failed to delete question: %v", dErr), "mongo")
	}
	if res.DeletedCount == 0 {
		return app_error.NotFound("question not found or has been deleted")
	}
	return nil
}

func (r *QuestionRepo) DeleteByRoom(ctx context.Context, roomID string) (int64, *app_error.AppError) {
	res, err := r.collection().DeleteMany(ctx, bson.M{"room_id": roomID})
	if err != nil {
		return 0, app_error.Internal(fmt.Sprintf("failed to delete room questions: %v", err), "mongo")
	}
	return res.DeletedCount, nil
}
