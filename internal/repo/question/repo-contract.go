package question_repo

import (
	"context"
	"time"

	"go.mongodb.org/mongo-driver/v2/bson"

	"github.com/Pasiduchamod/QBox-Backend/internal/entity"
	app_error "github.com/Pasiduchamod/QBox-Backend/internal/errors"
)

type QuestionRepoContract interface {
	InsertQuestion(ctx context.Context, q *entity.Question) (bson.ObjectID, *app_error.AppError)
	FindQuestionByID(ctx context.Context, questionID string) (*entity.Question, *app_error.AppError)
	ListByRoom(ctx context.Context, roomID string) ([]*entity.Question, *app_error.AppError)
	AddUpvote(ctx context.Context, questionID, voterToken string) *app_error.AppError
	RemoveUpvote(ctx context.Context, questionID, voterToken string) *app_error.AppError
	AddReport(ctx context.Context, questionID, voterToken string) *app_error.AppError
	UpdateStatus(ctx context.Context, questionID string, from []entity.QuestionStatus, to entity.QuestionStatus, answeredAt *time.Time) *app_error.AppError
	DeleteQuestion(ctx context.Context, questionID string) *app_error.AppError
	DeleteByRoom(ctx context.Context, roomID string) (int64, *app_error.AppError)
}
