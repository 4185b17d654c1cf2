package question_service

import (
	"context"

	"github.com/Pasiduchamod/QBox-Backend/internal/dtos/question_dto"
	app_error "github.com/Pasiduchamod/QBox-Backend/internal/errors"
)

type QuestionServiceContract interface {
	Submit(ctx context.Context, roomID string, req question_dto.SubmitQuestionRequest, voterToken string) (*question_dto.QuestionResponse, *app_error.AppError)
	ToggleUpvote(ctx context.Context, questionID, voterToken string) (*question_dto.QuestionResponse, *app_error.AppError)
	Report(ctx context.Context, questionID, voterToken string) (*question_dto.QuestionResponse, *app_error.AppError)
	Approve(ctx context.Context, questionID, callerID string) (*question_dto.QuestionResponse, *app_error.AppError)
	MarkAnswered(ctx context.Context, questionID, callerID string) (*question_dto.QuestionResponse, *app_error.AppError)
	Reject(ctx context.Context, questionID, callerID string) (*question_dto.QuestionResponse, *app_error.AppError)
	Remove(ctx context.Context, questionID, callerID string) *app_error.AppError
	List(ctx context.Context, roomID, callerID, voterToken string) (*question_dto.ListQuestionsResponse, *app_error.AppError)
}
