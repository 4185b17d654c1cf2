package user_repo

import (
	"context"

	"github.com/Pasiduchamod/QBox-Backend/internal/entity"
	app_error "github.com/Pasiduchamod/QBox-Backend/internal/errors"
)

// UserRepoContract is the UserDirectory capability: create users and find
// them by email. Everything else about accounts lives outside the core.
type UserRepoContract interface {
	CountUser(ctx context.Context, filter entity.UserFilter) (int64, *app_error.AppError)
	SaveUser(ctx context.Context, model entity.User) *app_error.AppError
	FindUserByID(ctx context.Context, userId string) (*entity.User, *app_error.AppError)
	FindUserByEmail(ctx context.Context, email string) (*entity.User, *app_error.AppError)
}
