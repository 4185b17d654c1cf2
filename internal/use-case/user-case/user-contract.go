package user_service

import (
	"context"

	"github.com/Pasiduchamod/QBox-Backend/internal/dtos/user_dto"
	app_error "github.com/Pasiduchamod/QBox-Backend/internal/errors"
)

type UserServiceContract interface {
	Register(ctx context.Context, req user_dto.CreateUserRequest) (*user_dto.UserResponse, *app_error.AppError)
	Login(ctx context.Context, req user_dto.LoginUserRequest) (*user_dto.AuthResponse, *app_error.AppError)
	Refresh(ctx context.Context, refreshToken string) (*user_dto.AuthResponse, *app_error.AppError)
	Profile(ctx context.Context, userID string) (*user_dto.UserResponse, *app_error.AppError)
}
