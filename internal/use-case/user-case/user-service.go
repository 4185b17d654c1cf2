package user_service

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"github.com/Pasiduchamod/QBox-Backend/internal/dtos/user_dto"
	"github.com/Pasiduchamod/QBox-Backend/internal/entity"
	app_error "github.com/Pasiduchamod/QBox-Backend/internal/errors"
	"github.com/Pasiduchamod/QBox-Backend/internal/queue"
	user_repo "github.com/Pasiduchamod/QBox-Backend/internal/repo/user"
	"github.com/Pasiduchamod/QBox-Backend/internal/utils"
	"github.com/Pasiduchamod/QBox-Backend/internal/utils/types"
	worker_handler "github.com/Pasiduchamod/QBox-Backend/internal/worker/worker-handler"
	"github.com/Pasiduchamod/QBox-Backend/state"
)

const refreshSessionTTL = 7 * 24 * time.Hour

type UserService struct {
	AppState *state.AppState
	UserRepo user_repo.UserRepoContract
	Producer queue.Producer
}

func NewUserService(appState *state.AppState) UserServiceContract {
	return &UserService{
		AppState: appState,
		UserRepo: user_repo.NewUserRepo(appState),
		Producer: queue.NewProducer(appState.Redis),
	}
}

func (u *UserService) Register(ctx context.Context, req user_dto.CreateUserRequest) (*user_dto.UserResponse, *app_error.AppError) {
	filter := entity.UserFilter{
		Email:    &req.Email,
		Username: &req.Username,
	}
	count, err := u.UserRepo.CountUser(ctx, filter)
	if err != nil {
		return nil, err
	}
	if count > 0 {
		return nil, app_error.NewAppError(http.StatusConflict, app_error.KindValidation, "username or email already registered", "credential")
	}

	hashed, hashErr := utils.GenerateHash(req.Password)
	if hashErr != nil {
		return nil, app_error.Internal(hashErr.Error(), "password")
	}

	user := &entity.User{
		ID:           uuid.New().String(),
		Username:     req.Username,
		Email:        req.Email,
		PasswordHash: hashed,
		IsActive:     true,
		CreatedAt:    time.Now(),
		UpdatedAt:    time.Now(),
	}

	if err := u.UserRepo.SaveUser(ctx, *user); err != nil {
		return nil, err
	}

	u.enqueueWelcome(ctx, user)

	return &user_dto.UserResponse{
		ID:        user.ID,
		Email:     user.Email,
		Username:  user.Username,
		CreatedAt: user.CreatedAt,
	}, nil
}

func (u *UserService) enqueueWelcome(ctx context.Context, user *entity.User) {
	now := time.Now()
	job := queue.Job{
		ID:       uuid.NewString(),
		Type:     queue.JobTypeWelcomeEmail,
		Priority: 2,
		MaxRetry: 3,
		Payload: queue.MustMarshal(worker_handler.WelcomeEmailPayload{
			UserID:   user.ID,
			Username: user.Username,
			Email:    user.Email,
		}),
		CreatedAt: now.Unix(),
		ExpireAt:  now.Add(24 * time.Hour).Unix(),
	}

	if err := u.Producer.Enqueue(ctx, job); err != nil {
		log.Warn().Err(err).Str("userId", user.ID).Msg("failed to enqueue welcome job")
	}
}

func (u *UserService) Login(ctx context.Context, req user_dto.LoginUserRequest) (*user_dto.AuthResponse, *app_error.AppError) {
	user, err := u.UserRepo.FindUserByEmail(ctx, req.Email)
	if err != nil {
		if err.Kind == app_error.KindNotFound {
			return nil, app_error.Unauthorized("invalid credentials")
		}
		return nil, err
	}

	ok, vErr := utils.VerifyHash(user.PasswordHash, req.Password)
	if vErr != nil {
		return nil, app_error.Internal(vErr.Error(), "password")
	}
	if !ok {
		return nil, app_error.Unauthorized("invalid credentials")
	}

	return u.issueSession(ctx, user)
}

func (u *UserService) Refresh(ctx context.Context, refreshToken string) (*user_dto.AuthResponse, *app_error.AppError) {
	claims, err := utils.ParseAndVerifySign(refreshToken, u.AppState.JwtSecret.Public)
	if err != nil || claims.Jti == nil {
		return nil, app_error.Unauthorized("invalid refresh token")
	}

	sessionKey := refreshSessionKey(claims.Sub, *claims.Jti)
	session, cacheErr := utils.GetCacheData[types.RefreshSession](ctx, u.AppState.Redis, sessionKey)
	if cacheErr != nil {
		return nil, cacheErr
	}
	if session == nil || session.Status != "active" {
		return nil, app_error.Unauthorized("refresh session expired or revoked")
	}

	// rotation: the old session dies with this exchange
	if err := utils.DeleteCacheData(ctx, u.AppState.Redis, sessionKey); err != nil {
		log.Warn().Err(err).Str("userId", claims.Sub).Msg("failed to revoke old refresh session")
	}

	user, uErr := u.UserRepo.FindUserByID(ctx, claims.Sub)
	if uErr != nil {
		return nil, uErr
	}

	return u.issueSession(ctx, user)
}

func (u *UserService) Profile(ctx context.Context, userID string) (*user_dto.UserResponse, *app_error.AppError) {
	user, err := u.UserRepo.FindUserByID(ctx, userID)
	if err != nil {
		return nil, err
	}

	return &user_dto.UserResponse{
		ID:        user.ID,
		Email:     user.Email,
		Username:  user.Username,
		CreatedAt: user.CreatedAt,
	}, nil
}

func (u *UserService) issueSession(ctx context.Context, user *entity.User) (*user_dto.AuthResponse, *app_error.AppError) {
	access, refresh, jti, err := utils.IssueNewTokens(user.ID, user.Username, u.AppState.JwtSecret.Private)
	if err != nil {
		return nil, app_error.Internal("failed to issue tokens", "jwt")
	}

	now := time.Now()
	session := types.RefreshSession{
		UserId:   user.ID,
		JTI:      jti,
		IssueAt:  now.Unix(),
		ExpireAt: now.Add(refreshSessionTTL).Unix(),
		Status:   "active",
	}

	if err := utils.SetCacheData(ctx, u.AppState.Redis, refreshSessionKey(user.ID, jti), &session, refreshSessionTTL); err != nil {
		return nil, app_error.Internal("failed to store refresh session", "redis")
	}

	return &user_dto.AuthResponse{
		ID:       user.ID,
		Username: user.Username,
		Access:   access,
		Refresh:  refresh,
	}, nil
}

func refreshSessionKey(userID, jti string) string {
	return fmt.Sprintf("refresh:%s:%s", userID, jti)
}
