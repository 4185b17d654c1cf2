package room_repo

import (
	"context"
	"time"

	"go.mongodb.org/mongo-driver/v2/bson"

	"github.com/Pasiduchamod/QBox-Backend/internal/entity"
	app_error "github.com/Pasiduchamod/QBox-Backend/internal/errors"
)

type RoomRepoContract interface {
	InsertRoom(ctx context.Context, room *entity.Room) (bson.ObjectID, *app_error.AppError)
	CodeExists(ctx context.Context, code string) (bool, *app_error.AppError)
	CountActiveByOwnerAndName(ctx context.Context, ownerID, name string) (int64, *app_error.AppError)
	FindRoomByID(ctx context.Context, roomID string) (*entity.Room, *app_error.AppError)
	FindRoomByCode(ctx context.Context, code string) (*entity.Room, *app_error.AppError)
	FindRoomsByOwner(ctx context.Context, ownerID string) ([]*entity.Room, *app_error.AppError)
	IncrementParticipants(ctx context.Context, roomID string) (int64, *app_error.AppError)
	IncrementQuestionCount(ctx context.Context, roomID string) *app_error.AppError
	SetVisibility(ctx context.Context, roomID string, visible bool) *app_error.AppError
	CloseRoom(ctx context.Context, roomID string, closedAt time.Time) *app_error.AppError
	DeleteRoom(ctx context.Context, roomID string) *app_error.AppError
}
