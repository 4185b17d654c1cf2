package room_service

import (
	"context"

	"github.com/Pasiduchamod/QBox-Backend/internal/dtos/room_dto"
	app_error "github.com/Pasiduchamod/QBox-Backend/internal/errors"
)

type RoomServiceContract interface {
	Create(ctx context.Context, req room_dto.CreateRoomRequest, ownerID, ownerName string) (*room_dto.RoomResponse, *app_error.AppError)
	CreateEphemeral(ctx context.Context, req room_dto.CreateEphemeralRoomRequest) (*room_dto.RoomResponse, *app_error.AppError)
	Join(ctx context.Context, code, voterToken string) (*room_dto.JoinRoomResponse, *app_error.AppError)
	Get(ctx context.Context, roomID string) (*room_dto.RoomResponse, *app_error.AppError)
	ListOwned(ctx context.Context, ownerID string) (*room_dto.ListRoomsResponse, *app_error.AppError)
	ToggleVisibility(ctx context.Context, roomID, callerID string) (*room_dto.RoomResponse, *app_error.AppError)
	Close(ctx context.Context, roomID, callerID string) (*room_dto.RoomResponse, *app_error.AppError)
	Delete(ctx context.Context, roomID, callerID string) *app_error.AppError
}
