package room_repo

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/rs/zerolog/log"
	"go.mongodb.org/mongo-driver/v2/bson"
	"go.mongodb.org/mongo-driver/v2/mongo"
	"go.mongodb.org/mongo-driver/v2/mongo/options"

	"github.com/Pasiduchamod/QBox-Backend/internal/entity"
	app_error "github.com/Pasiduchamod/QBox-Backend/internal/errors"
	"github.com/Pasiduchamod/QBox-Backend/state"
)

type RoomRepo struct {
	AppState *state.AppState
}

func NewRoomRepo(appState *state.AppState) RoomRepoContract {
	return &RoomRepo{
		AppState: appState,
	}
}

func (r *RoomRepo) collection() *mongo.Collection {
	return r.AppState.Documents().Collection("rooms")
}

func (r *RoomRepo) InsertRoom(ctx context.Context, room *entity.Room) (bson.ObjectID, *app_error.AppError) {
	res, err := r.collection().InsertOne(ctx, room)
	if err != nil {
		if mongo.IsDuplicateKeyError(err) {
			// unique index on code lost a race; caller re-draws
			return bson.NilObjectID, app_error.NewAppError(409, app_error.KindCodeSpaceExhausted, "room code already taken", "code")
		}
		return bson.NilObjectID, app_error.Internal(fmt.Sprintf("failed to create room: %v", err), "mongo")
	}

	id, _ := res.InsertedID.(bson.ObjectID)
	return id, nil
}

func (r *RoomRepo) CodeExists(ctx context.Context, code string) (bool, *app_error.AppError) {
	count, err := r.collection().CountDocuments(ctx, bson.M{"code": code})
	if err != nil {
		return false, app_error.Internal(fmt.Sprintf("failed to check room code: %v", err), "mongo")
	}
	return count > 0, nil
}

func (r *RoomRepo) CountActiveByOwnerAndName(ctx context.Context, ownerID, name string) (int64, *app_error.AppError) {
	filter := bson.M{
		"owner_id": ownerID,
		"name":     name,
		"status":   entity.RoomStatusActive,
	}
	count, err := r.collection().CountDocuments(ctx, filter)
	if err != nil {
		return 0, app_error.Internal(fmt.Sprintf("failed to count rooms: %v", err), "mongo")
	}
	return count, nil
}

func (r *RoomRepo) FindRoomByID(ctx context.Context, roomID string) (*entity.Room, *app_error.AppError) {
	objID, err := bson.ObjectIDFromHex(roomID)
	if err != nil {
		return nil, app_error.Validation(fmt.Sprintf("invalid room ID: %v", err), "room-id")
	}

	var room entity.Room
	if err := r.collection().FindOne(ctx, bson.M{"_id": objID}).Decode(&room); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, app_error.NotFound("room not found")
		}
		return nil, app_error.Internal(fmt.Sprintf("failed to fetch room: %v", err), "mongo")
	}

	return &room, nil
}

func (r *RoomRepo) FindRoomByCode(ctx context.Context, code string) (*entity.Room, *app_error.AppError) {
	var room entity.Room
	if err := r.collection().FindOne(ctx, bson.M{"code": code}).Decode(&room); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, app_error.NotFound("room not found")
		}
		return nil, app_error.Internal(fmt.Sprintf("failed to fetch room: %v", err), "mongo")
	}

	return &room, nil
}

func (r *RoomRepo) FindRoomsByOwner(ctx context.Context, ownerID string) ([]*entity.Room, *app_error.AppError) {
	cur, err := r.collection().Find(ctx, bson.M{"owner_id": ownerID},
		options.Find().SetSort(bson.D{{Key: "created_at", Value: -1}}))
	if err != nil {
		return nil, app_error.Internal(fmt.Sprintf("failed to fetch rooms: %v", err), "mongo")
	}
	defer cur.Close(ctx)

	var rooms []*entity.Room
	if err := cur.All(ctx, &rooms); err != nil {
		return nil, app_error.Internal(fmt.Sprintf("failed to decode rooms: %v", err), "mongo")
	}

	return rooms, nil
}

// IncrementParticipants bumps participant_count and returns the new value.
// The counter never decrements; it doubles as the "Student N" tag source.
func (r *RoomRepo) IncrementParticipants(ctx context.Context, roomID string) (int64, *app_error.AppError) {
	objID, err := bson.ObjectIDFromHex(roomID)
	if err != nil {
		return 0, app_error.Validation(fmt.Sprintf("invalid room ID: %v", err), "room-id")
	}

	var room entity.Room
	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)
	if err := r.collection().FindOneAndUpdate(ctx,
		bson.M{"_id": objID},
		bson.M{"$inc": bson.M{"participant_count": 1}},
		opts,
	).Decode(&room); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return 0, app_error.NotFound("room not found")
		}
		return 0, app_error.Internal(fmt.Sprintf("failed to update participant count: %v", err), "mongo")
	}

	return room.ParticipantCount, nil
}

func (r *RoomRepo) IncrementQuestionCount(ctx context.Context, roomID string) *app_error.AppError {
	objID, err := bson.ObjectIDFromHex(roomID)
	if err != nil {
		return app_error.Validation(fmt.Sprintf("invalid room ID: %v", err), "room-id")
	}

	if _, err := r.collection().UpdateOne(ctx,
		bson.M{"_id": objID},
		bson.M{"$inc": bson.M{"question_count": 1}},
	); err != nil {
		return app_error.Internal(fmt.Sprintf("failed to update question count: %v", err), "mongo")
	}
	return nil
}

func (r *RoomRepo) SetVisibility(ctx context.Context, roomID string, visible bool) *app_error.AppError {
	objID, err := bson.ObjectIDFromHex(roomID)
	if err != nil {
		return app_error.Validation(fmt.Sprintf("invalid room ID: %v", err), "room-id")
	}

	res, uErr := r.collection().UpdateOne(ctx,
		bson.M{"_id": objID},
		bson.M{"$set": bson.M{"questions_visible_to_all": visible}},
	)
	if uErr != nil {
		return app_error.Internal(fmt.Sprintf("failed to update visibility: %v", uErr), "mongo")
	}
	if res.MatchedCount == 0 {
		return app_error.NotFound("room not found")
	}
	return nil
}

func (r *RoomRepo) CloseRoom(ctx context.Context, roomID string, closedAt time.Time) *app_error.AppError {
	objID, err := bson.ObjectIDFromHex(roomID)
	if err != nil {
		return app_error.Validation(fmt.Sprintf("invalid room ID: %v", err), "room-id")
	}

	// status guard keeps a concurrent double-close from re-stamping closed_at
	res, uErr := r.collection().UpdateOne(ctx,
		bson.M{"_id": objID, "status": entity.RoomStatusActive},
		bson.M{"$set": bson.M{"status": entity.RoomStatusClosed, "closed_at": closedAt}},
	)
	if uErr != nil {
		return app_error.Internal(fmt.Sprintf("failed to close room: %v", uErr), "mongo")
	}
	if res.MatchedCount == 0 {
		return app_error.AlreadyClosed("room already closed")
	}
	return nil
}

func (r *RoomRepo) DeleteRoom(ctx context.Context, roomID string) *app_error.AppError {
	objID, err := bson.ObjectIDFromHex(roomID)
	if err != nil {
		return app_error.Validation(fmt.Sprintf("invalid room ID: %v", err), "room-id")
	}

	res, dErr := r.collection().DeleteOne(ctx, bson.M{"_id": objID})
	if dErr != nil {
		return app_error.Internal(fmt.Sprintf("failed to delete room: %v", dErr), "mongo")
	}
	if res.DeletedCount == 0 {
		return app_error.NotFound("room not found")
	}

	log.Info().Str("roomID", roomID).Msg("room deleted")
	return nil
}
