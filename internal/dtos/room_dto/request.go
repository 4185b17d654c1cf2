package room_dto

import (
	"regexp"

	"github.com/go-playground/validator/v10"
)

type CreateRoomRequest struct {
	Name                  string `json:"name" validate:"required,min=1,max=120"`
	QuestionsVisibleToAll bool   `json:"questions_visible_to_all"`
}

type CreateEphemeralRoomRequest struct {
	OwnerName string `json:"owner_name" validate:"required,min=1,max=60"`
}

type JoinRoomRequest struct {
	Code string `json:"code" validate:"required,roomcode"`
}

// Codes are matched case-insensitively; the store keeps them uppercase.
var roomCodeRegex = regexp.MustCompile(`^[A-Za-z0-9]{6}$`)

func RoomCodeValidator(fl validator.FieldLevel) bool {
	return roomCodeRegex.MatchString(fl.Field().String())
}
