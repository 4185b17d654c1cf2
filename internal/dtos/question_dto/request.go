package question_dto

import (
	"github.com/go-playground/validator/v10"
	"go.mongodb.org/mongo-driver/v2/bson"
)

type SubmitQuestionRequest struct {
	Text string `json:"text" validate:"required,min=1,max=500"`
}

func ObjectIDValidator(fl validator.FieldLevel) bool {
	_, err := bson.ObjectIDFromHex(fl.Field().String())
	return err == nil
}
