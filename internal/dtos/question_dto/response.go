package question_dto

import (
	"time"

	"github.com/Pasiduchamod/QBox-Backend/internal/entity"
)

type QuestionResponse struct {
	ID          string     `json:"id"`
	RoomID      string     `json:"room_id"`
	Text        string     `json:"text"`
	AuthorTag   string     `json:"author_tag"`
	UpvoteCount int        `json:"upvote_count"`
	ReportCount int        `json:"report_count"`
	IsReported  bool       `json:"is_reported"`
	Status      string     `json:"status"`
	CreatedAt   time.Time  `json:"created_at"`
	AnsweredAt  *time.Time `json:"answered_at,omitempty"`
}

type ListQuestionsResponse struct {
	Questions []QuestionResponse `json:"questions"`
}

func FromEntity(q *entity.Question) QuestionResponse {
	return QuestionResponse{
		ID:          q.ID.Hex(),
		RoomID:      q.RoomID,
		Text:        q.Text,
		AuthorTag:   q.AuthorTag,
		UpvoteCount: q.UpvoteCount,
		ReportCount: q.ReportCount,
		IsReported:  q.IsReported,
		Status:      string(q.Status),
		CreatedAt:   q.CreatedAt,
		AnsweredAt:  q.AnsweredAt,
	}
}
