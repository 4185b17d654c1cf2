package entity

import (
	"time"

	"go.mongodb.org/mongo-driver/v2/bson"
)

type QuestionStatus string

const (
	QuestionStatusPending  QuestionStatus = "pending"
	QuestionStatusApproved QuestionStatus = "approved"
	QuestionStatusAnswered QuestionStatus = "answered"
	QuestionStatusRejected QuestionStatus = "rejected"
)

type Question struct {
	ID        bson.ObjectID `bson:"_id,omitempty"`
	RoomID    string        `bson:"room_id"`
	Text      string        `bson:"text"`
	AuthorTag string        `bson:"author_tag"`
	// AuthorToken is the submitter's voter token. It is kept for the
	// "own questions" visibility rule and never leaves the server.
	AuthorToken string         `bson:"author_token"`
	UpvotedBy   []string       `bson:"upvoted_by"`
	UpvoteCount int            `bson:"upvote_count"`
	ReportedBy  []string       `bson:"reported_by"`
	ReportCount int            `bson:"report_count"`
	IsReported  bool           `bson:"is_reported"`
	Status      QuestionStatus `bson:"status"`
	CreatedAt   time.Time      `bson:"created_at"`
	AnsweredAt  *time.Time     `bson:"answered_at,omitempty"`
}

// HasUpvoteFrom reports whether the voter token already upvoted.
func (q *Question) HasUpvoteFrom(token string) bool {
	for _, t := range q.UpvotedBy {
		if t == token {
			return true
		}
	}
	return false
}

// HasReportFrom reports whether the voter token already reported.
func (q *Question) HasReportFrom(token string) bool {
	for _, t := range q.ReportedBy {
		if t == token {
			return true
		}
	}
	return false
}
