package websocket

import "time"

// Event names broadcast to a room's subscribers. Each corresponds to one
// mutation on the room or its questions and is emitted only after the
// store write has committed.
const (
	EventUserJoined             = "user-joined"
	EventUserLeft               = "user-left"
	EventNewQuestion            = "new-question"
	EventQuestionUpvoteUpdate   = "question-upvote-update"
	EventQuestionApproval       = "question-approval"
	EventQuestionMarkedAnswered = "question-marked-answered"
	EventQuestionRemoved        = "question-removed"
	EventRoomStatusChanged      = "room-status-changed"
	EventRoomVisibilityChanged  = "room-visibility-changed"
)

type OutgoingMessage struct {
	Type      string         `json:"type"`
	RoomCode  string         `json:"room_code"`
	Data      map[string]any `json:"data,omitempty"`
	Timestamp int64          `json:"timestamp"`
}

func NewEvent(eventType string, data map[string]any) OutgoingMessage {
	return OutgoingMessage{
		Type:      eventType,
		Data:      data,
		Timestamp: time.Now().Unix(),
	}
}
