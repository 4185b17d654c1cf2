package room_dto

import "time"

type RoomResponse struct {
	ID                    string     `json:"id"`
	Name                  string     `json:"name"`
	Code                  string     `json:"code"`
	OwnerName             string     `json:"owner_name"`
	QuestionsVisibleToAll bool       `json:"questions_visible_to_all"`
	Ephemeral             bool       `json:"ephemeral"`
	Status                string     `json:"status"`
	QuestionCount         int64      `json:"question_count"`
	ParticipantCount      int64      `json:"participant_count"`
	ExpiresAt             *time.Time `json:"expires_at,omitempty"`
	CreatedAt             time.Time  `json:"created_at"`
	ClosedAt              *time.Time `json:"closed_at,omitempty"`
}

// JoinRoomResponse is the read-only summary handed to a participant,
// plus the author tag assigned to their voter token.
type JoinRoomResponse struct {
	RoomID                string     `json:"room_id"`
	Name                  string     `json:"name"`
	Code                  string     `json:"code"`
	OwnerName             string     `json:"owner_name"`
	QuestionsVisibleToAll bool       `json:"questions_visible_to_all"`
	Status                string     `json:"status"`
	ExpiresAt             *time.Time `json:"expires_at,omitempty"`
	AuthorTag             string     `json:"author_tag"`
}

type ListRoomsResponse struct {
	Rooms []RoomResponse `json:"rooms"`
}
