package entity

import (
	"time"

	"go.mongodb.org/mongo-driver/v2/bson"
)

type RoomStatus string

const (
	RoomStatusActive RoomStatus = "active"
	RoomStatusClosed RoomStatus = "closed"
)

type Room struct {
	ID                    bson.ObjectID `bson:"_id,omitempty"`
	Name                  string        `bson:"name"`
	Code                  string        `bson:"code"` // 6 uppercase [A-Z0-9], unique, immutable
	OwnerID               string        `bson:"owner_id"`
	OwnerName             string        `bson:"owner_name"`
	QuestionsVisibleToAll bool          `bson:"questions_visible_to_all"`
	Ephemeral             bool          `bson:"ephemeral"`
	ExpiresAt             *time.Time    `bson:"expires_at,omitempty"`
	Status                RoomStatus    `bson:"status"`
	QuestionCount         int64         `bson:"question_count"`
	ParticipantCount      int64         `bson:"participant_count"`
	CreatedAt             time.Time     `bson:"created_at"`
	ClosedAt              *time.Time    `bson:"closed_at,omitempty"`
}

// IsOwnedBy reports whether userID owns the room. Ephemeral rooms have
// no owner and are never owned by anyone.
func (r *Room) IsOwnedBy(userID string) bool {
	return !r.Ephemeral && r.OwnerID != "" && r.OwnerID == userID
}

// Expired reports whether an ephemeral room has passed its expiry.
// Owned rooms never expire.
func (r *Room) Expired(now time.Time) bool {
	return r.Ephemeral && r.ExpiresAt != nil && now.After(*r.ExpiresAt)
}

// EffectiveStatus treats an expired ephemeral room as closed. Expiry is
// enforced at read/write time; no background purge runs.
func (r *Room) EffectiveStatus(now time.Time) RoomStatus {
	if r.Status == RoomStatusClosed || r.Expired(now) {
		return RoomStatusClosed
	}
	return r.Status
}
