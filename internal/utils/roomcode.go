package utils

import (
	"crypto/rand"
	"fmt"
)

const (
	RoomCodeLength   = 6
	RoomCodeAlphabet = "ABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789"
)

// GenerateRoomCode draws RoomCodeLength characters uniformly from
// [A-Z0-9]. Uniqueness against the store is the caller's job; the unique
// index on rooms.code is the final arbiter under races.
func GenerateRoomCode() string {
	b := make([]byte, RoomCodeLength)
	_, _ = rand.Read(b)
	for i := range b {
		b[i] = RoomCodeAlphabet[int(b[i])%len(RoomCodeAlphabet)]
	}
	return string(b)
}

// AuthorTagKey is the redis key holding the author tag assigned to a
// voter token when it joined the room.
func AuthorTagKey(roomID, voterToken string) string {
	return fmt.Sprintf("room:%s:tag:%s", roomID, voterToken)
}

// StudentTag names the nth participant to join a room.
func StudentTag(n int64) string {
	return fmt.Sprintf("Student %d", n)
}
