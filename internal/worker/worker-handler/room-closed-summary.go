package worker_handler

import (
	"encoding/json"
	"fmt"
	"time"
)

type RoomClosedSummaryPayload struct {
	RoomID           string    `json:"room_id"`
	RoomName         string    `json:"room_name"`
	RoomCode         string    `json:"room_code"`
	OwnerEmail       string    `json:"owner_email"`
	OwnerName        string    `json:"owner_name"`
	QuestionCount    int64     `json:"question_count"`
	AnsweredCount    int64     `json:"answered_count"`
	ParticipantCount int64     `json:"participant_count"`
	ClosedAt         time.Time `json:"closed_at"`
}

// HandleRoomClosedSummary mails the lecturer a recap of a session
// after the room has been closed.
func (h *WorkerHandler) HandleRoomClosedSummary(raw json.RawMessage) error {
	var payload RoomClosedSummaryPayload
	if err := json.Unmarshal(raw, &payload); err != nil {
		return fmt.Errorf("invalid room closed summary payload: %w", err)
	}

	if payload.OwnerEmail == "" {
		// ephemeral rooms have no owner account to mail
		return nil
	}

	subject := fmt.Sprintf("Session summary for %q", payload.RoomName)
	body := fmt.Sprintf(
		"Hello %s,\n\nYour Q&A session %q (code %s) was closed at %s.\n\nParticipants: %d\nQuestions submitted: %d\nQuestions answered: %d\n\nThanks for using QBox.",
		payload.OwnerName,
		payload.RoomName,
		payload.RoomCode,
		payload.ClosedAt.Format(time.RFC1123),
		payload.ParticipantCount,
		payload.QuestionCount,
		payload.AnsweredCount,
	)

	return h.Notifier.Send(payload.OwnerEmail, subject, body)
}
