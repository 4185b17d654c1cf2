package worker_handler

import (
	"encoding/json"
	"fmt"
)

type WelcomeEmailPayload struct {
	UserID   string `json:"user_id"`
	Username string `json:"username"`
	Email    string `json:"email"`
}

func (h *WorkerHandler) HandleWelcomeEmail(raw json.RawMessage) error {
	var payload WelcomeEmailPayload
	if err := json.Unmarshal(raw, &payload); err != nil {
		return fmt.Errorf("invalid welcome email payload: %w", err)
	}

	subject := "Welcome to QBox"
	body := fmt.Sprintf(
		"Hello %s,\n\nYour lecturer account is ready. Create a room, share its code with your class, and start collecting questions.\n\nThe QBox team",
		payload.Username,
	)

	return h.Notifier.Send(payload.Email, subject, body)
}
