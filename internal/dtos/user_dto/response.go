package user_dto

import "time"

type UserResponse struct {
	ID        string    `json:"id"`
	Username  string    `json:"username"`
	Email     string    `json:"email"`
	CreatedAt time.Time `json:"created_at"`
}

type AuthResponse struct {
	ID       string `json:"id"`
	Username string `json:"username"`
	Access   string `json:"access_token"`
	// Refresh is delivered via HttpOnly cookie only.
	Refresh string `json:"-"`
}
