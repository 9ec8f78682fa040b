package dto

import "time"

// UnlockRequest carries the gate secret for a dashboard unlock.
type UnlockRequest struct {
	Password string `json:"password" validate:"required"`
}

// UnlockResponse carries the bearer token for an unlocked dashboard session.
type UnlockResponse struct {
	Token     string    `json:"token"`
	ExpiresAt time.Time `json:"expires_at"`
}
