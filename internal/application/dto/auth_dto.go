package dto

import "time"

// IssueTokenRequest datos del operador para emitir un token.
type IssueTokenRequest struct {
	UserID string
	Name   string
	Role   string
	TTL    time.Duration
}

// TokenResponse token emitido.
type TokenResponse struct {
	Token     string    `json:"token"`
	UserID    string    `json:"user_id"`
	Operator  string    `json:"operator"`
	ExpiresAt time.Time `json:"expires_at"`
}
