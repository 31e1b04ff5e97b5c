package grpc

import "github.com/bierclub/bier/internal/server/models"

type RegisterRequest struct {
	Username string `json:"username"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type AuthResponse struct {
	User              *models.User `json:"user"`
	Token             string       `json:"token"`
	EncryptedMetadata string       `json:"encrypted_metadata"`
}

type Empty struct{}

type OKResponse struct {
	OK bool `json:"ok"`
}

type TokenRequest struct {
	Token string `json:"token"`
}

type ForgotPasswordRequest struct {
	Email string `json:"email"`
}

type ResetPasswordRequest struct {
	Token       string `json:"token"`
	NewPassword string `json:"new_password"`
}

type SendMessageRequest struct {
	ClubID  int64  `json:"club_id"`
	Content string `json:"content"`
}

type ListMessagesRequest struct {
	ClubID int64 `json:"club_id"`
	Limit  int   `json:"limit"`
}

type ListMessagesResponse struct {
	Messages []models.Message `json:"messages"`
}
