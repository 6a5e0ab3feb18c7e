package models

import (
	"net/mail"
	"strings"
	"time"
)

const (
	RoleUser  = "USER"
	RoleAdmin = "ADMIN"
)

type User struct {
	ID             int64     `json:"id" db:"id"`
	Email          string    `json:"email" db:"email"`
	PasswordHash   string    `json:"-" db:"password_hash"` // never leaves the server
	Name           string    `json:"name" db:"name"`
	AvatarURL      *string   `json:"avatar_url,omitempty" db:"avatar_url"`
	Role           string    `json:"role" db:"role"`
	TelegramChatID *int64    `json:"telegram_chat_id,omitempty" db:"telegram_chat_id"`
	CreatedAt      time.Time `json:"created_at" db:"created_at"`
	UpdatedAt      time.Time `json:"updated_at" db:"updated_at"`
}

type SignupInput struct {
	Name     string `json:"name" binding:"required,max=120"`
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required,min=6,max=72"`
}

func (in *SignupInput) Normalize() error {
	in.Name = strings.TrimSpace(in.Name)
	in.Email = NormalizeEmail(in.Email)
	if in.Name == "" {
		return &ValidationError{Field: "name", Message: "is required"}
	}
	if _, err := mail.ParseAddress(in.Email); err != nil {
		return &ValidationError{Field: "email", Message: "is not a valid address"}
	}
	if len(in.Password) < 6 {
		return &ValidationError{Field: "password", Message: "must be at least 6 characters"}
	}
	return nil
}

type LoginRequest struct {
	Email    string `json:"email" binding:"required"`
	Password string `json:"password" binding:"required"`
}

type UpdateProfileInput struct {
	Name           *string `json:"name" binding:"omitempty,max=120"`
	Email          *string `json:"email" binding:"omitempty,email"`
	TelegramChatID *int64  `json:"telegram_chat_id"`
}

func (in *UpdateProfileInput) Normalize() error {
	if in.Name == nil && in.Email == nil && in.TelegramChatID == nil {
		return &ValidationError{Field: "body", Message: "no fields to update"}
	}
	if in.Name != nil {
		n := strings.TrimSpace(*in.Name)
		if n == "" {
			return &ValidationError{Field: "name", Message: "must not be empty"}
		}
		in.Name = &n
	}
	if in.Email != nil {
		e := NormalizeEmail(*in.Email)
		if _, err := mail.ParseAddress(e); err != nil {
			return &ValidationError{Field: "email", Message: "is not a valid address"}
		}
		in.Email = &e
	}
	return nil
}

type ChangePasswordInput struct {
	CurrentPassword string `json:"current_password" binding:"required"`
	NewPassword     string `json:"new_password" binding:"required,min=6,max=72"`
}

// NormalizeEmail lowercases and trims an address so uniqueness is case-insensitive.
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}
