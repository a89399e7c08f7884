package models

import (
	"strings"
	"time"

	validation "github.com/go-ozzo/ozzo-validation/v4"
	"github.com/go-ozzo/ozzo-validation/v4/is"
)

const MinPasswordLength = 8

type User struct {
	ID      string `json:"id"`
	Name    string `json:"name"`
	Email   string `json:"email"`
	IsAdmin bool   `json:"isAdmin"`
}

// AuthState mirrors what the header and guarded pages need to know about
// the caller.
type AuthState struct {
	User            *User   `json:"user"`
	IsAuthenticated bool    `json:"isAuthenticated"`
	IsLoading       bool    `json:"isLoading"`
	Error           *string `json:"error"`
}

type Session struct {
	ID        string    `json:"id"`
	Token     string    `json:"token"`
	User      User      `json:"user"`
	IssuedAt  time.Time `json:"issued_at"`
	ExpiresAt time.Time `json:"expires_at"`
}

func (s Session) Expired(now time.Time) bool {
	return !s.ExpiresAt.IsZero() && !now.Before(s.ExpiresAt)
}

type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

func (r LoginRequest) Validate() error {
	return validation.ValidateStruct(&r,
		validation.Field(&r.Email,
			validation.Required.Error("Email is required"),
			is.EmailFormat.Error("Email address is invalid"),
		),
		validation.Field(&r.Password, validation.Required.Error("Password is required")),
	)
}

type SignupRequest struct {
	Name            string `json:"name"`
	Email           string `json:"email"`
	Password        string `json:"password"`
	ConfirmPassword string `json:"confirmPassword"`
}

func (r SignupRequest) Validate() error {
	return validation.ValidateStruct(&r,
		validation.Field(&r.Name, validation.Required.Error("Name is required")),
		validation.Field(&r.Email,
			validation.Required.Error("Email is required"),
			is.EmailFormat.Error("Email address is invalid"),
		),
		validation.Field(&r.Password,
			validation.Required.Error("Password is required"),
			validation.Length(MinPasswordLength, 0).Error("Password must be at least 8 characters"),
		),
		validation.Field(&r.ConfirmPassword,
			validation.Required.Error("Please confirm your password"),
			validation.In(r.Password).Error("Passwords do not match"),
		),
	)
}

type ContactRequest struct {
	Name    string `json:"name"`
	Email   string `json:"email"`
	Message string `json:"message"`
}

func (r ContactRequest) Validate() error {
	return validation.ValidateStruct(&r,
		validation.Field(&r.Name, validation.Required.Error("Name is required")),
		validation.Field(&r.Email,
			validation.Required.Error("Email is required"),
			is.EmailFormat.Error("Email address is invalid"),
		),
		validation.Field(&r.Message, validation.Required.Error("Message is required")),
	)
}

// NormalizeEmail is the directory lookup key.
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}
