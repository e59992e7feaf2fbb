package dto

import (
	"strings"

	validation "github.com/go-ozzo/ozzo-validation"

	"github.com/hongminglow/cabot-property-api/internal/models"
)

// LoginRequest accepts either a username or an email as the login name.
type LoginRequest struct {
	Username string `json:"username"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

// LoginName returns the username when present, otherwise the email.
func (r LoginRequest) LoginName() string {
	if name := strings.TrimSpace(r.Username); name != "" {
		return name
	}
	return strings.TrimSpace(r.Email)
}

// Validate requires a login name and a password.
func (r LoginRequest) Validate() error {
	name := r.LoginName()
	return validation.ValidateStruct(&r,
		validation.Field(&r.Password, validation.Required),
		validation.Field(&r.Username, validation.By(func(any) error {
			return validation.Validate(name, validation.Required)
		})),
	)
}

// UserProfile is the sanitized principal returned to clients.
type UserProfile struct {
	ID           int64       `json:"id"`
	Username     string      `json:"username"`
	Email        string      `json:"email"`
	FirstName    string      `json:"firstName"`
	LastName     string      `json:"lastName"`
	Role         models.Role `json:"role"`
	Organization string      `json:"organization,omitempty"`
	Phone        string      `json:"phone,omitempty"`
}

// ProfileFrom strips credential material from a directory record.
func ProfileFrom(u models.User) UserProfile {
	return UserProfile{
		ID:           u.ID,
		Username:     u.Username,
		Email:        u.Email,
		FirstName:    u.FirstName,
		LastName:     u.LastName,
		Role:         u.Role,
		Organization: u.Organization,
		Phone:        u.Phone,
	}
}

type LoginResponse struct {
	Success bool        `json:"success"`
	Message string      `json:"message"`
	Token   string      `json:"token"`
	User    UserProfile `json:"user"`
}
