package dto

import (
	"time"

	"github.com/spec-kit/request-portal/internal/domain"
)

// UpdateProfileRequest payload for editing the caller's profile.
type UpdateProfileRequest struct {
	Name      string  `json:"name"`
	Mobile    *string `json:"mobile"`
	Education string  `json:"education"`
	College   *string `json:"college"`
	Onboarded *bool   `json:"onboarded"`
}

// ProfileResponse is the wire shape of a user profile.
type ProfileResponse struct {
	ID        string      `json:"id"`
	Name      string      `json:"name"`
	Email     string      `json:"email"`
	Mobile    *string     `json:"mobile,omitempty"`
	Education string      `json:"education,omitempty"`
	College   *string     `json:"college,omitempty"`
	Role      domain.Role `json:"role"`
	Onboarded bool        `json:"onboarded"`
	CreatedAt time.Time   `json:"created_at"`
	UpdatedAt time.Time   `json:"updated_at"`
}
