package dto

import (
	"time"

	"github.com/spec-kit/request-portal/internal/domain"
)

// CreateRequestRequest payload for submitting a service request. Name and
// email fall back to the caller's profile when omitted.
type CreateRequestRequest struct {
	Name        string  `json:"name"`
	Email       string  `json:"email"`
	PhoneNumber *string `json:"phone_number"`
	Service     string  `json:"service"`
	Message     string  `json:"message"`
}

// TransitionRequest payload for an admin status change.
type TransitionRequest struct {
	Status string `json:"status"`
}

// RequestResponse is the wire shape of a service request.
type RequestResponse struct {
	ID          string               `json:"id"`
	OwnerID     string               `json:"owner_id"`
	Name        string               `json:"name"`
	Email       string               `json:"email"`
	PhoneNumber *string              `json:"phone_number,omitempty"`
	Service     string               `json:"service"`
	Message     string               `json:"message"`
	Status      domain.RequestStatus `json:"status"`
	CreatedAt   time.Time            `json:"created_at"`
	UpdatedAt   time.Time            `json:"updated_at"`
	CancelledBy *string              `json:"cancelled_by,omitempty"`
	CancelledAt *time.Time           `json:"cancelled_at,omitempty"`
}
