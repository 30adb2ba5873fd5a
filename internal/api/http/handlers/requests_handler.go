package handlers

import (
	"net/http"

	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/request-portal/internal/api/dto"
	"github.com/spec-kit/request-portal/internal/auth"
	"github.com/spec-kit/request-portal/internal/domain"
	"github.com/spec-kit/request-portal/internal/service"
	apperrors "github.com/spec-kit/request-portal/pkg/util/errorutil"
)

// RequestsHandler manages the submitter-facing request endpoints.
type RequestsHandler struct {
	service *service.RequestService
}

// NewRequestsHandler constructs handler.
func NewRequestsHandler(requestService *service.RequestService) *RequestsHandler {
	return &RequestsHandler{service: requestService}
}

// Create POST /requests.
func (h *RequestsHandler) Create(c *fiber.Ctx) error {
	principal, ok := auth.PrincipalFromContext(c)
	if !ok {
		return apperrors.NewUnauthorized("authentication required")
	}
	var req dto.CreateRequestRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}

	input := service.RequestCreateInput{
		Name:        req.Name,
		Email:       req.Email,
		PhoneNumber: req.PhoneNumber,
		Service:     req.Service,
		Message:     req.Message,
	}
	// profile attributes prefill the submitter fields
	if input.Name == "" {
		input.Name = principal.Profile.Name
	}
	if input.Email == "" {
		input.Email = principal.Profile.Email
	}
	if input.PhoneNumber == nil {
		input.PhoneNumber = principal.Profile.Mobile
	}

	request, err := h.service.CreateRequest(c.UserContext(), principal.Profile.ID, input)
	if err != nil {
		return err
	}
	return c.Status(http.StatusCreated).JSON(fiber.Map{"data": requestResponse(request)})
}

// List GET /requests.
func (h *RequestsHandler) List(c *fiber.Ctx) error {
	principal, ok := auth.PrincipalFromContext(c)
	if !ok {
		return apperrors.NewUnauthorized("authentication required")
	}
	requests, err := h.service.ListForOwner(c.UserContext(), principal.Profile.ID)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": requestResponses(requests)})
}

// Cancel POST /requests/:id/cancel. The only owner-side transition.
func (h *RequestsHandler) Cancel(c *fiber.Ctx) error {
	principal, ok := auth.PrincipalFromContext(c)
	if !ok {
		return apperrors.NewUnauthorized("authentication required")
	}
	request, err := h.service.TransitionStatus(c.UserContext(), c.Params("id"), domain.RequestStatusCancelled, principal.Actor())
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": requestResponse(request)})
}

// Stream GET /requests/stream. SSE feed of the owner's request list.
func (h *RequestsHandler) Stream(c *fiber.Ctx) error {
	principal, ok := auth.PrincipalFromContext(c)
	if !ok {
		return apperrors.NewUnauthorized("authentication required")
	}
	sub := h.service.WatchOwner(c.UserContext(), principal.Profile.ID)
	streamSubscription(c, sub)
	return nil
}

func requestResponse(request *domain.ServiceRequest) dto.RequestResponse {
	return dto.RequestResponse{
		ID:          request.ID,
		OwnerID:     request.OwnerID,
		Name:        request.Name,
		Email:       request.Email,
		PhoneNumber: request.PhoneNumber,
		Service:     request.Service,
		Message:     request.Message,
		Status:      request.Status,
		CreatedAt:   request.CreatedAt,
		UpdatedAt:   request.UpdatedAt,
		CancelledBy: request.CancelledBy,
		CancelledAt: request.CancelledAt,
	}
}

func requestResponses(requests []domain.ServiceRequest) []dto.RequestResponse {
	items := make([]dto.RequestResponse, 0, len(requests))
	for i := range requests {
		items = append(items, requestResponse(&requests[i]))
	}
	return items
}
