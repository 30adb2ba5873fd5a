package handlers

import (
	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/request-portal/internal/api/dto"
	"github.com/spec-kit/request-portal/internal/auth"
	"github.com/spec-kit/request-portal/internal/domain"
	"github.com/spec-kit/request-portal/internal/service"
	apperrors "github.com/spec-kit/request-portal/pkg/util/errorutil"
)

// AdminRequestsHandler manages the triage endpoints.
type AdminRequestsHandler struct {
	service *service.RequestService
}

// NewAdminRequestsHandler constructs handler.
func NewAdminRequestsHandler(requestService *service.RequestService) *AdminRequestsHandler {
	return &AdminRequestsHandler{service: requestService}
}

// List GET /admin/requests.
func (h *AdminRequestsHandler) List(c *fiber.Ctx) error {
	principal, ok := auth.PrincipalFromContext(c)
	if !ok {
		return apperrors.NewUnauthorized("authentication required")
	}
	requests, err := h.service.ListAll(c.UserContext(), principal.Actor())
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": requestResponses(requests)})
}

// Counts GET /admin/requests/counts.
func (h *AdminRequestsHandler) Counts(c *fiber.Ctx) error {
	principal, ok := auth.PrincipalFromContext(c)
	if !ok {
		return apperrors.NewUnauthorized("authentication required")
	}
	counts, err := h.service.Counts(c.UserContext(), principal.Actor())
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": counts})
}

// UpdateStatus POST /admin/requests/:id/status.
func (h *AdminRequestsHandler) UpdateStatus(c *fiber.Ctx) error {
	principal, ok := auth.PrincipalFromContext(c)
	if !ok {
		return apperrors.NewUnauthorized("authentication required")
	}
	var req dto.TransitionRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}
	if req.Status == "" {
		return apperrors.NewValidationError("status required", nil)
	}

	request, err := h.service.TransitionStatus(c.UserContext(), c.Params("id"), domain.RequestStatus(req.Status), principal.Actor())
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": requestResponse(request)})
}

// Stream GET /admin/requests/stream. SSE feed over every request.
func (h *AdminRequestsHandler) Stream(c *fiber.Ctx) error {
	principal, ok := auth.PrincipalFromContext(c)
	if !ok {
		return apperrors.NewUnauthorized("authentication required")
	}
	sub, err := h.service.WatchAll(c.UserContext(), principal.Actor())
	if err != nil {
		return err
	}
	streamSubscription(c, sub)
	return nil
}
