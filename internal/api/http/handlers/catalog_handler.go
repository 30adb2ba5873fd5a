package handlers

import (
	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/request-portal/internal/domain"
)

// CatalogHandler serves the public services catalog.
type CatalogHandler struct{}

// NewCatalogHandler returns a new handler instance.
func NewCatalogHandler() *CatalogHandler {
	return &CatalogHandler{}
}

// List GET /services.
func (h *CatalogHandler) List(c *fiber.Ctx) error {
	return c.JSON(fiber.Map{"data": domain.Catalog})
}
