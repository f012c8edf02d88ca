package handlers

import (
	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/user-service/internal/service"
)

// BlacklistHandler exposes admin maintenance endpoints for the revocation store.
type BlacklistHandler struct {
	blacklist *service.TokenBlacklistService
}

// NewBlacklistHandler constructs handler.
func NewBlacklistHandler(blacklistService *service.TokenBlacklistService) *BlacklistHandler {
	return &BlacklistHandler{blacklist: blacklistService}
}

// Size handles GET /admin/blacklist.
func (h *BlacklistHandler) Size(c *fiber.Ctx) error {
	size, err := h.blacklist.Size(c.UserContext())
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": fiber.Map{"size": size}})
}

// Clear handles DELETE /admin/blacklist.
func (h *BlacklistHandler) Clear(c *fiber.Ctx) error {
	if err := h.blacklist.Clear(c.UserContext()); err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": fiber.Map{"message": "blacklist cleared"}})
}
