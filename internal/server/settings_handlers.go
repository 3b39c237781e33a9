package server

import (
	"qawala/internal/models"

	"github.com/gofiber/fiber/v2"
)

// GetSettings handles GET /api/settings
func (s *Server) GetSettings(c *fiber.Ctx) error {
	settings, err := s.settingsService.Get(c.UserContext())
	if err != nil {
		return models.Respond(c, err)
	}
	return c.JSON(settings)
}

// UpdateSettings handles PUT /api/admin/settings
func (s *Server) UpdateSettings(c *fiber.Ctx) error {
	var in models.SiteSettings
	if !parseBody(c, &in) {
		return nil
	}
	settings, err := s.settingsService.Save(c.UserContext(), in)
	if err != nil {
		return models.Respond(c, err)
	}
	return c.JSON(settings)
}
