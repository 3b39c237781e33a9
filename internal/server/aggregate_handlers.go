package server

import (
	"qawala/internal/models"

	"github.com/gofiber/fiber/v2"
)

// GetHome handles GET /api/home
func (s *Server) GetHome(c *fiber.Ctx) error {
	home, err := s.aggregateService.Home(c.UserContext())
	if err != nil {
		return models.Respond(c, err)
	}
	return c.JSON(home)
}

// GetDashboard handles GET /api/admin/dashboard
func (s *Server) GetDashboard(c *fiber.Ctx) error {
	dashboard, err := s.aggregateService.Dashboard(c.UserContext())
	if err != nil {
		return models.Respond(c, err)
	}
	return c.JSON(dashboard)
}
