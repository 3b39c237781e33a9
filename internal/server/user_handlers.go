package server

import (
	"qawala/internal/middleware"
	"qawala/internal/models"
	"qawala/internal/service"

	"github.com/gofiber/fiber/v2"
)

// GetMyProfile handles GET /api/users/me
func (s *Server) GetMyProfile(c *fiber.Ctx) error {
	user, err := s.userService.Get(c.UserContext(), middleware.UserID(c))
	if err != nil {
		return models.Respond(c, err)
	}
	return c.JSON(user)
}

// UpdateMyProfile handles PUT /api/users/me. The role in the body, if any, is ignored.
func (s *Server) UpdateMyProfile(c *fiber.Ctx) error {
	var in service.ProfileInput
	if !parseBody(c, &in) {
		return nil
	}
	user, err := s.userService.SaveProfile(c.UserContext(), middleware.UserID(c), in)
	if err != nil {
		return models.Respond(c, err)
	}
	return c.JSON(user)
}

// GetUsers handles GET /api/admin/users
func (s *Server) GetUsers(c *fiber.Ctx) error {
	page := parsePagination(c, 50)
	users, err := s.userService.List(c.UserContext(), page.Limit, page.Offset)
	if err != nil {
		return models.Respond(c, err)
	}
	return c.JSON(users)
}

// SetUserRole handles PUT /api/admin/users/:uid/role
func (s *Server) SetUserRole(c *fiber.Ctx) error {
	uid, ok := param(c, "uid")
	if !ok {
		return nil
	}
	var req struct {
		Role string `json:"role"`
	}
	if !parseBody(c, &req) {
		return nil
	}
	if err := s.userService.SetRole(c.UserContext(), middleware.UserID(c), uid, req.Role); err != nil {
		return models.Respond(c, err)
	}
	return c.JSON(fiber.Map{"uid": uid, "role": req.Role})
}
