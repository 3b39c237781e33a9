package server

import (
	"qawala/internal/models"
	"qawala/internal/service"

	"github.com/gofiber/fiber/v2"
)

// GetPage handles GET /api/pages/:slug
func (s *Server) GetPage(c *fiber.Ctx) error {
	slug, ok := param(c, "slug")
	if !ok {
		return nil
	}
	page, err := s.pageService.GetBySlug(c.UserContext(), slug)
	if err != nil {
		return models.Respond(c, err)
	}
	return c.JSON(page)
}

func (s *Server) GetPages(c *fiber.Ctx) error {
	pages, err := s.pageService.List(c.UserContext())
	if err != nil {
		return models.Respond(c, err)
	}
	return c.JSON(pages)
}

func (s *Server) CreatePage(c *fiber.Ctx) error {
	var in service.PageInput
	if !parseBody(c, &in) {
		return nil
	}
	page, err := s.pageService.Create(c.UserContext(), in)
	if err != nil {
		return models.Respond(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(page)
}

func (s *Server) UpdatePage(c *fiber.Ctx) error {
	id, ok := param(c, "id")
	if !ok {
		return nil
	}
	var in service.PageInput
	if !parseBody(c, &in) {
		return nil
	}
	page, err := s.pageService.Update(c.UserContext(), id, in)
	if err != nil {
		return models.Respond(c, err)
	}
	return c.JSON(page)
}

func (s *Server) DeletePage(c *fiber.Ctx) error {
	id, ok := param(c, "id")
	if !ok {
		return nil
	}
	if err := s.pageService.Delete(c.UserContext(), id); err != nil {
		return models.Respond(c, err)
	}
	return c.SendStatus(fiber.StatusNoContent)
}
