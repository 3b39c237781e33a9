package server

import (
	"qawala/internal/models"
	"qawala/internal/service"

	"github.com/gofiber/fiber/v2"
)

// GetTestimonials handles GET /api/testimonials
func (s *Server) GetTestimonials(c *fiber.Ctx) error {
	testimonials, err := s.testimonialService.List(c.UserContext(), c.QueryInt("limit", 0))
	if err != nil {
		return models.Respond(c, err)
	}
	return c.JSON(testimonials)
}

func (s *Server) CreateTestimonial(c *fiber.Ctx) error {
	var in service.TestimonialInput
	if !parseBody(c, &in) {
		return nil
	}
	t, err := s.testimonialService.Create(c.UserContext(), in)
	if err != nil {
		return models.Respond(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(t)
}

func (s *Server) UpdateTestimonial(c *fiber.Ctx) error {
	id, ok := param(c, "id")
	if !ok {
		return nil
	}
	var in service.TestimonialInput
	if !parseBody(c, &in) {
		return nil
	}
	t, err := s.testimonialService.Update(c.UserContext(), id, in)
	if err != nil {
		return models.Respond(c, err)
	}
	return c.JSON(t)
}

func (s *Server) DeleteTestimonial(c *fiber.Ctx) error {
	id, ok := param(c, "id")
	if !ok {
		return nil
	}
	if err := s.testimonialService.Delete(c.UserContext(), id); err != nil {
		return models.Respond(c, err)
	}
	return c.SendStatus(fiber.StatusNoContent)
}
