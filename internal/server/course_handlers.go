package server

import (
	"qawala/internal/models"
	"qawala/internal/service"

	"github.com/gofiber/fiber/v2"
)

// GetCourses handles GET /api/courses
func (s *Server) GetCourses(c *fiber.Ctx) error {
	courses, err := s.courseService.List(c.UserContext())
	if err != nil {
		return models.Respond(c, err)
	}
	return c.JSON(courses)
}

// GetCourse handles GET /api/courses/:slug
func (s *Server) GetCourse(c *fiber.Ctx) error {
	slug, ok := param(c, "slug")
	if !ok {
		return nil
	}
	course, err := s.courseService.GetBySlug(c.UserContext(), slug)
	if err != nil {
		return models.Respond(c, err)
	}
	return c.JSON(course)
}

// Enroll handles POST /api/courses/:slug/enrollments. No account is needed.
func (s *Server) Enroll(c *fiber.Ctx) error {
	slug, ok := param(c, "slug")
	if !ok {
		return nil
	}
	var in service.EnrollInput
	if !parseBody(c, &in) {
		return nil
	}
	enrollment, err := s.courseService.Enroll(c.UserContext(), slug, in)
	if err != nil {
		return models.Respond(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(enrollment)
}

func (s *Server) CreateCourse(c *fiber.Ctx) error {
	var in service.CourseInput
	if !parseBody(c, &in) {
		return nil
	}
	course, err := s.courseService.Create(c.UserContext(), in)
	if err != nil {
		return models.Respond(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(course)
}

func (s *Server) UpdateCourse(c *fiber.Ctx) error {
	id, ok := param(c, "id")
	if !ok {
		return nil
	}
	var in service.CourseInput
	if !parseBody(c, &in) {
		return nil
	}
	course, err := s.courseService.Update(c.UserContext(), id, in)
	if err != nil {
		return models.Respond(c, err)
	}
	return c.JSON(course)
}

func (s *Server) DeleteCourse(c *fiber.Ctx) error {
	id, ok := param(c, "id")
	if !ok {
		return nil
	}
	if err := s.courseService.Delete(c.UserContext(), id); err != nil {
		return models.Respond(c, err)
	}
	return c.SendStatus(fiber.StatusNoContent)
}

// GetEnrollments handles GET /api/admin/courses/:slug/enrollments
func (s *Server) GetEnrollments(c *fiber.Ctx) error {
	slug, ok := param(c, "slug")
	if !ok {
		return nil
	}
	enrollments, err := s.courseService.ListEnrollments(c.UserContext(), slug)
	if err != nil {
		return models.Respond(c, err)
	}
	return c.JSON(enrollments)
}
