package server

import (
	"qawala/internal/models"
	"qawala/internal/service"

	"github.com/gofiber/fiber/v2"
)

// GetBlogPosts handles GET /api/blogs
func (s *Server) GetBlogPosts(c *fiber.Ctx) error {
	page := parsePagination(c, 20)
	posts, err := s.blogService.List(c.UserContext(), page.Limit, page.Offset)
	if err != nil {
		return models.Respond(c, err)
	}
	return c.JSON(posts)
}

// GetBlogPost handles GET /api/blogs/:slug
func (s *Server) GetBlogPost(c *fiber.Ctx) error {
	slug, ok := param(c, "slug")
	if !ok {
		return nil
	}
	post, err := s.blogService.GetBySlug(c.UserContext(), slug)
	if err != nil {
		return models.Respond(c, err)
	}
	return c.JSON(post)
}

// CreateBlogPost handles POST /api/admin/blogs
func (s *Server) CreateBlogPost(c *fiber.Ctx) error {
	var in service.BlogPostInput
	if !parseBody(c, &in) {
		return nil
	}
	post, err := s.blogService.Create(c.UserContext(), in)
	if err != nil {
		return models.Respond(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(post)
}

// UpdateBlogPost handles PUT /api/admin/blogs/:id
func (s *Server) UpdateBlogPost(c *fiber.Ctx) error {
	id, ok := param(c, "id")
	if !ok {
		return nil
	}
	var in service.BlogPostInput
	if !parseBody(c, &in) {
		return nil
	}
	post, err := s.blogService.Update(c.UserContext(), id, in)
	if err != nil {
		return models.Respond(c, err)
	}
	return c.JSON(post)
}

// DeleteBlogPost handles DELETE /api/admin/blogs/:id. The post's likes go with it.
func (s *Server) DeleteBlogPost(c *fiber.Ctx) error {
	id, ok := param(c, "id")
	if !ok {
		return nil
	}
	if err := s.blogService.Delete(c.UserContext(), id); err != nil {
		return models.Respond(c, err)
	}
	return c.SendStatus(fiber.StatusNoContent)
}
