package server

import (
	"strings"

	"qawala/internal/middleware"
	"qawala/internal/models"

	"github.com/gofiber/fiber/v2"
)

// likeToggleResponse carries the re-read count. Count is null when the re-read
// failed after a committed toggle; clients should fetch it again.
type likeToggleResponse struct {
	PostID string `json:"post_id"`
	Liked  bool   `json:"liked"`
	Count  *int64 `json:"count"`
}

// GetLikeCounts handles GET /api/blogs/likes?ids=a,b,c
func (s *Server) GetLikeCounts(c *fiber.Ctx) error {
	var ids []string
	seen := make(map[string]bool)
	for _, id := range strings.Split(c.Query("ids"), ",") {
		id = strings.TrimSpace(id)
		if id == "" || seen[id] {
			continue
		}
		seen[id] = true
		ids = append(ids, id)
	}
	if len(ids) == 0 {
		return models.Respond(c, models.NewValidationError("ids is required"))
	}

	counts, err := s.likeService.GetLikeCounts(c.UserContext(), ids)
	if err != nil {
		return models.Respond(c, err)
	}
	return c.JSON(fiber.Map{"counts": counts})
}

// GetLikes handles GET /api/blogs/:id/likes. Liked is only true for a signed-in viewer.
func (s *Server) GetLikes(c *fiber.Ctx) error {
	postID, ok := param(c, "id")
	if !ok {
		return nil
	}

	snap, err := s.likeService.Snapshot(c.UserContext(), postID, middleware.UserID(c))
	if err != nil {
		return models.Respond(c, err)
	}
	return c.JSON(snap)
}

// ToggleLike handles POST /api/blogs/:id/like
func (s *Server) ToggleLike(c *fiber.Ctx) error {
	postID, ok := param(c, "id")
	if !ok {
		return nil
	}

	res, err := s.likeService.Toggle(c.UserContext(), postID, middleware.UserID(c))
	if err != nil {
		return models.Respond(c, err)
	}

	out := likeToggleResponse{PostID: postID, Liked: res.Liked}
	if res.Reconciled {
		count := res.Count
		out.Count = &count
	}
	return c.JSON(out)
}
