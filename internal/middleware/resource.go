package middleware

import (
	"strings"

	"github.com/gofiber/fiber/v2"
)

var resourceNames = map[string]string{
	"blogs":        "post",
	"courses":      "course",
	"pages":        "page",
	"testimonials": "testimonial",
	"users":        "user",
}

// routeResource names the content a matched route works on, e.g. "post" for
// /api/blogs/:id/like and /api/admin/blogs/:id. Unknown routes yield "".
func routeResource(routePath string) string {
	rest := strings.TrimPrefix(routePath, "/api/")
	rest = strings.TrimPrefix(rest, "admin/")
	segment, _, _ := strings.Cut(rest, "/")
	return resourceNames[segment]
}

// resourceParams returns the matched route's parameters keyed by resource,
// such as {"post.id": "p1"} or {"course.slug": "selenium-basics"}.
func resourceParams(c *fiber.Ctx) map[string]string {
	route := c.Route()
	if len(route.Params) == 0 {
		return nil
	}
	prefix := routeResource(route.Path)
	if prefix == "" {
		prefix = "route"
	}
	out := make(map[string]string, len(route.Params))
	for _, name := range route.Params {
		if v := c.Params(name); v != "" {
			out[prefix+"."+name] = v
		}
	}
	return out
}
