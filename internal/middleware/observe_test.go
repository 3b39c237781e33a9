package middleware

import (
	"bytes"
	"encoding/json"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"qawala/internal/observability"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel/attribute"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/sdk/trace/tracetest"
)

func TestRouteResource(t *testing.T) {
	cases := map[string]string{
		"/api/blogs/:id/like":                  "post",
		"/api/admin/blogs/:id":                 "post",
		"/api/courses/:slug/enrollments":       "course",
		"/api/admin/courses/:slug/enrollments": "course",
		"/api/pages/:slug":                     "page",
		"/api/admin/users/:uid/role":           "user",
		"/api/admin/dashboard":                 "",
		"/health/live":                         "",
	}
	for path, want := range cases {
		assert.Equal(t, want, routeResource(path), path)
	}
}

func TestTracingMiddleware_NamesSpanAfterRoute(t *testing.T) {
	recorder := tracetest.NewSpanRecorder()
	tp := sdktrace.NewTracerProvider(sdktrace.WithSpanProcessor(recorder))
	prev := observability.Tracer
	observability.Tracer = tp.Tracer("test")
	t.Cleanup(func() { observability.Tracer = prev })

	app := fiber.New()
	app.Use(TracingMiddleware())
	app.Get("/api/courses/:slug/enrollments", func(c *fiber.Ctx) error { return c.SendStatus(fiber.StatusOK) })

	resp, err := app.Test(httptest.NewRequest(http.MethodGet, "/api/courses/selenium-basics/enrollments", nil))
	require.NoError(t, err)
	assert.NotEmpty(t, resp.Header.Get("X-Trace-ID"))

	spans := recorder.Ended()
	require.Len(t, spans, 1)
	assert.Equal(t, "GET /api/courses/:slug/enrollments", spans[0].Name())

	attrs := map[attribute.Key]string{}
	for _, kv := range spans[0].Attributes() {
		attrs[kv.Key] = kv.Value.Emit()
	}
	assert.Equal(t, "course", attrs["qawala.resource"])
	assert.Equal(t, "selenium-basics", attrs["course.slug"])
	assert.Equal(t, "200", attrs["http.status_code"])
}

func TestStructuredLogger_RouteFields(t *testing.T) {
	var buf bytes.Buffer
	prev := Logger
	Logger = slog.New(slog.NewJSONHandler(&buf, &slog.HandlerOptions{Level: slog.LevelInfo}))
	t.Cleanup(func() { Logger = prev })

	app := fiber.New()
	app.Use(StructuredLogger())
	app.Get("/health/live", func(c *fiber.Ctx) error { return c.SendStatus(fiber.StatusOK) })
	app.Get("/api/blogs/:id/likes", func(c *fiber.Ctx) error { return c.SendStatus(fiber.StatusOK) })
	app.Post("/api/blogs/:id/like", func(c *fiber.Ctx) error { return c.SendStatus(fiber.StatusServiceUnavailable) })

	for _, req := range []*http.Request{
		httptest.NewRequest(http.MethodGet, "/health/live", nil),
		httptest.NewRequest(http.MethodGet, "/api/blogs/p1/likes", nil),
		httptest.NewRequest(http.MethodPost, "/api/blogs/p1/like", nil),
	} {
		_, err := app.Test(req)
		require.NoError(t, err)
	}

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	require.Len(t, lines, 2, "health checks stay below info level")

	var read, write map[string]any
	require.NoError(t, json.Unmarshal([]byte(lines[0]), &read))
	require.NoError(t, json.Unmarshal([]byte(lines[1]), &write))

	assert.Equal(t, "INFO", read["level"])
	assert.Equal(t, "/api/blogs/:id/likes", read["route"])
	assert.Equal(t, "p1", read["post_id"])

	assert.Equal(t, "ERROR", write["level"])
	assert.Equal(t, "request failed", write["msg"])
	assert.Equal(t, "p1", write["post_id"])
}
