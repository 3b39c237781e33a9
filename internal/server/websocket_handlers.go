package server

import (
	"encoding/json"

	"qawala/internal/middleware"
	"qawala/internal/models"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/websocket/v2"
)

// WebsocketUpgrade rejects plain HTTP requests to the websocket endpoint.
func (s *Server) WebsocketUpgrade(c *fiber.Ctx) error {
	if !websocket.IsWebSocketUpgrade(c) {
		return models.RespondWithError(c, fiber.StatusUpgradeRequired,
			models.NewValidationError("Websocket upgrade required"))
	}
	return c.Next()
}

// WebsocketHandler streams like_count_changed and content_changed events. Viewers
// subscribe to posts with {"action":"subscribe","post_id":"..."}; anonymous
// viewers are allowed since like counts are public.
func (s *Server) WebsocketHandler() fiber.Handler {
	return websocket.New(func(conn *websocket.Conn) {
		viewerID, _ := conn.Locals(middleware.LocalUserID).(string)

		client, err := s.hub.Register(viewerID, conn)
		if err != nil {
			middleware.Logger.Warn("websocket register failed", "viewer", viewerID, "error", err)
			_ = conn.WriteMessage(websocket.TextMessage, errorFrame(err))
			_ = conn.Close()
			return
		}

		go client.WritePump()
		client.ReadPump()
	})
}

// errorFrame is the last message sent before closing a rejected connection.
func errorFrame(err error) []byte {
	frame, mErr := json.Marshal(models.ErrorResponse{Error: err.Error(), Code: models.CodeInternal})
	if mErr != nil {
		return []byte(`{"error":"internal error"}`)
	}
	return frame
}
