package notifications

import (
	"context"
	"encoding/json"
	"errors"
	"sync"

	"qawala/internal/middleware"
	"qawala/internal/observability"

	"github.com/gofiber/websocket/v2"
)

const (
	// Max topics one connection may follow.
	maxTopicsPerClient = 200
	// Max total connections
	maxTotalConns = 10000
)

// ErrHubFull is returned by Register when the connection limit is reached.
var ErrHubFull = errors.New("server connection limit reached")

// Hub tracks websocket viewers and the post topics each one follows.
type Hub struct {
	mu      sync.RWMutex
	clients map[*Client]map[string]struct{}
	topics  map[string]map[*Client]struct{}
	closed  bool
}

// NewHub creates an empty Hub.
func NewHub() *Hub {
	return &Hub{
		clients: make(map[*Client]map[string]struct{}),
		topics:  make(map[string]map[*Client]struct{}),
	}
}

// Register adds a connection. viewerID may be empty for anonymous viewers.
func (h *Hub) Register(viewerID string, conn *websocket.Conn) (*Client, error) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if h.closed || len(h.clients) >= maxTotalConns {
		return nil, ErrHubFull
	}

	client := newClient(h, conn, viewerID)
	h.clients[client] = make(map[string]struct{})
	observability.WebSocketConnectionsTotal.Inc()
	return client, nil
}

// UnregisterClient drops the client and all its subscriptions.
func (h *Hub) UnregisterClient(client *Client) {
	h.mu.Lock()
	defer h.mu.Unlock()

	subs, ok := h.clients[client]
	if !ok {
		return
	}
	for topic := range subs {
		h.removeFromTopic(topic, client)
	}
	delete(h.clients, client)
	close(client.Send)
	observability.WebSocketConnectionsTotal.Dec()
}

// Subscribe makes client receive events for postID.
func (h *Hub) Subscribe(client *Client, postID string) bool {
	h.mu.Lock()
	defer h.mu.Unlock()

	subs, ok := h.clients[client]
	if !ok || len(subs) >= maxTopicsPerClient {
		return false
	}
	subs[postID] = struct{}{}
	m, ok := h.topics[postID]
	if !ok {
		m = make(map[*Client]struct{})
		h.topics[postID] = m
	}
	m[client] = struct{}{}
	return true
}

// Unsubscribe stops events for postID.
func (h *Hub) Unsubscribe(client *Client, postID string) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if subs, ok := h.clients[client]; ok {
		delete(subs, postID)
	}
	h.removeFromTopic(postID, client)
}

func (h *Hub) removeFromTopic(topic string, client *Client) {
	if m, ok := h.topics[topic]; ok {
		delete(m, client)
		if len(m) == 0 {
			delete(h.topics, topic)
		}
	}
}

// BroadcastPost sends message to every viewer following postID.
func (h *Hub) BroadcastPost(postID, message string) {
	h.mu.RLock()
	defer h.mu.RUnlock()
	data := []byte(message)
	for c := range h.topics[postID] {
		c.TrySend(data)
	}
}

// BroadcastAll sends message to every connected websocket client.
func (h *Hub) BroadcastAll(message string) {
	h.mu.RLock()
	defer h.mu.RUnlock()
	data := []byte(message)
	for c := range h.clients {
		c.TrySend(data)
	}
}

// Count returns the number of connected clients.
func (h *Hub) Count() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients)
}

// Subscribers returns the number of clients following postID.
func (h *Hub) Subscribers(postID string) int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.topics[postID])
}

type command struct {
	Action string `json:"action"`
	PostID string `json:"post_id"`
}

// HandleIncoming applies a {"action":"subscribe"|"unsubscribe","post_id":...} command.
func (h *Hub) HandleIncoming(client *Client, data []byte) {
	var cmd command
	if err := json.Unmarshal(data, &cmd); err != nil || cmd.PostID == "" {
		return
	}
	switch cmd.Action {
	case "subscribe":
		h.Subscribe(client, cmd.PostID)
	case "unsubscribe":
		h.Unsubscribe(client, cmd.PostID)
	}
}

// StartWiring forwards events received from Redis to local viewers.
func (h *Hub) StartWiring(ctx context.Context, n *Notifier) error {
	return n.StartSubscriber(ctx, func(channel, payload string) {
		if channel == BroadcastChannel {
			h.BroadcastAll(payload)
			return
		}
		postID, ok := PostIDFromChannel(channel)
		if !ok {
			middleware.Logger.Warn("invalid event channel", "channel", channel)
			return
		}
		h.BroadcastPost(postID, payload)
	})
}

// Shutdown gracefully closes all websocket connections
func (h *Hub) Shutdown(_ context.Context) error {
	h.mu.Lock()
	defer h.mu.Unlock()

	h.closed = true
	for client := range h.clients {
		if client.Conn != nil {
			_ = client.Conn.WriteMessage(websocket.CloseMessage,
				websocket.FormatCloseMessage(websocket.CloseGoingAway, "Server shutting down"))
			_ = client.Conn.Close()
		}
		close(client.Send)
		observability.WebSocketConnectionsTotal.Dec()
	}
	h.clients = make(map[*Client]map[string]struct{})
	h.topics = make(map[string]map[*Client]struct{})
	return nil
}
