package system

import (
	"context"
	"encoding/json"
	"sync"

	"go-taller/internal/features/workflow"

	"github.com/gofiber/contrib/websocket"
	"go.uber.org/zap"
)

// WebSocketHub broadcasts workflow events to connected shop-floor displays.
// It satisfies workflow.Notifier.
type WebSocketHub struct {
	mu      sync.Mutex
	clients map[*websocket.Conn]bool
	logger  *zap.Logger
}

func NewWebSocketHub(logger *zap.Logger) *WebSocketHub {
	return &WebSocketHub{
		clients: make(map[*websocket.Conn]bool),
		logger:  logger,
	}
}

// HandleWebSocket keeps the connection registered until the client goes away.
// Inbound messages are ignored; this is a one-way feed.
func (h *WebSocketHub) HandleWebSocket(c *websocket.Conn) {
	h.mu.Lock()
	h.clients[c] = true
	h.mu.Unlock()

	defer func() {
		h.mu.Lock()
		delete(h.clients, c)
		h.mu.Unlock()
		c.Close()
	}()

	for {
		if _, _, err := c.ReadMessage(); err != nil {
			break
		}
	}
}

// NotifyWorkflowEvent pushes the event to every connected display. Write
// failures drop the client; the next event will not retry it.
func (h *WebSocketHub) NotifyWorkflowEvent(_ context.Context, event workflow.Event) {
	payload, err := json.Marshal(event)
	if err != nil {
		h.logger.Error("failed to marshal workflow event", zap.Error(err))
		return
	}

	h.mu.Lock()
	defer h.mu.Unlock()
	for conn := range h.clients {
		if err := conn.WriteMessage(websocket.TextMessage, payload); err != nil {
			h.logger.Warn("dropping websocket client", zap.Error(err))
			delete(h.clients, conn)
			conn.Close()
		}
	}
}
