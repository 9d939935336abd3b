package system

import (
	"github.com/gofiber/contrib/websocket"
	"github.com/gofiber/fiber/v2"
)

type WebSocketApi struct {
	Hub *WebSocketHub
}

func NewWebSocketApi(hub *WebSocketHub) *WebSocketApi {
	return &WebSocketApi{
		Hub: hub,
	}
}

func (h *WebSocketApi) Setup(app *fiber.App) {
	app.Get("/ws/workflow", websocket.New(h.Hub.HandleWebSocket))
}
