package order

import (
	"go-taller/internal/config"
	"go-taller/internal/middleware"

	"github.com/gofiber/fiber/v2"
)

type OrderApi struct {
	controller *OrderController
	config     *config.Config
}

func NewOrderApi(controller *OrderController, cfg *config.Config) *OrderApi {
	return &OrderApi{
		controller: controller,
		config:     cfg,
	}
}

// Setup registers order directory routes
func (h *OrderApi) Setup(app *fiber.App) {
	orders := app.Group("/api/orders", middleware.AuthMiddleware(h.config.SkipAuth))
	orders.Get("/search", h.controller.SearchOrders)
	orders.Get("/:id", h.controller.GetOrder)
}
