package order

import (
	"go-taller/internal/features/workflow"

	"github.com/gofiber/fiber/v2"
)

type OrderController struct {
	Directory workflow.OrderDirectory
}

func NewOrderController(directory workflow.OrderDirectory) *OrderController {
	return &OrderController{
		Directory: directory,
	}
}

// SearchOrders godoc
// @Summary Search the order directory
// @Tags orders
// @Produce json
// @Param q query string false "Search query (code, plate or client name)"
// @Success 200 {array} workflow.OrderSummary
// @Failure 503 {object} map[string]interface{}
// @Router /api/orders/search [get]
func (c *OrderController) SearchOrders(ctx *fiber.Ctx) error {
	orders, err := c.Directory.Search(ctx.UserContext(), ctx.Query("q"))
	if err != nil {
		return ctx.Status(fiber.StatusServiceUnavailable).JSON(fiber.Map{"error": err.Error()})
	}
	if orders == nil {
		orders = []workflow.OrderSummary{}
	}
	return ctx.JSON(orders)
}

// GetOrder godoc
// @Summary Get one order from the directory
// @Tags orders
// @Produce json
// @Param id path string true "Order ID"
// @Success 200 {object} workflow.OrderSummary
// @Failure 404 {object} map[string]interface{}
// @Router /api/orders/{id} [get]
func (c *OrderController) GetOrder(ctx *fiber.Ctx) error {
	order, err := c.Directory.Get(ctx.UserContext(), ctx.Params("id"))
	if err != nil {
		return ctx.Status(fiber.StatusServiceUnavailable).JSON(fiber.Map{"error": err.Error()})
	}
	if order == nil {
		return ctx.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "order not found"})
	}
	return ctx.JSON(order)
}
