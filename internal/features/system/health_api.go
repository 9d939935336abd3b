package system

import (
	"github.com/gofiber/fiber/v2"
)

type HealthApi struct{}

func NewHealthApi() *HealthApi {
	return &HealthApi{}
}

// Setup registers the health check route
func (h *HealthApi) Setup(app *fiber.App) {
	app.Get("/api/health", healthCheck)
}

// healthCheck godoc
// @Summary      Health Check
// @Description  Check if the server is up
// @Tags         health
// @Produce      plain
// @Success      200  {string}  string  "OK"
// @Router       /api/health [get]
func healthCheck(c *fiber.Ctx) error {
	return c.SendString("OK")
}
