package automation

import (
	"go-taller/internal/config"
	"go-taller/internal/middleware"

	"github.com/gofiber/fiber/v2"
)

type AutomationApi struct {
	controller *HookController
	config     *config.Config
}

func NewAutomationApi(controller *HookController, cfg *config.Config) *AutomationApi {
	return &AutomationApi{
		controller: controller,
		config:     cfg,
	}
}

// Setup registers automation hook routes
func (h *AutomationApi) Setup(app *fiber.App) {
	hooks := app.Group("/api/automation/hooks", middleware.AuthMiddleware(h.config.SkipAuth))
	hooks.Get("/", h.controller.ListHooks)
	hooks.Post("/", h.controller.SaveHook)
	hooks.Post("/test", h.controller.TestHook)
	hooks.Get("/:id", h.controller.GetHook)
	hooks.Delete("/:id", h.controller.DeleteHook)
}
