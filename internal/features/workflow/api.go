package workflow

import (
	"go-taller/internal/config"
	"go-taller/internal/middleware"

	"github.com/gofiber/fiber/v2"
)

type WorkflowApi struct {
	controller *WorkflowController
	export     *ExportController
	config     *config.Config
}

func NewWorkflowApi(controller *WorkflowController, export *ExportController, cfg *config.Config) *WorkflowApi {
	return &WorkflowApi{
		controller: controller,
		export:     export,
		config:     cfg,
	}
}

// Setup registers all workflow routes
func (h *WorkflowApi) Setup(app *fiber.App) {
	wf := app.Group("/api/workflow", middleware.AuthMiddleware(h.config.SkipAuth))

	// Global mode: category templates
	wf.Get("/templates/:category", h.controller.GetTemplate)
	wf.Put("/templates/:category", middleware.RequireRole(h.config.SkipAuth, "supervisor", "admin"), h.controller.SaveTemplate)
	wf.Get("/templates/:category/export", h.export.ExportTemplate)

	// Exception mode: per-order lists
	wf.Get("/orders/search", h.controller.SearchOrders)
	wf.Get("/orders/:id/phases", h.controller.GetOrderPhases)
	wf.Put("/orders/:id/phases", h.controller.SaveOrderPhases)
	wf.Delete("/orders/:id/phases", h.controller.ResetOrderPhases)
	wf.Post("/orders/:id/phases/complete", h.controller.CompletePhase)

	// Stateless editor operations
	editor := wf.Group("/editor")
	editor.Post("/reorder", h.controller.Reorder)
	editor.Post("/phases", h.controller.AddPhase)
	editor.Put("/phases/:id", h.controller.UpdatePhase)
	editor.Post("/phases/:id/delete", h.controller.DeletePhase)
	editor.Post("/phases/:id/can-delete", h.controller.CanDeletePhase)
	editor.Post("/validate", h.controller.ValidateList)
}
