package automation

import (
	"github.com/gofiber/fiber/v2"
)

type HookController struct {
	Service HookService
}

func NewHookController(service HookService) *HookController {
	return &HookController{
		Service: service,
	}
}

// ListHooks godoc
// @Summary List automation hooks
// @Tags automation
// @Produce json
// @Success 200 {array} Hook
// @Router /api/automation/hooks [get]
func (c *HookController) ListHooks(ctx *fiber.Ctx) error {
	hooks, err := c.Service.ListHooks(ctx.UserContext())
	if err != nil {
		return ctx.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": err.Error()})
	}
	if hooks == nil {
		hooks = []Hook{}
	}
	return ctx.JSON(hooks)
}

// GetHook godoc
// @Summary Get one automation hook
// @Tags automation
// @Produce json
// @Param id path string true "Hook ID"
// @Success 200 {object} Hook
// @Failure 404 {object} map[string]interface{}
// @Router /api/automation/hooks/{id} [get]
func (c *HookController) GetHook(ctx *fiber.Ctx) error {
	hook, err := c.Service.GetHook(ctx.UserContext(), ctx.Params("id"))
	if err != nil {
		return ctx.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": err.Error()})
	}
	if hook == nil {
		return ctx.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "hook not found"})
	}
	return ctx.JSON(hook)
}

// SaveHook godoc
// @Summary Create or update an automation hook
// @Tags automation
// @Accept json
// @Produce json
// @Param hook body Hook true "Hook"
// @Success 200 {object} Hook
// @Failure 400 {object} map[string]interface{}
// @Router /api/automation/hooks [post]
func (c *HookController) SaveHook(ctx *fiber.Ctx) error {
	var hook Hook
	if err := ctx.BodyParser(&hook); err != nil {
		return ctx.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid request body"})
	}

	if err := c.Service.SaveHook(ctx.UserContext(), &hook); err != nil {
		return ctx.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": err.Error()})
	}
	return ctx.JSON(hook)
}

// DeleteHook godoc
// @Summary Delete an automation hook
// @Tags automation
// @Produce json
// @Param id path string true "Hook ID"
// @Success 200 {object} map[string]interface{}
// @Router /api/automation/hooks/{id} [delete]
func (c *HookController) DeleteHook(ctx *fiber.Ctx) error {
	if err := c.Service.DeleteHook(ctx.UserContext(), ctx.Params("id")); err != nil {
		return ctx.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": err.Error()})
	}
	return ctx.JSON(fiber.Map{"message": "Hook deleted"})
}

// TestHook godoc
// @Summary Dry-run a hook script against a synthetic event
// @Tags automation
// @Accept json
// @Produce json
// @Param hook body Hook true "Hook"
// @Success 200 {object} map[string]interface{}
// @Failure 400 {object} map[string]interface{}
// @Router /api/automation/hooks/test [post]
func (c *HookController) TestHook(ctx *fiber.Ctx) error {
	var hook Hook
	if err := ctx.BodyParser(&hook); err != nil {
		return ctx.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid request body"})
	}

	if err := c.Service.TestHook(ctx.UserContext(), &hook); err != nil {
		return ctx.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": err.Error()})
	}
	return ctx.JSON(fiber.Map{"message": "Script executed successfully"})
}
