package workflow

import (
	"errors"

	"github.com/gofiber/fiber/v2"
)

type WorkflowController struct {
	Service WorkflowService
}

func NewWorkflowController(service WorkflowService) *WorkflowController {
	return &WorkflowController{
		Service: service,
	}
}

type phaseListRequest struct {
	Phases []Phase `json:"phases"`
}

type reorderRequest struct {
	Phases []Phase  `json:"phases"`
	Order  []string `json:"order"`
}

type addPhaseRequest struct {
	Phases []Phase    `json:"phases"`
	Draft  PhaseDraft `json:"draft"`
}

type updatePhaseRequest struct {
	Phases []Phase    `json:"phases"`
	Patch  PhasePatch `json:"patch"`
}

type completePhaseRequest struct {
	Notes string `json:"notes"`
}

// respondError maps the domain error taxonomy to HTTP statuses. Validation
// and guard payloads go back untouched so the UI can show them verbatim.
func respondError(ctx *fiber.Ctx, err error) error {
	var verrs *ValidationErrors
	if errors.As(err, &verrs) {
		return ctx.Status(fiber.StatusUnprocessableEntity).JSON(fiber.Map{
			"validation": verrs,
		})
	}

	var guard *GuardError
	if errors.As(err, &guard) {
		return ctx.Status(fiber.StatusConflict).JSON(fiber.Map{
			"error":    guard.Reason,
			"phase_id": guard.PhaseID,
		})
	}

	switch {
	case errors.Is(err, ErrTemplateNotFound), errors.Is(err, ErrOrderNotFound), errors.Is(err, ErrPhaseNotFound):
		return ctx.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": err.Error()})
	case errors.Is(err, ErrNoPhaseInProgress):
		return ctx.Status(fiber.StatusConflict).JSON(fiber.Map{"error": err.Error()})
	}

	return ctx.Status(fiber.StatusServiceUnavailable).JSON(fiber.Map{"error": err.Error()})
}

// GetTemplate godoc
// @Summary Get the global workflow template for a category
// @Tags workflow
// @Produce json
// @Param category path string true "Service category"
// @Success 200 {object} EffectivePhaseList
// @Failure 404 {object} map[string]interface{}
// @Router /api/workflow/templates/{category} [get]
func (c *WorkflowController) GetTemplate(ctx *fiber.Ctx) error {
	category := ServiceCategory(ctx.Params("category"))
	list, err := c.Service.SelectCategory(ctx.UserContext(), category)
	if err != nil {
		return respondError(ctx, err)
	}
	return ctx.JSON(list)
}

// SaveTemplate godoc
// @Summary Replace the global workflow template for a category
// @Tags workflow
// @Accept json
// @Produce json
// @Param category path string true "Service category"
// @Param body body phaseListRequest true "Phase list"
// @Success 200 {object} map[string]interface{}
// @Failure 422 {object} map[string]interface{}
// @Router /api/workflow/templates/{category} [put]
func (c *WorkflowController) SaveTemplate(ctx *fiber.Ctx) error {
	var req phaseListRequest
	if err := ctx.BodyParser(&req); err != nil {
		return ctx.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid request body"})
	}

	if err := c.Service.Save(ctx.UserContext(), SaveModeGlobal, ctx.Params("category"), req.Phases); err != nil {
		return respondError(ctx, err)
	}
	return ctx.JSON(fiber.Map{"message": "Template saved successfully"})
}

// SearchOrders godoc
// @Summary Search active orders in the external directory
// @Tags workflow
// @Produce json
// @Param q query string false "Search query (code, plate or client name)"
// @Success 200 {array} OrderSummary
// @Router /api/workflow/orders/search [get]
func (c *WorkflowController) SearchOrders(ctx *fiber.Ctx) error {
	orders, err := c.Service.SearchOrders(ctx.UserContext(), ctx.Query("q"))
	if err != nil {
		return respondError(ctx, err)
	}
	return ctx.JSON(orders)
}

// GetOrderPhases godoc
// @Summary Get the effective phase list for an order
// @Tags workflow
// @Produce json
// @Param id path string true "Order ID"
// @Success 200 {object} EffectivePhaseList
// @Failure 404 {object} map[string]interface{}
// @Router /api/workflow/orders/{id}/phases [get]
func (c *WorkflowController) GetOrderPhases(ctx *fiber.Ctx) error {
	list, err := c.Service.SelectOrder(ctx.UserContext(), ctx.Params("id"))
	if err != nil {
		return respondError(ctx, err)
	}
	return ctx.JSON(list)
}

// SaveOrderPhases godoc
// @Summary Save a per-order phase list override
// @Tags workflow
// @Accept json
// @Produce json
// @Param id path string true "Order ID"
// @Param body body phaseListRequest true "Phase list"
// @Success 200 {object} map[string]interface{}
// @Failure 422 {object} map[string]interface{}
// @Router /api/workflow/orders/{id}/phases [put]
func (c *WorkflowController) SaveOrderPhases(ctx *fiber.Ctx) error {
	var req phaseListRequest
	if err := ctx.BodyParser(&req); err != nil {
		return ctx.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid request body"})
	}

	if err := c.Service.Save(ctx.UserContext(), SaveModeException, ctx.Params("id"), req.Phases); err != nil {
		return respondError(ctx, err)
	}
	return ctx.JSON(fiber.Map{"message": "Override saved successfully"})
}

// ResetOrderPhases godoc
// @Summary Discard an order's override and return to the category template
// @Tags workflow
// @Produce json
// @Param id path string true "Order ID"
// @Success 200 {object} EffectivePhaseList
// @Failure 404 {object} map[string]interface{}
// @Router /api/workflow/orders/{id}/phases [delete]
func (c *WorkflowController) ResetOrderPhases(ctx *fiber.Ctx) error {
	list, err := c.Service.ResetException(ctx.UserContext(), ctx.Params("id"))
	if err != nil {
		return respondError(ctx, err)
	}
	return ctx.JSON(list)
}

// CompletePhase godoc
// @Summary Complete the current in-progress phase of an order
// @Tags workflow
// @Accept json
// @Produce json
// @Param id path string true "Order ID"
// @Param body body completePhaseRequest true "Completion notes"
// @Success 200 {object} EffectivePhaseList
// @Failure 409 {object} map[string]interface{}
// @Router /api/workflow/orders/{id}/phases/complete [post]
func (c *WorkflowController) CompletePhase(ctx *fiber.Ctx) error {
	var req completePhaseRequest
	if err := ctx.BodyParser(&req); err != nil {
		return ctx.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid request body"})
	}

	list, err := c.Service.CompleteCurrentPhase(ctx.UserContext(), ctx.Params("id"), req.Notes)
	if err != nil {
		return respondError(ctx, err)
	}
	return ctx.JSON(list)
}

// Stateless editor endpoints: the client submits its in-memory list together
// with the operation, and gets the updated list (or the guard error) back.

// Reorder godoc
// @Summary Apply a permutation to an in-memory phase list
// @Tags workflow-editor
// @Accept json
// @Produce json
// @Param body body reorderRequest true "List and new id ordering"
// @Success 200 {object} phaseListRequest
// @Failure 409 {object} map[string]interface{}
// @Router /api/workflow/editor/reorder [post]
func (c *WorkflowController) Reorder(ctx *fiber.Ctx) error {
	var req reorderRequest
	if err := ctx.BodyParser(&req); err != nil {
		return ctx.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid request body"})
	}

	phases, err := c.Service.Reorder(req.Phases, req.Order)
	if err != nil {
		return respondError(ctx, err)
	}
	return ctx.JSON(fiber.Map{"phases": phases})
}

// AddPhase godoc
// @Summary Append a new phase to an in-memory phase list
// @Tags workflow-editor
// @Accept json
// @Produce json
// @Param body body addPhaseRequest true "List and new phase draft"
// @Success 200 {object} phaseListRequest
// @Router /api/workflow/editor/phases [post]
func (c *WorkflowController) AddPhase(ctx *fiber.Ctx) error {
	var req addPhaseRequest
	if err := ctx.BodyParser(&req); err != nil {
		return ctx.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid request body"})
	}
	return ctx.JSON(fiber.Map{"phases": c.Service.AddPhase(req.Phases, req.Draft)})
}

// UpdatePhase godoc
// @Summary Patch one phase of an in-memory phase list
// @Tags workflow-editor
// @Accept json
// @Produce json
// @Param id path string true "Phase ID"
// @Param body body updatePhaseRequest true "List and patch"
// @Success 200 {object} phaseListRequest
// @Failure 409 {object} map[string]interface{}
// @Router /api/workflow/editor/phases/{id} [put]
func (c *WorkflowController) UpdatePhase(ctx *fiber.Ctx) error {
	var req updatePhaseRequest
	if err := ctx.BodyParser(&req); err != nil {
		return ctx.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid request body"})
	}

	phases, err := c.Service.UpdatePhase(req.Phases, ctx.Params("id"), req.Patch)
	if err != nil {
		return respondError(ctx, err)
	}
	return ctx.JSON(fiber.Map{"phases": phases})
}

// DeletePhase godoc
// @Summary Remove one phase from an in-memory phase list
// @Tags workflow-editor
// @Accept json
// @Produce json
// @Param id path string true "Phase ID"
// @Param body body phaseListRequest true "Phase list"
// @Success 200 {object} phaseListRequest
// @Failure 409 {object} map[string]interface{}
// @Router /api/workflow/editor/phases/{id}/delete [post]
func (c *WorkflowController) DeletePhase(ctx *fiber.Ctx) error {
	var req phaseListRequest
	if err := ctx.BodyParser(&req); err != nil {
		return ctx.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid request body"})
	}

	phases, err := c.Service.DeletePhase(req.Phases, ctx.Params("id"))
	if err != nil {
		return respondError(ctx, err)
	}
	return ctx.JSON(fiber.Map{"phases": phases})
}

// CanDeletePhase godoc
// @Summary Check whether a phase may be removed, without mutating anything
// @Tags workflow-editor
// @Accept json
// @Produce json
// @Param id path string true "Phase ID"
// @Param body body phaseListRequest true "Phase list"
// @Success 200 {object} map[string]interface{}
// @Router /api/workflow/editor/phases/{id}/can-delete [post]
func (c *WorkflowController) CanDeletePhase(ctx *fiber.Ctx) error {
	var req phaseListRequest
	if err := ctx.BodyParser(&req); err != nil {
		return ctx.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid request body"})
	}

	idx, ok := findPhase(req.Phases, ctx.Params("id"))
	if !ok {
		return respondError(ctx, ErrPhaseNotFound)
	}
	can, reason := CanDelete(req.Phases[idx])
	return ctx.JSON(fiber.Map{"can_delete": can, "reason": reason})
}

// ValidateList godoc
// @Summary Validate an in-memory phase list for saving
// @Tags workflow-editor
// @Accept json
// @Produce json
// @Param body body phaseListRequest true "Phase list"
// @Success 200 {object} map[string]interface{}
// @Failure 422 {object} map[string]interface{}
// @Router /api/workflow/editor/validate [post]
func (c *WorkflowController) ValidateList(ctx *fiber.Ctx) error {
	var req phaseListRequest
	if err := ctx.BodyParser(&req); err != nil {
		return ctx.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid request body"})
	}

	if errs := c.Service.Validate(req.Phases); errs != nil {
		return ctx.Status(fiber.StatusUnprocessableEntity).JSON(fiber.Map{"validation": errs})
	}
	return ctx.JSON(fiber.Map{"valid": true})
}
