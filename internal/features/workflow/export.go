package workflow

import (
	"context"
	"fmt"

	"github.com/gofiber/fiber/v2"
	"github.com/xuri/excelize/v2"
)

// ExportController produces the printable time-estimate sheet the floor
// supervisor hands out: one xlsx per category template.
type ExportController struct {
	Service WorkflowService
}

func NewExportController(service WorkflowService) *ExportController {
	return &ExportController{
		Service: service,
	}
}

// ExportTemplate godoc
// @Summary Export a category template as an xlsx time sheet
// @Tags workflow
// @Produce application/vnd.openxmlformats-officedocument.spreadsheetml.sheet
// @Param category path string true "Service category"
// @Success 200 {file} binary
// @Failure 404 {object} map[string]interface{}
// @Router /api/workflow/templates/{category}/export [get]
func (c *ExportController) ExportTemplate(ctx *fiber.Ctx) error {
	category := ServiceCategory(ctx.Params("category"))
	list, err := c.Service.SelectCategory(ctx.UserContext(), category)
	if err != nil {
		return respondError(ctx, err)
	}

	data, filename, err := buildTemplateSheet(ctx.UserContext(), category, list.Phases)
	if err != nil {
		return ctx.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": err.Error()})
	}

	ctx.Set("Content-Type", "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
	ctx.Set("Content-Disposition", fmt.Sprintf("attachment; filename=%s", filename))
	return ctx.Send(data)
}

func buildTemplateSheet(_ context.Context, category ServiceCategory, phases []Phase) ([]byte, string, error) {
	f := excelize.NewFile()
	defer f.Close()

	sheetName := "Workflow"
	index, err := f.NewSheet(sheetName)
	if err != nil {
		return nil, "", err
	}
	f.SetActiveSheet(index)

	headerStyle, _ := f.NewStyle(&excelize.Style{
		Font: &excelize.Font{Bold: true},
		Fill: excelize.Fill{Type: "pattern", Color: []string{"#E0E0E0"}, Pattern: 1},
	})

	columns := []string{"#", "Phase", "Description", "Estimated Minutes", "Critical"}
	for i, col := range columns {
		cell, _ := excelize.CoordinatesToCellName(i+1, 1)
		f.SetCellValue(sheetName, cell, col)
		f.SetCellStyle(sheetName, cell, cell, headerStyle)
	}

	for rowIdx, p := range phases {
		row := rowIdx + 2
		setCell := func(col int, val interface{}) {
			cell, _ := excelize.CoordinatesToCellName(col, row)
			f.SetCellValue(sheetName, cell, val)
		}
		setCell(1, p.OrderIndex)
		setCell(2, p.Name)
		setCell(3, p.Description)
		setCell(4, p.EstimatedMinutes)
		critical := ""
		if p.IsCritical {
			critical = "yes"
		}
		setCell(5, critical)
	}

	totalCell, _ := excelize.CoordinatesToCellName(4, len(phases)+3)
	labelCell, _ := excelize.CoordinatesToCellName(2, len(phases)+3)
	f.SetCellValue(sheetName, labelCell, "Total")
	f.SetCellValue(sheetName, totalCell, TotalEstimatedMinutes(phases))

	for i := range columns {
		col, _ := excelize.ColumnNumberToName(i + 1)
		f.SetColWidth(sheetName, col, col, 18)
	}

	buffer, err := f.WriteToBuffer()
	if err != nil {
		return nil, "", err
	}

	return buffer.Bytes(), fmt.Sprintf("workflow_%s.xlsx", category), nil
}
