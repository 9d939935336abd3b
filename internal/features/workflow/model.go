package workflow

import (
	"time"

	"github.com/google/uuid"
)

// ServiceCategory is the class of work an order belongs to. Each category owns
// exactly one global workflow template.
type ServiceCategory string

const (
	CategoryPreventive ServiceCategory = "preventive"
	CategoryCorrective ServiceCategory = "corrective"
	CategoryExpress    ServiceCategory = "express"
	CategoryWarranty   ServiceCategory = "warranty"
)

// AllCategories lists every valid service category.
func AllCategories() []ServiceCategory {
	return []ServiceCategory{CategoryPreventive, CategoryCorrective, CategoryExpress, CategoryWarranty}
}

// Valid reports whether the category is a known member of the enum.
func (c ServiceCategory) Valid() bool {
	switch c {
	case CategoryPreventive, CategoryCorrective, CategoryExpress, CategoryWarranty:
		return true
	}
	return false
}

// Label returns the display name for the category.
func (c ServiceCategory) Label() string {
	switch c {
	case CategoryPreventive:
		return "Preventive Maintenance"
	case CategoryCorrective:
		return "Corrective Repair"
	case CategoryExpress:
		return "Express Service"
	case CategoryWarranty:
		return "Warranty Work"
	}
	return string(c)
}

// PhaseStatus is the run state of a phase on a real order.
type PhaseStatus string

const (
	StatusPending    PhaseStatus = "pending"
	StatusInProgress PhaseStatus = "in_progress"
	StatusCompleted  PhaseStatus = "completed"
)

// Label returns the display name for the status.
func (s PhaseStatus) Label() string {
	switch s {
	case StatusPending:
		return "Pending"
	case StatusInProgress:
		return "In Progress"
	case StatusCompleted:
		return "Completed"
	}
	return string(s)
}

// Color returns the UI color key for the status. New statuses must extend this
// switch; there is deliberately no string-keyed lookup table.
func (s PhaseStatus) Color() string {
	switch s {
	case StatusPending:
		return "gray"
	case StatusInProgress:
		return "blue"
	case StatusCompleted:
		return "green"
	}
	return "gray"
}

// Phase is one step in a service workflow.
//
// Executed is one-way: only the execution engine sets it, and once true the
// phase becomes structurally immutable (no reorder, no deletion, no content
// edits) for the list instance that holds it.
type Phase struct {
	ID               string      `json:"id" bson:"id"`
	Name             string      `json:"name" bson:"name"`
	Description      string      `json:"description" bson:"description"`
	EstimatedMinutes int         `json:"estimated_minutes" bson:"estimated_minutes"`
	OrderIndex       int         `json:"order_index" bson:"order_index"`
	IsCritical       bool        `json:"is_critical" bson:"is_critical"`
	Executed         bool        `json:"executed" bson:"executed"`
	ColorTag         string      `json:"color_tag,omitempty" bson:"color_tag,omitempty"`
	Status           PhaseStatus `json:"status,omitempty" bson:"status,omitempty"`
	Notes            string      `json:"notes,omitempty" bson:"notes,omitempty"`
	CompletedAt      *time.Time  `json:"completed_at,omitempty" bson:"completed_at,omitempty"`
}

// PhaseDraft is the caller-supplied payload for a new phase.
type PhaseDraft struct {
	Name             string `json:"name"`
	Description      string `json:"description"`
	EstimatedMinutes int    `json:"estimated_minutes"`
	IsCritical       bool   `json:"is_critical"`
	ColorTag         string `json:"color_tag"`
}

// PhasePatch carries the editable fields of an existing phase. Nil means
// "leave unchanged".
type PhasePatch struct {
	Name             *string `json:"name"`
	Description      *string `json:"description"`
	EstimatedMinutes *int    `json:"estimated_minutes"`
	ColorTag         *string `json:"color_tag"`
}

// NewPhaseID mints a stable identifier for a phase.
func NewPhaseID() string {
	return "fase-" + uuid.NewString()
}

// WorkflowTemplate is the global default phase list for a service category.
// Exactly one exists per category; saving replaces it in place.
type WorkflowTemplate struct {
	Category  ServiceCategory `json:"category" bson:"category"`
	Phases    []Phase         `json:"phases" bson:"phases"`
	UpdatedAt time.Time       `json:"updated_at" bson:"updated_at"`
}

// OrderOverride is a per-order phase list that diverges from the category
// template. Executed flags on its phases are meaningful and persisted.
type OrderOverride struct {
	OrderID   string    `json:"order_id" bson:"order_id"`
	Phases    []Phase   `json:"phases" bson:"phases"`
	CreatedAt time.Time `json:"created_at" bson:"created_at"`
	UpdatedAt time.Time `json:"updated_at" bson:"updated_at"`
}

// EffectivePhaseList is the list actually shown and edited for a context:
// the override verbatim, or the template merged with execution flags. It is
// computed, never stored.
type EffectivePhaseList struct {
	Phases       []Phase `json:"phases"`
	FromOverride bool    `json:"from_override"`
}

// OrderSummary is the order directory's view of an active order. The engine
// treats CompletedPhaseIDs as read-only ground truth.
type OrderSummary struct {
	ID                string          `json:"id"`
	Code              string          `json:"code"`
	Plate             string          `json:"plate"`
	ClientName        string          `json:"client_name"`
	VehicleModel      string          `json:"vehicle_model"`
	ServiceCategory   ServiceCategory `json:"service_category"`
	Status            string          `json:"status"`
	CompletedPhaseIDs []string        `json:"completed_phase_ids"`
}

// ClonePhases deep-copies a phase list so editor mutations never leak into
// the source slice.
func ClonePhases(phases []Phase) []Phase {
	out := make([]Phase, len(phases))
	copy(out, phases)
	for i := range out {
		if out[i].CompletedAt != nil {
			t := *out[i].CompletedAt
			out[i].CompletedAt = &t
		}
	}
	return out
}

// TotalEstimatedMinutes sums the estimates over the list.
func TotalEstimatedMinutes(phases []Phase) int {
	total := 0
	for _, p := range phases {
		total += p.EstimatedMinutes
	}
	return total
}

func findPhase(phases []Phase, id string) (int, bool) {
	for i := range phases {
		if phases[i].ID == id {
			return i, true
		}
	}
	return -1, false
}
