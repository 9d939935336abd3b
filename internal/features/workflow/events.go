package workflow

import (
	"context"
	"time"
)

// EventType identifies what happened to a workflow.
type EventType string

const (
	EventPhaseCompleted EventType = "phase_completed"
	EventRunCompleted   EventType = "run_completed"
	EventWorkflowSaved  EventType = "workflow_saved"
	EventOverrideReset  EventType = "override_reset"
)

// Event is the payload fanned out to notifiers after a workflow mutation.
type Event struct {
	Type      EventType       `json:"type"`
	OrderID   string          `json:"order_id,omitempty"`
	Category  ServiceCategory `json:"category,omitempty"`
	PhaseID   string          `json:"phase_id,omitempty"`
	PhaseName string          `json:"phase_name,omitempty"`
	Notes     string          `json:"notes,omitempty"`
	At        time.Time       `json:"at"`
}

// Notifier receives workflow events. Implementations must not block the
// calling operation; failures are theirs to log, not to propagate.
type Notifier interface {
	NotifyWorkflowEvent(ctx context.Context, event Event)
}
