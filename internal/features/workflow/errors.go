package workflow

import (
	"errors"
	"fmt"
	"strings"
)

var (
	// ErrTemplateNotFound is returned when a category has no seeded template.
	ErrTemplateNotFound = errors.New("workflow template not found")
	// ErrOrderNotFound is returned when the order directory has no such order.
	ErrOrderNotFound = errors.New("order not found")
	// ErrPhaseNotFound is returned when an editor operation targets an id
	// that is not in the list.
	ErrPhaseNotFound = errors.New("phase not found in list")
	// ErrNoPhaseInProgress is returned when the run has no current phase to
	// complete (the list is already fully complete).
	ErrNoPhaseInProgress = errors.New("no phase in progress")
)

// Guard reasons surfaced verbatim to the operator.
const (
	ReasonCritical        = "critical phases cannot be removed"
	ReasonExecutedDelete  = "already-executed phases cannot be removed"
	ReasonExecutedEdit    = "already-executed phases cannot be edited"
	ReasonExecutedReorder = "already-executed phases cannot change position"
)

// GuardError reports a structural guard violation: an attempt to delete,
// reorder or edit a phase that is critical or already executed. The reason is
// a human-readable string the UI shows as-is.
type GuardError struct {
	PhaseID string
	Reason  string
}

func (e *GuardError) Error() string {
	if e.PhaseID == "" {
		return e.Reason
	}
	return fmt.Sprintf("phase %s: %s", e.PhaseID, e.Reason)
}

// PhaseFieldError is a validation failure on one field of one phase.
type PhaseFieldError struct {
	PhaseID string `json:"phase_id"`
	Field   string `json:"field"`
	Message string `json:"message"`
}

// ValidationErrors aggregates everything wrong with a list at save time.
// It is returned untouched to the caller; nothing is committed when present.
type ValidationErrors struct {
	PhaseErrors []PhaseFieldError `json:"phase_errors,omitempty"`
	ListErrors  []string          `json:"list_errors,omitempty"`
}

func (e *ValidationErrors) HasErrors() bool {
	return len(e.PhaseErrors) > 0 || len(e.ListErrors) > 0
}

func (e *ValidationErrors) Error() string {
	parts := make([]string, 0, len(e.PhaseErrors)+len(e.ListErrors))
	for _, pe := range e.PhaseErrors {
		parts = append(parts, fmt.Sprintf("%s.%s: %s", pe.PhaseID, pe.Field, pe.Message))
	}
	parts = append(parts, e.ListErrors...)
	return "validation failed: " + strings.Join(parts, "; ")
}
