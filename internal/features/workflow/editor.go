package workflow

import "strings"

// Editor operations work on an in-memory effective phase list before the
// caller commits it to the template store or as an order override. Inputs are
// never mutated; every operation returns a fresh slice or an error with the
// input untouched.

// ReorderPhases applies a full permutation of the list, given as phase ids in
// their new sequence. The permutation is rejected when it is not a permutation
// of the current ids, or when any already-executed phase would end up on a
// different index than the one frozen at execution time. On success order
// indices are recomputed as 1..N.
func ReorderPhases(phases []Phase, orderedIDs []string) ([]Phase, error) {
	if len(orderedIDs) != len(phases) {
		return nil, &GuardError{Reason: "ordering must include every phase exactly once"}
	}

	byID := make(map[string]int, len(phases))
	for i := range phases {
		byID[phases[i].ID] = i
	}

	seen := make(map[string]bool, len(orderedIDs))
	result := make([]Phase, 0, len(phases))
	for newIdx, id := range orderedIDs {
		src, ok := byID[id]
		if !ok || seen[id] {
			return nil, &GuardError{Reason: "ordering must include every phase exactly once"}
		}
		seen[id] = true

		p := phases[src]
		if p.Executed && p.OrderIndex != newIdx+1 {
			return nil, &GuardError{PhaseID: p.ID, Reason: ReasonExecutedReorder}
		}
		result = append(result, p)
	}

	out := ClonePhases(result)
	renumber(out)
	return out, nil
}

// AddPhase appends a new phase at the end of the list and assigns the next
// order index. New phases are never executed; there is no upper bound on
// list length.
func AddPhase(phases []Phase, draft PhaseDraft) []Phase {
	out := ClonePhases(phases)
	out = append(out, Phase{
		ID:               NewPhaseID(),
		Name:             draft.Name,
		Description:      draft.Description,
		EstimatedMinutes: draft.EstimatedMinutes,
		OrderIndex:       len(out) + 1,
		IsCritical:       draft.IsCritical,
		Executed:         false,
		ColorTag:         draft.ColorTag,
	})
	return out
}

// UpdatePhase patches the editable fields of one phase. Name, description and
// estimated minutes are frozen once the phase has been executed; the cosmetic
// color tag may always change.
func UpdatePhase(phases []Phase, id string, patch PhasePatch) ([]Phase, error) {
	idx, ok := findPhase(phases, id)
	if !ok {
		return nil, ErrPhaseNotFound
	}

	contentChange := patch.Name != nil || patch.Description != nil || patch.EstimatedMinutes != nil
	if phases[idx].Executed && contentChange {
		return nil, &GuardError{PhaseID: id, Reason: ReasonExecutedEdit}
	}

	out := ClonePhases(phases)
	p := &out[idx]
	if patch.Name != nil {
		p.Name = *patch.Name
	}
	if patch.Description != nil {
		p.Description = *patch.Description
	}
	if patch.EstimatedMinutes != nil {
		p.EstimatedMinutes = *patch.EstimatedMinutes
	}
	if patch.ColorTag != nil {
		p.ColorTag = *patch.ColorTag
	}
	return out, nil
}

// CanDelete is the pure predicate behind DeletePhase, used to pre-disable
// delete actions in the UI before attempting the mutation.
func CanDelete(p Phase) (bool, string) {
	if p.IsCritical {
		return false, ReasonCritical
	}
	if p.Executed {
		return false, ReasonExecutedDelete
	}
	return true, ""
}

// DeletePhase removes one phase and renumbers the remainder to 1..N-1.
// Critical and already-executed phases can never be removed.
func DeletePhase(phases []Phase, id string) ([]Phase, error) {
	idx, ok := findPhase(phases, id)
	if !ok {
		return nil, ErrPhaseNotFound
	}

	if ok, reason := CanDelete(phases[idx]); !ok {
		return nil, &GuardError{PhaseID: id, Reason: reason}
	}

	out := ClonePhases(phases)
	out = append(out[:idx], out[idx+1:]...)
	renumber(out)
	return out, nil
}

// ValidateForSave checks a list before committing it to the template store or
// as an order override. All failures are collected; nil means the list is
// fit to save.
func ValidateForSave(phases []Phase) *ValidationErrors {
	errs := &ValidationErrors{}

	for _, p := range phases {
		if strings.TrimSpace(p.Name) == "" {
			errs.PhaseErrors = append(errs.PhaseErrors, PhaseFieldError{
				PhaseID: p.ID, Field: "name", Message: "name required",
			})
		}
		if p.EstimatedMinutes < 1 {
			errs.PhaseErrors = append(errs.PhaseErrors, PhaseFieldError{
				PhaseID: p.ID, Field: "estimated_minutes", Message: "minimum 1 minute",
			})
		}
	}

	if len(phases) < 2 {
		errs.ListErrors = append(errs.ListErrors, "a workflow must have at least two phases")
	}
	// Explicit guard against a degenerate all-zero list slipping past the
	// per-phase minimum.
	if TotalEstimatedMinutes(phases) <= 0 {
		errs.ListErrors = append(errs.ListErrors, "total time cannot be zero")
	}

	if errs.HasErrors() {
		return errs
	}
	return nil
}

// renumber rewrites order indices to 1..N following slice order.
func renumber(phases []Phase) {
	for i := range phases {
		phases[i].OrderIndex = i + 1
	}
}
