package workflow

import (
	"sort"
	"time"
)

// The execution engine is a strictly forward-only state machine over a
// committed phase list: pending -> in_progress -> completed, with at most one
// phase in progress and every phase before it completed. There is no
// "uncomplete"; a mistaken completion stays in the record.

// StartRun assigns run statuses to a committed list. Executed phases are
// completed, the first unexecuted phase (in order-index order) goes in
// progress, everything after it is pending. On a fresh list that puts phase 1
// in progress.
func StartRun(phases []Phase) []Phase {
	out := ClonePhases(phases)
	sort.SliceStable(out, func(i, j int) bool { return out[i].OrderIndex < out[j].OrderIndex })

	current := false
	for i := range out {
		switch {
		case out[i].Executed:
			out[i].Status = StatusCompleted
		case !current:
			out[i].Status = StatusInProgress
			current = true
		default:
			out[i].Status = StatusPending
		}
	}
	return out
}

// CurrentPhase returns the phase currently in progress, or nil when the run
// is fully complete.
func CurrentPhase(phases []Phase) *Phase {
	for i := range phases {
		if phases[i].Status == StatusInProgress {
			p := phases[i]
			return &p
		}
	}
	return nil
}

// IsRunComplete reports whether every phase of the list has been completed.
func IsRunComplete(phases []Phase) bool {
	for _, p := range phases {
		if p.Status != StatusCompleted {
			return false
		}
	}
	return len(phases) > 0
}

// CompleteCurrentPhase transitions the in-progress phase to completed,
// recording the operator's notes and stamping the completion time, then moves
// the next pending phase (if any) to in progress. The completed phase's
// Executed flag becomes true permanently. Returns the updated list and the
// phase that was completed.
func CompleteCurrentPhase(phases []Phase, notes string) ([]Phase, *Phase, error) {
	out := ClonePhases(phases)
	sort.SliceStable(out, func(i, j int) bool { return out[i].OrderIndex < out[j].OrderIndex })

	idx := -1
	for i := range out {
		if out[i].Status == StatusInProgress {
			idx = i
			break
		}
	}
	if idx < 0 {
		return nil, nil, ErrNoPhaseInProgress
	}

	now := time.Now()
	out[idx].Status = StatusCompleted
	out[idx].Executed = true
	out[idx].Notes = notes
	out[idx].CompletedAt = &now

	if idx+1 < len(out) && out[idx+1].Status == StatusPending {
		out[idx+1].Status = StatusInProgress
	}

	done := out[idx]
	return out, &done, nil
}
