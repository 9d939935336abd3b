package workflow

import (
	"errors"
	"testing"
)

// preventiveFixture mirrors the default preventive template: five phases,
// three of them critical, none executed.
func preventiveFixture() []Phase {
	return []Phase{
		{ID: "fase-recepcion", Name: "Recepción", EstimatedMinutes: 30, OrderIndex: 1, IsCritical: true},
		{ID: "fase-diagnostico", Name: "Diagnóstico", EstimatedMinutes: 45, OrderIndex: 2, IsCritical: true},
		{ID: "fase-mantenimiento", Name: "Mantenimiento", EstimatedMinutes: 120, OrderIndex: 3},
		{ID: "fase-calidad", Name: "Control de Calidad", EstimatedMinutes: 30, OrderIndex: 4, IsCritical: true},
		{ID: "fase-entrega", Name: "Entrega", EstimatedMinutes: 20, OrderIndex: 5, IsCritical: true},
	}
}

func assertContiguousIndices(t *testing.T, phases []Phase) {
	t.Helper()
	for i, p := range phases {
		if p.OrderIndex != i+1 {
			t.Errorf("phase %s has order index %d, want %d", p.ID, p.OrderIndex, i+1)
		}
	}
}

func TestReorderPhases(t *testing.T) {
	executed := preventiveFixture()
	executed[0].Executed = true // Recepción done, frozen at index 1

	tests := []struct {
		name    string
		phases  []Phase
		order   []string
		wantErr bool
		first   string
	}{
		{
			name:   "full permutation of unexecuted list",
			phases: preventiveFixture(),
			order:  []string{"fase-diagnostico", "fase-recepcion", "fase-mantenimiento", "fase-calidad", "fase-entrega"},
			first:  "fase-diagnostico",
		},
		{
			name:   "executed phase keeps its frozen index",
			phases: executed,
			order:  []string{"fase-recepcion", "fase-mantenimiento", "fase-diagnostico", "fase-calidad", "fase-entrega"},
			first:  "fase-recepcion",
		},
		{
			name:    "executed phase moved off its index",
			phases:  executed,
			order:   []string{"fase-diagnostico", "fase-recepcion", "fase-mantenimiento", "fase-calidad", "fase-entrega"},
			wantErr: true,
		},
		{
			name:    "missing phase",
			phases:  preventiveFixture(),
			order:   []string{"fase-recepcion", "fase-diagnostico", "fase-mantenimiento", "fase-calidad"},
			wantErr: true,
		},
		{
			name:    "duplicate phase",
			phases:  preventiveFixture(),
			order:   []string{"fase-recepcion", "fase-recepcion", "fase-mantenimiento", "fase-calidad", "fase-entrega"},
			wantErr: true,
		},
		{
			name:    "unknown phase id",
			phases:  preventiveFixture(),
			order:   []string{"fase-x", "fase-recepcion", "fase-diagnostico", "fase-mantenimiento", "fase-calidad"},
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ReorderPhases(tt.phases, tt.order)
			if (err != nil) != tt.wantErr {
				t.Fatalf("ReorderPhases() error = %v, wantErr %v", err, tt.wantErr)
			}
			if tt.wantErr {
				var guard *GuardError
				if !errors.As(err, &guard) {
					t.Errorf("want GuardError, got %T", err)
				}
				return
			}
			if got[0].ID != tt.first {
				t.Errorf("first phase = %s, want %s", got[0].ID, tt.first)
			}
			assertContiguousIndices(t, got)
		})
	}
}

func TestReorderLeavesInputUnchanged(t *testing.T) {
	phases := preventiveFixture()
	phases[0].Executed = true

	_, err := ReorderPhases(phases, []string{"fase-diagnostico", "fase-recepcion", "fase-mantenimiento", "fase-calidad", "fase-entrega"})
	if err == nil {
		t.Fatal("expected reorder to fail")
	}
	for i, p := range phases {
		if p.OrderIndex != i+1 {
			t.Errorf("input list was mutated: phase %s index %d", p.ID, p.OrderIndex)
		}
	}
}

func TestAddPhase(t *testing.T) {
	phases := preventiveFixture()
	got := AddPhase(phases, PhaseDraft{Name: "Lavado", EstimatedMinutes: 15})

	if len(got) != len(phases)+1 {
		t.Fatalf("got %d phases, want %d", len(got), len(phases)+1)
	}
	added := got[len(got)-1]
	if added.Name != "Lavado" {
		t.Errorf("added phase name = %q", added.Name)
	}
	if added.OrderIndex != len(phases)+1 {
		t.Errorf("added phase index = %d, want %d", added.OrderIndex, len(phases)+1)
	}
	if added.Executed {
		t.Error("new phase must not be executed")
	}
	if added.IsCritical {
		t.Error("new phase must not default to critical")
	}
	if added.ID == "" {
		t.Error("new phase must get an id")
	}
	assertContiguousIndices(t, got)
}

func TestUpdatePhase(t *testing.T) {
	name := "Revisión"
	minutes := 50
	color := "amber"

	executed := preventiveFixture()
	executed[1].Executed = true

	tests := []struct {
		name    string
		phases  []Phase
		id      string
		patch   PhasePatch
		wantErr bool
	}{
		{
			name:   "rename unexecuted phase",
			phases: preventiveFixture(),
			id:     "fase-diagnostico",
			patch:  PhasePatch{Name: &name, EstimatedMinutes: &minutes},
		},
		{
			name:    "rename executed phase",
			phases:  executed,
			id:      "fase-diagnostico",
			patch:   PhasePatch{Name: &name},
			wantErr: true,
		},
		{
			name:    "change minutes of executed phase",
			phases:  executed,
			id:      "fase-diagnostico",
			patch:   PhasePatch{EstimatedMinutes: &minutes},
			wantErr: true,
		},
		{
			name:   "color tag of executed phase is always editable",
			phases: executed,
			id:     "fase-diagnostico",
			patch:  PhasePatch{ColorTag: &color},
		},
		{
			name:    "unknown phase",
			phases:  preventiveFixture(),
			id:      "fase-x",
			patch:   PhasePatch{Name: &name},
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := UpdatePhase(tt.phases, tt.id, tt.patch)
			if (err != nil) != tt.wantErr {
				t.Fatalf("UpdatePhase() error = %v, wantErr %v", err, tt.wantErr)
			}
			if tt.wantErr {
				return
			}
			idx, _ := findPhase(got, tt.id)
			if tt.patch.Name != nil && got[idx].Name != *tt.patch.Name {
				t.Errorf("name = %q, want %q", got[idx].Name, *tt.patch.Name)
			}
			if tt.patch.ColorTag != nil && got[idx].ColorTag != *tt.patch.ColorTag {
				t.Errorf("color tag = %q, want %q", got[idx].ColorTag, *tt.patch.ColorTag)
			}
		})
	}
}

func TestDeletePhase(t *testing.T) {
	executed := preventiveFixture()
	executed[2].Executed = true

	tests := []struct {
		name       string
		phases     []Phase
		id         string
		wantErr    bool
		wantReason string
		wantLen    int
	}{
		{
			name:    "delete plain phase renumbers the rest",
			phases:  preventiveFixture(),
			id:      "fase-mantenimiento",
			wantLen: 4,
		},
		{
			name:       "critical phase can never be removed",
			phases:     preventiveFixture(),
			id:         "fase-recepcion",
			wantErr:    true,
			wantReason: ReasonCritical,
		},
		{
			name:       "executed phase can never be removed",
			phases:     executed,
			id:         "fase-mantenimiento",
			wantErr:    true,
			wantReason: ReasonExecutedDelete,
		},
		{
			name:    "unknown phase",
			phases:  preventiveFixture(),
			id:      "fase-x",
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := DeletePhase(tt.phases, tt.id)
			if (err != nil) != tt.wantErr {
				t.Fatalf("DeletePhase() error = %v, wantErr %v", err, tt.wantErr)
			}
			if tt.wantErr {
				if tt.wantReason != "" {
					var guard *GuardError
					if !errors.As(err, &guard) {
						t.Fatalf("want GuardError, got %T", err)
					}
					if guard.Reason != tt.wantReason {
						t.Errorf("reason = %q, want %q", guard.Reason, tt.wantReason)
					}
				}
				return
			}
			if len(got) != tt.wantLen {
				t.Errorf("got %d phases, want %d", len(got), tt.wantLen)
			}
			if _, ok := findPhase(got, tt.id); ok {
				t.Errorf("phase %s still present after delete", tt.id)
			}
			assertContiguousIndices(t, got)
		})
	}
}

func TestCanDelete(t *testing.T) {
	tests := []struct {
		name       string
		phase      Phase
		want       bool
		wantReason string
	}{
		{name: "plain phase", phase: Phase{ID: "a"}, want: true},
		{name: "critical", phase: Phase{ID: "a", IsCritical: true}, want: false, wantReason: ReasonCritical},
		{name: "executed", phase: Phase{ID: "a", Executed: true}, want: false, wantReason: ReasonExecutedDelete},
		{name: "critical wins over executed", phase: Phase{ID: "a", IsCritical: true, Executed: true}, want: false, wantReason: ReasonCritical},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, reason := CanDelete(tt.phase)
			if got != tt.want || reason != tt.wantReason {
				t.Errorf("CanDelete() = (%v, %q), want (%v, %q)", got, reason, tt.want, tt.wantReason)
			}
		})
	}
}

func TestValidateForSave(t *testing.T) {
	tests := []struct {
		name       string
		phases     []Phase
		wantPhase  int // expected per-phase errors
		wantList   int // expected list-level errors
	}{
		{
			name:   "valid list",
			phases: preventiveFixture(),
		},
		{
			name: "empty name",
			phases: []Phase{
				{ID: "a", Name: "  ", EstimatedMinutes: 10, OrderIndex: 1},
				{ID: "b", Name: "B", EstimatedMinutes: 10, OrderIndex: 2},
			},
			wantPhase: 1,
		},
		{
			name: "minutes below one",
			phases: []Phase{
				{ID: "a", Name: "A", EstimatedMinutes: 0, OrderIndex: 1},
				{ID: "b", Name: "B", EstimatedMinutes: 10, OrderIndex: 2},
			},
			wantPhase: 1,
		},
		{
			name: "fewer than two phases",
			phases: []Phase{
				{ID: "a", Name: "A", EstimatedMinutes: 10, OrderIndex: 1},
			},
			wantList: 1,
		},
		{
			name:     "empty list",
			phases:   nil,
			wantList: 2, // too short and zero total
		},
		{
			name: "all-zero list reports both phase and list errors",
			phases: []Phase{
				{ID: "a", Name: "A", EstimatedMinutes: 0, OrderIndex: 1},
				{ID: "b", Name: "B", EstimatedMinutes: 0, OrderIndex: 2},
			},
			wantPhase: 2,
			wantList:  1,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			errs := ValidateForSave(tt.phases)
			if tt.wantPhase == 0 && tt.wantList == 0 {
				if errs != nil {
					t.Fatalf("want no errors, got %v", errs)
				}
				return
			}
			if errs == nil {
				t.Fatal("want validation errors, got none")
			}
			if len(errs.PhaseErrors) != tt.wantPhase {
				t.Errorf("phase errors = %d, want %d (%v)", len(errs.PhaseErrors), tt.wantPhase, errs.PhaseErrors)
			}
			if len(errs.ListErrors) != tt.wantList {
				t.Errorf("list errors = %d, want %d (%v)", len(errs.ListErrors), tt.wantList, errs.ListErrors)
			}
		})
	}
}
