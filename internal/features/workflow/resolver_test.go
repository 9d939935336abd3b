package workflow

import (
	"context"
	"errors"
	"testing"

	"go.uber.org/zap"
)

// In-memory fakes shared by the resolver and service tests.

type fakeTemplateRepo struct {
	templates map[ServiceCategory]*WorkflowTemplate
	saveErr   error
}

func newFakeTemplateRepo() *fakeTemplateRepo {
	return &fakeTemplateRepo{templates: make(map[ServiceCategory]*WorkflowTemplate)}
}

func (r *fakeTemplateRepo) Get(_ context.Context, category ServiceCategory) (*WorkflowTemplate, error) {
	t, ok := r.templates[category]
	if !ok {
		return nil, nil
	}
	cp := *t
	cp.Phases = ClonePhases(t.Phases)
	return &cp, nil
}

func (r *fakeTemplateRepo) Save(_ context.Context, template *WorkflowTemplate) error {
	if r.saveErr != nil {
		return r.saveErr
	}
	r.templates[template.Category] = template
	return nil
}

func (r *fakeTemplateRepo) EnsureIndexes(context.Context) error { return nil }

type fakeOverrideRepo struct {
	overrides map[string]*OrderOverride
}

func newFakeOverrideRepo() *fakeOverrideRepo {
	return &fakeOverrideRepo{overrides: make(map[string]*OrderOverride)}
}

func (r *fakeOverrideRepo) Get(_ context.Context, orderID string) (*OrderOverride, error) {
	o, ok := r.overrides[orderID]
	if !ok {
		return nil, nil
	}
	cp := *o
	cp.Phases = ClonePhases(o.Phases)
	return &cp, nil
}

func (r *fakeOverrideRepo) Upsert(_ context.Context, override *OrderOverride) error {
	r.overrides[override.OrderID] = override
	return nil
}

func (r *fakeOverrideRepo) Delete(_ context.Context, orderID string) error {
	delete(r.overrides, orderID)
	return nil
}

func (r *fakeOverrideRepo) List(context.Context) ([]OrderOverride, error) {
	var out []OrderOverride
	for _, o := range r.overrides {
		out = append(out, *o)
	}
	return out, nil
}

func (r *fakeOverrideRepo) EnsureIndexes(context.Context) error { return nil }

func testResolver(templates *fakeTemplateRepo, overrides *fakeOverrideRepo) OverrideResolver {
	return NewOverrideResolver(templates, overrides, zap.NewNop())
}

func seededTemplates() *fakeTemplateRepo {
	repo := newFakeTemplateRepo()
	repo.templates[CategoryPreventive] = &WorkflowTemplate{
		Category: CategoryPreventive,
		Phases:   preventiveFixture(),
	}
	return repo
}

func TestResolveWithoutOverride(t *testing.T) {
	resolver := testResolver(seededTemplates(), newFakeOverrideRepo())

	order := &OrderSummary{
		ID:                "ord-1",
		ServiceCategory:   CategoryPreventive,
		CompletedPhaseIDs: []string{"fase-recepcion"},
	}

	list, err := resolver.Resolve(context.Background(), order)
	if err != nil {
		t.Fatalf("Resolve() error = %v", err)
	}
	if list.FromOverride {
		t.Error("list must not come from an override")
	}
	if len(list.Phases) != 5 {
		t.Fatalf("got %d phases, want 5", len(list.Phases))
	}
	for _, p := range list.Phases {
		wantExecuted := p.ID == "fase-recepcion"
		if p.Executed != wantExecuted {
			t.Errorf("phase %s executed = %v, want %v", p.ID, p.Executed, wantExecuted)
		}
	}
	assertContiguousIndices(t, list.Phases)

	// The merged effective list enforces the execution guard downstream.
	if _, err := DeletePhase(list.Phases, "fase-recepcion"); err == nil {
		t.Error("deleting the executed phase must fail")
	} else {
		var guard *GuardError
		if !errors.As(err, &guard) || guard.Reason != ReasonCritical {
			// fase-recepcion is critical first; the critical guard fires before
			// the executed one.
			t.Errorf("unexpected guard: %v", err)
		}
	}
	if _, err := DeletePhase(list.Phases, "fase-mantenimiento"); err != nil {
		t.Errorf("deleting an untouched phase must work: %v", err)
	}
}

func TestResolveExecutedGuardOnMergedList(t *testing.T) {
	templates := newFakeTemplateRepo()
	templates.templates[CategoryExpress] = &WorkflowTemplate{
		Category: CategoryExpress,
		Phases: []Phase{
			{ID: "fase-1", Name: "Recepción", EstimatedMinutes: 10, OrderIndex: 1},
			{ID: "fase-2", Name: "Servicio", EstimatedMinutes: 45, OrderIndex: 2},
		},
	}
	resolver := testResolver(templates, newFakeOverrideRepo())

	order := &OrderSummary{ID: "ord-2", ServiceCategory: CategoryExpress, CompletedPhaseIDs: []string{"fase-1"}}
	list, err := resolver.Resolve(context.Background(), order)
	if err != nil {
		t.Fatalf("Resolve() error = %v", err)
	}

	_, err = DeletePhase(list.Phases, "fase-1")
	var guard *GuardError
	if !errors.As(err, &guard) || guard.Reason != ReasonExecutedDelete {
		t.Errorf("error = %v, want executed-delete guard", err)
	}
}

func TestResolveWithOverride(t *testing.T) {
	overrides := newFakeOverrideRepo()
	custom := []Phase{
		{ID: "a", Name: "A", EstimatedMinutes: 10, OrderIndex: 1, Executed: true},
		{ID: "b", Name: "B", EstimatedMinutes: 20, OrderIndex: 2},
	}
	overrides.overrides["ord-1"] = &OrderOverride{OrderID: "ord-1", Phases: custom}

	resolver := testResolver(seededTemplates(), overrides)

	// CompletedPhaseIDs from the directory are irrelevant once an override
	// exists; its own executed flags win.
	order := &OrderSummary{ID: "ord-1", ServiceCategory: CategoryPreventive, CompletedPhaseIDs: []string{"fase-recepcion"}}
	list, err := resolver.Resolve(context.Background(), order)
	if err != nil {
		t.Fatalf("Resolve() error = %v", err)
	}
	if !list.FromOverride {
		t.Error("list must come from the override")
	}
	if len(list.Phases) != 2 || list.Phases[0].ID != "a" || !list.Phases[0].Executed {
		t.Errorf("override phases returned wrong: %+v", list.Phases)
	}
}

func TestResolveMissingTemplate(t *testing.T) {
	resolver := testResolver(newFakeTemplateRepo(), newFakeOverrideRepo())

	order := &OrderSummary{ID: "ord-1", ServiceCategory: CategoryWarranty}
	if _, err := resolver.Resolve(context.Background(), order); !errors.Is(err, ErrTemplateNotFound) {
		t.Errorf("error = %v, want ErrTemplateNotFound", err)
	}
}

func TestResolveIgnoresGhostPhaseIDs(t *testing.T) {
	resolver := testResolver(seededTemplates(), newFakeOverrideRepo())

	order := &OrderSummary{
		ID:                "ord-1",
		ServiceCategory:   CategoryPreventive,
		CompletedPhaseIDs: []string{"fase-recepcion", "fase-deleted-long-ago"},
	}

	list, err := resolver.Resolve(context.Background(), order)
	if err != nil {
		t.Fatalf("Resolve() error = %v", err)
	}
	executed := 0
	for _, p := range list.Phases {
		if p.Executed {
			executed++
		}
	}
	if executed != 1 {
		t.Errorf("executed phases = %d, want 1 (ghost id must be ignored)", executed)
	}
}

func TestResetToTemplate(t *testing.T) {
	overrides := newFakeOverrideRepo()
	overrides.overrides["ord-1"] = &OrderOverride{
		OrderID: "ord-1",
		Phases: []Phase{
			{ID: "x", Name: "X", EstimatedMinutes: 5, OrderIndex: 1},
			{ID: "y", Name: "Y", EstimatedMinutes: 5, OrderIndex: 2},
		},
	}

	resolver := testResolver(seededTemplates(), overrides)

	order := &OrderSummary{ID: "ord-1", ServiceCategory: CategoryPreventive, CompletedPhaseIDs: []string{"fase-diagnostico"}}
	list, err := resolver.ResetToTemplate(context.Background(), order)
	if err != nil {
		t.Fatalf("ResetToTemplate() error = %v", err)
	}

	if _, ok := overrides.overrides["ord-1"]; ok {
		t.Error("override must be discarded")
	}
	if list.FromOverride {
		t.Error("reset list must come from the template")
	}
	if len(list.Phases) != 5 {
		t.Fatalf("got %d phases, want the 5 template phases", len(list.Phases))
	}
	for _, p := range list.Phases {
		wantExecuted := p.ID == "fase-diagnostico"
		if p.Executed != wantExecuted {
			t.Errorf("phase %s executed = %v, want %v", p.ID, p.Executed, wantExecuted)
		}
	}
}
