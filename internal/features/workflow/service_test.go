package workflow

import (
	"context"
	"errors"
	"testing"

	"go.uber.org/zap"
)

type fakeDirectory struct {
	orders   map[string]*OrderSummary
	appended map[string][]string
}

func newFakeDirectory() *fakeDirectory {
	return &fakeDirectory{
		orders:   make(map[string]*OrderSummary),
		appended: make(map[string][]string),
	}
}

func (d *fakeDirectory) Search(_ context.Context, query string) ([]OrderSummary, error) {
	var out []OrderSummary
	for _, o := range d.orders {
		out = append(out, *o)
	}
	return out, nil
}

func (d *fakeDirectory) Get(_ context.Context, orderID string) (*OrderSummary, error) {
	o, ok := d.orders[orderID]
	if !ok {
		return nil, nil
	}
	cp := *o
	return &cp, nil
}

func (d *fakeDirectory) AppendCompletedPhase(_ context.Context, orderID, phaseID string) error {
	d.appended[orderID] = append(d.appended[orderID], phaseID)
	return nil
}

type recordingNotifier struct {
	events []Event
}

func (n *recordingNotifier) NotifyWorkflowEvent(_ context.Context, event Event) {
	n.events = append(n.events, event)
}

func newTestService(templates *fakeTemplateRepo, overrides *fakeOverrideRepo, directory *fakeDirectory, notifier *recordingNotifier) WorkflowService {
	return NewWorkflowService(
		templates,
		overrides,
		testResolver(templates, overrides),
		directory,
		[]Notifier{notifier},
		zap.NewNop(),
	)
}

func TestSelectCategory(t *testing.T) {
	svc := newTestService(seededTemplates(), newFakeOverrideRepo(), newFakeDirectory(), &recordingNotifier{})

	list, err := svc.SelectCategory(context.Background(), CategoryPreventive)
	if err != nil {
		t.Fatalf("SelectCategory() error = %v", err)
	}
	if len(list.Phases) != 5 || list.FromOverride {
		t.Errorf("unexpected list: %+v", list)
	}

	if _, err := svc.SelectCategory(context.Background(), CategoryExpress); !errors.Is(err, ErrTemplateNotFound) {
		t.Errorf("unseeded category error = %v, want ErrTemplateNotFound", err)
	}
	if _, err := svc.SelectCategory(context.Background(), ServiceCategory("detailing")); !errors.Is(err, ErrTemplateNotFound) {
		t.Errorf("unknown category error = %v, want ErrTemplateNotFound", err)
	}
}

func TestSaveGlobal(t *testing.T) {
	templates := seededTemplates()
	overrides := newFakeOverrideRepo()
	overrides.overrides["ord-1"] = &OrderOverride{OrderID: "ord-1", Phases: preventiveFixture()}
	notifier := &recordingNotifier{}
	svc := newTestService(templates, overrides, newFakeDirectory(), notifier)

	phases := preventiveFixture()
	phases[1].Executed = true // stray run state must not reach the template
	phases[1].Status = StatusCompleted

	if err := svc.Save(context.Background(), SaveModeGlobal, string(CategoryPreventive), phases); err != nil {
		t.Fatalf("Save() error = %v", err)
	}

	saved := templates.templates[CategoryPreventive]
	for _, p := range saved.Phases {
		if p.Executed || p.Status != "" {
			t.Errorf("template phase %s kept run state", p.ID)
		}
	}
	if _, ok := overrides.overrides["ord-1"]; !ok {
		t.Error("saving a template must not touch overrides")
	}
	if len(notifier.events) != 1 || notifier.events[0].Type != EventWorkflowSaved {
		t.Errorf("events = %+v, want one workflow_saved", notifier.events)
	}
}

func TestSaveValidationFailureCommitsNothing(t *testing.T) {
	templates := seededTemplates()
	svc := newTestService(templates, newFakeOverrideRepo(), newFakeDirectory(), &recordingNotifier{})

	bad := []Phase{{ID: "a", Name: "", EstimatedMinutes: 0, OrderIndex: 1}}
	err := svc.Save(context.Background(), SaveModeGlobal, string(CategoryPreventive), bad)

	var verrs *ValidationErrors
	if !errors.As(err, &verrs) {
		t.Fatalf("error = %v, want ValidationErrors", err)
	}
	if len(verrs.PhaseErrors) != 2 || len(verrs.ListErrors) != 2 {
		t.Errorf("unexpected error detail: %+v", verrs)
	}
	if len(templates.templates[CategoryPreventive].Phases) != 5 {
		t.Error("template was modified despite validation failure")
	}
}

func TestSaveException(t *testing.T) {
	overrides := newFakeOverrideRepo()
	svc := newTestService(seededTemplates(), overrides, newFakeDirectory(), &recordingNotifier{})

	phases := preventiveFixture()
	if err := svc.Save(context.Background(), SaveModeException, "ord-9", phases); err != nil {
		t.Fatalf("Save() error = %v", err)
	}

	saved, ok := overrides.overrides["ord-9"]
	if !ok {
		t.Fatal("override not created")
	}
	assertContiguousIndices(t, saved.Phases)
}

func TestResetException(t *testing.T) {
	overrides := newFakeOverrideRepo()
	overrides.overrides["ord-1"] = &OrderOverride{OrderID: "ord-1", Phases: preventiveFixture()}
	directory := newFakeDirectory()
	directory.orders["ord-1"] = &OrderSummary{ID: "ord-1", ServiceCategory: CategoryPreventive}
	notifier := &recordingNotifier{}
	svc := newTestService(seededTemplates(), overrides, directory, notifier)

	list, err := svc.ResetException(context.Background(), "ord-1")
	if err != nil {
		t.Fatalf("ResetException() error = %v", err)
	}
	if _, ok := overrides.overrides["ord-1"]; ok {
		t.Error("override must be gone")
	}
	if list.FromOverride || len(list.Phases) != 5 {
		t.Errorf("unexpected list: %+v", list)
	}
	if len(notifier.events) != 1 || notifier.events[0].Type != EventOverrideReset {
		t.Errorf("events = %+v, want one override_reset", notifier.events)
	}

	if _, err := svc.ResetException(context.Background(), "ord-unknown"); !errors.Is(err, ErrOrderNotFound) {
		t.Errorf("unknown order error = %v, want ErrOrderNotFound", err)
	}
}

func TestCompleteCurrentPhaseWithOverride(t *testing.T) {
	overrides := newFakeOverrideRepo()
	overrides.overrides["ord-1"] = &OrderOverride{OrderID: "ord-1", Phases: preventiveFixture()}
	directory := newFakeDirectory()
	directory.orders["ord-1"] = &OrderSummary{ID: "ord-1", ServiceCategory: CategoryPreventive}
	notifier := &recordingNotifier{}
	svc := newTestService(seededTemplates(), overrides, directory, notifier)

	list, err := svc.CompleteCurrentPhase(context.Background(), "ord-1", "done")
	if err != nil {
		t.Fatalf("CompleteCurrentPhase() error = %v", err)
	}
	if !list.FromOverride {
		t.Error("list must still come from the override")
	}

	saved := overrides.overrides["ord-1"]
	if !saved.Phases[0].Executed || saved.Phases[0].Notes != "done" {
		t.Errorf("run state not persisted to override: %+v", saved.Phases[0])
	}
	if len(directory.appended["ord-1"]) != 0 {
		t.Error("override-backed completion must not report to the directory")
	}
	if len(notifier.events) != 1 || notifier.events[0].Type != EventPhaseCompleted {
		t.Errorf("events = %+v", notifier.events)
	}
}

func TestCompleteCurrentPhaseWithoutOverride(t *testing.T) {
	directory := newFakeDirectory()
	directory.orders["ord-1"] = &OrderSummary{
		ID:                "ord-1",
		ServiceCategory:   CategoryPreventive,
		CompletedPhaseIDs: []string{"fase-recepcion"},
	}
	overrides := newFakeOverrideRepo()
	svc := newTestService(seededTemplates(), overrides, directory, &recordingNotifier{})

	if _, err := svc.CompleteCurrentPhase(context.Background(), "ord-1", ""); err != nil {
		t.Fatalf("CompleteCurrentPhase() error = %v", err)
	}

	appended := directory.appended["ord-1"]
	if len(appended) != 1 || appended[0] != "fase-diagnostico" {
		t.Errorf("appended = %v, want the second template phase", appended)
	}
	if len(overrides.overrides) != 0 {
		t.Error("completion without an override must not create one")
	}
}

func TestCompleteCurrentPhaseEmitsRunCompleted(t *testing.T) {
	overrides := newFakeOverrideRepo()
	overrides.overrides["ord-1"] = &OrderOverride{
		OrderID: "ord-1",
		Phases: []Phase{
			{ID: "a", Name: "A", EstimatedMinutes: 10, OrderIndex: 1, Executed: true, Status: StatusCompleted},
			{ID: "b", Name: "B", EstimatedMinutes: 10, OrderIndex: 2},
		},
	}
	directory := newFakeDirectory()
	directory.orders["ord-1"] = &OrderSummary{ID: "ord-1", ServiceCategory: CategoryPreventive}
	notifier := &recordingNotifier{}
	svc := newTestService(seededTemplates(), overrides, directory, notifier)

	if _, err := svc.CompleteCurrentPhase(context.Background(), "ord-1", ""); err != nil {
		t.Fatalf("CompleteCurrentPhase() error = %v", err)
	}

	if len(notifier.events) != 2 {
		t.Fatalf("events = %+v, want phase_completed then run_completed", notifier.events)
	}
	if notifier.events[0].Type != EventPhaseCompleted || notifier.events[1].Type != EventRunCompleted {
		t.Errorf("event order wrong: %+v", notifier.events)
	}
}

func TestServiceEditorPassThroughs(t *testing.T) {
	svc := newTestService(seededTemplates(), newFakeOverrideRepo(), newFakeDirectory(), &recordingNotifier{})
	phases := preventiveFixture()

	added := svc.AddPhase(phases, PhaseDraft{Name: "Lavado", EstimatedMinutes: 15})
	if len(added) != 6 {
		t.Errorf("AddPhase gave %d phases", len(added))
	}

	if _, err := svc.DeletePhase(phases, "fase-recepcion"); err == nil {
		t.Error("critical delete must fail through the service too")
	}

	if errs := svc.Validate(phases[:1]); errs == nil {
		t.Error("one-phase list must fail validation")
	}
}
