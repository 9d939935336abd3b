package workflow

import (
	"context"
	"fmt"
	"sort"
	"time"

	"go.uber.org/zap"
)

// SaveMode selects what a phase list is committed to.
type SaveMode string

const (
	// SaveModeGlobal writes the category template, affecting all future orders.
	SaveModeGlobal SaveMode = "global"
	// SaveModeException writes a per-order override, leaving the template alone.
	SaveModeException SaveMode = "exception"
)

// OrderDirectory is the external system of record for active orders. The
// engine reads completed-phase ids from it as ground truth and reports
// completions back for orders without an override.
type OrderDirectory interface {
	Search(ctx context.Context, query string) ([]OrderSummary, error)
	Get(ctx context.Context, orderID string) (*OrderSummary, error)
	AppendCompletedPhase(ctx context.Context, orderID string, phaseID string) error
}

// WorkflowService is the surface the UI layer consumes: global and exception
// entry points, editor pass-throughs, save, reset and run advancement.
type WorkflowService interface {
	SelectCategory(ctx context.Context, category ServiceCategory) (*EffectivePhaseList, error)
	SearchOrders(ctx context.Context, query string) ([]OrderSummary, error)
	SelectOrder(ctx context.Context, orderID string) (*EffectivePhaseList, error)

	Reorder(phases []Phase, orderedIDs []string) ([]Phase, error)
	AddPhase(phases []Phase, draft PhaseDraft) []Phase
	UpdatePhase(phases []Phase, id string, patch PhasePatch) ([]Phase, error)
	DeletePhase(phases []Phase, id string) ([]Phase, error)
	Validate(phases []Phase) *ValidationErrors

	Save(ctx context.Context, mode SaveMode, key string, phases []Phase) error
	ResetException(ctx context.Context, orderID string) (*EffectivePhaseList, error)
	CompleteCurrentPhase(ctx context.Context, orderID string, notes string) (*EffectivePhaseList, error)
}

type WorkflowServiceImpl struct {
	Templates TemplateRepository
	Overrides OverrideRepository
	Resolver  OverrideResolver
	Directory OrderDirectory
	Notifiers []Notifier
	Logger    *zap.Logger
}

func NewWorkflowService(
	templates TemplateRepository,
	overrides OverrideRepository,
	resolver OverrideResolver,
	directory OrderDirectory,
	notifiers []Notifier,
	logger *zap.Logger,
) WorkflowService {
	return &WorkflowServiceImpl{
		Templates: templates,
		Overrides: overrides,
		Resolver:  resolver,
		Directory: directory,
		Notifiers: notifiers,
		Logger:    logger,
	}
}

// SelectCategory is the global-mode entry point: it loads the category
// template for editing.
func (s *WorkflowServiceImpl) SelectCategory(ctx context.Context, category ServiceCategory) (*EffectivePhaseList, error) {
	if !category.Valid() {
		return nil, fmt.Errorf("%w: unknown category %q", ErrTemplateNotFound, category)
	}

	template, err := s.Templates.Get(ctx, category)
	if err != nil {
		return nil, fmt.Errorf("loading template for category %s: %w", category, err)
	}
	if template == nil {
		return nil, ErrTemplateNotFound
	}
	return &EffectivePhaseList{Phases: ClonePhases(template.Phases), FromOverride: false}, nil
}

// SearchOrders delegates to the external order directory.
func (s *WorkflowServiceImpl) SearchOrders(ctx context.Context, query string) ([]OrderSummary, error) {
	return s.Directory.Search(ctx, query)
}

// SelectOrder is the exception-mode entry point: it resolves the effective
// list for one active order.
func (s *WorkflowServiceImpl) SelectOrder(ctx context.Context, orderID string) (*EffectivePhaseList, error) {
	order, err := s.Directory.Get(ctx, orderID)
	if err != nil {
		return nil, fmt.Errorf("loading order %s: %w", orderID, err)
	}
	if order == nil {
		return nil, ErrOrderNotFound
	}
	return s.Resolver.Resolve(ctx, order)
}

// Editor pass-throughs. The list travels with the caller between calls; the
// service holds no editing session state.

func (s *WorkflowServiceImpl) Reorder(phases []Phase, orderedIDs []string) ([]Phase, error) {
	return ReorderPhases(phases, orderedIDs)
}

func (s *WorkflowServiceImpl) AddPhase(phases []Phase, draft PhaseDraft) []Phase {
	return AddPhase(phases, draft)
}

func (s *WorkflowServiceImpl) UpdatePhase(phases []Phase, id string, patch PhasePatch) ([]Phase, error) {
	return UpdatePhase(phases, id, patch)
}

func (s *WorkflowServiceImpl) DeletePhase(phases []Phase, id string) ([]Phase, error) {
	return DeletePhase(phases, id)
}

func (s *WorkflowServiceImpl) Validate(phases []Phase) *ValidationErrors {
	return ValidateForSave(phases)
}

// Save validates and commits a list. Global mode replaces the category
// template (run state is stripped: templates carry no execution history).
// Exception mode writes the order override. Validation errors are returned
// untouched; nothing is committed on failure.
func (s *WorkflowServiceImpl) Save(ctx context.Context, mode SaveMode, key string, phases []Phase) error {
	if errs := ValidateForSave(phases); errs != nil {
		return errs
	}

	normalized := normalizePhases(phases)

	switch mode {
	case SaveModeGlobal:
		category := ServiceCategory(key)
		if !category.Valid() {
			return fmt.Errorf("%w: unknown category %q", ErrTemplateNotFound, key)
		}
		for i := range normalized {
			normalized[i].Executed = false
			normalized[i].Status = ""
			normalized[i].Notes = ""
			normalized[i].CompletedAt = nil
		}
		if err := s.Templates.Save(ctx, &WorkflowTemplate{Category: category, Phases: normalized}); err != nil {
			return fmt.Errorf("saving template for category %s: %w", category, err)
		}
		s.Logger.Info("workflow template saved", zap.String("category", key), zap.Int("phases", len(normalized)))
		s.notify(ctx, Event{Type: EventWorkflowSaved, Category: category, At: time.Now()})
		return nil

	case SaveModeException:
		if err := s.Overrides.Upsert(ctx, &OrderOverride{OrderID: key, Phases: normalized}); err != nil {
			return fmt.Errorf("saving override for order %s: %w", key, err)
		}
		s.Logger.Info("order override saved", zap.String("orderId", key), zap.Int("phases", len(normalized)))
		s.notify(ctx, Event{Type: EventWorkflowSaved, OrderID: key, At: time.Now()})
		return nil
	}

	return fmt.Errorf("unknown save mode %q", mode)
}

// ResetException discards the order's override and returns the template-derived
// effective list. The only way back to the global default.
func (s *WorkflowServiceImpl) ResetException(ctx context.Context, orderID string) (*EffectivePhaseList, error) {
	order, err := s.Directory.Get(ctx, orderID)
	if err != nil {
		return nil, fmt.Errorf("loading order %s: %w", orderID, err)
	}
	if order == nil {
		return nil, ErrOrderNotFound
	}

	list, err := s.Resolver.ResetToTemplate(ctx, order)
	if err != nil {
		return nil, err
	}

	s.Logger.Info("order override reset to template",
		zap.String("orderId", orderID),
		zap.String("category", string(order.ServiceCategory)))
	s.notify(ctx, Event{Type: EventOverrideReset, OrderID: orderID, Category: order.ServiceCategory, At: time.Now()})
	return list, nil
}

// CompleteCurrentPhase advances the order's run by one phase. The result is
// persisted to the override when one exists; otherwise the completed phase id
// is reported back to the order directory.
func (s *WorkflowServiceImpl) CompleteCurrentPhase(ctx context.Context, orderID string, notes string) (*EffectivePhaseList, error) {
	order, err := s.Directory.Get(ctx, orderID)
	if err != nil {
		return nil, fmt.Errorf("loading order %s: %w", orderID, err)
	}
	if order == nil {
		return nil, ErrOrderNotFound
	}

	list, err := s.Resolver.Resolve(ctx, order)
	if err != nil {
		return nil, err
	}

	run := StartRun(list.Phases)
	updated, done, err := CompleteCurrentPhase(run, notes)
	if err != nil {
		return nil, err
	}

	if list.FromOverride {
		if err := s.Overrides.Upsert(ctx, &OrderOverride{OrderID: orderID, Phases: updated}); err != nil {
			return nil, fmt.Errorf("persisting run state for order %s: %w", orderID, err)
		}
	} else {
		if err := s.Directory.AppendCompletedPhase(ctx, orderID, done.ID); err != nil {
			return nil, fmt.Errorf("reporting completed phase to order directory: %w", err)
		}
	}

	s.Logger.Info("phase completed",
		zap.String("orderId", orderID),
		zap.String("phaseId", done.ID),
		zap.String("phase", done.Name))

	event := Event{
		Type:      EventPhaseCompleted,
		OrderID:   orderID,
		Category:  order.ServiceCategory,
		PhaseID:   done.ID,
		PhaseName: done.Name,
		Notes:     notes,
		At:        time.Now(),
	}
	s.notify(ctx, event)
	if IsRunComplete(updated) {
		s.notify(ctx, Event{Type: EventRunCompleted, OrderID: orderID, Category: order.ServiceCategory, At: time.Now()})
	}

	return &EffectivePhaseList{Phases: updated, FromOverride: list.FromOverride}, nil
}

func (s *WorkflowServiceImpl) notify(ctx context.Context, event Event) {
	for _, n := range s.Notifiers {
		n.NotifyWorkflowEvent(ctx, event)
	}
}

// normalizePhases sorts by order index, renumbers 1..N and mints ids for
// phases that arrived without one.
func normalizePhases(phases []Phase) []Phase {
	out := ClonePhases(phases)
	sort.SliceStable(out, func(i, j int) bool { return out[i].OrderIndex < out[j].OrderIndex })
	renumber(out)
	for i := range out {
		if out[i].ID == "" {
			out[i].ID = NewPhaseID()
		}
	}
	return out
}
