package workflow

import (
	"context"
	"fmt"

	"go.uber.org/zap"
)

// OverrideResolver computes the effective phase list for an order: the stored
// override verbatim, or the category template merged with the order's
// completed-phase ids.
type OverrideResolver interface {
	Resolve(ctx context.Context, order *OrderSummary) (*EffectivePhaseList, error)
	ResetToTemplate(ctx context.Context, order *OrderSummary) (*EffectivePhaseList, error)
}

type OverrideResolverImpl struct {
	Templates TemplateRepository
	Overrides OverrideRepository
	Logger    *zap.Logger
}

func NewOverrideResolver(templates TemplateRepository, overrides OverrideRepository, logger *zap.Logger) OverrideResolver {
	return &OverrideResolverImpl{
		Templates: templates,
		Overrides: overrides,
		Logger:    logger,
	}
}

// Resolve returns the override unchanged when one exists (it already carries
// accurate executed flags). Otherwise the template phases are cloned and
// Executed is set on every phase whose id appears in the order's completed
// set; order indices are preserved from the template.
func (r *OverrideResolverImpl) Resolve(ctx context.Context, order *OrderSummary) (*EffectivePhaseList, error) {
	override, err := r.Overrides.Get(ctx, order.ID)
	if err != nil {
		return nil, fmt.Errorf("loading override for order %s: %w", order.ID, err)
	}
	if override != nil {
		return &EffectivePhaseList{Phases: ClonePhases(override.Phases), FromOverride: true}, nil
	}

	return r.fromTemplate(ctx, order)
}

// ResetToTemplate discards the order's override, then resolves from the
// template. Destructive: the override cannot be recovered afterwards.
func (r *OverrideResolverImpl) ResetToTemplate(ctx context.Context, order *OrderSummary) (*EffectivePhaseList, error) {
	if err := r.Overrides.Delete(ctx, order.ID); err != nil {
		return nil, fmt.Errorf("discarding override for order %s: %w", order.ID, err)
	}
	return r.fromTemplate(ctx, order)
}

func (r *OverrideResolverImpl) fromTemplate(ctx context.Context, order *OrderSummary) (*EffectivePhaseList, error) {
	template, err := r.Templates.Get(ctx, order.ServiceCategory)
	if err != nil {
		return nil, fmt.Errorf("loading template for category %s: %w", order.ServiceCategory, err)
	}
	if template == nil {
		return nil, ErrTemplateNotFound
	}

	completed := make(map[string]bool, len(order.CompletedPhaseIDs))
	for _, id := range order.CompletedPhaseIDs {
		completed[id] = false
	}

	phases := ClonePhases(template.Phases)
	for i := range phases {
		if _, ok := completed[phases[i].ID]; ok {
			phases[i].Executed = true
			completed[phases[i].ID] = true
		}
	}

	// Completed ids with no matching template phase are ghosts left behind by
	// template edits. They are ignored, but loudly.
	for id, matched := range completed {
		if !matched {
			r.Logger.Warn("completed phase id not present in template, ignoring",
				zap.String("orderId", order.ID),
				zap.String("category", string(order.ServiceCategory)),
				zap.String("phaseId", id))
		}
	}

	return &EffectivePhaseList{Phases: phases, FromOverride: false}, nil
}
