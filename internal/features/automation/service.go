package automation

import (
	"context"
	"fmt"
	"time"

	"go-taller/internal/features/workflow"
	"go-taller/pkg/condition"

	"github.com/d5/tengo/v2"
	"github.com/d5/tengo/v2/stdlib"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

type HookService interface {
	ListHooks(ctx context.Context) ([]Hook, error)
	GetHook(ctx context.Context, id string) (*Hook, error)
	SaveHook(ctx context.Context, hook *Hook) error
	DeleteHook(ctx context.Context, id string) error
	TestHook(ctx context.Context, hook *Hook) error

	// NotifyWorkflowEvent satisfies workflow.Notifier: every matching enabled
	// hook runs against the event payload.
	NotifyWorkflowEvent(ctx context.Context, event workflow.Event)
}

type HookServiceImpl struct {
	Repo   HookRepository
	Logger *zap.Logger
}

func NewHookService(repo HookRepository, logger *zap.Logger) HookService {
	return &HookServiceImpl{
		Repo:   repo,
		Logger: logger,
	}
}

func (s *HookServiceImpl) ListHooks(ctx context.Context) ([]Hook, error) {
	return s.Repo.List(ctx)
}

func (s *HookServiceImpl) GetHook(ctx context.Context, id string) (*Hook, error) {
	return s.Repo.GetByID(ctx, id)
}

func (s *HookServiceImpl) SaveHook(ctx context.Context, hook *Hook) error {
	if hook.ID == "" {
		hook.ID = uuid.NewString()
	}
	if hook.Script == "" {
		return fmt.Errorf("script content is required")
	}
	// Compile up front so a broken script is rejected at save time, not at
	// 2am when the event fires.
	if _, err := compileHook(hook, workflow.Event{At: time.Now()}); err != nil {
		return fmt.Errorf("script does not compile: %w", err)
	}
	return s.Repo.Upsert(ctx, hook)
}

func (s *HookServiceImpl) DeleteHook(ctx context.Context, id string) error {
	return s.Repo.Delete(ctx, id)
}

// TestHook runs the script once against a synthetic event.
func (s *HookServiceImpl) TestHook(_ context.Context, hook *Hook) error {
	return runHook(hook, workflow.Event{
		Type:      workflow.EventType(hook.Event),
		OrderID:   "test-order",
		Category:  workflow.CategoryPreventive,
		PhaseID:   "test-phase",
		PhaseName: "Test Phase",
		At:        time.Now(),
	})
}

func (s *HookServiceImpl) NotifyWorkflowEvent(ctx context.Context, event workflow.Event) {
	hooks, err := s.Repo.ListByEvent(ctx, string(event.Type))
	if err != nil {
		s.Logger.Error("failed to load automation hooks", zap.Error(err))
		return
	}

	for _, hook := range hooks {
		matched, err := condition.NewMatcher(eventPayload(event)).Matches(hook.Filter)
		if err != nil {
			s.Logger.Error("automation hook filter failed",
				zap.String("hook", hook.Name),
				zap.Error(err))
			continue
		}
		if !matched {
			continue
		}
		if err := runHook(&hook, event); err != nil {
			s.Logger.Error("automation hook failed",
				zap.String("hook", hook.Name),
				zap.String("event", string(event.Type)),
				zap.Error(err))
			continue
		}
		s.Logger.Info("automation hook executed",
			zap.String("hook", hook.Name),
			zap.String("event", string(event.Type)),
			zap.String("orderId", event.OrderID))
	}
}

func eventPayload(event workflow.Event) map[string]interface{} {
	return map[string]interface{}{
		"type":       string(event.Type),
		"order_id":   event.OrderID,
		"category":   string(event.Category),
		"phase_id":   event.PhaseID,
		"phase_name": event.PhaseName,
		"notes":      event.Notes,
	}
}

func compileHook(hook *Hook, event workflow.Event) (*tengo.Compiled, error) {
	script := tengo.NewScript([]byte(hook.Script))
	script.SetImports(stdlib.GetModuleMap("fmt", "text", "times", "math"))
	script.Add("event", eventPayload(event))
	return script.Compile()
}

func runHook(hook *Hook, event workflow.Event) error {
	compiled, err := compileHook(hook, event)
	if err != nil {
		return fmt.Errorf("failed to compile script: %w", err)
	}
	if err := compiled.Run(); err != nil {
		return fmt.Errorf("failed to run script: %w", err)
	}
	return nil
}
