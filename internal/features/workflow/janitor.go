package workflow

import (
	"context"
	"time"

	"github.com/robfig/cron/v3"
	"go.uber.org/zap"
)

// OverrideJanitor sweeps stored overrides for orders the directory has since
// closed or delivered. Their execution history lives in the directory; the
// override is only editing state and can go.
type OverrideJanitor interface {
	Start(ctx context.Context) error
	Stop() error
	SweepOnce(ctx context.Context) (int, error)
}

type OverrideJanitorImpl struct {
	Overrides OverrideRepository
	Directory OrderDirectory
	Logger    *zap.Logger

	scheduler *cron.Cron
}

func NewOverrideJanitor(overrides OverrideRepository, directory OrderDirectory, logger *zap.Logger) OverrideJanitor {
	return &OverrideJanitorImpl{
		Overrides: overrides,
		Directory: directory,
		Logger:    logger,
	}
}

// Start schedules the nightly sweep.
func (j *OverrideJanitorImpl) Start(ctx context.Context) error {
	j.scheduler = cron.New()
	_, err := j.scheduler.AddFunc("0 3 * * *", func() {
		sweepCtx, cancel := context.WithTimeout(context.Background(), 5*time.Minute)
		defer cancel()
		if _, err := j.SweepOnce(sweepCtx); err != nil {
			j.Logger.Error("override sweep failed", zap.Error(err))
		}
	})
	if err != nil {
		return err
	}
	j.scheduler.Start()
	return nil
}

func (j *OverrideJanitorImpl) Stop() error {
	if j.scheduler != nil {
		j.scheduler.Stop()
	}
	return nil
}

// SweepOnce removes overrides whose order is closed. Orders the directory no
// longer knows about are left alone; a missing order is not proof the work is
// done.
func (j *OverrideJanitorImpl) SweepOnce(ctx context.Context) (int, error) {
	overrides, err := j.Overrides.List(ctx)
	if err != nil {
		return 0, err
	}

	removed := 0
	for _, override := range overrides {
		order, err := j.Directory.Get(ctx, override.OrderID)
		if err != nil {
			j.Logger.Warn("skipping override, directory lookup failed",
				zap.String("orderId", override.OrderID), zap.Error(err))
			continue
		}
		if order == nil || !isClosedStatus(order.Status) {
			continue
		}

		if err := j.Overrides.Delete(ctx, override.OrderID); err != nil {
			j.Logger.Warn("failed to delete stale override",
				zap.String("orderId", override.OrderID), zap.Error(err))
			continue
		}
		removed++
		j.Logger.Info("removed override for closed order", zap.String("orderId", override.OrderID))
	}

	return removed, nil
}

func isClosedStatus(status string) bool {
	switch status {
	case "closed", "delivered", "cancelled":
		return true
	}
	return false
}
