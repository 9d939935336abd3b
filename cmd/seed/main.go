package main

import (
	"context"
	"fmt"
	"os"

	"go-taller/internal/config"
	"go-taller/internal/database"
	"go-taller/internal/features/workflow"
	"go-taller/internal/logger"

	"go.uber.org/fx"
	"go.uber.org/fx/fxevent"
	"go.uber.org/zap"
	"gopkg.in/yaml.v3"
)

type seedPhase struct {
	ID               string `yaml:"id"`
	Name             string `yaml:"name"`
	Description      string `yaml:"description"`
	EstimatedMinutes int    `yaml:"estimated_minutes"`
	IsCritical       bool   `yaml:"is_critical"`
	ColorTag         string `yaml:"color_tag"`
}

type seedTemplate struct {
	Category string      `yaml:"category"`
	Phases   []seedPhase `yaml:"phases"`
}

type seedFile struct {
	Templates []seedTemplate `yaml:"templates"`
}

// Seed loads the default workflow templates from YAML and writes them to the
// template store, overwriting whatever is there.
func Seed(lc fx.Lifecycle, templateRepo workflow.TemplateRepository, logger *zap.Logger, shutdowner fx.Shutdowner) {
	lc.Append(fx.Hook{
		OnStart: func(ctx context.Context) error {
			go func() {
				defer func() {
					if err := shutdowner.Shutdown(); err != nil {
						logger.Error("Failed to shutdown", zap.Error(err))
					}
				}()

				path := "seed/templates.yaml"
				if len(os.Args) > 1 {
					path = os.Args[1]
				}

				logger.Info("Seeding workflow templates", zap.String("file", path))

				if err := seedFromFile(context.Background(), path, templateRepo); err != nil {
					logger.Error("Seeding failed", zap.Error(err))
					return
				}
				logger.Info("Seeding complete")
			}()
			return nil
		},
	})
}

func seedFromFile(ctx context.Context, path string, templateRepo workflow.TemplateRepository) error {
	raw, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("reading seed file: %w", err)
	}

	var file seedFile
	if err := yaml.Unmarshal(raw, &file); err != nil {
		return fmt.Errorf("parsing seed file: %w", err)
	}

	for _, t := range file.Templates {
		category := workflow.ServiceCategory(t.Category)
		if !category.Valid() {
			return fmt.Errorf("unknown service category %q in seed file", t.Category)
		}

		phases := make([]workflow.Phase, 0, len(t.Phases))
		for i, p := range t.Phases {
			id := p.ID
			if id == "" {
				id = workflow.NewPhaseID()
			}
			phases = append(phases, workflow.Phase{
				ID:               id,
				Name:             p.Name,
				Description:      p.Description,
				EstimatedMinutes: p.EstimatedMinutes,
				OrderIndex:       i + 1,
				IsCritical:       p.IsCritical,
				ColorTag:         p.ColorTag,
			})
		}

		if errs := workflow.ValidateForSave(phases); errs != nil {
			return fmt.Errorf("seed template %s is invalid: %w", t.Category, errs)
		}

		if err := templateRepo.Save(ctx, &workflow.WorkflowTemplate{Category: category, Phases: phases}); err != nil {
			return fmt.Errorf("saving template %s: %w", t.Category, err)
		}
	}

	return nil
}

func main() {
	app := fx.New(
		fx.Provide(
			config.LoadConfig,
			logger.NewLogger,
			database.NewDatabase,
			workflow.NewTemplateRepository,
		),
		fx.WithLogger(func(log *zap.Logger) fxevent.Logger {
			return &fxevent.ZapLogger{Logger: log}
		}),
		fx.Invoke(Seed),
	)

	app.Run()
}
