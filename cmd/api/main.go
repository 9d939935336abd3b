package main

import (
	"context"
	"fmt"
	"log"
	"time"

	common_api "go-taller/internal/common/api"
	"go-taller/internal/config"
	"go-taller/internal/database"
	"go-taller/internal/features/automation"
	"go-taller/internal/features/order"
	"go-taller/internal/features/system"
	"go-taller/internal/features/workflow"
	"go-taller/internal/logger"
	"go-taller/internal/middleware"
	"go-taller/pkg/utils"

	_ "go-taller/docs" // Import swagger docs

	"github.com/gofiber/fiber/v2"
	"go.uber.org/fx"
	"go.uber.org/fx/fxevent"
	"go.uber.org/zap"
)

// NewFiberServer creates a new Fiber app instance
func NewFiberServer() *fiber.App {
	app := fiber.New(fiber.Config{
		DisableStartupMessage: true,
		ErrorHandler: func(c *fiber.Ctx, err error) error {
			code := fiber.StatusInternalServerError
			if e, ok := err.(*fiber.Error); ok {
				code = e.Code
			}
			return c.Status(code).JSON(fiber.Map{
				"error": err.Error(),
			})
		},
	})

	app.Use(middleware.CORSMiddleware())

	return app
}

// AsRoute is a helper function to reduce boilerplate.
// It tags the constructor so Fx knows to add it to the "routes" group.
func AsRoute(f any) any {
	return fx.Annotate(
		f,
		fx.As(new(common_api.Route)),    // Cast to Interface
		fx.ResultTags(`group:"routes"`), // Add to Group
	)
}

// AsNotifier tags a constructor result into the "workflow_notifiers" group.
func AsNotifier(f any) any {
	return fx.Annotate(
		f,
		fx.As(new(workflow.Notifier)),
		fx.ResultTags(`group:"workflow_notifiers"`),
	)
}

// RegisterAllRoutes takes the group "routes" (slice of interfaces)
// and calls Setup() on each one.
func RegisterAllRoutes(app *fiber.App, routes []common_api.Route) {
	for _, route := range routes {
		route.Setup(app)
	}
	log.Printf("Registered %d routes\n", len(routes))
}

// RegisterAllRoutesWithAnnotation wraps RegisterAllRoutes with fx annotations
var RegisterAllRoutesWithAnnotation = fx.Annotate(
	RegisterAllRoutes,
	fx.ParamTags(``, `group:"routes"`),
)

// StartServer creates a lifecycle hook to start Fiber in a goroutine
// and shut it down when the app exits.
func StartServer(lc fx.Lifecycle, app *fiber.App, cfg *config.Config) {
	lc.Append(fx.Hook{
		OnStart: func(ctx context.Context) error {
			go func() {
				port := fmt.Sprintf(":%s", cfg.Port)
				if err := app.Listen(port); err != nil {
					log.Fatalf("Server failed to start: %v", err)
				}
			}()
			return nil
		},
		OnStop: func(ctx context.Context) error {
			return app.Shutdown()
		},
	})
}

// InitializeIndexes ensures that necessary database indexes are created
func InitializeIndexes(lc fx.Lifecycle, templateRepo workflow.TemplateRepository, overrideRepo workflow.OverrideRepository) {
	lc.Append(fx.Hook{
		OnStart: func(ctx context.Context) error {
			go func() {
				ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
				defer cancel()

				if err := templateRepo.EnsureIndexes(ctx); err != nil {
					log.Printf("Failed to ensure template indexes: %v", err)
				}
				if err := overrideRepo.EnsureIndexes(ctx); err != nil {
					log.Printf("Failed to ensure override indexes: %v", err)
				}
			}()
			return nil
		},
	})
}

// @title           Taller Workflow API
// @version         1.0
// @description     Shop-floor workflow template and phase execution engine.

// @host            localhost:8080
// @BasePath        /
func main() {
	app := fx.New(
		fx.Provide(
			// Load Config
			config.LoadConfig,

			// Initialize Logger
			logger.NewLogger,

			// Initialize Fiber Server
			NewFiberServer,

			// Initialize Database
			database.NewDatabase,

			// External order directory (DMS)
			order.NewOrderDirectory,

			// Initialize Repositories
			workflow.NewTemplateRepository,
			workflow.NewOverrideRepository,
			automation.NewHookRepository,

			// Initialize Services
			workflow.NewOverrideResolver,
			automation.NewHookService,
			system.NewWebSocketHub,
			workflow.NewOverrideJanitor,
			fx.Annotate(
				workflow.NewWorkflowService,
				fx.ParamTags(``, ``, ``, ``, `group:"workflow_notifiers"`, ``),
			),

			// Workflow event notifiers
			AsNotifier(func(s automation.HookService) automation.HookService { return s }),
			AsNotifier(func(h *system.WebSocketHub) *system.WebSocketHub { return h }),

			// Initialize Controllers
			workflow.NewWorkflowController,
			workflow.NewExportController,
			order.NewOrderController,
			automation.NewHookController,

			// Initialize API Routes
			AsRoute(workflow.NewWorkflowApi),
			AsRoute(order.NewOrderApi),
			AsRoute(automation.NewAutomationApi),
			AsRoute(system.NewHealthApi),
			AsRoute(system.NewSwaggerApi),
			AsRoute(system.NewWebSocketApi),
		),
		fx.WithLogger(func(log *zap.Logger) fxevent.Logger {
			return &fxevent.ZapLogger{Logger: log}
		}),
		fx.Invoke(
			func(cfg *config.Config) { utils.SetSecret(cfg.JWTSecret) },

			// Register Routes & Start
			RegisterAllRoutesWithAnnotation,
			StartServer,
			InitializeIndexes,

			// Nightly override sweep
			func(lc fx.Lifecycle, janitor workflow.OverrideJanitor) {
				lc.Append(fx.Hook{
					OnStart: func(ctx context.Context) error {
						return janitor.Start(ctx)
					},
					OnStop: func(ctx context.Context) error {
						return janitor.Stop()
					},
				})
			},
		),
	)

	app.Run()
}
