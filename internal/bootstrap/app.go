package bootstrap

import (
	"context"
	"fmt"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/locvowork/employee_graphql_sample/internal/config"
	"github.com/locvowork/employee_graphql_sample/internal/graph"
	"github.com/locvowork/employee_graphql_sample/internal/handler"
	"github.com/locvowork/employee_graphql_sample/internal/loader"
	"github.com/locvowork/employee_graphql_sample/internal/logger"
	"github.com/locvowork/employee_graphql_sample/internal/metrics"
	"github.com/locvowork/employee_graphql_sample/internal/service"
)

type App struct {
	Echo    *echo.Echo
	Gateway *Gateway
	Metrics *metrics.Metrics
}

func NewApp() *App {
	return &App{
		Echo: echo.New(),
	}
}

func (a *App) Initialize(ctx context.Context) error {
	// Load environment configuration
	if err := config.LoadEnvConfig(); err != nil {
		return fmt.Errorf("failed to load env config: %w", err)
	}
	cfg := config.DefaultEnvConfig

	// Initialize logging
	logger.InitLogging(cfg.LOG_FILE_PATH, cfg.LOG_LEVEL)
	logger.InfoLog(ctx, "Environment variables loaded successfully")

	gateway, err := NewGateway(ctx, cfg)
	if err != nil {
		return err
	}
	a.Gateway = gateway
	a.Metrics = metrics.New()

	return a.Wire(cfg)
}

// Wire builds the service graph on top of the gateway and registers the HTTP surface.
func (a *App) Wire(cfg *config.EnvConfig) error {
	empSvc := service.NewEmployeeService(a.Gateway.Employees, a.Gateway.Departments, cfg.IDEMPOTENCY_TTL)
	batch := loader.NewBatchLoader(a.Gateway.Employees, cfg.BATCH_MAX_CONCURRENCY, a.Metrics)
	emitter := service.NewEmitter(a.Gateway.Employees, cfg.STREAM_INTERVAL)

	resolver := graph.NewResolver(empSvc, a.Gateway.Departments, batch, emitter, a.Metrics)
	schema, err := graph.NewSchema(resolver, cfg.GRAPHQL_MAX_PARALLELISM)
	if err != nil {
		return fmt.Errorf("failed to parse graphql schema: %w", err)
	}

	// Register Middlewares
	a.RegisterMiddlewares()

	// Register Routes
	a.RegisterRoutes(handler.NewGraphQLHandler(schema), handler.NewExportHandler(empSvc, batch))

	return nil
}

func (a *App) RegisterMiddlewares() {
	a.Echo.Use(middleware.RequestID())
	a.Echo.Use(middleware.Logger())
	a.Echo.Use(middleware.Recover())
	a.Echo.Use(middleware.CORS())
}

func (a *App) RegisterRoutes(gqlHandler *handler.GraphQLHandler, exportHandler *handler.ExportHandler) {
	dataloaders := loader.Middleware(a.Gateway.Departments)

	gqlGroup := a.Echo.Group("/graphql", dataloaders, handler.LogDocumentMiddleware())
	gqlGroup.POST("", gqlHandler.QueryHandler)
	gqlGroup.GET("/ws", gqlHandler.SubscriptionHandler)

	a.Echo.GET("/employeeByName", gqlHandler.EmployeeByNameHandler, dataloaders)

	exportGroup := a.Echo.Group("/export")
	exportGroup.GET("/departments", exportHandler.DepartmentsHandler)

	a.Echo.GET("/metrics", echo.WrapHandler(promhttp.HandlerFor(a.Metrics.Registry(), promhttp.HandlerOpts{})))
	a.Echo.GET("/healthz", gqlHandler.HealthHandler)
}

func (a *App) Run() error {
	defer a.Gateway.Close()
	return a.Echo.Start(":" + config.DefaultEnvConfig.APP_PORT)
}
