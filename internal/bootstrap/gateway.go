package bootstrap

import (
	"context"
	"fmt"
	"io"

	"github.com/locvowork/employee_graphql_sample/internal/config"
	"github.com/locvowork/employee_graphql_sample/internal/database"
	"github.com/locvowork/employee_graphql_sample/internal/domain"
	"github.com/locvowork/employee_graphql_sample/internal/logger"
	"github.com/locvowork/employee_graphql_sample/internal/repository"
)

// Gateway bundles the repositories of the configured backend.
type Gateway struct {
	Employees   domain.EmployeeRepository
	Departments domain.DepartmentRepository
	closers     []io.Closer
}

func (g *Gateway) Close() error {
	var firstErr error
	for _, c := range g.closers {
		if err := c.Close(); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	return firstErr
}

// NewGateway connects the backend named by GATEWAY_BACKEND and, when ELASTIC_URL
// is set, serves employee name lookups from the search index.
func NewGateway(ctx context.Context, cfg *config.EnvConfig) (*Gateway, error) {
	g := &Gateway{}

	switch cfg.GATEWAY_BACKEND {
	case config.BackendPostgres:
		db, err := database.NewPostgresDB(ctx, database.Config{
			Host:            cfg.DB_HOST,
			Port:            cfg.DB_PORT,
			User:            cfg.DB_USER,
			Password:        cfg.DB_PASSWORD,
			DBName:          cfg.DB_NAME,
			SSLMode:         cfg.DB_SSL_MODE,
			MaxOpenConns:    cfg.DB_MAX_OPEN_CONNS,
			MaxIdleConns:    cfg.DB_MAX_IDLE_CONNS,
			ConnMaxLifetime: cfg.DB_CONN_MAX_LIFETIME,
		})
		if err != nil {
			return nil, fmt.Errorf("failed to initialize database: %w", err)
		}
		g.closers = append(g.closers, db)
		g.Employees = repository.NewEmployeeRepository(db)
		g.Departments = repository.NewDepartmentRepository(db)
		logger.InfoLog(ctx, "Database connection established successfully")

	case config.BackendDatastore:
		dc, err := database.NewDatastoreClient(ctx, cfg.DATASTORE_PROJECT_ID)
		if err != nil {
			return nil, fmt.Errorf("failed to initialize datastore: %w", err)
		}
		g.closers = append(g.closers, dc)
		g.Employees = dc.Employees()
		g.Departments = dc.Departments()
		logger.InfoLog(ctx, "Datastore client created for project %s", cfg.DATASTORE_PROJECT_ID)

	case config.BackendMemory:
		store := repository.NewMemoryStore()
		g.Employees = store.Employees()
		g.Departments = store.Departments()
		logger.WarnLog(ctx, "Using in-memory gateway, data is lost on restart")

	default:
		return nil, fmt.Errorf("unknown gateway backend %q", cfg.GATEWAY_BACKEND)
	}

	if cfg.ELASTIC_URL != "" {
		es, err := database.NewElasticSearchClient(cfg.ELASTIC_URL)
		if err != nil {
			g.Close()
			return nil, err
		}
		if err := es.EnsureIndex(ctx); err != nil {
			g.Close()
			return nil, err
		}
		indexed := repository.NewIndexedEmployeeRepository(g.Employees, es)
		if err := indexed.Reindex(ctx); err != nil {
			logger.WarnLog(ctx, "Employee name index not rebuilt, serving names from the primary: %v", err)
		}
		g.Employees = indexed
		logger.InfoLog(ctx, "Employee name index enabled at %s", cfg.ELASTIC_URL)
	}

	return g, nil
}
