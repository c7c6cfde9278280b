package loader

import (
	"context"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/vikstrous/dataloadgen"

	"github.com/locvowork/employee_graphql_sample/internal/domain"
)

// Loaders holds the per-request dataloaders.
type Loaders struct {
	Departments *dataloadgen.Loader[int, *domain.Department]
}

// NewLoaders creates fresh loaders; their caches live as long as the request.
func NewLoaders(departments domain.DepartmentRepository) *Loaders {
	return &Loaders{
		Departments: dataloadgen.NewLoader(fetchDepartments(departments), dataloadgen.WithWait(2*time.Millisecond)),
	}
}

// fetchDepartments resolves a batch of department ids with a single FindByIDs.
// Unknown ids resolve to nil without error.
func fetchDepartments(repo domain.DepartmentRepository) func(ctx context.Context, ids []int) ([]*domain.Department, []error) {
	return func(ctx context.Context, ids []int) ([]*domain.Department, []error) {
		results := make([]*domain.Department, len(ids))
		errs := make([]error, len(ids))

		found, err := repo.FindByIDs(ctx, ids)
		if err != nil {
			err = domain.WrapUpstream("load departments", err)
			for i := range errs {
				errs[i] = err
			}
			return results, errs
		}

		byID := make(map[int]*domain.Department, len(found))
		for i := range found {
			byID[found[i].ID] = &found[i]
		}
		for i, id := range ids {
			results[i] = byID[id]
		}
		return results, errs
	}
}

// Context key for the loaders
type contextKey string

// loadersKey is the key for the loaders in the context
const loadersKey = contextKey("dataloaders")

// WithLoaders returns a copy of ctx carrying l.
func WithLoaders(ctx context.Context, l *Loaders) context.Context {
	return context.WithValue(ctx, loadersKey, l)
}

// Middleware adds fresh dataloaders to every request context
func Middleware(departments domain.DepartmentRepository) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			req := c.Request()
			ctx := WithLoaders(req.Context(), NewLoaders(departments))
			c.SetRequest(req.WithContext(ctx))
			return next(c)
		}
	}
}

// For returns the loaders from the context, or nil outside a request.
func For(ctx context.Context) *Loaders {
	l, _ := ctx.Value(loadersKey).(*Loaders)
	return l
}
