package service

import (
	"context"
	"time"

	"github.com/locvowork/employee_graphql_sample/internal/domain"
	"github.com/locvowork/employee_graphql_sample/internal/logger"
	"github.com/locvowork/employee_graphql_sample/pkg/dataflow"
)

// DefaultStreamInterval is the pause before each emitted employee.
const DefaultStreamInterval = 3 * time.Second

// Emitter streams every employee to a subscriber at a fixed pace.
type Emitter struct {
	employees domain.EmployeeRepository
	interval  time.Duration
}

func NewEmitter(employees domain.EmployeeRepository, interval time.Duration) *Emitter {
	if interval <= 0 {
		interval = DefaultStreamInterval
	}
	return &Emitter{employees: employees, interval: interval}
}

// Stream scans all employees now and emits them in scan order, each one
// after waiting the interval. Records created after the scan are not emitted.
// The channel is closed when the scan is exhausted or ctx is cancelled.
func (e *Emitter) Stream(ctx context.Context) (<-chan domain.Employee, error) {
	snapshot, err := e.employees.FindAll(ctx)
	if err != nil {
		return nil, domain.WrapUpstream("scan employees", err)
	}
	logger.DebugLog(ctx, "streaming %d employees every %s", len(snapshot), e.interval)

	return dataflow.Pace(ctx, dataflow.From(ctx, snapshot...), e.interval), nil
}
