package metrics

import (
	"errors"
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
)

func TestObserveOperation(t *testing.T) {
	m := New()

	m.ObserveOperation("addEmployee", nil)
	m.ObserveOperation("addEmployee", nil)
	m.ObserveOperation("addEmployee", errors.New("boom"))

	assert.Equal(t, 2.0, testutil.ToFloat64(m.GraphQLOperations.WithLabelValues("addEmployee", OutcomeOK)))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.GraphQLOperations.WithLabelValues("addEmployee", OutcomeError)))
}

func TestObserveBatch(t *testing.T) {
	m := New()

	m.ObserveBatch(3, 2)
	m.ObserveBatch(1, 0)

	assert.Equal(t, 2.0, testutil.ToFloat64(m.BatchLoads))
	assert.Equal(t, 2.0, testutil.ToFloat64(m.BatchUnassigned))
	assert.Equal(t, 1, testutil.CollectAndCount(m.BatchDepartments))
}

func TestNilMetricsIsNoop(t *testing.T) {
	var m *Metrics
	assert.NotPanics(t, func() {
		m.ObserveOperation("allDepartment", nil)
		m.ObserveBatch(1, 1)
		m.ObserveEmission()
	})
}
