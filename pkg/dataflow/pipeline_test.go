package dataflow_test

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/locvowork/employee_graphql_sample/pkg/dataflow"
)

type row struct {
	ID   string
	Name string
}

func TestPipelineWithRetry(t *testing.T) {
	ctx := context.Background()

	source := dataflow.From(ctx, "1,Alice", "2,Bob", "retry,Charlie")

	parsed := dataflow.Map(ctx, source, func(s string) (row, error) {
		parts := strings.Split(s, ",")
		if len(parts) != 2 {
			return row{}, fmt.Errorf("invalid format")
		}
		return row{ID: parts[0], Name: parts[1]}, nil
	}, dataflow.WithWorkers(2))

	var attempts int32
	saved := dataflow.Map(ctx, parsed, func(r row) (row, error) {
		if r.ID == "retry" && atomic.AddInt32(&attempts, 1) < 3 {
			return row{}, fmt.Errorf("transient error")
		}
		return r, nil
	}, dataflow.WithRetry(3, func(int) time.Duration { return time.Millisecond }))

	var mu sync.Mutex
	var names []string
	err := dataflow.ForEach(ctx, saved, func(r row) error {
		mu.Lock()
		defer mu.Unlock()
		names = append(names, r.Name)
		return nil
	})
	require.NoError(t, err)

	sort.Strings(names)
	assert.Equal(t, []string{"Alice", "Bob", "Charlie"}, names)
	assert.EqualValues(t, 3, atomic.LoadInt32(&attempts))
}

func TestMapDropsFailedItems(t *testing.T) {
	ctx := context.Background()

	var reported []error
	out := dataflow.Map(ctx, dataflow.From(ctx, 1, 2, 3), func(n int) (int, error) {
		if n == 2 {
			return 0, fmt.Errorf("bad item %d", n)
		}
		return n * 10, nil
	}, dataflow.WithErrorHandler(func(err error) bool {
		reported = append(reported, err)
		return true
	}))

	var got []int
	require.NoError(t, dataflow.ForEach(ctx, out, func(n int) error {
		got = append(got, n)
		return nil
	}))

	assert.Equal(t, []int{10, 30}, got)
	require.Len(t, reported, 1)
	assert.EqualError(t, reported[0], "bad item 2")
}

func TestFilter(t *testing.T) {
	ctx := context.Background()

	evens := dataflow.Filter(ctx, dataflow.From(ctx, 1, 2, 3, 4), func(n int) bool { return n%2 == 0 })

	var got []int
	require.NoError(t, dataflow.ForEach(ctx, evens, func(n int) error {
		got = append(got, n)
		return nil
	}))
	assert.Equal(t, []int{2, 4}, got)
}

func TestForEachReturnsFirstUnhandledError(t *testing.T) {
	ctx := context.Background()

	err := dataflow.ForEach(ctx, dataflow.From(ctx, "a", "b"), func(s string) error {
		if s == "b" {
			return fmt.Errorf("cannot handle %s", s)
		}
		return nil
	})
	assert.EqualError(t, err, "cannot handle b")
}

func TestPace(t *testing.T) {
	t.Run("delays every item including the first", func(t *testing.T) {
		ctx := context.Background()
		interval := 20 * time.Millisecond

		start := time.Now()
		paced := dataflow.Pace(ctx, dataflow.From(ctx, "a", "b", "c"), interval)

		var got []string
		var stamps []time.Time
		for v := range paced {
			got = append(got, v)
			stamps = append(stamps, time.Now())
		}

		assert.Equal(t, []string{"a", "b", "c"}, got)
		require.Len(t, stamps, 3)
		assert.GreaterOrEqual(t, stamps[0].Sub(start), interval)
		for i := 1; i < len(stamps); i++ {
			assert.GreaterOrEqual(t, stamps[i].Sub(stamps[i-1]), interval)
		}
	})

	t.Run("stops on cancellation", func(t *testing.T) {
		ctx, cancel := context.WithCancel(context.Background())
		paced := dataflow.Pace(ctx, dataflow.From(ctx, 1, 2, 3), 10*time.Millisecond)

		first, ok := <-paced
		require.True(t, ok)
		assert.Equal(t, 1, first)
		cancel()

		done := make(chan struct{})
		go func() {
			defer close(done)
			for range paced {
			}
		}()
		select {
		case <-done:
		case <-time.After(time.Second):
			t.Fatal("paced stream did not close after cancel")
		}
	})
}
