package client

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestQueryKey_String(t *testing.T) {
	assert.Equal(t, "task:all", QueryKeyTasks.String())
}

func TestQueryCache_ServesFreshEntry(t *testing.T) {
	c := NewQueryCache[int]()
	ctx := context.Background()
	calls := 0
	fetch := func(context.Context) (int, error) { calls++; return calls, nil }

	assert.Equal(t, QueryIdle, c.State(QueryKeyTasks).Status)

	v, err := c.Fetch(ctx, QueryKeyTasks, fetch)
	require.NoError(t, err)
	assert.Equal(t, 1, v)

	v, err = c.Fetch(ctx, QueryKeyTasks, fetch)
	require.NoError(t, err)
	assert.Equal(t, 1, v, "second read comes from cache")
	assert.Equal(t, 1, calls)

	st := c.State(QueryKeyTasks)
	assert.Equal(t, QuerySuccess, st.Status)
	assert.False(t, st.Stale)
	assert.False(t, st.UpdatedAt.IsZero())
}

func TestQueryCache_InvalidateForcesRefetch(t *testing.T) {
	c := NewQueryCache[int]()
	ctx := context.Background()
	calls := 0
	fetch := func(context.Context) (int, error) { calls++; return calls, nil }

	_, err := c.Fetch(ctx, QueryKeyTasks, fetch)
	require.NoError(t, err)

	c.Invalidate(QueryKeyTasks)
	st := c.State(QueryKeyTasks)
	assert.True(t, st.Stale)
	assert.Equal(t, 1, st.Data, "stale data stays readable")

	v, err := c.Fetch(ctx, QueryKeyTasks, fetch)
	require.NoError(t, err)
	assert.Equal(t, 2, v)
	assert.False(t, c.State(QueryKeyTasks).Stale)
}

func TestQueryCache_InvalidateUnknownKeyIsNoop(t *testing.T) {
	c := NewQueryCache[int]()
	c.Invalidate(QueryKey{Resource: "task", Scope: "none"})
	assert.Equal(t, QueryIdle, c.State(QueryKey{Resource: "task", Scope: "none"}).Status)
}

func TestQueryCache_ErrorKeepsLastData(t *testing.T) {
	c := NewQueryCache[int]()
	ctx := context.Background()

	_, err := c.Fetch(ctx, QueryKeyTasks, func(context.Context) (int, error) { return 7, nil })
	require.NoError(t, err)
	c.Invalidate(QueryKeyTasks)

	boom := errors.New("boom")
	_, err = c.Fetch(ctx, QueryKeyTasks, func(context.Context) (int, error) { return 0, boom })
	assert.ErrorIs(t, err, boom)

	st := c.State(QueryKeyTasks)
	assert.Equal(t, QueryError, st.Status)
	assert.ErrorIs(t, st.Err, boom)
	assert.Equal(t, 7, st.Data)
}

func TestQueryCache_InvalidateDuringFetchLeavesStale(t *testing.T) {
	c := NewQueryCache[int]()
	ctx := context.Background()

	_, err := c.Fetch(ctx, QueryKeyTasks, func(context.Context) (int, error) {
		c.Invalidate(QueryKeyTasks)
		return 1, nil
	})
	require.NoError(t, err)
	assert.True(t, c.State(QueryKeyTasks).Stale)
}

func TestQueryCache_FetchAfterInvalidateDoesNotJoinOlderFetch(t *testing.T) {
	c := NewQueryCache[int]()
	ctx := context.Background()

	var calls atomic.Int32
	started := make(chan struct{})
	release := make(chan struct{})
	fetch := func(context.Context) (int, error) {
		n := calls.Add(1)
		if n == 1 {
			close(started)
			<-release
		}
		return int(n), nil
	}

	first := make(chan int, 1)
	go func() {
		v, err := c.Fetch(ctx, QueryKeyTasks, fetch)
		assert.NoError(t, err)
		first <- v
	}()
	<-started

	c.Invalidate(QueryKeyTasks)
	v, err := c.Fetch(ctx, QueryKeyTasks, fetch)
	require.NoError(t, err)
	assert.Equal(t, 2, v, "a fetch after Invalidate loads again")
	assert.EqualValues(t, 2, calls.Load())

	close(release)
	assert.Equal(t, 1, <-first)

	st := c.State(QueryKeyTasks)
	assert.Equal(t, QuerySuccess, st.Status)
	assert.Equal(t, 2, st.Data, "the older fetch finishing last does not overwrite newer data")
	assert.False(t, st.Stale)
}
