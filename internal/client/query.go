package client

import (
	"context"
	"strconv"
	"sync"
	"time"

	"golang.org/x/sync/singleflight"
)

// QueryKey identifies one cached query result.
type QueryKey struct {
	Resource string
	Scope    string
}

func (k QueryKey) String() string { return k.Resource + ":" + k.Scope }

// QueryKeyTasks is the unfiltered task list.
var QueryKeyTasks = QueryKey{Resource: "task", Scope: "all"}

type QueryStatus int

const (
	QueryIdle QueryStatus = iota
	QueryLoading
	QuerySuccess
	QueryError
)

func (s QueryStatus) String() string {
	switch s {
	case QueryLoading:
		return "loading"
	case QuerySuccess:
		return "success"
	case QueryError:
		return "error"
	default:
		return "idle"
	}
}

// QueryState is a snapshot of one cache entry.
// Data keeps the last successful value across later failures.
type QueryState[T any] struct {
	Status    QueryStatus
	Data      T
	Err       error
	Stale     bool
	UpdatedAt time.Time
}

// QueryCache holds query results by key. A fresh successful entry is served
// without calling the fetcher; Invalidate marks an entry stale so the next
// Fetch goes back to the source.
type QueryCache[T any] struct {
	mu      sync.Mutex
	entries map[QueryKey]*queryEntry[T]
	sf      singleflight.Group
	now     func() time.Time
}

type queryEntry[T any] struct {
	state QueryState[T]
	// gen advances on every Invalidate; a fetch that started before an
	// invalidation leaves the entry stale.
	gen uint64
	// dataGen is the gen of the fetch that last wrote state. Results of
	// older fetches are dropped.
	dataGen uint64
}

func NewQueryCache[T any]() *QueryCache[T] {
	return &QueryCache[T]{entries: map[QueryKey]*queryEntry[T]{}, now: time.Now}
}

// State returns the current state for key. Unknown keys are QueryIdle.
func (c *QueryCache[T]) State(key QueryKey) QueryState[T] {
	c.mu.Lock()
	defer c.mu.Unlock()
	if e, ok := c.entries[key]; ok {
		return e.state
	}
	return QueryState[T]{Status: QueryIdle}
}

// Fetch returns the cached value for key, or calls fetch when the entry is
// missing, stale or failed. Concurrent fetches of one key share a call
// unless the key was invalidated in between, so a Fetch issued after
// Invalidate never returns data loaded before it.
func (c *QueryCache[T]) Fetch(ctx context.Context, key QueryKey, fetch func(context.Context) (T, error)) (T, error) {
	c.mu.Lock()
	e, ok := c.entries[key]
	if ok && e.state.Status == QuerySuccess && !e.state.Stale {
		data := e.state.Data
		c.mu.Unlock()
		return data, nil
	}
	if !ok {
		e = &queryEntry[T]{}
		c.entries[key] = e
	}
	e.state.Status = QueryLoading
	startGen := e.gen
	c.mu.Unlock()

	flight := key.String() + "@" + strconv.FormatUint(startGen, 10)
	v, err, _ := c.sf.Do(flight, func() (interface{}, error) {
		data, err := fetch(ctx)

		c.mu.Lock()
		defer c.mu.Unlock()
		if startGen < e.dataGen {
			return data, err
		}
		e.dataGen = startGen
		if err != nil {
			e.state.Status = QueryError
			e.state.Err = err
			return data, err
		}
		e.state.Status = QuerySuccess
		e.state.Data = data
		e.state.Err = nil
		e.state.Stale = e.gen != startGen
		e.state.UpdatedAt = c.now()
		return data, nil
	})
	if err != nil {
		var zero T
		return zero, err
	}
	return v.(T), nil
}

// Invalidate marks key stale. The cached data stays readable until the
// next Fetch replaces it.
func (c *QueryCache[T]) Invalidate(key QueryKey) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if e, ok := c.entries[key]; ok {
		e.gen++
		e.state.Stale = true
	}
}
