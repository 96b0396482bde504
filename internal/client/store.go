package client

import (
	"context"
	"errors"
	"sync"

	"github.com/charmbracelet/log"

	dom "github.com/rhinobase/workshop/internal/domain"
)

// ErrMutationPending is returned when the same control already has a
// request in flight.
var ErrMutationPending = errors.New("mutation already in flight")

// API is the subset of the task API the Store drives. *Client implements it.
type API interface {
	List(ctx context.Context) ([]dom.Task, error)
	Create(ctx context.Context, text string) (dom.Task, error)
	SetStatus(ctx context.Context, id string, status bool) error
	Delete(ctx context.Context, id string) error
}

type MutationKind int

const (
	MutationCreate MutationKind = iota
	MutationSetStatus
	MutationDelete
)

func (k MutationKind) String() string {
	switch k {
	case MutationCreate:
		return "create"
	case MutationSetStatus:
		return "set-status"
	case MutationDelete:
		return "delete"
	}
	return "unknown"
}

// mutationKey names one control: the create form, or one row's status or
// delete button.
type mutationKey struct {
	kind MutationKind
	id   string
}

// Store caches the task list and runs mutations against the API. Every
// successful mutation invalidates QueryKeyTasks; failures are logged and
// leave the cached list untouched.
type Store struct {
	api    API
	tasks  *QueryCache[[]dom.Task]
	logger *log.Logger

	mu      sync.Mutex
	pending map[mutationKey]struct{}
}

func NewStore(api API, logger *log.Logger) *Store {
	if logger == nil {
		logger = log.Default()
	}
	return &Store{
		api:     api,
		tasks:   NewQueryCache[[]dom.Task](),
		logger:  logger,
		pending: map[mutationKey]struct{}{},
	}
}

// FetchAll returns the task list, from cache when it is fresh.
func (s *Store) FetchAll(ctx context.Context) ([]dom.Task, error) {
	list, err := s.tasks.Fetch(ctx, QueryKeyTasks, s.api.List)
	if err != nil {
		s.logger.Error("fetch tasks", "key", QueryKeyTasks, "err", err)
		return nil, err
	}
	return list, nil
}

// Invalidate marks the cached task list stale so the next FetchAll reloads it.
func (s *Store) Invalidate() {
	s.tasks.Invalidate(QueryKeyTasks)
}

// Tasks returns the cached state of the task list query.
func (s *Store) Tasks() QueryState[[]dom.Task] {
	return s.tasks.State(QueryKeyTasks)
}

func (s *Store) Create(ctx context.Context, text string) (dom.Task, error) {
	var created dom.Task
	err := s.mutate(mutationKey{kind: MutationCreate}, func() error {
		var err error
		created, err = s.api.Create(ctx, text)
		return err
	})
	return created, err
}

func (s *Store) SetStatus(ctx context.Context, id string, status bool) error {
	return s.mutate(mutationKey{kind: MutationSetStatus, id: id}, func() error {
		return s.api.SetStatus(ctx, id, status)
	})
}

func (s *Store) Delete(ctx context.Context, id string) error {
	return s.mutate(mutationKey{kind: MutationDelete, id: id}, func() error {
		return s.api.Delete(ctx, id)
	})
}

// Pending reports whether the control for kind and id has a request in
// flight. id is ignored for MutationCreate.
func (s *Store) Pending(kind MutationKind, id string) bool {
	if kind == MutationCreate {
		id = ""
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	_, ok := s.pending[mutationKey{kind: kind, id: id}]
	return ok
}

func (s *Store) mutate(key mutationKey, call func() error) error {
	s.mu.Lock()
	if _, busy := s.pending[key]; busy {
		s.mu.Unlock()
		return ErrMutationPending
	}
	s.pending[key] = struct{}{}
	s.mu.Unlock()

	defer func() {
		s.mu.Lock()
		delete(s.pending, key)
		s.mu.Unlock()
	}()

	if err := call(); err != nil {
		s.logger.Error("mutation failed", "kind", key.kind, "id", key.id, "err", err)
		return err
	}
	s.tasks.Invalidate(QueryKeyTasks)
	return nil
}
