package service

import (
	"context"
	"errors"
	"strconv"
	"strings"
	"sync"

	"github.com/charmbracelet/log"
	"golang.org/x/sync/singleflight"

	"github.com/rhinobase/workshop/internal/cache"
	dom "github.com/rhinobase/workshop/internal/domain"
	"github.com/rhinobase/workshop/internal/repo"
)

var (
	ErrNotFound  = errors.New("not found")
	ErrEmptyTask = errors.New("task must not be empty")
)

// StoreError wraps a failure of the backing store.
type StoreError struct {
	Op  string
	Err error
}

func (e *StoreError) Error() string { return "store " + e.Op + ": " + e.Err.Error() }

func (e *StoreError) Unwrap() error { return e.Err }

type TaskService struct {
	repo   repo.TaskRepo
	cache  *cache.TaskCache
	logger *log.Logger
	sf     singleflight.Group

	// epoch advances on every invalidation. A list read that started in an
	// older epoch must not refill the cache.
	mu    sync.Mutex
	epoch uint64
}

// NewTaskService creates a TaskService. If c is nil, caching is disabled.
func NewTaskService(r repo.TaskRepo, c *cache.TaskCache, logger *log.Logger) *TaskService {
	if logger == nil {
		logger = log.Default()
	}
	return &TaskService{repo: r, cache: c, logger: logger}
}

// Create stores text as given. Text that is blank after trimming is rejected.
func (s *TaskService) Create(ctx context.Context, text string) (dom.Task, error) {
	if strings.TrimSpace(text) == "" {
		return dom.Task{}, ErrEmptyTask
	}
	t, err := s.repo.Create(ctx, text)
	if err != nil {
		return dom.Task{}, &StoreError{Op: "create", Err: err}
	}
	s.invalidateCache(ctx)
	return t, nil
}

func (s *TaskService) List(ctx context.Context) ([]dom.Task, error) {
	if s.cache == nil {
		list, err := s.repo.List(ctx)
		if err != nil {
			return nil, &StoreError{Op: "list", Err: err}
		}
		return list, nil
	}
	epoch := s.currentEpoch()
	flight := cache.KeyAllTasks.String() + "@" + strconv.FormatUint(epoch, 10)
	v, err, _ := s.sf.Do(flight, func() (interface{}, error) {
		list, err := s.cache.GetList(ctx)
		if err != nil {
			s.logger.Warn("task cache read failed", "key", cache.KeyAllTasks, "err", err)
		} else if list != nil {
			return list, nil
		}
		list, err = s.repo.List(ctx)
		if err != nil {
			return nil, &StoreError{Op: "list", Err: err}
		}
		s.fillCache(ctx, epoch, list)
		return list, nil
	})
	if err != nil {
		return nil, err
	}
	return v.([]dom.Task), nil
}

func (s *TaskService) SetStatus(ctx context.Context, id string, status bool) error {
	if err := s.repo.SetStatus(ctx, id, status); err != nil {
		return mapRepoErr("set status", err)
	}
	s.invalidateCache(ctx)
	return nil
}

func (s *TaskService) Delete(ctx context.Context, id string) error {
	if err := s.repo.Delete(ctx, id); err != nil {
		return mapRepoErr("delete", err)
	}
	s.invalidateCache(ctx)
	return nil
}

// Ping checks that the store is reachable.
func (s *TaskService) Ping(ctx context.Context) error {
	if err := s.repo.Ping(ctx); err != nil {
		return &StoreError{Op: "ping", Err: err}
	}
	return nil
}

func (s *TaskService) currentEpoch() uint64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.epoch
}

// fillCache stores list unless a write invalidated the cache after the list
// was read in epoch.
func (s *TaskService) fillCache(ctx context.Context, epoch uint64, list []dom.Task) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.epoch != epoch {
		s.logger.Debug("skip task cache fill, list changed during read", "key", cache.KeyAllTasks)
		return
	}
	if err := s.cache.SetList(ctx, list); err != nil {
		s.logger.Warn("task cache write failed", "key", cache.KeyAllTasks, "err", err)
	}
}

func (s *TaskService) invalidateCache(ctx context.Context) {
	if s.cache == nil {
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.epoch++
	if err := s.cache.Invalidate(ctx); err != nil {
		s.logger.Warn("task cache invalidate failed", "key", cache.KeyAllTasks, "err", err)
	}
}

func mapRepoErr(op string, err error) error {
	if errors.Is(err, repo.ErrNotFound) {
		return ErrNotFound
	}
	return &StoreError{Op: op, Err: err}
}
