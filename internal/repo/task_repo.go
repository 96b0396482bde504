package repo

import (
	"context"
	"errors"

	dom "github.com/rhinobase/workshop/internal/domain"
)

// ErrNotFound is returned when no task has the requested id.
var ErrNotFound = errors.New("task not found")

// TaskRepo persists tasks. Implementations generate ids on Create.
type TaskRepo interface {
	Create(ctx context.Context, text string) (dom.Task, error)
	GetByID(ctx context.Context, id string) (dom.Task, error)
	List(ctx context.Context) ([]dom.Task, error)
	SetStatus(ctx context.Context, id string, status bool) error
	Delete(ctx context.Context, id string) error
	Ping(ctx context.Context) error
}
