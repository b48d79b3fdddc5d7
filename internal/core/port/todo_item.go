package port

import (
	"context"
	"time"

	"todoitems/internal/core/domain"
)

// TodoItemRepository persists todo items together with their history log.
// Every method runs in its own session; mutations append to the history
// in the same transaction.
type TodoItemRepository interface {
	List(ctx context.Context) ([]domain.TodoItem, error)
	GetByID(ctx context.Context, id int64) (domain.TodoItem, error)
	Create(ctx context.Context, item domain.TodoItem) (domain.TodoItem, error)
	UpdateCompletion(ctx context.Context, id int64, isCompleted bool, at time.Time) error
	Delete(ctx context.Context, id int64, at time.Time) error
	History(ctx context.Context) ([]domain.TodoItemHistory, error)
}

type TodoItemService interface {
	List(ctx context.Context) ([]domain.TodoItem, error)
	GetByID(ctx context.Context, id int64) (domain.TodoItem, error)
	Create(ctx context.Context, item domain.TodoItem) (domain.TodoItem, error)
	UpdateCompletion(ctx context.Context, id int64, isCompleted bool) error
	Delete(ctx context.Context, id int64) error
	History(ctx context.Context) ([]domain.TodoItemHistory, error)
}
