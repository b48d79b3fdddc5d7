package service

import (
	"context"
	"errors"
	"time"

	"todoitems/internal/core/domain"
	"todoitems/internal/core/port"
	tel "todoitems/internal/core/telemetry"
	"todoitems/internal/core/util"
)

const todoItemService = "todo_item"

type TodoItemService struct {
	repo      port.TodoItemRepository
	clock     util.Clock
	telemetry port.Telemetry
}

func NewTodoItemService(repo port.TodoItemRepository, clock util.Clock, telemetry port.Telemetry) *TodoItemService {
	if clock == nil {
		clock = util.SystemClock
	}

	if telemetry == nil {
		telemetry = tel.NewNoOpProbe()
	}

	return &TodoItemService{
		repo:      repo,
		clock:     clock,
		telemetry: telemetry,
	}
}

func (s *TodoItemService) observe(ctx context.Context, operation string, attrs map[string]interface{}) (context.Context, func(error)) {
	ctx, span := s.telemetry.StartServiceSpan(ctx, todoItemService, operation, attrs)
	start := time.Now()

	return ctx, func(err error) {
		s.telemetry.RecordServiceOperation(ctx, todoItemService, operation, time.Since(start), err)

		var domainErr *domain.Error
		if err != nil && !errors.As(err, &domainErr) {
			s.telemetry.RecordError(ctx, todoItemService+"."+operation, err, attrs)
		}

		span.End()
	}
}

func (s *TodoItemService) List(ctx context.Context) (items []domain.TodoItem, err error) {
	ctx, done := s.observe(ctx, "List", nil)
	defer func() { done(err) }()

	return s.repo.List(ctx)
}

func (s *TodoItemService) GetByID(ctx context.Context, id int64) (item domain.TodoItem, err error) {
	ctx, done := s.observe(ctx, "GetByID", map[string]interface{}{"todo_item.id": id})
	defer func() { done(err) }()

	return s.repo.GetByID(ctx, id)
}

// Create stamps CreatedOn with the server clock; any client value is discarded.
func (s *TodoItemService) Create(ctx context.Context, item domain.TodoItem) (saved domain.TodoItem, err error) {
	ctx, done := s.observe(ctx, "Create", nil)
	defer func() { done(err) }()

	if item.Title == "" {
		return domain.TodoItem{}, domain.WrapError(domain.ErrCodeInvalid, "title is required", domain.ErrInvalidPayload)
	}

	newItem := domain.TodoItem{
		Title:       item.Title,
		IsCompleted: item.IsCompleted,
		CreatedOn:   util.Normalize(s.clock()),
	}

	return s.repo.Create(ctx, newItem)
}

// UpdateCompletion changes only the completion flag. The title is immutable
// through this path.
func (s *TodoItemService) UpdateCompletion(ctx context.Context, id int64, isCompleted bool) (err error) {
	ctx, done := s.observe(ctx, "UpdateCompletion", map[string]interface{}{
		"todo_item.id":           id,
		"todo_item.is_completed": isCompleted,
	})
	defer func() { done(err) }()

	return s.repo.UpdateCompletion(ctx, id, isCompleted, util.Normalize(s.clock()))
}

func (s *TodoItemService) Delete(ctx context.Context, id int64) (err error) {
	ctx, done := s.observe(ctx, "Delete", map[string]interface{}{"todo_item.id": id})
	defer func() { done(err) }()

	return s.repo.Delete(ctx, id, util.Normalize(s.clock()))
}

func (s *TodoItemService) History(ctx context.Context) (history []domain.TodoItemHistory, err error) {
	ctx, done := s.observe(ctx, "History", nil)
	defer func() { done(err) }()

	return s.repo.History(ctx)
}
