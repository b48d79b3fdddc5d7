package repository

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"time"

	sq "github.com/Masterminds/squirrel"
	"github.com/jackc/pgx/v5"

	"todoitems/internal/adapter/database/postgres"
	"todoitems/internal/core/domain"
	"todoitems/internal/core/port"
	tel "todoitems/internal/core/telemetry"
)

const (
	todoItemsTable = "todo_items"
	historyTable   = "todo_items_history"
	entity         = "todo_item"
)

var (
	todoItemColumns = []string{"id", "title", "is_completed", "created_on"}
	historyColumns  = []string{"id", "todo_item_id", "title", "is_completed", "period_start", "period_end"}
)

type TodoItemRepository struct {
	db        *postgres.DB
	telemetry port.Telemetry
}

func NewTodoItemRepository(db *postgres.DB, telemetry port.Telemetry) port.TodoItemRepository {
	if telemetry == nil {
		telemetry = tel.NewNoOpProbe()
	}

	return &TodoItemRepository{db: db, telemetry: telemetry}
}

func (r *TodoItemRepository) attrs(operation string, table string, extra map[string]interface{}) map[string]interface{} {
	attrs := map[string]interface{}{
		"db.system":    "postgresql",
		"db.table":     table,
		"db.operation": operation,
	}

	for k, v := range extra {
		attrs[k] = v
	}

	return attrs
}

func (r *TodoItemRepository) List(ctx context.Context) (items []domain.TodoItem, err error) {
	ctx, op := tel.StartOperation(r.telemetry, ctx, "List", entity, r.attrs("SELECT", todoItemsTable, nil))
	defer func() { op.End(err) }()

	query, args, err := r.db.QueryBuilder.Select(todoItemColumns...).From(todoItemsTable).ToSql()
	if err != nil {
		return nil, err
	}

	op.Query(query, args)

	err = r.db.WithSession(ctx, func(tx pgx.Tx) error {
		rows, err := tx.Query(ctx, query, args...)
		if err != nil {
			return err
		}

		items, err = pgx.CollectRows(rows, scanItem)
		return err
	})

	if err != nil {
		return nil, fmt.Errorf("list todo items: %w", err)
	}

	if items == nil {
		items = make([]domain.TodoItem, 0)
	}

	op.Span().SetAttributes(map[string]interface{}{"db.rows_returned": len(items)})

	return items, nil
}

func (r *TodoItemRepository) GetByID(ctx context.Context, id int64) (item domain.TodoItem, err error) {
	ctx, op := tel.StartOperation(r.telemetry, ctx, "GetByID", entity, r.attrs("SELECT", todoItemsTable, map[string]interface{}{
		"todo_item.id": id,
	}))
	defer func() { op.End(err) }()

	query, args, err := r.db.QueryBuilder.Select(todoItemColumns...).
		From(todoItemsTable).
		Where(sq.Eq{"id": id}).
		ToSql()

	if err != nil {
		return domain.TodoItem{}, err
	}

	op.Query(query, args)

	err = r.db.WithSession(ctx, func(tx pgx.Tx) error {
		rows, err := tx.Query(ctx, query, args...)
		if err != nil {
			return err
		}

		item, err = pgx.CollectExactlyOneRow(rows, scanItem)
		return err
	})

	if errors.Is(err, pgx.ErrNoRows) {
		err = domain.ErrTodoItemNotFound
	}

	if err != nil {
		return domain.TodoItem{}, fmt.Errorf("get todo item %d: %w", id, err)
	}

	return item, nil
}

func (r *TodoItemRepository) Create(ctx context.Context, item domain.TodoItem) (saved domain.TodoItem, err error) {
	ctx, op := tel.StartOperation(r.telemetry, ctx, "Create", entity, r.attrs("INSERT", todoItemsTable, nil))
	defer func() { op.End(err) }()

	query, args, err := r.db.QueryBuilder.Insert(todoItemsTable).
		SetMap(item.ToMap()).
		Suffix("RETURNING id").
		ToSql()

	if err != nil {
		return domain.TodoItem{}, err
	}

	err = r.db.WithSession(ctx, func(tx pgx.Tx) error {
		op.Query(query, args)

		saved = item

		if err := tx.QueryRow(ctx, query, args...).Scan(&saved.ID); err != nil {
			return err
		}

		return r.appendInterval(ctx, tx, op, saved.OpenInterval())
	})

	if err != nil {
		return domain.TodoItem{}, fmt.Errorf("create todo item: %w", err)
	}

	r.telemetry.RecordBusinessEvent(ctx, "created", entity, strconv.FormatInt(saved.ID, 10), map[string]interface{}{
		"is_completed": saved.IsCompleted,
		"created_on":   saved.CreatedOn,
	})

	return saved, nil
}

func (r *TodoItemRepository) UpdateCompletion(ctx context.Context, id int64, isCompleted bool, at time.Time) (err error) {
	ctx, op := tel.StartOperation(r.telemetry, ctx, "UpdateCompletion", entity, r.attrs("UPDATE", todoItemsTable, map[string]interface{}{
		"todo_item.id":           id,
		"todo_item.is_completed": isCompleted,
	}))
	defer func() { op.End(err) }()

	query, args, err := r.db.QueryBuilder.Update(todoItemsTable).
		Set("is_completed", isCompleted).
		Where(sq.Eq{"id": id}).
		ToSql()

	if err != nil {
		return err
	}

	err = r.db.WithSession(ctx, func(tx pgx.Tx) error {
		if err := r.execAffectingOne(ctx, tx, op, query, args); err != nil {
			return err
		}

		open, err := r.openInterval(ctx, tx, op, id)
		if err != nil {
			return err
		}

		boundary := open.Boundary(at)

		if err := r.closeInterval(ctx, tx, op, open.ID, boundary); err != nil {
			return err
		}

		return r.appendInterval(ctx, tx, op, open.Successor(boundary, isCompleted))
	})

	if err != nil {
		return fmt.Errorf("update todo item %d: %w", id, err)
	}

	r.telemetry.RecordBusinessEvent(ctx, "updated", entity, strconv.FormatInt(id, 10), map[string]interface{}{
		"is_completed": isCompleted,
	})

	return nil
}

func (r *TodoItemRepository) Delete(ctx context.Context, id int64, at time.Time) (err error) {
	ctx, op := tel.StartOperation(r.telemetry, ctx, "Delete", entity, r.attrs("DELETE", todoItemsTable, map[string]interface{}{
		"todo_item.id": id,
	}))
	defer func() { op.End(err) }()

	query, args, err := r.db.QueryBuilder.Delete(todoItemsTable).
		Where(sq.Eq{"id": id}).
		ToSql()

	if err != nil {
		return err
	}

	err = r.db.WithSession(ctx, func(tx pgx.Tx) error {
		if err := r.execAffectingOne(ctx, tx, op, query, args); err != nil {
			return err
		}

		open, err := r.openInterval(ctx, tx, op, id)
		if err != nil {
			return err
		}

		return r.closeInterval(ctx, tx, op, open.ID, open.Boundary(at))
	})

	if err != nil {
		return fmt.Errorf("delete todo item %d: %w", id, err)
	}

	r.telemetry.RecordBusinessEvent(ctx, "deleted", entity, strconv.FormatInt(id, 10), nil)

	return nil
}

func (r *TodoItemRepository) History(ctx context.Context) (history []domain.TodoItemHistory, err error) {
	ctx, op := tel.StartOperation(r.telemetry, ctx, "History", entity, r.attrs("SELECT", historyTable, nil))
	defer func() { op.End(err) }()

	query, args, err := r.db.QueryBuilder.Select(historyColumns...).
		From(historyTable).
		OrderBy("period_start ASC", "id ASC").
		ToSql()

	if err != nil {
		return nil, err
	}

	op.Query(query, args)

	err = r.db.WithSession(ctx, func(tx pgx.Tx) error {
		rows, err := tx.Query(ctx, query, args...)
		if err != nil {
			return err
		}

		history, err = pgx.CollectRows(rows, scanInterval)
		return err
	})

	if err != nil {
		return nil, fmt.Errorf("list todo item history: %w", err)
	}

	if history == nil {
		history = make([]domain.TodoItemHistory, 0)
	}

	op.Span().SetAttributes(map[string]interface{}{"db.rows_returned": len(history)})

	return history, nil
}

func (r *TodoItemRepository) execAffectingOne(ctx context.Context, tx pgx.Tx, op *tel.Operation, query string, args []interface{}) error {
	op.Query(query, args)

	tag, err := tx.Exec(ctx, query, args...)
	if err != nil {
		return err
	}

	op.Span().SetAttributes(map[string]interface{}{"db.rows_affected": tag.RowsAffected()})

	if tag.RowsAffected() == 0 {
		return domain.ErrTodoItemNotFound
	}

	return nil
}

// openInterval locks and returns the latest interval of an item.
func (r *TodoItemRepository) openInterval(ctx context.Context, tx pgx.Tx, op *tel.Operation, id int64) (domain.TodoItemHistory, error) {
	query, args, err := r.db.QueryBuilder.Select(historyColumns...).
		From(historyTable).
		Where(sq.Eq{"todo_item_id": id}).
		OrderBy("period_start DESC", "id DESC").
		Limit(1).
		Suffix("FOR UPDATE").
		ToSql()

	if err != nil {
		return domain.TodoItemHistory{}, err
	}

	op.Query(query, args)

	rows, err := tx.Query(ctx, query, args...)
	if err != nil {
		return domain.TodoItemHistory{}, err
	}

	h, err := pgx.CollectExactlyOneRow(rows, scanInterval)

	if errors.Is(err, pgx.ErrNoRows) {
		return domain.TodoItemHistory{}, fmt.Errorf("todo item %d has no history", id)
	}

	if err != nil {
		return domain.TodoItemHistory{}, err
	}

	if !h.IsOpen() {
		return domain.TodoItemHistory{}, fmt.Errorf("todo item %d has no open history interval", id)
	}

	return h, nil
}

func (r *TodoItemRepository) closeInterval(ctx context.Context, tx pgx.Tx, op *tel.Operation, historyID int64, at time.Time) error {
	query, args, err := r.db.QueryBuilder.Update(historyTable).
		Set("period_end", at).
		Where(sq.Eq{"id": historyID}).
		ToSql()

	if err != nil {
		return err
	}

	op.Query(query, args)

	_, err = tx.Exec(ctx, query, args...)

	return err
}

func (r *TodoItemRepository) appendInterval(ctx context.Context, tx pgx.Tx, op *tel.Operation, h domain.TodoItemHistory) error {
	query, args, err := r.db.QueryBuilder.Insert(historyTable).
		Columns("todo_item_id", "title", "is_completed", "period_start", "period_end").
		Values(h.TodoItemID, h.Title, h.IsCompleted, h.PeriodStart, h.PeriodEnd).
		ToSql()

	if err != nil {
		return err
	}

	op.Query(query, args)

	_, err = tx.Exec(ctx, query, args...)

	return err
}

func scanItem(row pgx.CollectableRow) (domain.TodoItem, error) {
	var item domain.TodoItem

	err := row.Scan(&item.ID, &item.Title, &item.IsCompleted, &item.CreatedOn)
	item.CreatedOn = item.CreatedOn.UTC()

	return item, err
}

func scanInterval(row pgx.CollectableRow) (domain.TodoItemHistory, error) {
	var h domain.TodoItemHistory

	err := row.Scan(&h.ID, &h.TodoItemID, &h.Title, &h.IsCompleted, &h.PeriodStart, &h.PeriodEnd)
	h.PeriodStart = h.PeriodStart.UTC()
	h.PeriodEnd = h.PeriodEnd.UTC()

	return h, err
}
