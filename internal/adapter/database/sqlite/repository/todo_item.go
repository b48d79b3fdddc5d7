package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strconv"
	"time"

	sq "github.com/Masterminds/squirrel"

	"todoitems/internal/adapter/database/sqlite"
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
	db        *sqlite.DB
	telemetry port.Telemetry
}

func NewTodoItemRepository(db *sqlite.DB, telemetry port.Telemetry) port.TodoItemRepository {
	if telemetry == nil {
		telemetry = tel.NewNoOpProbe()
	}

	return &TodoItemRepository{
		db:        db,
		telemetry: telemetry,
	}
}

func (r *TodoItemRepository) List(ctx context.Context) (items []domain.TodoItem, err error) {
	ctx, op := tel.StartOperation(r.telemetry, ctx, "List", entity, map[string]interface{}{
		"db.system":    "sqlite",
		"db.table":     todoItemsTable,
		"db.operation": "SELECT",
	})
	defer func() { op.End(err) }()

	query, args, err := r.db.QueryBuilder.Select(todoItemColumns...).
		From(todoItemsTable).
		ToSql()

	if err != nil {
		return nil, err
	}

	op.Query(query, args)

	items = make([]domain.TodoItem, 0)

	err = r.db.WithSession(ctx, func(tx *sql.Tx) error {
		rows, err := tx.QueryContext(ctx, query, args...)
		if err != nil {
			return err
		}
		defer rows.Close()

		for rows.Next() {
			item, err := scanItem(rows)
			if err != nil {
				return err
			}

			items = append(items, item)
		}

		return rows.Err()
	})

	if err != nil {
		return nil, fmt.Errorf("list todo items: %w", err)
	}

	op.Span().SetAttributes(map[string]interface{}{"db.rows_returned": len(items)})

	return items, nil
}

func (r *TodoItemRepository) GetByID(ctx context.Context, id int64) (item domain.TodoItem, err error) {
	ctx, op := tel.StartOperation(r.telemetry, ctx, "GetByID", entity, map[string]interface{}{
		"db.system":    "sqlite",
		"db.table":     todoItemsTable,
		"db.operation": "SELECT",
		"todo_item.id": id,
	})
	defer func() { op.End(err) }()

	err = r.db.WithSession(ctx, func(tx *sql.Tx) error {
		var err error
		item, err = r.findByID(ctx, tx, op, id)
		return err
	})

	if err != nil {
		return domain.TodoItem{}, fmt.Errorf("get todo item %d: %w", id, err)
	}

	return item, nil
}

func (r *TodoItemRepository) Create(ctx context.Context, item domain.TodoItem) (saved domain.TodoItem, err error) {
	ctx, op := tel.StartOperation(r.telemetry, ctx, "Create", entity, map[string]interface{}{
		"db.system":    "sqlite",
		"db.table":     todoItemsTable,
		"db.operation": "INSERT",
	})
	defer func() { op.End(err) }()

	query, args, err := r.db.QueryBuilder.Insert(todoItemsTable).
		SetMap(item.ToMap()).
		ToSql()

	if err != nil {
		return domain.TodoItem{}, err
	}

	err = r.db.WithSession(ctx, func(tx *sql.Tx) error {
		op.Query(query, args)

		result, err := tx.ExecContext(ctx, query, args...)
		if err != nil {
			return err
		}

		id, err := result.LastInsertId()
		if err != nil {
			return err
		}

		saved = item
		saved.ID = id

		return r.appendInterval(ctx, tx, op, saved.OpenInterval())
	})

	if err != nil {
		return domain.TodoItem{}, fmt.Errorf("create todo item: %w", err)
	}

	op.Span().SetAttributes(map[string]interface{}{"todo_item.id": saved.ID})

	r.telemetry.RecordBusinessEvent(ctx, "created", entity, strconv.FormatInt(saved.ID, 10), map[string]interface{}{
		"is_completed": saved.IsCompleted,
		"created_on":   saved.CreatedOn,
	})

	return saved, nil
}

func (r *TodoItemRepository) UpdateCompletion(ctx context.Context, id int64, isCompleted bool, at time.Time) (err error) {
	ctx, op := tel.StartOperation(r.telemetry, ctx, "UpdateCompletion", entity, map[string]interface{}{
		"db.system":              "sqlite",
		"db.table":               todoItemsTable,
		"db.operation":           "UPDATE",
		"todo_item.id":           id,
		"todo_item.is_completed": isCompleted,
	})
	defer func() { op.End(err) }()

	query, args, err := r.db.QueryBuilder.Update(todoItemsTable).
		Set("is_completed", isCompleted).
		Where(sq.Eq{"id": id}).
		ToSql()

	if err != nil {
		return err
	}

	err = r.db.WithSession(ctx, func(tx *sql.Tx) error {
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
	ctx, op := tel.StartOperation(r.telemetry, ctx, "Delete", entity, map[string]interface{}{
		"db.system":    "sqlite",
		"db.table":     todoItemsTable,
		"db.operation": "DELETE",
		"todo_item.id": id,
	})
	defer func() { op.End(err) }()

	query, args, err := r.db.QueryBuilder.Delete(todoItemsTable).
		Where(sq.Eq{"id": id}).
		ToSql()

	if err != nil {
		return err
	}

	err = r.db.WithSession(ctx, func(tx *sql.Tx) error {
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
	ctx, op := tel.StartOperation(r.telemetry, ctx, "History", entity, map[string]interface{}{
		"db.system":    "sqlite",
		"db.table":     historyTable,
		"db.operation": "SELECT",
	})
	defer func() { op.End(err) }()

	query, args, err := r.db.QueryBuilder.Select(historyColumns...).
		From(historyTable).
		OrderBy("period_start ASC", "id ASC").
		ToSql()

	if err != nil {
		return nil, err
	}

	op.Query(query, args)

	history = make([]domain.TodoItemHistory, 0)

	err = r.db.WithSession(ctx, func(tx *sql.Tx) error {
		rows, err := tx.QueryContext(ctx, query, args...)
		if err != nil {
			return err
		}
		defer rows.Close()

		for rows.Next() {
			h, err := scanInterval(rows)
			if err != nil {
				return err
			}

			history = append(history, h)
		}

		return rows.Err()
	})

	if err != nil {
		return nil, fmt.Errorf("list todo item history: %w", err)
	}

	op.Span().SetAttributes(map[string]interface{}{"db.rows_returned": len(history)})

	return history, nil
}

func (r *TodoItemRepository) findByID(ctx context.Context, tx *sql.Tx, op *tel.Operation, id int64) (domain.TodoItem, error) {
	query, args, err := r.db.QueryBuilder.Select(todoItemColumns...).
		From(todoItemsTable).
		Where(sq.Eq{"id": id}).
		ToSql()

	if err != nil {
		return domain.TodoItem{}, err
	}

	op.Query(query, args)

	item, err := scanItem(tx.QueryRowContext(ctx, query, args...))

	if errors.Is(err, sql.ErrNoRows) {
		return domain.TodoItem{}, domain.ErrTodoItemNotFound
	}

	return item, err
}

func (r *TodoItemRepository) execAffectingOne(ctx context.Context, tx *sql.Tx, op *tel.Operation, query string, args []interface{}) error {
	op.Query(query, args)

	result, err := tx.ExecContext(ctx, query, args...)
	if err != nil {
		return err
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return err
	}

	op.Span().SetAttributes(map[string]interface{}{"db.rows_affected": rowsAffected})

	if rowsAffected == 0 {
		return domain.ErrTodoItemNotFound
	}

	return nil
}

// openInterval returns the latest interval of an item, which must still be open.
func (r *TodoItemRepository) openInterval(ctx context.Context, tx *sql.Tx, op *tel.Operation, id int64) (domain.TodoItemHistory, error) {
	query, args, err := r.db.QueryBuilder.Select(historyColumns...).
		From(historyTable).
		Where(sq.Eq{"todo_item_id": id}).
		OrderBy("period_start DESC", "id DESC").
		Limit(1).
		ToSql()

	if err != nil {
		return domain.TodoItemHistory{}, err
	}

	op.Query(query, args)

	h, err := scanInterval(tx.QueryRowContext(ctx, query, args...))

	if errors.Is(err, sql.ErrNoRows) {
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

func (r *TodoItemRepository) closeInterval(ctx context.Context, tx *sql.Tx, op *tel.Operation, historyID int64, at time.Time) error {
	query, args, err := r.db.QueryBuilder.Update(historyTable).
		Set("period_end", at).
		Where(sq.Eq{"id": historyID}).
		ToSql()

	if err != nil {
		return err
	}

	op.Query(query, args)

	_, err = tx.ExecContext(ctx, query, args...)

	return err
}

func (r *TodoItemRepository) appendInterval(ctx context.Context, tx *sql.Tx, op *tel.Operation, h domain.TodoItemHistory) error {
	query, args, err := r.db.QueryBuilder.Insert(historyTable).
		Columns("todo_item_id", "title", "is_completed", "period_start", "period_end").
		Values(h.TodoItemID, h.Title, h.IsCompleted, h.PeriodStart, h.PeriodEnd).
		ToSql()

	if err != nil {
		return err
	}

	op.Query(query, args)

	_, err = tx.ExecContext(ctx, query, args...)

	return err
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanItem(row rowScanner) (domain.TodoItem, error) {
	var item domain.TodoItem

	err := row.Scan(&item.ID, &item.Title, &item.IsCompleted, &item.CreatedOn)
	item.CreatedOn = item.CreatedOn.UTC()

	return item, err
}

func scanInterval(row rowScanner) (domain.TodoItemHistory, error) {
	var h domain.TodoItemHistory

	err := row.Scan(&h.ID, &h.TodoItemID, &h.Title, &h.IsCompleted, &h.PeriodStart, &h.PeriodEnd)

	h.PeriodStart = h.PeriodStart.UTC()
	h.PeriodEnd = h.PeriodEnd.UTC()

	return h, err
}
