package domain

import (
	"fmt"
	"time"
)

// OpenPeriodEnd marks the interval that is still current.
var OpenPeriodEnd = time.Date(9999, time.December, 31, 23, 59, 59, 999999000, time.UTC)

type TodoItem struct {
	ID          int64
	Title       string
	IsCompleted bool
	CreatedOn   time.Time
}

func (t *TodoItem) ToMap() map[string]interface{} {
	return map[string]interface{}{
		"title":        t.Title,
		"is_completed": t.IsCompleted,
		"created_on":   t.CreatedOn,
	}
}

// OpenInterval returns the first history interval of a freshly created item.
func (t *TodoItem) OpenInterval() TodoItemHistory {
	return TodoItemHistory{
		TodoItemID:  t.ID,
		Title:       t.Title,
		IsCompleted: t.IsCompleted,
		PeriodStart: t.CreatedOn,
		PeriodEnd:   OpenPeriodEnd,
	}
}

// TodoItemHistory is one validity interval [PeriodStart, PeriodEnd) of an item.
type TodoItemHistory struct {
	ID          int64
	TodoItemID  int64
	Title       string
	IsCompleted bool
	PeriodStart time.Time
	PeriodEnd   time.Time
}

func (h *TodoItemHistory) IsOpen() bool {
	return h.PeriodEnd.Equal(OpenPeriodEnd)
}

// Boundary returns the instant at which the interval may be closed.
// It never moves before PeriodStart, so a clock stepping backwards cannot
// produce an interval with negative length.
func (h *TodoItemHistory) Boundary(at time.Time) time.Time {
	if at.Before(h.PeriodStart) {
		return h.PeriodStart
	}

	return at
}

// Successor returns the interval that follows h once the item has been
// mutated at the given instant.
func (h *TodoItemHistory) Successor(at time.Time, isCompleted bool) TodoItemHistory {
	return TodoItemHistory{
		TodoItemID:  h.TodoItemID,
		Title:       h.Title,
		IsCompleted: isCompleted,
		PeriodStart: at,
		PeriodEnd:   OpenPeriodEnd,
	}
}

// VerifyTimeline checks that the intervals of each item, taken in
// PeriodStart order, are contiguous and never overlap.
func VerifyTimeline(history []TodoItemHistory) error {
	last := make(map[int64]TodoItemHistory)

	for _, h := range history {
		if h.PeriodEnd.Before(h.PeriodStart) {
			return fmt.Errorf("todo item %d: interval ends before it starts at %s", h.TodoItemID, h.PeriodStart)
		}

		prev, seen := last[h.TodoItemID]
		if seen {
			if prev.IsOpen() {
				return fmt.Errorf("todo item %d: interval starting %s follows an open interval", h.TodoItemID, h.PeriodStart)
			}

			if !prev.PeriodEnd.Equal(h.PeriodStart) {
				return fmt.Errorf("todo item %d: gap or overlap between %s and %s", h.TodoItemID, prev.PeriodEnd, h.PeriodStart)
			}
		}

		last[h.TodoItemID] = h
	}

	return nil
}
