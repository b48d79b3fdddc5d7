package factory

import (
	fab "github.com/Goldziher/fabricator"

	"todoitems/internal/core/domain"
	"todoitems/internal/core/util"
)

// NewTodoItem builds a todo item with random content. Fields named in
// customData win; CreatedOn defaults to now so stores accept the value.
func NewTodoItem(customData ...map[string]any) domain.TodoItem {
	instance := fab.New(domain.TodoItem{})

	overrides := map[string]any{
		"ID":        int64(0),
		"CreatedOn": util.SystemClock(),
	}

	for _, data := range customData {
		for key, value := range data {
			overrides[key] = value
		}
	}

	item := instance.Build(overrides)

	if item.Title == "" {
		item.Title = "todo item"
	}

	item.CreatedOn = util.Normalize(item.CreatedOn)

	return item
}
