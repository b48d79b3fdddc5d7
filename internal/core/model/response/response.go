package response

import (
	"time"

	"todoitems/internal/core/domain"
)

// TodoItemSummary is the list projection. It deliberately carries no id.
type TodoItemSummary struct {
	Title       string    `json:"title"`
	IsCompleted bool      `json:"isCompleted"`
	CreatedOn   time.Time `json:"createdOn"`
}

type TodoItemResponse struct {
	ID          int64     `json:"id"`
	Title       string    `json:"title"`
	IsCompleted bool      `json:"isCompleted"`
	CreatedOn   time.Time `json:"createdOn"`
}

type TodoItemAudit struct {
	Title       string    `json:"title"`
	IsCompleted bool      `json:"isCompleted"`
	PeriodStart time.Time `json:"periodStart"`
	PeriodEnd   time.Time `json:"periodEnd"`
}

type HealthEntryResponse struct {
	Status   string `json:"status"`
	Duration string `json:"duration"`
	Error    string `json:"error,omitempty"`
}

type HealthResponse struct {
	Status        string                         `json:"status"`
	TotalDuration string                         `json:"totalDuration"`
	Entries       map[string]HealthEntryResponse `json:"entries"`
}

type ValidationError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

type ResponseError struct {
	Code    string            `json:"code"`
	Errors  []ValidationError `json:"errors"`
	Details any               `json:"details,omitempty"`
}

type ErrorResponse struct {
	Error ResponseError `json:"error"`
}

func NewTodoItemResponse(item domain.TodoItem) TodoItemResponse {
	return TodoItemResponse{
		ID:          item.ID,
		Title:       item.Title,
		IsCompleted: item.IsCompleted,
		CreatedOn:   item.CreatedOn,
	}
}

func NewTodoItemSummaries(items []domain.TodoItem) []TodoItemSummary {
	data := make([]TodoItemSummary, 0, len(items))

	for _, item := range items {
		data = append(data, TodoItemSummary{
			Title:       item.Title,
			IsCompleted: item.IsCompleted,
			CreatedOn:   item.CreatedOn,
		})
	}

	return data
}

func NewTodoItemAudits(history []domain.TodoItemHistory) []TodoItemAudit {
	data := make([]TodoItemAudit, 0, len(history))

	for _, h := range history {
		data = append(data, TodoItemAudit{
			Title:       h.Title,
			IsCompleted: h.IsCompleted,
			PeriodStart: h.PeriodStart,
			PeriodEnd:   h.PeriodEnd,
		})
	}

	return data
}

func NewHealthResponse(report domain.HealthReport) HealthResponse {
	entries := make(map[string]HealthEntryResponse, len(report.Entries))

	for name, entry := range report.Entries {
		e := HealthEntryResponse{
			Status:   string(entry.Status),
			Duration: entry.Duration.String(),
		}

		if entry.Err != nil {
			e.Error = entry.Err.Error()
		}

		entries[name] = e
	}

	return HealthResponse{
		Status:        string(report.Status),
		TotalDuration: report.TotalDuration.String(),
		Entries:       entries,
	}
}
