package request

// TodoItemRequest is the body accepted by create and update.
// Identity and timestamps are always assigned by the server.
type TodoItemRequest struct {
	Title       string `json:"title" validate:"required"`
	IsCompleted bool   `json:"isCompleted"`
}
