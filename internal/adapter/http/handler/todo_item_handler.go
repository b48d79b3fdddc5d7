package handler

import (
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	. "todoitems/internal/adapter/http/helper"
	"todoitems/internal/core/domain"
	"todoitems/internal/core/model/request"
	"todoitems/internal/core/model/response"
	"todoitems/internal/core/port"
	"todoitems/internal/core/util"
	"todoitems/pkg/logger"
)

type TodoItemHandler struct {
	svc       port.TodoItemService
	validator port.Validator
	logger    *logger.Logger
}

func NewTodoItemHandler(svc port.TodoItemService, validator port.Validator, log *logger.Logger) *TodoItemHandler {
	if log == nil {
		log = logger.NewNop()
	}

	return &TodoItemHandler{
		svc:       svc,
		validator: validator,
		logger:    log,
	}
}

func (h *TodoItemHandler) fail(c *gin.Context, operation string, field string, err error) {
	if unexpected := SendDomainError(c, field, err); unexpected {
		h.logger.Ctx(c.Request.Context()).Error("todo item request failed",
			zap.String("operation", operation),
			zap.Error(err),
			logger.RequestID(c.Request.Context()),
		)
	}
}

// List returns every todo item without its id.
func (h *TodoItemHandler) List(c *gin.Context) {
	items, err := h.svc.List(c.Request.Context())

	if err != nil {
		h.fail(c, "List", "resource", err)
		return
	}

	SendSuccess(c, http.StatusOK, response.NewTodoItemSummaries(items))
}

func (h *TodoItemHandler) Get(c *gin.Context) {
	id, err := util.IDParam(c, "id")

	if err != nil {
		h.fail(c, "Get", "id", err)
		return
	}

	item, err := h.svc.GetByID(c.Request.Context(), id)

	if err != nil {
		h.fail(c, "Get", "id", err)
		return
	}

	SendSuccess(c, http.StatusOK, response.NewTodoItemResponse(item))
}

func (h *TodoItemHandler) Create(c *gin.Context) {
	params, err := util.ParamsToMap[request.TodoItemRequest](c)

	if err != nil {
		SendBadRequestError(c, "request", "Invalid request parameters")
		return
	}

	if err := h.validator.ValidateStruct(params); err != nil {
		SendValidationError(c, h.validator, err)
		return
	}

	item, err := h.svc.Create(c.Request.Context(), domain.TodoItem{
		Title:       params.Title,
		IsCompleted: params.IsCompleted,
	})

	if err != nil {
		h.fail(c, "Create", "title", err)
		return
	}

	c.Header("Location", fmt.Sprintf("/todoitems/%d", item.ID))
	SendSuccess(c, http.StatusCreated, response.NewTodoItemResponse(item))
}

// Update applies isCompleted only. The title in the body is not validated
// and never changes the stored item.
func (h *TodoItemHandler) Update(c *gin.Context) {
	id, err := util.IDParam(c, "id")

	if err != nil {
		h.fail(c, "Update", "id", err)
		return
	}

	params, err := util.ParamsToMap[request.TodoItemRequest](c)

	if err != nil {
		SendBadRequestError(c, "request", "Invalid request parameters")
		return
	}

	if err := h.svc.UpdateCompletion(c.Request.Context(), id, params.IsCompleted); err != nil {
		h.fail(c, "Update", "id", err)
		return
	}

	SendNoContent(c)
}

func (h *TodoItemHandler) Delete(c *gin.Context) {
	id, err := util.IDParam(c, "id")

	if err != nil {
		h.fail(c, "Delete", "id", err)
		return
	}

	if err := h.svc.Delete(c.Request.Context(), id); err != nil {
		h.fail(c, "Delete", "id", err)
		return
	}

	SendNoContent(c)
}

func (h *TodoItemHandler) History(c *gin.Context) {
	history, err := h.svc.History(c.Request.Context())

	if err != nil {
		h.fail(c, "History", "resource", err)
		return
	}

	SendSuccess(c, http.StatusOK, response.NewTodoItemAudits(history))
}
