package http

import (
	"todoitems/internal/adapter/http/handler"
	"todoitems/internal/adapter/http/validation"
	"todoitems/internal/core/port"
	"todoitems/internal/core/service"
	"todoitems/internal/core/util"
	"todoitems/pkg/config"
	"todoitems/pkg/logger"
)

type Container struct {
	TodoItemRepo port.TodoItemRepository

	TodoItemService port.TodoItemService
	HealthService   port.HealthService

	TodoItemHandler *handler.TodoItemHandler
	HealthHandler   *handler.HealthHandler
}

func NewContainer(repo port.TodoItemRepository, checks map[string]port.HealthCheck, cfg *config.AppConfig, log *logger.Logger, telemetry port.Telemetry) *Container {
	todoItemSvc := service.NewTodoItemService(repo, util.SystemClock, telemetry)
	healthSvc := service.NewHealthService(cfg.HealthCheckTimeout, checks, telemetry)

	return &Container{
		TodoItemRepo: repo,

		TodoItemService: todoItemSvc,
		HealthService:   healthSvc,

		TodoItemHandler: handler.NewTodoItemHandler(todoItemSvc, validation.New(), log),
		HealthHandler:   handler.NewHealthHandler(healthSvc),
	}
}
