package routes

import (
	"github.com/gin-gonic/gin"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"

	"todoitems/internal/adapter/http/handler"
	"todoitems/internal/adapter/http/middleware"
	"todoitems/internal/core/telemetry"
	"todoitems/pkg/auth"
	"todoitems/pkg/logger"
)

type HandlersConfig struct {
	TodoItemHandler *handler.TodoItemHandler
	HealthHandler   *handler.HealthHandler
}

type RouterConfig struct {
	ServiceName  string
	Logger       *logger.Logger
	Metrics      *telemetry.AppMetrics
	EnforceHTTPS bool
	// JWT enables bearer token authentication when set.
	JWT *auth.JWT
}

func SetupRouter(handlers HandlersConfig, config RouterConfig) *gin.Engine {
	if config.Logger == nil {
		config.Logger = logger.NewNop()
	}

	router := gin.New()

	router.Use(gin.Recovery())
	router.Use(middleware.NewHTTPSEnforcer(config.EnforceHTTPS, config.Logger).Middleware())
	router.Use(otelgin.Middleware(config.ServiceName))
	router.Use(middleware.CORSMiddleware())
	router.Use(middleware.CurrentMiddleware())
	router.Use(middleware.LoggingMiddleware(config.Logger))

	if config.Metrics != nil {
		router.Use(middleware.MetricsMiddleware(config.Metrics))
	}

	protected := router.Group("/")

	if config.JWT != nil {
		protected.Use(middleware.JWTMiddleware(config.JWT))
	}

	if handlers.HealthHandler != nil {
		protected.GET("/health", handlers.HealthHandler.Check)
	}

	if handlers.TodoItemHandler != nil {
		setupTodoItemRoutes(protected, handlers.TodoItemHandler)
	}

	return router
}

func setupTodoItemRoutes(group *gin.RouterGroup, h *handler.TodoItemHandler) {
	todoItems := group.Group("/todoitems")
	{
		todoItems.GET("", h.List)
		todoItems.GET("/history", h.History)
		todoItems.GET("/:id", h.Get)
		todoItems.POST("", h.Create)
		todoItems.PUT("/:id", h.Update)
		todoItems.DELETE("/:id", h.Delete)
	}
}
