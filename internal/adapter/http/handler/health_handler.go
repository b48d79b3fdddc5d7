package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	. "todoitems/internal/adapter/http/helper"
	"todoitems/internal/core/model/response"
	"todoitems/internal/core/port"
)

type HealthHandler struct {
	svc port.HealthService
}

func NewHealthHandler(svc port.HealthService) *HealthHandler {
	return &HealthHandler{svc: svc}
}

// Check answers 200 when every check is healthy and 503 otherwise. The
// report is returned in both cases.
func (h *HealthHandler) Check(c *gin.Context) {
	report := h.svc.Check(c.Request.Context())

	status := http.StatusOK
	if !report.IsHealthy() {
		status = http.StatusServiceUnavailable
	}

	SendSuccess(c, status, response.NewHealthResponse(report))
}
