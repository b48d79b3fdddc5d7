package handler

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	. "github.com/onsi/gomega"
	"github.com/stretchr/testify/suite"

	"todoitems/internal/adapter/database/sqlite"
	"todoitems/internal/adapter/database/sqlite/repository"
	"todoitems/internal/adapter/http/validation"
	"todoitems/internal/core/domain"
	"todoitems/internal/core/model/response"
	"todoitems/internal/core/port"
	"todoitems/internal/core/service"
	"todoitems/internal/core/telemetry"
	. "todoitems/pkg/test"
)

var t0 = time.Date(2024, time.March, 1, 10, 0, 0, 0, time.UTC)

type TodoItemHandlerSuite struct {
	suite.Suite
	DB     *sqlite.DB
	Repo   port.TodoItemRepository
	Router *gin.Engine
}

func (s *TodoItemHandlerSuite) SetupTest() {
	probe := telemetry.NewNoOpProbe()

	s.DB = InitTestDB()
	s.Repo = repository.NewTodoItemRepository(s.DB, probe)

	svc := service.NewTodoItemService(s.Repo, NewClock(t0, time.Minute), probe)
	health := service.NewHealthService(time.Second, map[string]port.HealthCheck{
		"database": port.HealthCheckFunc(s.DB.Ping),
	}, probe)

	s.Router = setupTestRouter(
		NewTodoItemHandler(svc, validation.New(), nil),
		NewHealthHandler(health),
	)
}

func (s *TodoItemHandlerSuite) TearDownTest() {
	s.DB.Close()
}

func TestTodoItemHandlerSuite(t *testing.T) {
	RegisterTestingT(t)
	suite.Run(t, new(TodoItemHandlerSuite))
}

func setupTestRouter(todoItems *TodoItemHandler, health *HealthHandler) *gin.Engine {
	gin.SetMode(gin.TestMode)
	router := gin.New()

	router.Use(gin.Recovery())

	router.GET("/health", health.Check)

	group := router.Group("/todoitems")
	{
		group.GET("", todoItems.List)
		group.GET("/history", todoItems.History)
		group.GET("/:id", todoItems.Get)
		group.POST("", todoItems.Create)
		group.PUT("/:id", todoItems.Update)
		group.DELETE("/:id", todoItems.Delete)
	}

	return router
}

func (s *TodoItemHandlerSuite) do(method string, path string, body string) *httptest.ResponseRecorder {
	rr := httptest.NewRecorder()

	var req *http.Request
	if body == "" {
		req, _ = http.NewRequest(method, path, nil)
	} else {
		req, _ = http.NewRequest(method, path, strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
	}

	s.Router.ServeHTTP(rr, req)

	return rr
}

func decode[T any](rr *httptest.ResponseRecorder) T {
	var data T
	Expect(json.Unmarshal(rr.Body.Bytes(), &data)).To(Succeed())

	return data
}

func (s *TodoItemHandlerSuite) TestBuyMilkScenario() {
	rr := s.do("POST", "/todoitems", `{"title":"buy milk"}`)

	Expect(rr.Code).To(Equal(http.StatusCreated))
	created := decode[response.TodoItemResponse](rr)
	Expect(created.ID).To(BeNumerically(">", 0))
	Expect(created.Title).To(Equal("buy milk"))
	Expect(created.IsCompleted).To(BeFalse())
	Expect(created.CreatedOn).To(Equal(t0))
	Expect(rr.Header().Get("Location")).To(Equal("/todoitems/1"))

	rr = s.do("PUT", "/todoitems/1", `{"title":"ignored","isCompleted":true}`)
	Expect(rr.Code).To(Equal(http.StatusNoContent))
	Expect(rr.Body.Len()).To(Equal(0))

	rr = s.do("GET", "/todoitems", "")
	Expect(rr.Code).To(Equal(http.StatusOK))
	Expect(rr.Body.String()).NotTo(ContainSubstring(`"id"`))

	items := decode[[]response.TodoItemSummary](rr)
	Expect(items).To(HaveLen(1))
	Expect(items[0].Title).To(Equal("buy milk"))
	Expect(items[0].IsCompleted).To(BeTrue())

	rr = s.do("DELETE", "/todoitems/1", "")
	Expect(rr.Code).To(Equal(http.StatusNoContent))

	rr = s.do("GET", "/todoitems/1", "")
	Expect(rr.Code).To(Equal(http.StatusNotFound))

	rr = s.do("GET", "/todoitems/history", "")
	Expect(rr.Code).To(Equal(http.StatusOK))

	history := decode[[]response.TodoItemAudit](rr)
	Expect(history).To(HaveLen(2))

	Expect(history[0].Title).To(Equal("buy milk"))
	Expect(history[0].IsCompleted).To(BeFalse())
	Expect(history[0].PeriodStart).To(Equal(t0))
	Expect(history[0].PeriodEnd).To(Equal(t0.Add(time.Minute)))

	Expect(history[1].IsCompleted).To(BeTrue())
	Expect(history[1].PeriodStart).To(Equal(history[0].PeriodEnd))
	Expect(history[1].PeriodEnd).To(Equal(t0.Add(2 * time.Minute)))
}

func (s *TodoItemHandlerSuite) TestList_EmptyIsArray() {
	rr := s.do("GET", "/todoitems", "")

	Expect(rr.Code).To(Equal(http.StatusOK))
	Expect(rr.Header().Get("Content-Type")).To(ContainSubstring("application/json"))
	Expect(strings.TrimSpace(rr.Body.String())).To(Equal("[]"))
}

func (s *TodoItemHandlerSuite) TestHistory_EmptyIsArray() {
	rr := s.do("GET", "/todoitems/history", "")

	Expect(rr.Code).To(Equal(http.StatusOK))
	Expect(strings.TrimSpace(rr.Body.String())).To(Equal("[]"))
}

func (s *TodoItemHandlerSuite) TestGet_Success() {
	s.do("POST", "/todoitems", `{"title":"walk dog","isCompleted":true}`)

	rr := s.do("GET", "/todoitems/1", "")

	Expect(rr.Code).To(Equal(http.StatusOK))

	item := decode[response.TodoItemResponse](rr)
	Expect(item.ID).To(Equal(int64(1)))
	Expect(item.Title).To(Equal("walk dog"))
	Expect(item.IsCompleted).To(BeTrue())
}

func (s *TodoItemHandlerSuite) TestGet_NotFound() {
	rr := s.do("GET", "/todoitems/42", "")

	Expect(rr.Code).To(Equal(http.StatusNotFound))
	Expect(decode[response.ErrorResponse](rr).Error.Code).To(Equal("NOT_FOUND"))
}

func (s *TodoItemHandlerSuite) TestGet_NonIntegerID() {
	rr := s.do("GET", "/todoitems/abc", "")

	Expect(rr.Code).To(Equal(http.StatusBadRequest))

	body := decode[response.ErrorResponse](rr)
	Expect(body.Error.Code).To(Equal("BAD_REQUEST"))
	Expect(body.Error.Errors[0].Field).To(Equal("id"))
}

func (s *TodoItemHandlerSuite) TestCreate_MissingTitle() {
	rr := s.do("POST", "/todoitems", `{"isCompleted":true}`)

	Expect(rr.Code).To(Equal(http.StatusBadRequest))

	body := decode[response.ErrorResponse](rr)
	Expect(body.Error.Code).To(Equal("VALIDATION_ERROR"))
	Expect(body.Error.Errors).To(ContainElement(response.ValidationError{Field: "title", Message: "Title is required"}))

	items, _ := s.Repo.List(s.T().Context())
	history, _ := s.Repo.History(s.T().Context())
	Expect(items).To(BeEmpty())
	Expect(history).To(BeEmpty())
}

func (s *TodoItemHandlerSuite) TestCreate_MalformedBody() {
	rr := s.do("POST", "/todoitems", `{"title":`)

	Expect(rr.Code).To(Equal(http.StatusBadRequest))
	Expect(decode[response.ErrorResponse](rr).Error.Code).To(Equal("BAD_REQUEST"))
}

func (s *TodoItemHandlerSuite) TestCreate_IgnoresClientIdentity() {
	rr := s.do("POST", "/todoitems", `{"id":99,"title":"buy milk","createdOn":"2000-01-01T00:00:00Z"}`)

	Expect(rr.Code).To(Equal(http.StatusCreated))

	item := decode[response.TodoItemResponse](rr)
	Expect(item.ID).To(Equal(int64(1)))
	Expect(item.CreatedOn).To(Equal(t0))
}

func (s *TodoItemHandlerSuite) TestUpdate_KeepsTitle() {
	s.do("POST", "/todoitems", `{"title":"buy milk"}`)

	rr := s.do("PUT", "/todoitems/1", `{"title":"","isCompleted":true}`)
	Expect(rr.Code).To(Equal(http.StatusNoContent))

	item := decode[response.TodoItemResponse](s.do("GET", "/todoitems/1", ""))
	Expect(item.Title).To(Equal("buy milk"))
	Expect(item.IsCompleted).To(BeTrue())
}

func (s *TodoItemHandlerSuite) TestUpdate_NotFound() {
	rr := s.do("PUT", "/todoitems/42", `{"isCompleted":true}`)

	Expect(rr.Code).To(Equal(http.StatusNotFound))

	history, _ := s.Repo.History(s.T().Context())
	Expect(history).To(BeEmpty())
}

func (s *TodoItemHandlerSuite) TestUpdate_MalformedBody() {
	s.do("POST", "/todoitems", `{"title":"buy milk"}`)

	rr := s.do("PUT", "/todoitems/1", `not json`)

	Expect(rr.Code).To(Equal(http.StatusBadRequest))
}

func (s *TodoItemHandlerSuite) TestDelete_NotFound() {
	rr := s.do("DELETE", "/todoitems/42", "")

	Expect(rr.Code).To(Equal(http.StatusNotFound))
}

func (s *TodoItemHandlerSuite) TestDelete_IDNotReused() {
	s.do("POST", "/todoitems", `{"title":"first"}`)
	s.do("DELETE", "/todoitems/1", "")

	rr := s.do("POST", "/todoitems", `{"title":"second"}`)

	Expect(decode[response.TodoItemResponse](rr).ID).To(Equal(int64(2)))
	Expect(s.do("GET", "/todoitems/1", "").Code).To(Equal(http.StatusNotFound))
}

func (s *TodoItemHandlerSuite) TestStoreUnavailable_InternalError() {
	s.DB.Close()

	rr := s.do("GET", "/todoitems", "")

	Expect(rr.Code).To(Equal(http.StatusInternalServerError))
	Expect(decode[response.ErrorResponse](rr).Error.Code).To(Equal("INTERNAL_ERROR"))
}

func (s *TodoItemHandlerSuite) TestHealth_Healthy() {
	rr := s.do("GET", "/health", "")

	Expect(rr.Code).To(Equal(http.StatusOK))

	report := decode[response.HealthResponse](rr)
	Expect(report.Status).To(Equal(string(domain.HealthStatusHealthy)))
	Expect(report.Entries).To(HaveKey("database"))
	Expect(report.Entries["database"].Error).To(BeEmpty())
}

func (s *TodoItemHandlerSuite) TestHealth_Unhealthy() {
	s.DB.Close()

	rr := s.do("GET", "/health", "")

	Expect(rr.Code).To(Equal(http.StatusServiceUnavailable))

	report := decode[response.HealthResponse](rr)
	Expect(report.Status).To(Equal(string(domain.HealthStatusUnhealthy)))
	Expect(report.Entries["database"].Status).To(Equal(string(domain.HealthStatusUnhealthy)))
	Expect(report.Entries["database"].Error).NotTo(BeEmpty())
}
