package repository_test

import (
	"context"
	"sync"
	"testing"
	"time"

	. "github.com/onsi/gomega"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/suite"

	"todoitems/internal/adapter/database/sqlite"
	"todoitems/internal/adapter/database/sqlite/repository"
	"todoitems/internal/core/domain"
	"todoitems/internal/core/port"
	. "todoitems/pkg/test"
	"todoitems/pkg/test/factory"
)

var t0 = time.Date(2024, time.March, 1, 10, 0, 0, 0, time.UTC)

type TodoItemRepositoryTestSuite struct {
	suite.Suite
	DB   *sqlite.DB
	Repo port.TodoItemRepository
}

func (s *TodoItemRepositoryTestSuite) SetupTest() {
	s.DB = InitTestDB()
	s.Repo = repository.NewTodoItemRepository(s.DB, nil)
}

func (s *TodoItemRepositoryTestSuite) TearDownTest() {
	s.DB.Close()
}

func TestTodoItemRepositoryTestSuite(t *testing.T) {
	RegisterTestingT(t)
	suite.Run(t, new(TodoItemRepositoryTestSuite))
}

func (s *TodoItemRepositoryTestSuite) create(title string, at time.Time) domain.TodoItem {
	item, err := s.Repo.Create(context.Background(), factory.NewTodoItem(map[string]any{
		"Title":       title,
		"IsCompleted": false,
		"CreatedOn":   at,
	}))

	s.Require().NoError(err)

	return item
}

func (s *TodoItemRepositoryTestSuite) TestList_Empty() {
	items, err := s.Repo.List(context.Background())

	Expect(err).To(BeNil())
	Expect(items).NotTo(BeNil())
	Expect(items).To(BeEmpty())
}

func (s *TodoItemRepositoryTestSuite) TestCreate_AssignsIncreasingIDs() {
	first := s.create("buy milk", t0)
	second := s.create("walk dog", t0.Add(time.Second))

	Expect(first.ID).To(BeNumerically(">", 0))
	Expect(second.ID).To(BeNumerically(">", first.ID))
	Expect(first.CreatedOn).To(Equal(t0))
}

func (s *TodoItemRepositoryTestSuite) TestCreate_RejectsEmptyTitle() {
	_, err := s.Repo.Create(context.Background(), domain.TodoItem{Title: "", CreatedOn: t0})

	Expect(err).NotTo(BeNil())

	items, _ := s.Repo.List(context.Background())
	history, _ := s.Repo.History(context.Background())

	Expect(items).To(BeEmpty())
	Expect(history).To(BeEmpty())
}

func (s *TodoItemRepositoryTestSuite) TestGetByID_Success() {
	created := s.create("buy milk", t0)

	item, err := s.Repo.GetByID(context.Background(), created.ID)

	Expect(err).To(BeNil())
	Expect(item).To(Equal(created))
}

func (s *TodoItemRepositoryTestSuite) TestGetByID_NotFound() {
	_, err := s.Repo.GetByID(context.Background(), 999)

	Expect(domain.IsDomainError(err, domain.ErrCodeNotFound)).To(BeTrue())
}

func (s *TodoItemRepositoryTestSuite) TestCreate_OpensHistoryInterval() {
	created := s.create("buy milk", t0)

	history, err := s.Repo.History(context.Background())

	Expect(err).To(BeNil())
	Expect(history).To(HaveLen(1))
	Expect(history[0].TodoItemID).To(Equal(created.ID))
	Expect(history[0].PeriodStart).To(Equal(t0))
	Expect(history[0].IsOpen()).To(BeTrue())
}

func (s *TodoItemRepositoryTestSuite) TestUpdateCompletion_ClosesAndOpensInterval() {
	created := s.create("buy milk", t0)
	t1 := t0.Add(time.Minute)

	err := s.Repo.UpdateCompletion(context.Background(), created.ID, true, t1)
	Expect(err).To(BeNil())

	item, _ := s.Repo.GetByID(context.Background(), created.ID)
	Expect(item.IsCompleted).To(BeTrue())
	Expect(item.Title).To(Equal("buy milk"))
	Expect(item.CreatedOn).To(Equal(t0))

	history, _ := s.Repo.History(context.Background())
	Expect(history).To(HaveLen(2))

	Expect(history[0].IsCompleted).To(BeFalse())
	Expect(history[0].PeriodStart).To(Equal(t0))
	Expect(history[0].PeriodEnd).To(Equal(t1))

	Expect(history[1].IsCompleted).To(BeTrue())
	Expect(history[1].PeriodStart).To(Equal(t1))
	Expect(history[1].IsOpen()).To(BeTrue())
}

func (s *TodoItemRepositoryTestSuite) TestUpdateCompletion_ClockSkewNeverInvertsInterval() {
	created := s.create("buy milk", t0)

	err := s.Repo.UpdateCompletion(context.Background(), created.ID, true, t0.Add(-time.Hour))
	Expect(err).To(BeNil())

	history, _ := s.Repo.History(context.Background())
	Expect(history).To(HaveLen(2))
	Expect(history[0].PeriodEnd).To(Equal(t0))
	Expect(history[1].PeriodStart).To(Equal(t0))
	Expect(domain.VerifyTimeline(history)).To(Succeed())
}

func (s *TodoItemRepositoryTestSuite) TestUpdateCompletion_NotFound() {
	err := s.Repo.UpdateCompletion(context.Background(), 42, true, t0)

	Expect(domain.IsDomainError(err, domain.ErrCodeNotFound)).To(BeTrue())

	history, _ := s.Repo.History(context.Background())
	Expect(history).To(BeEmpty())
}

func (s *TodoItemRepositoryTestSuite) TestDelete_KeepsHistory() {
	created := s.create("buy milk", t0)
	t1 := t0.Add(time.Minute)
	t2 := t0.Add(2 * time.Minute)

	s.Require().NoError(s.Repo.UpdateCompletion(context.Background(), created.ID, true, t1))
	s.Require().NoError(s.Repo.Delete(context.Background(), created.ID, t2))

	_, err := s.Repo.GetByID(context.Background(), created.ID)
	Expect(domain.IsDomainError(err, domain.ErrCodeNotFound)).To(BeTrue())

	history, err := s.Repo.History(context.Background())
	Expect(err).To(BeNil())
	Expect(history).To(HaveLen(2))
	Expect(history[1].PeriodStart).To(Equal(t1))
	Expect(history[1].PeriodEnd).To(Equal(t2))
	Expect(history[1].IsOpen()).To(BeFalse())
	Expect(domain.VerifyTimeline(history)).To(Succeed())
}

func (s *TodoItemRepositoryTestSuite) TestDelete_NotFound() {
	err := s.Repo.Delete(context.Background(), 42, t0)

	Expect(domain.IsDomainError(err, domain.ErrCodeNotFound)).To(BeTrue())
}

func (s *TodoItemRepositoryTestSuite) TestDelete_TwiceYieldsNotFound() {
	created := s.create("buy milk", t0)

	s.Require().NoError(s.Repo.Delete(context.Background(), created.ID, t0.Add(time.Second)))

	err := s.Repo.Delete(context.Background(), created.ID, t0.Add(2*time.Second))
	Expect(domain.IsDomainError(err, domain.ErrCodeNotFound)).To(BeTrue())
}

func (s *TodoItemRepositoryTestSuite) TestCreate_IDNotReusedAfterDelete() {
	first := s.create("buy milk", t0)
	s.Require().NoError(s.Repo.Delete(context.Background(), first.ID, t0.Add(time.Second)))

	second := s.create("walk dog", t0.Add(2*time.Second))

	Expect(second.ID).To(BeNumerically(">", first.ID))
}

func (s *TodoItemRepositoryTestSuite) TestHistory_OrderedByPeriodStart() {
	a := s.create("a", t0)
	b := s.create("b", t0.Add(time.Second))

	s.Require().NoError(s.Repo.UpdateCompletion(context.Background(), a.ID, true, t0.Add(2*time.Second)))
	s.Require().NoError(s.Repo.UpdateCompletion(context.Background(), b.ID, true, t0.Add(3*time.Second)))
	s.Require().NoError(s.Repo.UpdateCompletion(context.Background(), a.ID, false, t0.Add(4*time.Second)))

	history, err := s.Repo.History(context.Background())
	Expect(err).To(BeNil())
	Expect(history).To(HaveLen(5))

	for i := 1; i < len(history); i++ {
		Expect(history[i].PeriodStart.Before(history[i-1].PeriodStart)).To(BeFalse())
	}

	Expect(domain.VerifyTimeline(history)).To(Succeed())
}

func (s *TodoItemRepositoryTestSuite) TestHistory_SubSecondPrecisionPreserved() {
	at := t0.Add(1500 * time.Microsecond)
	created := s.create("precise", at)

	item, _ := s.Repo.GetByID(context.Background(), created.ID)
	history, _ := s.Repo.History(context.Background())

	Expect(item.CreatedOn).To(Equal(at))
	Expect(history[0].PeriodStart).To(Equal(at))
}

func (s *TodoItemRepositoryTestSuite) TestConcurrentUpdates_LastWriterWins() {
	created := s.create("buy milk", t0)

	var wg sync.WaitGroup

	for i := 1; i <= 10; i++ {
		wg.Add(1)

		go func(i int) {
			defer wg.Done()
			err := s.Repo.UpdateCompletion(context.Background(), created.ID, i%2 == 0, t0.Add(time.Duration(i)*time.Second))
			assert.NoError(s.T(), err)
		}(i)
	}

	wg.Wait()

	history, err := s.Repo.History(context.Background())
	Expect(err).To(BeNil())
	Expect(history).To(HaveLen(11))

	open := 0
	for _, h := range history {
		if h.IsOpen() {
			open++
		}
	}

	Expect(open).To(Equal(1))
	Expect(domain.VerifyTimeline(history)).To(Succeed())
}

func (s *TodoItemRepositoryTestSuite) TestSession_RollsBackOnCancelledContext() {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := s.Repo.Create(ctx, factory.NewTodoItem(map[string]any{"Title": "never", "CreatedOn": t0}))
	Expect(err).NotTo(BeNil())

	items, _ := s.Repo.List(context.Background())
	Expect(items).To(BeEmpty())
}
