package service

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"todoitems/internal/core/domain"
	"todoitems/internal/core/port"
	tel "todoitems/internal/core/telemetry"
)

type HealthService struct {
	checks    map[string]port.HealthCheck
	timeout   time.Duration
	telemetry port.Telemetry
}

func NewHealthService(timeout time.Duration, checks map[string]port.HealthCheck, telemetry port.Telemetry) *HealthService {
	if telemetry == nil {
		telemetry = tel.NewNoOpProbe()
	}

	return &HealthService{
		checks:    checks,
		timeout:   timeout,
		telemetry: telemetry,
	}
}

// Check runs every registered check concurrently. A failing, slow or
// panicking check turns the report unhealthy; it is never returned as an error.
func (s *HealthService) Check(ctx context.Context) domain.HealthReport {
	start := time.Now()

	names := make([]string, 0, len(s.checks))
	for name := range s.checks {
		names = append(names, name)
	}
	sort.Strings(names)

	entries := make([]domain.HealthEntry, len(names))

	var wg sync.WaitGroup

	for i, name := range names {
		wg.Add(1)

		go func(i int, name string) {
			defer wg.Done()
			entries[i] = s.run(ctx, name, s.checks[name])
		}(i, name)
	}

	wg.Wait()

	report := domain.HealthReport{
		Status:  domain.HealthStatusHealthy,
		Entries: make(map[string]domain.HealthEntry, len(names)),
	}

	for i, name := range names {
		report.Entries[name] = entries[i]

		if entries[i].Status != domain.HealthStatusHealthy {
			report.Status = domain.HealthStatusUnhealthy
		}
	}

	report.TotalDuration = time.Since(start)

	return report
}

func (s *HealthService) run(ctx context.Context, name string, check port.HealthCheck) (entry domain.HealthEntry) {
	start := time.Now()

	if s.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.timeout)
		defer cancel()
	}

	defer func() {
		if r := recover(); r != nil {
			entry.Err = fmt.Errorf("health check %s panicked: %v", name, r)
		}

		entry.Duration = time.Since(start)
		entry.Status = domain.HealthStatusHealthy

		if entry.Err != nil {
			entry.Status = domain.HealthStatusUnhealthy
		}

		s.telemetry.RecordHealthCheck(ctx, name, entry.Err == nil, entry.Duration)
	}()

	entry.Err = check.Check(ctx)

	return entry
}
