package port

import (
	"context"

	"todoitems/internal/core/domain"
)

type HealthCheck interface {
	Check(ctx context.Context) error
}

// HealthCheckFunc adapts a plain function, such as a database ping.
type HealthCheckFunc func(ctx context.Context) error

func (f HealthCheckFunc) Check(ctx context.Context) error {
	return f(ctx)
}

type HealthService interface {
	Check(ctx context.Context) domain.HealthReport
}
