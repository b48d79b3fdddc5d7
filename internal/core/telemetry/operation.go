package telemetry

import (
	"context"
	"time"

	"todoitems/internal/core/domain"
	"todoitems/internal/core/port"
)

// Operation measures one repository call and reports it to the probe
// when End is called.
type Operation struct {
	probe     port.Telemetry
	ctx       context.Context
	span      port.Span
	startTime time.Time
	operation string
	entity    string
}

func StartOperation(probe port.Telemetry, ctx context.Context, operation, entity string, attrs map[string]interface{}) (context.Context, *Operation) {
	if probe == nil {
		probe = NewNoOpProbe()
	}

	ctx, span := probe.StartRepositorySpan(ctx, operation, entity, attrs)

	return ctx, &Operation{
		probe:     probe,
		ctx:       ctx,
		span:      span,
		startTime: time.Now(),
		operation: operation,
		entity:    entity,
	}
}

func (op *Operation) Span() port.Span {
	return op.span
}

func (op *Operation) Query(query string, args []interface{}) {
	op.probe.RecordRepositoryQuery(op.ctx, op.operation, op.entity, query, args)
}

func (op *Operation) End(err error) {
	duration := time.Since(op.startTime)

	op.span.SetAttributes(map[string]interface{}{
		"operation.duration_ns": duration.Nanoseconds(),
	})

	// a missing row is an expected outcome, not a fault
	if domain.IsDomainError(err, domain.ErrCodeNotFound) {
		op.span.SetAttributes(map[string]interface{}{"db.result": "not_found"})
		err = nil
	}

	if err != nil {
		op.span.SetStatus("error", err.Error())
		op.span.RecordError(err)
	} else {
		op.span.SetStatus("ok", "")
	}

	op.probe.RecordRepositoryOperation(op.ctx, op.operation, op.entity, duration, err)
	op.span.End()
}
