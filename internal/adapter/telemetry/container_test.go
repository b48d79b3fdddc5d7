package telemetry

import (
	"context"
	"testing"

	. "github.com/onsi/gomega"

	"todoitems/pkg/logger"
)

func TestNewContainer_WithoutExporters(t *testing.T) {
	RegisterTestingT(t)

	ctx := context.Background()

	container, err := NewContainer(ctx, Config{
		ServiceName:    "todoitems",
		ServiceVersion: "test",
		Environment:    "test",
	}, logger.NewNop())

	Expect(err).To(BeNil())
	Expect(container.MetricsServer).To(BeNil())
	Expect(container.AppMetrics).NotTo(BeNil())

	probe := container.NewTelemetryProbe()
	_, span := probe.StartRepositorySpan(ctx, "List", "todo_item", nil)
	span.End()

	families, err := container.PrometheusRegistry.Gather()
	Expect(err).To(BeNil())
	Expect(families).NotTo(BeEmpty())

	Expect(container.Shutdown(ctx)).To(Succeed())
}
