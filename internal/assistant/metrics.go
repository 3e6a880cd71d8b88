package assistant

import (
	"context"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

const meterName = "github.com/waypoint-labs/waypoint/internal/assistant"

// Metrics holds the OpenTelemetry instruments for the assistant.
type Metrics struct {
	toolExecutions metric.Int64Counter
	turnIterations metric.Int64Histogram
	turnsExhausted metric.Int64Counter
}

// NewMetrics creates the assistant metrics instruments.
func NewMetrics() (*Metrics, error) {
	meter := otel.Meter(meterName)

	toolExecutions, err := meter.Int64Counter(
		"assistant.tool.executions",
		metric.WithDescription("Total number of tool executions"),
		metric.WithUnit("{execution}"),
	)
	if err != nil {
		return nil, err
	}

	turnIterations, err := meter.Int64Histogram(
		"assistant.turn.iterations",
		metric.WithDescription("Model invocations consumed per conversation turn"),
		metric.WithUnit("{iteration}"),
	)
	if err != nil {
		return nil, err
	}

	turnsExhausted, err := meter.Int64Counter(
		"assistant.turn.exhausted",
		metric.WithDescription("Conversation turns that hit the iteration budget"),
		metric.WithUnit("{turn}"),
	)
	if err != nil {
		return nil, err
	}

	return &Metrics{
		toolExecutions: toolExecutions,
		turnIterations: turnIterations,
		turnsExhausted: turnsExhausted,
	}, nil
}

// RecordToolExecution records one tool execution.
func (m *Metrics) RecordToolExecution(ctx context.Context, tool string, isError bool) {
	attrs := []attribute.KeyValue{
		attribute.String("tool.name", tool),
	}
	if isError {
		attrs = append(attrs, attribute.Bool("error", true))
	}
	m.toolExecutions.Add(ctx, 1, metric.WithAttributes(attrs...))
}

// RecordTurn records the iteration count of a finished conversation turn.
func (m *Metrics) RecordTurn(ctx context.Context, iterations int, exhausted bool) {
	m.turnIterations.Record(ctx, int64(iterations))
	if exhausted {
		m.turnsExhausted.Add(ctx, 1)
	}
}
