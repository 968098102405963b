package observability

import (
	"context"
	"fmt"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

// Metrics holds all application metrics.
type Metrics struct {
	meter metric.Meter

	// HTTP metrics
	HTTPRequestsTotal   metric.Int64Counter
	HTTPRequestDuration metric.Float64Histogram
	HTTPRequestsActive  metric.Int64UpDownCounter

	// Slash command metrics
	CommandsTotal   metric.Int64Counter
	CommandDuration metric.Float64Histogram

	// Delivery metrics
	DeliveriesTotal      metric.Int64Counter
	DeliveryDuration     metric.Float64Histogram
	DeliveryRetriesTotal metric.Int64Counter
	BreakerTransitions   metric.Int64Counter

	// Repository metrics
	RepositoryOperationsTotal   metric.Int64Counter
	RepositoryOperationDuration metric.Float64Histogram
}

// NewMetrics creates and registers all application metrics.
func NewMetrics(meter metric.Meter) (*Metrics, error) {
	m := &Metrics{meter: meter}

	var err error

	// HTTP metrics
	m.HTTPRequestsTotal, err = meter.Int64Counter(
		"http.server.requests.total",
		metric.WithDescription("Total number of HTTP requests"),
		metric.WithUnit("{requests}"),
	)
	if err != nil {
		return nil, fmt.Errorf("creating http_requests_total: %w", err)
	}

	m.HTTPRequestDuration, err = meter.Float64Histogram(
		"http.server.request.duration",
		metric.WithDescription("HTTP request duration in seconds"),
		metric.WithUnit("s"),
	)
	if err != nil {
		return nil, fmt.Errorf("creating http_request_duration: %w", err)
	}

	m.HTTPRequestsActive, err = meter.Int64UpDownCounter(
		"http.server.requests.active",
		metric.WithDescription("Number of active HTTP requests"),
		metric.WithUnit("{requests}"),
	)
	if err != nil {
		return nil, fmt.Errorf("creating http_requests_active: %w", err)
	}

	// Slash command metrics
	m.CommandsTotal, err = meter.Int64Counter(
		"slash_commands.handled.total",
		metric.WithDescription("Total number of slash commands handled, by outcome"),
		metric.WithUnit("{commands}"),
	)
	if err != nil {
		return nil, fmt.Errorf("creating slash_commands_handled_total: %w", err)
	}

	m.CommandDuration, err = meter.Float64Histogram(
		"slash_commands.duration",
		metric.WithDescription("Slash command handling duration in seconds"),
		metric.WithUnit("s"),
	)
	if err != nil {
		return nil, fmt.Errorf("creating slash_commands_duration: %w", err)
	}

	// Delivery metrics
	m.DeliveriesTotal, err = meter.Int64Counter(
		"deliveries.total",
		metric.WithDescription("Total number of messages posted to Slack as the invoking user"),
		metric.WithUnit("{messages}"),
	)
	if err != nil {
		return nil, fmt.Errorf("creating deliveries_total: %w", err)
	}

	m.DeliveryDuration, err = meter.Float64Histogram(
		"deliveries.duration",
		metric.WithDescription("Delivery duration in seconds, retries included"),
		metric.WithUnit("s"),
	)
	if err != nil {
		return nil, fmt.Errorf("creating deliveries_duration: %w", err)
	}

	m.DeliveryRetriesTotal, err = meter.Int64Counter(
		"deliveries.retries.total",
		metric.WithDescription("Total number of delivery retries"),
		metric.WithUnit("{retries}"),
	)
	if err != nil {
		return nil, fmt.Errorf("creating deliveries_retries_total: %w", err)
	}

	m.BreakerTransitions, err = meter.Int64Counter(
		"circuit_breaker.transitions.total",
		metric.WithDescription("Total number of circuit breaker state changes"),
		metric.WithUnit("{transitions}"),
	)
	if err != nil {
		return nil, fmt.Errorf("creating circuit_breaker_transitions_total: %w", err)
	}

	// Repository metrics
	m.RepositoryOperationsTotal, err = meter.Int64Counter(
		"repository.operations.total",
		metric.WithDescription("Total number of repository operations"),
		metric.WithUnit("{operations}"),
	)
	if err != nil {
		return nil, fmt.Errorf("creating repository_operations_total: %w", err)
	}

	m.RepositoryOperationDuration, err = meter.Float64Histogram(
		"repository.operation.duration",
		metric.WithDescription("Repository operation duration in seconds"),
		metric.WithUnit("s"),
	)
	if err != nil {
		return nil, fmt.Errorf("creating repository_operation_duration: %w", err)
	}

	return m, nil
}

// RecordHTTPRequest records HTTP request metrics.
func (m *Metrics) RecordHTTPRequest(ctx context.Context, method, path string, statusCode int, duration time.Duration) {
	attrs := []attribute.KeyValue{
		attribute.String("http.method", method),
		attribute.String("http.route", path),
		attribute.Int("http.status_code", statusCode),
	}

	m.HTTPRequestsTotal.Add(ctx, 1, metric.WithAttributes(attrs...))
	m.HTTPRequestDuration.Record(ctx, duration.Seconds(), metric.WithAttributes(attrs...))
}

// RecordCommand records one handled slash command.
func (m *Metrics) RecordCommand(ctx context.Context, command, outcome string, duration time.Duration) {
	attrs := []attribute.KeyValue{
		attribute.String("command", command),
		attribute.String("outcome", outcome),
	}

	m.CommandsTotal.Add(ctx, 1, metric.WithAttributes(attrs...))
	m.CommandDuration.Record(ctx, duration.Seconds(), metric.WithAttributes(attrs...))
}

// RecordDelivery records one delivery, retries included.
func (m *Metrics) RecordDelivery(ctx context.Context, channel string, success bool, duration time.Duration, retries int) {
	attrs := []attribute.KeyValue{
		attribute.String("channel", channel),
		attribute.Bool("success", success),
	}

	m.DeliveriesTotal.Add(ctx, 1, metric.WithAttributes(attrs...))
	m.DeliveryDuration.Record(ctx, duration.Seconds(), metric.WithAttributes(attrs...))

	if retries > 0 {
		m.DeliveryRetriesTotal.Add(ctx, int64(retries), metric.WithAttributes(attrs...))
	}
}

// RecordBreakerTransition records a circuit breaker state change.
func (m *Metrics) RecordBreakerTransition(ctx context.Context, breaker, from, to string) {
	m.BreakerTransitions.Add(ctx, 1, metric.WithAttributes(
		attribute.String("breaker", breaker),
		attribute.String("from", from),
		attribute.String("to", to),
	))
}

// RecordRepositoryOperation records repository operation metrics.
func (m *Metrics) RecordRepositoryOperation(ctx context.Context, operation, entity string, duration time.Duration, success bool) {
	attrs := []attribute.KeyValue{
		attribute.String("operation", operation),
		attribute.String("entity", entity),
		attribute.Bool("success", success),
	}

	m.RepositoryOperationsTotal.Add(ctx, 1, metric.WithAttributes(attrs...))
	m.RepositoryOperationDuration.Record(ctx, duration.Seconds(), metric.WithAttributes(attrs...))
}
