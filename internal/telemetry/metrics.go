package telemetry

import (
	"sync"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/metric"
)

const (
	meterName = "github.com/wolfeidau/directory"
)

// Metrics holds all the OpenTelemetry metric instruments
type Metrics struct {
	// Request metrics
	RequestsTotal   metric.Int64Counter
	RequestDuration metric.Float64Histogram

	// Queue metrics
	MessagesTotal      metric.Int64Counter
	BatchFailuresTotal metric.Int64Counter
	ReceiveRetries     metric.Int64Counter

	// Directory metrics
	OrganizationsCreatedTotal metric.Int64Counter
	UsersCreatedTotal         metric.Int64Counter

	// DynamoDB metrics
	DynamoDBOperationsTotal metric.Int64Counter
	DynamoDBThrottlesTotal  metric.Int64Counter
}

var (
	once    sync.Once
	metrics *Metrics
)

// GetMetrics returns the singleton Metrics instance, initializing it if necessary
func GetMetrics() *Metrics {
	once.Do(func() {
		metrics = initMetrics()
	})
	return metrics
}

// initMetrics creates and registers all metric instruments
func initMetrics() *Metrics {
	meter := otel.GetMeterProvider().Meter(meterName)

	m := &Metrics{}

	m.RequestsTotal, _ = meter.Int64Counter(
		"directory.requests.total",
		metric.WithDescription("Total number of directory requests by operation and status"),
		metric.WithUnit("{request}"),
	)

	m.RequestDuration, _ = meter.Float64Histogram(
		"directory.requests.duration",
		metric.WithDescription("Duration of directory requests"),
		metric.WithUnit("ms"),
	)

	m.MessagesTotal, _ = meter.Int64Counter(
		"directory.queue.messages.total",
		metric.WithDescription("Total number of queue messages processed by event type and outcome"),
		metric.WithUnit("{message}"),
	)

	m.BatchFailuresTotal, _ = meter.Int64Counter(
		"directory.queue.batch_item_failures.total",
		metric.WithDescription("Total number of messages reported back to the queue as failed"),
		metric.WithUnit("{message}"),
	)

	m.ReceiveRetries, _ = meter.Int64Counter(
		"directory.queue.receive_retries.total",
		metric.WithDescription("Total number of retried queue receive calls"),
		metric.WithUnit("{retry}"),
	)

	m.OrganizationsCreatedTotal, _ = meter.Int64Counter(
		"directory.organizations.created.total",
		metric.WithDescription("Total number of organizations created"),
		metric.WithUnit("{organization}"),
	)

	m.UsersCreatedTotal, _ = meter.Int64Counter(
		"directory.users.created.total",
		metric.WithDescription("Total number of users created"),
		metric.WithUnit("{user}"),
	)

	m.DynamoDBOperationsTotal, _ = meter.Int64Counter(
		"directory.dynamodb.operations.total",
		metric.WithDescription("Total number of DynamoDB operations"),
		metric.WithUnit("{operation}"),
	)

	m.DynamoDBThrottlesTotal, _ = meter.Int64Counter(
		"directory.dynamodb.throttles.total",
		metric.WithDescription("Total number of DynamoDB throttling events"),
		metric.WithUnit("{throttle}"),
	)

	return m
}
