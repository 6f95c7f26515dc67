package consumer

import (
	"context"

	"github.com/aws/aws-lambda-go/events"
	"github.com/rs/zerolog"
	"github.com/wolfeidau/directory/internal/telemetry"
)

// LambdaHandler adapts Processor to SQS event source mappings.
type LambdaHandler struct {
	processor      *Processor
	logger         zerolog.Logger
	reportFailures bool
}

// NewLambdaHandler creates a LambdaHandler. With reportFailures set, messages that
// failed for unexpected reasons are returned as batch item failures so SQS redelivers
// them; this requires ReportBatchItemFailures on the event source mapping.
func NewLambdaHandler(p *Processor, logger zerolog.Logger, reportFailures bool) *LambdaHandler {
	return &LambdaHandler{processor: p, logger: logger, reportFailures: reportFailures}
}

// Handle processes one SQS batch. It never returns an invocation error.
func (l *LambdaHandler) Handle(ctx context.Context, event events.SQSEvent) (events.SQSEventResponse, error) {
	ctx = l.logger.WithContext(ctx)

	batch := make([]Envelope, 0, len(event.Records))
	for _, record := range event.Records {
		batch = append(batch, Envelope{MessageID: record.MessageId, Body: record.Body})
	}

	result := l.processor.ProcessBatch(ctx, batch)

	var resp events.SQSEventResponse
	if !l.reportFailures {
		return resp, nil
	}

	for _, id := range result.Retryable() {
		resp.BatchItemFailures = append(resp.BatchItemFailures, events.SQSBatchItemFailure{ItemIdentifier: id})
	}
	telemetry.GetMetrics().BatchFailuresTotal.Add(ctx, int64(len(resp.BatchItemFailures)))

	return resp, nil
}
