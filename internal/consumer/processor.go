// Package consumer applies directory events delivered in queue message batches.
//
// Each message is handled on its own: a malformed body, an unknown event type or a
// rejected operation is logged and never stops the rest of the batch.
package consumer

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/rs/zerolog"
	"github.com/wolfeidau/directory/internal/directory"
	"github.com/wolfeidau/directory/internal/models"
	"github.com/wolfeidau/directory/internal/telemetry"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/trace"
)

// Event types carried in the eventType field of a message body.
const (
	EventCreateOrganization = "create.organization"
	EventCreateUser         = "create.user"
	EventUpdateOrganization = "update.organization"
	EventUpdateUser         = "update.user"
)

const eventTypeField = "eventType"

var (
	errMissingEventType = errors.New("missing eventType")
	errNotAnObject      = errors.New("message body is not a JSON object")
)

// Directory is the set of operations events are dispatched to.
type Directory interface {
	CreateOrganization(ctx context.Context, raw map[string]any) (*models.Organization, error)
	CreateUser(ctx context.Context, raw map[string]any) (*models.User, error)
	UpdateOrganization(ctx context.Context, raw map[string]any) (*models.Organization, error)
	UpdateUser(ctx context.Context, raw map[string]any) (*models.User, error)
}

var _ Directory = (*directory.Service)(nil)

// Envelope is one queue message.
type Envelope struct {
	MessageID string
	Body      string
}

// Failure records a message that was not applied.
type Failure struct {
	MessageID string
	EventType string
	Err       *directory.Error
}

// BatchResult summarises a processed batch.
type BatchResult struct {
	Processed int
	Failures  []Failure
}

// Retryable returns the ids of messages that failed for reasons other than their
// content, such as an unavailable store. Redelivering the other failures would fail
// the same way.
func (r BatchResult) Retryable() []string {
	var ids []string
	for _, f := range r.Failures {
		if f.Err.Kind == directory.KindUnexpected {
			ids = append(ids, f.MessageID)
		}
	}
	return ids
}

// Processor dispatches message bodies to the directory.
type Processor struct {
	dir Directory
}

// NewProcessor creates a Processor.
func NewProcessor(dir Directory) *Processor {
	return &Processor{dir: dir}
}

// ProcessBatch applies each message in order. It never returns an error; failures are
// logged and reported in the result.
func (p *Processor) ProcessBatch(ctx context.Context, batch []Envelope) BatchResult {
	started := time.Now()

	var result BatchResult
	for _, env := range batch {
		msgCtx, span := telemetry.Tracer().Start(ctx, "consumer.process", trace.WithSpanKind(trace.SpanKindConsumer),
			trace.WithAttributes(attribute.String("messaging.message.id", env.MessageID)))

		eventType, err := p.process(msgCtx, env)
		span.SetAttributes(attribute.String("directory.event_type", eventType))
		outcome := "processed"
		if err != nil {
			outcome = "failed"
			derr := directory.AsError(err)
			span.RecordError(err)
			span.SetStatus(codes.Error, derr.Message)
			result.Failures = append(result.Failures, Failure{
				MessageID: env.MessageID,
				EventType: eventType,
				Err:       derr,
			})

			zerolog.Ctx(ctx).Error().
				Err(err).
				Str("message_id", env.MessageID).
				Str("event_type", eventType).
				Int("status_code", derr.StatusCode()).
				Msg("failed to process message")
		} else {
			result.Processed++
		}
		span.End()

		telemetry.GetMetrics().MessagesTotal.Add(ctx, 1, metric.WithAttributes(
			attribute.String("event_type", eventType),
			attribute.String("outcome", outcome),
		))
	}

	zerolog.Ctx(ctx).Info().
		Int("messages", len(batch)).
		Int("processed", result.Processed).
		Int("failed", len(result.Failures)).
		Dur("duration", time.Since(started)).
		Msg("batch processed")

	return result
}

// process handles a single message and returns its event type, if one could be read.
func (p *Processor) process(ctx context.Context, env Envelope) (eventType string, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("panic processing message: %v", r)
		}
	}()

	var payload map[string]any
	if err := json.Unmarshal([]byte(env.Body), &payload); err != nil {
		return "", directory.Malformed(err)
	}
	if payload == nil {
		return "", directory.Malformed(errNotAnObject)
	}

	eventType, ok := payload[eventTypeField].(string)
	if !ok || eventType == "" {
		return "", &directory.Error{Kind: directory.KindMalformed, Message: "Missing eventType", Err: errMissingEventType}
	}
	delete(payload, eventTypeField)

	ctx = zerolog.Ctx(ctx).With().
		Str("message_id", env.MessageID).
		Str("event_type", eventType).
		Logger().WithContext(ctx)

	switch eventType {
	case EventCreateOrganization:
		_, err = p.dir.CreateOrganization(ctx, payload)
	case EventCreateUser:
		_, err = p.dir.CreateUser(ctx, payload)
	case EventUpdateOrganization:
		_, err = p.dir.UpdateOrganization(ctx, payload)
	case EventUpdateUser:
		_, err = p.dir.UpdateUser(ctx, payload)
	default:
		err = &directory.Error{Kind: directory.KindMalformed, Message: "Unknown eventType: " + eventType}
	}

	return eventType, err
}
