package consumer

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/sqs"
	"github.com/aws/aws-sdk-go-v2/service/sqs/types"
	"github.com/cenkalti/backoff/v5"
	"github.com/rs/zerolog"
	"github.com/wolfeidau/directory/internal/telemetry"
)

const (
	sqsMaxMessages        = 10 // SQS maximum messages per ReceiveMessage call
	sqsMaxWaitTimeSeconds = 20
	defaultReceiveTries   = 5
)

// SQSClient is the subset of the SQS API used by the consumer.
type SQSClient interface {
	ReceiveMessage(ctx context.Context, params *sqs.ReceiveMessageInput, optFns ...func(*sqs.Options)) (*sqs.ReceiveMessageOutput, error)
	DeleteMessageBatch(ctx context.Context, params *sqs.DeleteMessageBatchInput, optFns ...func(*sqs.Options)) (*sqs.DeleteMessageBatchOutput, error)
}

var _ SQSClient = (*sqs.Client)(nil)

// ConsumerConfig configures the long polling consumer.
type ConsumerConfig struct {
	QueueURL string
	// MaxMessages per receive, capped at 10.
	MaxMessages int32
	// WaitTimeSeconds for long polling, capped at 20.
	WaitTimeSeconds int32
	// VisibilityTimeout in seconds; zero uses the queue default.
	VisibilityTimeout int32
	// ReportFailures leaves messages that failed for unexpected reasons on the queue
	// so they are redelivered after the visibility timeout.
	ReportFailures bool
	// ReceiveTries bounds retries of a failing receive before Run gives up.
	ReceiveTries uint
	// BackOff overrides the receive retry policy.
	BackOff backoff.BackOff
}

// Consumer long polls an SQS queue and hands each batch to a Processor.
type Consumer struct {
	client    SQSClient
	processor *Processor
	cfg       ConsumerConfig
}

// NewConsumer creates a Consumer.
func NewConsumer(client SQSClient, processor *Processor, cfg ConsumerConfig) (*Consumer, error) {
	if cfg.QueueURL == "" {
		return nil, errors.New("queue url is required")
	}
	if cfg.MaxMessages <= 0 || cfg.MaxMessages > sqsMaxMessages {
		cfg.MaxMessages = sqsMaxMessages
	}
	if cfg.WaitTimeSeconds < 0 || cfg.WaitTimeSeconds > sqsMaxWaitTimeSeconds {
		cfg.WaitTimeSeconds = sqsMaxWaitTimeSeconds
	}
	if cfg.ReceiveTries == 0 {
		cfg.ReceiveTries = defaultReceiveTries
	}

	return &Consumer{client: client, processor: processor, cfg: cfg}, nil
}

// Run polls until ctx is cancelled. It returns nil on cancellation and an error when
// receiving keeps failing after retries.
func (c *Consumer) Run(ctx context.Context) error {
	zerolog.Ctx(ctx).Info().Str("queue_url", c.cfg.QueueURL).Msg("consumer started")

	for {
		if err := c.Poll(ctx); err != nil {
			if ctx.Err() != nil {
				zerolog.Ctx(ctx).Info().Msg("consumer stopped")
				return nil
			}
			return err
		}
	}
}

// Poll receives one batch, processes it and deletes the handled messages. Only a
// receive that keeps failing is returned as an error.
func (c *Consumer) Poll(ctx context.Context) error {
	messages, err := c.receive(ctx)
	if err != nil {
		return err
	}
	if len(messages) == 0 {
		return nil
	}

	batch := make([]Envelope, 0, len(messages))
	receipts := make(map[string]*string, len(messages))
	for _, msg := range messages {
		id := aws.ToString(msg.MessageId)
		batch = append(batch, Envelope{MessageID: id, Body: aws.ToString(msg.Body)})
		receipts[id] = msg.ReceiptHandle
	}

	result := c.processor.ProcessBatch(ctx, batch)

	if c.cfg.ReportFailures {
		retry := result.Retryable()
		for _, id := range retry {
			delete(receipts, id)
		}
		telemetry.GetMetrics().BatchFailuresTotal.Add(ctx, int64(len(retry)))
	}

	c.delete(ctx, receipts)

	return nil
}

func (c *Consumer) receive(ctx context.Context) ([]types.Message, error) {
	bo := c.cfg.BackOff
	if bo == nil {
		bo = backoff.NewExponentialBackOff()
	}

	output, err := backoff.Retry(ctx, func() (*sqs.ReceiveMessageOutput, error) {
		out, err := c.client.ReceiveMessage(ctx, &sqs.ReceiveMessageInput{
			QueueUrl:            aws.String(c.cfg.QueueURL),
			MaxNumberOfMessages: c.cfg.MaxMessages,
			WaitTimeSeconds:     c.cfg.WaitTimeSeconds,
			VisibilityTimeout:   c.cfg.VisibilityTimeout,
		})
		if err != nil && ctx.Err() != nil {
			return nil, backoff.Permanent(ctx.Err())
		}
		return out, err
	},
		backoff.WithBackOff(bo),
		backoff.WithMaxTries(c.cfg.ReceiveTries),
		backoff.WithNotify(func(err error, next time.Duration) {
			telemetry.GetMetrics().ReceiveRetries.Add(ctx, 1)
			zerolog.Ctx(ctx).Warn().Err(err).Dur("retry_in", next).Msg("failed to receive messages, retrying")
		}),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to receive messages from SQS: %w", err)
	}

	return output.Messages, nil
}

// delete removes handled messages. Messages that fail to delete are logged and will be
// redelivered.
func (c *Consumer) delete(ctx context.Context, receipts map[string]*string) {
	if len(receipts) == 0 {
		return
	}

	entries := make([]types.DeleteMessageBatchRequestEntry, 0, len(receipts))
	for id, handle := range receipts {
		entries = append(entries, types.DeleteMessageBatchRequestEntry{
			Id:            aws.String(id),
			ReceiptHandle: handle,
		})
	}

	output, err := c.client.DeleteMessageBatch(ctx, &sqs.DeleteMessageBatchInput{
		QueueUrl: aws.String(c.cfg.QueueURL),
		Entries:  entries,
	})
	if err != nil {
		zerolog.Ctx(ctx).Error().Err(err).Int("messages", len(entries)).Msg("failed to delete messages from SQS")
		return
	}

	for _, failed := range output.Failed {
		zerolog.Ctx(ctx).Warn().
			Str("message_id", aws.ToString(failed.Id)).
			Str("code", aws.ToString(failed.Code)).
			Msg("failed to delete message")
	}
}
