package consumer

import (
	"context"
	"errors"
	"slices"
	"sync"
	"testing"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/sqs"
	"github.com/aws/aws-sdk-go-v2/service/sqs/types"
	"github.com/cenkalti/backoff/v5"
	"github.com/stretchr/testify/require"
)

type fakeSQS struct {
	mu        sync.Mutex
	receives  []*sqs.ReceiveMessageOutput
	errs      []error
	calls     int
	deleted   []string
	onReceive func()
}

func (f *fakeSQS) ReceiveMessage(ctx context.Context, params *sqs.ReceiveMessageInput, optFns ...func(*sqs.Options)) (*sqs.ReceiveMessageOutput, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	i := f.calls
	f.calls++
	if f.onReceive != nil {
		f.onReceive()
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if i < len(f.errs) && f.errs[i] != nil {
		return nil, f.errs[i]
	}
	if i < len(f.receives) {
		return f.receives[i], nil
	}
	return &sqs.ReceiveMessageOutput{}, nil
}

func (f *fakeSQS) DeleteMessageBatch(ctx context.Context, params *sqs.DeleteMessageBatchInput, optFns ...func(*sqs.Options)) (*sqs.DeleteMessageBatchOutput, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	for _, e := range params.Entries {
		f.deleted = append(f.deleted, aws.ToString(e.ReceiptHandle))
	}
	return &sqs.DeleteMessageBatchOutput{}, nil
}

func message(id, body string) types.Message {
	return types.Message{
		MessageId:     aws.String(id),
		Body:          aws.String(body),
		ReceiptHandle: aws.String("rh-" + id),
	}
}

func TestNewConsumer(t *testing.T) {
	_, err := NewConsumer(&fakeSQS{}, NewProcessor(flakyDirectory{}), ConsumerConfig{})
	require.Error(t, err)

	c, err := NewConsumer(&fakeSQS{}, NewProcessor(flakyDirectory{}), ConsumerConfig{
		QueueURL:        "http://localhost:4566/000000000000/directory-events",
		MaxMessages:     50,
		WaitTimeSeconds: 60,
	})
	require.NoError(t, err)
	require.Equal(t, int32(10), c.cfg.MaxMessages)
	require.Equal(t, int32(20), c.cfg.WaitTimeSeconds)
	require.Equal(t, uint(5), c.cfg.ReceiveTries)
}

func TestConsumer_Poll(t *testing.T) {
	ctx := context.Background()
	batch := &sqs.ReceiveMessageOutput{Messages: []types.Message{
		message("m1", `{"eventType":"create.organization","name":"Acme","description":"desc"}`),
		message("m2", `{"eventType":"nope"}`),
		message("m3", `{"eventType":"create.user"}`),
	}}

	t.Run("deletes every message by default", func(t *testing.T) {
		client := &fakeSQS{receives: []*sqs.ReceiveMessageOutput{batch}}
		c, err := NewConsumer(client, NewProcessor(flakyDirectory{}), ConsumerConfig{QueueURL: "queue"})
		require.NoError(t, err)

		require.NoError(t, c.Poll(ctx))
		slices.Sort(client.deleted)
		require.Equal(t, []string{"rh-m1", "rh-m2", "rh-m3"}, client.deleted)
	})

	t.Run("keeps unexpected failures for redelivery", func(t *testing.T) {
		client := &fakeSQS{receives: []*sqs.ReceiveMessageOutput{batch}}
		c, err := NewConsumer(client, NewProcessor(flakyDirectory{}), ConsumerConfig{QueueURL: "queue", ReportFailures: true})
		require.NoError(t, err)

		require.NoError(t, c.Poll(ctx))
		require.Equal(t, []string{"rh-m2"}, client.deleted)
	})

	t.Run("retries failed receives", func(t *testing.T) {
		svc, _ := newTestService()
		client := &fakeSQS{
			errs:     []error{errors.New("connection reset"), errors.New("connection reset")},
			receives: []*sqs.ReceiveMessageOutput{nil, nil, {Messages: batch.Messages[:1]}},
		}
		c, err := NewConsumer(client, NewProcessor(svc), ConsumerConfig{
			QueueURL: "queue",
			BackOff:  &backoff.ZeroBackOff{},
		})
		require.NoError(t, err)

		require.NoError(t, c.Poll(ctx))
		require.Equal(t, 3, client.calls)
		require.Equal(t, []string{"rh-m1"}, client.deleted)
	})

	t.Run("gives up after max tries", func(t *testing.T) {
		boom := errors.New("access denied")
		client := &fakeSQS{errs: []error{boom, boom, boom}}
		c, err := NewConsumer(client, NewProcessor(flakyDirectory{}), ConsumerConfig{
			QueueURL:     "queue",
			ReceiveTries: 3,
			BackOff:      &backoff.ZeroBackOff{},
		})
		require.NoError(t, err)

		require.ErrorIs(t, c.Poll(ctx), boom)
		require.Equal(t, 3, client.calls)
	})
}

func TestConsumer_RunStopsOnCancel(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	client := &fakeSQS{onReceive: cancel}

	c, err := NewConsumer(client, NewProcessor(flakyDirectory{}), ConsumerConfig{QueueURL: "queue"})
	require.NoError(t, err)

	require.NoError(t, c.Run(ctx))
}
