package commands

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/sqs"
	"github.com/aws/aws-sdk-go-v2/service/sqs/types"
	"gopkg.in/yaml.v3"

	"github.com/wolfeidau/directory/internal/awsconfig"
	"github.com/wolfeidau/directory/internal/logger"
)

// sqsMaxBatchSize is the SQS limit of entries per SendMessageBatch call.
const sqsMaxBatchSize = 10

// MessageSender is the subset of the SQS API used to publish events.
type MessageSender interface {
	SendMessageBatch(ctx context.Context, params *sqs.SendMessageBatchInput, optFns ...func(*sqs.Options)) (*sqs.SendMessageBatchOutput, error)
}

type PublishCmd struct {
	File     string `arg:"" help:"YAML/JSON file holding one event or a list of events" type:"existingfile"`
	QueueURL string `help:"SQS queue URL for directory events" env:"DIRECTORY_QUEUE_URL" required:""`

	Region      string `help:"AWS region" default:"" env:"AWS_REGION"`
	EndpointURL string `help:"SQS endpoint URL override (for LocalStack)" default:"" env:"DIRECTORY_AWS_SQS_ENDPOINT_URL"`
	Local       bool   `help:"target LocalStack with test credentials" default:"false"`
}

func (p *PublishCmd) Run(ctx context.Context, globals *Globals) error {
	log := logger.Setup(globals.Debug)

	events, err := loadEvents(p.File)
	if err != nil {
		return fmt.Errorf("failed to load events: %w", err)
	}

	opts := awsconfig.Options{Region: p.Region, SQSEndpointURL: p.EndpointURL}
	if p.Local {
		opts = awsconfig.LocalOptions()
	}

	cfg, err := awsconfig.Load(ctx, opts)
	if err != nil {
		return err
	}

	sent, err := publish(ctx, awsconfig.NewSQSClient(cfg, opts), p.QueueURL, events)
	if err != nil {
		return err
	}

	log.Info().Int("sent", sent).Str("queue", p.QueueURL).Msg("Published events")
	return nil
}

// loadEvents reads the events from path. Files ending in .json are parsed as JSON,
// everything else as YAML.
func loadEvents(path string) ([]map[string]any, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read events file: %w", err)
	}

	unmarshal := yaml.Unmarshal
	if strings.HasSuffix(strings.ToLower(path), ".json") {
		unmarshal = json.Unmarshal
	}

	var events []map[string]any
	if err := unmarshal(data, &events); err != nil {
		var event map[string]any
		if singleErr := unmarshal(data, &event); singleErr != nil {
			return nil, fmt.Errorf("failed to parse events file: %w", err)
		}
		events = []map[string]any{event}
	}

	for i, event := range events {
		if eventType, _ := event["eventType"].(string); eventType == "" {
			return nil, fmt.Errorf("event %d: eventType is required", i)
		}
	}

	return events, nil
}

// publish sends events to the queue in batches and returns the number accepted.
func publish(ctx context.Context, client MessageSender, queueURL string, events []map[string]any) (int, error) {
	sent := 0

	for start := 0; start < len(events); start += sqsMaxBatchSize {
		end := min(start+sqsMaxBatchSize, len(events))

		entries := make([]types.SendMessageBatchRequestEntry, 0, end-start)
		for i := start; i < end; i++ {
			body, err := json.Marshal(events[i])
			if err != nil {
				return sent, fmt.Errorf("event %d: %w", i, err)
			}
			entries = append(entries, types.SendMessageBatchRequestEntry{
				Id:          aws.String(strconv.Itoa(i)),
				MessageBody: aws.String(string(body)),
			})
		}

		out, err := client.SendMessageBatch(ctx, &sqs.SendMessageBatchInput{
			QueueUrl: aws.String(queueURL),
			Entries:  entries,
		})
		if err != nil {
			return sent, fmt.Errorf("failed to send messages: %w", err)
		}

		sent += len(out.Successful)
		if len(out.Failed) > 0 {
			failed := out.Failed[0]
			return sent, errors.New("failed to send event " + aws.ToString(failed.Id) + ": " + aws.ToString(failed.Message))
		}
	}

	return sent, nil
}
