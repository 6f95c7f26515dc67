package commands

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/wolfeidau/directory/internal/awsconfig"
	"github.com/wolfeidau/directory/internal/consumer"
	"github.com/wolfeidau/directory/internal/directory"
	"github.com/wolfeidau/directory/internal/logger"
)

type QueueFlags struct {
	URL               string `help:"SQS queue URL for directory events" env:"DIRECTORY_QUEUE_URL"`
	MaxMessages       int32  `help:"maximum messages per receive (1-10)" default:"10"`
	WaitTimeSeconds   int32  `help:"long poll wait time in seconds (0-20)" default:"20"`
	VisibilityTimeout int32  `help:"visibility timeout in seconds, 0 uses the queue default" default:"0"`
	ReportFailures    bool   `help:"leave messages that failed unexpectedly on the queue for redelivery" default:"false" env:"DIRECTORY_REPORT_FAILURES"`
}

type ConsumeCmd struct {
	Queue       QueueFlags       `embed:"" prefix:"queue-"`
	Telemetry   TelemetryFlags   `embed:""`
	Store       StoreFlags       `embed:""`
	AWS         AWSFlags         `embed:"" prefix:"aws-"`
	Development DevelopmentFlags `embed:""`
}

func (c *ConsumeCmd) Run(globals *Globals) error {
	log := logger.Setup(globals.Debug)
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	log.Info().Str("version", globals.Version).Bool("debug", globals.Debug).Msg("Starting consumer")

	defer c.Telemetry.initTelemetry(ctx, log, globals.Version)()

	if c.Development.Development {
		queueURL, err := c.Development.setupDevelopment(ctx, log, &c.AWS, &c.Store)
		if err != nil {
			return err
		}
		c.Queue.URL = queueURL
	}

	if c.Queue.URL == "" {
		return errors.New("SQS queue URL is required (--queue-url or DIRECTORY_QUEUE_URL)")
	}

	stores, closeStores, err := openStores(ctx, log, &c.Store, &c.AWS)
	if err != nil {
		return err
	}
	defer closeStores()

	opts := c.AWS.options()
	cfg, err := awsconfig.Load(ctx, opts)
	if err != nil {
		return err
	}

	processor := consumer.NewProcessor(directory.NewService(stores))
	queueConsumer, err := consumer.NewConsumer(awsconfig.NewSQSClient(cfg, opts), processor, consumer.ConsumerConfig{
		QueueURL:          c.Queue.URL,
		MaxMessages:       c.Queue.MaxMessages,
		WaitTimeSeconds:   c.Queue.WaitTimeSeconds,
		VisibilityTimeout: c.Queue.VisibilityTimeout,
		ReportFailures:    c.Queue.ReportFailures,
	})
	if err != nil {
		return fmt.Errorf("failed to create consumer: %w", err)
	}

	log.Info().Str("queue", c.Queue.URL).Bool("report_failures", c.Queue.ReportFailures).Msg("Polling queue")

	return queueConsumer.Run(log.WithContext(ctx))
}
