package commands

import (
	"context"

	"github.com/aws/aws-lambda-go/lambda"
	"github.com/wolfeidau/directory/internal/api"
	"github.com/wolfeidau/directory/internal/consumer"
	"github.com/wolfeidau/directory/internal/directory"
	"github.com/wolfeidau/directory/internal/logger"
)

type LambdaCmd struct {
	Mode           string `help:"event source the function is attached to (api or queue)" default:"api" env:"DIRECTORY_LAMBDA_MODE" enum:"api,queue"`
	ReportFailures bool   `help:"report messages that failed unexpectedly as batch item failures" default:"false" env:"DIRECTORY_REPORT_FAILURES"`

	Telemetry TelemetryFlags `embed:""`
	Store     StoreFlags     `embed:""`
	AWS       AWSFlags       `embed:"" prefix:"aws-"`
}

func (c *LambdaCmd) Run(globals *Globals) error {
	log := logger.Setup(globals.Debug)
	ctx := context.Background()

	log.Info().Str("version", globals.Version).Str("mode", c.Mode).Msg("Starting lambda")

	defer c.Telemetry.initTelemetry(ctx, log, globals.Version)()

	stores, closeStores, err := openStores(ctx, log, &c.Store, &c.AWS)
	if err != nil {
		return err
	}
	defer closeStores()

	svc := directory.NewService(stores)

	switch c.Mode {
	case "queue":
		handler := consumer.NewLambdaHandler(consumer.NewProcessor(svc), log, c.ReportFailures)
		lambda.Start(handler.Handle)
	default:
		handler := api.NewLambdaHandler(api.NewHandler(svc), log)
		lambda.Start(handler.Handle)
	}

	return nil
}
