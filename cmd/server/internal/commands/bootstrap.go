package commands

import (
	"context"
	"fmt"

	"github.com/wolfeidau/directory/internal/awsconfig"
	"github.com/wolfeidau/directory/internal/bootstrap"
	"github.com/wolfeidau/directory/internal/logger"
)

type BootstrapCmd struct {
	Environment string `help:"environment name used as the resource prefix" default:"dev" env:"DIRECTORY_ENVIRONMENT"`
	Clean       bool   `help:"delete existing resources first (deletes all data)" default:"false"`
	Local       bool   `help:"target LocalStack with test credentials" default:"true" negatable:""`

	AWS AWSFlags `embed:"" prefix:"aws-"`
}

func (c *BootstrapCmd) Run(globals *Globals) error {
	log := logger.Setup(globals.Debug)
	ctx := context.Background()

	opts := c.AWS.options()
	if c.Local {
		opts = awsconfig.LocalOptions()
	}

	cfg, err := awsconfig.Load(ctx, opts)
	if err != nil {
		return err
	}

	resources, err := bootstrap.Bootstrap(ctx, bootstrap.Config{
		SQSClient:      awsconfig.NewSQSClient(cfg, opts),
		DynamoClient:   awsconfig.NewDynamoDBClient(cfg, opts),
		Environment:    c.Environment,
		CleanResources: c.Clean,
	})
	if err != nil {
		return fmt.Errorf("failed to bootstrap: %w", err)
	}

	log.Info().
		Str("organizations_table", resources.TableNames.Organizations).
		Str("users_table", resources.TableNames.Users).
		Str("queue", resources.QueueURL).
		Str("dead_letter_queue", resources.DeadLetterQueueURL).
		Msg("Bootstrap complete")

	return nil
}
