package bootstrap

import (
	"context"
	"fmt"
)

// Bootstrap creates the directory infrastructure: the event queue with its dead letter
// queue and the organizations and users tables.
// If CleanResources is true, deletes existing resources first to ensure clean state
// If CleanResources is false, creates resources only if they don't exist (preserves data)
func Bootstrap(ctx context.Context, cfg Config) (*Resources, error) {
	if cfg.SQSClient == nil {
		return nil, fmt.Errorf("SQSClient is required")
	}
	if cfg.DynamoClient == nil {
		return nil, fmt.Errorf("DynamoClient is required")
	}
	if cfg.Environment == "" {
		cfg.Environment = "dev"
	}

	resources := &Resources{}

	queueURL, dlqURL, err := CreateQueues(ctx, cfg.SQSClient, cfg.Environment, cfg.CleanResources)
	if err != nil {
		return nil, fmt.Errorf("failed to create SQS queues: %w", err)
	}
	resources.QueueURL = queueURL
	resources.DeadLetterQueueURL = dlqURL

	orgsTable, usersTable, err := CreateDirectoryTables(ctx, cfg.DynamoClient, cfg.Environment, cfg.CleanResources)
	if err != nil {
		return nil, fmt.Errorf("failed to create DynamoDB tables: %w", err)
	}
	resources.TableNames.Organizations = orgsTable
	resources.TableNames.Users = usersTable

	return resources, nil
}

// Cleanup deletes all resources created by Bootstrap
func Cleanup(ctx context.Context, cfg Config, res *Resources) error {
	if err := DeleteQueues(ctx, cfg.SQSClient, res.QueueURL, res.DeadLetterQueueURL); err != nil {
		return fmt.Errorf("failed to delete queues: %w", err)
	}

	if err := DeleteTables(ctx, cfg.DynamoClient, res.TableNames.Organizations, res.TableNames.Users); err != nil {
		return fmt.Errorf("failed to delete tables: %w", err)
	}

	return nil
}
