package commands

import (
	"context"
	"errors"
	"fmt"

	"github.com/rs/zerolog"
	"github.com/wolfeidau/directory/internal/awsconfig"
	"github.com/wolfeidau/directory/internal/bootstrap"
	"github.com/wolfeidau/directory/internal/store"
	awsstore "github.com/wolfeidau/directory/internal/store/aws"
	memorystore "github.com/wolfeidau/directory/internal/store/memory"
	postgresstore "github.com/wolfeidau/directory/internal/store/postgres"
)

type AWSFlags struct {
	Region string `help:"AWS region" default:"" env:"AWS_REGION"`

	// Endpoint overrides for local development
	SQSEndpointURL      string `help:"SQS endpoint URL override (for LocalStack)" default:"" env:"DIRECTORY_AWS_SQS_ENDPOINT_URL"`
	DynamoDBEndpointURL string `help:"DynamoDB endpoint URL override (for LocalStack)" default:"" env:"DIRECTORY_AWS_DYNAMODB_ENDPOINT_URL"`
}

func (f *AWSFlags) options() awsconfig.Options {
	return awsconfig.Options{
		Region:              f.Region,
		SQSEndpointURL:      f.SQSEndpointURL,
		DynamoDBEndpointURL: f.DynamoDBEndpointURL,
	}
}

type StoreFlags struct {
	Type     string             `name:"store-type" help:"store type (memory, dynamodb, or postgres)" default:"memory" env:"DIRECTORY_STORE_TYPE" enum:"memory,dynamodb,postgres"`
	DynamoDB DynamoDBStoreFlags `embed:"" prefix:"dynamodb-"`
	Postgres PostgresStoreFlags `embed:"" prefix:"postgres-"`
}

type DynamoDBStoreFlags struct {
	OrganizationsTable string `help:"DynamoDB table name for organizations" env:"DIRECTORY_DYNAMODB_ORGANIZATIONS_TABLE"`
	UsersTable         string `help:"DynamoDB table name for users" env:"DIRECTORY_DYNAMODB_USERS_TABLE"`
}

func (s *DynamoDBStoreFlags) Validate() error {
	if s.OrganizationsTable == "" {
		return errors.New("DynamoDB organizations table name is required (--dynamodb-organizations-table or DIRECTORY_DYNAMODB_ORGANIZATIONS_TABLE)")
	}
	if s.UsersTable == "" {
		return errors.New("DynamoDB users table name is required (--dynamodb-users-table or DIRECTORY_DYNAMODB_USERS_TABLE)")
	}
	return nil
}

type PostgresStoreFlags struct {
	// Connection Configuration
	ConnString string `help:"PostgreSQL connection string" env:"POSTGRES_CONNECTION_STRING"`

	// Connection Pool Configuration
	MaxConns        int32 `help:"maximum number of connections in pool" default:"20"`
	MinConns        int32 `help:"minimum number of connections in pool" default:"5"`
	MaxConnLifetime int32 `help:"maximum connection lifetime in seconds" default:"3600"`
	MaxConnIdleTime int32 `help:"maximum connection idle time in seconds" default:"1800"`

	// Migration Configuration
	AutoMigrate bool `help:"run database migrations on startup" default:"false" env:"DIRECTORY_POSTGRES_AUTO_MIGRATE"`
}

func (s *PostgresStoreFlags) Validate() error {
	if s.ConnString == "" {
		return errors.New("PostgreSQL connection string is required (--postgres-conn-string or POSTGRES_CONNECTION_STRING)")
	}
	return nil
}

// DevelopmentFlags point the AWS clients at LocalStack and create the resources on startup.
type DevelopmentFlags struct {
	Development      bool `help:"development mode - auto-setup LocalStack infrastructure" default:"false" env:"DIRECTORY_DEVELOPMENT"`
	DevelopmentClean bool `help:"clean resources on startup in development mode (deletes all data)" default:"false" env:"DIRECTORY_DEVELOPMENT_CLEAN"`
}

// setupDevelopment bootstraps LocalStack and rewrites the flags to use the created resources.
// It returns the queue URL of the event queue.
func (d *DevelopmentFlags) setupDevelopment(ctx context.Context, log zerolog.Logger, awsFlags *AWSFlags, storeFlags *StoreFlags) (string, error) {
	log.Info().Msg("Development mode enabled - setting up LocalStack infrastructure")

	opts := awsconfig.LocalOptions()
	cfg, err := awsconfig.Load(ctx, opts)
	if err != nil {
		return "", fmt.Errorf("failed to create local AWS config: %w", err)
	}

	resources, err := bootstrap.Bootstrap(ctx, bootstrap.Config{
		SQSClient:      awsconfig.NewSQSClient(cfg, opts),
		DynamoClient:   awsconfig.NewDynamoDBClient(cfg, opts),
		Environment:    "dev",
		CleanResources: d.DevelopmentClean,
	})
	if err != nil {
		return "", fmt.Errorf("failed to bootstrap development infrastructure: %w", err)
	}

	if storeFlags.Type == "" || storeFlags.Type == "memory" {
		storeFlags.Type = "dynamodb"
	}
	storeFlags.DynamoDB.OrganizationsTable = resources.TableNames.Organizations
	storeFlags.DynamoDB.UsersTable = resources.TableNames.Users
	awsFlags.Region = opts.Region
	awsFlags.SQSEndpointURL = opts.SQSEndpointURL
	awsFlags.DynamoDBEndpointURL = opts.DynamoDBEndpointURL

	log.Info().
		Str("organizations_table", resources.TableNames.Organizations).
		Str("users_table", resources.TableNames.Users).
		Str("queue", resources.QueueURL).
		Str("dead_letter_queue", resources.DeadLetterQueueURL).
		Msg("Development infrastructure ready")

	return resources.QueueURL, nil
}

// openStores creates the stores selected by the flags. The returned func releases them.
func openStores(ctx context.Context, log zerolog.Logger, storeFlags *StoreFlags, awsFlags *AWSFlags) (store.Stores, func(), error) {
	switch storeFlags.Type {
	case "dynamodb":
		if err := storeFlags.DynamoDB.Validate(); err != nil {
			return store.Stores{}, nil, fmt.Errorf("failed to validate dynamodb flags: %w", err)
		}

		opts := awsFlags.options()
		cfg, err := awsconfig.Load(ctx, opts)
		if err != nil {
			return store.Stores{}, nil, err
		}
		client := awsconfig.NewDynamoDBClient(cfg, opts)

		log.Info().
			Str("organizations_table", storeFlags.DynamoDB.OrganizationsTable).
			Str("users_table", storeFlags.DynamoDB.UsersTable).
			Msg("Using DynamoDB stores")

		return store.Stores{
			Organizations: awsstore.NewOrganizationStore(client, storeFlags.DynamoDB.OrganizationsTable),
			Users:         awsstore.NewUserStore(client, storeFlags.DynamoDB.UsersTable),
		}, func() {}, nil

	case "postgres":
		if err := storeFlags.Postgres.Validate(); err != nil {
			return store.Stores{}, nil, fmt.Errorf("failed to validate postgres flags: %w", err)
		}

		stores, pool, err := postgresstore.Open(ctx, &postgresstore.Config{
			PoolConfig: postgresstore.PoolConfig{
				ConnString:      storeFlags.Postgres.ConnString,
				MaxConns:        storeFlags.Postgres.MaxConns,
				MinConns:        storeFlags.Postgres.MinConns,
				MaxConnLifetime: storeFlags.Postgres.MaxConnLifetime,
				MaxConnIdleTime: storeFlags.Postgres.MaxConnIdleTime,
			},
			AutoMigrate: storeFlags.Postgres.AutoMigrate,
		})
		if err != nil {
			return store.Stores{}, nil, fmt.Errorf("failed to open postgres stores: %w", err)
		}

		log.Info().Bool("auto_migrate", storeFlags.Postgres.AutoMigrate).Msg("Using PostgreSQL stores")
		return stores, pool.Close, nil

	default:
		log.Info().Msg("Using in-memory stores")
		return store.Stores{
			Organizations: memorystore.NewOrganizationStore(),
			Users:         memorystore.NewUserStore(),
		}, func() {}, nil
	}
}
