// Package awsconfig builds AWS SDK clients with optional endpoint overrides for LocalStack.
package awsconfig

import (
	"context"
	"fmt"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/sqs"
)

const (
	// LocalRegion is the region used for LocalStack.
	LocalRegion = "us-east-1"

	LocalSQSEndpoint      = "http://localhost:4566"
	LocalDynamoDBEndpoint = "http://localhost:4101"
)

// Options configures AWS client construction.
type Options struct {
	Region string

	// Local uses static test credentials, which LocalStack accepts.
	Local bool

	SQSEndpointURL      string
	DynamoDBEndpointURL string
}

// LocalOptions returns options for the LocalStack endpoints used in development.
func LocalOptions() Options {
	return Options{
		Region:              LocalRegion,
		Local:               true,
		SQSEndpointURL:      LocalSQSEndpoint,
		DynamoDBEndpointURL: LocalDynamoDBEndpoint,
	}
}

// Load returns the AWS config for the given options.
func Load(ctx context.Context, opts Options) (aws.Config, error) {
	var loadOpts []func(*config.LoadOptions) error
	if opts.Region != "" {
		loadOpts = append(loadOpts, config.WithRegion(opts.Region))
	}
	if opts.Local {
		loadOpts = append(loadOpts, config.WithCredentialsProvider(credentials.NewStaticCredentialsProvider("test", "test", "test")))
	}

	cfg, err := config.LoadDefaultConfig(ctx, loadOpts...)
	if err != nil {
		return aws.Config{}, fmt.Errorf("failed to load AWS config: %w", err)
	}

	return cfg, nil
}

// NewDynamoDBClient creates a DynamoDB client, honouring the endpoint override.
func NewDynamoDBClient(cfg aws.Config, opts Options) *dynamodb.Client {
	var clientOpts []func(*dynamodb.Options)
	if opts.DynamoDBEndpointURL != "" {
		clientOpts = append(clientOpts, func(o *dynamodb.Options) {
			o.BaseEndpoint = aws.String(opts.DynamoDBEndpointURL)
		})
	}
	return dynamodb.NewFromConfig(cfg, clientOpts...)
}

// NewSQSClient creates an SQS client, honouring the endpoint override.
func NewSQSClient(cfg aws.Config, opts Options) *sqs.Client {
	var clientOpts []func(*sqs.Options)
	if opts.SQSEndpointURL != "" {
		clientOpts = append(clientOpts, func(o *sqs.Options) {
			o.BaseEndpoint = aws.String(opts.SQSEndpointURL)
		})
	}
	return sqs.NewFromConfig(cfg, clientOpts...)
}
