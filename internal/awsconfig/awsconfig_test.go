package awsconfig

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestLoad(t *testing.T) {
	ctx := context.Background()
	opts := LocalOptions()

	cfg, err := Load(ctx, opts)
	require.NoError(t, err)
	require.Equal(t, LocalRegion, cfg.Region)

	creds, err := cfg.Credentials.Retrieve(ctx)
	require.NoError(t, err)
	require.Equal(t, "test", creds.AccessKeyID)

	dynamo := NewDynamoDBClient(cfg, opts)
	require.Equal(t, LocalDynamoDBEndpoint, *dynamo.Options().BaseEndpoint)

	sqsClient := NewSQSClient(cfg, opts)
	require.Equal(t, LocalSQSEndpoint, *sqsClient.Options().BaseEndpoint)
}

func TestNewClients_NoOverride(t *testing.T) {
	cfg, err := Load(context.Background(), Options{Region: "ap-southeast-2", Local: true})
	require.NoError(t, err)

	require.Nil(t, NewDynamoDBClient(cfg, Options{}).Options().BaseEndpoint)
	require.Nil(t, NewSQSClient(cfg, Options{}).Options().BaseEndpoint)
}
