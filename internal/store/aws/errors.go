package aws

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
	"github.com/wolfeidau/directory/internal/store"
	"github.com/wolfeidau/directory/internal/telemetry"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

// wrapAWSError wraps AWS errors with context, classifying throttling as store.ErrThrottled.
func wrapAWSError(ctx context.Context, err error, msg string) error {
	if err == nil {
		return nil
	}

	var provisionedErr *types.ProvisionedThroughputExceededException
	if errors.As(err, &provisionedErr) {
		telemetry.GetMetrics().DynamoDBThrottlesTotal.Add(ctx, 1)
		return fmt.Errorf("%s: %w: %v", msg, store.ErrThrottled, err)
	}

	// AWS SDK v2 doesn't always use typed errors for throttling
	errMsg := err.Error()
	if strings.Contains(errMsg, "ThrottlingException") ||
		strings.Contains(errMsg, "RequestLimitExceeded") ||
		strings.Contains(errMsg, "TooManyRequestsException") {
		telemetry.GetMetrics().DynamoDBThrottlesTotal.Add(ctx, 1)
		return fmt.Errorf("%s: %w: %v", msg, store.ErrThrottled, err)
	}

	return fmt.Errorf("%s: %w", msg, err)
}

func isConditionalCheckFailed(err error) bool {
	var condErr *types.ConditionalCheckFailedException
	return errors.As(err, &condErr)
}

func recordOperation(ctx context.Context, table, operation string) {
	telemetry.GetMetrics().DynamoDBOperationsTotal.Add(ctx, 1, metric.WithAttributes(
		attribute.String("table", table),
		attribute.String("operation", operation),
	))
}
