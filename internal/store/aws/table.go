package aws

import (
	"context"
	"errors"
	"fmt"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/attributevalue"
	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/expression"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
	"github.com/wolfeidau/directory/internal/models"
)

// Index names for the unique-field GSIs.
const (
	OrganizationNameIndex = "name-index"
	UserEmailIndex        = "email-index"
)

var errEmptyUpdate = errors.New("update has no fields")

// Client is the subset of the DynamoDB API used by the stores.
type Client interface {
	GetItem(ctx context.Context, params *dynamodb.GetItemInput, optFns ...func(*dynamodb.Options)) (*dynamodb.GetItemOutput, error)
	PutItem(ctx context.Context, params *dynamodb.PutItemInput, optFns ...func(*dynamodb.Options)) (*dynamodb.PutItemOutput, error)
	UpdateItem(ctx context.Context, params *dynamodb.UpdateItemInput, optFns ...func(*dynamodb.Options)) (*dynamodb.UpdateItemOutput, error)
	Query(ctx context.Context, params *dynamodb.QueryInput, optFns ...func(*dynamodb.Options)) (*dynamodb.QueryOutput, error)
}

var _ Client = (*dynamodb.Client)(nil)

// table describes one collection: a string hash key plus one GSI over a unique attribute.
type table struct {
	client     Client
	name       string
	keyAttr    string
	indexName  string
	uniqueAttr string
}

func (t *table) key(id string) map[string]types.AttributeValue {
	return map[string]types.AttributeValue{
		t.keyAttr: &types.AttributeValueMemberS{Value: id},
	}
}

// get loads the item with the given id into out. It returns false if there is no such item.
func (t *table) get(ctx context.Context, id string, out any) (bool, error) {
	recordOperation(ctx, t.name, "get_item")

	result, err := t.client.GetItem(ctx, &dynamodb.GetItemInput{
		TableName: aws.String(t.name),
		Key:       t.key(id),
	})
	if err != nil {
		return false, wrapAWSError(ctx, err, "failed to get item")
	}

	if result.Item == nil {
		return false, nil
	}

	if err := attributevalue.UnmarshalMap(result.Item, out); err != nil {
		return false, fmt.Errorf("failed to unmarshal item: %w", err)
	}

	return true, nil
}

// exists is a point lookup that only projects the key attribute.
func (t *table) exists(ctx context.Context, id string) (bool, error) {
	recordOperation(ctx, t.name, "get_item")

	expr, err := expression.NewBuilder().
		WithProjection(expression.NamesList(expression.Name(t.keyAttr))).
		Build()
	if err != nil {
		return false, fmt.Errorf("failed to build expression: %w", err)
	}

	result, err := t.client.GetItem(ctx, &dynamodb.GetItemInput{
		TableName:                aws.String(t.name),
		Key:                      t.key(id),
		ProjectionExpression:     expr.Projection(),
		ExpressionAttributeNames: expr.Names(),
	})
	if err != nil {
		return false, wrapAWSError(ctx, err, "failed to check item exists")
	}

	return result.Item != nil, nil
}

// taken queries the unique-field GSI and reports whether any item other than
// excludeID holds value.
func (t *table) taken(ctx context.Context, value string, excludeID string) (bool, error) {
	keyCond := expression.Key(t.uniqueAttr).Equal(expression.Value(value))
	expr, err := expression.NewBuilder().
		WithKeyCondition(keyCond).
		WithProjection(expression.NamesList(expression.Name(t.keyAttr))).
		Build()
	if err != nil {
		return false, fmt.Errorf("failed to build expression: %w", err)
	}

	paginator := dynamodb.NewQueryPaginator(t.client, &dynamodb.QueryInput{
		TableName:                 aws.String(t.name),
		IndexName:                 aws.String(t.indexName),
		KeyConditionExpression:    expr.KeyCondition(),
		ProjectionExpression:      expr.Projection(),
		ExpressionAttributeNames:  expr.Names(),
		ExpressionAttributeValues: expr.Values(),
	})

	for paginator.HasMorePages() {
		recordOperation(ctx, t.name, "query")

		page, err := paginator.NextPage(ctx)
		if err != nil {
			return false, wrapAWSError(ctx, err, fmt.Sprintf("failed to query %s (check %s index exists)", t.uniqueAttr, t.indexName))
		}

		for _, item := range page.Items {
			id, ok := item[t.keyAttr].(*types.AttributeValueMemberS)
			if !ok || id.Value != excludeID {
				return true, nil
			}
		}
	}

	return false, nil
}

// put writes the item unconditionally.
func (t *table) put(ctx context.Context, in any) error {
	recordOperation(ctx, t.name, "put_item")

	item, err := attributevalue.MarshalMap(in)
	if err != nil {
		return fmt.Errorf("failed to marshal item: %w", err)
	}

	_, err = t.client.PutItem(ctx, &dynamodb.PutItemInput{
		TableName: aws.String(t.name),
		Item:      item,
	})
	if err != nil {
		return wrapAWSError(ctx, err, "failed to put item")
	}

	return nil
}

// update sets the given fields on an existing item and unmarshals the full updated
// item into out. It returns false if the item does not exist.
func (t *table) update(ctx context.Context, id string, fields []models.Field, out any) (bool, error) {
	if len(fields) == 0 {
		return false, errEmptyUpdate
	}

	recordOperation(ctx, t.name, "update_item")

	update := expression.Set(expression.Name(fields[0].Attr), expression.Value(fields[0].Value))
	for _, f := range fields[1:] {
		update = update.Set(expression.Name(f.Attr), expression.Value(f.Value))
	}

	condition := expression.AttributeExists(expression.Name(t.keyAttr))

	expr, err := expression.NewBuilder().
		WithUpdate(update).
		WithCondition(condition).
		Build()
	if err != nil {
		return false, fmt.Errorf("failed to build expression: %w", err)
	}

	result, err := t.client.UpdateItem(ctx, &dynamodb.UpdateItemInput{
		TableName:                 aws.String(t.name),
		Key:                       t.key(id),
		UpdateExpression:          expr.Update(),
		ConditionExpression:       expr.Condition(),
		ExpressionAttributeNames:  expr.Names(),
		ExpressionAttributeValues: expr.Values(),
		ReturnValues:              types.ReturnValueAllNew,
	})
	if err != nil {
		if isConditionalCheckFailed(err) {
			return false, nil
		}
		return false, wrapAWSError(ctx, err, "failed to update item")
	}

	if err := attributevalue.UnmarshalMap(result.Attributes, out); err != nil {
		return false, fmt.Errorf("failed to unmarshal item: %w", err)
	}

	return true, nil
}
