package bootstrap

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
	"github.com/wolfeidau/directory/internal/models"
	awsstore "github.com/wolfeidau/directory/internal/store/aws"
)

// tableSpec is a table keyed on a string hash key with one GSI over a unique attribute.
type tableSpec struct {
	name       string
	keyAttr    string
	indexName  string
	uniqueAttr string
}

func organizationsTable(name string) tableSpec {
	return tableSpec{
		name:       name,
		keyAttr:    models.AttrOrgID,
		indexName:  awsstore.OrganizationNameIndex,
		uniqueAttr: models.AttrName,
	}
}

func usersTable(name string) tableSpec {
	return tableSpec{
		name:       name,
		keyAttr:    models.AttrUserID,
		indexName:  awsstore.UserEmailIndex,
		uniqueAttr: models.AttrEmail,
	}
}

// CreateDirectoryTables creates the organizations and users tables
// If cleanResources is true, deletes existing tables first to ensure clean state
// If cleanResources is false, reuses existing tables (preserves data)
func CreateDirectoryTables(ctx context.Context, client *dynamodb.Client, env string, cleanResources bool) (orgsTable, users string, err error) {
	orgsTableName := fmt.Sprintf("%s_organizations", env)
	usersTableName := fmt.Sprintf("%s_users", env)

	if err := createTable(ctx, client, organizationsTable(orgsTableName), cleanResources); err != nil {
		return "", "", fmt.Errorf("failed to create organizations table: %w", err)
	}

	if err := createTable(ctx, client, usersTable(usersTableName), cleanResources); err != nil {
		return "", "", fmt.Errorf("failed to create users table: %w", err)
	}

	return orgsTableName, usersTableName, nil
}

// CreateOrganizationsTable creates a single organizations table (exported for test usage)
// Always deletes existing table first to ensure clean state for tests
func CreateOrganizationsTable(ctx context.Context, client *dynamodb.Client, tableName string) error {
	return createTable(ctx, client, organizationsTable(tableName), true)
}

// CreateUsersTable creates a single users table (exported for test usage)
// Always deletes existing table first to ensure clean state for tests
func CreateUsersTable(ctx context.Context, client *dynamodb.Client, tableName string) error {
	return createTable(ctx, client, usersTable(tableName), true)
}

func createTable(ctx context.Context, client *dynamodb.Client, def tableSpec, cleanResources bool) error {
	if cleanResources {
		if err := deleteTableIfExists(ctx, client, def.name); err != nil {
			return err
		}
	}

	input := &dynamodb.CreateTableInput{
		TableName: aws.String(def.name),
		KeySchema: []types.KeySchemaElement{
			{
				AttributeName: aws.String(def.keyAttr),
				KeyType:       types.KeyTypeHash,
			},
		},
		AttributeDefinitions: []types.AttributeDefinition{
			{
				AttributeName: aws.String(def.keyAttr),
				AttributeType: types.ScalarAttributeTypeS,
			},
			{
				AttributeName: aws.String(def.uniqueAttr),
				AttributeType: types.ScalarAttributeTypeS,
			},
		},
		GlobalSecondaryIndexes: []types.GlobalSecondaryIndex{
			{
				IndexName: aws.String(def.indexName),
				KeySchema: []types.KeySchemaElement{
					{
						AttributeName: aws.String(def.uniqueAttr),
						KeyType:       types.KeyTypeHash,
					},
				},
				// uniqueness checks only read the table key
				Projection: &types.Projection{
					ProjectionType: types.ProjectionTypeKeysOnly,
				},
			},
		},
		BillingMode: types.BillingModePayPerRequest,
	}

	_, err := client.CreateTable(ctx, input)
	if err != nil {
		var resourceInUse *types.ResourceInUseException
		if !cleanResources && errors.As(err, &resourceInUse) {
			return nil // Table exists, reuse it
		}
		return err
	}

	waiter := dynamodb.NewTableExistsWaiter(client)
	return waiter.Wait(ctx, &dynamodb.DescribeTableInput{
		TableName: aws.String(def.name),
	}, 30*time.Second)
}

// deleteTableIfExists attempts to delete a table if it exists
func deleteTableIfExists(ctx context.Context, client *dynamodb.Client, tableName string) error {
	_, err := client.DeleteTable(ctx, &dynamodb.DeleteTableInput{
		TableName: aws.String(tableName),
	})
	if err != nil {
		var resourceNotFound *types.ResourceNotFoundException
		if errors.As(err, &resourceNotFound) {
			return nil
		}
		return err
	}

	waiter := dynamodb.NewTableNotExistsWaiter(client)
	return waiter.Wait(ctx, &dynamodb.DescribeTableInput{
		TableName: aws.String(tableName),
	}, 30*time.Second)
}

// DeleteTables removes the organizations and users tables
func DeleteTables(ctx context.Context, client *dynamodb.Client, orgsTable, usersTable string) error {
	if err := deleteTableIfExists(ctx, client, orgsTable); err != nil {
		return fmt.Errorf("failed to delete organizations table: %w", err)
	}

	if err := deleteTableIfExists(ctx, client, usersTable); err != nil {
		return fmt.Errorf("failed to delete users table: %w", err)
	}

	return nil
}
