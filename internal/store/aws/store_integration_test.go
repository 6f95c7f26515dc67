//go:build integration

package aws_test

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/stretchr/testify/require"
	"github.com/wolfeidau/directory/internal/awsconfig"
	"github.com/wolfeidau/directory/internal/bootstrap"
	"github.com/wolfeidau/directory/internal/models"
	"github.com/wolfeidau/directory/internal/store"
	awsstore "github.com/wolfeidau/directory/internal/store/aws"
)

// getDynamoDBClient creates a DynamoDB client for testing with LocalStack
func getDynamoDBClient(t *testing.T, ctx context.Context) *dynamodb.Client {
	opts := awsconfig.LocalOptions()
	cfg, err := awsconfig.Load(ctx, opts)
	require.NoError(t, err)

	return awsconfig.NewDynamoDBClient(cfg, opts)
}

func setupStores(t *testing.T) (context.Context, store.Stores) {
	t.Helper()
	ctx := context.Background()
	client := getDynamoDBClient(t, ctx)

	suffix := time.Now().UnixNano()
	orgsTable := fmt.Sprintf("test_organizations_%d", suffix)
	usersTable := fmt.Sprintf("test_users_%d", suffix)

	require.NoError(t, bootstrap.CreateOrganizationsTable(ctx, client, orgsTable))
	require.NoError(t, bootstrap.CreateUsersTable(ctx, client, usersTable))
	t.Cleanup(func() {
		_ = bootstrap.DeleteTables(context.Background(), client, orgsTable, usersTable)
	})

	return ctx, store.Stores{
		Organizations: awsstore.NewOrganizationStore(client, orgsTable),
		Users:         awsstore.NewUserStore(client, usersTable),
	}
}

func TestOrganizationStore_Integration(t *testing.T) {
	ctx, stores := setupStores(t)
	orgs := stores.Organizations

	org := &models.Organization{OrgID: "org-1", Name: "Acme", Description: "Anvils"}
	require.NoError(t, orgs.Create(ctx, org))

	got, err := orgs.Get(ctx, "org-1")
	require.NoError(t, err)
	require.Equal(t, org, got)

	exists, err := orgs.Exists(ctx, "org-1")
	require.NoError(t, err)
	require.True(t, exists)

	exists, err = orgs.Exists(ctx, "missing")
	require.NoError(t, err)
	require.False(t, exists)

	_, err = orgs.Get(ctx, "missing")
	require.ErrorIs(t, err, store.ErrOrganizationNotFound)

	t.Run("name index", func(t *testing.T) {
		taken, err := orgs.NameTaken(ctx, "Acme", "")
		require.NoError(t, err)
		require.True(t, taken)

		taken, err = orgs.NameTaken(ctx, "Acme", "org-1")
		require.NoError(t, err)
		require.False(t, taken)

		taken, err = orgs.NameTaken(ctx, "Globex", "")
		require.NoError(t, err)
		require.False(t, taken)
	})

	t.Run("partial update", func(t *testing.T) {
		desc := "Rockets"
		updated, err := orgs.Update(ctx, "org-1", models.OrganizationUpdate{Description: &desc})
		require.NoError(t, err)
		require.Equal(t, "Acme", updated.Name)
		require.Equal(t, "Rockets", updated.Description)

		_, err = orgs.Update(ctx, "missing", models.OrganizationUpdate{Description: &desc})
		require.ErrorIs(t, err, store.ErrOrganizationNotFound)
	})
}

func TestUserStore_Integration(t *testing.T) {
	ctx, stores := setupStores(t)
	users := stores.Users

	user := &models.User{UserID: "user-1", OrgID: "org-1", Name: "Bob", Email: "bob@x.com"}
	require.NoError(t, users.Create(ctx, user))

	got, err := users.Get(ctx, "user-1")
	require.NoError(t, err)
	require.Equal(t, user, got)

	taken, err := users.EmailTaken(ctx, "bob@x.com", "")
	require.NoError(t, err)
	require.True(t, taken)

	taken, err = users.EmailTaken(ctx, "bob@x.com", "user-1")
	require.NoError(t, err)
	require.False(t, taken)

	name := "Robert"
	updated, err := users.Update(ctx, "user-1", models.UserUpdate{Name: &name})
	require.NoError(t, err)
	require.Equal(t, "Robert", updated.Name)
	require.Equal(t, "bob@x.com", updated.Email)
	require.Equal(t, "org-1", updated.OrgID)

	_, err = users.Get(ctx, "missing")
	require.ErrorIs(t, err, store.ErrUserNotFound)
}
