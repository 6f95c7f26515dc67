//go:build integration

package postgres

import (
	"context"
	"fmt"
	"testing"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/wait"
	"github.com/wolfeidau/directory/internal/models"
	"github.com/wolfeidau/directory/internal/store"
)

func setupPostgresContainer(t *testing.T, ctx context.Context) (store.Stores, *pgxpool.Pool) {
	req := testcontainers.ContainerRequest{
		Image:        "postgres:18-alpine",
		ExposedPorts: []string{"5432/tcp"},
		Env: map[string]string{
			"POSTGRES_USER":     "test",
			"POSTGRES_PASSWORD": "test",
			"POSTGRES_DB":       "testdb",
		},
		WaitingFor: wait.ForLog("database system is ready to accept connections").WithOccurrence(2),
	}

	container, err := testcontainers.GenericContainer(ctx, testcontainers.GenericContainerRequest{
		ContainerRequest: req,
		Started:          true,
	})
	require.NoError(t, err)
	t.Cleanup(func() { _ = container.Terminate(ctx) })

	host, err := container.Host(ctx)
	require.NoError(t, err)

	port, err := container.MappedPort(ctx, "5432")
	require.NoError(t, err)

	stores, pool, err := Open(ctx, &Config{
		PoolConfig: PoolConfig{
			ConnString: fmt.Sprintf("postgres://test:test@%s:%s/testdb?sslmode=disable", host, port.Port()),
		},
		AutoMigrate: true,
	})
	require.NoError(t, err)
	t.Cleanup(pool.Close)

	return stores, pool
}

func strPtr(s string) *string { return &s }

func TestIntegration_DirectoryStores(t *testing.T) {
	ctx := context.Background()
	stores, pool := setupPostgresContainer(t, ctx)

	acme := &models.Organization{OrgID: "org-1", Name: "Acme", Description: "Widgets"}
	globex := &models.Organization{OrgID: "org-2", Name: "Globex", Description: "Gadgets"}

	t.Run("migrations are idempotent", func(t *testing.T) {
		require.NoError(t, RunMigrations(ctx, pool))
	})

	t.Run("create and get organizations", func(t *testing.T) {
		require.NoError(t, stores.Organizations.Create(ctx, acme))
		require.NoError(t, stores.Organizations.Create(ctx, globex))

		retrieved, err := stores.Organizations.Get(ctx, "org-1")
		require.NoError(t, err)
		require.Equal(t, acme, retrieved)

		_, err = stores.Organizations.Get(ctx, "missing")
		require.ErrorIs(t, err, store.ErrOrganizationNotFound)

		exists, err := stores.Organizations.Exists(ctx, "org-2")
		require.NoError(t, err)
		require.True(t, exists)
	})

	t.Run("name uniqueness", func(t *testing.T) {
		taken, err := stores.Organizations.NameTaken(ctx, "Acme", "")
		require.NoError(t, err)
		require.True(t, taken)

		taken, err = stores.Organizations.NameTaken(ctx, "Acme", "org-1")
		require.NoError(t, err)
		require.False(t, taken)

		err = stores.Organizations.Create(ctx, &models.Organization{OrgID: "org-3", Name: "Acme", Description: "dup"})
		require.ErrorIs(t, err, store.ErrOrganizationNameTaken)
	})

	t.Run("partial organization update", func(t *testing.T) {
		updated, err := stores.Organizations.Update(ctx, "org-1", models.OrganizationUpdate{Description: strPtr("Rockets")})
		require.NoError(t, err)
		require.Equal(t, &models.Organization{OrgID: "org-1", Name: "Acme", Description: "Rockets"}, updated)

		_, err = stores.Organizations.Update(ctx, "missing", models.OrganizationUpdate{Name: strPtr("x")})
		require.ErrorIs(t, err, store.ErrOrganizationNotFound)

		_, err = stores.Organizations.Update(ctx, "org-2", models.OrganizationUpdate{Name: strPtr("Acme")})
		require.ErrorIs(t, err, store.ErrOrganizationNameTaken)
	})

	t.Run("users", func(t *testing.T) {
		bob := &models.User{UserID: "user-1", OrgID: "org-1", Name: "Bob", Email: "bob@acme.com"}
		require.NoError(t, stores.Users.Create(ctx, bob))

		retrieved, err := stores.Users.Get(ctx, "user-1")
		require.NoError(t, err)
		require.Equal(t, bob, retrieved)

		taken, err := stores.Users.EmailTaken(ctx, "bob@acme.com", "user-2")
		require.NoError(t, err)
		require.True(t, taken)

		err = stores.Users.Create(ctx, &models.User{UserID: "user-2", OrgID: "org-2", Name: "Bobby", Email: "bob@acme.com"})
		require.ErrorIs(t, err, store.ErrUserEmailTaken)

		err = stores.Users.Create(ctx, &models.User{UserID: "user-3", OrgID: "missing", Name: "Eve", Email: "eve@acme.com"})
		require.ErrorIs(t, err, store.ErrOrganizationNotFound)

		updated, err := stores.Users.Update(ctx, "user-1", models.UserUpdate{Name: strPtr("Robert")})
		require.NoError(t, err)
		require.Equal(t, "Robert", updated.Name)
		require.Equal(t, "bob@acme.com", updated.Email)

		_, err = stores.Users.Update(ctx, "missing", models.UserUpdate{Name: strPtr("x")})
		require.ErrorIs(t, err, store.ErrUserNotFound)
	})
}
