package user

import (
	"context"
	"testing"

	"github.com/gatherly/gatherly/internal/test_utils"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// Runs the repository against a real Postgres instance. The in-memory SQLite
// tests cover the logic; this one covers the production dialect, where inserts
// depend on RETURNING id and the identity column.
func TestRepoAgainstPostgres(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping Postgres container test in short mode")
	}

	container, openDB := test_utils.TestWithDB()
	t.Cleanup(func() {
		_ = container.Terminate(context.Background())
	})
	db := openDB()
	t.Cleanup(func() {
		db.Close()
	})

	repo := NewUserRepo(db)
	ctx := context.Background()

	id, err := repo.CreateUser(ctx, User{Uid: "idp_pg", DisplayName: "Alex", Email: "alex@example.com"})
	require.NoError(t, err)
	require.NotZero(t, id)

	loaded, err := repo.GetUser(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, "idp_pg", loaded.Uid)
	assert.Equal(t, RoleMember, loaded.Role)

	found, err := repo.FindByUid(ctx, "idp_pg")
	require.NoError(t, err)
	require.NotNil(t, found)
	assert.Equal(t, id, found.Id)

	require.NoError(t, repo.UpdateRole(ctx, id, RoleStaff))
	loaded, err = repo.GetUser(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, RoleStaff, loaded.Role)
}
