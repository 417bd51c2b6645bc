package user

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestEnsureUser(t *testing.T) {
	ctx := context.Background()

	t.Run("creates a member record on first sign-in", func(t *testing.T) {
		repo := &StubUserRepo{}
		service := NewUserService(repo)

		created, err := service.EnsureUser(ctx, "idp_123", "Ada", "ada@example.com")

		assert.NoError(t, err)
		assert.Equal(t, "idp_123", created.Uid)
		assert.Equal(t, RoleMember, created.Role)
		assert.NotZero(t, created.Id)
	})

	t.Run("returns existing record on subsequent sign-ins", func(t *testing.T) {
		repo := &StubUserRepo{}
		service := NewUserService(repo)

		first, err := service.EnsureUser(ctx, "idp_123", "Ada", "ada@example.com")
		assert.NoError(t, err)
		second, err := service.EnsureUser(ctx, "idp_123", "Ada L.", "ada@example.com")
		assert.NoError(t, err)

		assert.Equal(t, first.Id, second.Id)
		assert.Len(t, repo.Users, 1)
		// display name is not overwritten by later tokens
		assert.Equal(t, "Ada", second.DisplayName)
	})
}

func TestChangeRole(t *testing.T) {
	t.Run("staff can promote a member", func(t *testing.T) {
		repo := &StubUserRepo{}
		service := NewUserService(repo)
		staffId, _ := repo.CreateUser(context.Background(), User{Uid: "staff", Role: RoleStaff})
		memberId, _ := repo.CreateUser(context.Background(), User{Uid: "member", Role: RoleMember})
		staff, _ := repo.GetUser(context.Background(), staffId)
		ctx := WithUser(context.Background(), staff)

		updated, err := service.ChangeRole(ctx, memberId, RoleStaff)

		assert.NoError(t, err)
		assert.Equal(t, RoleStaff, updated.Role)
	})

	t.Run("member cannot change roles", func(t *testing.T) {
		repo := &StubUserRepo{}
		service := NewUserService(repo)
		memberId, _ := repo.CreateUser(context.Background(), User{Uid: "member", Role: RoleMember})
		member, _ := repo.GetUser(context.Background(), memberId)
		ctx := WithUser(context.Background(), member)

		_, err := service.ChangeRole(ctx, memberId, RoleStaff)

		assert.ErrorIs(t, err, ErrNotAllowed)
	})

	t.Run("unknown role is rejected", func(t *testing.T) {
		repo := &StubUserRepo{}
		service := NewUserService(repo)
		staffId, _ := repo.CreateUser(context.Background(), User{Uid: "staff", Role: RoleStaff})
		staff, _ := repo.GetUser(context.Background(), staffId)
		ctx := WithUser(context.Background(), staff)

		_, err := service.ChangeRole(ctx, staffId, Role("admin"))

		assert.Error(t, err)
	})

	t.Run("anonymous context is rejected", func(t *testing.T) {
		repo := &StubUserRepo{}
		service := NewUserService(repo)

		_, err := service.ChangeRole(context.Background(), 1, RoleStaff)

		assert.ErrorIs(t, err, ErrNoUser)
	})
}
