package services_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lifecheck/lifecheck/models"
	"github.com/lifecheck/lifecheck/services"
	"github.com/lifecheck/lifecheck/stores"
)

func TestResolvePrincipal(t *testing.T) {
	mem := stores.NewMemoryStore()
	ctx := context.Background()

	user := &models.User{
		Username:     "alice",
		Email:        "a@x.com",
		PasswordHash: "$2a$10$fakefakefakefakefakefake",
		Roles:        "USER,ADMIN",
	}
	require.NoError(t, mem.Create(ctx, user))

	dir := services.NewUserDirectory(mem)
	principal, err := dir.ResolvePrincipal(ctx, "alice")
	require.NoError(t, err)

	assert.Equal(t, user.ID, principal.UserID)
	assert.Equal(t, "alice", principal.Username)
	assert.Equal(t, user.PasswordHash, principal.PasswordHash)
	assert.Equal(t, services.RoleSet{"USER", "ADMIN"}, principal.Roles)
	assert.True(t, principal.HasRole("ADMIN"))
}

func TestResolvePrincipalDefaultRole(t *testing.T) {
	mem := stores.NewMemoryStore()
	ctx := context.Background()

	require.NoError(t, mem.Create(ctx, &models.User{
		Username: "bob",
		Email:    "b@x.com",
		Roles:    " , ",
	}))

	dir := services.NewUserDirectory(mem)
	principal, err := dir.ResolvePrincipal(ctx, "bob")
	require.NoError(t, err)
	assert.Equal(t, services.RoleSet{models.DefaultRole}, principal.Roles)
}

func TestResolvePrincipalNotFound(t *testing.T) {
	dir := services.NewUserDirectory(stores.NewMemoryStore())
	_, err := dir.ResolvePrincipal(context.Background(), "ghost")
	assert.ErrorIs(t, err, services.ErrUserNotFound)
}
