package services

import (
	"context"
	"fmt"
	"testing"

	"credit-app/internal/core/domain"
	"credit-app/internal/pkg/pagination"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestUserService_ListUsers(t *testing.T) {
	env := newTestEnv(t)
	for i := 0; i < 5; i++ {
		env.signup(t, fmt.Sprintf("User %d", i), fmt.Sprintf("u%d@x.com", i), domain.RoleUser)
	}

	page, err := env.users.ListUsers(context.Background(), pagination.Params{Page: 2, Limit: 2})
	require.NoError(t, err)

	assert.Equal(t, int64(5), page.Meta.Total)
	assert.Equal(t, 3, page.Meta.TotalPages)
	require.Len(t, page.Items, 2)
	assert.Equal(t, "u2@x.com", page.Items[0].Email)
}

func TestUserService_SetRole(t *testing.T) {
	env := newTestEnv(t)
	admin := env.signup(t, "Root", "r@x.com", domain.RoleAdmin)
	user := env.signup(t, "Ada", "a@x.com", domain.RoleUser)
	ctx := context.Background()

	updated, err := env.users.SetRole(ctx, admin, user.UserID, "verifier")
	require.NoError(t, err)
	assert.Equal(t, "VERIFIER", updated.Role)

	_, err = env.users.SetRole(ctx, admin, admin.UserID, "USER")
	assert.ErrorIs(t, err, domain.ErrCannotChangeOwnRole)

	_, err = env.users.SetRole(ctx, admin, user.UserID, "OWNER")
	assert.ErrorIs(t, err, domain.ErrInvalidInput)

	_, err = env.users.SetRole(ctx, admin, 999, "USER")
	assert.ErrorIs(t, err, domain.ErrUserNotFound)
}

func TestUserService_DeleteUserCascadesLoans(t *testing.T) {
	env := newTestEnv(t)
	admin := env.signup(t, "Root", "r@x.com", domain.RoleAdmin)
	ada := env.signup(t, "Ada", "a@x.com", domain.RoleUser)
	bob := env.signup(t, "Bob", "b@x.com", domain.RoleUser)
	ctx := context.Background()

	env.applyLoan(t, ada, 100)
	env.applyLoan(t, ada, 200)
	env.applyLoan(t, bob, 300)

	require.NoError(t, env.users.DeleteUser(ctx, admin, ada.UserID))
	assert.Equal(t, 1, env.store.LoanCount())

	_, err := env.users.GetUser(ctx, ada.UserID)
	assert.ErrorIs(t, err, domain.ErrUserNotFound)

	assert.ErrorIs(t, env.users.DeleteUser(ctx, admin, ada.UserID), domain.ErrUserNotFound)
	assert.ErrorIs(t, env.users.DeleteUser(ctx, admin, admin.UserID), domain.ErrCannotDeleteSelf)
}

func TestUserService_FindByEmail(t *testing.T) {
	env := newTestEnv(t)
	env.signup(t, "Ada", "a@x.com", domain.RoleUser)

	user, err := env.users.FindByEmail(context.Background(), "  A@X.COM")
	require.NoError(t, err)
	assert.Equal(t, "Ada", user.Name)

	_, err = env.users.FindByEmail(context.Background(), "b@x.com")
	assert.ErrorIs(t, err, domain.ErrUserNotFound)
}

func TestUserService_RepositoryErrorsPassThrough(t *testing.T) {
	env := newTestEnv(t)
	env.store.FailWith(errBoom)

	_, err := env.users.ListUsers(context.Background(), pagination.Params{})
	assert.ErrorIs(t, err, errBoom)
}
