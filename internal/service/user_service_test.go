package service

import (
	"context"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/TahjibNil75/trackIT/internal/domain"
	"github.com/TahjibNil75/trackIT/internal/repository/repotest"
	apperrors "github.com/TahjibNil75/trackIT/pkg/util/errorutil"
)

func TestUpdateRole(t *testing.T) {
	store := repotest.NewStore()
	svc := NewUserService(store.Users())
	ctx := context.Background()
	admin := store.AddUser("root", domain.RoleAdmin)
	otherAdmin := store.AddUser("root2", domain.RoleAdmin)
	manager := store.AddUser("manager", domain.RoleManager)
	alice := store.AddUser("alice", domain.RoleUser)

	updated, err := svc.UpdateRole(ctx, admin, alice.ID, domain.RoleITSupport)
	require.NoError(t, err)
	assert.Equal(t, domain.RoleITSupport, updated.Role)

	_, err = svc.UpdateRole(ctx, admin, otherAdmin.ID, domain.RoleUser)
	domainErr := apperrors.ToDomainError(err)
	require.NotNil(t, domainErr)
	assert.Equal(t, "FORBIDDEN", domainErr.Code)
	assert.Equal(t, "Cannot change role of an ADMIN user.", domainErr.Message)

	_, err = svc.UpdateRole(ctx, manager, alice.ID, domain.RoleUser)
	assert.True(t, apperrors.HasCode(err, "FORBIDDEN"))

	_, err = svc.UpdateRole(ctx, admin, alice.ID, domain.Role("root"))
	assert.True(t, apperrors.HasCode(err, "VALIDATION_FAILED"))

	_, err = svc.UpdateRole(ctx, admin, "ghost", domain.RoleUser)
	assert.True(t, apperrors.HasCode(err, "NOT_FOUND"))
}

func TestUpdateStatus(t *testing.T) {
	store := repotest.NewStore()
	svc := NewUserService(store.Users())
	ctx := context.Background()
	admin := store.AddUser("root", domain.RoleAdmin)
	alice := store.AddUser("alice", domain.RoleUser)

	updated, err := svc.UpdateStatus(ctx, admin, alice.ID, false)
	require.NoError(t, err)
	assert.False(t, updated.IsActive)

	_, err = svc.UpdateStatus(ctx, admin, admin.ID, false)
	domainErr := apperrors.ToDomainError(err)
	require.NotNil(t, domainErr)
	assert.Equal(t, "Cannot change status of an ADMIN user.", domainErr.Message)
}

func TestListUsers(t *testing.T) {
	store := repotest.NewStore()
	svc := NewUserService(store.Users())
	ctx := context.Background()
	store.AddUser("root", domain.RoleAdmin)
	for _, name := range []string{"a", "b", "c"} {
		store.AddUser(name, domain.RoleUser)
	}

	page, err := svc.ListUsers(ctx, UserListFilter{Role: ptr(domain.RoleUser), PageSize: 2, Page: 2})
	require.NoError(t, err)
	assert.Equal(t, 3, page.Total)
	assert.Len(t, page.Users, 1)

	inactive, err := svc.ListUsers(ctx, UserListFilter{IsActive: ptr(false)})
	require.NoError(t, err)
	assert.Empty(t, inactive.Users)

	_, err = svc.ListUsers(ctx, UserListFilter{PageSize: 101})
	assert.True(t, apperrors.HasCode(err, "VALIDATION_FAILED"))

	_, err = svc.ListUsers(ctx, UserListFilter{PageSize: 10, Page: math.MaxInt})
	assert.True(t, apperrors.HasCode(err, "VALIDATION_FAILED"))
}
