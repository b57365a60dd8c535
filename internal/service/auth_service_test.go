package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/TahjibNil75/trackIT/internal/config"
	"github.com/TahjibNil75/trackIT/internal/domain"
	"github.com/TahjibNil75/trackIT/internal/repository/repotest"
	apperrors "github.com/TahjibNil75/trackIT/pkg/util/errorutil"
)

func newAuthService(store *repotest.Store) *AuthService {
	return NewAuthService(config.AuthConfig{JWTSecret: "test", AccessTokenTTLMinutes: 5, RefreshTokenTTLMinutes: 10, BcryptCost: 4}, store.Users())
}

func TestSignupAndLogin(t *testing.T) {
	store := repotest.NewStore()
	svc := newAuthService(store)
	ctx := context.Background()

	user, err := svc.Signup(ctx, SignupInput{
		Username:        "carol",
		Email:           "Carol@Example.com",
		Password:        "s3cret-pass",
		ConfirmPassword: "s3cret-pass",
	})
	require.NoError(t, err)
	assert.Equal(t, domain.RoleUser, user.Role)
	assert.Equal(t, "carol@example.com", user.Email)
	assert.NotEqual(t, "s3cret-pass", user.PasswordHash)

	_, err = svc.Signup(ctx, SignupInput{Username: "carol2", Email: "carol@example.com", Password: "another-pass", ConfirmPassword: "another-pass"})
	assert.True(t, apperrors.HasCode(err, "CONFLICT"))

	result, err := svc.Login(ctx, "carol@example.com", "s3cret-pass")
	require.NoError(t, err)
	assert.NotEmpty(t, result.AccessToken.Token)
	assert.NotEmpty(t, result.RefreshToken.Token)

	_, err = svc.Login(ctx, "carol@example.com", "wrong-pass")
	assert.True(t, apperrors.HasCode(err, "INVALID_CREDENTIALS"))

	_, err = svc.Login(ctx, "nobody@example.com", "whatever")
	assert.True(t, apperrors.HasCode(err, "NOT_FOUND"))

	refreshed, err := svc.Refresh(ctx, result.RefreshToken.Token)
	require.NoError(t, err)
	assert.NotEmpty(t, refreshed.AccessToken.Token)

	_, err = svc.Refresh(ctx, result.AccessToken.Token)
	assert.True(t, apperrors.HasCode(err, "UNAUTHORIZED"))
}

func TestSignupValidation(t *testing.T) {
	svc := newAuthService(repotest.NewStore())

	_, err := svc.Signup(context.Background(), SignupInput{
		Username:        "c",
		Email:           "not-an-email",
		Password:        "short",
		ConfirmPassword: "different",
	})
	domainErr := apperrors.ToDomainError(err)
	require.NotNil(t, domainErr)
	assert.Equal(t, "VALIDATION_FAILED", domainErr.Code)
	for _, field := range []string{"username", "email", "password", "confirm_password"} {
		assert.Contains(t, domainErr.Details, field)
	}
}

func TestLoginRejectsInactiveAccount(t *testing.T) {
	store := repotest.NewStore()
	svc := newAuthService(store)
	ctx := context.Background()

	user, err := svc.Signup(ctx, SignupInput{Username: "dan", Email: "dan@example.com", Password: "password1", ConfirmPassword: "password1"})
	require.NoError(t, err)
	user.IsActive = false
	require.NoError(t, store.Users().Update(ctx, user))

	_, err = svc.Login(ctx, "dan@example.com", "password1")
	assert.True(t, apperrors.HasCode(err, "FORBIDDEN"))
}

func TestChangePassword(t *testing.T) {
	store := repotest.NewStore()
	svc := newAuthService(store)
	ctx := context.Background()

	user, err := svc.Signup(ctx, SignupInput{Username: "erin", Email: "erin@example.com", Password: "password1", ConfirmPassword: "password1"})
	require.NoError(t, err)

	err = svc.ChangePassword(ctx, user, "wrong-current", "password2", "password2")
	assert.True(t, apperrors.HasCode(err, "INVALID_CREDENTIALS"))

	require.NoError(t, svc.ChangePassword(ctx, user, "password1", "password2", "password2"))
	_, err = svc.Login(ctx, "erin@example.com", "password2")
	assert.NoError(t, err)
}
