package auth

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/TahjibNil75/trackIT/internal/domain"
)

func TestTokenRoundTrip(t *testing.T) {
	tm := NewTokenManager("secret", 5, 10)
	user := &domain.User{ID: "u1", Email: "a@example.com", Role: domain.RoleManager}

	issued, err := tm.GenerateToken(user, domain.TokenKindAccess)
	require.NoError(t, err)
	require.NotEmpty(t, issued.Token)

	claims, err := tm.ParseToken(issued.Token, domain.TokenKindAccess)
	require.NoError(t, err)
	assert.Equal(t, "u1", claims.UserID)
	assert.Equal(t, domain.RoleManager, claims.Role)
}

func TestParseTokenRejectsWrongKind(t *testing.T) {
	tm := NewTokenManager("secret", 5, 10)
	issued, err := tm.GenerateToken(&domain.User{ID: "u1"}, domain.TokenKindRefresh)
	require.NoError(t, err)

	_, err = tm.ParseToken(issued.Token, domain.TokenKindAccess)
	assert.Error(t, err)

	_, err = tm.ParseToken(issued.Token, domain.TokenKindRefresh)
	assert.NoError(t, err)
}

func TestParseTokenRejectsForeignSecret(t *testing.T) {
	issued, err := NewTokenManager("one", 5, 10).GenerateToken(&domain.User{ID: "u1"}, domain.TokenKindAccess)
	require.NoError(t, err)

	_, err = NewTokenManager("two", 5, 10).ParseToken(issued.Token, domain.TokenKindAccess)
	assert.Error(t, err)
}

func TestPasswordHashing(t *testing.T) {
	hash, err := HashPassword("correct horse", 4)
	require.NoError(t, err)
	assert.NoError(t, ComparePassword(hash, "correct horse"))
	assert.Error(t, ComparePassword(hash, "wrong"))
}
