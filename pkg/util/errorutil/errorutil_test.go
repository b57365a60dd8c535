package errorutil

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestToDomainError(t *testing.T) {
	assert.Nil(t, ToDomainError(nil))

	notFound := ToDomainError(fmt.Errorf("lookup: %w", pgx.ErrNoRows))
	require.NotNil(t, notFound)
	assert.Equal(t, "NOT_FOUND", notFound.Code)
	assert.Equal(t, http.StatusNotFound, notFound.HTTPStatus)

	internal := ToDomainError(errors.New("boom"))
	assert.Equal(t, "INTERNAL_ERROR", internal.Code)
	assert.Equal(t, http.StatusInternalServerError, internal.HTTPStatus)

	wrapped := fmt.Errorf("ctx: %w", NewConflict("taken", nil))
	assert.Equal(t, "CONFLICT", ToDomainError(wrapped).Code)

	badUUID := ToDomainError(fmt.Errorf("get ticket: %w", &pgconn.PgError{Code: "22P02", Message: "invalid input syntax for type uuid"}))
	assert.Equal(t, "NOT_FOUND", badUUID.Code)
	assert.Equal(t, http.StatusNotFound, badUUID.HTTPStatus)

	otherPg := ToDomainError(&pgconn.PgError{Code: "23505"})
	assert.Equal(t, "INTERNAL_ERROR", otherPg.Code)
}

func TestMapErrorKeepsNil(t *testing.T) {
	assert.NoError(t, MapError(nil))
}

func TestHasCode(t *testing.T) {
	assert.True(t, HasCode(NewForbidden("no"), "FORBIDDEN"))
	assert.False(t, HasCode(NewForbidden("no"), "NOT_FOUND"))
	assert.False(t, HasCode(errors.New("plain"), "FORBIDDEN"))
}
