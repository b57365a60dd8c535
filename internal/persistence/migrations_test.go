package persistence

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMigrationNamesAreOrdered(t *testing.T) {
	names, err := MigrationNames()
	require.NoError(t, err)
	require.NotEmpty(t, names)
	assert.Equal(t, "migrations/0001_init.sql", names[0])

	content, err := migrationFiles.ReadFile(names[0])
	require.NoError(t, err)
	assert.True(t, strings.Contains(string(content), "ON DELETE CASCADE"))
}
