package database

import (
	"testing"
	"testing/fstest"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestListMigrationsOrdersAndFilters(t *testing.T) {
	fsys := fstest.MapFS{
		"migrations/0002_add_index.up.sql":         {Data: []byte("CREATE INDEX;")},
		"migrations/0001_create_profiles.up.sql":   {Data: []byte("CREATE TABLE;")},
		"migrations/0001_create_profiles.down.sql": {Data: []byte("DROP TABLE;")},
		"migrations/README.md":                     {Data: []byte("docs")},
	}

	names, err := ListMigrations(fsys, "migrations")
	require.NoError(t, err)
	assert.Equal(t, []string{
		"0001_create_profiles.up.sql",
		"0002_add_index.up.sql",
	}, names)
}

func TestIsUpMigration(t *testing.T) {
	assert.True(t, isUpMigration("0001_create_profiles.up.sql"))
	assert.False(t, isUpMigration("0001_create_profiles.down.sql"))
	assert.False(t, isUpMigration("notes.txt"))
}
