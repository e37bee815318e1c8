package database_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/iliyamo/blog-api/internal/database"
	"github.com/iliyamo/blog-api/internal/database/dbtest"
)

func TestMigrateCreatesSchema(t *testing.T) {
	db := dbtest.New(t)

	var tables []string
	err := db.Select(&tables, `SELECT name FROM sqlite_master WHERE type = 'table' AND name IN ('users','posts','comments','likes') ORDER BY name`)
	require.NoError(t, err)
	assert.Equal(t, []string{"comments", "likes", "posts", "users"}, tables)
}

func TestMigrateIsIdempotent(t *testing.T) {
	db := dbtest.New(t)

	assert.NoError(t, database.Migrate(db))
}

func TestForeignKeysAreEnforced(t *testing.T) {
	db := dbtest.New(t)

	_, err := db.Exec(`INSERT INTO likes (post_id, user_id, created_at) VALUES (999, 999, CURRENT_TIMESTAMP)`)
	assert.Error(t, err)
}
