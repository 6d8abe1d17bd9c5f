package main

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMySQLMigrationsAvoidTimestampColumns(t *testing.T) {
	files, err := filepath.Glob("../../migrations/mysql/*.up.sql")
	require.NoError(t, err)
	require.NotEmpty(t, files)

	for _, file := range files {
		raw, err := os.ReadFile(file)
		require.NoError(t, err)
		assert.NotContains(t, strings.ToUpper(string(raw)), " TIMESTAMP", file)
	}
}

func TestDatabaseURL(t *testing.T) {
	t.Setenv("DB_USER", "tb")
	t.Setenv("DB_PASSWORD", "pw")
	t.Setenv("DB_HOST", "db")
	t.Setenv("DB_NAME", "talentbridge")
	t.Setenv("DB_PORT", "")

	assert.Equal(t, "mysql://tb:pw@tcp(db:3306)/talentbridge?multiStatements=true&parseTime=true", databaseURL("mysql"))
	assert.Equal(t, "postgres://tb:pw@db:5432/talentbridge?sslmode=disable", databaseURL("postgres"))
}
