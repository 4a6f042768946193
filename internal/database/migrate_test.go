package database

import (
	"context"
	"strings"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/iliyamo/swapi-mirror/internal/model"
)

func TestResourceDDLKeysOnExternalID(t *testing.T) {
	ddl := ResourceDDL(model.KindFilms)
	assert.True(t, strings.HasPrefix(ddl, "CREATE TABLE IF NOT EXISTS `films`"))
	assert.Contains(t, ddl, "external_id INT NOT NULL")
	assert.Contains(t, ddl, "`episode_id` INT NOT NULL DEFAULT 0")
	assert.Contains(t, ddl, "`title` TEXT NOT NULL")
	assert.Contains(t, ddl, "UNIQUE KEY uq_films_external_id (external_id)")
}

func TestMigrateCreatesAllTables(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	mock.ExpectExec("CREATE TABLE IF NOT EXISTS app_users").WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectExec("CREATE TABLE IF NOT EXISTS api_tokens").WillReturnResult(sqlmock.NewResult(0, 0))
	for _, k := range model.Kinds {
		mock.ExpectExec("CREATE TABLE IF NOT EXISTS `" + string(k) + "`").WillReturnResult(sqlmock.NewResult(0, 0))
	}

	require.NoError(t, Migrate(context.Background(), db))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestDSN(t *testing.T) {
	dsn := DSN("root", "pw", "db", "3306", "swapi")
	assert.Contains(t, dsn, "root:pw@tcp(db:3306)/swapi?")
	assert.Contains(t, dsn, "parseTime=true")
	assert.Contains(t, dsn, "charset=utf8mb4")
}
