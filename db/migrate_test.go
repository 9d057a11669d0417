package db

import (
	"fmt"
	"path/filepath"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"
)

func TestOpenWithMigrations(t *testing.T) {
	db, err := OpenWithMigrations(filepath.Join(t.TempDir(), "test.db"), zaptest.NewLogger(t).Sugar())
	require.NoError(t, err)
	defer db.Close()

	for _, table := range []string{"schema_migrations", "actors", "movies", "actor_movies", "movie_cast"} {
		var n int
		require.NoError(t, db.QueryRow("SELECT COUNT(*) FROM sqlite_master WHERE type='table' AND name=?", table).Scan(&n))
		assert.Equal(t, 1, n, table)
	}

	versions, err := AppliedVersions(db)
	require.NoError(t, err)
	assert.Equal(t, []string{"000", "001"}, versions)
}

func TestMigrate_Idempotent(t *testing.T) {
	path := filepath.Join(t.TempDir(), "test.db")

	db, err := OpenWithMigrations(path, nil)
	require.NoError(t, err)
	require.NoError(t, Migrate(db, nil))
	db.Close()

	db, err = OpenWithMigrations(path, nil)
	require.NoError(t, err)
	defer db.Close()

	var n int
	require.NoError(t, db.QueryRow("SELECT COUNT(*) FROM schema_migrations").Scan(&n))
	files, err := migrationFiles()
	require.NoError(t, err)
	assert.Equal(t, len(files), n)
}

func TestMigrationFiles_Sorted(t *testing.T) {
	files, err := migrationFiles()
	require.NoError(t, err)
	require.NotEmpty(t, files)
	assert.Equal(t, "000_create_schema_migrations.sql", files[0])
}

func TestMigrate_WrapsExecError(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	mock.ExpectQuery("SELECT EXISTS").WillReturnError(fmt.Errorf("no such table: schema_migrations"))
	mock.ExpectBegin()
	mock.ExpectExec("CREATE TABLE").WillReturnError(fmt.Errorf("disk I/O error"))
	mock.ExpectRollback()

	err = Migrate(db, nil)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "execute 000_create_schema_migrations.sql")
	assert.Contains(t, err.Error(), "disk I/O error")
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestMigrate_MissingTableAfterFirstMigration(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	// 000 reported as applied, then the table vanishes
	mock.ExpectQuery("SELECT EXISTS").WithArgs("000").
		WillReturnRows(sqlmock.NewRows([]string{"exists"}).AddRow(true))
	mock.ExpectQuery("SELECT EXISTS").WithArgs("001").
		WillReturnError(fmt.Errorf("no such table: schema_migrations"))

	err = Migrate(db, nil)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "not 000")
}
