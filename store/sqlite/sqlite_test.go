package sqlite

import (
	"context"
	"fmt"
	"path/filepath"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest"
	"go.uber.org/zap/zaptest/observer"

	"github.com/teranos/actorgraph/errors"
	qtesting "github.com/teranos/actorgraph/internal/testing"
	"github.com/teranos/actorgraph/models"
	"github.com/teranos/actorgraph/store"
	"github.com/teranos/actorgraph/store/storetest"
)

func TestStoreContract(t *testing.T) {
	storetest.Run(t, func(t *testing.T) store.Store {
		return New(qtesting.CreateTestDB(t), zaptest.NewLogger(t).Sugar())
	})
}

func TestOpen_FileBacked(t *testing.T) {
	path := filepath.Join(t.TempDir(), "actors.db")

	s, err := Open(path, nil)
	require.NoError(t, err)
	require.NoError(t, s.Import(context.Background(), storetest.Dataset()))
	require.NoError(t, s.Close())

	s, err = Open(path, nil)
	require.NoError(t, err)
	defer s.Close()

	a, err := s.ActorByName(context.Background(), "Zendaya")
	require.NoError(t, err)
	assert.Equal(t, storetest.Zendaya, a.ID)
}

func TestImport_RejectsInvalidDataset(t *testing.T) {
	s := New(qtesting.CreateTestDB(t), nil)

	err := s.Import(context.Background(), models.Dataset{Actors: []models.Actor{{ID: "a"}}})
	require.Error(t, err)
	assert.True(t, errors.IsInvalidRequestError(err))

	stats, err := s.Stats(context.Background())
	require.NoError(t, err)
	assert.Zero(t, stats.Actors)
}

func TestDrop(t *testing.T) {
	s := New(qtesting.CreateTestDB(t), nil)
	ctx := context.Background()
	require.NoError(t, s.Import(ctx, storetest.Dataset()))

	require.NoError(t, s.Drop(ctx))

	stats, err := s.Stats(ctx)
	require.NoError(t, err)
	assert.Zero(t, stats.Actors)
	assert.Zero(t, stats.Movies)
	assert.Zero(t, stats.Credits)

	// the store stays usable
	require.NoError(t, s.Import(ctx, storetest.Dataset()))
	_, err = s.ActorByID(ctx, storetest.Zac)
	require.NoError(t, err)
}

func TestImport_LargeRelationBatches(t *testing.T) {
	s := New(qtesting.CreateTestDB(t), nil)

	var ds models.Dataset
	for i := 0; i < relationBatch+25; i++ {
		id := fmt.Sprintf("m%04d", i)
		ds.Movies = append(ds.Movies, models.Movie{ID: id, Title: id, Year: 2000, Actors: []string{"a"}})
	}
	require.NoError(t, s.Import(context.Background(), ds))

	movies, err := s.AllMovies(context.Background())
	require.NoError(t, err)
	require.Len(t, movies, relationBatch+25)
	assert.Equal(t, []string{"a"}, movies[len(movies)-1].Actors)
}

func TestActorByID_QueryError(t *testing.T) {
	database, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer database.Close()

	mock.ExpectQuery("SELECT .* FROM actors a WHERE a.id = ?").
		WithArgs("a1").
		WillReturnError(fmt.Errorf("database disk image is malformed"))

	s := New(database, nil)
	_, err = s.ActorByID(context.Background(), "a1")
	require.Error(t, err)
	assert.False(t, errors.IsNotFoundError(err))
	assert.Contains(t, err.Error(), "actor a1")
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestClosedDatabaseIsUnavailable(t *testing.T) {
	database := qtesting.CreateTestDB(t)
	s := New(database, zaptest.NewLogger(t).Sugar())
	require.NoError(t, s.Close())

	_, err := s.ActorByID(context.Background(), storetest.Zac)
	require.Error(t, err)
	assert.True(t, errors.IsServiceUnavailableError(err))
	assert.False(t, errors.IsNotFoundError(err))

	_, err = s.MovieCounts(context.Background(), []string{storetest.Zac})
	assert.True(t, errors.IsServiceUnavailableError(err))
}

func TestQueriesLogThroughStoreLogger(t *testing.T) {
	core, logs := observer.New(zap.DebugLevel)
	s := New(qtesting.CreateTestDB(t), zap.New(core).Sugar())
	require.NoError(t, s.Import(context.Background(), storetest.Dataset()))

	_, err := s.Export(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 1, logs.FilterMessage("Exported dataset").Len())
	assert.NotZero(t, logs.FilterMessage("store query").Len())
}

func TestMovieCounts_ScanError(t *testing.T) {
	database, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer database.Close()

	mock.ExpectQuery("SELECT a.id, COUNT").
		WillReturnRows(sqlmock.NewRows([]string{"id", "count"}).AddRow("a1", "many"))

	s := New(database, nil)
	_, err = s.MovieCounts(context.Background(), []string{"a1"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "scan movie count")
}

func TestEscapeLike(t *testing.T) {
	assert.Equal(t, `100\%`, escapeLike("100%"))
	assert.Equal(t, `a\_b`, escapeLike("a_b"))
	assert.Equal(t, `c:\\`, escapeLike(`c:\`))
	assert.Equal(t, "plain", escapeLike("plain"))
}

func TestPlaceholders(t *testing.T) {
	assert.Equal(t, "", placeholders(0))
	assert.Equal(t, "?", placeholders(1))
	assert.Equal(t, "?, ?, ?", placeholders(3))
}
