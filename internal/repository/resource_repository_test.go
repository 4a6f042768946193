package repository

import (
	"context"
	"regexp"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/iliyamo/swapi-mirror/internal/model"
)

func TestUpsertStatementShape(t *testing.T) {
	rows := []model.Row{
		&model.Film{ExternalID: 1, Title: "A New Hope", EpisodeID: 4},
		&model.Film{ExternalID: 2, Title: "The Empire Strikes Back", EpisodeID: 5},
	}
	q, args := upsertStatement(model.KindFilms, rows)

	assert.Contains(t, q, "INSERT INTO `films` (`external_id`, `title`, `episode_id`,")
	assert.Contains(t, q, "VALUES (?,?,?,?,?,?,?),(?,?,?,?,?,?,?) ON DUPLICATE KEY UPDATE ")
	assert.Contains(t, q, "`title`=VALUES(`title`)")
	assert.NotContains(t, q, "`external_id`=VALUES")
	assert.Len(t, args, 14)
	assert.Equal(t, int64(2), args[7])
}

func TestResourceRepoUpsertChunksInOneTransaction(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	rows := make([]model.Row, 0, upsertChunk+5)
	for i := 1; i <= upsertChunk+5; i++ {
		rows = append(rows, &model.Person{ExternalID: int64(i), Name: "p"})
	}

	mock.ExpectBegin()
	mock.ExpectExec(regexp.QuoteMeta("INSERT INTO `people`")).WillReturnResult(sqlmock.NewResult(0, upsertChunk))
	mock.ExpectExec(regexp.QuoteMeta("INSERT INTO `people`")).WillReturnResult(sqlmock.NewResult(0, 5))
	mock.ExpectCommit()

	n, err := NewResourceRepo(db).Upsert(context.Background(), model.KindPeople, rows)
	require.NoError(t, err)
	assert.Equal(t, upsertChunk+5, n)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestResourceRepoUpsertRollsBackOnError(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	mock.ExpectBegin()
	mock.ExpectExec("INSERT INTO").WillReturnError(assert.AnError)
	mock.ExpectRollback()

	_, err = NewResourceRepo(db).Upsert(context.Background(), model.KindPlanets,
		[]model.Row{&model.Planet{ExternalID: 1}})
	assert.ErrorIs(t, err, assert.AnError)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestResourceRepoListAndCount(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	mock.ExpectQuery(regexp.QuoteMeta("SELECT COUNT(*) FROM `vehicles`")).
		WillReturnRows(sqlmock.NewRows([]string{"n"}).AddRow(39))
	cols := append([]string{"id"}, model.KindVehicles.Columns()...)
	mock.ExpectQuery(regexp.QuoteMeta("FROM `vehicles` ORDER BY id ASC LIMIT ? OFFSET ?")).
		WithArgs(2, 10).
		WillReturnRows(sqlmock.NewRows(cols).
			AddRow(11, 4, "Sand Crawler", "Digger Crawler", "wheeled", "Corellia", "150000", "36.8", "46", "30", "30", "50000", "2 months").
			AddRow(12, 6, "T-16 skyhopper", "T-16", "repulsorcraft", "Incom", "14500", "10.4", "1", "1", "1200", "50", "0"))

	repo := NewResourceRepo(db)
	n, err := repo.Count(context.Background(), model.KindVehicles)
	require.NoError(t, err)
	assert.Equal(t, 39, n)

	rows, err := repo.List(context.Background(), model.KindVehicles, 2, 10)
	require.NoError(t, err)
	require.Len(t, rows, 2)
	v := rows[0].(*model.Vehicle)
	assert.Equal(t, int64(11), v.ID)
	assert.Equal(t, int64(4), v.ExternalID)
	assert.Equal(t, "Sand Crawler", v.Name)
	assert.Equal(t, "2 months", v.Consumables)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestResourceRepoDeleteAll(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	mock.ExpectExec(regexp.QuoteMeta("DELETE FROM `species`")).WillReturnResult(sqlmock.NewResult(0, 37))
	n, err := NewResourceRepo(db).DeleteAll(context.Background(), model.KindSpecies)
	require.NoError(t, err)
	assert.Equal(t, int64(37), n)
}
