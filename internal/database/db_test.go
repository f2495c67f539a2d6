package database

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Alias1177/Regimes/internal/regime"
	"github.com/Alias1177/Regimes/models"
)

func newMockDB(t *testing.T) (*DB, sqlmock.Sqlmock) {
	t.Helper()
	conn, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { conn.Close() })
	return NewWithDB(sqlx.NewDb(conn, "postgres"), time.Second), mock
}

func TestMigrate(t *testing.T) {
	db, mock := newMockDB(t)
	mock.ExpectExec("CREATE TABLE IF NOT EXISTS series_points").
		WillReturnResult(sqlmock.NewResult(0, 0))

	require.NoError(t, db.Migrate(context.Background()))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestNew_RequiresDSN(t *testing.T) {
	_, err := New(context.Background(), DefaultConfig())
	assert.Error(t, err)
}

func TestSavePoints(t *testing.T) {
	db, mock := newMockDB(t)
	t1 := time.Date(2024, 1, 2, 0, 0, 0, 0, time.UTC)
	t2 := t1.AddDate(0, 0, 1)

	mock.ExpectBegin()
	mock.ExpectExec("INSERT INTO series_points").WithArgs("EUR/USD", t1, 1.1).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec("INSERT INTO series_points").WithArgs("EUR/USD", t2, 1.2).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	n, err := db.SavePoints(context.Background(), "EUR/USD", []models.Point{
		{Time: t1, Value: 1.1},
		{Time: t2, Value: 1.2},
	})
	require.NoError(t, err)
	assert.Equal(t, 2, n)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestSavePoints_RollsBack(t *testing.T) {
	db, mock := newMockDB(t)

	mock.ExpectBegin()
	mock.ExpectExec("INSERT INTO series_points").WillReturnError(errors.New("disk full"))
	mock.ExpectRollback()

	_, err := db.SavePoints(context.Background(), "EUR/USD", []models.Point{{Time: time.Now(), Value: 1}})
	assert.ErrorContains(t, err, "disk full")
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestLoadSeries(t *testing.T) {
	db, mock := newMockDB(t)
	t1 := time.Date(2024, 1, 2, 0, 0, 0, 0, time.UTC)

	mock.ExpectQuery("FROM series_points").
		WithArgs("EUR/USD", sqlmock.AnyArg(), sqlmock.AnyArg()).
		WillReturnRows(sqlmock.NewRows([]string{"ts", "value"}).
			AddRow(t1, 1.1).
			AddRow(t1.AddDate(0, 0, 1), 1.2))

	points, err := db.Series(context.Background(), "EUR/USD")
	require.NoError(t, err)
	assert.Equal(t, []float64{1.1, 1.2}, models.Values(points))
	assert.Equal(t, t1, points[0].Time)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestSaveRun(t *testing.T) {
	db, mock := newMockDB(t)
	regimes := []regime.Regime{
		{Start: 0, End: 3, Direction: regime.Down, Label: regime.LabelDown, StartValue: 10, EndValue: 8},
		{Start: 3, End: 5, Direction: regime.Up, Label: regime.LabelNeutral, StartValue: 7, EndValue: 9},
	}

	mock.ExpectBegin()
	mock.ExpectQuery("INSERT INTO regime_runs").
		WithArgs("EUR/USD", "trailing", sqlmock.AnyArg(), 5).
		WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(7))
	mock.ExpectExec("INSERT INTO regime_segments").
		WithArgs(7, 0, 3, "down", 0, 10.0, 8.0, false).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec("INSERT INTO regime_segments").
		WithArgs(7, 3, 5, "up", nil, 7.0, 9.0, false).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	id, err := db.SaveRun(context.Background(), "EUR/USD", regime.DefaultOptions(3), 5, regimes)
	require.NoError(t, err)
	assert.Equal(t, int64(7), id)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestLatestRun(t *testing.T) {
	db, mock := newMockDB(t)
	created := time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)

	mock.ExpectQuery("FROM regime_runs").
		WithArgs("EUR/USD").
		WillReturnRows(sqlmock.NewRows([]string{"id", "symbol", "options", "points", "created_at"}).
			AddRow(7, "EUR/USD", []byte(`{"window":3,"rate_up":1,"rate_dn":1}`), 5, created))
	mock.ExpectQuery("FROM regime_segments").
		WithArgs(7).
		WillReturnRows(sqlmock.NewRows([]string{"start_idx", "end_idx", "direction", "label", "start_value", "end_value", "flipped"}).
			AddRow(0, 3, "down", 0, 10.0, 8.0, false).
			AddRow(3, 5, "up", nil, 7.0, 9.0, true))

	run, err := db.LatestRun(context.Background(), "EUR/USD")
	require.NoError(t, err)
	require.NotNil(t, run)

	assert.Equal(t, int64(7), run.ID)
	assert.Equal(t, regime.DefaultOptions(3), run.Options)
	assert.Equal(t, created, run.CreatedAt)
	require.Len(t, run.Regimes, 2)
	assert.Equal(t, regime.LabelDown, run.Regimes[0].Label)
	assert.Equal(t, regime.Up, run.Regimes[1].Direction)
	assert.Equal(t, regime.LabelNeutral, run.Regimes[1].Label)
	assert.True(t, run.Regimes[1].Flipped)

	labels, err := regime.Expand(run.Regimes, run.Points)
	require.NoError(t, err)
	assert.Len(t, labels, 5)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestLatestRun_None(t *testing.T) {
	db, mock := newMockDB(t)
	mock.ExpectQuery("FROM regime_runs").
		WithArgs("GBP/USD").
		WillReturnRows(sqlmock.NewRows([]string{"id", "symbol", "options", "points", "created_at"}))

	run, err := db.LatestRun(context.Background(), "GBP/USD")
	require.NoError(t, err)
	assert.Nil(t, run)
}

func TestLabelValue(t *testing.T) {
	assert.Equal(t, int16(1), labelValue(regime.LabelUp).Int16)
	assert.True(t, labelValue(regime.LabelDown).Valid)
	assert.False(t, labelValue(regime.LabelNeutral).Valid)
}
