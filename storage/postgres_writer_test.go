package storage

import (
	"database/sql"
	"database/sql/driver"
	"errors"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/realslimshanky/Pricy/models"
	"github.com/realslimshanky/Pricy/utils"
)

func setupMockDB(t *testing.T) (*sql.DB, sqlmock.Sqlmock, *PostgresWriter) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)

	writer := NewPostgresWriterFromDB(db, utils.NewNopLogger())
	return db, mock, writer
}

func anyArgs(n int) []driver.Value {
	args := make([]driver.Value, n)
	for i := range args {
		args[i] = sqlmock.AnyArg()
	}
	return args
}

func sampleListings() []*models.Listing {
	rate := 95
	lat, lon := 52.52, 13.405
	return []*models.Listing{
		{ID: "1", Neighbourhood: "Mitte", HostResponseRate: &rate, Latitude: &lat, Longitude: &lon, Price: 120},
		{ID: "2", Neighbourhood: "Pankow", Price: 55},
	}
}

func TestCreateTable(t *testing.T) {
	db, mock, writer := setupMockDB(t)
	defer db.Close()

	mock.ExpectExec(`CREATE TABLE IF NOT EXISTS listings_clean`).
		WillReturnResult(sqlmock.NewResult(0, 0))

	require.NoError(t, writer.CreateTable())
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestSaveClean_Success(t *testing.T) {
	db, mock, writer := setupMockDB(t)
	defer db.Close()

	mock.ExpectBegin()
	prep := mock.ExpectPrepare(`INSERT INTO listings_clean`)
	prep.ExpectExec().WithArgs(anyArgs(22)...).WillReturnResult(sqlmock.NewResult(1, 1))
	prep.ExpectExec().WithArgs(anyArgs(22)...).WillReturnResult(sqlmock.NewResult(2, 1))
	mock.ExpectCommit()

	require.NoError(t, writer.SaveClean(sampleListings()))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestSaveClean_RollsBackOnError(t *testing.T) {
	db, mock, writer := setupMockDB(t)
	defer db.Close()

	mock.ExpectBegin()
	prep := mock.ExpectPrepare(`INSERT INTO listings_clean`)
	prep.ExpectExec().WithArgs(anyArgs(22)...).WillReturnError(errors.New("constraint violation"))
	mock.ExpectRollback()

	err := writer.SaveClean(sampleListings())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "constraint violation")
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestSaveClean_Empty(t *testing.T) {
	db, mock, writer := setupMockDB(t)
	defer db.Close()

	require.NoError(t, writer.SaveClean(nil))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestNullHelpers(t *testing.T) {
	v := 7
	f := 1.5
	assert.Equal(t, sql.NullInt64{Int64: 7, Valid: true}, nullInt(&v))
	assert.False(t, nullInt(nil).Valid)
	assert.Equal(t, sql.NullFloat64{Float64: 1.5, Valid: true}, nullFloat(&f))
	assert.False(t, nullFloat(nil).Valid)
	assert.False(t, nullString("").Valid)
}
