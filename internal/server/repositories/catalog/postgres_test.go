package catalog

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/dmitrijs2005/soulbeats/internal/common"
	"github.com/dmitrijs2005/soulbeats/internal/dbx"
	"github.com/dmitrijs2005/soulbeats/internal/server/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newRepoWithMock(t *testing.T) (*PostgresRepository, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherRegexp))
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })
	return NewPostgresRepository(dbx.NewGateway(db, nil)), mock
}

func TestListGenres(t *testing.T) {
	repo, mock := newRepoWithMock(t)
	ts := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)

	mock.ExpectQuery(`(?s)SELECT\s+id,\s*name.*FROM\s+genres\s+WHERE\s+is_active\s+ORDER\s+BY\s+display_order,\s*name`).
		WillReturnRows(sqlmock.NewRows([]string{"id", "name", "description", "icon_url", "display_order", "is_active", "created_at"}).
			AddRow(int64(1), "Rock", "Guitars", "https://img/rock.png", 1, true, ts).
			AddRow(int64(2), "Jazz", "", "", 2, true, ts))

	got, err := repo.ListGenres(context.Background())
	require.NoError(t, err)
	assert.Equal(t, []models.Genre{
		{ID: 1, Name: "Rock", Description: "Guitars", IconURL: "https://img/rock.png", DisplayOrder: 1, IsActive: true, CreatedAt: ts},
		{ID: 2, Name: "Jazz", DisplayOrder: 2, IsActive: true, CreatedAt: ts},
	}, got)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestListGenres_Empty(t *testing.T) {
	repo, mock := newRepoWithMock(t)

	mock.ExpectQuery(`FROM\s+genres`).
		WillReturnRows(sqlmock.NewRows([]string{"id", "name", "description", "icon_url", "display_order", "is_active", "created_at"}))

	got, err := repo.ListGenres(context.Background())
	require.NoError(t, err)
	assert.Empty(t, got)
}

func TestListArtistsByGenre(t *testing.T) {
	repo, mock := newRepoWithMock(t)
	ts := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)

	mock.ExpectQuery(`(?s)FROM\s+artists\s+WHERE\s+genre_id\s*=\s*\$1\s+AND\s+is_active\s+ORDER\s+BY\s+popularity\s+DESC,\s*name`).
		WithArgs(int64(4)).
		WillReturnRows(sqlmock.NewRows([]string{"id", "name", "spotify_id", "image_url", "genre_id", "popularity", "is_active", "created_at"}).
			AddRow(int64(10), "Miles Davis", "sp10", "", int64(4), 80, true, ts))

	got, err := repo.ListArtistsByGenre(context.Background(), 4)
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, "Miles Davis", got[0].Name)
	assert.Equal(t, int64(4), got[0].GenreID)
	assert.Equal(t, 80, got[0].Popularity)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestListArtistsByGenre_DBError(t *testing.T) {
	repo, mock := newRepoWithMock(t)

	mock.ExpectQuery(`FROM\s+artists`).WithArgs(int64(4)).WillReturnError(errors.New("timeout"))

	_, err := repo.ListArtistsByGenre(context.Background(), 4)
	assert.ErrorIs(t, err, common.ErrDataAccess)
}
