// Package catalog reads the genre and artist catalog preferences refer to.
package catalog

import (
	"context"
	"fmt"

	"github.com/dmitrijs2005/soulbeats/internal/dbx"
	"github.com/dmitrijs2005/soulbeats/internal/server/models"
)

const (
	listGenresQuery = `
		SELECT id, name, description, icon_url, display_order, is_active, created_at
		FROM genres
		WHERE is_active
		ORDER BY display_order, name
	`
	listArtistsByGenreQuery = `
		SELECT id, name, spotify_id, image_url, genre_id, popularity, is_active, created_at
		FROM artists
		WHERE genre_id = $1 AND is_active
		ORDER BY popularity DESC, name
	`
)

type PostgresRepository struct {
	gw *dbx.Gateway
}

func NewPostgresRepository(gw *dbx.Gateway) *PostgresRepository {
	return &PostgresRepository{gw: gw}
}

func scanGenre(r dbx.Row) (models.Genre, error) {
	var g models.Genre
	err := r.Scan(&g.ID, &g.Name, &g.Description, &g.IconURL, &g.DisplayOrder, &g.IsActive, &g.CreatedAt)
	return g, err
}

func scanArtist(r dbx.Row) (models.Artist, error) {
	var a models.Artist
	err := r.Scan(&a.ID, &a.Name, &a.SpotifyID, &a.ImageURL, &a.GenreID, &a.Popularity, &a.IsActive, &a.CreatedAt)
	return a, err
}

// ListGenres returns active genres in display order.
func (r *PostgresRepository) ListGenres(ctx context.Context) ([]models.Genre, error) {
	genres, err := dbx.QueryMany(ctx, r.gw, scanGenre, listGenresQuery)
	if err != nil {
		return nil, fmt.Errorf("list genres: %w", err)
	}
	return genres, nil
}

// ListArtistsByGenre returns active artists of genreID, most popular first.
func (r *PostgresRepository) ListArtistsByGenre(ctx context.Context, genreID int64) ([]models.Artist, error) {
	artists, err := dbx.QueryMany(ctx, r.gw, scanArtist, listArtistsByGenreQuery, genreID)
	if err != nil {
		return nil, fmt.Errorf("list artists of genre %d: %w", genreID, err)
	}
	return artists, nil
}
