package catalog

import (
	"context"

	"github.com/dmitrijs2005/soulbeats/internal/server/models"
)

type Repository interface {
	ListGenres(ctx context.Context) ([]models.Genre, error)
	ListArtistsByGenre(ctx context.Context, genreID int64) ([]models.Artist, error)
}
