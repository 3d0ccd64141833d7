package services

import (
	"context"
	"fmt"

	"github.com/dmitrijs2005/soulbeats/internal/common"
	"github.com/dmitrijs2005/soulbeats/internal/dbx"
	"github.com/dmitrijs2005/soulbeats/internal/server/models"
	"github.com/dmitrijs2005/soulbeats/internal/server/repositories/repomanager"
)

type CatalogService struct {
	gw          *dbx.Gateway
	repomanager repomanager.RepositoryManager
}

func NewCatalogService(gw *dbx.Gateway, m repomanager.RepositoryManager) *CatalogService {
	return &CatalogService{gw: gw, repomanager: m}
}

func (s *CatalogService) GetGenres(ctx context.Context) ([]models.Genre, error) {
	return s.repomanager.Catalog(s.gw).ListGenres(ctx)
}

func (s *CatalogService) GetArtistsByGenre(ctx context.Context, genreID int64) ([]models.Artist, error) {
	if genreID <= 0 {
		return nil, fmt.Errorf("%w: genre id must be positive, got %d", common.ErrValidation, genreID)
	}
	return s.repomanager.Catalog(s.gw).ListArtistsByGenre(ctx, genreID)
}
