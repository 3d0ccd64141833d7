package services

import (
	"context"
	"fmt"

	"github.com/dmitrijs2005/soulbeats/internal/common"
	"github.com/dmitrijs2005/soulbeats/internal/dbx"
	"github.com/dmitrijs2005/soulbeats/internal/logging"
	"github.com/dmitrijs2005/soulbeats/internal/server/models"
	"github.com/dmitrijs2005/soulbeats/internal/server/repositories/repomanager"
	"github.com/dmitrijs2005/soulbeats/internal/validation"
	"golang.org/x/sync/errgroup"
)

type PreferencesUpdateResponse struct {
	UpdatedCount int
	Outcome      common.Outcome
}

type PreferencesResponse struct {
	Genres  []models.Preference
	Artists []models.Preference
	Outcome common.Outcome
}

// PreferenceService validates and stores an owner's genre and artist ratings.
type PreferenceService struct {
	gw          *dbx.Gateway
	repomanager repomanager.RepositoryManager
	logger      logging.Logger
}

func NewPreferenceService(gw *dbx.Gateway, m repomanager.RepositoryManager, logger logging.Logger) *PreferenceService {
	if logger == nil {
		logger = logging.Nop()
	}
	return &PreferenceService{gw: gw, repomanager: m, logger: logger.With("module", "preference-service")}
}

type preferenceBatch struct {
	Items []models.PreferenceItem `validate:"dive"`
}

// ValidatePreferences checks every item. One bad item rejects the batch.
func ValidatePreferences(items []models.PreferenceItem) error {
	return validation.Struct(preferenceBatch{Items: items})
}

func (s *PreferenceService) UpdateGenrePreferences(ctx context.Context, ownerID string, items []models.PreferenceItem) (*PreferencesUpdateResponse, error) {
	return s.update(ctx, ownerID, models.PreferenceGenre, items)
}

func (s *PreferenceService) UpdateArtistPreferences(ctx context.Context, ownerID string, items []models.PreferenceItem) (*PreferencesUpdateResponse, error) {
	return s.update(ctx, ownerID, models.PreferenceArtist, items)
}

// update applies the whole batch or nothing. Any invalid item rejects the
// batch before the store is touched; an empty batch succeeds with zero updates.
func (s *PreferenceService) update(ctx context.Context, ownerID string, kind models.PreferenceKind, items []models.PreferenceItem) (*PreferencesUpdateResponse, error) {
	if ownerID == "" {
		return nil, common.ErrorUnauthorized
	}
	if err := ValidatePreferences(items); err != nil {
		return nil, err
	}

	repo := s.repomanager.Credentials(s.gw)
	if _, err := repo.UpsertPreferences(ctx, ownerID, kind, items); err != nil {
		return nil, err
	}
	s.logger.Info(ctx, "preferences updated", "owner_id", ownerID, "kind", kind, "count", len(items))

	return &PreferencesUpdateResponse{
		UpdatedCount: len(items),
		Outcome:      common.Success(fmt.Sprintf("Updated %d %s preferences", len(items), kind)),
	}, nil
}

// GetPreferences reads genre and artist preferences concurrently.
func (s *PreferenceService) GetPreferences(ctx context.Context, ownerID string) (*PreferencesResponse, error) {
	if ownerID == "" {
		return nil, common.ErrorUnauthorized
	}
	repo := s.repomanager.Credentials(s.gw)
	resp := &PreferencesResponse{}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		resp.Genres, err = repo.GetPreferences(gctx, ownerID, models.PreferenceGenre)
		return err
	})
	g.Go(func() error {
		var err error
		resp.Artists, err = repo.GetPreferences(gctx, ownerID, models.PreferenceArtist)
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}

	resp.Outcome = common.Success("OK")
	return resp, nil
}
