// Package credentials provides a PostgreSQL-backed store for provider tokens
// and per-owner genre and artist preferences.
package credentials

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/dmitrijs2005/soulbeats/internal/common"
	"github.com/dmitrijs2005/soulbeats/internal/cryptox"
	"github.com/dmitrijs2005/soulbeats/internal/dbx"
	"github.com/dmitrijs2005/soulbeats/internal/server/models"
)

const (
	selectTokenQuery = `
		SELECT owner_id, access_token, refresh_token, token_type, scope, expires_at, created_at, updated_at
		FROM spotify_tokens
		WHERE owner_id = $1
	`
	saveTokenQuery = `
		INSERT INTO spotify_tokens (owner_id, access_token, refresh_token, token_type, scope, expires_at, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		ON CONFLICT (owner_id) DO UPDATE SET
			access_token = EXCLUDED.access_token,
			refresh_token = EXCLUDED.refresh_token,
			token_type = EXCLUDED.token_type,
			scope = EXCLUDED.scope,
			expires_at = EXCLUDED.expires_at,
			created_at = EXCLUDED.created_at,
			updated_at = EXCLUDED.updated_at
	`
	// created_at is left untouched
	updateTokenQuery = `
		UPDATE spotify_tokens
		SET access_token = $2, refresh_token = $3, token_type = $4, scope = $5, expires_at = $6, updated_at = $7
		WHERE owner_id = $1
	`
	countTokenQuery = `
		SELECT COUNT(*) FROM spotify_tokens WHERE owner_id = $1
	`
	deleteTokenQuery = `
		DELETE FROM spotify_tokens WHERE owner_id = $1
	`
)

type preferenceQueries struct {
	selectAll string
	upsert    string
}

var preferenceSQL = map[models.PreferenceKind]preferenceQueries{
	models.PreferenceGenre: {
		selectAll: `
		SELECT p.owner_id, p.genre_id, g.name, p.level, p.created_at, p.updated_at
		FROM user_genre_preferences p
		JOIN genres g ON g.id = p.genre_id
		WHERE p.owner_id = $1 AND g.is_active
		ORDER BY p.level DESC, g.display_order, g.name
	`,
		upsert: `
		INSERT INTO user_genre_preferences (owner_id, genre_id, level, created_at, updated_at)
		VALUES ($1, $2, $3, now(), now())
		ON CONFLICT (owner_id, genre_id) DO UPDATE SET
			level = EXCLUDED.level,
			updated_at = now()
	`,
	},
	models.PreferenceArtist: {
		selectAll: `
		SELECT p.owner_id, p.artist_id, a.name, p.level, p.created_at, p.updated_at
		FROM user_artist_preferences p
		JOIN artists a ON a.id = p.artist_id
		WHERE p.owner_id = $1 AND a.is_active
		ORDER BY p.level DESC, a.name
	`,
		upsert: `
		INSERT INTO user_artist_preferences (owner_id, artist_id, level, created_at, updated_at)
		VALUES ($1, $2, $3, now(), now())
		ON CONFLICT (owner_id, artist_id) DO UPDATE SET
			level = EXCLUDED.level,
			updated_at = now()
	`,
	},
}

// PostgresRepository implements Repository over a dbx.Gateway. Token secrets
// pass through the sealer on their way in and out.
type PostgresRepository struct {
	gw     *dbx.Gateway
	sealer cryptox.Sealer
}

// NewPostgresRepository constructs a repository bound to gw. A nil sealer
// stores tokens as they are.
func NewPostgresRepository(gw *dbx.Gateway, sealer cryptox.Sealer) *PostgresRepository {
	if sealer == nil {
		sealer = cryptox.PlainSealer{}
	}
	return &PostgresRepository{gw: gw, sealer: sealer}
}

type storedToken struct {
	ownerID      string
	accessToken  string
	refreshToken sql.NullString
	tokenType    string
	scope        string
	expiresAt    time.Time
	createdAt    time.Time
	updatedAt    time.Time
}

func scanToken(r dbx.Row) (storedToken, error) {
	var s storedToken
	err := r.Scan(&s.ownerID, &s.accessToken, &s.refreshToken, &s.tokenType, &s.scope,
		&s.expiresAt, &s.createdAt, &s.updatedAt)
	return s, err
}

// GetToken returns the owner's token or common.ErrorNotFound.
func (r *PostgresRepository) GetToken(ctx context.Context, ownerID string) (*models.SpotifyToken, error) {
	s, ok, err := dbx.QueryOne(ctx, r.gw, scanToken, selectTokenQuery, ownerID)
	if err != nil {
		return nil, fmt.Errorf("get token: %w", err)
	}
	if !ok {
		return nil, common.ErrorNotFound
	}

	access, err := r.sealer.Open(s.accessToken)
	if err != nil {
		return nil, fmt.Errorf("%w: open access token: %w", common.ErrDataAccess, err)
	}
	refresh, err := r.sealer.Open(s.refreshToken.String)
	if err != nil {
		return nil, fmt.Errorf("%w: open refresh token: %w", common.ErrDataAccess, err)
	}

	return &models.SpotifyToken{
		OwnerID:      s.ownerID,
		AccessToken:  access,
		RefreshToken: refresh,
		TokenType:    s.tokenType,
		Scope:        s.scope,
		ExpiresAt:    s.expiresAt.UTC(),
		CreatedAt:    s.createdAt.UTC(),
		UpdatedAt:    s.updatedAt.UTC(),
	}, nil
}

// SaveToken inserts the owner's token or overwrites the existing row.
func (r *PostgresRepository) SaveToken(ctx context.Context, ownerID string, token *models.SpotifyToken) (bool, error) {
	access, refresh, err := r.seal(token)
	if err != nil {
		return false, err
	}

	n, err := r.gw.Write(ctx, saveTokenQuery, ownerID, access, refresh, token.TokenType, token.Scope,
		token.ExpiresAt, token.CreatedAt, token.UpdatedAt)
	if err != nil {
		return false, fmt.Errorf("save token: %w", err)
	}
	return n > 0, nil
}

// UpdateToken rewrites the owner's token after a refresh. It reports false
// when the owner has no row.
func (r *PostgresRepository) UpdateToken(ctx context.Context, ownerID string, token *models.SpotifyToken) (bool, error) {
	access, refresh, err := r.seal(token)
	if err != nil {
		return false, err
	}

	n, err := r.gw.Write(ctx, updateTokenQuery, ownerID, access, refresh, token.TokenType, token.Scope,
		token.ExpiresAt, token.UpdatedAt)
	if err != nil {
		return false, fmt.Errorf("update token: %w", err)
	}
	return n > 0, nil
}

func (r *PostgresRepository) TokenExists(ctx context.Context, ownerID string) (bool, error) {
	n, err := dbx.Scalar[int64](ctx, r.gw, countTokenQuery, ownerID)
	if err != nil {
		return false, fmt.Errorf("count tokens: %w", err)
	}
	return n > 0, nil
}

func (r *PostgresRepository) DeleteToken(ctx context.Context, ownerID string) (bool, error) {
	n, err := r.gw.Write(ctx, deleteTokenQuery, ownerID)
	if err != nil {
		return false, fmt.Errorf("delete token: %w", err)
	}
	return n > 0, nil
}

// GetPreferences returns the owner's preferences of kind for active catalog
// entries, strongest first.
func (r *PostgresRepository) GetPreferences(ctx context.Context, ownerID string, kind models.PreferenceKind) ([]models.Preference, error) {
	if !kind.Valid() {
		return nil, fmt.Errorf("%w: unknown preference kind %q", common.ErrValidation, kind)
	}
	q := preferenceSQL[kind]

	scan := func(row dbx.Row) (models.Preference, error) {
		p := models.Preference{Kind: kind}
		err := row.Scan(&p.OwnerID, &p.EntityID, &p.EntityName, &p.Level, &p.CreatedAt, &p.UpdatedAt)
		return p, err
	}

	prefs, err := dbx.QueryMany(ctx, r.gw, scan, q.selectAll, ownerID)
	if err != nil {
		return nil, fmt.Errorf("get %s preferences: %w", kind, err)
	}
	return prefs, nil
}

// UpsertPreferences writes all items in one transaction. An empty batch
// succeeds without touching the database.
func (r *PostgresRepository) UpsertPreferences(ctx context.Context, ownerID string, kind models.PreferenceKind, items []models.PreferenceItem) (bool, error) {
	if !kind.Valid() {
		return false, fmt.Errorf("%w: unknown preference kind %q", common.ErrValidation, kind)
	}
	q := preferenceSQL[kind]
	if len(items) == 0 {
		return true, nil
	}

	stmts := make([]dbx.Statement, 0, len(items))
	for _, it := range items {
		stmts = append(stmts, dbx.Statement{Query: q.upsert, Args: []any{ownerID, it.EntityID, it.Level}})
	}

	if _, err := r.gw.ExecuteAtomic(ctx, stmts); err != nil {
		return false, fmt.Errorf("upsert %s preferences: %w", kind, err)
	}
	return true, nil
}

func (r *PostgresRepository) seal(token *models.SpotifyToken) (string, sql.NullString, error) {
	access, err := r.sealer.Seal(token.AccessToken)
	if err != nil {
		return "", sql.NullString{}, fmt.Errorf("%w: seal access token: %w", common.ErrDataAccess, err)
	}
	refresh, err := r.sealer.Seal(token.RefreshToken)
	if err != nil {
		return "", sql.NullString{}, fmt.Errorf("%w: seal refresh token: %w", common.ErrDataAccess, err)
	}
	return access, sql.NullString{String: refresh, Valid: refresh != ""}, nil
}
