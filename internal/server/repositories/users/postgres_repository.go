// Package users persists SoulBeats accounts. Registration and profile
// changes are written together with their history row in one transaction.
package users

import (
	"context"
	"errors"
	"fmt"

	"github.com/dmitrijs2005/soulbeats/internal/common"
	"github.com/dmitrijs2005/soulbeats/internal/dbx"
	"github.com/dmitrijs2005/soulbeats/internal/server/models"
	"github.com/jackc/pgx/v5/pgconn"
)

const uniqueViolation = "23505"

const (
	selectUserQuery = `
		SELECT id, owner_id, display_name, email, age, bio, favorite_genres, profile_picture_url, registered_at
		FROM users
		WHERE owner_id = $1
	`
	countUserQuery = `SELECT COUNT(*) FROM users WHERE owner_id = $1`

	insertUserQuery = `
		INSERT INTO users (owner_id, display_name, email, profile_picture_url, registered_at)
		VALUES ($1, $2, $3, $4, $5)
	`
	// inserts nothing when the user does not exist, so the batch count tells
	// a missing user apart from a written one
	insertHistoryQuery = `
		INSERT INTO user_history (owner_id, action, action_date, details)
		SELECT owner_id, $2::text, now(), $3::text FROM users WHERE owner_id = $1
	`
	updateProfileQuery = `
		UPDATE users SET
			display_name = COALESCE($2, display_name),
			email = COALESCE($3, email),
			age = COALESCE($4, age),
			bio = COALESCE($5, bio),
			favorite_genres = COALESCE($6, favorite_genres),
			profile_picture_url = COALESCE($7, profile_picture_url)
		WHERE owner_id = $1
	`
)

type PostgresRepository struct {
	gw *dbx.Gateway
}

func NewPostgresRepository(gw *dbx.Gateway) *PostgresRepository {
	return &PostgresRepository{gw: gw}
}

func scanUser(r dbx.Row) (models.User, error) {
	var u models.User
	err := r.Scan(&u.ID, &u.OwnerID, &u.DisplayName, &u.Email, &u.Age, &u.Bio,
		&u.FavoriteGenres, &u.ProfilePictureURL, &u.RegisteredAt)
	return u, err
}

// GetUser returns the owner's account or common.ErrorNotFound.
func (r *PostgresRepository) GetUser(ctx context.Context, ownerID string) (*models.User, error) {
	u, ok, err := dbx.QueryOne(ctx, r.gw, scanUser, selectUserQuery, ownerID)
	if err != nil {
		return nil, fmt.Errorf("get user: %w", err)
	}
	if !ok {
		return nil, common.ErrorNotFound
	}
	return &u, nil
}

func (r *PostgresRepository) UserExists(ctx context.Context, ownerID string) (bool, error) {
	n, err := dbx.Scalar[int64](ctx, r.gw, countUserQuery, ownerID)
	if err != nil {
		return false, fmt.Errorf("user exists: %w", err)
	}
	return n > 0, nil
}

// CreateUser inserts the user and its USER_CREATED history row atomically.
// A second registration of the same owner is common.ErrAlreadyExists.
func (r *PostgresRepository) CreateUser(ctx context.Context, u *models.User) error {
	n, err := r.gw.ExecuteAtomic(ctx, []dbx.Statement{
		{Query: insertUserQuery, Args: []any{u.OwnerID, u.DisplayName, u.Email, u.ProfilePictureURL, u.RegisteredAt}},
		{Query: insertHistoryQuery, Args: []any{u.OwnerID, models.UserCreated, nil}},
	})
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == uniqueViolation {
			return fmt.Errorf("%w: user %s", common.ErrAlreadyExists, u.OwnerID)
		}
		return fmt.Errorf("create user: %w", err)
	}
	if n != 2 {
		return fmt.Errorf("%w: create user: %d rows written, want 2", common.ErrDataAccess, n)
	}
	return nil
}

// UpdateProfile applies the set fields of p and records a PROFILE_UPDATED
// history row. ok is false when the owner has no account.
func (r *PostgresRepository) UpdateProfile(ctx context.Context, ownerID string, p models.ProfileUpdate) (bool, error) {
	n, err := r.gw.ExecuteAtomic(ctx, []dbx.Statement{
		{Query: updateProfileQuery, Args: []any{ownerID, p.DisplayName, p.Email, p.Age, p.Bio, p.FavoriteGenres, p.ProfilePictureURL}},
		{Query: insertHistoryQuery, Args: []any{ownerID, models.UserProfileUpdated, nil}},
	})
	if err != nil {
		return false, fmt.Errorf("update profile: %w", err)
	}
	return n > 0, nil
}
