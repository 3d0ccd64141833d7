// Package repomanager provides a concrete RepositoryManager for PostgreSQL,
// wiring together repository constructors and database migrations (via goose).
package repomanager

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/dmitrijs2005/soulbeats/internal/cryptox"
	"github.com/dmitrijs2005/soulbeats/internal/dbx"
	"github.com/dmitrijs2005/soulbeats/internal/server/migrations"
	"github.com/dmitrijs2005/soulbeats/internal/server/repositories/catalog"
	"github.com/dmitrijs2005/soulbeats/internal/server/repositories/credentials"
	"github.com/dmitrijs2005/soulbeats/internal/server/repositories/users"
	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/pressly/goose/v3"
)

// PostgresRepositoryManager vends PostgreSQL-backed repository implementations
// and exposes a schema migration hook.
type PostgresRepositoryManager struct {
	sealer cryptox.Sealer
}

// Credentials returns a credentials.Repository bound to gw. Token secrets are
// sealed with the manager's sealer.
func (m *PostgresRepositoryManager) Credentials(gw *dbx.Gateway) credentials.Repository {
	return credentials.NewPostgresRepository(gw, m.sealer)
}

// Catalog returns a catalog.Repository bound to gw.
func (m *PostgresRepositoryManager) Catalog(gw *dbx.Gateway) catalog.Repository {
	return catalog.NewPostgresRepository(gw)
}

// Users returns a users.Repository bound to gw.
func (m *PostgresRepositoryManager) Users(gw *dbx.Gateway) users.Repository {
	return users.NewPostgresRepository(gw)
}

// gooseUpContext is a seam for testing goose.UpContext.
var gooseUpContext = func(ctx context.Context, db *sql.DB, dir string, opts ...goose.OptionsFunc) error {
	return goose.UpContext(ctx, db, dir, opts...)
}

// RunMigrations sets up goose with the embedded migrations and runs them
// against the provided database connection.
func (m *PostgresRepositoryManager) RunMigrations(ctx context.Context, db *sql.DB) error {
	goose.SetBaseFS(migrations.Migrations)
	if err := goose.SetDialect("pgx"); err != nil {
		return fmt.Errorf("goose dialect: %w", err)
	}
	if err := gooseUpContext(ctx, db, "."); err != nil {
		return err
	}
	return nil
}

// NewPostgresRepositoryManager constructs a PostgreSQL-backed RepositoryManager.
// A nil sealer stores token secrets unsealed.
func NewPostgresRepositoryManager(sealer cryptox.Sealer) (RepositoryManager, error) {
	if sealer == nil {
		sealer = cryptox.PlainSealer{}
	}
	return &PostgresRepositoryManager{sealer: sealer}, nil
}
