package repomanager

import (
	"context"
	"database/sql"

	"github.com/dmitrijs2005/soulbeats/internal/dbx"
	"github.com/dmitrijs2005/soulbeats/internal/server/repositories/catalog"
	"github.com/dmitrijs2005/soulbeats/internal/server/repositories/credentials"
	"github.com/dmitrijs2005/soulbeats/internal/server/repositories/users"
)

type RepositoryManager interface {
	RunMigrations(context.Context, *sql.DB) error
	Credentials(gw *dbx.Gateway) credentials.Repository
	Catalog(gw *dbx.Gateway) catalog.Repository
	Users(gw *dbx.Gateway) users.Repository
}
