package dbx

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/dmitrijs2005/soulbeats/internal/common"
	"github.com/dmitrijs2005/soulbeats/internal/logging"
)

// Row is what a row mapper reads from. *sql.Rows and *sql.Row satisfy it.
type Row interface {
	Scan(dest ...any) error
}

// ScanFunc maps the current row onto a T.
type ScanFunc[T any] func(Row) (T, error)

// Statement is one parameterized statement of an atomic batch.
type Statement struct {
	Query string
	Args  []any
}

// Gateway executes parameterized statements against a connection pool.
//
// Every call checks a connection out of the pool for its own duration and
// returns it on all exit paths; ExecuteAtomic holds a single connection and
// transaction for the whole batch. Failures are wrapped with
// common.ErrDataAccess and never retried.
type Gateway struct {
	db     *sql.DB
	logger logging.Logger
}

// NewGateway wraps db. A nil logger discards gateway diagnostics.
func NewGateway(db *sql.DB, logger logging.Logger) *Gateway {
	if logger == nil {
		logger = logging.Nop()
	}
	return &Gateway{db: db, logger: logger.With("module", "dbx")}
}

// DB exposes the underlying pool for migrations.
func (g *Gateway) DB() *sql.DB {
	return g.db
}

// Ping verifies the store is reachable.
func (g *Gateway) Ping(ctx context.Context) error {
	return g.withConn(ctx, "ping", "", func(conn *sql.Conn) error {
		return conn.PingContext(ctx)
	})
}

// Write runs an INSERT/UPDATE/DELETE and returns the number of affected rows.
func (g *Gateway) Write(ctx context.Context, query string, args ...any) (int64, error) {
	var affected int64
	err := g.withConn(ctx, "write", query, func(conn *sql.Conn) error {
		n, err := exec(ctx, conn, query, args)
		affected = n
		return err
	})
	return affected, err
}

// ExecuteAtomic runs stmts in order inside one transaction and returns the
// total number of affected rows. Any failure rolls the whole batch back and
// is returned. An empty batch does nothing and opens no transaction.
func (g *Gateway) ExecuteAtomic(ctx context.Context, stmts []Statement) (int64, error) {
	if len(stmts) == 0 {
		return 0, nil
	}

	var total int64
	err := WithTx(ctx, g.db, nil, func(ctx context.Context, tx DBTX) error {
		for i, st := range stmts {
			n, err := exec(ctx, tx, st.Query, st.Args)
			if err != nil {
				return fmt.Errorf("statement %d of %d: %w", i+1, len(stmts), err)
			}
			total += n
		}
		return nil
	})
	if err != nil {
		g.logger.Error(ctx, "atomic batch rolled back", "statements", len(stmts), "error", err)
		return 0, fmt.Errorf("%w: execute atomic: %w", common.ErrDataAccess, err)
	}
	return total, nil
}

// QueryOne returns the first row mapped by scan. ok is false when the
// statement matched nothing.
func QueryOne[T any](ctx context.Context, g *Gateway, scan ScanFunc[T], query string, args ...any) (v T, ok bool, err error) {
	err = g.withConn(ctx, "query one", query, func(conn *sql.Conn) error {
		rows, err := conn.QueryContext(ctx, query, args...)
		if err != nil {
			return err
		}
		defer rows.Close()

		if !rows.Next() {
			return rows.Err()
		}
		if v, err = scan(rows); err != nil {
			return fmt.Errorf("map row: %w", err)
		}
		ok = true
		return nil
	})
	if err != nil {
		var zero T
		return zero, false, err
	}
	return v, ok, nil
}

// QueryMany returns every row mapped by scan. No rows is an empty slice.
func QueryMany[T any](ctx context.Context, g *Gateway, scan ScanFunc[T], query string, args ...any) ([]T, error) {
	out := make([]T, 0)
	err := g.withConn(ctx, "query many", query, func(conn *sql.Conn) error {
		rows, err := conn.QueryContext(ctx, query, args...)
		if err != nil {
			return err
		}
		defer rows.Close()

		for rows.Next() {
			v, err := scan(rows)
			if err != nil {
				return fmt.Errorf("map row: %w", err)
			}
			out = append(out, v)
		}
		return rows.Err()
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

// Scalar returns the single value produced by query, e.g. a COUNT(*).
func Scalar[T any](ctx context.Context, g *Gateway, query string, args ...any) (T, error) {
	var v T
	err := g.withConn(ctx, "scalar", query, func(conn *sql.Conn) error {
		return conn.QueryRowContext(ctx, query, args...).Scan(&v)
	})
	return v, err
}

func (g *Gateway) withConn(ctx context.Context, op, query string, fn func(conn *sql.Conn) error) error {
	conn, err := g.db.Conn(ctx)
	if err != nil {
		g.logger.Error(ctx, "acquire connection failed", "op", op, "error", err)
		return fmt.Errorf("%w: %s: acquire connection: %w", common.ErrDataAccess, op, err)
	}
	defer conn.Close()

	if err := fn(conn); err != nil {
		g.logger.Error(ctx, "statement failed", "op", op, "query", query, "error", err)
		return fmt.Errorf("%w: %s: %w", common.ErrDataAccess, op, err)
	}
	return nil
}

func exec(ctx context.Context, db DBTX, query string, args []any) (int64, error) {
	res, err := db.ExecContext(ctx, query, args...)
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}
