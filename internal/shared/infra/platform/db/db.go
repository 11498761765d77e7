package db

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/ClickHouse/clickhouse-go/v2"
	_ "github.com/jackc/pgx/v5/stdlib"
	_ "modernc.org/sqlite"

	"github.com/davicafu/hexaquery/internal/shared/infra/platform/sqlexec"
)

// Options configura el pool de conexiones.
type Options struct {
	Driver       string
	DSN          string
	MaxOpenConns int
	ConnMaxIdle  time.Duration
}

// Open abre el pool para el driver indicado y devuelve el dialecto SQL que
// le corresponde. Hace ping antes de devolverlo.
func Open(ctx context.Context, opts Options) (*sql.DB, sqlexec.Dialect, error) {
	dialect, err := sqlexec.DialectFor(opts.Driver)
	if err != nil {
		return nil, nil, err
	}

	var db *sql.DB
	switch dialect {
	case sqlexec.Postgres:
		db, err = sql.Open("pgx", opts.DSN)
	case sqlexec.SQLite:
		db, err = sql.Open("sqlite", opts.DSN)
	case sqlexec.ClickHouse:
		var chOpts *clickhouse.Options
		chOpts, err = clickhouse.ParseDSN(opts.DSN)
		if err == nil {
			chOpts.Settings = clickhouse.Settings{"max_execution_time": 60}
			db = clickhouse.OpenDB(chOpts)
		}
	}
	if err != nil {
		return nil, nil, fmt.Errorf("open %s: %w", dialect.Name(), err)
	}

	if opts.MaxOpenConns > 0 {
		db.SetMaxOpenConns(opts.MaxOpenConns)
		db.SetMaxIdleConns(opts.MaxOpenConns)
	}
	if opts.ConnMaxIdle > 0 {
		db.SetConnMaxIdleTime(opts.ConnMaxIdle)
	}
	if dialect == sqlexec.SQLite {
		// Una sola conexión: con ":memory:" cada conexión sería otra base.
		db.SetMaxOpenConns(1)
	}

	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, nil, fmt.Errorf("could not ping %s: %w", dialect.Name(), err)
	}
	return db, dialect, nil
}
