package repository

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"entgo.io/ent/dialect"
	entsql "entgo.io/ent/dialect/sql"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/jackc/pgx/v5/stdlib"
	"go.uber.org/zap"
	_ "modernc.org/sqlite"

	"github.com/joseph-ayodele/invoices-tracker/internal/common"
)

// DB is the process-lifetime database handle shared by the invoice and blob
// repositories. It is opened once at startup and closed at shutdown.
type DB struct {
	drv  *entsql.Driver
	pool *pgxpool.Pool
}

// SQL returns the underlying database/sql handle.
func (d *DB) SQL() *sql.DB {
	return d.drv.DB()
}

// Dialect returns the ent dialect name (postgres or sqlite3).
func (d *DB) Dialect() string {
	return d.drv.Dialect()
}

func (d *DB) isPostgres() bool {
	return d.drv.Dialect() == dialect.Postgres
}

func (d *DB) builder() *entsql.DialectBuilder {
	return entsql.Dialect(d.drv.Dialect())
}

// Open connects using the configured driver.
func Open(ctx context.Context, cfg common.DatabaseConfig, logger *zap.Logger) (*DB, error) {
	switch cfg.Driver {
	case common.DriverPostgres:
		return OpenPostgres(ctx, cfg, logger)
	case common.DriverSQLite:
		return OpenSQLite(ctx, cfg.DSN, logger)
	default:
		return nil, fmt.Errorf("unsupported database driver %q", cfg.Driver)
	}
}

// OpenPostgres creates a pgx pool and wraps it for the ent SQL driver.
func OpenPostgres(ctx context.Context, cfg common.DatabaseConfig, logger *zap.Logger) (*DB, error) {
	logger.Info("connecting to database", zap.String("driver", common.DriverPostgres))
	pc, err := pgxpool.ParseConfig(cfg.DSN)
	if err != nil {
		logger.Error("failed to parse database dsn", zap.Error(err))
		return nil, err
	}

	pc.MaxConns = cfg.MaxConns
	pc.MinConns = cfg.MinConns
	pc.MaxConnLifetime = cfg.MaxConnLifetime
	pc.MaxConnIdleTime = cfg.MaxConnIdleTime
	pc.ConnConfig.RuntimeParams["application_name"] = "invoices-tracker"
	if cfg.StatementTimeout > 0 {
		pc.ConnConfig.RuntimeParams["statement_timeout"] = fmt.Sprintf("%d", cfg.StatementTimeout.Milliseconds())
	}

	dialCtx := ctx
	if cfg.DialTimeout > 0 {
		var cancel context.CancelFunc
		dialCtx, cancel = context.WithTimeout(ctx, cfg.DialTimeout)
		defer cancel()
	}
	pool, err := pgxpool.NewWithConfig(dialCtx, pc)
	if err != nil {
		logger.Error("failed to connect to database", zap.Error(err))
		return nil, err
	}

	// Wrap pool as *sql.DB for the ent SQL driver
	db := stdlib.OpenDBFromPool(pool)
	drv := entsql.OpenDB(dialect.Postgres, db)

	logger.Info("successfully connected to database")
	return &DB{drv: drv, pool: pool}, nil
}

// OpenSQLite opens an embedded database. A single connection is used, which
// keeps ":memory:" databases alive and serialises writers.
func OpenSQLite(ctx context.Context, dsn string, logger *zap.Logger) (*DB, error) {
	logger.Info("connecting to database", zap.String("driver", common.DriverSQLite), zap.String("dsn", dsn))
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		logger.Error("failed to open sqlite database", zap.Error(err))
		return nil, err
	}
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)
	db.SetConnMaxLifetime(0)

	for _, pragma := range []string{"PRAGMA foreign_keys = ON", "PRAGMA busy_timeout = 5000"} {
		if _, err := db.ExecContext(ctx, pragma); err != nil {
			_ = db.Close()
			logger.Error("failed to configure sqlite", zap.String("pragma", pragma), zap.Error(err))
			return nil, err
		}
	}

	logger.Info("successfully connected to database")
	return &DB{drv: entsql.OpenDB(dialect.SQLite, db)}, nil
}

// Close closes the database connections gracefully
func Close(db *DB, logger *zap.Logger) {
	if db == nil {
		return
	}
	logger.Info("closing database connections")
	if err := db.drv.Close(); err != nil {
		logger.Error("failed to close database", zap.Error(err))
	}
	if db.pool != nil {
		db.pool.Close()
	}
	logger.Info("database connections closed")
}

// HealthCheck pings the database to catch DSN issues early.
func HealthCheck(ctx context.Context, db *DB, timeout time.Duration, logger *zap.Logger) error {
	logger.Debug("pinging database")
	if timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, timeout)
		defer cancel()
	}
	var err error
	if db.pool != nil {
		err = db.pool.Ping(ctx)
	} else {
		err = db.SQL().PingContext(ctx)
	}
	if err != nil {
		logger.Warn("database ping failed", zap.Error(err))
		return fmt.Errorf("%w: %w", common.ErrUnavailable, err)
	}
	logger.Debug("database ping successful")
	return nil
}
