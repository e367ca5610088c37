package server

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/joseph-ayodele/invoices-tracker/internal/common"
	repo "github.com/joseph-ayodele/invoices-tracker/internal/repository"
)

// ConnectDB opens the configured store, applies the schema and pings it.
func ConnectDB(ctx context.Context, cfg common.DatabaseConfig, logger *zap.Logger) (*repo.DB, error) {
	logger.Info("connecting to database", zap.String("driver", cfg.Driver))
	db, err := repo.Open(ctx, cfg, logger)
	if err != nil {
		logger.Error("failed to connect to database", zap.Error(err))
		return nil, err
	}
	if err := PingDB(ctx, db, logger, 5*time.Second); err != nil {
		repo.Close(db, logger)
		return nil, err
	}
	if err := repo.Migrate(ctx, db, logger); err != nil {
		repo.Close(db, logger)
		return nil, err
	}
	logger.Info("successfully connected to database")
	return db, nil
}

// PingDB pings the database to ensure it's responsive
func PingDB(ctx context.Context, db *repo.DB, logger *zap.Logger, timeout time.Duration) error {
	logger.Debug("pinging database")
	if err := repo.HealthCheck(ctx, db, timeout, logger); err != nil {
		logger.Error("database ping failed", zap.Error(err))
		return err
	}
	logger.Debug("database ping successful")
	return nil
}

// CloseDB closes the database connections gracefully
func CloseDB(db *repo.DB, logger *zap.Logger) {
	logger.Info("closing database connections")
	repo.Close(db, logger)
	logger.Info("database connections closed")
}
