package repository

import (
	"context"
	"fmt"

	"go.uber.org/zap"
)

const (
	tableInvoices     = "invoices"
	tableUploads      = "uploads"
	tableUploadChunks = "upload_chunks"
)

var postgresSchema = []string{
	`CREATE TABLE IF NOT EXISTS invoices (
		id             TEXT PRIMARY KEY,
		file_id        TEXT NOT NULL UNIQUE,
		vendor_name    TEXT NOT NULL,
		invoice_number TEXT NOT NULL,
		created_at     TEXT NOT NULL,
		updated_at     TEXT NOT NULL DEFAULT '',
		doc            JSONB NOT NULL
	)`,
	`CREATE INDEX IF NOT EXISTS invoices_created_at_idx ON invoices (created_at DESC)`,
	`CREATE INDEX IF NOT EXISTS invoices_vendor_name_idx ON invoices (lower(vendor_name))`,
	`CREATE INDEX IF NOT EXISTS invoices_invoice_number_idx ON invoices (lower(invoice_number))`,
	`CREATE TABLE IF NOT EXISTS uploads (
		file_id      TEXT PRIMARY KEY,
		filename     TEXT NOT NULL,
		content_type TEXT NOT NULL,
		length       BIGINT NOT NULL,
		chunk_size   INTEGER NOT NULL,
		uploaded_at  TEXT NOT NULL
	)`,
	`CREATE TABLE IF NOT EXISTS upload_chunks (
		file_id TEXT NOT NULL REFERENCES uploads (file_id),
		n       INTEGER NOT NULL,
		data    BYTEA NOT NULL,
		PRIMARY KEY (file_id, n)
	)`,
}

var sqliteSchema = []string{
	`CREATE TABLE IF NOT EXISTS invoices (
		id             TEXT PRIMARY KEY,
		file_id        TEXT NOT NULL UNIQUE,
		vendor_name    TEXT NOT NULL,
		invoice_number TEXT NOT NULL,
		created_at     TEXT NOT NULL,
		updated_at     TEXT NOT NULL DEFAULT '',
		doc            TEXT NOT NULL
	)`,
	`CREATE INDEX IF NOT EXISTS invoices_created_at_idx ON invoices (created_at DESC)`,
	`CREATE TABLE IF NOT EXISTS uploads (
		file_id      TEXT PRIMARY KEY,
		filename     TEXT NOT NULL,
		content_type TEXT NOT NULL,
		length       INTEGER NOT NULL,
		chunk_size   INTEGER NOT NULL,
		uploaded_at  TEXT NOT NULL
	)`,
	`CREATE TABLE IF NOT EXISTS upload_chunks (
		file_id TEXT NOT NULL REFERENCES uploads (file_id),
		n       INTEGER NOT NULL,
		data    BLOB NOT NULL,
		PRIMARY KEY (file_id, n)
	)`,
}

// Migrate creates the tables and indexes when they do not exist yet.
func Migrate(ctx context.Context, db *DB, logger *zap.Logger) error {
	stmts := sqliteSchema
	if db.isPostgres() {
		stmts = postgresSchema
	}
	for i, stmt := range stmts {
		if _, err := db.SQL().ExecContext(ctx, stmt); err != nil {
			logger.Error("failed to apply schema", zap.Int("statement", i), zap.Error(err))
			return fmt.Errorf("migrate statement %d: %w", i, err)
		}
	}
	logger.Info("database schema up to date", zap.String("dialect", db.Dialect()), zap.Int("statements", len(stmts)))
	return nil
}
