package repository

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func newTestDB(t *testing.T) *DB {
	t.Helper()
	ctx := context.Background()
	db, err := OpenSQLite(ctx, ":memory:", zap.NewNop())
	require.NoError(t, err)
	t.Cleanup(func() { Close(db, zap.NewNop()) })
	require.NoError(t, Migrate(ctx, db, zap.NewNop()))
	return db
}

func invoiceDoc(fileID, vendor, number, createdAt string) map[string]any {
	return map[string]any{
		"fileId":   fileID,
		"fileName": fileID + ".pdf",
		"vendor":   map[string]any{"name": vendor},
		"invoice": map[string]any{
			"number": number,
			"date":   "2024-01-15",
			"total":  100.5,
			"lineItems": []any{
				map[string]any{"description": "Widget", "unitPrice": 10.0, "quantity": 2.0, "total": 20.0},
			},
		},
		"createdAt": createdAt,
		"updatedAt": createdAt,
	}
}
