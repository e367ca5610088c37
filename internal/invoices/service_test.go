package invoices

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/joseph-ayodele/invoices-tracker/internal/common"
	"github.com/joseph-ayodele/invoices-tracker/internal/repository"
)

func newTestService(t *testing.T) *Service {
	t.Helper()
	ctx := context.Background()
	db, err := repository.OpenSQLite(ctx, ":memory:", zap.NewNop())
	require.NoError(t, err)
	t.Cleanup(func() { repository.Close(db, zap.NewNop()) })
	require.NoError(t, repository.Migrate(ctx, db, zap.NewNop()))

	repo, err := repository.NewInvoiceRepository(db, zap.NewNop())
	require.NoError(t, err)
	svc := NewService(repo, zap.NewNop())

	clock := time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)
	svc.now = func() time.Time {
		clock = clock.Add(time.Second)
		return clock
	}
	return svc
}

func body(fileID, vendor, number string) map[string]any {
	return map[string]any{
		"fileId":   fileID,
		"fileName": "invoice.pdf",
		"vendor":   map[string]any{"name": vendor},
		"invoice":  map[string]any{"number": number, "date": "2024-02-01", "total": 12.5},
	}
}

func TestService_CreateStampsTimestamps(t *testing.T) {
	svc := newTestService(t)
	ctx := context.Background()

	doc := body("f-1", "Acme Corp", "INV-1")
	doc["createdAt"] = "1999-01-01T00:00:00.000Z"
	created, err := svc.Create(ctx, doc)
	require.NoError(t, err)
	assert.Equal(t, "2024-03-01T12:00:01.000Z", created.CreatedAt)
	assert.Equal(t, created.CreatedAt, created.UpdatedAt)
	assert.Equal(t, "USD", created.Invoice.Currency)

	updated, err := svc.Update(ctx, created.ID, map[string]any{
		"vendor": map[string]any{"name": "Acme Inc"},
	})
	require.NoError(t, err)
	assert.Equal(t, created.CreatedAt, updated.CreatedAt)
	assert.Equal(t, "2024-03-01T12:00:02.000Z", updated.UpdatedAt)
	assert.Equal(t, "Acme Inc", updated.Vendor.Name)
	assert.Equal(t, "INV-1", updated.Invoice.Number)
}

func TestService_Pagination(t *testing.T) {
	svc := newTestService(t)
	ctx := context.Background()
	for i := 0; i < 25; i++ {
		_, err := svc.Create(ctx, body(fmt.Sprintf("f-%02d", i), "Vendor", fmt.Sprintf("N-%02d", i)))
		require.NoError(t, err)
	}

	res, err := svc.List(ctx, ListRequest{Limit: 10})
	require.NoError(t, err)
	assert.Equal(t, Pagination{Page: 1, Limit: 10, Total: 25, Pages: 3}, res.Pagination)
	require.Len(t, res.Invoices, 10)
	assert.Equal(t, "N-24", res.Invoices[0].Invoice.Number)

	res, err = svc.List(ctx, ListRequest{Page: 4, Limit: 10})
	require.NoError(t, err)
	assert.Empty(t, res.Invoices)
	assert.NotNil(t, res.Invoices)
	assert.Equal(t, 25, res.Pagination.Total)

	res, err = svc.List(ctx, ListRequest{Limit: 1000})
	require.NoError(t, err)
	assert.Equal(t, MaxLimit, res.Pagination.Limit)
	assert.Equal(t, 1, res.Pagination.Pages)

	all, err := svc.All(ctx, "n-1")
	require.NoError(t, err)
	assert.Len(t, all, 10)
}

func TestService_InvalidID(t *testing.T) {
	svc := newTestService(t)
	ctx := context.Background()

	_, err := svc.Get(ctx, "not-a-uuid")
	assert.Equal(t, common.CodeInvalidID, common.ErrorCode(err))
	_, err = svc.Update(ctx, "123", map[string]any{})
	assert.Equal(t, common.CodeInvalidID, common.ErrorCode(err))
	assert.Equal(t, common.CodeInvalidID, common.ErrorCode(svc.Delete(ctx, "")))

	missing := uuid.NewString()
	_, err = svc.Get(ctx, missing)
	assert.ErrorIs(t, err, common.ErrNotFound)
	assert.ErrorIs(t, svc.Delete(ctx, missing), common.ErrNotFound)
}

func TestService_CreateRejectsInvalid(t *testing.T) {
	svc := newTestService(t)
	ctx := context.Background()

	_, err := svc.Create(ctx, nil)
	require.Error(t, err)
	assert.Equal(t, common.CodeValidation, common.ErrorCode(err))

	_, err = svc.Create(ctx, body("dup", "A", "1"))
	require.NoError(t, err)
	_, err = svc.Create(ctx, body("dup", "B", "2"))
	assert.ErrorIs(t, err, common.ErrConflict)
}
