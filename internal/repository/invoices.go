package repository

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	entsql "entgo.io/ent/dialect/sql"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgconn"
	"go.uber.org/zap"
	"modernc.org/sqlite"
	sqlite3 "modernc.org/sqlite/lib"

	"github.com/joseph-ayodele/invoices-tracker/internal/common"
	"github.com/joseph-ayodele/invoices-tracker/internal/entity"
)

// InvoiceFilter selects one page of invoices. Query is matched as a
// case-insensitive substring of the vendor name or invoice number.
type InvoiceFilter struct {
	Query    string
	Page     int
	PageSize int
}

type InvoiceRepository interface {
	Find(ctx context.Context, filter InvoiceFilter) ([]entity.InvoiceDocument, int, error)
	Get(ctx context.Context, id string) (*entity.InvoiceDocument, error)
	Create(ctx context.Context, doc map[string]any) (*entity.InvoiceDocument, error)
	Update(ctx context.Context, id string, patch map[string]any) (*entity.InvoiceDocument, error)
	Delete(ctx context.Context, id string) error
}

type invoiceRepo struct {
	db        *DB
	validator *documentValidator
	logger    *zap.Logger
}

func NewInvoiceRepository(db *DB, logger *zap.Logger) (InvoiceRepository, error) {
	v, err := newDocumentValidator()
	if err != nil {
		return nil, err
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &invoiceRepo{db: db, validator: v, logger: logger}, nil
}

var invoiceColumns = []string{"id", "doc"}

func (r *invoiceRepo) Find(ctx context.Context, filter InvoiceFilter) ([]entity.InvoiceDocument, int, error) {
	if filter.Page < 1 {
		filter.Page = 1
	}
	if filter.PageSize < 1 {
		filter.PageSize = 10
	}
	b := r.db.builder()

	q := strings.TrimSpace(filter.Query)
	search := func() *entsql.Predicate {
		return entsql.Or(
			entsql.ContainsFold("vendor_name", q),
			entsql.ContainsFold("invoice_number", q),
		)
	}

	count := b.Select().Count().From(b.Table(tableInvoices))
	if q != "" {
		count.Where(search())
	}
	query, args := count.Query()
	var total int
	if err := r.db.SQL().QueryRowContext(ctx, query, args...).Scan(&total); err != nil {
		r.logger.Error("failed to count invoices", zap.String("q", filter.Query), zap.Error(err))
		return nil, 0, err
	}

	sel := b.Select(invoiceColumns...).
		From(b.Table(tableInvoices)).
		OrderBy(entsql.Desc("created_at"), entsql.Desc("id")).
		Limit(filter.PageSize).
		Offset((filter.Page - 1) * filter.PageSize)
	if q != "" {
		sel.Where(search())
	}
	query, args = sel.Query()
	rows, err := r.db.SQL().QueryContext(ctx, query, args...)
	if err != nil {
		r.logger.Error("failed to list invoices", zap.String("q", filter.Query), zap.Error(err))
		return nil, 0, err
	}
	defer rows.Close()

	out := make([]entity.InvoiceDocument, 0, filter.PageSize)
	for rows.Next() {
		doc, err := scanInvoice(rows)
		if err != nil {
			return nil, 0, err
		}
		out = append(out, *doc)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, err
	}
	return out, total, nil
}

func (r *invoiceRepo) Get(ctx context.Context, id string) (*entity.InvoiceDocument, error) {
	return r.get(ctx, r.db.SQL(), id)
}

type queryer interface {
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

func (r *invoiceRepo) get(ctx context.Context, q queryer, id string) (*entity.InvoiceDocument, error) {
	b := r.db.builder()
	query, args := b.Select(invoiceColumns...).
		From(b.Table(tableInvoices)).
		Where(entsql.EQ("id", id)).
		Query()
	doc, err := scanInvoice(q.QueryRowContext(ctx, query, args...))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, common.NotFound("Invoice not found")
	}
	if err != nil {
		r.logger.Error("failed to get invoice", zap.String("id", id), zap.Error(err))
		return nil, err
	}
	return doc, nil
}

func (r *invoiceRepo) Create(ctx context.Context, raw map[string]any) (*entity.InvoiceDocument, error) {
	doc, body, err := r.decode(raw)
	if err != nil {
		return nil, err
	}
	doc.ID = uuid.NewString()

	b := r.db.builder()
	query, args := b.Insert(tableInvoices).
		Columns("id", "file_id", "vendor_name", "invoice_number", "created_at", "updated_at", "doc").
		Values(doc.ID, doc.FileID, doc.Vendor.Name, doc.Invoice.Number, doc.CreatedAt, doc.UpdatedAt, body).
		Query()
	if _, err := r.db.SQL().ExecContext(ctx, query, args...); err != nil {
		if isUniqueViolation(err) {
			r.logger.Warn("duplicate invoice file id", zap.String("file_id", doc.FileID))
			return nil, common.Conflict("Duplicate entry", err)
		}
		r.logger.Error("failed to create invoice", zap.String("file_id", doc.FileID), zap.Error(err))
		return nil, err
	}
	r.logger.Info("repository.invoice.create", zap.String("id", doc.ID), zap.String("file_id", doc.FileID))
	return doc, nil
}

// Update replaces the top-level fields present in patch, re-validates the
// merged document and writes it back. The id, fileId and createdAt of the
// stored document are kept.
func (r *invoiceRepo) Update(ctx context.Context, id string, patch map[string]any) (*entity.InvoiceDocument, error) {
	current, err := r.Get(ctx, id)
	if err != nil {
		return nil, err
	}

	merged, _, err := toJSONValue(current)
	if err != nil {
		return nil, err
	}
	m := merged.(map[string]any)
	for k, v := range patch {
		switch k {
		case "_id", "id", "createdAt":
			continue
		case "fileId":
			if s, ok := v.(string); !ok || s != current.FileID {
				return nil, common.Validation("fileId cannot be changed", nil)
			}
		}
		m[k] = v
	}

	doc, body, err := r.decode(m)
	if err != nil {
		return nil, err
	}
	doc.ID = current.ID

	b := r.db.builder()
	query, args := b.Update(tableInvoices).
		Set("vendor_name", doc.Vendor.Name).
		Set("invoice_number", doc.Invoice.Number).
		Set("updated_at", doc.UpdatedAt).
		Set("doc", body).
		Where(entsql.EQ("id", id)).
		Query()
	res, err := r.db.SQL().ExecContext(ctx, query, args...)
	if err != nil {
		r.logger.Error("failed to update invoice", zap.String("id", id), zap.Error(err))
		return nil, err
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return nil, common.NotFound("Invoice not found")
	}
	return doc, nil
}

func (r *invoiceRepo) Delete(ctx context.Context, id string) error {
	b := r.db.builder()
	query, args := b.Delete(tableInvoices).Where(entsql.EQ("id", id)).Query()
	res, err := r.db.SQL().ExecContext(ctx, query, args...)
	if err != nil {
		r.logger.Error("failed to delete invoice", zap.String("id", id), zap.Error(err))
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return common.NotFound("Invoice not found")
	}
	r.logger.Info("repository.invoice.delete", zap.String("id", id))
	return nil
}

// decode validates raw against the invoice schema and returns the typed
// document plus the JSON persisted in the doc column.
func (r *invoiceRepo) decode(raw map[string]any) (*entity.InvoiceDocument, string, error) {
	v, b, err := toJSONValue(raw)
	if err != nil {
		return nil, "", common.Validation("Validation failed", err)
	}
	if err := r.validator.Validate(v); err != nil {
		r.logger.Debug("invoice document rejected", zap.Error(err))
		return nil, "", common.Validation("Validation failed: "+err.Error(), err)
	}

	var doc entity.InvoiceDocument
	if err := json.Unmarshal(b, &doc); err != nil {
		return nil, "", common.Validation("Validation failed", err)
	}
	if doc.Invoice.Currency == "" {
		doc.Invoice.Currency = "USD"
	}
	if doc.Invoice.LineItems == nil {
		doc.Invoice.LineItems = []entity.LineItem{}
	}
	doc.ID = ""
	body, err := json.Marshal(doc)
	if err != nil {
		return nil, "", err
	}
	return &doc, string(body), nil
}

type scanner interface {
	Scan(dest ...any) error
}

func scanInvoice(s scanner) (*entity.InvoiceDocument, error) {
	var (
		id   string
		body []byte
	)
	if err := s.Scan(&id, &body); err != nil {
		return nil, err
	}
	var doc entity.InvoiceDocument
	if err := json.Unmarshal(body, &doc); err != nil {
		return nil, fmt.Errorf("decode invoice %s: %w", id, err)
	}
	doc.ID = id
	if doc.Invoice.LineItems == nil {
		doc.Invoice.LineItems = []entity.LineItem{}
	}
	return &doc, nil
}

func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return pgErr.Code == "23505"
	}
	var liteErr *sqlite.Error
	if errors.As(err, &liteErr) {
		switch liteErr.Code() {
		case sqlite3.SQLITE_CONSTRAINT_UNIQUE, sqlite3.SQLITE_CONSTRAINT_PRIMARYKEY:
			return true
		}
		return strings.Contains(liteErr.Error(), "UNIQUE constraint failed")
	}
	return false
}
