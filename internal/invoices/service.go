package invoices

import (
	"context"
	"math"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/joseph-ayodele/invoices-tracker/internal/common"
	"github.com/joseph-ayodele/invoices-tracker/internal/entity"
	"github.com/joseph-ayodele/invoices-tracker/internal/repository"
)

const (
	DefaultPage  = 1
	DefaultLimit = 10
	MaxLimit     = 100
)

// Service handles invoice business logic on top of the document store.
type Service struct {
	repo   repository.InvoiceRepository
	logger *zap.Logger
	now    func() time.Time
}

// NewService creates a new invoice service.
func NewService(repo repository.InvoiceRepository, logger *zap.Logger) *Service {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Service{repo: repo, logger: logger, now: time.Now}
}

// ListRequest represents invoice listing parameters. Zero values select the
// defaults.
type ListRequest struct {
	Query string
	Page  int
	Limit int
}

type Pagination struct {
	Page  int `json:"page"`
	Limit int `json:"limit"`
	Total int `json:"total"`
	Pages int `json:"pages"`
}

type ListResult struct {
	Invoices   []entity.InvoiceDocument `json:"invoices"`
	Pagination Pagination               `json:"pagination"`
}

// List returns one page of invoices, newest first.
func (s *Service) List(ctx context.Context, req ListRequest) (*ListResult, error) {
	if req.Page < 1 {
		req.Page = DefaultPage
	}
	if req.Limit < 1 {
		req.Limit = DefaultLimit
	}
	if req.Limit > MaxLimit {
		req.Limit = MaxLimit
	}

	docs, total, err := s.repo.Find(ctx, repository.InvoiceFilter{Query: req.Query, Page: req.Page, PageSize: req.Limit})
	if err != nil {
		s.logger.Error("failed to list invoices", zap.String("q", req.Query), zap.Error(err))
		return nil, err
	}
	s.logger.Debug("invoices listed", zap.String("q", req.Query), zap.Int("page", req.Page), zap.Int("count", len(docs)), zap.Int("total", total))
	return &ListResult{
		Invoices: docs,
		Pagination: Pagination{
			Page:  req.Page,
			Limit: req.Limit,
			Total: total,
			Pages: int(math.Ceil(float64(total) / float64(req.Limit))),
		},
	}, nil
}

// All returns every invoice matching query, newest first.
func (s *Service) All(ctx context.Context, query string) ([]entity.InvoiceDocument, error) {
	var out []entity.InvoiceDocument
	for page := 1; ; page++ {
		docs, total, err := s.repo.Find(ctx, repository.InvoiceFilter{Query: query, Page: page, PageSize: MaxLimit})
		if err != nil {
			return nil, err
		}
		out = append(out, docs...)
		if len(docs) < MaxLimit || len(out) >= total {
			return out, nil
		}
	}
}

func (s *Service) Get(ctx context.Context, id string) (*entity.InvoiceDocument, error) {
	if err := checkID(id); err != nil {
		return nil, err
	}
	return s.repo.Get(ctx, id)
}

// Create stamps both timestamps and stores doc.
func (s *Service) Create(ctx context.Context, doc map[string]any) (*entity.InvoiceDocument, error) {
	if doc == nil {
		doc = map[string]any{}
	}
	now := common.FormatTimestamp(s.now())
	doc["createdAt"] = now
	doc["updatedAt"] = now

	created, err := s.repo.Create(ctx, doc)
	if err != nil {
		s.logger.Warn("create invoice rejected", zap.Error(err))
		return nil, err
	}
	s.logger.Info("invoice created", zap.String("id", created.ID), zap.String("file_id", created.FileID))
	return created, nil
}

// Update merges patch into the stored invoice and refreshes updatedAt.
func (s *Service) Update(ctx context.Context, id string, patch map[string]any) (*entity.InvoiceDocument, error) {
	if err := checkID(id); err != nil {
		return nil, err
	}
	if patch == nil {
		patch = map[string]any{}
	}
	patch["updatedAt"] = common.FormatTimestamp(s.now())

	updated, err := s.repo.Update(ctx, id, patch)
	if err != nil {
		s.logger.Warn("update invoice rejected", zap.String("id", id), zap.Error(err))
		return nil, err
	}
	s.logger.Info("invoice updated", zap.String("id", id))
	return updated, nil
}

func (s *Service) Delete(ctx context.Context, id string) error {
	if err := checkID(id); err != nil {
		return err
	}
	if err := s.repo.Delete(ctx, id); err != nil {
		return err
	}
	s.logger.Info("invoice deleted", zap.String("id", id))
	return nil
}

func checkID(id string) error {
	if _, err := uuid.Parse(id); err != nil {
		return common.InvalidID()
	}
	return nil
}
