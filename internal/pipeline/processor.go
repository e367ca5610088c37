package pipeline

import (
	"context"
	"errors"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/joseph-ayodele/invoices-tracker/constants"
	"github.com/joseph-ayodele/invoices-tracker/internal/common"
	"github.com/joseph-ayodele/invoices-tracker/internal/entity"
	"github.com/joseph-ayodele/invoices-tracker/internal/llm"
)

const msgFileMissing = "File not found or empty. Please upload the PDF first."

// BlobReader is the part of the blob store the processor needs.
type BlobReader interface {
	Get(ctx context.Context, fileID string) ([]byte, error)
}

// Request asks for fields to be extracted from an uploaded PDF.
type Request struct {
	FileID string `json:"fileId"`
	Model  string `json:"model"`
}

// Result is a normalized extraction. Provider names the backend whose output
// was used, which differs from the requested one after a fallback.
type Result struct {
	Fields   entity.ExtractedFields
	Provider constants.Provider
	FellBack bool
}

type provider struct {
	extractor llm.Extractor
	normalize llm.Normalizer
}

// Processor loads a blob, runs it through the chosen provider and normalizer,
// and retries once on the fallback provider when Groq comes back empty.
type Processor struct {
	logger    *zap.Logger
	blobs     BlobReader
	providers map[constants.Provider]provider
	fallbacks map[constants.Provider]constants.Provider
}

func NewProcessor(logger *zap.Logger, blobs BlobReader, gemini, groq llm.Extractor) *Processor {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Processor{
		logger: logger,
		blobs:  blobs,
		providers: map[constants.Provider]provider{
			constants.ProviderGemini: {extractor: gemini, normalize: llm.NormalizePassthrough},
			constants.ProviderGroq:   {extractor: groq, normalize: llm.NormalizeCoercing},
		},
		fallbacks: map[constants.Provider]constants.Provider{
			constants.ProviderGroq: constants.ProviderGemini,
		},
	}
}

// Extract validates req, loads the blob and extracts fields from it.
// Request problems come back as validation errors, a missing or empty blob
// as not found, and provider failures as *llm.ProviderError.
func (p *Processor) Extract(ctx context.Context, req Request) (*Result, error) {
	v := common.NewValidator().
		Field("fileId", req.FileID, common.Required).
		Field("model", req.Model, common.OneOf(constants.ProvidersAsStringSlice()...))
	if err := v.Err(); err != nil {
		return nil, err
	}
	name, err := p.resolve(req.Model)
	if err != nil {
		return nil, err
	}

	pdf, err := p.blobs.Get(ctx, req.FileID)
	if err != nil || len(pdf) == 0 {
		p.logger.Warn("pipeline.blob.missing", zap.String("file_id", req.FileID), zap.Error(err))
		return nil, common.NotFound(msgFileMissing)
	}
	p.logger.Info("pipeline.extract.start",
		zap.String("file_id", req.FileID),
		zap.String("provider", string(name)),
		zap.Int("bytes", len(pdf)),
	)
	return p.run(ctx, name, pdf)
}

// ExtractPDF runs extraction on bytes already in memory.
func (p *Processor) ExtractPDF(ctx context.Context, model string, pdf []byte) (*Result, error) {
	if err := common.NewValidator().
		Field("model", model, common.OneOf(constants.ProvidersAsStringSlice()...)).
		Err(); err != nil {
		return nil, err
	}
	name, err := p.resolve(model)
	if err != nil {
		return nil, err
	}
	if len(pdf) == 0 {
		return nil, common.NotFound(msgFileMissing)
	}
	return p.run(ctx, name, pdf)
}

func (p *Processor) resolve(model string) (constants.Provider, error) {
	name, _ := constants.ParseProvider(model)
	prov, ok := p.providers[name]
	if !ok || prov.extractor == nil || !prov.extractor.Configured() {
		msg := strings.ToUpper(string(name)) + "_API_KEY not configured on server"
		return "", common.NewAppError(common.CodeConfig, msg, errors.Join(common.ErrInvalidInput, llm.ErrMissingCredentials))
	}
	return name, nil
}

func (p *Processor) run(ctx context.Context, name constants.Provider, pdf []byte) (*Result, error) {
	fields, err := p.call(ctx, name, pdf)

	if alt, ok := p.fallbacks[name]; ok && (err != nil || llm.IsEffectivelyEmpty(fields)) {
		if altProv, ok := p.providers[alt]; ok && altProv.extractor != nil && altProv.extractor.Configured() {
			ExtractionFallbacksTotal.Inc()
			p.logger.Warn("pipeline.extract.fallback",
				zap.String("from", string(name)),
				zap.String("to", string(alt)),
				zap.Bool("primary_failed", err != nil),
			)
			altFields, altErr := p.call(ctx, alt, pdf)
			if altErr == nil {
				ExtractionsTotal.WithLabelValues(string(name), string(constants.OutcomeFallback)).Inc()
				return &Result{Fields: altFields, Provider: alt, FellBack: true}, nil
			}
			p.logger.Warn("pipeline.extract.fallback_failed", zap.String("provider", string(alt)), zap.Error(altErr))
			if err == nil {
				ExtractionsTotal.WithLabelValues(string(name), string(constants.OutcomeFallbackFailed)).Inc()
				return &Result{Fields: fields, Provider: name}, nil
			}
		}
	}

	if err != nil {
		ExtractionsTotal.WithLabelValues(string(name), string(constants.OutcomeFailed)).Inc()
		return nil, err
	}
	ExtractionsTotal.WithLabelValues(string(name), string(constants.OutcomeOK)).Inc()
	return &Result{Fields: fields, Provider: name}, nil
}

// call makes one provider round trip and normalizes its payload.
func (p *Processor) call(ctx context.Context, name constants.Provider, pdf []byte) (entity.ExtractedFields, error) {
	prov := p.providers[name]
	start := time.Now()
	raw, err := prov.extractor.Extract(ctx, pdf)
	elapsed := time.Since(start)
	if err != nil {
		ProviderCallDuration.WithLabelValues(string(name), "error").Observe(elapsed.Seconds())
		p.logger.Error("pipeline.provider.failed",
			zap.String("provider", string(name)),
			zap.Int64("elapsed_ms", elapsed.Milliseconds()),
			zap.Error(err),
		)
		var pe *llm.ProviderError
		if !errors.As(err, &pe) {
			err = llm.NewProviderError(string(name), 0, err)
		}
		return entity.ExtractedFields{}, err
	}
	ProviderCallDuration.WithLabelValues(string(name), "success").Observe(elapsed.Seconds())

	fields := prov.normalize(raw)
	p.logger.Info("pipeline.provider.ok",
		zap.String("provider", string(name)),
		zap.Int64("elapsed_ms", elapsed.Milliseconds()),
		zap.Bool("empty", llm.IsEffectivelyEmpty(fields)),
		zap.Int("line_items", len(fields.Invoice.LineItems)),
	)
	return fields, nil
}
