package llm

import (
	"context"
	"errors"
	"fmt"

	"github.com/joseph-ayodele/invoices-tracker/internal/common"
)

// RawPayload is the decoded JSON object a provider returned. Its shape is
// only loosely that of ExtractedFields and must go through a Normalizer.
type RawPayload = map[string]any

// Extractor is implemented by every extraction provider. Extract issues a
// single request and never retries.
type Extractor interface {
	Name() string
	Configured() bool
	Extract(ctx context.Context, pdf []byte) (RawPayload, error)
}

var (
	ErrNoJSON             = errors.New("no valid JSON found")
	ErrMissingCredentials = errors.New("api key not configured")
	ErrEmptyResponse      = errors.New("empty response")
)

// ProviderError reports a failed extraction call.
type ProviderError struct {
	Provider   string
	StatusCode int
	Err        error
}

func (e *ProviderError) Error() string {
	if e.StatusCode != 0 {
		return fmt.Sprintf("failed to extract data from PDF via %s (status %d): %v", e.Provider, e.StatusCode, e.Err)
	}
	return fmt.Sprintf("failed to extract data from PDF via %s: %v", e.Provider, e.Err)
}

func (e *ProviderError) Unwrap() []error {
	return []error{e.Err, common.ErrProvider}
}

func NewProviderError(provider string, status int, err error) *ProviderError {
	return &ProviderError{Provider: provider, StatusCode: status, Err: err}
}
