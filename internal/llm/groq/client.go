package groq

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/joseph-ayodele/invoices-tracker/internal/llm"
)

// Extract sends the base64 PDF as chat content and returns the JSON object
// found in the first choice.
func (c *Client) Extract(ctx context.Context, pdf []byte) (llm.RawPayload, error) {
	if !c.Configured() {
		return nil, llm.NewProviderError(c.Name(), 0, llm.ErrMissingCredentials)
	}
	rid := uuid.New().String()
	start := time.Now()

	c.logger.Info("llm.extract.start",
		zap.String("req_id", rid),
		zap.String("model", c.cfg.Model),
		zap.Float32("temp", c.cfg.Temperature),
		zap.Int("pdf_bytes", len(pdf)),
	)

	body := map[string]any{
		"model":       c.cfg.Model,
		"temperature": c.cfg.Temperature,
		"messages": []map[string]any{
			{"role": "system", "content": llm.BuildInvoicePrompt()},
			{"role": "user", "content": "PDF (base64): " + base64.StdEncoding.EncodeToString(pdf)},
		},
	}

	endpoint := strings.TrimRight(c.cfg.BaseURL, "/") + "/chat/completions"
	headers := map[string]string{"Authorization": "Bearer " + c.cfg.APIKey}

	raw, status, err := llm.SendJSON(ctx, c.http, endpoint, body, headers, c.logger)
	if err != nil {
		c.logger.Error("llm.extract.http_error",
			zap.String("req_id", rid), zap.Error(err),
			zap.Int64("elapsed_ms", time.Since(start).Milliseconds()),
		)
		return nil, llm.NewProviderError(c.Name(), status, err)
	}

	var cc struct {
		Choices []struct {
			Message struct {
				Content string `json:"content"`
			} `json:"message"`
		} `json:"choices"`
	}
	if err := json.Unmarshal(raw, &cc); err != nil {
		c.logger.Error("llm.extract.decode_error",
			zap.String("req_id", rid), zap.Error(err), zap.Int("raw_bytes", len(raw)),
		)
		return nil, llm.NewProviderError(c.Name(), status, fmt.Errorf("decode groq response: %w", err))
	}
	if len(cc.Choices) == 0 || strings.TrimSpace(cc.Choices[0].Message.Content) == "" {
		c.logger.Error("llm.extract.empty_response", zap.String("req_id", rid))
		return nil, llm.NewProviderError(c.Name(), status, llm.ErrEmptyResponse)
	}
	content := cc.Choices[0].Message.Content

	payload, err := llm.ParseJSONObject(content)
	if err != nil {
		c.logger.Error("llm.extract.no_json",
			zap.String("req_id", rid), zap.Error(err), zap.Int("content_len", len(content)),
		)
		return nil, llm.NewProviderError(c.Name(), status, err)
	}

	c.logger.Info("llm.extract.ok",
		zap.String("req_id", rid),
		zap.Int("content_len", len(content)),
		zap.Int64("elapsed_ms", time.Since(start).Milliseconds()),
	)
	return payload, nil
}
