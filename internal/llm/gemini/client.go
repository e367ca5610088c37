package gemini

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/joseph-ayodele/invoices-tracker/constants"
	"github.com/joseph-ayodele/invoices-tracker/internal/llm"
)

type generateResponse struct {
	Candidates []struct {
		Content struct {
			Parts []struct {
				Text string `json:"text"`
			} `json:"parts"`
		} `json:"content"`
		FinishReason string `json:"finishReason"`
	} `json:"candidates"`
}

// Extract sends the PDF inline with the invoice prompt to generateContent and
// returns the JSON object found in the reply.
func (c *Client) Extract(ctx context.Context, pdf []byte) (llm.RawPayload, error) {
	if !c.Configured() {
		return nil, llm.NewProviderError(c.Name(), 0, llm.ErrMissingCredentials)
	}
	rid := uuid.New().String()
	start := time.Now()

	c.logger.Info("llm.extract.start",
		zap.String("req_id", rid),
		zap.String("model", c.cfg.Model),
		zap.Int("pdf_bytes", len(pdf)),
	)

	body := map[string]any{
		"contents": []map[string]any{
			{
				"role": "user",
				"parts": []map[string]any{
					{"text": llm.BuildInvoicePrompt()},
					{"inline_data": map[string]any{
						"mime_type": constants.PDFContentType,
						"data":      base64.StdEncoding.EncodeToString(pdf),
					}},
				},
			},
		},
		"generationConfig": map[string]any{
			"temperature": c.cfg.Temperature,
		},
	}

	endpoint := strings.TrimRight(c.cfg.BaseURL, "/") + "/models/" + url.PathEscape(c.cfg.Model) + ":generateContent"
	headers := map[string]string{"x-goog-api-key": c.cfg.APIKey}

	raw, status, err := llm.SendJSON(ctx, c.http, endpoint, body, headers, c.logger)
	if err != nil {
		c.logger.Error("llm.extract.http_error",
			zap.String("req_id", rid), zap.Error(err),
			zap.Int64("elapsed_ms", time.Since(start).Milliseconds()),
		)
		return nil, llm.NewProviderError(c.Name(), status, err)
	}

	var gr generateResponse
	if err := json.Unmarshal(raw, &gr); err != nil {
		c.logger.Error("llm.extract.decode_error",
			zap.String("req_id", rid), zap.Error(err), zap.Int("raw_bytes", len(raw)),
		)
		return nil, llm.NewProviderError(c.Name(), status, fmt.Errorf("decode gemini response: %w", err))
	}

	var text strings.Builder
	if len(gr.Candidates) > 0 {
		for _, p := range gr.Candidates[0].Content.Parts {
			text.WriteString(p.Text)
		}
	}
	if strings.TrimSpace(text.String()) == "" {
		c.logger.Error("llm.extract.empty_response", zap.String("req_id", rid))
		return nil, llm.NewProviderError(c.Name(), status, llm.ErrEmptyResponse)
	}

	payload, err := llm.ParseJSONObject(text.String())
	if err != nil {
		c.logger.Error("llm.extract.no_json",
			zap.String("req_id", rid), zap.Error(err), zap.Int("text_len", text.Len()),
		)
		return nil, llm.NewProviderError(c.Name(), status, err)
	}

	c.logger.Info("llm.extract.ok",
		zap.String("req_id", rid),
		zap.Int("text_len", text.Len()),
		zap.Int64("elapsed_ms", time.Since(start).Milliseconds()),
	)
	return payload, nil
}
