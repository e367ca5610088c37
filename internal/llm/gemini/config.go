package gemini

import (
	"net/http"
	"time"

	"go.uber.org/zap"

	"github.com/joseph-ayodele/invoices-tracker/constants"
)

// Config for the Gemini client.
type Config struct {
	APIKey      string
	BaseURL     string        // default https://generativelanguage.googleapis.com/v1beta
	Model       string        // e.g., "gemini-1.5-flash"
	Temperature float32       // 0..2
	Timeout     time.Duration // http client timeout, 0 for none
}

type Client struct {
	cfg    Config
	http   *http.Client
	logger *zap.Logger
}

func NewClient(cfg Config, logger *zap.Logger) *Client {
	if cfg.BaseURL == "" {
		cfg.BaseURL = "https://generativelanguage.googleapis.com/v1beta"
	}
	if cfg.Model == "" {
		cfg.Model = "gemini-1.5-flash"
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Client{
		cfg:    cfg,
		http:   &http.Client{Timeout: cfg.Timeout},
		logger: logger.With(zap.String("provider", string(constants.ProviderGemini))),
	}
}

func (c *Client) Name() string {
	return string(constants.ProviderGemini)
}

func (c *Client) Configured() bool {
	return c.cfg.APIKey != ""
}
