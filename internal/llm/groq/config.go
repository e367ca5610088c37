package groq

import (
	"net/http"
	"time"

	"go.uber.org/zap"

	"github.com/joseph-ayodele/invoices-tracker/constants"
)

// Config for the Groq client. Groq serves the OpenAI chat/completions API.
type Config struct {
	APIKey      string
	BaseURL     string        // default https://api.groq.com/openai/v1
	Model       string        // e.g., "llama-3.3-70b-versatile"
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
		cfg.BaseURL = "https://api.groq.com/openai/v1"
	}
	if cfg.Model == "" {
		cfg.Model = "llama-3.3-70b-versatile"
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Client{
		cfg:    cfg,
		http:   &http.Client{Timeout: cfg.Timeout},
		logger: logger.With(zap.String("provider", string(constants.ProviderGroq))),
	}
}

func (c *Client) Name() string {
	return string(constants.ProviderGroq)
}

func (c *Client) Configured() bool {
	return c.cfg.APIKey != ""
}
