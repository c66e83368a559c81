package gemini

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/joseph-ayodele/nutrition-extractor/internal/llm"
)

const (
	defaultBaseURL   = "https://generativelanguage.googleapis.com/v1beta"
	defaultModel     = "gemini-2.0-flash"
	defaultMaxTokens = 1000
)

// Config for the Gemini client.
type Config struct {
	BaseURL         string        // default https://generativelanguage.googleapis.com/v1beta
	Model           string        // e.g., "gemini-2.0-flash"
	Temperature     float32       // 0..2
	MaxOutputTokens int           // reply budget
	Timeout         time.Duration // http client timeout
}

type Client struct {
	cfg      Config
	http     *http.Client
	fallback llm.TextFallback
	logger   *slog.Logger
}

// NewClient builds a Gemini gateway. fallback parses replies that are not JSON
// and may be nil, in which case such replies yield an empty envelope.
func NewClient(cfg Config, fallback llm.TextFallback, logger *slog.Logger) *Client {
	if cfg.BaseURL == "" {
		cfg.BaseURL = defaultBaseURL
	}
	if cfg.Model == "" {
		cfg.Model = defaultModel
	}
	if cfg.MaxOutputTokens <= 0 {
		cfg.MaxOutputTokens = defaultMaxTokens
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = 30 * time.Second
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Client{
		cfg:      cfg,
		http:     &http.Client{Timeout: cfg.Timeout},
		fallback: fallback,
		logger:   logger,
	}
}
