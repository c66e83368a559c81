package app

import (
	"fmt"
	"log/slog"
	"os"
	"strings"

	"github.com/joho/godotenv"

	"github.com/joseph-ayodele/nutrition-extractor/internal/common"
	"github.com/joseph-ayodele/nutrition-extractor/internal/fallback"
	"github.com/joseph-ayodele/nutrition-extractor/internal/llm/gemini"
	"github.com/joseph-ayodele/nutrition-extractor/internal/metrics"
	"github.com/joseph-ayodele/nutrition-extractor/internal/ocr"
	"github.com/joseph-ayodele/nutrition-extractor/internal/pipeline"
)

// LoadConfig reads an optional .env file, then the environment, and validates.
func LoadConfig(envFiles ...string) (*common.Config, error) {
	if len(envFiles) == 0 {
		envFiles = []string{".env"}
	}
	for _, f := range envFiles {
		if _, err := os.Stat(f); err == nil {
			if err := godotenv.Load(f); err != nil {
				return nil, fmt.Errorf("load %s: %w", f, err)
			}
		}
	}
	cfg := common.LoadConfig()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// NewLogger returns a JSON slog logger at the named level.
func NewLogger(level string) *slog.Logger {
	var lvl slog.Level
	switch strings.ToLower(strings.TrimSpace(level)) {
	case "debug":
		lvl = slog.LevelDebug
	case "warn", "warning":
		lvl = slog.LevelWarn
	case "error":
		lvl = slog.LevelError
	default:
		lvl = slog.LevelInfo
	}
	return slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: lvl}))
}

// NewTextExtractor builds the PDF text stage from config.
func NewTextExtractor(cfg *common.Config, logger *slog.Logger) (*ocr.Extractor, error) {
	if cfg.OCR.TessdataDir != "" {
		if err := os.Setenv("TESSDATA_PREFIX", cfg.OCR.TessdataDir); err != nil {
			return nil, fmt.Errorf("set TESSDATA_PREFIX: %w", err)
		}
	}
	return ocr.NewExtractor(ocr.Config{
		Pdftotext:     cfg.OCR.Pdftotext,
		DPI:           cfg.OCR.DPI,
		Languages:     cfg.OCR.Languages,
		MinDimension:  cfg.OCR.MinDimension,
		EnhanceFactor: cfg.OCR.EnhanceFactor,
		Quality: ocr.QualityThresholds{
			MinChars:    cfg.Quality.MinChars,
			MinKeywords: cfg.Quality.MinKeywords,
			MinNumbers:  cfg.Quality.MinNumbers,
		},
	}, logger)
}

// NewProcessor wires text extraction, the Gemini gateway and the pattern
// fallback into one pipeline. m may be nil.
func NewProcessor(cfg *common.Config, logger *slog.Logger, m *metrics.Metrics) (*pipeline.Processor, error) {
	text, err := NewTextExtractor(cfg, logger)
	if err != nil {
		return nil, err
	}
	fb := fallback.NewEngine(logger)
	gw := gemini.NewClient(gemini.Config{
		BaseURL:         cfg.LLM.BaseURL,
		Model:           cfg.LLM.Model,
		Temperature:     cfg.LLM.Temperature,
		MaxOutputTokens: cfg.LLM.MaxOutputTokens,
		Timeout:         cfg.LLM.Timeout,
	}, fb, logger)

	return pipeline.NewProcessor(text, gw, logger,
		pipeline.WithFallback(fb),
		pipeline.WithTrustPolicy(pipeline.TrustPolicy{MaxTrueAllergens: cfg.Trust.MaxTrueAllergens}),
		pipeline.WithMetrics(m),
	), nil
}
