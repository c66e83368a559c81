package ocr

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/joseph-ayodele/nutrition-extractor/constants"
	"github.com/joseph-ayodele/nutrition-extractor/internal/common"
)

// Extraction methods reported in ExtractionResult.Method.
const (
	MethodText       = "pdf-text"
	MethodOCR        = "pdf-ocr"
	MethodTextAndOCR = "pdf-text+ocr"
)

type Config struct {
	Pdftotext string // binary name or absolute path; if empty -> "pdftotext"

	DPI           float64  // rasterization DPI, default 300
	Languages     []string // OCR language profiles tried in order
	MinDimension  int      // upscale target for the shorter page side, default 2000
	EnhanceFactor float64  // contrast and sharpness factor, default 2.0
	MaxPages      int      // 0 = no limit

	Quality QualityThresholds
}

type ExtractionResult struct {
	Text     string
	Pages    int
	Method   string
	Language string // last language profile that produced accepted OCR text
	Duration time.Duration
	Warnings []string
	Quality  QualityReport
}

type Extractor struct {
	cfg     Config
	text    TextLayerReader
	raster  Rasterizer
	engine  Engine
	quality *QualityScorer
	logger  *slog.Logger
}

// Option overrides a collaborator, mostly for tests.
type Option func(*Extractor)

func WithTextLayerReader(r TextLayerReader) Option { return func(e *Extractor) { e.text = r } }
func WithRasterizer(r Rasterizer) Option           { return func(e *Extractor) { e.raster = r } }
func WithEngine(en Engine) Option                  { return func(e *Extractor) { e.engine = en } }

func NewExtractor(cfg Config, logger *slog.Logger, opts ...Option) (*Extractor, error) {
	if logger == nil {
		logger = slog.Default()
	}
	if cfg.Pdftotext == "" {
		cfg.Pdftotext = "pdftotext"
	}
	if cfg.DPI <= 0 {
		cfg.DPI = 300
	}
	if len(cfg.Languages) == 0 {
		cfg.Languages = []string{"hun+eng", "hun", "eng"}
	}
	if cfg.MinDimension <= 0 {
		cfg.MinDimension = 2000
	}
	if cfg.EnhanceFactor <= 0 {
		cfg.EnhanceFactor = 2.0
	}
	if cfg.Quality == (QualityThresholds{}) {
		cfg.Quality = DefaultQualityThresholds()
	}

	q, err := NewQualityScorer(cfg.Quality)
	if err != nil {
		return nil, fmt.Errorf("build quality scorer: %w", err)
	}
	e := &Extractor{
		cfg: cfg,
		text: ChainReader{
			Readers: []TextLayerReader{
				PDFTextReader{},
				PdftotextReader{Binary: cfg.Pdftotext},
			},
			Logger: logger,
		},
		raster:  FitzRasterizer{MaxPages: cfg.MaxPages},
		engine:  NewTesseractEngine(int(cfg.DPI)),
		quality: q,
		logger:  logger,
	}
	for _, o := range opts {
		o(e)
	}
	return e, nil
}

// Extract returns the best-effort plain text of a PDF. Direct text is scored first;
// OCR runs only when it falls short. Only non-PDF input and total extraction
// failure are errors.
func (e *Extractor) Extract(ctx context.Context, doc []byte) (ExtractionResult, error) {
	start := time.Now()
	if !bytes.HasPrefix(doc, []byte(constants.PDFMagic)) {
		e.logger.Warn("ocr.extract.invalid_document", "bytes", len(doc))
		return ExtractionResult{}, common.InvalidDocument("input is not a PDF document")
	}
	e.logger.Debug("ocr.extract.start", "bytes", len(doc))

	res := ExtractionResult{Method: MethodText}
	direct, pages, directErr := e.text.ReadText(ctx, doc)
	if directErr != nil {
		res.Warnings = append(res.Warnings, "text layer: "+directErr.Error())
		e.logger.Warn("ocr.textlayer.failed", "error", directErr)
	}
	res.Pages = pages
	res.Quality = e.quality.Score(direct)

	if res.Quality.OK {
		res.Text = Normalize(direct)
		res.Duration = time.Since(start)
		e.logger.Info("ocr.extract.ok", "method", res.Method, "pages", res.Pages, "chars", len(res.Text), "elapsed_ms", res.Duration.Milliseconds())
		return res, nil
	}

	e.logger.Info("ocr.quality.insufficient",
		"chars", res.Quality.Chars,
		"keywords", res.Quality.Keywords,
		"numbers", res.Quality.Numbers,
	)

	scanned, err := e.ocrAsync(ctx, doc)
	if err != nil && ctx.Err() != nil {
		return ExtractionResult{}, common.DocumentProcessing(ctx.Err())
	}
	res.Warnings = append(res.Warnings, scanned.warnings...)
	if scanned.pages > res.Pages {
		res.Pages = scanned.pages
	}
	res.Language = scanned.language
	if err != nil {
		e.logger.Warn("ocr.pages.failed", "error", err)
		if directErr != nil {
			return ExtractionResult{}, common.DocumentProcessing(errors.Join(directErr, err))
		}
	}

	hasDirect := strings.TrimSpace(direct) != ""
	hasOCR := strings.TrimSpace(scanned.text) != ""
	switch {
	case hasDirect && hasOCR:
		res.Method = MethodTextAndOCR
		res.Text = Normalize(direct + "\n" + scanned.text)
	case hasOCR:
		res.Method = MethodOCR
		res.Text = Normalize(scanned.text)
	default:
		res.Text = Normalize(direct)
	}
	res.Duration = time.Since(start)
	e.logger.Info("ocr.extract.ok", "method", res.Method, "pages", res.Pages, "chars", len(res.Text), "elapsed_ms", res.Duration.Milliseconds())
	return res, nil
}
