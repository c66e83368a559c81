package ocr

import (
	"bytes"
	"context"
	"fmt"
	"image"
	"image/png"
	"strings"
)

// minOCRChars is the stripped length an OCR pass must exceed to be accepted.
const minOCRChars = 10

type ocrOutput struct {
	text     string
	pages    int
	language string
	warnings []string
}

// ocrAsync runs OCR off the caller's goroutine so a cancelled ctx returns at once.
// The worker notices cancellation between pages and exits.
func (e *Extractor) ocrAsync(ctx context.Context, doc []byte) (ocrOutput, error) {
	type result struct {
		out ocrOutput
		err error
	}
	done := make(chan result, 1)
	go func() {
		out, err := e.ocrDocument(ctx, doc)
		done <- result{out: out, err: err}
	}()
	select {
	case r := <-done:
		return r.out, r.err
	case <-ctx.Done():
		return ocrOutput{}, ctx.Err()
	}
}

// ocrDocument renders and recognizes every page in order. A page that fails is
// skipped with a warning.
func (e *Extractor) ocrDocument(ctx context.Context, doc []byte) (ocrOutput, error) {
	var out ocrOutput
	var b strings.Builder
	pages, err := e.raster.Rasterize(ctx, doc, e.cfg.DPI, func(page int, img image.Image) error {
		if err := ctx.Err(); err != nil {
			return err
		}
		txt, lang, err := e.recognizePage(ctx, img)
		if err != nil {
			if ctx.Err() != nil {
				return ctx.Err()
			}
			out.warnings = append(out.warnings, fmt.Sprintf("page %d: %v", page, err))
			e.logger.Warn("ocr.page.failed", "page", page, "error", err)
			return nil
		}
		if lang != "" {
			out.language = lang
		}
		b.WriteString(CleanPage(txt))
		b.WriteString("\n")
		e.logger.Debug("ocr.page.ok", "page", page, "lang", lang, "chars", len(txt))
		return nil
	})
	out.text = b.String()
	out.pages = pages
	return out, err
}

// recognizePage tries each language profile, then no hint at all.
func (e *Extractor) recognizePage(ctx context.Context, img image.Image) (string, string, error) {
	enhanced := Enhance(img, e.cfg.MinDimension, e.cfg.EnhanceFactor)
	var buf bytes.Buffer
	if err := png.Encode(&buf, enhanced); err != nil {
		return "", "", fmt.Errorf("encode page: %w", err)
	}
	encoded := buf.Bytes()

	for _, lang := range e.cfg.Languages {
		txt, err := e.engine.Recognize(ctx, encoded, lang)
		if err != nil {
			if ctx.Err() != nil {
				return "", "", ctx.Err()
			}
			e.logger.Debug("ocr.lang.failed", "lang", lang, "error", err)
			continue
		}
		if len([]rune(strings.TrimSpace(txt))) > minOCRChars {
			return txt, lang, nil
		}
	}
	txt, err := e.engine.Recognize(ctx, encoded, "")
	if err != nil {
		return "", "", err
	}
	return txt, "", nil
}
