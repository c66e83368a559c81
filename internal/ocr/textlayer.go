package ocr

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"os/exec"
	"strings"

	"github.com/ledongthuc/pdf"
)

// TextLayerReader pulls the embedded text layer out of a PDF.
type TextLayerReader interface {
	ReadText(ctx context.Context, doc []byte) (text string, pages int, err error)
}

// PDFTextReader reads the text layer in-process with ledongthuc/pdf.
type PDFTextReader struct{}

func (PDFTextReader) ReadText(ctx context.Context, doc []byte) (text string, pages int, err error) {
	// the parser panics on some malformed xref tables
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("pdf parser panic: %v", r)
		}
	}()

	r, err := pdf.NewReader(bytes.NewReader(doc), int64(len(doc)))
	if err != nil {
		return "", 0, fmt.Errorf("open pdf: %w", err)
	}

	var b strings.Builder
	pages = r.NumPage()
	for i := 1; i <= pages; i++ {
		if err := ctx.Err(); err != nil {
			return "", 0, err
		}
		page := r.Page(i)
		if page.V.IsNull() {
			continue
		}
		pt, err := page.GetPlainText(nil)
		if err != nil {
			continue
		}
		b.WriteString(pt)
		b.WriteString("\n")
	}
	return b.String(), pages, nil
}

// PdftotextReader shells out to poppler's pdftotext.
type PdftotextReader struct {
	Binary string
	Runner Runner
}

func (p PdftotextReader) ReadText(ctx context.Context, doc []byte) (string, int, error) {
	bin := p.Binary
	if bin == "" {
		bin = "pdftotext"
	}
	if _, err := exec.LookPath(bin); err != nil && p.Runner == nil {
		return "", 0, fmt.Errorf("%s not available: %w", bin, err)
	}
	runner := p.Runner
	if runner == nil {
		runner = execRunner{}
	}

	f, err := os.CreateTemp("", "nx-pdf-*.pdf")
	if err != nil {
		return "", 0, err
	}
	defer func() { _ = os.Remove(f.Name()) }()
	if _, err := f.Write(doc); err != nil {
		_ = f.Close()
		return "", 0, err
	}
	if err := f.Close(); err != nil {
		return "", 0, err
	}

	// pdftotext -layout -enc UTF-8 -eol unix <path> -
	out, errb, err := runner.Run(ctx, bin, "-layout", "-enc", "UTF-8", "-eol", "unix", f.Name(), "-")
	if err != nil {
		return "", 0, fmt.Errorf("pdftotext: %w: %s", err, truncate(string(errb), 512))
	}
	text := string(out)
	// form feed separates pages
	pages := strings.Count(strings.TrimRight(text, "\f"), "\f") + 1
	return text, pages, nil
}

// ChainReader returns the first non-empty text from its readers.
type ChainReader struct {
	Readers []TextLayerReader
	Logger  *slog.Logger
}

func (c ChainReader) ReadText(ctx context.Context, doc []byte) (string, int, error) {
	logger := c.Logger
	if logger == nil {
		logger = slog.Default()
	}
	var errs []error
	pages := 0
	for i, r := range c.Readers {
		text, n, err := r.ReadText(ctx, doc)
		if err != nil {
			logger.Debug("ocr.textlayer.reader_failed", "reader", i, "error", err)
			errs = append(errs, err)
			continue
		}
		if n > pages {
			pages = n
		}
		if strings.TrimSpace(text) != "" {
			return text, n, nil
		}
	}
	if len(errs) == len(c.Readers) && len(errs) > 0 {
		return "", 0, errors.Join(errs...)
	}
	return "", pages, nil
}
