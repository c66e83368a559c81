package ocr

import (
	"context"
	"fmt"
	"image"

	"github.com/gen2brain/go-fitz"
)

// PageFunc receives one rendered page. Returning an error stops rasterization.
type PageFunc func(page int, img image.Image) error

// Rasterizer renders PDF pages to images one at a time.
type Rasterizer interface {
	Rasterize(ctx context.Context, doc []byte, dpi float64, fn PageFunc) (pages int, err error)
}

// FitzRasterizer renders pages with MuPDF.
type FitzRasterizer struct {
	MaxPages int // 0 = no limit
}

func (f FitzRasterizer) Rasterize(ctx context.Context, doc []byte, dpi float64, fn PageFunc) (int, error) {
	d, err := fitz.NewFromMemory(doc)
	if err != nil {
		return 0, fmt.Errorf("open pdf for rendering: %w", err)
	}
	defer func() { _ = d.Close() }()

	n := d.NumPage()
	if f.MaxPages > 0 && n > f.MaxPages {
		n = f.MaxPages
	}
	for i := 0; i < n; i++ {
		if err := ctx.Err(); err != nil {
			return i, err
		}
		img, err := d.ImageDPI(i, dpi)
		if err != nil {
			return i, fmt.Errorf("render page %d: %w", i+1, err)
		}
		if err := fn(i+1, img); err != nil {
			return i + 1, err
		}
	}
	return n, nil
}
