package ocr

import (
	"context"
	"image"
	"sync"
)

type fakeReader struct {
	text  string
	pages int
	err   error
	calls int
}

func (f *fakeReader) ReadText(ctx context.Context, doc []byte) (string, int, error) {
	f.calls++
	return f.text, f.pages, f.err
}

type fakeRasterizer struct {
	pages int
	err   error
	block bool
	calls int
}

func (f *fakeRasterizer) Rasterize(ctx context.Context, doc []byte, dpi float64, fn PageFunc) (int, error) {
	f.calls++
	if f.block {
		<-ctx.Done()
		return 0, ctx.Err()
	}
	if f.err != nil {
		return 0, f.err
	}
	for i := 1; i <= f.pages; i++ {
		if err := fn(i, solidImage(8, 4, 200)); err != nil {
			return i, err
		}
	}
	return f.pages, nil
}

type fakeEngine struct {
	mu     sync.Mutex
	byLang map[string]string
	langs  []string
}

func (f *fakeEngine) Recognize(ctx context.Context, img []byte, lang string) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.langs = append(f.langs, lang)
	return f.byLang[lang], nil
}

func solidImage(w, h int, v uint8) image.Image {
	img := image.NewGray(image.Rect(0, 0, w, h))
	for i := range img.Pix {
		img.Pix[i] = v
	}
	return img
}
