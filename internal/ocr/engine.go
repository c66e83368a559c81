package ocr

import (
	"context"
	"fmt"
	"strings"

	"github.com/otiai10/gosseract/v2"
)

// charWhitelist limits recognition to digits, Latin letters with Hungarian
// accents and the punctuation found on nutrition tables.
const charWhitelist = "0123456789ABCDEFGHIJKLMNOPQRSTUVWXYZabcdefghijklmnopqrstuvwxyzÁÉÍÓÚÖÜŐŰáéíóúöüőű.,:;()[]{}%+-/gkjml "

// Engine recognizes text in an encoded page image. An empty lang means no language hint.
type Engine interface {
	Recognize(ctx context.Context, img []byte, lang string) (string, error)
}

// TesseractEngine runs tesseract in-process through gosseract.
type TesseractEngine struct {
	DPI           int
	Whitelist     string
	clientFactory func() *gosseract.Client
}

// NewTesseractEngine returns an engine using a uniform-block page layout.
func NewTesseractEngine(dpi int) *TesseractEngine {
	return &TesseractEngine{DPI: dpi, Whitelist: charWhitelist, clientFactory: gosseract.NewClient}
}

func (e *TesseractEngine) Recognize(ctx context.Context, img []byte, lang string) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	c := e.clientFactory()
	defer func() { _ = c.Close() }()

	if err := c.SetImageFromBytes(img); err != nil {
		return "", fmt.Errorf("set image: %w", err)
	}
	if lang != "" {
		if err := c.SetLanguage(strings.Split(lang, "+")...); err != nil {
			return "", fmt.Errorf("set languages: %w", err)
		}
	}
	if err := c.SetPageSegMode(gosseract.PSM_SINGLE_BLOCK); err != nil {
		return "", fmt.Errorf("set psm: %w", err)
	}
	if e.Whitelist != "" {
		if err := c.SetWhitelist(e.Whitelist); err != nil {
			return "", fmt.Errorf("set whitelist: %w", err)
		}
	}
	if e.DPI > 0 {
		if err := c.SetVariable(gosseract.SettableVariable("user_defined_dpi"), fmt.Sprint(e.DPI)); err != nil {
			return "", fmt.Errorf("set dpi: %w", err)
		}
	}
	text, err := c.Text()
	if err != nil {
		return "", fmt.Errorf("recognize text: %w", err)
	}
	return text, nil
}
