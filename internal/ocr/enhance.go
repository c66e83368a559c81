package ocr

import (
	"image"
	"math"

	"golang.org/x/image/draw"
)

// Enhance prepares a rendered page for OCR: upscale so both sides reach
// minDim, convert to grayscale, then boost contrast and sharpness by factor.
func Enhance(src image.Image, minDim int, factor float64) *image.Gray {
	scaled := upscale(src, minDim)
	sb := scaled.Bounds()
	gray := image.NewGray(image.Rect(0, 0, sb.Dx(), sb.Dy()))
	draw.Draw(gray, gray.Bounds(), scaled, sb.Min, draw.Src)
	if factor == 1 {
		return gray
	}
	return sharpen(contrast(gray, factor), factor)
}

func upscale(src image.Image, minDim int) image.Image {
	b := src.Bounds()
	w, h := b.Dx(), b.Dy()
	if minDim <= 0 || w == 0 || h == 0 || (w >= minDim && h >= minDim) {
		return src
	}
	scale := math.Max(float64(minDim)/float64(w), float64(minDim)/float64(h))
	nw := int(float64(w) * scale)
	nh := int(float64(h) * scale)
	dst := image.NewRGBA(image.Rect(0, 0, nw, nh))
	draw.CatmullRom.Scale(dst, dst.Bounds(), src, b, draw.Src, nil)
	return dst
}

// contrast blends every pixel away from the image's mean luminance.
func contrast(g *image.Gray, factor float64) *image.Gray {
	if len(g.Pix) == 0 {
		return g
	}
	var sum uint64
	for _, p := range g.Pix {
		sum += uint64(p)
	}
	mean := math.Floor(float64(sum)/float64(len(g.Pix)) + 0.5)

	out := image.NewGray(g.Bounds())
	for i, p := range g.Pix {
		out.Pix[i] = clamp8(mean + factor*(float64(p)-mean))
	}
	return out
}

// sharpen blends every pixel away from a 3x3 smoothed copy. Edge pixels keep their value
// in the smoothed copy.
func sharpen(g *image.Gray, factor float64) *image.Gray {
	b := g.Bounds()
	w, h := b.Dx(), b.Dy()
	out := image.NewGray(b)
	copy(out.Pix, g.Pix)
	if w < 3 || h < 3 {
		return out
	}
	at := func(x, y int) float64 { return float64(g.Pix[y*g.Stride+x]) }
	for y := 1; y < h-1; y++ {
		for x := 1; x < w-1; x++ {
			// smoothing kernel: 1 1 1 / 1 5 1 / 1 1 1, divided by 13
			s := at(x-1, y-1) + at(x, y-1) + at(x+1, y-1) +
				at(x-1, y) + 5*at(x, y) + at(x+1, y) +
				at(x-1, y+1) + at(x, y+1) + at(x+1, y+1)
			smooth := math.Floor(s/13 + 0.5)
			out.Pix[y*out.Stride+x] = clamp8(smooth + factor*(at(x, y)-smooth))
		}
	}
	return out
}

func clamp8(v float64) uint8 {
	v = math.Floor(v + 0.5)
	if v < 0 {
		return 0
	}
	if v > 255 {
		return 255
	}
	return uint8(v)
}
