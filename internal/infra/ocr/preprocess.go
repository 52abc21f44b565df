package ocr

import (
	"bytes"
	"context"
	"fmt"
	"image"
	_ "image/gif"
	_ "image/jpeg"
	"image/png"
	"log/slog"

	"golang.org/x/image/draw"
)

// Preprocess converts a captcha to grayscale and enlarges it by scale.
// The result is PNG encoded.
func Preprocess(data []byte, scale int) ([]byte, error) {
	if len(data) == 0 {
		return nil, ErrEmptyImage
	}
	if scale < 1 {
		scale = 1
	}

	src, _, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("decode captcha: %w", err)
	}

	b := src.Bounds()
	dst := image.NewGray(image.Rect(0, 0, b.Dx()*scale, b.Dy()*scale))
	draw.CatmullRom.Scale(dst, dst.Bounds(), src, b, draw.Src, nil)

	var buf bytes.Buffer
	if err := png.Encode(&buf, dst); err != nil {
		return nil, fmt.Errorf("encode captcha: %w", err)
	}
	return buf.Bytes(), nil
}

type preprocessing struct {
	next  Recognizer
	scale int
}

// WithPreprocess runs Preprocess before delegating to next. Images that cannot
// be decoded are passed through untouched.
func WithPreprocess(next Recognizer, scale int) Recognizer {
	return &preprocessing{next: next, scale: scale}
}

func (p *preprocessing) Recognize(ctx context.Context, data []byte) (string, error) {
	processed, err := Preprocess(data, p.scale)
	if err != nil {
		slog.Debug("Captcha preprocessing skipped", "error", err)
		processed = data
	}
	return p.next.Recognize(ctx, processed)
}
