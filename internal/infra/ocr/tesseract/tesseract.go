package tesseract

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/otiai10/gosseract/v2"
	"github.com/vietddude/finecheck/internal/infra/ocr"
	"github.com/vietddude/finecheck/internal/metrics"
)

// captchaAlphabet is every character the lookup captcha can contain.
const captchaAlphabet = "abcdefghijklmnopqrstuvwxyzABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789"

// Engine implements ocr.Engine with a single gosseract client.
// The client is not safe for concurrent use so recognitions are serialised.
type Engine struct {
	mu     sync.Mutex
	client *gosseract.Client
}

// New creates a Tesseract engine tuned for single-line captchas.
func New(language string) (*Engine, error) {
	c := gosseract.NewClient()
	if language != "" {
		if err := c.SetLanguage(language); err != nil {
			c.Close()
			return nil, fmt.Errorf("set language: %w", err)
		}
	}
	if err := c.SetWhitelist(captchaAlphabet); err != nil {
		c.Close()
		return nil, fmt.Errorf("set whitelist: %w", err)
	}
	if err := c.SetPageSegMode(gosseract.PSM_SINGLE_LINE); err != nil {
		c.Close()
		return nil, fmt.Errorf("set page seg mode: %w", err)
	}
	return &Engine{client: c}, nil
}

// Factory returns an ocr.Factory for the given language.
func Factory(language string) ocr.Factory {
	return func(ctx context.Context) (ocr.Engine, error) {
		e, err := New(language)
		if err != nil {
			return nil, err
		}
		return e, nil
	}
}

// Recognize performs OCR on captcha image bytes.
func (e *Engine) Recognize(ctx context.Context, image []byte) (string, error) {
	if len(image) == 0 {
		return "", ocr.ErrEmptyImage
	}
	if err := ctx.Err(); err != nil {
		return "", err
	}

	e.mu.Lock()
	defer e.mu.Unlock()

	start := time.Now()
	defer func() { metrics.OCRDuration.Observe(time.Since(start).Seconds()) }()

	if err := e.client.SetImageFromBytes(image); err != nil {
		return "", fmt.Errorf("set image: %w", err)
	}
	text, err := e.client.Text()
	if err != nil {
		return "", fmt.Errorf("recognize text: %w", err)
	}
	return strings.TrimSpace(text), nil
}

// Close releases the native client.
func (e *Engine) Close() error {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.client.Close()
}
