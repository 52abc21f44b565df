// Package ocr defines the captcha recognition capability.
//
// Engines are expensive to start, so callers share one process-wide handle
// through Shared, which initialises the engine on first use and hands the same
// instance to every later caller.
package ocr

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
)

// ErrEmptyImage is returned when there is nothing to recognise.
var ErrEmptyImage = errors.New("empty image")

// Recognizer turns image bytes into best-effort text.
type Recognizer interface {
	Recognize(ctx context.Context, image []byte) (string, error)
}

// Engine is a Recognizer that owns native resources.
type Engine interface {
	Recognizer
	Close() error
}

// Factory builds an engine. It may block while models load.
type Factory func(ctx context.Context) (Engine, error)

// Shared lazily initialises one engine and reuses it.
//
// Concurrent first callers wait on the same initialisation. A failed
// initialisation is not cached; the next call tries again.
type Shared struct {
	factory Factory

	mu     sync.Mutex
	engine Engine
}

// NewShared creates a lazily initialised shared engine.
func NewShared(factory Factory) *Shared {
	return &Shared{factory: factory}
}

// Recognize initialises the engine if needed and runs recognition.
func (s *Shared) Recognize(ctx context.Context, image []byte) (string, error) {
	engine, err := s.get(ctx)
	if err != nil {
		return "", err
	}
	return engine.Recognize(ctx, image)
}

// Warm initialises the engine ahead of the first lookup.
func (s *Shared) Warm(ctx context.Context) error {
	_, err := s.get(ctx)
	return err
}

func (s *Shared) get(ctx context.Context) (Engine, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.engine != nil {
		return s.engine, nil
	}

	engine, err := s.factory(ctx)
	if err != nil {
		return nil, fmt.Errorf("init ocr engine: %w", err)
	}
	s.engine = engine
	slog.Info("OCR engine initialized")
	return engine, nil
}

// Close releases the engine if it was started.
func (s *Shared) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.engine == nil {
		return nil
	}
	err := s.engine.Close()
	s.engine = nil
	return err
}
