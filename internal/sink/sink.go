// Package sink writes extracted puzzle records to their destinations.
package sink

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/ppiankov/laytoneval/internal/model"
	"github.com/rs/zerolog"
)

// Sink receives records one at a time. Close flushes and releases the
// destination; records written before a failed Close may be lost.
type Sink interface {
	Write(ctx context.Context, rec *model.PuzzleRecord) error
	Close() error
}

// Multi fans records out to several sinks
type Multi struct {
	mu    sync.Mutex
	sinks []Sink
}

// NewMulti combines sinks
func NewMulti(sinks ...Sink) *Multi {
	return &Multi{sinks: sinks}
}

// Len returns the number of combined sinks
func (m *Multi) Len() int {
	return len(m.sinks)
}

// Write hands rec to every sink, even after one of them fails
func (m *Multi) Write(ctx context.Context, rec *model.PuzzleRecord) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	var errs []error
	for _, s := range m.sinks {
		if err := s.Write(ctx, rec); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

// Close closes every sink
func (m *Multi) Close() error {
	m.mu.Lock()
	defer m.mu.Unlock()

	var errs []error
	for _, s := range m.sinks {
		if err := s.Close(); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

// Open builds every sink enabled in cfg
func Open(ctx context.Context, cfg model.OutputConfig, logger zerolog.Logger) (*Multi, error) {
	var sinks []Sink
	fail := func(err error) (*Multi, error) {
		_ = NewMulti(sinks...).Close()
		return nil, err
	}

	if cfg.XLSX != "" {
		sinks = append(sinks, NewXLSX(cfg.XLSX, logger))
	}
	if cfg.JSONL != "" {
		s, err := NewJSONL(cfg.JSONL)
		if err != nil {
			return fail(err)
		}
		sinks = append(sinks, s)
	}
	if cfg.Markdown != "" {
		sinks = append(sinks, NewMarkdown(cfg.Markdown))
	}
	if cfg.SQLite != "" {
		s, err := NewSQLite(ctx, cfg.SQLite)
		if err != nil {
			return fail(err)
		}
		sinks = append(sinks, s)
	}
	if cfg.MongoURI != "" {
		s, err := NewMongo(ctx, cfg.MongoURI, cfg.MongoDatabase, cfg.MongoCollection)
		if err != nil {
			return fail(err)
		}
		sinks = append(sinks, s)
	}

	if len(sinks) == 0 {
		return nil, fmt.Errorf("no output configured")
	}
	return NewMulti(sinks...), nil
}

func str(s *string) string {
	return model.Deref(s)
}
