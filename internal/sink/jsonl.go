package sink

import (
	"bufio"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sync"

	"github.com/ppiankov/laytoneval/internal/model"
)

// JSONLSink writes one JSON object per line
type JSONLSink struct {
	mu  sync.Mutex
	f   *os.File
	w   *bufio.Writer
	enc *json.Encoder
}

// NewJSONL creates (or truncates) the file at path
func NewJSONL(path string) (*JSONLSink, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("create output dir: %w", err)
	}

	f, err := os.Create(path)
	if err != nil {
		return nil, fmt.Errorf("create %s: %w", path, err)
	}

	w := bufio.NewWriter(f)
	enc := json.NewEncoder(w)
	enc.SetEscapeHTML(false)
	return &JSONLSink{f: f, w: w, enc: enc}, nil
}

// Write appends rec
func (s *JSONLSink) Write(ctx context.Context, rec *model.PuzzleRecord) error {
	return s.Append(rec)
}

// Append writes any value as one line
func (s *JSONLSink) Append(v any) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.enc.Encode(v); err != nil {
		return fmt.Errorf("jsonl: %w", err)
	}
	return nil
}

// Close flushes and closes the file
func (s *JSONLSink) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	return errors.Join(s.w.Flush(), s.f.Close())
}

// ReadRecords decodes a JSONL stream of puzzle records
func ReadRecords(r io.Reader) ([]*model.PuzzleRecord, error) {
	dec := json.NewDecoder(r)

	var records []*model.PuzzleRecord
	for {
		var rec model.PuzzleRecord
		err := dec.Decode(&rec)
		if errors.Is(err, io.EOF) {
			return records, nil
		}
		if err != nil {
			return records, fmt.Errorf("record %d: %w", len(records)+1, err)
		}
		records = append(records, &rec)
	}
}

// ReadRecordsFile decodes the JSONL file at path
func ReadRecordsFile(path string) ([]*model.PuzzleRecord, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", path, err)
	}
	defer func() { _ = f.Close() }()

	return ReadRecords(f)
}
