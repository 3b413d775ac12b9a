package sink

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"sync"

	"github.com/nao1215/markdown"
	"github.com/ppiankov/laytoneval/internal/model"
)

// MarkdownSink renders every record into one table for review
type MarkdownSink struct {
	mu   sync.Mutex
	path string
	rows [][]string
}

// NewMarkdown collects records to be written to path on Close
func NewMarkdown(path string) *MarkdownSink {
	return &MarkdownSink{path: path}
}

// Write adds a table row
func (s *MarkdownSink) Write(ctx context.Context, rec *model.PuzzleRecord) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	picarats := ""
	if rec.Picarats != nil {
		picarats = strconv.Itoa(*rec.Picarats)
	}

	row := []string{
		str(rec.ID), str(rec.Category), str(rec.Description), str(rec.ImagePath), rec.URL, picarats,
		str(rec.FirstHint), str(rec.SecondHint), str(rec.ThirdHint), str(rec.SpecialHint), str(rec.Solution),
	}
	for i := range row {
		row[i] = escapeCell(row[i])
	}
	s.rows = append(s.rows, row)
	return nil
}

// Close writes the document
func (s *MarkdownSink) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := os.MkdirAll(filepath.Dir(s.path), 0o755); err != nil {
		return fmt.Errorf("create output dir: %w", err)
	}
	f, err := os.Create(s.path)
	if err != nil {
		return fmt.Errorf("create %s: %w", s.path, err)
	}

	md := markdown.NewMarkdown(f)
	md.H1("Layton puzzles")
	md.PlainText("")
	md.PlainText(strconv.Itoa(len(s.rows)) + " puzzles extracted.")
	md.PlainText("")
	md.Table(markdown.TableSet{Header: Columns, Rows: s.rows})

	return errors.Join(md.Build(), f.Close())
}

// escapeCell keeps multi-line text inside one table cell
func escapeCell(s string) string {
	s = strings.ReplaceAll(s, "|", `\|`)
	return strings.ReplaceAll(s, "\n", "<br>")
}
