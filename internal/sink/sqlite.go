package sink

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/ppiankov/laytoneval/internal/model"
	_ "modernc.org/sqlite" // SQLite driver
)

const sqliteSchema = `
CREATE TABLE IF NOT EXISTS runs (
	id          TEXT PRIMARY KEY,
	started_at  TIMESTAMP NOT NULL,
	finished_at TIMESTAMP,
	records     INTEGER NOT NULL DEFAULT 0
);

CREATE TABLE IF NOT EXISTS puzzles (
	document_id        TEXT PRIMARY KEY,
	url                TEXT NOT NULL,
	puzzle_id          TEXT,
	category           TEXT,
	description        TEXT,
	description_markup INTEGER NOT NULL DEFAULT 0,
	image_path         TEXT,
	answer_image_path  TEXT,
	picarats           INTEGER,
	first_hint         TEXT,
	second_hint        TEXT,
	third_hint         TEXT,
	special_hint       TEXT,
	solution           TEXT,
	run_id             TEXT NOT NULL REFERENCES runs(id),
	updated_at         TIMESTAMP NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_puzzles_category ON puzzles(category);
CREATE INDEX IF NOT EXISTS idx_puzzles_run ON puzzles(run_id);
`

const upsertPuzzle = `
INSERT INTO puzzles (
	document_id, url, puzzle_id, category, description, description_markup,
	image_path, answer_image_path, picarats,
	first_hint, second_hint, third_hint, special_hint, solution,
	run_id, updated_at
) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
ON CONFLICT(document_id) DO UPDATE SET
	url = excluded.url,
	puzzle_id = excluded.puzzle_id,
	category = excluded.category,
	description = excluded.description,
	description_markup = excluded.description_markup,
	image_path = excluded.image_path,
	answer_image_path = excluded.answer_image_path,
	picarats = excluded.picarats,
	first_hint = excluded.first_hint,
	second_hint = excluded.second_hint,
	third_hint = excluded.third_hint,
	special_hint = excluded.special_hint,
	solution = excluded.solution,
	run_id = excluded.run_id,
	updated_at = excluded.updated_at`

// SQLiteSink upserts records into a local database, one row per document.
// Each sink records itself as a run.
type SQLiteSink struct {
	mu      sync.Mutex
	db      *sql.DB
	runID   string
	records int
}

// NewSQLite opens (creating if needed) the database at path and starts a run
func NewSQLite(ctx context.Context, path string) (*SQLiteSink, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o750); err != nil {
		return nil, fmt.Errorf("failed to create database directory: %w", err)
	}

	db, err := sql.Open("sqlite", path+"?mode=rwc")
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	db.SetMaxOpenConns(1) // SQLite only supports one writer

	s := &SQLiteSink{db: db, runID: uuid.NewString()}

	if _, err := db.ExecContext(ctx, "PRAGMA journal_mode=WAL"); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to enable WAL mode: %w", err)
	}
	if _, err := db.ExecContext(ctx, sqliteSchema); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to create tables: %w", err)
	}
	if _, err := db.ExecContext(ctx, "INSERT INTO runs (id, started_at) VALUES (?, ?)", s.runID, time.Now().UTC()); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to record run: %w", err)
	}

	return s, nil
}

// RunID identifies this sink's run in the runs table
func (s *SQLiteSink) RunID() string {
	return s.runID
}

// Write upserts rec
func (s *SQLiteSink) Write(ctx context.Context, rec *model.PuzzleRecord) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	_, err := s.db.ExecContext(ctx, upsertPuzzle,
		rec.DocumentID, rec.URL, nullString(rec.ID), nullString(rec.Category), nullString(rec.Description), rec.DescriptionMarkup,
		nullString(rec.ImagePath), nullString(rec.AnswerImagePath), nullInt(rec.Picarats),
		nullString(rec.FirstHint), nullString(rec.SecondHint), nullString(rec.ThirdHint), nullString(rec.SpecialHint), nullString(rec.Solution),
		s.runID, time.Now().UTC(),
	)
	if err != nil {
		return fmt.Errorf("sqlite upsert %s: %w", rec.DocumentID, err)
	}
	s.records++
	return nil
}

// Close finishes the run and closes the database
func (s *SQLiteSink) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	_, err := s.db.ExecContext(context.Background(),
		"UPDATE runs SET finished_at = ?, records = ? WHERE id = ?",
		time.Now().UTC(), s.records, s.runID)
	if err != nil {
		err = fmt.Errorf("failed to finish run: %w", err)
	}
	return errors.Join(err, s.db.Close())
}

func nullString(s *string) sql.NullString {
	if s == nil {
		return sql.NullString{}
	}
	return sql.NullString{String: *s, Valid: true}
}

func nullInt(n *int) sql.NullInt64 {
	if n == nil {
		return sql.NullInt64{}
	}
	return sql.NullInt64{Int64: int64(*n), Valid: true}
}
