package worker

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/ppiankov/laytoneval/internal/document"
	"github.com/ppiankov/laytoneval/internal/model"
	"github.com/ppiankov/laytoneval/internal/pipeline"
)

// mockProcessor implements Processor
type mockProcessor struct {
	delay time.Duration
	fail  map[string]error
	empty map[string]bool
}

func (m *mockProcessor) Process(ctx context.Context, src pipeline.Source) (*model.PuzzleRecord, error) {
	if m.delay > 0 {
		select {
		case <-time.After(m.delay):
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}
	if err := m.fail[src.ID]; err != nil {
		return nil, err
	}
	rec := &model.PuzzleRecord{DocumentID: src.ID}
	if !m.empty[src.ID] {
		id := src.ID
		rec.ID = &id
	}
	return rec, nil
}

func sources(ids ...string) []pipeline.Source {
	out := make([]pipeline.Source, len(ids))
	for i, id := range ids {
		out[i] = pipeline.Source{ID: id}
	}
	return out
}

func TestBatchProcessor_Process(t *testing.T) {
	var mu sync.Mutex
	var committed []string

	processor := NewBatchProcessor(&mockProcessor{delay: 5 * time.Millisecond},
		WithConcurrency(3),
		WithCommit(func(ctx context.Context, rec *model.PuzzleRecord) error {
			mu.Lock()
			defer mu.Unlock()
			committed = append(committed, rec.DocumentID)
			return nil
		}),
	)

	results, summary := processor.Process(context.Background(), sources("a", "b", "c", "d", "e"))

	if len(results) != 5 {
		t.Fatalf("expected 5 results, got %d", len(results))
	}
	for i, r := range results {
		if r.Index != i {
			t.Errorf("expected results in input order, got index %d at %d", r.Index, i)
		}
		if r.Error != nil {
			t.Errorf("unexpected error for %s: %v", r.ID, r.Error)
		}
	}
	if summary.Total != 5 || summary.Emitted != 5 {
		t.Errorf("expected 5/5 emitted, got %+v", summary)
	}
	if len(committed) != 5 {
		t.Errorf("expected 5 commits, got %d", len(committed))
	}
}

func TestBatchProcessor_SkipsMalformedAndContinues(t *testing.T) {
	processor := NewBatchProcessor(&mockProcessor{
		fail: map[string]error{
			"broken":     fmt.Errorf("load: %w", document.ErrMalformedDocument),
			"unreadable": errors.New("read unreadable: permission denied"),
		},
	}, WithConcurrency(2))

	results, summary := processor.Process(context.Background(), sources("ok1", "broken", "unreadable", "ok2"))

	if len(results) != 4 {
		t.Fatalf("expected 4 results, got %d", len(results))
	}
	if summary.Emitted != 2 {
		t.Errorf("expected 2 emitted, got %d", summary.Emitted)
	}
	if summary.Skipped != 1 {
		t.Errorf("expected 1 skipped, got %d", summary.Skipped)
	}
	if summary.Failed != 1 {
		t.Errorf("expected 1 failed, got %d", summary.Failed)
	}
}

func TestBatchProcessor_EmptyRecords(t *testing.T) {
	proc := &mockProcessor{empty: map[string]bool{"blank": true}}

	commits := 0
	commit := WithCommit(func(context.Context, *model.PuzzleRecord) error {
		commits++
		return nil
	})

	_, summary := NewBatchProcessor(proc, commit).Process(context.Background(), sources("blank", "full"))
	if summary.Empty != 1 || summary.Emitted != 2 || commits != 2 {
		t.Errorf("expected empty record to be emitted, got %+v with %d commits", summary, commits)
	}

	commits = 0
	_, summary = NewBatchProcessor(proc, commit, WithSkipEmpty(true)).Process(context.Background(), sources("blank", "full"))
	if summary.Empty != 1 || summary.Emitted != 1 || commits != 1 {
		t.Errorf("expected empty record to be dropped, got %+v with %d commits", summary, commits)
	}
}

func TestBatchProcessor_CommitFailure(t *testing.T) {
	processor := NewBatchProcessor(&mockProcessor{},
		WithCommit(func(ctx context.Context, rec *model.PuzzleRecord) error {
			if rec.DocumentID == "b" {
				return errors.New("disk full")
			}
			return nil
		}),
	)

	results, summary := processor.Process(context.Background(), sources("a", "b"))

	if summary.Emitted != 1 || summary.Failed != 1 {
		t.Errorf("expected 1 emitted and 1 failed, got %+v", summary)
	}
	if results[1].Error == nil {
		t.Error("expected commit error on result")
	}
}

func TestBatchProcessor_Cancellation(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())

	var mu sync.Mutex
	committed := make(map[string]bool)

	ids := make([]string, 40)
	for i := range ids {
		ids[i] = fmt.Sprintf("p%02d", i)
	}

	processor := NewBatchProcessor(&mockProcessor{delay: 20 * time.Millisecond},
		WithConcurrency(2),
		WithCommit(func(ctx context.Context, rec *model.PuzzleRecord) error {
			if ctx.Err() != nil {
				t.Errorf("commit for %s saw a cancelled context", rec.DocumentID)
			}
			mu.Lock()
			committed[rec.DocumentID] = true
			mu.Unlock()
			return nil
		}),
	)

	go func() {
		time.Sleep(50 * time.Millisecond)
		cancel()
	}()

	results, summary := processor.Process(ctx, sources(ids...))

	if summary.Cancelled == 0 {
		t.Errorf("expected some sources to be cancelled, got %+v", summary)
	}
	if summary.Emitted+summary.Cancelled != summary.Total {
		t.Errorf("expected emitted+cancelled to cover all sources, got %+v", summary)
	}
	for _, r := range results {
		if r.Error == nil && !committed[r.ID] {
			t.Errorf("expected completed record %s to be committed", r.ID)
		}
	}
}

func TestBatchProcessor_Empty(t *testing.T) {
	results, summary := NewBatchProcessor(&mockProcessor{}).Process(context.Background(), nil)
	if len(results) != 0 || summary.Total != 0 {
		t.Errorf("expected nothing, got %d results and %+v", len(results), summary)
	}
}
