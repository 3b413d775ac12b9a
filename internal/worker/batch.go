package worker

import (
	"context"
	"errors"
	"fmt"
	"sort"

	"github.com/ppiankov/laytoneval/internal/document"
	"github.com/ppiankov/laytoneval/internal/model"
	"github.com/ppiankov/laytoneval/internal/pipeline"
	"github.com/rs/zerolog"
)

// Processor turns one stored page into a record
type Processor interface {
	Process(ctx context.Context, src pipeline.Source) (*model.PuzzleRecord, error)
}

// CommitFunc hands a finished record to its sinks
type CommitFunc func(ctx context.Context, rec *model.PuzzleRecord) error

// ExtractJob processes one source
type ExtractJob struct {
	Index     int
	Source    pipeline.Source
	Processor Processor
}

// Execute runs the processor for the job's source
func (j *ExtractJob) Execute(ctx context.Context) Result {
	rec, err := j.Processor.Process(ctx, j.Source)
	return &ExtractResult{
		Index:  j.Index,
		ID:     j.Source.ID,
		Record: rec,
		Error:  err,
	}
}

// ExtractResult is the outcome for one source
type ExtractResult struct {
	Index  int
	ID     string
	Record *model.PuzzleRecord
	Error  error
}

// GetError returns the error from the extraction
func (r *ExtractResult) GetError() error {
	return r.Error
}

// Summary counts the outcomes of a batch
type Summary struct {
	Total     int // Sources submitted
	Emitted   int // Records committed
	Empty     int // Records with no extracted field
	Skipped   int // Unparseable pages
	Failed    int // Unreadable pages and commit failures
	Cancelled int // Sources abandoned by cancellation
}

// BatchProcessor runs a Processor over many sources on a worker pool and
// commits each record as soon as it is ready
type BatchProcessor struct {
	processor   Processor
	concurrency int
	commit      CommitFunc
	skipEmpty   bool
	logger      zerolog.Logger
}

// BatchOption configures a BatchProcessor
type BatchOption func(*BatchProcessor)

// WithConcurrency sets the number of workers
func WithConcurrency(n int) BatchOption {
	return func(b *BatchProcessor) {
		b.concurrency = n
	}
}

// WithCommit sets the function records are committed through
func WithCommit(fn CommitFunc) BatchOption {
	return func(b *BatchProcessor) {
		b.commit = fn
	}
}

// WithSkipEmpty drops records that have no extracted field instead of committing them
func WithSkipEmpty(skip bool) BatchOption {
	return func(b *BatchProcessor) {
		b.skipEmpty = skip
	}
}

// WithLogger sets the batch logger
func WithLogger(logger zerolog.Logger) BatchOption {
	return func(b *BatchProcessor) {
		b.logger = logger
	}
}

// NewBatchProcessor creates a new batch processor
func NewBatchProcessor(processor Processor, opts ...BatchOption) *BatchProcessor {
	b := &BatchProcessor{
		processor:   processor,
		concurrency: 1,
		logger:      zerolog.Nop(),
	}
	for _, opt := range opts {
		opt(b)
	}
	return b
}

// Process runs every source and returns the results in input order.
// One bad page never stops the batch; cancelling ctx stops sources that have
// not started while records already committed stay committed.
func (b *BatchProcessor) Process(ctx context.Context, sources []pipeline.Source) ([]*ExtractResult, Summary) {
	summary := Summary{Total: len(sources)}
	if len(sources) == 0 {
		return []*ExtractResult{}, summary
	}

	pool := NewPool(ctx, b.concurrency, WithResultHook(func(r Result) {
		b.settle(ctx, r.(*ExtractResult), &summary)
	}))
	pool.Start()

	for i, src := range sources {
		if !pool.Submit(&ExtractJob{Index: i, Source: src, Processor: b.processor}) {
			break
		}
	}

	raw := pool.Wait()

	results := make([]*ExtractResult, len(raw))
	for i, r := range raw {
		results[i] = r.(*ExtractResult)
	}
	sort.Slice(results, func(i, j int) bool {
		return results[i].Index < results[j].Index
	})

	summary.Cancelled += summary.Total - len(results)
	return results, summary
}

// settle classifies one result and commits its record. It runs on the pool's
// collector goroutine only.
func (b *BatchProcessor) settle(ctx context.Context, r *ExtractResult, summary *Summary) {
	switch {
	case r.Error == nil:
	case errors.Is(r.Error, document.ErrMalformedDocument):
		summary.Skipped++
		return
	case errors.Is(r.Error, context.Canceled), errors.Is(r.Error, context.DeadlineExceeded):
		summary.Cancelled++
		return
	default:
		summary.Failed++
		b.logger.Error().Err(r.Error).Str("document", r.ID).Msg("processing failed")
		return
	}

	if r.Record.IsEmpty() {
		summary.Empty++
		if b.skipEmpty {
			return
		}
	}

	if b.commit != nil {
		// A finished record is written out whole even if the batch was cancelled meanwhile
		if err := b.commit(context.WithoutCancel(ctx), r.Record); err != nil {
			r.Error = fmt.Errorf("commit %s: %w", r.ID, err)
			summary.Failed++
			b.logger.Error().Err(err).Str("document", r.ID).Msg("commit failed")
			return
		}
	}
	summary.Emitted++
}
