package pipeline

import (
	"context"
	"fmt"
	"os"

	"github.com/ppiankov/laytoneval/internal/document"
	"github.com/ppiankov/laytoneval/internal/metrics"
	"github.com/ppiankov/laytoneval/internal/model"
	"github.com/rs/zerolog"
)

// Source is one stored puzzle page waiting to be processed
type Source struct {
	ID              string // Page name, used as the document identifier
	HTMLPath        string // Read when Body is nil
	Body            []byte
	ImagePath       string
	AnswerImagePath string
}

// Pipeline turns stored pages into records
type Pipeline struct {
	assembler *Assembler
	logger    zerolog.Logger
}

// NewPipeline creates a pipeline around an assembler
func NewPipeline(assembler *Assembler, logger zerolog.Logger) *Pipeline {
	if assembler == nil {
		assembler = NewAssembler(WithAssemblerLogger(logger))
	}
	return &Pipeline{
		assembler: assembler,
		logger:    logger,
	}
}

// Process reads, parses and assembles one source. The only errors are
// cancellation, an unreadable file and document.ErrMalformedDocument.
func (p *Pipeline) Process(ctx context.Context, src Source) (*model.PuzzleRecord, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	body := src.Body
	if body == nil {
		var err error
		body, err = os.ReadFile(src.HTMLPath)
		if err != nil {
			return nil, fmt.Errorf("read %s: %w", src.ID, err)
		}
	}

	doc, err := document.Load(src.ID, body)
	if err != nil {
		metrics.DocumentsSkipped.Inc()
		p.logger.Warn().Err(err).Str("document", src.ID).Msg("skipping unparseable page")
		return nil, fmt.Errorf("load: %w", err)
	}

	rec := p.assembler.Assemble(src.ID, doc, Attachments{
		ImagePath:       src.ImagePath,
		AnswerImagePath: src.AnswerImagePath,
	})
	metrics.DocumentsProcessed.Inc()

	return rec, nil
}
