package pipeline

import (
	"errors"
	"strings"

	"github.com/ppiankov/laytoneval/internal/document"
	"github.com/ppiankov/laytoneval/internal/extract"
	"github.com/ppiankov/laytoneval/internal/metrics"
	"github.com/ppiankov/laytoneval/internal/model"
	"github.com/rs/zerolog"
)

// DefaultWikiBase is the wiki the puzzle pages come from
const DefaultWikiBase = "https://layton.fandom.com"

// Attachments are files resolved outside the page itself
type Attachments struct {
	ImagePath       string
	AnswerImagePath string
}

// Assembler runs every field extractor over a document and builds its record
type Assembler struct {
	hints    *extract.HintExtractor
	wikiBase string
	logger   zerolog.Logger
}

// AssemblerOption configures an Assembler
type AssemblerOption func(*Assembler)

// WithWikiBase sets the site used to build record URLs
func WithWikiBase(base string) AssemblerOption {
	return func(a *Assembler) {
		a.wikiBase = strings.TrimRight(base, "/")
	}
}

// WithAssemblerLogger sets the logger for absorbed extraction errors
func WithAssemblerLogger(logger zerolog.Logger) AssemblerOption {
	return func(a *Assembler) {
		a.logger = logger
	}
}

// WithPalette overrides the hint box colours
func WithPalette(p extract.Palette) AssemblerOption {
	return func(a *Assembler) {
		a.hints = extract.NewHintExtractor(p)
	}
}

// NewAssembler creates an assembler with the wiki's default palette
func NewAssembler(opts ...AssemblerOption) *Assembler {
	a := &Assembler{
		hints:    extract.NewHintExtractor(extract.DefaultPalette()),
		wikiBase: DefaultWikiBase,
		logger:   zerolog.Nop(),
	}
	for _, opt := range opts {
		opt(a)
	}
	return a
}

// Assemble builds the record for one document. It never fails: a field whose
// extractor errors is logged and left absent.
func (a *Assembler) Assemble(id string, doc *document.Document, att Attachments) *model.PuzzleRecord {
	rec := &model.PuzzleRecord{
		DocumentID:      id,
		URL:             a.wikiBase + "/wiki/Puzzle:" + id,
		ImagePath:       optional(att.ImagePath),
		AnswerImagePath: optional(att.AnswerImagePath),
	}

	if v, err := extract.ID(doc); a.absorb(err) {
		rec.ID = optional(v.String())
	}
	if v, err := extract.Category(doc); a.absorb(err) {
		rec.Category = optional(v.String())
	}
	if n, ok, err := extract.Picarats(doc); a.absorb(err) && ok {
		rec.Picarats = &n
	}

	if v, err := extract.Description(doc); a.absorb(err) {
		switch v.Kind {
		case extract.ValueText:
			rec.Description = optional(BreakSentences(v.Text))
		case extract.ValueFragments:
			// Raw paragraph markup is kept byte for byte, no sentence breaks.
			rec.Description = optional(v.String())
			rec.DescriptionMarkup = rec.Description != nil
		}
	}

	if v, err := extract.Solution(doc); a.absorb(err) {
		rec.Solution = optional(BreakSentences(v.String()))
	}

	for _, slot := range model.HintSlots {
		if v, err := a.hints.Extract(doc, slot); a.absorb(err) {
			*rec.HintPtr(slot) = optional(BreakSentences(v.String()))
		}
	}

	if rec.IsEmpty() {
		metrics.RecordsEmpty.Inc()
		a.logger.Debug().Str("document", id).Msg("page has no usable fields")
	}

	return rec
}

// absorb logs an extraction error and reports whether the value may be used
func (a *Assembler) absorb(err error) bool {
	if err == nil {
		return true
	}

	field := "unknown"
	var extractErr *extract.ExtractionError
	if errors.As(err, &extractErr) {
		field = extractErr.Field
	}

	metrics.FieldFailures.WithLabelValues(field).Inc()
	a.logger.Warn().Err(err).Str("field", field).Msg("field extraction failed")
	return false
}

// BreakSentences puts each sentence on its own line by inserting a newline
// after every full stop. A stop that ends the text or line, follows or is
// followed by another stop, or is followed by a digit, is left alone.
func BreakSentences(s string) string {
	if !strings.Contains(s, ".") {
		return s
	}

	var b strings.Builder
	b.Grow(len(s) + strings.Count(s, "."))
	for i := 0; i < len(s); i++ {
		b.WriteByte(s[i])
		if s[i] != '.' || i+1 == len(s) || (i > 0 && s[i-1] == '.') {
			continue
		}
		if next := s[i+1]; next == '.' || next == '\n' || (next >= '0' && next <= '9') {
			continue
		}
		b.WriteByte('\n')
	}
	return b.String()
}

func optional(s string) *string {
	if strings.TrimSpace(s) == "" {
		return nil
	}
	return &s
}
