package llm

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"html"
	"strings"
	"time"

	"github.com/microcosm-cc/bluemonday"
	"github.com/ppiankov/laytoneval/internal/cache"
	"github.com/ppiankov/laytoneval/internal/metrics"
	"github.com/ppiankov/laytoneval/internal/model"
	"github.com/rs/zerolog"
)

var (
	// ErrSchemaViolation means the model reply does not fit the task's schema
	ErrSchemaViolation = errors.New("response does not match schema")

	// ErrTaskMismatch means an operation was called on a structurer built for the other task
	ErrTaskMismatch = errors.New("operation does not match structurer task")

	// ErrUnknownTask means the task name is not recognised
	ErrUnknownTask = errors.New("unknown structuring task")
)

// Task selects what the structurer asks of the model
type Task string

const (
	TaskInputStructuring  Task = "input_structuring"
	TaskAnswerStructuring Task = "answer_structuring"
)

// ParseTask resolves a task name, accepting the older *_structuration spellings
func ParseTask(name string) (Task, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "input_structuring", "input_structuration":
		return TaskInputStructuring, nil
	case "answer_structuring", "answer_structuration":
		return TaskAnswerStructuring, nil
	}
	return "", fmt.Errorf("%w: %q", ErrUnknownTask, name)
}

const systemPrompt = "You format Professor Layton riddles into JSON. You never solve the riddle. Reply with a single JSON object and nothing else."

const inputTemplate = `Here is a Professor Layton riddle. Use it to answer the questions below and format the answer, but do not solve the riddle.

Professor Layton riddle: %s

Reply with a JSON object with exactly these keys:
- "is_text_sufficient" (boolean): the riddle description alone is enough to solve the riddle
- "needs_visual" (boolean): the description is not enough, but it mentions an image or other visual information that would make the riddle solvable
- "output_kind" ("action" or "text"): "text" if the answer can be given in natural language, "action" otherwise

Questions:
- Is this riddle solvable from its text alone?
- Does this riddle need its image?
- What kind of output does this riddle expect?`

const answerTemplate = `Here is a Professor Layton riddle and its solution. Use them to structure the answer, but do not solve the riddle.

Professor Layton riddle: %s

Riddle answer: %s

Reply with a JSON object with exactly one key:
- "structured" (array of strings): different writings of the answer. Each writing is as short as possible and contains no reasoning, just the raw answer. Include every plausible correct writing of the extracted answer. If the solution text holds no apparent answer, return an empty array and do not invent one.

Please format the riddle answer.`

// Structurer turns puzzle text into structured annotations with one model
// and one task. It is immutable once built and safe for concurrent use.
type Structurer struct {
	provider  Provider
	task      Task
	model     string
	maxTokens int
	cache     cache.Cache
	cacheTTL  time.Duration
	logger    zerolog.Logger
}

// StructurerOption configures a Structurer
type StructurerOption func(*Structurer)

// WithResponseCache reuses earlier replies for identical prompts
func WithResponseCache(c cache.Cache, ttl time.Duration) StructurerOption {
	return func(s *Structurer) {
		s.cache = c
		s.cacheTTL = ttl
	}
}

// WithStructurerLogger sets the structurer logger
func WithStructurerLogger(logger zerolog.Logger) StructurerOption {
	return func(s *Structurer) {
		s.logger = logger
	}
}

// NewStructurer builds a structurer for cfg.Task backed by provider
func NewStructurer(provider Provider, cfg model.LLMConfig, opts ...StructurerOption) (*Structurer, error) {
	if provider == nil {
		return nil, errors.New("no LLM provider configured")
	}

	task, err := ParseTask(cfg.Task)
	if err != nil {
		return nil, err
	}

	s := &Structurer{
		provider:  provider,
		task:      task,
		model:     cfg.Model,
		maxTokens: cfg.MaxTokens,
		logger:    zerolog.Nop(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s, nil
}

// Task returns the task the structurer was built for
func (s *Structurer) Task() Task {
	return s.task
}

// ClassifyInput asks whether a riddle can be attempted from its text
func (s *Structurer) ClassifyInput(ctx context.Context, riddle string) (*model.InputClassification, error) {
	if s.task != TaskInputStructuring {
		return nil, fmt.Errorf("%w: classify input on %s", ErrTaskMismatch, s.task)
	}

	var out *model.InputClassification
	err := s.ask(ctx, fmt.Sprintf(inputTemplate, riddle), func(reply string) error {
		c, err := ParseClassification(reply)
		out = c
		return err
	})
	return out, err
}

// StructureAnswer reduces a solution text to its short answer writings
func (s *Structurer) StructureAnswer(ctx context.Context, riddle, answer string) (*model.StructuredAnswer, error) {
	if s.task != TaskAnswerStructuring {
		return nil, fmt.Errorf("%w: structure answer on %s", ErrTaskMismatch, s.task)
	}

	var out *model.StructuredAnswer
	err := s.ask(ctx, fmt.Sprintf(answerTemplate, riddle, answer), func(reply string) error {
		a, err := ParseAnswer(reply)
		out = a
		return err
	})
	return out, err
}

// Structure runs the structurer's task over one extracted record. Failures are
// reported in the returned record's Error field.
func (s *Structurer) Structure(ctx context.Context, rec *model.PuzzleRecord) model.StructuredRecord {
	out := model.StructuredRecord{
		DocumentID: rec.DocumentID,
		Task:       string(s.task),
		Model:      s.model,
	}

	riddle := model.Deref(rec.Description)
	if rec.DescriptionMarkup {
		riddle = PlainText(riddle)
	}
	if riddle == "" {
		out.Error = "record has no description"
		return out
	}

	var err error
	switch s.task {
	case TaskInputStructuring:
		out.Classification, err = s.ClassifyInput(ctx, riddle)
	case TaskAnswerStructuring:
		solution := model.Deref(rec.Solution)
		if solution == "" {
			out.Error = "record has no solution"
			return out
		}
		out.Answer, err = s.StructureAnswer(ctx, riddle, solution)
	}
	if err != nil {
		out.Error = err.Error()
	}
	return out
}

// ask sends prompt unless a cached reply parses, and caches replies that parse
func (s *Structurer) ask(ctx context.Context, prompt string, parse func(string) error) error {
	task := string(s.task)
	key := cache.Key(cache.NamespaceLLM, s.provider.Name(), task, s.model, prompt)

	if s.cache != nil {
		if raw, ok := s.cache.Get(key); ok {
			if err := parse(string(raw)); err == nil {
				metrics.LLMRequests.WithLabelValues(task, "cached").Inc()
				return nil
			}
		}
	}

	resp, err := s.provider.Complete(ctx, CompletionRequest{
		System:    systemPrompt,
		Prompt:    prompt,
		Model:     s.model,
		MaxTokens: s.maxTokens,
		JSON:      true,
	})
	if err != nil {
		metrics.LLMRequests.WithLabelValues(task, "error").Inc()
		return err
	}

	if err := parse(resp.Content); err != nil {
		metrics.LLMRequests.WithLabelValues(task, "invalid").Inc()
		s.logger.Debug().Str("reply", resp.Content).Msg("reply rejected")
		return err
	}
	metrics.LLMRequests.WithLabelValues(task, "ok").Inc()

	if s.cache != nil {
		if err := s.cache.Set(key, []byte(resp.Content), s.cacheTTL); err != nil {
			s.logger.Warn().Err(err).Msg("response cache write failed")
		}
	}
	return nil
}

// sanitizer strips every tag; it is safe for concurrent use
var sanitizer = bluemonday.StrictPolicy()

// PlainText reduces a markup description to its visible text
func PlainText(markup string) string {
	text := html.UnescapeString(sanitizer.Sanitize(markup))
	return strings.Join(strings.Fields(text), " ")
}

// ParseClassification validates an input-structuring reply. The short keys
// llm, vlm and output are accepted for the three fields.
func ParseClassification(reply string) (*model.InputClassification, error) {
	fields, err := decodeObject(reply)
	if err != nil {
		return nil, err
	}

	var c model.InputClassification
	if err := decodeField(fields, &c.IsTextSufficient, "is_text_sufficient", "llm"); err != nil {
		return nil, err
	}
	if err := decodeField(fields, &c.NeedsVisual, "needs_visual", "vlm"); err != nil {
		return nil, err
	}

	var kind string
	if err := decodeField(fields, &kind, "output_kind", "output"); err != nil {
		return nil, err
	}
	c.OutputKind = model.OutputKind(strings.ToLower(strings.TrimSpace(kind)))
	if !c.OutputKind.Valid() {
		return nil, fmt.Errorf("%w: output_kind %q", ErrSchemaViolation, kind)
	}

	return &c, nil
}

// ParseAnswer validates an answer-structuring reply. Writings are trimmed,
// blanks dropped and duplicates removed in reply order.
func ParseAnswer(reply string) (*model.StructuredAnswer, error) {
	fields, err := decodeObject(reply)
	if err != nil {
		return nil, err
	}

	var writings []string
	if err := decodeField(fields, &writings, "structured"); err != nil {
		return nil, err
	}

	answer := &model.StructuredAnswer{Structured: []string{}}
	seen := make(map[string]bool, len(writings))
	for _, w := range writings {
		w = strings.TrimSpace(w)
		if w == "" || seen[w] {
			continue
		}
		seen[w] = true
		answer.Structured = append(answer.Structured, w)
	}
	return answer, nil
}

// decodeObject finds the JSON object in a reply, tolerating code fences and
// text around it
func decodeObject(reply string) (map[string]json.RawMessage, error) {
	start := strings.Index(reply, "{")
	end := strings.LastIndex(reply, "}")
	if start < 0 || end < start {
		return nil, fmt.Errorf("%w: no JSON object in reply", ErrSchemaViolation)
	}

	var fields map[string]json.RawMessage
	if err := json.Unmarshal([]byte(reply[start:end+1]), &fields); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrSchemaViolation, err)
	}
	return fields, nil
}

// decodeField decodes the first present key into dst
func decodeField(fields map[string]json.RawMessage, dst any, keys ...string) error {
	for _, key := range keys {
		raw, ok := fields[key]
		if !ok {
			continue
		}
		if string(raw) == "null" {
			return fmt.Errorf("%w: %s is null", ErrSchemaViolation, key)
		}
		if err := json.Unmarshal(raw, dst); err != nil {
			return fmt.Errorf("%w: %s: %v", ErrSchemaViolation, key, err)
		}
		return nil
	}
	return fmt.Errorf("%w: missing %s", ErrSchemaViolation, keys[0])
}
