package extract

import (
	"fmt"
	"strings"

	"github.com/ppiankov/laytoneval/internal/document"
	"github.com/ppiankov/laytoneval/internal/model"
)

// hintBoxStyle is the inline style of a hint box; only the background differs
const hintBoxStyle = "height:200px; overflow-y:auto; overflow-x:hidden; word-wrap:break-word; overflow: -moz-scrollbars-vertical; line-height:normal; border: 2px solid black; padding:3px; background:%s; font-size:14px"

// Palette maps each hint slot to the background colour of its box
type Palette [len(model.HintSlots)]string

// DefaultPalette returns the colours used by the wiki template
func DefaultPalette() Palette {
	return Palette{
		model.HintFirst:   "#E8E8B8",
		model.HintSecond:  "#C8E8C0",
		model.HintThird:   "#C8F0E0",
		model.HintSpecial: "#F0C7A7",
	}
}

// Fingerprint returns the full style attribute of a slot's hint box
func (p Palette) Fingerprint(slot model.HintSlot) (string, error) {
	if slot < 0 || int(slot) >= len(p) {
		return "", fmt.Errorf("%w: %s", ErrUnknownSlot, slot)
	}
	return fmt.Sprintf(hintBoxStyle, p[slot]), nil
}

// HintExtractor finds hint text by the style fingerprint of its box.
// It holds no mutable state and is safe for concurrent use.
type HintExtractor struct {
	palette Palette
}

// NewHintExtractor creates a hint extractor with the given palette
func NewHintExtractor(palette Palette) *HintExtractor {
	return &HintExtractor{palette: palette}
}

// Extract returns the hint for one slot.
//
// Pages use two layouts. The first puts the hint in paragraphs that directly
// follow a definition list inside the box; those are matched sibling by
// sibling. When that finds nothing, every paragraph anywhere inside the box
// is taken instead.
func (h *HintExtractor) Extract(doc *document.Document, slot model.HintSlot) (Value, error) {
	style, err := h.palette.Fingerprint(slot)
	if err != nil {
		return Absent(), fieldError(FieldHint, doc.ID(), err)
	}

	if hint := chainedParagraphs(doc, style); hint != "" {
		return Text(hint), nil
	}

	paragraphs, err := doc.XPath(fmt.Sprintf(`//*[@style=%q]//p`, style))
	if err != nil {
		return Absent(), fieldError(FieldHint, doc.ID(), err)
	}

	var b strings.Builder
	for _, p := range paragraphs {
		b.WriteString(Normalize(Contents(p)))
	}
	if b.Len() == 0 {
		return Absent(), nil
	}
	return Text(b.String()), nil
}

// chainedParagraphs collects the run of <p> siblings after the box's <dl>,
// growing the selector one "+ p" at a time until it stops matching.
func chainedParagraphs(doc *document.Document, style string) string {
	selector := fmt.Sprintf("[style='%s'] dl", style)

	var b strings.Builder
	for {
		selector += " + p"
		p := doc.SelectOne(selector)
		if p == nil {
			break
		}
		b.WriteString(Normalize(Contents(p)))
	}
	return b.String()
}
