package extract

import (
	"fmt"
	"strings"
	"testing"

	"github.com/ppiankov/laytoneval/internal/document"
	"github.com/ppiankov/laytoneval/internal/model"
)

func load(t *testing.T, markup string) *document.Document {
	t.Helper()
	doc, err := document.Load("test", []byte(markup))
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	return doc
}

// hintBox renders a hint container for a slot with the given inner markup
func hintBox(slot model.HintSlot, inner string) string {
	style, err := DefaultPalette().Fingerprint(slot)
	if err != nil {
		panic(err)
	}
	return fmt.Sprintf(`<div style="%s">%s</div>`, style, inner)
}

func page(parts ...string) string {
	return "<html><body>" + strings.Join(parts, "\n") + "</body></html>"
}

const (
	puzzleHeading   = `<h2><span class="mw-headline" id="Puzzle">Puzzle</span></h2>`
	hintsHeading    = `<h2><span class="mw-headline" id="Hints">Hints</span></h2>`
	solutionHeading = `<h2><span class="mw-headline" id="Solution">Solution</span></h2>`
	correctHeading  = `<h3><span class="mw-headline" id="Correct">Correct</span></h3>`
	navbox          = `<table class="navbox mw-collapsible mw-collapsed"><tbody><tr><td><p>Nav</p></td></tr></tbody></table>`
)
