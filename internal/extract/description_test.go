package extract

import (
	"strings"
	"testing"
)

func TestDescription_TwoParagraphs(t *testing.T) {
	doc := load(t, page(
		puzzleHeading,
		`<p>A boat can carry two.</p>`,
		`<p>How many trips <b>at least</b>?</p>`,
		hintsHeading,
		`<p>Not part of it.</p>`,
	))

	v, err := Description(doc)
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}
	if v.Kind != ValueText {
		t.Fatalf("Expected text value, got kind %d", v.Kind)
	}
	if want := "A boat can carry two.\nHow many trips at least?"; v.Text != want {
		t.Errorf("Expected %q, got %q", want, v.Text)
	}
}

func TestDescription_ImageParagraphWins(t *testing.T) {
	doc := load(t, page(
		puzzleHeading,
		`<p>Intro text.</p>`,
		`<p>Look: <a class="image" href="/p.png"><img src="/p.png"></a></p>`,
		`<p>More text.</p>`,
		solutionHeading,
	))

	v, err := Description(doc)
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}
	if v.Kind != ValueFragments || len(v.Fragments) != 1 {
		t.Fatalf("Expected a single fragment, got %+v", v)
	}
	if !strings.HasPrefix(v.Fragments[0], "<p>Look: <a class=\"image\"") {
		t.Errorf("Expected raw paragraph markup, got %q", v.Fragments[0])
	}
	if strings.Contains(v.Fragments[0], "Intro") {
		t.Errorf("Expected sibling text to be discarded, got %q", v.Fragments[0])
	}
}

func TestDescription_NoPuzzleAnchor(t *testing.T) {
	v, err := Description(load(t, page(`<p>Stray text.</p>`, hintsHeading)))
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}
	if !v.IsAbsent() {
		t.Errorf("Expected absent, got %+v", v)
	}
}

func TestDescription_StopsAtSecondDataTable(t *testing.T) {
	doc := load(t, page(
		puzzleHeading,
		`<p>Kept.</p>`,
		`<dl><dd>table one</dd></dl>`,
		`<p>Also kept.</p>`,
		`<dl><dd>table two</dd></dl>`,
		`<p>Runaway.</p>`,
		`<p>Runaway too.</p>`,
	))

	v, err := Description(doc)
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}
	if want := "Kept.\nAlso kept."; v.Text != want {
		t.Errorf("Expected %q, got %q", want, v.Text)
	}
}

func TestDescription_IgnoresStyledParagraphs(t *testing.T) {
	doc := load(t, page(
		puzzleHeading,
		`<p class="caption">Caption.</p>`,
		`<p>Body.</p>`,
		hintsHeading,
	))

	v, _ := Description(doc)
	if v.Text != "Body." {
		t.Errorf("Expected 'Body.', got %q", v.Text)
	}
}
