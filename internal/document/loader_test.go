package document

import (
	"errors"
	"strings"
	"testing"
)

func TestLoad_ParsesMarkup(t *testing.T) {
	doc, err := Load("001", []byte(`<html><body><h2><span id="Puzzle">Puzzle</span></h2><p>Text</p></body></html>`))
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}

	if doc.ID() != "001" {
		t.Errorf("Expected id 001, got %s", doc.ID())
	}
	if doc.Root() == nil {
		t.Fatal("Expected root node")
	}
	if anchor := doc.ByID("Puzzle"); anchor == nil || anchor.Data != "span" {
		t.Errorf("Expected Puzzle anchor span, got %v", anchor)
	}
	if doc.ByID("Hints") != nil {
		t.Error("Expected missing anchor to be nil")
	}
}

func TestLoad_RejectsUnparseableInput(t *testing.T) {
	tests := []struct {
		name string
		raw  []byte
	}{
		{"empty", nil},
		{"whitespace", []byte(" \n\t ")},
		{"binary", []byte{0x89, 'P', 'N', 'G', '\r', '\n', 0x1a, '\n', 0, 0, 0, 0x0d, 'I', 'H', 'D', 'R'}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Load("bad", tt.raw)
			if !errors.Is(err, ErrMalformedDocument) {
				t.Fatalf("Expected ErrMalformedDocument, got %v", err)
			}
			if !strings.Contains(err.Error(), "bad") {
				t.Errorf("Expected error to name the document, got %q", err.Error())
			}
		})
	}
}

func TestLoad_NulNearTopStillParses(t *testing.T) {
	raw := "\ufeff\n<!DOCTYPE html><html><head><!-- \x00 --></head>" +
		`<body><h2><span id="Puzzle">Puzzle</span></h2><p>Text</p></body></html>`

	doc, err := Load("early", []byte(raw))
	if err != nil {
		t.Fatalf("Expected page to load, got %v", err)
	}
	if doc.ByID("Puzzle") == nil {
		t.Error("Expected Puzzle anchor")
	}
}

func TestLoad_PageWithoutSectionsIsValid(t *testing.T) {
	doc, err := Load("plain", []byte("just some words"))
	if err != nil {
		t.Fatalf("Expected plain text to load, got %v", err)
	}
	if doc.ByID("Puzzle") != nil {
		t.Error("Expected no anchors")
	}
}

func TestLoad_DecodesLegacyCharset(t *testing.T) {
	// "Café" in ISO-8859-1
	raw := []byte("<html><head><meta charset=\"iso-8859-1\"></head><body><p id=\"x\">Caf\xe9 au lait, caf\xe9 cr\xe8me, d\xe9j\xe0 vu</p></body></html>")

	doc, err := Load("latin1", raw)
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}

	p := doc.ByID("x")
	if p == nil || p.FirstChild == nil {
		t.Fatal("Expected paragraph with text")
	}
	if !strings.HasPrefix(p.FirstChild.Data, "Café") {
		t.Errorf("Expected decoded text, got %q", p.FirstChild.Data)
	}
}

func TestDocument_Select(t *testing.T) {
	doc, err := Load("sel", []byte(`<div data-source="type"><a title="Category:Logic">Logic</a><a title="x">x</a></div>`))
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}

	link := doc.SelectOne("[data-source='type'] a")
	if link == nil || Attr(link, "title") != "Category:Logic" {
		t.Errorf("Expected first link, got %v", link)
	}
	if got := len(doc.Select("a")); got != 2 {
		t.Errorf("Expected 2 links, got %d", got)
	}
	if doc.SelectOne(".missing") != nil {
		t.Error("Expected nil for unmatched selector")
	}

	nodes, err := doc.XPath(`//a[@title="x"]`)
	if err != nil {
		t.Fatalf("Expected no XPath error, got %v", err)
	}
	if len(nodes) != 1 {
		t.Errorf("Expected 1 XPath match, got %d", len(nodes))
	}
}

func TestRender(t *testing.T) {
	doc, err := Load("r", []byte(`<p id="p">Hi <a class="image" href="/x.png"><img src="/x.png"></a></p>`))
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}

	got := Render(doc.ByID("p"))
	want := `<p id="p">Hi <a class="image" href="/x.png"><img src="/x.png"/></a></p>`
	if got != want {
		t.Errorf("Expected %q, got %q", want, got)
	}
}
