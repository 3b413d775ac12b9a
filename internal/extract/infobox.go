package extract

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/ppiankov/laytoneval/internal/document"
)

// Infobox selectors on puzzle pages
const (
	categorySelector = "[data-source='type'] a"
	picaratsSelector = "[data-source='picarats'] .pi-data-value.pi-font"
	numberSelector   = "[data-source='number'] .pi-data-value.pi-font"
)

// Category returns the puzzle type, taken from the title of the first link in
// the type row ("Category:Matchstick" → "Matchstick").
func Category(doc *document.Document) (Value, error) {
	link := doc.SelectOne(categorySelector)
	if link == nil {
		return Absent(), nil
	}

	title, ok := document.LookupAttr(link, "title")
	if !ok {
		return Absent(), fieldError(FieldCategory, doc.ID(), fmt.Errorf("link: %w: title", ErrMissingAttribute))
	}

	return Text(title[strings.LastIndex(title, ":")+1:]), nil
}

// Picarats returns the point value of the puzzle. ok is false when the page
// has no picarats row; a missing row is never reported as zero.
func Picarats(doc *document.Document) (picarats int, ok bool, err error) {
	cell := doc.SelectOne(picaratsSelector)
	if cell == nil {
		return 0, false, nil
	}

	first := cell.FirstChild
	if first == nil {
		return 0, false, fieldError(FieldPicarats, doc.ID(), ErrEmptyValue)
	}
	item := Classify(first)
	if item.Kind != ContentText {
		return 0, false, fieldError(FieldPicarats, doc.ID(), ErrUnexpectedShape)
	}

	n, err := strconv.Atoi(strings.TrimSpace(item.Text))
	if err != nil {
		return 0, false, fieldError(FieldPicarats, doc.ID(), err)
	}
	return n, true, nil
}

// ID returns the puzzle number exactly as printed. Numbers are not parsed:
// some series use identifiers like "W03" or "Bonus 2".
func ID(doc *document.Document) (Value, error) {
	cell := doc.SelectOne(numberSelector)
	if cell == nil {
		return Absent(), nil
	}
	if cell.FirstChild == nil {
		return Absent(), fieldError(FieldID, doc.ID(), ErrEmptyValue)
	}
	return Text(Normalize([]Content{Classify(cell.FirstChild)})), nil
}
