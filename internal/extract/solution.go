package extract

import (
	"strings"

	"github.com/ppiankov/laytoneval/internal/document"
	"golang.org/x/net/html"
)

// Solution returns the explanation under the Correct heading, one line per
// paragraph, stopping at the navigation box at the foot of the page.
func Solution(doc *document.Document) (Value, error) {
	anchor := doc.ByID(correctAnchor)
	if anchor == nil {
		return Absent(), nil
	}

	var lines []string
	walk := document.Walk{
		Stop:     document.StopAt(doc.SelectOne(navboxSelector)),
		Boundary: isDataTable,
		Limit:    maxDataTables,
	}
	walk.From(anchor, func(n *html.Node) {
		if !document.IsBare(n, "p") || n.FirstChild == nil {
			return
		}
		if line := Normalize([]Content{Classify(n.FirstChild)}); line != "" {
			lines = append(lines, line)
		}
	})

	if len(lines) == 0 {
		return Absent(), nil
	}
	return Text(strings.Join(lines, "\n")), nil
}
