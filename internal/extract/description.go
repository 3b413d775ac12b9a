package extract

import (
	"strings"

	"github.com/ppiankov/laytoneval/internal/document"
	"golang.org/x/net/html"
)

// Section anchors and limits shared by the prose extractors
const (
	puzzleAnchor   = "Puzzle"
	hintsAnchor    = "Hints"
	solutionAnchor = "Solution"
	correctAnchor  = "Correct"

	navboxSelector = ".navbox.mw-collapsible.mw-collapsed tbody"

	// maxDataTables is how many bare <dl> a scan may cross before giving up
	maxDataTables = 2
)

func isDataTable(n *html.Node) bool {
	return document.IsBare(n, "dl")
}

// Description returns the riddle text between the Puzzle heading and the
// Hints or Solution heading.
//
// A paragraph embedding an image cannot be reduced to text, so when one is
// found the result is that paragraph's markup alone and any text paragraphs
// are discarded.
func Description(doc *document.Document) (Value, error) {
	anchor := doc.ByID(puzzleAnchor)
	if anchor == nil {
		return Absent(), nil
	}

	var texts, images []string
	walk := document.Walk{
		Stop:     document.StopAt(doc.ByID(hintsAnchor), doc.ByID(solutionAnchor)),
		Boundary: isDataTable,
		Limit:    maxDataTables,
	}
	walk.From(anchor, func(n *html.Node) {
		if !document.IsBare(n, "p") {
			return
		}
		items := Contents(n)
		if HasImage(items) {
			images = append(images, document.Render(n))
			return
		}
		texts = append(texts, Normalize(items))
	})

	if len(images) > 0 {
		return Fragments(images[0]), nil
	}
	if len(texts) == 0 {
		return Absent(), nil
	}
	return Text(strings.Join(texts, "\n")), nil
}
