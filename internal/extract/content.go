package extract

import (
	"strings"

	"github.com/ppiankov/laytoneval/internal/document"
	"golang.org/x/net/html"
)

// ContentKind tags one item of mixed paragraph content
type ContentKind int

const (
	ContentText      ContentKind = iota // Plain text
	ContentElement                      // Inline element such as <b> or <a>
	ContentLineBreak                    // <br>
	ContentImage                        // <img> or an image link
)

// Content is one child of a paragraph-like element, classified once so that
// Normalize is a total match over the kinds above.
type Content struct {
	Kind ContentKind
	Text string     // Text for ContentText, first content item for ContentElement
	Node *html.Node // Source node
}

// Classify tags a single node
func Classify(n *html.Node) Content {
	switch {
	case n.Type == html.TextNode:
		return Content{Kind: ContentText, Text: n.Data, Node: n}
	case n.Type != html.ElementNode:
		return Content{Kind: ContentElement, Node: n}
	case n.Data == "br":
		return Content{Kind: ContentLineBreak, Node: n}
	case n.Data == "img" || IsImageLink(n):
		return Content{Kind: ContentImage, Node: n}
	default:
		return Content{Kind: ContentElement, Text: firstText(n), Node: n}
	}
}

// Contents classifies the direct children of n in order
func Contents(n *html.Node) []Content {
	var items []Content
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		if c.Type == html.CommentNode {
			continue
		}
		items = append(items, Classify(c))
	}
	return items
}

// Normalize rebuilds plain text from classified content: text is kept as is,
// inline elements contribute their first content item, line breaks become
// newlines and images are dropped. Normalize(a+b) == Normalize(a)+Normalize(b).
func Normalize(items []Content) string {
	var b strings.Builder
	for _, item := range items {
		switch item.Kind {
		case ContentText, ContentElement:
			b.WriteString(item.Text)
		case ContentLineBreak:
			b.WriteByte('\n')
		case ContentImage:
		}
	}
	return b.String()
}

// HasImage reports whether any item is an image
func HasImage(items []Content) bool {
	for _, item := range items {
		if item.Kind == ContentImage {
			return true
		}
	}
	return false
}

// IsImageLink reports whether n is a link wrapping an embedded image
func IsImageLink(n *html.Node) bool {
	return n.Type == html.ElementNode && n.Data == "a" && document.HasClass(n, "image")
}

// firstText returns the text of an element's first child. Nested elements
// are not descended into.
func firstText(n *html.Node) string {
	if c := n.FirstChild; c != nil && c.Type == html.TextNode {
		return c.Data
	}
	return ""
}
