package document

import (
	"strings"

	"golang.org/x/net/html"
)

// Attr returns an attribute value, or "" when absent
func Attr(n *html.Node, key string) string {
	v, _ := LookupAttr(n, key)
	return v
}

// LookupAttr returns an attribute value and whether the attribute is present
func LookupAttr(n *html.Node, key string) (string, bool) {
	if n == nil {
		return "", false
	}
	for _, attr := range n.Attr {
		if attr.Key == key {
			return attr.Val, true
		}
	}
	return "", false
}

// HasClass checks if a node has a specific CSS class
func HasClass(n *html.Node, className string) bool {
	if n == nil || n.Type != html.ElementNode {
		return false
	}
	for _, class := range strings.Fields(Attr(n, "class")) {
		if class == className {
			return true
		}
	}
	return false
}

// IsBare reports whether n is a tag element carrying no attributes at all.
// The wiki template marks prose paragraphs and data tables this way; styled
// variants of the same tags belong to other page regions.
func IsBare(n *html.Node, tag string) bool {
	return n != nil && n.Type == html.ElementNode && n.Data == tag && len(n.Attr) == 0
}

// FindFirst finds the first node in document order matching a predicate
func FindFirst(n *html.Node, predicate func(*html.Node) bool) *html.Node {
	for cur := n; cur != nil; cur = next(cur, n) {
		if predicate(cur) {
			return cur
		}
	}
	return nil
}

// FindAll finds all nodes matching a predicate
func FindAll(n *html.Node, predicate func(*html.Node) bool) []*html.Node {
	var results []*html.Node
	for cur := n; cur != nil; cur = next(cur, n) {
		if predicate(cur) {
			results = append(results, cur)
		}
	}
	return results
}

// next returns the node after n in document order without leaving the
// subtree rooted at limit. A nil limit walks to the end of the document.
func next(n, limit *html.Node) *html.Node {
	if n.FirstChild != nil {
		return n.FirstChild
	}
	for ; n != nil && n != limit; n = n.Parent {
		if n.NextSibling != nil {
			return n.NextSibling
		}
	}
	return nil
}
