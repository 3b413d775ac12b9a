package document

import (
	"errors"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/antchfx/htmlquery"
	"golang.org/x/net/html"
)

// ErrMalformedDocument is returned by Load when the input cannot be parsed as a
// markup tree at all. Missing sections are not malformed.
var ErrMalformedDocument = errors.New("malformed document")

// Document is a parsed puzzle page. It is never mutated after Load returns, so
// any number of extractors may read it concurrently.
type Document struct {
	id   string
	root *html.Node
	dom  *goquery.Document
}

// ID returns the identifier the document was loaded with
func (d *Document) ID() string {
	return d.id
}

// Root returns the root node of the tree
func (d *Document) Root() *html.Node {
	return d.root
}

// ByID returns the first element in document order whose id attribute equals id,
// or nil.
func (d *Document) ByID(id string) *html.Node {
	return FindFirst(d.root, func(n *html.Node) bool {
		return n.Type == html.ElementNode && Attr(n, "id") == id
	})
}

// SelectOne returns the first element matching a CSS selector, or nil.
// Invalid selectors match nothing.
func (d *Document) SelectOne(selector string) *html.Node {
	sel := d.dom.Find(selector)
	if sel.Length() == 0 {
		return nil
	}
	return sel.Get(0)
}

// Select returns every element matching a CSS selector in document order
func (d *Document) Select(selector string) []*html.Node {
	return d.dom.Find(selector).Nodes
}

// XPath returns every node matching an XPath expression in document order
func (d *Document) XPath(expr string) ([]*html.Node, error) {
	return htmlquery.QueryAll(d.root, expr)
}

// Render serializes a node and its subtree back to markup
func Render(n *html.Node) string {
	var b strings.Builder
	if err := html.Render(&b, n); err != nil {
		return ""
	}
	return b.String()
}
