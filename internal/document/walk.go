package document

import "golang.org/x/net/html"

// NextElement returns the element that follows n in document order: its
// first element descendant if any, otherwise the next element after n or one
// of its ancestors. Returns nil at the end of the document.
func NextElement(n *html.Node) *html.Node {
	for cur := next(n, nil); cur != nil; cur = next(cur, nil) {
		if cur.Type == html.ElementNode {
			return cur
		}
	}
	return nil
}

// Walk is a bounded forward scan over the elements that follow an anchor.
type Walk struct {
	// Stop is consulted before each element with the element that comes
	// after it (nil at the end of the document). Returning true ends the scan
	// without visiting the current element.
	Stop func(next *html.Node) bool

	// Boundary marks elements counted against Limit. Boundary elements are
	// not passed to the visitor.
	Boundary func(n *html.Node) bool

	// Limit is the number of boundary elements after which the scan ends.
	// Zero means unbounded.
	Limit int
}

// From visits the elements after anchor in document order until Stop holds
// or Limit boundary elements have been crossed.
func (w Walk) From(anchor *html.Node, visit func(n *html.Node)) {
	if anchor == nil {
		return
	}

	crossed := 0
	for cur := NextElement(anchor); cur != nil; cur = NextElement(cur) {
		if w.Limit > 0 && crossed >= w.Limit {
			return
		}
		if w.Stop != nil && w.Stop(NextElement(cur)) {
			return
		}
		if w.Boundary != nil && w.Boundary(cur) {
			crossed++
			continue
		}
		visit(cur)
	}
}

// StopAt returns a Stop predicate that holds when the next element is one of
// the given anchors. A nil anchor matches the end of the document, so a scan
// toward an anchor the page lacks ends one element early, before the last.
func StopAt(anchors ...*html.Node) func(*html.Node) bool {
	return func(next *html.Node) bool {
		for _, a := range anchors {
			if next == a {
				return true
			}
		}
		return false
	}
}
