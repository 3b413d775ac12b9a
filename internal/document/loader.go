package document

import (
	"bytes"
	"fmt"
	"io"
	"strings"
	"unicode/utf8"

	"github.com/PuerkitoBio/goquery"
	"github.com/gabriel-vasile/mimetype"
	"github.com/saintfish/chardet"
	"golang.org/x/net/html"
	"golang.org/x/net/html/charset"
)

// Load parses a stored page into a Document. It performs no I/O beyond
// reading raw; the bytes must already be in memory.
func Load(id string, raw []byte) (*Document, error) {
	if len(bytes.TrimSpace(raw)) == 0 {
		return nil, fmt.Errorf("%s: empty input: %w", id, ErrMalformedDocument)
	}

	if mtype := mimetype.Detect(raw); !isTextual(mtype) && !startsWithTag(raw) {
		return nil, fmt.Errorf("%s: content is %s: %w", id, mtype.String(), ErrMalformedDocument)
	}

	root, err := html.Parse(utf8Reader(raw))
	if err != nil {
		return nil, fmt.Errorf("%s: %w: %w", id, ErrMalformedDocument, err)
	}

	return &Document{
		id:   id,
		root: root,
		dom:  goquery.NewDocumentFromNode(root),
	}, nil
}

// isTextual reports whether the detected type descends from text/plain
func isTextual(m *mimetype.MIME) bool {
	for ; m != nil; m = m.Parent() {
		if m.Is("text/plain") {
			return true
		}
	}
	return false
}

// startsWithTag reports whether raw opens with markup once a byte order mark
// and leading whitespace are skipped. Sniffing gives up on pages with a stray
// NUL near the top even though they parse.
func startsWithTag(raw []byte) bool {
	raw = bytes.TrimPrefix(raw, []byte("\xef\xbb\xbf"))
	return bytes.HasPrefix(bytes.TrimSpace(raw), []byte("<"))
}

// utf8Reader returns raw decoded to UTF-8. Valid UTF-8 is passed through.
// Otherwise a BOM or <meta> declaration wins, then statistical detection,
// falling back to the raw bytes.
func utf8Reader(raw []byte) io.Reader {
	if utf8.Valid(raw) {
		return bytes.NewReader(raw)
	}

	if enc, _, certain := charset.DetermineEncoding(raw, "text/html"); certain {
		return enc.NewDecoder().Reader(bytes.NewReader(raw))
	}

	result, err := chardet.NewHtmlDetector().DetectBest(raw)
	if err != nil || result == nil {
		return bytes.NewReader(raw)
	}

	r, err := charset.NewReaderLabel(strings.ToLower(result.Charset), bytes.NewReader(raw))
	if err != nil {
		return bytes.NewReader(raw)
	}
	return r
}
