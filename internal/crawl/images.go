package crawl

import (
	"bytes"
	"fmt"
	"image"
	"image/color"
	"image/draw"
	"image/jpeg"
	"net/url"
	"strings"

	// Decoders for the formats the wiki serves
	_ "image/gif"
	_ "image/png"

	"github.com/PuerkitoBio/goquery"
	"github.com/gabriel-vasile/mimetype"
	_ "golang.org/x/image/webp"
)

const thumbnailSelector = ".image.image-thumbnail"

// PuzzleImages are the image URLs found on a puzzle page
type PuzzleImages struct {
	Puzzle string // Game frame showing the puzzle
	Answer string // Game frame showing the solution, if the page has one
}

// FindImages locates the puzzle thumbnail and, through its title, the answer
// frame whose alt text is that title followed by "S"
func FindImages(pageURL string, body []byte) (PuzzleImages, error) {
	var imgs PuzzleImages

	base, err := url.Parse(pageURL)
	if err != nil {
		return imgs, fmt.Errorf("parse page URL: %w", err)
	}

	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(body))
	if err != nil {
		return imgs, fmt.Errorf("parse puzzle page: %w", err)
	}

	thumb := doc.Find(thumbnailSelector).First()
	if thumb.Length() == 0 {
		return imgs, nil
	}

	if href, ok := thumb.Attr("href"); ok && href != "" {
		imgs.Puzzle = resolve(base, href)
	}

	title, ok := thumb.Attr("title")
	if !ok {
		return imgs, nil
	}

	alt := title + "S"
	doc.Find("[alt]").EachWithBreak(func(_ int, s *goquery.Selection) bool {
		if v, _ := s.Attr("alt"); v != alt {
			return true
		}
		src, ok := s.Attr("data-src")
		if !ok {
			src, _ = s.Attr("src")
		}
		if src != "" {
			imgs.Answer = resolve(base, src)
		}
		return false
	})

	return imgs, nil
}

func resolve(base *url.URL, ref string) string {
	u, err := base.Parse(ref)
	if err != nil {
		return ref
	}
	return u.String()
}

// ToJPEG re-encodes a downloaded image as an opaque JPEG. Transparent areas
// are flattened onto white.
func ToJPEG(data []byte) ([]byte, error) {
	if mtype := mimetype.Detect(data); !strings.HasPrefix(mtype.String(), "image/") {
		return nil, fmt.Errorf("%w: content is %s", ErrNotImage, mtype.String())
	}

	src, _, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrNotImage, err)
	}

	bounds := src.Bounds()
	rgb := image.NewRGBA(bounds)
	draw.Draw(rgb, bounds, image.NewUniform(color.White), image.Point{}, draw.Src)
	draw.Draw(rgb, bounds, src, bounds.Min, draw.Over)

	var buf bytes.Buffer
	if err := jpeg.Encode(&buf, rgb, &jpeg.Options{Quality: 90}); err != nil {
		return nil, fmt.Errorf("encode jpeg: %w", err)
	}
	return buf.Bytes(), nil
}
