package crawl

import (
	"bufio"
	"bytes"
	"fmt"
	"net/url"
	"os"
	"sort"
	"strings"

	"github.com/PuerkitoBio/goquery"
)

const (
	puzzlePathPrefix = "/wiki/Puzzle:"
	nextPageSelector = ".category-page__pagination-next"
)

// CategoryPage is what one page of the puzzle category lists
type CategoryPage struct {
	Links []string // Puzzle page paths in page order, without duplicates
	Next  string   // Absolute URL of the next page, empty on the last one
}

// ParseCategoryPage collects puzzle links and the pagination link from a
// category listing fetched from pageURL
func ParseCategoryPage(pageURL string, body []byte) (*CategoryPage, error) {
	base, err := url.Parse(pageURL)
	if err != nil {
		return nil, fmt.Errorf("parse page URL: %w", err)
	}

	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("parse category page: %w", err)
	}

	page := &CategoryPage{}
	seen := make(map[string]bool)
	doc.Find("a[href]").Each(func(_ int, s *goquery.Selection) {
		href, _ := s.Attr("href")
		if !strings.HasPrefix(href, puzzlePathPrefix) || seen[href] {
			return
		}
		seen[href] = true
		page.Links = append(page.Links, href)
	})

	if href, ok := doc.Find(nextPageSelector).First().Attr("href"); ok && href != "" {
		next, err := base.Parse(href)
		if err != nil {
			return nil, fmt.Errorf("parse next page link: %w", err)
		}
		page.Next = next.String()
	}

	return page, nil
}

// PageName turns a puzzle URL or path into the name its files are stored
// under: the part after "Puzzle:", with "/" replaced by "_"
func PageName(puzzleURL string) string {
	name := puzzleURL
	if i := strings.LastIndex(name, "Puzzle:"); i >= 0 {
		name = name[i+len("Puzzle:"):]
	}
	return strings.ReplaceAll(name, "/", "_")
}

// ResolveLinks makes puzzle paths absolute against base, sorted and de-duplicated
func ResolveLinks(base string, paths []string) []string {
	base = strings.TrimRight(base, "/")

	seen := make(map[string]bool, len(paths))
	urls := make([]string, 0, len(paths))
	for _, p := range paths {
		u := p
		if strings.HasPrefix(p, "/") {
			u = base + p
		}
		if !seen[u] {
			seen[u] = true
			urls = append(urls, u)
		}
	}
	sort.Strings(urls)
	return urls
}

// ReadURLList reads puzzle URLs from a file, one per line, skipping blank
// lines, comments and duplicates
func ReadURLList(filePath string) ([]string, error) {
	file, err := os.Open(filePath)
	if err != nil {
		return nil, fmt.Errorf("open file: %w", err)
	}
	defer func() { _ = file.Close() }()

	var urls []string
	seen := make(map[string]bool)

	scanner := bufio.NewScanner(file)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())

		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}

		if !seen[line] {
			seen[line] = true
			urls = append(urls, line)
		}
	}

	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("scan file: %w", err)
	}

	return urls, nil
}
