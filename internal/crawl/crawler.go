package crawl

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync/atomic"

	"github.com/ppiankov/laytoneval/internal/model"
	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"
)

// Getter downloads a URL
type Getter interface {
	Get(ctx context.Context, rawURL string) ([]byte, error)
}

// Summary counts what a crawl stored
type Summary struct {
	Links        int
	Pages        int
	Images       int
	AnswerImages int
	Failed       int
}

// Crawler walks the puzzle category and stores each puzzle page and its
// images under the data directory
type Crawler struct {
	getter      Getter
	paths       model.PathsConfig
	baseURL     string
	startPage   string
	concurrency int
	images      bool
	logger      zerolog.Logger
}

// NewCrawler creates a crawler
func NewCrawler(getter Getter, cfg model.CrawlConfig, paths model.PathsConfig, logger zerolog.Logger) *Crawler {
	concurrency := cfg.Concurrency
	if concurrency <= 0 {
		concurrency = 1
	}
	return &Crawler{
		getter:      getter,
		paths:       paths,
		baseURL:     strings.TrimRight(cfg.BaseURL, "/"),
		startPage:   cfg.StartPage,
		concurrency: concurrency,
		images:      cfg.Images,
		logger:      logger,
	}
}

// DiscoverPuzzles follows the category pagination from the start page and
// returns every puzzle URL, sorted and de-duplicated. A failed listing page
// ends pagination; it is an error only when nothing was collected.
func (c *Crawler) DiscoverPuzzles(ctx context.Context) ([]string, error) {
	pageURL := c.startPage
	if strings.HasPrefix(pageURL, "/") {
		pageURL = c.baseURL + pageURL
	}

	var paths []string
	visited := make(map[string]bool)
	for pageURL != "" && !visited[pageURL] {
		visited[pageURL] = true

		body, err := c.getter.Get(ctx, pageURL)
		if err != nil {
			if len(paths) == 0 {
				return nil, fmt.Errorf("category page: %w", err)
			}
			c.logger.Warn().Err(err).Str("url", pageURL).Msg("category pagination stopped early")
			break
		}

		page, err := ParseCategoryPage(pageURL, body)
		if err != nil {
			return nil, err
		}

		c.logger.Debug().Str("url", pageURL).Int("links", len(page.Links)).Msg("category page")
		paths = append(paths, page.Links...)
		pageURL = page.Next
	}

	return ResolveLinks(c.baseURL, paths), nil
}

// Run discovers puzzles and downloads them
func (c *Crawler) Run(ctx context.Context) (Summary, error) {
	urls, err := c.DiscoverPuzzles(ctx)
	if err != nil {
		return Summary{}, err
	}
	c.logger.Info().Int("puzzles", len(urls)).Msg("extracted puzzle links")

	return c.Download(ctx, urls)
}

// Download stores the given puzzle pages and their images. A page that fails
// is logged and counted; only cancellation stops the run.
func (c *Crawler) Download(ctx context.Context, urls []string) (Summary, error) {
	for _, dir := range []string{c.paths.HTMLDir(), c.paths.ImageDir(), c.paths.AnswerImageDir()} {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return Summary{}, fmt.Errorf("create %s: %w", dir, err)
		}
	}

	var pages, images, answers, failed atomic.Int64

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(c.concurrency)

	for _, u := range urls {
		if gctx.Err() != nil {
			break
		}
		g.Go(func() error {
			res, err := c.savePuzzle(gctx, u)
			if err != nil {
				failed.Add(1)
				c.logger.Warn().Err(err).Str("url", u).Msg("puzzle download failed")
				return nil
			}
			pages.Add(1)
			if res.image {
				images.Add(1)
			}
			if res.answer {
				answers.Add(1)
			}
			return nil
		})
	}
	_ = g.Wait()

	summary := Summary{
		Links:        len(urls),
		Pages:        int(pages.Load()),
		Images:       int(images.Load()),
		AnswerImages: int(answers.Load()),
		Failed:       int(failed.Load()),
	}
	return summary, ctx.Err()
}

type saved struct {
	image  bool
	answer bool
}

func (c *Crawler) savePuzzle(ctx context.Context, puzzleURL string) (saved, error) {
	var res saved
	name := PageName(puzzleURL)

	body, err := c.getter.Get(ctx, puzzleURL)
	if err != nil {
		return res, err
	}
	if err := os.WriteFile(filepath.Join(c.paths.HTMLDir(), name+".html"), body, 0o644); err != nil {
		return res, fmt.Errorf("write page: %w", err)
	}

	if !c.images {
		return res, nil
	}

	imgs, err := FindImages(puzzleURL, body)
	if err != nil {
		c.logger.Warn().Err(err).Str("puzzle", name).Msg("image lookup failed")
		return res, nil
	}

	if imgs.Puzzle == "" {
		c.logger.Info().Str("puzzle", name).Msg("no image found")
	} else {
		res.image = c.saveImage(ctx, imgs.Puzzle, filepath.Join(c.paths.ImageDir(), name+".jpg"))
	}
	if imgs.Answer == "" {
		c.logger.Info().Str("puzzle", name).Msg("no answer image found")
	} else {
		res.answer = c.saveImage(ctx, imgs.Answer, filepath.Join(c.paths.AnswerImageDir(), name+".jpg"))
	}

	return res, nil
}

// saveImage downloads, re-encodes and writes one image, logging failures
func (c *Crawler) saveImage(ctx context.Context, imageURL, dest string) bool {
	data, err := c.getter.Get(ctx, imageURL)
	if err != nil {
		c.logger.Warn().Err(err).Str("url", imageURL).Msg("image download failed")
		return false
	}

	jpg, err := ToJPEG(data)
	if err != nil {
		c.logger.Warn().Err(err).Str("url", imageURL).Msg("image skipped")
		return false
	}

	if err := os.WriteFile(dest, jpg, 0o644); err != nil {
		c.logger.Warn().Err(err).Str("path", dest).Msg("image write failed")
		return false
	}
	return true
}
