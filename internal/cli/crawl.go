package cli

import (
	"fmt"
	"os"
	"time"

	"github.com/ppiankov/laytoneval/internal/cache"
	"github.com/ppiankov/laytoneval/internal/crawl"
	"github.com/spf13/cobra"
)

var urlsFile string

// crawlCmd represents the crawl command
var crawlCmd = &cobra.Command{
	Use:   "crawl",
	Short: "Download puzzle pages and images from the wiki",
	Long: `Crawl walks the wiki's puzzle category and stores every puzzle page:
- Follow the category pagination and collect puzzle links
- Save each page as htmls/<name>.html under the data directory
- Save the puzzle and answer images as JPEG (images/, answer_images/)
- Honour robots.txt, rate limit per host and retry transient failures

Example:
  laytoneval crawl
  laytoneval crawl --urls puzzles.txt --no-images
  laytoneval crawl --data-dir ./data --concurrency 8 --rate 4`,
	Args: cobra.NoArgs,
	RunE: runCrawl,
}

func init() {
	rootCmd.AddCommand(crawlCmd)

	crawlCmd.Flags().StringVar(&urlsFile, "urls", "", "crawl only the puzzle URLs listed in this file (one per line)")
	crawlCmd.Flags().Int("concurrency", 4, "number of pages downloaded in parallel")
	crawlCmd.Flags().Float64("rate", 2, "requests per second per host")
	crawlCmd.Flags().Bool("no-robots", false, "ignore robots.txt")
	crawlCmd.Flags().Bool("images", true, "download puzzle and answer images")
	crawlCmd.Flags().String("ua", "laytoneval/1.0 (+https://github.com/ppiankov/laytoneval)", "HTTP User-Agent")
	crawlCmd.Flags().String("proxy", "", "proxy URL (overrides HTTP_PROXY/HTTPS_PROXY)")
	crawlCmd.Flags().Duration("timeout", 30*time.Second, "timeout for one request")

	bindFlag("crawl.concurrency", crawlCmd.Flags().Lookup("concurrency"))
	bindFlag("crawl.rate_per_second", crawlCmd.Flags().Lookup("rate"))
	bindFlag("crawl.images", crawlCmd.Flags().Lookup("images"))
	bindFlag("crawl.user_agent", crawlCmd.Flags().Lookup("ua"))
	bindFlag("crawl.proxy", crawlCmd.Flags().Lookup("proxy"))
	bindFlag("crawl.timeout", crawlCmd.Flags().Lookup("timeout"))
}

func runCrawl(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()

	if noRobots, _ := cmd.Flags().GetBool("no-robots"); noRobots {
		cfg.Crawl.RespectRobots = false
	}

	banner("laytoneval Crawl")
	fmt.Fprintf(os.Stderr, "  Wiki:         %s\n", cfg.Crawl.BaseURL)
	fmt.Fprintf(os.Stderr, "  Data dir:     %s\n", cfg.Paths.DataDir)
	fmt.Fprintf(os.Stderr, "  Workers:      %d\n", cfg.Crawl.Concurrency)
	fmt.Fprintf(os.Stderr, "  Rate:         %.1f req/s\n", cfg.Crawl.RatePerSecond)
	fmt.Fprintf(os.Stderr, "  Images:       %v\n", cfg.Crawl.Images)
	fmt.Fprintf(os.Stderr, "\n")

	opts := []crawl.FetcherOption{crawl.WithFetchLogger(logger)}
	if c := cache.FromConfig(cfg.Cache); c != nil {
		opts = append(opts, crawl.WithCache(c, cfg.Cache.TTL))
	}

	fetcher, err := crawl.NewFetcher(cfg.Crawl, opts...)
	if err != nil {
		return fmt.Errorf("create fetcher: %w", err)
	}
	crawler := crawl.NewCrawler(fetcher, cfg.Crawl, cfg.Paths, logger)

	var summary crawl.Summary
	if urlsFile != "" {
		urls, err := crawl.ReadURLList(urlsFile)
		if err != nil {
			return fmt.Errorf("read URL list: %w", err)
		}
		fmt.Fprintf(os.Stderr, "✓ Loaded %d URLs from %s\n\n", len(urls), urlsFile)
		summary, err = crawler.Download(ctx, urls)
		if err != nil {
			return err
		}
	} else {
		fmt.Fprintf(os.Stderr, "⚙️  Collecting puzzle links...\n")
		summary, err = crawler.Run(ctx)
		if err != nil {
			return err
		}
	}

	banner("Crawl Complete")
	fmt.Fprintf(os.Stderr, "  Links:          %d\n", summary.Links)
	fmt.Fprintf(os.Stderr, "  Pages:          %d\n", summary.Pages)
	fmt.Fprintf(os.Stderr, "  Images:         %d\n", summary.Images)
	fmt.Fprintf(os.Stderr, "  Answer images:  %d\n", summary.AnswerImages)
	fmt.Fprintf(os.Stderr, "  Failures:       %d\n", summary.Failed)
	fmt.Fprintf(os.Stderr, "  Output:         %s\n", cfg.Paths.HTMLDir())
	fmt.Fprintf(os.Stderr, "\n")

	return nil
}
