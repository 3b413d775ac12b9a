package cli

import (
	"errors"
	"fmt"
	"os"

	"github.com/ppiankov/laytoneval/internal/pipeline"
	"github.com/ppiankov/laytoneval/internal/sink"
	"github.com/ppiankov/laytoneval/internal/worker"
	"github.com/spf13/cobra"
)

// extractCmd represents the extract command
var extractCmd = &cobra.Command{
	Use:   "extract",
	Short: "Extract puzzle records from downloaded pages",
	Long: `Extract turns every stored puzzle page into a record:
- Parse htmls/*.html under the data directory in parallel
- Extract number, category, riddle, picarats, hints and solution
- Attach images/<name>.jpg and answer_images/<name>.jpg when present
- Write each record to every configured output as soon as it is ready

Pages that cannot be parsed are skipped and counted; missing fields are
left empty.

Example:
  laytoneval extract
  laytoneval extract --jsonl records.jsonl --sqlite layton.db
  laytoneval extract --xlsx "" --md puzzles.md --workers 8`,
	Args: cobra.NoArgs,
	RunE: runExtract,
}

func init() {
	rootCmd.AddCommand(extractCmd)

	extractCmd.Flags().Int("workers", 4, "number of pages parsed in parallel")
	extractCmd.Flags().Bool("skip-empty", false, "do not write records with no extracted field")
	extractCmd.Flags().String("xlsx", "layton-annotations.xlsx", "annotation spreadsheet path (empty disables)")
	extractCmd.Flags().String("jsonl", "", "JSON lines output path")
	extractCmd.Flags().String("md", "", "Markdown table output path")
	extractCmd.Flags().String("sqlite", "", "SQLite database path")
	extractCmd.Flags().String("mongo-uri", "", "MongoDB connection string")

	bindFlag("extract.workers", extractCmd.Flags().Lookup("workers"))
	bindFlag("extract.skip_empty", extractCmd.Flags().Lookup("skip-empty"))
	bindFlag("output.xlsx", extractCmd.Flags().Lookup("xlsx"))
	bindFlag("output.jsonl", extractCmd.Flags().Lookup("jsonl"))
	bindFlag("output.markdown", extractCmd.Flags().Lookup("md"))
	bindFlag("output.sqlite", extractCmd.Flags().Lookup("sqlite"))
	bindFlag("output.mongo_uri", extractCmd.Flags().Lookup("mongo-uri"))
}

func runExtract(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()

	sources, err := pipeline.DiscoverSources(cfg.Paths)
	if err != nil {
		return fmt.Errorf("discover pages: %w", err)
	}
	if len(sources) == 0 {
		return fmt.Errorf("no pages found in %s (run 'laytoneval crawl' first)", cfg.Paths.HTMLDir())
	}

	banner("laytoneval Extract")
	fmt.Fprintf(os.Stderr, "  Pages:        %d\n", len(sources))
	fmt.Fprintf(os.Stderr, "  Workers:      %d\n", cfg.Extract.Workers)
	printOutputs()
	fmt.Fprintf(os.Stderr, "\n")

	out, err := sink.Open(ctx, cfg.Output, logger)
	if err != nil {
		return fmt.Errorf("open outputs: %w", err)
	}

	assembler := pipeline.NewAssembler(
		pipeline.WithWikiBase(cfg.Crawl.BaseURL),
		pipeline.WithAssemblerLogger(logger),
	)
	processor := worker.NewBatchProcessor(
		pipeline.NewPipeline(assembler, logger),
		worker.WithConcurrency(cfg.Extract.Workers),
		worker.WithCommit(out.Write),
		worker.WithSkipEmpty(cfg.Extract.SkipEmpty),
		worker.WithLogger(logger),
	)

	fmt.Fprintf(os.Stderr, "⚙️  Extracting with %d workers...\n", cfg.Extract.Workers)
	_, summary := processor.Process(ctx, sources)

	closeErr := out.Close()

	banner("Extraction Complete")
	fmt.Fprintf(os.Stderr, "  Total:      %d pages\n", summary.Total)
	fmt.Fprintf(os.Stderr, "  Written:    %d\n", summary.Emitted)
	fmt.Fprintf(os.Stderr, "  Empty:      %d\n", summary.Empty)
	fmt.Fprintf(os.Stderr, "  Skipped:    %d (unparseable)\n", summary.Skipped)
	fmt.Fprintf(os.Stderr, "  Failures:   %d\n", summary.Failed)
	if summary.Cancelled > 0 {
		fmt.Fprintf(os.Stderr, "  Cancelled:  %d\n", summary.Cancelled)
	}
	fmt.Fprintf(os.Stderr, "\n")

	if closeErr != nil {
		return fmt.Errorf("close outputs: %w", closeErr)
	}
	if err := ctx.Err(); err != nil {
		return errors.New("extraction interrupted")
	}
	return nil
}

func printOutputs() {
	outputs := []struct{ name, path string }{
		{"XLSX", cfg.Output.XLSX},
		{"JSONL", cfg.Output.JSONL},
		{"Markdown", cfg.Output.Markdown},
		{"SQLite", cfg.Output.SQLite},
	}
	for _, o := range outputs {
		if o.path != "" {
			fmt.Fprintf(os.Stderr, "  %-13s %s\n", o.name+":", o.path)
		}
	}
	if cfg.Output.MongoURI != "" {
		fmt.Fprintf(os.Stderr, "  %-13s %s.%s\n", "MongoDB:", cfg.Output.MongoDatabase, cfg.Output.MongoCollection)
	}
}
