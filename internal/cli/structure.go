package cli

import (
	"errors"
	"fmt"
	"os"

	"github.com/ppiankov/laytoneval/internal/cache"
	"github.com/ppiankov/laytoneval/internal/llm"
	"github.com/ppiankov/laytoneval/internal/model"
	"github.com/ppiankov/laytoneval/internal/sink"
	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"
)

var structuredOut string

// structureCmd represents the structure command
var structureCmd = &cobra.Command{
	Use:   "structure <records.jsonl>",
	Short: "Annotate extracted records with a language model",
	Long: `Structure sends each extracted record to a language model:
- input_structuring: is the riddle solvable from its text, does it need
  its image, and is the answer an action or a text
- answer_structuring: the short writings of the answer in the solution

The model formats; it is told never to solve the riddle. Replies that do
not match the task's schema are reported per record.

Example:
  laytoneval structure records.jsonl --provider openai --model gpt-4o-mini
  laytoneval structure records.jsonl --provider together \
    --model mistralai/Mixtral-8x7B-Instruct-v0.1 --task answer_structuring
  laytoneval structure records.jsonl --provider ollama --model llama3.1:8b`,
	Args: cobra.ExactArgs(1),
	RunE: runStructure,
}

func init() {
	rootCmd.AddCommand(structureCmd)

	structureCmd.Flags().StringVarP(&structuredOut, "out", "o", "structured.jsonl", "output JSON lines path")
	structureCmd.Flags().String("provider", "", "LLM provider (openai, together, anthropic, ollama)")
	structureCmd.Flags().String("model", "", "LLM model name")
	structureCmd.Flags().String("task", "input_structuring", "input_structuring or answer_structuring")
	structureCmd.Flags().String("base-url", "", "custom API endpoint")
	structureCmd.Flags().Int("concurrency", 4, "number of concurrent requests")

	bindFlag("llm.provider", structureCmd.Flags().Lookup("provider"))
	bindFlag("llm.model", structureCmd.Flags().Lookup("model"))
	bindFlag("llm.task", structureCmd.Flags().Lookup("task"))
	bindFlag("llm.base_url", structureCmd.Flags().Lookup("base-url"))
	bindFlag("llm.concurrency", structureCmd.Flags().Lookup("concurrency"))
}

func runStructure(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()

	provider, err := llm.NewProvider(llm.ConfigFromModel(cfg.LLM))
	if err != nil {
		return fmt.Errorf("create LLM provider: %w", err)
	}
	if provider == nil {
		return errors.New("no LLM provider configured (use --provider or LAYTON_LLM_PROVIDER)")
	}

	structurer, err := llm.NewStructurer(provider, cfg.LLM,
		llm.WithResponseCache(cache.FromConfig(cfg.Cache), cfg.Cache.TTL),
		llm.WithStructurerLogger(logger),
	)
	if err != nil {
		return err
	}

	records, err := sink.ReadRecordsFile(args[0])
	if err != nil {
		return err
	}

	banner("laytoneval Structure")
	fmt.Fprintf(os.Stderr, "  Records:      %d\n", len(records))
	fmt.Fprintf(os.Stderr, "  Task:         %s\n", structurer.Task())
	fmt.Fprintf(os.Stderr, "  LLM:          %s/%s\n", provider.Name(), cfg.LLM.Model)
	fmt.Fprintf(os.Stderr, "  Output:       %s\n", structuredOut)
	fmt.Fprintf(os.Stderr, "\n")

	if !provider.IsAvailable(ctx) {
		logger.Warn().Str("provider", provider.Name()).Msg("provider availability check failed, continuing")
	}

	results := make([]model.StructuredRecord, len(records))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(max(cfg.LLM.Concurrency, 1))
	for i, rec := range records {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			results[i] = structurer.Structure(gctx, rec)
			if results[i].Error != "" {
				logger.Warn().Str("document", rec.DocumentID).Str("error", results[i].Error).Msg("structuring failed")
			}
			return nil
		})
	}
	waitErr := g.Wait()

	out, err := sink.NewJSONL(structuredOut)
	if err != nil {
		return err
	}

	done, failed := 0, 0
	for i, res := range results {
		if res.Task == "" {
			continue // never started
		}
		if res.Error != "" {
			failed++
		} else {
			done++
		}
		if err := out.Append(res); err != nil {
			_ = out.Close()
			return fmt.Errorf("write %s: %w", records[i].DocumentID, err)
		}
	}
	if err := out.Close(); err != nil {
		return err
	}

	banner("Structuring Complete")
	fmt.Fprintf(os.Stderr, "  Total:      %d records\n", len(records))
	fmt.Fprintf(os.Stderr, "  Succeeded:  %d\n", done)
	fmt.Fprintf(os.Stderr, "  Failed:     %d\n", failed)
	fmt.Fprintf(os.Stderr, "\n")

	return waitErr
}
