package cli

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/ppiankov/laytoneval/internal/logging"
	"github.com/ppiankov/laytoneval/internal/metrics"
	"github.com/ppiankov/laytoneval/internal/model"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
)

// Version is set at build time
var Version = "v0.1.0"

var (
	cfgFile string
	envFile string
	verbose bool

	// cfg and logger are resolved before any subcommand runs
	cfg    *model.Config
	logger zerolog.Logger
)

// rootCmd represents the base command
var rootCmd = &cobra.Command{
	Use:   "laytoneval",
	Short: "laytoneval - Professor Layton puzzle dataset builder",
	Long: `laytoneval builds an evaluation dataset from the Professor Layton wiki.

It crawls the puzzle pages, extracts each puzzle's number, category,
riddle, picarat value, hints and solution into structured records, and
can ask a language model to annotate the riddles and answers.

  laytoneval crawl       download puzzle pages and images
  laytoneval extract     turn stored pages into records
  laytoneval structure   annotate records with a language model`,
	SilenceErrors: true,
	SilenceUsage:  true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		var err error
		cfg, err = loadConfig(cfgFile, envFile)
		if err != nil {
			return err
		}

		level := cfg.Log.Level
		if verbose {
			level = "debug"
		}
		logger = logging.New(os.Stderr, level, cfg.Log.JSON)

		if cfg.Metrics.Addr != "" {
			go func() {
				if err := metrics.Serve(cmd.Context(), cfg.Metrics.Addr); err != nil {
					logger.Error().Err(err).Str("addr", cfg.Metrics.Addr).Msg("metrics server stopped")
				}
			}()
			logger.Info().Str("addr", cfg.Metrics.Addr).Msg("serving metrics")
		}
		return nil
	},
}

// Execute runs the root command until it finishes or the process is interrupted
func Execute() error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	return rootCmd.ExecuteContext(ctx)
}

// versionCmd represents the version command
var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print version information",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Printf("laytoneval %s\n", Version)
	},
}

func init() {
	// Global flags
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default: $XDG_CONFIG_HOME/laytoneval/config.yaml)")
	rootCmd.PersistentFlags().StringVar(&envFile, "env-file", ".env", "dotenv file loaded before configuration")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "verbose output")
	rootCmd.PersistentFlags().String("log-level", "info", "log level (debug, info, warn, error)")
	rootCmd.PersistentFlags().Bool("log-json", false, "log as JSON lines")
	rootCmd.PersistentFlags().String("metrics-addr", "", "serve prometheus metrics on this address (e.g. :9090)")
	rootCmd.PersistentFlags().String("data-dir", "layton-data", "directory holding htmls/, images/ and answer_images/")

	bindFlag("log.level", rootCmd.PersistentFlags().Lookup("log-level"))
	bindFlag("log.json", rootCmd.PersistentFlags().Lookup("log-json"))
	bindFlag("metrics.addr", rootCmd.PersistentFlags().Lookup("metrics-addr"))
	bindFlag("paths.data_dir", rootCmd.PersistentFlags().Lookup("data-dir"))

	// Add subcommands
	rootCmd.AddCommand(versionCmd)
}

func banner(title string) {
	fmt.Fprintf(os.Stderr, "\n")
	fmt.Fprintf(os.Stderr, "═══════════════════════════════════════════════════════════\n")
	fmt.Fprintf(os.Stderr, "  %s\n", title)
	fmt.Fprintf(os.Stderr, "═══════════════════════════════════════════════════════════\n")
	fmt.Fprintf(os.Stderr, "\n")
}
