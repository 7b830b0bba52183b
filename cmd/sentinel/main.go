package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"sort"
	"time"

	"github.com/spf13/cobra"

	"github.com/projectsentinel/sentinel/internal/collect"
	"github.com/projectsentinel/sentinel/internal/config"
	"github.com/projectsentinel/sentinel/internal/database"
	"github.com/projectsentinel/sentinel/internal/enrich"
	"github.com/projectsentinel/sentinel/internal/fetch"
	"github.com/projectsentinel/sentinel/internal/nlp"
	"github.com/projectsentinel/sentinel/internal/pipeline"
	"github.com/projectsentinel/sentinel/internal/priority"
	"github.com/projectsentinel/sentinel/internal/report"
	"github.com/projectsentinel/sentinel/internal/server"
)

var version = "dev"

var (
	verbose    bool
	configPath string
	cfg        *config.Config
)

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

var rootCmd = &cobra.Command{
	Use:     "sentinel",
	Short:   "Security incident monitoring for the Cameroon region",
	Long:    "Sentinel collects regional news, translates and extracts entities from it, geolocates incidents and classifies their priority.",
	Version: version,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		if verbose {
			log.SetFlags(log.LstdFlags | log.Lshortfile)
		} else {
			log.SetFlags(log.LstdFlags)
		}

		// Skip config loading for init and version
		if cmd.Name() == "init" || cmd.Name() == "version" {
			return nil
		}

		path, err := config.ResolveConfigPath(configPath)
		if err != nil {
			return err
		}
		cfg, err = config.Load(path)
		if err != nil {
			return fmt.Errorf("loading config: %w", err)
		}
		return nil
	},
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Enable verbose output")
	rootCmd.PersistentFlags().StringVarP(&configPath, "config", "c", "", "Path to config file")

	rootCmd.AddCommand(initCmd)
	rootCmd.AddCommand(versionCmd)
	rootCmd.AddCommand(collectCmd)
	rootCmd.AddCommand(fetchCmd)
	rootCmd.AddCommand(processCmd)
	rootCmd.AddCommand(runCmd)
	rootCmd.AddCommand(reportCmd)
	rootCmd.AddCommand(statsCmd)
	rootCmd.AddCommand(serveCmd)
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print version",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Println("sentinel", version)
	},
}

var initCmd = &cobra.Command{
	Use:   "init",
	Short: "Initialize configuration in ~/.config/sentinel/",
	RunE: func(cmd *cobra.Command, args []string) error {
		target := filepath.Join(config.ConfigDir(), "config.yaml")
		if _, err := os.Stat(target); err == nil {
			fmt.Printf("Config already exists: %s\n", target)
			return nil
		}

		if err := os.MkdirAll(config.ConfigDir(), 0o755); err != nil {
			return fmt.Errorf("creating config directory: %w", err)
		}

		if err := os.WriteFile(target, config.DefaultConfigYAML, 0o644); err != nil {
			return fmt.Errorf("writing config: %w", err)
		}

		fmt.Printf("Created config: %s\n", target)
		fmt.Println("Edit it to configure feeds, API keys, and NLP service endpoints.")
		return nil
	},
}

// --- collect command ---

var collectDaysBack int

var collectCmd = &cobra.Command{
	Use:   "collect",
	Short: "Collect articles from configured sources",
	RunE: func(cmd *cobra.Command, args []string) error {
		db, err := openDB()
		if err != nil {
			return err
		}
		defer db.Close()

		fmt.Println("Collecting articles from sources...")
		collector := collect.NewCollector(cfg, db, collectDaysBack)
		result := collector.Collect()

		fmt.Println("\nCollection complete:")
		fmt.Printf("  Total found: %d\n", result.TotalFound)
		fmt.Printf("  New articles: %d\n", result.NewArticles)
		fmt.Printf("  Duplicates skipped: %d\n", result.Duplicates)

		if len(result.Sources) > 0 {
			fmt.Println("\nArticles by source:")
			type kv struct {
				key string
				val int
			}
			var sorted []kv
			for k, v := range result.Sources {
				sorted = append(sorted, kv{k, v})
			}
			sort.Slice(sorted, func(i, j int) bool { return sorted[i].val > sorted[j].val })
			for _, s := range sorted {
				fmt.Printf("  %s: %d\n", s.key, s.val)
			}
		}
		return nil
	},
}

func init() {
	collectCmd.Flags().IntVar(&collectDaysBack, "days-back", 1, "Lookback window for feed entries (days)")
}

// --- fetch command ---

var fetchCmd = &cobra.Command{
	Use:   "fetch",
	Short: "Fetch full text for articles whose feed entry had no body",
	RunE: func(cmd *cobra.Command, args []string) error {
		db, err := openDB()
		if err != nil {
			return err
		}
		defer db.Close()

		fetcher := fetch.NewContentFetcher(db, 15*time.Second)
		result := fetcher.FetchMissingContent()
		fmt.Printf("Fetched %d articles, %d failed\n", result.Fetched, result.Failed)
		return nil
	},
}

// --- process command ---

var requeueFailed bool

var processCmd = &cobra.Command{
	Use:   "process",
	Short: "Run the enrichment pipeline over pending articles",
	RunE: func(cmd *cobra.Command, args []string) error {
		db, err := openDB()
		if err != nil {
			return err
		}
		defer db.Close()

		if requeueFailed {
			n, err := db.RequeueFailedArticles()
			if err != nil {
				return fmt.Errorf("requeueing failed articles: %w", err)
			}
			fmt.Printf("Requeued %d failed articles\n", n)
		}

		ctx := context.Background()
		translator := nlp.NewTranslationClient(cfg.Services.Translation.BaseURL, cfg.Services.Translation.Timeout())
		extractor := nlp.NewNERClient(cfg.Services.NER.BaseURL, cfg.Services.NER.Timeout())

		if !translator.Healthy(ctx) {
			fmt.Println("Warning: translation service unreachable, articles will keep their original text")
		}
		if !extractor.Healthy(ctx) {
			fmt.Println("Warning: NER service unreachable, entity extraction will be skipped")
		}

		enricher := enrich.New(db, translator, extractor)
		result := enricher.ProcessPending(ctx)

		fmt.Println("\nProcessing complete:")
		fmt.Printf("  Processed: %d\n", result.Processed)
		fmt.Printf("  Failed: %d\n", result.Failed)
		fmt.Printf("  Geolocated: %d\n", result.Located)
		return nil
	},
}

func init() {
	processCmd.Flags().BoolVar(&requeueFailed, "requeue-failed", false, "Reset failed articles to pending before processing")
}

// --- run command ---

var (
	dryRun      bool
	runDaysBack int
)

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Run the full pipeline: collect -> fetch -> enrich",
	RunE: func(cmd *cobra.Command, args []string) error {
		db, err := openDB()
		if err != nil {
			return err
		}
		defer db.Close()

		pipe := pipeline.New(cfg, db)

		var result *pipeline.Result
		if dryRun {
			result = pipe.DryRun()
		} else {
			result = pipe.Run(context.Background(), runDaysBack)
		}

		for i, step := range result.Steps {
			fmt.Printf("\nStep %d/3: %s\n", i+1, step.Name)
			if step.Err != nil {
				fmt.Printf("  Error: %v\n", step.Err)
			} else {
				fmt.Printf("  %s\n", step.Summary)
			}
		}

		if !dryRun {
			fmt.Println("\nPipeline complete! Run 'sentinel serve' to browse the results.")
		}
		return nil
	},
}

func init() {
	runCmd.Flags().BoolVar(&dryRun, "dry-run", false, "Show what would be done without executing")
	runCmd.Flags().IntVar(&runDaysBack, "days-back", 1, "Lookback window for feed entries (days)")
}

// --- report command ---

var reportDays int

var reportCmd = &cobra.Command{
	Use:   "report",
	Short: "Print a markdown situation report",
	RunE: func(cmd *cobra.Command, args []string) error {
		db, err := openDB()
		if err != nil {
			return err
		}
		defer db.Close()

		md, err := report.NewComposer(db).Compose(reportDays)
		if err != nil {
			return fmt.Errorf("composing report: %w", err)
		}
		fmt.Print(md)
		return nil
	},
}

func init() {
	reportCmd.Flags().IntVar(&reportDays, "days", 7, "Number of days the report covers")
}

// --- stats command ---

var statsCmd = &cobra.Command{
	Use:   "stats",
	Short: "Show database statistics",
	RunE: func(cmd *cobra.Command, args []string) error {
		db, err := openDB()
		if err != nil {
			return err
		}
		defer db.Close()

		stats, err := db.GetStats()
		if err != nil {
			return fmt.Errorf("getting stats: %w", err)
		}

		fmt.Println("Articles:")
		fmt.Printf("  Total: %d\n", stats.TotalArticles)
		fmt.Printf("  Processed: %d\n", stats.ProcessedArticles)
		fmt.Printf("  Pending: %d\n", stats.PendingArticles)
		fmt.Printf("  Failed: %d\n", stats.FailedArticles)
		fmt.Printf("  Geolocated: %d\n", stats.LocatedArticles)

		if len(stats.ByPriority) > 0 {
			fmt.Println("\nBy priority:")
			for _, p := range []int{priority.Critical, priority.High, priority.Medium, priority.Low} {
				if count, ok := stats.ByPriority[p]; ok && count > 0 {
					fmt.Printf("  %s: %d\n", priority.Label(p), count)
				}
			}
		}

		if len(stats.BySource) > 0 {
			fmt.Println("\nBy source:")
			type kv struct {
				key string
				val int
			}
			var sorted []kv
			for k, v := range stats.BySource {
				sorted = append(sorted, kv{k, v})
			}
			sort.Slice(sorted, func(i, j int) bool { return sorted[i].val > sorted[j].val })
			for _, s := range sorted {
				fmt.Printf("  %s: %d\n", s.key, s.val)
			}
		}
		return nil
	},
}

// --- serve command ---

var servePort int

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the local API server",
	RunE: func(cmd *cobra.Command, args []string) error {
		db, err := openDB()
		if err != nil {
			return err
		}
		defer db.Close()

		translator := nlp.NewTranslationClient(cfg.Services.Translation.BaseURL, cfg.Services.Translation.Timeout())
		extractor := nlp.NewNERClient(cfg.Services.NER.BaseURL, cfg.Services.NER.Timeout())
		enricher := enrich.New(db, translator, extractor)

		port := servePort
		if port == 0 {
			port = cfg.Server.Port
		}
		fmt.Printf("Starting server at http://localhost:%d\n", port)
		fmt.Println("Press Ctrl+C to stop")
		return server.Serve(db, enricher, port)
	},
}

func init() {
	serveCmd.Flags().IntVarP(&servePort, "port", "p", 0, "Port to run server on (defaults to config)")
}

func openDB() (*database.DB, error) {
	dataDir := cfg.GetDataDir()
	if err := os.MkdirAll(dataDir, 0o755); err != nil {
		return nil, fmt.Errorf("creating data directory: %w", err)
	}
	dbPath := filepath.Join(dataDir, "sentinel.db")
	return database.Open(dbPath)
}
