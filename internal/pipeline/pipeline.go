package pipeline

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/projectsentinel/sentinel/internal/collect"
	"github.com/projectsentinel/sentinel/internal/config"
	"github.com/projectsentinel/sentinel/internal/database"
	"github.com/projectsentinel/sentinel/internal/enrich"
	"github.com/projectsentinel/sentinel/internal/fetch"
	"github.com/projectsentinel/sentinel/internal/nlp"
)

// StepResult holds the result of a single pipeline step.
type StepResult struct {
	Name    string
	Summary string
	Err     error
}

// Result holds the results of a full pipeline run.
type Result struct {
	Steps []StepResult
}

// Pipeline orchestrates the collect, fetch and enrich steps.
type Pipeline struct {
	cfg        *config.Config
	db         *database.DB
	translator nlp.Translator
	extractor  nlp.Extractor
}

// New creates a new pipeline wired to the configured NLP services.
func New(cfg *config.Config, db *database.DB) *Pipeline {
	return &Pipeline{
		cfg:        cfg,
		db:         db,
		translator: nlp.NewTranslationClient(cfg.Services.Translation.BaseURL, cfg.Services.Translation.Timeout()),
		extractor:  nlp.NewNERClient(cfg.Services.NER.BaseURL, cfg.Services.NER.Timeout()),
	}
}

// Run executes the full pipeline.
func (p *Pipeline) Run(ctx context.Context, daysBack int) *Result {
	r := &Result{}

	// Step 1: Collect
	step := p.runCollect(daysBack)
	r.Steps = append(r.Steps, step)
	if step.Err != nil {
		return r
	}

	// Step 2: Fetch content
	step = p.runFetch()
	r.Steps = append(r.Steps, step)

	// Step 3: Enrich
	step = p.runEnrich(ctx)
	r.Steps = append(r.Steps, step)

	return r
}

// DryRun shows what would be done without executing.
func (p *Pipeline) DryRun() *Result {
	r := &Result{}

	stats, _ := p.db.GetStats()
	total := 0
	if stats != nil {
		total = stats.TotalArticles
	}
	r.Steps = append(r.Steps, StepResult{
		Name:    "Collect",
		Summary: fmt.Sprintf("[dry-run] %d articles already in DB", total),
	})

	needing, _ := p.db.GetArticlesNeedingFetch()
	r.Steps = append(r.Steps, StepResult{
		Name:    "Fetch",
		Summary: fmt.Sprintf("[dry-run] %d articles need content fetching", len(needing)),
	})

	pending, _ := p.db.GetArticlesByStage(database.StagePending, 0)
	r.Steps = append(r.Steps, StepResult{
		Name:    "Enrich",
		Summary: fmt.Sprintf("[dry-run] %d pending articles to process", len(pending)),
	})

	return r
}

func (p *Pipeline) runCollect(daysBack int) StepResult {
	log.Println("Step 1/3: Collecting articles...")
	collector := collect.NewCollector(p.cfg, p.db, daysBack)
	result := collector.Collect()
	return StepResult{
		Name:    "Collect",
		Summary: fmt.Sprintf("Found %d new articles (%d total, %d duplicates)", result.NewArticles, result.TotalFound, result.Duplicates),
	}
}

func (p *Pipeline) runFetch() StepResult {
	log.Println("Step 2/3: Fetching article content...")
	fetcher := fetch.NewContentFetcher(p.db, 15*time.Second)
	result := fetcher.FetchMissingContent()
	return StepResult{
		Name:    "Fetch",
		Summary: fmt.Sprintf("Fetched %d articles, %d failed", result.Fetched, result.Failed),
	}
}

func (p *Pipeline) runEnrich(ctx context.Context) StepResult {
	log.Println("Step 3/3: Enriching articles...")
	enricher := enrich.New(p.db, p.translator, p.extractor)
	result := enricher.ProcessPending(ctx)
	return StepResult{
		Name:    "Enrich",
		Summary: fmt.Sprintf("Processed %d articles (%d failed, %d located)", result.Processed, result.Failed, result.Located),
	}
}
