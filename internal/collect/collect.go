// Package collect gathers raw articles from the configured Cameroonian news
// feeds (and optionally NewsAPI) and stores them as pending records.
package collect

import (
	"log"

	"github.com/projectsentinel/sentinel/internal/config"
	"github.com/projectsentinel/sentinel/internal/database"
)

// Result holds the results of a collection run.
type Result struct {
	TotalFound  int
	NewArticles int
	Duplicates  int
	Sources     map[string]int
}

// Collector orchestrates article collection from RSS feeds and NewsAPI.
type Collector struct {
	db         *database.DB
	feedParser *FeedParser
	newsClient *NewsAPIClient
	newsQuery  string
	daysBack   int
}

// NewCollector creates a new article collector.
func NewCollector(cfg *config.Config, db *database.DB, daysBack int) *Collector {
	c := &Collector{
		db:       db,
		daysBack: daysBack,
	}

	if len(cfg.Sources.Feeds) > 0 {
		feeds := make([]FeedConfig, len(cfg.Sources.Feeds))
		for i, f := range cfg.Sources.Feeds {
			feeds[i] = FeedConfig{URL: f.URL, Name: f.Name}
		}
		c.feedParser = NewFeedParser(feeds)
	}

	apiCfg := cfg.Sources.NewsAPI
	if apiCfg.Enabled {
		c.newsClient = NewNewsAPIClient(apiCfg.APIKeyEnv)
		c.newsQuery = apiCfg.Query
		if c.newsQuery == "" {
			c.newsQuery = "Cameroon security"
		}
	}

	return c
}

// Collect collects articles from all configured sources.
func (c *Collector) Collect() *Result {
	r := &Result{Sources: make(map[string]int)}

	if c.feedParser != nil {
		log.Println("Collecting from RSS feeds...")
		c.store(r, c.feedParser.ParseAll(c.daysBack))
	}

	if c.newsClient != nil && c.newsClient.IsConfigured() {
		log.Println("Collecting from NewsAPI...")
		c.store(r, c.newsClient.Search(c.newsQuery, c.daysBack, 100))
	}

	log.Printf("Collection complete: %d found, %d new, %d duplicates", r.TotalFound, r.NewArticles, r.Duplicates)
	return r
}

func (c *Collector) store(r *Result, entries []FeedEntry) {
	r.TotalFound += len(entries)

	for _, entry := range entries {
		var source, pubDate *string
		if entry.Source != "" {
			source = &entry.Source
		}
		if entry.PublishedDate != "" {
			pubDate = &entry.PublishedDate
		}

		id, _ := c.db.InsertArticle(entry.URL, entry.Title, source, pubDate, entry.Content)
		if id != "" {
			r.NewArticles++
			r.Sources[entry.Source]++
		} else {
			r.Duplicates++
		}
	}
}
