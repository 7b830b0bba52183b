// Package report composes a markdown situation report from enriched articles.
package report

import (
	"fmt"
	"strings"
	"time"

	"github.com/projectsentinel/sentinel/internal/database"
	"github.com/projectsentinel/sentinel/internal/priority"
)

const maxArticlesPerSection = 15

// Composer composes situation reports from the article store.
type Composer struct {
	db *database.DB
}

// NewComposer creates a new report composer.
func NewComposer(db *database.DB) *Composer {
	return &Composer{db: db}
}

// Compose builds a situation report covering the last `days` days of
// located articles, grouped by priority.
func (c *Composer) Compose(days int) (string, error) {
	stats, err := c.db.GetStats()
	if err != nil {
		return "", err
	}

	var sections []string
	sections = append(sections, header(days))
	sections = append(sections, summarySection(stats))

	for _, p := range []int{priority.Critical, priority.High, priority.Medium} {
		articles, err := c.db.GetLocatedArticles(maxArticlesPerSection, days, "", p)
		if err != nil {
			return "", err
		}
		if len(articles) == 0 {
			continue
		}
		sections = append(sections, prioritySection(p, articles))
	}

	return strings.Join(sections, "\n\n---\n\n") + "\n", nil
}

func header(days int) string {
	return fmt.Sprintf("# Situation Report\n\n%s, covering the last %d days.",
		time.Now().UTC().Format("2006-01-02"), days)
}

func summarySection(stats *database.Stats) string {
	var b strings.Builder
	b.WriteString("## Summary\n\n")
	fmt.Fprintf(&b, "- Articles tracked: %d\n", stats.TotalArticles)
	fmt.Fprintf(&b, "- Processed: %d\n", stats.ProcessedArticles)
	fmt.Fprintf(&b, "- Pending: %d\n", stats.PendingArticles)
	fmt.Fprintf(&b, "- Failed: %d\n", stats.FailedArticles)
	fmt.Fprintf(&b, "- Geolocated: %d", stats.LocatedArticles)

	if len(stats.ByPriority) > 0 {
		b.WriteString("\n\n**By priority:**\n")
		for _, p := range []int{priority.Critical, priority.High, priority.Medium, priority.Low} {
			if count, ok := stats.ByPriority[p]; ok && count > 0 {
				fmt.Fprintf(&b, "- %s: %d\n", priority.Label(p), count)
			}
		}
	}
	return strings.TrimRight(b.String(), "\n")
}

func prioritySection(p int, articles []database.Article) string {
	var b strings.Builder
	fmt.Fprintf(&b, "## %s\n", priority.Label(p))

	for _, a := range articles {
		b.WriteString("\n")
		fmt.Fprintf(&b, "### [%s](%s)\n\n", a.Title, a.URL)
		if a.Source != nil && *a.Source != "" {
			fmt.Fprintf(&b, "- Source: %s\n", *a.Source)
		}
		if a.PublishedDate != nil && *a.PublishedDate != "" {
			fmt.Fprintf(&b, "- Published: %s\n", *a.PublishedDate)
		}
		if a.Latitude != nil && a.Longitude != nil {
			fmt.Fprintf(&b, "- Location: %.4f, %.4f\n", *a.Latitude, *a.Longitude)
		}
		fmt.Fprintf(&b, "- Entities: %d\n", a.EntityCount)
		if excerpt := excerptOf(a.RawText); excerpt != "" {
			fmt.Fprintf(&b, "\n%s\n", excerpt)
		}
	}
	return strings.TrimRight(b.String(), "\n")
}

func excerptOf(text string) string {
	text = strings.TrimSpace(text)
	if text == "" {
		return ""
	}
	runes := []rune(text)
	if len(runes) <= 280 {
		return text
	}
	return strings.TrimSpace(string(runes[:280])) + "..."
}
